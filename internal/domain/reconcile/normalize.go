// Package reconcile joins recipe ingredient requirements against the user's
// stock rows and classifies stock by expiration urgency. Everything here is
// pure: no clocks, no I/O, no shared state.
package reconcile

import (
	"strings"

	"golang.org/x/text/cases"
)

// Normalize derives the join key of an ingredient name: surrounding
// whitespace trimmed, then Unicode case folded. Two names denote the same
// ingredient iff their normalized forms are equal.
func Normalize(name string) string {
	trimmed := strings.TrimSpace(name)
	if trimmed == "" {
		return ""
	}
	// A Caser is stateful, so one is built per call.
	return strings.TrimSpace(cases.Fold().String(trimmed))
}
