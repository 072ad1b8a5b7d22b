package reconcile

import (
	"cloud.google.com/go/civil"

	"github.com/mamadbah2/pantry/internal/domain/models"
)

const (
	// DefaultShelfLifeDays is assigned on write when a new stock row has no expiration date.
	DefaultShelfLifeDays = 7
	// NotifyLeadDays is how far ahead of expiration a warning is raised.
	NotifyLeadDays = 4
)

// DefaultExpiration is the expiration date given to stock added on day ref
// without one.
func DefaultExpiration(ref civil.Date) civil.Date {
	return ref.AddDays(DefaultShelfLifeDays)
}

// WithDefaultExpiration fills a missing expiration date on an add request.
// It is a write-time policy and never applied when reading stock.
func WithDefaultExpiration(req models.StockWriteRequest, ref civil.Date) models.StockWriteRequest {
	if req.ExpirationDate == nil {
		exp := DefaultExpiration(ref)
		req.ExpirationDate = &exp
	}
	return req
}

// ShouldDisable reports whether a stock row with this urgency must be disabled.
func ShouldDisable(u Urgency) bool {
	return u.Bucket == BucketExpired
}

// NotifyDue reports whether a warning is due today for this urgency.
func NotifyDue(u Urgency) bool {
	return u.DaysRemaining != nil && *u.DaysRemaining == NotifyLeadDays
}
