package voice

import (
	"github.com/agnivade/levenshtein"

	"github.com/mamadbah2/pantry/internal/domain/models"
	"github.com/mamadbah2/pantry/internal/domain/reconcile"
)

// MinMatchScore is the lowest similarity (0-100) accepted as an ingredient match.
const MinMatchScore = 60

// Similarity scores two names from 0 to 100 by edit distance over their
// normalized forms.
func Similarity(a, b string) int {
	na, nb := []rune(reconcile.Normalize(a)), []rune(reconcile.Normalize(b))
	longest := len(na)
	if len(nb) > longest {
		longest = len(nb)
	}
	if longest == 0 {
		return 0
	}

	dist := levenshtein.ComputeDistance(string(na), string(nb))
	return (longest - dist) * 100 / longest
}

// MatchIngredient picks the catalog entry closest to a spoken item name.
// Common ingredients (salt, water and the like) are never matched.
func MatchIngredient(item string, catalog []models.IngredientRef) (models.IngredientRef, int, bool) {
	var (
		best      models.IngredientRef
		bestScore = -1
	)

	for _, ing := range catalog {
		if ing.Common {
			continue
		}
		score := Similarity(item, ing.Name)
		if score > bestScore {
			best, bestScore = ing, score
		}
	}

	if bestScore < MinMatchScore {
		return models.IngredientRef{}, bestScore, false
	}
	return best, bestScore, true
}
