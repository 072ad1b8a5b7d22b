package reconcile

import (
	"sort"

	"github.com/mamadbah2/pantry/internal/domain/models"
)

// Group pairs one recipe requirement with every stock row whose normalized
// name matches it.
type Group struct {
	Requirement models.RecipeIngredient `json:"requirement"`
	Key         string                  `json:"key"`
	Stocks      []models.StockRecord    `json:"stocks"`
}

// Owned is the set of normalized ingredient names present in stock.
type Owned map[string]struct{}

// Has reports whether the named ingredient is in stock. The name is
// normalized before the lookup.
func (o Owned) Has(name string) bool {
	_, ok := o[Normalize(name)]
	return ok
}

// Keys returns the owned names in sorted order.
func (o Owned) Keys() []string {
	keys := make([]string, 0, len(o))
	for k := range o {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

// Result is the output of one reconciliation pass. Groups and Owned are always
// produced together.
type Result struct {
	Groups []Group `json:"groups"`
	Owned  Owned   `json:"-"`
}

// Missing lists the requirements that are not in stock, in requirement order.
// Requirements without a usable name are skipped.
func (r Result) Missing(reqs []models.RecipeIngredient) []models.RecipeIngredient {
	var missing []models.RecipeIngredient
	for _, req := range reqs {
		key := Normalize(req.IngredientName)
		if key == "" {
			continue
		}
		if _, ok := r.Owned[key]; !ok {
			missing = append(missing, req)
		}
	}
	return missing
}

// VisibleIDs returns the ids of every stock row shown across the groups.
func (r Result) VisibleIDs() map[int64]struct{} {
	ids := make(map[int64]struct{})
	for _, g := range r.Groups {
		for _, s := range g.Stocks {
			ids[s.ID] = struct{}{}
		}
	}
	return ids
}

// Reconcile joins the requirements against the stock index. Each requirement
// with a non-empty bucket yields one group carrying the whole bucket, so a
// requirement listed twice yields two groups. Owned covers the entire index,
// not only the names the requirements reference.
func Reconcile(reqs []models.RecipeIngredient, idx Index) Result {
	res := Result{Groups: []Group{}, Owned: make(Owned, len(idx))}

	for key, bucket := range idx {
		if key != "" && len(bucket) > 0 {
			res.Owned[key] = struct{}{}
		}
	}

	for _, req := range reqs {
		key := Normalize(req.IngredientName)
		if key == "" {
			continue
		}
		bucket := idx[key]
		if len(bucket) == 0 {
			continue
		}
		stocks := make([]models.StockRecord, len(bucket))
		copy(stocks, bucket)
		res.Groups = append(res.Groups, Group{Requirement: req, Key: key, Stocks: stocks})
	}

	return res
}
