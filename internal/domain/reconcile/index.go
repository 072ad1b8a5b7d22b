package reconcile

import "github.com/mamadbah2/pantry/internal/domain/models"

// Index maps a normalized ingredient name to the stock rows carrying it, in
// input order.
type Index map[string][]models.StockRecord

// BuildIndex groups stock rows by normalized ingredient name. Rows whose name
// normalizes to the empty string are left out. The input slice is not modified.
func BuildIndex(stocks []models.StockRecord) Index {
	idx := make(Index)
	for _, stock := range stocks {
		key := Normalize(stock.Name())
		if key == "" {
			continue
		}
		idx[key] = append(idx[key], stock)
	}
	return idx
}

// Bucket returns the stock rows stored under name, normalizing it first.
func (idx Index) Bucket(name string) []models.StockRecord {
	return idx[Normalize(name)]
}

// Size is the number of indexed stock rows across all buckets.
func (idx Index) Size() int {
	n := 0
	for _, bucket := range idx {
		n += len(bucket)
	}
	return n
}
