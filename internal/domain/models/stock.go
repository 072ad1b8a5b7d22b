package models

import (
	"cloud.google.com/go/civil"
	"github.com/shopspring/decimal"
)

// IngredientRef is the structured ingredient reference embedded in a stock row.
type IngredientRef struct {
	ID            int64   `json:"id"`
	Name          string  `json:"name"`
	UnitOfMeasure *string `json:"unit_of_measure,omitempty"`
	Common        bool    `json:"common"`
}

// StockRecord is one row of the user's pantry as returned by the pantry API.
// Several rows may point at the same ingredient (separate purchases).
type StockRecord struct {
	ID             int64               `json:"id"`
	Ingredient     *IngredientRef      `json:"ingredient,omitempty"`
	IngredientName string              `json:"ingredient_name,omitempty"` // legacy flat field
	Quantity       decimal.NullDecimal `json:"quantity"`
	ExpirationDate *civil.Date         `json:"expiration_date"`
	DateAdded      civil.Date          `json:"date_added"`
	Disable        bool                `json:"disable"`
}

// Name returns the display name of the stocked ingredient, preferring the
// structured reference over the legacy flat field.
func (s StockRecord) Name() string {
	if s.Ingredient != nil && s.Ingredient.Name != "" {
		return s.Ingredient.Name
	}
	return s.IngredientName
}

// StockWriteRequest carries the mutable fields of a stock row. Nil fields are
// omitted from the payload so the API leaves them untouched.
type StockWriteRequest struct {
	ExpirationDate *civil.Date      `json:"expiration_date,omitempty"`
	Quantity       *decimal.Decimal `json:"quantity,omitempty"`
	Disable        *bool            `json:"disable,omitempty"`
}

// BulkDeleteRequest removes several stock rows at once, keyed by stock-row id.
type BulkDeleteRequest struct {
	StockIDs []int64 `json:"stock_ids"`
}

// BulkDeleteResponse mirrors the API reply to a bulk removal.
type BulkDeleteResponse struct {
	Deleted int `json:"deleted"`
}
