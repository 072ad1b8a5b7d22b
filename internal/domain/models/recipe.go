package models

import "time"

// Tag labels recipes in the catalog.
type Tag struct {
	ID         int64   `json:"id"`
	ExternalID *int64  `json:"external_id,omitempty"`
	Name       string  `json:"name"`
	Slug       *string `json:"slug,omitempty"`
	Taxonomy   *string `json:"taxonomy,omitempty"`
}

// RecipeIngredient is one requirement line of a recipe. It has no identity
// beyond its position in the recipe's ingredient list.
type RecipeIngredient struct {
	IngredientName   string  `json:"ingredient_name"`
	RequiredQuantity *string `json:"required_quantity"`
	RequiredUnit     *string `json:"required_unit"`
	GroupName        *string `json:"group_name"`
}

// Recipe is the recipe detail object served by the pantry API. The
// recommendation fields are only populated by the recommendations endpoint.
type Recipe struct {
	ID           int64              `json:"id"`
	ExternalID   *int64             `json:"external_id,omitempty"`
	Title        string             `json:"title"`
	ShortDetail  *string            `json:"short_detail,omitempty"`
	Instructions *string            `json:"instructions,omitempty"`
	Servings     *int               `json:"servings,omitempty"`
	Level        *int               `json:"level,omitempty"`
	CreatedAt    *time.Time         `json:"created_at,omitempty"`
	Tags         []Tag              `json:"tags"`
	Ingredients  []RecipeIngredient `json:"ingredients"`

	MissingIngredientCount     *int     `json:"missing_ingredient_count,omitempty"`
	MatchPercentage            *float64 `json:"match_percentage,omitempty"`
	MissingIngredients         []string `json:"missing_ingredients,omitempty"`
	TotalConsideredIngredients *int     `json:"total_considered_ingredients,omitempty"`
	MatchedIngredients         *int     `json:"matched_ingredients,omitempty"`
}

// RecipePage is one page of the recipe catalog.
type RecipePage struct {
	Count    int      `json:"count"`
	Next     *string  `json:"next"`
	Previous *string  `json:"previous"`
	Results  []Recipe `json:"results"`
}

// RecipeQuery filters the recipe catalog.
type RecipeQuery struct {
	Search string
	Tag    string
	Page   int
}
