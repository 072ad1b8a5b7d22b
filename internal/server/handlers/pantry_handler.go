package handlers

import (
	"context"
	"net/http"
	"strconv"

	"cloud.google.com/go/civil"
	"github.com/gin-gonic/gin"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"

	"github.com/mamadbah2/pantry/internal/domain/models"
	"github.com/mamadbah2/pantry/internal/server/middleware"
	"github.com/mamadbah2/pantry/internal/service/pantry"
)

// PantryService is what the pantry routes need. *pantry.Service satisfies it.
type PantryService interface {
	ListRecipes(ctx context.Context, q models.RecipeQuery) (*models.RecipePage, error)
	Recommendations(ctx context.Context) ([]models.Recipe, error)
	GetRecipe(ctx context.Context, id int64) (*models.Recipe, error)
	ListTags(ctx context.Context) ([]models.Tag, error)
	ListIngredients(ctx context.Context) ([]models.IngredientRef, error)

	OpenRecipe(ctx context.Context, userID string, recipeID int64) pantry.ViewState
	View(userID string) pantry.ViewState
	ReloadStocks(ctx context.Context, userID string) pantry.ViewState
	Select(userID string, stockID int64) (pantry.ViewState, error)
	Deselect(userID string, stockID int64) (pantry.ViewState, error)
	ClearSelection(userID string) (pantry.ViewState, error)
	DeleteSelection(ctx context.Context, userID string) (int, pantry.ViewState, error)

	ListStocks(ctx context.Context) ([]pantry.StockView, error)
	AddStock(ctx context.Context, userID string, ingredientID int64, req models.StockWriteRequest) (*models.StockRecord, error)
	UpdateStock(ctx context.Context, userID string, stockID int64, req models.StockWriteRequest) (*models.StockRecord, error)
	DeleteStock(ctx context.Context, userID string, stockID int64) error
}

// PantryHandler serves the recipe catalog, stock and recipe view routes.
type PantryHandler struct {
	svc    PantryService
	logger *zap.Logger
}

// NewPantryHandler constructs the HTTP handler adapter.
func NewPantryHandler(svc PantryService, logger *zap.Logger) *PantryHandler {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &PantryHandler{svc: svc, logger: logger}
}

// ListRecipes handles GET /recipes?search=&tag=&page=.
func (h *PantryHandler) ListRecipes(c *gin.Context) {
	q := models.RecipeQuery{Search: c.Query("search"), Tag: c.Query("tag")}
	if raw := c.Query("page"); raw != "" {
		page, err := strconv.Atoi(raw)
		if err != nil || page < 1 {
			badRequest(c, "invalid page")
			return
		}
		q.Page = page
	}

	page, err := h.svc.ListRecipes(c.Request.Context(), q)
	if err != nil {
		respondError(c, h.logger, "list recipes failed", err)
		return
	}
	c.JSON(http.StatusOK, page)
}

// Recommendations handles GET /recipes/recommendations.
func (h *PantryHandler) Recommendations(c *gin.Context) {
	recipes, err := h.svc.Recommendations(c.Request.Context())
	if err != nil {
		respondError(c, h.logger, "recommendations failed", err)
		return
	}
	c.JSON(http.StatusOK, recipes)
}

// GetRecipe handles GET /recipes/:id.
func (h *PantryHandler) GetRecipe(c *gin.Context) {
	id, ok := paramID(c, "id")
	if !ok {
		return
	}

	recipe, err := h.svc.GetRecipe(c.Request.Context(), id)
	if err != nil {
		respondError(c, h.logger, "get recipe failed", err)
		return
	}
	c.JSON(http.StatusOK, recipe)
}

// ListTags handles GET /tags.
func (h *PantryHandler) ListTags(c *gin.Context) {
	tags, err := h.svc.ListTags(c.Request.Context())
	if err != nil {
		respondError(c, h.logger, "list tags failed", err)
		return
	}
	c.JSON(http.StatusOK, tags)
}

// ListIngredients handles GET /ingredients.
func (h *PantryHandler) ListIngredients(c *gin.Context) {
	ingredients, err := h.svc.ListIngredients(c.Request.Context())
	if err != nil {
		respondError(c, h.logger, "list ingredients failed", err)
		return
	}
	c.JSON(http.StatusOK, ingredients)
}

// ListStocks handles GET /stocks.
func (h *PantryHandler) ListStocks(c *gin.Context) {
	stocks, err := h.svc.ListStocks(c.Request.Context())
	if err != nil {
		respondError(c, h.logger, "list stocks failed", err)
		return
	}
	c.JSON(http.StatusOK, stocks)
}

type stockBody struct {
	IngredientID   int64            `json:"ingredient_id"`
	Quantity       *decimal.Decimal `json:"quantity"`
	ExpirationDate *civil.Date      `json:"expiration_date"`
	Disable        *bool            `json:"disable"`
}

func (b stockBody) writeRequest() models.StockWriteRequest {
	return models.StockWriteRequest{ExpirationDate: b.ExpirationDate, Quantity: b.Quantity, Disable: b.Disable}
}

// AddStock handles POST /stocks.
func (h *PantryHandler) AddStock(c *gin.Context) {
	var body stockBody
	if err := c.ShouldBindJSON(&body); err != nil {
		badRequest(c, "invalid request body")
		return
	}

	stock, err := h.svc.AddStock(c.Request.Context(), middleware.UserID(c), body.IngredientID, body.writeRequest())
	if err != nil {
		respondError(c, h.logger, "add stock failed", err)
		return
	}
	c.JSON(http.StatusCreated, stock)
}

// UpdateStock handles PATCH /stocks/:id.
func (h *PantryHandler) UpdateStock(c *gin.Context) {
	id, ok := paramID(c, "id")
	if !ok {
		return
	}

	var body stockBody
	if err := c.ShouldBindJSON(&body); err != nil {
		badRequest(c, "invalid request body")
		return
	}

	stock, err := h.svc.UpdateStock(c.Request.Context(), middleware.UserID(c), id, body.writeRequest())
	if err != nil {
		respondError(c, h.logger, "update stock failed", err)
		return
	}
	c.JSON(http.StatusOK, stock)
}

// DeleteStock handles DELETE /stocks/:id.
func (h *PantryHandler) DeleteStock(c *gin.Context) {
	id, ok := paramID(c, "id")
	if !ok {
		return
	}

	if err := h.svc.DeleteStock(c.Request.Context(), middleware.UserID(c), id); err != nil {
		respondError(c, h.logger, "delete stock failed", err)
		return
	}
	c.Status(http.StatusNoContent)
}

// GetView handles GET /view.
func (h *PantryHandler) GetView(c *gin.Context) {
	c.JSON(http.StatusOK, h.svc.View(middleware.UserID(c)))
}

type openRecipeBody struct {
	RecipeID int64 `json:"recipe_id" binding:"required"`
}

// OpenRecipe handles PUT /view/recipe. Load failures are reported inside the
// returned view, never as an error status.
func (h *PantryHandler) OpenRecipe(c *gin.Context) {
	var body openRecipeBody
	if err := c.ShouldBindJSON(&body); err != nil || body.RecipeID <= 0 {
		badRequest(c, "recipe_id is required")
		return
	}

	c.JSON(http.StatusOK, h.svc.OpenRecipe(c.Request.Context(), middleware.UserID(c), body.RecipeID))
}

// ReloadStocks handles POST /view/reload.
func (h *PantryHandler) ReloadStocks(c *gin.Context) {
	c.JSON(http.StatusOK, h.svc.ReloadStocks(c.Request.Context(), middleware.UserID(c)))
}

// Select handles POST /view/selection/:stockID.
func (h *PantryHandler) Select(c *gin.Context) {
	id, ok := paramID(c, "stockID")
	if !ok {
		return
	}

	state, err := h.svc.Select(middleware.UserID(c), id)
	if err != nil {
		respondError(c, h.logger, "select failed", err)
		return
	}
	c.JSON(http.StatusOK, state)
}

// Deselect handles DELETE /view/selection/:stockID.
func (h *PantryHandler) Deselect(c *gin.Context) {
	id, ok := paramID(c, "stockID")
	if !ok {
		return
	}

	state, err := h.svc.Deselect(middleware.UserID(c), id)
	if err != nil {
		respondError(c, h.logger, "deselect failed", err)
		return
	}
	c.JSON(http.StatusOK, state)
}

// ClearSelection handles DELETE /view/selection.
func (h *PantryHandler) ClearSelection(c *gin.Context) {
	state, err := h.svc.ClearSelection(middleware.UserID(c))
	if err != nil {
		respondError(c, h.logger, "clear selection failed", err)
		return
	}
	c.JSON(http.StatusOK, state)
}

// DeleteSelection handles POST /view/delete-selected.
func (h *PantryHandler) DeleteSelection(c *gin.Context) {
	deleted, state, err := h.svc.DeleteSelection(c.Request.Context(), middleware.UserID(c))
	if err != nil {
		respondError(c, h.logger, "delete selection failed", err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"deleted": deleted, "view": state})
}
