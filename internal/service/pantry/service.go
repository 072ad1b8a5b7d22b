package pantry

import (
	"context"
	"errors"
	"fmt"
	"time"

	"cloud.google.com/go/civil"
	"go.uber.org/zap"

	"github.com/mamadbah2/pantry/internal/cache"
	"github.com/mamadbah2/pantry/internal/domain/models"
	"github.com/mamadbah2/pantry/internal/domain/reconcile"
	"github.com/mamadbah2/pantry/pkg/clients/pantryapi"
)

var (
	// ErrEmptySelection is returned when deleting with nothing selected.
	ErrEmptySelection = errors.New("selection is empty")
	// ErrNoView is returned when acting on a view that was never opened.
	ErrNoView = errors.New("no recipe view open")
	// ErrInvalidArguments is returned for malformed write requests.
	ErrInvalidArguments = errors.New("invalid arguments")
)

// RecipeCache caches catalog reads. *cache.RecipeCache satisfies it.
type RecipeCache interface {
	GetRecipe(ctx context.Context, id int64) (*models.Recipe, error)
	SetRecipe(ctx context.Context, recipe *models.Recipe) error
	GetTags(ctx context.Context) ([]models.Tag, error)
	SetTags(ctx context.Context, tags []models.Tag) error
}

// Service fronts the pantry backend: catalog browsing, stock writes and the
// per-user reconciled recipe views.
type Service struct {
	api      pantryapi.Client
	cache    RecipeCache
	sessions *SessionManager
	loc      *time.Location
	now      func() time.Time
	logger   *zap.Logger
}

// NewService wires a pantry service. A nil cache disables caching and a nil
// location means UTC.
func NewService(api pantryapi.Client, recipeCache RecipeCache, loc *time.Location, logger *zap.Logger) *Service {
	if logger == nil {
		logger = zap.NewNop()
	}
	if loc == nil {
		loc = time.UTC
	}
	if recipeCache == nil {
		recipeCache = (*cache.RecipeCache)(nil)
	}
	return &Service{
		api:      api,
		cache:    recipeCache,
		sessions: NewSessionManager(),
		loc:      loc,
		now:      time.Now,
		logger:   logger,
	}
}

// Today is the current calendar date in the configured time zone.
func (s *Service) Today() civil.Date {
	return civil.DateOf(s.now().In(s.loc))
}

// ListRecipes returns one page of the recipe catalog.
func (s *Service) ListRecipes(ctx context.Context, q models.RecipeQuery) (*models.RecipePage, error) {
	return s.api.ListRecipes(ctx, q)
}

// Recommendations returns the backend's recipe recommendations for the household stock.
func (s *Service) Recommendations(ctx context.Context) ([]models.Recipe, error) {
	return s.api.Recommendations(ctx)
}

// GetRecipe reads a recipe through the cache.
func (s *Service) GetRecipe(ctx context.Context, id int64) (*models.Recipe, error) {
	if recipe, err := s.cache.GetRecipe(ctx, id); err == nil {
		return recipe, nil
	} else if !errors.Is(err, cache.ErrMiss) {
		s.logger.Warn("recipe cache read failed", zap.Int64("recipe_id", id), zap.Error(err))
	}

	recipe, err := s.api.GetRecipe(ctx, id)
	if err != nil {
		return nil, err
	}

	if err := s.cache.SetRecipe(ctx, recipe); err != nil {
		s.logger.Warn("recipe cache write failed", zap.Int64("recipe_id", id), zap.Error(err))
	}
	return recipe, nil
}

// ListTags reads the tag list through the cache.
func (s *Service) ListTags(ctx context.Context) ([]models.Tag, error) {
	if tags, err := s.cache.GetTags(ctx); err == nil {
		return tags, nil
	}

	tags, err := s.api.ListTags(ctx)
	if err != nil {
		return nil, err
	}
	if err := s.cache.SetTags(ctx, tags); err != nil {
		s.logger.Warn("tag cache write failed", zap.Error(err))
	}
	return tags, nil
}

// OpenRecipe points the user's view at a recipe and reconciles it. Stock is
// loaded lazily the first time a view needs it. Load failures are recorded
// on the view instead of being returned.
func (s *Service) OpenRecipe(ctx context.Context, userID string, recipeID int64) ViewState {
	view := s.sessions.Get(userID)

	recipeTicket := view.beginRecipeLoad(recipeID)
	var stockTicket uint64
	loadStocks := view.needsStocks()
	if loadStocks {
		stockTicket = view.beginStockLoad()
	}

	recipe, err := s.GetRecipe(ctx, recipeID)
	if err != nil {
		s.logger.Warn("recipe load failed", zap.String("user_id", userID), zap.Int64("recipe_id", recipeID), zap.Error(err))
	}
	if !view.finishRecipeLoad(recipeTicket, recipe, err) {
		s.logger.Debug("dropped stale recipe load", zap.String("user_id", userID), zap.Int64("recipe_id", recipeID))
	}

	if loadStocks {
		s.applyStockLoad(ctx, userID, view, stockTicket)
	}

	return view.read(s.Today())
}

// View returns the user's current view state.
func (s *Service) View(userID string) ViewState {
	return s.sessions.Get(userID).read(s.Today())
}

// ReloadStocks refetches the stock set of the user's view and reconciles it.
func (s *Service) ReloadStocks(ctx context.Context, userID string) ViewState {
	view := s.sessions.Get(userID)
	s.applyStockLoad(ctx, userID, view, view.beginStockLoad())
	return view.read(s.Today())
}

func (s *Service) applyStockLoad(ctx context.Context, userID string, view *View, ticket uint64) {
	stocks, err := s.api.ListStocks(ctx)
	if err != nil {
		s.logger.Warn("stock load failed", zap.String("user_id", userID), zap.Error(err))
	}
	if !view.finishStockLoad(ticket, stocks, err) {
		s.logger.Debug("dropped stale stock load", zap.String("user_id", userID), zap.Uint64("ticket", ticket))
	}
}

// reloadIfOpen refreshes the user's view after a stock write, when one exists.
func (s *Service) reloadIfOpen(ctx context.Context, userID string) {
	if view, ok := s.sessions.Lookup(userID); ok {
		s.applyStockLoad(ctx, userID, view, view.beginStockLoad())
	}
}

// Select marks a visible stock row for bulk deletion.
func (s *Service) Select(userID string, stockID int64) (ViewState, error) {
	view, ok := s.sessions.Lookup(userID)
	if !ok {
		return ViewState{}, ErrNoView
	}
	if err := view.selectStock(stockID); err != nil {
		return view.read(s.Today()), err
	}
	return view.read(s.Today()), nil
}

// Deselect removes a stock row from the selection.
func (s *Service) Deselect(userID string, stockID int64) (ViewState, error) {
	view, ok := s.sessions.Lookup(userID)
	if !ok {
		return ViewState{}, ErrNoView
	}
	view.deselectStock(stockID)
	return view.read(s.Today()), nil
}

// ClearSelection empties the user's selection.
func (s *Service) ClearSelection(userID string) (ViewState, error) {
	view, ok := s.sessions.Lookup(userID)
	if !ok {
		return ViewState{}, ErrNoView
	}
	view.clearSelection()
	return view.read(s.Today()), nil
}

// DeleteSelection removes every selected stock row in one backend call and
// reloads the view. On failure the view is left unchanged.
func (s *Service) DeleteSelection(ctx context.Context, userID string) (int, ViewState, error) {
	view, ok := s.sessions.Lookup(userID)
	if !ok {
		return 0, ViewState{}, ErrNoView
	}

	ids := view.selection()
	if len(ids) == 0 {
		return 0, view.read(s.Today()), ErrEmptySelection
	}

	resp, err := s.api.BulkDeleteStocks(ctx, ids)
	if err != nil {
		return 0, view.read(s.Today()), fmt.Errorf("delete selection: %w", err)
	}

	deleted := resp.Deleted
	if deleted == 0 {
		deleted = len(ids)
	}
	s.logger.Info("selection deleted", zap.String("user_id", userID), zap.Int64s("stock_ids", ids), zap.Int("deleted", deleted))

	s.applyStockLoad(ctx, userID, view, view.beginStockLoad())
	return deleted, view.read(s.Today()), nil
}

// ListStocks returns the household stock classified against today.
func (s *Service) ListStocks(ctx context.Context) ([]StockView, error) {
	stocks, err := s.api.ListStocks(ctx)
	if err != nil {
		return nil, err
	}

	today := s.Today()
	views := make([]StockView, 0, len(stocks))
	for _, stock := range stocks {
		views = append(views, classifyStock(today, stock))
	}
	return views, nil
}

// ListIngredients returns the ingredient catalog.
func (s *Service) ListIngredients(ctx context.Context) ([]models.IngredientRef, error) {
	return s.api.ListIngredients(ctx)
}

// AddStock creates a stock row. A missing expiration date defaults to a week
// from today.
func (s *Service) AddStock(ctx context.Context, userID string, ingredientID int64, req models.StockWriteRequest) (*models.StockRecord, error) {
	if ingredientID <= 0 {
		return nil, fmt.Errorf("%w: ingredient id must be positive", ErrInvalidArguments)
	}
	if req.Quantity != nil && req.Quantity.IsNegative() {
		return nil, fmt.Errorf("%w: quantity must not be negative", ErrInvalidArguments)
	}

	req = reconcile.WithDefaultExpiration(req, s.Today())
	stock, err := s.api.AddStock(ctx, ingredientID, req)
	if err != nil {
		return nil, fmt.Errorf("add stock: %w", err)
	}

	s.reloadIfOpen(ctx, userID)
	return stock, nil
}

// UpdateStock changes the mutable fields of a stock row.
func (s *Service) UpdateStock(ctx context.Context, userID string, stockID int64, req models.StockWriteRequest) (*models.StockRecord, error) {
	if req.ExpirationDate == nil && req.Quantity == nil && req.Disable == nil {
		return nil, fmt.Errorf("%w: nothing to update", ErrInvalidArguments)
	}
	if req.Quantity != nil && req.Quantity.IsNegative() {
		return nil, fmt.Errorf("%w: quantity must not be negative", ErrInvalidArguments)
	}

	stock, err := s.api.UpdateStock(ctx, stockID, req)
	if err != nil {
		return nil, fmt.Errorf("update stock: %w", err)
	}

	s.reloadIfOpen(ctx, userID)
	return stock, nil
}

// DeleteStock removes one stock row.
func (s *Service) DeleteStock(ctx context.Context, userID string, stockID int64) error {
	if err := s.api.DeleteStock(ctx, stockID); err != nil {
		return fmt.Errorf("delete stock: %w", err)
	}

	s.reloadIfOpen(ctx, userID)
	return nil
}
