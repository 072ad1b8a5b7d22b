package pantry

import (
	"context"
	"errors"
	"sync"

	"github.com/mamadbah2/pantry/internal/domain/models"
	"github.com/mamadbah2/pantry/pkg/clients/pantryapi"
)

var errUpstream = &pantryapi.APIError{StatusCode: 500, Message: "boom"}

// fakeAPI is an in-memory pantry backend.
type fakeAPI struct {
	mu sync.Mutex

	recipes     map[int64]*models.Recipe
	stocks      []models.StockRecord
	ingredients []models.IngredientRef
	nextID      int64
	recipeCalls int
	stocksCalls int
	stocksErr   error
	recipeErr   error
	writeErr    error
	added       []models.StockWriteRequest
	bulkDeleted [][]int64
}

func newFakeAPI() *fakeAPI {
	return &fakeAPI{recipes: map[int64]*models.Recipe{}, nextID: 100}
}

func (f *fakeAPI) ListRecipes(context.Context, models.RecipeQuery) (*models.RecipePage, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	page := &models.RecipePage{}
	for _, r := range f.recipes {
		page.Results = append(page.Results, *r)
	}
	page.Count = len(page.Results)
	return page, nil
}

func (f *fakeAPI) GetRecipe(_ context.Context, id int64) (*models.Recipe, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.recipeCalls++
	if f.recipeErr != nil {
		return nil, f.recipeErr
	}
	r, ok := f.recipes[id]
	if !ok {
		return nil, &pantryapi.APIError{StatusCode: 404, Message: "Not found."}
	}
	return r, nil
}

func (f *fakeAPI) Recommendations(context.Context) ([]models.Recipe, error) { return nil, nil }

func (f *fakeAPI) ListTags(context.Context) ([]models.Tag, error) {
	return []models.Tag{{ID: 1, Name: "soup"}}, nil
}

func (f *fakeAPI) ListIngredients(context.Context) ([]models.IngredientRef, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.ingredients, nil
}

func (f *fakeAPI) ListStocks(context.Context) ([]models.StockRecord, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.stocksCalls++
	if f.stocksErr != nil {
		return nil, f.stocksErr
	}
	return append([]models.StockRecord(nil), f.stocks...), nil
}

func (f *fakeAPI) AddStock(_ context.Context, ingredientID int64, req models.StockWriteRequest) (*models.StockRecord, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.writeErr != nil {
		return nil, f.writeErr
	}
	f.added = append(f.added, req)
	f.nextID++
	name := ""
	for _, ing := range f.ingredients {
		if ing.ID == ingredientID {
			name = ing.Name
		}
	}
	rec := models.StockRecord{ID: f.nextID, Ingredient: &models.IngredientRef{ID: ingredientID, Name: name}, ExpirationDate: req.ExpirationDate}
	f.stocks = append(f.stocks, rec)
	return &rec, nil
}

func (f *fakeAPI) UpdateStock(_ context.Context, stockID int64, req models.StockWriteRequest) (*models.StockRecord, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.writeErr != nil {
		return nil, f.writeErr
	}
	for i := range f.stocks {
		if f.stocks[i].ID == stockID {
			if req.ExpirationDate != nil {
				f.stocks[i].ExpirationDate = req.ExpirationDate
			}
			if req.Disable != nil {
				f.stocks[i].Disable = *req.Disable
			}
			rec := f.stocks[i]
			return &rec, nil
		}
	}
	return nil, &pantryapi.APIError{StatusCode: 404, Message: "Not found."}
}

func (f *fakeAPI) DeleteStock(_ context.Context, stockID int64) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.writeErr != nil {
		return f.writeErr
	}
	for i := range f.stocks {
		if f.stocks[i].ID == stockID {
			f.stocks = append(f.stocks[:i], f.stocks[i+1:]...)
			return nil
		}
	}
	return &pantryapi.APIError{StatusCode: 404, Message: "Not found."}
}

func (f *fakeAPI) BulkDeleteStocks(_ context.Context, ids []int64) (*models.BulkDeleteResponse, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.writeErr != nil {
		return nil, f.writeErr
	}
	f.bulkDeleted = append(f.bulkDeleted, ids)
	drop := map[int64]bool{}
	for _, id := range ids {
		drop[id] = true
	}
	kept := f.stocks[:0]
	deleted := 0
	for _, s := range f.stocks {
		if drop[s.ID] {
			deleted++
			continue
		}
		kept = append(kept, s)
	}
	f.stocks = kept
	return &models.BulkDeleteResponse{Deleted: deleted}, nil
}

var _ pantryapi.Client = (*fakeAPI)(nil)

var errCacheDown = errors.New("cache down")
