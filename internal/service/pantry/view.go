package pantry

import (
	"sync"

	"cloud.google.com/go/civil"

	"github.com/mamadbah2/pantry/internal/domain/models"
	"github.com/mamadbah2/pantry/internal/domain/reconcile"
)

// State is the stock loading state of a recipe view.
type State string

const (
	StateIdle             State = "idle"
	StateStocksLoading    State = "stocks_loading"
	StateStocksLoaded     State = "stocks_loaded"
	StateStocksLoadFailed State = "stocks_load_failed"
)

// View is one user's recipe page: the active recipe, the last stock set and
// the reconciled snapshot derived from both. Every mutation recomputes the
// snapshot under the lock, so readers never see groups, owned names and
// selection out of step.
//
// Loads are sequenced with tickets. A load takes a ticket when it starts and
// its result is applied only if no newer load of the same input started since.
type View struct {
	mu sync.Mutex

	state     State
	recipeID  int64
	recipe    *models.Recipe
	recipeErr string
	stocks    []models.StockRecord
	stocksErr string
	snapshot  reconcile.Snapshot

	recipeTicket uint64
	stockTicket  uint64
}

func newView() *View {
	return &View{state: StateIdle, snapshot: reconcile.EmptySnapshot()}
}

// beginRecipeLoad switches the view to recipeID and returns the load ticket.
// Switching to another recipe drops the previous recipe and the selection at
// once, so nothing picked under the old recipe survives the load window.
func (v *View) beginRecipeLoad(recipeID int64) uint64 {
	v.mu.Lock()
	defer v.mu.Unlock()
	v.recipeTicket++
	if recipeID != v.recipeID {
		v.recipeID = recipeID
		v.recipe = nil
		v.recipeErr = ""
		v.snapshot = v.snapshot.ClearSelection()
		v.recompute()
	}
	return v.recipeTicket
}

// finishRecipeLoad applies a recipe load result. A failed load leaves the view
// with no requirements. It reports false when the result was stale.
func (v *View) finishRecipeLoad(ticket uint64, recipe *models.Recipe, err error) bool {
	v.mu.Lock()
	defer v.mu.Unlock()
	if ticket != v.recipeTicket {
		return false
	}

	if err != nil {
		v.recipe = nil
		v.recipeErr = err.Error()
	} else {
		v.recipe = recipe
		v.recipeErr = ""
	}
	v.recompute()
	return true
}

// needsStocks reports whether stock has never been requested for this view.
func (v *View) needsStocks() bool {
	v.mu.Lock()
	defer v.mu.Unlock()
	return v.state == StateIdle
}

func (v *View) beginStockLoad() uint64 {
	v.mu.Lock()
	defer v.mu.Unlock()
	v.stockTicket++
	v.state = StateStocksLoading
	return v.stockTicket
}

// finishStockLoad applies a stock load result. A failed load reconciles
// against an empty stock set. It reports false when the result was stale.
func (v *View) finishStockLoad(ticket uint64, stocks []models.StockRecord, err error) bool {
	v.mu.Lock()
	defer v.mu.Unlock()
	if ticket != v.stockTicket {
		return false
	}

	if err != nil {
		v.state = StateStocksLoadFailed
		v.stocks = nil
		v.stocksErr = err.Error()
	} else {
		v.state = StateStocksLoaded
		v.stocks = stocks
		v.stocksErr = ""
	}
	v.recompute()
	return true
}

func (v *View) recompute() {
	var reqs []models.RecipeIngredient
	if v.recipe != nil {
		reqs = v.recipe.Ingredients
	}
	v.snapshot = v.snapshot.Recompute(reqs, reconcile.BuildIndex(v.stocks))
}

func (v *View) selectStock(id int64) error {
	v.mu.Lock()
	defer v.mu.Unlock()
	next, err := v.snapshot.Select(id)
	if err != nil {
		return err
	}
	v.snapshot = next
	return nil
}

func (v *View) deselectStock(id int64) {
	v.mu.Lock()
	defer v.mu.Unlock()
	v.snapshot = v.snapshot.Deselect(id)
}

func (v *View) clearSelection() {
	v.mu.Lock()
	defer v.mu.Unlock()
	v.snapshot = v.snapshot.ClearSelection()
}

func (v *View) selection() []int64 {
	v.mu.Lock()
	defer v.mu.Unlock()
	return v.snapshot.Selection.IDs()
}

func (v *View) activeRecipeID() int64 {
	v.mu.Lock()
	defer v.mu.Unlock()
	return v.recipeID
}

// ViewState is the read model of a View.
type ViewState struct {
	State       State                     `json:"state"`
	RecipeID    int64                     `json:"recipe_id"`
	Recipe      *models.Recipe            `json:"recipe,omitempty"`
	RecipeError string                    `json:"recipe_error,omitempty"`
	StocksError string                    `json:"stocks_error,omitempty"`
	Groups      []GroupView               `json:"groups"`
	Missing     []models.RecipeIngredient `json:"missing"`
	Owned       []string                  `json:"owned"`
	Selection   []int64                   `json:"selection"`
}

// GroupView is a reconciled group with every stock row classified.
type GroupView struct {
	Requirement models.RecipeIngredient `json:"requirement"`
	Stocks      []StockView             `json:"stocks"`
}

// StockView is a stock row together with its expiration urgency.
type StockView struct {
	models.StockRecord
	Urgency reconcile.Urgency `json:"urgency"`
}

func classifyStock(today civil.Date, s models.StockRecord) StockView {
	return StockView{StockRecord: s, Urgency: reconcile.Classify(today, s.ExpirationDate)}
}

// read renders the view as of today.
func (v *View) read(today civil.Date) ViewState {
	v.mu.Lock()
	defer v.mu.Unlock()

	state := ViewState{
		State:       v.state,
		RecipeID:    v.recipeID,
		Recipe:      v.recipe,
		RecipeError: v.recipeErr,
		StocksError: v.stocksErr,
		Groups:      make([]GroupView, 0, len(v.snapshot.Groups)),
		Missing:     []models.RecipeIngredient{},
		Owned:       v.snapshot.Owned.Keys(),
		Selection:   v.snapshot.Selection.IDs(),
	}

	for _, g := range v.snapshot.Groups {
		gv := GroupView{Requirement: g.Requirement, Stocks: make([]StockView, 0, len(g.Stocks))}
		for _, s := range g.Stocks {
			gv.Stocks = append(gv.Stocks, classifyStock(today, s))
		}
		state.Groups = append(state.Groups, gv)
	}

	if v.recipe != nil {
		if missing := v.snapshot.Missing(v.recipe.Ingredients); missing != nil {
			state.Missing = missing
		}
	}

	return state
}
