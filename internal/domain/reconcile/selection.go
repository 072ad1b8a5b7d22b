package reconcile

import (
	"errors"
	"sort"

	"github.com/mamadbah2/pantry/internal/domain/models"
)

// ErrNotVisible is returned when selecting a stock row that no group shows.
var ErrNotVisible = errors.New("stock row not visible")

// Selection is an immutable set of stock-row ids picked for bulk deletion.
// Every method returns a new Selection and leaves the receiver untouched.
type Selection struct {
	ids map[int64]struct{}
}

// NewSelection builds a selection from ids.
func NewSelection(ids ...int64) Selection {
	s := Selection{ids: make(map[int64]struct{}, len(ids))}
	for _, id := range ids {
		s.ids[id] = struct{}{}
	}
	return s
}

func (s Selection) clone() Selection {
	c := Selection{ids: make(map[int64]struct{}, len(s.ids))}
	for id := range s.ids {
		c.ids[id] = struct{}{}
	}
	return c
}

// With returns a copy of s that also contains id.
func (s Selection) With(id int64) Selection {
	c := s.clone()
	c.ids[id] = struct{}{}
	return c
}

// Without returns a copy of s that no longer contains id.
func (s Selection) Without(id int64) Selection {
	c := s.clone()
	delete(c.ids, id)
	return c
}

// Intersect keeps only the ids present in visible.
func (s Selection) Intersect(visible map[int64]struct{}) Selection {
	c := Selection{ids: make(map[int64]struct{})}
	for id := range s.ids {
		if _, ok := visible[id]; ok {
			c.ids[id] = struct{}{}
		}
	}
	return c
}

func (s Selection) Contains(id int64) bool {
	_, ok := s.ids[id]
	return ok
}

func (s Selection) Len() int { return len(s.ids) }

// IDs returns the selected ids in ascending order.
func (s Selection) IDs() []int64 {
	ids := make([]int64, 0, len(s.ids))
	for id := range s.ids {
		ids = append(ids, id)
	}
	sort.Slice(ids, func(i, j int) bool { return ids[i] < ids[j] })
	return ids
}

// Snapshot is the reconciled state of one recipe view: groups, owned names
// and the bulk-delete selection, always consistent with each other.
type Snapshot struct {
	Groups    []Group
	Owned     Owned
	Selection Selection
}

// EmptySnapshot is the state before anything was reconciled.
func EmptySnapshot() Snapshot {
	return Snapshot{Groups: []Group{}, Owned: Owned{}, Selection: NewSelection()}
}

// Recompute reconciles the requirements against idx and prunes the selection
// to the ids visible in the new groups, returning the next snapshot.
func (s Snapshot) Recompute(reqs []models.RecipeIngredient, idx Index) Snapshot {
	res := Reconcile(reqs, idx)
	return Snapshot{
		Groups:    res.Groups,
		Owned:     res.Owned,
		Selection: s.Selection.Intersect(res.VisibleIDs()),
	}
}

// Select adds a visible stock row to the selection.
func (s Snapshot) Select(id int64) (Snapshot, error) {
	if _, ok := s.visible()[id]; !ok {
		return s, ErrNotVisible
	}
	s.Selection = s.Selection.With(id)
	return s, nil
}

// Deselect drops id from the selection. Unknown ids are ignored.
func (s Snapshot) Deselect(id int64) Snapshot {
	s.Selection = s.Selection.Without(id)
	return s
}

// ClearSelection empties the selection.
func (s Snapshot) ClearSelection() Snapshot {
	s.Selection = NewSelection()
	return s
}

func (s Snapshot) visible() map[int64]struct{} {
	return Result{Groups: s.Groups}.VisibleIDs()
}

// Missing lists the requirements whose names are not owned.
func (s Snapshot) Missing(reqs []models.RecipeIngredient) []models.RecipeIngredient {
	return Result{Owned: s.Owned}.Missing(reqs)
}
