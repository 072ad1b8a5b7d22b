package reconcile

import (
	"testing"
	"time"

	"cloud.google.com/go/civil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mamadbah2/pantry/internal/domain/models"
)

func stock(id int64, name string) models.StockRecord {
	return models.StockRecord{ID: id, Ingredient: &models.IngredientRef{ID: id * 10, Name: name}}
}

func req(name string) models.RecipeIngredient {
	return models.RecipeIngredient{IngredientName: name}
}

func date(t *testing.T, s string) civil.Date {
	t.Helper()
	d, err := civil.ParseDate(s)
	require.NoError(t, err)
	return d
}

func TestNormalize(t *testing.T) {
	assert.Equal(t, "milk", Normalize(" Milk "))
	assert.Equal(t, Normalize("milk"), Normalize("MILK"))
	assert.Equal(t, "", Normalize(""))
	assert.Equal(t, "", Normalize(" \t\n"))
	assert.Equal(t, Normalize("strasse"), Normalize("STRASSE"))
	assert.Equal(t, "นม", Normalize(" นม "))
	assert.Equal(t, "olive  oil", Normalize(" Olive  Oil "))

	for _, s := range []string{" Milk ", "ÉCLAIR", "Straße", "  ", "ไข่ไก่"} {
		assert.Equal(t, Normalize(s), Normalize(Normalize(s)), "idempotent for %q", s)
	}
}

func TestBuildIndex(t *testing.T) {
	stocks := []models.StockRecord{
		stock(1, "Milk"),
		{ID: 2, IngredientName: " milk"},
		stock(3, "Eggs"),
		{ID: 4},
		stock(5, "   "),
	}
	snapshot := append([]models.StockRecord(nil), stocks...)

	idx := BuildIndex(stocks)

	require.Len(t, idx, 2)
	assert.Equal(t, []int64{1, 2}, ids(idx["milk"]))
	assert.Equal(t, []int64{3}, ids(idx.Bucket("EGGS")))
	assert.Equal(t, 3, idx.Size())
	assert.Equal(t, snapshot, stocks)
}

func TestBuildIndexEmpty(t *testing.T) {
	assert.Empty(t, BuildIndex(nil))
	assert.Empty(t, BuildIndex([]models.StockRecord{}))
}

func TestBuildIndexBucketSizesSumToNamedRecords(t *testing.T) {
	names := []string{"Milk", "milk ", "", "Eggs", "  ", "Basil", "BASIL", "basil", "กะเพรา"}
	var stocks []models.StockRecord
	named := 0
	for i, n := range names {
		stocks = append(stocks, stock(int64(i+1), n))
		if Normalize(n) != "" {
			named++
		}
	}

	idx := BuildIndex(stocks)

	assert.Equal(t, named, idx.Size())
	seen := map[int64]int{}
	for _, bucket := range idx {
		for _, s := range bucket {
			seen[s.ID]++
		}
	}
	for id, n := range seen {
		assert.Equal(t, 1, n, "stock %d indexed once", id)
	}
}

func TestClassify(t *testing.T) {
	ref := date(t, "2024-04-01")

	tests := []struct {
		name   string
		exp    string
		days   int
		bucket Bucket
	}{
		{name: "same day", exp: "2024-04-01", days: 0, bucket: BucketExpired},
		{name: "past", exp: "2024-03-25", days: -7, bucket: BucketExpired},
		{name: "tomorrow", exp: "2024-04-02", days: 1, bucket: BucketExpiringSoon},
		{name: "two days", exp: "2024-04-03", days: 2, bucket: BucketExpiringSoon},
		{name: "three days", exp: "2024-04-04", days: 3, bucket: BucketExpiringSoon},
		{name: "four days", exp: "2024-04-05", days: 4, bucket: BucketFresh},
		{name: "nine days", exp: "2024-04-10", days: 9, bucket: BucketFresh},
		{name: "across year", exp: "2025-04-01", days: 365, bucket: BucketFresh},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			exp := date(t, tt.exp)
			u := Classify(ref, &exp)
			require.NotNil(t, u.DaysRemaining)
			assert.Equal(t, tt.days, *u.DaysRemaining)
			assert.Equal(t, tt.bucket, u.Bucket)
		})
	}

	u := Classify(ref, nil)
	assert.Equal(t, BucketUnknown, u.Bucket)
	assert.Nil(t, u.DaysRemaining)
}

func TestClassifyTimeIgnoresTimeOfDay(t *testing.T) {
	loc := time.FixedZone("ICT", 7*60*60)
	ref := time.Date(2024, 4, 1, 23, 59, 0, 0, loc)
	exp := time.Date(2024, 4, 3, 0, 1, 0, 0, loc)

	u := ClassifyTime(ref, &exp)
	require.NotNil(t, u.DaysRemaining)
	assert.Equal(t, 2, *u.DaysRemaining)
	assert.Equal(t, BucketExpiringSoon, u.Bucket)

	assert.Equal(t, BucketUnknown, ClassifyTime(ref, nil).Bucket)
}

func TestPolicy(t *testing.T) {
	ref := date(t, "2024-04-01")
	assert.Equal(t, "2024-04-08", DefaultExpiration(ref).String())

	filled := WithDefaultExpiration(models.StockWriteRequest{}, ref)
	require.NotNil(t, filled.ExpirationDate)
	assert.Equal(t, "2024-04-08", filled.ExpirationDate.String())

	given := date(t, "2024-05-01")
	kept := WithDefaultExpiration(models.StockWriteRequest{ExpirationDate: &given}, ref)
	assert.Equal(t, "2024-05-01", kept.ExpirationDate.String())

	expired := date(t, "2024-03-31")
	assert.True(t, ShouldDisable(Classify(ref, &expired)))
	assert.False(t, ShouldDisable(Classify(ref, nil)))

	inFour := date(t, "2024-04-05")
	inFive := date(t, "2024-04-06")
	assert.True(t, NotifyDue(Classify(ref, &inFour)))
	assert.False(t, NotifyDue(Classify(ref, &inFive)))
	assert.False(t, NotifyDue(Classify(ref, nil)))
}

func TestReconcile(t *testing.T) {
	reqs := []models.RecipeIngredient{req("Milk"), req("Eggs")}
	idx := BuildIndex([]models.StockRecord{stock(1, "milk"), stock(2, "milk")})

	res := Reconcile(reqs, idx)

	require.Len(t, res.Groups, 1)
	assert.Equal(t, "Milk", res.Groups[0].Requirement.IngredientName)
	assert.Equal(t, []int64{1, 2}, ids(res.Groups[0].Stocks))
	assert.Equal(t, []string{"milk"}, res.Owned.Keys())
	assert.True(t, res.Owned.Has("MILK"))
	assert.False(t, res.Owned.Has("Eggs"))
	assert.Equal(t, []models.RecipeIngredient{req("Eggs")}, res.Missing(reqs))
}

func TestReconcileOwnedCoversWholeIndex(t *testing.T) {
	idx := BuildIndex([]models.StockRecord{stock(1, "milk"), stock(2, "Basil")})

	res := Reconcile([]models.RecipeIngredient{req("Milk")}, idx)

	assert.Len(t, res.Groups, 1)
	assert.Equal(t, []string{"basil", "milk"}, res.Owned.Keys())
}

func TestReconcileDuplicateAndEmptyRequirements(t *testing.T) {
	sauce, garnish := "sauce", "garnish"
	reqs := []models.RecipeIngredient{
		{IngredientName: "Basil", GroupName: &sauce},
		{IngredientName: "  "},
		{IngredientName: "basil", GroupName: &garnish},
	}
	idx := BuildIndex([]models.StockRecord{stock(7, "basil"), stock(8, "BASIL")})

	res := Reconcile(reqs, idx)

	require.Len(t, res.Groups, 2)
	assert.Equal(t, "sauce", *res.Groups[0].Requirement.GroupName)
	assert.Equal(t, "garnish", *res.Groups[1].Requirement.GroupName)
	assert.Equal(t, ids(res.Groups[0].Stocks), ids(res.Groups[1].Stocks))
	assert.NotContains(t, res.Owned, "")
}

func TestReconcileIsDeterministic(t *testing.T) {
	reqs := []models.RecipeIngredient{req("Eggs"), req("milk"), req("Basil")}
	stocks := []models.StockRecord{stock(3, "basil"), stock(1, "milk"), stock(2, "eggs"), stock(4, "Milk")}

	first := Reconcile(reqs, BuildIndex(stocks))
	second := Reconcile(reqs, BuildIndex(stocks))

	assert.Equal(t, first, second)
	require.Len(t, first.Groups, 3)
	assert.Equal(t, []string{"eggs", "milk", "basil"}, []string{first.Groups[0].Key, first.Groups[1].Key, first.Groups[2].Key})
	assert.Equal(t, []int64{1, 4}, ids(first.Groups[1].Stocks))
}

func TestReconcileEmptyStock(t *testing.T) {
	res := Reconcile([]models.RecipeIngredient{req("Milk")}, BuildIndex(nil))
	assert.Empty(t, res.Groups)
	assert.Empty(t, res.Owned)
}

func TestSnapshotPrunesSelectionWhenIngredientDisappears(t *testing.T) {
	reqs := []models.RecipeIngredient{req("Milk")}
	snap := EmptySnapshot().Recompute(reqs, BuildIndex([]models.StockRecord{stock(1, "milk")}))

	snap, err := snap.Select(1)
	require.NoError(t, err)
	assert.Equal(t, []int64{1}, snap.Selection.IDs())

	snap = snap.Recompute(reqs, BuildIndex([]models.StockRecord{stock(9, "eggs")}))

	assert.Zero(t, snap.Selection.Len())
	assert.Empty(t, snap.Groups)
}

func TestSnapshotPrunesSelectionOnRecipeChange(t *testing.T) {
	idx := BuildIndex([]models.StockRecord{stock(1, "milk"), stock(2, "eggs")})
	snap := EmptySnapshot().Recompute([]models.RecipeIngredient{req("Milk"), req("Eggs")}, idx)
	snap, _ = snap.Select(1)
	snap, _ = snap.Select(2)

	snap = snap.Recompute([]models.RecipeIngredient{req("Eggs")}, idx)

	assert.Equal(t, []int64{2}, snap.Selection.IDs())
}

func TestSnapshotSelectRejectsInvisible(t *testing.T) {
	snap := EmptySnapshot().Recompute([]models.RecipeIngredient{req("Milk")}, BuildIndex([]models.StockRecord{stock(1, "milk"), stock(5, "salt")}))

	next, err := snap.Select(5)
	assert.ErrorIs(t, err, ErrNotVisible)
	assert.Zero(t, next.Selection.Len())

	next, err = snap.Select(1)
	require.NoError(t, err)
	assert.Zero(t, snap.Selection.Len(), "receiver unchanged")
	assert.True(t, next.Selection.Contains(1))

	assert.Zero(t, next.Deselect(1).Selection.Len())
	assert.Zero(t, next.ClearSelection().Selection.Len())
	assert.True(t, next.Selection.Contains(1))
}

func TestSelectionIsImmutable(t *testing.T) {
	base := NewSelection(3, 1)
	added := base.With(2)
	removed := base.Without(3)
	kept := base.Intersect(map[int64]struct{}{1: {}})

	assert.Equal(t, []int64{1, 3}, base.IDs())
	assert.Equal(t, []int64{1, 2, 3}, added.IDs())
	assert.Equal(t, []int64{1}, removed.IDs())
	assert.Equal(t, []int64{1}, kept.IDs())
	assert.False(t, Selection{}.Contains(1))
	assert.Empty(t, Selection{}.IDs())
}

func ids(stocks []models.StockRecord) []int64 {
	out := make([]int64, 0, len(stocks))
	for _, s := range stocks {
		out = append(out, s.ID)
	}
	return out
}
