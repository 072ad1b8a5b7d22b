package cache

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mamadbah2/pantry/internal/config"
	"github.com/mamadbah2/pantry/internal/domain/models"
)

func TestDisabledCacheMissesAndIgnoresWrites(t *testing.T) {
	ctx := context.Background()
	c, err := NewRecipeCache(ctx, config.RedisConfig{}, nil)
	require.NoError(t, err)
	assert.False(t, c.Enabled())

	require.NoError(t, c.SetRecipe(ctx, &models.Recipe{ID: 1, Title: "Tom Yum"}))
	_, err = c.GetRecipe(ctx, 1)
	assert.ErrorIs(t, err, ErrMiss)

	require.NoError(t, c.SetTags(ctx, []models.Tag{{ID: 1, Name: "soup"}}))
	_, err = c.GetTags(ctx)
	assert.ErrorIs(t, err, ErrMiss)

	assert.NoError(t, c.Close())
}

func TestNilCacheIsDisabled(t *testing.T) {
	var c *RecipeCache
	assert.False(t, c.Enabled())
	_, err := c.GetRecipe(context.Background(), 1)
	assert.ErrorIs(t, err, ErrMiss)
}

func TestRecipeKey(t *testing.T) {
	assert.Equal(t, "pantry:recipe:42", recipeKey(42))
}
