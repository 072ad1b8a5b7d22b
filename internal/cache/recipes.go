package cache

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/go-redis/redis/v8"
	"go.uber.org/zap"

	"github.com/mamadbah2/pantry/internal/config"
	"github.com/mamadbah2/pantry/internal/domain/models"
)

// ErrMiss is returned when a key is absent or the cache is disabled.
var ErrMiss = errors.New("cache miss")

const keyPrefix = "pantry:"

// RecipeCache stores recipe details and the tag list in Redis. A RecipeCache
// built without a Redis address is disabled: reads miss and writes are no-ops.
type RecipeCache struct {
	client *redis.Client
	ttl    time.Duration
	logger *zap.Logger
}

// NewRecipeCache connects to Redis when cfg.Addr is set.
func NewRecipeCache(ctx context.Context, cfg config.RedisConfig, logger *zap.Logger) (*RecipeCache, error) {
	if logger == nil {
		logger = zap.NewNop()
	}

	c := &RecipeCache{ttl: cfg.RecipeTTL, logger: logger}
	if cfg.Addr == "" {
		logger.Info("recipe cache disabled")
		return c, nil
	}

	client := redis.NewClient(&redis.Options{
		Addr:     cfg.Addr,
		Password: cfg.Password,
		DB:       cfg.DB,
	})
	if err := client.Ping(ctx).Err(); err != nil {
		_ = client.Close()
		return nil, fmt.Errorf("connect redis: %w", err)
	}

	c.client = client
	return c, nil
}

// Enabled reports whether the cache is backed by Redis.
func (c *RecipeCache) Enabled() bool {
	return c != nil && c.client != nil
}

func recipeKey(id int64) string {
	return fmt.Sprintf("%srecipe:%d", keyPrefix, id)
}

const tagsKey = keyPrefix + "tags"

// GetRecipe returns the cached recipe or ErrMiss.
func (c *RecipeCache) GetRecipe(ctx context.Context, id int64) (*models.Recipe, error) {
	var recipe models.Recipe
	if err := c.get(ctx, recipeKey(id), &recipe); err != nil {
		return nil, err
	}
	return &recipe, nil
}

// SetRecipe stores a recipe for the configured TTL.
func (c *RecipeCache) SetRecipe(ctx context.Context, recipe *models.Recipe) error {
	if recipe == nil {
		return nil
	}
	return c.set(ctx, recipeKey(recipe.ID), recipe)
}

// GetTags returns the cached tag list or ErrMiss.
func (c *RecipeCache) GetTags(ctx context.Context) ([]models.Tag, error) {
	var tags []models.Tag
	if err := c.get(ctx, tagsKey, &tags); err != nil {
		return nil, err
	}
	return tags, nil
}

func (c *RecipeCache) SetTags(ctx context.Context, tags []models.Tag) error {
	return c.set(ctx, tagsKey, tags)
}

func (c *RecipeCache) get(ctx context.Context, key string, out any) error {
	if !c.Enabled() {
		return ErrMiss
	}

	data, err := c.client.Get(ctx, key).Bytes()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return ErrMiss
		}
		return fmt.Errorf("get cache %s: %w", key, err)
	}

	if err := json.Unmarshal(data, out); err != nil {
		c.logger.Warn("dropping corrupt cache entry", zap.String("key", key), zap.Error(err))
		_ = c.client.Del(ctx, key).Err()
		return ErrMiss
	}
	return nil
}

func (c *RecipeCache) set(ctx context.Context, key string, value any) error {
	if !c.Enabled() {
		return nil
	}

	data, err := json.Marshal(value)
	if err != nil {
		return fmt.Errorf("marshal cache %s: %w", key, err)
	}
	if err := c.client.Set(ctx, key, data, c.ttl).Err(); err != nil {
		return fmt.Errorf("set cache %s: %w", key, err)
	}
	return nil
}

// Close releases the Redis connection pool.
func (c *RecipeCache) Close() error {
	if !c.Enabled() {
		return nil
	}
	return c.client.Close()
}
