package pantryapi

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/go-resty/resty/v2"

	"github.com/mamadbah2/pantry/internal/config"
	"github.com/mamadbah2/pantry/internal/domain/models"
)

// Client exposes the pantry backend operations used by the application.
type Client interface {
	ListRecipes(ctx context.Context, q models.RecipeQuery) (*models.RecipePage, error)
	GetRecipe(ctx context.Context, id int64) (*models.Recipe, error)
	Recommendations(ctx context.Context) ([]models.Recipe, error)
	ListTags(ctx context.Context) ([]models.Tag, error)
	ListIngredients(ctx context.Context) ([]models.IngredientRef, error)

	ListStocks(ctx context.Context) ([]models.StockRecord, error)
	AddStock(ctx context.Context, ingredientID int64, req models.StockWriteRequest) (*models.StockRecord, error)
	UpdateStock(ctx context.Context, stockID int64, req models.StockWriteRequest) (*models.StockRecord, error)
	DeleteStock(ctx context.Context, stockID int64) error
	BulkDeleteStocks(ctx context.Context, stockIDs []int64) (*models.BulkDeleteResponse, error)
}

// APIError is a non-2xx reply from the pantry backend.
type APIError struct {
	StatusCode int
	Message    string
}

func (e *APIError) Error() string {
	return fmt.Sprintf("pantry api error: status=%d, message=%s", e.StatusCode, e.Message)
}

// IsNotFound reports whether err is a 404 from the pantry backend.
func IsNotFound(err error) bool {
	var apiErr *APIError
	return errors.As(err, &apiErr) && apiErr.StatusCode == http.StatusNotFound
}

type userTokenKey struct{}

// WithUserToken returns a context whose backend calls authenticate as the
// user owning token instead of the configured service account.
func WithUserToken(ctx context.Context, token string) context.Context {
	return context.WithValue(ctx, userTokenKey{}, token)
}

// UserToken returns the user token carried by ctx, if any.
func UserToken(ctx context.Context) (string, bool) {
	token, ok := ctx.Value(userTokenKey{}).(string)
	return token, ok && token != ""
}

// errorBody covers the error shapes the backend returns.
type errorBody struct {
	Detail string `json:"detail"`
	Error  string `json:"error"`
}

func (b *errorBody) message() string {
	if b == nil {
		return ""
	}
	if b.Detail != "" {
		return b.Detail
	}
	return b.Error
}

// APIClient is a resty-backed implementation of Client.
type APIClient struct {
	httpClient *resty.Client
}

// NewClient builds a pantry API client using the provided configuration values.
func NewClient(cfg config.PantryAPIConfig) *APIClient {
	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = 15 * time.Second
	}

	restyClient := resty.New()
	restyClient.
		SetBaseURL(strings.TrimSuffix(cfg.BaseURL, "/")).
		SetHeader("Authorization", fmt.Sprintf("Token %s", cfg.Token)).
		SetHeader("Content-Type", "application/json").
		SetHeader("Accept", "application/json").
		SetTimeout(timeout)

	return &APIClient{httpClient: restyClient}
}

func (c *APIClient) do(ctx context.Context, method, path string, body, result any) error {
	apiErr := new(errorBody)
	req := c.httpClient.R().
		SetContext(ctx).
		SetError(apiErr)
	if token, ok := UserToken(ctx); ok {
		req.SetAuthToken(token)
	}
	if body != nil {
		req.SetBody(body)
	}
	if result != nil {
		req.SetResult(result)
	}

	resp, err := req.Execute(method, path)
	if err != nil {
		return fmt.Errorf("%s %s: %w", strings.ToLower(method), path, err)
	}

	if resp.StatusCode() >= http.StatusBadRequest {
		message := apiErr.message()
		if message == "" {
			message = strings.TrimSpace(resp.String())
		}
		return &APIError{StatusCode: resp.StatusCode(), Message: message}
	}

	return nil
}

func (c *APIClient) ListRecipes(ctx context.Context, q models.RecipeQuery) (*models.RecipePage, error) {
	params := url.Values{}
	if q.Search != "" {
		params.Set("search", q.Search)
	}
	if q.Tag != "" {
		params.Set("tag", q.Tag)
	}
	if q.Page > 0 {
		params.Set("page", strconv.Itoa(q.Page))
	}

	path := "/recipes/"
	if len(params) > 0 {
		path += "?" + params.Encode()
	}

	page := new(models.RecipePage)
	if err := c.do(ctx, http.MethodGet, path, nil, page); err != nil {
		return nil, fmt.Errorf("list recipes: %w", err)
	}
	return page, nil
}

func (c *APIClient) GetRecipe(ctx context.Context, id int64) (*models.Recipe, error) {
	recipe := new(models.Recipe)
	if err := c.do(ctx, http.MethodGet, fmt.Sprintf("/recipes/%d/", id), nil, recipe); err != nil {
		return nil, fmt.Errorf("get recipe %d: %w", id, err)
	}
	return recipe, nil
}

func (c *APIClient) Recommendations(ctx context.Context) ([]models.Recipe, error) {
	var recipes []models.Recipe
	if err := c.do(ctx, http.MethodGet, "/recipes/recommendations/", nil, &recipes); err != nil {
		return nil, fmt.Errorf("get recommendations: %w", err)
	}
	return recipes, nil
}

func (c *APIClient) ListTags(ctx context.Context) ([]models.Tag, error) {
	var tags []models.Tag
	if err := c.do(ctx, http.MethodGet, "/tags/", nil, &tags); err != nil {
		return nil, fmt.Errorf("list tags: %w", err)
	}
	return tags, nil
}

func (c *APIClient) ListIngredients(ctx context.Context) ([]models.IngredientRef, error) {
	var ingredients []models.IngredientRef
	if err := c.do(ctx, http.MethodGet, "/ingredient/", nil, &ingredients); err != nil {
		return nil, fmt.Errorf("list ingredients: %w", err)
	}
	return ingredients, nil
}

func (c *APIClient) ListStocks(ctx context.Context) ([]models.StockRecord, error) {
	var stocks []models.StockRecord
	if err := c.do(ctx, http.MethodGet, "/user/", nil, &stocks); err != nil {
		return nil, fmt.Errorf("list stocks: %w", err)
	}
	return stocks, nil
}

func (c *APIClient) AddStock(ctx context.Context, ingredientID int64, req models.StockWriteRequest) (*models.StockRecord, error) {
	stock := new(models.StockRecord)
	if err := c.do(ctx, http.MethodPost, fmt.Sprintf("/user/%d/", ingredientID), req, stock); err != nil {
		return nil, fmt.Errorf("add stock for ingredient %d: %w", ingredientID, err)
	}
	return stock, nil
}

func (c *APIClient) UpdateStock(ctx context.Context, stockID int64, req models.StockWriteRequest) (*models.StockRecord, error) {
	stock := new(models.StockRecord)
	if err := c.do(ctx, http.MethodPatch, fmt.Sprintf("/stock/%d/", stockID), req, stock); err != nil {
		return nil, fmt.Errorf("update stock %d: %w", stockID, err)
	}
	return stock, nil
}

func (c *APIClient) DeleteStock(ctx context.Context, stockID int64) error {
	if err := c.do(ctx, http.MethodDelete, fmt.Sprintf("/stock/%d/", stockID), nil, nil); err != nil {
		return fmt.Errorf("delete stock %d: %w", stockID, err)
	}
	return nil
}

func (c *APIClient) BulkDeleteStocks(ctx context.Context, stockIDs []int64) (*models.BulkDeleteResponse, error) {
	result := new(models.BulkDeleteResponse)
	body := models.BulkDeleteRequest{StockIDs: stockIDs}
	if err := c.do(ctx, http.MethodDelete, "/user/ingredient/", body, result); err != nil {
		return nil, fmt.Errorf("bulk delete stocks: %w", err)
	}
	return result, nil
}
