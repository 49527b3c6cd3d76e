package recipe

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"

	"produce-vision/internal/domain/entity"
	"produce-vision/internal/domain/port"
)

const DefaultBaseURL = "https://api.spoonacular.com/recipes/complexSearch"

// SpoonacularClient ищет рецепты по названию продукта.
type SpoonacularClient struct {
	baseURL string
	apiKey  string
	client  *http.Client
}

type complexSearchResponse struct {
	Results []struct {
		Title string `json:"title"`
	} `json:"results"`
}

// NewSpoonacularClient создаёт клиента. Пустой baseURL заменяется на DefaultBaseURL.
func NewSpoonacularClient(baseURL, apiKey string, client *http.Client) *SpoonacularClient {
	if baseURL == "" {
		baseURL = DefaultBaseURL
	}
	if client == nil {
		client = http.DefaultClient
	}

	return &SpoonacularClient{
		baseURL: baseURL,
		apiKey:  apiKey,
		client:  client,
	}
}

// Search возвращает до пяти названий в порядке ответа API.
// Пустой результат даёт список-заглушку без ошибки.
func (c *SpoonacularClient) Search(ctx context.Context, food string) (entity.RecipeList, error) {
	params := url.Values{}
	params.Set("query", food)
	params.Set("apiKey", c.apiKey)
	params.Set("number", strconv.Itoa(entity.MaxRecipes))

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+"?"+params.Encode(), nil)
	if err != nil {
		return nil, fmt.Errorf("failed to create recipe request: %w", err)
	}

	resp, err := c.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("failed to call recipe API: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("recipe API error %d", resp.StatusCode)
	}

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("failed to read recipe response: %w", err)
	}

	var sr complexSearchResponse
	if err := json.Unmarshal(body, &sr); err != nil {
		return nil, fmt.Errorf("failed to parse recipe JSON: %w", err)
	}
	if len(sr.Results) == 0 {
		return entity.NoRecipes(), nil
	}

	n := min(len(sr.Results), entity.MaxRecipes)
	titles := make(entity.RecipeList, 0, n)
	for _, r := range sr.Results[:n] {
		titles = append(titles, r.Title)
	}

	return titles, nil
}

// Проверка реализации интерфейса
var _ port.RecipeSource = (*SpoonacularClient)(nil)
