package nutrition

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

const DefaultBaseURL = "https://api.nal.usda.gov/fdc/v1/foods/search"

// USDAClient ищет пищевую ценность в FoodData Central.
type USDAClient struct {
	baseURL string
	apiKey  string
	client  *http.Client
}

type searchResponse struct {
	Foods []struct {
		FoodNutrients []struct {
			NutrientName string  `json:"nutrientName"`
			Value        float64 `json:"value"`
		} `json:"foodNutrients"`
	} `json:"foods"`
}

// NewUSDAClient создаёт клиента. Пустой baseURL заменяется на DefaultBaseURL.
func NewUSDAClient(baseURL, apiKey string, client *http.Client) *USDAClient {
	if baseURL == "" {
		baseURL = DefaultBaseURL
	}
	if client == nil {
		client = http.DefaultClient
	}

	return &USDAClient{
		baseURL: baseURL,
		apiKey:  apiKey,
		client:  client,
	}
}

// Lookup запрашивает лучший совпадающий продукт и берёт первые пять нутриентов.
func (c *USDAClient) Lookup(ctx context.Context, food string) (entity.NutritionRecord, error) {
	params := url.Values{}
	params.Set("query", food)
	params.Set("api_key", c.apiKey)
	params.Set("pageSize", "1")

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+"?"+params.Encode(), nil)
	if err != nil {
		return nil, fmt.Errorf("%w: create request: %v", entity.ErrNoNutritionData, err)
	}

	resp, err := c.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("%w: call nutrition API: %v", entity.ErrNoNutritionData, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("%w: nutrition API status %d", entity.ErrNoNutritionData, resp.StatusCode)
	}

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("%w: read response: %v", entity.ErrNoNutritionData, err)
	}

	var sr searchResponse
	if err := json.Unmarshal(body, &sr); err != nil {
		return nil, fmt.Errorf("%w: parse response: %v", entity.ErrNoNutritionData, err)
	}
	if len(sr.Foods) == 0 {
		return nil, fmt.Errorf("%w: no foods match %s", entity.ErrNoNutritionData, strconv.Quote(food))
	}

	nutrients := sr.Foods[0].FoodNutrients
	if len(nutrients) > entity.MaxNutrients {
		nutrients = nutrients[:entity.MaxNutrients]
	}

	// Повторное имя остаётся на первой позиции и получает последнее значение.
	record := make(entity.NutritionRecord, 0, len(nutrients))
	positions := make(map[string]int, len(nutrients))
	for _, n := range nutrients {
		if i, ok := positions[n.NutrientName]; ok {
			record[i].Value = n.Value
			continue
		}
		positions[n.NutrientName] = len(record)
		record = append(record, entity.Nutrient{Name: n.NutrientName, Value: n.Value})
	}

	return record, nil
}

// Проверка реализации интерфейса
var _ port.NutritionSource = (*USDAClient)(nil)
