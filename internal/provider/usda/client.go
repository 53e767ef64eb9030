package usda

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"
)

const defaultBaseURL = "https://api.nal.usda.gov"

// Food is one FoodData Central search hit. Calories are per serving for
// branded foods and per 100 g otherwise.
type Food struct {
	FDCID       int64
	Description string
	Brand       string
	GTINUPC     string
	ServingSize float64
	ServingUnit string
	Calories    float64
}

type Client struct {
	APIKey     string
	BaseURL    string
	HTTPClient *http.Client
}

func (c *Client) Search(ctx context.Context, query string, limit int) ([]Food, error) {
	if strings.TrimSpace(c.APIKey) == "" {
		return nil, fmt.Errorf("missing USDA API key")
	}
	query = strings.TrimSpace(query)
	if query == "" {
		return nil, fmt.Errorf("search query is required")
	}
	if limit <= 0 {
		limit = 10
	}
	baseURL := strings.TrimRight(strings.TrimSpace(c.BaseURL), "/")
	if baseURL == "" {
		baseURL = defaultBaseURL
	}
	httpClient := c.HTTPClient
	if httpClient == nil {
		httpClient = &http.Client{Timeout: 12 * time.Second}
	}

	payload, err := json.Marshal(map[string]any{
		"query":    query,
		"pageSize": limit,
	})
	if err != nil {
		return nil, fmt.Errorf("marshal USDA search payload: %w", err)
	}
	endpoint := fmt.Sprintf("%s/fdc/v1/foods/search?api_key=%s", baseURL, url.QueryEscape(c.APIKey))
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, endpoint, bytes.NewReader(payload))
	if err != nil {
		return nil, fmt.Errorf("create USDA request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("execute USDA request: %w", err)
	}
	defer resp.Body.Close()
	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("read USDA response: %w", err)
	}
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return nil, fmt.Errorf("USDA request failed with status %d", resp.StatusCode)
	}

	var parsed searchResponse
	if err := json.Unmarshal(body, &parsed); err != nil {
		return nil, fmt.Errorf("decode USDA response: %w", err)
	}
	out := make([]Food, 0, len(parsed.Foods))
	for _, f := range parsed.Foods {
		out = append(out, f.toFood())
	}
	return out, nil
}

// LookupBarcode searches branded foods and prefers an exact GTIN match.
func (c *Client) LookupBarcode(ctx context.Context, barcode string) (Food, error) {
	barcode = strings.TrimSpace(barcode)
	foods, err := c.Search(ctx, barcode, 20)
	if err != nil {
		return Food{}, err
	}
	for _, f := range foods {
		if strings.TrimLeft(f.GTINUPC, "0") == strings.TrimLeft(barcode, "0") {
			return f, nil
		}
	}
	return Food{}, fmt.Errorf("no USDA branded food found for barcode %q", barcode)
}

func (f usdaFood) toFood() Food {
	out := Food{
		FDCID:       f.FDCID,
		Description: strings.TrimSpace(f.Description),
		Brand:       strings.TrimSpace(f.BrandOwner),
		GTINUPC:     strings.TrimSpace(f.GTINUPC),
		ServingSize: f.ServingSize,
		ServingUnit: strings.ToLower(strings.TrimSpace(f.ServingSizeUnit)),
	}
	for _, n := range f.FoodNutrients {
		name := strings.ToLower(strings.TrimSpace(n.NutrientName))
		unit := strings.ToLower(strings.TrimSpace(n.UnitName))
		if name == "energy" && (unit == "" || unit == "kcal") {
			out.Calories = n.Value
			break
		}
	}
	return out
}

type searchResponse struct {
	Foods []usdaFood `json:"foods"`
}

type usdaFood struct {
	FDCID           int64          `json:"fdcId"`
	Description     string         `json:"description"`
	BrandOwner      string         `json:"brandOwner"`
	GTINUPC         string         `json:"gtinUpc"`
	ServingSize     float64        `json:"servingSize"`
	ServingSizeUnit string         `json:"servingSizeUnit"`
	FoodNutrients   []usdaNutrient `json:"foodNutrients"`
}

type usdaNutrient struct {
	NutrientName string  `json:"nutrientName"`
	UnitName     string  `json:"unitName"`
	Value        float64 `json:"value"`
}
