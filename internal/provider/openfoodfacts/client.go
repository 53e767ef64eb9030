package openfoodfacts

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"
)

const (
	defaultBaseURL   = "https://world.openfoodfacts.org"
	defaultUserAgent = "nutri-cli/1.0 (+https://github.com/Snape93/nutrition-sub008)"
)

// Product is the subset of an Open Food Facts product the CLI logs.
type Product struct {
	Code    string
	Name    string
	Brand   string
	Serving string
	// CaloriesPerServing is zero when the product only lists per-100g values.
	CaloriesPerServing float64
	CaloriesPer100g    float64
}

type Client struct {
	BaseURL    string
	HTTPClient *http.Client
	UserAgent  string
}

func (c *Client) LookupBarcode(ctx context.Context, barcode string) (Product, []byte, error) {
	barcode = strings.TrimSpace(barcode)
	body, err := c.get(ctx, fmt.Sprintf("/api/v2/product/%s.json", url.PathEscape(barcode)))
	if err != nil {
		return Product{}, body, err
	}
	var parsed productResponse
	if err := json.Unmarshal(body, &parsed); err != nil {
		return Product{}, body, fmt.Errorf("decode openfoodfacts response: %w", err)
	}
	if parsed.Status != 1 || strings.TrimSpace(parsed.Product.ProductName) == "" {
		return Product{}, body, fmt.Errorf("no openfoodfacts product found for barcode %q", barcode)
	}
	p := parsed.Product.toProduct()
	if p.Code == "" {
		p.Code = barcode
	}
	return p, body, nil
}

func (c *Client) Search(ctx context.Context, query string, limit int) ([]Product, error) {
	query = strings.TrimSpace(query)
	if query == "" {
		return nil, fmt.Errorf("search query is required")
	}
	if limit <= 0 {
		limit = 10
	}
	path := fmt.Sprintf("/cgi/search.pl?search_terms=%s&search_simple=1&action=process&json=1&page_size=%d",
		url.QueryEscape(query), limit)
	body, err := c.get(ctx, path)
	if err != nil {
		return nil, err
	}
	var parsed searchResponse
	if err := json.Unmarshal(body, &parsed); err != nil {
		return nil, fmt.Errorf("decode openfoodfacts search response: %w", err)
	}
	out := make([]Product, 0, len(parsed.Products))
	for _, raw := range parsed.Products {
		if strings.TrimSpace(raw.ProductName) == "" {
			continue
		}
		out = append(out, raw.toProduct())
	}
	if len(out) == 0 {
		return nil, fmt.Errorf("no openfoodfacts product found for query %q", query)
	}
	return out, nil
}

func (c *Client) get(ctx context.Context, path string) ([]byte, error) {
	base := strings.TrimRight(strings.TrimSpace(c.BaseURL), "/")
	if base == "" {
		base = defaultBaseURL
	}
	httpClient := c.HTTPClient
	if httpClient == nil {
		httpClient = &http.Client{Timeout: 12 * time.Second}
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, base+path, nil)
	if err != nil {
		return nil, fmt.Errorf("create openfoodfacts request: %w", err)
	}
	ua := c.UserAgent
	if ua == "" {
		ua = defaultUserAgent
	}
	req.Header.Set("User-Agent", ua)

	resp, err := httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("execute openfoodfacts request: %w", err)
	}
	defer resp.Body.Close()
	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("read openfoodfacts response: %w", err)
	}
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return body, fmt.Errorf("openfoodfacts request failed with status %d", resp.StatusCode)
	}
	return body, nil
}

func (p rawProduct) toProduct() Product {
	out := Product{
		Code:               strings.TrimSpace(p.Code),
		Name:               strings.TrimSpace(p.ProductName),
		Brand:              firstBrand(p.Brands),
		Serving:            servingLabel(p),
		CaloriesPerServing: numberField(p.Nutriments, "energy-kcal_serving"),
		CaloriesPer100g:    numberField(p.Nutriments, "energy-kcal_100g"),
	}
	return out
}

// firstBrand keeps the primary brand from a comma separated list.
func firstBrand(brands string) string {
	first, _, _ := strings.Cut(brands, ",")
	return strings.TrimSpace(first)
}

func servingLabel(p rawProduct) string {
	if s := strings.TrimSpace(p.ServingSize); s != "" {
		return s
	}
	if p.ServingQuantity > 0 {
		unit := strings.TrimSpace(p.ServingQuantityUnit)
		if unit == "" {
			unit = "g"
		}
		return strconv.FormatFloat(p.ServingQuantity, 'f', -1, 64) + " " + unit
	}
	return ""
}

// numberField tolerates the string and number encodings the API mixes.
func numberField(n map[string]any, key string) float64 {
	switch t := n[key].(type) {
	case float64:
		return t
	case string:
		f, err := strconv.ParseFloat(strings.TrimSpace(t), 64)
		if err == nil {
			return f
		}
	}
	return 0
}

type productResponse struct {
	Status  int        `json:"status"`
	Product rawProduct `json:"product"`
}

type rawProduct struct {
	Code                string         `json:"code"`
	ProductName         string         `json:"product_name"`
	Brands              string         `json:"brands"`
	ServingSize         string         `json:"serving_size"`
	ServingQuantity     float64        `json:"serving_quantity"`
	ServingQuantityUnit string         `json:"serving_quantity_unit"`
	Nutriments          map[string]any `json:"nutriments"`
}

type searchResponse struct {
	Products []rawProduct `json:"products"`
}
