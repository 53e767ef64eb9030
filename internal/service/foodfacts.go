package service

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"regexp"
	"strings"
	"time"

	"github.com/Snape93/nutrition-sub008/internal/provider/openfoodfacts"
	"github.com/Snape93/nutrition-sub008/internal/provider/usda"
)

const (
	FoodProviderOpenFoodFacts = "openfoodfacts"
	FoodProviderUSDA          = "usda"

	DefaultLookupProviders = FoodProviderOpenFoodFacts + "," + FoodProviderUSDA
	foodFactsTTL           = 30 * 24 * time.Hour
)

var barcodePattern = regexp.MustCompile(`^\d{8,14}$`)

// FoodFacts is a calorie hint for `food add`; the backend stays the record of truth.
type FoodFacts struct {
	Provider string  `json:"provider"`
	Barcode  string  `json:"barcode,omitempty"`
	Name     string  `json:"name"`
	Brand    string  `json:"brand,omitempty"`
	Serving  string  `json:"serving,omitempty"`
	Calories float64 `json:"calories"`
	// Per100g is set when no per-serving value was published.
	Per100g     bool     `json:"per_100g,omitempty"`
	FromCache   bool     `json:"from_cache,omitempty"`
	LookupTrail []string `json:"lookup_trail,omitempty"`
}

type FoodFactsSource interface {
	Name() string
	LookupBarcode(ctx context.Context, barcode string) (FoodFacts, []byte, error)
	Search(ctx context.Context, query string, limit int) ([]FoodFacts, error)
}

type OpenFoodFactsSource struct {
	Client *openfoodfacts.Client
}

func (s OpenFoodFactsSource) Name() string { return FoodProviderOpenFoodFacts }

func (s OpenFoodFactsSource) LookupBarcode(ctx context.Context, barcode string) (FoodFacts, []byte, error) {
	p, raw, err := s.client().LookupBarcode(ctx, barcode)
	if err != nil {
		return FoodFacts{}, raw, err
	}
	return fromOpenFoodFacts(p), raw, nil
}

func (s OpenFoodFactsSource) Search(ctx context.Context, query string, limit int) ([]FoodFacts, error) {
	items, err := s.client().Search(ctx, query, limit)
	if err != nil {
		return nil, err
	}
	out := make([]FoodFacts, 0, len(items))
	for _, p := range items {
		out = append(out, fromOpenFoodFacts(p))
	}
	return out, nil
}

func (s OpenFoodFactsSource) client() *openfoodfacts.Client {
	if s.Client == nil {
		return &openfoodfacts.Client{}
	}
	return s.Client
}

func fromOpenFoodFacts(p openfoodfacts.Product) FoodFacts {
	f := FoodFacts{
		Provider: FoodProviderOpenFoodFacts,
		Barcode:  p.Code,
		Name:     p.Name,
		Brand:    p.Brand,
		Serving:  p.Serving,
		Calories: p.CaloriesPerServing,
	}
	if f.Calories <= 0 {
		f.Calories = p.CaloriesPer100g
		f.Per100g = true
		f.Serving = "100 g"
	}
	return f
}

type USDASource struct {
	Client *usda.Client
}

func (s USDASource) Name() string { return FoodProviderUSDA }

func (s USDASource) LookupBarcode(ctx context.Context, barcode string) (FoodFacts, []byte, error) {
	food, err := s.Client.LookupBarcode(ctx, barcode)
	if err != nil {
		return FoodFacts{}, nil, err
	}
	f := fromUSDA(food)
	f.Barcode = barcode
	raw, _ := json.Marshal(food)
	return f, raw, nil
}

func (s USDASource) Search(ctx context.Context, query string, limit int) ([]FoodFacts, error) {
	foods, err := s.Client.Search(ctx, query, limit)
	if err != nil {
		return nil, err
	}
	out := make([]FoodFacts, 0, len(foods))
	for _, food := range foods {
		out = append(out, fromUSDA(food))
	}
	return out, nil
}

func fromUSDA(food usda.Food) FoodFacts {
	f := FoodFacts{
		Provider: FoodProviderUSDA,
		Barcode:  food.GTINUPC,
		Name:     food.Description,
		Brand:    food.Brand,
		Calories: food.Calories,
	}
	if food.ServingSize > 0 {
		f.Serving = fmt.Sprintf("%s %s", FormatQuantity(food.ServingSize), food.ServingUnit)
	} else {
		f.Serving = "100 g"
		f.Per100g = true
	}
	return f
}

// FormatQuantity drops a trailing ".0".
func FormatQuantity(v float64) string {
	s := fmt.Sprintf("%.1f", RoundTo(v, 1))
	return strings.TrimSuffix(s, ".0")
}

func IsValidBarcode(code string) bool {
	return barcodePattern.MatchString(strings.TrimSpace(code))
}

// ParseProviderOrder validates a comma separated provider list.
func ParseProviderOrder(value string) ([]string, error) {
	parts := strings.Split(value, ",")
	out := make([]string, 0, len(parts))
	seen := map[string]bool{}
	for _, p := range parts {
		name := normalizeFoodProvider(p)
		if name == "" {
			continue
		}
		if name != FoodProviderOpenFoodFacts && name != FoodProviderUSDA {
			return nil, fmt.Errorf("unsupported lookup provider %q (use openfoodfacts or usda)", strings.TrimSpace(p))
		}
		if seen[name] {
			continue
		}
		seen[name] = true
		out = append(out, name)
	}
	if len(out) == 0 {
		return nil, fmt.Errorf("at least one lookup provider is required")
	}
	return out, nil
}

func normalizeFoodProvider(p string) string {
	switch strings.ToLower(strings.TrimSpace(p)) {
	case "off", "openfoodfacts", "open_food_facts":
		return FoodProviderOpenFoodFacts
	case "usda", "fdc":
		return FoodProviderUSDA
	default:
		return strings.ToLower(strings.TrimSpace(p))
	}
}

// LookupFoodBarcode tries each source in order, reading through the local
// cache, and returns the first hit.
func LookupFoodBarcode(ctx context.Context, db *sql.DB, barcode string, sources []FoodFactsSource, now time.Time) (FoodFacts, error) {
	barcode = strings.TrimSpace(barcode)
	if !IsValidBarcode(barcode) {
		return FoodFacts{}, fmt.Errorf("invalid barcode %q (expected 8-14 digits)", barcode)
	}
	if len(sources) == 0 {
		return FoodFacts{}, fmt.Errorf("no lookup providers configured")
	}
	trail := make([]string, 0, len(sources))
	errs := make([]string, 0, len(sources))
	for _, src := range sources {
		trail = append(trail, src.Name())
		cached, ok, err := cachedFoodFacts(db, src.Name(), barcode, now)
		if err != nil {
			return FoodFacts{}, err
		}
		if ok {
			cached.FromCache = true
			cached.LookupTrail = trail
			return cached, nil
		}
		f, raw, err := src.LookupBarcode(ctx, barcode)
		if err != nil {
			errs = append(errs, fmt.Sprintf("%s: %v", src.Name(), err))
			continue
		}
		f.Provider = src.Name()
		f.Barcode = barcode
		if err := cacheFoodFacts(db, f, raw, now); err != nil {
			return FoodFacts{}, err
		}
		f.LookupTrail = trail
		return f, nil
	}
	return FoodFacts{}, fmt.Errorf("lookup failed for %q across providers [%s]", barcode, strings.Join(errs, "; "))
}

// SearchFoodFacts returns results from the first source that has any.
func SearchFoodFacts(ctx context.Context, query string, limit int, sources []FoodFactsSource) ([]FoodFacts, error) {
	if strings.TrimSpace(query) == "" {
		return nil, fmt.Errorf("search query is required")
	}
	errs := make([]string, 0, len(sources))
	for _, src := range sources {
		items, err := src.Search(ctx, query, limit)
		if err != nil {
			errs = append(errs, fmt.Sprintf("%s: %v", src.Name(), err))
			continue
		}
		if len(items) > 0 {
			return items, nil
		}
	}
	if len(errs) > 0 {
		return nil, fmt.Errorf("search failed for %q [%s]", query, strings.Join(errs, "; "))
	}
	return nil, nil
}

func cachedFoodFacts(db *sql.DB, provider, barcode string, now time.Time) (FoodFacts, bool, error) {
	var f FoodFacts
	var per100g int
	var expiresRaw string
	err := db.QueryRow(`
SELECT provider, barcode, name, brand, serving, calories, per_100g, expires_at
FROM food_facts_cache
WHERE provider = ? AND barcode = ?
`, provider, barcode).Scan(&f.Provider, &f.Barcode, &f.Name, &f.Brand, &f.Serving, &f.Calories, &per100g, &expiresRaw)
	if err == sql.ErrNoRows {
		return FoodFacts{}, false, nil
	}
	if err != nil {
		return FoodFacts{}, false, fmt.Errorf("read food facts cache: %w", err)
	}
	expiresAt, err := time.Parse(time.RFC3339, expiresRaw)
	if err != nil {
		return FoodFacts{}, false, fmt.Errorf("parse food facts cache expiry: %w", err)
	}
	if !now.Before(expiresAt) {
		return FoodFacts{}, false, nil
	}
	f.Per100g = per100g == 1
	return f, true, nil
}

func cacheFoodFacts(db *sql.DB, f FoodFacts, raw []byte, now time.Time) error {
	var rawStr any
	if json.Valid(raw) {
		rawStr = string(raw)
	}
	per100g := 0
	if f.Per100g {
		per100g = 1
	}
	_, err := db.Exec(`
INSERT INTO food_facts_cache(provider, barcode, name, brand, serving, calories, per_100g, raw_json, fetched_at, expires_at)
VALUES(?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
ON CONFLICT(provider, barcode) DO UPDATE SET
  name=excluded.name,
  brand=excluded.brand,
  serving=excluded.serving,
  calories=excluded.calories,
  per_100g=excluded.per_100g,
  raw_json=excluded.raw_json,
  fetched_at=excluded.fetched_at,
  expires_at=excluded.expires_at
`, f.Provider, f.Barcode, f.Name, f.Brand, f.Serving, f.Calories, per100g, rawStr,
		now.UTC().Format(time.RFC3339), now.Add(foodFactsTTL).UTC().Format(time.RFC3339))
	if err != nil {
		return fmt.Errorf("cache food facts: %w", err)
	}
	return nil
}

func PurgeFoodFactsCache(db *sql.DB) (int64, error) {
	res, err := db.Exec(`DELETE FROM food_facts_cache`)
	if err != nil {
		return 0, fmt.Errorf("purge food facts cache: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return 0, fmt.Errorf("purge food facts cache rows affected: %w", err)
	}
	return n, nil
}

func PurgeExpiredFoodFacts(db *sql.DB, now time.Time) (int64, error) {
	res, err := db.Exec(`DELETE FROM food_facts_cache WHERE expires_at <= ?`, now.UTC().Format(time.RFC3339))
	if err != nil {
		return 0, fmt.Errorf("purge expired food facts: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return 0, fmt.Errorf("purge expired food facts rows affected: %w", err)
	}
	return n, nil
}
