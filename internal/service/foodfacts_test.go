package service_test

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/Snape93/nutrition-sub008/internal/provider/openfoodfacts"
	"github.com/Snape93/nutrition-sub008/internal/service"
)

type stubSource struct {
	name    string
	facts   service.FoodFacts
	err     error
	calls   int
	results []service.FoodFacts
}

func (s *stubSource) Name() string { return s.name }

func (s *stubSource) LookupBarcode(context.Context, string) (service.FoodFacts, []byte, error) {
	s.calls++
	if s.err != nil {
		return service.FoodFacts{}, nil, s.err
	}
	return s.facts, []byte(`{"ok":true}`), nil
}

func (s *stubSource) Search(context.Context, string, int) ([]service.FoodFacts, error) {
	s.calls++
	return s.results, s.err
}

func TestLookupFoodBarcodeFallsBackAndCaches(t *testing.T) {
	t.Parallel()
	sqldb := newTestDB(t)
	now := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)

	first := &stubSource{name: service.FoodProviderOpenFoodFacts, err: errors.New("product not found")}
	second := &stubSource{name: service.FoodProviderUSDA, facts: service.FoodFacts{Name: "Greek Yogurt", Serving: "170 g", Calories: 100}}
	sources := []service.FoodFactsSource{first, second}

	got, err := service.LookupFoodBarcode(context.Background(), sqldb, "012345678905", sources, now)
	if err != nil {
		t.Fatalf("lookup: %v", err)
	}
	if got.Provider != service.FoodProviderUSDA || got.Calories != 100 || got.FromCache {
		t.Fatalf("unexpected facts: %+v", got)
	}
	if len(got.LookupTrail) != 2 {
		t.Fatalf("expected two-step trail, got %v", got.LookupTrail)
	}

	got, err = service.LookupFoodBarcode(context.Background(), sqldb, "012345678905", sources, now.Add(time.Hour))
	if err != nil {
		t.Fatalf("cached lookup: %v", err)
	}
	if !got.FromCache || got.Name != "Greek Yogurt" || got.Barcode != "012345678905" {
		t.Fatalf("expected cached facts, got %+v", got)
	}
	if second.calls != 1 {
		t.Fatalf("expected one remote usda call, got %d", second.calls)
	}
	if first.calls != 2 {
		t.Fatalf("expected openfoodfacts retried after miss, got %d", first.calls)
	}
}

func TestLookupFoodBarcodeCacheExpires(t *testing.T) {
	t.Parallel()
	sqldb := newTestDB(t)
	now := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
	src := &stubSource{name: service.FoodProviderUSDA, facts: service.FoodFacts{Name: "Oats", Calories: 150}}

	for _, at := range []time.Time{now, now.Add(31 * 24 * time.Hour)} {
		if _, err := service.LookupFoodBarcode(context.Background(), sqldb, "12345678", []service.FoodFactsSource{src}, at); err != nil {
			t.Fatalf("lookup: %v", err)
		}
	}
	if src.calls != 2 {
		t.Fatalf("expected refetch after ttl, got %d calls", src.calls)
	}

	n, err := service.PurgeFoodFactsCache(sqldb)
	if err != nil {
		t.Fatalf("purge: %v", err)
	}
	if n != 1 {
		t.Fatalf("expected one purged row, got %d", n)
	}
}

func TestLookupFoodBarcodeErrors(t *testing.T) {
	t.Parallel()
	sqldb := newTestDB(t)
	src := &stubSource{name: service.FoodProviderUSDA, err: errors.New("boom")}

	if _, err := service.LookupFoodBarcode(context.Background(), sqldb, "12ab", []service.FoodFactsSource{src}, time.Now()); err == nil {
		t.Fatalf("expected invalid barcode error")
	}
	if src.calls != 0 {
		t.Fatalf("invalid barcode must not reach providers")
	}
	if _, err := service.LookupFoodBarcode(context.Background(), sqldb, "12345678", []service.FoodFactsSource{src}, time.Now()); err == nil {
		t.Fatalf("expected aggregated provider error")
	}
}

func TestOpenFoodFactsSourceUsesPer100gFallback(t *testing.T) {
	t.Parallel()
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`{"status": 1, "product": {"code": "40000000", "product_name": "Rice Cakes", "nutriments": {"energy-kcal_100g": 387}}}`))
	}))
	defer ts.Close()

	src := service.OpenFoodFactsSource{Client: &openfoodfacts.Client{BaseURL: ts.URL, HTTPClient: ts.Client()}}
	got, err := service.LookupFoodBarcode(context.Background(), newTestDB(t), "40000000", []service.FoodFactsSource{src}, time.Now())
	if err != nil {
		t.Fatalf("lookup: %v", err)
	}
	if !got.Per100g || got.Calories != 387 || got.Serving != "100 g" {
		t.Fatalf("unexpected facts: %+v", got)
	}
}

func TestSearchFoodFactsFirstNonEmpty(t *testing.T) {
	t.Parallel()
	empty := &stubSource{name: service.FoodProviderOpenFoodFacts}
	full := &stubSource{name: service.FoodProviderUSDA, results: []service.FoodFacts{{Name: "Banana", Calories: 105}}}

	items, err := service.SearchFoodFacts(context.Background(), "banana", 5, []service.FoodFactsSource{empty, full})
	if err != nil {
		t.Fatalf("search: %v", err)
	}
	if len(items) != 1 || items[0].Name != "Banana" {
		t.Fatalf("unexpected results: %+v", items)
	}
	if _, err := service.SearchFoodFacts(context.Background(), " ", 5, nil); err == nil {
		t.Fatalf("expected empty query error")
	}
}

func TestParseProviderOrder(t *testing.T) {
	t.Parallel()
	got, err := service.ParseProviderOrder("usda, off ,usda")
	if err != nil {
		t.Fatalf("parse: %v", err)
	}
	if len(got) != 2 || got[0] != "usda" || got[1] != "openfoodfacts" {
		t.Fatalf("unexpected order: %v", got)
	}
	if _, err := service.ParseProviderOrder("upcitemdb"); err == nil {
		t.Fatalf("expected unsupported provider error")
	}
	if _, err := service.ParseProviderOrder(" , "); err == nil {
		t.Fatalf("expected empty list error")
	}
}
