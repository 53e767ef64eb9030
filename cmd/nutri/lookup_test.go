package nutri

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"sync/atomic"
	"testing"

	"github.com/gorilla/mux"
)

func newFakeOpenFoodFacts(t *testing.T) (*httptest.Server, *int32) {
	t.Helper()
	var hits int32
	r := mux.NewRouter()
	r.HandleFunc("/api/v2/product/{code}.json", func(w http.ResponseWriter, r *http.Request) {
		atomic.AddInt32(&hits, 1)
		if mux.Vars(r)["code"] != "3017620422003" {
			writeJSON(w, http.StatusOK, map[string]any{"status": 0})
			return
		}
		writeJSON(w, http.StatusOK, map[string]any{
			"status": 1,
			"product": map[string]any{
				"code":         "3017620422003",
				"product_name": "Hazelnut Spread",
				"brands":       "Spread Co",
				"serving_size": "15 g",
				"nutriments":   map[string]any{"energy-kcal_serving": 81, "energy-kcal_100g": 539},
			},
		})
	}).Methods(http.MethodGet)
	r.HandleFunc("/cgi/search.pl", func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusOK, map[string]any{"products": []map[string]any{
			{"code": "3017620422003", "product_name": "Hazelnut Spread", "serving_size": "15 g", "nutriments": map[string]any{"energy-kcal_serving": 81}},
		}})
	}).Methods(http.MethodGet)
	ts := httptest.NewServer(r)
	t.Cleanup(ts.Close)
	return ts, &hits
}

func TestFoodLookupBarcodeAndAdd(t *testing.T) {
	off, hits := newFakeOpenFoodFacts(t)
	t.Setenv("NUTRI_OPENFOODFACTS_URL", off.URL)
	t.Setenv("NUTRI_USDA_API_KEY", "")
	t.Setenv("NUTRI_LOOKUP_PROVIDERS", "")
	fb := newFakeBackend(t)
	path := loggedIn(t, fb)

	out, err := runCLI(t, "", "--db", path, "--api-url", fb.server.URL, "food", "lookup", "--barcode", "3017620422003")
	if err != nil {
		t.Fatalf("lookup: %v\n%s", err, out)
	}
	if !strings.Contains(out, "Hazelnut Spread") || !strings.Contains(out, "Calories: 81 kcal per 15 g") || !strings.Contains(out, "Source: openfoodfacts\n") {
		t.Fatalf("unexpected lookup output %q", out)
	}

	out, err = runCLI(t, "", "--db", path, "--api-url", fb.server.URL, "food", "add", "--barcode", "3017620422003", "--meal", "snack", "--date", "2026-03-05")
	if err != nil {
		t.Fatalf("food add --barcode: %v\n%s", err, out)
	}
	body := fb.lastBody(http.MethodPost, "/food/log")
	if body["food_name"] != "Hazelnut Spread" || body["calories"] != float64(81) || body["serving_size"] != "15 g" {
		t.Fatalf("unexpected prefilled body %v", body)
	}
	if got := atomic.LoadInt32(hits); got != 1 {
		t.Fatalf("second lookup should come from cache, got %d requests", got)
	}

	out, err = runCLI(t, "", "--db", path, "--api-url", fb.server.URL, "food", "add", "--barcode", "3017620422003", "--meal", "snack", "--calories", "162", "--serving", "30 g")
	if err != nil {
		t.Fatalf("food add with overrides: %v\n%s", err, out)
	}
	body = fb.lastBody(http.MethodPost, "/food/log")
	if body["calories"] != float64(162) || body["serving_size"] != "30 g" {
		t.Fatalf("explicit flags should win, got %v", body)
	}
}

func TestFoodLookupSearchAndErrors(t *testing.T) {
	off, _ := newFakeOpenFoodFacts(t)
	t.Setenv("NUTRI_OPENFOODFACTS_URL", off.URL)
	t.Setenv("NUTRI_USDA_API_KEY", "")
	t.Setenv("NUTRI_LOOKUP_PROVIDERS", "")
	fb := newFakeBackend(t)
	path := loggedIn(t, fb)

	out, err := runCLI(t, "", "--db", path, "--api-url", fb.server.URL, "food", "lookup", "hazelnut")
	if err != nil {
		t.Fatalf("search: %v\n%s", err, out)
	}
	if !strings.Contains(out, "openfoodfacts\t3017620422003\tHazelnut Spread") {
		t.Fatalf("unexpected search output %q", out)
	}

	_, err = runCLI(t, "", "--db", path, "--api-url", fb.server.URL, "food", "lookup", "--barcode", "3017620422003", "--provider", "usda")
	if err == nil || !strings.Contains(err.Error(), "missing USDA API key") {
		t.Fatalf("expected missing key error, got %v", err)
	}
	_, err = runCLI(t, "", "--db", path, "--api-url", fb.server.URL, "food", "lookup", "--barcode", "12ab")
	if err == nil || !strings.Contains(err.Error(), "invalid barcode") {
		t.Fatalf("expected invalid barcode error, got %v", err)
	}

	out, err = runCLI(t, "", "--db", path, "--api-url", fb.server.URL, "food", "lookup", "--clear-cache")
	if err != nil || !strings.Contains(out, "Removed 0 cached lookup(s)") {
		t.Fatalf("clear cache: %v %q", err, out)
	}
}
