package nutri

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/gorilla/mux"
)

type fakeBackend struct {
	router *mux.Router
	server *httptest.Server
	mu     sync.Mutex
	hits   map[string]int
	bodies map[string][]map[string]any
}

func newFakeBackend(t *testing.T) *fakeBackend {
	t.Helper()
	fb := &fakeBackend{router: mux.NewRouter(), hits: map[string]int{}, bodies: map[string][]map[string]any{}}
	fb.server = httptest.NewServer(fb.router)
	t.Cleanup(fb.server.Close)
	fb.routeDefaults(t)
	return fb
}

func (fb *fakeBackend) handle(method, path string, h http.HandlerFunc) {
	key := method + " " + path
	fb.router.HandleFunc(path, func(w http.ResponseWriter, r *http.Request) {
		fb.mu.Lock()
		fb.hits[key]++
		if r.Body != nil && (method == http.MethodPost || method == http.MethodPut) {
			var body map[string]any
			if json.NewDecoder(r.Body).Decode(&body) == nil {
				fb.bodies[key] = append(fb.bodies[key], body)
			}
		}
		fb.mu.Unlock()
		h(w, r)
	}).Methods(method)
}

func (fb *fakeBackend) count(method, path string) int {
	fb.mu.Lock()
	defer fb.mu.Unlock()
	return fb.hits[method+" "+path]
}

func (fb *fakeBackend) lastBody(method, path string) map[string]any {
	fb.mu.Lock()
	defer fb.mu.Unlock()
	b := fb.bodies[method+" "+path]
	if len(b) == 0 {
		return nil
	}
	return b[len(b)-1]
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

var anaProfile = map[string]any{
	"username":           "ana",
	"email":              "ana@example.com",
	"sex":                "male",
	"age":                30,
	"height":             175,
	"weight":             "70",
	"activity_level":     "active",
	"goal":               "Maintain Weight",
	"daily_calorie_goal": 2556,
}

func testToken(t *testing.T) string {
	t.Helper()
	tok := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.MapClaims{
		"sub": "ana",
		"exp": time.Now().Add(time.Hour).Unix(),
	})
	s, err := tok.SignedString([]byte("backend-secret"))
	if err != nil {
		t.Fatalf("sign token: %v", err)
	}
	return s
}

func (fb *fakeBackend) routeDefaults(t *testing.T) {
	token := testToken(t)
	fb.handle(http.MethodGet, "/health", func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusOK, map[string]any{"status": "ok"})
	})
	fb.handle(http.MethodPost, "/login", func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusOK, map[string]any{"success": true, "token": token, "user": anaProfile})
	})
	fb.handle(http.MethodPost, "/register", func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusCreated, map[string]any{"success": true, "token": token})
	})
	fb.handle(http.MethodGet, "/user/{username}", func(w http.ResponseWriter, r *http.Request) {
		if r.Header.Get("Authorization") != "Bearer "+token {
			writeJSON(w, http.StatusUnauthorized, map[string]any{"message": "missing token"})
			return
		}
		writeJSON(w, http.StatusOK, map[string]any{"user": anaProfile})
	})
	fb.handle(http.MethodPut, "/user/{username}", func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusOK, map[string]any{"success": true})
	})
	fb.handle(http.MethodGet, "/food/logs/{username}", func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusOK, map[string]any{"logs": []map[string]any{
			{"id": 1, "food_name": "Oatmeal", "meal_type": "breakfast", "calories": 350, "phase": "restricted", "time_remaining_seconds": 600, "phase_progress": 0.25},
			{"id": 2, "food_name": "Salad", "meal_type": "lunch", "calories": "300", "phase": "deletable", "time_remaining_seconds": 3600, "phase_progress": 0.5},
			{"id": 3, "food_name": "Chips", "meal_type": "snack", "calories": 200, "phase": "auto_removed"},
		}})
	})
	fb.handle(http.MethodPost, "/food/log", func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusCreated, map[string]any{"id": 42})
	})
	fb.handle(http.MethodDelete, "/food/log/{id}", func(w http.ResponseWriter, r *http.Request) {
		if mux.Vars(r)["id"] == "1" {
			writeJSON(w, http.StatusForbidden, map[string]any{"message": "Food log is still restricted"})
			return
		}
		writeJSON(w, http.StatusOK, map[string]any{"success": true})
	})
	fb.handle(http.MethodGet, "/weight/logs/{username}", func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusOK, []map[string]any{
			{"id": 8, "date": "2026-03-03", "weight": 69.5},
			{"id": 7, "date": "2026-03-01", "weight": 71},
			{"id": 9, "date": "2026-03-05", "weight": "68.9"},
		})
	})
	fb.handle(http.MethodPost, "/weight/log", func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusCreated, map[string]any{"id": 10})
	})
	fb.handle(http.MethodGet, "/exercise/logs/{username}", func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusOK, map[string]any{"data": []map[string]any{
			{"id": 1, "date": "2026-03-02", "exercise_name": "running", "duration": 30, "calories_burned": 300},
			{"id": 2, "date": "2026-03-01", "exercise_name": "cycling", "duration": "45", "calories_burned": 400},
		}})
	})
	fb.handle(http.MethodGet, "/streaks/{username}", func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusOK, map[string]any{"streak": map[string]any{
			"streak_type": r.URL.Query().Get("type"), "current_streak": 4, "longest_streak": 10, "last_activity_date": "2026-03-05",
		}})
	})
	fb.handle(http.MethodPost, "/streaks/update", func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusOK, map[string]any{"streak": map[string]any{"current_streak": 5, "longest_streak": 10}})
	})
	fb.handle(http.MethodPost, "/calculate/daily_goal", func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusOK, map[string]any{"daily_calorie_goal": 2600})
	})
}
