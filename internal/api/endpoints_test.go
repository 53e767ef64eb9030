package api

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"testing"

	"github.com/Snape93/nutrition-sub008/internal/model"
	"github.com/gorilla/mux"
)

func TestLoginReturnsTokenAndProfile(t *testing.T) {
	t.Parallel()
	fb := newFakeBackend(t)
	fb.handle(http.MethodPost, "/login", func(w http.ResponseWriter, r *http.Request) {
		var creds model.Credentials
		_ = json.NewDecoder(r.Body).Decode(&creds)
		if creds.Password != "S3cret!pass" {
			writeJSON(w, http.StatusOK, map[string]any{"success": false, "message": "Wrong password"})
			return
		}
		writeJSON(w, http.StatusOK, map[string]any{
			"success": true,
			"token":   "tok",
			"user":    map[string]any{"username": creds.Username, "email": "ana@example.com"},
		})
	})
	c := fb.client()

	res, err := c.Login(context.Background(), model.Credentials{Username: "ana", Password: "S3cret!pass"})
	if err != nil {
		t.Fatalf("login: %v", err)
	}
	if res.Token != "tok" || res.User.Email != "ana@example.com" {
		t.Fatalf("unexpected login result: %+v", res)
	}

	_, err = c.Login(context.Background(), model.Credentials{Username: "ana", Password: "nope"})
	if !errors.Is(err, ErrAuthFailed) {
		t.Fatalf("expected ErrAuthFailed, got %v", err)
	}
}

func TestLoginMaps401ToAuthFailed(t *testing.T) {
	t.Parallel()
	fb := newFakeBackend(t)
	fb.handle(http.MethodPost, "/login", func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusUnauthorized, map[string]string{"message": "bad credentials"})
	})
	_, err := fb.client().Login(context.Background(), model.Credentials{Username: "ana", Password: "x"})
	if !errors.Is(err, ErrAuthFailed) {
		t.Fatalf("expected ErrAuthFailed, got %v", err)
	}
}

func TestGetProfileAcceptsWrappedAndBareObjects(t *testing.T) {
	t.Parallel()
	fb := newFakeBackend(t)
	fb.handle(http.MethodGet, "/user/{username}", func(w http.ResponseWriter, r *http.Request) {
		name := mux.Vars(r)["username"]
		if name == "wrapped" {
			writeJSON(w, http.StatusOK, map[string]any{"user": map[string]any{"weight": "70.5", "goal": "lose_weight"}})
			return
		}
		writeJSON(w, http.StatusOK, map[string]any{"username": name, "age": 30, "height": 175})
	})
	c := fb.client()

	p, err := c.GetProfile(context.Background(), "wrapped")
	if err != nil {
		t.Fatalf("get wrapped profile: %v", err)
	}
	if p.Username != "wrapped" || p.WeightKg != 70.5 || p.Goal != "lose_weight" {
		t.Fatalf("unexpected wrapped profile: %+v", p)
	}

	p, err = c.GetProfile(context.Background(), "bare")
	if err != nil {
		t.Fatalf("get bare profile: %v", err)
	}
	if p.Age != 30 || p.HeightCm != 175 {
		t.Fatalf("unexpected bare profile: %+v", p)
	}
}

func TestUpdateProfileSendsOnlyChangedFields(t *testing.T) {
	t.Parallel()
	fb := newFakeBackend(t)
	var body map[string]any
	fb.handle(http.MethodPut, "/user/{username}", func(w http.ResponseWriter, r *http.Request) {
		_ = json.NewDecoder(r.Body).Decode(&body)
		writeJSON(w, http.StatusOK, map[string]bool{"success": true})
	})
	w := 68.0
	if err := fb.client().UpdateProfile(context.Background(), "ana", model.ProfileUpdate{WeightKg: &w}); err != nil {
		t.Fatalf("update profile: %v", err)
	}
	if len(body) != 1 || body["weight"] != 68.0 {
		t.Fatalf("expected only weight in body, got %v", body)
	}
}

func TestListWeightLogsSortsOldestFirst(t *testing.T) {
	t.Parallel()
	fb := newFakeBackend(t)
	fb.handle(http.MethodGet, "/weight/logs/{username}", func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusOK, map[string]any{"logs": []map[string]any{
			{"id": 2, "date": "2026-03-02", "weight": 70.1},
			{"id": 1, "date": "2026-03-01", "weight": "70.4"},
		}})
	})
	logs, err := fb.client().ListWeightLogs(context.Background(), "ana")
	if err != nil {
		t.Fatalf("list weight logs: %v", err)
	}
	if len(logs) != 2 || logs[0].ID != 1 || logs[1].ID != 2 {
		t.Fatalf("expected ascending order, got %+v", logs)
	}
	if logs[0].WeightKg != 70.4 {
		t.Fatalf("expected string weight decoded, got %v", logs[0].WeightKg)
	}
}

func TestFoodLogLifecycle(t *testing.T) {
	t.Parallel()
	fb := newFakeBackend(t)
	var gotDate string
	fb.handle(http.MethodGet, "/food/logs/{username}", func(w http.ResponseWriter, r *http.Request) {
		gotDate = r.URL.Query().Get("date")
		writeJSON(w, http.StatusOK, []map[string]any{
			{"id": 9, "food_name": "Oatmeal", "meal_type": "breakfast", "calories": 150, "phase": "deletable", "time_remaining_seconds": 600, "phase_progress": 0.5},
		})
	})
	fb.handle(http.MethodPost, "/food/log", func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusCreated, map[string]any{"id": 10})
	})
	fb.handle(http.MethodDelete, "/food/log/{id}", func(w http.ResponseWriter, r *http.Request) {
		if mux.Vars(r)["id"] != "9" {
			writeJSON(w, http.StatusNotFound, map[string]string{"message": "no such log"})
			return
		}
		writeJSON(w, http.StatusForbidden, map[string]string{"message": "Food log can no longer be deleted"})
	})
	c := fb.client()
	ctx := context.Background()

	logs, err := c.ListFoodLogs(ctx, "ana", "2026-03-01")
	if err != nil {
		t.Fatalf("list food logs: %v", err)
	}
	if gotDate != "2026-03-01" {
		t.Fatalf("expected date query, got %q", gotDate)
	}
	if len(logs) != 1 || logs[0].Phase != model.PhaseDeletable || logs[0].TimeRemainingSeconds != 600 {
		t.Fatalf("unexpected food logs: %+v", logs)
	}

	id, err := c.AddFoodLog(ctx, model.NewFoodLog{Username: "ana", FoodName: "Apple", MealType: "snack", Calories: 95})
	if err != nil {
		t.Fatalf("add food log: %v", err)
	}
	if id != 10 {
		t.Fatalf("expected id 10, got %d", id)
	}

	err = c.DeleteFoodLog(ctx, 9)
	var rerr *RequestError
	if !errors.As(err, &rerr) || rerr.StatusCode != http.StatusForbidden || rerr.Message != "Food log can no longer be deleted" {
		t.Fatalf("expected server refusal to surface, got %v", err)
	}
	if err := c.DeleteFoodLog(ctx, 1); !errors.Is(err, ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
}

func TestExerciseLogs(t *testing.T) {
	t.Parallel()
	fb := newFakeBackend(t)
	fb.handle(http.MethodGet, "/exercise/logs/{username}", func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusOK, map[string]any{"data": []map[string]any{
			{"id": 5, "date": "2026-03-05", "exercise_name": "Run", "duration": 30, "calories_burned": 300},
			{"id": 4, "date": "2026-03-04", "exercise_name": "Walk", "duration": "45", "calories_burned": 180},
		}})
	})
	fb.handle(http.MethodPost, "/exercise/log", func(w http.ResponseWriter, r *http.Request) {
		var in model.NewExerciseLog
		_ = json.NewDecoder(r.Body).Decode(&in)
		if in.ExerciseName != "Swim" {
			writeJSON(w, http.StatusBadRequest, map[string]string{"message": "unexpected"})
			return
		}
		writeJSON(w, http.StatusOK, map[string]any{"id": 6})
	})
	c := fb.client()
	logs, err := c.ListExerciseLogs(context.Background(), "ana")
	if err != nil {
		t.Fatalf("list exercise logs: %v", err)
	}
	if len(logs) != 2 || logs[0].ExerciseName != "Walk" || logs[0].DurationMin != 45 {
		t.Fatalf("unexpected exercise logs: %+v", logs)
	}
	id, err := c.AddExerciseLog(context.Background(), model.NewExerciseLog{Username: "ana", ExerciseName: "Swim", DurationMin: 20, CaloriesBurned: 200})
	if err != nil || id != 6 {
		t.Fatalf("add exercise log: id=%d err=%v", id, err)
	}
}

func TestStreakEndpoints(t *testing.T) {
	t.Parallel()
	fb := newFakeBackend(t)
	fb.handle(http.MethodGet, "/streaks/{username}", func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusOK, map[string]any{"streak": map[string]any{"current_streak": 4, "longest_streak": "9"}})
	})
	fb.handle(http.MethodPost, "/streaks/update", func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusOK, map[string]any{"streak_type": "calories", "current_streak": 5, "longest_streak": 9})
	})
	c := fb.client()
	s, err := c.GetStreak(context.Background(), "ana", "calories")
	if err != nil {
		t.Fatalf("get streak: %v", err)
	}
	if s.CurrentStreak != 4 || s.LongestStreak != 9 || s.StreakType != "calories" {
		t.Fatalf("unexpected streak: %+v", s)
	}
	s, err = c.UpdateStreak(context.Background(), model.StreakUpdate{Username: "ana", StreakType: "calories", GoalMet: true})
	if err != nil || s.CurrentStreak != 5 {
		t.Fatalf("update streak: %+v err=%v", s, err)
	}
}

func TestCalculateDailyGoal(t *testing.T) {
	t.Parallel()
	fb := newFakeBackend(t)
	fb.handle(http.MethodPost, "/calculate/daily_goal", func(w http.ResponseWriter, r *http.Request) {
		var in model.CalorieInputs
		_ = json.NewDecoder(r.Body).Decode(&in)
		if in.Age == 0 {
			writeJSON(w, http.StatusOK, map[string]any{"status": "ok"})
			return
		}
		writeJSON(w, http.StatusOK, map[string]any{"daily_calorie_goal": "2256"})
	})
	c := fb.client()
	got, err := c.CalculateDailyGoal(context.Background(), model.CalorieInputs{Age: 30, Sex: "male", WeightKg: 70, HeightCm: 175, ActivityLevel: "active", Goal: "lose_weight"})
	if err != nil {
		t.Fatalf("calculate daily goal: %v", err)
	}
	if got != 2256 {
		t.Fatalf("expected 2256, got %d", got)
	}
	_, err = c.CalculateDailyGoal(context.Background(), model.CalorieInputs{})
	if KindOf(err) != KindFormat {
		t.Fatalf("expected format error for missing field, got %v", err)
	}
}
