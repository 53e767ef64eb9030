package service_test

import (
	"context"
	"errors"
	"testing"

	"github.com/Snape93/nutrition-sub008/internal/model"
	"github.com/Snape93/nutrition-sub008/internal/service"
)

func TestCalculateDailyCalorieGoalMatchesFormula(t *testing.T) {
	t.Parallel()
	got, err := service.CalculateDailyCalorieGoal(model.CalorieInputs{
		Age: 30, Sex: "male", WeightKg: 70, HeightCm: 175, ActivityLevel: "active", Goal: "maintain_weight",
	})
	if err != nil {
		t.Fatalf("calculate: %v", err)
	}
	// BMR = 700 + 1093.75 - 150 + 5 = 1648.75; TDEE = 1648.75 * 1.55 = 2555.56
	if got != 2556 {
		t.Fatalf("expected 2556, got %d", got)
	}
}

func TestCalculateDailyCalorieGoalAdjustments(t *testing.T) {
	t.Parallel()
	base := model.CalorieInputs{Age: 40, Sex: "female", WeightKg: 60, HeightCm: 165, ActivityLevel: "sedentary"}
	// BMR = 600 + 1031.25 - 200 - 161 = 1270.25; * 1.2 = 1524.3
	cases := map[string]int{
		"maintain_weight": 1524,
		"Lose Weight":     1224,
		"muscle-gain":     1724,
		"improve_health":  1574,
		"":                1524,
	}
	for goal, want := range cases {
		in := base
		in.Goal = goal
		got, err := service.CalculateDailyCalorieGoal(in)
		if err != nil {
			t.Fatalf("goal %q: %v", goal, err)
		}
		if got != want {
			t.Fatalf("goal %q: expected %d, got %d", goal, want, got)
		}
	}
}

func TestActivityMultipliers(t *testing.T) {
	t.Parallel()
	want := map[string]float64{
		"sedentary":         1.2,
		"light":             1.375,
		"Moderately Active": 1.465,
		"active":            1.55,
		"very_active":       1.725,
		"extremely-active":  1.9,
	}
	for level, m := range want {
		got, err := service.ActivityMultiplier(level)
		if err != nil {
			t.Fatalf("activity %q: %v", level, err)
		}
		if got != m {
			t.Fatalf("activity %q: expected %.3f, got %.3f", level, m, got)
		}
	}
	if _, err := service.ActivityMultiplier("couch potato"); err == nil {
		t.Fatalf("expected unknown activity level to fail")
	}
}

func TestCalculateDailyCalorieGoalRejectsBadInput(t *testing.T) {
	t.Parallel()
	bad := []model.CalorieInputs{
		{Age: 0, Sex: "male", WeightKg: 70, HeightCm: 175, ActivityLevel: "active"},
		{Age: 30, Sex: "other", WeightKg: 70, HeightCm: 175, ActivityLevel: "active"},
		{Age: 30, Sex: "male", WeightKg: 5, HeightCm: 175, ActivityLevel: "active"},
		{Age: 30, Sex: "male", WeightKg: 70, HeightCm: 175, ActivityLevel: "active", Goal: "get rich"},
	}
	for i, in := range bad {
		if _, err := service.CalculateDailyCalorieGoal(in); err == nil {
			t.Fatalf("case %d: expected validation error", i)
		}
	}
}

type stubGoalCalculator struct {
	kcal  int
	err   error
	calls int
	seen  model.CalorieInputs
}

func (s *stubGoalCalculator) CalculateDailyGoal(_ context.Context, in model.CalorieInputs) (int, error) {
	s.calls++
	s.seen = in
	return s.kcal, s.err
}

func TestResolveDailyGoalPrefersServer(t *testing.T) {
	t.Parallel()
	remote := &stubGoalCalculator{kcal: 2100}
	res, err := service.ResolveDailyGoal(context.Background(), remote, model.CalorieInputs{
		Age: 30, Sex: "M", WeightKg: 70, HeightCm: 175, ActivityLevel: "Active", Goal: "Weight Loss",
	})
	if err != nil {
		t.Fatalf("resolve: %v", err)
	}
	if res.Source != service.GoalSourceServer || res.Calories != 2100 {
		t.Fatalf("expected server result, got %+v", res)
	}
	if remote.seen.Goal != service.GoalLoseWeight || remote.seen.Sex != "male" || remote.seen.ActivityLevel != "active" {
		t.Fatalf("expected normalized inputs sent to server, got %+v", remote.seen)
	}
}

func TestResolveDailyGoalFallsBackToLocal(t *testing.T) {
	t.Parallel()
	in := model.CalorieInputs{Age: 30, Sex: "male", WeightKg: 70, HeightCm: 175, ActivityLevel: "active", Goal: "maintain"}
	for _, remote := range []*stubGoalCalculator{
		{err: errors.New("boom")},
		{kcal: 0},
	} {
		res, err := service.ResolveDailyGoal(context.Background(), remote, in)
		if err != nil {
			t.Fatalf("resolve: %v", err)
		}
		if res.Source != service.GoalSourceLocal || res.Calories != 2556 || res.RemoteError == nil {
			t.Fatalf("expected local fallback with remote error, got %+v", res)
		}
	}

	res, err := service.ResolveDailyGoal(context.Background(), nil, in)
	if err != nil {
		t.Fatalf("resolve local only: %v", err)
	}
	if res.Source != service.GoalSourceLocal || res.RemoteError != nil {
		t.Fatalf("expected plain local result, got %+v", res)
	}
}

func TestCalorieInputsFromProfileReportsMissing(t *testing.T) {
	t.Parallel()
	_, err := service.CalorieInputsFromProfile(model.Profile{Username: "ana", Age: 30})
	if err == nil {
		t.Fatalf("expected missing fields error")
	}
	in, err := service.CalorieInputsFromProfile(model.Profile{Age: 30, Sex: "female", WeightKg: 60, HeightCm: 165, ActivityLevel: "active"})
	if err != nil {
		t.Fatalf("complete profile: %v", err)
	}
	if in.WeightKg != 60 || in.HeightCm != 165 {
		t.Fatalf("unexpected inputs: %+v", in)
	}
}

func TestBMI(t *testing.T) {
	t.Parallel()
	bmi, err := service.CalculateBMI(175, 70)
	if err != nil {
		t.Fatalf("bmi: %v", err)
	}
	if bmi < 22.8 || bmi > 22.9 {
		t.Fatalf("expected ~22.86, got %.3f", bmi)
	}
	if service.BMICategory(bmi) != "Normal weight" {
		t.Fatalf("unexpected category %q", service.BMICategory(bmi))
	}
	if _, err := service.CalculateBMI(10, 70); err == nil {
		t.Fatalf("expected implausible height to fail")
	}
}
