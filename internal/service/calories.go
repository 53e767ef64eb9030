package service

import (
	"context"
	"fmt"
	"math"
	"strings"

	"github.com/Snape93/nutrition-sub008/internal/model"
)

const (
	GoalLoseWeight     = "lose_weight"
	GoalGainMuscle     = "gain_muscle"
	GoalImproveHealth  = "improve_health"
	GoalMaintainWeight = "maintain_weight"
)

var activityMultipliers = map[string]float64{
	"sedentary":         1.2,
	"lightly_active":    1.375,
	"moderately_active": 1.465,
	"active":            1.55,
	"very_active":       1.725,
	"extra_active":      1.9,
}

var goalAdjustments = map[string]int{
	GoalLoseWeight:     -300,
	GoalGainMuscle:     200,
	GoalImproveHealth:  50,
	GoalMaintainWeight: 0,
}

var goalAliases = map[string]string{
	"lose":            GoalLoseWeight,
	"lose_weight":     GoalLoseWeight,
	"weight_loss":     GoalLoseWeight,
	"lose_fat":        GoalLoseWeight,
	"gain":            GoalGainMuscle,
	"gain_muscle":     GoalGainMuscle,
	"muscle_gain":     GoalGainMuscle,
	"build_muscle":    GoalGainMuscle,
	"improve_health":  GoalImproveHealth,
	"health":          GoalImproveHealth,
	"general_health":  GoalImproveHealth,
	"maintain":        GoalMaintainWeight,
	"maintain_weight": GoalMaintainWeight,
	"maintenance":     GoalMaintainWeight,
}

var activityAliases = map[string]string{
	"sedentary":         "sedentary",
	"light":             "lightly_active",
	"lightly_active":    "lightly_active",
	"moderate":          "moderately_active",
	"moderately_active": "moderately_active",
	"active":            "active",
	"very":              "very_active",
	"very_active":       "very_active",
	"extra":             "extra_active",
	"extra_active":      "extra_active",
	"extremely_active":  "extra_active",
}

func slug(s string) string {
	s = strings.ToLower(strings.TrimSpace(s))
	s = strings.NewReplacer(" ", "_", "-", "_").Replace(s)
	for strings.Contains(s, "__") {
		s = strings.ReplaceAll(s, "__", "_")
	}
	return s
}

// NormalizeGoal maps free-form goal text onto a known goal key. Unknown
// values come back slugified so callers can still display them.
func NormalizeGoal(goal string) string {
	s := slug(goal)
	if s == "" {
		return GoalMaintainWeight
	}
	if canonical, ok := goalAliases[s]; ok {
		return canonical
	}
	return s
}

func NormalizeActivityLevel(level string) string {
	s := slug(level)
	if s == "" {
		return "sedentary"
	}
	if canonical, ok := activityAliases[s]; ok {
		return canonical
	}
	return s
}

func NormalizeSex(sex string) (string, error) {
	switch slug(sex) {
	case "m", "male", "man":
		return "male", nil
	case "f", "female", "woman":
		return "female", nil
	default:
		return "", fmt.Errorf("invalid sex %q (use male or female)", sex)
	}
}

// BMR is the Mifflin-St Jeor basal metabolic rate in kcal/day.
func BMR(age int, sex string, weightKg, heightCm float64) (float64, error) {
	if err := validateBodyInputs(age, weightKg, heightCm); err != nil {
		return 0, err
	}
	s, err := NormalizeSex(sex)
	if err != nil {
		return 0, err
	}
	base := 10*weightKg + 6.25*heightCm - 5*float64(age)
	if s == "male" {
		return base + 5, nil
	}
	return base - 161, nil
}

func ActivityMultiplier(level string) (float64, error) {
	m, ok := activityMultipliers[NormalizeActivityLevel(level)]
	if !ok {
		return 0, fmt.Errorf("invalid activity level %q", level)
	}
	return m, nil
}

func GoalAdjustment(goal string) (int, error) {
	adj, ok := goalAdjustments[NormalizeGoal(goal)]
	if !ok {
		return 0, fmt.Errorf("invalid goal %q", goal)
	}
	return adj, nil
}

// CalculateDailyCalorieGoal returns round(BMR * activity) + goal adjustment.
func CalculateDailyCalorieGoal(in model.CalorieInputs) (int, error) {
	bmr, err := BMR(in.Age, in.Sex, in.WeightKg, in.HeightCm)
	if err != nil {
		return 0, err
	}
	mult, err := ActivityMultiplier(in.ActivityLevel)
	if err != nil {
		return 0, err
	}
	adj, err := GoalAdjustment(in.Goal)
	if err != nil {
		return 0, err
	}
	return int(math.Round(bmr*mult)) + adj, nil
}

func validateBodyInputs(age int, weightKg, heightCm float64) error {
	if age <= 0 || age > 120 {
		return fmt.Errorf("age must be between 1 and 120")
	}
	if weightKg < 10 || weightKg > 400 {
		return fmt.Errorf("weight must be between 10 and 400 kg")
	}
	if heightCm < 50 || heightCm > 250 {
		return fmt.Errorf("height must be between 50 and 250 cm")
	}
	return nil
}

type GoalSource string

const (
	GoalSourceServer GoalSource = "server"
	GoalSourceLocal  GoalSource = "local"
)

type DailyGoalResult struct {
	Calories    int
	Source      GoalSource
	RemoteError error
}

type GoalCalculator interface {
	CalculateDailyGoal(ctx context.Context, in model.CalorieInputs) (int, error)
}

// ResolveDailyGoal prefers the server's number and falls back to the local
// formula on any failure. A nil remote means local only.
func ResolveDailyGoal(ctx context.Context, remote GoalCalculator, in model.CalorieInputs) (DailyGoalResult, error) {
	in.Goal = NormalizeGoal(in.Goal)
	in.ActivityLevel = NormalizeActivityLevel(in.ActivityLevel)
	if s, err := NormalizeSex(in.Sex); err == nil {
		in.Sex = s
	}

	var remoteErr error
	if remote != nil {
		kcal, err := remote.CalculateDailyGoal(ctx, in)
		if err == nil && kcal > 0 {
			return DailyGoalResult{Calories: kcal, Source: GoalSourceServer}, nil
		}
		remoteErr = err
		if remoteErr == nil {
			remoteErr = fmt.Errorf("server returned non-positive goal %d", kcal)
		}
	}
	kcal, err := CalculateDailyCalorieGoal(in)
	if err != nil {
		return DailyGoalResult{}, err
	}
	return DailyGoalResult{Calories: kcal, Source: GoalSourceLocal, RemoteError: remoteErr}, nil
}

// CalorieInputsFromProfile fails when the profile lacks a field the formula needs.
func CalorieInputsFromProfile(p model.Profile) (model.CalorieInputs, error) {
	in := model.CalorieInputs{
		Age:           p.Age.Int(),
		Sex:           p.Sex,
		WeightKg:      p.WeightKg.Float64(),
		HeightCm:      p.HeightCm.Float64(),
		ActivityLevel: p.ActivityLevel,
		Goal:          p.Goal,
	}
	missing := make([]string, 0)
	if in.Age <= 0 {
		missing = append(missing, "age")
	}
	if strings.TrimSpace(in.Sex) == "" {
		missing = append(missing, "sex")
	}
	if in.WeightKg <= 0 {
		missing = append(missing, "weight")
	}
	if in.HeightCm <= 0 {
		missing = append(missing, "height")
	}
	if len(missing) > 0 {
		return model.CalorieInputs{}, fmt.Errorf("profile is missing %s", strings.Join(missing, ", "))
	}
	return in, nil
}
