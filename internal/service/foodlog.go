package service

import (
	"math"
	"sort"
	"strings"

	"github.com/Snape93/nutrition-sub008/internal/model"
)

var phaseLabels = map[string]string{
	model.PhaseRestricted:  "locked",
	model.PhaseDeletable:   "deletable",
	model.PhaseAutoRemoved: "auto-removed",
}

func PhaseLabel(phase string) string {
	if label, ok := phaseLabels[strings.ToLower(strings.TrimSpace(phase))]; ok {
		return label
	}
	return "-"
}

// DeletionHint is display only; the server decides whether a delete succeeds.
func DeletionHint(log model.FoodLog) string {
	remaining := log.TimeRemainingSeconds.Int()
	switch strings.ToLower(log.Phase) {
	case model.PhaseRestricted:
		if remaining > 0 {
			return "deletable in " + FormatCountdown(remaining)
		}
		return "locked"
	case model.PhaseDeletable:
		if remaining > 0 {
			return "auto-removes in " + FormatCountdown(remaining)
		}
		return "deletable"
	case model.PhaseAutoRemoved:
		return "removed"
	}
	return ""
}

// ProgressBar renders a 0..1 fraction as [####------].
func ProgressBar(progress float64, width int) string {
	if width <= 0 {
		return ""
	}
	if math.IsNaN(progress) || progress < 0 {
		progress = 0
	}
	if progress > 1 {
		progress = 1
	}
	filled := int(math.Round(progress * float64(width)))
	return "[" + strings.Repeat("#", filled) + strings.Repeat("-", width-filled) + "]"
}

type MealTotal struct {
	MealType string
	Calories float64
	Count    int
}

var mealOrder = map[string]int{"breakfast": 0, "lunch": 1, "dinner": 2, "snack": 3, "snacks": 3}

// SummarizeFoodLogs skips auto-removed entries.
func SummarizeFoodLogs(logs []model.FoodLog) (float64, []MealTotal) {
	byMeal := map[string]*MealTotal{}
	total := 0.0
	for _, l := range logs {
		if strings.EqualFold(l.Phase, model.PhaseAutoRemoved) {
			continue
		}
		meal := strings.ToLower(strings.TrimSpace(l.MealType))
		if meal == "" {
			meal = "other"
		}
		mt, ok := byMeal[meal]
		if !ok {
			mt = &MealTotal{MealType: meal}
			byMeal[meal] = mt
		}
		mt.Calories += l.Calories.Float64()
		mt.Count++
		total += l.Calories.Float64()
	}
	out := make([]MealTotal, 0, len(byMeal))
	for _, mt := range byMeal {
		out = append(out, *mt)
	}
	sort.Slice(out, func(i, j int) bool {
		oi, iok := mealOrder[out[i].MealType]
		oj, jok := mealOrder[out[j].MealType]
		if iok != jok {
			return iok
		}
		if oi != oj {
			return oi < oj
		}
		return out[i].MealType < out[j].MealType
	})
	return total, out
}
