package service

import (
	"fmt"

	"github.com/Snape93/nutrition-sub008/internal/model"
)

// StreakMotivation derives the display line from the server's counters.
func StreakMotivation(s model.Streak) string {
	current := s.CurrentStreak.Int()
	longest := s.LongestStreak.Int()
	switch {
	case current <= 0:
		if longest > 0 {
			return fmt.Sprintf("Log today to start a new streak. Your best is %d days.", longest)
		}
		return "Log today to start your first streak."
	case current == 1:
		return "Day one done. Keep it going tomorrow!"
	case current >= 3 && current >= longest:
		return fmt.Sprintf("New personal best: %d days in a row!", current)
	case current >= 30:
		return fmt.Sprintf("%d days straight. This is a habit now.", current)
	case current >= 7:
		return fmt.Sprintf("%d-day streak. %d more to beat your record of %d.", current, longest-current+1, longest)
	default:
		return fmt.Sprintf("%d days in a row. Keep the momentum!", current)
	}
}
