package service

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/Snape93/nutrition-sub008/internal/model"
)

const DefaultPollInterval = 30 * time.Second

type FoodLogFetcher func(ctx context.Context) ([]model.FoodLog, error)

type PollHandlers struct {
	// OnChange receives the first snapshot and every one that differs from the last.
	OnChange func([]model.FoodLog)
	OnError  func(error)
}

// PollFoodLogs fetches immediately and then every interval until ctx ends.
// Fetch errors are reported and do not stop polling.
func PollFoodLogs(ctx context.Context, interval time.Duration, fetch FoodLogFetcher, h PollHandlers) error {
	if fetch == nil {
		return fmt.Errorf("fetch function is required")
	}
	if interval <= 0 {
		interval = DefaultPollInterval
	}
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	last := ""
	first := true
	poll := func() {
		logs, err := fetch(ctx)
		if err != nil {
			if ctx.Err() != nil {
				return
			}
			if h.OnError != nil {
				h.OnError(err)
			}
			return
		}
		fp := foodLogFingerprint(logs)
		if first || fp != last {
			first = false
			last = fp
			if h.OnChange != nil {
				h.OnChange(logs)
			}
		}
	}

	poll()
	for {
		select {
		case <-ctx.Done():
			return nil
		case <-ticker.C:
			poll()
		}
	}
}

// foodLogFingerprint ignores countdown fields, which change on every poll.
func foodLogFingerprint(logs []model.FoodLog) string {
	var b strings.Builder
	for _, l := range logs {
		fmt.Fprintf(&b, "%d|%s|%s|%s|%.2f;", l.ID, l.FoodName, l.MealType, l.Phase, l.Calories.Float64())
	}
	return b.String()
}
