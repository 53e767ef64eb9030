package api

import (
	"context"
	"fmt"
	"net/url"
	"sort"
	"strings"
	"time"

	"github.com/Snape93/nutrition-sub008/internal/model"
)

const historyTimeout = 30 * time.Second

func (c *Client) ListFoodLogs(ctx context.Context, username, date string) ([]model.FoodLog, error) {
	path := "/food/logs/" + url.PathEscape(username)
	if date = strings.TrimSpace(date); date != "" {
		path += "?date=" + url.QueryEscape(date)
	}
	var env listEnvelope[model.FoodLog]
	if err := c.Get(ctx, path, &env, WithTimeout(historyTimeout)); err != nil {
		return nil, err
	}
	return env.Items, nil
}

func (c *Client) AddFoodLog(ctx context.Context, in model.NewFoodLog) (int64, error) {
	var out createdResponse
	if err := c.Post(ctx, "/food/log", in, &out); err != nil {
		return 0, err
	}
	return out.ID, nil
}

func (c *Client) DeleteFoodLog(ctx context.Context, id int64) error {
	return c.Delete(ctx, fmt.Sprintf("/food/log/%d", id), nil)
}

// ListWeightLogs returns entries sorted oldest first.
func (c *Client) ListWeightLogs(ctx context.Context, username string) ([]model.WeightLog, error) {
	var env listEnvelope[model.WeightLog]
	if err := c.Get(ctx, "/weight/logs/"+url.PathEscape(username), &env, WithTimeout(historyTimeout)); err != nil {
		return nil, err
	}
	items := env.Items
	sort.SliceStable(items, func(i, j int) bool { return items[i].Date < items[j].Date })
	return items, nil
}

func (c *Client) AddWeightLog(ctx context.Context, in model.NewWeightLog) (int64, error) {
	var out createdResponse
	if err := c.Post(ctx, "/weight/log", in, &out); err != nil {
		return 0, err
	}
	return out.ID, nil
}

func (c *Client) DeleteWeightLog(ctx context.Context, id int64) error {
	return c.Delete(ctx, fmt.Sprintf("/weight/log/%d", id), nil)
}

// ListExerciseLogs returns entries sorted oldest first.
func (c *Client) ListExerciseLogs(ctx context.Context, username string) ([]model.ExerciseLog, error) {
	var env listEnvelope[model.ExerciseLog]
	if err := c.Get(ctx, "/exercise/logs/"+url.PathEscape(username), &env, WithTimeout(historyTimeout)); err != nil {
		return nil, err
	}
	items := env.Items
	sort.SliceStable(items, func(i, j int) bool { return items[i].Date < items[j].Date })
	return items, nil
}

func (c *Client) AddExerciseLog(ctx context.Context, in model.NewExerciseLog) (int64, error) {
	var out createdResponse
	if err := c.Post(ctx, "/exercise/log", in, &out); err != nil {
		return 0, err
	}
	return out.ID, nil
}

func (c *Client) DeleteExerciseLog(ctx context.Context, id int64) error {
	return c.Delete(ctx, fmt.Sprintf("/exercise/log/%d", id), nil)
}

type createdResponse struct {
	ID int64 `json:"id"`
}
