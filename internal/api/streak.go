package api

import (
	"context"
	"net/url"
	"strings"

	"github.com/Snape93/nutrition-sub008/internal/model"
)

func (c *Client) GetStreak(ctx context.Context, username, streakType string) (model.Streak, error) {
	path := "/streaks/" + url.PathEscape(username)
	if streakType = strings.TrimSpace(streakType); streakType != "" {
		path += "?type=" + url.QueryEscape(streakType)
	}
	env := objectEnvelope[model.Streak]{key: "streak"}
	if err := c.Get(ctx, path, &env); err != nil {
		return model.Streak{}, err
	}
	if env.Value.StreakType == "" {
		env.Value.StreakType = streakType
	}
	return env.Value, nil
}

func (c *Client) UpdateStreak(ctx context.Context, in model.StreakUpdate) (model.Streak, error) {
	env := objectEnvelope[model.Streak]{key: "streak"}
	if err := c.Post(ctx, "/streaks/update", in, &env); err != nil {
		return model.Streak{}, err
	}
	if env.Value.StreakType == "" {
		env.Value.StreakType = in.StreakType
	}
	return env.Value, nil
}
