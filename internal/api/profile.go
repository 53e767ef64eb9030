package api

import (
	"context"
	"net/url"

	"github.com/Snape93/nutrition-sub008/internal/model"
)

func (c *Client) GetProfile(ctx context.Context, username string) (model.Profile, error) {
	env := objectEnvelope[model.Profile]{key: "user"}
	if err := c.Get(ctx, "/user/"+url.PathEscape(username), &env); err != nil {
		return model.Profile{}, err
	}
	if env.Value.Username == "" {
		env.Value.Username = username
	}
	return env.Value, nil
}

func (c *Client) UpdateProfile(ctx context.Context, username string, update model.ProfileUpdate) error {
	return c.Put(ctx, "/user/"+url.PathEscape(username), update, nil)
}
