package api

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/Snape93/nutrition-sub008/internal/model"
)

func (c *Client) Login(ctx context.Context, creds model.Credentials) (model.AuthResult, error) {
	var out model.AuthResult
	if err := c.Post(ctx, "/login", creds, &out); err != nil {
		if isStatus(err, 400, 401, 403) {
			return model.AuthResult{}, fmt.Errorf("%w: %s", ErrAuthFailed, UserMessage(err))
		}
		return model.AuthResult{}, err
	}
	if !out.Success {
		msg := strings.TrimSpace(out.Message)
		if msg == "" {
			msg = "invalid username or password"
		}
		return model.AuthResult{}, fmt.Errorf("%w: %s", ErrAuthFailed, msg)
	}
	if out.User.Username == "" {
		out.User.Username = creds.Username
	}
	return out, nil
}

func (c *Client) Register(ctx context.Context, reg model.Registration) (model.AuthResult, error) {
	var out model.AuthResult
	if err := c.Post(ctx, "/register", reg, &out); err != nil {
		return model.AuthResult{}, err
	}
	if !out.Success {
		msg := strings.TrimSpace(out.Message)
		if msg == "" {
			msg = "registration rejected"
		}
		return model.AuthResult{}, fmt.Errorf("register %s: %s", reg.Username, msg)
	}
	return out, nil
}

func (c *Client) Ping(ctx context.Context) error {
	return c.Get(ctx, "/health", nil, WithTimeout(5*time.Second), WithoutConnectivityCheck())
}
