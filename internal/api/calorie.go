package api

import (
	"context"
	"net/http"
	"time"

	"github.com/Snape93/nutrition-sub008/internal/model"
)

const calorieTimeout = 10 * time.Second

type dailyGoalResponse struct {
	DailyCalorieGoal model.FlexInt `json:"daily_calorie_goal"`
}

func (c *Client) CalculateDailyGoal(ctx context.Context, in model.CalorieInputs) (int, error) {
	var out dailyGoalResponse
	if err := c.Post(ctx, "/calculate/daily_goal", in, &out, WithTimeout(calorieTimeout)); err != nil {
		return 0, err
	}
	if out.DailyCalorieGoal <= 0 {
		return 0, &RequestError{Kind: KindFormat, Method: http.MethodPost, Path: "/calculate/daily_goal", Message: "missing daily_calorie_goal"}
	}
	return out.DailyCalorieGoal.Int(), nil
}
