package model

import "time"

type Profile struct {
	Username         string    `json:"username"`
	Email            string    `json:"email"`
	Sex              string    `json:"sex"`
	Age              FlexInt   `json:"age"`
	HeightCm         FlexFloat `json:"height"`
	WeightKg         FlexFloat `json:"weight"`
	TargetWeightKg   FlexFloat `json:"target_weight"`
	ActivityLevel    string    `json:"activity_level"`
	Goal             string    `json:"goal"`
	DailyCalorieGoal FlexInt   `json:"daily_calorie_goal"`
}

// ProfileUpdate carries only the fields being changed.
type ProfileUpdate struct {
	Email            *string  `json:"email,omitempty"`
	Sex              *string  `json:"sex,omitempty"`
	Age              *int     `json:"age,omitempty"`
	HeightCm         *float64 `json:"height,omitempty"`
	WeightKg         *float64 `json:"weight,omitempty"`
	TargetWeightKg   *float64 `json:"target_weight,omitempty"`
	ActivityLevel    *string  `json:"activity_level,omitempty"`
	Goal             *string  `json:"goal,omitempty"`
	DailyCalorieGoal *int     `json:"daily_calorie_goal,omitempty"`
}

func (u ProfileUpdate) Empty() bool {
	return u.Email == nil && u.Sex == nil && u.Age == nil && u.HeightCm == nil &&
		u.WeightKg == nil && u.TargetWeightKg == nil && u.ActivityLevel == nil &&
		u.Goal == nil && u.DailyCalorieGoal == nil
}

const (
	PhaseRestricted  = "restricted"
	PhaseDeletable   = "deletable"
	PhaseAutoRemoved = "auto_removed"
)

type FoodLog struct {
	ID                   int64     `json:"id"`
	Username             string    `json:"user,omitempty"`
	FoodName             string    `json:"food_name"`
	MealType             string    `json:"meal_type"`
	Calories             FlexFloat `json:"calories"`
	ServingSize          string    `json:"serving_size,omitempty"`
	LoggedAt             string    `json:"timestamp,omitempty"`
	Phase                string    `json:"phase,omitempty"`
	TimeRemainingSeconds FlexInt   `json:"time_remaining_seconds,omitempty"`
	PhaseProgress        FlexFloat `json:"phase_progress,omitempty"`
}

type NewFoodLog struct {
	Username    string  `json:"user"`
	FoodName    string  `json:"food_name"`
	MealType    string  `json:"meal_type"`
	Calories    float64 `json:"calories"`
	ServingSize string  `json:"serving_size,omitempty"`
	Date        string  `json:"date,omitempty"`
}

type WeightLog struct {
	ID       int64     `json:"id"`
	Date     string    `json:"date"`
	WeightKg FlexFloat `json:"weight"`
}

type NewWeightLog struct {
	Username string  `json:"user"`
	Date     string  `json:"date"`
	WeightKg float64 `json:"weight"`
}

type ExerciseLog struct {
	ID             int64     `json:"id"`
	Date           string    `json:"date"`
	ExerciseName   string    `json:"exercise_name"`
	DurationMin    FlexFloat `json:"duration"`
	CaloriesBurned FlexFloat `json:"calories_burned"`
}

type NewExerciseLog struct {
	Username       string  `json:"user"`
	Date           string  `json:"date"`
	ExerciseName   string  `json:"exercise_name"`
	DurationMin    float64 `json:"duration"`
	CaloriesBurned float64 `json:"calories_burned"`
}

type Streak struct {
	StreakType       string  `json:"streak_type"`
	CurrentStreak    FlexInt `json:"current_streak"`
	LongestStreak    FlexInt `json:"longest_streak"`
	LastActivityDate string  `json:"last_activity_date,omitempty"`
}

type StreakUpdate struct {
	Username   string `json:"user"`
	StreakType string `json:"streak_type"`
	GoalMet    bool   `json:"goal_met"`
	Date       string `json:"date,omitempty"`
}

type Session struct {
	Username  string
	Token     string
	ExpiresAt *time.Time
	CreatedAt time.Time
}

func (s Session) Expired(now time.Time) bool {
	return s.ExpiresAt != nil && !now.Before(*s.ExpiresAt)
}

type Credentials struct {
	Username string `json:"username"`
	Password string `json:"password"`
}

type Registration struct {
	Username string `json:"username"`
	Email    string `json:"email"`
	Password string `json:"password"`
}

type AuthResult struct {
	Success bool    `json:"success"`
	Message string  `json:"message,omitempty"`
	Token   string  `json:"token,omitempty"`
	User    Profile `json:"user"`
}

type CalorieInputs struct {
	Age           int     `json:"age"`
	Sex           string  `json:"sex"`
	WeightKg      float64 `json:"weight"`
	HeightCm      float64 `json:"height"`
	ActivityLevel string  `json:"activity_level"`
	Goal          string  `json:"goal"`
}
