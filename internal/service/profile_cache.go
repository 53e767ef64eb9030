package service

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"github.com/Snape93/nutrition-sub008/internal/model"
)

// SaveProfile replaces whatever profile was cached before.
func SaveProfile(db *sql.DB, p model.Profile, fetchedAt time.Time) error {
	if strings.TrimSpace(p.Username) == "" {
		return fmt.Errorf("profile username is required")
	}
	payload, err := json.Marshal(p)
	if err != nil {
		return fmt.Errorf("marshal profile: %w", err)
	}
	_, err = db.Exec(`
INSERT INTO profile_cache(id, username, payload_json, fetched_at)
VALUES(1, ?, ?, ?)
ON CONFLICT(id) DO UPDATE SET
  username=excluded.username,
  payload_json=excluded.payload_json,
  fetched_at=excluded.fetched_at
`, p.Username, string(payload), fetchedAt.UTC().Format(time.RFC3339))
	if err != nil {
		return fmt.Errorf("cache profile %q: %w", p.Username, err)
	}
	return nil
}

// CachedProfile returns nil when nothing is cached for username.
func CachedProfile(db *sql.DB, username string) (*model.Profile, time.Time, error) {
	var cachedUser, payload, fetchedRaw string
	err := db.QueryRow(`SELECT username, payload_json, fetched_at FROM profile_cache WHERE id = 1`).Scan(&cachedUser, &payload, &fetchedRaw)
	if err == sql.ErrNoRows {
		return nil, time.Time{}, nil
	}
	if err != nil {
		return nil, time.Time{}, fmt.Errorf("read cached profile: %w", err)
	}
	if !strings.EqualFold(cachedUser, strings.TrimSpace(username)) {
		return nil, time.Time{}, nil
	}
	var p model.Profile
	if err := json.Unmarshal([]byte(payload), &p); err != nil {
		return nil, time.Time{}, fmt.Errorf("decode cached profile: %w", err)
	}
	fetchedAt, err := time.Parse(time.RFC3339, fetchedRaw)
	if err != nil {
		return nil, time.Time{}, fmt.Errorf("parse cached profile time: %w", err)
	}
	return &p, fetchedAt, nil
}

func InvalidateProfile(db *sql.DB) error {
	if _, err := db.Exec(`DELETE FROM profile_cache`); err != nil {
		return fmt.Errorf("invalidate profile cache: %w", err)
	}
	return nil
}

type ProfileRemote interface {
	GetProfile(ctx context.Context, username string) (model.Profile, error)
	UpdateProfile(ctx context.Context, username string, update model.ProfileUpdate) error
}

type ProfileService struct {
	DB     *sql.DB
	Remote ProfileRemote
	// Goals recomputes the daily calorie goal when body inputs change; nil skips it.
	Goals GoalCalculator
	Now   func() time.Time
}

type ProfileResult struct {
	Profile   model.Profile
	FromCache bool
	FetchedAt time.Time
}

func (s *ProfileService) now() time.Time {
	if s.Now != nil {
		return s.Now()
	}
	return time.Now()
}

// Get reads through the cache unless refresh is set.
func (s *ProfileService) Get(ctx context.Context, username string, refresh bool) (ProfileResult, error) {
	username = strings.TrimSpace(username)
	if username == "" {
		return ProfileResult{}, fmt.Errorf("username is required")
	}
	if !refresh {
		cached, fetchedAt, err := CachedProfile(s.DB, username)
		if err != nil {
			return ProfileResult{}, err
		}
		if cached != nil {
			return ProfileResult{Profile: *cached, FromCache: true, FetchedAt: fetchedAt}, nil
		}
	}
	p, err := s.Remote.GetProfile(ctx, username)
	if err != nil {
		return ProfileResult{}, err
	}
	p.Goal = NormalizeGoal(p.Goal)
	fetchedAt := s.now()
	if err := SaveProfile(s.DB, p, fetchedAt); err != nil {
		return ProfileResult{}, err
	}
	return ProfileResult{Profile: p, FetchedAt: fetchedAt}, nil
}

// Update pushes the change, then drops the cache so the next read refetches.
func (s *ProfileService) Update(ctx context.Context, username string, update model.ProfileUpdate) (model.ProfileUpdate, error) {
	if update.Empty() {
		return update, fmt.Errorf("no profile fields to update")
	}
	if update.Goal != nil {
		g := NormalizeGoal(*update.Goal)
		if _, ok := goalAdjustments[g]; !ok {
			return update, fmt.Errorf("invalid goal %q", *update.Goal)
		}
		update.Goal = &g
	}
	if update.ActivityLevel != nil {
		a := NormalizeActivityLevel(*update.ActivityLevel)
		if _, ok := activityMultipliers[a]; !ok {
			return update, fmt.Errorf("invalid activity level %q", *update.ActivityLevel)
		}
		update.ActivityLevel = &a
	}
	if update.Sex != nil {
		sx, err := NormalizeSex(*update.Sex)
		if err != nil {
			return update, err
		}
		update.Sex = &sx
	}
	if update.Email != nil && !ValidEmail(*update.Email) {
		return update, fmt.Errorf("invalid email %q", *update.Email)
	}

	if s.Goals != nil && update.DailyCalorieGoal == nil && touchesCalorieInputs(update) {
		current, err := s.Get(ctx, username, false)
		if err != nil {
			return update, err
		}
		merged := applyProfileUpdate(current.Profile, update)
		if in, err := CalorieInputsFromProfile(merged); err == nil {
			res, err := ResolveDailyGoal(ctx, s.Goals, in)
			if err == nil {
				kcal := res.Calories
				update.DailyCalorieGoal = &kcal
			}
		}
	}

	if err := s.Remote.UpdateProfile(ctx, username, update); err != nil {
		return update, err
	}
	if err := InvalidateProfile(s.DB); err != nil {
		return update, err
	}
	return update, nil
}

func touchesCalorieInputs(u model.ProfileUpdate) bool {
	return u.Age != nil || u.Sex != nil || u.WeightKg != nil || u.HeightCm != nil ||
		u.ActivityLevel != nil || u.Goal != nil
}

func applyProfileUpdate(p model.Profile, u model.ProfileUpdate) model.Profile {
	if u.Email != nil {
		p.Email = *u.Email
	}
	if u.Sex != nil {
		p.Sex = *u.Sex
	}
	if u.Age != nil {
		p.Age = model.FlexInt(*u.Age)
	}
	if u.HeightCm != nil {
		p.HeightCm = model.FlexFloat(*u.HeightCm)
	}
	if u.WeightKg != nil {
		p.WeightKg = model.FlexFloat(*u.WeightKg)
	}
	if u.TargetWeightKg != nil {
		p.TargetWeightKg = model.FlexFloat(*u.TargetWeightKg)
	}
	if u.ActivityLevel != nil {
		p.ActivityLevel = *u.ActivityLevel
	}
	if u.Goal != nil {
		p.Goal = *u.Goal
	}
	if u.DailyCalorieGoal != nil {
		p.DailyCalorieGoal = model.FlexInt(*u.DailyCalorieGoal)
	}
	return p
}
