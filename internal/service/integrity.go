package service

import (
	"database/sql"
	"encoding/json"
	"fmt"
	"time"

	"github.com/Snape93/nutrition-sub008/internal/db"
	"github.com/Snape93/nutrition-sub008/internal/model"
)

type DoctorReport struct {
	SchemaVersion       int      `json:"schema_version"`
	LatestVersion       int      `json:"latest_version"`
	InvalidProfileCache bool     `json:"invalid_profile_cache"`
	StaleProfileCache   bool     `json:"stale_profile_cache"`
	ExpiredSession      bool     `json:"expired_session"`
	InvalidConfigKeys   []string `json:"invalid_config_keys,omitempty"`
	ExpiredFoodFacts    int      `json:"expired_food_facts"`
	Fixed               int      `json:"fixed,omitempty"`
}

func (r DoctorReport) Healthy() bool {
	return r.SchemaVersion == r.LatestVersion && !r.InvalidProfileCache && !r.StaleProfileCache &&
		!r.ExpiredSession && len(r.InvalidConfigKeys) == 0
}

// RunDoctor checks local state. With fix set, broken rows are removed; the
// cache and session are rebuilt from the server on next use. Expired food
// facts do not make the report unhealthy but are purged by fix.
func RunDoctor(sqldb *sql.DB, fix bool, now time.Time) (DoctorReport, error) {
	var r DoctorReport
	var err error
	r.LatestVersion = db.LatestVersion()
	if r.SchemaVersion, err = db.AppliedVersion(sqldb); err != nil {
		return r, err
	}

	var cachedUser, payload string
	err = sqldb.QueryRow(`SELECT username, payload_json FROM profile_cache WHERE id = 1`).Scan(&cachedUser, &payload)
	switch {
	case err == sql.ErrNoRows:
	case err != nil:
		return r, fmt.Errorf("read profile cache: %w", err)
	default:
		var p model.Profile
		if json.Unmarshal([]byte(payload), &p) != nil {
			r.InvalidProfileCache = true
		}
	}

	sess, err := LoadSession(sqldb)
	if err != nil {
		return r, err
	}
	if sess != nil && sess.Expired(now) {
		r.ExpiredSession = true
	}
	if cachedUser != "" && (sess == nil || sess.Username != cachedUser) {
		r.StaleProfileCache = true
	}

	cfg, err := ListConfig(sqldb)
	if err != nil {
		return r, err
	}
	for k, v := range cfg {
		if ValidateConfig(k, v) != nil {
			r.InvalidConfigKeys = append(r.InvalidConfigKeys, k)
		}
	}

	if err := sqldb.QueryRow(`SELECT COUNT(*) FROM food_facts_cache WHERE expires_at <= ?`,
		now.UTC().Format(time.RFC3339)).Scan(&r.ExpiredFoodFacts); err != nil {
		return r, fmt.Errorf("count expired food facts: %w", err)
	}

	if !fix {
		return r, nil
	}
	if r.InvalidProfileCache || r.StaleProfileCache {
		if err := InvalidateProfile(sqldb); err != nil {
			return r, err
		}
		r.Fixed++
	}
	if r.ExpiredSession {
		if err := ClearSession(sqldb); err != nil {
			return r, err
		}
		r.Fixed++
	}
	for _, k := range r.InvalidConfigKeys {
		if err := UnsetConfig(sqldb, k); err != nil {
			return r, err
		}
		r.Fixed++
	}
	if r.ExpiredFoodFacts > 0 {
		if _, err := PurgeExpiredFoodFacts(sqldb, now); err != nil {
			return r, err
		}
		r.Fixed++
	}
	return r, nil
}
