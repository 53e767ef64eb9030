package service

import (
	"database/sql"
	"fmt"
	"net/url"
	"strconv"
	"strings"
	"time"
)

const (
	ConfigAPIURL            = "api_url"
	ConfigTimeout           = "timeout"
	ConfigPollInterval      = "poll_interval"
	ConfigCheckConnectivity = "check_connectivity"
	ConfigLogLevel          = "log_level"
	ConfigUnits             = "units"
	ConfigLookupProviders   = "lookup_providers"
)

var configValidators = map[string]func(string) error{
	ConfigAPIURL: func(v string) error {
		u, err := url.Parse(v)
		if err != nil || u.Host == "" || (u.Scheme != "http" && u.Scheme != "https") {
			return fmt.Errorf("api_url must be an http(s) URL")
		}
		return nil
	},
	ConfigTimeout:      validateDuration,
	ConfigPollInterval: validateDuration,
	ConfigCheckConnectivity: func(v string) error {
		if _, err := strconv.ParseBool(v); err != nil {
			return fmt.Errorf("check_connectivity must be true or false")
		}
		return nil
	},
	ConfigLogLevel: func(v string) error {
		switch strings.ToLower(v) {
		case "debug", "info", "warn", "error":
			return nil
		}
		return fmt.Errorf("log_level must be debug, info, warn or error")
	},
	ConfigLookupProviders: func(v string) error {
		_, err := ParseProviderOrder(v)
		return err
	},
	ConfigUnits: func(v string) error {
		switch strings.ToLower(v) {
		case "metric", "imperial":
			return nil
		}
		return fmt.Errorf("units must be metric or imperial")
	},
}

// ParseDurationSetting accepts Go durations ("45s") or bare seconds ("45").
func ParseDurationSetting(v string) (time.Duration, error) {
	v = strings.TrimSpace(v)
	if secs, err := strconv.Atoi(v); err == nil {
		return time.Duration(secs) * time.Second, nil
	}
	return time.ParseDuration(v)
}

func validateDuration(v string) error {
	d, err := ParseDurationSetting(v)
	if err != nil || d <= 0 {
		return fmt.Errorf("expected a positive duration like 30s or 30")
	}
	return nil
}

func ValidateConfig(key, value string) error {
	key = strings.TrimSpace(strings.ToLower(key))
	validate, ok := configValidators[key]
	if !ok {
		return fmt.Errorf("unknown config key %q", key)
	}
	return validate(strings.TrimSpace(value))
}

func SetConfig(db *sql.DB, key, value string) error {
	key = strings.TrimSpace(strings.ToLower(key))
	if key == "" {
		return fmt.Errorf("config key is required")
	}
	if err := ValidateConfig(key, value); err != nil {
		return err
	}
	_, err := db.Exec(`
INSERT INTO app_config(key, value, updated_at)
VALUES(?, ?, CURRENT_TIMESTAMP)
ON CONFLICT(key) DO UPDATE SET value=excluded.value, updated_at=excluded.updated_at
`, key, strings.TrimSpace(value))
	if err != nil {
		return fmt.Errorf("set config %q: %w", key, err)
	}
	return nil
}

func GetConfig(db *sql.DB, key string) (string, bool, error) {
	key = strings.TrimSpace(strings.ToLower(key))
	if key == "" {
		return "", false, fmt.Errorf("config key is required")
	}
	var value string
	err := db.QueryRow(`SELECT value FROM app_config WHERE key = ?`, key).Scan(&value)
	if err == sql.ErrNoRows {
		return "", false, nil
	}
	if err != nil {
		return "", false, fmt.Errorf("get config %q: %w", key, err)
	}
	return value, true, nil
}

func UnsetConfig(db *sql.DB, key string) error {
	key = strings.TrimSpace(strings.ToLower(key))
	if _, err := db.Exec(`DELETE FROM app_config WHERE key = ?`, key); err != nil {
		return fmt.Errorf("unset config %q: %w", key, err)
	}
	return nil
}

func ListConfig(db *sql.DB) (map[string]string, error) {
	rows, err := db.Query(`SELECT key, value FROM app_config ORDER BY key ASC`)
	if err != nil {
		return nil, fmt.Errorf("list config: %w", err)
	}
	defer rows.Close()
	out := map[string]string{}
	for rows.Next() {
		var key, value string
		if err := rows.Scan(&key, &value); err != nil {
			return nil, fmt.Errorf("scan config: %w", err)
		}
		out[key] = value
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate config: %w", err)
	}
	return out, nil
}
