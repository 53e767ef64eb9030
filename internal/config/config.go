package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

const (
	EnvAPIURL            = "NUTRI_API_URL"
	EnvTimeout           = "NUTRI_TIMEOUT"
	EnvPollInterval      = "NUTRI_POLL_INTERVAL"
	EnvCheckConnectivity = "NUTRI_CHECK_CONNECTIVITY"
	EnvLogLevel          = "NUTRI_LOG_LEVEL"
	EnvUnits             = "NUTRI_UNITS"
	EnvLookupProviders   = "NUTRI_LOOKUP_PROVIDERS"
	EnvUSDAAPIKey        = "NUTRI_USDA_API_KEY"
	EnvOpenFoodFactsURL  = "NUTRI_OPENFOODFACTS_URL"
	EnvUSDAURL           = "NUTRI_USDA_URL"
)

const (
	DefaultAPIURL       = "http://localhost:5000"
	DefaultTimeout      = 15 * time.Second
	DefaultPollInterval = 30 * time.Second
	DefaultLogLevel     = "warn"
	DefaultUnits        = "metric"
	DefaultLookup       = "openfoodfacts,usda"
)

// Config is the effective runtime configuration for one command.
type Config struct {
	APIURL            string
	Timeout           time.Duration
	PollInterval      time.Duration
	CheckConnectivity bool
	LogLevel          string
	Units             string
	LookupProviders   string
	USDAAPIKey        string
	OpenFoodFactsURL  string
	USDAURL           string
}

// Overrides holds values set on the command line. Empty fields are unset.
type Overrides struct {
	APIURL            string
	LogLevel          string
	Units             string
	CheckConnectivity *bool
}

// Source resolves settings in order: flag, process env, .env files, stored
// app_config rows, defaults.
type Source struct {
	Lookup func(key string) (string, bool)
	DotEnv map[string]string
	Stored map[string]string
	Flags  Overrides
}

// LoadDotEnv reads the given .env files; missing files are skipped. Earlier
// files win on duplicate keys, matching godotenv.Load.
func LoadDotEnv(paths ...string) (map[string]string, error) {
	out := map[string]string{}
	for _, p := range paths {
		if strings.TrimSpace(p) == "" {
			continue
		}
		if _, err := os.Stat(p); err != nil {
			if os.IsNotExist(err) {
				continue
			}
			return nil, fmt.Errorf("stat %s: %w", p, err)
		}
		vals, err := godotenv.Read(p)
		if err != nil {
			return nil, fmt.Errorf("read %s: %w", p, err)
		}
		for k, v := range vals {
			if _, ok := out[k]; !ok {
				out[k] = v
			}
		}
	}
	return out, nil
}

func (s Source) lookup(envKey, storedKey string) (string, bool) {
	lookup := s.Lookup
	if lookup == nil {
		lookup = os.LookupEnv
	}
	if v, ok := lookup(envKey); ok && strings.TrimSpace(v) != "" {
		return strings.TrimSpace(v), true
	}
	if v, ok := s.DotEnv[envKey]; ok && strings.TrimSpace(v) != "" {
		return strings.TrimSpace(v), true
	}
	if storedKey == "" {
		return "", false
	}
	if v, ok := s.Stored[storedKey]; ok && strings.TrimSpace(v) != "" {
		return strings.TrimSpace(v), true
	}
	return "", false
}

func (s Source) Resolve() (Config, error) {
	cfg := Config{
		APIURL:            DefaultAPIURL,
		Timeout:           DefaultTimeout,
		PollInterval:      DefaultPollInterval,
		CheckConnectivity: true,
		LogLevel:          DefaultLogLevel,
		Units:             DefaultUnits,
		LookupProviders:   DefaultLookup,
	}

	if v, ok := s.lookup(EnvAPIURL, "api_url"); ok {
		cfg.APIURL = v
	}
	if s.Flags.APIURL != "" {
		cfg.APIURL = s.Flags.APIURL
	}
	cfg.APIURL = strings.TrimRight(cfg.APIURL, "/")

	if v, ok := s.lookup(EnvTimeout, "timeout"); ok {
		d, err := parseDuration(v)
		if err != nil {
			return Config{}, fmt.Errorf("invalid timeout %q: %w", v, err)
		}
		cfg.Timeout = d
	}
	if v, ok := s.lookup(EnvPollInterval, "poll_interval"); ok {
		d, err := parseDuration(v)
		if err != nil {
			return Config{}, fmt.Errorf("invalid poll interval %q: %w", v, err)
		}
		cfg.PollInterval = d
	}
	if v, ok := s.lookup(EnvCheckConnectivity, "check_connectivity"); ok {
		b, err := strconv.ParseBool(v)
		if err != nil {
			return Config{}, fmt.Errorf("invalid check_connectivity %q: %w", v, err)
		}
		cfg.CheckConnectivity = b
	}
	if s.Flags.CheckConnectivity != nil {
		cfg.CheckConnectivity = *s.Flags.CheckConnectivity
	}

	if v, ok := s.lookup(EnvLogLevel, "log_level"); ok {
		cfg.LogLevel = strings.ToLower(v)
	}
	if s.Flags.LogLevel != "" {
		cfg.LogLevel = strings.ToLower(s.Flags.LogLevel)
	}

	if v, ok := s.lookup(EnvUnits, "units"); ok {
		cfg.Units = strings.ToLower(v)
	}
	if s.Flags.Units != "" {
		cfg.Units = strings.ToLower(s.Flags.Units)
	}
	if cfg.Units != "metric" && cfg.Units != "imperial" {
		return Config{}, fmt.Errorf("invalid units %q: expected metric or imperial", cfg.Units)
	}

	if v, ok := s.lookup(EnvLookupProviders, "lookup_providers"); ok {
		cfg.LookupProviders = strings.ToLower(v)
	}
	// Provider credentials and endpoints are never stored in app_config.
	cfg.USDAAPIKey, _ = s.lookup(EnvUSDAAPIKey, "")
	cfg.OpenFoodFactsURL, _ = s.lookup(EnvOpenFoodFactsURL, "")
	cfg.USDAURL, _ = s.lookup(EnvUSDAURL, "")
	return cfg, nil
}

func parseDuration(v string) (time.Duration, error) {
	var d time.Duration
	if secs, err := strconv.Atoi(v); err == nil {
		d = time.Duration(secs) * time.Second
	} else {
		parsed, err := time.ParseDuration(v)
		if err != nil {
			return 0, err
		}
		d = parsed
	}
	if d <= 0 {
		return 0, fmt.Errorf("must be positive")
	}
	return d, nil
}
