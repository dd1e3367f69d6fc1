package config

import (
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"
)

// envKeys lists the variables read for each setting; the first one set wins.
var envKeys = struct {
	URL, AnonKey, ProjectRef, DSN, LogLevel, Interval []string
}{
	URL:        []string{"CLOUDDEMO_URL", "SUPABASE_URL"},
	AnonKey:    []string{"CLOUDDEMO_ANON_KEY", "SUPABASE_ANON_KEY"},
	ProjectRef: []string{"CLOUDDEMO_PROJECT_REF", "SUPABASE_PROJECT_REF"},
	DSN:        []string{"CLOUDDEMO_DATABASE_DSN", "SUPABASE_DB_URL"},
	LogLevel:   []string{"CLOUDDEMO_LOG_LEVEL"},
	Interval:   []string{"CLOUDDEMO_HEALTH_INTERVAL"},
}

var lookupEnv = os.LookupEnv

// loadDotEnv loads ./.env into the process environment. Variables that are
// already set are left alone and a missing file is not an error.
func loadDotEnv() {
	_ = godotenv.Load()
}

func firstEnv(lookup func(string) (string, bool), keys []string) (string, bool) {
	for _, k := range keys {
		if v, ok := lookup(k); ok && v != "" {
			return v, true
		}
	}
	return "", false
}

// parseEnv overlays Config with values from environment variables.
// A malformed duration panics, matching the JSON and flag loaders.
func parseEnv(cfg *Config, lookup func(string) (string, bool)) {
	if v, ok := firstEnv(lookup, envKeys.URL); ok {
		cfg.BackendURL = v
	}
	if v, ok := firstEnv(lookup, envKeys.AnonKey); ok {
		cfg.AnonKey = v
	}
	if v, ok := firstEnv(lookup, envKeys.ProjectRef); ok {
		cfg.ProjectRef = v
	}
	if v, ok := firstEnv(lookup, envKeys.DSN); ok {
		cfg.DatabaseDSN = v
	}
	if v, ok := firstEnv(lookup, envKeys.LogLevel); ok {
		cfg.LogLevel = v
	}
	if v, ok := firstEnv(lookup, envKeys.Interval); ok {
		d, err := time.ParseDuration(v)
		if err != nil {
			if secs, convErr := strconv.Atoi(v); convErr == nil {
				d = time.Duration(secs) * time.Second
			} else {
				panic(err)
			}
		}
		cfg.HealthCheckInterval = d
	}
}
