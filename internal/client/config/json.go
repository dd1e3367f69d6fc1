package config

import (
	"encoding/json"
	"os"

	"github.com/dmitrijs2005/clouddemo/internal/flagx"
	"github.com/dmitrijs2005/clouddemo/internal/timex"
)

// JsonConfig is a DTO used exclusively for JSON unmarshalling.
// Durations use timex.Duration so they may be strings like "5s" or integer
// nanoseconds. Absent fields leave the current Config value untouched.
type JsonConfig struct {
	BackendURL          *string         `json:"backend_url"`
	AnonKey             *string         `json:"anon_key"`
	ProjectRef          *string         `json:"project_ref"`
	DatabaseDSN         *string         `json:"database_dsn"`
	S3Region            *string         `json:"s3_region"`
	Bucket              *string         `json:"bucket"`
	FunctionName        *string         `json:"function_name"`
	SessionDBPath       *string         `json:"session_db_path"`
	KeyFile             *string         `json:"key_file"`
	HealthCheckInterval *timex.Duration `json:"health_check_interval"`
	RequestTimeout      *timex.Duration `json:"request_timeout"`
	LogLevel            *string         `json:"log_level"`
	LogFormat           *string         `json:"log_format"`
	ChatHistoryLimit    *int            `json:"chat_history_limit"`
	FileListLimit       *int            `json:"file_list_limit"`
	MaxUploadSize       *int64          `json:"max_upload_size"`
}

// parseJson overlays Config with values loaded from the JSON file named by
// -c or -config in args. Without such a flag nothing is loaded.
// Panics on read or unmarshal errors.
func parseJson(cfg *Config, args []string) {
	jsonConfigFile := flagx.ConfigFileFlag(args)
	if jsonConfigFile == "" {
		return
	}

	var jc JsonConfig

	data, err := os.ReadFile(jsonConfigFile)
	if err != nil {
		panic(err)
	}
	if err := json.Unmarshal(data, &jc); err != nil {
		panic(err)
	}

	setString(&cfg.BackendURL, jc.BackendURL)
	setString(&cfg.AnonKey, jc.AnonKey)
	setString(&cfg.ProjectRef, jc.ProjectRef)
	setString(&cfg.DatabaseDSN, jc.DatabaseDSN)
	setString(&cfg.S3Region, jc.S3Region)
	setString(&cfg.Bucket, jc.Bucket)
	setString(&cfg.FunctionName, jc.FunctionName)
	setString(&cfg.SessionDBPath, jc.SessionDBPath)
	setString(&cfg.KeyFile, jc.KeyFile)
	setString(&cfg.LogLevel, jc.LogLevel)
	setString(&cfg.LogFormat, jc.LogFormat)

	if jc.HealthCheckInterval != nil {
		cfg.HealthCheckInterval = jc.HealthCheckInterval.Duration
	}
	if jc.RequestTimeout != nil {
		cfg.RequestTimeout = jc.RequestTimeout.Duration
	}
	if jc.ChatHistoryLimit != nil {
		cfg.ChatHistoryLimit = *jc.ChatHistoryLimit
	}
	if jc.FileListLimit != nil {
		cfg.FileListLimit = *jc.FileListLimit
	}
	if jc.MaxUploadSize != nil {
		cfg.MaxUploadSize = *jc.MaxUploadSize
	}
}

func setString(dst *string, v *string) {
	if v != nil {
		*dst = *v
	}
}
