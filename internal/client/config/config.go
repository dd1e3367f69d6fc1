package config

import (
	"net/url"
	"strings"
	"time"
)

// Config holds runtime settings for the clouddemo client.
//
// Units: HealthCheckInterval and RequestTimeout are time.Duration values;
// MaxUploadSize is in bytes.
type Config struct {
	BackendURL  string
	AnonKey     string
	ProjectRef  string
	DatabaseDSN string
	S3Region    string

	Bucket       string
	FunctionName string

	SessionDBPath string
	KeyFile       string

	HealthCheckInterval time.Duration
	RequestTimeout      time.Duration

	LogLevel  string
	LogFormat string

	ChatHistoryLimit int
	FileListLimit    int
	MaxUploadSize    int64
}

const defaultHealthCheckInterval = 5 * time.Second

// LoadDefaults populates c with sensible defaults.
func (c *Config) LoadDefaults() {
	c.BackendURL = "http://127.0.0.1:54321"
	c.S3Region = "us-east-1"
	c.Bucket = "uploads"
	c.FunctionName = "hello-world"
	c.SessionDBPath = "clouddemo.db"
	c.KeyFile = "clouddemo.key"
	c.HealthCheckInterval = defaultHealthCheckInterval
	c.RequestTimeout = 15 * time.Second
	c.LogLevel = "warn"
	c.LogFormat = "text"
	c.ChatHistoryLimit = 50
	c.FileListLimit = 20
	c.MaxUploadSize = 5 << 20
}

// LoadConfig constructs a Config, applies defaults, then overlays values from
// the environment (including a .env file), a JSON file and command-line flags.
// Later sources take precedence over earlier ones. args excludes the program
// name.
func LoadConfig(args []string) *Config {
	cfg := &Config{}
	cfg.LoadDefaults()
	loadDotEnv()
	parseEnv(cfg, lookupEnv)
	parseJson(cfg, args)
	parseFlags(cfg, args)
	cfg.deriveProjectRef()
	if cfg.HealthCheckInterval <= 0 {
		cfg.HealthCheckInterval = defaultHealthCheckInterval
	}
	return cfg
}

// deriveProjectRef fills ProjectRef from a hosted backend URL of the form
// https://<ref>.supabase.co when it was not configured explicitly.
func (c *Config) deriveProjectRef() {
	if c.ProjectRef != "" {
		return
	}
	u, err := url.Parse(c.BackendURL)
	if err != nil {
		return
	}
	host := u.Hostname()
	if ref, rest, ok := strings.Cut(host, "."); ok && strings.Contains(rest, ".") {
		c.ProjectRef = ref
	}
}
