package config

import (
	"flag"
	"io"
	"time"

	"github.com/dmitrijs2005/clouddemo/internal/flagx"
)

// FlagNames lists every flag owned by this package, including the JSON file
// selectors. Callers strip them before handing the rest of the command line
// to the command router.
var FlagNames = []string{"-u", "-k", "-d", "-l", "-i", "-c", "-config"}

// parseFlags populates selected Config fields from command-line flags.
//
//	-u string   backend base URL
//	-k string   anon (publishable) API key
//	-d string   PostgreSQL DSN used by the migrate command
//	-l string   log level (debug, info, warn, error)
//	-i int      health check interval in seconds
//
// args is filtered with flagx.FilterArgs so unrelated flags do not interfere.
// Panics on malformed values.
func parseFlags(cfg *Config, args []string) {
	args = flagx.FilterArgs(args, []string{"-u", "-k", "-d", "-l", "-i"})

	fs := flag.NewFlagSet("clouddemo", flag.ContinueOnError)
	fs.SetOutput(io.Discard)

	fs.StringVar(&cfg.BackendURL, "u", cfg.BackendURL, "backend base URL")
	fs.StringVar(&cfg.AnonKey, "k", cfg.AnonKey, "anon API key")
	fs.StringVar(&cfg.DatabaseDSN, "d", cfg.DatabaseDSN, "database DSN")
	fs.StringVar(&cfg.LogLevel, "l", cfg.LogLevel, "log level")
	interval := fs.Int("i", 0, "health check interval (in seconds)")

	if err := fs.Parse(args); err != nil {
		panic(err)
	}

	// sub-second intervals from env or JSON survive unless -i is given
	fs.Visit(func(f *flag.Flag) {
		if f.Name == "i" {
			cfg.HealthCheckInterval = time.Duration(*interval) * time.Second
		}
	})
}
