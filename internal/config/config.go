// Package config centralizes the tools' configuration. Every tunable is a
// command-line flag whose default is seeded from an environment variable,
// so the defaults reproduce the historical fixed paths while tests and
// operators can point the tools anywhere.
//
// Typical usage:
//
//	cfg := config.Load() // reads .env, os.Environ and os.Args
//
// For tests, prefer LoadFromArgs to keep them hermetic:
//
//	fs := flag.NewFlagSet("test", flag.ContinueOnError)
//	getenv := func(k string) string { return testEnv[k] }
//	cfg, err := config.LoadFromArgs(fs, getenv, []string{"-samples=3"})
package config

import (
	"errors"
	"flag"
	"log"
	"os"
	"strconv"
	"strings"

	"github.com/joho/godotenv"
)

// Defaults match the locations the sync scripts have always used.
const (
	DefaultDumpPath   = "backups/2025-10-30_remote.sql"
	DefaultLogPath    = "logs/vehicle_i18n_expand.csv"
	DefaultOutputPath = "supabase/migrations/20251101100500_sync_vehicle_generation_i18n.sql"
)

// Config holds all process configuration. Fields are plain values so the
// struct can be copied freely after construction.
type Config struct {
	// IO
	DumpPath   string // PostgreSQL plain-text dump read by the compare tool.
	LogPath    string // CSV translation log read by both tools.
	OutputPath string // Migration written by the generator.

	// Report
	SampleLimit  int  // Diffs printed by the compare tool; negative prints all.
	StrictArrays bool // Validate dump array cells with PostgreSQL's grammar.

	// Metrics
	MetricsBackend string // "none" or "pushgateway".
	PushGatewayURL string
}

// LoadFromArgs defines flags on fs, seeds their defaults through getenv and
// parses args. Explicit flags win over the environment.
func LoadFromArgs(fs *flag.FlagSet, getenv func(string) string, args []string) (*Config, error) {
	cfg := &Config{}

	fs.StringVar(&cfg.DumpPath, "dump", envOrDefault(getenv, "I18N_DUMP", DefaultDumpPath), "Path to the PostgreSQL plain-text dump")
	fs.StringVar(&cfg.LogPath, "log", envOrDefault(getenv, "I18N_LOG", DefaultLogPath), "Path to the CSV translation log")
	fs.StringVar(&cfg.OutputPath, "out", envOrDefault(getenv, "I18N_OUT", DefaultOutputPath), "Path of the generated migration")

	fs.IntVar(&cfg.SampleLimit, "samples", intEnvOrDefault(getenv, "I18N_SAMPLES", 10), "Number of sample diffs to print (-1 for all)")
	fs.BoolVar(&cfg.StrictArrays, "strict_arrays", boolEnvOrDefault(getenv, "I18N_STRICT_ARRAYS", false), "Warn about dump array cells PostgreSQL would reject")

	fs.StringVar(&cfg.MetricsBackend, "metrics_backend", envOrDefault(getenv, "METRICS_BACKEND", "none"), "Metrics backend: 'none' or 'pushgateway'")
	fs.StringVar(&cfg.PushGatewayURL, "pushgateway_url", envOrDefault(getenv, "PUSHGATEWAY_URL", "http://localhost:9091"), "Pushgateway base URL")

	if args == nil {
		args = []string{}
	}
	if err := fs.Parse(args); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Load is the production entry point. A .env file in the working directory,
// when present, seeds variables that are not already set.
func Load() (*Config, error) {
	if err := godotenv.Load(); err != nil && !errors.Is(err, os.ErrNotExist) {
		log.Printf("config: ignoring .env: %v", err)
	}
	return LoadFromArgs(flag.CommandLine, os.Getenv, os.Args[1:])
}

func envOrDefault(getenv func(string) string, k, d string) string {
	if v := getenv(k); v != "" {
		return v
	}
	return d
}

func intEnvOrDefault(getenv func(string) string, k string, d int) int {
	if v := getenv(k); v != "" {
		if i, err := strconv.Atoi(v); err == nil {
			return i
		}
	}
	return d
}

// boolEnvOrDefault accepts 1/0, true/false, yes/no and on/off in any case.
func boolEnvOrDefault(getenv func(string) string, k string, d bool) bool {
	switch strings.ToLower(getenv(k)) {
	case "1", "true", "yes", "on":
		return true
	case "0", "false", "no", "off":
		return false
	}
	return d
}
