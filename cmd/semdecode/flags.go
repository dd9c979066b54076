package main

import (
	"flag"
	"fmt"
	"io"
	"os"
	"slices"
	"strconv"
	"time"

	"github.com/c360/semdecode/codec"
	"github.com/c360/semdecode/config"
)

// CLIConfig holds command-line configuration
type CLIConfig struct {
	ConfigPath      string
	Codec           string
	Namespace       string
	InputPath       string
	LogLevel        string
	LogFormat       string
	Enrich          bool
	Schema          bool
	Serve           bool
	Validate        bool
	ShutdownTimeout time.Duration
	ShowVersion     bool
}

func parseFlags(args []string, stderr io.Writer) (*CLIConfig, error) {
	cfg := &CLIConfig{}
	fs := flag.NewFlagSet(appName, flag.ContinueOnError)
	fs.SetOutput(stderr)

	// Define flags with environment variable fallback
	fs.StringVar(&cfg.ConfigPath, "config",
		getEnv("SEMDECODE_CONFIG", ""),
		"Path to a JSON or YAML configuration file (env: SEMDECODE_CONFIG)")

	fs.StringVar(&cfg.ConfigPath, "c",
		getEnv("SEMDECODE_CONFIG", ""),
		"Path to a JSON or YAML configuration file (env: SEMDECODE_CONFIG)")

	fs.StringVar(&cfg.Codec, "codec",
		getEnv("SEMDECODE_CODEC", ""),
		"Codec overriding the configured one: bytes, json (env: SEMDECODE_CODEC)")

	fs.StringVar(&cfg.Namespace, "namespace",
		getEnv("SEMDECODE_NAMESPACE", ""),
		"Log namespace overriding the configured one: legacy, modern (env: SEMDECODE_NAMESPACE)")

	fs.StringVar(&cfg.InputPath, "input",
		getEnv("SEMDECODE_INPUT", "-"),
		"File of newline-framed payloads, - for stdin (env: SEMDECODE_INPUT)")

	fs.StringVar(&cfg.LogLevel, "log-level",
		getEnv("SEMDECODE_LOG_LEVEL", "info"),
		"Log level: debug, info, warn, error (env: SEMDECODE_LOG_LEVEL)")

	fs.StringVar(&cfg.LogFormat, "log-format",
		getEnv("SEMDECODE_LOG_FORMAT", "text"),
		"Log format: json, text (env: SEMDECODE_LOG_FORMAT)")

	fs.BoolVar(&cfg.Enrich, "enrich",
		getEnvBool("SEMDECODE_ENRICH", false),
		"Add source type and ingest time to decoded events (env: SEMDECODE_ENRICH)")

	fs.DurationVar(&cfg.ShutdownTimeout, "shutdown-timeout",
		getEnvDuration("SEMDECODE_SHUTDOWN_TIMEOUT", 10*time.Second),
		"Graceful shutdown timeout in serve mode (env: SEMDECODE_SHUTDOWN_TIMEOUT)")

	fs.BoolVar(&cfg.Schema, "schema", false, "Print the JSON Schema of decoded events and exit")
	fs.BoolVar(&cfg.Serve, "serve", false, "Decode payloads from NATS until interrupted")
	fs.BoolVar(&cfg.Validate, "validate", false, "Validate configuration and exit")
	fs.BoolVar(&cfg.ShowVersion, "version", false, "Show version information")
	fs.BoolVar(&cfg.ShowVersion, "v", false, "Show version information")

	fs.Usage = func() {
		printDetailedHelp(fs, stderr)
	}

	if err := fs.Parse(args); err != nil {
		return nil, err
	}
	if fs.NArg() > 0 {
		return nil, fmt.Errorf("unexpected arguments: %v", fs.Args())
	}
	return cfg, nil
}

func validateFlags(cfg *CLIConfig) error {
	if cfg.ShowVersion {
		return nil
	}

	if cfg.ConfigPath != "" {
		if _, err := os.Stat(cfg.ConfigPath); err != nil {
			return fmt.Errorf("config file not found: %s", cfg.ConfigPath)
		}
	}

	if cfg.Codec != "" && !slices.Contains(codec.Names(), cfg.Codec) {
		return fmt.Errorf("invalid codec: %s (supported: %v)", cfg.Codec, codec.Names())
	}

	if cfg.Namespace != "" {
		if _, err := config.ParseLogNamespace(cfg.Namespace); err != nil {
			return fmt.Errorf("invalid namespace: %w", err)
		}
	}

	validLevels := []string{"debug", "info", "warn", "error"}
	if !slices.Contains(validLevels, cfg.LogLevel) {
		return fmt.Errorf("invalid log level: %s", cfg.LogLevel)
	}

	validFormats := []string{"json", "text"}
	if !slices.Contains(validFormats, cfg.LogFormat) {
		return fmt.Errorf("invalid log format: %s", cfg.LogFormat)
	}

	modes := 0
	for _, set := range []bool{cfg.Schema, cfg.Serve, cfg.Validate} {
		if set {
			modes++
		}
	}
	if modes > 1 {
		return fmt.Errorf("-schema, -serve and -validate are mutually exclusive")
	}

	if cfg.ShutdownTimeout <= 0 {
		return fmt.Errorf("invalid shutdown timeout: %v", cfg.ShutdownTimeout)
	}

	return nil
}

func printDetailedHelp(fs *flag.FlagSet, w io.Writer) {
	_, _ = fmt.Fprintf(w, `%s - decode raw payloads into log events

Usage: %s [options]

Options:
`, appName, appName)
	fs.PrintDefaults()
	_, _ = fmt.Fprintf(w, `
Examples:
  # Decode newline-framed JSON from stdin
  printf '{"msg":"hi"}\n' | %s --codec=json

  # Print the event schema for the modern namespace
  %s --codec=json --namespace=modern --schema

  # Decode from NATS with a config file
  %s --config=/etc/semdecode/config.yaml --serve

  # Validate configuration only
  %s --config=config.yaml --validate

Version: %s
Build: %s
`, appName, appName, appName, appName, Version, BuildTime)
}

// Environment variable helper functions
func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvBool(key string, defaultValue bool) bool {
	if value := os.Getenv(key); value != "" {
		if parsed, err := strconv.ParseBool(value); err == nil {
			return parsed
		}
	}
	return defaultValue
}

func getEnvDuration(key string, defaultValue time.Duration) time.Duration {
	if value := os.Getenv(key); value != "" {
		if parsed, err := time.ParseDuration(value); err == nil {
			return parsed
		}
	}
	return defaultValue
}
