// Package main implements the semdecode command. By default it decodes
// newline-framed payloads from stdin or a file and writes one JSON line per
// event; -serve runs the decode processor against NATS and -schema prints the
// JSON Schema of the events a codec produces.
package main

import (
	"context"
	"encoding/json"
	stderrors "errors"
	"flag"
	"fmt"
	"io"
	"log/slog"
	"os"
	"runtime"

	"github.com/c360/semdecode/codec"
	"github.com/c360/semdecode/config"
)

// Build information constants
const (
	Version   = "0.1.0"
	BuildTime = "dev"
	appName   = "semdecode"
)

func main() {
	defer func() {
		if r := recover(); r != nil {
			buf := make([]byte, 4096)
			n := runtime.Stack(buf, false)
			_, _ = fmt.Fprintf(os.Stderr, "PANIC: %v\nStack trace:\n%s\n", r, string(buf[:n]))
			os.Exit(2)
		}
	}()

	if err := run(context.Background(), os.Args[1:], os.Stdin, os.Stdout, os.Stderr); err != nil {
		slog.Error("Application failed", "error", err, "exit_code", 1)
		os.Exit(1)
	}
}

// settings is the configuration after flags have been applied.
type settings struct {
	cfg   *config.Config
	codec codec.Config
}

func run(ctx context.Context, args []string, stdin io.Reader, stdout, stderr io.Writer) error {
	cliCfg, err := parseFlags(args, stderr)
	if err != nil {
		if stderrors.Is(err, flag.ErrHelp) {
			return nil
		}
		return fmt.Errorf("invalid flags: %w", err)
	}
	if err := validateFlags(cliCfg); err != nil {
		return fmt.Errorf("invalid flags: %w", err)
	}

	if cliCfg.ShowVersion {
		_, _ = fmt.Fprintf(stdout, "%s version %s\n", appName, Version)
		return nil
	}

	logger := setupLogger(cliCfg.LogLevel, cliCfg.LogFormat, stderr)
	slog.SetDefault(logger)

	s, err := loadSettings(cliCfg)
	if err != nil {
		return err
	}

	dc, err := s.codec.Resolve(s.cfg.LogSchema)
	if err != nil {
		return fmt.Errorf("resolve codec: %w", err)
	}

	switch {
	case cliCfg.Validate:
		if _, err := dc.Build(); err != nil {
			return fmt.Errorf("build codec: %w", err)
		}
		logger.Info("Configuration is valid",
			"codec", s.codec.Codec,
			"namespace", s.cfg.LogNamespace.String())
		return nil

	case cliCfg.Schema:
		return printSchema(stdout, dc, s.cfg.LogNamespace, s.cfg.LogSchema, cliCfg.Enrich)

	case cliCfg.Serve:
		logger.Info("Starting semdecode",
			"version", Version,
			"build_time", BuildTime,
			"config_path", cliCfg.ConfigPath)
		return serve(ctx, cliCfg, s, logger)

	default:
		return decodeInput(ctx, cliCfg, s, dc, stdin, stdout, logger)
	}
}

// loadSettings loads the config file (or defaults plus environment overrides)
// and applies the codec and namespace flags on top.
func loadSettings(cliCfg *CLIConfig) (*settings, error) {
	loader := config.NewLoader()
	if cliCfg.ConfigPath != "" {
		loader.AddLayer(cliCfg.ConfigPath)
	}
	cfg, err := loader.Load()
	if err != nil {
		return nil, fmt.Errorf("load config: %w", err)
	}

	codecCfg, err := codec.ParseConfig(cfg.Decoding)
	if err != nil {
		return nil, fmt.Errorf("decoding section: %w", err)
	}
	if cliCfg.Codec != "" && cliCfg.Codec != codecCfg.Codec {
		codecCfg = codec.Config{Codec: cliCfg.Codec}
	}
	if cliCfg.Namespace != "" {
		ns, err := config.ParseLogNamespace(cliCfg.Namespace)
		if err != nil {
			return nil, err
		}
		cfg.LogNamespace = ns
	}

	raw, err := json.Marshal(codecCfg)
	if err != nil {
		return nil, fmt.Errorf("encode codec config: %w", err)
	}
	cfg.Decoding = raw

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}

	return &settings{cfg: cfg, codec: codecCfg}, nil
}

// printSchema writes the event and metadata JSON Schemas as one document.
// With enrich set the schema also declares the source metadata that decode
// mode adds to every event.
func printSchema(w io.Writer, dc codec.DeserializerConfig, ns config.LogNamespace, ls config.LogSchema, enrich bool) error {
	def := dc.SchemaDefinition(ns)
	if enrich {
		enriched, err := def.WithStandardSourceMetadata(ls)
		if err != nil {
			return fmt.Errorf("source metadata schema: %w", err)
		}
		def = enriched
	}
	doc := map[string]any{
		"namespace": ns.String(),
		"event":     def.JSONSchema(),
		"metadata":  def.MetadataJSONSchema(),
	}
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(doc)
}
