package main

import (
	"bufio"
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"os"
	"time"

	"github.com/c360/semdecode/codec"
	"github.com/c360/semdecode/component"
	"github.com/c360/semdecode/config"
	"github.com/c360/semdecode/event"
	"github.com/c360/semdecode/processor/decoder"
)

// maxLineSize bounds a single newline-framed payload.
const maxLineSize = 1 << 20

// streamStats summarizes a decode run.
type streamStats struct {
	Payloads int
	Events   int
	Failures int
}

func decodeInput(
	ctx context.Context,
	cliCfg *CLIConfig,
	s *settings,
	dc codec.DeserializerConfig,
	stdin io.Reader,
	stdout io.Writer,
	logger *slog.Logger,
) error {
	deserializer, err := dc.Build()
	if err != nil {
		return fmt.Errorf("build codec: %w", err)
	}

	port := inputPort(cliCfg.InputPath)
	in, sourceType, closeInput, err := openInput(port, stdin)
	if err != nil {
		return err
	}
	defer closeInput()
	logger.Debug("Decoding input", "resource", port.Config.ResourceID(), "source_type", sourceType)

	d := &streamDecoder{
		deserializer: deserializer,
		ns:           s.cfg.LogNamespace,
		logSchema:    s.cfg.LogSchema,
		enrich:       cliCfg.Enrich,
		sourceType:   sourceType,
		now:          time.Now,
		logger:       logger,
	}
	stats, err := d.run(ctx, in, stdout)
	if err != nil {
		return err
	}

	logger.Debug("Input decoded",
		"payloads", stats.Payloads,
		"events", stats.Events,
		"failures", stats.Failures)
	if stats.Failures > 0 {
		return fmt.Errorf("%d of %d payloads failed to decode", stats.Failures, stats.Payloads)
	}
	return nil
}

// inputPort describes where decode mode reads payloads from. "-" and the
// empty path mean stdin.
func inputPort(path string) component.Port {
	if path == "-" {
		path = ""
	}
	return component.BuildPortFromDefinition(component.PortDefinition{
		Name:        "input",
		Type:        "stdio",
		Subject:     path,
		Required:    true,
		Description: "newline-framed raw payloads",
	}, component.DirectionInput)
}

// openInput opens the stream behind port and names its source type.
func openInput(port component.Port, stdin io.Reader) (io.Reader, string, func(), error) {
	stdio, ok := port.Config.(component.StdioPort)
	if !ok {
		return nil, "", nil, fmt.Errorf("unsupported input port %s", port.Config.Type())
	}
	if stdio.Path == "" {
		return stdin, "stdin", func() {}, nil
	}
	f, err := os.Open(stdio.Path)
	if err != nil {
		return nil, "", nil, fmt.Errorf("open input: %w", err)
	}
	return f, "file", func() { _ = f.Close() }, nil
}

// streamDecoder decodes one payload per input line.
type streamDecoder struct {
	deserializer codec.Deserializer
	ns           config.LogNamespace
	logSchema    config.LogSchema
	enrich       bool
	sourceType   string
	now          func() time.Time
	logger       *slog.Logger
}

// run decodes every non-empty line of r and writes each event to w as a JSON
// line. Decode and encode failures are logged and counted; the run continues.
func (d *streamDecoder) run(ctx context.Context, r io.Reader, w io.Writer) (streamStats, error) {
	var stats streamStats

	scanner := bufio.NewScanner(r)
	scanner.Buffer(make([]byte, 0, 64*1024), maxLineSize)
	out := bufio.NewWriter(w)
	defer out.Flush()

	line := 0
	for scanner.Scan() {
		if err := ctx.Err(); err != nil {
			return stats, err
		}
		line++

		payload := bytes.TrimSuffix(scanner.Bytes(), []byte("\r"))
		if len(payload) == 0 {
			continue
		}
		stats.Payloads++

		events, err := d.deserializer.Parse(payload, d.ns)
		if err != nil {
			stats.Failures++
			d.logger.Warn("Failed to decode payload", "line", line, "error", err)
			continue
		}

		encoded, err := d.encodeAll(events)
		if err != nil {
			stats.Failures++
			d.logger.Warn("Failed to encode decoded events", "line", line, "error", err)
			continue
		}
		for _, enc := range encoded {
			if _, err := out.Write(enc); err != nil {
				return stats, fmt.Errorf("write output: %w", err)
			}
			stats.Events++
		}
		if err := out.Flush(); err != nil {
			return stats, fmt.Errorf("write output: %w", err)
		}
	}
	if err := scanner.Err(); err != nil {
		return stats, fmt.Errorf("read input: %w", err)
	}
	return stats, nil
}

// encodeAll encodes every event of one payload as a newline-terminated JSON
// line. A payload is written whole or not at all.
func (d *streamDecoder) encodeAll(events []event.Event) ([][]byte, error) {
	lines := make([][]byte, 0, len(events))
	for _, ev := range events {
		encoded, err := d.encode(ev)
		if err != nil {
			return nil, err
		}
		lines = append(lines, append(encoded, '\n'))
	}
	return lines, nil
}

// encode renders Legacy events as their value and Modern events as a
// value/metadata envelope.
func (d *streamDecoder) encode(ev event.Event) ([]byte, error) {
	log, ok := ev.AsLog()
	if !ok {
		return nil, fmt.Errorf("unexpected %s event", ev.DataType())
	}
	if d.enrich {
		if err := event.InsertStandardSourceMetadata(log, d.ns, d.logSchema, d.sourceType, d.now()); err != nil {
			return nil, err
		}
	}

	value, err := log.MarshalJSON()
	if err != nil {
		return nil, err
	}
	if d.ns != config.NamespaceModern {
		return value, nil
	}

	metadata, err := log.MetadataJSON()
	if err != nil {
		return nil, err
	}
	return json.Marshal(decoder.Envelope{Value: value, Metadata: metadata})
}
