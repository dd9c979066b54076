// Package decoder provides the decode processor: it subscribes to raw payload
// subjects, decodes each payload with the configured codec and publishes every
// resulting event as a CloudEvent.
package decoder

import (
	"context"
	"encoding/json"
	stderrors "errors"
	"fmt"
	"log/slog"
	"sync"
	"sync/atomic"
	"time"

	cloudevents "github.com/cloudevents/sdk-go/v2"
	"github.com/google/uuid"

	"github.com/c360/semdecode/codec"
	"github.com/c360/semdecode/component"
	"github.com/c360/semdecode/config"
	"github.com/c360/semdecode/errors"
	"github.com/c360/semdecode/event"
	"github.com/c360/semdecode/metric"
	"github.com/c360/semdecode/natsclient"
	"github.com/c360/semdecode/pkg/retry"
	"github.com/c360/semdecode/schema"
)

// NamespaceExtension is the CloudEvents extension attribute carrying the log namespace.
const NamespaceExtension = "lognamespace"

// Envelope is the CloudEvents data of a published event.
type Envelope struct {
	Value    json.RawMessage `json:"value"`
	Metadata json.RawMessage `json:"metadata,omitempty"`
}

// Processor decodes raw payloads into log events
type Processor struct {
	name       string
	cfg        Config
	subjects   []string
	outputSubj string
	codecName  string

	decoderConfig codec.DeserializerConfig
	deserializer  codec.Deserializer
	definition    *schema.Definition

	natsClient      component.Transport
	logger          *slog.Logger
	metricsRegistry *metric.MetricsRegistry
	coreMetrics     *metric.Metrics
	decodeMetrics   *metric.DecodeMetrics
	schemas         *component.SchemaRegistry
	publishRetry    retry.Config

	now   func() time.Time
	newID func() string

	// Lifecycle management
	initialized bool
	subscribed  bool
	running     bool
	startTime   time.Time
	mu          sync.RWMutex
	lifecycleMu sync.Mutex
	inflight    sync.WaitGroup

	// Metrics
	payloadsReceived int64
	bytesReceived    int64
	eventsPublished  int64
	decodeFailures   int64
	errors           int64
	lastActivity     time.Time
	lastError        string
}

// NewProcessor creates a decode processor from configuration. The codec is
// resolved and built here; no I/O happens until Start.
func NewProcessor(
	rawConfig json.RawMessage, deps component.Dependencies,
) (component.Discoverable, error) {
	return newProcessor(rawConfig, deps)
}

func newProcessor(rawConfig json.RawMessage, deps component.Dependencies) (*Processor, error) {
	cfg, err := ParseConfig(rawConfig)
	if err != nil {
		return nil, err
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	dc, err := cfg.Codec.Resolve(cfg.LogSchema)
	if err != nil {
		return nil, errors.WrapFatal(err, "DecodeProcessor", "NewProcessor", "codec resolution")
	}
	deserializer, err := dc.Build()
	if err != nil {
		return nil, errors.WrapFatal(err, "DecodeProcessor", "NewProcessor", "codec build")
	}

	codecName := cfg.Codec.Codec
	if codecName == "" {
		codecName = codec.BytesCodec
	}

	p := &Processor{
		name:            cfg.Name,
		cfg:             cfg,
		subjects:        cfg.InputSubjects(),
		outputSubj:      cfg.OutputSubject(),
		codecName:       codecName,
		decoderConfig:   dc,
		deserializer:    deserializer,
		natsClient:      deps.NATSClient,
		logger:          deps.GetLoggerWithComponent(cfg.Name),
		metricsRegistry: deps.MetricsRegistry,
		schemas:         deps.Schemas,
		publishRetry:    retry.Quick(),
		now:             time.Now,
		newID:           uuid.NewString,
	}
	if deps.MetricsRegistry != nil {
		p.coreMetrics = deps.MetricsRegistry.CoreMetrics()
	}
	return p, nil
}

// Initialize checks the codec output against what the processor publishes and
// declares the event schema. Calling it again is a no-op.
func (p *Processor) Initialize() error {
	p.lifecycleMu.Lock()
	defer p.lifecycleMu.Unlock()

	if p.initialized {
		return nil
	}

	if out := p.decoderConfig.OutputType(); !config.DataTypeLog.Contains(out) {
		return errors.WrapFatal(
			fmt.Errorf("%w: codec %s produces %s, processor publishes %s",
				errors.ErrIncompatibleType, p.codecName, out, config.DataTypeLog),
			"DecodeProcessor", "Initialize", "output type check")
	}

	definition := p.decoderConfig.SchemaDefinition(p.cfg.Namespace)
	if p.cfg.Enrich {
		enriched, err := definition.WithStandardSourceMetadata(p.cfg.LogSchema)
		if err != nil {
			return errors.WrapInvalid(err, "DecodeProcessor", "Initialize", "source metadata schema")
		}
		definition = enriched
	}
	p.definition = definition

	if p.metricsRegistry != nil && p.decodeMetrics == nil {
		dm, err := metric.NewDecodeMetrics(p.metricsRegistry, p.name)
		if err != nil {
			return errors.Wrap(err, "DecodeProcessor", "Initialize", "decode metrics registration")
		}
		p.decodeMetrics = dm
	}

	p.initialized = true
	return nil
}

// Start registers the schema and begins decoding
func (p *Processor) Start(ctx context.Context) error {
	p.lifecycleMu.Lock()
	defer p.lifecycleMu.Unlock()

	if err := ctx.Err(); err != nil {
		return errors.WrapTransient(err, "DecodeProcessor", "Start", "context check")
	}
	if !p.initialized {
		return errors.WrapFatal(errors.ErrNotStarted, "DecodeProcessor", "Start", "not initialized")
	}

	p.mu.RLock()
	running := p.running
	p.mu.RUnlock()
	if running {
		return errors.WrapFatal(errors.ErrAlreadyStarted, "DecodeProcessor", "Start", "check running state")
	}

	if p.natsClient == nil {
		return errors.WrapFatal(errors.ErrMissingConfig, "DecodeProcessor", "Start", "NATS client required")
	}

	if p.schemas != nil {
		added, err := p.schemas.Register(component.SchemaRegistration{
			Subject:    p.outputSubj,
			Component:  p.name,
			DataType:   p.decoderConfig.OutputType(),
			Namespace:  p.cfg.Namespace,
			Definition: p.definition,
		})
		if err != nil {
			return errors.Wrap(err, "DecodeProcessor", "Start", "schema registration")
		}
		if added {
			p.logger.Debug("Registered output schema",
				"subject", p.outputSubj,
				"schema", p.definition.String())
		}
	}

	// Subscriptions outlive Stop; a stopped processor drops what it receives.
	if !p.subscribed {
		for _, subject := range p.subjects {
			p.logger.Debug("Subscribing to NATS subject", "subject", subject)

			if err := p.natsClient.Subscribe(ctx, subject, p.handlerFor(subject)); err != nil {
				p.logger.Error("Failed to subscribe to NATS subject",
					"subject", subject,
					"error", err)
				return errors.WrapTransient(err, "DecodeProcessor", "Start", fmt.Sprintf("subscribe to %s", subject))
			}
		}
		p.subscribed = true
	}

	p.mu.Lock()
	p.running = true
	p.startTime = p.now()
	p.mu.Unlock()

	if p.coreMetrics != nil {
		p.coreMetrics.RecordComponentRunning(p.name, true)
	}

	p.logger.Info("Decode processor started",
		"codec", p.codecName,
		"namespace", p.cfg.Namespace.String(),
		"input_subjects", p.subjects,
		"output_subject", p.outputSubj)

	return nil
}

// Stop waits for in-flight payloads to finish publishing
func (p *Processor) Stop(timeout time.Duration) error {
	p.lifecycleMu.Lock()
	defer p.lifecycleMu.Unlock()

	p.mu.Lock()
	if !p.running {
		p.mu.Unlock()
		return nil
	}
	p.running = false
	p.mu.Unlock()

	waitCh := make(chan struct{})
	go func() {
		p.inflight.Wait()
		close(waitCh)
	}()

	select {
	case <-waitCh:
	case <-time.After(timeout):
		return errors.WrapTransient(
			fmt.Errorf("shutdown timeout after %v", timeout),
			"DecodeProcessor", "Stop", "graceful shutdown")
	}

	if p.coreMetrics != nil {
		p.coreMetrics.RecordComponentRunning(p.name, false)
	}
	p.logger.Info("Decode processor stopped",
		"payloads", atomic.LoadInt64(&p.payloadsReceived),
		"events", atomic.LoadInt64(&p.eventsPublished))
	return nil
}

// IsStarted returns whether the processor is running
func (p *Processor) IsStarted() bool {
	p.mu.RLock()
	defer p.mu.RUnlock()
	return p.running
}

// Definition returns the schema of published event values. Nil before Initialize.
func (p *Processor) Definition() *schema.Definition {
	p.lifecycleMu.Lock()
	defer p.lifecycleMu.Unlock()
	return p.definition
}

func (p *Processor) handlerFor(subject string) natsclient.Handler {
	return func(ctx context.Context, data []byte) {
		p.mu.RLock()
		if !p.running {
			p.mu.RUnlock()
			return
		}
		p.inflight.Add(1)
		p.mu.RUnlock()
		defer p.inflight.Done()

		p.handleMessage(ctx, subject, data)
	}
}

// handleMessage decodes one payload and publishes its events in decode order.
func (p *Processor) handleMessage(ctx context.Context, subject string, data []byte) {
	atomic.AddInt64(&p.payloadsReceived, 1)
	atomic.AddInt64(&p.bytesReceived, int64(len(data)))
	p.mu.Lock()
	p.lastActivity = p.now()
	p.mu.Unlock()

	if p.coreMetrics != nil {
		p.coreMetrics.RecordMessageReceived(p.name, subject)
	}

	start := time.Now()
	events, err := p.deserializer.Parse(data, p.cfg.Namespace)
	elapsed := time.Since(start)

	if p.decodeMetrics != nil {
		p.decodeMetrics.Observe(p.codecName, len(data), len(events), err != nil, elapsed)
	}
	if p.coreMetrics != nil {
		p.coreMetrics.RecordProcessingDuration(p.name, "decode", elapsed)
	}

	if err != nil {
		atomic.AddInt64(&p.decodeFailures, 1)
		p.recordError(err)

		attrs := []any{"subject", subject, "size_bytes", len(data), "error", err}
		var de *errors.DecodeError
		if stderrors.As(err, &de) {
			attrs = append(attrs, "format", de.Format, "offset", de.Offset, "reason", de.Reason)
		}
		p.logger.Debug("Failed to decode payload", attrs...)
		return
	}

	if len(events) == 0 {
		p.logger.Debug("Payload decoded to zero events", "subject", subject, "size_bytes", len(data))
		return
	}

	for _, ev := range events {
		log, ok := ev.AsLog()
		if !ok {
			p.recordError(fmt.Errorf("%w: %s", errors.ErrIncompatibleType, ev.DataType()))
			continue
		}

		if p.cfg.Enrich {
			if err := event.InsertStandardSourceMetadata(log, p.cfg.Namespace, p.cfg.LogSchema, p.cfg.SourceType, p.now()); err != nil {
				p.recordError(err)
				p.logger.Error("Failed to insert source metadata", "error", err)
				continue
			}
		}

		if p.cfg.Conform {
			if err := p.definition.Conforms(log); err != nil {
				p.recordError(err)
				p.logger.Error("Decoded event does not match declared schema",
					"subject", subject,
					"error", err)
				continue
			}
		}

		payload, err := p.envelope(log)
		if err != nil {
			p.recordError(err)
			p.logger.Error("Failed to encode CloudEvent", "error", err)
			continue
		}

		err = retry.Do(ctx, p.publishRetry, func() error {
			return p.natsClient.Publish(ctx, p.outputSubj, payload)
		})
		if err != nil {
			p.recordError(err)
			p.logger.Error("Failed to publish decoded event",
				"output_subject", p.outputSubj,
				"error", err)
			continue
		}

		atomic.AddInt64(&p.eventsPublished, 1)
		if p.coreMetrics != nil {
			p.coreMetrics.RecordMessagePublished(p.name, p.outputSubj)
		}
	}
}

// envelope wraps log in a structured-mode CloudEvent.
func (p *Processor) envelope(log *event.LogEvent) ([]byte, error) {
	value, err := log.MarshalJSON()
	if err != nil {
		return nil, errors.Wrap(err, "DecodeProcessor", "envelope", "value marshaling")
	}
	env := Envelope{Value: value}
	if p.cfg.Namespace == config.NamespaceModern {
		metadata, err := log.MetadataJSON()
		if err != nil {
			return nil, errors.Wrap(err, "DecodeProcessor", "envelope", "metadata marshaling")
		}
		env.Metadata = metadata
	}

	ce := cloudevents.NewEvent()
	ce.SetID(p.newID())
	ce.SetSource(p.name)
	ce.SetType(p.cfg.EventType)
	ce.SetTime(p.now())
	ce.SetExtension(NamespaceExtension, p.cfg.Namespace.String())
	if err := ce.SetData(cloudevents.ApplicationJSON, env); err != nil {
		return nil, errors.Wrap(err, "DecodeProcessor", "envelope", "set data")
	}
	if err := ce.Validate(); err != nil {
		return nil, errors.WrapInvalid(err, "DecodeProcessor", "envelope", "cloudevent validation")
	}
	return json.Marshal(ce)
}

func (p *Processor) recordError(err error) {
	atomic.AddInt64(&p.errors, 1)
	p.mu.Lock()
	p.lastError = err.Error()
	p.mu.Unlock()
	if p.coreMetrics != nil {
		p.coreMetrics.RecordError(p.name, errors.Classify(err).String())
	}
}

// Discoverable interface implementation

// Meta returns metadata describing this processor component.
func (p *Processor) Meta() component.Metadata {
	return component.Metadata{
		Name:        p.name,
		Type:        "processor",
		Description: fmt.Sprintf("Decodes %s payloads into %s log events", p.codecName, p.cfg.Namespace),
		Version:     "0.1.0",
	}
}

// InputPorts returns the NATS input ports this processor subscribes to.
func (p *Processor) InputPorts() []component.Port {
	ports := make([]component.Port, len(p.subjects))
	for i, subj := range p.subjects {
		ports[i] = component.Port{
			Name:      fmt.Sprintf("input_%d", i),
			Direction: component.DirectionInput,
			Required:  true,
			Config: component.NATSPort{
				Subject: subj,
			},
		}
	}
	return ports
}

// OutputPorts returns the NATS output port for decoded events.
func (p *Processor) OutputPorts() []component.Port {
	return []component.Port{
		{
			Name:      "output",
			Direction: component.DirectionOutput,
			Required:  true,
			Config: component.NATSPort{
				Subject: p.outputSubj,
				Interface: &component.InterfaceContract{
					Type:    p.cfg.EventType,
					Version: "v1",
				},
			},
		},
	}
}

// ConfigSchema returns the configuration schema for this processor.
func (p *Processor) ConfigSchema() component.ConfigSchema {
	return decoderSchema
}

// Health returns the current health status of this processor.
func (p *Processor) Health() component.HealthStatus {
	p.mu.RLock()
	defer p.mu.RUnlock()

	var uptime time.Duration
	if p.running {
		uptime = p.now().Sub(p.startTime)
	}
	return component.HealthStatus{
		Healthy:    p.running,
		LastCheck:  p.now(),
		ErrorCount: int(atomic.LoadInt64(&p.errors)),
		LastError:  p.lastError,
		Uptime:     uptime,
	}
}

// DataFlow returns average throughput since start and the share of payloads
// that failed to decode.
func (p *Processor) DataFlow() component.FlowMetrics {
	p.mu.RLock()
	defer p.mu.RUnlock()

	payloads := atomic.LoadInt64(&p.payloadsReceived)
	failures := atomic.LoadInt64(&p.decodeFailures)

	var errorRate, perSecond, eventsPerSecond, bytesPerSecond float64
	if payloads > 0 {
		errorRate = float64(failures) / float64(payloads)
	}
	if p.running {
		if secs := p.now().Sub(p.startTime).Seconds(); secs > 0 {
			perSecond = float64(payloads) / secs
			eventsPerSecond = float64(atomic.LoadInt64(&p.eventsPublished)) / secs
			bytesPerSecond = float64(atomic.LoadInt64(&p.bytesReceived)) / secs
		}
	}

	return component.FlowMetrics{
		MessagesPerSecond: perSecond,
		EventsPerSecond:   eventsPerSecond,
		BytesPerSecond:    bytesPerSecond,
		ErrorRate:         errorRate,
		LastActivity:      p.lastActivity,
	}
}

// Register registers the decode processor with the given registry
func Register(registry *component.Registry) error {
	return registry.RegisterWithConfig(component.RegistrationConfig{
		Name:        "decoder",
		Factory:     NewProcessor,
		Schema:      decoderSchema,
		Type:        "processor",
		Protocol:    "decode",
		Domain:      "processing",
		Description: "Decodes raw payloads into log events published as CloudEvents",
		Version:     "0.1.0",
	})
}
