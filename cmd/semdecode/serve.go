package main

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"os/signal"
	"syscall"
	"time"

	"github.com/c360/semdecode/component"
	"github.com/c360/semdecode/health"
	"github.com/c360/semdecode/metric"
	"github.com/c360/semdecode/natsclient"
	"github.com/c360/semdecode/processor/decoder"
)

// serve runs the decode processor against NATS until SIGINT or SIGTERM.
func serve(ctx context.Context, cliCfg *CLIConfig, s *settings, logger *slog.Logger) error {
	signalCtx, signalCancel := signal.NotifyContext(ctx, syscall.SIGINT, syscall.SIGTERM)
	defer signalCancel()

	metricsRegistry := metric.NewMetricsRegistry()

	natsClient, err := connectToNATS(signalCtx, s, metricsRegistry, logger)
	if err != nil {
		return err
	}
	defer natsClient.Close(context.Background())

	proc, err := createProcessor(s, component.Dependencies{
		NATSClient:      natsClient,
		MetricsRegistry: metricsRegistry,
		Logger:          logger,
	})
	if err != nil {
		return err
	}

	monitor := newMonitor(natsClient, proc)

	if s.cfg.Metrics.Port > 0 {
		server := metric.NewServer(s.cfg.Metrics.Port, s.cfg.Metrics.Path, metricsRegistry)
		server.SetHealthHandler(monitor.Handler())
		if err := server.Start(); err != nil {
			return fmt.Errorf("start metrics server: %w", err)
		}
		logger.Info("Metrics server listening", "address", server.Address(), "path", s.cfg.Metrics.Path)
		defer func() {
			stopCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
			defer cancel()
			if err := server.Stop(stopCtx); err != nil {
				logger.Warn("Failed to stop metrics server", "error", err)
			}
		}()
	}

	if err := proc.Initialize(); err != nil {
		return fmt.Errorf("initialize decoder: %w", err)
	}
	if err := proc.Start(signalCtx); err != nil {
		return fmt.Errorf("start decoder: %w", err)
	}
	logger.Info("semdecode started", "codec", s.codec.Codec, "namespace", s.cfg.LogNamespace.String())

	<-signalCtx.Done()
	logger.Info("Received shutdown signal", "health", monitor.AggregateHealth().Status)

	if err := proc.Stop(cliCfg.ShutdownTimeout); err != nil {
		return fmt.Errorf("graceful shutdown failed: %w", err)
	}

	logger.Info("semdecode shutdown complete")
	return nil
}

// degradedErrorRate marks the decoder degraded when more than half of the
// payloads fail to decode.
const degradedErrorRate = 0.5

// healthReporter is the NATS client surface the monitor needs.
type healthReporter interface {
	IsHealthy() bool
	Status() natsclient.ConnectionStatus
}

func newMonitor(nats healthReporter, proc component.LifecycleComponent) *health.Monitor {
	monitor := health.NewMonitor(appName)
	monitor.Register("nats", func() health.Status {
		if nats.IsHealthy() {
			return health.NewHealthy("nats", "Connected")
		}
		return health.NewUnhealthy("nats", "Connection "+nats.Status().String())
	})
	monitor.Register("decoder", func() health.Status {
		return health.FromComponent("decoder", proc.Health(), proc.DataFlow(), degradedErrorRate)
	})
	return monitor
}

// connectToNATS establishes the NATS connection and waits for it to be ready
func connectToNATS(
	ctx context.Context,
	s *settings,
	metricsRegistry *metric.MetricsRegistry,
	logger *slog.Logger,
) (*natsclient.Client, error) {
	opts := append(natsclient.FromConfig(s.cfg.NATS),
		natsclient.WithLogger(logger),
		natsclient.WithMetrics(metricsRegistry.CoreMetrics()),
		natsclient.WithStatusListener(func(status natsclient.ConnectionStatus) {
			logger.Debug("NATS connection status changed", "status", status.String())
		}),
	)
	client, err := natsclient.NewClient(s.cfg.NATS.URLs, opts...)
	if err != nil {
		return nil, fmt.Errorf("create NATS client: %w", err)
	}

	logger.Info("Connecting to NATS", "url", client.URL())
	if err := client.Connect(ctx); err != nil {
		return nil, fmt.Errorf("connect to NATS: %w", err)
	}

	connCtx, cancel := context.WithTimeout(ctx, 10*time.Second)
	defer cancel()
	if err := client.WaitForConnection(connCtx); err != nil {
		_ = client.Close(context.Background())
		return nil, fmt.Errorf("NATS connection timeout: %w", err)
	}
	return client, nil
}

// createProcessor builds the decode processor through the component registry.
func createProcessor(s *settings, deps component.Dependencies) (component.LifecycleComponent, error) {
	registry := component.NewRegistry()
	if err := decoder.Register(registry); err != nil {
		return nil, fmt.Errorf("register components: %w", err)
	}

	raw, err := processorConfig(s)
	if err != nil {
		return nil, err
	}

	comp, err := registry.CreateComponent("decoder", "decoder", raw, deps)
	if err != nil {
		return nil, fmt.Errorf("create decoder: %w", err)
	}
	lc, ok := component.AsLifecycleComponent(comp)
	if !ok {
		return nil, fmt.Errorf("decoder does not implement the component lifecycle")
	}
	return lc, nil
}

// processorConfig layers the top-level codec, namespace and log schema over
// the processor section so one setting drives both modes.
func processorConfig(s *settings) (json.RawMessage, error) {
	section := map[string]any{}
	if len(s.cfg.Processor) > 0 {
		if err := json.Unmarshal(s.cfg.Processor, &section); err != nil {
			return nil, fmt.Errorf("processor section: %w", err)
		}
	}
	section["codec"] = s.codec
	section["namespace"] = s.cfg.LogNamespace
	section["log_schema"] = s.cfg.LogSchema

	raw, err := json.Marshal(section)
	if err != nil {
		return nil, fmt.Errorf("encode processor config: %w", err)
	}
	return raw, nil
}
