package natsclient

import (
	"context"
	"fmt"
	"testing"
	"time"

	gonats "github.com/nats-io/nats.go"
	"github.com/testcontainers/testcontainers-go"
	"github.com/testcontainers/testcontainers-go/wait"
)

const (
	testImage          = "nats:2.11.7-alpine"
	testConnectTimeout = 5 * time.Second
	testStartTimeout   = 30 * time.Second
)

// TestClient is a Client connected to a throwaway NATS server running in a
// container.
type TestClient struct {
	Client *Client
	URL    string

	container testcontainers.Container
}

// NewTestClient starts the container, connects and registers cleanup with t.
func NewTestClient(t testing.TB) *TestClient {
	t.Helper()

	ctx := context.Background()
	container, err := testcontainers.GenericContainer(ctx, testcontainers.GenericContainerRequest{
		ContainerRequest: testcontainers.ContainerRequest{
			Image:        testImage,
			ExposedPorts: []string{"4222/tcp", "8222/tcp"},
			Cmd:          []string{"--port", "4222", "--http_port", "8222"},
			WaitingFor: wait.ForAll(
				wait.ForListeningPort("4222/tcp"),
				wait.ForHTTP("/healthz").WithPort("8222/tcp").WithStartupTimeout(testStartTimeout),
			),
		},
		Started: true,
	})
	if err != nil {
		t.Fatalf("start NATS container: %v", err)
	}

	tc := &TestClient{container: container}
	t.Cleanup(tc.terminate)

	tc.URL, err = containerURL(ctx, container)
	if err != nil {
		t.Fatalf("resolve NATS address: %v", err)
	}

	tc.Client, err = NewClient([]string{tc.URL}, WithTimeout(testConnectTimeout), WithMaxReconnects(0))
	if err != nil {
		t.Fatalf("create NATS client: %v", err)
	}

	connectCtx, cancel := context.WithTimeout(ctx, testConnectTimeout)
	defer cancel()
	if err := tc.Client.Connect(connectCtx); err != nil {
		t.Fatalf("connect to NATS: %v", err)
	}
	return tc
}

func containerURL(ctx context.Context, container testcontainers.Container) (string, error) {
	host, err := container.Host(ctx)
	if err != nil {
		return "", err
	}
	port, err := container.MappedPort(ctx, "4222")
	if err != nil {
		return "", err
	}
	return fmt.Sprintf("nats://%s:%s", host, port.Port()), nil
}

func (tc *TestClient) terminate() {
	ctx := context.Background()
	if tc.Client != nil {
		_ = tc.Client.Close(ctx)
	}
	_ = tc.container.Terminate(ctx)
}

// IsReady reports whether the client is connected.
func (tc *TestClient) IsReady() bool {
	return tc.Client != nil && tc.Client.IsHealthy()
}

// GetNativeConnection exposes the underlying connection for assertions the
// Client API does not cover.
func (tc *TestClient) GetNativeConnection() *gonats.Conn {
	return tc.Client.GetConnection()
}
