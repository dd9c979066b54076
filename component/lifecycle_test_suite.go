package component

import (
	"context"
	"runtime"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// LifecycleFactory creates a fresh LifecycleComponent for each sub-test.
type LifecycleFactory func() LifecycleComponent

// StandardLifecycleTests runs the lifecycle checks every component must pass.
func StandardLifecycleTests(t *testing.T, factory LifecycleFactory) {
	t.Run("Compliance", func(t *testing.T) {
		testLifecycleCompliance(t, factory)
	})
	t.Run("ErrorPaths", func(t *testing.T) {
		testErrorPaths(t, factory)
	})
	t.Run("Concurrent", func(t *testing.T) {
		testConcurrentStartStop(t, factory)
	})
	t.Run("NoLeaks", func(t *testing.T) {
		testNoGoroutineLeaks(t, factory)
	})
}

func testLifecycleCompliance(t *testing.T, factory LifecycleFactory) {
	tests := []struct {
		name string
		test func(t *testing.T, comp LifecycleComponent)
	}{
		{"StartStop", testStartStop},
		{"DoubleStart", testDoubleStart},
		{"DoubleStop", testDoubleStop},
		{"StopWithoutStart", testStopWithoutStart},
		{"RestartAfterStop", testRestartAfterStop},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			comp := factory()
			require.NotNil(t, comp, "Component factory returned nil")
			tt.test(t, comp)
		})
	}
}

func startComponent(t *testing.T, comp LifecycleComponent) {
	t.Helper()
	require.NoError(t, comp.Initialize(), "Initialize must succeed")

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	require.NoError(t, comp.Start(ctx), "Start must succeed")
}

func testStartStop(t *testing.T, comp LifecycleComponent) {
	startComponent(t, comp)
	assert.True(t, comp.Health().Healthy, "running component should report healthy")

	require.NoError(t, comp.Stop(5*time.Second))
	assert.False(t, comp.Health().Healthy, "stopped component should report unhealthy")
}

func testDoubleStart(t *testing.T, comp LifecycleComponent) {
	startComponent(t, comp)

	err := comp.Start(context.Background())
	assert.Error(t, err, "second Start should be rejected")

	assert.NoError(t, comp.Stop(5*time.Second))
}

func testDoubleStop(t *testing.T, comp LifecycleComponent) {
	startComponent(t, comp)

	assert.NoError(t, comp.Stop(5*time.Second), "First Stop should succeed")
	assert.NoError(t, comp.Stop(5*time.Second), "Second Stop should be idempotent")
}

func testStopWithoutStart(t *testing.T, comp LifecycleComponent) {
	assert.NoError(t, comp.Stop(5*time.Second), "Stop should be safe to call without Start")
}

func testRestartAfterStop(t *testing.T, comp LifecycleComponent) {
	startComponent(t, comp)
	require.NoError(t, comp.Stop(5*time.Second))

	startComponent(t, comp)
	assert.True(t, comp.Health().Healthy)
	assert.NoError(t, comp.Stop(5*time.Second))
}

func testErrorPaths(t *testing.T, factory LifecycleFactory) {
	tests := []struct {
		name string
		ctx  func() (context.Context, context.CancelFunc)
	}{
		{
			name: "cancelled_context_on_start",
			ctx: func() (context.Context, context.CancelFunc) {
				ctx, cancel := context.WithCancel(context.Background())
				cancel()
				return ctx, cancel
			},
		},
		{
			name: "expired_context_on_start",
			ctx: func() (context.Context, context.CancelFunc) {
				return context.WithDeadline(context.Background(), time.Now().Add(-time.Second))
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			comp := factory()
			require.NotNil(t, comp, "Component factory returned nil")
			require.NoError(t, comp.Initialize())

			ctx, cancel := tt.ctx()
			defer cancel()

			assert.Error(t, comp.Start(ctx), "Start should honour a done context")
			assert.False(t, comp.Health().Healthy)
			assert.NoError(t, comp.Stop(5*time.Second), "Component should be stoppable after a failed Start")
		})
	}
}

func testConcurrentStartStop(t *testing.T, factory LifecycleFactory) {
	comp := factory()
	require.NotNil(t, comp, "Component factory returned nil")
	require.NoError(t, comp.Initialize())

	var wg sync.WaitGroup
	results := make([]error, 40)

	for i := 0; i < 20; i++ {
		wg.Add(1)
		go func(idx int) {
			defer wg.Done()
			ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
			defer cancel()
			results[idx] = comp.Start(ctx)
		}(i)
	}
	for i := 20; i < 40; i++ {
		wg.Add(1)
		go func(idx int) {
			defer wg.Done()
			time.Sleep(5 * time.Millisecond)
			results[idx] = comp.Stop(5 * time.Second)
		}(i)
	}
	wg.Wait()

	starts, stops := 0, 0
	for i, err := range results {
		if err != nil {
			continue
		}
		if i < 20 {
			starts++
		} else {
			stops++
		}
	}
	assert.GreaterOrEqual(t, starts, 1, "At least one Start should succeed")
	assert.Equal(t, 20, stops, "Stop never fails on a running or stopped component")

	assert.NoError(t, comp.Stop(5*time.Second))
}

func testNoGoroutineLeaks(t *testing.T, factory LifecycleFactory) {
	if testing.Short() {
		t.Skip("Skipping leak test in short mode")
	}

	runtime.GC()
	time.Sleep(50 * time.Millisecond)
	initial := runtime.NumGoroutine()

	const iterations = 200
	for i := 0; i < iterations; i++ {
		comp := factory()
		require.NoError(t, comp.Initialize())

		ctx, cancel := context.WithTimeout(context.Background(), time.Second)
		if err := comp.Start(ctx); err != nil {
			t.Logf("Start failed on iteration %d: %v", i, err)
		}
		if err := comp.Stop(5 * time.Second); err != nil {
			t.Logf("Stop failed on iteration %d: %v", i, err)
		}
		cancel()
	}

	runtime.GC()
	time.Sleep(100 * time.Millisecond)

	growth := runtime.NumGoroutine() - initial
	assert.LessOrEqual(t, growth, 5, "goroutine count grew by %d over %d lifecycles", growth, iterations)
}
