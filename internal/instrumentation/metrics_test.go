package instrumentation

import (
	"context"
	"testing"
	"time"
)

func newTestProvider(t *testing.T, ctx context.Context) *Provider {
	t.Helper()

	provider, err := NewProvider(ctx, Config{
		ServiceName:     "test-service",
		ServiceVersion:  "1.0.0",
		Enabled:         true,
		MetricsExporter: "stdout",
		TracesExporter:  "none",
	})
	if err != nil {
		t.Fatalf("failed to create provider: %v", err)
	}
	t.Cleanup(func() { _ = provider.Shutdown(ctx) })

	return provider
}

func TestMetrics_RecordPollPass(t *testing.T) {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	metrics := newTestProvider(t, ctx).Metrics()
	if metrics == nil {
		t.Fatal("expected metrics to be non-nil")
	}

	// Should not panic
	metrics.RecordPollPass(ctx, ResultSuccess)
	metrics.RecordPollPass(ctx, ResultFailure)
}

func TestMetrics_RecordGmailOperation(t *testing.T) {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	metrics := newTestProvider(t, ctx).Metrics()

	// Should not panic
	metrics.RecordGmailOperation(ctx, "list", StatusSuccess, 200*time.Millisecond)
	metrics.RecordGmailOperation(ctx, "get", StatusSuccess, 100*time.Millisecond)
	metrics.RecordGmailOperation(ctx, "modify", StatusError, 500*time.Millisecond)
}

func TestMetrics_RecordOAuth(t *testing.T) {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	metrics := newTestProvider(t, ctx).Metrics()

	// Should not panic
	metrics.RecordOAuthAuth(ctx, ResultSuccess)
	metrics.RecordOAuthAuth(ctx, ResultFailure)
	metrics.RecordOAuthTokenRefresh(ctx, ResultSuccess)
	metrics.RecordOAuthTokenRefresh(ctx, ResultFailure)
}

func TestMetrics_RecordCounters(t *testing.T) {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	metrics := newTestProvider(t, ctx).Metrics()

	// Should not panic
	metrics.RecordMessagesProcessed(ctx, 3)
	metrics.RecordUnreadClear(ctx)
	metrics.RecordBodyDecodeFailures(ctx, 2)
	metrics.RecordBodyDecodeFailures(ctx, 0) // ignored
}

func TestMetrics_NoOp_WhenDisabled(t *testing.T) {
	ctx := context.Background()

	provider, err := NewProvider(ctx, Config{
		ServiceName:    "test-service",
		ServiceVersion: "1.0.0",
		Enabled:        false,
	})
	if err != nil {
		t.Fatalf("failed to create provider: %v", err)
	}

	metrics := provider.Metrics()
	if metrics == nil {
		t.Fatal("expected metrics to be non-nil even when disabled")
	}

	// All these should not panic even with nil underlying instruments
	metrics.RecordPollPass(ctx, ResultSuccess)
	metrics.RecordMessagesProcessed(ctx, 1)
	metrics.RecordUnreadClear(ctx)
	metrics.RecordBodyDecodeFailures(ctx, 1)
	metrics.RecordGmailOperation(ctx, "list", StatusSuccess, 200*time.Millisecond)
	metrics.RecordOAuthAuth(ctx, ResultSuccess)
	metrics.RecordOAuthTokenRefresh(ctx, ResultSuccess)
}

func TestMetrics_ZeroValue(t *testing.T) {
	ctx := context.Background()

	var metrics Metrics
	metrics.RecordPollPass(ctx, ResultSuccess)
	metrics.RecordGmailOperation(ctx, "get", StatusError, time.Second)
}
