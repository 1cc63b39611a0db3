package instrumentation

import (
	"context"
	"fmt"
	"time"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"
)

// Metric attribute keys.
const (
	attrOperation = "operation"
	attrStatus    = "status"
	attrResult    = "result"
)

// Metrics provides methods for recording observability metrics. The zero
// value is a no-op recorder, so callers never need a nil check.
type Metrics struct {
	pollPassesTotal         metric.Int64Counter
	messagesProcessedTotal  metric.Int64Counter
	unreadClearsTotal       metric.Int64Counter
	bodyDecodeFailuresTotal metric.Int64Counter

	gmailOperationsTotal   metric.Int64Counter
	gmailOperationDuration metric.Float64Histogram

	oauthAuthTotal         metric.Int64Counter
	oauthTokenRefreshTotal metric.Int64Counter
}

// NewMetrics creates a Metrics instance with all instruments registered
// on the given meter.
func NewMetrics(meter metric.Meter) (*Metrics, error) {
	m := &Metrics{}
	var err error

	m.pollPassesTotal, err = meter.Int64Counter(
		"poll_passes_total",
		metric.WithDescription("Total number of completed poll passes"),
		metric.WithUnit("{pass}"),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to create poll_passes_total counter: %w", err)
	}

	m.messagesProcessedTotal, err = meter.Int64Counter(
		"messages_processed_total",
		metric.WithDescription("Total number of messages fetched and processed"),
		metric.WithUnit("{message}"),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to create messages_processed_total counter: %w", err)
	}

	m.unreadClearsTotal, err = meter.Int64Counter(
		"unread_clears_total",
		metric.WithDescription("Total number of UNREAD label removals issued"),
		metric.WithUnit("{message}"),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to create unread_clears_total counter: %w", err)
	}

	m.bodyDecodeFailuresTotal, err = meter.Int64Counter(
		"body_decode_failures_total",
		metric.WithDescription("Total number of message bodies that failed to decode"),
		metric.WithUnit("{message}"),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to create body_decode_failures_total counter: %w", err)
	}

	m.gmailOperationsTotal, err = meter.Int64Counter(
		"gmail_api_operations_total",
		metric.WithDescription("Total number of Gmail API operations"),
		metric.WithUnit("{operation}"),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to create gmail_api_operations_total counter: %w", err)
	}

	m.gmailOperationDuration, err = meter.Float64Histogram(
		"gmail_api_operation_duration_seconds",
		metric.WithDescription("Gmail API operation duration in seconds"),
		metric.WithUnit("s"),
		metric.WithExplicitBucketBoundaries(0.01, 0.05, 0.1, 0.25, 0.5, 1.0, 2.5, 5.0, 10.0, 30.0),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to create gmail_api_operation_duration_seconds histogram: %w", err)
	}

	m.oauthAuthTotal, err = meter.Int64Counter(
		"oauth_auth_total",
		metric.WithDescription("Total number of interactive OAuth authorization attempts"),
		metric.WithUnit("{attempt}"),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to create oauth_auth_total counter: %w", err)
	}

	m.oauthTokenRefreshTotal, err = meter.Int64Counter(
		"oauth_token_refresh_total",
		metric.WithDescription("Total number of OAuth token refresh attempts"),
		metric.WithUnit("{attempt}"),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to create oauth_token_refresh_total counter: %w", err)
	}

	return m, nil
}

// RecordPollPass records a completed poll pass with its result.
func (m *Metrics) RecordPollPass(ctx context.Context, result string) {
	if m.pollPassesTotal == nil {
		return // Instrumentation not initialized
	}
	m.pollPassesTotal.Add(ctx, 1, metric.WithAttributes(attribute.String(attrResult, result)))
}

// RecordMessagesProcessed records the number of messages handled in a pass.
func (m *Metrics) RecordMessagesProcessed(ctx context.Context, n int) {
	if m.messagesProcessedTotal == nil {
		return
	}
	m.messagesProcessedTotal.Add(ctx, int64(n))
}

// RecordUnreadClear records one UNREAD label removal.
func (m *Metrics) RecordUnreadClear(ctx context.Context) {
	if m.unreadClearsTotal == nil {
		return
	}
	m.unreadClearsTotal.Add(ctx, 1)
}

// RecordBodyDecodeFailures records message body parts that could not be
// decoded.
func (m *Metrics) RecordBodyDecodeFailures(ctx context.Context, n int) {
	if m.bodyDecodeFailuresTotal == nil || n < 1 {
		return
	}
	m.bodyDecodeFailuresTotal.Add(ctx, int64(n))
}

// RecordGmailOperation records a Gmail API call with operation name
// (list, get, modify), status and duration.
func (m *Metrics) RecordGmailOperation(ctx context.Context, operation, status string, duration time.Duration) {
	if m.gmailOperationsTotal == nil || m.gmailOperationDuration == nil {
		return
	}

	attrs := []attribute.KeyValue{
		attribute.String(attrOperation, operation),
		attribute.String(attrStatus, status),
	}

	m.gmailOperationsTotal.Add(ctx, 1, metric.WithAttributes(attrs...))
	m.gmailOperationDuration.Record(ctx, duration.Seconds(), metric.WithAttributes(attrs...))
}

// RecordOAuthAuth records an interactive authorization attempt.
func (m *Metrics) RecordOAuthAuth(ctx context.Context, result string) {
	if m.oauthAuthTotal == nil {
		return
	}
	m.oauthAuthTotal.Add(ctx, 1, metric.WithAttributes(attribute.String(attrResult, result)))
}

// RecordOAuthTokenRefresh records a token refresh attempt.
func (m *Metrics) RecordOAuthTokenRefresh(ctx context.Context, result string) {
	if m.oauthTokenRefreshTotal == nil {
		return
	}
	m.oauthTokenRefreshTotal.Add(ctx, 1, metric.WithAttributes(attribute.String(attrResult, result)))
}
