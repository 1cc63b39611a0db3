package gmail

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"go.opentelemetry.io/otel/trace"
	"go.opentelemetry.io/otel/trace/noop"
	gmailapi "google.golang.org/api/gmail/v1"

	"github.com/tverberg/gmailpoll/internal/config"
	"github.com/tverberg/gmailpoll/internal/instrumentation"
	"github.com/tverberg/gmailpoll/internal/logging"
)

// bodyPreviewLen bounds the body excerpt included in the per-message
// summary log line.
const bodyPreviewLen = 200

// Mailbox is the narrow provider surface the poller needs. *Client
// implements it; tests substitute a fake with a recorded mutation log.
type Mailbox interface {
	ListMessageIDs(ctx context.Context, query string) ([]string, error)
	GetMessage(ctx context.Context, id string) (*gmailapi.Message, error)
	MarkRead(ctx context.Context, id string) error
}

// Poller runs single poll passes over a mailbox. It holds no mutable
// state between passes; the provider's unread flag is the only memory of
// what has been processed.
type Poller struct {
	mailbox    Mailbox
	gmail      config.Gmail
	processing config.Processing
	logger     *slog.Logger
	metrics    *instrumentation.Metrics
	tracer     trace.Tracer

	// now and wait are injectable for tests.
	now  func() time.Time
	wait func(ctx context.Context, d time.Duration) error
}

// NewPoller builds a poller over the given mailbox. metrics and tracer
// may be nil when instrumentation is disabled.
func NewPoller(mailbox Mailbox, gmailCfg config.Gmail, processing config.Processing, logger *slog.Logger, metrics *instrumentation.Metrics, tracer trace.Tracer) *Poller {
	if metrics == nil {
		metrics = &instrumentation.Metrics{}
	}
	if tracer == nil {
		tracer = noop.NewTracerProvider().Tracer("gmailpoll")
	}
	return &Poller{
		mailbox:    mailbox,
		gmail:      gmailCfg,
		processing: processing,
		logger:     logger,
		metrics:    metrics,
		tracer:     tracer,
		now:        time.Now,
		wait:       waitInterval,
	}
}

// Run executes one poll pass: list unread messages matching the filters,
// fetch and process each one (marking it read immediately after the
// fetch), log the batch summary, then sleep the configured interval.
// A long-running service calls Run repeatedly; each pass ends with the
// sleep, matching the one-pass-then-wait contract, even when nothing
// matched. Any provider failure aborts the pass and propagates.
func (p *Poller) Run(ctx context.Context) error {
	ctx, span := p.tracer.Start(ctx, "poll.pass")
	defer span.End()

	p.logger.Info("starting gmail polling",
		slog.Int("n_days", p.gmail.NDays),
		slog.Int("interval_seconds", p.gmail.PollInterval),
		slog.String("from", p.processing.From),
		slog.String("subject", p.processing.Subject))

	query := BuildQuery(p.processing.From, p.processing.Subject, p.gmail.NDays, p.now())
	p.logger.Info("built query", logging.Query(query))

	messages, err := p.fetchAndClear(ctx, query)
	if err != nil {
		p.metrics.RecordPollPass(ctx, instrumentation.ResultFailure)
		p.logger.Error("error during gmail polling", logging.Err(err))
		return err
	}

	if len(messages) == 0 {
		p.logger.Info("no new emails to process")
	} else {
		p.logger.Info("successfully fetched emails", logging.Count(len(messages)))
		for _, m := range messages {
			p.logSummary(m)
		}
	}

	p.metrics.RecordPollPass(ctx, instrumentation.ResultSuccess)
	p.logger.Info("waiting before next poll", slog.Int("seconds", p.gmail.PollInterval))
	return p.wait(ctx, time.Duration(p.gmail.PollInterval)*time.Second)
}

// fetchAndClear lists matching messages and processes them in listing
// order. Each message is marked read in the same step it is fetched,
// before the batch summary is logged, so a crash mid-batch can leave
// already-cleared messages whose summaries were never written.
func (p *Poller) fetchAndClear(ctx context.Context, query string) ([]Message, error) {
	p.logger.Info("fetching emails", logging.Query(query))

	ids, err := p.mailbox.ListMessageIDs(ctx, query)
	if err != nil {
		return nil, err
	}
	if len(ids) == 0 {
		p.logger.Info("no messages found matching the query")
		return nil, nil
	}
	p.logger.Info("found messages", logging.Count(len(ids)))

	messages := make([]Message, 0, len(ids))
	for _, id := range ids {
		msg, err := p.mailbox.GetMessage(ctx, id)
		if err != nil {
			return nil, err
		}

		body, decodeFailures := extractBody(msg.Payload)
		p.metrics.RecordBodyDecodeFailures(ctx, decodeFailures)
		if decodeFailures > 0 {
			p.logger.Warn("message body parts failed to decode",
				logging.MessageID(id), slog.Int("parts", decodeFailures))
		}

		m := Message{
			ID:      id,
			Subject: headerValue(msg, "Subject", NoSubject),
			From:    headerValue(msg, "From", UnknownSender),
			Date:    headerValue(msg, "Date", UnknownDate),
			Body:    body,
			Snippet: msg.Snippet,
		}
		messages = append(messages, m)

		if err := p.mailbox.MarkRead(ctx, id); err != nil {
			return nil, err
		}
		p.logger.Info("fetched email",
			slog.String("subject", m.Subject),
			slog.String("from", m.From))
	}

	p.metrics.RecordMessagesProcessed(ctx, len(messages))
	return messages, nil
}

func (p *Poller) logSummary(m Message) {
	p.logger.Info("email summary",
		logging.MessageID(m.ID),
		slog.String("from", m.From),
		slog.String("subject", m.Subject),
		slog.String("date", m.Date),
		slog.String("body_preview", bodyPreview(m.Body)))
}

// headerValue returns the value of the named header, matched
// case-insensitively, or fallback when absent.
func headerValue(msg *gmailapi.Message, name, fallback string) string {
	if msg.Payload == nil {
		return fallback
	}
	for _, h := range msg.Payload.Headers {
		if strings.EqualFold(h.Name, name) {
			return h.Value
		}
	}
	return fallback
}

// bodyPreview truncates a body for logging.
func bodyPreview(body string) string {
	runes := []rune(body)
	if len(runes) <= bodyPreviewLen {
		return body
	}
	return string(runes[:bodyPreviewLen]) + "..."
}

// waitInterval blocks for d or until ctx is cancelled.
func waitInterval(ctx context.Context, d time.Duration) error {
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-t.C:
		return nil
	case <-ctx.Done():
		return fmt.Errorf("poll wait interrupted: %w", ctx.Err())
	}
}
