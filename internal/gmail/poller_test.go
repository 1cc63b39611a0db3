package gmail

import (
	"context"
	"encoding/base64"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	gmailapi "google.golang.org/api/gmail/v1"

	"github.com/tverberg/gmailpoll/internal/config"
)

// fakeMailbox records every call so tests can verify listing order and
// the mutation log.
type fakeMailbox struct {
	messages map[string]*gmailapi.Message
	order    []string

	listQueries []string
	fetched     []string
	markedRead  []string

	listErr error
	getErr  error
	markErr error
}

func (f *fakeMailbox) ListMessageIDs(_ context.Context, query string) ([]string, error) {
	f.listQueries = append(f.listQueries, query)
	if f.listErr != nil {
		return nil, f.listErr
	}
	return f.order, nil
}

func (f *fakeMailbox) GetMessage(_ context.Context, id string) (*gmailapi.Message, error) {
	f.fetched = append(f.fetched, id)
	if f.getErr != nil {
		return nil, f.getErr
	}
	msg, ok := f.messages[id]
	if !ok {
		return nil, fmt.Errorf("no such message %s", id)
	}
	return msg, nil
}

func (f *fakeMailbox) MarkRead(_ context.Context, id string) error {
	if f.markErr != nil {
		return f.markErr
	}
	f.markedRead = append(f.markedRead, id)
	return nil
}

func testMessage(id, subject, from, date, body string) *gmailapi.Message {
	return &gmailapi.Message{
		Id:      id,
		Snippet: "snippet of " + id,
		Payload: &gmailapi.MessagePart{
			MimeType: "text/plain",
			Headers: []*gmailapi.MessagePartHeader{
				{Name: "Subject", Value: subject},
				{Name: "From", Value: from},
				{Name: "Date", Value: date},
			},
			Body: &gmailapi.MessagePartBody{
				Data: base64.URLEncoding.EncodeToString([]byte(body)),
			},
		},
	}
}

func discardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

// testPoller wires a poller with a fixed clock and a recording wait.
func testPoller(mailbox Mailbox, gmailCfg config.Gmail, processing config.Processing) (*Poller, *time.Duration) {
	p := NewPoller(mailbox, gmailCfg, processing, discardLogger(), nil, nil)
	p.now = func() time.Time { return time.Date(2024, 3, 15, 12, 0, 0, 0, time.UTC) }

	var waited time.Duration
	p.wait = func(_ context.Context, d time.Duration) error {
		waited = d
		return nil
	}
	return p, &waited
}

func TestRunProcessesAllMessages(t *testing.T) {
	mailbox := &fakeMailbox{
		order: []string{"m1", "m2"},
		messages: map[string]*gmailapi.Message{
			"m1": testMessage("m1", "First", "a@example.com", "Fri, 15 Mar 2024 10:00:00 +0000", "body one"),
			"m2": testMessage("m2", "Second", "b@example.com", "Fri, 15 Mar 2024 11:00:00 +0000", "body two"),
		},
	}

	p, waited := testPoller(mailbox, config.Gmail{NDays: 1, PollInterval: 5}, config.Processing{})

	require.NoError(t, p.Run(context.Background()))

	assert.Equal(t, []string{"after:2024/03/14 is:unread"}, mailbox.listQueries)
	assert.Equal(t, []string{"m1", "m2"}, mailbox.fetched)
	assert.Equal(t, []string{"m1", "m2"}, mailbox.markedRead)
	assert.Equal(t, 5*time.Second, *waited)
}

func TestRunEmptyMailboxStillWaits(t *testing.T) {
	mailbox := &fakeMailbox{}
	p, waited := testPoller(mailbox, config.Gmail{NDays: 1, PollInterval: 30}, config.Processing{})

	require.NoError(t, p.Run(context.Background()))

	assert.Empty(t, mailbox.fetched)
	assert.Empty(t, mailbox.markedRead)
	assert.Equal(t, 30*time.Second, *waited)
}

func TestRunUsesConfiguredFilters(t *testing.T) {
	mailbox := &fakeMailbox{}
	p, _ := testPoller(mailbox,
		config.Gmail{NDays: 7, PollInterval: 5},
		config.Processing{From: "a@b.com", Subject: "Invoice"})

	require.NoError(t, p.Run(context.Background()))

	require.Len(t, mailbox.listQueries, 1)
	assert.Equal(t, "from:a@b.com subject:Invoice after:2024/03/08 is:unread", mailbox.listQueries[0])
}

func TestRunListFailureAborts(t *testing.T) {
	mailbox := &fakeMailbox{listErr: errors.New("list blew up")}
	p, waited := testPoller(mailbox, config.Gmail{NDays: 1, PollInterval: 5}, config.Processing{})

	err := p.Run(context.Background())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "list blew up")
	assert.Zero(t, *waited)
}

func TestRunFetchFailureAborts(t *testing.T) {
	mailbox := &fakeMailbox{
		order:  []string{"m1"},
		getErr: errors.New("get blew up"),
	}
	p, _ := testPoller(mailbox, config.Gmail{NDays: 1, PollInterval: 5}, config.Processing{})

	err := p.Run(context.Background())
	require.Error(t, err)
	assert.Empty(t, mailbox.markedRead)
}

func TestRunMarkReadFailureAborts(t *testing.T) {
	mailbox := &fakeMailbox{
		order: []string{"m1", "m2"},
		messages: map[string]*gmailapi.Message{
			"m1": testMessage("m1", "First", "a@example.com", "date", "body"),
			"m2": testMessage("m2", "Second", "b@example.com", "date", "body"),
		},
		markErr: errors.New("modify blew up"),
	}
	p, _ := testPoller(mailbox, config.Gmail{NDays: 1, PollInterval: 5}, config.Processing{})

	err := p.Run(context.Background())
	require.Error(t, err)
	// The failing mutation happens on the first message, so the second
	// is never fetched.
	assert.Equal(t, []string{"m1"}, mailbox.fetched)
}

func TestRunBlocksForInterval(t *testing.T) {
	mailbox := &fakeMailbox{}
	p := NewPoller(mailbox, config.Gmail{NDays: 1, PollInterval: 1}, config.Processing{}, discardLogger(), nil, nil)

	start := time.Now()
	require.NoError(t, p.Run(context.Background()))
	assert.GreaterOrEqual(t, time.Since(start), 1*time.Second)
}

func TestWaitIntervalCancelled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	err := waitInterval(ctx, time.Minute)
	require.Error(t, err)
	assert.ErrorIs(t, err, context.Canceled)
}

func TestHeaderValue(t *testing.T) {
	msg := &gmailapi.Message{
		Payload: &gmailapi.MessagePart{
			Headers: []*gmailapi.MessagePartHeader{
				{Name: "SUBJECT", Value: "shouting header"},
				{Name: "from", Value: "quiet@example.com"},
			},
		},
	}

	assert.Equal(t, "shouting header", headerValue(msg, "Subject", NoSubject))
	assert.Equal(t, "quiet@example.com", headerValue(msg, "From", UnknownSender))
	assert.Equal(t, UnknownDate, headerValue(msg, "Date", UnknownDate))
	assert.Equal(t, NoSubject, headerValue(&gmailapi.Message{}, "Subject", NoSubject))
}

func TestBodyPreview(t *testing.T) {
	assert.Equal(t, "short", bodyPreview("short"))

	long := make([]rune, bodyPreviewLen+50)
	for i := range long {
		long[i] = 'x'
	}
	got := bodyPreview(string(long))
	assert.Len(t, []rune(got), bodyPreviewLen+3)
	assert.True(t, len(got) < len(string(long)))
}
