package gmail

import (
	"context"
	"fmt"
	"net/http"
	"time"

	gmailapi "google.golang.org/api/gmail/v1"
	"google.golang.org/api/option"

	"github.com/tverberg/gmailpoll/internal/instrumentation"
)

const unreadLabel = "UNREAD"

// Client wraps the Gmail Users service for the operations the poller
// needs. All calls block until the provider responds; there is no retry
// and no backoff, every failure surfaces to the caller.
type Client struct {
	svc     *gmailapi.UsersService
	metrics *instrumentation.Metrics
}

// NewClient creates a Gmail client from an authenticated HTTP client.
// metrics may be a zero-value recorder when instrumentation is disabled.
func NewClient(ctx context.Context, httpClient *http.Client, metrics *instrumentation.Metrics) (*Client, error) {
	svc, err := gmailapi.NewService(ctx, option.WithHTTPClient(httpClient))
	if err != nil {
		return nil, fmt.Errorf("failed to create Gmail service: %w", err)
	}
	if metrics == nil {
		metrics = &instrumentation.Metrics{}
	}
	return &Client{
		svc:     svc.Users,
		metrics: metrics,
	}, nil
}

// ListMessageIDs returns the ids of all messages matching the query, in
// listing order, following pagination.
func (c *Client) ListMessageIDs(ctx context.Context, query string) ([]string, error) {
	start := time.Now()
	ids, err := c.listMessageIDs(ctx, query)
	c.metrics.RecordGmailOperation(ctx, "list", statusOf(err), time.Since(start))
	if err != nil {
		return nil, fmt.Errorf("failed to list messages: %w", err)
	}
	return ids, nil
}

func (c *Client) listMessageIDs(ctx context.Context, query string) ([]string, error) {
	var ids []string
	pageToken := ""
	for {
		req := c.svc.Messages.List("me").Q(query).Context(ctx)
		if pageToken != "" {
			req = req.PageToken(pageToken)
		}
		res, err := req.Do()
		if err != nil {
			return nil, err
		}
		for _, m := range res.Messages {
			ids = append(ids, m.Id)
		}
		if res.NextPageToken == "" {
			return ids, nil
		}
		pageToken = res.NextPageToken
	}
}

// GetMessage retrieves a full Gmail message.
func (c *Client) GetMessage(ctx context.Context, id string) (*gmailapi.Message, error) {
	start := time.Now()
	msg, err := c.svc.Messages.Get("me", id).Format("full").Context(ctx).Do()
	c.metrics.RecordGmailOperation(ctx, "get", statusOf(err), time.Since(start))
	if err != nil {
		return nil, fmt.Errorf("failed to get message %s: %w", id, err)
	}
	return msg, nil
}

// MarkRead removes the UNREAD label from a message. There is no inverse
// path; this is the only durable state the poller writes.
func (c *Client) MarkRead(ctx context.Context, id string) error {
	start := time.Now()
	_, err := c.svc.Messages.Modify("me", id, &gmailapi.ModifyMessageRequest{
		RemoveLabelIds: []string{unreadLabel},
	}).Context(ctx).Do()
	c.metrics.RecordGmailOperation(ctx, "modify", statusOf(err), time.Since(start))
	if err != nil {
		return fmt.Errorf("failed to mark message %s as read: %w", id, err)
	}
	c.metrics.RecordUnreadClear(ctx)
	return nil
}

func statusOf(err error) string {
	if err != nil {
		return instrumentation.StatusError
	}
	return instrumentation.StatusSuccess
}
