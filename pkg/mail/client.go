package mail

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/rs/zerolog/log"
	"golang.org/x/oauth2"
	"google.golang.org/api/gmail/v1"
	"google.golang.org/api/option"

	"github.com/beam-cloud/mailtriage/pkg/types"
)

const (
	defaultUserID   = "me"
	defaultPageSize = 100
	fullFormat      = "full"
)

// errStopPaging ends a Pages iteration early once the message cap is reached
var errStopPaging = errors.New("stop paging")

// Message is a fetched Gmail message reduced to what classification needs
type Message struct {
	ID         string
	ThreadID   string
	Subject    string
	From       string
	Snippet    string
	Body       string
	Labels     []string
	ReceivedAt time.Time
}

// Client wraps the Gmail API for listing and fetching messages
type Client struct {
	svc *gmail.Service
	cfg types.MailConfig
	loc *time.Location
}

// NewClient creates a Gmail client that authenticates with the given token source
func NewClient(ctx context.Context, cfg types.MailConfig, ts oauth2.TokenSource, opts ...option.ClientOption) (*Client, error) {
	httpClient := oauth2.NewClient(ctx, ts)
	if cfg.Timeout > 0 {
		httpClient.Timeout = cfg.Timeout
	}
	return newClient(ctx, cfg, httpClient, opts...)
}

func newClient(ctx context.Context, cfg types.MailConfig, httpClient *http.Client, opts ...option.ClientOption) (*Client, error) {
	if cfg.UserID == "" {
		cfg.UserID = defaultUserID
	}
	if cfg.PageSize <= 0 {
		cfg.PageSize = defaultPageSize
	}

	clientOpts := []option.ClientOption{option.WithHTTPClient(httpClient)}
	if cfg.Endpoint != "" {
		clientOpts = append(clientOpts, option.WithEndpoint(cfg.Endpoint))
	}
	clientOpts = append(clientOpts, opts...)

	svc, err := gmail.NewService(ctx, clientOpts...)
	if err != nil {
		return nil, fmt.Errorf("create gmail service: %w", err)
	}

	return &Client{svc: svc, cfg: cfg, loc: cfg.Location()}, nil
}

// ListMessageIDs returns the ids of all messages matching query, following
// nextPageToken until the listing is exhausted or MaxMessages is reached.
func (c *Client) ListMessageIDs(ctx context.Context, query string) ([]string, error) {
	var ids []string
	pages := 0

	call := c.svc.Users.Messages.List(c.cfg.UserID).Q(query).MaxResults(c.cfg.PageSize)
	err := call.Pages(ctx, func(resp *gmail.ListMessagesResponse) error {
		pages++
		for _, m := range resp.Messages {
			if m == nil || m.Id == "" {
				continue
			}
			ids = append(ids, m.Id)
			if c.cfg.MaxMessages > 0 && len(ids) >= c.cfg.MaxMessages {
				return errStopPaging
			}
		}
		return nil
	})
	if err != nil && !errors.Is(err, errStopPaging) {
		return nil, fmt.Errorf("list messages: %w", err)
	}

	log.Debug().Str("query", query).Int("pages", pages).Int("messages", len(ids)).Msg("gmail messages listed")
	return ids, nil
}

// GetMessage fetches a single message in full format and extracts its headers,
// timestamp and plain-text body
func (c *Client) GetMessage(ctx context.Context, id string) (*Message, error) {
	msg, err := c.svc.Users.Messages.Get(c.cfg.UserID, id).Format(fullFormat).Context(ctx).Do()
	if err != nil {
		return nil, fmt.Errorf("get message %s: %w", id, err)
	}
	return ParseMessage(msg, c.loc, c.cfg.MaxPartDepth), nil
}

// ParseMessage converts an API message into a Message
func ParseMessage(msg *gmail.Message, loc *time.Location, maxDepth int) *Message {
	if loc == nil {
		loc = time.Local
	}

	m := &Message{
		ID:         msg.Id,
		ThreadID:   msg.ThreadId,
		Snippet:    msg.Snippet,
		Labels:     msg.LabelIds,
		ReceivedAt: time.UnixMilli(msg.InternalDate).In(loc),
	}

	if msg.Payload != nil {
		m.Subject = Header(msg.Payload.Headers, "Subject")
		m.From = Header(msg.Payload.Headers, "From")
		m.Body = ExtractBody(msg.Payload, maxDepth)
	}

	return m
}

// Header returns the first header value with the given name (case-insensitive)
func Header(headers []*gmail.MessagePartHeader, name string) string {
	for _, h := range headers {
		if h != nil && strings.EqualFold(h.Name, name) {
			return h.Value
		}
	}
	return ""
}
