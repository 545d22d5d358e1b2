package revisions

import (
	"context"
	"errors"
	"html/template"
	"log/slog"
	"net/http"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/microcosm-cc/bluemonday"
	"golang.org/x/sync/errgroup"

	"github.com/arguide/backoffice/internal/apiclient"
	"github.com/arguide/backoffice/internal/listctl"
	"github.com/arguide/backoffice/internal/resources"
)

// MaxMessageLength bounds a chat message in characters.
const MaxMessageLength = 2000

// MessageKind distinguishes chat entries.
type MessageKind string

const (
	KindText MessageKind = "TEXT"
	// KindRequestCard is the summary of the revision request that opens
	// every thread.
	KindRequestCard MessageKind = "REQUEST_CARD"
)

// Message is one chat entry.
type Message struct {
	ID         string      `json:"messageId"`
	Kind       MessageKind `json:"kind"`
	AuthorName string      `json:"authorName"`
	AuthorRole string      `json:"authorRole"`
	Body       string      `json:"body"`
	SentAt     time.Time   `json:"sentAt"`
	Card       *Request    `json:"-"`

	safe template.HTML
}

// HTML returns the sanitized body.
func (m Message) HTML() template.HTML { return m.safe }

// Thread is the append-only conversation of a revision request. The first
// entry is always the request card. Truncated is set when the backend holds
// more messages than a thread loads.
type Thread struct {
	Request   Request
	Messages  []Message
	Total     int
	Truncated bool
}

// Append adds an acknowledged message.
func (t *Thread) Append(m Message) {
	t.Messages = append(t.Messages, m)
}

const (
	messagePageSize = 100
	maxMessagePages = 50
)

// Chat reads and posts revision request messages.
type Chat struct {
	api      *apiclient.Client
	policy   *bluemonday.Policy
	logger   *slog.Logger
	pageSize int
	maxPages int
}

// NewChat builds a Chat over the backend client.
func NewChat(api *apiclient.Client, logger *slog.Logger) *Chat {
	if logger == nil {
		logger = slog.Default()
	}
	return &Chat{
		api:      api,
		policy:   bluemonday.UGCPolicy(),
		logger:   logger,
		pageSize: messagePageSize,
		maxPages: maxMessagePages,
	}
}

// Thread loads the request and its messages concurrently.
func (c *Chat) Thread(ctx context.Context, requestID string) (Thread, error) {
	var (
		req       Request
		msgs      []Message
		total     int
		truncated bool
	)
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		return c.api.Get(gctx, resources.RowPath(itemPath, requestID), nil, &req)
	})
	g.Go(func() error {
		var err error
		msgs, total, truncated, err = c.messages(gctx, requestID)
		return err
	})
	if err := g.Wait(); err != nil {
		return Thread{}, err
	}

	if truncated {
		c.logger.Warn("revision thread truncated",
			slog.String("request_id", requestID),
			slog.Int("loaded", len(msgs)),
			slog.Int("total", total))
	}
	thread := Thread{Request: req, Messages: make([]Message, 0, len(msgs)+1), Total: total, Truncated: truncated}
	thread.Append(c.card(req))
	for _, m := range msgs {
		if m.Kind == KindRequestCard {
			continue
		}
		thread.Append(c.sanitize(m))
	}
	return thread, nil
}

// messages pages through the thread until totalItems is reached, a page
// comes back empty or maxPages pages were read.
func (c *Chat) messages(ctx context.Context, requestID string) ([]Message, int, bool, error) {
	path := resources.RowPath(messagesPath, requestID)
	var (
		out   []Message
		total int
	)
	for page := 0; page < c.maxPages; page++ {
		q := listctl.NewQuery(c.pageSize, nil)
		q.Page = page
		res, err := apiclient.List[Message](ctx, c.api, path, q)
		if err != nil {
			return nil, 0, false, err
		}
		total = res.TotalCount
		out = append(out, res.Rows...)
		if len(res.Rows) == 0 || len(out) >= total {
			return out, total, false, nil
		}
	}
	return out, total, len(out) < total, nil
}

// Post sends text to the thread and returns the acknowledged message.
// Nothing is sent when the text is blank or too long.
func (c *Chat) Post(ctx context.Context, requestID, text string) (Message, error) {
	text = strings.TrimSpace(text)
	switch {
	case text == "":
		return Message{}, &listctl.ValidationError{Fields: map[string]string{"body": "is required"}}
	case utf8.RuneCountInString(text) > MaxMessageLength:
		return Message{}, &listctl.ValidationError{Fields: map[string]string{"body": "is too long"}}
	}
	var msg Message
	err := c.api.Mutate(ctx, http.MethodPost, resources.RowPath(messagesPath, requestID), map[string]string{"body": text}, &msg)
	if err != nil {
		c.logger.Error("post revision message", slog.String("request_id", requestID), slog.Any("error", err))
		return Message{}, err
	}
	if msg.ID == "" {
		return Message{}, errors.New("revisions: message not acknowledged")
	}
	if msg.Kind == "" {
		msg.Kind = KindText
	}
	return c.sanitize(msg), nil
}

func (c *Chat) sanitize(m Message) Message {
	m.safe = template.HTML(c.policy.Sanitize(m.Body))
	return m
}

func (c *Chat) card(req Request) Message {
	card := req
	return c.sanitize(Message{
		ID:         "card-" + req.ID,
		Kind:       KindRequestCard,
		AuthorName: req.Requester,
		Body:       req.Description,
		SentAt:     req.CreatedAt,
		Card:       &card,
	})
}

// StatusView renders the request status for the card.
func (r Request) StatusView() resources.StatusView {
	return Statuses.View(r.Status)
}
