package listctl

import (
	"context"
	"log/slog"
	"time"
)

// NotificationKind classifies a toast.
type NotificationKind string

const (
	KindSuccess NotificationKind = "success"
	KindError   NotificationKind = "error"
	KindInfo    NotificationKind = "info"
)

// Notification is a non-blocking message for the operator.
type Notification struct {
	Kind     NotificationKind
	Resource string
	Message  string
}

// Notifier surfaces notifications to the operator.
type Notifier interface {
	Notify(ctx context.Context, n Notification)
}

// NotifierFunc adapts a function to Notifier.
type NotifierFunc func(ctx context.Context, n Notification)

// Notify implements Notifier.
func (f NotifierFunc) Notify(ctx context.Context, n Notification) {
	f(ctx, n)
}

// LogNotifier writes notifications to a slog.Logger.
type LogNotifier struct {
	Logger *slog.Logger
}

// Notify implements Notifier.
func (l LogNotifier) Notify(ctx context.Context, n Notification) {
	logger := l.Logger
	if logger == nil {
		logger = slog.Default()
	}
	level := slog.LevelInfo
	if n.Kind == KindError {
		level = slog.LevelWarn
	}
	logger.Log(ctx, level, "notification", slog.String("kind", string(n.Kind)), slog.String("resource", n.Resource), slog.String("message", n.Message))
}

// Observer receives fetch and mutation outcomes, e.g. for metrics.
type Observer interface {
	ObserveFetch(resource string, took time.Duration, err error)
	ObserveMutation(resource, action string, err error)
}

type nopObserver struct{}

func (nopObserver) ObserveFetch(string, time.Duration, error) {}
func (nopObserver) ObserveMutation(string, string, error)     {}

type idempotencyKey struct{}

// WithIdempotencyKey attaches the confirmation token to ctx so transports can
// forward it with the mutation request.
func WithIdempotencyKey(ctx context.Context, key string) context.Context {
	return context.WithValue(ctx, idempotencyKey{}, key)
}

// IdempotencyKey extracts the confirmation token from ctx.
func IdempotencyKey(ctx context.Context) string {
	key, _ := ctx.Value(idempotencyKey{}).(string)
	return key
}
