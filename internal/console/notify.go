package console

import (
	"context"

	"github.com/arguide/backoffice/internal/listctl"
	"github.com/arguide/backoffice/internal/session"
)

// flashNotifier queues list notifications as session flashes so they show
// after the post-redirect-get round trip.
type flashNotifier struct{}

func (flashNotifier) Notify(ctx context.Context, n listctl.Notification) {
	sess := session.FromContext(ctx)
	if sess == nil {
		return
	}
	sess.AddFlash(session.Flash{Kind: string(n.Kind), Message: n.Message})
}
