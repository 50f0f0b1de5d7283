package contract

import (
	"context"
	"ticket-rush/model"
)

// Notifier delivers fire-and-forget domain notifications. Implementations
// must never fail the calling domain transition; delivery errors are logged
// and dropped.
type Notifier interface {
	Notify(ctx context.Context, n model.Notification)
}
