package notify

import (
	"context"
	"log/slog"
	"ticket-rush/common"
	"ticket-rush/common/constant"
	"ticket-rush/model"

	"github.com/nats-io/nats.go/jetstream"
)

// JetstreamNotifier publishes domain notifications on the work-queue
// stream. Delivery is fire-and-forget: failures are logged and never
// surfaced to the domain transition that triggered them.
type JetstreamNotifier struct {
	Publisher jetstream.Publisher
}

func (n JetstreamNotifier) Notify(ctx context.Context, msg model.Notification) {
	env, err := model.WrapNotification(msg)
	if err != nil {
		slog.ErrorContext(ctx, "failed to wrap notification", slog.Any(constant.LogFieldErr, err))
		return
	}

	if err := common.PublishMessage(ctx, n.Publisher, constant.SubjectNotify, env); err != nil {
		slog.ErrorContext(ctx, "failed to publish notification",
			slog.String("kind", string(env.Kind)), slog.Any(constant.LogFieldErr, err))
	}
}
