package event

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"ticket-rush/common/constant"
	"ticket-rush/model"
	"ticket-rush/outbound/sqlgen"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/oklog/ulid/v2"
	"golang.org/x/text/message"
)

// Sender delivers a rendered notification to its recipients.
type Sender interface {
	Send(to []string, subject string, body string) error
}

type NotificationEvent struct {
	Querier        *sqlgen.Queries
	Email          Sender
	PriceFormatter *message.Printer
	Timeout        time.Duration
}

// SendHandler consumes one notification envelope from the stream, renders
// the matching email, and delivers it to the registered address. Malformed
// payloads and unknown recipients are dropped with a warning so they do not
// wedge the consumer.
func (in NotificationEvent) SendHandler(ctx context.Context, msg []byte) error {
	ctx, cancel := context.WithTimeout(ctx, in.Timeout)
	defer cancel()

	var envelope model.NotificationEnvelope
	if err := json.Unmarshal(msg, &envelope); err != nil {
		slog.WarnContext(ctx, "notification envelope unmarshal error", slog.Any(constant.LogFieldErr, err))
		return nil
	}

	notification, err := envelope.Decode()
	if err != nil {
		slog.WarnContext(ctx, "notification payload decode error", slog.Any(constant.LogFieldErr, err))
		return nil
	}

	traceIdAttr := slog.String(constant.LogFieldTraceId, ulid.Make().String())
	reqAttr := slog.Any(constant.LogFieldPayload, string(msg))

	eventId, userId, subject, body := in.render(notification)
	if subject == "" {
		slog.WarnContext(ctx, "notification has no renderer", reqAttr, traceIdAttr)
		return nil
	}

	email, err := in.Querier.FindRegistrationEmail(ctx, sqlgen.FindRegistrationEmailParams{
		EventID: eventId,
		UserID:  userId,
	})
	if err != nil {
		if err == pgx.ErrNoRows {
			slog.WarnContext(ctx, "no registration email for notification recipient", reqAttr, traceIdAttr)
			return nil
		}

		slog.ErrorContext(ctx, "failed to find registration email", slog.Any(constant.LogFieldErr, err), reqAttr, traceIdAttr)
		return err
	}

	if err := in.Email.Send([]string{email}, subject, body); err != nil {
		slog.ErrorContext(ctx, "notification email send error", slog.Any(constant.LogFieldErr, err), reqAttr, traceIdAttr)
		return err
	}

	return nil
}

func (in NotificationEvent) render(n model.Notification) (eventId, userId int64, subject, body string) {
	switch v := n.(type) {
	case *model.QueueWaitingNotification:
		return v.EventID, v.UserID, "You Are In Line", in.buildQueueWaitingBody(v)
	case *model.QueueEnteredNotification:
		return v.EventID, v.UserID, "Your Purchase Window Is Open", in.buildQueueEnteredBody(v)
	case *model.QueueExpiredNotification:
		return v.EventID, v.UserID, "Purchase Window Expired", in.buildQueueExpiredBody(v)
	case *model.PaymentSuccessNotification:
		return v.EventID, v.UserID, "Payment Confirmation", in.buildPaymentSuccessBody(v)
	case *model.PaymentFailedNotification:
		return v.EventID, v.UserID, "Payment Failed", in.buildPaymentFailedBody(v)
	case *model.TicketIssuedNotification:
		return v.EventID, v.UserID, "Your Ticket", in.buildTicketIssuedBody(v)
	case *model.TicketCancelledNotification:
		return v.EventID, v.UserID, "Ticket Cancellation", in.buildTicketCancelledBody(v)
	}

	return 0, 0, "", ""
}

func (in NotificationEvent) buildQueueWaitingBody(n *model.QueueWaitingNotification) string {
	return fmt.Sprintf(constant.NotifyQueueWaitingTemplate, n.EventID, n.Rank)
}

func (in NotificationEvent) buildQueueEnteredBody(n *model.QueueEnteredNotification) string {
	return fmt.Sprintf(constant.NotifyQueueEnteredTemplate, n.EventID, n.Rank, n.ExpiresAt.Format(time.RFC1123))
}

func (in NotificationEvent) buildQueueExpiredBody(n *model.QueueExpiredNotification) string {
	return fmt.Sprintf(constant.NotifyQueueExpiredTemplate, n.EventID)
}

func (in NotificationEvent) buildPaymentSuccessBody(n *model.PaymentSuccessNotification) string {
	amountFormatted := in.PriceFormatter.Sprintf("$%d", n.Amount)
	return fmt.Sprintf(constant.NotifyPaymentSuccessTemplate, n.TicketID, n.EventID, amountFormatted)
}

func (in NotificationEvent) buildPaymentFailedBody(n *model.PaymentFailedNotification) string {
	return fmt.Sprintf(constant.NotifyPaymentFailedTemplate, n.TicketID, n.EventID)
}

func (in NotificationEvent) buildTicketIssuedBody(n *model.TicketIssuedNotification) string {
	return fmt.Sprintf(constant.NotifyTicketIssuedTemplate, n.TicketID, n.EventID, n.SeatCode)
}

func (in NotificationEvent) buildTicketCancelledBody(n *model.TicketCancelledNotification) string {
	return fmt.Sprintf(constant.NotifyTicketCancelledTemplate, n.TicketID, n.EventID, n.SeatCode)
}
