package model

import (
	"encoding/json"
	"fmt"
	"time"
)

type NotificationKind string

const (
	NotificationQueueWaiting    NotificationKind = "queue_waiting"
	NotificationQueueEntered    NotificationKind = "queue_entered"
	NotificationQueueExpired    NotificationKind = "queue_expired"
	NotificationPaymentSuccess  NotificationKind = "payment_success"
	NotificationPaymentFailed   NotificationKind = "payment_failed"
	NotificationTicketIssued    NotificationKind = "ticket_issued"
	NotificationTicketCancelled NotificationKind = "ticket_cancelled"
)

// Notification is a tagged union over the domain events the notification
// pipeline can deliver. Each variant carries only its relevant fields and
// is formatted by a single per-variant function in the consumer.
type Notification interface {
	NotificationKind() NotificationKind
}

type QueueWaitingNotification struct {
	EventID int64 `json:"event_id"`
	UserID  int64 `json:"user_id"`
	Rank    int64 `json:"rank"`
}

func (QueueWaitingNotification) NotificationKind() NotificationKind { return NotificationQueueWaiting }

type QueueEnteredNotification struct {
	EventID   int64     `json:"event_id"`
	UserID    int64     `json:"user_id"`
	Rank      int64     `json:"rank"`
	ExpiresAt time.Time `json:"expires_at"`
}

func (QueueEnteredNotification) NotificationKind() NotificationKind { return NotificationQueueEntered }

type QueueExpiredNotification struct {
	EventID int64 `json:"event_id"`
	UserID  int64 `json:"user_id"`
}

func (QueueExpiredNotification) NotificationKind() NotificationKind { return NotificationQueueExpired }

type PaymentSuccessNotification struct {
	EventID  int64  `json:"event_id"`
	UserID   int64  `json:"user_id"`
	TicketID string `json:"ticket_id"`
	Amount   int64  `json:"amount"`
}

func (PaymentSuccessNotification) NotificationKind() NotificationKind {
	return NotificationPaymentSuccess
}

type PaymentFailedNotification struct {
	EventID  int64  `json:"event_id"`
	UserID   int64  `json:"user_id"`
	TicketID string `json:"ticket_id"`
}

func (PaymentFailedNotification) NotificationKind() NotificationKind { return NotificationPaymentFailed }

type TicketIssuedNotification struct {
	EventID  int64  `json:"event_id"`
	UserID   int64  `json:"user_id"`
	TicketID string `json:"ticket_id"`
	SeatCode string `json:"seat_code"`
}

func (TicketIssuedNotification) NotificationKind() NotificationKind { return NotificationTicketIssued }

type TicketCancelledNotification struct {
	EventID  int64  `json:"event_id"`
	UserID   int64  `json:"user_id"`
	TicketID string `json:"ticket_id"`
	SeatCode string `json:"seat_code"`
}

func (TicketCancelledNotification) NotificationKind() NotificationKind {
	return NotificationTicketCancelled
}

// NotificationEnvelope is the wire format on the notification subject.
type NotificationEnvelope struct {
	Kind    NotificationKind `json:"kind"`
	Payload json.RawMessage  `json:"payload"`
}

func WrapNotification(n Notification) (NotificationEnvelope, error) {
	payload, err := json.Marshal(n)
	if err != nil {
		return NotificationEnvelope{}, fmt.Errorf("marshal notification payload: %w", err)
	}

	return NotificationEnvelope{Kind: n.NotificationKind(), Payload: payload}, nil
}

// Decode returns the concrete variant carried by the envelope.
func (e NotificationEnvelope) Decode() (Notification, error) {
	var n Notification
	switch e.Kind {
	case NotificationQueueWaiting:
		n = &QueueWaitingNotification{}
	case NotificationQueueEntered:
		n = &QueueEnteredNotification{}
	case NotificationQueueExpired:
		n = &QueueExpiredNotification{}
	case NotificationPaymentSuccess:
		n = &PaymentSuccessNotification{}
	case NotificationPaymentFailed:
		n = &PaymentFailedNotification{}
	case NotificationTicketIssued:
		n = &TicketIssuedNotification{}
	case NotificationTicketCancelled:
		n = &TicketCancelledNotification{}
	default:
		return nil, fmt.Errorf("unknown notification kind %q", e.Kind)
	}

	if err := json.Unmarshal(e.Payload, n); err != nil {
		return nil, fmt.Errorf("unmarshal %s payload: %w", e.Kind, err)
	}

	return n, nil
}
