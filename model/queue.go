package model

import "time"

type QueueEntryStatus string

const (
	QueueEntryStatusWaiting QueueEntryStatus = "waiting"
	QueueEntryStatusEntered QueueEntryStatus = "entered"
	QueueEntryStatusExpired QueueEntryStatus = "expired"
)

// Terminal reports whether the entry can never transition again.
func (s QueueEntryStatus) Terminal() bool {
	return s == QueueEntryStatusExpired
}

// QueueEntry is one user's position in one event's admission queue.
// Rank values are dense and strictly ordered within an event at assignment
// time. ExpiresAt is set if and only if the entry is entered.
type QueueEntry struct {
	ID        int64
	EventID   int64
	UserID    int64
	Rank      int64
	Status    QueueEntryStatus
	EnteredAt *time.Time
	ExpiresAt *time.Time
}
