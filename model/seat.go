package model

import "time"

type SeatStatus string

const (
	SeatStatusAvailable SeatStatus = "available"
	SeatStatusReserved  SeatStatus = "reserved"
	SeatStatusSold      SeatStatus = "sold"
)

// Seat is a sellable unit of event inventory. Version increments on every
// state-changing write; a write is rejected when the caller's expected
// version no longer matches the stored one.
type Seat struct {
	ID       int64
	EventID  int64
	SeatCode string
	Grade    string
	Price    int64
	Status   SeatStatus
	Version  int64
}

type TicketStatus string

const (
	TicketStatusDraft  TicketStatus = "draft"
	TicketStatusIssued TicketStatus = "issued"
	TicketStatusFailed TicketStatus = "failed"
)

func (s TicketStatus) Terminal() bool {
	return s == TicketStatusIssued || s == TicketStatusFailed
}

// Ticket is a claim on one seat by one user. A draft is time-boxed; drafts
// older than the configured TTL are force-failed by the reclaimer, which
// also releases the seat.
type Ticket struct {
	ID         int64
	ExternalID string
	EventID    int64
	SeatID     int64
	UserID     int64
	Status     TicketStatus
	CreatedAt  time.Time
}
