package model

type ErrorResponse struct {
	Error string `json:"error"`
	Data  any    `json:"data,omitempty"`
}

type EnrollQueueRequest struct {
	EventId int64  `json:"event_id" validate:"required"`
	UserId  int64  `json:"user_id" validate:"required"`
	Email   string `json:"email" validate:"required,email"`
}

// QueueStatusResponse is the read model for a user's place in an event's
// admission flow. Status is "registered" until the shuffle picks the user
// into the queue, then mirrors the entry status.
type QueueStatusResponse struct {
	EventId   int64  `json:"event_id"`
	UserId    int64  `json:"user_id"`
	Status    string `json:"status"`
	Rank      int64  `json:"rank,omitempty"`
	ExpiresAt string `json:"expires_at,omitempty"`
}

type RemoveQueueEntryRequest struct {
	EventId int64 `json:"event_id" validate:"required"`
	UserId  int64 `json:"user_id" validate:"required"`
}

type ReserveSeatRequest struct {
	EventId int64 `json:"event_id" validate:"required"`
	SeatId  int64 `json:"seat_id" validate:"required"`
	UserId  int64 `json:"user_id" validate:"required"`
}

type ReserveSeatResponse struct {
	TicketId string `json:"ticket_id"`
	SeatCode string `json:"seat_code"`
	Price    int64  `json:"price"`
}

type SeatResponse struct {
	Id       int64  `json:"id"`
	SeatCode string `json:"seat_code"`
	Grade    string `json:"grade"`
	Price    int64  `json:"price"`
}

type ListSeatsResponse struct {
	Seats []SeatResponse `json:"seats"`
}

type PaymentCallbackRequest struct {
	TicketId string `json:"ticket_id" validate:"required"`
	UserId   int64  `json:"user_id"`
	Outcome  string `json:"outcome" validate:"required,oneof=success failure"`
}
