// Package reservation owns the seat and draft-ticket lifecycle under
// concurrent claims: lock-guarded reservation, payment confirmation, and
// scheduled reclamation of overdue drafts.
package reservation

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"ticket-rush/common"
	"ticket-rush/common/constant"
	"ticket-rush/common/contract"
	"ticket-rush/common/errs"
	"ticket-rush/common/otel"
	"ticket-rush/model"
	"ticket-rush/service/batch"
	"time"

	"github.com/oklog/ulid/v2"
)

type ReserveSeatParams struct {
	EventID         int64
	SeatID          int64
	UserID          int64
	ExpectedVersion int64
	ExternalID      string
	Now             time.Time
}

// Store is the persistence collaborator for seats and tickets. ReserveSeat
// must perform the seat write version-guarded and the draft insert in one
// transaction, returning errs.ErrConcurrentModification when the expected
// version no longer matches. IssueTicket and FailTicket must guard on the
// draft status and report false when the ticket is no longer a draft.
type Store interface {
	FindSeat(ctx context.Context, seatID int64) (model.Seat, error)
	ListAvailableSeats(ctx context.Context, eventID int64) ([]model.Seat, error)
	ReserveSeat(ctx context.Context, arg ReserveSeatParams) (model.Ticket, error)
	FindTicketByExternalId(ctx context.Context, externalID string) (model.Ticket, error)
	IssueTicket(ctx context.Context, ticketID, seatID int64) (bool, error)
	FailTicket(ctx context.Context, ticketID, seatID int64) (bool, error)
	ListOverdueDrafts(ctx context.Context, before time.Time, limit int32) ([]model.Ticket, error)
}

type Engine struct {
	Store    Store
	Locker   contract.Locker
	Notifier contract.Notifier

	LockWait  time.Duration
	LockLease time.Duration
	DraftTTL  time.Duration
	PageSize  int32
	MaxPerRun int32

	TimeNow func() time.Time
}

func (e *Engine) now() time.Time {
	if e.TimeNow != nil {
		return e.TimeNow()
	}
	return time.Now()
}

type reservedSeat struct {
	Ticket model.Ticket
	Seat   model.Seat
}

// ReserveSeat claims the seat for the user under a per-seat distributed
// lock and creates a draft ticket. The versioned write is the correctness
// arbiter; the lock only keeps concurrent losers from reaching the store.
// There is no internal retry: at most one winner per seat, and the loser's
// error must be surfaced to the end user.
func (e *Engine) ReserveSeat(ctx context.Context, eventID, seatID, userID int64) (model.Ticket, model.Seat, error) {
	ctx, span := otel.Tracer.Start(ctx, "ReservationEngine.ReserveSeat")
	defer span.End()

	traceIdAttr := common.ExtractTraceIDFromCtx(ctx)

	wait := e.LockWait
	if wait <= 0 {
		wait = constant.SeatLockDefaultWait
	}

	lease := e.LockLease
	if lease <= 0 {
		lease = constant.SeatLockDefaultLease
	}

	key := fmt.Sprintf(constant.SeatLockKey, eventID, seatID)

	res, err := contract.WithLock(ctx, e.Locker, key, wait, lease, func(ctx context.Context) (reservedSeat, error) {
		seat, err := e.Store.FindSeat(ctx, seatID)
		if err != nil {
			return reservedSeat{}, err
		}

		if seat.EventID != eventID {
			return reservedSeat{}, errs.ErrNotFound
		}

		if seat.Status != model.SeatStatusAvailable {
			return reservedSeat{}, errs.ErrSeatUnavailable
		}

		ticket, err := e.Store.ReserveSeat(ctx, ReserveSeatParams{
			EventID:         eventID,
			SeatID:          seatID,
			UserID:          userID,
			ExpectedVersion: seat.Version,
			ExternalID:      ulid.Make().String(),
			Now:             e.now(),
		})
		if err != nil {
			return reservedSeat{}, err
		}

		return reservedSeat{Ticket: ticket, Seat: seat}, nil
	})
	if err != nil {
		if errors.Is(err, errs.ErrSeatUnavailable) || errors.Is(err, errs.ErrConcurrentModification) ||
			errors.Is(err, errs.ErrLockAcquisitionFailed) {
			slog.DebugContext(ctx, "seat reservation lost", traceIdAttr,
				slog.Int64(constant.LogFieldSeatId, seatID), slog.Any(constant.LogFieldErr, err))
		} else {
			slog.ErrorContext(ctx, "failed to reserve seat", traceIdAttr,
				slog.Int64(constant.LogFieldSeatId, seatID), slog.Any(constant.LogFieldErr, err))
		}

		common.UtilSpanError(span, err)
		return model.Ticket{}, model.Seat{}, err
	}

	slog.InfoContext(ctx, "seat reserved", traceIdAttr,
		slog.Int64(constant.LogFieldSeatId, seatID),
		slog.String(constant.LogFieldTicketId, res.Ticket.ExternalID))

	return res.Ticket, res.Seat, nil
}

// ListAvailableSeats is the inventory read model for the seat map.
func (e *Engine) ListAvailableSeats(ctx context.Context, eventID int64) ([]model.Seat, error) {
	return e.Store.ListAvailableSeats(ctx, eventID)
}

// ConfirmPayment transitions the caller's draft to issued and the seat to
// sold. Fails with errs.ErrNotDraftOrNotOwner when the ticket is not a
// draft or does not belong to the caller.
func (e *Engine) ConfirmPayment(ctx context.Context, ticketExternalID string, userID int64) (model.Ticket, error) {
	ctx, span := otel.Tracer.Start(ctx, "ReservationEngine.ConfirmPayment")
	defer span.End()

	traceIdAttr := common.ExtractTraceIDFromCtx(ctx)

	ticket, err := e.Store.FindTicketByExternalId(ctx, ticketExternalID)
	if err != nil {
		common.UtilSpanError(span, err)
		return model.Ticket{}, err
	}

	if ticket.Status != model.TicketStatusDraft || ticket.UserID != userID {
		return model.Ticket{}, errs.ErrNotDraftOrNotOwner
	}

	ok, err := e.Store.IssueTicket(ctx, ticket.ID, ticket.SeatID)
	if err != nil {
		slog.ErrorContext(ctx, "failed to issue ticket", traceIdAttr,
			slog.String(constant.LogFieldTicketId, ticketExternalID), slog.Any(constant.LogFieldErr, err))
		common.UtilSpanError(span, err)
		return model.Ticket{}, err
	}

	if !ok {
		// Raced to terminal between the read and the guarded write.
		return model.Ticket{}, errs.ErrNotDraftOrNotOwner
	}

	ticket.Status = model.TicketStatusIssued

	seat, seatErr := e.Store.FindSeat(ctx, ticket.SeatID)
	if seatErr != nil {
		slog.WarnContext(ctx, "failed to load seat for notification", traceIdAttr, slog.Any(constant.LogFieldErr, seatErr))
	}

	e.notify(ctx, model.PaymentSuccessNotification{
		EventID:  ticket.EventID,
		UserID:   ticket.UserID,
		TicketID: ticket.ExternalID,
		Amount:   seat.Price,
	})
	e.notify(ctx, model.TicketIssuedNotification{
		EventID:  ticket.EventID,
		UserID:   ticket.UserID,
		TicketID: ticket.ExternalID,
		SeatCode: seat.SeatCode,
	})

	slog.InfoContext(ctx, "payment confirmed", traceIdAttr, slog.String(constant.LogFieldTicketId, ticketExternalID))

	return ticket, nil
}

// FailPayment transitions the draft to failed and releases its seat. It is
// idempotent: a ticket already terminal is a no-op, not an error, so both
// explicit cancellation and the scheduled reclaimer can call it safely.
func (e *Engine) FailPayment(ctx context.Context, ticketExternalID string) error {
	ctx, span := otel.Tracer.Start(ctx, "ReservationEngine.FailPayment")
	defer span.End()

	ticket, err := e.Store.FindTicketByExternalId(ctx, ticketExternalID)
	if err != nil {
		common.UtilSpanError(span, err)
		return err
	}

	return e.failTicket(ctx, ticket)
}

func (e *Engine) failTicket(ctx context.Context, ticket model.Ticket) error {
	if ticket.Status.Terminal() {
		return nil
	}

	ok, err := e.Store.FailTicket(ctx, ticket.ID, ticket.SeatID)
	if err != nil {
		return err
	}

	if !ok {
		// Another caller finished the transition first.
		return nil
	}

	seat, seatErr := e.Store.FindSeat(ctx, ticket.SeatID)
	if seatErr != nil {
		slog.WarnContext(ctx, "failed to load seat for notification", slog.Any(constant.LogFieldErr, seatErr))
	}

	e.notify(ctx, model.PaymentFailedNotification{
		EventID:  ticket.EventID,
		UserID:   ticket.UserID,
		TicketID: ticket.ExternalID,
	})
	e.notify(ctx, model.TicketCancelledNotification{
		EventID:  ticket.EventID,
		UserID:   ticket.UserID,
		TicketID: ticket.ExternalID,
		SeatCode: seat.SeatCode,
	})

	return nil
}

// ReclaimOverdueDrafts force-fails drafts older than the TTL, releasing
// their seats. Reclamation is driven entirely by this scheduled pass, so it
// stays correct even when the original request's process has died.
func (e *Engine) ReclaimOverdueDrafts(ctx context.Context) (batch.Report, error) {
	before := e.now().Add(-e.DraftTTL)

	return batch.Run(ctx, "draft-reclaim",
		batch.Options{PageSize: e.PageSize, MaxItems: e.MaxPerRun},
		func(ctx context.Context, limit int32) ([]model.Ticket, error) {
			return e.Store.ListOverdueDrafts(ctx, before, limit)
		},
		func(ticket model.Ticket) string {
			return ticket.ExternalID
		},
		func(ctx context.Context, ticket model.Ticket) error {
			return e.failTicket(ctx, ticket)
		},
	)
}

func (e *Engine) notify(ctx context.Context, n model.Notification) {
	if e.Notifier == nil {
		return
	}
	e.Notifier.Notify(ctx, n)
}
