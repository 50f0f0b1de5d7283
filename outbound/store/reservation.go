package store

import (
	"context"
	"fmt"
	"log/slog"
	"ticket-rush/common/constant"
	"ticket-rush/common/contract"
	"ticket-rush/common/errs"
	"ticket-rush/model"
	"ticket-rush/outbound/sqlgen"
	"ticket-rush/service/reservation"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgtype"
)

type ReservationStore struct {
	Db      contract.DbConn
	Querier *sqlgen.Queries
}

func (s *ReservationStore) FindSeat(ctx context.Context, seatID int64) (model.Seat, error) {
	row, err := s.Querier.FindSeatById(ctx, seatID)
	if err == pgx.ErrNoRows {
		return model.Seat{}, errs.ErrNotFound
	}
	if err != nil {
		return model.Seat{}, err
	}

	return seatToModel(row), nil
}

func (s *ReservationStore) ListAvailableSeats(ctx context.Context, eventID int64) ([]model.Seat, error) {
	rows, err := s.Querier.FindAvailableSeats(ctx, eventID)
	if err != nil {
		return nil, err
	}

	seats := make([]model.Seat, 0, len(rows))
	for _, row := range rows {
		seats = append(seats, seatToModel(row))
	}

	return seats, nil
}

// ReserveSeat performs the version-guarded seat write and the draft insert
// in one transaction. A version mismatch means another writer won the race
// despite the lock and maps to errs.ErrConcurrentModification.
func (s *ReservationStore) ReserveSeat(ctx context.Context, arg reservation.ReserveSeatParams) (model.Ticket, error) {
	tx, err := s.Db.Begin(ctx)
	if err != nil {
		return model.Ticket{}, fmt.Errorf("begin transaction: %w", err)
	}

	defer func() {
		if err := tx.Rollback(ctx); err != nil && err != pgx.ErrTxClosed {
			slog.ErrorContext(ctx, "failed to rollback transaction", slog.Any(constant.LogFieldErr, err))
		}
	}()

	withTx := s.Querier.WithTx(tx)

	rows, err := withTx.UpdateSeatStatusByVersion(ctx, sqlgen.UpdateSeatStatusByVersionParams{
		ID:      arg.SeatID,
		Status:  string(model.SeatStatusReserved),
		Version: arg.ExpectedVersion,
	})
	if err != nil {
		return model.Ticket{}, fmt.Errorf("update seat status: %w", err)
	}

	if rows == 0 {
		return model.Ticket{}, errs.ErrConcurrentModification
	}

	id, err := withTx.InsertTicket(ctx, sqlgen.InsertTicketParams{
		ExternalID: arg.ExternalID,
		EventID:    arg.EventID,
		SeatID:     arg.SeatID,
		UserID:     arg.UserID,
		CreatedAt:  pgtype.Timestamp{Time: arg.Now, Valid: true},
	})
	if err != nil {
		return model.Ticket{}, fmt.Errorf("insert ticket: %w", err)
	}

	if err := tx.Commit(ctx); err != nil {
		return model.Ticket{}, fmt.Errorf("commit transaction: %w", err)
	}

	return model.Ticket{
		ID:         id,
		ExternalID: arg.ExternalID,
		EventID:    arg.EventID,
		SeatID:     arg.SeatID,
		UserID:     arg.UserID,
		Status:     model.TicketStatusDraft,
		CreatedAt:  arg.Now,
	}, nil
}

func (s *ReservationStore) FindTicketByExternalId(ctx context.Context, externalID string) (model.Ticket, error) {
	row, err := s.Querier.FindTicketByExternalId(ctx, externalID)
	if err == pgx.ErrNoRows {
		return model.Ticket{}, errs.ErrNotFound
	}
	if err != nil {
		return model.Ticket{}, err
	}

	return ticketToModel(row), nil
}

func (s *ReservationStore) IssueTicket(ctx context.Context, ticketID, seatID int64) (bool, error) {
	tx, err := s.Db.Begin(ctx)
	if err != nil {
		return false, fmt.Errorf("begin transaction: %w", err)
	}

	defer func() {
		if err := tx.Rollback(ctx); err != nil && err != pgx.ErrTxClosed {
			slog.ErrorContext(ctx, "failed to rollback transaction", slog.Any(constant.LogFieldErr, err))
		}
	}()

	withTx := s.Querier.WithTx(tx)

	rows, err := withTx.UpdateTicketToIssued(ctx, ticketID)
	if err != nil {
		return false, fmt.Errorf("update ticket status: %w", err)
	}

	if rows == 0 {
		return false, nil
	}

	rows, err = withTx.UpdateSeatToSold(ctx, seatID)
	if err != nil {
		return false, fmt.Errorf("update seat status: %w", err)
	}

	if rows == 0 {
		// A draft ticket's seat must be reserved; anything else is corrupt.
		return false, fmt.Errorf("seat %d is not in reserved state", seatID)
	}

	return true, tx.Commit(ctx)
}

func (s *ReservationStore) FailTicket(ctx context.Context, ticketID, seatID int64) (bool, error) {
	tx, err := s.Db.Begin(ctx)
	if err != nil {
		return false, fmt.Errorf("begin transaction: %w", err)
	}

	defer func() {
		if err := tx.Rollback(ctx); err != nil && err != pgx.ErrTxClosed {
			slog.ErrorContext(ctx, "failed to rollback transaction", slog.Any(constant.LogFieldErr, err))
		}
	}()

	withTx := s.Querier.WithTx(tx)

	rows, err := withTx.UpdateTicketToFailed(ctx, ticketID)
	if err != nil {
		return false, fmt.Errorf("update ticket status: %w", err)
	}

	if rows == 0 {
		return false, nil
	}

	rows, err = withTx.UpdateSeatToAvailable(ctx, seatID)
	if err != nil {
		return false, fmt.Errorf("update seat status: %w", err)
	}

	if rows == 0 {
		return false, fmt.Errorf("seat %d is not in reserved state", seatID)
	}

	return true, tx.Commit(ctx)
}

func (s *ReservationStore) ListOverdueDrafts(ctx context.Context, before time.Time, limit int32) ([]model.Ticket, error) {
	rows, err := s.Querier.FindOverdueDraftTickets(ctx, sqlgen.FindOverdueDraftTicketsParams{
		CreatedAt: pgtype.Timestamp{Time: before, Valid: true},
		Limit:     limit,
	})
	if err != nil {
		return nil, err
	}

	tickets := make([]model.Ticket, 0, len(rows))
	for _, row := range rows {
		tickets = append(tickets, ticketToModel(row))
	}

	return tickets, nil
}

func seatToModel(row sqlgen.Seat) model.Seat {
	return model.Seat{
		ID:       row.ID,
		EventID:  row.EventID,
		SeatCode: row.SeatCode,
		Grade:    row.Grade,
		Price:    row.Price,
		Status:   model.SeatStatus(row.Status),
		Version:  row.Version,
	}
}

func ticketToModel(row sqlgen.Ticket) model.Ticket {
	return model.Ticket{
		ID:         row.ID,
		ExternalID: row.ExternalID,
		EventID:    row.EventID,
		SeatID:     row.SeatID,
		UserID:     row.UserID,
		Status:     model.TicketStatus(row.Status),
		CreatedAt:  row.CreatedAt.Time,
	}
}
