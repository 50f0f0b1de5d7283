package http

import (
	"context"
	"ticket-rush/common/errs"
	"ticket-rush/model"
	"ticket-rush/service/reservation"
	"time"
)

// stubQueueStore drives queue engine behavior per test case through
// function fields; unset fields report absence.
type stubQueueStore struct {
	findEntry          func(eventID, userID int64) (model.QueueEntry, error)
	upsertRegistration func(eventID, userID int64, email string) error
	hasRegistration    func(eventID, userID int64) (bool, error)
	hasDraftTicket     func(eventID, userID int64) (bool, error)
	markExpired        func(entryID int64) (bool, error)
}

func (s *stubQueueStore) FindEntry(_ context.Context, eventID, userID int64) (model.QueueEntry, error) {
	if s.findEntry == nil {
		return model.QueueEntry{}, errs.ErrNotFound
	}
	return s.findEntry(eventID, userID)
}

func (s *stubQueueStore) UpsertRegistration(_ context.Context, eventID, userID int64, email string) error {
	if s.upsertRegistration == nil {
		return nil
	}
	return s.upsertRegistration(eventID, userID, email)
}

func (s *stubQueueStore) HasRegistration(_ context.Context, eventID, userID int64) (bool, error) {
	if s.hasRegistration == nil {
		return false, nil
	}
	return s.hasRegistration(eventID, userID)
}

func (s *stubQueueStore) HasDraftTicket(_ context.Context, eventID, userID int64) (bool, error) {
	if s.hasDraftTicket == nil {
		return false, nil
	}
	return s.hasDraftTicket(eventID, userID)
}

func (s *stubQueueStore) MarkExpired(_ context.Context, entryID int64) (bool, error) {
	if s.markExpired == nil {
		return true, nil
	}
	return s.markExpired(entryID)
}

func (s *stubQueueStore) ShuffleCandidates(context.Context, int64, int32) ([]int64, error) {
	return nil, nil
}

func (s *stubQueueStore) EventIdsWithUnqueuedRegistrations(context.Context) ([]int64, error) {
	return nil, nil
}

func (s *stubQueueStore) QueuedUserIds(context.Context, int64, []int64) ([]int64, error) {
	return nil, nil
}

func (s *stubQueueStore) MaxRank(context.Context, int64) (int64, error) { return 0, nil }

func (s *stubQueueStore) InsertWaitingEntries(context.Context, []model.QueueEntry) error { return nil }

func (s *stubQueueStore) CountEntered(context.Context, int64) (int64, error) { return 0, nil }

func (s *stubQueueStore) ListWaitingByRank(context.Context, int64, int32) ([]model.QueueEntry, error) {
	return nil, nil
}

func (s *stubQueueStore) MarkEntered(context.Context, int64, time.Time, time.Time) (bool, error) {
	return false, nil
}

func (s *stubQueueStore) ListOverdueEntered(context.Context, int64, time.Time, int32) ([]model.QueueEntry, error) {
	return nil, nil
}

func (s *stubQueueStore) EventIdsWithPendingEntries(context.Context) ([]int64, error) {
	return nil, nil
}

type stubReservationStore struct {
	findSeat           func(seatID int64) (model.Seat, error)
	listAvailableSeats func(eventID int64) ([]model.Seat, error)
	reserveSeat        func(arg reservation.ReserveSeatParams) (model.Ticket, error)
	findTicket         func(externalID string) (model.Ticket, error)
	issueTicket        func(ticketID, seatID int64) (bool, error)
	failTicket         func(ticketID, seatID int64) (bool, error)
}

func (s *stubReservationStore) FindSeat(_ context.Context, seatID int64) (model.Seat, error) {
	if s.findSeat == nil {
		return model.Seat{}, errs.ErrNotFound
	}
	return s.findSeat(seatID)
}

func (s *stubReservationStore) ListAvailableSeats(_ context.Context, eventID int64) ([]model.Seat, error) {
	if s.listAvailableSeats == nil {
		return nil, nil
	}
	return s.listAvailableSeats(eventID)
}

func (s *stubReservationStore) ReserveSeat(_ context.Context, arg reservation.ReserveSeatParams) (model.Ticket, error) {
	if s.reserveSeat == nil {
		return model.Ticket{}, errs.ErrNotFound
	}
	return s.reserveSeat(arg)
}

func (s *stubReservationStore) FindTicketByExternalId(_ context.Context, externalID string) (model.Ticket, error) {
	if s.findTicket == nil {
		return model.Ticket{}, errs.ErrNotFound
	}
	return s.findTicket(externalID)
}

func (s *stubReservationStore) IssueTicket(_ context.Context, ticketID, seatID int64) (bool, error) {
	if s.issueTicket == nil {
		return false, nil
	}
	return s.issueTicket(ticketID, seatID)
}

func (s *stubReservationStore) FailTicket(_ context.Context, ticketID, seatID int64) (bool, error) {
	if s.failTicket == nil {
		return false, nil
	}
	return s.failTicket(ticketID, seatID)
}

func (s *stubReservationStore) ListOverdueDrafts(context.Context, time.Time, int32) ([]model.Ticket, error) {
	return nil, nil
}

// stubLocker grants every acquisition unless failAcquire is set.
type stubLocker struct {
	failAcquire bool
}

func (l *stubLocker) TryAcquire(context.Context, string, time.Duration, time.Duration) (string, error) {
	if l.failAcquire {
		return "", errs.ErrLockAcquisitionFailed
	}
	return "token", nil
}

func (l *stubLocker) Release(context.Context, string, string) error { return nil }
