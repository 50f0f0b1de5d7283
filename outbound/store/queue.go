// Package store adapts the sqlgen query layer to the engine store
// interfaces, owning transaction orchestration and error mapping.
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
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgtype"
)

type QueueStore struct {
	Db      contract.DbConn
	Querier *sqlgen.Queries
}

func (s *QueueStore) UpsertRegistration(ctx context.Context, eventID, userID int64, email string) error {
	return s.Querier.UpsertRegistration(ctx, sqlgen.UpsertRegistrationParams{
		EventID: eventID,
		UserID:  userID,
		Email:   email,
	})
}

func (s *QueueStore) HasRegistration(ctx context.Context, eventID, userID int64) (bool, error) {
	return s.Querier.RegistrationExists(ctx, sqlgen.RegistrationExistsParams{
		EventID: eventID,
		UserID:  userID,
	})
}

func (s *QueueStore) ShuffleCandidates(ctx context.Context, eventID int64, limit int32) ([]int64, error) {
	return s.Querier.FindShuffleCandidates(ctx, sqlgen.FindShuffleCandidatesParams{
		EventID: eventID,
		Limit:   limit,
	})
}

func (s *QueueStore) EventIdsWithUnqueuedRegistrations(ctx context.Context) ([]int64, error) {
	return s.Querier.FindEventIdsWithUnqueuedRegistrations(ctx)
}

func (s *QueueStore) FindEntry(ctx context.Context, eventID, userID int64) (model.QueueEntry, error) {
	row, err := s.Querier.FindQueueEntry(ctx, sqlgen.FindQueueEntryParams{
		EventID: eventID,
		UserID:  userID,
	})
	if err == pgx.ErrNoRows {
		return model.QueueEntry{}, errs.ErrNotFound
	}
	if err != nil {
		return model.QueueEntry{}, err
	}

	return entryToModel(row), nil
}

func (s *QueueStore) QueuedUserIds(ctx context.Context, eventID int64, userIds []int64) ([]int64, error) {
	return s.Querier.FindQueuedUserIds(ctx, sqlgen.FindQueuedUserIdsParams{
		EventID: eventID,
		UserIds: userIds,
	})
}

func (s *QueueStore) MaxRank(ctx context.Context, eventID int64) (int64, error) {
	return s.Querier.MaxQueueRank(ctx, eventID)
}

// InsertWaitingEntries inserts the shuffled batch in one transaction so a
// partial insert never leaves a rank gap. A unique violation means a
// duplicate unmanaged insert and maps to errs.ErrAlreadyEnrolled.
func (s *QueueStore) InsertWaitingEntries(ctx context.Context, entries []model.QueueEntry) error {
	tx, err := s.Db.Begin(ctx)
	if err != nil {
		return fmt.Errorf("begin transaction: %w", err)
	}

	defer func() {
		if err := tx.Rollback(ctx); err != nil && err != pgx.ErrTxClosed {
			slog.ErrorContext(ctx, "failed to rollback transaction", slog.Any(constant.LogFieldErr, err))
		}
	}()

	withTx := s.Querier.WithTx(tx)

	for _, entry := range entries {
		_, err := withTx.InsertQueueEntry(ctx, sqlgen.InsertQueueEntryParams{
			EventID: entry.EventID,
			UserID:  entry.UserID,
			Rank:    entry.Rank,
		})
		if err != nil {
			if errs.IsUniqueViolation(err) {
				return fmt.Errorf("user %d event %d: %w", entry.UserID, entry.EventID, errs.ErrAlreadyEnrolled)
			}
			return fmt.Errorf("insert queue entry: %w", err)
		}
	}

	return tx.Commit(ctx)
}

func (s *QueueStore) CountEntered(ctx context.Context, eventID int64) (int64, error) {
	return s.Querier.CountEnteredQueueEntries(ctx, eventID)
}

func (s *QueueStore) ListWaitingByRank(ctx context.Context, eventID int64, limit int32) ([]model.QueueEntry, error) {
	rows, err := s.Querier.FindWaitingQueueEntries(ctx, sqlgen.FindWaitingQueueEntriesParams{
		EventID: eventID,
		Limit:   limit,
	})
	if err != nil {
		return nil, err
	}

	return entriesToModel(rows), nil
}

func (s *QueueStore) MarkEntered(ctx context.Context, entryID int64, enteredAt, expiresAt time.Time) (bool, error) {
	rows, err := s.Querier.UpdateQueueEntryToEntered(ctx, sqlgen.UpdateQueueEntryToEnteredParams{
		ID:        entryID,
		EnteredAt: pgtype.Timestamp{Time: enteredAt, Valid: true},
		ExpiresAt: pgtype.Timestamp{Time: expiresAt, Valid: true},
	})
	if err != nil {
		return false, err
	}

	return rows > 0, nil
}

func (s *QueueStore) ListOverdueEntered(ctx context.Context, eventID int64, now time.Time, limit int32) ([]model.QueueEntry, error) {
	rows, err := s.Querier.FindOverdueEnteredQueueEntries(ctx, sqlgen.FindOverdueEnteredQueueEntriesParams{
		ExpiresAt: pgtype.Timestamp{Time: now, Valid: true},
		EventID:   eventID,
		Limit:     limit,
	})
	if err != nil {
		return nil, err
	}

	return entriesToModel(rows), nil
}

func (s *QueueStore) MarkExpired(ctx context.Context, entryID int64) (bool, error) {
	rows, err := s.Querier.UpdateQueueEntryToExpired(ctx, entryID)
	if err != nil {
		return false, err
	}

	return rows > 0, nil
}

func (s *QueueStore) HasDraftTicket(ctx context.Context, eventID, userID int64) (bool, error) {
	return s.Querier.ExistsDraftTicketForUser(ctx, sqlgen.ExistsDraftTicketForUserParams{
		EventID: eventID,
		UserID:  userID,
	})
}

func (s *QueueStore) EventIdsWithPendingEntries(ctx context.Context) ([]int64, error) {
	return s.Querier.FindEventIdsWithPendingQueueEntries(ctx)
}

func entryToModel(row sqlgen.QueueEntry) model.QueueEntry {
	entry := model.QueueEntry{
		ID:      row.ID,
		EventID: row.EventID,
		UserID:  row.UserID,
		Rank:    row.Rank,
		Status:  model.QueueEntryStatus(row.Status),
	}

	if row.EnteredAt.Valid {
		t := row.EnteredAt.Time
		entry.EnteredAt = &t
	}

	if row.ExpiresAt.Valid {
		t := row.ExpiresAt.Time
		entry.ExpiresAt = &t
	}

	return entry
}

func entriesToModel(rows []sqlgen.QueueEntry) []model.QueueEntry {
	entries := make([]model.QueueEntry, 0, len(rows))
	for _, row := range rows {
		entries = append(entries, entryToModel(row))
	}
	return entries
}
