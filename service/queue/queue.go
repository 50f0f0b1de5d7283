// Package queue owns the admission-queue lifecycle: enrollment into the
// pre-registration pool, shuffle and rank assignment, promotion into a
// time-boxed purchase window, and expiration of stale entries.
package queue

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"math/rand/v2"
	"strconv"
	"ticket-rush/common"
	"ticket-rush/common/constant"
	"ticket-rush/common/contract"
	"ticket-rush/common/errs"
	"ticket-rush/common/otel"
	"ticket-rush/model"
	"ticket-rush/service/batch"
	"time"
)

// StatusRegistered is reported for users in the pre-registration pool who
// have not yet been shuffled into the queue.
const StatusRegistered = "registered"

// Store is the persistence collaborator for queue entries and the
// pre-registration pool. Absent records are reported as errs.ErrNotFound;
// duplicate inserts as errs.ErrAlreadyEnrolled.
type Store interface {
	UpsertRegistration(ctx context.Context, eventID, userID int64, email string) error
	HasRegistration(ctx context.Context, eventID, userID int64) (bool, error)
	ShuffleCandidates(ctx context.Context, eventID int64, limit int32) ([]int64, error)
	EventIdsWithUnqueuedRegistrations(ctx context.Context) ([]int64, error)

	FindEntry(ctx context.Context, eventID, userID int64) (model.QueueEntry, error)
	QueuedUserIds(ctx context.Context, eventID int64, userIds []int64) ([]int64, error)
	MaxRank(ctx context.Context, eventID int64) (int64, error)
	InsertWaitingEntries(ctx context.Context, entries []model.QueueEntry) error
	CountEntered(ctx context.Context, eventID int64) (int64, error)
	ListWaitingByRank(ctx context.Context, eventID int64, limit int32) ([]model.QueueEntry, error)
	MarkEntered(ctx context.Context, entryID int64, enteredAt, expiresAt time.Time) (bool, error)
	ListOverdueEntered(ctx context.Context, eventID int64, now time.Time, limit int32) ([]model.QueueEntry, error)
	MarkExpired(ctx context.Context, entryID int64) (bool, error)
	HasDraftTicket(ctx context.Context, eventID, userID int64) (bool, error)
	EventIdsWithPendingEntries(ctx context.Context) ([]int64, error)
}

type Engine struct {
	Store    Store
	Notifier contract.Notifier

	Window     time.Duration // purchase window granted on promotion
	BatchSize  int32         // entries promoted per tick
	MaxEntered int64         // cap on concurrently entered entries per event
	PageSize   int32
	MaxPerRun  int32

	TimeNow   func() time.Time
	ShuffleFn func(n int, swap func(i, j int))
}

// TickResult reports one entry tick: the expiration batch first, then the
// user IDs promoted into the freed capacity.
type TickResult struct {
	Expired  batch.Report
	Promoted []int64
}

func (e *Engine) now() time.Time {
	if e.TimeNow != nil {
		return e.TimeNow()
	}
	return time.Now()
}

// Enroll registers the user into the event's pre-registration pool. It is
// idempotent: a user already shuffled into the queue gets their current
// position back, and a redundant registration is success-equivalent.
func (e *Engine) Enroll(ctx context.Context, req model.EnrollQueueRequest) (model.QueueStatusResponse, error) {
	ctx, span := otel.Tracer.Start(ctx, "QueueEngine.Enroll")
	defer span.End()

	traceIdAttr := common.ExtractTraceIDFromCtx(ctx)

	entry, err := e.Store.FindEntry(ctx, req.EventId, req.UserId)
	if err == nil {
		slog.DebugContext(ctx, "enroll found existing queue entry", traceIdAttr)
		return statusFromEntry(entry), nil
	}

	if !errors.Is(err, errs.ErrNotFound) {
		slog.ErrorContext(ctx, "failed to find queue entry", traceIdAttr, slog.Any(constant.LogFieldErr, err))
		common.UtilSpanError(span, err)
		return model.QueueStatusResponse{}, err
	}

	if err := e.Store.UpsertRegistration(ctx, req.EventId, req.UserId, req.Email); err != nil {
		slog.ErrorContext(ctx, "failed to upsert registration", traceIdAttr, slog.Any(constant.LogFieldErr, err))
		common.UtilSpanError(span, err)
		return model.QueueStatusResponse{}, err
	}

	slog.InfoContext(ctx, "queue enroll success", traceIdAttr,
		slog.Int64(constant.LogFieldEventId, req.EventId), slog.Int64(constant.LogFieldUserId, req.UserId))

	return model.QueueStatusResponse{
		EventId: req.EventId,
		UserId:  req.UserId,
		Status:  StatusRegistered,
	}, nil
}

// Status reports the user's place in the event's admission flow.
func (e *Engine) Status(ctx context.Context, eventID, userID int64) (model.QueueStatusResponse, error) {
	entry, err := e.Store.FindEntry(ctx, eventID, userID)
	if err == nil {
		return statusFromEntry(entry), nil
	}

	if !errors.Is(err, errs.ErrNotFound) {
		return model.QueueStatusResponse{}, err
	}

	registered, err := e.Store.HasRegistration(ctx, eventID, userID)
	if err != nil {
		return model.QueueStatusResponse{}, err
	}

	if !registered {
		return model.QueueStatusResponse{}, errs.ErrNotFound
	}

	return model.QueueStatusResponse{EventId: eventID, UserId: userID, Status: StatusRegistered}, nil
}

// IsEntered reports whether the user currently holds an open purchase
// window for the event.
func (e *Engine) IsEntered(ctx context.Context, eventID, userID int64, now time.Time) (bool, error) {
	entry, err := e.Store.FindEntry(ctx, eventID, userID)
	if errors.Is(err, errs.ErrNotFound) {
		return false, nil
	}
	if err != nil {
		return false, err
	}

	return entry.Status == model.QueueEntryStatusEntered &&
		entry.ExpiresAt != nil && entry.ExpiresAt.After(now), nil
}

// Shuffle assigns each not-yet-queued candidate a unique rank drawn from a
// random permutation, appended after the event's current maximum rank so
// repeated calls never collide. Within one call the assigned ranks are a
// bijection onto a contiguous integer range.
func (e *Engine) Shuffle(ctx context.Context, eventID int64, candidates []int64) (int, error) {
	ctx, span := otel.Tracer.Start(ctx, "QueueEngine.Shuffle")
	defer span.End()

	traceIdAttr := common.ExtractTraceIDFromCtx(ctx)

	if len(candidates) == 0 {
		return 0, nil
	}

	queued, err := e.Store.QueuedUserIds(ctx, eventID, candidates)
	if err != nil {
		common.UtilSpanError(span, err)
		return 0, fmt.Errorf("find queued users: %w", err)
	}

	queuedSet := make(map[int64]struct{}, len(queued))
	for _, id := range queued {
		queuedSet[id] = struct{}{}
	}

	fresh := make([]int64, 0, len(candidates))
	for _, id := range candidates {
		if _, ok := queuedSet[id]; !ok {
			fresh = append(fresh, id)
		}
	}

	if len(fresh) == 0 {
		slog.DebugContext(ctx, "shuffle has no fresh candidates", traceIdAttr, slog.Int64(constant.LogFieldEventId, eventID))
		return 0, nil
	}

	shuffle := e.ShuffleFn
	if shuffle == nil {
		shuffle = rand.Shuffle
	}

	shuffle(len(fresh), func(i, j int) {
		fresh[i], fresh[j] = fresh[j], fresh[i]
	})

	maxRank, err := e.Store.MaxRank(ctx, eventID)
	if err != nil {
		common.UtilSpanError(span, err)
		return 0, fmt.Errorf("find max rank: %w", err)
	}

	entries := make([]model.QueueEntry, len(fresh))
	for i, userID := range fresh {
		entries[i] = model.QueueEntry{
			EventID: eventID,
			UserID:  userID,
			Rank:    maxRank + int64(i) + 1,
			Status:  model.QueueEntryStatusWaiting,
		}
	}

	if err := e.Store.InsertWaitingEntries(ctx, entries); err != nil {
		common.UtilSpanError(span, err)
		return 0, fmt.Errorf("insert waiting entries: %w", err)
	}

	for _, entry := range entries {
		e.notify(ctx, model.QueueWaitingNotification{EventID: eventID, UserID: entry.UserID, Rank: entry.Rank})
	}

	slog.InfoContext(ctx, "shuffle success", traceIdAttr,
		slog.Int64(constant.LogFieldEventId, eventID), slog.Int("candidates", len(fresh)))

	return len(fresh), nil
}

// ShuffleTick pulls the event's unqueued registrations and shuffles them in.
func (e *Engine) ShuffleTick(ctx context.Context, eventID int64, limit int32) (int, error) {
	candidates, err := e.Store.ShuffleCandidates(ctx, eventID, limit)
	if err != nil {
		return 0, fmt.Errorf("find shuffle candidates: %w", err)
	}

	return e.Shuffle(ctx, eventID, candidates)
}

// Promote admits the lowest-rank waiting entries, up to batchSize, never
// exceeding maxEntered concurrently entered entries for the event. Returns
// the promoted user IDs.
func (e *Engine) Promote(ctx context.Context, eventID int64, batchSize int32, maxEntered int64, now time.Time) ([]int64, error) {
	ctx, span := otel.Tracer.Start(ctx, "QueueEngine.Promote")
	defer span.End()

	traceIdAttr := common.ExtractTraceIDFromCtx(ctx)

	entered, err := e.Store.CountEntered(ctx, eventID)
	if err != nil {
		common.UtilSpanError(span, err)
		return nil, fmt.Errorf("count entered entries: %w", err)
	}

	capacity := maxEntered - entered
	if capacity <= 0 {
		slog.DebugContext(ctx, "no promotion capacity", traceIdAttr, slog.Int64(constant.LogFieldEventId, eventID))
		return nil, nil
	}

	limit := int64(batchSize)
	if limit > capacity {
		limit = capacity
	}

	waiting, err := e.Store.ListWaitingByRank(ctx, eventID, int32(limit))
	if err != nil {
		common.UtilSpanError(span, err)
		return nil, fmt.Errorf("list waiting entries: %w", err)
	}

	expiresAt := now.Add(e.Window)
	promoted := make([]int64, 0, len(waiting))

	for _, entry := range waiting {
		ok, err := e.Store.MarkEntered(ctx, entry.ID, now, expiresAt)
		if err != nil {
			slog.ErrorContext(ctx, "failed to promote entry", traceIdAttr,
				slog.Int64("entry_id", entry.ID), slog.Any(constant.LogFieldErr, err))
			continue
		}

		if !ok {
			continue
		}

		promoted = append(promoted, entry.UserID)
		e.notify(ctx, model.QueueEnteredNotification{
			EventID:   eventID,
			UserID:    entry.UserID,
			Rank:      entry.Rank,
			ExpiresAt: expiresAt,
		})
	}

	slog.InfoContext(ctx, "promote success", traceIdAttr,
		slog.Int64(constant.LogFieldEventId, eventID), slog.Int("promoted", len(promoted)))

	return promoted, nil
}

// Expire closes entered entries whose window has passed. eventID 0 covers
// all events.
func (e *Engine) Expire(ctx context.Context, eventID int64, now time.Time) (batch.Report, error) {
	return batch.Run(ctx, "queue-expire",
		batch.Options{PageSize: e.PageSize, MaxItems: e.MaxPerRun},
		func(ctx context.Context, limit int32) ([]model.QueueEntry, error) {
			return e.Store.ListOverdueEntered(ctx, eventID, now, limit)
		},
		func(entry model.QueueEntry) string {
			return strconv.FormatInt(entry.ID, 10)
		},
		func(ctx context.Context, entry model.QueueEntry) error {
			ok, err := e.Store.MarkExpired(ctx, entry.ID)
			if err != nil {
				return err
			}

			if ok {
				e.notify(ctx, model.QueueExpiredNotification{EventID: entry.EventID, UserID: entry.UserID})
			}

			return nil
		},
	)
}

// EntryTick runs one scheduled tick for the event: expire first so the
// freed capacity is visible to the promote step of the same tick.
func (e *Engine) EntryTick(ctx context.Context, eventID int64) (TickResult, error) {
	now := e.now()

	expired, err := e.Expire(ctx, eventID, now)
	if err != nil {
		return TickResult{Expired: expired}, fmt.Errorf("expire entries: %w", err)
	}

	promoted, err := e.Promote(ctx, eventID, e.BatchSize, e.MaxEntered, now)
	if err != nil {
		return TickResult{Expired: expired}, fmt.Errorf("promote entries: %w", err)
	}

	return TickResult{Expired: expired, Promoted: promoted}, nil
}

// RemoveForUser force-expires the user's entry, e.g. on account deletion.
// It fails with errs.ErrNotRemovable when the entry is already terminal or
// the user holds a draft ticket for the event, signaling the caller to
// block the higher-level operation instead.
func (e *Engine) RemoveForUser(ctx context.Context, eventID, userID int64) error {
	ctx, span := otel.Tracer.Start(ctx, "QueueEngine.RemoveForUser")
	defer span.End()

	traceIdAttr := common.ExtractTraceIDFromCtx(ctx)

	entry, err := e.Store.FindEntry(ctx, eventID, userID)
	if err != nil {
		common.UtilSpanError(span, err)
		return err
	}

	if entry.Status.Terminal() {
		return errs.ErrNotRemovable
	}

	hasDraft, err := e.Store.HasDraftTicket(ctx, eventID, userID)
	if err != nil {
		common.UtilSpanError(span, err)
		return fmt.Errorf("check draft ticket: %w", err)
	}

	if hasDraft {
		slog.DebugContext(ctx, "entry not removable, purchase in progress", traceIdAttr,
			slog.Int64(constant.LogFieldEventId, eventID), slog.Int64(constant.LogFieldUserId, userID))
		return errs.ErrNotRemovable
	}

	ok, err := e.Store.MarkExpired(ctx, entry.ID)
	if err != nil {
		common.UtilSpanError(span, err)
		return fmt.Errorf("expire entry: %w", err)
	}

	if !ok {
		return errs.ErrNotRemovable
	}

	e.notify(ctx, model.QueueExpiredNotification{EventID: eventID, UserID: userID})

	slog.InfoContext(ctx, "queue entry removed", traceIdAttr,
		slog.Int64(constant.LogFieldEventId, eventID), slog.Int64(constant.LogFieldUserId, userID))

	return nil
}

// PendingEventIds lists events with non-terminal queue entries for the
// entry tick.
func (e *Engine) PendingEventIds(ctx context.Context) ([]int64, error) {
	return e.Store.EventIdsWithPendingEntries(ctx)
}

// ShuffleEventIds lists events with registrations not yet shuffled in.
func (e *Engine) ShuffleEventIds(ctx context.Context) ([]int64, error) {
	return e.Store.EventIdsWithUnqueuedRegistrations(ctx)
}

func (e *Engine) notify(ctx context.Context, n model.Notification) {
	if e.Notifier == nil {
		return
	}
	e.Notifier.Notify(ctx, n)
}

func statusFromEntry(entry model.QueueEntry) model.QueueStatusResponse {
	resp := model.QueueStatusResponse{
		EventId: entry.EventID,
		UserId:  entry.UserID,
		Status:  string(entry.Status),
		Rank:    entry.Rank,
	}

	if entry.ExpiresAt != nil {
		resp.ExpiresAt = entry.ExpiresAt.Format(time.RFC3339)
	}

	return resp
}
