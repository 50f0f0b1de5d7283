package cron

import (
	"context"
	"log/slog"
	"ticket-rush/common"
	"ticket-rush/common/constant"
	"ticket-rush/common/vars"
	"ticket-rush/service/queue"
	"ticket-rush/service/reservation"
	"time"

	"github.com/spf13/viper"
)

// TickLocker serializes a named periodic job across scheduler replicas.
// The returned release function must be called when the tick finishes;
// held=false means another replica owns this tick and it should be skipped.
type TickLocker interface {
	TryHold(ctx context.Context, key string) (release func(context.Context), held bool, err error)
}

type SchedulerCron struct {
	Cfg         *viper.Viper
	Lock        TickLocker
	Queue       *queue.Engine
	Reservation *reservation.Engine

	TimeNow func() time.Time
}

func (in SchedulerCron) Start(ctx context.Context) {
	entryTicker := time.NewTicker(in.Cfg.GetDuration("cron.entry.interval"))
	defer entryTicker.Stop()

	shuffleTicker := time.NewTicker(in.Cfg.GetDuration("cron.shuffle.interval"))
	defer shuffleTicker.Stop()

	reclaimTicker := time.NewTicker(in.Cfg.GetDuration("cron.reclaim.interval"))
	defer reclaimTicker.Stop()

	slog.Info("scheduler cron started")

	// Block in the main function, not in a goroutine
	for {
		select {
		case <-entryTicker.C:
			in.entryTick(ctx)
		case <-shuffleTicker.C:
			in.shuffleTick(ctx)
		case <-reclaimTicker.C:
			in.reclaimTick(ctx)
		case <-ctx.Done():
			slog.Info("scheduler cron stopped")
			return
		}
	}
}

func (in SchedulerCron) entryTick(ctx context.Context) {
	ctx, cancel := context.WithTimeout(ctx, in.Cfg.GetDuration("cron.entry.timeout"))
	defer cancel()

	traceIdAttr := common.ExtractTraceIDFromCtx(ctx)

	release, held, err := in.Lock.TryHold(ctx, constant.SchedulerEntryLock)
	if err != nil {
		slog.ErrorContext(ctx, "failed to acquire entry tick lock", traceIdAttr, slog.Any(constant.LogFieldErr, err))
		return
	}
	if !held {
		return
	}
	defer release(ctx)

	eventIds, err := in.Queue.PendingEventIds(ctx)
	if err != nil {
		slog.ErrorContext(ctx, "failed to list events with pending entries", traceIdAttr, slog.Any(constant.LogFieldErr, err))
		return
	}

	for _, eventId := range eventIds {
		result, err := in.Queue.EntryTick(ctx, eventId)
		if err != nil {
			slog.ErrorContext(ctx, "entry tick failed", traceIdAttr,
				slog.Int64(constant.LogFieldEventId, eventId), slog.Any(constant.LogFieldErr, err))
			continue
		}

		vars.SetReport(result.Expired)

		if result.Expired.Examined > 0 || len(result.Promoted) > 0 {
			slog.InfoContext(ctx, "entry tick finished", traceIdAttr,
				slog.Int64(constant.LogFieldEventId, eventId),
				slog.Int("expired", result.Expired.Succeeded),
				slog.Int("promoted", len(result.Promoted)))
		}
	}
}

func (in SchedulerCron) shuffleTick(ctx context.Context) {
	if !in.withinShuffleWindow() {
		return
	}

	ctx, cancel := context.WithTimeout(ctx, in.Cfg.GetDuration("cron.shuffle.timeout"))
	defer cancel()

	traceIdAttr := common.ExtractTraceIDFromCtx(ctx)

	release, held, err := in.Lock.TryHold(ctx, constant.SchedulerShuffleLock)
	if err != nil {
		slog.ErrorContext(ctx, "failed to acquire shuffle tick lock", traceIdAttr, slog.Any(constant.LogFieldErr, err))
		return
	}
	if !held {
		return
	}
	defer release(ctx)

	eventIds, err := in.Queue.ShuffleEventIds(ctx)
	if err != nil {
		slog.ErrorContext(ctx, "failed to list events with unqueued registrations", traceIdAttr, slog.Any(constant.LogFieldErr, err))
		return
	}

	limit := in.Cfg.GetInt32("cron.shuffle.size")
	for _, eventId := range eventIds {
		queued, err := in.Queue.ShuffleTick(ctx, eventId, limit)
		if err != nil {
			slog.ErrorContext(ctx, "shuffle tick failed", traceIdAttr,
				slog.Int64(constant.LogFieldEventId, eventId), slog.Any(constant.LogFieldErr, err))
			continue
		}

		if queued > 0 {
			slog.InfoContext(ctx, "shuffle tick finished", traceIdAttr,
				slog.Int64(constant.LogFieldEventId, eventId), slog.Int("queued", queued))
		}
	}
}

func (in SchedulerCron) reclaimTick(ctx context.Context) {
	ctx, cancel := context.WithTimeout(ctx, in.Cfg.GetDuration("cron.reclaim.timeout"))
	defer cancel()

	traceIdAttr := common.ExtractTraceIDFromCtx(ctx)

	release, held, err := in.Lock.TryHold(ctx, constant.SchedulerReclaimLock)
	if err != nil {
		slog.ErrorContext(ctx, "failed to acquire reclaim tick lock", traceIdAttr, slog.Any(constant.LogFieldErr, err))
		return
	}
	if !held {
		return
	}
	defer release(ctx)

	report, err := in.Reservation.ReclaimOverdueDrafts(ctx)
	if err != nil {
		slog.ErrorContext(ctx, "reclaim tick failed", traceIdAttr, slog.Any(constant.LogFieldErr, err))
		return
	}

	vars.SetReport(report)

	if report.Examined > 0 {
		slog.InfoContext(ctx, "reclaim tick finished", traceIdAttr,
			slog.String(constant.LogFieldRunId, report.RunID),
			slog.Int("reclaimed", report.Succeeded), slog.Int("failed", report.Failed))
	}
}

// withinShuffleWindow gates the shuffle to the configured local-time window,
// e.g. from "09:00" until "21:00". An empty config disables the gate.
func (in SchedulerCron) withinShuffleWindow() bool {
	fromStr := in.Cfg.GetString("cron.shuffle.from")
	untilStr := in.Cfg.GetString("cron.shuffle.until")
	if fromStr == "" || untilStr == "" {
		return true
	}

	from, err := time.Parse("15:04", fromStr)
	if err != nil {
		slog.Error("invalid cron.shuffle.from", slog.Any(constant.LogFieldErr, err))
		return true
	}

	until, err := time.Parse("15:04", untilStr)
	if err != nil {
		slog.Error("invalid cron.shuffle.until", slog.Any(constant.LogFieldErr, err))
		return true
	}

	now := time.Now
	if in.TimeNow != nil {
		now = in.TimeNow
	}

	minuteOfDay := func(t time.Time) int { return t.Hour()*60 + t.Minute() }
	cur := minuteOfDay(now())

	return cur >= minuteOfDay(from) && cur < minuteOfDay(until)
}
