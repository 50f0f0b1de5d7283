package cmd

import (
	"context"
	commonJetstream "ticket-rush/common/jetstream"
	inboundCron "ticket-rush/inbound/cron"
	"ticket-rush/outbound/notify"
	"ticket-rush/outbound/redislock"
	"ticket-rush/outbound/sqlgen"
	"ticket-rush/outbound/store"
	"ticket-rush/service/queue"
	"ticket-rush/service/reservation"
)

func runSchedulerCmd(ctx context.Context) {
	cfg := newCfg("env")

	db := newDb(cfg)
	defer db.Close()

	cacheClient := newRedis(cfg)
	defer cacheClient.Close()

	natsConn := newNats(cfg)
	defer natsConn.Close()

	js := newJs(natsConn)
	commonJetstream.CreateQueueStream(ctx, js)

	querier := sqlgen.New(db)
	notifier := &notify.JetstreamNotifier{Publisher: js}

	queueEngine := &queue.Engine{
		Store:      &store.QueueStore{Db: db, Querier: querier},
		Notifier:   notifier,
		Window:     cfg.GetDuration("queue.entry_window"),
		BatchSize:  cfg.GetInt32("queue.batch_size"),
		MaxEntered: cfg.GetInt64("queue.max_entered"),
		PageSize:   cfg.GetInt32("queue.page_size"),
		MaxPerRun:  cfg.GetInt32("queue.max_per_run"),
	}

	reservationEngine := &reservation.Engine{
		Store:     &store.ReservationStore{Db: db, Querier: querier},
		Locker:    &redislock.Locker{Client: cacheClient},
		Notifier:  notifier,
		LockWait:  cfg.GetDuration("lock.seat.wait"),
		LockLease: cfg.GetDuration("lock.seat.lease"),
		DraftTTL:  cfg.GetDuration("draft.ttl"),
		PageSize:  cfg.GetInt32("draft.page_size"),
		MaxPerRun: cfg.GetInt32("draft.max_per_run"),
	}

	schedulerCron := inboundCron.SchedulerCron{
		Cfg: cfg,
		Lock: &redislock.TickLock{
			Client:  cacheClient,
			MinHold: cfg.GetDuration("scheduler.min_hold"),
			MaxHold: cfg.GetDuration("scheduler.max_hold"),
		},
		Queue:       queueEngine,
		Reservation: reservationEngine,
	}

	schedulerCron.Start(ctx)
}
