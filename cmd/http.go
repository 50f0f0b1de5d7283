package cmd

import (
	"context"
	"fmt"
	"log"
	"log/slog"
	"net/http"
	"os"
	"runtime/pprof"
	commonJetstream "ticket-rush/common/jetstream"
	"ticket-rush/common/otel"
	inboundHttp "ticket-rush/inbound/http"
	"ticket-rush/outbound/notify"
	"ticket-rush/outbound/redislock"
	"ticket-rush/outbound/sqlgen"
	"ticket-rush/outbound/store"
	"ticket-rush/service/queue"
	"ticket-rush/service/reservation"
	"time"

	"github.com/go-playground/validator/v10"
)

func runHttpServerCmd(ctx context.Context) {
	cfg := newCfg("env")

	if cfg.GetString("env") == "dev" {
		cpu, err := os.Create("http-cpu.prof")
		if err != nil {
			log.Fatalf("could not create CPU profile: %v", err)
		}
		defer cpu.Close()

		err = pprof.StartCPUProfile(cpu)
		if err != nil {
			log.Fatalf("could not start CPU profile: %v", err)
		}
		defer pprof.StopCPUProfile()

		mem, err := os.Create("http-mem.prof")
		if err != nil {
			log.Fatalf("could not create memory profile: %v", err)
		}
		defer mem.Close()

		err = pprof.WriteHeapProfile(mem)
		if err != nil {
			log.Fatalf("could not write memory profile: %v", err)
		}
		defer mem.Close()
	}

	if cfg.GetBool("otel.enabled") {
		shutdown, err := otel.InitTracerProvider(ctx, cfg)
		if err != nil {
			log.Fatalln("unable to init tracer provider", err)
		}
		defer shutdown(context.Background())
	}

	validate := validator.New()

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

	mux := http.NewServeMux()
	mux.HandleFunc("GET /health", func(w http.ResponseWriter, r *http.Request) {
		slog.DebugContext(r.Context(), "health check")
		w.WriteHeader(http.StatusOK)
	})

	timeoutMiddleware := inboundHttp.TimeoutMiddleware(20 * time.Second)

	inboundHttp.RegisterQueueHttp(mux, queueEngine, validate)
	inboundHttp.RegisterSeatHttp(mux, reservationEngine, queueEngine, validate)
	inboundHttp.RegisterPaymentHttp(mux, reservationEngine, validate)
	inboundHttp.RegisterOpsHttp(mux)

	srv := &http.Server{
		Addr:              fmt.Sprintf(":%d", cfg.GetInt("server.port")),
		Handler:           timeoutMiddleware(inboundHttp.CorsMiddleware(mux)),
		ReadTimeout:       5 * time.Second,
		WriteTimeout:      20 * time.Second,
		IdleTimeout:       120 * time.Second,
		ReadHeaderTimeout: 2 * time.Second,
		MaxHeaderBytes:    1 << 20,
	}

	go func() {
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatalln("unable to start server", err)
		}
	}()

	slog.Info("http server started")

	<-ctx.Done()

	ctxShutDown, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := srv.Shutdown(ctxShutDown); err != nil {
		log.Fatalln("unable to shutdown server", err)
	}

	slog.Info("http server stopped")
}
