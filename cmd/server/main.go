// rollcall watches a group voice channel and keeps the daily attendance
// ledger: first arrivals are stamped once per member per day inside the
// configured window, and dayoff ranges are registered via a text command.
//
// main wires high-level dependencies and keeps the server lifecycle small.
// Business logic lives in the internal services packages.
package main

import (
	"context"
	"database/sql"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"time"

	"rollcall/internal/absence"
	"rollcall/internal/attendance"
	"rollcall/internal/audit"
	"rollcall/internal/clock"
	"rollcall/internal/platform/config"
	"rollcall/internal/platform/httpserver"
	"rollcall/internal/platform/logger"
	"rollcall/internal/platform/metrics"
	platformredis "rollcall/internal/platform/redis"
	"rollcall/internal/presence"
	"rollcall/internal/roster"
	httptransport "rollcall/internal/transport/http"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		os.Stderr.WriteString("config: " + err.Error() + "\n")
		os.Exit(1)
	}

	log := logger.New(cfg.LogLevel)

	civil, err := clock.New(cfg.Timezone)
	if err != nil {
		log.Error("invalid timezone", "timezone", cfg.Timezone, "error", err)
		os.Exit(1)
	}

	entries, err := cfg.RosterEntries()
	if err != nil {
		log.Error("invalid roster", "error", err)
		os.Exit(1)
	}
	tracked, err := roster.New(entries)
	if err != nil {
		log.Error("invalid roster", "error", err)
		os.Exit(1)
	}
	log.Info("roster loaded", "members", tracked.Size())

	m := metrics.New()

	// Audit trail: buffered publisher, background worker, optional Kafka
	// fan-out for downstream reporting.
	publisher := audit.NewPublisher(cfg.AuditBuffer)
	auditStores := []audit.Store{audit.NewInMemoryStore()}
	if len(cfg.Kafka.Brokers) > 0 {
		kafkaStore, err := audit.NewKafkaStore(cfg.Kafka.Brokers, cfg.Kafka.Topic)
		if err != nil {
			log.Error("kafka audit sink unavailable", "error", err)
			os.Exit(1)
		}
		defer kafkaStore.Close()
		auditStores = append(auditStores, kafkaStore)
		log.Info("audit events streaming to kafka", "topic", cfg.Kafka.Topic)
	}

	workerCtx, stopWorker := context.WithCancel(context.Background())
	defer stopWorker()
	go func() {
		_ = audit.NewWorker(publisher.Inbox(), log, auditStores...).Run(workerCtx)
	}()

	var (
		ledger        attendance.Ledger
		presenceStore presence.Store
		checkers      []httptransport.HealthChecker
	)
	switch cfg.StoreBackend {
	case "memory":
		ledger = attendance.NewInMemoryLedger()
		presenceStore = presence.NewInMemoryStore()
	case "redis":
		client, err := platformredis.New(cfg.Redis)
		if err != nil {
			log.Error("redis connection failed", "error", err)
			os.Exit(1)
		}
		if client == nil {
			log.Error("redis backend selected but REDIS_URL is empty")
			os.Exit(1)
		}
		defer client.Close()
		ledger = attendance.NewRedisLedger(client.Client)
		presenceStore = presence.NewRedisStore(client.Client)
		checkers = append(checkers, client)
	case "postgres":
		db, err := sql.Open("postgres", cfg.PostgresDSN)
		if err != nil {
			log.Error("postgres open failed", "error", err)
			os.Exit(1)
		}
		defer db.Close()
		if err := db.Ping(); err != nil {
			log.Error("postgres ping failed", "error", err)
			os.Exit(1)
		}
		ledger = attendance.NewPostgresLedger(db)
		// Live presence is ephemeral by contract; it stays in memory
		// even when the ledger is durable.
		presenceStore = presence.NewInMemoryStore()
		checkers = append(checkers, dbHealth{db})
	default:
		log.Error("unknown store backend", "backend", cfg.StoreBackend)
		os.Exit(1)
	}

	recorder, err := attendance.NewRecorder(ledger, civil, cfg.AttendanceWindow,
		attendance.WithLogger(log),
		attendance.WithMetrics(m),
		attendance.WithAudit(publisher),
	)
	if err != nil {
		log.Error("recorder init failed", "error", err)
		os.Exit(1)
	}
	log.Info("attendance window configured", "window", recorder.Window().String(), "timezone", cfg.Timezone)

	tracker, err := presence.NewTracker(presenceStore, recorder, tracked, civil,
		presence.WithLogger(log),
		presence.WithMetrics(m),
	)
	if err != nil {
		log.Error("tracker init failed", "error", err)
		os.Exit(1)
	}

	registrar, err := absence.NewRegistrar(ledger, tracked, civil, cfg.AbsencePolicy,
		absence.WithLogger(log),
		absence.WithMetrics(m),
		absence.WithAudit(publisher),
	)
	if err != nil {
		log.Error("registrar init failed", "error", err)
		os.Exit(1)
	}

	handler := httptransport.NewHandler(tracker, registrar, cfg.CommandToken, cfg.AllowedChannels(),
		httptransport.WithLogger(log),
		httptransport.WithMetrics(m),
	)
	srv := httpserver.New(cfg.Addr, httptransport.NewRouter(handler, checkers...))

	log.Info("starting rollcall", "addr", cfg.Addr, "backend", cfg.StoreBackend, "policy", string(cfg.AbsencePolicy))

	go func() {
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Error("server error", "error", err)
			os.Exit(1)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, os.Interrupt)
	<-quit

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(ctx); err != nil {
		log.Error("graceful shutdown failed", "error", err)
	}
}

// dbHealth adapts *sql.DB to the router's health check.
type dbHealth struct {
	db *sql.DB
}

func (h dbHealth) Health(ctx context.Context) error {
	return h.db.PingContext(ctx)
}
