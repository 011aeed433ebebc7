package main

import (
	"context"
	"database/sql"

	"go.uber.org/zap"

	"github.com/Renatocm0708/qr-access-nexus/internal/config"
	"github.com/Renatocm0708/qr-access-nexus/internal/db"
	"github.com/Renatocm0708/qr-access-nexus/internal/portunus/service"
	"github.com/Renatocm0708/qr-access-nexus/internal/portunus/store"
	"github.com/Renatocm0708/qr-access-nexus/internal/portunus/store/memory"
	sqlitestore "github.com/Renatocm0708/qr-access-nexus/internal/portunus/store/sqlite"
)

type backend struct {
	schedules store.ScheduleStore
	people    store.PersonStore
	logs      store.AccessLogStore
	terminals store.TerminalStore
	close     func()
}

func openBackend(ctx context.Context, cfg *config.Config, logger *zap.Logger) (*backend, error) {
	if cfg.Store.Backend == "memory" {
		logger.Info("using in-memory store")
		return &backend{
			schedules: memory.NewScheduleStore(),
			people:    memory.NewPersonStore(),
			logs:      memory.NewAccessLogStore(),
			terminals: memory.NewTerminalStore(),
			close:     func() {},
		}, nil
	}

	conn, err := db.Open(ctx, db.Config{Path: cfg.Store.DBPath})
	if err != nil {
		return nil, err
	}
	writer := db.NewWorker(conn)
	logger.Info("using sqlite store", zap.String("path", cfg.Store.DBPath))
	return &backend{
		schedules: sqlitestore.NewScheduleStore(conn, writer),
		people:    sqlitestore.NewPersonStore(conn, writer),
		logs:      sqlitestore.NewAccessLogStore(conn, writer),
		terminals: sqlitestore.NewTerminalStore(conn, writer),
		close:     closer(conn, writer),
	}, nil
}

func closer(conn *sql.DB, writer *db.Worker) func() {
	return func() {
		writer.Close()
		_ = conn.Close()
	}
}

// services wires the registry, terminal registry and evaluator over b.
type services struct {
	registry  *service.Registry
	terminals *service.TerminalRegistry
	evaluator *service.Evaluator
}

func newServices(cfg *config.Config, b *backend, pub service.Publisher, logger *zap.Logger) (*services, error) {
	policy, err := service.ParseDeletePolicy(cfg.Access.OnScheduleDelete)
	if err != nil {
		return nil, err
	}
	loc, err := cfg.Location()
	if err != nil {
		return nil, err
	}

	reg := service.NewRegistry(b.schedules, b.people, service.RegistryPolicy{
		OnScheduleDelete: policy,
		AllowUnassigned:  cfg.Access.AllowUnassigned,
	}, logger.Named("registry"))
	terms := service.NewTerminalRegistry(b.terminals, logger.Named("terminals"))
	ev := service.NewEvaluator(reg, terms, b.logs, logger.Named("evaluator"), service.EvaluatorConfig{
		Location:  loc,
		Publisher: pub,
	})
	return &services{registry: reg, terminals: terms, evaluator: ev}, nil
}

// logEmpty reports whether the access log has no entries yet.
func logEmpty(ctx context.Context, logs store.AccessLogStore) (bool, error) {
	for _, err := range logs.Query(ctx, store.LogFilter{Limit: 1}) {
		if err != nil {
			return false, err
		}
		return false, nil
	}
	return true, nil
}
