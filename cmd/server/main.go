package main

import (
	"context"
	"database/sql"
	"errors"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	_ "github.com/lib/pq" // postgres driver

	"github.com/sheikh-saqib/point-ledger-service/internal/api"
	"github.com/sheikh-saqib/point-ledger-service/internal/config"
	"github.com/sheikh-saqib/point-ledger-service/internal/events/kafka"
	"github.com/sheikh-saqib/point-ledger-service/internal/interfaces"
	"github.com/sheikh-saqib/point-ledger-service/internal/ledger"
	"github.com/sheikh-saqib/point-ledger-service/internal/storage/memory"
	"github.com/sheikh-saqib/point-ledger-service/internal/storage/postgres"
	"github.com/sheikh-saqib/point-ledger-service/internal/storage/sqlite"
)

func main() {
	log := slog.New(slog.NewJSONHandler(os.Stderr, nil))
	slog.SetDefault(log)

	if err := run(log); err != nil {
		log.Error("server exited", "error", err)
		os.Exit(1)
	}
}

func run(log *slog.Logger) error {
	cfg, err := config.Load()
	if err != nil {
		return err
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	store, cleanup, err := openStore(ctx, cfg)
	if err != nil {
		return err
	}
	defer cleanup()

	opts := []ledger.Option{
		ledger.WithLockWait(cfg.LockWait),
		ledger.WithLogger(log),
	}
	if len(cfg.KafkaBrokers) > 0 {
		publisher := kafka.NewPublisher(cfg.KafkaBrokers, cfg.KafkaTopic)
		defer publisher.Close()
		opts = append(opts, ledger.WithPublisher(publisher))
		log.Info("event publication enabled", "brokers", cfg.KafkaBrokers, "topic", cfg.KafkaTopic)
	}
	ledgerService := ledger.NewLedger(store, opts...)

	router := gin.New()
	router.Use(gin.Recovery())
	api.NewHandler(ledgerService, log).Register(router)

	server := &http.Server{
		Addr:    cfg.ListenAddr,
		Handler: router,
	}

	errCh := make(chan error, 1)
	go func() {
		log.Info("starting server", "addr", cfg.ListenAddr, "store", cfg.Store)
		errCh <- server.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
	}

	log.Info("shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := server.Shutdown(shutdownCtx); err != nil {
		return err
	}
	if err := <-errCh; !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	return nil
}

// openStore builds the configured PointStore and a cleanup func.
func openStore(ctx context.Context, cfg config.Config) (interfaces.PointStore, func(), error) {
	switch cfg.Store {
	case config.StorePostgres:
		db, err := sql.Open("postgres", cfg.PostgresDSN)
		if err != nil {
			return nil, nil, err
		}
		if err := db.PingContext(ctx); err != nil {
			db.Close()
			return nil, nil, err
		}
		store := postgres.NewPostgresPointStore(db)
		if err := store.EnsureSchema(ctx); err != nil {
			db.Close()
			return nil, nil, err
		}
		return store, func() { db.Close() }, nil

	case config.StoreSQLite:
		store, err := sqlite.Open(cfg.SQLitePath)
		if err != nil {
			return nil, nil, err
		}
		return store, func() { store.Close() }, nil

	default:
		return memory.NewMemoryPointStore(), func() {}, nil
	}
}
