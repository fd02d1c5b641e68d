package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/alecthomas/kong"
	"github.com/charmbracelet/log"
	"github.com/coder/quartz"

	"github.com/fadedpez/felttable/internal/config"
	"github.com/fadedpez/felttable/internal/server"
	"github.com/fadedpez/felttable/pkg/realtime"
	"github.com/fadedpez/felttable/pkg/repositories/history"
	tablerepo "github.com/fadedpez/felttable/pkg/repositories/table"
	"github.com/fadedpez/felttable/pkg/scheduler"
	"github.com/fadedpez/felttable/pkg/services/table"
)

var cli struct {
	Env     string `help:"Path to an env file." type:"path"`
	Addr    string `help:"Listen address, overriding LISTEN_ADDR."`
	Storage string `help:"Storage backend, overriding STORAGE_TYPE." enum:"memory,sqlite,"`
}

func main() {
	kong.Parse(&cli,
		kong.Name("felttable"),
		kong.Description("Shared blackjack table server."),
	)

	logger := log.NewWithOptions(os.Stderr, log.Options{
		ReportTimestamp: true,
	})

	cfg, err := config.Load(cli.Env)
	if err != nil {
		logger.Fatal("loading configuration", "err", err)
	}
	if cli.Addr != "" {
		cfg.ListenAddr = cli.Addr
	}
	if cli.Storage != "" {
		cfg.StorageType = cli.Storage
	}
	if lvl, err := log.ParseLevel(cfg.LogLevel); err == nil {
		logger.SetLevel(lvl)
	}

	if err := run(cfg, logger); err != nil {
		logger.Fatal("server stopped", "err", err)
	}
}

func run(cfg *config.Config, logger *log.Logger) error {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	repo, err := newRepository(cfg)
	if err != nil {
		return err
	}
	defer repo.Close()
	logger.Info("storage ready", "type", cfg.StorageType)

	clock := quartz.NewReal()
	sched := scheduler.New(clock, logger)
	defer sched.Stop()

	svc := table.NewService(table.Options{
		MinBet:             cfg.MinBet,
		MaxBet:             cfg.MaxBet,
		StartingBalance:    cfg.StartingBalance,
		Seats:              cfg.Seats,
		CutCard:            cfg.CutCard,
		BettingSeconds:     cfg.BettingSeconds,
		ReshuffleSeconds:   cfg.ReshuffleSeconds,
		PayoutDelaySeconds: cfg.PayoutDelaySeconds,
	}, repo, sched, clock, logger)

	if cfg.ElasticsearchURL != "" {
		recorder, err := history.NewElasticsearchRecorder(&history.ElasticsearchConfig{
			URL:         cfg.ElasticsearchURL,
			Username:    cfg.ElasticsearchUsername,
			Password:    cfg.ElasticsearchPassword,
			IndexPrefix: cfg.ElasticsearchIndex,
		})
		if err != nil {
			return err
		}
		defer recorder.Close()
		svc.SetRecorder(recorder)
		logger.Info("round history mirroring enabled", "url", cfg.ElasticsearchURL)
	}

	hub := realtime.NewHub(svc, logger)
	defer hub.Close()
	svc.SetPublisher(hub)

	if err := svc.Start(ctx); err != nil {
		return err
	}

	srv := &http.Server{
		Addr:    cfg.ListenAddr,
		Handler: server.New(svc, hub, logger),
	}

	errCh := make(chan error, 1)
	go func() {
		logger.Info("listening", "addr", cfg.ListenAddr)
		errCh <- srv.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
	}

	logger.Info("shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	return nil
}

func newRepository(cfg *config.Config) (tablerepo.Repository, error) {
	switch cfg.StorageType {
	case "sqlite":
		return tablerepo.NewSQLiteRepository(cfg.DBPath)
	default:
		return tablerepo.NewMemoryRepository(), nil
	}
}
