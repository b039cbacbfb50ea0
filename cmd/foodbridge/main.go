package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	charmlog "charm.land/log/v2"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/nats-io/nats.go"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"golang.org/x/time/rate"

	"github.com/foodbridge/foodbridge/cockroach"
	"github.com/foodbridge/foodbridge/cockroach/migrator"
	"github.com/foodbridge/foodbridge/config"
	"github.com/foodbridge/foodbridge/metrics"
	"github.com/foodbridge/foodbridge/pubsub"
	"github.com/foodbridge/foodbridge/service"
	httptransport "github.com/foodbridge/foodbridge/transport/http"
)

func main() {
	if err := run(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func run() error {
	errLogger := slog.New(charmlog.NewWithOptions(os.Stderr, charmlog.Options{
		ReportTimestamp: true,
	}))
	infoLogger := slog.New(charmlog.NewWithOptions(os.Stdout, charmlog.Options{
		ReportTimestamp: true,
	}))

	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	poolConfig, err := pgxpool.ParseConfig(cfg.CockroachURL)
	if err != nil {
		return fmt.Errorf("parse cockroach url: %w", err)
	}

	poolConfig.MaxConns = int32(cfg.DBMaxConns)
	poolConfig.MaxConnIdleTime = cfg.DBMaxConnIdleTime

	dbPool, err := pgxpool.NewWithConfig(ctx, poolConfig)
	if err != nil {
		return fmt.Errorf("open cockroach connection pool: %w", err)
	}

	defer dbPool.Close()

	pingCtx, cancelPing := context.WithTimeout(ctx, 10*time.Second)
	defer cancelPing()

	if err := dbPool.Ping(pingCtx); err != nil {
		return fmt.Errorf("ping cockroach: %w", err)
	}

	migrationStart := time.Now()
	infoLogger.Info("starting cockroach migrations")

	applied, err := migrator.Migrate(ctx, dbPool, cockroach.MigrationsFS)
	if err != nil {
		return fmt.Errorf("migrate cockroach schema: %w", err)
	}

	infoLogger.Info("finished cockroach migrations", "applied", applied, "took", time.Since(migrationStart))

	var ps pubsub.PubSub
	if cfg.NATSURL != "" {
		natsConn, err := nats.Connect(cfg.NATSURL)
		if err != nil {
			return fmt.Errorf("connect to nats: %w", err)
		}

		defer natsConn.Close()

		ps = &pubsub.NATS{Conn: natsConn}
		infoLogger.Info("using nats pubsub", "url", cfg.NATSURL)
	} else {
		ps = &pubsub.Inmem{}
		infoLogger.Info("using in-process pubsub")
	}

	reg := prometheus.NewRegistry()
	reg.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)

	svc := service.New(&service.Config{
		Cockroach:         cockroach.New(dbPool),
		PubSub:            ps,
		Metrics:           metrics.New(reg),
		Logger:            infoLogger,
		TokenKey:          cfg.TokenKey,
		BaseCtx:           context.Background(),
		BackgroundTimeout: cfg.BackgroundTimeout,
	})

	go func() {
		for err := range svc.Errs() {
			errLogger.Error("service error", "error", err)
		}
	}()

	sendRateLimit := rate.Limit(cfg.SendRateLimit)
	if cfg.SendRateLimit == 0 {
		sendRateLimit = rate.Inf
	}

	srv := &http.Server{
		Addr: fmt.Sprintf(":%d", cfg.Port),
		Handler: httptransport.New(httptransport.Config{
			Service:          svc,
			Logger:           errLogger,
			Gatherer:         reg,
			SendRateLimit:    sendRateLimit,
			SendBurst:        cfg.SendBurst,
			ReadReceiptDelay: cfg.ReadReceiptDelay,
		}),
		BaseContext: func(net.Listener) context.Context { return ctx },
	}

	srvErrs := make(chan error, 1)
	go func() {
		infoLogger.Info("starting foodbridge server", "url", fmt.Sprintf("http://localhost:%d", cfg.Port))
		srvErrs <- srv.ListenAndServe()
	}()

	select {
	case err := <-srvErrs:
		if err != nil && !errors.Is(err, http.ErrServerClosed) {
			return fmt.Errorf("start foodbridge server: %w", err)
		}
	case <-ctx.Done():
		infoLogger.Info("shutting down foodbridge server")

		shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.ShutdownTimeout)
		defer cancel()

		if err := srv.Shutdown(shutdownCtx); err != nil {
			return fmt.Errorf("shutdown foodbridge server: %w", err)
		}
	}

	return svc.Close()
}
