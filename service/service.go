package service

import (
	"context"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/foodbridge/foodbridge/cockroach"
	"github.com/foodbridge/foodbridge/metrics"
	"github.com/foodbridge/foodbridge/pubsub"
)

type Config struct {
	Cockroach         *cockroach.Cockroach
	PubSub            pubsub.PubSub
	Metrics           *metrics.Metrics
	Logger            *slog.Logger
	TokenKey          string
	BaseCtx           context.Context
	BackgroundTimeout time.Duration
}

type Service struct {
	Cockroach *cockroach.Cockroach
	PubSub    pubsub.PubSub
	Metrics   *metrics.Metrics
	Logger    *slog.Logger
	TokenKey  string

	baseCtx           context.Context
	backgroundTimeout time.Duration
	wg                sync.WaitGroup
	closeOnce         sync.Once
	errs              chan error
	now               func() time.Time
}

func New(cfg *Config) *Service {
	return &Service{
		Cockroach: cfg.Cockroach,
		PubSub:    cfg.PubSub,
		Metrics:   cfg.Metrics,
		Logger:    cfg.Logger,
		TokenKey:  cfg.TokenKey,

		baseCtx:           cfg.BaseCtx,
		backgroundTimeout: cfg.BackgroundTimeout,
		errs:              make(chan error, 1),
	}
}

func (svc *Service) Errs() <-chan error {
	return svc.errs
}

// Close waits for background tasks and closes Errs. It is safe to call
// more than once.
func (svc *Service) Close() error {
	svc.closeOnce.Do(func() {
		svc.wg.Wait()
		if svc.errs != nil {
			close(svc.errs)
		}
	})
	return nil
}

func (svc *Service) background(fn func(ctx context.Context) error) {
	svc.wg.Go(func() {
		defer func() {
			if rcv := recover(); rcv != nil {
				svc.reportErr(fmt.Errorf("service background panic: %v", rcv))
			}
		}()

		baseCtx := svc.baseCtx
		if baseCtx == nil {
			baseCtx = context.Background()
		}

		timeout := svc.backgroundTimeout
		if timeout <= 0 {
			timeout = 15 * time.Second
		}

		ctx, cancel := context.WithTimeout(baseCtx, timeout)
		defer cancel()

		if err := fn(ctx); err != nil {
			svc.reportErr(fmt.Errorf("service background error: %w", err))
		}
	})
}

func (svc *Service) reportErr(err error) {
	if svc.errs == nil {
		svc.logger().Error("service error", "err", err)
		return
	}

	select {
	case svc.errs <- err:
	default:
		svc.logger().Error("service error dropped", "err", err)
	}
}

func (svc *Service) logger() *slog.Logger {
	if svc.Logger != nil {
		return svc.Logger
	}
	return slog.Default()
}

func (svc *Service) timeNow() time.Time {
	if svc.now != nil {
		return svc.now()
	}
	return time.Now()
}
