package server

import (
	"context"
	"os"
	"os/signal"
	"syscall"
	"time"

	domrepo "Coinsight/internal/domain/repository"
	"Coinsight/internal/service/pricefeed"
	"Coinsight/internal/services/classifier"
	"Coinsight/internal/usecase"
	"Coinsight/pkg/cache"
	"Coinsight/pkg/config"
	xhttp "Coinsight/pkg/http"
	pkgkafka "Coinsight/pkg/kafka"
	applogger "Coinsight/pkg/logger"
)

// App encapsulates the entire application lifecycle.
type App struct {
	cfg       *config.Config
	l         *applogger.Logger
	handler   xhttp.Handler
	consumer  *pkgkafka.Consumer
	muh       *usecase.ModelUpdateHandler
	pgClient  interface{ Close() error }
	cache     cache.Service
	publisher domrepo.EventPublisher
	feed      *pricefeed.Feed
	pool      *classifier.Pool

	httpServer *xhttp.Server
}

// New creates a new App instance with all dependencies.
func New(
	cfg *config.Config,
	l *applogger.Logger,
	handler xhttp.Handler,
	consumer *pkgkafka.Consumer,
	muh *usecase.ModelUpdateHandler,
	pgClient interface{ Close() error },
	c cache.Service,
	publisher domrepo.EventPublisher,
	feed *pricefeed.Feed,
	pool *classifier.Pool,
) *App {
	return &App{
		cfg:       cfg,
		l:         l,
		handler:   handler,
		consumer:  consumer,
		muh:       muh,
		pgClient:  pgClient,
		cache:     c,
		publisher: publisher,
		feed:      feed,
		pool:      pool,
	}
}

// Run starts the application and blocks until interrupted.
func (a *App) Run() error {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	a.httpServer = xhttp.NewServer(a.handler,
		xhttp.WithPort(a.cfg.Server.Port),
		xhttp.WithTimeouts(a.cfg.Server.ReadTimeout, a.cfg.Server.WriteTimeout, a.cfg.Server.ShutdownTimeout),
		xhttp.WithRequestMetrics(a.l, time.Second),
	)

	// Live price feed
	if a.feed != nil {
		go a.feed.Run(ctx)
		a.l.Info("price feed started", applogger.Strings("symbols", a.cfg.Prediction.Symbols))
	}

	// Model-update consumer
	if a.consumer != nil && a.muh != nil {
		a.consumer.RegisterHandler(a.muh)
		go func() {
			if err := a.consumer.Start(); err != nil {
				a.l.Error("kafka consumer error", applogger.Error(err))
			}
		}()
		a.l.Info("kafka consumer started", applogger.String("topic", a.muh.Topic()))
	}

	if err := a.httpServer.Start(); err != nil {
		a.l.Error("http server start error", applogger.Error(err))
		return err
	}
	a.l.Info("service started",
		applogger.Int("port", a.cfg.Server.Port),
		applogger.String("env", a.cfg.Environment),
	)

	// Wait for interrupt
	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, os.Interrupt, syscall.SIGTERM)
	<-sigCh

	a.l.Info("shutdown signal received")
	cancel()
	return a.shutdown(context.Background())
}

// shutdown gracefully stops all services.
func (a *App) shutdown(ctx context.Context) error {
	shutdownCtx, cancel := context.WithTimeout(ctx, a.cfg.Server.ShutdownTimeout)
	defer cancel()

	if err := a.httpServer.Stop(shutdownCtx); err != nil {
		a.l.Error("http shutdown error", applogger.Error(err))
	}

	if a.consumer != nil {
		if err := a.consumer.Stop(shutdownCtx); err != nil {
			a.l.Warn("kafka consumer stop error", applogger.Error(err))
		}
	}

	if a.feed != nil {
		if err := a.feed.Close(); err != nil {
			a.l.Warn("price feed close error", applogger.Error(err))
		}
	}

	if a.pool != nil {
		a.pool.Close()
	}

	if a.publisher != nil {
		if err := a.publisher.Close(); err != nil {
			a.l.Warn("publisher close error", applogger.Error(err))
		}
	}

	if a.cache != nil {
		if err := a.cache.Close(); err != nil {
			a.l.Warn("cache close error", applogger.Error(err))
		}
	}

	if a.pgClient != nil {
		if err := a.pgClient.Close(); err != nil {
			a.l.Warn("postgres close error", applogger.Error(err))
		}
	}

	a.l.Info("shutdown complete")
	return nil
}
