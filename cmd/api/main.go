package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"golang.org/x/sync/errgroup"

	apphttp "outreach_backend/internal/http"
	"outreach_backend/internal/http/router"
	"outreach_backend/internal/importer"
	"outreach_backend/internal/notion"
	"outreach_backend/internal/outreach"
	"outreach_backend/platform/config"
	"outreach_backend/platform/logger"
	"outreach_backend/platform/validator"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		panic("failed to load config: " + err.Error())
	}

	log := logger.New(cfg.Env)
	log.Info("starting server", "env", cfg.Env, "addr", cfg.HTTPAddr)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	// Probe the datastore up front so bad credentials surface at boot, not
	// on the first import.
	if cfg.NotionAPIKey != "" && cfg.NotionDatabaseID != "" {
		ds := notion.New(cfg.NotionAPIKey, notion.WithBaseURL(cfg.NotionBaseURL))
		if err := withRetry(ctx, log, "notion connectivity", 3, 2*time.Second, func() error {
			probeCtx, cancel := context.WithTimeout(ctx, 10*time.Second)
			defer cancel()
			_, err := ds.RetrieveDatabase(probeCtx, cfg.NotionDatabaseID)
			return err
		}); err != nil {
			log.Warn("notion datastore unreachable at boot", "error", err)
		}
	}

	val := validator.New()

	importerModule, err := importer.NewModule(cfg, val, log)
	if err != nil {
		log.Error("failed to initialize importer module", "error", err)
		panic("failed to initialize importer module: " + err.Error())
	}

	outreachModule, err := outreach.NewModule(cfg, log)
	if err != nil {
		log.Error("failed to initialize outreach module", "error", err)
		panic("failed to initialize outreach module: " + err.Error())
	}

	app := &apphttp.App{
		Config: cfg,
		Logger: log,
		Modules: []apphttp.Module{
			importerModule,
			outreachModule,
		},
	}

	engine := router.New(app)

	srv := &http.Server{
		Addr:              cfg.HTTPAddr,
		Handler:           engine,
		ReadHeaderTimeout: 10 * time.Second,
	}

	g, gctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		log.Info("server listening", "addr", cfg.HTTPAddr)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	})

	g.Go(func() error {
		<-gctx.Done()
		log.Info("shutdown signal received, gracefully shutting down")

		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()

		// stop accepting requests first, then drain import workers so
		// interrupted jobs persist a resumable snapshot
		err := srv.Shutdown(shutdownCtx)
		importerModule.Shutdown()
		return err
	})

	if err := g.Wait(); err != nil {
		log.Error("server error", "error", err)
		panic("server error: " + err.Error())
	}

	log.Info("server stopped")
}

func withRetry(ctx context.Context, log *logger.Logger, name string, attempts int, baseDelay time.Duration, fn func() error) error {
	if attempts < 1 {
		return errors.New(name + ": invalid retry attempts")
	}

	var lastErr error
	for attempt := 1; attempt <= attempts; attempt++ {
		if ctx.Err() != nil {
			return ctx.Err()
		}
		if err := fn(); err == nil {
			return nil
		} else {
			lastErr = err
			log.Warn("retryable operation failed", "operation", name, "attempt", attempt, "error", err)
		}

		if attempt < attempts {
			delay := time.Duration(attempt*attempt) * baseDelay
			select {
			case <-ctx.Done():
				return ctx.Err()
			case <-time.After(delay):
			}
		}
	}

	return errors.New(name + ": " + lastErr.Error())
}
