package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"outreach_backend/internal/outreach"
	"outreach_backend/internal/scheduler"
	"outreach_backend/platform/config"
	"outreach_backend/platform/logger"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		panic("failed to load config: " + err.Error())
	}

	log := logger.New(cfg.Env)
	log.Info("starting scheduler", "env", cfg.Env)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	outreachModule, err := outreach.NewModule(cfg, log)
	if err != nil {
		log.Error("failed to initialize outreach module", "error", err)
		panic("failed to initialize outreach module: " + err.Error())
	}

	dispatcher, err := scheduler.NewFollowUpDispatcher(cfg, log)
	if err != nil {
		log.Error("failed to initialize follow-up dispatcher", "error", err)
		panic("failed to initialize follow-up dispatcher: " + err.Error())
	}
	defer func() { _ = dispatcher.Close() }()
	go dispatcher.Run(ctx)

	worker, err := scheduler.NewWorker(cfg, outreachModule.Service(), log)
	if err != nil {
		log.Error("failed to initialize scheduler worker", "error", err)
		panic("failed to initialize scheduler worker: " + err.Error())
	}

	worker.Run(ctx)
}
