package scheduler

import (
	"context"
	"fmt"

	"outreach_backend/internal/outreach"
	"outreach_backend/platform/config"
	"outreach_backend/platform/logger"

	"github.com/hibiken/asynq"
)

// FollowUpRunner executes one follow-up campaign pass.
type FollowUpRunner interface {
	RunFollowUps(ctx context.Context) (*outreach.CampaignResult, error)
}

// Worker consumes outreach jobs from the queue.
type Worker struct {
	server *asynq.Server
	mux    *asynq.ServeMux
	runner FollowUpRunner
	log    *logger.Logger
}

func NewWorker(cfg config.SchedulerConfig, runner FollowUpRunner, log *logger.Logger) (*Worker, error) {
	redisURL := cfg.GetRedisURL()
	if redisURL == "" {
		return nil, fmt.Errorf("redis url not configured")
	}

	opt, err := redisClientOpt(redisURL, cfg.GetRedisTLSInsecure())
	if err != nil {
		return nil, err
	}

	queue := cfg.GetAsynqQueueName()
	if queue == "" {
		queue = "default"
	}

	concurrency := cfg.GetAsynqConcurrency()
	if concurrency < 1 {
		concurrency = 5
	}

	server := asynq.NewServer(opt, asynq.Config{
		Concurrency: concurrency,
		Queues: map[string]int{
			queue: 1,
		},
	})

	mux := asynq.NewServeMux()
	w := &Worker{
		server: server,
		mux:    mux,
		runner: runner,
		log:    log,
	}

	mux.HandleFunc(TaskFollowUpSweep, w.handleFollowUpSweep)

	return w, nil
}

func (w *Worker) handleFollowUpSweep(ctx context.Context, task *asynq.Task) error {
	payload, err := ParseFollowUpSweepPayload(task)
	if err != nil {
		return err
	}

	result, err := w.runner.RunFollowUps(ctx)
	if err != nil {
		return fmt.Errorf("follow-up sweep: %w", err)
	}

	w.log.Info("follow-up sweep finished",
		"reason", payload.Reason,
		"requestedAt", payload.RequestedAt,
		"sent", result.Sent,
		"failed", result.Failed,
	)
	return nil
}

func (w *Worker) Run(ctx context.Context) {
	if w == nil || w.server == nil {
		return
	}

	go func() {
		<-ctx.Done()
		w.server.Shutdown()
	}()

	if err := w.server.Run(w.mux); err != nil {
		w.log.Error("scheduler worker stopped", "error", err)
	}
}
