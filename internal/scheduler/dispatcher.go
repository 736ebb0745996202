package scheduler

import (
	"context"
	"time"

	"outreach_backend/platform/config"
	"outreach_backend/platform/logger"
)

// FollowUpDispatcher periodically enqueues a follow-up sweep so due leads
// get their second email without operator involvement.
type FollowUpDispatcher struct {
	client   *Client
	interval time.Duration
	log      *logger.Logger
}

func NewFollowUpDispatcher(cfg config.SchedulerConfig, log *logger.Logger) (*FollowUpDispatcher, error) {
	client, err := NewClient(cfg)
	if err != nil {
		return nil, err
	}

	interval := cfg.GetFollowUpSweepInterval()
	if interval <= 0 {
		interval = 24 * time.Hour
	}

	return &FollowUpDispatcher{
		client:   client,
		interval: interval,
		log:      log,
	}, nil
}

func (d *FollowUpDispatcher) Close() error {
	if d == nil {
		return nil
	}
	return d.client.Close()
}

func (d *FollowUpDispatcher) Run(ctx context.Context) {
	if d == nil || d.client == nil {
		return
	}

	ticker := time.NewTicker(d.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
		}

		payload := FollowUpSweepPayload{
			RequestedAt: time.Now().UTC(),
			Reason:      "interval",
		}
		if err := d.client.ScheduleFollowUpSweep(ctx, payload, time.Now()); err != nil {
			d.log.Warn("follow-up sweep enqueue failed", "error", err)
		}
	}
}
