package scheduler

import (
	"context"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"

	"outreach_backend/platform/config"
)

func TestNewClientRequiresRedisURL(t *testing.T) {
	if _, err := NewClient(&config.Config{}); err == nil {
		t.Fatal("expected error without redis url")
	}
}

func TestScheduleFollowUpSweepEnqueues(t *testing.T) {
	srv := miniredis.RunT(t)

	cfg := &config.Config{
		RedisURL:       "redis://" + srv.Addr(),
		AsynqQueueName: "outreach",
	}
	client, err := NewClient(cfg)
	if err != nil {
		t.Fatalf("NewClient: %v", err)
	}
	defer client.Close()

	payload := FollowUpSweepPayload{RequestedAt: time.Now().UTC(), Reason: "test"}
	if err := client.ScheduleFollowUpSweep(context.Background(), payload, time.Now()); err != nil {
		t.Fatalf("ScheduleFollowUpSweep: %v", err)
	}

	if keys := srv.Keys(); len(keys) == 0 {
		t.Fatal("no task was written to redis")
	}
}

func TestRedisClientOptParsesURL(t *testing.T) {
	opt, err := redisClientOpt("redis://:secret@localhost:6380/2", false)
	if err != nil {
		t.Fatalf("redisClientOpt: %v", err)
	}
	if opt.Addr != "localhost:6380" || opt.Password != "secret" || opt.DB != 2 {
		t.Fatalf("opt = %+v", opt)
	}
	if opt.TLSConfig != nil {
		t.Fatal("plain redis url must not force TLS")
	}
}

func TestRedisClientOptInsecureTLS(t *testing.T) {
	opt, err := redisClientOpt("rediss://localhost:6380", true)
	if err != nil {
		t.Fatalf("redisClientOpt: %v", err)
	}
	if opt.TLSConfig == nil || !opt.TLSConfig.InsecureSkipVerify {
		t.Fatalf("TLSConfig = %+v", opt.TLSConfig)
	}
}

func TestFollowUpSweepPayloadRoundTrip(t *testing.T) {
	in := FollowUpSweepPayload{RequestedAt: time.Date(2026, 3, 10, 8, 0, 0, 0, time.UTC), Reason: "interval"}

	task, err := NewFollowUpSweepTask(in)
	if err != nil {
		t.Fatalf("NewFollowUpSweepTask: %v", err)
	}
	if task.Type() != TaskFollowUpSweep {
		t.Fatalf("task type = %q", task.Type())
	}

	out, err := ParseFollowUpSweepPayload(task)
	if err != nil {
		t.Fatalf("ParseFollowUpSweepPayload: %v", err)
	}
	if !out.RequestedAt.Equal(in.RequestedAt) || out.Reason != in.Reason {
		t.Fatalf("payload = %+v", out)
	}
}
