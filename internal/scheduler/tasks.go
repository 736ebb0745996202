// Package scheduler enqueues and processes background outreach jobs over
// asynq.
package scheduler

import (
	"encoding/json"
	"time"

	"github.com/hibiken/asynq"
)

const TaskFollowUpSweep = "outreach.followup.sweep"

// FollowUpSweepPayload carries the context of one scheduled follow-up sweep.
type FollowUpSweepPayload struct {
	RequestedAt time.Time `json:"requestedAt"`
	Reason      string    `json:"reason"`
}

func NewFollowUpSweepTask(payload FollowUpSweepPayload) (*asynq.Task, error) {
	data, err := json.Marshal(payload)
	if err != nil {
		return nil, err
	}
	return asynq.NewTask(TaskFollowUpSweep, data), nil
}

func ParseFollowUpSweepPayload(task *asynq.Task) (FollowUpSweepPayload, error) {
	var payload FollowUpSweepPayload
	if err := json.Unmarshal(task.Payload(), &payload); err != nil {
		return FollowUpSweepPayload{}, err
	}
	return payload, nil
}
