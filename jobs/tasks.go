package jobs

import (
	"encoding/json"

	"github.com/hibiken/asynq"
)

const (
	// QueueDefault is the default queue name for background jobs.
	QueueDefault = "default"
	// TaskPnLWarmup is the task type for pre-building P&L report caches.
	TaskPnLWarmup = "pnl:warmup"
)

// PnLWarmupPayload selects which period presets the warmup pre-builds. An
// empty list means the standard presets.
type PnLWarmupPayload struct {
	Modes []string `json:"modes,omitempty"`
}

// NewPnLWarmupTask constructs an Asynq task for the report warmup.
func NewPnLWarmupTask(payload PnLWarmupPayload) (*asynq.Task, error) {
	data, err := json.Marshal(payload)
	if err != nil {
		return nil, err
	}
	return asynq.NewTask(TaskPnLWarmup, data), nil
}
