package tasks

import (
	"context"
	"time"
)

type TaskInterface interface {
	Execute(ctx context.Context) error
	GetID() string
	GetType() TaskType
	GetRetailerName() string
	Start()
	GetDuration() time.Duration
}

// TaskSchedulerInterface defines the interface for background ingestion
// scheduling. Used by the API server to trigger runs and by the main
// application to manage the worker pool lifecycle.
type TaskSchedulerInterface interface {
	Start()
	Stop()
	EnqueueTask(task TaskInterface) error
}
