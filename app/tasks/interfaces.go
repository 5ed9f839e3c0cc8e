package tasks

import (
	"context"

	"github.com/gesteves/kona/app/content"
)

// TaskSchedulerInterface is what serve mode needs from the scheduler.
//
//	scheduler := NewScheduler(pipeline, interval)
//	scheduler.Start()
//	defer scheduler.Stop()
//	scheduler.EnqueueTask(NewBuildTask(pipeline, TriggerAPI, true))
type TaskSchedulerInterface interface {
	Start()
	Stop()
	EnqueueTask(task TaskInterface) error
	Health() map[string]any
}

// Runner is a pipeline a build task can execute.
type Runner interface {
	Run(ctx context.Context) (*content.Content, error)
	Invalidate(ctx context.Context) error
}

var _ Runner = (*Pipeline)(nil)
