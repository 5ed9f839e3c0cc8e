package tasks

import (
	"context"
	"log/slog"
)

type BuildTask struct {
	Task
	runner Runner
	// Force drops the cached snapshot first so the build fetches fresh data.
	Force bool
}

func NewBuildTask(runner Runner, trigger Trigger, force bool) *BuildTask {
	return &BuildTask{
		Task:   NewTask(TaskTypeBuild, trigger),
		runner: runner,
		Force:  force,
	}
}

func (t *BuildTask) Execute(ctx context.Context) error {
	select {
	case <-ctx.Done():
		return ctx.Err()
	default:
	}

	if t.Force {
		if err := t.runner.Invalidate(ctx); err != nil {
			slog.Warn("Failed to invalidate cached content", "id", t.ID, "error", err)
		}
	}

	c, err := t.runner.Run(ctx)
	if err != nil {
		return err
	}

	slog.Info("Task completed",
		"type", t.GetType(),
		"id", t.ID,
		"trigger", t.Trigger,
		"duration", t.GetDuration(),
		"entries", len(c.Entries))

	return nil
}
