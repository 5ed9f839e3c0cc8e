package tasks

import (
	"context"
	"fmt"
	"log/slog"
	"sync"
	"time"
)

var _ TaskSchedulerInterface = (*Scheduler)(nil)

const (
	queueSize   = 8
	taskTimeout = 10 * time.Minute
)

type stats struct {
	processed int64
	failed    int64
	lastRunAt time.Time
	lastError string
}

// Scheduler runs build tasks one at a time: a startup build, one per
// interval tick when interval > 0, and any enqueued on demand. Failed
// builds are not retried; the next trigger runs a fresh build.
type Scheduler struct {
	runner    Runner
	interval  time.Duration
	ctx       context.Context
	cancel    context.CancelFunc
	wg        sync.WaitGroup
	taskQueue chan TaskInterface

	mu    sync.Mutex
	stats stats
}

func NewScheduler(runner Runner, interval time.Duration) *Scheduler {
	ctx, cancel := context.WithCancel(context.Background())
	return &Scheduler{
		runner:    runner,
		interval:  interval,
		ctx:       ctx,
		cancel:    cancel,
		taskQueue: make(chan TaskInterface, queueSize),
	}
}

func (s *Scheduler) Start() {
	s.wg.Add(1)
	go s.worker()

	s.wg.Add(1)
	go func() {
		defer s.wg.Done()

		var tick <-chan time.Time
		if s.interval > 0 {
			ticker := time.NewTicker(s.interval)
			defer ticker.Stop()
			tick = ticker.C
		}

		s.enqueue(TriggerStartup)

		for {
			select {
			case <-s.ctx.Done():
				return
			case <-tick:
				s.enqueue(TriggerSchedule)
			}
		}
	}()
}

func (s *Scheduler) Stop() {
	s.cancel()
	s.wg.Wait()
}

func (s *Scheduler) EnqueueTask(task TaskInterface) error {
	if err := s.ctx.Err(); err != nil {
		return err
	}
	select {
	case s.taskQueue <- task:
		return nil
	case <-s.ctx.Done():
		return s.ctx.Err()
	default:
		return fmt.Errorf("task queue is full")
	}
}

func (s *Scheduler) enqueue(trigger Trigger) {
	task := NewBuildTask(s.runner, trigger, false)
	if err := s.EnqueueTask(task); err != nil {
		slog.Warn("Failed to enqueue BuildTask", "trigger", trigger, "error", err)
	}
}

func (s *Scheduler) worker() {
	defer s.wg.Done()

	for {
		select {
		case task := <-s.taskQueue:
			s.executeTask(task)
		case <-s.ctx.Done():
			return
		}
	}
}

func (s *Scheduler) executeTask(task TaskInterface) {
	task.Start()

	taskCtx, cancel := context.WithTimeout(s.ctx, taskTimeout)
	defer cancel()

	err := task.Execute(taskCtx)

	s.mu.Lock()
	s.stats.processed++
	s.stats.lastRunAt = time.Now()
	s.stats.lastError = ""
	if err != nil {
		s.stats.failed++
		s.stats.lastError = err.Error()
	}
	s.mu.Unlock()

	if err != nil {
		slog.Error("Task execution failed", "type", string(task.GetType()), "id", task.GetID(), "trigger", task.GetTrigger(), "error", err)
	}
}

// Health summarizes build outcomes. The status is degraded while the most
// recent build failed.
func (s *Scheduler) Health() map[string]any {
	s.mu.Lock()
	defer s.mu.Unlock()

	status := "healthy"
	if s.stats.lastError != "" {
		status = "degraded"
	}
	health := map[string]any{
		"status":          status,
		"queue_size":      len(s.taskQueue),
		"total_processed": s.stats.processed,
		"total_errors":    s.stats.failed,
	}
	if !s.stats.lastRunAt.IsZero() {
		health["last_run_at"] = s.stats.lastRunAt.UTC().Format(time.RFC3339)
	}
	if s.stats.lastError != "" {
		health["last_error"] = s.stats.lastError
	}
	return health
}
