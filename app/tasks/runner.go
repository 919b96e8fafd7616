package tasks

import (
	"context"
	"log/slog"
	"time"
)

const maxRetryDelay = 30 * time.Second

// Runner executes tasks one at a time, retrying failures with exponential
// backoff while the task allows it.
type Runner struct {
	taskTimeout time.Duration
	sleep       func(ctx context.Context, d time.Duration) error
}

func NewRunner(taskTimeout time.Duration) *Runner {
	return &Runner{
		taskTimeout: taskTimeout,
		sleep:       sleepContext,
	}
}

// Run executes task until it succeeds, runs out of retries or ctx is done.
// The last error is returned.
func (r *Runner) Run(ctx context.Context, task Tasker) error {
	state := task.Attempt()

	for {
		state.begin()

		err := r.execute(ctx, task)
		if err == nil {
			return nil
		}
		if ctx.Err() != nil {
			return ctx.Err()
		}

		if !state.CanRetry() {
			slog.Error("Task failed after maximum retries", state.logAttrs("last_error", err)...)
			return err
		}

		state.Retries++
		delay := RetryDelay(state.Retries)
		slog.Warn("Task retry scheduled", state.logAttrs("delay", delay.String(), "error", err)...)

		if err := r.sleep(ctx, delay); err != nil {
			slog.Debug("Runner stopped, skipping task retry", state.logAttrs()...)
			return err
		}
	}
}

func (r *Runner) execute(ctx context.Context, task Tasker) error {
	if r.taskTimeout <= 0 {
		return task.Execute(ctx)
	}

	taskCtx, cancel := context.WithTimeout(ctx, r.taskTimeout)
	defer cancel()

	return task.Execute(taskCtx)
}

// RetryDelay is 2^(n-1) seconds for the nth retry, capped at 30s.
func RetryDelay(retry int) time.Duration {
	if retry < 1 {
		retry = 1
	}
	if retry > 6 {
		return maxRetryDelay
	}
	return min(time.Duration(1<<uint(retry-1))*time.Second, maxRetryDelay)
}

func sleepContext(ctx context.Context, d time.Duration) error {
	timer := time.NewTimer(d)
	defer timer.Stop()

	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-timer.C:
		return nil
	}
}
