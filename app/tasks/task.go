package tasks

import (
	"context"
	"time"

	"github.com/google/uuid"
)

type TaskType string

const TaskTypeCollectFeed TaskType = "collect_feed"

const DefaultMaxRetries = 2

// Tasker is a unit of work the Runner can execute. Attempt returns the
// bookkeeping the runner updates between tries.
type Tasker interface {
	Execute(ctx context.Context) error
	Attempt() *Task
}

// Task holds identity and retry state. Embed it to satisfy Tasker.Attempt.
type Task struct {
	ID         string
	Type       TaskType
	FeedName   string
	Retries    int
	MaxRetries int
	startedAt  time.Time
}

// NewTask returns a task with a fresh ID. A negative maxRetries means
// DefaultMaxRetries.
func NewTask(taskType TaskType, feedName string, maxRetries int) Task {
	if maxRetries < 0 {
		maxRetries = DefaultMaxRetries
	}
	return Task{
		ID:         uuid.NewString(),
		Type:       taskType,
		FeedName:   feedName,
		MaxRetries: maxRetries,
	}
}

func (t *Task) Attempt() *Task {
	return t
}

func (t *Task) CanRetry() bool {
	return t.Retries < t.MaxRetries
}

// Elapsed is the time since the current attempt began.
func (t *Task) Elapsed() time.Duration {
	if t.startedAt.IsZero() {
		return 0
	}
	return time.Since(t.startedAt)
}

func (t *Task) begin() {
	t.startedAt = time.Now()
}

func (t *Task) logAttrs(extra ...any) []any {
	return append([]any{
		"type", string(t.Type),
		"feed", t.FeedName,
		"id", t.ID,
		"retries", t.Retries,
		"max_retries", t.MaxRetries,
	}, extra...)
}
