package web

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/jgoulah/carbonform/internal/log"
	"github.com/jgoulah/carbonform/pkg/models"
)

// TaskStatus is the lifecycle state of a compute task
type TaskStatus string

const (
	StatusIdle    TaskStatus = "idle"
	StatusPending TaskStatus = "pending"
	StatusDone    TaskStatus = "done"
	StatusFailed  TaskStatus = "failed"
)

// TaskState is a snapshot of the current compute task
type TaskState struct {
	ID         string
	Status     TaskStatus
	Result     *models.EmissionsResult
	Err        error
	StartedAt  time.Time
	FinishedAt time.Time
}

// ComputeFunc produces the emissions result for a task
type ComputeFunc func(ctx context.Context) (*models.EmissionsResult, error)

// Runner runs at most one compute task at a time. Starting a task cancels the
// one in flight, and a task that is no longer current never publishes its result.
type Runner struct {
	mu      sync.Mutex
	delay   time.Duration
	current TaskState
	cancel  context.CancelFunc
	onDone  func(TaskState)
	wg      sync.WaitGroup
}

// NewRunner creates a runner that waits delay before computing.
// onDone, if set, is called with each completed current task.
func NewRunner(delay time.Duration, onDone func(TaskState)) *Runner {
	return &Runner{
		delay:   delay,
		current: TaskState{Status: StatusIdle},
		onDone:  onDone,
	}
}

// Start cancels any in-flight task and starts a new one, returning its id
func (r *Runner) Start(parent context.Context, fn ComputeFunc) string {
	ctx, cancel := context.WithCancel(parent)
	id := uuid.NewString()

	r.mu.Lock()
	if r.cancel != nil {
		r.cancel()
		log.Debugw("canceled in-flight computation", "task", r.current.ID)
	}
	r.cancel = cancel
	r.current = TaskState{ID: id, Status: StatusPending, StartedAt: time.Now()}
	r.mu.Unlock()

	r.wg.Add(1)
	go func() {
		defer r.wg.Done()
		defer cancel()
		r.run(ctx, id, fn)
	}()

	return id
}

func (r *Runner) run(ctx context.Context, id string, fn ComputeFunc) {
	if r.delay > 0 {
		timer := time.NewTimer(r.delay)
		select {
		case <-ctx.Done():
			timer.Stop()
			r.abandon(id)
			return
		case <-timer.C:
		}
	}

	result, err := fn(ctx)
	if errors.Is(err, context.Canceled) || ctx.Err() != nil {
		r.abandon(id)
		return
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	if r.current.ID != id {
		log.Debugw("discarding stale computation", "task", id)
		return
	}

	r.current.FinishedAt = time.Now()
	r.current.Result = result
	r.current.Err = err
	r.current.Status = StatusDone
	if err != nil {
		r.current.Status = StatusFailed
	}
	r.cancel = nil

	if r.onDone != nil {
		r.onDone(r.current)
	}
}

// abandon returns to idle if the canceled task is still the current one
func (r *Runner) abandon(id string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.current.ID == id && r.current.Status == StatusPending {
		r.current = TaskState{Status: StatusIdle}
		r.cancel = nil
	}
}

// Snapshot returns the current task state
func (r *Runner) Snapshot() TaskState {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.current
}

// Cancel stops the in-flight task, if any, and returns to idle
func (r *Runner) Cancel() {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.cancel != nil {
		r.cancel()
		r.cancel = nil
	}
	if r.current.Status == StatusPending {
		r.current = TaskState{Status: StatusIdle}
	}
}

// Wait blocks until every started task goroutine has returned
func (r *Runner) Wait() {
	r.wg.Wait()
}
