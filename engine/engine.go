// Package engine implements the task execution engine: it owns the task
// lifecycle state machine, dispatches to the skill registry with the live
// context store, and enforces the concurrency ceiling for batches.
package engine

import (
	"context"
	"fmt"
	"sync"
	"time"

	"golang.org/x/sync/semaphore"

	"github.com/hupe1980/skillmesh/core"
	"github.com/hupe1980/skillmesh/logging"
	"github.com/hupe1980/skillmesh/skill"
)

// Options holds dependency + configuration overrides passed to New().
type Options struct {
	// MaxConcurrentTasks caps how many tasks may be simultaneously running
	// inside RunBatch. Default 5.
	MaxConcurrentTasks int
	// Logger receives lifecycle events; defaults to the no-op logger.
	Logger logging.Logger
}

// Result is one entry of a batch outcome: the task, its success value, or
// the error that failed it. Exactly one of Value/Err is meaningful.
type Result struct {
	Task  *core.Task
	Value any
	Err   error
}

// Engine coordinates task execution. Public methods are safe for concurrent
// use; the active set and history are serialized behind a single mutex.
type Engine struct {
	registry *skill.Registry
	contexts core.SkillContext

	maxConcurrent int
	sem           *semaphore.Weighted
	logger        logging.Logger

	mu      sync.Mutex
	active  map[string]*core.Task
	history []*core.Task
}

// New constructs an Engine dispatching against the given registry and
// context handle.
func New(registry *skill.Registry, contexts core.SkillContext, optFns ...func(o *Options)) *Engine {
	opts := Options{
		MaxConcurrentTasks: 5,
		Logger:             logging.NoOpLogger{},
	}
	for _, fn := range optFns {
		fn(&opts)
	}
	if opts.MaxConcurrentTasks < 1 {
		opts.MaxConcurrentTasks = 1
	}
	return &Engine{
		registry:      registry,
		contexts:      contexts,
		maxConcurrent: opts.MaxConcurrentTasks,
		sem:           semaphore.NewWeighted(int64(opts.MaxConcurrentTasks)),
		logger:        opts.Logger,
		active:        map[string]*core.Task{},
	}
}

// ExecuteTask runs a single task through its full lifecycle:
//
//  1. Mark it running, stamp the start time, add it to the active set.
//  2. Resolve the skill; an unknown name fails the task with an error
//     wrapping core.ErrSkillNotFound that carries the skill name.
//  3. Bind the skill to the context store and invoke execution.
//  4. Record the terminal state and stamp the completion time.
//  5. Always remove the task from the active set and append it to the
//     history, success or not.
//
// Execution errors are recorded on the task and returned to the caller. A
// skill that reports failure in-band (an error-shaped result without a Go
// error) is still a completed task; only the error channel marks failure.
func (e *Engine) ExecuteTask(ctx context.Context, task *core.Task) (any, error) {
	e.logger.Info("task started", "task_id", task.ID, "name", task.Name, "skill", task.Skill)

	e.mu.Lock()
	task.Status = core.StatusRunning
	task.StartedAt = timePtr(time.Now().UTC())
	e.active[task.ID] = task
	e.mu.Unlock()

	defer func() {
		e.mu.Lock()
		delete(e.active, task.ID)
		e.history = append(e.history, task)
		e.mu.Unlock()
	}()

	s, ok := e.registry.Get(task.Skill)
	if !ok {
		err := fmt.Errorf("%w: %q", core.ErrSkillNotFound, task.Skill)
		e.finish(task, nil, err)
		e.logger.Error("task failed", "task_id", task.ID, "error", err)
		return nil, err
	}

	result, err := s.Bind(e.contexts).Execute(ctx, task.Parameters)
	if err != nil {
		e.finish(task, nil, err)
		e.logger.Error("task failed", "task_id", task.ID, "error", err)
		return nil, err
	}

	e.finish(task, result, nil)
	e.logger.Info("task completed", "task_id", task.ID)
	return result, nil
}

// finish records the terminal state. A task cancelled while running keeps
// its cancelled status: terminal states are final.
func (e *Engine) finish(task *core.Task, result any, err error) {
	e.mu.Lock()
	defer e.mu.Unlock()
	if task.Status.Terminal() {
		return
	}
	task.CompletedAt = timePtr(time.Now().UTC())
	if err != nil {
		task.Status = core.StatusFailed
		task.Error = err.Error()
		return
	}
	task.Status = core.StatusCompleted
	task.Result = result
}

// RunBatch executes the tasks with at most MaxConcurrentTasks running at
// once; excess tasks wait for a permit. Every task's outcome is captured
// without aborting siblings, and the returned slice is index-aligned with
// the input regardless of completion order.
func (e *Engine) RunBatch(ctx context.Context, tasks []*core.Task) []Result {
	results := make([]Result, len(tasks))
	var wg sync.WaitGroup
	for i, task := range tasks {
		wg.Add(1)
		go func(i int, task *core.Task) {
			defer wg.Done()
			if err := e.sem.Acquire(ctx, 1); err != nil {
				e.recordUnstarted(task, err)
				results[i] = Result{Task: task, Err: err}
				return
			}
			defer e.sem.Release(1)
			value, err := e.ExecuteTask(ctx, task)
			results[i] = Result{Task: task, Value: value, Err: err}
		}(i, task)
	}
	wg.Wait()
	return results
}

// recordUnstarted fails a task that never acquired a permit (typically the
// batch context was cancelled) so it is visible in history rather than
// silently dropped.
func (e *Engine) recordUnstarted(task *core.Task, err error) {
	e.mu.Lock()
	defer e.mu.Unlock()
	if !task.Status.Terminal() {
		task.Status = core.StatusFailed
		task.Error = err.Error()
		task.CompletedAt = timePtr(time.Now().UTC())
	}
	e.history = append(e.history, task)
}

// ActiveTasks returns a snapshot of the tasks currently in the running
// state. The tasks are clones; the engine keeps mutating the originals under
// its lock until they reach a terminal state.
func (e *Engine) ActiveTasks() []*core.Task {
	e.mu.Lock()
	defer e.mu.Unlock()
	out := make([]*core.Task, 0, len(e.active))
	for _, t := range e.active {
		if t.Status == core.StatusRunning {
			out = append(out, t.Clone())
		}
	}
	return out
}

// History returns the executed tasks most-recent-last, optionally truncated
// to the last limit entries (limit <= 0 returns everything).
func (e *Engine) History(limit int) []*core.Task {
	e.mu.Lock()
	defer e.mu.Unlock()
	h := e.history
	if limit > 0 && limit < len(h) {
		h = h[len(h)-limit:]
	}
	out := make([]*core.Task, len(h))
	copy(out, h)
	return out
}

// CancelTask marks an active task cancelled and stamps its completion time.
// This is bookkeeping only: it requests cancellation acknowledgment, it does
// not preempt the in-flight executor. False when the id is not active.
func (e *Engine) CancelTask(id string) bool {
	e.mu.Lock()
	defer e.mu.Unlock()
	task, ok := e.active[id]
	if !ok || task.Status.Terminal() {
		return false
	}
	task.Status = core.StatusCancelled
	task.CompletedAt = timePtr(time.Now().UTC())
	e.logger.Info("task cancelled", "task_id", id)
	return true
}

// MaxConcurrentTasks reports the configured concurrency ceiling.
func (e *Engine) MaxConcurrentTasks() int { return e.maxConcurrent }

func timePtr(t time.Time) *time.Time { return &t }
