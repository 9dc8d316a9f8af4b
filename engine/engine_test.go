package engine

import (
	"context"
	"fmt"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/hupe1980/skillmesh/contextstore"
	"github.com/hupe1980/skillmesh/core"
	"github.com/hupe1980/skillmesh/kv"
	"github.com/hupe1980/skillmesh/skill"
)

func newEngine(t *testing.T, skills ...core.Skill) *Engine {
	t.Helper()
	registry := skill.NewRegistry()
	for _, s := range skills {
		registry.Register(s)
	}
	contexts := contextstore.New(kv.NewInMemory(nil))
	return New(registry, contexts)
}

func echoSkill() core.Skill {
	return skill.NewFunc("echo", "echo params", nil,
		func(_ context.Context, _ core.SkillContext, params map[string]any) (any, error) {
			return params, nil
		},
	)
}

func TestEngine_ExecuteTask(t *testing.T) {
	e := newEngine(t, echoSkill())
	task := core.NewTask("say", "echo", map[string]any{"text": "hi"})

	result, err := e.ExecuteTask(context.Background(), task)
	require.NoError(t, err)
	assert.Equal(t, map[string]any{"text": "hi"}, result)

	assert.Equal(t, core.StatusCompleted, task.Status)
	assert.Equal(t, result, task.Result)
	require.NotNil(t, task.StartedAt)
	require.NotNil(t, task.CompletedAt)
	assert.Empty(t, task.Error)

	history := e.History(0)
	require.Len(t, history, 1)
	assert.Same(t, task, history[0])
	assert.Empty(t, e.ActiveTasks())
}

func TestEngine_SkillNotFound(t *testing.T) {
	e := newEngine(t)
	task := core.NewTask("oops", "ghost", nil)

	_, err := e.ExecuteTask(context.Background(), task)
	require.Error(t, err)
	assert.ErrorIs(t, err, core.ErrSkillNotFound)
	assert.Contains(t, err.Error(), "ghost")

	assert.Equal(t, core.StatusFailed, task.Status)
	assert.NotEmpty(t, task.Error)

	// Failures land in history too.
	require.Len(t, e.History(0), 1)
}

func TestEngine_ExecutionErrorFailsTask(t *testing.T) {
	boom := skill.NewFunc("boom", "always fails", nil,
		func(context.Context, core.SkillContext, map[string]any) (any, error) {
			return nil, fmt.Errorf("exploded")
		},
	)
	e := newEngine(t, boom)
	task := core.NewTask("b", "boom", nil)

	_, err := e.ExecuteTask(context.Background(), task)
	require.Error(t, err)
	assert.Equal(t, core.StatusFailed, task.Status)
	assert.Contains(t, task.Error, "exploded")
}

func TestEngine_InBandErrorStillCompletes(t *testing.T) {
	inband := skill.NewFunc("inband", "reports failure in-band", nil,
		func(context.Context, core.SkillContext, map[string]any) (any, error) {
			return map[string]any{"error": "not really"}, nil
		},
	)
	e := newEngine(t, inband)
	task := core.NewTask("i", "inband", nil)

	result, err := e.ExecuteTask(context.Background(), task)
	require.NoError(t, err)
	assert.Equal(t, core.StatusCompleted, task.Status)
	assert.Equal(t, map[string]any{"error": "not really"}, result)
	assert.Empty(t, task.Error)
}

func TestEngine_RunBatchIndexAligned(t *testing.T) {
	e := newEngine(t, echoSkill())
	tasks := []*core.Task{
		core.NewTask("t0", "echo", map[string]any{"n": float64(0)}),
		core.NewTask("t1", "ghost", nil),
		core.NewTask("t2", "echo", map[string]any{"n": float64(2)}),
	}

	results := e.RunBatch(context.Background(), tasks)
	require.Len(t, results, 3)

	assert.Same(t, tasks[0], results[0].Task)
	require.NoError(t, results[0].Err)
	assert.Equal(t, map[string]any{"n": float64(0)}, results[0].Value)

	assert.ErrorIs(t, results[1].Err, core.ErrSkillNotFound)

	require.NoError(t, results[2].Err)
	assert.Equal(t, map[string]any{"n": float64(2)}, results[2].Value)

	assert.Len(t, e.History(0), 3)
}

func TestEngine_RunBatchHonorsCeiling(t *testing.T) {
	const ceiling = 2

	var (
		mu        sync.Mutex
		inFlight  int
		highWater int
	)
	slow := skill.NewFunc("slow", "tracks concurrency", nil,
		func(context.Context, core.SkillContext, map[string]any) (any, error) {
			mu.Lock()
			inFlight++
			if inFlight > highWater {
				highWater = inFlight
			}
			mu.Unlock()

			time.Sleep(20 * time.Millisecond)

			mu.Lock()
			inFlight--
			mu.Unlock()
			return nil, nil
		},
	)

	registry := skill.NewRegistry()
	registry.Register(slow)
	e := New(registry, contextstore.New(kv.NewInMemory(nil)), func(o *Options) {
		o.MaxConcurrentTasks = ceiling
	})
	assert.Equal(t, ceiling, e.MaxConcurrentTasks())

	tasks := make([]*core.Task, 6)
	for i := range tasks {
		tasks[i] = core.NewTask(fmt.Sprintf("t%d", i), "slow", nil)
	}

	results := e.RunBatch(context.Background(), tasks)
	for _, res := range results {
		assert.NoError(t, res.Err)
	}
	assert.LessOrEqual(t, highWater, ceiling)
	assert.Greater(t, highWater, 0)
}

func TestEngine_RunBatchCancelledContext(t *testing.T) {
	e := newEngine(t, echoSkill())
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	tasks := []*core.Task{core.NewTask("t", "echo", nil)}
	results := e.RunBatch(ctx, tasks)
	require.Len(t, results, 1)
	require.Error(t, results[0].Err)
	assert.Equal(t, core.StatusFailed, tasks[0].Status)

	// Never-started tasks still show up in history.
	assert.Len(t, e.History(0), 1)
}

func TestEngine_CancelTask(t *testing.T) {
	started := make(chan struct{})
	release := make(chan struct{})
	blocking := skill.NewFunc("block", "waits for release", nil,
		func(context.Context, core.SkillContext, map[string]any) (any, error) {
			close(started)
			<-release
			return "done", nil
		},
	)
	e := newEngine(t, blocking)
	task := core.NewTask("b", "block", nil)

	done := make(chan struct{})
	go func() {
		defer close(done)
		_, _ = e.ExecuteTask(context.Background(), task)
	}()

	<-started
	require.Len(t, e.ActiveTasks(), 1)
	require.True(t, e.CancelTask(task.ID))

	// Cancellation is bookkeeping: the executor still runs to completion,
	// but the terminal cancelled status is never overwritten.
	close(release)
	<-done
	assert.Equal(t, core.StatusCancelled, task.Status)
	require.NotNil(t, task.CompletedAt)

	assert.False(t, e.CancelTask(task.ID))
	assert.False(t, e.CancelTask("unknown"))
}

func TestEngine_ActiveTasksSnapshotIsolated(t *testing.T) {
	started := make(chan struct{})
	release := make(chan struct{})
	blocking := skill.NewFunc("block", "waits for release", nil,
		func(context.Context, core.SkillContext, map[string]any) (any, error) {
			close(started)
			<-release
			return "done", nil
		},
	)
	e := newEngine(t, blocking)
	task := core.NewTask("b", "block", nil)

	done := make(chan struct{})
	go func() {
		defer close(done)
		_, _ = e.ExecuteTask(context.Background(), task)
	}()

	<-started
	snapshot := e.ActiveTasks()
	require.Len(t, snapshot, 1)

	// The snapshot holds clones: finishing the task must not reach back into
	// what the caller already has.
	close(release)
	<-done
	assert.Equal(t, core.StatusRunning, snapshot[0].Status)
	assert.Nil(t, snapshot[0].CompletedAt)
	assert.Equal(t, core.StatusCompleted, task.Status)
}

func TestEngine_HistoryLimit(t *testing.T) {
	e := newEngine(t, echoSkill())
	for i := 0; i < 4; i++ {
		task := core.NewTask(fmt.Sprintf("t%d", i), "echo", nil)
		_, err := e.ExecuteTask(context.Background(), task)
		require.NoError(t, err)
	}

	all := e.History(0)
	require.Len(t, all, 4)
	assert.Equal(t, "t0", all[0].Name)
	assert.Equal(t, "t3", all[3].Name)

	last2 := e.History(2)
	require.Len(t, last2, 2)
	assert.Equal(t, "t2", last2[0].Name)
	assert.Equal(t, "t3", last2[1].Name)
}

func TestEngine_SkillSeesContext(t *testing.T) {
	reader := skill.NewFunc("reader", "reads merged context", nil,
		func(_ context.Context, sc core.SkillContext, _ map[string]any) (any, error) {
			v, _ := sc.GetContext("project", core.ScopeGlobal)
			return v, nil
		},
	)
	registry := skill.NewRegistry()
	registry.Register(reader)
	contexts := contextstore.New(kv.NewInMemory(nil))
	_, err := contexts.UpdateContext("project", "skillmesh", core.ScopeGlobal)
	require.NoError(t, err)

	e := New(registry, contexts)
	result, err := e.ExecuteTask(context.Background(), core.NewTask("r", "reader", nil))
	require.NoError(t, err)
	assert.Equal(t, "skillmesh", result)
}
