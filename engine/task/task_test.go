package task_test

import (
	"errors"
	"testing"
	"time"

	"github.com/oxycore/engine/engine/sched"
	"github.com/oxycore/engine/engine/task"
)

func TestGetBlockingReturnsValue(t *testing.T) {
	s := sched.New()
	defer s.Shutdown()

	tk := task.Go(s, func(c *task.Ctx) (int, error) {
		return 42, nil
	})

	v, err := tk.GetBlocking()
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if v != 42 {
		t.Fatalf("value = %d, want 42", v)
	}
	if !tk.IsCompleted() {
		t.Fatal("task should report completed")
	}
}

func TestGetBlockingPropagatesFailure(t *testing.T) {
	s := sched.New()
	defer s.Shutdown()

	wantErr := errors.New("boom")
	tk := task.Go(s, func(c *task.Ctx) (struct{}, error) {
		return struct{}{}, wantErr
	})

	_, err := tk.GetBlocking()
	if !errors.Is(err, wantErr) {
		t.Fatalf("err = %v, want %v", err, wantErr)
	}
}

func TestAwaitComposesWithoutUnboundedStackGrowth(t *testing.T) {
	s := sched.New()
	defer s.Shutdown()

	inner := task.Go(s, func(c *task.Ctx) (int, error) {
		c.Sleep(time.Millisecond)
		return 7, nil
	})

	outer := task.Go(s, func(c *task.Ctx) (int, error) {
		v, err := task.Await(c, inner)
		if err != nil {
			return 0, err
		}
		return v * 2, nil
	})

	v, err := outer.GetBlocking()
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if v != 14 {
		t.Fatalf("value = %d, want 14", v)
	}
}

func TestAwaitOnAlreadyCompletedTaskReturnsImmediately(t *testing.T) {
	s := sched.New()
	defer s.Shutdown()

	inner := task.Go(s, func(c *task.Ctx) (string, error) { return "done", nil })
	inner.GetBlocking() // force completion before the outer task awaits it

	outer := task.Go(s, func(c *task.Ctx) (string, error) {
		return task.Await(c, inner)
	})

	v, err := outer.GetBlocking()
	if err != nil || v != "done" {
		t.Fatalf("got (%q, %v), want (\"done\", nil)", v, err)
	}
}

func TestAwaitAllCompletesAfterEveryInput(t *testing.T) {
	s := sched.New(sched.WithWorkerCount(4))
	defer s.Shutdown()

	const n = 20
	inputs := make([]task.Awaitable, n)
	for i := 0; i < n; i++ {
		d := time.Duration(i%5) * time.Millisecond
		inputs[i] = task.Go(s, func(c *task.Ctx) (int, error) {
			c.Sleep(d)
			return i, nil
		})
	}

	joined := task.Go(s, func(c *task.Ctx) (struct{}, error) {
		err := task.AwaitAll(c, inputs...)
		return struct{}{}, err
	})

	if _, err := joined.GetBlocking(); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	for i, in := range inputs {
		if !in.Done() {
			t.Fatalf("input %d not completed after AwaitAll returned", i)
		}
	}
}

func TestAwaitAllPropagatesFirstFailure(t *testing.T) {
	s := sched.New()
	defer s.Shutdown()

	wantErr := errors.New("first failure")
	a := task.Go(s, func(c *task.Ctx) (struct{}, error) { return struct{}{}, wantErr })
	b := task.Go(s, func(c *task.Ctx) (struct{}, error) { return struct{}{}, nil })

	joined := task.Go(s, func(c *task.Ctx) (struct{}, error) {
		return struct{}{}, task.AwaitAll(c, a, b)
	})

	if _, err := joined.GetBlocking(); !errors.Is(err, wantErr) {
		t.Fatalf("err = %v, want %v", err, wantErr)
	}
}

func TestCancelIsObservableBetweenSuspensionPoints(t *testing.T) {
	s := sched.New()
	defer s.Shutdown()

	started := make(chan struct{})
	tk := task.Go(s, func(c *task.Ctx) (bool, error) {
		close(started)
		c.Sleep(20 * time.Millisecond)
		return c.Cancelled(), nil
	})
	<-started
	tk.Cancel()

	cancelled, err := tk.GetBlocking()
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !cancelled {
		t.Fatal("task did not observe cancellation flag after resuming")
	}
}

func TestSwitchToThreadRunsOnPinnedDrain(t *testing.T) {
	s := sched.New(sched.WithDedicatedWorkers(false))
	defer s.Shutdown()

	const renderThread int64 = 7
	tk := task.Go(s, func(c *task.Ctx) (int, error) {
		c.SwitchToThread(renderThread)
		return 1, nil
	})

	// Nothing drains renderThread's pinned queue yet; ProcessFrame only
	// drains MainThreadID, so the task must still be suspended.
	s.ProcessFrame(10, time.Millisecond)
	if tk.IsCompleted() {
		t.Fatal("task completed before its pinned thread was drained")
	}

	s.ProcessThread(renderThread, 10, time.Second)
	if !tk.IsCompleted() {
		t.Fatal("task never completed after its pinned thread was drained")
	}
}

// No scheduler: Sleep/Yield degrade to blocking primitives, and a waiter's
// continuation resumes inline instead of deadlocking.
func TestFallbackWithoutSchedulerStillCompletes(t *testing.T) {
	inner := task.Go[int](nil, func(c *task.Ctx) (int, error) {
		c.Sleep(time.Millisecond)
		c.Yield(sched.PriorityNormal)
		return 9, nil
	})

	outer := task.Go[int](nil, func(c *task.Ctx) (int, error) {
		return task.Await(c, inner)
	})

	v, err := outer.GetBlocking()
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if v != 9 {
		t.Fatalf("value = %d, want 9", v)
	}
}
