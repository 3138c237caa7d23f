package task

import (
	"github.com/oxycore/engine/engine/sched"
)

// Task is a handle to a suspendable computation that eventually produces
// one value of type T (or struct{} for a task run purely for its side
// effects). It is exclusively owned by its creator; any waiter holds only
// a non-owning reference through the single continuation slot in core.
type Task[T any] struct {
	*core
	fn    func(*Ctx) (T, error)
	value T
}

var _ sched.Handle = (*Task[struct{}])(nil)

// Go creates a Task that will run fn on its own goroutine, admitted and
// resumed by sched according to the awaits fn performs through the Ctx it
// receives. Passing a nil Scheduler is supported as the documented
// fallback: Sleep blocks the goroutine, Yield calls runtime.Gosched,
// SwitchToThread returns without switching, and continuations resume inline (spec §4.2's "no scheduler" failure
// semantics), which composition primitives like AwaitAll must tolerate.
//
// The task does not start running until its first Resume: delivered by the
// scheduler, or with a nil Scheduler by a goroutine that Go starts itself.
// GetBlocking only waits for completion and never calls Resume.
func Go[T any](s *sched.Scheduler, fn func(*Ctx) (T, error)) *Task[T] {
	t := &Task[T]{core: newCore(s), fn: fn}
	t.self = t
	go t.run()

	if s != nil {
		// Admit the task onto the scheduler; a worker (or a future
		// ProcessFrame/ProcessBatch drain) delivers the first resume.
		s.Schedule(t, sched.PriorityNormal)
	} else {
		// No scheduler: deliver the first resume ourselves. Subsequent
		// resumes, if the task suspends via Await, come from whatever it
		// is awaiting finishing and resuming this task inline.
		go t.Resume()
	}
	return t
}

// run is the task's goroutine body. It waits for the first admission
// token (the scheduler's first Resume call), runs fn to completion or
// suspension, and on completion hands its continuation to the scheduler.
func (t *Task[T]) run() {
	<-t.resumeCh
	ctx := &Ctx{core: t.core}
	value, err := t.fn(ctx)
	t.mu.Lock()
	t.value = value
	t.mu.Unlock()
	t.finish(err)
	t.pauseCh <- stepResult{suspended: false}
}

// Resume executes the task to its next suspension point. It implements
// sched.Handle so a Task can be scheduled directly. Only one Resume call
// may be in flight for a given task at a time; the scheduler's "a handle
// is present in at most one queue at a time" invariant guarantees this.
func (t *Task[T]) Resume() (suspended bool, err error) {
	t.resumeCh <- struct{}{}
	res := <-t.pauseCh
	if !res.suspended {
		return false, t.Failure()
	}
	return true, nil
}

// IsCompleted reports whether the task has produced a value or failure.
func (t *Task[T]) IsCompleted() bool { return t.Done() }

// Await suspends the calling task (via c) until t completes, then returns
// t's stored value or propagates its stored failure. If t is already
// completed, Await returns immediately without suspending.
func Await[T any](c *Ctx, t *Task[T]) (T, error) {
	if already := t.registerWaiter(c.self); already {
		return t.snapshot()
	}
	c.suspend()
	return t.snapshot()
}

func (t *Task[T]) snapshot() (T, error) {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.value, t.failure
}

// GetBlocking waits for the task to complete by blocking the calling OS
// thread — the synchronous call-site equivalent of Await, for code that is
// not itself running as a Task (spec §4.1: "completes by yielding OS-thread
// time until ready"; blocking on a channel close is the idiomatic Go
// rendering of that wait).
func (t *Task[T]) GetBlocking() (T, error) {
	<-t.done
	return t.snapshot()
}
