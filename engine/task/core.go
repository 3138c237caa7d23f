// package task implements Task/Awaitable (spec §4.1): a handle to a
// suspendable computation producing one value, composed over the
// scheduler in engine/sched. A Task's body runs on its own goroutine;
// suspension points (Sleep, Yield, SwitchToThread, Await) hand control
// back to the scheduler by blocking on a channel rather than by unwinding
// a call stack, which is the idiomatic Go equivalent of a stackful
// coroutine suspension point.
package task

import (
	"sync"
	"sync/atomic"

	"github.com/google/uuid"
	"github.com/oxycore/engine/engine/sched"
)

// stepResult is the handoff a task's goroutine sends back after running
// one step: either it suspended (and has already arranged its own
// rescheduling) or it ran to completion.
type stepResult struct {
	suspended bool
}

// core is the non-generic state shared by every Task[T]. It is embedded by
// value pointer in Task[T] so that Done/Failure/registerWaiter — needed by
// AwaitAll over a heterogeneous set of tasks — do not depend on T.
type core struct {
	id    uuid.UUID
	sched *sched.Scheduler
	self  sched.Handle // the owning Task[T], set once at construction

	resumeCh chan struct{}
	pauseCh  chan stepResult
	done     chan struct{}

	startOnce sync.Once
	mu        sync.Mutex
	completed bool
	failure   error
	waiter    sched.Handle // single continuation slot (spec: at most one waiter)

	cancelled atomic.Bool
}

func newCore(s *sched.Scheduler) *core {
	return &core{
		id:       uuid.New(),
		sched:    s,
		resumeCh: make(chan struct{}),
		pauseCh:  make(chan stepResult, 1),
		done:     make(chan struct{}),
	}
}

// ID returns the task's debug identifier, used for log correlation across
// worker goroutines.
func (c *core) ID() uuid.UUID { return c.id }

// Done reports whether the task has completed (successfully or not).
func (c *core) Done() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.completed
}

// Failure returns the stored failure, or nil if the task succeeded or has
// not completed yet.
func (c *core) Failure() error {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.failure
}

// registerWaiter installs w as the task's single continuation if the task
// has not completed yet, returning alreadyDone=true (and not installing
// anything) if it raced with completion.
func (c *core) registerWaiter(w sched.Handle) (alreadyDone bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.completed {
		return true
	}
	c.waiter = w
	return false
}

// Cancel sets the cooperative cancellation flag. The task itself must poll
// Ctx.Cancelled() between suspension points; the scheduler never preempts
// a running task (spec §4.1: "the engine does not implement preemptive
// cancellation").
func (c *core) Cancel() { c.cancelled.Store(true) }

// finish marks the task complete, publishes done, and hands the
// continuation to the scheduler rather than invoking it inline — unless no
// scheduler is attached, in which case the fallback runs it inline on this
// goroutine (spec §4.2 failure semantics: "no scheduler -> awaitables
// resume inline on the caller").
func (c *core) finish(failure error) {
	c.mu.Lock()
	c.completed = true
	c.failure = failure
	waiter := c.waiter
	c.waiter = nil
	c.mu.Unlock()
	close(c.done)

	if waiter == nil {
		return
	}
	if c.sched != nil {
		c.sched.Schedule(waiter, sched.PriorityNormal)
	} else {
		waiter.Resume()
	}
}

// suspend hands one pause signal to whatever is driving Resume(), then
// blocks until the next Resume() call sends a continuation token. Callers
// must have already arranged their own rescheduling (onto a delayed
// heap entry, a priority queue, or a thread-pinned queue) before calling
// suspend, per the scheduler's contract.
func (c *core) suspend() {
	c.pauseCh <- stepResult{suspended: true}
	<-c.resumeCh
}
