package task

import (
	"runtime"
	"time"

	"github.com/oxycore/engine/engine/sched"
)

// Ctx is the suspension handle a task's body receives. It exposes the four
// primitives spec §4.1/§4.2 name: sleep, yield, switch_to_thread, and
// (via the package-level Await/AwaitAll functions) awaiting another task.
type Ctx struct {
	*core
	currentThread int64
	pinned        bool
}

// Sleep suspends the task until at least d has elapsed (wall clock); the
// scheduler may resume it later than that under load. With no scheduler
// attached, Sleep falls back to a real blocking sleep on the calling
// goroutine.
func (c *Ctx) Sleep(d time.Duration) {
	if c.sched == nil {
		time.Sleep(d)
		return
	}
	c.sched.ScheduleAfter(c.self, d, sched.PriorityNormal)
	c.suspend()
}

// Yield immediately reschedules the task at priority and suspends until it
// is picked up again. With no scheduler attached, Yield degrades to
// runtime.Gosched, which at least lets other goroutines run.
func (c *Ctx) Yield(priority sched.Priority) {
	if c.sched == nil {
		runtime.Gosched()
		return
	}
	c.sched.Schedule(c.self, priority)
	c.suspend()
}

// SwitchToThread reschedules the task onto threadID's pinned queue and
// suspends, unless the task is already considered to be running on that
// logical thread, in which case it resumes immediately. "Thread" here is
// the scheduler's logical thread-pinned queue id (see sched.MainThreadID),
// not a literal OS thread identity — Go's runtime does not expose which OS
// thread a goroutine is presently executing on, so thread affinity is
// modeled as "was this task's last resume dispatched from threadID's
// pinned queue," which is the affinity property application code actually
// depends on (running alongside other work pinned to that same queue).
func (c *Ctx) SwitchToThread(threadID int64) {
	if c.pinned && c.currentThread == threadID {
		return
	}
	if c.sched == nil {
		return
	}
	c.sched.ScheduleOnThread(c.self, threadID, sched.PriorityNormal)
	c.currentThread = threadID
	c.pinned = true
	c.suspend()
}

// Cancelled reports whether the owning Task's Cancel method has been
// called. Tasks should poll this between suspension points to implement
// cooperative cancellation.
func (c *Ctx) Cancelled() bool { return c.cancelled.Load() }
