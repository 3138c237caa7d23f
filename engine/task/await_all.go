package task

import (
	"sync/atomic"

	"github.com/oxycore/engine/engine/sched"
)

// Awaitable is the minimal surface AwaitAll needs from a heterogeneous set
// of tasks: whether it is done, its stored failure, and the ability to
// register a single continuation. Task[T] satisfies this for any T via its
// embedded *core.
type Awaitable interface {
	Done() bool
	Failure() error
	registerWaiter(w sched.Handle) (alreadyDone bool)
}

// fanIn is the continuation registered on every input of an AwaitAll call.
// Each input's completion calls fanIn.Resume exactly once; the last one to
// observe the counter reach zero is the one that resumes the original
// awaiting task — atomic counting ensures that resumption is published
// exactly once even though inputs may complete concurrently on different
// workers.
type fanIn struct {
	remaining atomic.Int64
	target    sched.Handle
	sched     *sched.Scheduler
}

func (f *fanIn) Resume() (bool, error) {
	if f.remaining.Add(-1) == 0 {
		if f.sched != nil {
			f.sched.Schedule(f.target, sched.PriorityNormal)
		} else {
			f.target.Resume()
		}
	}
	return false, nil
}

// AwaitAll suspends the calling task until every input has completed, then
// returns the first observed failure among them (in input order), or nil
// if all succeeded. With zero inputs it returns immediately.
func AwaitAll(c *Ctx, inputs ...Awaitable) error {
	if len(inputs) == 0 {
		return nil
	}

	allDone := true
	for _, in := range inputs {
		if !in.Done() {
			allDone = false
			break
		}
	}

	if !allDone {
		fi := &fanIn{target: c.self, sched: c.sched}
		fi.remaining.Store(int64(len(inputs)))
		for _, in := range inputs {
			if in.registerWaiter(fi) {
				// Raced to completion before registration landed; that
				// input will never call fi.Resume, so account for it here.
				fi.remaining.Add(-1)
			}
		}
		if fi.remaining.Load() > 0 {
			c.suspend()
		}
	}

	for _, in := range inputs {
		if err := in.Failure(); err != nil {
			return err
		}
	}
	return nil
}
