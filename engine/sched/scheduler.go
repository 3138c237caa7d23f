// package sched implements the priority-based cooperative scheduler (spec
// §4.2): six priority levels feeding five bounded FIFO queues plus a
// delayed min-heap and a thread-pinned map, drained by a worker pool and by
// the application's main-thread ProcessFrame call.
package sched

import (
	"container/heap"
	"fmt"
	"sync"
	"sync/atomic"
	"time"

	"github.com/oxycore/engine/engine/logx"
)

// MainThreadID is the conventional thread id for ScheduleOnThread /
// ProcessFrame: the application's main loop. Applications may define
// additional logical thread ids for other long-lived goroutines (e.g. an
// audio mixing loop) that pump their own ProcessFrame-style drain via
// Scheduler.ProcessThread.
const MainThreadID int64 = 0

// Scheduler multiplexes Handles across a worker pool and the calling
// thread(s), honoring priority, delay, and thread affinity. The zero value
// is not usable; construct with New.
type Scheduler struct {
	cfg Config
	log logx.Logger

	queues [numQueues]*fifoQueue

	delayedMu sync.Mutex
	delayed   delayedHeap

	threadMu     sync.Mutex
	threadQueues map[int64]*fifoQueue

	wake     chan struct{} // coalesced notify for idle workers
	shutdown chan struct{}
	shutOnce sync.Once
	wg       sync.WaitGroup

	running atomic.Bool
	counts  counters
}

// New constructs a Scheduler and, unless WithDedicatedWorkers(false) was
// given, starts its worker pool. Mirrors NewEngine/NewRenderer: defaults
// are applied first, then options, then construction proceeds.
func New(options ...BuilderOption) *Scheduler {
	cfg := DefaultConfig()
	for _, opt := range options {
		opt(&cfg)
	}
	cfg.applyDefaults()

	s := &Scheduler{
		cfg:          cfg,
		log:          logx.New("Scheduler"),
		threadQueues: make(map[int64]*fifoQueue),
		wake:         make(chan struct{}, 1),
		shutdown:     make(chan struct{}),
	}
	for i := range s.queues {
		s.queues[i] = newFIFOQueue(cfg.MaxQueueSizePerPriority)
	}
	s.running.Store(true)

	if cfg.UseDedicatedWorkers {
		s.wg.Add(cfg.WorkerCount)
		for i := 0; i < cfg.WorkerCount; i++ {
			go s.workerLoop(i)
		}
	}
	return s
}

// notify wakes one idle worker (coalesced: if a wake is already pending,
// this is a no-op).
func (s *Scheduler) notify() {
	select {
	case s.wake <- struct{}{}:
	default:
	}
}

// Schedule enqueues handle at the tail of the queue for priority and wakes
// one idle worker. Priority == Immediate runs handle synchronously on the
// caller instead of enqueuing, per spec's definition of Immediate. Schedule
// reports whether the handle was accepted (false only for a dropped
// non-Immediate submission due to queue overflow).
func (s *Scheduler) Schedule(handle Handle, priority Priority) bool {
	if !priority.Valid() {
		priority = PriorityNormal
	}
	if priority == PriorityImmediate {
		s.counts.immediateProcessed.Add(1)
		s.resumeOne(handle, PriorityImmediate)
		return true
	}

	q := s.queues[queueIndex(priority)]
	ok := q.push(&scheduledEntry{handle: handle, priority: priority, enqueuedAt: time.Now()})
	if !ok {
		s.log.Warnf("queue overflow at priority %s, dropping handle", priority)
		return false
	}
	s.notify()
	return true
}

// ScheduleAfter pushes handle onto the delayed min-heap, to be moved into
// its priority queue once delay has elapsed. schedule_after(h, 0) behaves
// like Schedule(h) once the delayed queue is next drained.
func (s *Scheduler) ScheduleAfter(handle Handle, delay time.Duration, priority Priority) {
	if !priority.Valid() || priority == PriorityImmediate {
		priority = PriorityNormal
	}
	s.delayedMu.Lock()
	heap.Push(&s.delayed, &delayedEntry{
		handle:   handle,
		priority: priority,
		wakeTime: time.Now().Add(delay),
	})
	s.delayedMu.Unlock()
	s.notify()
}

// Reschedule is equivalent to Schedule with a new priority; named
// separately to match spec vocabulary at call sites that are explicitly
// re-prioritizing already-suspended work.
func (s *Scheduler) Reschedule(handle Handle, newPriority Priority) bool {
	return s.Schedule(handle, newPriority)
}

// ScheduleOnThread pushes handle onto the FIFO pinned to threadID. Workers
// never drain thread-pinned queues; only a call to ProcessThread(threadID,
// ...) (or ProcessFrame for MainThreadID) pops them, so pinned work only
// runs on whichever goroutine calls that drain for the matching id.
func (s *Scheduler) ScheduleOnThread(handle Handle, threadID int64, priority Priority) bool {
	if !priority.Valid() {
		priority = PriorityNormal
	}
	q := s.threadQueue(threadID)
	ok := q.push(&scheduledEntry{handle: handle, priority: priority, enqueuedAt: time.Now()})
	if !ok {
		s.log.Warnf("thread-pinned queue overflow for thread %d, dropping handle", threadID)
		return false
	}
	s.notify()
	return true
}

func (s *Scheduler) threadQueue(threadID int64) *fifoQueue {
	s.threadMu.Lock()
	defer s.threadMu.Unlock()
	q, ok := s.threadQueues[threadID]
	if !ok {
		q = newFIFOQueue(s.cfg.MaxQueueSizePerPriority)
		s.threadQueues[threadID] = q
	}
	return q
}

// promoteDue moves every delayed entry whose wakeTime has elapsed into its
// priority queue. Called as step 1 of every drain per spec §4.2.
func (s *Scheduler) promoteDue(now time.Time) {
	s.delayedMu.Lock()
	var due []*delayedEntry
	for s.delayed.Len() > 0 && !s.delayed[0].wakeTime.After(now) {
		due = append(due, heap.Pop(&s.delayed).(*delayedEntry))
	}
	s.delayedMu.Unlock()

	for _, e := range due {
		s.Schedule(e.handle, e.priority)
	}
}

// ProcessFrame is the main-thread drain: promote due delayed entries, drain
// the MainThreadID pinned queue, then walk priority queues highest-first,
// until maxCount entries have run or maxWallTime has elapsed.
func (s *Scheduler) ProcessFrame(maxCount int, maxWallTime time.Duration) int {
	return s.ProcessThread(MainThreadID, maxCount, maxWallTime)
}

// ProcessThread is ProcessFrame generalized to an arbitrary logical thread
// id, for applications with more than one long-lived pumped loop (e.g. a
// dedicated audio thread draining its own pinned queue).
func (s *Scheduler) ProcessThread(threadID int64, maxCount int, maxWallTime time.Duration) int {
	if maxCount <= 0 {
		maxCount = s.cfg.MaxCoroutinesPerFrame
	}
	if maxWallTime <= 0 {
		maxWallTime = s.cfg.FrameBudget
	}
	deadline := time.Now().Add(maxWallTime)
	ran := 0

	s.promoteDue(time.Now())

	pinned := s.threadQueue(threadID)
	for ran < maxCount && time.Now().Before(deadline) {
		e := pinned.pop()
		if e == nil {
			break
		}
		s.resumeOne(e.handle, e.priority)
		ran++
	}

	for ran < maxCount && time.Now().Before(deadline) {
		e := s.popHighestPriority()
		if e == nil {
			break
		}
		s.resumeOne(e.handle, e.priority)
		ran++
	}
	return ran
}

// ProcessBatch is the worker variant: it never touches the delayed heap or
// thread-pinned queues, only the priority queues.
func (s *Scheduler) ProcessBatch(maxCount int, maxWallTime time.Duration) int {
	if maxCount <= 0 {
		maxCount = s.cfg.MaxCoroutinesPerFrame
	}
	if maxWallTime <= 0 {
		maxWallTime = s.cfg.FrameBudget
	}
	deadline := time.Now().Add(maxWallTime)
	ran := 0
	for ran < maxCount && time.Now().Before(deadline) {
		e := s.popHighestPriority()
		if e == nil {
			break
		}
		s.resumeOne(e.handle, e.priority)
		ran++
	}
	return ran
}

// popHighestPriority walks the five real queues from Critical to Idle and
// pops the head of the first non-empty one.
func (s *Scheduler) popHighestPriority() *scheduledEntry {
	for i := range s.queues {
		if e := s.queues[i].pop(); e != nil {
			return e
		}
	}
	return nil
}

// resumeOne executes a single entry. A failed Resume is logged and the
// handle discarded; no other handle is affected. A suspended handle is
// simply dropped from the scheduler's bookkeeping — the awaitable that
// caused the suspension already arranged its own rescheduling.
func (s *Scheduler) resumeOne(handle Handle, priority Priority) {
	defer func() {
		if r := recover(); r != nil {
			s.counts.resumeFailures.Add(1)
			s.log.Errorf("handle panicked during resume: %v", r)
		}
	}()

	suspended, err := handle.Resume()
	if err != nil {
		s.counts.resumeFailures.Add(1)
		s.log.Errorf("handle resume failed: %v", err)
	}
	if !suspended && priority != PriorityImmediate {
		s.counts.processed[queueIndex(priority)].Add(1)
	}
}

// workerLoop is one worker goroutine: wait for a notify or a bounded
// timeout, drain a batch, repeat until shutdown.
func (s *Scheduler) workerLoop(id int) {
	defer s.wg.Done()
	const idlePoll = 5 * time.Millisecond
	for {
		select {
		case <-s.shutdown:
			return
		case <-s.wake:
			s.ProcessBatch(s.cfg.MaxCoroutinesPerFrame, s.cfg.FrameBudget)
		case <-time.After(idlePoll):
			if n := s.ProcessBatch(s.cfg.MaxCoroutinesPerFrame, s.cfg.FrameBudget); n == 0 {
				continue
			}
		}
	}
}

// Shutdown sets the shutting-down flag, wakes and joins all workers, then
// discards any handles still queued anywhere (priority queues, delayed
// heap, thread-pinned queues) without resuming them.
func (s *Scheduler) Shutdown() {
	s.shutOnce.Do(func() {
		s.running.Store(false)
		close(s.shutdown)
	})
	s.wg.Wait()

	for i := range s.queues {
		s.queues[i].drain()
	}
	s.delayedMu.Lock()
	s.delayed = nil
	s.delayedMu.Unlock()
	s.threadMu.Lock()
	for _, q := range s.threadQueues {
		q.drain()
	}
	s.threadMu.Unlock()
}

// Running reports whether the scheduler is accepting work.
func (s *Scheduler) Running() bool { return s.running.Load() }

// Stats returns a snapshot of scheduler activity.
func (s *Scheduler) Stats() Stats {
	var out Stats
	for i := range s.queues {
		out.Processed[i] = s.counts.processed[i].Load()
		out.Dropped[i] = s.queues[i].droppedCount()
		out.QueueDepth[i] = s.queues[i].len()
	}
	s.delayedMu.Lock()
	out.DelayedDepth = s.delayed.Len()
	s.delayedMu.Unlock()
	out.ImmediateProcessed = s.counts.immediateProcessed.Load()
	out.ResumeFailures = s.counts.resumeFailures.Load()
	return out
}

// String implements a human-readable summary, used by the profiler-style
// diagnostics in DESIGN.md's supplemented Stats() surface.
func (s Stats) String() string {
	return fmt.Sprintf("delayed=%d immediate=%d failures=%d queues=%v dropped=%v",
		s.DelayedDepth, s.ImmediateProcessed, s.ResumeFailures, s.QueueDepth, s.Dropped)
}
