package sched_test

import (
	"sync"
	"testing"
	"time"

	"github.com/oxycore/engine/engine/sched"
)

// recordingHandle appends its label to a shared, mutex-guarded slice when
// resumed, then reports completion.
type recordingHandle struct {
	label string
	mu    *sync.Mutex
	order *[]string
}

func (h recordingHandle) Resume() (bool, error) {
	h.mu.Lock()
	*h.order = append(*h.order, h.label)
	h.mu.Unlock()
	return false, nil
}

// Scenario 1 from spec §8: one worker, submit Low, High, Normal in that
// order; expected execution order High, Normal, Low.
func TestPriorityOrdering(t *testing.T) {
	s := sched.New(sched.WithDedicatedWorkers(false))
	defer s.Shutdown()

	var mu sync.Mutex
	var order []string

	s.Schedule(recordingHandle{"low", &mu, &order}, sched.PriorityLow)
	s.Schedule(recordingHandle{"high", &mu, &order}, sched.PriorityHigh)
	s.Schedule(recordingHandle{"normal", &mu, &order}, sched.PriorityNormal)

	s.ProcessFrame(10, time.Second)

	mu.Lock()
	defer mu.Unlock()
	want := []string{"high", "normal", "low"}
	if len(order) != len(want) {
		t.Fatalf("order = %v, want %v", order, want)
	}
	for i := range want {
		if order[i] != want[i] {
			t.Fatalf("order = %v, want %v", order, want)
		}
	}
}

// Scenario 2 from spec §8: schedule_after(h, 50ms) fires exactly once, no
// earlier than the delay.
func TestDelayedWake(t *testing.T) {
	s := sched.New(sched.WithDedicatedWorkers(false))
	defer s.Shutdown()

	var runs int
	var mu sync.Mutex
	h := sched.HandleFunc(func() error {
		mu.Lock()
		runs++
		mu.Unlock()
		return nil
	})

	s.ScheduleAfter(h, 50*time.Millisecond, sched.PriorityNormal)

	s.ProcessFrame(10, time.Millisecond)
	mu.Lock()
	if runs != 0 {
		t.Fatalf("handle ran before delay elapsed")
	}
	mu.Unlock()

	time.Sleep(55 * time.Millisecond)
	s.ProcessFrame(10, time.Second)

	mu.Lock()
	defer mu.Unlock()
	if runs != 1 {
		t.Fatalf("runs = %d, want exactly 1", runs)
	}
}

// Scenario 3 from spec §8: max_queue_size_per_priority = 2, submit three
// handles at Normal; the third is dropped.
func TestQueueOverflowDropsAndCounts(t *testing.T) {
	s := sched.New(sched.WithDedicatedWorkers(false), sched.WithMaxQueueSizePerPriority(2))
	defer s.Shutdown()

	noop := sched.HandleFunc(func() error { return nil })

	if !s.Schedule(noop, sched.PriorityNormal) {
		t.Fatal("first schedule should be accepted")
	}
	if !s.Schedule(noop, sched.PriorityNormal) {
		t.Fatal("second schedule should be accepted")
	}
	if s.Schedule(noop, sched.PriorityNormal) {
		t.Fatal("third schedule should be dropped")
	}

	stats := s.Stats()
	var dropped uint64
	for _, d := range stats.Dropped {
		dropped += d
	}
	if dropped != 1 {
		t.Fatalf("dropped_count = %d, want 1", dropped)
	}
}

func TestImmediateRunsSynchronously(t *testing.T) {
	s := sched.New(sched.WithDedicatedWorkers(false))
	defer s.Shutdown()

	ran := false
	s.Schedule(sched.HandleFunc(func() error {
		ran = true
		return nil
	}), sched.PriorityImmediate)

	if !ran {
		t.Fatal("Immediate handle did not run synchronously on caller")
	}
}

func TestShutdownDiscardsPendingHandles(t *testing.T) {
	s := sched.New(sched.WithDedicatedWorkers(false))

	ran := false
	s.Schedule(sched.HandleFunc(func() error {
		ran = true
		return nil
	}), sched.PriorityNormal)

	s.Shutdown()
	if ran {
		t.Fatal("handle still queued at shutdown must not be resumed")
	}
	stats := s.Stats()
	for _, d := range stats.QueueDepth {
		if d != 0 {
			t.Fatalf("queues must be empty after shutdown, got depth %d", d)
		}
	}
}

// Fifty distinct handles scheduled at Normal with a four-worker pool: every
// one must be resumed by the workers (wg.Wait returns only after all ran).
// Overlap between handles is tracked in maxActive but not asserted.
func TestWorkerPoolRunsAllHandles(t *testing.T) {
	s := sched.New(sched.WithWorkerCount(4))
	defer s.Shutdown()

	var active int32
	var mu sync.Mutex
	var maxActive int32
	var wg sync.WaitGroup

	for i := 0; i < 50; i++ {
		wg.Add(1)
		s.Schedule(sched.HandleFunc(func() error {
			defer wg.Done()
			mu.Lock()
			active++
			if active > maxActive {
				maxActive = active
			}
			mu.Unlock()
			time.Sleep(time.Millisecond)
			mu.Lock()
			active--
			mu.Unlock()
			return nil
		}), sched.PriorityNormal)
	}

	wg.Wait()
	if maxActive < 1 {
		t.Fatal("no handle ever ran")
	}
}

func TestScheduleOnThreadOnlyRunsOnMatchingDrain(t *testing.T) {
	s := sched.New(sched.WithDedicatedWorkers(false))
	defer s.Shutdown()

	ran := false
	const otherThread int64 = 42
	s.ScheduleOnThread(sched.HandleFunc(func() error {
		ran = true
		return nil
	}), otherThread, sched.PriorityNormal)

	s.ProcessFrame(10, time.Second) // drains MainThreadID, not otherThread
	if ran {
		t.Fatal("thread-pinned handle ran from the wrong thread's drain")
	}

	s.ProcessThread(otherThread, 10, time.Second)
	if !ran {
		t.Fatal("thread-pinned handle never ran on its own thread's drain")
	}
}
