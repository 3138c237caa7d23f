package rendercmd

import (
	"fmt"
	"sync"

	"github.com/oxycore/engine/engine/logx"
)

// Config collects Queue construction parameters behind builder options, in
// line with the rest of the engine's construction style.
type Config struct {
	Capacity      int
	RenderThread  int64
	Log           logx.Logger
	AssertOnWrongThread func(format string, args ...any)
}

func defaultConfig() Config {
	return Config{
		Capacity:     4096,
		RenderThread: 0,
		Log:          logx.New("RenderQueue"),
	}
}

// BuilderOption configures a Queue at construction time.
type BuilderOption func(*Config)

// WithCapacity sets the bound on queued (non-immediate) commands.
func WithCapacity(n int) BuilderOption {
	return func(c *Config) { c.Capacity = n }
}

// WithRenderThread designates the logical thread id allowed to call Submit
// in queued mode.
func WithRenderThread(threadID int64) BuilderOption {
	return func(c *Config) { c.RenderThread = threadID }
}

// WithLogger overrides the queue's logger.
func WithLogger(l logx.Logger) BuilderOption {
	return func(c *Config) { c.Log = l }
}

// WithDebugAssert installs a callback invoked when a non-render-thread
// submits in queued mode — the spec's "triggers an assertion in debug
// builds" contract violation. Production builds typically leave this nil
// and rely on the logged warning alone.
func WithDebugAssert(fn func(format string, args ...any)) BuilderOption {
	return func(c *Config) { c.AssertOnWrongThread = fn }
}

// Queue is the bounded FIFO of Render Commands described in spec §4.4: a
// single render thread drains it via Process, while any thread may submit
// either by pushing onto the FIFO (queued, render-thread only) or by
// taking the execution mutex and running inline (immediate, any thread).
type Queue struct {
	cfg Config

	mu      sync.Mutex // the execution mutex: held across every Execute call
	fifoMu  sync.Mutex
	fifo    []Command

	counters counters
}

// New constructs a Queue ready to accept submissions.
func New(opts ...BuilderOption) *Queue {
	cfg := defaultConfig()
	for _, opt := range opts {
		opt(&cfg)
	}
	q := &Queue{cfg: cfg}
	q.counters.perCommand = make(map[string]uint64)
	return q
}

// Submit pushes cmd to the internal FIFO for later draining by Process.
// Callers must be running on the designated render thread; callingThread
// is checked against the configured render thread id and a contract
// violation is logged (and, if configured, asserted) rather than silently
// accepted, per spec §4.4.
func (q *Queue) Submit(callingThread int64, cmd Command) {
	if callingThread != q.cfg.RenderThread {
		msg := fmt.Sprintf("Submit called from thread %d, render thread is %d", callingThread, q.cfg.RenderThread)
		q.cfg.Log.Errorf("%s", msg)
		if q.cfg.AssertOnWrongThread != nil {
			q.cfg.AssertOnWrongThread("%s", msg)
		}
	}
	q.push(cmd)
}

// SubmitImmediate takes the execution mutex and runs cmd on the calling
// thread, serialized against every other Execute (queued or immediate).
// Intended for object-lifetime operations that can originate from any
// thread. Ordering across threads using a mix of Submit and
// SubmitImmediate is the caller's responsibility; this path provides no
// ordering guarantee beyond serialization.
func (q *Queue) SubmitImmediate(b Backend, cmd Command) error {
	q.mu.Lock()
	defer q.mu.Unlock()
	return q.execute(b, cmd)
}

func (q *Queue) push(cmd Command) {
	q.counters.queued.Add(1)
	q.fifoMu.Lock()
	defer q.fifoMu.Unlock()
	if q.cfg.Capacity > 0 && len(q.fifo) >= q.cfg.Capacity {
		// Overflow policy is "drop oldest": the head of the
		// queue is discarded to make room for the new command, rather
		// than dropping the new command itself (contrast with the
		// scheduler's "drop incoming" policy in engine/sched).
		q.fifo[0] = nil
		q.fifo = q.fifo[1:]
		q.counters.dropped.Add(1)
		q.cfg.Log.Warnf("render command queue overflow, dropping oldest command")
	}
	q.fifo = append(q.fifo, cmd)
}

// Process drains up to maxCommands from the FIFO in order, executing each
// against b on the calling (render) thread while holding the execution
// mutex so a concurrent SubmitImmediate cannot interleave mid-command. A
// command that returns a failure is logged and the drain continues; queue
// state is never corrupted by a command failure.
func (q *Queue) Process(b Backend, maxCommands int) {
	q.mu.Lock()
	defer q.mu.Unlock()

	for i := 0; i < maxCommands; i++ {
		cmd := q.pop()
		if cmd == nil {
			return
		}
		if err := q.execute(b, cmd); err != nil {
			q.cfg.Log.Errorf("render command %q failed: %v", cmd.DebugName(), err)
		}
	}
}

func (q *Queue) execute(b Backend, cmd Command) error {
	err := cmd.Execute(b)
	q.counters.processed.Add(1)
	q.counters.frameTotal.Add(1)
	q.counters.perCommandMu.Lock()
	q.counters.perCommand[cmd.DebugName()]++
	q.counters.perCommandMu.Unlock()
	return err
}

func (q *Queue) pop() Command {
	q.fifoMu.Lock()
	defer q.fifoMu.Unlock()
	if len(q.fifo) == 0 {
		return nil
	}
	cmd := q.fifo[0]
	q.fifo[0] = nil
	q.fifo = q.fifo[1:]
	return cmd
}

// BeginFrame resets the per-frame processed counter; call once per frame
// before the first Process of that frame.
func (q *Queue) BeginFrame() {
	q.counters.frameTotal.Store(0)
}

// Depth returns the number of commands currently queued (not counting any
// in-flight immediate submission).
func (q *Queue) Depth() int {
	q.fifoMu.Lock()
	defer q.fifoMu.Unlock()
	return len(q.fifo)
}

// Stats returns a snapshot of queue activity.
func (q *Queue) Stats() Stats {
	q.counters.perCommandMu.Lock()
	perCommand := make(map[string]uint64, len(q.counters.perCommand))
	for k, v := range q.counters.perCommand {
		perCommand[k] = v
	}
	q.counters.perCommandMu.Unlock()

	return Stats{
		Queued:     q.counters.queued.Load(),
		Processed:  q.counters.processed.Load(),
		Dropped:    q.counters.dropped.Load(),
		Depth:      q.Depth(),
		PerCommand: perCommand,
		FrameTotal: q.counters.frameTotal.Load(),
	}
}

// Shutdown flushes every queued command against b, then releases the
// queue. Per spec §4.4: "flush all queued commands, then discard unflushed
// ones and release" — the flush below drains to empty, so nothing is left
// to discard under normal operation; a failing command mid-flush still
// does not stop the drain.
func (q *Queue) Shutdown(b Backend) {
	q.mu.Lock()
	defer q.mu.Unlock()
	for {
		cmd := q.pop()
		if cmd == nil {
			break
		}
		if err := q.execute(b, cmd); err != nil {
			q.cfg.Log.Errorf("render command %q failed during shutdown flush: %v", cmd.DebugName(), err)
		}
	}
}

func (c *Stats) String() string {
	return fmt.Sprintf("queued=%d processed=%d dropped=%d depth=%d frame=%d", c.Queued, c.Processed, c.Dropped, c.Depth, c.FrameTotal)
}
