package sched

import (
	"runtime"
	"time"
)

// Config holds the tunables from spec §6's configuration table that govern
// the scheduler. Defaults are applied in New before any
// BuilderOption runs, matching the teacher's option-builder
// convention (NewEngine, NewRenderer).
type Config struct {
	// WorkerCount is the number of worker goroutines backing the pool. 0
	// means auto: max(runtime.NumCPU()-1, 1).
	WorkerCount int

	// UseDedicatedWorkers controls whether a worker pool is spawned at all.
	// When false, only ProcessFrame (driven by the application's main loop)
	// pumps the queues; nothing runs in the background.
	UseDedicatedWorkers bool

	// MaxCoroutinesPerFrame bounds how many entries ProcessFrame drains in
	// one call, regardless of wall-time budget.
	MaxCoroutinesPerFrame int

	// TimeSlicePerCoroutine is advisory only: the scheduler does not preempt
	// a running handle, so this is stored in the config but never enforced
	// and does not appear in Stats.
	TimeSlicePerCoroutine time.Duration

	// FrameBudget is the wall-time target for ProcessFrame's drain.
	FrameBudget time.Duration

	// MaxQueueSizePerPriority bounds each of the five real priority queues.
	// 0 means unbounded.
	MaxQueueSizePerPriority int

	// EnableProfiling is stored in the config only; the scheduler does not
	// read it and records no per-resume timing stats.
	EnableProfiling bool
}

// DefaultConfig returns the scheduler's sensible defaults.
func DefaultConfig() Config {
	return Config{
		WorkerCount:             0,
		UseDedicatedWorkers:     true,
		MaxCoroutinesPerFrame:   256,
		TimeSlicePerCoroutine:  2 * time.Millisecond,
		FrameBudget:             4 * time.Millisecond,
		MaxQueueSizePerPriority: 4096,
		EnableProfiling:         false,
	}
}

func (c *Config) applyDefaults() {
	d := DefaultConfig()
	if c.WorkerCount == 0 {
		c.WorkerCount = max(runtime.NumCPU()-1, 1)
	}
	if c.MaxCoroutinesPerFrame <= 0 {
		c.MaxCoroutinesPerFrame = d.MaxCoroutinesPerFrame
	}
	if c.FrameBudget <= 0 {
		c.FrameBudget = d.FrameBudget
	}
	if c.TimeSlicePerCoroutine <= 0 {
		c.TimeSlicePerCoroutine = d.TimeSlicePerCoroutine
	}
}

// BuilderOption configures a Scheduler at construction time, matching the
// teacher's `With*` functional-option convention.
type BuilderOption func(*Config)

// WithWorkerCount overrides the worker pool size. 0 selects the auto default
// (cores-1, floored at 1).
func WithWorkerCount(n int) BuilderOption {
	return func(c *Config) { c.WorkerCount = n }
}

// WithDedicatedWorkers toggles whether a background worker pool is spawned.
func WithDedicatedWorkers(enabled bool) BuilderOption {
	return func(c *Config) { c.UseDedicatedWorkers = enabled }
}

// WithMaxCoroutinesPerFrame bounds how many entries ProcessFrame drains per call.
func WithMaxCoroutinesPerFrame(n int) BuilderOption {
	return func(c *Config) { c.MaxCoroutinesPerFrame = n }
}

// WithFrameBudget sets ProcessFrame's wall-time drain target.
func WithFrameBudget(d time.Duration) BuilderOption {
	return func(c *Config) { c.FrameBudget = d }
}

// WithMaxQueueSizePerPriority bounds each priority queue's capacity. 0 means unbounded.
func WithMaxQueueSizePerPriority(n int) BuilderOption {
	return func(c *Config) { c.MaxQueueSizePerPriority = n }
}

// WithProfiling sets Config.EnableProfiling; no timing stats are recorded either way.
func WithProfiling(enabled bool) BuilderOption {
	return func(c *Config) { c.EnableProfiling = enabled }
}

// WithTimeSlicePerCoroutine records the advisory per-coroutine time slice.
func WithTimeSlicePerCoroutine(d time.Duration) BuilderOption {
	return func(c *Config) { c.TimeSlicePerCoroutine = d }
}
