package rendercmd

import (
	"sync"
	"sync/atomic"
)

// Stats is a point-in-time snapshot of queue activity, exposed for the
// profiler and debug overlays (spec §4.4: "queue size, dropped count,
// processed count, per-command-name count, and per-frame total").
type Stats struct {
	Queued    uint64
	Processed uint64
	Dropped   uint64
	Depth     int

	// PerCommand counts Processed executions per DebugName, copied out of
	// the live map at snapshot time.
	PerCommand map[string]uint64

	// FrameTotal is the number of commands processed since the last
	// BeginFrame call.
	FrameTotal uint64
}

// counters holds the live atomic counters a Queue updates during
// operation; Stats() copies them into an immutable snapshot.
type counters struct {
	queued     atomic.Uint64
	processed  atomic.Uint64
	dropped    atomic.Uint64
	frameTotal atomic.Uint64

	perCommandMu sync.Mutex
	perCommand   map[string]uint64
}
