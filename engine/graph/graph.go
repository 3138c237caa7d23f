// package graph implements the Render Graph (spec §4.7): an ordered,
// name-addressable list of Pass Specs with a per-frame begin/begin_pass/
// end_pass/execute lifecycle, grounded on the pass package's begin/end
// contract and the profiler's per-second timing style (time.Now/Sub).
package graph

import (
	"time"

	"github.com/oxycore/engine/engine/logx"
	"github.com/oxycore/engine/engine/pass"
	"github.com/oxycore/engine/engine/rendercmd"
)

// entry pairs a Pass Spec with its optional per-pass intermediate
// framebuffer.
type entry struct {
	spec        pass.Spec
	framebuffer rendercmd.Handle
	hasFB       bool
}

// Stats is the per-frame snapshot published at execute().
type Stats struct {
	FrameTime  time.Duration
	PassTimes  map[string]time.Duration
	FrameCount uint64
}

// Graph holds an ordered list of Pass Specs addressable by name, an
// optional output framebuffer, and live per-frame stats (spec §3's
// "Render Graph" data model entry).
type Graph struct {
	log     logx.Logger
	backend rendercmd.Backend
	tracker *pass.Tracker

	order []string
	specs map[string]*entry

	outputFB    rendercmd.Handle
	hasOutputFB bool
	width       int32
	height      int32

	frameCount uint64

	activeName    string
	activePass    *pass.Pass
	activeStart   time.Time
	frameStart    time.Time
	frameActive   bool
	passTimes     map[string]time.Duration
	lastFrameTime time.Duration
	lastPassTimes map[string]time.Duration

	shutdown bool
}

// New constructs an empty Graph against backend, using its own pass
// Tracker so begin_pass/end_pass coordinate the "at most one active pass"
// invariant independently of any other pass usage in the process.
func New(backend rendercmd.Backend, log logx.Logger) *Graph {
	if log == nil {
		log = logx.Nop
	}
	return &Graph{
		log:       log,
		backend:   backend,
		tracker:   pass.NewTracker(log),
		specs:     make(map[string]*entry),
		passTimes: make(map[string]time.Duration),
	}
}

// AddPass appends spec to the end of the graph. Duplicate names are
// rejected with a warning and no effect, per spec §4.7.
func (g *Graph) AddPass(spec pass.Spec) {
	if _, exists := g.specs[spec.Name]; exists {
		g.log.Warnf("render graph: pass %q already exists, ignoring add_pass", spec.Name)
		return
	}
	g.specs[spec.Name] = &entry{spec: spec}
	g.order = append(g.order, spec.Name)
}

// InsertBefore inserts spec immediately before the pass named before. An
// unknown before name is a warning with no effect.
func (g *Graph) InsertBefore(before string, spec pass.Spec) {
	idx := g.indexOf(before)
	if idx < 0 {
		g.log.Warnf("render graph: insert_before unknown pass %q, ignoring", before)
		return
	}
	if _, exists := g.specs[spec.Name]; exists {
		g.log.Warnf("render graph: pass %q already exists, ignoring insert_before", spec.Name)
		return
	}
	g.specs[spec.Name] = &entry{spec: spec}
	g.order = append(g.order, "")
	copy(g.order[idx+1:], g.order[idx:])
	g.order[idx] = spec.Name
}

// InsertAfter inserts spec immediately after the pass named after. An
// unknown after name is a warning with no effect.
func (g *Graph) InsertAfter(after string, spec pass.Spec) {
	idx := g.indexOf(after)
	if idx < 0 {
		g.log.Warnf("render graph: insert_after unknown pass %q, ignoring", after)
		return
	}
	if _, exists := g.specs[spec.Name]; exists {
		g.log.Warnf("render graph: pass %q already exists, ignoring insert_after", spec.Name)
		return
	}
	g.specs[spec.Name] = &entry{spec: spec}
	g.order = append(g.order, "")
	copy(g.order[idx+2:], g.order[idx+1:])
	g.order[idx+1] = spec.Name
}

// Remove deletes the named pass. An unknown name is a warning with no
// effect.
func (g *Graph) Remove(name string) {
	idx := g.indexOf(name)
	if idx < 0 {
		g.log.Warnf("render graph: remove unknown pass %q, ignoring", name)
		return
	}
	delete(g.specs, name)
	g.order = append(g.order[:idx], g.order[idx+1:]...)
}

func (g *Graph) indexOf(name string) int {
	for i, n := range g.order {
		if n == name {
			return i
		}
	}
	return -1
}

// CreatePassFramebuffer allocates (via the backend) an intermediate
// framebuffer sized w×h and assigns it to the named pass. An unknown name
// is a warning with no effect.
func (g *Graph) CreatePassFramebuffer(name string, w, h int32) {
	e, ok := g.specs[name]
	if !ok {
		g.log.Warnf("render graph: create_pass_framebuffer unknown pass %q, ignoring", name)
		return
	}
	e.framebuffer = g.allocFramebuffer(w, h)
	e.hasFB = true
	e.spec.Target = e.framebuffer
	e.spec.HasTarget = true
	e.spec.Viewport = [4]int32{0, 0, w, h}
}

func (g *Graph) allocFramebuffer(w, h int32) rendercmd.Handle {
	handles := g.backend.GenFramebuffers(1)
	g.backend.BindFramebuffer(handles[0])
	textures := g.backend.GenTextures(1)
	g.backend.BindTextureTarget(rendercmd.TextureTarget2D, textures[0])
	g.backend.TexImage2D(rendercmd.TextureTarget2D, 0, w, h, nil)
	g.backend.FramebufferTexture2D(0, rendercmd.TextureTarget2D, textures[0], 0)
	return handles[0]
}

// Resize rebuilds every per-pass intermediate framebuffer at the new size
// and reassigns it to its pass, per spec §4.7.
func (g *Graph) Resize(w, h int32) {
	g.width, g.height = w, h
	for _, name := range g.order {
		e := g.specs[name]
		if e.hasFB {
			g.CreatePassFramebuffer(name, w, h)
		}
	}
}

// SetOutputFramebuffer designates the target execute() binds once the
// graph's passes have all run. A zero value (never called) means the
// default backbuffer.
func (g *Graph) SetOutputFramebuffer(h rendercmd.Handle) {
	g.outputFB = h
	g.hasOutputFB = true
}

// Begin clears per-frame statistics and records the frame start time, per
// spec §4.7.
func (g *Graph) Begin() {
	g.frameStart = time.Now()
	g.frameActive = true
	g.passTimes = make(map[string]time.Duration)
	g.activeName = ""
}

// BeginPass ends any active pass, then begins the named one and records
// its start time. An unknown name is a warning with no effect.
func (g *Graph) BeginPass(name string) {
	if g.shutdown {
		g.log.Warnf("render graph: begin_pass %q called after shutdown, ignoring", name)
		return
	}
	if !g.frameActive {
		g.log.Warnf("render graph: begin_pass %q called without an active frame, ignoring", name)
		return
	}
	e, ok := g.specs[name]
	if !ok {
		g.log.Warnf("render graph: begin_pass unknown pass %q, ignoring", name)
		return
	}
	g.EndPass()

	p := pass.New(g.tracker, g.backend, e.spec)
	p.Begin()
	g.activeName = name
	g.activePass = p
	g.activeStart = time.Now()
}

// EndPass ends the active pass (if any) and records its elapsed time under
// its name. With no active pass (including after Shutdown) EndPass has no
// effect and logs nothing.
func (g *Graph) EndPass() {
	if g.activePass == nil {
		return
	}
	g.activePass.End()
	g.passTimes[g.activeName] += time.Since(g.activeStart)
	g.activePass = nil
	g.activeName = ""
}

// Execute ends any active pass, binds the graph's output target (or the
// default backbuffer), records total frame time, publishes last-frame
// stats, and marks the frame inactive. Calling Execute after Shutdown, or
// without a preceding Begin, is a warning with no effect.
func (g *Graph) Execute() {
	if g.shutdown {
		g.log.Warnf("render graph: execute called after shutdown, ignoring")
		return
	}
	if !g.frameActive {
		g.log.Warnf("render graph: execute called without an active frame, ignoring")
		return
	}
	g.EndPass()

	if g.hasOutputFB {
		g.backend.BindFramebuffer(g.outputFB)
	} else {
		g.backend.BindFramebuffer(0)
	}

	g.lastFrameTime = time.Since(g.frameStart)
	g.lastPassTimes = g.passTimes
	g.frameCount++
	g.frameActive = false
}

// Stats returns the stats published by the most recent Execute call.
func (g *Graph) Stats() Stats {
	return Stats{FrameTime: g.lastFrameTime, PassTimes: g.lastPassTimes, FrameCount: g.frameCount}
}

// Shutdown marks the graph as torn down; subsequent begin_pass/execute
// calls are warnings with no effect, and end_pass has no effect.
func (g *Graph) Shutdown() {
	g.EndPass()
	g.shutdown = true
	g.frameActive = false
}
