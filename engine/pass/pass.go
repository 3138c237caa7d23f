// package pass implements the Render Pass scoped target+state wrapper
// (spec §4.6): begin binds a target and applies state, end restores
// engine-default state. At most one Pass is active at a time across a
// shared Tracker, mirroring the renderer state cache pattern already used
// by the WGPU backend for redundant-call elision.
package pass

import (
	"github.com/oxycore/engine/engine/logx"
	"github.com/oxycore/engine/engine/rendercmd"
)

// Spec describes a scoped target+state configuration a Pass applies on
// begin and tears down on end.
type Spec struct {
	Name string

	// Target is the framebuffer to render into; it is used only when
	// HasTarget is set. With HasTarget false, begin/end only apply state and
	// never touch the current framebuffer binding (spec §4.6, e.g. rendering
	// into a caller-bound backbuffer).
	Target rendercmd.Handle
	HasTarget bool

	ClearFlags   rendercmd.ClearFlags
	ClearColor   [4]float32
	ClearDepth   float32
	ClearStencil int32

	Viewport        [4]int32 // x, y, width, height
	ViewportOverride bool

	Depth DepthSpec
	Blend rendercmd.BlendState
	Cull  rendercmd.CullState
}

// DepthSpec is the depth configuration a pass applies, distinct from
// rendercmd.DepthState only in that it is the author's declared intent;
// Pass.begin converts it 1:1 into a rendercmd.DepthState.
type DepthSpec = rendercmd.DepthState

// Tracker holds the shared "is any pass active" slot that every Pass
// begin/end call coordinates through, so a second begin can detect and
// implicitly end the first (spec §4.6: "a new begin while a pass is
// active implicitly ends the previous pass").
type Tracker struct {
	log    logx.Logger
	active *Pass
}

// NewTracker constructs a Tracker. A nil logger falls back to logx.Nop.
func NewTracker(log logx.Logger) *Tracker {
	if log == nil {
		log = logx.Nop
	}
	return &Tracker{log: log}
}

// Pass wraps one Spec's lifecycle against a Backend, coordinated through a
// shared Tracker.
type Pass struct {
	tracker *Tracker
	spec    Spec
	backend rendercmd.Backend
	active  bool
}

// New constructs a Pass bound to spec, ready for Begin.
func New(tracker *Tracker, backend rendercmd.Backend, spec Spec) *Pass {
	return &Pass{tracker: tracker, backend: backend, spec: spec}
}

// Begin applies the pass's target, clears, and state, per spec §4.6:
//  1. If a target framebuffer is attached, bind it. If a target is attached
//     or ViewportOverride is set, set the viewport to the spec's Viewport.
//  2. If clear flags are non-zero, clear the bound target.
//  3. Apply depth, blend, and cull state.
//  4. Mark the pass active.
//
// If another pass is already active on the same tracker, it is implicitly
// ended first and the occurrence logged as a diagnostic.
func (p *Pass) Begin() {
	if p.tracker.active != nil && p.tracker.active != p {
		p.tracker.log.Warnf("pass %q begun while pass %q was still active; ending it implicitly", p.spec.Name, p.tracker.active.spec.Name)
		p.tracker.active.End()
	}

	if p.spec.HasTarget {
		p.backend.BindFramebuffer(p.spec.Target)
	}
	if p.spec.ViewportOverride || p.spec.HasTarget {
		v := p.spec.Viewport
		p.backend.SetViewport(v[0], v[1], v[2], v[3])
	}
	if p.spec.ClearFlags != 0 {
		p.backend.Clear(p.spec.ClearFlags, p.spec.ClearColor, p.spec.ClearDepth, p.spec.ClearStencil)
	}

	p.backend.SetDepthState(p.spec.Depth)
	p.backend.SetBlendState(p.spec.Blend)
	p.backend.SetCullState(p.spec.Cull)

	p.active = true
	p.tracker.active = p
}

// End restores engine-default depth/blend/cull state and marks the pass
// inactive. Calling End on a Pass that is not the tracker's active pass
// (including one already ended) is a no-op.
func (p *Pass) End() {
	if !p.active {
		return
	}
	p.backend.SetDepthState(rendercmd.DefaultDepthState)
	p.backend.SetBlendState(rendercmd.DefaultBlendState)
	p.backend.SetCullState(rendercmd.DefaultCullState)

	p.active = false
	if p.tracker.active == p {
		p.tracker.active = nil
	}
}

// Active reports whether this pass is the tracker's currently active pass.
func (p *Pass) Active() bool { return p.active }
