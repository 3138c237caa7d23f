package pass_test

import (
	"testing"
	"unsafe"

	"github.com/oxycore/engine/engine/pass"
	"github.com/oxycore/engine/engine/rendercmd"
)

// stateBackend is a no-op rendercmd.Backend that only records the state
// last applied via SetDepthState/SetBlendState/SetCullState and whether
// Clear/BindFramebuffer were called, enough to assert Pass's contract.
type stateBackend struct {
	depth rendercmd.DepthState
	blend rendercmd.BlendState
	cull  rendercmd.CullState

	cleared       bool
	boundFBHandle rendercmd.Handle
	viewport      [4]int32
}

func (b *stateBackend) Clear(rendercmd.ClearFlags, [4]float32, float32, int32) { b.cleared = true }
func (b *stateBackend) SetViewport(x, y, w, h int32)                          { b.viewport = [4]int32{x, y, w, h} }
func (b *stateBackend) SetScissor(int32, int32, int32, int32)                 {}
func (b *stateBackend) DrawArrays(rendercmd.Topology, int32, int32, int32)    {}
func (b *stateBackend) DrawIndexed(rendercmd.Topology, int32, int32, int32, int32, int32) {}
func (b *stateBackend) GenBuffers(n int) []rendercmd.Handle                   { return make([]rendercmd.Handle, n) }
func (b *stateBackend) DeleteBuffers([]rendercmd.Handle)                      {}
func (b *stateBackend) BindBuffer(rendercmd.BufferTarget, rendercmd.Handle)   {}
func (b *stateBackend) BufferData(rendercmd.BufferTarget, []byte, rendercmd.BufferUsage) {}
func (b *stateBackend) BufferSubData(rendercmd.BufferTarget, int64, []byte)   {}
func (b *stateBackend) BufferStorage(rendercmd.BufferTarget, int64, rendercmd.AccessFlags) error {
	return nil
}
func (b *stateBackend) MapBufferRange(rendercmd.BufferTarget, int64, int64, rendercmd.AccessFlags) (unsafe.Pointer, error) {
	return nil, nil
}
func (b *stateBackend) UnmapBuffer(rendercmd.BufferTarget)                   {}
func (b *stateBackend) FenceSync() rendercmd.SyncHandle                      { return 0 }
func (b *stateBackend) ClientWaitSync(rendercmd.SyncHandle, int64) rendercmd.WaitStatus {
	return rendercmd.WaitConditionSatisfied
}
func (b *stateBackend) DeleteSync(rendercmd.SyncHandle)                           {}
func (b *stateBackend) BindIndexBuffer(rendercmd.Handle, rendercmd.IndexType, int64) {}
func (b *stateBackend) VertexAttribPointer(int, int, bool, int32, int64)          {}
func (b *stateBackend) VertexAttribIPointer(int, int, int32, int64)               {}
func (b *stateBackend) VertexAttribDivisor(int, int)                              {}
func (b *stateBackend) EnableVertexAttribArray(int)                               {}
func (b *stateBackend) GenVertexArrays(n int) []rendercmd.Handle                  { return make([]rendercmd.Handle, n) }
func (b *stateBackend) DeleteVertexArrays([]rendercmd.Handle)                     {}
func (b *stateBackend) BindVertexArray(rendercmd.Handle)                         {}
func (b *stateBackend) BindShader(rendercmd.Handle)                              {}
func (b *stateBackend) GenTextures(n int) []rendercmd.Handle                      { return make([]rendercmd.Handle, n) }
func (b *stateBackend) DeleteTextures([]rendercmd.Handle)                         {}
func (b *stateBackend) BindTextureTarget(rendercmd.TextureTarget, rendercmd.Handle) {}
func (b *stateBackend) BindTexture(int, rendercmd.Handle)                        {}
func (b *stateBackend) TexImage2D(rendercmd.TextureTarget, int, int32, int32, []byte) {}
func (b *stateBackend) TexParameteri(rendercmd.TextureTarget, int32, int32)       {}
func (b *stateBackend) GenerateMipmap(rendercmd.TextureTarget)                    {}
func (b *stateBackend) GenFramebuffers(n int) []rendercmd.Handle                  { return make([]rendercmd.Handle, n) }
func (b *stateBackend) DeleteFramebuffers([]rendercmd.Handle)                     {}
func (b *stateBackend) BindFramebuffer(h rendercmd.Handle)                       { b.boundFBHandle = h }
func (b *stateBackend) FramebufferTexture2D(int32, rendercmd.TextureTarget, rendercmd.Handle, int) {}
func (b *stateBackend) CheckFramebufferStatus() error                            { return nil }
func (b *stateBackend) SetDrawBuffers([]int32)                                   {}
func (b *stateBackend) BindBufferBase(rendercmd.BufferTarget, int, rendercmd.Handle) {}
func (b *stateBackend) SetDepthState(s rendercmd.DepthState)                     { b.depth = s }
func (b *stateBackend) SetBlendState(s rendercmd.BlendState)                     { b.blend = s }
func (b *stateBackend) SetCullState(s rendercmd.CullState)                       { b.cull = s }
func (b *stateBackend) PushDebugGroup(string)                                    {}
func (b *stateBackend) PopDebugGroup()                                           {}

var _ rendercmd.Backend = (*stateBackend)(nil)

func TestBeginEndRestoresEngineDefaults(t *testing.T) {
	tracker := pass.NewTracker(nil)
	b := &stateBackend{}

	p := pass.New(tracker, b, pass.Spec{
		Name:  "opaque",
		Blend: rendercmd.BlendState{Enabled: true, SrcFactor: rendercmd.BlendOne, DstFactor: rendercmd.BlendZero},
		Depth: rendercmd.DepthState{Test: false, Write: false, Compare: rendercmd.CompareAlways},
		Cull:  rendercmd.CullState{Mode: rendercmd.CullBack},
	})
	p.Begin()
	if b.depth.Test != false || !b.blend.Enabled {
		t.Fatalf("begin did not apply spec state: depth=%+v blend=%+v", b.depth, b.blend)
	}
	p.End()

	if b.depth != rendercmd.DefaultDepthState {
		t.Fatalf("depth after end = %+v, want defaults %+v", b.depth, rendercmd.DefaultDepthState)
	}
	if b.blend != rendercmd.DefaultBlendState {
		t.Fatalf("blend after end = %+v, want defaults %+v", b.blend, rendercmd.DefaultBlendState)
	}
	if b.cull != rendercmd.DefaultCullState {
		t.Fatalf("cull after end = %+v, want defaults %+v", b.cull, rendercmd.DefaultCullState)
	}
	if p.Active() {
		t.Fatal("pass should be inactive after end")
	}
}

func TestSecondBeginImplicitlyEndsFirst(t *testing.T) {
	tracker := pass.NewTracker(nil)
	b := &stateBackend{}

	first := pass.New(tracker, b, pass.Spec{Name: "shadow"})
	second := pass.New(tracker, b, pass.Spec{Name: "opaque"})

	first.Begin()
	if !first.Active() {
		t.Fatal("first pass should be active after begin")
	}
	second.Begin()

	if first.Active() {
		t.Fatal("first pass should have been implicitly ended by second's begin")
	}
	if !second.Active() {
		t.Fatal("second pass should be active")
	}
}

func TestNoTargetLeavesFramebufferBindingUntouched(t *testing.T) {
	tracker := pass.NewTracker(nil)
	b := &stateBackend{boundFBHandle: 77}

	p := pass.New(tracker, b, pass.Spec{Name: "backbuffer"})
	p.Begin()

	if b.boundFBHandle != 77 {
		t.Fatalf("framebuffer binding changed to %d despite no target attached", b.boundFBHandle)
	}
}

func TestEndWithoutBeginIsNoOp(t *testing.T) {
	tracker := pass.NewTracker(nil)
	b := &stateBackend{depth: rendercmd.DepthState{Compare: rendercmd.CompareNever}}

	p := pass.New(tracker, b, pass.Spec{Name: "unused"})
	p.End()

	if b.depth.Compare != rendercmd.CompareNever {
		t.Fatal("End on a never-begun pass should not touch backend state")
	}
}
