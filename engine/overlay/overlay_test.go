package overlay_test

import (
	"testing"
	"unsafe"

	"github.com/oxycore/engine/engine/batch2d"
	"github.com/oxycore/engine/engine/graph"
	"github.com/oxycore/engine/engine/logx"
	"github.com/oxycore/engine/engine/pass"
	"github.com/oxycore/engine/engine/rendercmd"
)

// fakeBackend is a minimal rendercmd.Backend, in the style of
// batch2d.fakeBackend, used to exercise Overlay's Queue/Graph/Batcher
// wiring without a real GPU device. It is NOT overlay.WGPUBackend — that
// type is exercised end to end only by a real wgpu device, same as the
// teacher's wgpu_renderer_backend.go carries no unit tests of its own.
type fakeBackend struct {
	mapped      []byte
	nextHandle  rendercmd.Handle
	draws       []int32
	fences      int
	order       []string
	boundFB     rendercmd.Handle
	depthCalls  []rendercmd.DepthState
	blendCalls  []rendercmd.BlendState
}

func newFakeBackend() *fakeBackend { return &fakeBackend{} }

func (b *fakeBackend) Clear(rendercmd.ClearFlags, [4]float32, float32, int32) { b.order = append(b.order, "Clear") }
func (b *fakeBackend) SetViewport(int32, int32, int32, int32)                { b.order = append(b.order, "SetViewport") }
func (b *fakeBackend) SetScissor(int32, int32, int32, int32)                 {}
func (b *fakeBackend) DrawArrays(topology rendercmd.Topology, first, count, instances int32) {
	b.draws = append(b.draws, instances)
	b.order = append(b.order, "DrawArrays")
}
func (b *fakeBackend) DrawIndexed(rendercmd.Topology, int32, int32, int32, int32, int32) {}
func (b *fakeBackend) GenBuffers(n int) []rendercmd.Handle {
	out := make([]rendercmd.Handle, n)
	for i := range out {
		b.nextHandle++
		out[i] = b.nextHandle
	}
	return out
}
func (b *fakeBackend) DeleteBuffers([]rendercmd.Handle)                    {}
func (b *fakeBackend) BindBuffer(rendercmd.BufferTarget, rendercmd.Handle) {}
func (b *fakeBackend) BufferData(rendercmd.BufferTarget, []byte, rendercmd.BufferUsage) {}
func (b *fakeBackend) BufferSubData(rendercmd.BufferTarget, int64, []byte) {}
func (b *fakeBackend) BufferStorage(target rendercmd.BufferTarget, size int64, flags rendercmd.AccessFlags) error {
	b.mapped = make([]byte, size)
	return nil
}
func (b *fakeBackend) MapBufferRange(target rendercmd.BufferTarget, offset, length int64, access rendercmd.AccessFlags) (unsafe.Pointer, error) {
	if len(b.mapped) == 0 {
		b.mapped = make([]byte, offset+length)
	}
	return unsafe.Pointer(&b.mapped[0]), nil
}
func (b *fakeBackend) UnmapBuffer(rendercmd.BufferTarget) {}
func (b *fakeBackend) FenceSync() rendercmd.SyncHandle {
	b.fences++
	return rendercmd.SyncHandle(b.fences)
}
func (b *fakeBackend) ClientWaitSync(rendercmd.SyncHandle, int64) rendercmd.WaitStatus {
	return rendercmd.WaitConditionSatisfied
}
func (b *fakeBackend) DeleteSync(rendercmd.SyncHandle)                              {}
func (b *fakeBackend) BindIndexBuffer(rendercmd.Handle, rendercmd.IndexType, int64) {}
func (b *fakeBackend) VertexAttribPointer(int, int, bool, int32, int64)             {}
func (b *fakeBackend) VertexAttribIPointer(int, int, int32, int64)                  {}
func (b *fakeBackend) VertexAttribDivisor(int, int)                                 {}
func (b *fakeBackend) EnableVertexAttribArray(int)                                  {}
func (b *fakeBackend) GenVertexArrays(n int) []rendercmd.Handle {
	b.nextHandle++
	return []rendercmd.Handle{b.nextHandle}
}
func (b *fakeBackend) DeleteVertexArrays([]rendercmd.Handle) {}
func (b *fakeBackend) BindVertexArray(rendercmd.Handle)      {}
func (b *fakeBackend) BindShader(rendercmd.Handle)           { b.order = append(b.order, "BindShader") }
func (b *fakeBackend) GenTextures(n int) []rendercmd.Handle {
	out := make([]rendercmd.Handle, n)
	for i := range out {
		b.nextHandle++
		out[i] = b.nextHandle
	}
	return out
}
func (b *fakeBackend) DeleteTextures([]rendercmd.Handle)                           {}
func (b *fakeBackend) BindTextureTarget(rendercmd.TextureTarget, rendercmd.Handle) {}
func (b *fakeBackend) BindTexture(int, rendercmd.Handle)                           {}
func (b *fakeBackend) TexImage2D(rendercmd.TextureTarget, int, int32, int32, []byte) {
	b.order = append(b.order, "TexImage2D")
}
func (b *fakeBackend) TexParameteri(rendercmd.TextureTarget, int32, int32) {}
func (b *fakeBackend) GenerateMipmap(rendercmd.TextureTarget)              {}
func (b *fakeBackend) GenFramebuffers(n int) []rendercmd.Handle            { return make([]rendercmd.Handle, n) }
func (b *fakeBackend) DeleteFramebuffers([]rendercmd.Handle)               {}
func (b *fakeBackend) BindFramebuffer(h rendercmd.Handle) {
	b.boundFB = h
	b.order = append(b.order, "BindFramebuffer")
}
func (b *fakeBackend) FramebufferTexture2D(int32, rendercmd.TextureTarget, rendercmd.Handle, int) {}
func (b *fakeBackend) CheckFramebufferStatus() error                               { return nil }
func (b *fakeBackend) SetDrawBuffers([]int32)                                      {}
func (b *fakeBackend) BindBufferBase(rendercmd.BufferTarget, int, rendercmd.Handle) {}
func (b *fakeBackend) SetDepthState(s rendercmd.DepthState) { b.depthCalls = append(b.depthCalls, s) }
func (b *fakeBackend) SetBlendState(s rendercmd.BlendState) { b.blendCalls = append(b.blendCalls, s) }
func (b *fakeBackend) SetCullState(rendercmd.CullState)     {}
func (b *fakeBackend) PushDebugGroup(string)                {}
func (b *fakeBackend) PopDebugGroup()                       {}

var _ rendercmd.Backend = (*fakeBackend)(nil)

// fakeCommand is the one rendercmd.Command exercised via Overlay.SubmitAsync.
type fakeCommand struct{ ran *bool }

func (c fakeCommand) Execute(rendercmd.Backend) error {
	*c.ran = true
	return nil
}
func (c fakeCommand) DebugName() string      { return "fakeCommand" }
func (c fakeCommand) EstimatedCost() float32 { return 0 }

func TestQueuedCommandRunsAfterBeginFrameProcess(t *testing.T) {
	b := newFakeBackend()
	var ran bool

	q := rendercmd.New(rendercmd.WithRenderThread(0), rendercmd.WithLogger(logx.Nop))
	q.Submit(0, fakeCommand{ran: &ran})
	q.BeginFrame()
	q.Process(b, q.Depth())

	if !ran {
		t.Fatalf("queued command did not run after BeginFrame/Process")
	}
}

func TestBatcherDrawsThroughFakeBackendWithNoTexture(t *testing.T) {
	b := newFakeBackend()
	bat := batch2d.New(b, nil, batch2d.WithLogger(logx.Nop), batch2d.WithMaxTextureSlots(2))

	bat.SetCamera(batch2d.Camera{ViewportWidth: 100, ViewportHeight: 100})
	bat.BeginScene()
	bat.DrawQuad([2]float32{10, 10}, [2]float32{5, 5}, [4]float32{1, 1, 1, 1}, 0, [3]float32{}, 0)
	bat.EndScene()

	if len(b.draws) != 1 {
		t.Fatalf("draws = %d, want 1", len(b.draws))
	}
	if b.draws[0] != 1 {
		t.Fatalf("instances = %d, want 1", b.draws[0])
	}
}

func TestGraphAppliesOverlayBlendStateOnBeginPass(t *testing.T) {
	b := newFakeBackend()
	g := graph.New(b, logx.Nop)
	g.AddPass(pass.Spec{
		Name:      "overlay2d",
		HasTarget: false,
		Blend: rendercmd.BlendState{
			Enabled:   true,
			SrcFactor: rendercmd.BlendSrcAlpha,
			DstFactor: rendercmd.BlendOneMinusSrcAlpha,
			Op:        rendercmd.BlendOpAdd,
		},
		Cull: rendercmd.DefaultCullState,
	})

	g.Begin()
	g.BeginPass("overlay2d")
	g.Execute()

	if len(b.blendCalls) == 0 {
		t.Fatalf("SetBlendState was never called")
	}
	got := b.blendCalls[0]
	if !got.Enabled || got.SrcFactor != rendercmd.BlendSrcAlpha || got.DstFactor != rendercmd.BlendOneMinusSrcAlpha {
		t.Fatalf("blend state = %+v, want enabled src-alpha/one-minus-src-alpha blend", got)
	}
	// HasTarget: false must never touch the framebuffer binding (spec §4.6).
	for _, call := range b.order {
		if call == "BindFramebuffer" && b.boundFB != 0 {
			t.Fatalf("pass with HasTarget=false bound a non-zero framebuffer")
		}
	}
}
