package batch2d_test

import (
	"testing"
	"unsafe"

	"github.com/oxycore/engine/engine/batch2d"
	"github.com/oxycore/engine/engine/logx"
	"github.com/oxycore/engine/engine/rendercmd"
)

// fakeBackend is a minimal rendercmd.Backend that backs MapBufferRange
// with a real allocated buffer (so the batcher's instance writes are
// observable) and counts draws/fences for assertions.
type fakeBackend struct {
	mapped        []byte
	nextHandle    rendercmd.Handle
	draws         []drawCall
	boundTextures map[int]rendercmd.Handle
	fenceCount    int
	waitedFences  []rendercmd.SyncHandle
	attribBase    int64 // last location-2 VertexAttribPointer offset seen, i.e. base+0
}

type drawCall struct {
	instances  int32
	attribBase int64 // the record-base byte offset bound when this draw was issued
}

func newFakeBackend() *fakeBackend {
	return &fakeBackend{boundTextures: make(map[int]rendercmd.Handle)}
}

func (b *fakeBackend) Clear(rendercmd.ClearFlags, [4]float32, float32, int32) {}
func (b *fakeBackend) SetViewport(int32, int32, int32, int32)                {}
func (b *fakeBackend) SetScissor(int32, int32, int32, int32)                 {}
func (b *fakeBackend) DrawArrays(topology rendercmd.Topology, first, count, instances int32) {
	b.draws = append(b.draws, drawCall{instances: instances, attribBase: b.attribBase})
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
	return unsafe.Pointer(&b.mapped[0]), nil
}
func (b *fakeBackend) UnmapBuffer(rendercmd.BufferTarget) {}
func (b *fakeBackend) FenceSync() rendercmd.SyncHandle {
	b.fenceCount++
	return rendercmd.SyncHandle(b.fenceCount)
}
func (b *fakeBackend) ClientWaitSync(h rendercmd.SyncHandle, timeoutNs int64) rendercmd.WaitStatus {
	b.waitedFences = append(b.waitedFences, h)
	return rendercmd.WaitConditionSatisfied
}
func (b *fakeBackend) DeleteSync(rendercmd.SyncHandle)                                {}
func (b *fakeBackend) BindIndexBuffer(rendercmd.Handle, rendercmd.IndexType, int64) {}
func (b *fakeBackend) VertexAttribPointer(loc, size int, normalized bool, stride int32, offset int64) {
	if loc == 2 { // first instance attribute, bound at base+0: tracks the bound record base directly
		b.attribBase = offset
	}
}
func (b *fakeBackend) VertexAttribIPointer(int, int, int32, int64)                    {}
func (b *fakeBackend) VertexAttribDivisor(int, int)                                   {}
func (b *fakeBackend) EnableVertexAttribArray(int)                                    {}
func (b *fakeBackend) GenVertexArrays(n int) []rendercmd.Handle {
	b.nextHandle++
	return []rendercmd.Handle{b.nextHandle}
}
func (b *fakeBackend) DeleteVertexArrays([]rendercmd.Handle) {}
func (b *fakeBackend) BindVertexArray(rendercmd.Handle)      {}
func (b *fakeBackend) BindShader(rendercmd.Handle)           {}
func (b *fakeBackend) GenTextures(n int) []rendercmd.Handle {
	out := make([]rendercmd.Handle, n)
	for i := range out {
		b.nextHandle++
		out[i] = b.nextHandle
	}
	return out
}
func (b *fakeBackend) DeleteTextures([]rendercmd.Handle)                         {}
func (b *fakeBackend) BindTextureTarget(rendercmd.TextureTarget, rendercmd.Handle) {}
func (b *fakeBackend) BindTexture(slot int, h rendercmd.Handle)                  { b.boundTextures[slot] = h }
func (b *fakeBackend) TexImage2D(rendercmd.TextureTarget, int, int32, int32, []byte) {}
func (b *fakeBackend) TexParameteri(rendercmd.TextureTarget, int32, int32)       {}
func (b *fakeBackend) GenerateMipmap(rendercmd.TextureTarget)                    {}
func (b *fakeBackend) GenFramebuffers(n int) []rendercmd.Handle                  { return make([]rendercmd.Handle, n) }
func (b *fakeBackend) DeleteFramebuffers([]rendercmd.Handle)                     {}
func (b *fakeBackend) BindFramebuffer(rendercmd.Handle)                         {}
func (b *fakeBackend) FramebufferTexture2D(int32, rendercmd.TextureTarget, rendercmd.Handle, int) {}
func (b *fakeBackend) CheckFramebufferStatus() error                            { return nil }
func (b *fakeBackend) SetDrawBuffers([]int32)                                   {}
func (b *fakeBackend) BindBufferBase(rendercmd.BufferTarget, int, rendercmd.Handle) {}
func (b *fakeBackend) SetDepthState(rendercmd.DepthState) {}
func (b *fakeBackend) SetBlendState(rendercmd.BlendState) {}
func (b *fakeBackend) SetCullState(rendercmd.CullState)   {}
func (b *fakeBackend) PushDebugGroup(string)              {}
func (b *fakeBackend) PopDebugGroup()                     {}

var _ rendercmd.Backend = (*fakeBackend)(nil)

func newTestBatcher(b *fakeBackend, opts ...batch2d.BuilderOption) *batch2d.Batcher {
	opts = append([]batch2d.BuilderOption{batch2d.WithLogger(logx.Nop)}, opts...)
	return batch2d.New(b, nil, opts...)
}

func TestSingleDrawBatchForManyQuads(t *testing.T) {
	b := newFakeBackend()
	bat := newTestBatcher(b, batch2d.WithMaxQuads(4096), batch2d.WithMaxTextureSlots(16))

	bat.BeginScene()
	for i := 0; i < 100; i++ {
		bat.DrawQuad([2]float32{float32(i), 0}, [2]float32{1, 1}, [4]float32{1, 1, 1, 1}, 0, [3]float32{}, 0)
	}
	bat.EndScene()

	if len(b.draws) != 1 {
		t.Fatalf("draws = %d, want 1", len(b.draws))
	}
	if b.draws[0].instances != 100 {
		t.Fatalf("instances = %d, want 100", b.draws[0].instances)
	}
	if b.fenceCount != 1 {
		t.Fatalf("fences recorded = %d, want 1", b.fenceCount)
	}
}

func TestEmptySceneIssuesNoDrawsOrFences(t *testing.T) {
	b := newFakeBackend()
	bat := newTestBatcher(b)

	bat.BeginScene()
	bat.EndScene()

	if len(b.draws) != 0 {
		t.Fatalf("draws = %d, want 0", len(b.draws))
	}
	if b.fenceCount != 0 {
		t.Fatalf("fences = %d, want 0 (end_scene with zero draws records zero fences)", b.fenceCount)
	}
}

func TestTextureSlotRollover(t *testing.T) {
	b := newFakeBackend()
	bat := newTestBatcher(b, batch2d.WithMaxTextureSlots(4)) // slot 0 = white, 3 app slots

	bat.BeginScene()
	for i := 0; i < 5; i++ {
		tex := rendercmd.Handle(1000 + i) // offset well clear of internally allocated handles (vb/vao/white texture)
		bat.DrawQuad([2]float32{}, [2]float32{1, 1}, [4]float32{1, 1, 1, 1}, tex, [3]float32{}, 0)
	}
	bat.EndScene()

	if len(b.draws) != 2 {
		t.Fatalf("draws = %d, want 2 (4 then 1 after the texture slot reset)", len(b.draws))
	}
	if b.draws[0].instances != 3 || b.draws[1].instances != 2 {
		t.Fatalf("instances per draw = %v, want [3 2] (3 distinct textures fit before rollover at the 4th)", b.draws)
	}
	if b.draws[1].attribBase <= b.draws[0].attribBase {
		t.Fatalf("second draw's attribute base = %d, want it past the first draw's base %d (each sub-batch must read its own records, not re-read the first)", b.draws[1].attribBase, b.draws[0].attribBase)
	}
	if got := bat.Stats().TextureRollovers; got != 1 {
		t.Fatalf("rollovers = %d, want 1", got)
	}
}

func TestBeginSceneWaitsOnOutstandingFence(t *testing.T) {
	b := newFakeBackend()
	bat := newTestBatcher(b, batch2d.WithFramesInFlight(1)) // force chunk reuse on every scene

	bat.BeginScene()
	bat.DrawQuad([2]float32{}, [2]float32{1, 1}, [4]float32{1, 1, 1, 1}, 0, [3]float32{}, 0)
	bat.EndScene()

	bat.BeginScene() // same chunk (N=1): must wait on the fence from the first scene
	bat.EndScene()

	if len(b.waitedFences) != 1 {
		t.Fatalf("waited fences = %d, want 1", len(b.waitedFences))
	}
}

func TestRotationCacheReturnsConsistentValues(t *testing.T) {
	b := newFakeBackend()
	bat := newTestBatcher(b)

	bat.BeginScene()
	for i := 0; i < 50; i++ {
		bat.DrawQuad([2]float32{float32(i), 0}, [2]float32{1, 1}, [4]float32{1, 1, 1, 1}, 0, [3]float32{0, 0, 0.5}, 0)
	}
	bat.EndScene()
	// 50 quads sharing one rotation should still collapse into one draw;
	// a cache bug that corrupted shared state would likely show up as a
	// panic (out-of-range write) rather than a subtly wrong count here.
	if len(b.draws) != 1 || b.draws[0].instances != 50 {
		t.Fatalf("draws = %v, want one draw of 50 instances", b.draws)
	}
}
