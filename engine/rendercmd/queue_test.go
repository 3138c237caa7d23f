package rendercmd_test

import (
	"errors"
	"testing"
	"unsafe"

	"github.com/oxycore/engine/engine/logx"
	"github.com/oxycore/engine/engine/rendercmd"
)

// recordingBackend implements rendercmd.Backend, appending the name of
// every call it receives to order, for asserting execution sequencing.
type recordingBackend struct {
	order []string
}

func (r *recordingBackend) Clear(rendercmd.ClearFlags, [4]float32, float32, int32) { r.order = append(r.order, "Clear") }
func (r *recordingBackend) SetViewport(int32, int32, int32, int32)                { r.order = append(r.order, "SetViewport") }
func (r *recordingBackend) SetScissor(int32, int32, int32, int32)                 { r.order = append(r.order, "SetScissor") }
func (r *recordingBackend) DrawArrays(rendercmd.Topology, int32, int32, int32)    { r.order = append(r.order, "DrawArrays") }
func (r *recordingBackend) DrawIndexed(rendercmd.Topology, int32, int32, int32, int32, int32) {
	r.order = append(r.order, "DrawIndexed")
}
func (r *recordingBackend) GenBuffers(n int) []rendercmd.Handle {
	r.order = append(r.order, "GenBuffers")
	out := make([]rendercmd.Handle, n)
	for i := range out {
		out[i] = rendercmd.Handle(i + 1)
	}
	return out
}
func (r *recordingBackend) DeleteBuffers([]rendercmd.Handle)                  { r.order = append(r.order, "DeleteBuffers") }
func (r *recordingBackend) BindBuffer(rendercmd.BufferTarget, rendercmd.Handle) {
	r.order = append(r.order, "BindBuffer")
}
func (r *recordingBackend) BufferData(rendercmd.BufferTarget, []byte, rendercmd.BufferUsage) {
	r.order = append(r.order, "BufferData")
}
func (r *recordingBackend) BufferSubData(rendercmd.BufferTarget, int64, []byte) {
	r.order = append(r.order, "BufferSubData")
}
func (r *recordingBackend) BufferStorage(rendercmd.BufferTarget, int64, rendercmd.AccessFlags) error {
	r.order = append(r.order, "BufferStorage")
	return nil
}
func (r *recordingBackend) MapBufferRange(rendercmd.BufferTarget, int64, int64, rendercmd.AccessFlags) (unsafe.Pointer, error) {
	r.order = append(r.order, "MapBufferRange")
	return nil, nil
}
func (r *recordingBackend) UnmapBuffer(rendercmd.BufferTarget) { r.order = append(r.order, "UnmapBuffer") }
func (r *recordingBackend) FenceSync() rendercmd.SyncHandle {
	r.order = append(r.order, "FenceSync")
	return 1
}
func (r *recordingBackend) ClientWaitSync(rendercmd.SyncHandle, int64) rendercmd.WaitStatus {
	r.order = append(r.order, "ClientWaitSync")
	return rendercmd.WaitConditionSatisfied
}
func (r *recordingBackend) DeleteSync(rendercmd.SyncHandle) { r.order = append(r.order, "DeleteSync") }
func (r *recordingBackend) BindIndexBuffer(rendercmd.Handle, rendercmd.IndexType, int64) {
	r.order = append(r.order, "BindIndexBuffer")
}
func (r *recordingBackend) VertexAttribPointer(int, int, bool, int32, int64) {
	r.order = append(r.order, "VertexAttribPointer")
}
func (r *recordingBackend) VertexAttribIPointer(int, int, int32, int64) {
	r.order = append(r.order, "VertexAttribIPointer")
}
func (r *recordingBackend) VertexAttribDivisor(int, int) { r.order = append(r.order, "VertexAttribDivisor") }
func (r *recordingBackend) EnableVertexAttribArray(int)  { r.order = append(r.order, "EnableVertexAttribArray") }
func (r *recordingBackend) GenVertexArrays(n int) []rendercmd.Handle {
	r.order = append(r.order, "GenVertexArrays")
	return make([]rendercmd.Handle, n)
}
func (r *recordingBackend) DeleteVertexArrays([]rendercmd.Handle) { r.order = append(r.order, "DeleteVertexArrays") }
func (r *recordingBackend) BindVertexArray(rendercmd.Handle)      { r.order = append(r.order, "BindVertexArray") }
func (r *recordingBackend) BindShader(rendercmd.Handle)           { r.order = append(r.order, "BindShader") }
func (r *recordingBackend) GenTextures(n int) []rendercmd.Handle {
	r.order = append(r.order, "GenTextures")
	return make([]rendercmd.Handle, n)
}
func (r *recordingBackend) DeleteTextures([]rendercmd.Handle) { r.order = append(r.order, "DeleteTextures") }
func (r *recordingBackend) BindTextureTarget(rendercmd.TextureTarget, rendercmd.Handle) {
	r.order = append(r.order, "BindTextureTarget")
}
func (r *recordingBackend) BindTexture(int, rendercmd.Handle) { r.order = append(r.order, "BindTexture") }
func (r *recordingBackend) TexImage2D(rendercmd.TextureTarget, int, int32, int32, []byte) {
	r.order = append(r.order, "TexImage2D")
}
func (r *recordingBackend) TexParameteri(rendercmd.TextureTarget, int32, int32) {
	r.order = append(r.order, "TexParameteri")
}
func (r *recordingBackend) GenerateMipmap(rendercmd.TextureTarget) { r.order = append(r.order, "GenerateMipmap") }
func (r *recordingBackend) GenFramebuffers(n int) []rendercmd.Handle {
	r.order = append(r.order, "GenFramebuffers")
	return make([]rendercmd.Handle, n)
}
func (r *recordingBackend) DeleteFramebuffers([]rendercmd.Handle) { r.order = append(r.order, "DeleteFramebuffers") }
func (r *recordingBackend) BindFramebuffer(rendercmd.Handle)      { r.order = append(r.order, "BindFramebuffer") }
func (r *recordingBackend) FramebufferTexture2D(int32, rendercmd.TextureTarget, rendercmd.Handle, int) {
	r.order = append(r.order, "FramebufferTexture2D")
}
func (r *recordingBackend) CheckFramebufferStatus() error {
	r.order = append(r.order, "CheckFramebufferStatus")
	return nil
}
func (r *recordingBackend) SetDrawBuffers([]int32) { r.order = append(r.order, "SetDrawBuffers") }
func (r *recordingBackend) BindBufferBase(rendercmd.BufferTarget, int, rendercmd.Handle) {
	r.order = append(r.order, "BindBufferBase")
}
func (r *recordingBackend) SetDepthState(rendercmd.DepthState) { r.order = append(r.order, "SetDepthState") }
func (r *recordingBackend) SetBlendState(rendercmd.BlendState) { r.order = append(r.order, "SetBlendState") }
func (r *recordingBackend) SetCullState(rendercmd.CullState)   { r.order = append(r.order, "SetCullState") }
func (r *recordingBackend) PushDebugGroup(string)              { r.order = append(r.order, "PushDebugGroup") }
func (r *recordingBackend) PopDebugGroup()                     { r.order = append(r.order, "PopDebugGroup") }

var _ rendercmd.Backend = (*recordingBackend)(nil)

// failingCommand always fails Execute, to verify a command failure does
// not corrupt queue state or stop the drain.
type failingCommand struct{}

func (failingCommand) Execute(rendercmd.Backend) error { return errors.New("boom") }
func (failingCommand) DebugName() string               { return "Failing" }
func (failingCommand) EstimatedCost() float32           { return 0 }

func TestExecutionOrderMatchesSubmissionOrder(t *testing.T) {
	q := rendercmd.New(rendercmd.WithLogger(logx.Nop))
	const thread = 0
	q.Submit(thread, rendercmd.NewClear(rendercmd.ClearColor, [4]float32{}, 1, 0))
	q.Submit(thread, rendercmd.NewSetViewport(0, 0, 800, 600))
	q.Submit(thread, rendercmd.NewDrawArrays(rendercmd.TopologyTriangleList, 0, 3, 1))

	b := &recordingBackend{}
	q.Process(b, 10)

	want := []string{"Clear", "SetViewport", "DrawArrays"}
	if len(b.order) != len(want) {
		t.Fatalf("order = %v, want %v", b.order, want)
	}
	for i := range want {
		if b.order[i] != want[i] {
			t.Fatalf("order[%d] = %q, want %q (full: %v)", i, b.order[i], want[i], b.order)
		}
	}
}

func TestQueueOverflowDropsOldest(t *testing.T) {
	q := rendercmd.New(rendercmd.WithCapacity(2), rendercmd.WithLogger(logx.Nop))
	const thread = 0
	q.Submit(thread, rendercmd.NewSetViewport(1, 0, 0, 0))
	q.Submit(thread, rendercmd.NewSetViewport(2, 0, 0, 0))
	q.Submit(thread, rendercmd.NewSetViewport(3, 0, 0, 0))

	if got := q.Stats().Dropped; got != 1 {
		t.Fatalf("dropped = %d, want 1", got)
	}
	if got := q.Depth(); got != 2 {
		t.Fatalf("depth = %d, want 2", got)
	}

	b := &recordingBackend{}
	q.Process(b, 10)
	if len(b.order) != 2 {
		t.Fatalf("processed %d commands, want 2 (the oldest should have been dropped)", len(b.order))
	}
}

func TestWrongThreadSubmitIsLoggedNotSilentlyAccepted(t *testing.T) {
	var asserted bool
	q := rendercmd.New(
		rendercmd.WithRenderThread(1),
		rendercmd.WithLogger(logx.Nop),
		rendercmd.WithDebugAssert(func(string, ...any) { asserted = true }),
	)
	q.Submit(99, rendercmd.NewSetViewport(0, 0, 0, 0))

	if !asserted {
		t.Fatal("expected the debug assert hook to fire for an off-render-thread Submit")
	}
	// The contract violation is diagnosed, not rejected: the command is
	// still enqueued so a single misbehaving caller doesn't lose work.
	if q.Depth() != 1 {
		t.Fatalf("depth = %d, want 1", q.Depth())
	}
}

func TestFailingCommandDoesNotCorruptQueueState(t *testing.T) {
	q := rendercmd.New(rendercmd.WithLogger(logx.Nop))
	const thread = 0
	q.Submit(thread, failingCommand{})
	q.Submit(thread, rendercmd.NewSetViewport(0, 0, 0, 0))

	b := &recordingBackend{}
	q.Process(b, 10)

	if len(b.order) != 1 || b.order[0] != "SetViewport" {
		t.Fatalf("order = %v, want [SetViewport] (the failing command should not block the next one)", b.order)
	}
	if got := q.Stats().Processed; got != 2 {
		t.Fatalf("processed = %d, want 2 (both commands counted, one failed)", got)
	}
}

func TestSubmitImmediateSerializesAgainstProcess(t *testing.T) {
	q := rendercmd.New(rendercmd.WithLogger(logx.Nop))
	b := &recordingBackend{}

	if err := q.SubmitImmediate(b, rendercmd.NewGenBuffers(1, nil)); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(b.order) != 1 || b.order[0] != "GenBuffers" {
		t.Fatalf("order = %v, want [GenBuffers]", b.order)
	}
}

func TestShutdownFlushesQueuedCommands(t *testing.T) {
	q := rendercmd.New(rendercmd.WithLogger(logx.Nop))
	const thread = 0
	q.Submit(thread, rendercmd.NewSetViewport(0, 0, 0, 0))
	q.Submit(thread, rendercmd.NewSetScissor(0, 0, 0, 0))

	b := &recordingBackend{}
	q.Shutdown(b)

	if len(b.order) != 2 {
		t.Fatalf("flushed %d commands, want 2", len(b.order))
	}
	if q.Depth() != 0 {
		t.Fatalf("depth after shutdown = %d, want 0", q.Depth())
	}
}

func TestBufferDataImmediateCarriesNonOwningSlice(t *testing.T) {
	data := []byte{1, 2, 3}
	cmd := rendercmd.NewBufferDataImmediate(rendercmd.BufferTargetVertex, data, rendercmd.UsageStatic)
	data[0] = 9
	if cmd.Data()[0] != 9 {
		t.Fatal("immediate payload should alias the caller's slice, not copy it")
	}

	owned := rendercmd.NewBufferData(rendercmd.BufferTargetVertex, data, rendercmd.UsageStatic)
	data[0] = 42
	if owned.Data()[0] == 42 {
		t.Fatal("queued payload should be a defensive copy, immune to post-submit mutation")
	}
}
