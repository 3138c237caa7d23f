package rendercmd

import "unsafe"

// Command is a self-describing record of one Backend operation. Variants
// correspond one-to-one to the Backend surface (backend.go). DebugName and
// EstimatedCost are cheap metadata hooks for profiling and future batching;
// neither participates in correctness.
type Command interface {
	Execute(b Backend) error
	DebugName() string
	EstimatedCost() float32
}

// meta carries the two metadata hooks every Command variant embeds, so the
// ~40 variants below don't each hand-write DebugName/EstimatedCost.
type meta struct {
	name string
	cost float32
}

func (m meta) DebugName() string      { return m.name }
func (m meta) EstimatedCost() float32 { return m.cost }

// payload is a data-bearing command's buffer. Owned is a defensive copy
// safe to execute after the submitter returns (the default for Queued
// submission, where execution happens on a later frame); non-owned is the
// caller's original slice, used only under Immediate submission where the
// queue's contract guarantees the caller keeps the backing array alive
// until Execute runs (spec §4.3).
type payload struct {
	data  []byte
	owned bool
}

func ownedPayload(data []byte) payload {
	cp := make([]byte, len(data))
	copy(cp, data)
	return payload{data: cp, owned: true}
}

func nonOwningPayload(data []byte) payload {
	return payload{data: data, owned: false}
}

// --- Clear / viewport / scissor -------------------------------------------------

type Clear struct {
	meta
	Flags   ClearFlags
	Color   [4]float32
	Depth   float32
	Stencil int32
}

func NewClear(flags ClearFlags, color [4]float32, depth float32, stencil int32) *Clear {
	return &Clear{meta: meta{name: "Clear", cost: 0.5}, Flags: flags, Color: color, Depth: depth, Stencil: stencil}
}

func (c *Clear) Execute(b Backend) error {
	b.Clear(c.Flags, c.Color, c.Depth, c.Stencil)
	return nil
}

type SetViewport struct {
	meta
	X, Y, Width, Height int32
}

func NewSetViewport(x, y, w, h int32) *SetViewport {
	return &SetViewport{meta: meta{name: "SetViewport", cost: 0.1}, X: x, Y: y, Width: w, Height: h}
}

func (c *SetViewport) Execute(b Backend) error {
	b.SetViewport(c.X, c.Y, c.Width, c.Height)
	return nil
}

type SetScissor struct {
	meta
	X, Y, Width, Height int32
}

func NewSetScissor(x, y, w, h int32) *SetScissor {
	return &SetScissor{meta: meta{name: "SetScissor", cost: 0.1}, X: x, Y: y, Width: w, Height: h}
}

func (c *SetScissor) Execute(b Backend) error {
	b.SetScissor(c.X, c.Y, c.Width, c.Height)
	return nil
}

// --- Draws -----------------------------------------------------------------

type DrawArrays struct {
	meta
	Topology           Topology
	First, Count       int32
	InstanceCount      int32
}

func NewDrawArrays(topology Topology, first, count, instances int32) *DrawArrays {
	return &DrawArrays{meta: meta{name: "DrawArrays", cost: 1}, Topology: topology, First: first, Count: count, InstanceCount: instances}
}

func (c *DrawArrays) Execute(b Backend) error {
	b.DrawArrays(c.Topology, c.First, c.Count, c.InstanceCount)
	return nil
}

type DrawIndexed struct {
	meta
	Topology                                        Topology
	IndexCount, InstanceCount, FirstIndex, BaseVertex, BaseInstance int32
}

func NewDrawIndexed(topology Topology, indexCount, instances, firstIndex, baseVertex, baseInstance int32) *DrawIndexed {
	return &DrawIndexed{
		meta:          meta{name: "DrawIndexed", cost: 1},
		Topology:      topology,
		IndexCount:    indexCount,
		InstanceCount: instances,
		FirstIndex:    firstIndex,
		BaseVertex:    baseVertex,
		BaseInstance:  baseInstance,
	}
}

func (c *DrawIndexed) Execute(b Backend) error {
	b.DrawIndexed(c.Topology, c.IndexCount, c.InstanceCount, c.FirstIndex, c.BaseVertex, c.BaseInstance)
	return nil
}

// --- Buffer lifecycle --------------------------------------------------------

type GenBuffers struct {
	meta
	Count int
	Out   *[]Handle // filled in by Execute, read back by the caller after a flush
}

func NewGenBuffers(count int, out *[]Handle) *GenBuffers {
	return &GenBuffers{meta: meta{name: "GenBuffers", cost: 0.2}, Count: count, Out: out}
}

func (c *GenBuffers) Execute(b Backend) error {
	handles := b.GenBuffers(c.Count)
	if c.Out != nil {
		*c.Out = handles
	}
	return nil
}

type DeleteBuffers struct {
	meta
	Handles []Handle
}

func NewDeleteBuffers(handles []Handle) *DeleteBuffers {
	return &DeleteBuffers{meta: meta{name: "DeleteBuffers", cost: 0.1}, Handles: handles}
}

func (c *DeleteBuffers) Execute(b Backend) error {
	b.DeleteBuffers(c.Handles)
	return nil
}

type BindBuffer struct {
	meta
	Target BufferTarget
	Handle Handle
}

func NewBindBuffer(target BufferTarget, handle Handle) *BindBuffer {
	return &BindBuffer{meta: meta{name: "BindBuffer", cost: 0.05}, Target: target, Handle: handle}
}

func (c *BindBuffer) Execute(b Backend) error {
	b.BindBuffer(c.Target, c.Handle)
	return nil
}

// BufferData uploads data wholesale, replacing any prior contents. Build
// with NewBufferData (owning copy, for Queued submission) or
// NewBufferDataImmediate (non-owning, the caller must keep data alive until
// the command executes — only valid for Immediate submission).
type BufferData struct {
	meta
	Target BufferTarget
	Usage  BufferUsage
	pl     payload
}

func NewBufferData(target BufferTarget, data []byte, usage BufferUsage) *BufferData {
	return &BufferData{meta: meta{name: "BufferData", cost: 2}, Target: target, Usage: usage, pl: ownedPayload(data)}
}

func NewBufferDataImmediate(target BufferTarget, data []byte, usage BufferUsage) *BufferData {
	return &BufferData{meta: meta{name: "BufferData", cost: 2}, Target: target, Usage: usage, pl: nonOwningPayload(data)}
}

func (c *BufferData) Data() []byte { return c.pl.data }

func (c *BufferData) Execute(b Backend) error {
	b.BufferData(c.Target, c.pl.data, c.Usage)
	return nil
}

// BufferSubData updates a byte range of an existing buffer.
type BufferSubData struct {
	meta
	Target BufferTarget
	Offset int64
	pl     payload
}

func NewBufferSubData(target BufferTarget, offset int64, data []byte) *BufferSubData {
	return &BufferSubData{meta: meta{name: "BufferSubData", cost: 1}, Target: target, Offset: offset, pl: ownedPayload(data)}
}

func NewBufferSubDataImmediate(target BufferTarget, offset int64, data []byte) *BufferSubData {
	return &BufferSubData{meta: meta{name: "BufferSubData", cost: 1}, Target: target, Offset: offset, pl: nonOwningPayload(data)}
}

func (c *BufferSubData) Data() []byte { return c.pl.data }

func (c *BufferSubData) Execute(b Backend) error {
	b.BufferSubData(c.Target, c.Offset, c.pl.data)
	return nil
}

type BufferStorage struct {
	meta
	Target BufferTarget
	Size   int64
	Flags  AccessFlags
}

func NewBufferStorage(target BufferTarget, size int64, flags AccessFlags) *BufferStorage {
	return &BufferStorage{meta: meta{name: "BufferStorage", cost: 3}, Target: target, Size: size, Flags: flags}
}

func (c *BufferStorage) Execute(b Backend) error {
	return b.BufferStorage(c.Target, c.Size, c.Flags)
}

// --- Persistent mapping / fencing --------------------------------------------

type MapBufferRange struct {
	meta
	Target        BufferTarget
	Offset, Length int64
	Access        AccessFlags
	Out           *unsafe.Pointer
}

func NewMapBufferRange(target BufferTarget, offset, length int64, access AccessFlags, out *unsafe.Pointer) *MapBufferRange {
	return &MapBufferRange{meta: meta{name: "MapBufferRange", cost: 1}, Target: target, Offset: offset, Length: length, Access: access, Out: out}
}

func (c *MapBufferRange) Execute(b Backend) error {
	ptr, err := b.MapBufferRange(c.Target, c.Offset, c.Length, c.Access)
	if err != nil {
		return err
	}
	if c.Out != nil {
		*c.Out = ptr
	}
	return nil
}

type UnmapBuffer struct {
	meta
	Target BufferTarget
}

func NewUnmapBuffer(target BufferTarget) *UnmapBuffer {
	return &UnmapBuffer{meta: meta{name: "UnmapBuffer", cost: 0.2}, Target: target}
}

func (c *UnmapBuffer) Execute(b Backend) error {
	b.UnmapBuffer(c.Target)
	return nil
}

type FenceSync struct {
	meta
	Out *SyncHandle
}

func NewFenceSync(out *SyncHandle) *FenceSync {
	return &FenceSync{meta: meta{name: "FenceSync", cost: 0.1}, Out: out}
}

func (c *FenceSync) Execute(b Backend) error {
	h := b.FenceSync()
	if c.Out != nil {
		*c.Out = h
	}
	return nil
}

type ClientWaitSync struct {
	meta
	Handle    SyncHandle
	TimeoutNs int64
	Out       *WaitStatus
}

func NewClientWaitSync(handle SyncHandle, timeoutNs int64, out *WaitStatus) *ClientWaitSync {
	return &ClientWaitSync{meta: meta{name: "ClientWaitSync", cost: 0.1}, Handle: handle, TimeoutNs: timeoutNs, Out: out}
}

func (c *ClientWaitSync) Execute(b Backend) error {
	status := b.ClientWaitSync(c.Handle, c.TimeoutNs)
	if c.Out != nil {
		*c.Out = status
	}
	return nil
}

type DeleteSync struct {
	meta
	Handle SyncHandle
}

func NewDeleteSync(handle SyncHandle) *DeleteSync {
	return &DeleteSync{meta: meta{name: "DeleteSync", cost: 0.05}, Handle: handle}
}

func (c *DeleteSync) Execute(b Backend) error {
	b.DeleteSync(c.Handle)
	return nil
}

// --- Vertex attributes / VAOs ------------------------------------------------

type BindIndexBuffer struct {
	meta
	Handle    Handle
	IndexType IndexType
	Offset    int64
}

func NewBindIndexBuffer(handle Handle, indexType IndexType, offset int64) *BindIndexBuffer {
	return &BindIndexBuffer{meta: meta{name: "BindIndexBuffer", cost: 0.05}, Handle: handle, IndexType: indexType, Offset: offset}
}

func (c *BindIndexBuffer) Execute(b Backend) error {
	b.BindIndexBuffer(c.Handle, c.IndexType, c.Offset)
	return nil
}

type VertexAttribPointer struct {
	meta
	Index      int
	Size       int
	Normalized bool
	Stride     int32
	Offset     int64
}

func NewVertexAttribPointer(index, size int, normalized bool, stride int32, offset int64) *VertexAttribPointer {
	return &VertexAttribPointer{meta: meta{name: "VertexAttribPointer", cost: 0.05}, Index: index, Size: size, Normalized: normalized, Stride: stride, Offset: offset}
}

func (c *VertexAttribPointer) Execute(b Backend) error {
	b.VertexAttribPointer(c.Index, c.Size, c.Normalized, c.Stride, c.Offset)
	return nil
}

type VertexAttribIPointer struct {
	meta
	Index  int
	Size   int
	Stride int32
	Offset int64
}

func NewVertexAttribIPointer(index, size int, stride int32, offset int64) *VertexAttribIPointer {
	return &VertexAttribIPointer{meta: meta{name: "VertexAttribIPointer", cost: 0.05}, Index: index, Size: size, Stride: stride, Offset: offset}
}

func (c *VertexAttribIPointer) Execute(b Backend) error {
	b.VertexAttribIPointer(c.Index, c.Size, c.Stride, c.Offset)
	return nil
}

type VertexAttribDivisor struct {
	meta
	Index   int
	Divisor int
}

func NewVertexAttribDivisor(index, divisor int) *VertexAttribDivisor {
	return &VertexAttribDivisor{meta: meta{name: "VertexAttribDivisor", cost: 0.05}, Index: index, Divisor: divisor}
}

func (c *VertexAttribDivisor) Execute(b Backend) error {
	b.VertexAttribDivisor(c.Index, c.Divisor)
	return nil
}

type EnableVertexAttribArray struct {
	meta
	Index int
}

func NewEnableVertexAttribArray(index int) *EnableVertexAttribArray {
	return &EnableVertexAttribArray{meta: meta{name: "EnableVertexAttribArray", cost: 0.05}, Index: index}
}

func (c *EnableVertexAttribArray) Execute(b Backend) error {
	b.EnableVertexAttribArray(c.Index)
	return nil
}

type BindBufferBase struct {
	meta
	Target       BufferTarget
	BindingIndex int
	Handle       Handle
}

func NewBindBufferBase(target BufferTarget, bindingIndex int, handle Handle) *BindBufferBase {
	return &BindBufferBase{meta: meta{name: "BindBufferBase", cost: 0.05}, Target: target, BindingIndex: bindingIndex, Handle: handle}
}

func (c *BindBufferBase) Execute(b Backend) error {
	b.BindBufferBase(c.Target, c.BindingIndex, c.Handle)
	return nil
}

type GenVertexArrays struct {
	meta
	Count int
	Out   *[]Handle
}

func NewGenVertexArrays(count int, out *[]Handle) *GenVertexArrays {
	return &GenVertexArrays{meta: meta{name: "GenVertexArrays", cost: 0.2}, Count: count, Out: out}
}

func (c *GenVertexArrays) Execute(b Backend) error {
	handles := b.GenVertexArrays(c.Count)
	if c.Out != nil {
		*c.Out = handles
	}
	return nil
}

type DeleteVertexArrays struct {
	meta
	Handles []Handle
}

func NewDeleteVertexArrays(handles []Handle) *DeleteVertexArrays {
	return &DeleteVertexArrays{meta: meta{name: "DeleteVertexArrays", cost: 0.1}, Handles: handles}
}

func (c *DeleteVertexArrays) Execute(b Backend) error {
	b.DeleteVertexArrays(c.Handles)
	return nil
}

type BindVertexArray struct {
	meta
	Handle Handle
}

func NewBindVertexArray(handle Handle) *BindVertexArray {
	return &BindVertexArray{meta: meta{name: "BindVertexArray", cost: 0.05}, Handle: handle}
}

func (c *BindVertexArray) Execute(b Backend) error {
	b.BindVertexArray(c.Handle)
	return nil
}

// --- Shader ------------------------------------------------------------------

type BindShader struct {
	meta
	Program Handle
}

func NewBindShader(program Handle) *BindShader {
	return &BindShader{meta: meta{name: "BindShader", cost: 0.1}, Program: program}
}

func (c *BindShader) Execute(b Backend) error {
	b.BindShader(c.Program)
	return nil
}

// --- Textures ------------------------------------------------------------------

type GenTextures struct {
	meta
	Count int
	Out   *[]Handle
}

func NewGenTextures(count int, out *[]Handle) *GenTextures {
	return &GenTextures{meta: meta{name: "GenTextures", cost: 0.2}, Count: count, Out: out}
}

func (c *GenTextures) Execute(b Backend) error {
	handles := b.GenTextures(c.Count)
	if c.Out != nil {
		*c.Out = handles
	}
	return nil
}

type DeleteTextures struct {
	meta
	Handles []Handle
}

func NewDeleteTextures(handles []Handle) *DeleteTextures {
	return &DeleteTextures{meta: meta{name: "DeleteTextures", cost: 0.1}, Handles: handles}
}

func (c *DeleteTextures) Execute(b Backend) error {
	b.DeleteTextures(c.Handles)
	return nil
}

type BindTextureTarget struct {
	meta
	Target TextureTarget
	Handle Handle
}

func NewBindTextureTarget(target TextureTarget, handle Handle) *BindTextureTarget {
	return &BindTextureTarget{meta: meta{name: "BindTextureTarget", cost: 0.05}, Target: target, Handle: handle}
}

func (c *BindTextureTarget) Execute(b Backend) error {
	b.BindTextureTarget(c.Target, c.Handle)
	return nil
}

type BindTexture struct {
	meta
	Slot   int
	Handle Handle
}

func NewBindTexture(slot int, handle Handle) *BindTexture {
	return &BindTexture{meta: meta{name: "BindTexture", cost: 0.05}, Slot: slot, Handle: handle}
}

func (c *BindTexture) Execute(b Backend) error {
	b.BindTexture(c.Slot, c.Handle)
	return nil
}

type TexImage2D struct {
	meta
	Target        TextureTarget
	Level         int
	Width, Height int32
	pl            payload
}

func NewTexImage2D(target TextureTarget, level int, width, height int32, data []byte) *TexImage2D {
	return &TexImage2D{meta: meta{name: "TexImage2D", cost: 3}, Target: target, Level: level, Width: width, Height: height, pl: ownedPayload(data)}
}

func NewTexImage2DImmediate(target TextureTarget, level int, width, height int32, data []byte) *TexImage2D {
	return &TexImage2D{meta: meta{name: "TexImage2D", cost: 3}, Target: target, Level: level, Width: width, Height: height, pl: nonOwningPayload(data)}
}

func (c *TexImage2D) Data() []byte { return c.pl.data }

func (c *TexImage2D) Execute(b Backend) error {
	b.TexImage2D(c.Target, c.Level, c.Width, c.Height, c.pl.data)
	return nil
}

type TexParameteri struct {
	meta
	Target      TextureTarget
	Name, Value int32
}

func NewTexParameteri(target TextureTarget, name, value int32) *TexParameteri {
	return &TexParameteri{meta: meta{name: "TexParameteri", cost: 0.05}, Target: target, Name: name, Value: value}
}

func (c *TexParameteri) Execute(b Backend) error {
	b.TexParameteri(c.Target, c.Name, c.Value)
	return nil
}

type GenerateMipmap struct {
	meta
	Target TextureTarget
}

func NewGenerateMipmap(target TextureTarget) *GenerateMipmap {
	return &GenerateMipmap{meta: meta{name: "GenerateMipmap", cost: 1}, Target: target}
}

func (c *GenerateMipmap) Execute(b Backend) error {
	b.GenerateMipmap(c.Target)
	return nil
}

// --- Framebuffers --------------------------------------------------------------

type GenFramebuffers struct {
	meta
	Count int
	Out   *[]Handle
}

func NewGenFramebuffers(count int, out *[]Handle) *GenFramebuffers {
	return &GenFramebuffers{meta: meta{name: "GenFramebuffers", cost: 0.2}, Count: count, Out: out}
}

func (c *GenFramebuffers) Execute(b Backend) error {
	handles := b.GenFramebuffers(c.Count)
	if c.Out != nil {
		*c.Out = handles
	}
	return nil
}

type DeleteFramebuffers struct {
	meta
	Handles []Handle
}

func NewDeleteFramebuffers(handles []Handle) *DeleteFramebuffers {
	return &DeleteFramebuffers{meta: meta{name: "DeleteFramebuffers", cost: 0.1}, Handles: handles}
}

func (c *DeleteFramebuffers) Execute(b Backend) error {
	b.DeleteFramebuffers(c.Handles)
	return nil
}

type BindFramebuffer struct {
	meta
	Handle Handle
}

func NewBindFramebuffer(handle Handle) *BindFramebuffer {
	return &BindFramebuffer{meta: meta{name: "BindFramebuffer", cost: 0.1}, Handle: handle}
}

func (c *BindFramebuffer) Execute(b Backend) error {
	b.BindFramebuffer(c.Handle)
	return nil
}

type FramebufferTexture2D struct {
	meta
	Attachment int32
	Target     TextureTarget
	Texture    Handle
	Level      int
}

func NewFramebufferTexture2D(attachment int32, target TextureTarget, texture Handle, level int) *FramebufferTexture2D {
	return &FramebufferTexture2D{meta: meta{name: "FramebufferTexture2D", cost: 0.2}, Attachment: attachment, Target: target, Texture: texture, Level: level}
}

func (c *FramebufferTexture2D) Execute(b Backend) error {
	b.FramebufferTexture2D(c.Attachment, c.Target, c.Texture, c.Level)
	return nil
}

type CheckFramebufferStatus struct {
	meta
}

func NewCheckFramebufferStatus() *CheckFramebufferStatus {
	return &CheckFramebufferStatus{meta: meta{name: "CheckFramebufferStatus", cost: 0.1}}
}

func (c *CheckFramebufferStatus) Execute(b Backend) error {
	return b.CheckFramebufferStatus()
}

type SetDrawBuffers struct {
	meta
	Attachments []int32
}

func NewSetDrawBuffers(attachments []int32) *SetDrawBuffers {
	return &SetDrawBuffers{meta: meta{name: "SetDrawBuffers", cost: 0.1}, Attachments: attachments}
}

func (c *SetDrawBuffers) Execute(b Backend) error {
	b.SetDrawBuffers(c.Attachments)
	return nil
}

// --- State ---------------------------------------------------------------------

type SetDepthState struct {
	meta
	State DepthState
}

func NewSetDepthState(state DepthState) *SetDepthState {
	return &SetDepthState{meta: meta{name: "SetDepthState", cost: 0.1}, State: state}
}

func (c *SetDepthState) Execute(b Backend) error {
	b.SetDepthState(c.State)
	return nil
}

type SetBlendState struct {
	meta
	State BlendState
}

func NewSetBlendState(state BlendState) *SetBlendState {
	return &SetBlendState{meta: meta{name: "SetBlendState", cost: 0.1}, State: state}
}

func (c *SetBlendState) Execute(b Backend) error {
	b.SetBlendState(c.State)
	return nil
}

type SetCullState struct {
	meta
	State CullState
}

func NewSetCullState(state CullState) *SetCullState {
	return &SetCullState{meta: meta{name: "SetCullState", cost: 0.1}, State: state}
}

func (c *SetCullState) Execute(b Backend) error {
	b.SetCullState(c.State)
	return nil
}

// --- Debug groups ----------------------------------------------------------------

type PushDebugGroup struct {
	meta
	Name string
}

func NewPushDebugGroup(name string) *PushDebugGroup {
	return &PushDebugGroup{meta: meta{name: "PushDebugGroup", cost: 0.01}, Name: name}
}

func (c *PushDebugGroup) Execute(b Backend) error {
	b.PushDebugGroup(c.Name)
	return nil
}

type PopDebugGroup struct {
	meta
}

func NewPopDebugGroup() *PopDebugGroup {
	return &PopDebugGroup{meta: meta{name: "PopDebugGroup", cost: 0.01}}
}

func (c *PopDebugGroup) Execute(b Backend) error {
	b.PopDebugGroup()
	return nil
}
