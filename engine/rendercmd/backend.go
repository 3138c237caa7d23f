package rendercmd

import "unsafe"

// Handle is an opaque GPU object identifier. The backend owns no
// application resources; it hands out these integers and the engine is
// responsible for tracking what they refer to.
type Handle uint32

// SyncHandle identifies a fence created by FenceSync.
type SyncHandle uint32

// Topology selects the primitive assembly mode for a draw call.
type Topology int

const (
	TopologyTriangleList Topology = iota
	TopologyTriangleStrip
	TopologyLineList
	TopologyLineStrip
	TopologyPointList
)

// BufferTarget selects which binding point a buffer command addresses.
type BufferTarget int

const (
	BufferTargetVertex BufferTarget = iota
	BufferTargetIndex
	BufferTargetUniform
	BufferTargetStorage
)

// BufferUsage hints how a buffer's contents will be accessed, mirroring
// the GL_STATIC_DRAW/GL_DYNAMIC_DRAW/GL_STREAM_DRAW family.
type BufferUsage int

const (
	UsageStatic BufferUsage = iota
	UsageDynamic
	UsageStream
)

// IndexType selects the width of indices bound by BindIndexBuffer; honored
// by every subsequent DrawIndexed until rebound.
type IndexType int

const (
	IndexTypeUint16 IndexType = iota
	IndexTypeUint32
)

// ClearFlags is a bitmask of the targets a Clear command affects.
type ClearFlags uint32

const (
	ClearColor ClearFlags = 1 << iota
	ClearDepth
	ClearStencil
)

// AccessFlags is a bitmask of the access modes requested by MapBufferRange.
type AccessFlags uint32

const (
	AccessRead AccessFlags = 1 << iota
	AccessWrite
	AccessPersistent
	AccessCoherent
)

// WaitStatus is the outcome of ClientWaitSync.
type WaitStatus int

const (
	WaitAlreadySignaled WaitStatus = iota
	WaitConditionSatisfied
	WaitTimeoutExpired
	WaitFailed
)

// CompareFunc selects the comparison used by depth testing.
type CompareFunc int

const (
	CompareNever CompareFunc = iota
	CompareLess
	CompareEqual
	CompareLessEqual
	CompareGreater
	CompareNotEqual
	CompareGreaterEqual
	CompareAlways
)

// BlendFactor selects a source or destination blend factor.
type BlendFactor int

const (
	BlendZero BlendFactor = iota
	BlendOne
	BlendSrcAlpha
	BlendOneMinusSrcAlpha
	BlendDstAlpha
	BlendOneMinusDstAlpha
	BlendSrcColor
	BlendOneMinusSrcColor
	BlendDstColor
	BlendOneMinusDstColor
)

// BlendOp selects how the source and destination blend terms combine.
type BlendOp int

const (
	BlendOpAdd BlendOp = iota
	BlendOpSubtract
	BlendOpReverseSubtract
	BlendOpMin
	BlendOpMax
)

// CullMode selects which winding of triangle is discarded.
type CullMode int

const (
	CullNone CullMode = iota
	CullFront
	CullBack
)

// FrontFace selects which vertex winding is considered front-facing.
type FrontFace int

const (
	FrontFaceCCW FrontFace = iota
	FrontFaceCW
)

// TextureTarget selects the texture binding point addressed by a texture
// command.
type TextureTarget int

const (
	TextureTarget2D TextureTarget = iota
	TextureTargetCubeMap
)

// DepthState is the depth-test configuration applied by SetDepthState and
// restored to engine defaults at pass end (spec §4.6).
type DepthState struct {
	Test    bool
	Write   bool
	Compare CompareFunc
}

// DefaultDepthState is the engine-default state a Pass restores on end:
// test and write on, less-compare.
var DefaultDepthState = DepthState{Test: true, Write: true, Compare: CompareLess}

// BlendState is the blend configuration applied by SetBlendState.
type BlendState struct {
	Enabled   bool
	SrcFactor BlendFactor
	DstFactor BlendFactor
	Op        BlendOp
}

// DefaultBlendState is the engine-default state a Pass restores on end:
// blending off.
var DefaultBlendState = BlendState{}

// CullState is the face-culling configuration applied by SetCullState.
type CullState struct {
	Mode      CullMode
	FrontFace FrontFace
}

// DefaultCullState is the engine-default state a Pass restores on end:
// culling off.
var DefaultCullState = CullState{Mode: CullNone}

// Backend is the thin, stateful, per-graphics-API surface every Render
// Command variant executes against (spec §4.5). Implementations track a
// Renderer State Cache and elide redundant calls where the contract below
// calls that out; they own no application resources, only opaque Handles.
type Backend interface {
	Clear(flags ClearFlags, color [4]float32, depth float32, stencil int32)
	SetViewport(x, y, width, height int32)
	SetScissor(x, y, width, height int32)

	DrawArrays(topology Topology, first, count, instances int32)
	DrawIndexed(topology Topology, indexCount, instances, firstIndex, baseVertex, baseInstance int32)

	GenBuffers(n int) []Handle
	DeleteBuffers(handles []Handle)
	BindBuffer(target BufferTarget, handle Handle)
	BufferData(target BufferTarget, data []byte, usage BufferUsage)
	BufferSubData(target BufferTarget, offset int64, data []byte)
	BufferStorage(target BufferTarget, size int64, flags AccessFlags) error

	// MapBufferRange returns a host pointer valid until UnmapBuffer is
	// called on target or the backend loses its device context.
	MapBufferRange(target BufferTarget, offset, length int64, access AccessFlags) (unsafe.Pointer, error)
	UnmapBuffer(target BufferTarget)

	FenceSync() SyncHandle
	ClientWaitSync(handle SyncHandle, timeoutNs int64) WaitStatus
	DeleteSync(handle SyncHandle)

	BindIndexBuffer(handle Handle, indexType IndexType, offset int64)
	VertexAttribPointer(index int, size int, normalized bool, stride int32, offset int64)
	VertexAttribIPointer(index int, size int, stride int32, offset int64)
	VertexAttribDivisor(index int, divisor int)
	EnableVertexAttribArray(index int)

	GenVertexArrays(n int) []Handle
	DeleteVertexArrays(handles []Handle)
	BindVertexArray(handle Handle)

	BindShader(program Handle)

	GenTextures(n int) []Handle
	DeleteTextures(handles []Handle)
	BindTextureTarget(target TextureTarget, handle Handle)
	BindTexture(slot int, handle Handle)
	TexImage2D(target TextureTarget, level int, width, height int32, data []byte)
	TexParameteri(target TextureTarget, name, value int32)
	GenerateMipmap(target TextureTarget)

	GenFramebuffers(n int) []Handle
	DeleteFramebuffers(handles []Handle)
	BindFramebuffer(handle Handle)
	FramebufferTexture2D(attachment int32, target TextureTarget, texture Handle, level int)
	CheckFramebufferStatus() error
	SetDrawBuffers(attachments []int32)

	BindBufferBase(target BufferTarget, bindingIndex int, handle Handle)

	SetDepthState(state DepthState)
	SetBlendState(state BlendState)
	SetCullState(state CullState)

	PushDebugGroup(name string)
	PopDebugGroup()
}
