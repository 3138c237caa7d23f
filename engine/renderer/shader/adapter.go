package shader

import (
	"github.com/oxycore/engine/engine/logx"
	"github.com/oxycore/engine/engine/rendercmd"
)

// SlotKind identifies what kind of shader resource a reflected name refers
// to.
type SlotKind int

const (
	// SlotUniform is a scalar/vector/matrix value packed at a byte offset
	// inside the adapter's backing uniform buffer.
	SlotUniform SlotKind = iota

	// SlotTexture is a sampler binding set via BindTexture.
	SlotTexture

	// SlotUniformBuffer is a whole uniform-buffer-object binding set via
	// BindBufferBase, distinct from a single named value inside one.
	SlotUniformBuffer
)

// UniformSlot is one entry in a shader's reflection metadata: where the
// name named lives, and how to address it.
type UniformSlot struct {
	Kind    SlotKind
	Offset  int64 // SlotUniform: byte offset within the bound uniform buffer
	Size    int64 // SlotUniform: byte size of the value
	Binding int   // SlotTexture / SlotUniformBuffer: binding index
}

// ReflectFromShader derives SlotTexture and SlotUniformBuffer entries from
// a Shader's bind group variable names, keyed by var name. Per-field
// offsets for scalar/vector/matrix uniforms packed inside a uniform buffer
// are not recovered by WGSL struct reflection here; callers merge those in
// separately (e.g. batch2d's camera/viewport/pixel-snap uniforms), keyed
// the same way.
func ReflectFromShader(s Shader) map[string]UniformSlot {
	out := make(map[string]UniformSlot)
	for _, names := range s.BindGroupVarNames() {
		for binding, name := range names {
			// Without a resource-kind tag from the pre-processor, default
			// to SlotUniformBuffer; samplers are distinguished by the
			// caller merging in an explicit SlotTexture override (shader
			// source annotations name the texture/sampler pairs, but this
			// adapter does not re-derive that distinction here).
			out[name] = UniformSlot{Kind: SlotUniformBuffer, Binding: binding}
		}
	}
	return out
}

// Adapter binds one compiled program and exposes name-addressed uniform,
// texture, and uniform-buffer setters over the raw rendercmd.Backend
// vocabulary (spec §4.9). Setting a name absent from reflection is logged
// as a warning, not an error — callers should not have to special-case
// shader variants that omit an optional uniform.
type Adapter struct {
	program    rendercmd.Handle
	reflection map[string]UniformSlot
	log        logx.Logger

	uboHandle rendercmd.Handle
	uboSize   int64
	staging   []byte
	dirty     bool
}

// NewAdapter constructs an Adapter for program, whose scalar/vector/matrix
// uniforms are packed into the uniform buffer identified by uboHandle
// (uboSize bytes). A nil logger falls back to logx.Nop.
func NewAdapter(program rendercmd.Handle, reflection map[string]UniformSlot, uboHandle rendercmd.Handle, uboSize int64, log logx.Logger) *Adapter {
	if log == nil {
		log = logx.Nop
	}
	return &Adapter{
		program:    program,
		reflection: reflection,
		log:        log,
		uboHandle:  uboHandle,
		uboSize:    uboSize,
		staging:    make([]byte, uboSize),
	}
}

// Bind selects this adapter's program, eliding the call if it is already
// bound is the backend's responsibility (its state cache), not the
// adapter's.
func (a *Adapter) Bind(b rendercmd.Backend) {
	b.BindShader(a.program)
}

// SetUniform writes raw bytes into the adapter's uniform-buffer staging
// area at name's reflected offset. The write is deferred to Flush so that
// several SetUniform calls in a row coalesce into one BufferSubData.
func (a *Adapter) SetUniform(name string, value []byte) {
	slot, ok := a.reflection[name]
	if !ok || slot.Kind != SlotUniform {
		a.log.Warnf("shader adapter: set_uniform(%q) not found in reflection, ignoring", name)
		return
	}
	n := copy(a.staging[slot.Offset:], value)
	if int64(n) < slot.Size {
		a.log.Warnf("shader adapter: set_uniform(%q) value shorter than reflected size, zero-padding", name)
		for i := slot.Offset + int64(n); i < slot.Offset+slot.Size && i < int64(len(a.staging)); i++ {
			a.staging[i] = 0
		}
	}
	a.dirty = true
}

// SetTexture binds textureID into the given texture slot. name is only
// checked against reflection; its reflected binding is not used.
func (a *Adapter) SetTexture(name string, b rendercmd.Backend, textureID rendercmd.Handle, slot int) {
	if _, ok := a.reflection[name]; !ok {
		a.log.Warnf("shader adapter: set_texture(%q) not found in reflection, ignoring", name)
		return
	}
	b.BindTexture(slot, textureID)
}

// SetUniformBuffer binds a whole uniform buffer object to the binding
// point reflected for name.
func (a *Adapter) SetUniformBuffer(name string, b rendercmd.Backend, bufferID rendercmd.Handle, offset, size int64) {
	slot, ok := a.reflection[name]
	if !ok {
		a.log.Warnf("shader adapter: set_uniform_buffer(%q) not found in reflection, ignoring", name)
		return
	}
	_ = offset
	_ = size
	b.BindBufferBase(rendercmd.BufferTargetUniform, slot.Binding, bufferID)
}

// Flush uploads the staging buffer to the backing uniform buffer if any
// SetUniform call has dirtied it since the last Flush.
func (a *Adapter) Flush(b rendercmd.Backend) {
	if !a.dirty {
		return
	}
	b.BindBuffer(rendercmd.BufferTargetUniform, a.uboHandle)
	b.BufferSubData(rendercmd.BufferTargetUniform, 0, a.staging)
	a.dirty = false
}
