// package batch2d implements the Instanced 2D Batcher (spec §4.8): it
// turns draw_quad calls into one or a few instanced draws per scene over a
// ring of persistently-mapped frame chunks, grounded on the renderer's
// state-cache elision style and the scheduler's bounded-resource
// bookkeeping for its counters.
package batch2d

import (
	"fmt"
	"unsafe"

	"github.com/oxycore/engine/common"
	"github.com/oxycore/engine/engine/renderer/shader"
	"github.com/oxycore/engine/engine/rendercmd"
)

// Camera is the per-frame uniform data the batcher uploads before each
// flush: the view-projection matrix, viewport size, and pixel-snap flag.
type Camera struct {
	ViewProjection [16]float32
	ViewportWidth  float32
	ViewportHeight float32
	PixelSnap      bool
}

// Stats is a point-in-time snapshot of batcher activity.
type Stats struct {
	DrawsThisScene     int
	InstancesThisScene int
	TextureRollovers   int
	FencesRecorded     uint64
}

// Batcher converts draw_quad calls into instanced draws against a ring of
// frame chunks, one vertex buffer shared across all of them.
type Batcher struct {
	backend rendercmd.Backend
	adapter *shader.Adapter
	cfg     Config

	vb       rendercmd.Handle
	vao      rendercmd.Handle
	records  []InstanceRecord // reinterpreted view over the mapped buffer
	chunkFence    []rendercmd.SyncHandle
	chunkHasFence []bool

	whiteTexture rendercmd.Handle
	texSlots     []rendercmd.Handle
	slotLookup   map[rendercmd.Handle]int

	rotations *rotationCache
	rotTick   uint64

	chunk        int
	chunkBase    int
	subBatchBase int
	count        int
	totalInChunk int
	inScene      bool

	camera Camera

	drawsThisScene     int
	instancesThisScene int
	rolloversThisScene int
	fencesRecorded     uint64
}

// New allocates the ring's vertex buffer (persistently mapped) and the
// slot-0 white texture, ready for BeginScene/DrawQuad/EndScene.
func New(backend rendercmd.Backend, adapter *shader.Adapter, opts ...BuilderOption) *Batcher {
	cfg := defaultConfig()
	for _, opt := range opts {
		opt(&cfg)
	}

	b := &Batcher{
		backend:       backend,
		adapter:       adapter,
		cfg:           cfg,
		chunkFence:    make([]rendercmd.SyncHandle, cfg.FramesInFlight),
		chunkHasFence: make([]bool, cfg.FramesInFlight),
		slotLookup:    make(map[rendercmd.Handle]int),
		rotations:     newRotationCache(cfg.RotationCacheSize),
		chunk:         -1, // so the first BeginScene's (k+1)%N lands on chunk 0
	}

	totalRecords := cfg.FramesInFlight * cfg.MaxQuads
	sizeBytes := int64(totalRecords) * int64(unsafe.Sizeof(InstanceRecord{}))

	handles := backend.GenBuffers(1)
	b.vb = handles[0]
	backend.BindBuffer(rendercmd.BufferTargetVertex, b.vb)
	if err := backend.BufferStorage(rendercmd.BufferTargetVertex, sizeBytes, rendercmd.AccessRead|rendercmd.AccessWrite|rendercmd.AccessPersistent|rendercmd.AccessCoherent); err != nil {
		cfg.Log.Errorf("batch2d: buffer_storage failed: %v", err)
	}
	ptr, err := backend.MapBufferRange(rendercmd.BufferTargetVertex, 0, sizeBytes, rendercmd.AccessWrite|rendercmd.AccessPersistent|rendercmd.AccessCoherent)
	if err != nil {
		cfg.Log.Errorf("batch2d: map_buffer_range failed: %v", err)
	} else {
		b.records = unsafe.Slice((*InstanceRecord)(ptr), totalRecords)
	}

	vaoHandles := backend.GenVertexArrays(1)
	b.vao = vaoHandles[0]

	texHandles := backend.GenTextures(1)
	b.whiteTexture = texHandles[0]
	backend.BindTextureTarget(rendercmd.TextureTarget2D, b.whiteTexture)
	backend.TexImage2D(rendercmd.TextureTarget2D, 0, 1, 1, []byte{0xff, 0xff, 0xff, 0xff})
	b.texSlots = append(b.texSlots, b.whiteTexture)
	b.slotLookup[b.whiteTexture] = 0

	return b
}

// SetCamera stages the per-frame camera/viewport/pixel-snap uniforms
// uploaded before each flush.
func (b *Batcher) SetCamera(c Camera) { b.camera = c }

// BeginScene advances to the next ring chunk, waiting on (and releasing)
// its fence if one is outstanding, rebinds the instance attributes to the
// new chunk's base offset, and resets write/instance counters, per spec
// §4.8 step 1.
func (b *Batcher) BeginScene() {
	b.chunk = (b.chunk + 1) % b.cfg.FramesInFlight
	if b.chunkHasFence[b.chunk] {
		b.backend.ClientWaitSync(b.chunkFence[b.chunk], -1)
		b.backend.DeleteSync(b.chunkFence[b.chunk])
		b.chunkHasFence[b.chunk] = false
	}

	b.chunkBase = b.chunk * b.cfg.MaxQuads
	b.subBatchBase = b.chunkBase
	b.count = 0
	b.totalInChunk = 0
	b.inScene = true

	b.backend.BindVertexArray(b.vao)
	b.bindInstanceAttributes(b.chunkBase)

	b.drawsThisScene = 0
	b.instancesThisScene = 0
	b.rolloversThisScene = 0
}

// bindInstanceAttributes points the instance attributes at recordBase, the
// index of the first record the next draw will read. It must be called
// again before every draw whose sub-batch starts somewhere other than the
// chunk's base — flush advances subBatchBase past each sub-batch it draws,
// and DrawArrays (backend.go) carries no base-instance parameter, so the
// attribute pointers' own offset is the only way to point a later
// sub-batch's draw at the records it actually wrote.
func (b *Batcher) bindInstanceAttributes(recordBase int) {
	stride := int32(unsafe.Sizeof(InstanceRecord{}))
	base := int64(recordBase) * int64(stride)

	b.backend.BindBuffer(rendercmd.BufferTargetVertex, b.vb)
	b.backend.VertexAttribPointer(2, 2, false, stride, base+0)
	b.backend.VertexAttribPointer(3, 2, false, stride, base+8)
	b.backend.VertexAttribIPointer(4, 1, stride, base+16)
	b.backend.VertexAttribIPointer(5, 1, stride, base+20)
	b.backend.VertexAttribPointer(6, 2, false, stride, base+24)
	b.backend.VertexAttribPointer(7, 1, false, stride, base+32)
	for loc := 2; loc <= 7; loc++ {
		b.backend.EnableVertexAttribArray(loc)
		b.backend.VertexAttribDivisor(loc, 1)
	}
}

// DrawQuad writes one instance record. center and halfSize are in world
// units; color channels are [0,1]; euler is the incoming 3D rotation
// (only its Z component is drawn, but the full triple keys the rotation
// cache so quads sharing an orientation avoid retrig); texture is the
// application texture id (zero selects the reserved white texture).
func (b *Batcher) DrawQuad(center, halfSize [2]float32, color [4]float32, texture rendercmd.Handle, euler [3]float32, z float32) {
	if !b.inScene {
		b.cfg.Log.Warnf("batch2d: draw_quad called without an active scene, ignoring")
		return
	}

	slot, rolledOver := b.assignTextureSlot(texture)
	if rolledOver {
		b.rolloversThisScene++
	}

	if b.totalInChunk >= b.cfg.MaxQuads {
		b.flush()
		b.cfg.Log.Warnf("batch2d: scene exceeded max_quads for its chunk, wrapping the chunk mid-scene")
		b.subBatchBase = b.chunkBase
		b.totalInChunk = 0
	}

	b.rotTick++
	rc := b.rotations.sinCosFor(euler[0], euler[1], euler[2], b.rotTick)

	idx := b.subBatchBase + b.count
	b.records[idx] = InstanceRecord{
		CenterX: center[0], CenterY: center[1],
		HalfX: halfSize[0], HalfY: halfSize[1],
		ColorRGBA8: PackColor(color[0], color[1], color[2], color[3]),
		TexIndex:   uint32(slot),
		RotSin:     rc.sin, RotCos: rc.cos,
		Z: z,
	}
	b.count++
	b.totalInChunk++
}

// assignTextureSlot returns the sampler slot for texture, flushing and
// resetting the slot table first if it is full and texture is new, per
// spec §4.8's texture slot rollover rule. A zero Handle (no texture) maps
// to the reserved white texture at slot 0.
func (b *Batcher) assignTextureSlot(texture rendercmd.Handle) (slot int, rolledOver bool) {
	if texture == 0 {
		return 0, false
	}
	if s, ok := b.slotLookup[texture]; ok {
		return s, false
	}

	if len(b.texSlots) >= b.cfg.MaxTextureSlots {
		b.flush()
		b.texSlots = b.texSlots[:1] // keep slot 0 (white)
		for k := range b.slotLookup {
			if k != b.whiteTexture {
				delete(b.slotLookup, k)
			}
		}
		rolledOver = true
	}

	slot = len(b.texSlots)
	b.texSlots = append(b.texSlots, texture)
	b.slotLookup[texture] = slot
	b.backend.BindTexture(slot, texture)
	return slot, rolledOver
}

// Flush issues a draw for the current sub-batch (if any instances are
// pending) and starts a fresh sub-batch at the next offset within the
// current chunk, per spec §4.8 step 2's explicit-flush trigger.
func (b *Batcher) Flush() { b.flush() }

func (b *Batcher) flush() {
	if b.count == 0 {
		return
	}
	b.bindInstanceAttributes(b.subBatchBase)
	b.uploadUniformsAndSamplers()

	b.backend.DrawArrays(rendercmd.TopologyTriangleStrip, 0, 4, int32(b.count))
	b.drawsThisScene++
	b.instancesThisScene += b.count

	b.subBatchBase += b.count
	b.count = 0
}

func (b *Batcher) uploadUniformsAndSamplers() {
	if b.adapter == nil {
		return
	}
	b.adapter.Bind(b.backend)
	b.adapter.SetUniform("view_projection", common.StructToBytes(&b.camera.ViewProjection))
	viewport := [2]float32{b.camera.ViewportWidth, b.camera.ViewportHeight}
	b.adapter.SetUniform("viewport_size", common.StructToBytes(&viewport))
	snap := float32(0)
	if b.camera.PixelSnap {
		snap = 1
	}
	b.adapter.SetUniform("pixel_snap", common.StructToBytes(&snap))
	b.adapter.Flush(b.backend)

	for slot, tex := range b.texSlots {
		b.backend.BindTexture(slot, tex)
	}
}

// EndScene issues the final pending draw (if any) and, if the scene drew
// anything, records a fence for the current chunk, per spec §4.8 step 3.
func (b *Batcher) EndScene() {
	if !b.inScene {
		b.cfg.Log.Warnf("batch2d: end_scene called without an active scene, ignoring")
		return
	}
	b.flush()

	if b.instancesThisScene > 0 {
		handle := b.backend.FenceSync()
		b.chunkFence[b.chunk] = handle
		b.chunkHasFence[b.chunk] = true
		b.fencesRecorded++
	}
	b.inScene = false
}

// Stats returns draw/instance/rollover counts for the most recently
// completed (or in-progress) scene, plus a running fence total.
func (b *Batcher) Stats() Stats {
	return Stats{
		DrawsThisScene:     b.drawsThisScene,
		InstancesThisScene: b.instancesThisScene,
		TextureRollovers:   b.rolloversThisScene,
		FencesRecorded:     b.fencesRecorded,
	}
}

func (s Stats) String() string {
	return fmt.Sprintf("draws=%d instances=%d rollovers=%d fences=%d", s.DrawsThisScene, s.InstancesThisScene, s.TextureRollovers, s.FencesRecorded)
}
