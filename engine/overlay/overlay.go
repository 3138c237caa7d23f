package overlay

import (
	"fmt"

	"github.com/cogentcore/webgpu/wgpu"
	"github.com/oxycore/engine/common"
	"github.com/oxycore/engine/engine/batch2d"
	"github.com/oxycore/engine/engine/graph"
	"github.com/oxycore/engine/engine/logx"
	"github.com/oxycore/engine/engine/pass"
	"github.com/oxycore/engine/engine/rendercmd"
	"github.com/oxycore/engine/engine/renderer/shader"
)

// uboSize is the byte size of the camera uniform block the vertex shader
// declares: mat4x4 (64) + vec2 (8) + f32 (4) + 4 bytes of tail padding so
// the struct's WGSL-required 16-byte alignment holds for the whole buffer.
const uboSize = 80

// Overlay is the one concrete, reachable caller of rendercmd.Queue,
// engine/pass, engine/graph, and engine/batch2d (spec §4.5-§4.8): it wires
// a WGPUBackend to a single-pass Render Graph and an Instanced 2D Batcher
// so application code can draw screen-space quads onto the frame the main
// 3D renderer already produced, through the same Render Command vocabulary
// the rest of the engine is specified against rather than a bespoke path.
type Overlay struct {
	backend *WGPUBackend
	queue   *rendercmd.Queue
	graph   *graph.Graph
	adapter *shader.Adapter
	batcher *batch2d.Batcher

	program rendercmd.Handle
	ubo     rendercmd.Handle

	renderThread int64
	log          logx.Logger

	width, height int32
	inFrame       bool
}

// Config collects Overlay construction parameters.
type Config struct {
	Device       *wgpu.Device
	Queue        *wgpu.Queue
	ColorFormat  wgpu.TextureFormat
	RenderThread int64
	Log          logx.Logger
}

// New builds an Overlay's backend, shader program, uniform buffer, Render
// Graph pass, and Batcher, ready for per-frame Begin/DrawQuad/End calls.
func New(cfg Config) (*Overlay, error) {
	log := cfg.Log
	if log == nil {
		log = logx.New("Overlay")
	}

	backend := NewWGPUBackend(cfg.Device, cfg.Queue, cfg.ColorFormat, log)

	program, err := backend.RegisterShaderProgram(overlayVertexShader, overlayFragmentShader, "vs_main", "fs_main")
	if err != nil {
		return nil, fmt.Errorf("overlay: register shader program: %w", err)
	}

	uboHandles := backend.GenBuffers(1)
	ubo := uboHandles[0]
	backend.BindBuffer(rendercmd.BufferTargetUniform, ubo)
	backend.BufferData(rendercmd.BufferTargetUniform, make([]byte, uboSize), rendercmd.UsageDynamic)

	reflection := map[string]shader.UniformSlot{
		"view_projection": {Kind: shader.SlotUniform, Offset: 0, Size: 64},
		"viewport_size":   {Kind: shader.SlotUniform, Offset: 64, Size: 8},
		"pixel_snap":      {Kind: shader.SlotUniform, Offset: 72, Size: 4},
		"albedo":          {Kind: shader.SlotTexture, Binding: 1},
	}
	adapter := shader.NewAdapter(program, reflection, ubo, uboSize, log)

	g := graph.New(backend, log)
	g.AddPass(pass.Spec{
		Name:      "overlay2d",
		HasTarget: false, // the swapchain view bound in BeginFrame, not a graph-owned framebuffer
		ClearFlags: 0,    // must preserve whatever the main 3D pass already drew
		Depth:     rendercmd.DepthState{}, // test/write both off: 2D quads never depth-test
		Blend: rendercmd.BlendState{
			Enabled:   true,
			SrcFactor: rendercmd.BlendSrcAlpha,
			DstFactor: rendercmd.BlendOneMinusSrcAlpha,
			Op:        rendercmd.BlendOpAdd,
		},
		Cull: rendercmd.DefaultCullState,
	})

	// MaxTextureSlots(2): slot 0 is batch2d's reserved white texture, slot 1
	// is the one real texture a sub-batch may reference — the overlay's
	// bind group (currentBindGroup in pipeline.go) has exactly one
	// texture_2d binding, so it can only ever sample one slot per draw.
	batcher := batch2d.New(backend, adapter, batch2d.WithMaxTextureSlots(2), batch2d.WithLogger(log))

	queue := rendercmd.New(rendercmd.WithRenderThread(cfg.RenderThread), rendercmd.WithLogger(log))

	return &Overlay{
		backend:      backend,
		queue:        queue,
		graph:        g,
		adapter:      adapter,
		batcher:      batcher,
		program:      program,
		ubo:          ubo,
		renderThread: cfg.RenderThread,
		log:          log,
	}, nil
}

// RegisterTexture uploads an RGBA8 width x height image and returns a
// Handle usable with DrawQuad. Intended for setup-time asset loading, not
// per-frame use.
func (o *Overlay) RegisterTexture(width, height int32, rgba8 []byte) rendercmd.Handle {
	handles := o.backend.GenTextures(1)
	h := handles[0]
	o.backend.BindTextureTarget(rendercmd.TextureTarget2D, h)
	o.backend.TexImage2D(rendercmd.TextureTarget2D, 0, width, height, rgba8)
	return h
}

// SubmitAsync queues cmd for execution against the overlay's backend on
// the next Begin, from any calling thread — the path a loader thread would
// use to, say, rebind a texture (via rendercmd.NewBindTexture) without
// taking a direct backend reference. Begin drains this queue before the
// batcher starts recording its own draws, so queued commands always land
// before this frame's quads.
func (o *Overlay) SubmitAsync(callingThread int64, cmd rendercmd.Command) {
	o.queue.Submit(callingThread, cmd)
}

// Begin opens the overlay's command encoder and render pass against view
// (the frame's swapchain color view), drains any commands queued via
// SubmitAsync, and starts a fresh batcher scene sized to width x height
// screen pixels with (0,0) at the top-left.
func (o *Overlay) Begin(view *wgpu.TextureView, width, height int32) error {
	if err := o.backend.BeginFrame(view); err != nil {
		return fmt.Errorf("overlay: begin frame: %w", err)
	}
	o.width, o.height = width, height
	o.inFrame = true

	o.queue.BeginFrame()
	o.queue.Process(o.backend, o.queue.Depth())

	o.graph.Begin()
	o.graph.BeginPass("overlay2d")

	var viewProj [16]float32
	common.Ortho(viewProj[:], 0, float32(width), float32(height), 0, -1, 1)
	o.batcher.SetCamera(batch2d.Camera{
		ViewProjection: viewProj,
		ViewportWidth:  float32(width),
		ViewportHeight: float32(height),
		PixelSnap:      false,
	})
	o.batcher.BeginScene()
	return nil
}

// DrawQuad draws one screen-space quad, per batch2d.Batcher.DrawQuad.
func (o *Overlay) DrawQuad(center, halfSize [2]float32, color [4]float32, texture rendercmd.Handle, rotationZ float32) {
	o.batcher.DrawQuad(center, halfSize, color, texture, [3]float32{0, 0, rotationZ}, 0)
}

// End finishes the batcher's scene, ends the graph's pass and frame, and
// submits the overlay's command buffer. Callers present the surface
// themselves afterward (renderer.Renderer.Present), once both the main and
// overlay command buffers have been submitted.
func (o *Overlay) End() {
	if !o.inFrame {
		o.log.Warnf("overlay: end called without a matching begin, ignoring")
		return
	}
	o.batcher.EndScene()
	o.graph.Execute()
	o.backend.EndFrame()
	o.inFrame = false
}

// Stats returns the most recently completed scene's batcher statistics.
func (o *Overlay) Stats() batch2d.Stats { return o.batcher.Stats() }

// Shutdown flushes any remaining queued async commands and tears down the
// graph.
func (o *Overlay) Shutdown() {
	o.queue.Shutdown(o.backend)
	o.graph.Shutdown()
}
