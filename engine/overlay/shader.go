package overlay

// overlayVertexShader and overlayFragmentShader implement the instanced
// quad the batcher draws (spec §4.8): four corners come from
// @builtin(vertex_index) (no per-vertex buffer), and the instance
// attributes at locations 2-7 match batch2d.bindInstanceAttributes exactly
// (center, half-size, packed color, texture index, sin/cos rotation, z).
const overlayVertexShader = `
struct Camera {
    view_projection: mat4x4<f32>,
    viewport_size: vec2<f32>,
    pixel_snap: f32,
    _pad: f32,
};

@group(0) @binding(0) var<uniform> camera: Camera;

struct VertexOut {
    @builtin(position) position: vec4<f32>,
    @location(0) uv: vec2<f32>,
    @location(1) color: vec4<f32>,
    @location(2) @interpolate(flat) tex_index: u32,
};

fn unpack_color(packed: u32) -> vec4<f32> {
    let r = f32((packed >> 0u) & 0xffu) / 255.0;
    let g = f32((packed >> 8u) & 0xffu) / 255.0;
    let b = f32((packed >> 16u) & 0xffu) / 255.0;
    let a = f32((packed >> 24u) & 0xffu) / 255.0;
    return vec4<f32>(r, g, b, a);
}

@vertex
fn vs_main(
    @builtin(vertex_index) vertex_index: u32,
    @location(2) center: vec2<f32>,
    @location(3) half_size: vec2<f32>,
    @location(4) color_rgba8: u32,
    @location(5) tex_index: u32,
    @location(6) rot_sin_cos: vec2<f32>,
    @location(7) z: f32,
) -> VertexOut {
    var corners = array<vec2<f32>, 4>(
        vec2<f32>(-1.0, -1.0),
        vec2<f32>(1.0, -1.0),
        vec2<f32>(-1.0, 1.0),
        vec2<f32>(1.0, 1.0),
    );
    var uvs = array<vec2<f32>, 4>(
        vec2<f32>(0.0, 1.0),
        vec2<f32>(1.0, 1.0),
        vec2<f32>(0.0, 0.0),
        vec2<f32>(1.0, 0.0),
    );
    let corner = corners[vertex_index];
    let local = vec2<f32>(corner.x * half_size.x, corner.y * half_size.y);

    let s = rot_sin_cos.x;
    let c = rot_sin_cos.y;
    let rotated = vec2<f32>(local.x * c - local.y * s, local.x * s + local.y * c);

    var world = center + rotated;
    if (camera.pixel_snap > 0.5) {
        world = floor(world + vec2<f32>(0.5, 0.5));
    }

    var out: VertexOut;
    out.position = camera.view_projection * vec4<f32>(world, z, 1.0);
    out.uv = uvs[vertex_index];
    out.color = unpack_color(color_rgba8);
    out.tex_index = tex_index;
    return out;
}
`

const overlayFragmentShader = `
@group(0) @binding(1) var overlay_texture: texture_2d<f32>;
@group(0) @binding(2) var overlay_sampler: sampler;

struct VertexOut {
    @builtin(position) position: vec4<f32>,
    @location(0) uv: vec2<f32>,
    @location(1) color: vec4<f32>,
    @location(2) @interpolate(flat) tex_index: u32,
};

@fragment
fn fs_main(in: VertexOut) -> @location(0) vec4<f32> {
    let sampled = textureSample(overlay_texture, overlay_sampler, in.uv);
    return sampled * in.color;
}
`
