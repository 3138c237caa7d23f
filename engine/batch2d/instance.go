package batch2d

import "github.com/chewxy/math32"

// InstanceRecord is the packed per-quad instance data the GPU consumes via
// divisor=1 vertex attributes (spec §4.8's instance attribute layout,
// locations 2-7). Field order matches the declared offsets exactly — all
// nine 4-byte fields land on 4-byte boundaries, giving the 36-byte stride
// the spec calls out with no implicit Go padding.
type InstanceRecord struct {
	CenterX, CenterY     float32
	HalfX, HalfY         float32
	ColorRGBA8           uint32
	TexIndex             uint32
	RotSin, RotCos       float32
	Z                    float32
}

// PackColor converts an [0,1]-range RGBA color into one packed 32-bit
// word, round-to-nearest then clamp to [0,255] per channel, per spec
// §4.8's color packing rule.
func PackColor(r, g, b, a float32) uint32 {
	return uint32(packChannel(r)) | uint32(packChannel(g))<<8 | uint32(packChannel(b))<<16 | uint32(packChannel(a))<<24
}

func packChannel(c float32) uint8 {
	v := math32.Round(c * 255)
	if v < 0 {
		return 0
	}
	if v > 255 {
		return 255
	}
	return uint8(v)
}
