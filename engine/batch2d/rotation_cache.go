package batch2d

import "github.com/chewxy/math32"

// rotationTolerance is the angle quantization step used to key the
// rotation cache; incoming Euler triples that round to the same step in
// every component as a cached entry hit it.
const rotationTolerance = 1e-3

// rotationKey is the quantized (x, y, z) Euler triple used to key the
// cache. Quantizing to the tolerance step before using the triple as a map
// key avoids a linear scan over cached entries; two angles closer than the
// tolerance that round to adjacent steps get different keys and miss.
type rotationKey struct {
	x, y, z int32
}

func quantize(v float32) int32 {
	return int32(math32.Round(v / rotationTolerance))
}

func keyFor(x, y, z float32) rotationKey {
	return rotationKey{quantize(x), quantize(y), quantize(z)}
}

// sinCos is one cached rotation result: the sine and cosine of the
// triple's Z component, which is all the 2D batcher ever draws with.
type sinCos struct {
	sin, cos float32
}

// rotationCache is a small LRU keyed by quantized Euler triple, avoiding
// repeated trig for quads sharing an orientation within a frame (spec
// §4.8: "capacity >= 16; LRU by frame_last_used").
type rotationCache struct {
	capacity int
	entries  map[rotationKey]*rotationEntry
	order    []*rotationEntry // insertion order; recency is tracked by lastUsedTick
}

type rotationEntry struct {
	key          rotationKey
	value        sinCos
	lastUsedTick uint64
}

func newRotationCache(capacity int) *rotationCache {
	if capacity < 16 {
		capacity = 16
	}
	return &rotationCache{capacity: capacity, entries: make(map[rotationKey]*rotationEntry, capacity)}
}

// sinCosFor returns (sin, cos) of z, serving from cache when the (x, y, z)
// triple has been seen (within tolerance) this frame or a recent one. tick
// is the caller's monotonically increasing per-draw counter, used to order
// LRU eviction.
func (c *rotationCache) sinCosFor(x, y, z float32, tick uint64) sinCos {
	k := keyFor(x, y, z)
	if e, ok := c.entries[k]; ok {
		e.lastUsedTick = tick
		return e.value
	}

	v := sinCos{sin: math32.Sin(z), cos: math32.Cos(z)}
	e := &rotationEntry{key: k, value: v, lastUsedTick: tick}

	if len(c.entries) >= c.capacity {
		c.evictLRU()
	}
	c.entries[k] = e
	c.order = append(c.order, e)
	return v
}

func (c *rotationCache) evictLRU() {
	if len(c.order) == 0 {
		return
	}
	lruIdx := 0
	for i, e := range c.order {
		if e.lastUsedTick < c.order[lruIdx].lastUsedTick {
			lruIdx = i
		}
	}
	victim := c.order[lruIdx]
	delete(c.entries, victim.key)
	c.order = append(c.order[:lruIdx], c.order[lruIdx+1:]...)
}
