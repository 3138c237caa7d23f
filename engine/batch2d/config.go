package batch2d

import "github.com/oxycore/engine/engine/logx"

// Config collects Batcher construction parameters behind builder options,
// matching the engine's functional-option construction style.
type Config struct {
	MaxQuads        int
	FramesInFlight  int
	MaxTextureSlots int
	RotationCacheSize int
	Log             logx.Logger
}

func defaultConfig() Config {
	return Config{
		MaxQuads:          4096,
		FramesInFlight:    3,
		MaxTextureSlots:   16,
		RotationCacheSize: 16,
		Log:               logx.New("Batch2D"),
	}
}

// BuilderOption configures a Batcher at construction time.
type BuilderOption func(*Config)

// WithMaxQuads sets the per-chunk instance capacity.
func WithMaxQuads(n int) BuilderOption { return func(c *Config) { c.MaxQuads = n } }

// WithFramesInFlight sets the number of ring chunks (spec's N, default 3).
func WithFramesInFlight(n int) BuilderOption { return func(c *Config) { c.FramesInFlight = n } }

// WithMaxTextureSlots sets the hardware sampler slot limit, including slot
// 0's reserved white texture.
func WithMaxTextureSlots(n int) BuilderOption { return func(c *Config) { c.MaxTextureSlots = n } }

// WithRotationCacheSize sets the rotation LRU's capacity (floored at 16
// per spec §4.8).
func WithRotationCacheSize(n int) BuilderOption { return func(c *Config) { c.RotationCacheSize = n } }

// WithLogger overrides the batcher's logger.
func WithLogger(l logx.Logger) BuilderOption { return func(c *Config) { c.Log = l } }
