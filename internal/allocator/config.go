package allocator

// Config tunes both the single-threaded Heap and the sharded MTHeap.
//
// Built with the functional-options pattern: defaultConfig() returns the
// spec defaults and each WithX wraps an Option that mutates a copy.
type Config struct {
	// AlignSize is the payload alignment, in bytes. The spec fixes this
	// at 4; it is kept configurable only so tests can probe alignUp
	// directly without hard-coding the constant twice.
	AlignSize uintptr

	// AreaSize is the fixed size, in bytes, of each MemArea carved out
	// by the sharded allocator. Default 4096.
	AreaSize uintptr

	// NumAreas is the number of areas created eagerly by HeapMTCreate.
	// Default 8.
	NumAreas int

	// MemoryLimit caps the cumulative size the Region is allowed to
	// grow to, standing in for the kernel refusing to extend the
	// program break. Zero means unlimited.
	MemoryLimit uintptr

	// EnableTracking keeps Heap's per-allocation bookkeeping (Stats())
	// up to date. MTHeap updates its counters whether or not it is set.
	EnableTracking bool

	// EnableDebug attaches the current break offset to the free,
	// realloc and out-of-memory diagnostics, and turns on reporting of
	// tuning reload failures (which carry the error text instead).
	EnableDebug bool

	// TuningPath, if non-empty, names a JSON file of Tuning overrides
	// that HeapMTCreate watches for the life of the MTHeap. Reloads
	// apply to areas created after the reload only; existing areas are
	// never torn down live. Ignored by HeapCreate.
	TuningPath string
}

// Option mutates a Config under construction.
type Option func(*Config)

func defaultConfig() *Config {
	return &Config{
		AlignSize:      4,
		AreaSize:       4096,
		NumAreas:       8,
		MemoryLimit:    0,
		EnableTracking: true,
		EnableDebug:    false,
	}
}

// WithAlignSize overrides the payload alignment. Values other than 4
// deviate from the spec and exist for experimentation only.
func WithAlignSize(n uintptr) Option {
	return func(c *Config) { c.AlignSize = n }
}

// WithAreaSize overrides the MemArea size used by the sharded allocator.
func WithAreaSize(n uintptr) Option {
	return func(c *Config) { c.AreaSize = n }
}

// WithNumAreas overrides the number of areas created at HeapMTCreate.
func WithNumAreas(n int) Option {
	return func(c *Config) { c.NumAreas = n }
}

// WithMemoryLimit caps total Region growth. Zero disables the cap.
func WithMemoryLimit(n uintptr) Option {
	return func(c *Config) { c.MemoryLimit = n }
}

// WithTracking toggles allocation-count/byte-count bookkeeping.
func WithTracking(enabled bool) Option {
	return func(c *Config) { c.EnableTracking = enabled }
}

// WithDebug toggles verbose diagnostics.
func WithDebug(enabled bool) Option {
	return func(c *Config) { c.EnableDebug = enabled }
}

// WithTuningPath arranges for HeapMTCreate to watch path for Tuning
// overrides, per spec.md §10.2.
func WithTuningPath(path string) Option {
	return func(c *Config) { c.TuningPath = path }
}

// NewConfig builds a Config from defaults plus the given options.
func NewConfig(opts ...Option) *Config {
	c := defaultConfig()
	for _, opt := range opts {
		opt(c)
	}

	return c
}

// align rounds x up to the next multiple of AlignSize, per spec.md §3:
//
//	align(x) = ((x - 1) >> 2 << 2) + 4   (for AlignSize == 4)
//
// which maps any positive x to the smallest multiple of four >= x and
// also rounds the input 0 up to 4. Generalized here to an arbitrary
// power-of-two AlignSize via alignUp.
func (c *Config) align(size uintptr) uintptr {
	if size == 0 {
		size = 1
	}

	return alignUp(size, c.AlignSize)
}

// alignUp aligns size up to the nearest multiple of alignment, which
// must be a power of two.
func alignUp(size, alignment uintptr) uintptr {
	return (size + alignment - 1) &^ (alignment - 1)
}
