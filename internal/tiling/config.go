package tiling

// Config holds the architectural constants the planner works with. It is
// passed to each Planner explicitly; there is no package-level mutable state.
type Config struct {
	// BlockBytes is the DMA alignment granule. Element widths must divide it.
	BlockBytes int `yaml:"block_bytes" json:"block_bytes"`
	// ReservedBytes is subtracted from the staging buffer for runtime bookkeeping.
	ReservedBytes int64 `yaml:"reserved_bytes" json:"reserved_bytes"`
	// MaxUnits caps the unit count; it is also the per-unit array capacity of
	// the plan blob.
	MaxUnits int `yaml:"max_units" json:"max_units"`
	// DefaultBuffering applies when a request leaves Buffering unset.
	DefaultBuffering int `yaml:"default_buffering" json:"default_buffering"`
}

const (
	DefaultBlockBytes    = 32
	DefaultReservedBytes = 512
	DefaultMaxUnits      = 32
	DefaultBufferingRate = 2
)

func DefaultConfig() Config {
	return Config{
		BlockBytes:       DefaultBlockBytes,
		ReservedBytes:    DefaultReservedBytes,
		MaxUnits:         DefaultMaxUnits,
		DefaultBuffering: DefaultBufferingRate,
	}
}

// withDefaults fills zero fields so a partially specified Config (for
// example one loaded from YAML) behaves like DefaultConfig.
func (c Config) withDefaults() Config {
	d := DefaultConfig()
	if c.BlockBytes <= 0 {
		c.BlockBytes = d.BlockBytes
	}
	if c.ReservedBytes < 0 {
		c.ReservedBytes = d.ReservedBytes
	}
	if c.MaxUnits <= 0 {
		c.MaxUnits = d.MaxUnits
	}
	if c.DefaultBuffering <= 0 {
		c.DefaultBuffering = d.DefaultBuffering
	}
	return c
}

// Request is the planner input for one operator invocation.
type Request struct {
	// TotalElements is the broadcast-resolved element count.
	TotalElements int64 `json:"total_elements"`
	// ElementBytes is the width of the widest dtype in play.
	ElementBytes int `json:"element_bytes"`
	// Units is the number of parallel units the platform offers.
	Units int `json:"units"`
	// BufferBytes is the staging buffer capacity before the reserved margin.
	BufferBytes int64 `json:"buffer_bytes"`
	// Buffering is the multi-buffering factor; zero selects the default.
	Buffering int `json:"buffering,omitempty"`
	// WorkingSet is the number of same-size scratch buffers the transform needs.
	WorkingSet int `json:"working_set"`
	// AllowEmpty lets a zero-element request produce a trivial plan.
	AllowEmpty bool `json:"allow_empty,omitempty"`
}
