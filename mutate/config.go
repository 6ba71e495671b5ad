package mutate

// PhaseConfig holds the engine's immutable knobs. Construct once per
// engine; never mutate afterward.
type PhaseConfig struct {
	EnableD1 bool `yaml:"enable_d1"`
	EnableD3 bool `yaml:"enable_d3"`
	EnableD4 bool `yaml:"enable_d4"`

	// InstructionCacheSize bounds each (project, seed_bucket) plan cache
	// partition; the oldest entry is evicted beyond it.
	InstructionCacheSize int `yaml:"instruction_cache_size"`

	// HTMLSimilarityThreshold in (0,1]: cached plans are reused for pages
	// whose normalized HTML matches at or above this ratio.
	HTMLSimilarityThreshold float64 `yaml:"html_similarity_threshold"`

	// PaletteMaxPerPhase caps how many d1/d3 templates one plan samples.
	PaletteMaxPerPhase int `yaml:"palette_max_per_phase"`

	// SeedModulus folds seeds into buckets (seed mod modulus) to bound
	// the number of independent cache partitions. 0 keeps seeds as-is.
	SeedModulus int `yaml:"seed_modulus"`

	// D4MinAction and D4MaxAction bound the uniform draw used when an
	// overlay's trigger_after is "random" or missing.
	D4MinAction int `yaml:"d4_min_action"`
	D4MaxAction int `yaml:"d4_max_action"`
}

// DefaultPhaseConfig returns the production defaults: all phases on.
func DefaultPhaseConfig() PhaseConfig {
	return PhaseConfig{
		EnableD1:                true,
		EnableD3:                true,
		EnableD4:                true,
		InstructionCacheSize:    64,
		HTMLSimilarityThreshold: 0.93,
		PaletteMaxPerPhase:      4,
		SeedModulus:             0,
		D4MinAction:             2,
		D4MaxAction:             9,
	}
}

// AnyEnabled reports whether at least one phase runs.
func (c PhaseConfig) AnyEnabled() bool {
	return c.EnableD1 || c.EnableD3 || c.EnableD4
}

func (c *PhaseConfig) applyDefaults() {
	if c.InstructionCacheSize <= 0 {
		c.InstructionCacheSize = 64
	}
	if c.HTMLSimilarityThreshold <= 0 || c.HTMLSimilarityThreshold > 1 {
		c.HTMLSimilarityThreshold = 0.93
	}
	if c.PaletteMaxPerPhase <= 0 {
		c.PaletteMaxPerPhase = 4
	}
	if c.SeedModulus < 0 {
		c.SeedModulus = 0
	}
	if c.D4MinAction <= 0 {
		c.D4MinAction = 2
	}
	if c.D4MaxAction < c.D4MinAction {
		c.D4MaxAction = c.D4MinAction
	}
}

// seedBucket folds a seed into its cache partition bucket.
func (c PhaseConfig) seedBucket(seed int) int {
	if c.SeedModulus > 0 {
		b := seed % c.SeedModulus
		if b < 0 {
			b += c.SeedModulus
		}
		return b
	}
	return seed
}

// phases returns the enabled phase names for audit records.
func (c PhaseConfig) phases() []string {
	var out []string
	if c.EnableD1 {
		out = append(out, "d1")
	}
	if c.EnableD3 {
		out = append(out, "d3")
	}
	if c.EnableD4 {
		out = append(out, "d4")
	}
	return out
}
