// Package palette holds the versioned mutation template catalogs.
//
// A palette is a per-project, pre-authored list of declarative mutation
// templates, loaded once and shared read-only across all concurrent
// requests for that project. Seeds reuse the same palette; the engine's
// seeded sampling is what makes each seed's rendition differ.
package palette

// Phase is a mutation category.
type Phase string

const (
	// PhaseD1 covers structural mutations (DOM shape).
	PhaseD1 Phase = "d1"
	// PhaseD3 covers attribute and text mutations (selector-breaking).
	PhaseD3 Phase = "d3"
	// PhaseD4 covers runtime overlay injection.
	PhaseD4 Phase = "d4"
)

// TriggerRandom is the sentinel trigger_after value asking the engine to
// draw the trigger count from its configured bounds.
const TriggerRandom = "random"

// Template is one declarative mutation recipe within a catalog.
//
// A template applies only to URLs whose path starts with URLPattern;
// an empty URLPattern matches unconditionally. Weight is advisory: it is
// validated (> 0) but sampling is uniform, without replacement.
type Template struct {
	ID        string `yaml:"id" json:"id"`
	Phase     Phase  `yaml:"phase" json:"phase"`
	Selector  string `yaml:"selector" json:"selector"`
	Operation string `yaml:"operation" json:"operation"`

	HTML      string `yaml:"html,omitempty" json:"html,omitempty"`
	Attribute string `yaml:"attribute,omitempty" json:"attribute,omitempty"`
	Value     string `yaml:"value,omitempty" json:"value,omitempty"`
	Text      string `yaml:"text,omitempty" json:"text,omitempty"`
	NewName   string `yaml:"new_name,omitempty" json:"new_name,omitempty"`

	URLPattern string  `yaml:"url_pattern,omitempty" json:"url_pattern,omitempty"`
	Weight     float64 `yaml:"weight" json:"weight"`

	// D4 only.
	OverlayType     string `yaml:"overlay_type,omitempty" json:"overlay_type,omitempty"`
	Blocking        bool   `yaml:"blocking,omitempty" json:"blocking,omitempty"`
	DismissSelector string `yaml:"dismiss_selector,omitempty" json:"dismiss_selector,omitempty"`
	// TriggerAfter is an integer literal or "random" (empty means random).
	TriggerAfter string `yaml:"trigger_after,omitempty" json:"trigger_after,omitempty"`
}

// Palette is a versioned, per-project template catalog.
type Palette struct {
	ProjectID   string     `yaml:"project_id" json:"project_id"`
	Version     string     `yaml:"version" json:"version"`
	GeneratedBy string     `yaml:"generated_by,omitempty" json:"generated_by,omitempty"`
	Templates   []Template `yaml:"templates" json:"templates"`
}

// CandidatesFor returns the templates of one phase whose url_pattern is
// empty or a prefix of the URL path, in catalog order.
func (p *Palette) CandidatesFor(urlPath string, phase Phase) []Template {
	var out []Template
	for _, t := range p.Templates {
		if t.Phase != phase {
			continue
		}
		if t.URLPattern != "" && !hasPathPrefix(urlPath, t.URLPattern) {
			continue
		}
		out = append(out, t)
	}
	return out
}

func hasPathPrefix(path, prefix string) bool {
	return len(path) >= len(prefix) && path[:len(prefix)] == prefix
}
