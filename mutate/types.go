// Package mutate is the core HTML mutation engine. It turns
// (project, seed, url, html) into deterministically varied HTML: plans are
// generated from a palette (or a built-in fallback), cached with
// near-duplicate reuse, applied to a parsed tree, and finished with
// overlay-injection logic. Both delivery adapters (the reverse proxy and
// the browser route) consume the same engine, so their output never
// drifts apart.
package mutate

import "github.com/hazyhaar/iwa/overlay"

// Op identifies one mutation operation. Operations are phase-scoped:
// structural ops belong to d1, attribute/text ops to d3.
type Op string

// Structural (d1) operations.
const (
	OpInsertBefore     Op = "insert_before"
	OpInsertAfter      Op = "insert_after"
	OpPrependChild     Op = "prepend_child"
	OpAppendChild      Op = "append_child" // default for unrecognized d1 ops
	OpWrapWith         Op = "wrap_with"
	OpReplaceInnerHTML Op = "replace_inner_html"
	OpShuffleChildren  Op = "shuffle_children"
)

// Attribute/text (d3) operations. Unrecognized d3 ops are no-ops.
const (
	OpRenameAttribute Op = "rename_attribute"
	OpSetAttribute    Op = "set_attribute"
	OpReplaceText     Op = "replace_text"
	OpAppendClass     Op = "append_class"
	OpRemoveAttribute Op = "remove_attribute"
)

// Instruction is one rendered d1 or d3 mutation step. Optional fields are
// populated only when the source template carried them.
type Instruction struct {
	Target    string `json:"target"`
	Operation Op     `json:"operation"`
	HTML      string `json:"html,omitempty"`
	Attribute string `json:"attribute,omitempty"`
	Value     string `json:"value,omitempty"`
	Text      string `json:"text,omitempty"`
	NewName   string `json:"new_name,omitempty"`
}

// OverlayInstruction is one rendered d4 overlay step.
type OverlayInstruction = overlay.Config

// Plan is the concrete instruction list for one (project, seed, url).
// Ephemeral and cacheable; shared plans are read-only after generation.
type Plan struct {
	D1 []Instruction        `json:"d1,omitempty"`
	D3 []Instruction        `json:"d3,omitempty"`
	D4 []OverlayInstruction `json:"d4,omitempty"`
}

// PlanSource records how a plan was obtained, for audit provenance.
type PlanSource string

const (
	SourceCache    PlanSource = "cache"    // exact cache hit
	SourceSimilar  PlanSource = "similar"  // similarity-based reuse
	SourcePalette  PlanSource = "palette"  // freshly sampled from the catalog
	SourceFallback PlanSource = "fallback" // built-in generator, no catalog
)

// OverlayDelivery selects how resolved d4 overlays reach the page.
type OverlayDelivery int

const (
	// DeliveryScript embeds the self-contained client runtime into the
	// mutated HTML (proxy mode).
	DeliveryScript OverlayDelivery = iota
	// DeliveryAdapter leaves overlays to the caller, which injects them
	// into the live page once its own action counter crosses each
	// trigger (browser-route mode).
	DeliveryAdapter
)

// Result is the outcome of one Mutate call.
type Result struct {
	HTML   string
	Plan   *Plan
	Source PlanSource
	// AuditID is the id of the audit record emitted for this call, empty
	// when no sink is configured.
	AuditID string
}
