package mutate

import (
	"strconv"
	"strings"

	"github.com/hazyhaar/iwa/internal/rng"
	"github.com/hazyhaar/iwa/overlay"
	"github.com/hazyhaar/iwa/palette"
)

// generatePlan produces a fresh plan for (project, seed, url), sampling
// the palette when one is loaded and synthesizing a fallback otherwise.
func (e *Engine) generatePlan(urlPath, rawURL string, seed int) (*Plan, PlanSource) {
	if e.palette != nil {
		return e.planFromPalette(urlPath, rawURL, seed), SourcePalette
	}
	return e.fallbackPlan(rawURL, seed), SourceFallback
}

func (e *Engine) planFromPalette(urlPath, rawURL string, seed int) *Plan {
	plan := &Plan{}
	if e.cfg.EnableD1 {
		plan.D1 = e.sampleInstructions(palette.PhaseD1, urlPath, rawURL, seed)
	}
	if e.cfg.EnableD3 {
		plan.D3 = e.sampleInstructions(palette.PhaseD3, urlPath, rawURL, seed)
	}
	if e.cfg.EnableD4 {
		plan.D4 = e.renderOverlays(urlPath, rawURL, seed)
	}
	return plan
}

// sampleInstructions filters candidates by URL, shuffles them with the
// phase-scoped generator, and renders the first PaletteMaxPerPhase.
// Uniform sampling without replacement; template weight is advisory.
func (e *Engine) sampleInstructions(phase palette.Phase, urlPath, rawURL string, seed int) []Instruction {
	candidates := e.palette.CandidatesFor(urlPath, phase)
	if len(candidates) == 0 {
		return nil
	}
	r := rng.New(rng.Key{Project: e.projectID, Seed: seed, Phase: string(phase), URL: rawURL})
	perm := r.Perm(len(candidates))
	n := e.cfg.PaletteMaxPerPhase
	if n > len(perm) {
		n = len(perm)
	}
	out := make([]Instruction, 0, n)
	for _, idx := range perm[:n] {
		out = append(out, renderInstruction(candidates[idx], seed))
	}
	return out
}

// renderOverlays renders every d4 candidate; the runtime script (or the
// browser-route adapter) decides when each actually fires.
func (e *Engine) renderOverlays(urlPath, rawURL string, seed int) []OverlayInstruction {
	candidates := e.palette.CandidatesFor(urlPath, palette.PhaseD4)
	if len(candidates) == 0 {
		return nil
	}
	r := rng.New(rng.Key{Project: e.projectID, Seed: seed, Phase: string(palette.PhaseD4), URL: rawURL})
	out := make([]OverlayInstruction, 0, len(candidates))
	for _, t := range candidates {
		dismiss := t.DismissSelector
		if dismiss == "" {
			dismiss = overlay.DefaultDismissSelector
		}
		out = append(out, OverlayInstruction{
			TriggerAfter:    overlay.ResolveTrigger(t.TriggerAfter, r, e.cfg.D4MinAction, e.cfg.D4MaxAction),
			HTML:            renderSeed(t.HTML, seed),
			OverlayType:     renderSeed(t.OverlayType, seed),
			Blocking:        t.Blocking,
			DismissSelector: renderSeed(dismiss, seed),
		})
	}
	return out
}

// renderInstruction materialises one template, substituting the {{seed}}
// token in every string field for traceability in inspected output.
func renderInstruction(t palette.Template, seed int) Instruction {
	return Instruction{
		Target:    renderSeed(t.Selector, seed),
		Operation: Op(t.Operation),
		HTML:      renderSeed(t.HTML, seed),
		Attribute: renderSeed(t.Attribute, seed),
		Value:     renderSeed(t.Value, seed),
		Text:      renderSeed(t.Text, seed),
		NewName:   renderSeed(t.NewName, seed),
	}
}

const seedToken = "{{seed}}"

func renderSeed(s string, seed int) string {
	if !strings.Contains(s, seedToken) {
		return s
	}
	return strings.ReplaceAll(s, seedToken, strconv.Itoa(seed))
}
