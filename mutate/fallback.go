package mutate

import (
	"fmt"
	"math/rand"

	"github.com/hazyhaar/iwa/internal/rng"
	"github.com/hazyhaar/iwa/overlay"
)

// fallbackPlan synthesizes a plan purely from (project, seed, url) when no
// catalog exists for the project: a structural wrap plus a hidden spacer,
// two or three attribute/class mutations on common interactive elements,
// and one built-in overlay.
func (e *Engine) fallbackPlan(rawURL string, seed int) *Plan {
	plan := &Plan{}

	if e.cfg.EnableD1 {
		r := rng.New(rng.Key{Project: e.projectID, Seed: seed, Phase: "d1", URL: rawURL})
		wrapTok := fallbackToken(r)
		spacerTok := fallbackToken(r)
		plan.D1 = append(plan.D1,
			Instruction{
				Target:    "div",
				Operation: OpWrapWith,
				HTML:      fmt.Sprintf(`<div class="iwa-w-%s" data-iwa-wrap="{{seed}}"></div>`, wrapTok),
			},
			Instruction{
				Target:    "body",
				Operation: OpPrependChild,
				HTML:      fmt.Sprintf(`<span class="iwa-s-%s" data-iwa-spacer="1" style="display:none"></span>`, spacerTok),
			},
		)
		for i := range plan.D1 {
			plan.D1[i].HTML = renderSeed(plan.D1[i].HTML, seed)
		}
	}

	if e.cfg.EnableD3 {
		r := rng.New(rng.Key{Project: e.projectID, Seed: seed, Phase: "d3", URL: rawURL})
		plan.D3 = append(plan.D3,
			Instruction{
				Target:    "button, a, input",
				Operation: OpAppendClass,
				Value:     "iwa-c-" + fallbackToken(r),
			},
			Instruction{
				Target:    "button",
				Operation: OpSetAttribute,
				Attribute: "data-iwa-v",
				Value:     fmt.Sprintf("%d", seed),
			},
		)
		if r.Intn(2) == 1 {
			plan.D3 = append(plan.D3, Instruction{
				Target:    "a",
				Operation: OpSetAttribute,
				Attribute: "data-iwa-ref",
				Value:     fallbackToken(r),
			})
		}
	}

	if e.cfg.EnableD4 {
		r := rng.New(rng.Key{Project: e.projectID, Seed: seed, Phase: "d4", URL: rawURL})
		variants := overlay.BuiltinVariants()
		v := variants[r.Intn(len(variants))]
		plan.D4 = append(plan.D4, OverlayInstruction{
			TriggerAfter:    overlay.ResolveTrigger("", r, e.cfg.D4MinAction, e.cfg.D4MaxAction),
			HTML:            renderSeed(v.HTML, seed),
			OverlayType:     v.OverlayType,
			Blocking:        v.Blocking,
			DismissSelector: overlay.DefaultDismissSelector,
		})
	}

	return plan
}

// fallbackToken draws a short hex token from the phase generator, used to
// vary generated class names between seeds.
func fallbackToken(r *rand.Rand) string {
	return fmt.Sprintf("%06x", r.Intn(1<<24))
}
