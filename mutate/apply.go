package mutate

import (
	"math/rand"

	"golang.org/x/net/html"

	"github.com/hazyhaar/iwa/internal/dom"
	"github.com/hazyhaar/iwa/internal/rng"
)

// applyPlan runs the plan's structural then attribute instructions against
// the tree, in list order: later instructions observe earlier effects.
// Instructions whose selector matches nothing are silently skipped.
// Returns the number of nodes touched per phase, for audit metrics.
func (e *Engine) applyPlan(doc *dom.Document, plan *Plan, rawURL string, seed int) (d1Nodes, d3Nodes int) {
	if e.cfg.EnableD1 && len(plan.D1) > 0 {
		// shuffle_children draws from the d1 phase stream so reorderings
		// stay reproducible per (project, seed, url).
		r := rng.New(rng.Key{Project: e.projectID, Seed: seed, Phase: "d1", URL: rawURL})
		for _, ins := range plan.D1 {
			d1Nodes += applyStructural(doc, ins, r)
		}
	}
	if e.cfg.EnableD3 && len(plan.D3) > 0 {
		for _, ins := range plan.D3 {
			d3Nodes += applyAttribute(doc, ins)
		}
	}
	return d1Nodes, d3Nodes
}

func applyStructural(doc *dom.Document, ins Instruction, r *rand.Rand) int {
	targets := doc.QuerySelectorAll(ins.Target)
	if len(targets) == 0 {
		return 0
	}
	for _, n := range targets {
		switch ins.Operation {
		case OpInsertBefore:
			dom.InsertBefore(n, dom.ParseFragment(ins.HTML))
		case OpInsertAfter:
			dom.InsertAfter(n, dom.ParseFragment(ins.HTML))
		case OpPrependChild:
			dom.PrependChild(n, dom.ParseFragment(ins.HTML))
		case OpWrapWith:
			dom.Wrap(n, dom.FirstElement(dom.ParseFragment(ins.HTML)))
		case OpReplaceInnerHTML:
			dom.ReplaceChildren(n, dom.ParseFragment(ins.HTML))
		case OpShuffleChildren:
			dom.ShuffleChildren(n, r)
		default:
			// Unrecognized structural operations append.
			dom.AppendChild(n, dom.ParseFragment(ins.HTML))
		}
	}
	return len(targets)
}

func applyAttribute(doc *dom.Document, ins Instruction) int {
	targets := doc.QuerySelectorAll(ins.Target)
	if len(targets) == 0 {
		return 0
	}
	for _, n := range targets {
		applyAttributeOp(n, ins)
	}
	return len(targets)
}

func applyAttributeOp(n *html.Node, ins Instruction) {
	switch ins.Operation {
	case OpRenameAttribute:
		dom.RenameAttr(n, ins.Attribute, ins.NewName)
	case OpSetAttribute:
		dom.SetAttr(n, ins.Attribute, ins.Value)
	case OpReplaceText:
		dom.ReplaceText(n, ins.Text)
	case OpAppendClass:
		dom.AppendClass(n, ins.Value)
	case OpRemoveAttribute:
		dom.RemoveAttr(n, ins.Attribute)
	default:
		// Unrecognized attribute operations are no-ops.
	}
}
