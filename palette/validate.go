package palette

import (
	"fmt"
	"strconv"
)

const (
	maxSelectorLen = 1024
	maxPayloadLen  = 64 * 1024
)

// Validate checks the palette document for structural problems. A palette
// that fails validation is rejected as a whole; the engine then behaves as
// if the project had no catalog.
func (p *Palette) Validate() error {
	if p.ProjectID == "" {
		return fmt.Errorf("%w: project_id is required", ErrInvalidTemplate)
	}
	seen := make(map[string]bool, len(p.Templates))
	for i := range p.Templates {
		t := &p.Templates[i]
		if err := t.validate(); err != nil {
			return fmt.Errorf("template %d (%s): %w", i, t.ID, err)
		}
		if seen[t.ID] {
			return fmt.Errorf("%w: duplicate id %q", ErrInvalidTemplate, t.ID)
		}
		seen[t.ID] = true
	}
	return nil
}

func (t *Template) validate() error {
	if t.ID == "" {
		return fmt.Errorf("%w: id is required", ErrInvalidTemplate)
	}
	switch t.Phase {
	case PhaseD1, PhaseD3, PhaseD4:
	default:
		return fmt.Errorf("%w: unknown phase %q", ErrInvalidTemplate, t.Phase)
	}
	if t.Phase != PhaseD4 && t.Selector == "" {
		return fmt.Errorf("%w: selector is required", ErrInvalidTemplate)
	}
	if len(t.Selector) > maxSelectorLen {
		return fmt.Errorf("%w: selector exceeds %d characters", ErrInvalidTemplate, maxSelectorLen)
	}
	if t.Weight <= 0 {
		return fmt.Errorf("%w: weight must be > 0", ErrInvalidTemplate)
	}
	if len(t.HTML) > maxPayloadLen {
		return fmt.Errorf("%w: html exceeds %d bytes", ErrInvalidTemplate, maxPayloadLen)
	}
	if t.Phase == PhaseD4 {
		if t.HTML == "" {
			return fmt.Errorf("%w: d4 template needs html", ErrInvalidTemplate)
		}
		if t.TriggerAfter != "" && t.TriggerAfter != TriggerRandom {
			if _, err := strconv.Atoi(t.TriggerAfter); err != nil {
				// Non-integer trigger values resolve to random at plan
				// time, but flag obvious typos at load.
				return fmt.Errorf("%w: trigger_after %q is neither an integer nor %q",
					ErrInvalidTemplate, t.TriggerAfter, TriggerRandom)
			}
		}
	}
	return nil
}
