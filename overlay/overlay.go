// Package overlay resolves D4 overlay triggers and produces the client
// runtime that injects overlays after N user interactions.
//
// Overlay "has fired" state never lives here: the browser-route adapter
// tracks it per session, and the embedded client script tracks it inside
// the page. Resolution is identical in both modes, so the same
// (project, seed, url) always proposes the same trigger count.
package overlay

import (
	"math/rand"
	"strconv"
	"strings"
)

// DefaultDismissSelector locates the dismiss control inside an overlay
// when the template does not name one.
const DefaultDismissSelector = "[data-iwa-dismiss]"

// Config is one rendered overlay instruction. Stateless per call.
type Config struct {
	TriggerAfter    int    `json:"trigger_after"`
	HTML            string `json:"html"`
	OverlayType     string `json:"overlay_type"`
	Blocking        bool   `json:"blocking"`
	DismissSelector string `json:"dismiss_selector,omitempty"`
}

// ResolveTrigger turns a raw trigger_after value into a concrete count.
// An integer literal is used as-is; "random", empty, or any non-integer
// draws uniformly from [min, max] on the given phase-scoped generator.
func ResolveTrigger(raw string, r *rand.Rand, min, max int) int {
	if n, err := strconv.Atoi(strings.TrimSpace(raw)); err == nil {
		return n
	}
	if max < min {
		max = min
	}
	return min + r.Intn(max-min+1)
}

// MinTrigger returns the smallest trigger count among configs, or fallback
// when the list is empty. The client runtime uses it as the floor for its
// safety-delay re-check.
func MinTrigger(configs []Config, fallback int) int {
	if len(configs) == 0 {
		return fallback
	}
	min := configs[0].TriggerAfter
	for _, c := range configs[1:] {
		if c.TriggerAfter < min {
			min = c.TriggerAfter
		}
	}
	return min
}
