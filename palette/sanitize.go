package palette

import (
	"github.com/microcosm-cc/bluemonday"
)

// payloadPolicy sanitizes template HTML payloads at load time. Palettes are
// authored files, but they travel between machines and may be generated by
// tooling; script and event-handler payloads are stripped before any
// template reaches a page. The overlay runtime relies on data-* attributes
// (data-iwa-dismiss, data-iwa-overlay), so those pass through.
var payloadPolicy = newPayloadPolicy()

func newPayloadPolicy() *bluemonday.Policy {
	p := bluemonday.UGCPolicy()
	p.AllowElements("button", "dialog", "section", "header", "footer", "nav")
	p.AllowAttrs("class", "id", "style", "role", "aria-label", "aria-hidden").Globally()
	p.AllowDataAttributes()
	return p
}

// SanitizeHTML runs a markup payload through the palette policy.
func SanitizeHTML(markup string) string {
	return payloadPolicy.Sanitize(markup)
}

// sanitize rewrites every template HTML payload in place.
func (p *Palette) sanitize() {
	for i := range p.Templates {
		if p.Templates[i].HTML != "" {
			p.Templates[i].HTML = SanitizeHTML(p.Templates[i].HTML)
		}
	}
}
