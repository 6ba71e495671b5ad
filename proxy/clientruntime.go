package proxy

import (
	"encoding/json"
	"strings"
)

// clientConfigJS builds the per-page configuration script for the client
// runtime: seed, enabled phases, site key, and the deterministically
// resolved overlay configs for this (url, seed).
func (s *Service) clientConfigJS(rawURL string, seed int) string {
	plan := s.engine.PreviewPlan(rawURL, seed)
	ec := s.engine.Config()
	data, err := json.Marshal(map[string]any{
		"seed":     seed,
		"phases":   enabledPhases(ec.EnableD1, ec.EnableD3, ec.EnableD4),
		"site_key": s.cfg.SiteKey,
		"overlays": plan.D4,
	})
	if err != nil {
		return ""
	}
	return "window.__iwa = " + string(data) + ";"
}

func enabledPhases(d1, d3, d4 bool) []string {
	var out []string
	if d1 {
		out = append(out, "d1")
	}
	if d3 {
		out = append(out, "d3")
	}
	if d4 {
		out = append(out, "d4")
	}
	return out
}

// injectClientRuntime inserts the config script and the runtime asset tag
// before </head>, falling back to </body>, falling back to appending.
func injectClientRuntime(html, configJS string) string {
	tags := `<script data-iwa-config>` + configJS + `</script>` +
		`<script src="/iwa/runtime.js" defer></script>`

	lower := strings.ToLower(html)
	for _, closer := range []string{"</head>", "</body>"} {
		if idx := strings.Index(lower, closer); idx >= 0 {
			return html[:idx] + tags + html[idx:]
		}
	}
	return html + tags
}
