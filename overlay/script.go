package overlay

import (
	_ "embed"
	"encoding/json"
	"fmt"
	"strings"
	"text/template"
)

// RuntimeVersion tags injected scripts and the installation guard, so a
// page can never end up running two copies of different versions.
const RuntimeVersion = "iwa-runtime/1"

//go:embed runtime.js.tmpl
var runtimeSrc string

var runtimeTmpl = template.Must(template.New("runtime").Parse(runtimeSrc))

type runtimeParams struct {
	Version    string
	Configs    string // JS expression evaluating to the overlay config array
	MinTrigger int
}

// Script renders the self-contained client runtime with the overlay
// configs inlined. This is what the engine embeds into proxied pages.
func Script(configs []Config, fallbackMin int) string {
	data, err := json.Marshal(configs)
	if err != nil {
		return ""
	}
	return render(runtimeParams{
		Version:    RuntimeVersion,
		Configs:    string(data),
		MinTrigger: MinTrigger(configs, fallbackMin),
	})
}

// RuntimeJS renders the runtime reading its configs from window.__iwa,
// for the client-runtime proxy mode where the asset is served separately
// from the per-page configuration script.
func RuntimeJS(fallbackMin int) string {
	return render(runtimeParams{
		Version:    RuntimeVersion,
		Configs:    "(window.__iwa && window.__iwa.overlays) || []",
		MinTrigger: fallbackMin,
	})
}

func render(p runtimeParams) string {
	var sb strings.Builder
	if err := runtimeTmpl.Execute(&sb, p); err != nil {
		return ""
	}
	return sb.String()
}

// InjectJS returns a one-shot script that injects a single overlay into
// the live page. The browser-route adapter evaluates it once its session
// action counter crosses the overlay's trigger.
func InjectJS(cfg Config) string {
	data, err := json.Marshal(cfg)
	if err != nil {
		return ""
	}
	return fmt.Sprintf(`(function () {
  var ov = %s;
  var host = document.createElement("div");
  host.innerHTML = ov.html;
  var node = host.firstElementChild || host;
  node.setAttribute("data-iwa-overlay", ov.overlay_type || "overlay");
  if (ov.blocking) { node.setAttribute("data-iwa-blocking", "1"); }
  var sel = ov.dismiss_selector || %q;
  var dismiss = node.querySelector(sel);
  if (dismiss) {
    dismiss.addEventListener("click", function () {
      if (node.parentNode) { node.parentNode.removeChild(node); }
    });
  }
  document.body.appendChild(node);
})();`, data, DefaultDismissSelector)
}
