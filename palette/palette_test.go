package palette

import (
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func validPalette() *Palette {
	return &Palette{
		ProjectID: "shop",
		Version:   "3",
		Templates: []Template{
			{ID: "wrap-cards", Phase: PhaseD1, Selector: ".card", Operation: "wrap_with",
				HTML: `<div class="v-{{seed}}"></div>`, Weight: 1},
			{ID: "rename-track", Phase: PhaseD3, Selector: "button", Operation: "rename_attribute",
				Attribute: "data-track", NewName: "data-t{{seed}}", Weight: 2},
			{ID: "checkout-only", Phase: PhaseD3, Selector: "a", Operation: "append_class",
				Value: "x", Weight: 1, URLPattern: "/checkout"},
			{ID: "banner", Phase: PhaseD4, Operation: "overlay",
				HTML: `<div data-iwa-dismiss>ok</div>`, OverlayType: "top_banner",
				TriggerAfter: "3", Weight: 1},
		},
	}
}

func TestValidateOK(t *testing.T) {
	if err := validPalette().Validate(); err != nil {
		t.Fatalf("valid palette rejected: %v", err)
	}
}

func TestValidateRejections(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(*Palette)
	}{
		{"missing project id", func(p *Palette) { p.ProjectID = "" }},
		{"missing template id", func(p *Palette) { p.Templates[0].ID = "" }},
		{"duplicate id", func(p *Palette) { p.Templates[1].ID = p.Templates[0].ID }},
		{"unknown phase", func(p *Palette) { p.Templates[0].Phase = "d9" }},
		{"missing selector", func(p *Palette) { p.Templates[0].Selector = "" }},
		{"zero weight", func(p *Palette) { p.Templates[0].Weight = 0 }},
		{"d4 without html", func(p *Palette) { p.Templates[3].HTML = "" }},
		{"bad trigger", func(p *Palette) { p.Templates[3].TriggerAfter = "soon" }},
		{"oversize selector", func(p *Palette) {
			p.Templates[0].Selector = strings.Repeat("a", maxSelectorLen+1)
		}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			p := validPalette()
			tt.mutate(p)
			err := p.Validate()
			if !errors.Is(err, ErrInvalidTemplate) {
				t.Fatalf("err = %v, want ErrInvalidTemplate", err)
			}
		})
	}
}

func TestTriggerRandomAccepted(t *testing.T) {
	p := validPalette()
	p.Templates[3].TriggerAfter = TriggerRandom
	if err := p.Validate(); err != nil {
		t.Fatalf("trigger_after random rejected: %v", err)
	}
	p.Templates[3].TriggerAfter = ""
	if err := p.Validate(); err != nil {
		t.Fatalf("empty trigger_after rejected: %v", err)
	}
}

func TestCandidatesFor(t *testing.T) {
	p := validPalette()

	d3 := p.CandidatesFor("/", PhaseD3)
	if len(d3) != 1 || d3[0].ID != "rename-track" {
		t.Fatalf("d3 candidates for / = %v", ids(d3))
	}

	d3 = p.CandidatesFor("/checkout/step1", PhaseD3)
	if len(d3) != 2 {
		t.Fatalf("d3 candidates for /checkout/step1 = %v", ids(d3))
	}

	if got := p.CandidatesFor("/", PhaseD1); len(got) != 1 {
		t.Fatalf("d1 candidates = %v", ids(got))
	}
}

func ids(ts []Template) []string {
	var out []string
	for _, t := range ts {
		out = append(out, t.ID)
	}
	return out
}

func TestSanitizeStripsScript(t *testing.T) {
	p := validPalette()
	p.Templates[0].HTML = `<div class="ok"><script>alert(1)</script><button onclick="x()">b</button></div>`
	p.sanitize()

	got := p.Templates[0].HTML
	if strings.Contains(got, "<script") || strings.Contains(got, "onclick") {
		t.Fatalf("unsafe markup survived sanitization: %q", got)
	}
	if !strings.Contains(got, "<button") {
		t.Fatalf("allowed element stripped: %q", got)
	}
}

func TestSanitizeKeepsDataAttributes(t *testing.T) {
	got := SanitizeHTML(`<div data-iwa-dismiss="1" class="c" aria-label="close">x</div>`)
	for _, want := range []string{"data-iwa-dismiss", "class=", "aria-label"} {
		if !strings.Contains(got, want) {
			t.Errorf("sanitized output missing %q: %q", want, got)
		}
	}
}

const paletteYAML = `project_id: shop
version: "3"
templates:
  - id: wrap-cards
    phase: d1
    selector: ".card"
    operation: wrap_with
    html: '<div class="v-{{seed}}"></div>'
    weight: 1
`

func TestDirStore(t *testing.T) {
	dir := t.TempDir()
	if err := os.WriteFile(filepath.Join(dir, "shop.yaml"), []byte(paletteYAML), 0o644); err != nil {
		t.Fatal(err)
	}

	s := NewDirStore(dir)

	p, err := s.Load("shop")
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if p.ProjectID != "shop" || len(p.Templates) != 1 {
		t.Fatalf("loaded palette = %+v", p)
	}

	// Cached: same pointer on second load.
	p2, err := s.Load("shop")
	if err != nil {
		t.Fatalf("second load: %v", err)
	}
	if p2 != p {
		t.Error("second load did not hit the cache")
	}

	if _, err := s.Load("absent"); !errors.Is(err, ErrNotFound) {
		t.Fatalf("missing project: err = %v, want ErrNotFound", err)
	}
}

func TestDirStoreProjectMismatch(t *testing.T) {
	dir := t.TempDir()
	if err := os.WriteFile(filepath.Join(dir, "other.yaml"), []byte(paletteYAML), 0o644); err != nil {
		t.Fatal(err)
	}

	if _, err := NewDirStore(dir).Load("other"); !errors.Is(err, ErrInvalidTemplate) {
		t.Fatalf("mismatched project_id: err = %v, want ErrInvalidTemplate", err)
	}
}

func TestRegistry(t *testing.T) {
	r := NewRegistry()
	if err := r.Register(validPalette()); err != nil {
		t.Fatalf("register: %v", err)
	}
	if _, err := r.Load("shop"); err != nil {
		t.Fatalf("load: %v", err)
	}
	if _, err := r.Load("absent"); !errors.Is(err, ErrNotFound) {
		t.Fatalf("err = %v, want ErrNotFound", err)
	}

	bad := validPalette()
	bad.ProjectID = ""
	if err := r.Register(bad); !errors.Is(err, ErrInvalidTemplate) {
		t.Fatalf("invalid register: err = %v, want ErrInvalidTemplate", err)
	}
}
