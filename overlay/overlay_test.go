package overlay

import (
	"math/rand"
	"strings"
	"testing"
)

func TestResolveTriggerLiteral(t *testing.T) {
	r := rand.New(rand.NewSource(1))
	if got := ResolveTrigger("5", r, 2, 9); got != 5 {
		t.Errorf("literal trigger = %d, want 5", got)
	}
	if got := ResolveTrigger(" 12 ", r, 2, 9); got != 12 {
		t.Errorf("trimmed literal = %d, want 12", got)
	}
}

func TestResolveTriggerRandomBounds(t *testing.T) {
	r := rand.New(rand.NewSource(3))
	for i := 0; i < 200; i++ {
		got := ResolveTrigger("random", r, 2, 9)
		if got < 2 || got > 9 {
			t.Fatalf("draw %d out of [2,9]: %d", i, got)
		}
	}
	for _, raw := range []string{"", "soon", "random"} {
		got := ResolveTrigger(raw, r, 4, 4)
		if got != 4 {
			t.Errorf("ResolveTrigger(%q) with min==max = %d, want 4", raw, got)
		}
	}
}

func TestResolveTriggerSwappedBounds(t *testing.T) {
	r := rand.New(rand.NewSource(3))
	if got := ResolveTrigger("random", r, 7, 3); got != 7 {
		t.Errorf("max < min should clamp to min, got %d", got)
	}
}

func TestResolveTriggerDeterministic(t *testing.T) {
	a := ResolveTrigger("random", rand.New(rand.NewSource(99)), 2, 9)
	b := ResolveTrigger("random", rand.New(rand.NewSource(99)), 2, 9)
	if a != b {
		t.Errorf("same generator state, different draws: %d vs %d", a, b)
	}
}

func TestMinTrigger(t *testing.T) {
	if got := MinTrigger(nil, 2); got != 2 {
		t.Errorf("empty configs = %d, want fallback 2", got)
	}
	configs := []Config{{TriggerAfter: 6}, {TriggerAfter: 3}, {TriggerAfter: 8}}
	if got := MinTrigger(configs, 2); got != 3 {
		t.Errorf("min = %d, want 3", got)
	}
}

func TestScriptInlinesConfigs(t *testing.T) {
	js := Script([]Config{{TriggerAfter: 4, HTML: "<div>x</div>", OverlayType: "top_banner"}}, 2)

	for _, want := range []string{RuntimeVersion, `"trigger_after":4`, "top_banner"} {
		if !strings.Contains(js, want) {
			t.Errorf("script missing %q", want)
		}
	}
}

func TestRuntimeJSReadsWindowConfig(t *testing.T) {
	js := RuntimeJS(2)
	if !strings.Contains(js, "window.__iwa") {
		t.Error("runtime asset should read configs from window.__iwa")
	}
	if !strings.Contains(js, RuntimeVersion) {
		t.Error("runtime asset missing version guard")
	}
}

func TestInjectJSCarriesDismissSelector(t *testing.T) {
	js := InjectJS(Config{TriggerAfter: 1, HTML: "<div>x</div>", OverlayType: "corner_modal", Blocking: true})
	for _, want := range []string{"corner_modal", DefaultDismissSelector, "data-iwa-blocking"} {
		if !strings.Contains(js, want) {
			t.Errorf("inject script missing %q", want)
		}
	}
}

func TestBuiltinVariantsHaveDismissAndSeedToken(t *testing.T) {
	variants := BuiltinVariants()
	if len(variants) != 3 {
		t.Fatalf("builtin variants = %d, want 3", len(variants))
	}
	for _, v := range variants {
		if !strings.Contains(v.HTML, "data-iwa-dismiss") {
			t.Errorf("variant %s has no dismiss control", v.OverlayType)
		}
		if !strings.Contains(v.HTML, "{{seed}}") {
			t.Errorf("variant %s has no seed token", v.OverlayType)
		}
	}
}
