package mutate

import "testing"

func TestSimilarityRatio(t *testing.T) {
	tests := []struct {
		name string
		a, b string
		want float64
	}{
		{"identical", "a b c d", "a b c d", 1},
		{"both empty", "", "", 1},
		{"disjoint", "a b c", "x y z", 0},
		{"one empty", "a b", "", 0},
	}
	for _, tt := range tests {
		got := similarityRatio(normalizeTokens(tt.a), normalizeTokens(tt.b))
		if got != tt.want {
			t.Errorf("%s: ratio = %v, want %v", tt.name, got, tt.want)
		}
	}
}

func TestSimilarityRatioPartial(t *testing.T) {
	a := normalizeTokens("<div> <p> one </p> <p> two </p> </div>")
	b := normalizeTokens("<div> <p> one </p> <p> three </p> </div>")
	got := similarityRatio(a, b)
	if got <= 0.8 || got >= 1 {
		t.Errorf("near-duplicate ratio = %v, want in (0.8, 1)", got)
	}
}

func TestSimilarityRatioSymmetric(t *testing.T) {
	a := normalizeTokens("a b c d e f")
	b := normalizeTokens("a b x d e")
	if ab, ba := similarityRatio(a, b), similarityRatio(b, a); ab != ba {
		t.Errorf("ratio not symmetric: %v vs %v", ab, ba)
	}
}

func TestNormalizeTokensCollapsesWhitespace(t *testing.T) {
	a := normalizeTokens("<p>a</p>\n\t  <p>b</p>")
	b := normalizeTokens("<p>a</p> <p>b</p>")
	if similarityRatio(a, b) != 1 {
		t.Error("whitespace-only differences should normalize identically")
	}
}
