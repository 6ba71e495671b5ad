package rng

import "testing"

func TestSameKeySameStream(t *testing.T) {
	k := Key{Project: "p1", Seed: 42, Phase: "d1", URL: "https://example.com/"}
	a, b := New(k), New(k)
	for i := 0; i < 16; i++ {
		if x, y := a.Int63(), b.Int63(); x != y {
			t.Fatalf("draw %d: %d != %d", i, x, y)
		}
	}
}

func TestKeyFieldsIndependent(t *testing.T) {
	base := Key{Project: "p1", Seed: 42, Phase: "d1", URL: "https://example.com/"}
	variants := []Key{
		{Project: "p2", Seed: 42, Phase: "d1", URL: "https://example.com/"},
		{Project: "p1", Seed: 43, Phase: "d1", URL: "https://example.com/"},
		{Project: "p1", Seed: 42, Phase: "d3", URL: "https://example.com/"},
		{Project: "p1", Seed: 42, Phase: "d1", URL: "https://example.com/other"},
	}
	want := New(base).Int63()
	for _, v := range variants {
		if got := New(v).Int63(); got == want {
			t.Errorf("key %+v: first draw equals base, streams not independent", v)
		}
	}
}

func TestLengthPrefixPreventsCollision(t *testing.T) {
	a := New(Key{Project: "ab", Phase: "c"}).Int63()
	b := New(Key{Project: "a", Phase: "bc"}).Int63()
	if a == b {
		t.Error("field boundary shift produced the same stream")
	}
}
