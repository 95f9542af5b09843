package cache

import "testing"

func TestKey(t *testing.T) {
	got := Key("keywords", "list", "tier=P0&page=1")
	want := "keywords:list:tier=P0&page=1"
	if got != want {
		t.Errorf("Key() = %q, want %q", got, want)
	}
}

func TestSignatureStable(t *testing.T) {
	a := Signature(map[string]string{"tier": "P0", "page": "2", "sort": "search_volume"})
	b := Signature(map[string]string{"sort": "search_volume", "page": "2", "tier": "P0"})
	if a != b {
		t.Errorf("Signature not stable across map orderings: %q vs %q", a, b)
	}
}

func TestSignatureDistinctFilters(t *testing.T) {
	a := Signature(map[string]string{"tier": "P0"})
	b := Signature(map[string]string{"tier": "P1"})
	if a == b {
		t.Error("Signature collided for different filters")
	}
}

func TestSignatureEmpty(t *testing.T) {
	if got := Signature(nil); got != "all" {
		t.Errorf("Signature(nil) = %q, want %q", got, "all")
	}
	if got := Signature(map[string]string{"tier": ""}); got != "all" {
		t.Errorf("Signature with only empty values = %q, want %q", got, "all")
	}
}

func TestIsPattern(t *testing.T) {
	if isPattern("keywords:item:abc") {
		t.Error("exact key detected as pattern")
	}
	if !isPattern("keywords:list:*") {
		t.Error("wildcard key not detected as pattern")
	}
}
