package util

import (
	"strings"
	"testing"
)

func TestFilter(t *testing.T) {
	got := Filter([]string{"txt", "", "png", ""}, func(s string) bool { return s != "" })
	if len(got) != 2 || got[0] != "txt" || got[1] != "png" {
		t.Errorf("unexpected result %v", got)
	}
}

func TestFilterEmpty(t *testing.T) {
	got := Filter([]int(nil), func(int) bool { return true })
	if got == nil || len(got) != 0 {
		t.Errorf("expected empty non-nil slice, got %v", got)
	}
}

func TestMap(t *testing.T) {
	got := Map([]string{"TXT", "Png"}, strings.ToLower)
	if got[0] != "txt" || got[1] != "png" {
		t.Errorf("unexpected result %v", got)
	}
}

func TestUnique(t *testing.T) {
	got := Unique([]string{"text/plain", "image/png", "text/plain", "image/png", "a"})
	want := []string{"text/plain", "image/png", "a"}
	if len(got) != len(want) {
		t.Fatalf("expected %v, got %v", want, got)
	}
	for i := range want {
		if got[i] != want[i] {
			t.Errorf("index %d: expected %q, got %q", i, want[i], got[i])
		}
	}
}

func TestCoalesce(t *testing.T) {
	if got := Coalesce("", "uploads", "other"); got != "uploads" {
		t.Errorf("expected 'uploads', got %q", got)
	}
	if got := Coalesce("", ""); got != "" {
		t.Errorf("expected zero value, got %q", got)
	}
}
