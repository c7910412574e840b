package policy

import (
	"slices"
	"testing"
)

func TestSetExtensions_DerivesTypes(t *testing.T) {
	p := New()
	got := p.SetExtensions([]string{".TXT", "png", "txt", " ", "unknownext"})

	want := []string{"txt", "png", "unknownext"}
	if !slices.Equal(got, want) {
		t.Errorf("SetExtensions() = %v, want %v", got, want)
	}
	types := p.Types()
	if !slices.Equal(types, []string{"text/plain", "image/png"}) {
		t.Errorf("Types() = %v, want [text/plain image/png]", types)
	}
}

func TestSetExtensions_ReplacesPrevious(t *testing.T) {
	p := New()
	p.SetExtensions([]string{"txt"})
	p.SetExtensions([]string{"jpg"})

	if !slices.Equal(p.Extensions(), []string{"jpg"}) {
		t.Errorf("Extensions() = %v, want [jpg]", p.Extensions())
	}
	if slices.Contains(p.Types(), "text/plain") {
		t.Error("derived types should be re-derived, not accumulated")
	}
}

func TestSetExtensions_EmptyIsNoop(t *testing.T) {
	p := New()
	p.SetExtensions([]string{"txt"})
	got := p.SetExtensions(nil)
	if !slices.Equal(got, []string{"txt"}) {
		t.Errorf("empty SetExtensions should keep previous, got %v", got)
	}
}

func TestSetTypes_Unions(t *testing.T) {
	p := New()
	p.SetExtensions([]string{"txt"})
	got := p.SetTypes([]string{"image/.*", "text/plain"})

	want := []string{"text/plain", "image/.*"}
	if !slices.Equal(got, want) {
		t.Errorf("SetTypes() = %v, want %v", got, want)
	}

	// Re-deriving extensions keeps explicit types.
	p.SetExtensions([]string{"pdf"})
	if !slices.Equal(p.Types(), []string{"application/pdf", "image/.*", "text/plain"}) {
		t.Errorf("Types() = %v", p.Types())
	}
}

func TestSetMaxSize(t *testing.T) {
	p := New()
	if _, ok := p.MaxSize(); ok {
		t.Fatal("new policy should have no ceiling")
	}

	if got, ok := p.SetMaxSize(1000); !ok || got != 1000 {
		t.Errorf("SetMaxSize(1000) = %d, %v", got, ok)
	}
	if got, ok := p.SetMaxSize(-5); !ok || got != 1000 {
		t.Errorf("negative size should be ignored, got %d, %v", got, ok)
	}
	if got, ok := p.SetMaxSize(0); !ok || got != 0 {
		t.Errorf("SetMaxSize(0) = %d, %v", got, ok)
	}

	p.ClearMaxSize()
	if _, ok := p.MaxSize(); ok {
		t.Error("ClearMaxSize should remove the ceiling")
	}
}

func TestCheckSize(t *testing.T) {
	p := New()
	if !p.CheckSize(1 << 40) {
		t.Error("unset ceiling should accept any size")
	}

	p.SetMaxSize(32)
	tests := []struct {
		n    uint64
		want bool
	}{
		{0, true},
		{31, true},
		{32, true},
		{33, false},
	}
	for _, tc := range tests {
		if got := p.CheckSize(tc.n); got != tc.want {
			t.Errorf("CheckSize(%d) = %v, want %v", tc.n, got, tc.want)
		}
	}

	p.SetMaxSize(0)
	if !p.CheckSize(0) || p.CheckSize(1) {
		t.Error("zero ceiling should accept only empty streams")
	}
}

func TestCheckType(t *testing.T) {
	txtOnly := New()
	txtOnly.SetExtensions([]string{"txt"})

	images := New()
	images.SetTypes([]string{"image/*"})

	svg := New()
	svg.SetExtensions([]string{"svg"})

	tests := []struct {
		name     string
		policy   *Policy
		declared string
		filename string
		want     bool
	}{
		{"matching txt", txtOnly, "text/plain", "a.txt", true},
		{"spoofed extension", txtOnly, "image/jpeg", "a.txt", false},
		{"consistent but not allowed", txtOnly, "image/jpeg", "a.jpg", false},
		{"no filename allowed type", txtOnly, "text/plain", "", true},
		{"no filename disallowed type", txtOnly, "image/png", "", false},
		{"unknown extension", txtOnly, "text/plain", "a.bin2", false},
		{"no extension", txtOnly, "text/plain", "dir/README", false},
		{"nested path", txtOnly, "text/plain", "dir/sub.d/a.TXT", true},
		{"wildcard pattern", images, "image/png", "photo.png", true},
		{"wildcard miss", images, "application/pdf", "doc.pdf", false},
		{"literal plus sign", svg, "image/svg+xml", "icon.svg", true},
		{"empty allow-list", New(), "application/pdf", "doc.pdf", true},
		{"empty allow-list mismatch", New(), "text/plain", "doc.pdf", false},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			if got := tc.policy.CheckType(tc.declared, tc.filename); got != tc.want {
				t.Errorf("CheckType(%q, %q) = %v, want %v", tc.declared, tc.filename, got, tc.want)
			}
		})
	}
}

func TestClone_IsIndependent(t *testing.T) {
	p := New()
	p.SetExtensions([]string{"txt"})
	p.SetMaxSize(10)

	snap := p.Clone()
	p.SetExtensions([]string{"png"})
	p.SetTypes([]string{"video/mp4"})
	p.SetMaxSize(1)

	if !snap.CheckType("text/plain", "a.txt") {
		t.Error("snapshot should keep its original allow-list")
	}
	if !snap.CheckSize(10) {
		t.Error("snapshot should keep its original ceiling")
	}
	if slices.Contains(snap.Types(), "video/mp4") {
		t.Error("snapshot should not see later types")
	}
}

func TestTypeByExtension(t *testing.T) {
	tests := map[string]string{
		"txt":   "text/plain",
		".JPG":  "image/jpeg",
		"jpeg":  "image/jpeg",
		"svg":   "image/svg+xml",
		"html":  "text/html",
		"":      "",
		"nope1": "",
		// Commonly present in host mime.types files but not in the table.
		"deb":   "",
		"iso":   "",
	}
	for in, want := range tests {
		if got := TypeByExtension(in); got != want {
			t.Errorf("TypeByExtension(%q) = %q, want %q", in, got, want)
		}
	}
}

func TestTypeByFilename(t *testing.T) {
	tests := []struct {
		name string
		want string
	}{
		{"report.txt", "text/plain"},
		{"dir/photo.PNG", "image/png"},
		{`C:\uploads\scan.pdf`, "application/pdf"},
		{"archive.tar.gz", TypeByExtension("gz")},
		{"no-extension", ""},
		{"dir.d/no-extension", ""},
		{"", ""},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := TypeByFilename(tt.name); got != tt.want {
				t.Errorf("TypeByFilename(%q) = %q, want %q", tt.name, got, tt.want)
			}
		})
	}
}
