package corexid

import (
	"strings"
	"testing"
)

func TestGenerate_Format(t *testing.T) {
	g := NewGenerator()
	id := g.Generate()

	if !strings.HasPrefix(id, Prefix) {
		t.Errorf("Generate() = %q, want prefix %q", id, Prefix)
	}
	if strings.Contains(id, ".") {
		t.Errorf("Generate() = %q, must not contain a dot", id)
	}
	if !IsValid(id) {
		t.Errorf("IsValid(%q) = false, want true", id)
	}
}

func TestGenerate_URLSafe(t *testing.T) {
	g := NewGenerator()

	const alphabet = "ABCDEFGHIJKLMNOPQRSTUVWXYZabcdefghijklmnopqrstuvwxyz0123456789-_"
	for i := 0; i < 100; i++ {
		id := g.Generate()
		random := strings.TrimPrefix(id, Prefix)
		for _, c := range random {
			if !strings.ContainsRune(alphabet, c) {
				t.Fatalf("Generate() = %q contains non-url-safe character %q", id, c)
			}
		}
	}
}

func TestGenerate_Unique(t *testing.T) {
	g := NewGenerator()

	seen := make(map[string]bool)
	for i := 0; i < 10000; i++ {
		id := g.Generate()
		if seen[id] {
			t.Fatalf("Generate() returned duplicate %q", id)
		}
		seen[id] = true
	}
}

func TestTrimExtension(t *testing.T) {
	tests := []struct {
		name  string
		param string
		want  string
	}{
		{"no extension", "cx_abc123def456ghi7", "cx_abc123def456ghi7"},
		{"mp4 extension", "cx_abc123def456ghi7.mp4", "cx_abc123def456ghi7"},
		{"multiple dots", "cx_abc123def456ghi7.tar.gz", "cx_abc123def456ghi7"},
		{"trailing dot", "cx_abc123def456ghi7.", "cx_abc123def456ghi7"},
		{"empty", "", ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := TrimExtension(tt.param); got != tt.want {
				t.Errorf("TrimExtension(%q) = %q, want %q", tt.param, got, tt.want)
			}
		})
	}
}

func TestIsValid(t *testing.T) {
	tests := []struct {
		name string
		id   string
		want bool
	}{
		{"generated id", NewGenerator().Generate(), true},
		{"missing prefix", "abc123def456ghi7", false},
		{"too short", "cx_abc", false},
		{"with extension", "cx_abc123def456ghi7.mp4", false},
		{"empty", "", false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := IsValid(tt.id); got != tt.want {
				t.Errorf("IsValid(%q) = %v, want %v", tt.id, got, tt.want)
			}
		})
	}
}
