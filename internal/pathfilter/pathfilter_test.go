package pathfilter

import (
	"testing"
)

func TestPathFilter_IsAllowed(t *testing.T) {
	pf := New(nil)

	tests := []struct {
		name string
		want bool
	}{
		{name: "diagram.png", want: true},
		{name: "notes", want: true},
		{name: "report final.pdf", want: true},
		{name: "", want: false},
		{name: "   ", want: false},
		{name: "..", want: false},
		{name: "../escape.txt", want: false},
		{name: "dir/file.txt", want: false},
		{name: `dir\file.txt`, want: false},
		{name: ".DS_Store", want: false},
		{name: "Thumbs.db", want: false},
		{name: "scratch.tmp", want: false},
		{name: "backup~", want: false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := pf.IsAllowed(tt.name); got != tt.want {
				t.Errorf("IsAllowed(%q) = %v, want %v", tt.name, got, tt.want)
			}
		})
	}
}

func TestPathFilter_Config(t *testing.T) {
	pf := New(&Config{
		IgnoredPatterns:   []string{"secret*"},
		AllowedExtensions: []string{".md", ".PNG"},
	})

	tests := []struct {
		name string
		want bool
	}{
		{name: "note.md", want: true},
		{name: "image.png", want: true},
		{name: "doc.pdf", want: false},
		{name: "secret.md", want: false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := pf.IsAllowed(tt.name); got != tt.want {
				t.Errorf("IsAllowed(%q) = %v, want %v", tt.name, got, tt.want)
			}
		})
	}
}
