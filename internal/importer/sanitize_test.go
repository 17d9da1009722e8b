package importer

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestSanitizeFileName(t *testing.T) {
	tests := []struct {
		name  string
		input string
		want  string
	}{
		{"simple", "heroes.csv", "heroes.csv"},
		{"unix path", "/home/alice/heroes.csv", "heroes.csv"},
		{"windows path", `C:\Users\alice\heroes.json`, "heroes.json"},
		{"path traversal", "../../../etc/heroes.csv", "heroes.csv"},
		{"illegal chars", "my <best> heroes?.csv", "my best heroes .csv"},
		{"control chars", "heroes\x00\n.csv", "heroes .csv"},
		{"multiple spaces", "my   heroes.csv", "my heroes.csv"},
		{"leading/trailing", "  heroes.csv  ", "heroes.csv"},
		{"empty", "", ""},
		{"only separators", "///", ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := SanitizeFileName(tt.input)
			assert.Equal(t, tt.want, got, "SanitizeFileName(%q)", tt.input)
		})
	}
}
