package storage

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSanitizeName(t *testing.T) {
	tests := []struct {
		name     string
		input    string
		expected string
	}{
		{"plain name", "report.pdf", "report.pdf"},
		{"spaces replaced", "my report.pdf", "my-report.pdf"},
		{"shell metacharacters replaced", "a;rm -rf.png", "a-rm--rf.png"},
		{"path traversal stripped", "../../etc/passwd", "passwd"},
		{"windows path stripped", `..\..\windows\system32\cmd.exe`, "cmd.exe"},
		{"leading dots trimmed", "...hidden", "hidden"},
		{"unicode replaced", "отчёт.pdf", "-----.pdf"},
		{"empty falls back", "", "file"},
		{"only dots falls back", "...", "file"},
		{"dashes kept", "q3-report-final.pdf", "q3-report-final.pdf"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, SanitizeName(tt.input))
		})
	}
}

func TestMakeKeyUnique(t *testing.T) {
	seen := make(map[string]bool)
	for i := 0; i < 100; i++ {
		key := MakeKey("report.pdf")
		require.False(t, seen[key], "duplicate key generated: %s", key)
		seen[key] = true
	}
}

func TestMakeKeyValid(t *testing.T) {
	inputs := []string{
		"report.pdf",
		"../../etc/passwd",
		"a;rm -rf.png",
		"",
		"файл с пробелами.mp4",
	}

	for _, input := range inputs {
		key := MakeKey(input)
		assert.True(t, ValidKey(key), "key %q for input %q must be valid", key, input)
		assert.False(t, strings.Contains(key, "/"), "key %q must not contain separators", key)
		assert.False(t, strings.Contains(key, ".."), "key %q must not contain dot-dot", key)
	}
}

func TestMakeKeyPreservesSuffix(t *testing.T) {
	key := MakeKey("vacation.jpg")
	assert.True(t, strings.HasSuffix(key, "-vacation.jpg"))
}

func TestValidKey(t *testing.T) {
	assert.True(t, ValidKey("abc-123.pdf"))
	assert.False(t, ValidKey(""))
	assert.False(t, ValidKey("a/b.pdf"))
	assert.False(t, ValidKey("..secret"))
	assert.False(t, ValidKey("a b.pdf"))
}
