package pipeline

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestResumeFrom(t *testing.T) {
	identity := func(s string) string { return s }

	tests := []struct {
		name     string
		items    []string
		cursor   string
		expected []string
	}{
		{
			name:     "empty cursor returns full list",
			items:    []string{"a", "b", "c"},
			cursor:   "",
			expected: []string{"a", "b", "c"},
		},
		{
			name:     "cursor found resumes inclusively",
			items:    []string{"a", "b", "x", "y", "z"},
			cursor:   "x",
			expected: []string{"x", "y", "z"},
		},
		{
			name:     "cursor at last element keeps only it",
			items:    []string{"a", "b", "c"},
			cursor:   "c",
			expected: []string{"c"},
		},
		{
			name:     "cursor not found returns full list",
			items:    []string{"a", "b", "c"},
			cursor:   "missing",
			expected: []string{"a", "b", "c"},
		},
		{
			name:     "empty list",
			items:    nil,
			cursor:   "a",
			expected: nil,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, ResumeFrom(tt.items, tt.cursor, identity))
		})
	}
}

func TestResumeFromUsesKeyFunc(t *testing.T) {
	type ref struct{ url string }
	items := []ref{{"u1"}, {"u2"}, {"u3"}}

	got := ResumeFrom(items, "u2", func(r ref) string { return r.url })
	assert.Equal(t, []ref{{"u2"}, {"u3"}}, got)
}
