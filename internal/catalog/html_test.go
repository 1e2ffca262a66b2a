package catalog

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestNormalizeHTML(t *testing.T) {
	tests := []struct {
		name     string
		fragment string
		expected string
	}{
		{
			name:     "strips presentation attributes",
			fragment: `<div class="desc" id="main" style="color:red"><p class="lead">Hello</p></div>`,
			expected: "<div><p>Hello</p></div>",
		},
		{
			name:     "collapses whitespace runs",
			fragment: "<div>\n  <p>Two   words</p>\n</div>",
			expected: "<div><p>Two words</p></div>",
		},
		{
			name:     "keeps non-presentation attributes",
			fragment: `<p><a href="https://example.com">link</a></p>`,
			expected: `<p><a href="https://example.com">link</a></p>`,
		},
		{
			name:     "plain text unchanged",
			fragment: "just text",
			expected: "just text",
		},
		{
			name:     "empty input",
			fragment: "",
			expected: "",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, NormalizeHTML(tt.fragment))
		})
	}
}

func TestNormalizeHTMLStableAcrossRescrape(t *testing.T) {
	first := NormalizeHTML(`<div class="a"><p>Copy</p></div>`)
	second := NormalizeHTML(`<div class="b" style="margin:0"><p>Copy</p></div>`)
	assert.Equal(t, first, second)
}
