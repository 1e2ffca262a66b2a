package pipeline

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseTotalCount(t *testing.T) {
	tests := []struct {
		name     string
		text     string
		expected int
	}{
		{name: "x of n layout", text: "1 - 32 of 65", expected: 65},
		{name: "comma grouping", text: "1 - 32 of 1,204", expected: 1204},
		{name: "dot grouping", text: "1.204 Artikel", expected: 1204},
		{name: "parenthesized", text: "Displaying 1 to 50 (of 320 products)", expected: 320},
		{name: "bare number", text: "65", expected: 65},
		{name: "trailing punctuation", text: "65 items.", expected: 65},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			n, err := ParseTotalCount(tt.text)
			require.NoError(t, err)
			assert.Equal(t, tt.expected, n)
		})
	}
}

func TestParseTotalCountNoDigits(t *testing.T) {
	for _, text := range []string{"", "no numbers here", " - of "} {
		_, err := ParseTotalCount(text)
		assert.ErrorIs(t, err, ErrNoTotalCount, "text %q", text)
	}
}

func TestHasNextPage(t *testing.T) {
	// 65 items at 32 per page: pages 1 and 2 continue, page 3 would overrun.
	assert.True(t, HasNextPage(1, 32, 65))
	assert.True(t, HasNextPage(2, 32, 65))
	assert.False(t, HasNextPage(3, 32, 65))

	// Exact multiple: the last full page is the final one.
	assert.False(t, HasNextPage(2, 32, 64))

	// Empty listing never pages.
	assert.False(t, HasNextPage(1, 32, 0))
}
