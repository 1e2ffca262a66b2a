package pipeline

import (
	"errors"
	"strconv"
	"strings"
	"unicode"
)

// ErrNoTotalCount signals that the listing's total-count element was absent or
// unparsable. The driver treats it as a hard stop for the department instead
// of paginating blind.
var ErrNoTotalCount = errors.New("total count not found")

// ParseTotalCount extracts an item count from pagination text such as
// "1 - 32 of 1,204" or "1.204 Artikel". Grouping separators are tolerated;
// the last number in the string wins, matching "X of N" layouts.
func ParseTotalCount(text string) (int, error) {
	var groups []string
	var current strings.Builder

	flush := func() {
		if current.Len() > 0 {
			groups = append(groups, current.String())
			current.Reset()
		}
	}

	runes := []rune(text)
	for i, r := range runes {
		switch {
		case unicode.IsDigit(r):
			current.WriteRune(r)
		case (r == ',' || r == '.') && current.Len() > 0 && i+1 < len(runes) && unicode.IsDigit(runes[i+1]):
			// grouping separator inside a number
		default:
			flush()
		}
	}
	flush()

	if len(groups) == 0 {
		return 0, ErrNoTotalCount
	}

	n, err := strconv.Atoi(groups[len(groups)-1])
	if err != nil {
		return 0, ErrNoTotalCount
	}

	return n, nil
}

// HasNextPage reports whether another listing page remains. The pipeline stops
// once page*pageSize >= totalCount.
func HasNextPage(page, pageSize, totalCount int) bool {
	return page*pageSize < totalCount
}
