package rawref

import (
	"errors"
	"strconv"
	"strings"
	"unicode"
)

var errNoAmount = errors.New("no numeric amount")

// ParseMoney extracts a decimal amount from price text such as "$1,234.56" or
// "CAD 999". Currency symbols and grouping commas are dropped; an empty or
// non-numeric string yields 0 and an error.
func ParseMoney(text string) (float64, error) {
	var b strings.Builder
	for _, r := range text {
		if unicode.IsDigit(r) || r == '.' {
			b.WriteRune(r)
		}
	}

	if b.Len() == 0 {
		return 0, errNoAmount
	}

	amount, err := strconv.ParseFloat(b.String(), 64)
	if err != nil {
		return 0, errNoAmount
	}

	return amount, nil
}
