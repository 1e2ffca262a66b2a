package cli

import (
	"bytes"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/catalogops/catalog-scraper/internal/models"
)

func TestChooseAction(t *testing.T) {
	var out bytes.Buffer
	p := NewPrompter(strings.NewReader("2\n"), &out)

	action, err := p.ChooseAction()
	require.NoError(t, err)

	assert.Equal(t, ActionComparePricing, action)
	assert.Contains(t, out.String(), "1 : Get Product Information")
	assert.Contains(t, out.String(), "2 : Compare Product Pricing")
}

func TestChooseSupplier(t *testing.T) {
	var out bytes.Buffer
	p := NewPrompter(strings.NewReader("3\n"), &out)

	supplier, err := p.ChooseSupplier([]models.Supplier{
		models.SupplierLM,
		models.SupplierAllparts,
		models.SupplierFender,
	})
	require.NoError(t, err)

	assert.Equal(t, models.SupplierFender, supplier)
	assert.Contains(t, out.String(), "1 : Long & McQuade")
}

func TestChooseStore(t *testing.T) {
	var out bytes.Buffer
	p := NewPrompter(strings.NewReader("1\n"), &out)

	store, err := p.ChooseStore([]models.Store{models.StoreTomLeeMusic, models.StoreAcclaimMusic})
	require.NoError(t, err)
	assert.Equal(t, models.StoreTomLeeMusic, store)
}

func TestChooseInvalidInputAborts(t *testing.T) {
	tests := []struct {
		name  string
		input string
	}{
		{name: "not a number", input: "abc\n"},
		{name: "zero", input: "0\n"},
		{name: "out of range", input: "9\n"},
		{name: "empty line", input: "\n"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			p := NewPrompter(strings.NewReader(tt.input), &bytes.Buffer{})
			_, err := p.ChooseAction()
			assert.Error(t, err)
		})
	}
}

func TestConfirm(t *testing.T) {
	tests := []struct {
		input    string
		expected bool
	}{
		{"y\n", true},
		{"Y\n", true},
		{"yes\n", true},
		{"YES\n", true},
		{"n\n", false},
		{"no\n", false},
		{"\n", false},
		{"anything else\n", false},
	}

	for _, tt := range tests {
		p := NewPrompter(strings.NewReader(tt.input), &bytes.Buffer{})
		got, err := p.Confirm("Proceed?")
		require.NoError(t, err, "input %q", tt.input)
		assert.Equal(t, tt.expected, got, "input %q", tt.input)
	}
}

func TestConfirmAnswerWithoutNewline(t *testing.T) {
	// A final line with no trailing newline (EOF) still counts as an answer.
	p := NewPrompter(strings.NewReader("yes"), &bytes.Buffer{})
	got, err := p.Confirm("Proceed?")
	require.NoError(t, err)
	assert.True(t, got)
}
