package similarity

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/catalogops/catalog-scraper/internal/models"
)

func TestScore(t *testing.T) {
	tests := []struct {
		name     string
		a, b     string
		expected float64
	}{
		{name: "identical strings", a: "Fender Stratocaster", b: "Fender Stratocaster", expected: 1},
		{name: "case insensitive", a: "GUITAR", b: "guitar", expected: 1},
		{name: "partial overlap", a: "night", b: "nacht", expected: 0.25},
		{name: "strong overlap", a: "healed", b: "sealed", expected: 0.8},
		{name: "no overlap", a: "abcd", b: "wxyz", expected: 0},
		{name: "single rune left", a: "a", b: "guitar", expected: 0},
		{name: "single rune right", a: "guitar", b: "b", expected: 0},
		{name: "both empty", a: "", b: "", expected: 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.InDelta(t, tt.expected, Score(tt.a, tt.b), 1e-9)
		})
	}
}

func TestScoreSymmetric(t *testing.T) {
	a, b := "Boss DS-1 Distortion Pedal", "DS-1 Distortion"
	assert.Equal(t, Score(a, b), Score(b, a))
}

type fakeSimilarityStore struct {
	rows []*models.ProductSimilarity
	err  error
}

func (f *fakeSimilarityStore) Insert(_ context.Context, row *models.ProductSimilarity) error {
	if f.err != nil {
		return f.err
	}
	f.rows = append(f.rows, row)
	return nil
}

func TestGateCheckPassesAboveThreshold(t *testing.T) {
	store := &fakeSimilarityStore{}
	gate := NewGate(store, 0.3)

	result, err := gate.Check(context.Background(), "Fender Stratocaster Electric Guitar", "Fender Stratocaster", "STRAT-01", models.SupplierFender)
	require.NoError(t, err)

	assert.True(t, result.IsSimilar)
	assert.Greater(t, result.Similarity, 0.3)
}

func TestGateCheckRejectsBelowThreshold(t *testing.T) {
	store := &fakeSimilarityStore{}
	gate := NewGate(store, 0.3)

	result, err := gate.Check(context.Background(), "Korg Minilogue Synthesizer", "Drum Throne", "KORG-01", models.SupplierKorgCanada)
	require.NoError(t, err)

	assert.False(t, result.IsSimilar)
}

func TestGateCheckRejectsExactThreshold(t *testing.T) {
	// The gate requires a score strictly above the threshold: a score equal
	// to the threshold is still a rejection.
	a, b := "night", "nacht"
	store := &fakeSimilarityStore{}
	gate := NewGate(store, Score(a, b))

	result, err := gate.Check(context.Background(), a, b, "SKU-1", models.SupplierLM)
	require.NoError(t, err)

	assert.False(t, result.IsSimilar)
}

func TestGateCheckAlwaysRecordsAuditRow(t *testing.T) {
	store := &fakeSimilarityStore{}
	gate := NewGate(store, 0.3)

	_, err := gate.Check(context.Background(), "Totally Different", "Unrelated Thing", "SKU-2", models.SupplierLM)
	require.NoError(t, err)
	_, err = gate.Check(context.Background(), "Same Title", "Same Title", "SKU-3", models.SupplierLM)
	require.NoError(t, err)

	require.Len(t, store.rows, 2)
	assert.Equal(t, "SKU-2", store.rows[0].SKU)
	assert.Equal(t, "Same Title", store.rows[1].LSTitle)
	assert.Equal(t, float64(1), store.rows[1].Similarity)
}

func TestGateCheckEmptyReferenceTitleRejects(t *testing.T) {
	store := &fakeSimilarityStore{}
	gate := NewGate(store, 0.3)

	result, err := gate.Check(context.Background(), "", "Any Store Title", "SKU-4", models.SupplierLM)
	require.NoError(t, err)

	assert.False(t, result.IsSimilar)
	assert.Zero(t, result.Similarity)
	require.Len(t, store.rows, 1)
}
