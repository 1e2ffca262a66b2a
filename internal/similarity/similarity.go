package similarity

import (
	"context"
	"fmt"
	"log/slog"
	"strings"

	"github.com/catalogops/catalog-scraper/internal/models"
)

// Score computes a Dice-style coefficient over character bigrams, in [0, 1].
// Case-insensitive; symmetric; length-normalized. Strings shorter than one
// bigram score 0.
func Score(a, b string) float64 {
	ra := []rune(strings.ToLower(a))
	rb := []rune(strings.ToLower(b))

	if len(ra) < 2 || len(rb) < 2 {
		return 0
	}

	bigrams := make(map[string]int, len(ra)-1)
	for i := 0; i < len(ra)-1; i++ {
		bigrams[string(ra[i:i+2])]++
	}

	matches := 0
	for i := 0; i < len(rb)-1; i++ {
		key := string(rb[i : i+2])
		if bigrams[key] > 0 {
			bigrams[key]--
			matches++
		}
	}

	return float64(2*matches) / float64(len(ra)+len(rb)-2)
}

// Store records every check as an audit row (for testing).
type Store interface {
	Insert(ctx context.Context, row *models.ProductSimilarity) error
}

// Result is the outcome of one gate decision.
type Result struct {
	IsSimilar  bool
	Similarity float64
}

// Gate compares scraped titles against reference titles and refuses weak
// matches so an unrelated store product is never linked to a catalog SKU.
type Gate struct {
	store     Store
	threshold float64
	logger    *slog.Logger
}

func NewGate(store Store, threshold float64) *Gate {
	return &Gate{
		store:     store,
		threshold: threshold,
		logger:    slog.Default().With("component", "similarity_gate"),
	}
}

// Check scores the pair and appends an audit row regardless of the outcome.
// The pair passes only on a score strictly above the threshold.
func (g *Gate) Check(ctx context.Context, lsTitle, storeTitle, sku string, supplier models.Supplier) (Result, error) {
	score := Score(lsTitle, storeTitle)

	row := &models.ProductSimilarity{
		SKU:        sku,
		LSTitle:    lsTitle,
		StoreTitle: storeTitle,
		Similarity: score,
		Supplier:   supplier,
	}
	if err := g.store.Insert(ctx, row); err != nil {
		return Result{}, fmt.Errorf("failed to record similarity: %w", err)
	}

	result := Result{
		IsSimilar:  score > g.threshold,
		Similarity: score,
	}

	if !result.IsSimilar {
		g.logger.Warn("titles not similar enough",
			"sku", sku,
			"reference_title", lsTitle,
			"store_title", storeTitle,
			"similarity", score,
			"threshold", g.threshold)
	}

	return result, nil
}
