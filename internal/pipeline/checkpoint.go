package pipeline

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/google/uuid"

	"github.com/catalogops/catalog-scraper/internal/models"
)

// Cursor columns on the ONGOING process record. One per nesting level of the
// crawl: department -> list page -> product.
const (
	cursorDepURL     = "last_dep_url"
	cursorListPage   = "product_list_page"
	cursorProductURL = "last_product_url"
	cursorSKU        = "last_sku"
)

// ProcessStore is the persistence surface of the checkpoint (for testing).
type ProcessStore interface {
	FindUnfinished(ctx context.Context, supplier models.Supplier) (*models.Process, error)
	FindOngoing(ctx context.Context, supplier models.Supplier) (*models.Process, error)
	Create(ctx context.Context, supplier models.Supplier) (*models.Process, error)
	SetStatus(ctx context.Context, id uuid.UUID, status models.ProcessStatus) error
	Advance(ctx context.Context, supplier models.Supplier, column string, value any) error
}

// OperatorDecision asks the operator a yes/no question. The CLI supplies a
// stdin prompt; tests supply a canned answer.
type OperatorDecision func(question string) (bool, error)

// Checkpointer drives the Process lifecycle: resume-or-start at run begin,
// cursor advancement during the run, terminal status at the end.
type Checkpointer struct {
	store  ProcessStore
	decide OperatorDecision
	logger *slog.Logger
}

func NewCheckpointer(store ProcessStore, decide OperatorDecision) *Checkpointer {
	return &Checkpointer{
		store:  store,
		decide: decide,
		logger: slog.Default().With("component", "checkpoint"),
	}
}

// Initiate returns the process record the run should work under. An existing
// ONGOING or FAILED record triggers the resume-vs-restart decision: resuming
// keeps the cursors (forcing a FAILED record back to ONGOING), declining marks
// the old record CANCELLED and starts a fresh one with empty cursors.
func (c *Checkpointer) Initiate(ctx context.Context, supplier models.Supplier) (*models.Process, error) {
	unfinished, err := c.store.FindUnfinished(ctx, supplier)
	if err != nil {
		return nil, fmt.Errorf("failed to look up unfinished process: %w", err)
	}

	if unfinished == nil {
		return c.store.Create(ctx, supplier)
	}

	resume, err := c.decide("There is a previous unfinished process. Do you wish to continue it?")
	if err != nil {
		return nil, fmt.Errorf("failed to read operator decision: %w", err)
	}

	if !resume {
		if err := c.store.SetStatus(ctx, unfinished.ID, models.ProcessCancelled); err != nil {
			return nil, err
		}
		c.logger.Info("previous process cancelled, starting fresh", "supplier", supplier)
		return c.store.Create(ctx, supplier)
	}

	if unfinished.Status != models.ProcessOngoing {
		if err := c.store.SetStatus(ctx, unfinished.ID, models.ProcessOngoing); err != nil {
			return nil, err
		}
		unfinished.Status = models.ProcessOngoing
	}

	c.logger.Info("continuing previous process",
		"supplier", supplier,
		"last_dep_url", unfinished.LastDepURL,
		"product_list_page", unfinished.ProductListPage,
		"last_product_url", unfinished.LastProductURL,
		"last_sku", unfinished.LastSKU)

	return unfinished, nil
}

// Current re-reads the ONGOING record. A missing record after Initiate is a
// fatal setup failure.
func (c *Checkpointer) Current(ctx context.Context, supplier models.Supplier) (*models.Process, error) {
	p, err := c.store.FindOngoing(ctx, supplier)
	if err != nil {
		return nil, err
	}
	if p == nil {
		return nil, fmt.Errorf("no ongoing process for %s", supplier)
	}
	return p, nil
}

// The Advance* helpers write one cursor before the corresponding unit of work
// begins, so a crash mid-unit resumes at (not past) that unit.

func (c *Checkpointer) AdvanceDepURL(ctx context.Context, supplier models.Supplier, url string) error {
	return c.store.Advance(ctx, supplier, cursorDepURL, url)
}

func (c *Checkpointer) AdvanceListPage(ctx context.Context, supplier models.Supplier, page int) error {
	return c.store.Advance(ctx, supplier, cursorListPage, page)
}

func (c *Checkpointer) AdvanceProductURL(ctx context.Context, supplier models.Supplier, url string) error {
	return c.store.Advance(ctx, supplier, cursorProductURL, url)
}

func (c *Checkpointer) AdvanceSKU(ctx context.Context, supplier models.Supplier, sku string) error {
	return c.store.Advance(ctx, supplier, cursorSKU, sku)
}

// Finalize marks the run DONE. The driver then purges the ephemeral
// raw-reference and similarity state.
func (c *Checkpointer) Finalize(ctx context.Context, id uuid.UUID) error {
	return c.store.SetStatus(ctx, id, models.ProcessDone)
}

// MarkFailed records a fatal abort so the next run offers to resume.
func (c *Checkpointer) MarkFailed(ctx context.Context, id uuid.UUID) error {
	return c.store.SetStatus(ctx, id, models.ProcessFailed)
}
