// Package api exposes a read-only HTTP surface over the scraper's state:
// checkpoint processes, upserted products, similarity audits and collected
// store prices. Writes only ever happen through the pipeline.
package api

import (
	"context"
	"encoding/json"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/catalogops/catalog-scraper/internal/models"
)

// ProcessSource lists checkpoint processes.
type ProcessSource interface {
	List(ctx context.Context) ([]*models.Process, error)
}

// ProductSource reads the durable catalog.
type ProductSource interface {
	ListBySupplier(ctx context.Context, supplier models.Supplier) ([]*models.Product, error)
	CountBySupplier(ctx context.Context) (map[models.Supplier]int, error)
}

// SimilaritySource reads the title-match audit trail.
type SimilaritySource interface {
	ListBySupplier(ctx context.Context, supplier models.Supplier) ([]*models.ProductSimilarity, error)
}

// PricingSource reads collected competitor prices.
type PricingSource interface {
	ListByStore(ctx context.Context, store models.Store) ([]*models.ProductPricing, error)
}

type Handlers struct {
	processes    ProcessSource
	products     ProductSource
	similarities SimilaritySource
	pricings     PricingSource
	logger       *slog.Logger
}

func NewHandlers(processes ProcessSource, products ProductSource, similarities SimilaritySource, pricings PricingSource, logger *slog.Logger) *Handlers {
	return &Handlers{
		processes:    processes,
		products:     products,
		similarities: similarities,
		pricings:     pricings,
		logger:       logger,
	}
}

// ListProcesses returns every checkpoint row, newest first.
func (h *Handlers) ListProcesses(w http.ResponseWriter, r *http.Request) {
	procs, err := h.processes.List(r.Context())
	if err != nil {
		h.logger.Error("failed to list processes", "error", err)
		h.respondError(w, http.StatusInternalServerError, "failed to list processes")
		return
	}

	h.respondJSON(w, http.StatusOK, procs)
}

// GetProductStats returns per-supplier product counts.
func (h *Handlers) GetProductStats(w http.ResponseWriter, r *http.Request) {
	counts, err := h.products.CountBySupplier(r.Context())
	if err != nil {
		h.logger.Error("failed to count products", "error", err)
		h.respondError(w, http.StatusInternalServerError, "failed to count products")
		return
	}

	h.respondJSON(w, http.StatusOK, counts)
}

// ListProducts returns the upserted catalog for one supplier.
func (h *Handlers) ListProducts(w http.ResponseWriter, r *http.Request) {
	supplier, ok := supplierParam(r)
	if !ok {
		h.respondError(w, http.StatusBadRequest, "unknown supplier")
		return
	}

	products, err := h.products.ListBySupplier(r.Context(), supplier)
	if err != nil {
		h.logger.Error("failed to list products", "supplier", supplier, "error", err)
		h.respondError(w, http.StatusInternalServerError, "failed to list products")
		return
	}

	h.respondJSON(w, http.StatusOK, products)
}

// ListSimilarities returns the title-match audit rows for one supplier.
func (h *Handlers) ListSimilarities(w http.ResponseWriter, r *http.Request) {
	supplier, ok := supplierParam(r)
	if !ok {
		h.respondError(w, http.StatusBadRequest, "unknown supplier")
		return
	}

	rows, err := h.similarities.ListBySupplier(r.Context(), supplier)
	if err != nil {
		h.logger.Error("failed to list similarities", "supplier", supplier, "error", err)
		h.respondError(w, http.StatusInternalServerError, "failed to list similarities")
		return
	}

	h.respondJSON(w, http.StatusOK, rows)
}

// ListPricings returns the collected prices for one store.
func (h *Handlers) ListPricings(w http.ResponseWriter, r *http.Request) {
	store := models.Store(chi.URLParam(r, "store"))
	if _, ok := models.StoreLabels[store]; !ok {
		h.respondError(w, http.StatusBadRequest, "unknown store")
		return
	}

	rows, err := h.pricings.ListByStore(r.Context(), store)
	if err != nil {
		h.logger.Error("failed to list pricings", "store", store, "error", err)
		h.respondError(w, http.StatusInternalServerError, "failed to list pricings")
		return
	}

	h.respondJSON(w, http.StatusOK, rows)
}

func supplierParam(r *http.Request) (models.Supplier, bool) {
	supplier := models.Supplier(chi.URLParam(r, "supplier"))
	_, ok := models.SupplierLabels[supplier]
	return supplier, ok
}

func (h *Handlers) respondJSON(w http.ResponseWriter, status int, data any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(data); err != nil {
		h.logger.Error("failed to encode response", "error", err)
	}
}

func (h *Handlers) respondError(w http.ResponseWriter, status int, message string) {
	h.respondJSON(w, status, map[string]string{"error": message})
}
