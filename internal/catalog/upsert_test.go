package catalog

import (
	"context"
	"errors"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/catalogops/catalog-scraper/internal/models"
)

type fakeProductStore struct {
	existing *models.Product
	inserted []*models.Product
	updated  []*models.Product
}

func (f *fakeProductStore) FindBySKU(_ context.Context, sku string) (*models.Product, error) {
	if f.existing != nil && f.existing.SKU == sku {
		return f.existing, nil
	}
	return nil, nil
}

func (f *fakeProductStore) Insert(_ context.Context, p *models.Product) error {
	f.inserted = append(f.inserted, p)
	return nil
}

func (f *fakeProductStore) Update(_ context.Context, p *models.Product) error {
	f.updated = append(f.updated, p)
	return nil
}

type fakeImageSaver struct {
	saved []string
	err   error
}

func (f *fakeImageSaver) Save(_ context.Context, _, name string) error {
	if f.err != nil {
		return f.err
	}
	f.saved = append(f.saved, name)
	return nil
}

func validInput() SaveInput {
	return SaveInput{
		Raw:      models.RawProduct{SystemID: "sys-1", SKU: "SKU-1", Title: "Ref Title"},
		Title:    "Fender Stratocaster",
		Supplier: models.SupplierFender,
		Description: Description{
			Text: "A classic guitar.",
			HTML: `<div class="copy"><p>A classic guitar.</p></div>`,
		},
		Images: []Image{
			{URL: "https://cdn.example.com/1.jpg", Name: "sku-1-0.jpg"},
			{URL: "https://cdn.example.com/2.jpg", Name: "sku-1-1.jpg"},
		},
	}
}

func TestSaveCreatesNewProduct(t *testing.T) {
	store := &fakeProductStore{}
	saver := NewSaver(store, &fakeImageSaver{}, Options{})

	outcome, err := saver.Save(context.Background(), validInput())
	require.NoError(t, err)
	assert.Equal(t, OutcomeCreated, outcome)

	require.Len(t, store.inserted, 1)
	p := store.inserted[0]
	assert.Equal(t, "sys-1", p.SystemID)
	assert.Equal(t, "SKU-1", p.SKU)
	assert.Equal(t, "sku-1-0.jpg", p.FeaturedImage)
	assert.Equal(t, []string{"sku-1-1.jpg"}, p.Images)
	assert.False(t, p.MissingDescription)
	assert.Equal(t, "<div><p>A classic guitar.</p></div>", p.DescriptionHTML)
}

func TestSaveRejectsIncompleteInput(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(*SaveInput)
	}{
		{name: "missing sku", mutate: func(in *SaveInput) { in.Raw.SKU = "" }},
		{name: "missing title", mutate: func(in *SaveInput) { in.Title = "" }},
		{name: "no images", mutate: func(in *SaveInput) { in.Images = nil }},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			store := &fakeProductStore{}
			saver := NewSaver(store, &fakeImageSaver{}, Options{})

			in := validInput()
			tt.mutate(&in)

			outcome, err := saver.Save(context.Background(), in)
			require.NoError(t, err)
			assert.Equal(t, OutcomeRejected, outcome)
			assert.Empty(t, store.inserted)
		})
	}
}

func TestSaveSkipsExistingWhenUpsertDisabled(t *testing.T) {
	store := &fakeProductStore{existing: &models.Product{ID: uuid.New(), SKU: "SKU-1"}}
	saver := NewSaver(store, &fakeImageSaver{}, Options{UpsertEnabled: false})

	outcome, err := saver.Save(context.Background(), validInput())
	require.NoError(t, err)

	assert.Equal(t, OutcomeSkipped, outcome)
	assert.Empty(t, store.inserted)
	assert.Empty(t, store.updated)
}

func TestSaveUpdatesExistingWhenUpsertEnabled(t *testing.T) {
	id := uuid.New()
	store := &fakeProductStore{existing: &models.Product{ID: id, SKU: "SKU-1", Title: "Old Title"}}
	saver := NewSaver(store, &fakeImageSaver{}, Options{UpsertEnabled: true})

	outcome, err := saver.Save(context.Background(), validInput())
	require.NoError(t, err)

	assert.Equal(t, OutcomeUpdated, outcome)
	require.Len(t, store.updated, 1)
	// The record identity survives the rewrite.
	assert.Equal(t, id, store.updated[0].ID)
	assert.Equal(t, "Fender Stratocaster", store.updated[0].Title)
}

func TestSaveEmptyDescriptionRejectedWithoutPolicy(t *testing.T) {
	store := &fakeProductStore{}
	saver := NewSaver(store, &fakeImageSaver{}, Options{ReplaceEmptyDescWithTitle: false})

	in := validInput()
	in.Description = Description{}

	outcome, err := saver.Save(context.Background(), in)
	require.NoError(t, err)
	assert.Equal(t, OutcomeRejected, outcome)
}

func TestSaveEmptyDescriptionSubstitutesTitle(t *testing.T) {
	store := &fakeProductStore{}
	saver := NewSaver(store, &fakeImageSaver{}, Options{ReplaceEmptyDescWithTitle: true})

	in := validInput()
	in.Description = Description{}

	outcome, err := saver.Save(context.Background(), in)
	require.NoError(t, err)
	assert.Equal(t, OutcomeCreated, outcome)

	require.Len(t, store.inserted, 1)
	p := store.inserted[0]
	assert.True(t, p.MissingDescription)
	assert.Equal(t, "Fender Stratocaster", p.DescriptionText)
	assert.Equal(t, "<p>Fender Stratocaster</p>", p.DescriptionHTML)
}

func TestSaveImageFailureDoesNotAbortProduct(t *testing.T) {
	store := &fakeProductStore{}
	saver := NewSaver(store, &fakeImageSaver{err: errors.New("network down")}, Options{})

	outcome, err := saver.Save(context.Background(), validInput())
	require.NoError(t, err)

	// The catalog record keeps the image names even when downloads fail.
	assert.Equal(t, OutcomeCreated, outcome)
	require.Len(t, store.inserted, 1)
	assert.Equal(t, "sku-1-0.jpg", store.inserted[0].FeaturedImage)
}
