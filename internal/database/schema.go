package database

import (
	"context"
	"fmt"
)

// schema declares the four entity tables. The UNIQUE constraint on products.sku
// backstops the validation done in the upsert engine.
const schema = `
CREATE TABLE IF NOT EXISTS processes (
	id UUID PRIMARY KEY,
	supplier TEXT NOT NULL,
	status TEXT NOT NULL,
	last_dep_url TEXT NOT NULL DEFAULT '',
	product_list_page INT NOT NULL DEFAULT 0,
	last_product_url TEXT NOT NULL DEFAULT '',
	last_sku TEXT NOT NULL DEFAULT '',
	created_at TIMESTAMPTZ NOT NULL DEFAULT NOW(),
	updated_at TIMESTAMPTZ NOT NULL DEFAULT NOW()
);

CREATE INDEX IF NOT EXISTS idx_processes_supplier_status
	ON processes (supplier, status);

CREATE TABLE IF NOT EXISTS raw_products (
	system_id TEXT PRIMARY KEY,
	sku TEXT NOT NULL DEFAULT '',
	custom_sku TEXT NOT NULL DEFAULT '',
	upc TEXT NOT NULL DEFAULT '',
	title TEXT NOT NULL DEFAULT '',
	price DOUBLE PRECISION NOT NULL DEFAULT 0
);

CREATE INDEX IF NOT EXISTS idx_raw_products_sku ON raw_products (sku);
CREATE INDEX IF NOT EXISTS idx_raw_products_custom_sku ON raw_products (custom_sku);

CREATE TABLE IF NOT EXISTS products (
	id UUID PRIMARY KEY,
	system_id TEXT NOT NULL DEFAULT '',
	sku TEXT NOT NULL UNIQUE,
	title TEXT NOT NULL,
	description_text TEXT NOT NULL,
	description_html TEXT NOT NULL,
	images TEXT[] NOT NULL DEFAULT '{}',
	featured_image TEXT NOT NULL DEFAULT '',
	supplier TEXT NOT NULL,
	missing_description BOOLEAN NOT NULL DEFAULT FALSE,
	created_at TIMESTAMPTZ NOT NULL DEFAULT NOW(),
	updated_at TIMESTAMPTZ NOT NULL DEFAULT NOW()
);

CREATE INDEX IF NOT EXISTS idx_products_supplier ON products (supplier);

CREATE TABLE IF NOT EXISTS product_similarities (
	id UUID PRIMARY KEY,
	sku TEXT NOT NULL,
	ls_title TEXT NOT NULL,
	store_title TEXT NOT NULL,
	similarity DOUBLE PRECISION NOT NULL,
	supplier TEXT NOT NULL,
	created_at TIMESTAMPTZ NOT NULL DEFAULT NOW()
);

CREATE INDEX IF NOT EXISTS idx_product_similarities_supplier
	ON product_similarities (supplier);

CREATE TABLE IF NOT EXISTS product_pricings (
	sku TEXT NOT NULL,
	store TEXT NOT NULL,
	system_id TEXT NOT NULL DEFAULT '',
	title TEXT NOT NULL,
	their_price DOUBLE PRECISION NOT NULL,
	our_price DOUBLE PRECISION NOT NULL DEFAULT 0,
	PRIMARY KEY (sku, store)
);
`

// EnsureSchema creates all tables and indexes if they do not exist.
func (db *DB) EnsureSchema(ctx context.Context) error {
	if _, err := db.pool.Exec(ctx, schema); err != nil {
		return fmt.Errorf("failed to ensure schema: %w", err)
	}
	return nil
}
