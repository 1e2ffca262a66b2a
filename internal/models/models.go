package models

import (
	"time"

	"github.com/google/uuid"
)

// Supplier identifies a retailer catalog integration.
type Supplier string

const (
	SupplierAllparts       Supplier = "AllParts"
	SupplierCoastMusic     Supplier = "CoastMusic"
	SupplierKorgCanada     Supplier = "KorgCanada"
	SupplierFender         Supplier = "Fender"
	SupplierDaddario       Supplier = "Daddario"
	SupplierLM             Supplier = "LM"
	SupplierBurgerLighting Supplier = "BurgerLighting"
	SupplierRedOne         Supplier = "RedOne"
	SupplierMartin         Supplier = "Martin"
	SupplierTaylor         Supplier = "Taylor"
)

// Store identifies a competitor site used for price comparison.
type Store string

const (
	StoreTomLeeMusic  Store = "TomLeeMusic"
	StoreAcclaimMusic Store = "AcclaimMusic"
)

type ProcessStatus string

const (
	ProcessOngoing   ProcessStatus = "ONGOING"
	ProcessDone      ProcessStatus = "DONE"
	ProcessFailed    ProcessStatus = "FAILED"
	ProcessCancelled ProcessStatus = "CANCELLED"
)

// Process is the per-supplier crash-resume checkpoint. Cursor fields are
// advanced before each unit of work so a restart retries the in-flight unit.
type Process struct {
	ID              uuid.UUID     `json:"id"`
	Supplier        Supplier      `json:"supplier"`
	Status          ProcessStatus `json:"status"`
	LastDepURL      string        `json:"last_dep_url"`
	ProductListPage int           `json:"product_list_page"`
	LastProductURL  string        `json:"last_product_url"`
	LastSKU         string        `json:"last_sku"`
	CreatedAt       time.Time     `json:"created_at"`
	UpdatedAt       time.Time     `json:"updated_at"`
}

// RawProduct is one row of the authoritative reference snapshot. The table is
// wiped and reloaded at every run start and purged again at finalize.
type RawProduct struct {
	SystemID  string  `json:"system_id"`
	SKU       string  `json:"sku"`
	CustomSKU string  `json:"custom_sku"`
	UPC       string  `json:"upc"`
	Title     string  `json:"title"`
	Price     float64 `json:"price"`
}

// Product is the durable catalog record, unique per SKU.
type Product struct {
	ID                 uuid.UUID `json:"id"`
	SystemID           string    `json:"system_id"`
	SKU                string    `json:"sku"`
	Title              string    `json:"title"`
	DescriptionText    string    `json:"description_text"`
	DescriptionHTML    string    `json:"description_html"`
	Images             []string  `json:"images"`
	FeaturedImage      string    `json:"featured_image"`
	Supplier           Supplier  `json:"supplier"`
	MissingDescription bool      `json:"missing_description"`
	CreatedAt          time.Time `json:"created_at"`
	UpdatedAt          time.Time `json:"updated_at"`
}

// ProductSimilarity is the append-only audit trail of title-match decisions,
// purged at the end of a successful supplier run.
type ProductSimilarity struct {
	ID         uuid.UUID `json:"id"`
	SKU        string    `json:"sku"`
	LSTitle    string    `json:"ls_title"`
	StoreTitle string    `json:"store_title"`
	Similarity float64   `json:"similarity"`
	Supplier   Supplier  `json:"supplier"`
	CreatedAt  time.Time `json:"created_at"`
}

// ProductPricing holds one competitor price observation, unique per SKU and store.
type ProductPricing struct {
	SystemID   string  `json:"system_id"`
	SKU        string  `json:"sku"`
	Title      string  `json:"title"`
	TheirPrice float64 `json:"their_price"`
	OurPrice   float64 `json:"our_price"`
	Store      Store   `json:"store"`
}

// SupplierLabels maps enum values to the names shown in CLI menus and logs.
var SupplierLabels = map[Supplier]string{
	SupplierAllparts:       "Allparts",
	SupplierCoastMusic:     "Coast Music",
	SupplierKorgCanada:     "Korg Canada",
	SupplierFender:         "Fender",
	SupplierDaddario:       "D'Addario",
	SupplierLM:             "Long & McQuade",
	SupplierBurgerLighting: "Burger Lighting",
	SupplierRedOne:         "Red One Music",
	SupplierMartin:         "Martin",
	SupplierTaylor:         "Taylor",
}

var StoreLabels = map[Store]string{
	StoreTomLeeMusic:  "Tom Lee Music",
	StoreAcclaimMusic: "Acclaim Music",
}

func (s Supplier) Label() string {
	if l, ok := SupplierLabels[s]; ok {
		return l
	}
	return string(s)
}

func (s Store) Label() string {
	if l, ok := StoreLabels[s]; ok {
		return l
	}
	return string(s)
}
