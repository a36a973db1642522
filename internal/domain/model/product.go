package model

import "github.com/shopspring/decimal"

// ProductKind separates the two catalog segments.
type ProductKind string

const (
	KindCatalogItem   ProductKind = "CATALOG_ITEM"
	KindSuggestedItem ProductKind = "SUGGESTED_ITEM"
)

// Kinds lists every catalog segment in sync order.
var Kinds = []ProductKind{KindCatalogItem, KindSuggestedItem}

// Valid reports whether the kind is one of the known segments.
func (k ProductKind) Valid() bool {
	return k == KindCatalogItem || k == KindSuggestedItem
}

// Product is a catalog entry. Rows are immutable once inserted except via
// catalog re-sync, which replaces them by natural key (ExternalID, Kind).
type Product struct {
	ID         int64
	ExternalID string
	Name       string
	Price      decimal.Decimal
	Attribute  string
	ImageURL   *string
	Kind       ProductKind
}

// ProductWithCount joins a product with its count in the active order,
// defaulting to zero when the basket holds none of it.
type ProductWithCount struct {
	Product
	Count int
}
