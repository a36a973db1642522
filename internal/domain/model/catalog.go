package model

import "github.com/shopspring/decimal"

// CatalogRecord is one product as delivered by the remote catalog, before it
// gets a store-assigned identifier.
type CatalogRecord struct {
	ExternalID string
	Name       string
	Price      decimal.Decimal
	Attribute  string
	ImageURL   *string
}
