package dto

import "github.com/shopspring/decimal"

// ProductWithCountResponse is a catalog product joined with its basket count.
type ProductWithCountResponse struct {
	ID         int64           `json:"id"`
	ExternalID string          `json:"externalId"`
	Name       string          `json:"name"`
	Price      decimal.Decimal `json:"price"`
	Attribute  string          `json:"attribute,omitempty"`
	ImageURL   *string         `json:"imageUrl,omitempty"`
	Kind       string          `json:"kind"`
	Count      int             `json:"count"`
}
