package dto

import (
	"time"

	"github.com/shopspring/decimal"
)

// OrderResponse is the active basket snapshot.
type OrderResponse struct {
	ID         int64           `json:"id"`
	Status     string          `json:"status"`
	TotalPrice decimal.Decimal `json:"totalPrice"`
}

// BasketLineResponse is one line of the basket detail view.
type BasketLineResponse struct {
	Product   ProductWithCountResponse `json:"product"`
	Count     int                      `json:"count"`
	CreatedAt time.Time                `json:"createdAt"`
}

// BasketDetailResponse is the active order together with its lines.
type BasketDetailResponse struct {
	Order OrderResponse        `json:"order"`
	Items []BasketLineResponse `json:"items"`
}

// UpdateItemRequest mutates a product's basket count by delta.
type UpdateItemRequest struct {
	ProductID int64 `json:"productId" binding:"required"`
	Delta     int   `json:"delta" binding:"required"`
}
