package model

import "time"

// Item is one basket line. A row exists only while Count > 0; the transaction
// that decrements it to zero also deletes it. One row per (ProductID, OrderID).
type Item struct {
	ID        int64
	ProductID int64
	OrderID   int64
	Count     int
	CreatedAt time.Time
}

// ItemWithProduct pairs a basket line with its product for the detail view.
type ItemWithProduct struct {
	Item    Item
	Product Product
}

// BasketDetail is the active order together with its lines.
type BasketDetail struct {
	Order Order
	Items []ItemWithProduct
}
