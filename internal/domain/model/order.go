package model

import "github.com/shopspring/decimal"

// OrderStatus describes the basket lifecycle.
type OrderStatus string

const (
	OrderStatusIdle     OrderStatus = "IDLE"
	OrderStatusOnBasket OrderStatus = "ON_BASKET"
	OrderStatusFinished OrderStatus = "FINISHED"
)

// Order is the running basket. At most one order is ON_BASKET at a time;
// FINISHED is terminal and a later mutation opens a fresh order instead of
// reopening the old one.
type Order struct {
	ID         int64
	Status     OrderStatus
	TotalPrice decimal.Decimal
}
