package model

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// OrderStatusEvent is emitted after an order status change commits.
type OrderStatusEvent struct {
	OrderID        uuid.UUID       `json:"orderId"`
	OrderNumber    string          `json:"orderNumber"`
	CustomerName   string          `json:"customerName"`
	Email          string          `json:"email"`
	Address        string          `json:"address"`
	ProductID      uuid.UUID       `json:"productId"`
	ProductName    string          `json:"productName"`
	ProductImage   string          `json:"productImage,omitempty"`
	Quantity       int             `json:"quantity"`
	TotalAmount    decimal.Decimal `json:"totalAmount"`
	PreviousStatus OrderStatus     `json:"previousStatus"`
	Status         OrderStatus     `json:"status"`
	ChangedAt      time.Time       `json:"changedAt"`
}

func NewOrderStatusEvent(o *Order, previous OrderStatus, at time.Time) OrderStatusEvent {
	ev := OrderStatusEvent{
		OrderID:        o.ID,
		OrderNumber:    o.OrderNumber,
		CustomerName:   o.CustomerName,
		Email:          o.Email,
		Address:        o.Address,
		ProductID:      o.ProductID,
		Quantity:       o.Quantity,
		TotalAmount:    o.TotalAmount,
		PreviousStatus: previous,
		Status:         o.Status,
		ChangedAt:      at,
	}
	if o.Product != nil {
		ev.ProductName = o.Product.Name
		ev.ProductImage = o.Product.Image
	}
	return ev
}
