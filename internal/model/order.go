package model

import (
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

type OrderStatus string

const (
	OrderStatusPending   OrderStatus = "PENDING"
	OrderStatusConfirmed OrderStatus = "CONFIRMED"
	OrderStatusShipped   OrderStatus = "SHIPPED"
	OrderStatusDelivered OrderStatus = "DELIVERED"
	OrderStatusCancelled OrderStatus = "CANCELLED"
)

var OrderStatuses = []OrderStatus{
	OrderStatusPending,
	OrderStatusConfirmed,
	OrderStatusShipped,
	OrderStatusDelivered,
	OrderStatusCancelled,
}

// Advisory lifecycle; DELIVERED and CANCELLED are terminal.
var orderTransitions = map[OrderStatus][]OrderStatus{
	OrderStatusPending:   {OrderStatusConfirmed, OrderStatusCancelled},
	OrderStatusConfirmed: {OrderStatusShipped, OrderStatusCancelled},
	OrderStatusShipped:   {OrderStatusDelivered},
}

func (s OrderStatus) Valid() bool {
	for _, v := range OrderStatuses {
		if s == v {
			return true
		}
	}
	return false
}

// CanTransitionTo reports whether next is on the documented lifecycle.
// Callers decide whether an off-lifecycle move is allowed.
func (s OrderStatus) CanTransitionTo(next OrderStatus) bool {
	for _, v := range orderTransitions[s] {
		if v == next {
			return true
		}
	}
	return false
}

func (s OrderStatus) IsTerminal() bool {
	return s == OrderStatusDelivered || s == OrderStatusCancelled
}

// BooksRevenue is true for statuses reached through a confirm, i.e. backed by a sale.
func (s OrderStatus) BooksRevenue() bool {
	return s == OrderStatusConfirmed || s == OrderStatusShipped || s == OrderStatusDelivered
}

type Order struct {
	BaseModel
	OrderNumber  string          `gorm:"type:varchar(32);not null;uniqueIndex" json:"orderNumber"`
	CustomerName string          `gorm:"type:varchar(200);not null" json:"customerName"`
	Email        string          `gorm:"type:varchar(255);not null;index" json:"email"`
	Phone        string          `gorm:"type:varchar(20);not null" json:"phone"`
	Province     string          `gorm:"type:varchar(100)" json:"province"`
	City         string          `gorm:"type:varchar(100)" json:"city"`
	Area         string          `gorm:"type:varchar(100)" json:"area"`
	Address      string          `gorm:"type:text;not null" json:"address"`
	Notes        *string         `gorm:"type:text" json:"notes,omitempty"`
	ProductID    uuid.UUID       `gorm:"type:uuid;not null;index" json:"productId"`
	Product      *Product        `gorm:"foreignKey:ProductID" json:"product,omitempty"`
	Quantity     int             `gorm:"not null" json:"quantity"`
	TotalAmount  decimal.Decimal `gorm:"type:numeric(12,2);not null" json:"totalAmount"` // price snapshot at creation
	Status       OrderStatus     `gorm:"type:varchar(20);not null;default:'PENDING';index" json:"status"`
	Sale         *Sale           `gorm:"foreignKey:OrderID" json:"sale,omitempty"`
}

// UnitPrice is the per-unit price implied by the snapshot total.
func (o *Order) UnitPrice() decimal.Decimal {
	if o.Quantity <= 0 {
		return decimal.Zero
	}
	return o.TotalAmount.Div(decimal.NewFromInt(int64(o.Quantity))).Round(2)
}

// NewOrderNumber formats ORD-YYYYMMDD-XXXXXX with a random suffix.
func NewOrderNumber(now time.Time) string {
	suffix := strings.ToUpper(strings.ReplaceAll(uuid.NewString(), "-", "")[:6])
	return fmt.Sprintf("ORD-%s-%s", now.UTC().Format("20060102"), suffix)
}

// OrderProduct is the product summary attached to a customer-facing order.
type OrderProduct struct {
	ID           uuid.UUID       `json:"id"`
	Name         string          `json:"name"`
	SellingPrice decimal.Decimal `json:"sellingPrice"`
	Image        string          `json:"image"`
}

// PublicOrder is the order view returned to the storefront.
type PublicOrder struct {
	ID           uuid.UUID       `json:"id"`
	OrderNumber  string          `json:"orderNumber"`
	CustomerName string          `json:"customerName"`
	Email        string          `json:"email"`
	Phone        string          `json:"phone"`
	Province     string          `json:"province"`
	City         string          `json:"city"`
	Area         string          `json:"area"`
	Address      string          `json:"address"`
	Notes        *string         `json:"notes,omitempty"`
	ProductID    uuid.UUID       `json:"productId"`
	Product      *OrderProduct   `json:"product,omitempty"`
	Quantity     int             `json:"quantity"`
	TotalAmount  decimal.Decimal `json:"totalAmount"`
	Status       OrderStatus     `json:"status"`
	CreatedAt    time.Time       `json:"createdAt"`
}

func (o *Order) ToPublic() PublicOrder {
	pub := PublicOrder{
		ID:           o.ID,
		OrderNumber:  o.OrderNumber,
		CustomerName: o.CustomerName,
		Email:        o.Email,
		Phone:        o.Phone,
		Province:     o.Province,
		City:         o.City,
		Area:         o.Area,
		Address:      o.Address,
		Notes:        o.Notes,
		ProductID:    o.ProductID,
		Quantity:     o.Quantity,
		TotalAmount:  o.TotalAmount,
		Status:       o.Status,
		CreatedAt:    o.CreatedAt,
	}
	if o.Product != nil {
		pub.Product = &OrderProduct{
			ID:           o.Product.ID,
			Name:         o.Product.Name,
			SellingPrice: o.Product.SellingPrice,
			Image:        o.Product.Image,
		}
	}
	return pub
}
