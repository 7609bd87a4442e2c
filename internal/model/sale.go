package model

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// Sale is an immutable stock-out ledger row. OrderID is set only for
// sales booked by confirming an order; at most one sale per order.
type Sale struct {
	BaseModel
	ProductID uuid.UUID       `gorm:"type:uuid;not null;index" json:"productId"`
	Product   *Product        `gorm:"foreignKey:ProductID" json:"product,omitempty"`
	Quantity  int             `gorm:"not null" json:"quantity"`
	SalePrice decimal.Decimal `gorm:"type:numeric(12,2);not null" json:"salePrice"` // unit price
	OrderID   *uuid.UUID      `gorm:"type:uuid;uniqueIndex" json:"orderId,omitempty"`
	Notes     *string         `gorm:"type:text" json:"notes,omitempty"`
	SaleDate  time.Time       `gorm:"not null;index" json:"saleDate"`
}

func (s *Sale) TotalAmount() decimal.Decimal {
	return s.SalePrice.Mul(decimal.NewFromInt(int64(s.Quantity)))
}
