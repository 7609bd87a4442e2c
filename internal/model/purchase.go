package model

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// Purchase is an immutable stock-in ledger row.
type Purchase struct {
	BaseModel
	ProductID     uuid.UUID       `gorm:"type:uuid;not null;index" json:"productId"`
	Product       *Product        `gorm:"foreignKey:ProductID" json:"product,omitempty"`
	Quantity      int             `gorm:"not null" json:"quantity"`
	PurchasePrice decimal.Decimal `gorm:"type:numeric(12,2);not null" json:"purchasePrice"` // unit cost
	Supplier      *string         `gorm:"type:varchar(200)" json:"supplier,omitempty"`
	Notes         *string         `gorm:"type:text" json:"notes,omitempty"`
	PurchaseDate  time.Time       `gorm:"not null;index" json:"purchaseDate"`
}

func (p *Purchase) TotalCost() decimal.Decimal {
	return p.PurchasePrice.Mul(decimal.NewFromInt(int64(p.Quantity)))
}
