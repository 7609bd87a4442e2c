package model

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

type Availability string

const (
	InStock    Availability = "in_stock"
	OutOfStock Availability = "out_of_stock"
)

type Product struct {
	BaseModel
	Name         string          `gorm:"type:varchar(200);not null" json:"name"`
	Description  string          `gorm:"type:text" json:"description"`
	CategoryID   uuid.UUID       `gorm:"type:uuid;not null;index" json:"categoryId"`
	Category     *Category       `gorm:"foreignKey:CategoryID" json:"category,omitempty"`
	Potency      string          `gorm:"type:varchar(50)" json:"potency"`
	Form         string          `gorm:"type:varchar(50)" json:"form"`
	Manufacturer string          `gorm:"type:varchar(200)" json:"manufacturer"`
	BatchNumber  *string         `gorm:"type:varchar(100)" json:"batchNumber,omitempty"`
	ExpiryDate   *time.Time      `gorm:"index" json:"expiryDate,omitempty"`
	Image        string          `gorm:"type:varchar(500)" json:"image"`
	SellingPrice decimal.Decimal `gorm:"type:numeric(12,2);not null" json:"sellingPrice"`

	// Cost price; never leaves the admin API
	PurchasePrice decimal.Decimal `gorm:"type:numeric(12,2);not null" json:"purchasePrice"`

	IsHot        bool `gorm:"default:false" json:"isHot"`
	IsBestSeller bool `gorm:"default:false" json:"isBestSeller"`
	IsActive     bool `gorm:"default:true;index" json:"isActive"`
}

// PublicProduct is the catalog view served to unauthenticated callers.
type PublicProduct struct {
	ID           uuid.UUID       `json:"id"`
	Name         string          `json:"name"`
	Description  string          `json:"description"`
	CategoryID   uuid.UUID       `json:"categoryId"`
	CategoryName string          `json:"categoryName,omitempty"`
	Potency      string          `json:"potency"`
	Form         string          `json:"form"`
	Manufacturer string          `json:"manufacturer"`
	ExpiryDate   *time.Time      `json:"expiryDate,omitempty"`
	Image        string          `json:"image"`
	SellingPrice decimal.Decimal `json:"sellingPrice"`
	IsHot        bool            `json:"isHot"`
	IsBestSeller bool            `json:"isBestSeller"`
	Availability Availability    `json:"availability"`
}

func AvailabilityFor(stock int) Availability {
	if stock > 0 {
		return InStock
	}
	return OutOfStock
}

func (p *Product) ToPublic(stock int) PublicProduct {
	pub := PublicProduct{
		ID:           p.ID,
		Name:         p.Name,
		Description:  p.Description,
		CategoryID:   p.CategoryID,
		Potency:      p.Potency,
		Form:         p.Form,
		Manufacturer: p.Manufacturer,
		ExpiryDate:   p.ExpiryDate,
		Image:        p.Image,
		SellingPrice: p.SellingPrice,
		IsHot:        p.IsHot,
		IsBestSeller: p.IsBestSeller,
		Availability: AvailabilityFor(stock),
	}
	if p.Category != nil {
		pub.CategoryName = p.Category.Name
	}
	return pub
}

// AdminProduct adds the derived stock figure to the full record.
type AdminProduct struct {
	Product
	CurrentStock int `json:"currentStock"`
}
