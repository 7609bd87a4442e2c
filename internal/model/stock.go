package model

import (
	"math"
	"time"

	"github.com/google/uuid"
)

const (
	DefaultLowStockThreshold = 10
	DefaultExpiryWindowDays  = 90
)

type StockInfo struct {
	ProductID      uuid.UUID `json:"productId"`
	ProductName    string    `json:"productName"`
	TotalPurchases int       `json:"totalPurchases"`
	TotalSales     int       `json:"totalSales"`
	CurrentStock   int       `json:"currentStock"`
	IsLowStock     bool      `json:"isLowStock"`
	IsOutOfStock   bool      `json:"isOutOfStock"`
}

// NewStockInfo derives stock as purchased minus sold.
func NewStockInfo(id uuid.UUID, name string, purchased, sold, lowStockThreshold int) StockInfo {
	if lowStockThreshold <= 0 {
		lowStockThreshold = DefaultLowStockThreshold
	}
	stock := purchased - sold
	return StockInfo{
		ProductID:      id,
		ProductName:    name,
		TotalPurchases: purchased,
		TotalSales:     sold,
		CurrentStock:   stock,
		IsLowStock:     stock > 0 && stock <= lowStockThreshold,
		IsOutOfStock:   stock <= 0,
	}
}

type Severity string

const (
	SeverityCritical Severity = "critical"
	SeverityWarning  Severity = "warning"
	SeverityNotice   Severity = "notice"
)

func SeverityFor(daysUntilExpiry int) Severity {
	switch {
	case daysUntilExpiry <= 30:
		return SeverityCritical
	case daysUntilExpiry <= 60:
		return SeverityWarning
	default:
		return SeverityNotice
	}
}

// DaysUntil rounds the remaining time up to whole days.
func DaysUntil(expiry, now time.Time) int {
	return int(math.Ceil(expiry.Sub(now).Hours() / 24))
}

type ExpiryAlert struct {
	ProductID       uuid.UUID `json:"productId"`
	ProductName     string    `json:"productName"`
	BatchNumber     *string   `json:"batchNumber,omitempty"`
	ExpiryDate      time.Time `json:"expiryDate"`
	DaysUntilExpiry int       `json:"daysUntilExpiry"`
	CurrentStock    int       `json:"currentStock"`
	Severity        Severity  `json:"severity"`
}

type GroupedExpiryAlerts struct {
	Critical []ExpiryAlert `json:"critical"`
	Warning  []ExpiryAlert `json:"warning"`
	Notice   []ExpiryAlert `json:"notice"`
}

func GroupExpiryAlerts(alerts []ExpiryAlert) GroupedExpiryAlerts {
	g := GroupedExpiryAlerts{
		Critical: []ExpiryAlert{},
		Warning:  []ExpiryAlert{},
		Notice:   []ExpiryAlert{},
	}
	for _, a := range alerts {
		switch a.Severity {
		case SeverityCritical:
			g.Critical = append(g.Critical, a)
		case SeverityWarning:
			g.Warning = append(g.Warning, a)
		default:
			g.Notice = append(g.Notice, a)
		}
	}
	return g
}
