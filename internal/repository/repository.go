package repository

import (
	"context"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// Repository groups every table repo over one *gorm.DB so a service can
// run several of them inside a single transaction.
type Repository struct {
	DB         *gorm.DB
	Products   ProductRepository
	Categories CategoryRepository
	Purchases  PurchaseRepository
	Sales      SaleRepository
	Orders     OrderRepository
	Stock      StockRepository
	Users      UserRepository
	Privileges PrivilegeRepository
}

func buildRepository(db *gorm.DB) *Repository {
	return &Repository{
		DB:         db,
		Products:   NewProductRepo(db),
		Categories: NewCategoryRepo(db),
		Purchases:  NewPurchaseRepo(db),
		Sales:      NewSaleRepo(db),
		Orders:     NewOrderRepo(db),
		Stock:      NewStockRepo(db),
		Users:      NewUserRepo(db),
		Privileges: NewPrivilegeRepo(db),
	}
}

func New(db *gorm.DB) *Repository { return buildRepository(db) }

// WithTx runs fn against repos bound to one transaction. Returning an
// error from fn rolls everything back.
func (r *Repository) WithTx(ctx context.Context, fn func(tx *Repository) error) error {
	return r.DB.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		return fn(buildRepository(tx))
	})
}

var forUpdate = clause.Locking{Strength: "UPDATE"}
