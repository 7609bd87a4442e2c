package migrate

import (
	"context"

	"go-remedyflow/internal/model"

	"go.uber.org/zap"
	"gorm.io/gorm"
)

type Options struct {
	CreateChecks  bool // CHECK constraints on prices, quantities, statuses
	CreateIndexes bool // lookup and uniqueness indexes beyond the gorm tags
}

func DefaultOptions() Options {
	return Options{
		CreateChecks:  true,
		CreateIndexes: true,
	}
}

type statement struct {
	name string
	sql  string
}

var checks = []statement{
	{"chk_products_prices_positive", `
ALTER TABLE products
	DROP CONSTRAINT IF EXISTS chk_products_prices_positive,
	ADD CONSTRAINT chk_products_prices_positive
	CHECK (selling_price > 0 AND purchase_price > 0);`},
	{"chk_purchases_positive", `
ALTER TABLE purchases
	DROP CONSTRAINT IF EXISTS chk_purchases_positive,
	ADD CONSTRAINT chk_purchases_positive
	CHECK (quantity > 0 AND purchase_price > 0);`},
	{"chk_sales_positive", `
ALTER TABLE sales
	DROP CONSTRAINT IF EXISTS chk_sales_positive,
	ADD CONSTRAINT chk_sales_positive
	CHECK (quantity > 0 AND sale_price > 0);`},
	{"chk_orders_quantity_positive", `
ALTER TABLE orders
	DROP CONSTRAINT IF EXISTS chk_orders_quantity_positive,
	ADD CONSTRAINT chk_orders_quantity_positive
	CHECK (quantity > 0);`},
	{"chk_orders_status_allowed", `
ALTER TABLE orders
	DROP CONSTRAINT IF EXISTS chk_orders_status_allowed,
	ADD CONSTRAINT chk_orders_status_allowed
	CHECK (status IN ('PENDING','CONFIRMED','SHIPPED','DELIVERED','CANCELLED'));`},
}

var indexes = []statement{
	{"ix_products_active_created", `
CREATE INDEX IF NOT EXISTS ix_products_active_created
ON products (is_active, created_at DESC);`},
	{"ix_orders_status_created", `
CREATE INDEX IF NOT EXISTS ix_orders_status_created
ON orders (status, created_at DESC);`},
	{"ix_purchases_product_quantity", `
CREATE INDEX IF NOT EXISTS ix_purchases_product_quantity
ON purchases (product_id) INCLUDE (quantity);`},
	{"ix_sales_product_quantity", `
CREATE INDEX IF NOT EXISTS ix_sales_product_quantity
ON sales (product_id) INCLUDE (quantity);`},
}

// Run creates or updates the schema. It is idempotent.
func Run(ctx context.Context, db *gorm.DB, log *zap.Logger, opt Options) error {
	db = db.WithContext(ctx)
	log.Info("starting database migration")

	if err := db.AutoMigrate(
		&model.Privilege{},
		&model.User{},
		&model.Category{},
		&model.Product{},
		&model.Order{},
		&model.Purchase{},
		&model.Sale{},
	); err != nil {
		log.Error("AutoMigrate error", zap.Error(err))
		return err
	}
	log.Info("tables migrated")

	if opt.CreateChecks {
		if err := execAll(db, log, checks); err != nil {
			return err
		}
		log.Info("check constraints created")
	}

	if opt.CreateIndexes {
		if err := execAll(db, log, indexes); err != nil {
			return err
		}
		log.Info("indexes created")
	}

	log.Info("database migration finished")
	return nil
}

func execAll(db *gorm.DB, log *zap.Logger, stmts []statement) error {
	for _, st := range stmts {
		if err := db.Exec(st.sql).Error; err != nil {
			log.Error("migration statement failed", zap.String("name", st.name), zap.Error(err))
			return err
		}
	}
	return nil
}
