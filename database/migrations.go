package database

import (
	"fmt"

	"gorm.io/gorm"

	"github.com/jihghong/tw-stock-daily/models"
)

// Migrate creates the schema and the derived read view. AutoMigrate
// covers the tables; the view and the secondary date index need raw SQL.
func Migrate(db *gorm.DB) error {
	if err := db.AutoMigrate(
		&models.Stock{},
		&models.Quote{},
		&models.StockFuture{},
		&models.TwseIndex{},
	); err != nil {
		return err
	}

	// Forced re-ingestion deletes by date; without this index that is a
	// full scan of quote.
	if err := db.Exec(`
		CREATE INDEX IF NOT EXISTS idx_quote_date ON quote (date)
	`).Error; err != nil {
		return fmt.Errorf("failed to create quote date index: %w", err)
	}

	if err := db.Exec(`
		CREATE VIEW IF NOT EXISTS stock_future_view AS
		SELECT stock.id, stock.name, stock.market,
		       stock_future.future, stock_future.mini_future,
		       stock.mindate, stock.maxdate
		FROM stock
		LEFT JOIN stock_future ON stock.id = stock_future.id
	`).Error; err != nil {
		return fmt.Errorf("failed to create stock_future_view: %w", err)
	}

	return nil
}
