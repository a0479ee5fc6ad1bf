package ingest

import (
	"fmt"
	"time"

	"github.com/shopspring/decimal"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/jihghong/tw-stock-daily/models"
)

// MarkerExists reports whether the market's watermark row is already
// present at date, i.e. the day has been fully processed.
func MarkerExists(db *gorm.DB, market models.Market, date time.Time) (bool, error) {
	var n int64
	err := db.Model(&models.Quote{}).
		Where("id = ? AND date = ?", market.MarkerID(), date.Format(models.DateLayout)).
		Count(&n).Error
	if err != nil {
		return false, fmt.Errorf("failed to read %s marker for %s: %w",
			market, date.Format(models.DateLayout), err)
	}
	return n > 0, nil
}

// ApplyDay persists one day's candidates for one market in a single
// transaction and returns the number of quote rows inserted.
//
// If the day's marker already exists and forceReplace is false this is
// an idempotent no-op. With forceReplace, every quote row for the date
// belonging to the market (by current stock.market membership, plus the
// marker itself) is deleted before reinserting, so a changed upstream
// payload fully replaces the prior run. The marker commits in the same
// transaction as the data: the watermark can never run ahead of
// persisted rows.
func ApplyDay(db *gorm.DB, market models.Market, date time.Time, candidates []Candidate, forceReplace bool) (int, error) {
	day := date.Format(models.DateLayout)

	done, err := MarkerExists(db, market, date)
	if err != nil {
		return 0, err
	}
	if done && !forceReplace {
		return 0, nil
	}

	inserted := 0
	err = db.Transaction(func(tx *gorm.DB) error {
		if forceReplace {
			if err := tx.Exec(
				`DELETE FROM quote
				 WHERE (id IN (SELECT id FROM stock WHERE market = ?) OR id = ?)
				   AND date = ?`,
				string(market), market.MarkerID(), day,
			).Error; err != nil {
				return fmt.Errorf("failed to clear %s quotes for %s: %w", market, day, err)
			}
		}

		for i := range candidates {
			c := &candidates[i]
			turnover := c.Turnover
			tickCount := c.TickCount
			quote := models.Quote{
				ID:        c.ID,
				Date:      day,
				Open:      nullDecimal(c.Open),
				High:      nullDecimal(c.High),
				Low:       nullDecimal(c.Low),
				Close:     nullDecimal(c.Close),
				Volume:    c.Volume,
				Turnover:  &turnover,
				Delta:     c.Delta,
				TickCount: &tickCount,
			}
			if err := tx.Create(&quote).Error; err != nil {
				return fmt.Errorf("failed to insert quote %s/%s: %w", c.ID, day, err)
			}
			if err := upsertStock(tx, c.ID, c.Name, market, day); err != nil {
				return err
			}
			inserted++
		}

		return upsertMarker(tx, market, day, inserted)
	})
	if err != nil {
		return 0, err
	}
	return inserted, nil
}

// upsertStock registers the security on first sight and otherwise
// refreshes its name and market, advancing maxdate without ever moving
// it backward.
func upsertStock(tx *gorm.DB, id, name string, market models.Market, day string) error {
	res := tx.Clauses(clause.OnConflict{DoNothing: true}).Create(&models.Stock{
		ID:      id,
		Name:    name,
		Market:  string(market),
		MinDate: day,
		MaxDate: day,
	})
	if res.Error != nil {
		return fmt.Errorf("failed to insert stock %s: %w", id, res.Error)
	}
	if res.RowsAffected > 0 {
		return nil
	}
	if err := tx.Model(&models.Stock{}).Where("id = ?", id).
		Updates(map[string]interface{}{
			"name":    name,
			"market":  string(market),
			"maxdate": gorm.Expr("MAX(maxdate, ?)", day),
		}).Error; err != nil {
		return fmt.Errorf("failed to update stock %s: %w", id, err)
	}
	return nil
}

// upsertMarker writes the market's watermark: a stock row named after
// the market and a quote row whose volume is the day's insert count.
func upsertMarker(tx *gorm.DB, market models.Market, day string, count int) error {
	marker := market.MarkerID()

	res := tx.Clauses(clause.OnConflict{DoNothing: true}).Create(&models.Stock{
		ID:      marker,
		Name:    marker,
		Market:  string(market),
		MinDate: day,
		MaxDate: day,
	})
	if res.Error != nil {
		return fmt.Errorf("failed to insert %s marker stock: %w", market, res.Error)
	}
	if res.RowsAffected == 0 {
		if err := tx.Model(&models.Stock{}).Where("id = ?", marker).
			Update("maxdate", gorm.Expr("MAX(maxdate, ?)", day)).Error; err != nil {
			return fmt.Errorf("failed to advance %s marker stock: %w", market, err)
		}
	}

	if err := tx.Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "id"}, {Name: "date"}},
		UpdateAll: true,
	}).Create(&models.Quote{
		ID:     marker,
		Date:   day,
		Volume: int64(count),
	}).Error; err != nil {
		return fmt.Errorf("failed to write %s marker for %s: %w", market, day, err)
	}
	return nil
}

func nullDecimal(d decimal.Decimal) decimal.NullDecimal {
	return decimal.NullDecimal{Decimal: d, Valid: true}
}
