package ingest

import (
	"database/sql"
	"fmt"
	"regexp"
	"strconv"
	"strings"
	"time"

	"github.com/sirupsen/logrus"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/jihghong/tw-stock-daily/models"
)

// TwseHistoryEpoch is where index-history backfill starts on an empty
// twse table.
var TwseHistoryEpoch = time.Date(1999, 1, 1, 0, 0, 0, 0, time.Local)

var rocDate = []*regexp.Regexp{
	regexp.MustCompile(`^(\d+)\.(\d+)\.(\d+)$`),
	regexp.MustCompile(`^(\d+)/(\d+)/(\d+)$`),
	regexp.MustCompile(`^(\d+)-(\d+)-(\d+)$`),
}

// ChineseDate parses an ROC-calendar date such as 96.4.23, 96/4/23 or
// 96-4-23 into a civil date (ROC year 1 is 1912, so add 1911).
func ChineseDate(expr string) (time.Time, error) {
	for _, re := range rocDate {
		m := re.FindStringSubmatch(expr)
		if m == nil {
			continue
		}
		year, _ := strconv.Atoi(m[1])
		month, _ := strconv.Atoi(m[2])
		day, _ := strconv.Atoi(m[3])
		return time.Date(year+1911, time.Month(month), day, 0, 0, 0, 0, time.Local), nil
	}
	return time.Time{}, fmt.Errorf("%q is not a Chinese date", expr)
}

// UpdateMonthlyIndexHistory fetches one month of TWSE weighted index
// OHLC and writes it with replace-on-conflict semantics. Rows that do
// not parse are skipped.
func (s *Syncer) UpdateMonthlyIndexHistory(year int, month time.Month) error {
	url := fmt.Sprintf(
		"https://www.twse.com.tw/indicesReport/MI_5MINS_HIST?response=csv&date=%04d%02d01",
		year, int(month))
	s.log.WithField("url", url).Info("retrieving")

	payload, err := s.fetcher.Get(url)
	if err != nil {
		return fmt.Errorf("failed to fetch index history %d-%02d: %w", year, int(month), err)
	}
	s.sleep(TWSEConfig.Delay)

	count := 0
	err = s.db.Transaction(func(tx *gorm.DB) error {
		for _, row := range ParseReport(payload) {
			if len(row) < 5 {
				continue
			}
			date, err := ChineseDate(strings.TrimSpace(row[0]))
			if err != nil {
				continue
			}
			open := safeDecimal(row[1])
			high := safeDecimal(row[2])
			low := safeDecimal(row[3])
			closing := safeDecimal(row[4])
			if open == nil || high == nil || low == nil || closing == nil {
				continue
			}

			point := models.TwseIndex{
				Date:  date.Format(models.DateLayout),
				Open:  *open,
				High:  *high,
				Low:   *low,
				Close: *closing,
			}
			if err := tx.Clauses(clause.OnConflict{
				Columns:   []clause.Column{{Name: "date"}},
				UpdateAll: true,
			}).Create(&point).Error; err != nil {
				return fmt.Errorf("failed to write index point %s: %w", point.Date, err)
			}
			count++
		}
		return nil
	})
	if err != nil {
		return err
	}

	s.log.WithFields(logrus.Fields{
		"year":     year,
		"month":    int(month),
		"inserted": count,
	}).Info("index history month synchronized")
	return nil
}

// UpdateIndexHistory backfills the index series month by month, from
// the month of the most recent stored point (that month is refetched to
// pick up late revisions) or from the 1999 epoch, through today.
func (s *Syncer) UpdateIndexHistory() error {
	var maxDate sql.NullString
	if err := s.db.Raw("SELECT MAX(date) FROM twse").Scan(&maxDate).Error; err != nil {
		return fmt.Errorf("failed to resolve index history watermark: %w", err)
	}

	date := TwseHistoryEpoch
	if maxDate.Valid {
		d, err := time.ParseInLocation(models.DateLayout, maxDate.String, time.Local)
		if err != nil {
			return fmt.Errorf("invalid index history watermark %q: %w", maxDate.String, err)
		}
		date = d
	}

	now := s.now()
	today := time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, now.Location())

	for !date.After(today) {
		if err := s.UpdateMonthlyIndexHistory(date.Year(), date.Month()); err != nil {
			return err
		}
		date = time.Date(date.Year(), date.Month(), 1, 0, 0, 0, 0, date.Location()).AddDate(0, 1, 0)
	}
	return nil
}
