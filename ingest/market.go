package ingest

import (
	"fmt"
	"time"

	"github.com/jihghong/tw-stock-daily/models"
)

// QuoteEpoch is the earliest date with overlapping TWSE and OTC daily
// report coverage; sync starts here on an empty database.
var QuoteEpoch = time.Date(2007, 4, 23, 0, 0, 0, 0, time.Local)

// Columns maps report fields to their per-market CSV positions. A
// ChangeSign of -1 means the market has no separate sign column and
// Delta is read directly.
type Columns struct {
	ID         int
	Name       int
	Volume     int
	Turnover   int
	Open       int
	High       int
	Low        int
	Close      int
	TickCount  int
	Delta      int
	ChangeSign int
}

// MarketConfig is everything that differs between the two exchanges:
// the report URL, the field layout, and how hard the endpoint throttles.
// Both markets share one ingestion routine parameterized by this record.
type MarketConfig struct {
	Market    models.Market
	MinFields int
	Columns   Columns
	// Delay is slept after every real fetch from this market's endpoint.
	Delay time.Duration
	URL   func(date time.Time) string
}

// TWSEConfig describes the main board daily report (MI_INDEX).
var TWSEConfig = MarketConfig{
	Market:    models.TWSE,
	MinFields: 11,
	Columns: Columns{
		ID:         0,
		Name:       1,
		Volume:     2,
		TickCount:  3,
		Turnover:   4,
		Open:       5,
		High:       6,
		Low:        7,
		Close:      8,
		ChangeSign: 9,
		Delta:      10,
	},
	// TWSE rejects bursty requests.
	Delay: 5 * time.Second,
	URL: func(date time.Time) string {
		return fmt.Sprintf(
			"https://www.twse.com.tw/exchangeReport/MI_INDEX?response=csv&date=%s&type=ALL",
			date.Format("20060102"))
	},
}

// OTCConfig describes the TPEx daily report.
var OTCConfig = MarketConfig{
	Market:    models.OTC,
	MinFields: 11,
	Columns: Columns{
		ID:         0,
		Name:       1,
		Close:      2,
		Delta:      3,
		Open:       4,
		High:       5,
		Low:        6,
		Volume:     8,
		Turnover:   9,
		TickCount:  10,
		ChangeSign: -1,
	},
	Delay: 100 * time.Millisecond,
	URL: func(date time.Time) string {
		return fmt.Sprintf(
			"http://www.tpex.org.tw/www/zh-tw/afterTrading/dailyQuotes?date=%s&response=csv",
			date.Format("2006/01/02"))
	},
}
