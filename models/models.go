package models

import (
	"fmt"

	"github.com/shopspring/decimal"
)

// DateLayout is the textual date format used throughout the database.
const DateLayout = "2006-01-02"

// Market identifies one of the two exchanges covered by the synchronizer.
type Market string

const (
	TWSE Market = "TWSE"
	OTC  Market = "OTC"
)

// MarkerID returns the synthetic security id that holds the market's
// sync watermark. The marker row in stock uses the market name for both
// id and name.
func (m Market) MarkerID() string {
	return string(m)
}

// Stock is one tradable security, or one per-market watermark marker.
type Stock struct {
	ID      string `gorm:"primaryKey;column:id;size:10" json:"id"`
	Name    string `gorm:"column:name" json:"name"`
	Market  string `gorm:"column:market;size:10" json:"market"`
	MinDate string `gorm:"column:mindate;type:date" json:"mindate"`
	MaxDate string `gorm:"column:maxdate;type:date" json:"maxdate"`
}

func (Stock) TableName() string {
	return "stock"
}

// Quote is one trading day's record for one security. Prices are stored
// as exact decimal text, never binary floats. Marker rows carry only a
// volume (the count of securities ingested that day); all other columns
// stay null for them.
type Quote struct {
	ID        string              `gorm:"primaryKey;column:id;size:10" json:"id"`
	Date      string              `gorm:"primaryKey;column:date;type:date" json:"date"`
	Open      decimal.NullDecimal `gorm:"column:open;type:text" json:"open"`
	High      decimal.NullDecimal `gorm:"column:high;type:text" json:"high"`
	Low       decimal.NullDecimal `gorm:"column:low;type:text" json:"low"`
	Close     decimal.NullDecimal `gorm:"column:close;type:text" json:"close"`
	Volume    int64               `gorm:"column:volume" json:"volume"`
	Turnover  *int64              `gorm:"column:turnover" json:"turnover"`
	Delta     decimal.NullDecimal `gorm:"column:delta;type:text" json:"delta"`
	TickCount *int64              `gorm:"column:tickcount" json:"tickcount"`
}

func (Quote) TableName() string {
	return "quote"
}

// StockFuture maps a security to its futures contract codes. The table
// is rebuilt wholesale on every refresh.
type StockFuture struct {
	ID         string  `gorm:"primaryKey;column:id;size:10" json:"id"`
	Future     *string `gorm:"column:future;size:10" json:"future"`
	MiniFuture *string `gorm:"column:mini_future;size:10" json:"mini_future"`
}

func (StockFuture) TableName() string {
	return "stock_future"
}

// TwseIndex is one day's TWSE weighted index OHLC.
type TwseIndex struct {
	Date  string          `gorm:"primaryKey;column:date;type:date" json:"date"`
	Open  decimal.Decimal `gorm:"column:open;type:text" json:"open"`
	High  decimal.Decimal `gorm:"column:high;type:text" json:"high"`
	Low   decimal.Decimal `gorm:"column:low;type:text" json:"low"`
	Close decimal.Decimal `gorm:"column:close;type:text" json:"close"`
}

func (TwseIndex) TableName() string {
	return "twse"
}

// StockInfo is one row of the stock_future_view read view, joining a
// security with its derivative codes and observed date range.
type StockInfo struct {
	ID         string  `gorm:"column:id" json:"id"`
	Name       string  `gorm:"column:name" json:"name"`
	Market     string  `gorm:"column:market" json:"market"`
	Future     *string `gorm:"column:future" json:"future"`
	MiniFuture *string `gorm:"column:mini_future" json:"mini_future"`
	MinDate    *string `gorm:"column:mindate" json:"mindate"`
	MaxDate    *string `gorm:"column:maxdate" json:"maxdate"`
}

func (StockInfo) TableName() string {
	return "stock_future_view"
}

// Title formats the security for display, appending derivative codes
// when they exist.
func (s StockInfo) Title() string {
	if s.Future != nil {
		if s.MiniFuture != nil {
			return fmt.Sprintf("%s %s (%s,%s)", s.ID, s.Name, *s.Future, *s.MiniFuture)
		}
		return fmt.Sprintf("%s %s (%s)", s.ID, s.Name, *s.Future)
	}
	return fmt.Sprintf("%s %s", s.ID, s.Name)
}
