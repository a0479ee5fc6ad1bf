package ingest

import (
	"encoding/csv"
	"regexp"
	"strconv"
	"strings"

	"github.com/shopspring/decimal"
)

// Candidate is a parsed, validated, not-yet-persisted daily quote.
type Candidate struct {
	ID        string
	Name      string
	Volume    int64
	Turnover  int64
	TickCount int64
	Open      decimal.Decimal
	High      decimal.Decimal
	Low       decimal.Decimal
	Close     decimal.Decimal
	// Delta stays null when the report marks the price as unchanged.
	Delta decimal.NullDecimal
}

var (
	doubleQuoted = regexp.MustCompile(`^="([^"]*)"`)
	singleQuoted = regexp.MustCompile(`^='([^']*)'`)
	idPrefix     = regexp.MustCompile(`^\d+[A-Z]?`)
)

// CleanField strips the spreadsheet-style `="..."` wrapper the reports
// put around ids, drops thousands separators and the markup artifacts
// that leak into cells, and trims whitespace.
func CleanField(text string) string {
	if m := doubleQuoted.FindStringSubmatch(text); m != nil {
		text = m[1]
	}
	if m := singleQuoted.FindStringSubmatch(text); m != nil {
		text = m[1]
	}
	r := strings.NewReplacer(
		" ", "",
		",", "",
		"\t", "",
		"&nbsp;", "",
		"⊕", "",
		"⊙", "",
	)
	return strings.TrimSpace(r.Replace(text))
}

// IsSecurityID reports whether id names an ingestable security. Index
// rows, warrants-board ids longer than four characters starting with 7,
// and most ids starting with 0 (except the 00/01/02 ETF and fund
// ranges) are excluded.
func IsSecurityID(id string) bool {
	if len(id) == 0 {
		return false
	}
	if !idPrefix.MatchString(id) {
		return false
	}
	if len(id) > 4 && strings.HasPrefix(id, "7") {
		return false
	}
	if !strings.HasPrefix(id, "0") {
		return true
	}
	return strings.HasPrefix(id, "00") ||
		strings.HasPrefix(id, "01") ||
		strings.HasPrefix(id, "02")
}

// safeInt parses a cleaned integer cell; nil means empty or unparsable.
func safeInt(text string) *int64 {
	text = CleanField(text)
	if text == "" {
		return nil
	}
	n, err := strconv.ParseInt(text, 10, 64)
	if err != nil {
		return nil
	}
	return &n
}

// safeDecimal parses a cleaned decimal cell exactly, with no float
// round trip. The report's `---`/`--` placeholders and empty cells
// yield nil, as does anything unparsable.
func safeDecimal(text string) *decimal.Decimal {
	text = CleanField(text)
	if text == "" || text == "---" || text == "--" {
		return nil
	}
	d, err := decimal.NewFromString(text)
	if err != nil {
		return nil
	}
	return &d
}

// ParseRow normalizes one raw report row into a Candidate, or nil when
// the row is not an ingestable quote: too few fields, an id that is not
// a security, a halted or zero-volume entry, or any required price
// missing or non-positive. Rejection is silent; a bad row never aborts
// the day. Pure, no I/O.
func ParseRow(cfg MarketConfig, row []string) *Candidate {
	if len(row) < cfg.MinFields {
		return nil
	}

	id := CleanField(row[cfg.Columns.ID])
	if !IsSecurityID(id) {
		return nil
	}
	name := CleanField(row[cfg.Columns.Name])

	volume := safeInt(row[cfg.Columns.Volume])
	if volume == nil || *volume <= 0 {
		return nil
	}

	open := safeDecimal(row[cfg.Columns.Open])
	high := safeDecimal(row[cfg.Columns.High])
	low := safeDecimal(row[cfg.Columns.Low])
	closing := safeDecimal(row[cfg.Columns.Close])
	if open == nil || high == nil || low == nil || closing == nil {
		return nil
	}
	if !open.IsPositive() || !high.IsPositive() || !low.IsPositive() || !closing.IsPositive() {
		return nil
	}

	turnover := safeInt(row[cfg.Columns.Turnover])
	tickCount := safeInt(row[cfg.Columns.TickCount])
	if turnover == nil || tickCount == nil {
		return nil
	}

	var delta decimal.NullDecimal
	unchanged := cfg.Columns.ChangeSign >= 0 && CleanField(row[cfg.Columns.ChangeSign]) == "X"
	if !unchanged {
		if d := safeDecimal(row[cfg.Columns.Delta]); d != nil {
			delta = decimal.NullDecimal{Decimal: *d, Valid: true}
		}
	}

	return &Candidate{
		ID:        id,
		Name:      name,
		Volume:    *volume,
		Turnover:  *turnover,
		TickCount: *tickCount,
		Open:      *open,
		High:      *high,
		Low:       *low,
		Close:     *closing,
		Delta:     delta,
	}
}

// ParseReport splits a raw CSV report into rows. The upstream files mix
// headers, footnotes and ragged quoting with the data, so each line is
// parsed independently and unparsable lines are dropped.
func ParseReport(text string) [][]string {
	var rows [][]string
	for _, line := range strings.Split(text, "\r\n") {
		if line == "" {
			continue
		}
		r := csv.NewReader(strings.NewReader(line))
		r.FieldsPerRecord = -1
		r.LazyQuotes = true
		row, err := r.Read()
		if err != nil {
			continue
		}
		rows = append(rows, row)
	}
	return rows
}
