package ingest

import (
	"errors"
	"fmt"
	"strings"

	"golang.org/x/net/html"
	"gorm.io/gorm"

	"github.com/jihghong/tw-stock-daily/models"
)

const stockListsURL = "https://www.taifex.com.tw/cht/2/stockLists"

// UpdateFutureCodes rebuilds the derivative-code cross-reference from
// the taifex contract listing page. The rebuild is wholesale: delete
// everything, reinsert from the current page, one transaction.
//
// Contract rows carry the contract code in the first cell, the
// underlying security in the third and the contract multiplier in the
// eleventh; a multiplier of 100 marks the mini contract.
func (s *Syncer) UpdateFutureCodes() error {
	s.log.WithField("url", stockListsURL).Info("retrieving")
	// The listing page is UTF-8, unlike the CP950 CSV reports.
	payload, err := s.fetcher.GetRaw(stockListsURL)
	if err != nil {
		return fmt.Errorf("failed to fetch contract listing: %w", err)
	}

	doc, err := html.Parse(strings.NewReader(payload))
	if err != nil {
		return fmt.Errorf("failed to parse contract listing: %w", err)
	}

	count := 0
	err = s.db.Transaction(func(tx *gorm.DB) error {
		if err := tx.Exec("DELETE FROM stock_future").Error; err != nil {
			return fmt.Errorf("failed to clear stock_future: %w", err)
		}

		for _, row := range tableRows(doc) {
			if len(row) < 11 {
				continue
			}
			code := row[0] + "F"
			stockID := row[2]
			multiplier := row[10]
			if !IsSecurityID(stockID) {
				continue
			}

			var existing models.StockFuture
			err := tx.Where("id = ?", stockID).First(&existing).Error
			exists := err == nil
			if err != nil && !errors.Is(err, gorm.ErrRecordNotFound) {
				return fmt.Errorf("failed to read stock_future %s: %w", stockID, err)
			}

			record := models.StockFuture{ID: stockID}
			column := "future"
			if multiplier == "100" {
				column = "mini_future"
				record.MiniFuture = &code
			} else {
				record.Future = &code
			}

			if exists {
				err = tx.Model(&models.StockFuture{}).Where("id = ?", stockID).
					Update(column, code).Error
			} else {
				err = tx.Create(&record).Error
			}
			if err != nil {
				return fmt.Errorf("failed to write stock_future %s: %w", stockID, err)
			}
			count++
		}
		return nil
	})
	if err != nil {
		return err
	}

	s.log.WithField("processed", count).Info("future codes rebuilt")
	return nil
}

// tableRows returns the trimmed text of every table row's cells.
func tableRows(doc *html.Node) [][]string {
	var rows [][]string
	var walk func(*html.Node)
	walk = func(n *html.Node) {
		if n.Type == html.ElementNode && n.Data == "tr" {
			var cells []string
			for c := n.FirstChild; c != nil; c = c.NextSibling {
				collectCells(c, &cells)
			}
			rows = append(rows, cells)
			return
		}
		for c := n.FirstChild; c != nil; c = c.NextSibling {
			walk(c)
		}
	}
	walk(doc)
	return rows
}

func collectCells(n *html.Node, cells *[]string) {
	if n.Type == html.ElementNode && n.Data == "td" {
		*cells = append(*cells, strings.TrimSpace(textContent(n)))
		return
	}
	for c := n.FirstChild; c != nil; c = c.NextSibling {
		collectCells(c, cells)
	}
}

func textContent(n *html.Node) string {
	if n.Type == html.TextNode {
		return n.Data
	}
	var b strings.Builder
	for c := n.FirstChild; c != nil; c = c.NextSibling {
		b.WriteString(textContent(c))
	}
	return b.String()
}
