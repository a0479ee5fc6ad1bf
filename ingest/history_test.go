package ingest

import (
	"testing"
	"time"

	"github.com/jihghong/tw-stock-daily/models"
)

func TestChineseDate(t *testing.T) {
	cases := []struct {
		in   string
		want string
	}{
		{"96.4.23", "2007-04-23"},
		{"96/4/23", "2007-04-23"},
		{"96-4-23", "2007-04-23"},
		{"112.1.3", "2023-01-03"},
	}
	for _, c := range cases {
		got, err := ChineseDate(c.in)
		if err != nil {
			t.Errorf("ChineseDate(%q) failed: %v", c.in, err)
			continue
		}
		if got.Format(models.DateLayout) != c.want {
			t.Errorf("ChineseDate(%q) = %s, want %s", c.in, got.Format(models.DateLayout), c.want)
		}
	}

	for _, in := range []string{"2023-01-03T00:00", "96年4月23日", ""} {
		if _, err := ChineseDate(in); err == nil {
			t.Errorf("expected error for %q", in)
		}
	}
}

const indexReport = "\"112年01月 發行量加權股價指數歷史資料\"\r\n" +
	"\"日期\",\"開盤指數\",\"最高指數\",\"最低指數\",\"收盤指數\"\r\n" +
	"\"112/01/03\",\"14,108.21\",\"14,208.05\",\"14,001.91\",\"14,224.12\"\r\n" +
	"\"112/01/04\",\"14,224.12\",\"14,310.00\",\"14,199.90\",\"14,300.25\"\r\n" +
	"說明: 指數單位為點\r\n"

func TestUpdateMonthlyIndexHistory(t *testing.T) {
	db := newTestDB(t)
	fetcher := fetchFunc(func(url string) (string, error) { return indexReport, nil })
	s := newTestSyncer(db, fetcher, time.Now())

	if err := s.UpdateMonthlyIndexHistory(2023, time.January); err != nil {
		t.Fatalf("UpdateMonthlyIndexHistory failed: %v", err)
	}

	var points []models.TwseIndex
	if err := db.Order("date").Find(&points).Error; err != nil {
		t.Fatalf("failed to read index points: %v", err)
	}
	if len(points) != 2 {
		t.Fatalf("expected 2 index points, got %d", len(points))
	}
	if points[0].Date != "2023-01-03" || points[0].Open.String() != "14108.21" {
		t.Errorf("unexpected first point: %+v", points[0])
	}
}

func TestUpdateMonthlyIndexHistoryReplacesOnConflict(t *testing.T) {
	db := newTestDB(t)

	payload := indexReport
	fetcher := fetchFunc(func(url string) (string, error) { return payload, nil })
	s := newTestSyncer(db, fetcher, time.Now())

	if err := s.UpdateMonthlyIndexHistory(2023, time.January); err != nil {
		t.Fatalf("first update failed: %v", err)
	}

	// A revised report for the same month replaces existing dates.
	payload = "\"112/01/03\",\"14,108.21\",\"14,208.05\",\"14,001.91\",\"14,500.00\"\r\n"
	if err := s.UpdateMonthlyIndexHistory(2023, time.January); err != nil {
		t.Fatalf("second update failed: %v", err)
	}

	var point models.TwseIndex
	if err := db.Where("date = ?", "2023-01-03").First(&point).Error; err != nil {
		t.Fatalf("index point missing: %v", err)
	}
	if point.Close.String() != "14500.00" {
		t.Errorf("expected revised close 14500.00, got %s", point.Close)
	}

	var n int64
	if err := db.Model(&models.TwseIndex{}).Count(&n).Error; err != nil {
		t.Fatalf("failed to count index points: %v", err)
	}
	if n != 2 {
		t.Errorf("expected 2 index points after replace, got %d", n)
	}
}

func TestUpdateIndexHistoryWalksMonths(t *testing.T) {
	db := newTestDB(t)

	// Existing data through November 2022 means two months to refresh.
	seedPoint := models.TwseIndex{Date: "2022-11-15"}
	if err := db.Create(&seedPoint).Error; err != nil {
		t.Fatalf("failed to seed index point: %v", err)
	}

	var urls []string
	fetcher := fetchFunc(func(url string) (string, error) {
		urls = append(urls, url)
		return "", nil
	})
	now := time.Date(2022, 12, 20, 12, 0, 0, 0, time.Local)
	s := newTestSyncer(db, fetcher, now)

	if err := s.UpdateIndexHistory(); err != nil {
		t.Fatalf("UpdateIndexHistory failed: %v", err)
	}
	if len(urls) != 2 {
		t.Fatalf("expected 2 monthly fetches, got %d: %v", len(urls), urls)
	}
	if urls[0] != "https://www.twse.com.tw/indicesReport/MI_5MINS_HIST?response=csv&date=20221101" {
		t.Errorf("unexpected first url %s", urls[0])
	}
	if urls[1] != "https://www.twse.com.tw/indicesReport/MI_5MINS_HIST?response=csv&date=20221201" {
		t.Errorf("unexpected second url %s", urls[1])
	}
}
