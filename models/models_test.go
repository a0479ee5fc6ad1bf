package models

import "testing"

func TestStockInfoTitle(t *testing.T) {
	future := "CDF"
	mini := "QFF"

	plain := StockInfo{ID: "1101", Name: "台泥"}
	if got := plain.Title(); got != "1101 台泥" {
		t.Errorf("expected plain title, got %q", got)
	}

	withFuture := StockInfo{ID: "2317", Name: "鴻海", Future: &future}
	if got := withFuture.Title(); got != "2317 鴻海 (CDF)" {
		t.Errorf("expected future title, got %q", got)
	}

	withBoth := StockInfo{ID: "2330", Name: "台積電", Future: &future, MiniFuture: &mini}
	if got := withBoth.Title(); got != "2330 台積電 (CDF,QFF)" {
		t.Errorf("expected combined title, got %q", got)
	}
}

func TestMarketMarkerID(t *testing.T) {
	if TWSE.MarkerID() != "TWSE" || OTC.MarkerID() != "OTC" {
		t.Error("marker id must equal the market name")
	}
}
