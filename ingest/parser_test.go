package ingest

import (
	"testing"
)

func TestCleanField(t *testing.T) {
	cases := []struct {
		in   string
		want string
	}{
		{`="2330"`, "2330"},
		{`='0050'`, "0050"},
		{"1,234,567", "1234567"},
		{" 600.00\t", "600.00"},
		{"台積電&nbsp;", "台積電"},
		{"⊕中興電", "中興電"},
		{"⊙大同", "大同"},
	}
	for _, c := range cases {
		if got := CleanField(c.in); got != c.want {
			t.Errorf("CleanField(%q) = %q, want %q", c.in, got, c.want)
		}
	}
}

func TestIsSecurityID(t *testing.T) {
	accepted := []string{"2330", "1101", "00050", "0050", "0201", "2330A"}
	for _, id := range accepted {
		if !IsSecurityID(id) {
			t.Errorf("expected %q to be accepted", id)
		}
	}

	rejected := []string{"", "7011A", "70111", "03", "0973", "元大台灣50"}
	for _, id := range rejected {
		if IsSecurityID(id) {
			t.Errorf("expected %q to be rejected", id)
		}
	}
}

func TestParseRowRejectsZeroVolume(t *testing.T) {
	row := []string{"2330", "台積電", "0", "100", "500", "---", "600", "590", "605", "0", "X"}
	if c := ParseRow(TWSEConfig, row); c != nil {
		t.Errorf("expected zero-volume row to be rejected, got %+v", c)
	}
}

func TestParseRowAcceptsValidTWSERow(t *testing.T) {
	row := []string{"2330", "台積電", "1000", "100", "500", "600", "610", "590", "605", "+", "1.5"}
	c := ParseRow(TWSEConfig, row)
	if c == nil {
		t.Fatal("expected row to be accepted")
	}
	if c.ID != "2330" || c.Name != "台積電" {
		t.Errorf("unexpected identity: %q %q", c.ID, c.Name)
	}
	if c.Volume != 1000 || c.TickCount != 100 || c.Turnover != 500 {
		t.Errorf("unexpected volume/tick/turnover: %d %d %d", c.Volume, c.TickCount, c.Turnover)
	}
	if c.Open.String() != "600" || c.High.String() != "610" || c.Low.String() != "590" || c.Close.String() != "605" {
		t.Errorf("unexpected prices: %s %s %s %s", c.Open, c.High, c.Low, c.Close)
	}
	if !c.Delta.Valid || c.Delta.Decimal.String() != "1.5" {
		t.Errorf("expected delta 1.5, got %+v", c.Delta)
	}
}

func TestParseRowUnchangedSentinel(t *testing.T) {
	row := []string{"2330", "台積電", "1000", "100", "500", "600", "610", "590", "605", "X", "0.0"}
	c := ParseRow(TWSEConfig, row)
	if c == nil {
		t.Fatal("expected row to be accepted")
	}
	if c.Delta.Valid {
		t.Errorf("expected null delta for unchanged marker, got %s", c.Delta.Decimal)
	}
}

func TestParseRowNullDeltaPlaceholder(t *testing.T) {
	row := []string{"4303", "大聯大", "60.5", "---", "60.0", "61.0", "59.5", "60.2", "5000", "300000", "120"}
	c := ParseRow(OTCConfig, row)
	if c == nil {
		t.Fatal("expected row to be accepted")
	}
	if c.Delta.Valid {
		t.Errorf("expected null delta for ---, got %s", c.Delta.Decimal)
	}
}

func TestParseRowOTCLayout(t *testing.T) {
	row := []string{"4303", "大聯大", "60.5", "0.5", "60.0", "61.0", "59.5", "60.2", "5000", "300000", "120"}
	c := ParseRow(OTCConfig, row)
	if c == nil {
		t.Fatal("expected row to be accepted")
	}
	if c.Volume != 5000 || c.Turnover != 300000 || c.TickCount != 120 {
		t.Errorf("unexpected volume/turnover/tick: %d %d %d", c.Volume, c.Turnover, c.TickCount)
	}
	if c.Open.String() != "60.0" || c.Close.String() != "60.5" {
		t.Errorf("unexpected open/close: %s %s", c.Open, c.Close)
	}
	if !c.Delta.Valid || c.Delta.Decimal.String() != "0.5" {
		t.Errorf("expected delta 0.5, got %+v", c.Delta)
	}
}

func TestParseRowRejections(t *testing.T) {
	cases := map[string][]string{
		"too few fields":    {"2330", "台積電", "1000"},
		"index row":         {"發行量加權股價指數", "", "1000", "100", "500", "600", "610", "590", "605", "+", "1.5"},
		"long id with 7":    {"7011A", "某權證", "1000", "100", "500", "600", "610", "590", "605", "+", "1.5"},
		"zero open":         {"2330", "台積電", "1000", "100", "500", "0", "610", "590", "605", "+", "1.5"},
		"missing high":      {"2330", "台積電", "1000", "100", "500", "600", "--", "590", "605", "+", "1.5"},
		"unparsable volume": {"2330", "台積電", "n/a", "100", "500", "600", "610", "590", "605", "+", "1.5"},
		"missing tickcount": {"2330", "台積電", "1000", "", "500", "600", "610", "590", "605", "+", "1.5"},
	}
	for name, row := range cases {
		if c := ParseRow(TWSEConfig, row); c != nil {
			t.Errorf("%s: expected rejection, got %+v", name, c)
		}
	}
}

func TestParseRowPreservesDecimalText(t *testing.T) {
	row := []string{"2330", "台積電", "1000", "100", "500", "600.10", "610.00", "590.05", "605.50", "+", "1.50"}
	c := ParseRow(TWSEConfig, row)
	if c == nil {
		t.Fatal("expected row to be accepted")
	}
	// Exact textual precision, no binary float round trip.
	if c.Open.String() != "600.10" {
		t.Errorf("expected open 600.10, got %s", c.Open)
	}
	if c.Delta.Decimal.String() != "1.50" {
		t.Errorf("expected delta 1.50, got %s", c.Delta.Decimal)
	}
}

func TestParseReport(t *testing.T) {
	text := "107年01月03日每日收盤行情\r\n" +
		"\"證券代號\",\"證券名稱\"\r\n" +
		"\"2330\",\"台積電\",\"35,000\",\"100\",\"500\",\"600\",\"610\",\"590\",\"605\",\"+\",\"1.5\"\r\n" +
		"\r\n" +
		"備註: 含鉅額交易\r\n"

	rows := ParseReport(text)
	if len(rows) != 4 {
		t.Fatalf("expected 4 rows, got %d", len(rows))
	}

	var candidates []Candidate
	for _, row := range rows {
		if c := ParseRow(TWSEConfig, row); c != nil {
			candidates = append(candidates, *c)
		}
	}
	if len(candidates) != 1 {
		t.Fatalf("expected 1 candidate, got %d", len(candidates))
	}
	if candidates[0].Volume != 35000 {
		t.Errorf("expected volume 35000, got %d", candidates[0].Volume)
	}
}
