package refdata

import (
	"bytes"
	"io"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/xuri/excelize/v2"
)

// sheetReader builds an in-memory workbook from rows and returns it as an
// upload body.
func sheetReader(t *testing.T, rows [][]interface{}) io.Reader {
	t.Helper()
	f := excelize.NewFile()
	sheet := f.GetSheetName(0)
	for i, row := range rows {
		cellRef, err := excelize.CoordinatesToCellName(1, i+1)
		if err != nil {
			t.Fatal(err)
		}
		if err := f.SetSheetRow(sheet, cellRef, &row); err != nil {
			t.Fatal(err)
		}
	}
	buf, err := f.WriteToBuffer()
	if err != nil {
		t.Fatal(err)
	}
	return bytes.NewReader(buf.Bytes())
}

func TestImportMemory(t *testing.T) {
	r := sheetReader(t, [][]interface{}{
		{"SEQ", "CÓDIGO", "C", "D", "E", "VALOR"},
		{"1", "0001234567", "", "", "", "", "", "", "", "", "", "1.234,56"},
		{"2", "0009876543", "", "", "", "R$ 100,00"},
		{"3", "", "", "", "", "55,00"},
	})

	entries, err := ImportMemory(r)
	if err != nil {
		t.Fatal(err)
	}
	if len(entries) != 2 {
		t.Fatalf("got %d entries, want 2 (blank code dropped)", len(entries))
	}
	if !entries["0001234567"].Equal(decimal.RequireFromString("1234.56")) {
		t.Errorf("twelfth-column amount = %s, want 1234.56", entries["0001234567"])
	}
	if !entries["0009876543"].Equal(decimal.RequireFromString("100")) {
		t.Errorf("sixth-column fallback = %s, want 100", entries["0009876543"])
	}
}

func TestMemoryMapReplaceIsWholesale(t *testing.T) {
	m := NewMemoryMap()
	m.Replace(map[string]decimal.Decimal{
		"0000000001": decimal.RequireFromString("10"),
		"0000000002": decimal.RequireFromString("20"),
	})
	m.Replace(map[string]decimal.Decimal{
		"0000000003": decimal.RequireFromString("30"),
	})

	if m.Len() != 1 {
		t.Fatalf("len = %d, want 1: replace must discard the previous map", m.Len())
	}
	if _, ok := m.Lookup("0000000001"); ok {
		t.Error("old code survived the replace")
	}
	v, ok := m.Lookup("0000000003")
	if !ok || !v.Equal(decimal.RequireFromString("30")) {
		t.Errorf("lookup = %s, %v", v, ok)
	}
	if v, ok := m.Lookup("missing"); ok || !v.IsZero() {
		t.Errorf("missing code should yield zero, got %s", v)
	}
}

func tableRows() [][]interface{} {
	return [][]interface{}{
		{"ID EMBARC", "ID TRANSPORT", "CÓDIGO", "SOLTRANSP", "ORIGEM", "DESTINO", "ICMS", "PEDÁGIOS", "SEGURO", "FRETE PESO", "FRETE ALL IN"},
		{"EMB1", "TRA1", "0001234567", "SOLTRANSP-2026-00231", "CAMPINAS", "SAO PAULO", "10,00", "5,00", "2,00", "83,00", "100,00"},
		{"EMB1", "TRA1", "0001234568", "", "CAMPINAS", "SANTOS", "12,00", "6,00", "2,50", "90,00", "110,50"},
	}
}

func TestImportTableValidated(t *testing.T) {
	batch, err := ImportTable(sheetReader(t, tableRows()), "tabela.xlsx")
	if err != nil {
		t.Fatal(err)
	}
	if batch.Status != BatchValidated {
		t.Errorf("status = %q, want %q", batch.Status, BatchValidated)
	}
	if batch.ShipperID != "EMB1" || batch.CarrierID != "TRA1" {
		t.Errorf("owner = %q/%q, want EMB1/TRA1", batch.ShipperID, batch.CarrierID)
	}
	if len(batch.Rows) != 2 || len(batch.Dropped) != 0 {
		t.Fatalf("rows = %d dropped = %d", len(batch.Rows), len(batch.Dropped))
	}

	row, ok := batch.FindRow("0001234567", "CAMPINAS", "SAO PAULO")
	if !ok {
		t.Fatal("row not found by (code, origin, destination)")
	}
	if !row.AllIn.Equal(decimal.RequireFromString("100")) {
		t.Errorf("all-in = %s, want 100", row.AllIn)
	}
}

func TestImportTableDropsInvalidRows(t *testing.T) {
	rows := tableRows()
	rows = append(rows,
		[]interface{}{"EMB1", "TRA1", "", "", "CAMPINAS", "SANTOS", "", "", "", "", "120,00"},
		[]interface{}{"", "", "", "", "", "", "", "", "", "", ""},
	)

	batch, err := ImportTable(sheetReader(t, rows), "tabela.xlsx")
	if err != nil {
		t.Fatal(err)
	}
	if batch.Status != BatchWithErrors {
		t.Errorf("status = %q, want %q", batch.Status, BatchWithErrors)
	}
	if len(batch.Rows) != 2 {
		t.Errorf("valid rows = %d, want 2", len(batch.Rows))
	}
	if len(batch.Dropped) != 1 {
		t.Fatalf("dropped = %d, want 1 (fully blank rows are ignored, not counted)", len(batch.Dropped))
	}
	if batch.Dropped[0].Line != 4 {
		t.Errorf("dropped line = %d, want 4", batch.Dropped[0].Line)
	}
}

func TestImportTableMissingHeader(t *testing.T) {
	rows := [][]interface{}{
		{"ID EMBARC", "ID TRANSPORT", "CÓDIGO", "ORIGEM", "DESTINO"},
		{"EMB1", "TRA1", "0001234567", "A", "B"},
	}
	if _, err := ImportTable(sheetReader(t, rows), "bad.xlsx"); err == nil {
		t.Fatal("expected error for missing FRETE ALL IN header")
	}
}

func TestTemplateWorkbook(t *testing.T) {
	f, err := TemplateWorkbook()
	if err != nil {
		t.Fatal(err)
	}
	rows, err := f.GetRows("Modelo")
	if err != nil {
		t.Fatal(err)
	}
	if len(rows) != 1 {
		t.Fatalf("template has %d rows, want header only", len(rows))
	}
	if len(rows[0]) != len(TableHeaders) {
		t.Fatalf("header has %d columns, want %d", len(rows[0]), len(TableHeaders))
	}
	for i, h := range TableHeaders {
		if rows[0][i] != h {
			t.Errorf("column %d = %q, want %q", i, rows[0][i], h)
		}
	}
}

func TestBatchSetFindByIDPrefix(t *testing.T) {
	set := NewBatchSet()
	batch, err := ImportTable(sheetReader(t, tableRows()), "tabela.xlsx")
	if err != nil {
		t.Fatal(err)
	}
	set.Add(batch)

	got, ok := set.FindByIDPrefix(batch.ID.String()[:8])
	if !ok || got.ID != batch.ID {
		t.Fatal("batch not found by id prefix")
	}
	if _, ok := set.FindByIDPrefix(""); ok {
		t.Error("empty prefix must not match")
	}
}
