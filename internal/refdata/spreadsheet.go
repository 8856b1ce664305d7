package refdata

// spreadsheet.go reads the two reference spreadsheets and produces the
// import template. Both imports are tolerant about cell formatting (values
// go through the locale-ambiguous numeric parser) but strict about the
// table-mode header row.

import (
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/xuri/excelize/v2"

	"github.com/tmsaudit/freteaudit/internal/money"
)

// TableHeaders is the exact header row of a freight-rate table spreadsheet,
// also used verbatim by the downloadable template.
var TableHeaders = []string{
	"ID EMBARC", "ID TRANSPORT", "CÓDIGO", "SOLTRANSP", "ORIGEM",
	"DESTINO", "ICMS", "PEDÁGIOS", "SEGURO", "FRETE PESO", "FRETE ALL IN",
}

// requiredHeaders are the columns that must be non-empty in every row for a
// batch to validate.
var requiredHeaders = []string{
	"ID EMBARC", "ID TRANSPORT", "CÓDIGO", "ORIGEM", "DESTINO", "FRETE ALL IN",
}

// TemplateFileName is the suggested download name for the import template.
const TemplateFileName = "Modelo_Tabela_Frete.xlsx"

// Memory-map spreadsheet layout: codes in the second column, amounts in the
// twelfth column falling back to the sixth when the twelfth is absent.
const (
	memoryCodeCol      = 1
	memoryAmountCol    = 11
	memoryAmountColAlt = 5
)

// ImportMemory parses a calculation-memory spreadsheet into a fresh
// code-to-value map. The first row is a header and is skipped; rows without
// a code are dropped. The caller swaps the result into a MemoryMap.
func ImportMemory(r io.Reader) (map[string]decimal.Decimal, error) {
	f, err := excelize.OpenReader(r)
	if err != nil {
		return nil, fmt.Errorf("opening memory spreadsheet: %w", err)
	}
	defer f.Close()

	rows, err := f.GetRows(f.GetSheetName(0))
	if err != nil {
		return nil, fmt.Errorf("reading memory sheet: %w", err)
	}

	entries := make(map[string]decimal.Decimal)
	for i, row := range rows {
		if i == 0 {
			continue
		}
		code := strings.TrimSpace(cellAt(row, memoryCodeCol))
		if code == "" {
			continue
		}
		raw := cellAt(row, memoryAmountColAlt)
		if len(row) > memoryAmountCol {
			raw = row[memoryAmountCol]
		}
		entries[code] = money.ParseDecimal(raw)
	}
	return entries, nil
}

// ImportTable parses a freight-rate spreadsheet into a TableBatch. Rows
// missing any required column are dropped and counted; the batch status is
// BatchWithErrors when anything was dropped. The batch's owning shipper and
// carrier ids come from the first valid row.
func ImportTable(r io.Reader, fileName string) (*TableBatch, error) {
	f, err := excelize.OpenReader(r)
	if err != nil {
		return nil, fmt.Errorf("opening freight table spreadsheet: %w", err)
	}
	defer f.Close()

	rows, err := f.GetRows(f.GetSheetName(0))
	if err != nil {
		return nil, fmt.Errorf("reading freight table sheet: %w", err)
	}
	if len(rows) == 0 {
		return nil, fmt.Errorf("freight table spreadsheet is empty")
	}

	colIdx := make(map[string]int, len(rows[0]))
	for i, h := range rows[0] {
		colIdx[strings.TrimSpace(h)] = i
	}
	var missing []string
	for _, h := range requiredHeaders {
		if _, ok := colIdx[h]; !ok {
			missing = append(missing, h)
		}
	}
	if len(missing) > 0 {
		return nil, fmt.Errorf("missing required columns: %s", strings.Join(missing, ", "))
	}

	batch := &TableBatch{
		ID:         uuid.New(),
		FileName:   fileName,
		ImportedAt: time.Now(),
	}

	cell := func(row []string, header string) string {
		idx, ok := colIdx[header]
		if !ok {
			return ""
		}
		return strings.TrimSpace(cellAt(row, idx))
	}

	for i, row := range rows[1:] {
		line := i + 2 // spreadsheet line number, header included

		if emptyRow(row) {
			continue
		}

		var blank []string
		for _, h := range requiredHeaders {
			if cell(row, h) == "" {
				blank = append(blank, h)
			}
		}
		if len(blank) > 0 {
			batch.Dropped = append(batch.Dropped, RowError{
				Line:   line,
				Reason: fmt.Sprintf("empty required column(s): %s", strings.Join(blank, ", ")),
			})
			continue
		}

		batch.Rows = append(batch.Rows, RateRow{
			ShipperID:     cell(row, "ID EMBARC"),
			CarrierID:     cell(row, "ID TRANSPORT"),
			Code:          cell(row, "CÓDIGO"),
			Reference:     cell(row, "SOLTRANSP"),
			Origin:        cell(row, "ORIGEM"),
			Destination:   cell(row, "DESTINO"),
			Tax:           money.ParseDecimal(cell(row, "ICMS")),
			Tolls:         money.ParseDecimal(cell(row, "PEDÁGIOS")),
			Insurance:     money.ParseDecimal(cell(row, "SEGURO")),
			WeightFreight: money.ParseDecimal(cell(row, "FRETE PESO")),
			AllIn:         money.ParseDecimal(cell(row, "FRETE ALL IN")),
		})
	}

	if len(batch.Rows) > 0 {
		batch.ShipperID = batch.Rows[0].ShipperID
		batch.CarrierID = batch.Rows[0].CarrierID
	}
	batch.Status = BatchValidated
	if len(batch.Dropped) > 0 {
		batch.Status = BatchWithErrors
	}
	return batch, nil
}

// TemplateWorkbook builds the import template: the table header row and
// nothing else.
func TemplateWorkbook() (*excelize.File, error) {
	f := excelize.NewFile()
	const sheet = "Modelo"
	idx, err := f.NewSheet(sheet)
	if err != nil {
		return nil, err
	}
	f.SetActiveSheet(idx)
	if err := f.DeleteSheet("Sheet1"); err != nil {
		return nil, err
	}
	if err := f.SetSheetRow(sheet, "A1", &TableHeaders); err != nil {
		return nil, err
	}
	return f, nil
}

func cellAt(row []string, idx int) string {
	if idx < len(row) {
		return row[idx]
	}
	return ""
}

func emptyRow(row []string) bool {
	for _, c := range row {
		if strings.TrimSpace(c) != "" {
			return false
		}
	}
	return true
}
