// Package export renders audit records into XLSX workbooks: the bulk report
// downloaded by auditors and the per-record evidence file the override
// workflow leaves behind.
package export

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/xuri/excelize/v2"

	"github.com/tmsaudit/freteaudit/internal/money"
	"github.com/tmsaudit/freteaudit/internal/reconcile"
)

// SheetName is the sheet all report workbooks carry.
const SheetName = "Auditoria"

// Columns is the report header row, in output order.
var Columns = []string{
	"Embarcador",
	"Origem/Destino",
	"Arquivo",
	"Código",
	"SOLTRANSP",
	"Chaves NF-e (9d)",
	"ICMS",
	"Pedágio",
	"Seguro",
	"Frete Peso",
	"Vlr Líquido (s/ ICMS)",
	"Total Calculado",
	"Valor Esperado",
	"Status",
	"Observação",
}

// WriteWorkbook renders the records as an Auditoria sheet and writes the
// workbook to w. Monetary cells are formatted "R$ 1.234,56" so the report
// reads the way the source invoices do.
func WriteWorkbook(w io.Writer, records []reconcile.Record) error {
	f := buildWorkbook(records)
	defer f.Close()
	if _, err := f.WriteTo(w); err != nil {
		return fmt.Errorf("write workbook: %w", err)
	}
	return nil
}

func buildWorkbook(records []reconcile.Record) *excelize.File {
	f := excelize.NewFile()
	idx, _ := f.NewSheet(SheetName)
	f.SetActiveSheet(idx)
	f.DeleteSheet("Sheet1")

	header := make([]interface{}, len(Columns))
	for i, c := range Columns {
		header[i] = c
	}
	f.SetSheetRow(SheetName, "A1", &header)

	for i, rec := range records {
		cell, _ := excelize.CoordinatesToCellName(1, i+2)
		row := recordRow(rec)
		f.SetSheetRow(SheetName, cell, &row)
	}
	return f
}

func recordRow(rec reconcile.Record) []interface{} {
	d := rec.Doc
	return []interface{}{
		d.Shipper,
		d.Lane,
		d.SourceName,
		d.Code,
		d.Reference,
		strings.Join(invoiceNumbers(d.InvoiceKeys), ", "),
		money.FormatBRL(d.Tax),
		money.FormatBRL(d.Toll),
		money.FormatBRL(d.Insurance),
		money.FormatBRL(d.WeightFreight),
		money.FormatBRL(d.NetValue),
		money.FormatBRL(d.TotalBasis),
		money.FormatBRL(rec.Expected),
		string(rec.Status),
		rec.Observation,
	}
}

// invoiceNumbers reduces each 44-digit NF-e access key to its 9-digit
// document number, positions 26 through 34 of the key. Keys too short to
// carry a number are dropped.
func invoiceNumbers(keys []string) []string {
	nums := make([]string, 0, len(keys))
	for _, key := range keys {
		if n := keyDigits(key); n != "" {
			nums = append(nums, n)
		}
	}
	return nums
}

func keyDigits(key string) string {
	if len(key) <= 25 {
		return ""
	}
	end := 34
	if len(key) < end {
		end = len(key)
	}
	return key[25:end]
}

// FileExporter writes evidence workbooks into a directory. It satisfies the
// override workflow's exporter contract.
type FileExporter struct {
	Dir string
}

// ExportRecord writes a one-record Auditoria workbook named base plus the
// xlsx extension into the exporter's directory.
func (e FileExporter) ExportRecord(rec reconcile.Record, baseName string) error {
	if err := os.MkdirAll(e.Dir, 0o755); err != nil {
		return fmt.Errorf("create export dir: %w", err)
	}
	path := filepath.Join(e.Dir, baseName+".xlsx")
	out, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("create %s: %w", path, err)
	}
	defer out.Close()
	if err := WriteWorkbook(out, []reconcile.Record{rec}); err != nil {
		return err
	}
	return out.Close()
}
