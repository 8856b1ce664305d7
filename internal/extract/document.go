// Package extract turns raw CTe-style XML shipment documents into structured
// freight documents. Extraction is deliberately lenient: missing fields
// become zero values, malformed markup yields an empty document with
// warnings, and nothing here ever aborts a batch.
package extract

import (
	"fmt"
	"strings"

	"github.com/shopspring/decimal"

	"github.com/tmsaudit/freteaudit/internal/money"
)

// Component labels as they appear in the xNome element of cost components.
const (
	compTax           = "ICMS"
	compToll          = "PEDAGIO"
	compInsurance     = "GRIS"
	compInsuranceAlt  = "SEGURO"
	compWeightFreight = "FRETE"
)

// Document is the extracted content of one shipment XML.
type Document struct {
	SourceName string `json:"source_name"`
	Lane       string `json:"lane"`
	Shipper    string `json:"shipper"`

	// ShipperID and CarrierID bind the document to registered parties for
	// table-mode reconciliation. They are not present in the XML; the host
	// assigns them.
	ShipperID string `json:"shipper_id,omitempty"`
	CarrierID string `json:"carrier_id,omitempty"`

	Tax           decimal.Decimal `json:"tax"`
	Toll          decimal.Decimal `json:"toll"`
	Insurance     decimal.Decimal `json:"insurance"`
	WeightFreight decimal.Decimal `json:"weight_freight"`

	TotalBasis decimal.Decimal `json:"total_basis"`
	NetValue   decimal.Decimal `json:"net_value"`

	InvoiceKeys []string `json:"invoice_keys,omitempty"`
	Code        string   `json:"code,omitempty"`
	Reference   string   `json:"reference,omitempty"`
}

// Result pairs an extracted document with any degradation warnings.
// A document with warnings is still usable; the warnings exist so callers
// and tests can see what was swallowed.
type Result struct {
	Doc      Document
	Warnings []string
}

// Degraded reports whether extraction lost information.
func (r Result) Degraded() bool {
	return len(r.Warnings) > 0
}

// ExtractDocument extracts one freight document from raw XML bytes.
// Element lookup ignores namespaces entirely. Malformed XML produces an
// all-empty document with a warning instead of an error.
func ExtractDocument(sourceName string, raw []byte) Result {
	doc := Document{SourceName: sourceName}

	root, err := parseTree(raw)
	if err != nil {
		doc.TotalBasis = decimal.Zero
		doc.NetValue = decimal.Zero
		return Result{
			Doc:      doc,
			Warnings: []string{fmt.Sprintf("malformed XML: %v", err)},
		}
	}

	doc.Tax = componentValue(root, compTax)
	if doc.Tax.IsZero() {
		doc.Tax = money.ParseDecimal(root.findText("vICMS"))
	}
	doc.Toll = componentValue(root, compToll)
	doc.Insurance = componentValue(root, compInsurance)
	if doc.Insurance.IsZero() {
		doc.Insurance = componentValue(root, compInsuranceAlt)
	}
	doc.WeightFreight = componentValue(root, compWeightFreight)

	origin := root.findText("xMunIni")
	destination := root.findText("xMunFim")
	doc.Lane = strings.TrimSpace(origin + " / " + destination)

	if rem := root.find("rem"); rem != nil {
		doc.Shipper = rem.findText("xNome")
	}

	for _, inf := range root.findAll("infNFe") {
		if key := inf.findText("chave"); key != "" {
			doc.InvoiceKeys = append(doc.InvoiceKeys, key)
		}
	}

	if basis := root.find("vBC"); basis != nil {
		doc.TotalBasis = money.ParseDecimal(strings.TrimSpace(basis.content()))
	} else {
		doc.TotalBasis = doc.Tax.Add(doc.Toll).Add(doc.Insurance).Add(doc.WeightFreight)
	}
	doc.NetValue = doc.TotalBasis.Sub(doc.Tax)

	doc.Reference, doc.Code = ExtractCodes(root.findText("xObs"))

	return Result{Doc: doc}
}

// componentValue returns the value of the first Comp element whose xNome
// matches the label, case-insensitively. Missing components are zero.
func componentValue(root *xmlNode, label string) decimal.Decimal {
	for _, comp := range root.findAll("Comp") {
		if strings.EqualFold(comp.findText("xNome"), label) {
			return money.ParseDecimal(comp.findText("vComp"))
		}
	}
	return decimal.Zero
}
