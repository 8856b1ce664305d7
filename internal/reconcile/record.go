// Package reconcile classifies extracted freight documents against an
// expected value from one of two reference sources: the bulk calculation
// memory or a validated freight-rate table batch.
package reconcile

import (
	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/tmsaudit/freteaudit/internal/extract"
)

// Status is the reconciliation outcome of a record, using the values the
// audit team works with.
type Status string

const (
	StatusMatched  Status = "Conciliado"
	StatusMismatch Status = "Erro na Conciliação"
	StatusApproved Status = "Aprovado"
	StatusRejected Status = "Reprovado"
)

// Divergent reports whether the status is an unresolved divergence, the only
// state the override workflow accepts.
func (s Status) Divergent() bool {
	return s == StatusMismatch
}

// Resolved reports whether the status is terminal.
func (s Status) Resolved() bool {
	return s == StatusApproved || s == StatusRejected
}

// Record is a classified freight document. Records are created by Reconcile
// in Conciliado or Erro na Conciliação and move to Aprovado/Reprovado only
// through the abono workflow.
type Record struct {
	ID          uuid.UUID        `json:"id"`
	Doc         extract.Document `json:"doc"`
	Status      Status           `json:"status"`
	Expected    decimal.Decimal  `json:"expected"`
	Observation string           `json:"observation,omitempty"`

	// Selected marks the record for bulk export.
	Selected bool `json:"selected"`
}
