package reconcile

import (
	"fmt"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/tmsaudit/freteaudit/internal/extract"
	"github.com/tmsaudit/freteaudit/internal/money"
)

// tolerance is the matching window in currency units: values closer than one
// cent reconcile. Strict less-than, not a percentage.
var tolerance = decimal.New(1, -2)

// Observation strings for table-mode outcomes.
const (
	ObsPartyMismatch = "Embarcador ou Transportadora diferentes da tabela."
	ObsRowNotFound   = "Item não encontrado na tabela de frete."
	ObsTableMatched  = "Conciliado com tabela."
)

// Matches reports whether a computed basis reconciles with an expected value.
func Matches(basis, expected decimal.Decimal) bool {
	return basis.Sub(expected).Abs().LessThan(tolerance)
}

// Classify derives the status and observation for a document against a
// resolved reference value. Memory mode never sets an observation here; that
// field stays free for the abono workflow. Table mode always explains the
// outcome.
func Classify(doc extract.Document, ref ReferenceValue) (Status, string) {
	switch ref.Failure {
	case FailurePartyMismatch:
		return StatusMismatch, ObsPartyMismatch
	case FailureRowNotFound:
		return StatusMismatch, ObsRowNotFound
	}

	matched := Matches(doc.TotalBasis, ref.Amount)
	if ref.Source != SourceTable {
		if matched {
			return StatusMatched, ""
		}
		return StatusMismatch, ""
	}

	if matched {
		return StatusMatched, ObsTableMatched
	}
	return StatusMismatch, fmt.Sprintf("Divergência: Esperado %s, Calculado %s.",
		money.FormatBRL(ref.Amount), money.FormatBRL(doc.TotalBasis))
}

// Reconcile combines a document and a resolved reference value into a new
// classified record. Inputs are never mutated.
func Reconcile(doc extract.Document, ref ReferenceValue) Record {
	status, observation := Classify(doc, ref)
	return Record{
		ID:          uuid.New(),
		Doc:         doc,
		Status:      status,
		Expected:    ref.Amount,
		Observation: observation,
	}
}
