package reconcile

import (
	"strings"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/tmsaudit/freteaudit/internal/extract"
	"github.com/tmsaudit/freteaudit/internal/refdata"
)

// ReferenceSource identifies which reference supplied an expected value.
type ReferenceSource string

const (
	SourceMemory ReferenceSource = "memory"
	SourceTable  ReferenceSource = "table"
)

// FailureReason classifies why table-mode resolution produced no value.
// These are outcomes, not errors: downstream they always become a mismatch
// with a distinguishing observation, never an aborted batch.
type FailureReason string

const (
	// FailureNone means resolution succeeded.
	FailureNone FailureReason = ""
	// FailurePartyMismatch means the document's shipper or carrier differs
	// from the batch owner. The two sides are checked as one precondition;
	// the outcome does not isolate which differed.
	FailurePartyMismatch FailureReason = "party_mismatch"
	// FailureRowNotFound means no batch row matched the document's
	// (code, origin, destination) key.
	FailureRowNotFound FailureReason = "row_not_found"
)

// ReferenceValue is the expected total for a document plus its provenance.
type ReferenceValue struct {
	Source  ReferenceSource
	Amount  decimal.Decimal
	Code    string
	BatchID uuid.UUID
	Failure FailureReason
}

// ResolveFromMemory looks up the document's mined code in the calculation
// memory. A missing code or map entry resolves to zero with no failure:
// in memory mode absence simply means the record will not match.
func ResolveFromMemory(doc extract.Document, mm *refdata.MemoryMap) ReferenceValue {
	amount, _ := mm.Lookup(doc.Code)
	return ReferenceValue{
		Source: SourceMemory,
		Amount: amount,
		Code:   doc.Code,
	}
}

// ResolveFromTable resolves the expected value from a freight-rate batch.
// The document's shipper and carrier must both match the batch owner, and a
// row must exist for the document's code and lane endpoints.
func ResolveFromTable(doc extract.Document, shipperID, carrierID string, batch *refdata.TableBatch) ReferenceValue {
	ref := ReferenceValue{
		Source:  SourceTable,
		Code:    doc.Code,
		BatchID: batch.ID,
	}

	if shipperID != batch.ShipperID || carrierID != batch.CarrierID {
		ref.Failure = FailurePartyMismatch
		return ref
	}

	origin, destination := splitLane(doc.Lane)
	row, ok := batch.FindRow(doc.Code, origin, destination)
	if !ok {
		ref.Failure = FailureRowNotFound
		return ref
	}

	ref.Amount = row.AllIn
	return ref
}

// splitLane splits "ORIGIN / DESTINATION" back into its endpoints.
func splitLane(lane string) (origin, destination string) {
	parts := strings.SplitN(lane, " / ", 2)
	origin = parts[0]
	if len(parts) > 1 {
		destination = parts[1]
	}
	return origin, destination
}
