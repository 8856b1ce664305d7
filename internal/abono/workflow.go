// Package abono drives the manual override workflow for divergent records.
// An auditor approves or rejects a divergence with a written justification;
// either decision is terminal and leaves an evidence spreadsheet behind.
package abono

import (
	"errors"
	"fmt"
	"strings"

	"github.com/tmsaudit/freteaudit/internal/reconcile"
)

// Decision is the direction of an override.
type Decision string

const (
	DecisionApprove Decision = "approve"
	DecisionReject  Decision = "reject"
)

var (
	// ErrEmptyJustification is returned when the justification is blank
	// after trimming. Every override must say why.
	ErrEmptyJustification = errors.New("abono: justification is required")

	// ErrNotDivergent is returned when the record is not in the one state
	// the workflow accepts. Terminal records stay terminal.
	ErrNotDivergent = errors.New("abono: record is not a divergence")
)

// Exporter persists the evidence artifact for a decided record. The base
// name carries no extension; the exporter chooses the format.
type Exporter interface {
	ExportRecord(rec reconcile.Record, baseName string) error
}

// Workflow applies override decisions to records in place.
type Workflow struct {
	exporter Exporter
}

// NewWorkflow returns a workflow that writes evidence through exporter.
func NewWorkflow(exporter Exporter) *Workflow {
	return &Workflow{exporter: exporter}
}

// Approve marks a divergent record Aprovado.
func (w *Workflow) Approve(rec *reconcile.Record, justification string) error {
	return w.decide(rec, DecisionApprove, justification)
}

// Reject marks a divergent record Reprovado.
func (w *Workflow) Reject(rec *reconcile.Record, justification string) error {
	return w.decide(rec, DecisionReject, justification)
}

func (w *Workflow) decide(rec *reconcile.Record, d Decision, justification string) error {
	justification = strings.TrimSpace(justification)
	if justification == "" {
		return ErrEmptyJustification
	}
	if !rec.Status.Divergent() {
		return fmt.Errorf("%w: status %q", ErrNotDivergent, rec.Status)
	}

	status := reconcile.StatusApproved
	if d == DecisionReject {
		status = reconcile.StatusRejected
	}
	rec.Status = status
	rec.Observation = justification

	if err := w.exporter.ExportRecord(*rec, EvidenceName(rec.Doc.SourceName)); err != nil {
		return fmt.Errorf("export evidence: %w", err)
	}
	return nil
}

// EvidenceName derives the evidence base name from the source file name:
// "Abono_" plus everything before the first dot. "cte_001.xml" becomes
// "Abono_cte_001".
func EvidenceName(sourceName string) string {
	base, _, _ := strings.Cut(sourceName, ".")
	return "Abono_" + base
}
