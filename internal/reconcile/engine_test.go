package reconcile

import (
	"testing"

	"github.com/shopspring/decimal"

	"github.com/tmsaudit/freteaudit/internal/extract"
	"github.com/tmsaudit/freteaudit/internal/refdata"
)

func dec(t *testing.T, s string) decimal.Decimal {
	t.Helper()
	return decimal.RequireFromString(s)
}

func memoryWith(t *testing.T, code, value string) *refdata.MemoryMap {
	t.Helper()
	mm := refdata.NewMemoryMap()
	mm.Replace(map[string]decimal.Decimal{code: dec(t, value)})
	return mm
}

func TestReconcileMemoryWithinTolerance(t *testing.T) {
	mm := memoryWith(t, "0001234567", "100.00")
	doc := extract.Document{Code: "0001234567", TotalBasis: dec(t, "100.004")}

	rec := Reconcile(doc, ResolveFromMemory(doc, mm))
	if rec.Status != StatusMatched {
		t.Errorf("status = %q, want %q", rec.Status, StatusMatched)
	}
	if rec.Observation != "" {
		t.Errorf("memory mode must not set an observation, got %q", rec.Observation)
	}
	if !rec.Expected.Equal(dec(t, "100")) {
		t.Errorf("expected = %s, want 100", rec.Expected)
	}
}

func TestReconcileMemoryOutsideTolerance(t *testing.T) {
	mm := memoryWith(t, "0001234567", "100.00")
	doc := extract.Document{Code: "0001234567", TotalBasis: dec(t, "100.02")}

	rec := Reconcile(doc, ResolveFromMemory(doc, mm))
	if rec.Status != StatusMismatch {
		t.Errorf("status = %q, want %q", rec.Status, StatusMismatch)
	}
	if rec.Observation != "" {
		t.Errorf("memory mode must not set an observation, got %q", rec.Observation)
	}
}

func TestReconcileMemoryToleranceBoundary(t *testing.T) {
	mm := memoryWith(t, "0001234567", "100.00")

	// Exactly one cent apart is not a match: the window is strict.
	doc := extract.Document{Code: "0001234567", TotalBasis: dec(t, "100.01")}
	if rec := Reconcile(doc, ResolveFromMemory(doc, mm)); rec.Status != StatusMismatch {
		t.Errorf("boundary |diff| = 0.01: status = %q, want mismatch", rec.Status)
	}

	doc.TotalBasis = dec(t, "100.009")
	if rec := Reconcile(doc, ResolveFromMemory(doc, mm)); rec.Status != StatusMatched {
		t.Errorf("|diff| = 0.009: status = %q, want match", rec.Status)
	}
}

func TestReconcileMemoryUnknownCode(t *testing.T) {
	mm := refdata.NewMemoryMap()
	doc := extract.Document{Code: "0009999999", TotalBasis: dec(t, "50")}

	ref := ResolveFromMemory(doc, mm)
	if ref.Failure != FailureNone {
		t.Errorf("memory absence is not a failure, got %q", ref.Failure)
	}
	rec := Reconcile(doc, ref)
	if rec.Status != StatusMismatch || !rec.Expected.IsZero() {
		t.Errorf("status = %q expected = %s, want mismatch against 0", rec.Status, rec.Expected)
	}
}

func tableBatch(t *testing.T) *refdata.TableBatch {
	t.Helper()
	return &refdata.TableBatch{
		ShipperID: "EMB1",
		CarrierID: "TRA1",
		Status:    refdata.BatchValidated,
		Rows: []refdata.RateRow{
			{
				ShipperID:   "EMB1",
				CarrierID:   "TRA1",
				Code:        "0001234567",
				Origin:      "CAMPINAS",
				Destination: "SAO PAULO",
				AllIn:       dec(t, "100.00"),
			},
		},
	}
}

func TestResolveFromTablePartyMismatch(t *testing.T) {
	batch := tableBatch(t)
	doc := extract.Document{
		Code:       "0001234567",
		Lane:       "CAMPINAS / SAO PAULO",
		TotalBasis: dec(t, "100.00"),
	}

	for _, tc := range []struct{ shipper, carrier string }{
		{"EMB2", "TRA1"},
		{"EMB1", "TRA2"},
		{"EMB2", "TRA2"},
	} {
		ref := ResolveFromTable(doc, tc.shipper, tc.carrier, batch)
		if ref.Failure != FailurePartyMismatch {
			t.Errorf("%s/%s: failure = %q, want party mismatch", tc.shipper, tc.carrier, ref.Failure)
		}
		rec := Reconcile(doc, ref)
		if rec.Status != StatusMismatch {
			t.Errorf("%s/%s: status = %q, want mismatch even though a row exists", tc.shipper, tc.carrier, rec.Status)
		}
		if rec.Observation != ObsPartyMismatch {
			t.Errorf("observation = %q", rec.Observation)
		}
	}
}

func TestResolveFromTableRowNotFound(t *testing.T) {
	batch := tableBatch(t)
	doc := extract.Document{
		Code: "0001234567",
		Lane: "CAMPINAS / SANTOS",
	}

	ref := ResolveFromTable(doc, "EMB1", "TRA1", batch)
	if ref.Failure != FailureRowNotFound {
		t.Fatalf("failure = %q, want row not found", ref.Failure)
	}
	rec := Reconcile(doc, ref)
	if rec.Status != StatusMismatch || rec.Observation != ObsRowNotFound {
		t.Errorf("status = %q observation = %q", rec.Status, rec.Observation)
	}
}

func TestReconcileTableMatched(t *testing.T) {
	batch := tableBatch(t)
	doc := extract.Document{
		Code:       "0001234567",
		Lane:       "CAMPINAS / SAO PAULO",
		TotalBasis: dec(t, "100.00"),
	}

	rec := Reconcile(doc, ResolveFromTable(doc, "EMB1", "TRA1", batch))
	if rec.Status != StatusMatched {
		t.Errorf("status = %q, want matched", rec.Status)
	}
	if rec.Observation != ObsTableMatched {
		t.Errorf("observation = %q, want %q", rec.Observation, ObsTableMatched)
	}
	if !rec.Expected.Equal(dec(t, "100")) {
		t.Errorf("expected = %s", rec.Expected)
	}
}

func TestReconcileTableDivergence(t *testing.T) {
	batch := tableBatch(t)
	doc := extract.Document{
		Code:       "0001234567",
		Lane:       "CAMPINAS / SAO PAULO",
		TotalBasis: dec(t, "123.45"),
	}

	rec := Reconcile(doc, ResolveFromTable(doc, "EMB1", "TRA1", batch))
	if rec.Status != StatusMismatch {
		t.Fatalf("status = %q, want mismatch", rec.Status)
	}
	want := "Divergência: Esperado R$ 100,00, Calculado R$ 123,45."
	if rec.Observation != want {
		t.Errorf("observation = %q, want %q", rec.Observation, want)
	}
}

func TestReconcileDoesNotMutateInputs(t *testing.T) {
	doc := extract.Document{Code: "0001234567", TotalBasis: dec(t, "10")}
	ref := ReferenceValue{Source: SourceMemory, Amount: dec(t, "10")}

	_ = Reconcile(doc, ref)
	if !doc.TotalBasis.Equal(dec(t, "10")) || !ref.Amount.Equal(dec(t, "10")) {
		t.Error("inputs were mutated")
	}
}
