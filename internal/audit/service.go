// Package audit is the application core: it owns the record set, the
// reference data and the override workflow, and exposes the operations the
// HTTP layer calls. All state is held in memory under a single mutex.
package audit

import (
	"errors"
	"fmt"
	"io"
	"log/slog"
	"sync"

	"github.com/google/uuid"

	"github.com/tmsaudit/freteaudit/internal/abono"
	"github.com/tmsaudit/freteaudit/internal/extract"
	"github.com/tmsaudit/freteaudit/internal/reconcile"
	"github.com/tmsaudit/freteaudit/internal/refdata"
)

var (
	// ErrRecordNotFound is returned when no record matches the given ID.
	ErrRecordNotFound = errors.New("audit: record not found")

	// ErrBatchNotFound is returned when no freight-table batch matches the
	// given ID or prefix.
	ErrBatchNotFound = errors.New("audit: freight table not found")
)

// Service holds the working state of one audit session.
type Service struct {
	mu       sync.Mutex
	records  []*reconcile.Record
	byID     map[uuid.UUID]*reconcile.Record
	memory   *refdata.MemoryMap
	tables   *refdata.BatchSet
	shippers *refdata.Registry
	carriers *refdata.Registry
	workflow *abono.Workflow
	log      *slog.Logger
}

// NewService returns an empty session. Evidence files produced by the
// override workflow go through exporter.
func NewService(exporter abono.Exporter, log *slog.Logger) *Service {
	if log == nil {
		log = slog.Default()
	}
	return &Service{
		byID:     map[uuid.UUID]*reconcile.Record{},
		memory:   refdata.NewMemoryMap(),
		tables:   refdata.NewBatchSet(),
		shippers: refdata.NewRegistry(),
		carriers: refdata.NewRegistry(),
		workflow: abono.NewWorkflow(exporter),
		log:      log,
	}
}

// IngestDocuments extracts each source and reconciles it against the
// calculation memory. Degraded extractions still produce records; their
// warnings are logged and returned.
func (s *Service) IngestDocuments(sources []extract.Source) []reconcile.Record {
	return s.ingest(extract.IngestSources(sources))
}

// IngestArchive extracts every XML member of a ZIP archive and reconciles
// the results against the calculation memory. An unreadable archive yields
// an error and no records.
func (s *Service) IngestArchive(r io.ReaderAt, size int64) ([]reconcile.Record, error) {
	results, err := extract.IngestArchive(r, size)
	if err != nil {
		return nil, err
	}
	return s.ingest(results), nil
}

func (s *Service) ingest(results []extract.Result) []reconcile.Record {
	s.mu.Lock()
	defer s.mu.Unlock()

	out := make([]reconcile.Record, 0, len(results))
	for _, res := range results {
		if res.Degraded() {
			s.log.Warn("degraded extraction",
				"source", res.Doc.SourceName,
				"warnings", res.Warnings)
		}
		rec := reconcile.Reconcile(res.Doc, reconcile.ResolveFromMemory(res.Doc, s.memory))
		ptr := &rec
		s.records = append(s.records, ptr)
		s.byID[rec.ID] = ptr
		out = append(out, rec)
	}
	return out
}

// ImportMemory replaces the whole calculation memory with the contents of
// an XLSX upload and returns the entry count.
func (s *Service) ImportMemory(r io.Reader) (int, error) {
	entries, err := refdata.ImportMemory(r)
	if err != nil {
		return 0, err
	}
	s.memory.Replace(entries)
	s.log.Info("calculation memory replaced", "entries", len(entries))
	return len(entries), nil
}

// MemoryCount reports how many codes the calculation memory holds.
func (s *Service) MemoryCount() int {
	return s.memory.Len()
}

// ImportTable validates an XLSX freight-rate upload into a new batch.
// Batches with dropped rows still import, flagged Com Erros.
func (s *Service) ImportTable(r io.Reader, fileName string) (*refdata.TableBatch, error) {
	batch, err := refdata.ImportTable(r, fileName)
	if err != nil {
		return nil, err
	}
	s.tables.Add(batch)
	s.log.Info("freight table imported",
		"batch", batch.ID,
		"file", fileName,
		"status", batch.Status,
		"rows", len(batch.Rows),
		"dropped", len(batch.Dropped))
	return batch, nil
}

// Batches lists the imported freight-table batches, newest first.
func (s *Service) Batches() []*refdata.TableBatch {
	return s.tables.List()
}

// ReconcileWithTable re-classifies every record in place against the given
// freight-table batch. Expected values are only overwritten when the batch
// actually resolved one; party mismatches and missing rows keep the prior
// expected value but still take the table-mode status and observation.
func (s *Service) ReconcileWithTable(batchID string) (int, error) {
	batch, ok := s.tables.FindByIDPrefix(batchID)
	if !ok {
		return 0, fmt.Errorf("%w: %q", ErrBatchNotFound, batchID)
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	for _, rec := range s.records {
		ref := reconcile.ResolveFromTable(rec.Doc, rec.Doc.ShipperID, rec.Doc.CarrierID, batch)
		status, obs := reconcile.Classify(rec.Doc, ref)
		rec.Status = status
		rec.Observation = obs
		if ref.Failure == reconcile.FailureNone {
			rec.Expected = ref.Amount
		}
	}
	s.log.Info("table reconciliation pass", "batch", batch.ID, "records", len(s.records))
	return len(s.records), nil
}

// Records returns a snapshot of the session's records in ingestion order.
// With divergentOnly set, only unresolved divergences are returned.
func (s *Service) Records(divergentOnly bool) []reconcile.Record {
	s.mu.Lock()
	defer s.mu.Unlock()

	out := make([]reconcile.Record, 0, len(s.records))
	for _, rec := range s.records {
		if divergentOnly && !rec.Status.Divergent() {
			continue
		}
		out = append(out, *rec)
	}
	return out
}

// SelectedRecords returns a snapshot of the records marked for export.
func (s *Service) SelectedRecords() []reconcile.Record {
	s.mu.Lock()
	defer s.mu.Unlock()

	out := make([]reconcile.Record, 0, len(s.records))
	for _, rec := range s.records {
		if rec.Selected {
			out = append(out, *rec)
		}
	}
	return out
}

// SetSelected marks or unmarks one record for export.
func (s *Service) SetSelected(id uuid.UUID, selected bool) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	rec, ok := s.byID[id]
	if !ok {
		return fmt.Errorf("%w: %s", ErrRecordNotFound, id)
	}
	rec.Selected = selected
	return nil
}

// SelectAll marks or unmarks every record for export.
func (s *Service) SelectAll(selected bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, rec := range s.records {
		rec.Selected = selected
	}
}

// SetParties binds a record to a registered shipper and carrier for
// table-mode reconciliation.
func (s *Service) SetParties(id uuid.UUID, shipperID, carrierID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	rec, ok := s.byID[id]
	if !ok {
		return fmt.Errorf("%w: %s", ErrRecordNotFound, id)
	}
	rec.Doc.ShipperID = shipperID
	rec.Doc.CarrierID = carrierID
	return nil
}

// Approve resolves a divergent record as Aprovado with a justification and
// writes its evidence file.
func (s *Service) Approve(id uuid.UUID, justification string) (reconcile.Record, error) {
	return s.decide(id, justification, s.workflow.Approve)
}

// Reject resolves a divergent record as Reprovado with a justification and
// writes its evidence file.
func (s *Service) Reject(id uuid.UUID, justification string) (reconcile.Record, error) {
	return s.decide(id, justification, s.workflow.Reject)
}

func (s *Service) decide(id uuid.UUID, justification string, fn func(*reconcile.Record, string) error) (reconcile.Record, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	rec, ok := s.byID[id]
	if !ok {
		return reconcile.Record{}, fmt.Errorf("%w: %s", ErrRecordNotFound, id)
	}
	if err := fn(rec, justification); err != nil {
		return reconcile.Record{}, err
	}
	s.log.Info("override decided", "record", id, "status", rec.Status)
	return *rec, nil
}

// Clear drops all records. Reference data survives; memory and tables stay
// loaded across audit rounds.
func (s *Service) Clear() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.records = nil
	s.byID = map[uuid.UUID]*reconcile.Record{}
}

// Shippers returns the shipper registry.
func (s *Service) Shippers() *refdata.Registry {
	return s.shippers
}

// Carriers returns the carrier registry.
func (s *Service) Carriers() *refdata.Registry {
	return s.carriers
}
