package refdata

import (
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// BatchStatus classifies an imported freight-rate table.
type BatchStatus string

const (
	// BatchValidated means every required column of every row was filled.
	BatchValidated BatchStatus = "Validado"
	// BatchWithErrors means at least one row was dropped during import.
	BatchWithErrors BatchStatus = "Com Erros"
)

// RateRow is one validated freight-rate table row. Rows are keyed by
// (Code, Origin, Destination) during reconciliation.
type RateRow struct {
	ShipperID     string          `json:"shipper_id"`
	CarrierID     string          `json:"carrier_id"`
	Code          string          `json:"code"`
	Reference     string          `json:"reference"`
	Origin        string          `json:"origin"`
	Destination   string          `json:"destination"`
	Tax           decimal.Decimal `json:"tax"`
	Tolls         decimal.Decimal `json:"tolls"`
	Insurance     decimal.Decimal `json:"insurance"`
	WeightFreight decimal.Decimal `json:"weight_freight"`
	AllIn         decimal.Decimal `json:"all_in"`
}

// RowError records one dropped import row and why it was rejected.
type RowError struct {
	Line   int    `json:"line"`
	Reason string `json:"reason"`
}

// TableBatch is a set of freight-rate rows imported together. Batches are
// immutable once created and owned by a single shipper/carrier pair.
type TableBatch struct {
	ID         uuid.UUID   `json:"id"`
	FileName   string      `json:"file_name"`
	ShipperID  string      `json:"shipper_id"`
	CarrierID  string      `json:"carrier_id"`
	Status     BatchStatus `json:"status"`
	Rows       []RateRow   `json:"rows"`
	Dropped    []RowError  `json:"dropped,omitempty"`
	ImportedAt time.Time   `json:"imported_at"`
}

// FindRow locates the row whose code, origin and destination exactly equal
// the given values.
func (b *TableBatch) FindRow(code, origin, destination string) (RateRow, bool) {
	for _, row := range b.Rows {
		if row.Code == code && row.Origin == origin && row.Destination == destination {
			return row, true
		}
	}
	return RateRow{}, false
}

// BatchSet is the collection of imported table batches, newest last.
type BatchSet struct {
	mu      sync.RWMutex
	batches []*TableBatch
}

// NewBatchSet returns an empty set.
func NewBatchSet() *BatchSet {
	return &BatchSet{}
}

// Add appends a batch to the set.
func (s *BatchSet) Add(b *TableBatch) {
	s.mu.Lock()
	s.batches = append(s.batches, b)
	s.mu.Unlock()
}

// List returns the batches in insertion order.
func (s *BatchSet) List() []*TableBatch {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]*TableBatch, len(s.batches))
	copy(out, s.batches)
	return out
}

// FindByIDPrefix returns the first batch whose id starts with the given
// prefix. Callers identify batches by truncated ids in the interactive flow.
func (s *BatchSet) FindByIDPrefix(prefix string) (*TableBatch, bool) {
	if prefix == "" {
		return nil, false
	}
	s.mu.RLock()
	defer s.mu.RUnlock()
	for _, b := range s.batches {
		if len(b.ID.String()) >= len(prefix) && b.ID.String()[:len(prefix)] == prefix {
			return b, true
		}
	}
	return nil, false
}
