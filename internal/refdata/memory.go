// Package refdata holds the reference data the reconciliation engine reads:
// the bulk calculation-memory map, validated freight-rate table batches and
// the shipper/carrier registries. All of it lives in process memory; durable
// storage belongs to the host application.
package refdata

import (
	"sync"

	"github.com/shopspring/decimal"
)

// MemoryMap maps calculation-memory codes to expected freight totals.
// A bulk upload replaces the whole map at once; readers never observe a
// partially built map.
type MemoryMap struct {
	mu      sync.RWMutex
	entries map[string]decimal.Decimal
}

// NewMemoryMap returns an empty map.
func NewMemoryMap() *MemoryMap {
	return &MemoryMap{entries: map[string]decimal.Decimal{}}
}

// Replace swaps in a fresh set of entries, discarding the previous map
// entirely. The swap is atomic with respect to Lookup.
func (m *MemoryMap) Replace(entries map[string]decimal.Decimal) {
	if entries == nil {
		entries = map[string]decimal.Decimal{}
	}
	m.mu.Lock()
	m.entries = entries
	m.mu.Unlock()
}

// Lookup returns the expected value for a code. A missing code yields zero
// and false; absence is not an error in memory mode.
func (m *MemoryMap) Lookup(code string) (decimal.Decimal, bool) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	v, ok := m.entries[code]
	if !ok {
		return decimal.Zero, false
	}
	return v, true
}

// Len returns the number of loaded codes.
func (m *MemoryMap) Len() int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return len(m.entries)
}
