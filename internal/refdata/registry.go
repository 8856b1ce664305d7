package refdata

import (
	"sync"

	"github.com/google/uuid"
)

// Party is a registered shipper (embarcador) or carrier (transportadora).
// The registries only hold what the core needs to bind freight-table batches
// and documents to an owning pair.
type Party struct {
	ID        string `json:"id"`
	CNPJ      string `json:"cnpj"`
	Name      string `json:"name"`
	TradeName string `json:"trade_name"`
	CEP       string `json:"cep"`
	City      string `json:"city"`
	Status    string `json:"status"`
	DeployKey string `json:"deploy_key"`
}

// Registry is an ordered, in-memory party list.
type Registry struct {
	mu      sync.RWMutex
	parties []Party
}

// NewRegistry returns an empty registry.
func NewRegistry() *Registry {
	return &Registry{}
}

// Add registers a party, assigning an id when none was supplied, and
// returns the stored record.
func (r *Registry) Add(p Party) Party {
	if p.ID == "" {
		p.ID = uuid.NewString()
	}
	r.mu.Lock()
	r.parties = append(r.parties, p)
	r.mu.Unlock()
	return p
}

// Get returns the party with the given id.
func (r *Registry) Get(id string) (Party, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	for _, p := range r.parties {
		if p.ID == id {
			return p, true
		}
	}
	return Party{}, false
}

// List returns the parties in registration order.
func (r *Registry) List() []Party {
	r.mu.RLock()
	defer r.mu.RUnlock()
	out := make([]Party, len(r.parties))
	copy(out, r.parties)
	return out
}

// Remove deletes the party with the given id, reporting whether it existed.
func (r *Registry) Remove(id string) bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	for i, p := range r.parties {
		if p.ID == id {
			r.parties = append(r.parties[:i], r.parties[i+1:]...)
			return true
		}
	}
	return false
}
