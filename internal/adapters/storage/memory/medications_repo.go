package memory

import (
	"context"
	"errors"
	"sync"

	"family-med-calendar/internal/domain/medications"
)

var (
	ErrNotFound = errors.New("not found")
)

// medicationsRepo guarda el "documento" singleton de definiciones.
type medicationsRepo struct {
	mu   sync.RWMutex
	defs []medications.Definition
}

func NewMedicationsRepo() medications.Repository {
	return &medicationsRepo{}
}

func (r *medicationsRepo) LoadAll(ctx context.Context) ([]medications.Definition, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	out := make([]medications.Definition, len(r.defs))
	copy(out, r.defs)
	return out, nil
}

func (r *medicationsRepo) ReplaceAll(ctx context.Context, defs []medications.Definition) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	next := make([]medications.Definition, len(defs))
	copy(next, defs)
	r.defs = next
	return nil
}
