package memory

import (
	"context"
	"errors"
	"strings"
	"sync"

	"family-med-calendar/internal/domain/profiles"
)

type profilesRepo struct {
	mu       sync.RWMutex
	byDevice map[string]profiles.Profile
}

func NewProfilesRepo() profiles.Repository {
	return &profilesRepo{
		byDevice: make(map[string]profiles.Profile),
	}
}

func (r *profilesRepo) Get(ctx context.Context, deviceID string) (profiles.Profile, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	p, ok := r.byDevice[deviceID]
	if !ok {
		// Sin perfil guardado: nombre vacío, no es error.
		return profiles.Profile{DeviceID: deviceID}, nil
	}
	return p, nil
}

func (r *profilesRepo) Save(ctx context.Context, p profiles.Profile) error {
	if strings.TrimSpace(p.DeviceID) == "" {
		return errors.New("device id required")
	}

	r.mu.Lock()
	defer r.mu.Unlock()
	r.byDevice[p.DeviceID] = p
	return nil
}
