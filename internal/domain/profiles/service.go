package profiles

import (
	"context"
	"errors"
	"strings"
)

var (
	ErrInvalidInput = errors.New("invalid input")
)

type Service struct {
	repo Repository
}

func NewService(repo Repository) *Service {
	return &Service{repo: repo}
}

func (s *Service) Get(ctx context.Context, deviceID string) (Profile, error) {
	deviceID = strings.TrimSpace(deviceID)
	if deviceID == "" {
		return Profile{}, ErrInvalidInput
	}
	return s.repo.Get(ctx, deviceID)
}

// DisplayName resuelve el nombre de autoría de un dispositivo; si no
// hay perfil (o falla la lectura) devuelve vacío y el caller decide el
// fallback.
func (s *Service) DisplayName(ctx context.Context, deviceID string) string {
	p, err := s.Get(ctx, deviceID)
	if err != nil {
		return ""
	}
	return strings.TrimSpace(p.DisplayName)
}

func (s *Service) Save(ctx context.Context, deviceID, displayName string) (Profile, error) {
	deviceID = strings.TrimSpace(deviceID)
	displayName = strings.TrimSpace(displayName)
	if deviceID == "" || displayName == "" {
		return Profile{}, ErrInvalidInput
	}

	p := Profile{DeviceID: deviceID, DisplayName: displayName}
	if err := s.repo.Save(ctx, p); err != nil {
		return Profile{}, err
	}
	return p, nil
}
