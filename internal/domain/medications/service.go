package medications

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/google/uuid"
)

var (
	ErrInvalidInput = errors.New("invalid input")
	ErrNotFound     = errors.New("not found")
)

type Service struct {
	repo Repository
}

func NewService(repo Repository) *Service {
	return &Service{repo: repo}
}

// EnsureSeed siembra el set default la primera vez (documento vacío o
// inexistente). Idempotente: si ya hay definiciones no toca nada.
func (s *Service) EnsureSeed(ctx context.Context) error {
	defs, err := s.repo.LoadAll(ctx)
	if err != nil {
		return err
	}
	if len(defs) > 0 {
		return nil
	}
	return s.repo.ReplaceAll(ctx, DefaultDefinitions())
}

func (s *Service) List(ctx context.Context) ([]Definition, error) {
	return s.repo.LoadAll(ctx)
}

type CreateInput struct {
	Name      string
	Dosage    string
	TimeSlot  string
	Frequency string
}

// Create valida ANTES de cualquier llamada remota: sin nombre o sin
// slot no hay mutación de estado.
func (s *Service) Create(ctx context.Context, in CreateInput) (Definition, error) {
	name := strings.TrimSpace(in.Name)
	slot := strings.TrimSpace(in.TimeSlot)
	if name == "" || slot == "" {
		return Definition{}, ErrInvalidInput
	}

	freq := strings.TrimSpace(in.Frequency)
	if freq == "" {
		freq = FrequencyDaily
	}

	defs, err := s.repo.LoadAll(ctx)
	if err != nil {
		return Definition{}, err
	}

	d := Definition{
		ID:        uuid.NewString(),
		Name:      name,
		Dosage:    strings.TrimSpace(in.Dosage),
		TimeSlot:  slot,
		Frequency: freq,
	}

	defs = append(defs, d)
	if err := s.repo.ReplaceAll(ctx, defs); err != nil {
		return Definition{}, err
	}
	return d, nil
}

type UpdateInput struct {
	Name      string
	Dosage    string
	TimeSlot  string
	Frequency string
}

func (s *Service) Update(ctx context.Context, id string, in UpdateInput) (Definition, error) {
	id = strings.TrimSpace(id)
	name := strings.TrimSpace(in.Name)
	slot := strings.TrimSpace(in.TimeSlot)
	if id == "" || name == "" || slot == "" {
		return Definition{}, ErrInvalidInput
	}

	freq := strings.TrimSpace(in.Frequency)
	if freq == "" {
		freq = FrequencyDaily
	}

	defs, err := s.repo.LoadAll(ctx)
	if err != nil {
		return Definition{}, err
	}

	for i := range defs {
		if defs[i].ID != id {
			continue
		}
		defs[i].Name = name
		defs[i].Dosage = strings.TrimSpace(in.Dosage)
		defs[i].TimeSlot = slot
		defs[i].Frequency = freq

		if err := s.repo.ReplaceAll(ctx, defs); err != nil {
			return Definition{}, err
		}
		return defs[i], nil
	}

	return Definition{}, ErrNotFound
}

func (s *Service) Delete(ctx context.Context, id string) error {
	id = strings.TrimSpace(id)
	if id == "" {
		return ErrInvalidInput
	}

	defs, err := s.repo.LoadAll(ctx)
	if err != nil {
		return err
	}

	out := make([]Definition, 0, len(defs))
	found := false
	for _, d := range defs {
		if d.ID == id {
			found = true
			continue
		}
		out = append(out, d)
	}
	if !found {
		return ErrNotFound
	}

	return s.repo.ReplaceAll(ctx, out)
}

// Schedule resuelve el checklist para una fecha usando el listado
// persistido. Devuelve además las entradas "según necesidad".
func (s *Service) Schedule(ctx context.Context, date time.Time) ([]SlotGroup, []Definition, error) {
	defs, err := s.repo.LoadAll(ctx)
	if err != nil {
		return nil, nil, err
	}
	return Resolve(defs, date), AsNeeded(defs), nil
}
