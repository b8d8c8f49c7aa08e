package dayrecords

import (
	"context"
	"errors"
	"strings"
	"time"

	"family-med-calendar/internal/platform/logger"
)

var (
	ErrInvalidInput = errors.New("invalid input")
	ErrWriteFailed  = errors.New("write failed")
)

type Service struct {
	repo Repository
	log  logger.Logger
	now  func() time.Time
}

func NewService(repo Repository, log logger.Logger) *Service {
	return &Service{
		repo: repo,
		log:  log,
		now:  time.Now,
	}
}

// Snapshot lee el registro del día. Un fallo de lectura degrada al
// registro vacío (se loguea, no corta): la UI sigue interactiva.
func (s *Service) Snapshot(ctx context.Context, date string) Record {
	rec, err := s.repo.Get(ctx, date)
	if err != nil {
		s.log.Warn("day record read failed, defaulting to empty", map[string]any{
			"date": date,
			"err":  err.Error(),
		})
		return Empty(date)
	}
	return rec.Normalize(date)
}

// SetStatus reemplaza el mapa completo de tomas del día (merge del
// campo medicationStatus; notas y presión quedan intactas).
func (s *Service) SetStatus(ctx context.Context, date string, status map[string]bool) error {
	if status == nil {
		status = map[string]bool{}
	}
	return s.merge(ctx, date, Patch{Status: &status})
}

// Toggle invierte el check de una medicación: lee el mapa actual, lo
// modifica y escribe el campo entero (optimista; el snapshot posterior
// del store es el autoritativo).
func (s *Service) Toggle(ctx context.Context, date, defID string) (Record, error) {
	defID = strings.TrimSpace(defID)
	if defID == "" {
		return Record{}, ErrInvalidInput
	}

	rec := s.Snapshot(ctx, date)
	rec.Status[defID] = !rec.Status[defID]

	if err := s.merge(ctx, date, Patch{Status: &rec.Status}); err != nil {
		return Record{}, err
	}
	return rec, nil
}

// AddNote agrega una nota al día (reescribe la secuencia completa).
func (s *Service) AddNote(ctx context.Context, date, text, author string) (Note, error) {
	text = strings.TrimSpace(text)
	if text == "" {
		return Note{}, ErrInvalidInput
	}

	n := Note{
		Text:      text,
		Author:    normalizeAuthor(author),
		Timestamp: s.now(),
	}

	rec := s.Snapshot(ctx, date)
	notes := append(rec.Notes, n)

	if err := s.merge(ctx, date, Patch{Notes: &notes}); err != nil {
		return Note{}, err
	}
	return n, nil
}

// AddReading agrega una toma de presión al día.
func (s *Service) AddReading(ctx context.Context, date, systolic, diastolic, author string) (Reading, error) {
	systolic = strings.TrimSpace(systolic)
	diastolic = strings.TrimSpace(diastolic)
	if systolic == "" || diastolic == "" {
		return Reading{}, ErrInvalidInput
	}

	rd := Reading{
		Systolic:  systolic,
		Diastolic: diastolic,
		Author:    normalizeAuthor(author),
		Timestamp: s.now(),
	}

	rec := s.Snapshot(ctx, date)
	readings := append(rec.BloodPressure, rd)

	if err := s.merge(ctx, date, Patch{BloodPressure: &readings}); err != nil {
		return Reading{}, err
	}
	return rd, nil
}

// Observe abre el stream de snapshots del día.
func (s *Service) Observe(ctx context.Context, date string) (Subscription, error) {
	sub, err := s.repo.Watch(ctx, date)
	if err != nil {
		s.log.Warn("day record watch failed", map[string]any{
			"date": date,
			"err":  err.Error(),
		})
		return nil, err
	}
	return sub, nil
}

// merge centraliza la política de errores de escritura: se loguea y se
// devuelve ErrWriteFailed (aviso no fatal, sin retry automático; el
// estado optimista local NO se revierte).
func (s *Service) merge(ctx context.Context, date string, p Patch) error {
	if err := s.repo.Merge(ctx, date, p); err != nil {
		s.log.Error("day record write failed", map[string]any{
			"date": date,
			"err":  err.Error(),
		})
		return ErrWriteFailed
	}
	return nil
}

func normalizeAuthor(author string) string {
	author = strings.TrimSpace(author)
	if author == "" {
		return "Anónimo"
	}
	return author
}
