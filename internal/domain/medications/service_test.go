package medications

import (
	"context"
	"errors"
	"testing"
	"time"
)

// fakeRepo simula el documento singleton en memoria y cuenta las
// reescrituras (el listado se persiste siempre entero).
type fakeRepo struct {
	defs     []Definition
	rewrites int
	failLoad error
}

func (r *fakeRepo) LoadAll(ctx context.Context) ([]Definition, error) {
	if r.failLoad != nil {
		return nil, r.failLoad
	}
	out := make([]Definition, len(r.defs))
	copy(out, r.defs)
	return out, nil
}

func (r *fakeRepo) ReplaceAll(ctx context.Context, defs []Definition) error {
	r.defs = make([]Definition, len(defs))
	copy(r.defs, defs)
	r.rewrites++
	return nil
}

func TestService_EnsureSeed(t *testing.T) {
	repo := &fakeRepo{}
	svc := NewService(repo)

	if err := svc.EnsureSeed(context.Background()); err != nil {
		t.Fatalf("seed: %v", err)
	}
	if len(repo.defs) == 0 {
		t.Fatal("seed no instaló el set default")
	}

	seeded := len(repo.defs)

	// Idempotente: un segundo arranque no reescribe nada.
	if err := svc.EnsureSeed(context.Background()); err != nil {
		t.Fatalf("re-seed: %v", err)
	}
	if repo.rewrites != 1 || len(repo.defs) != seeded {
		t.Fatalf("seed debería ser idempotente (rewrites=%d)", repo.rewrites)
	}
}

func TestService_CreateValidatesBeforeWriting(t *testing.T) {
	repo := &fakeRepo{}
	svc := NewService(repo)

	tests := []struct {
		name string
		in   CreateInput
	}{
		{"sin nombre", CreateInput{TimeSlot: SlotMorning}},
		{"sin slot", CreateInput{Name: "Enalapril"}},
		{"solo espacios", CreateInput{Name: "   ", TimeSlot: "  "}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := svc.Create(context.Background(), tt.in)
			if !errors.Is(err, ErrInvalidInput) {
				t.Fatalf("esperaba ErrInvalidInput, got %v", err)
			}
		})
	}

	// Rechazo ANTES de tocar el store: cero reescrituras.
	if repo.rewrites != 0 {
		t.Fatalf("la validación no debe mutar estado (rewrites=%d)", repo.rewrites)
	}
}

func TestService_CreateDefaultsFrequencyToDaily(t *testing.T) {
	repo := &fakeRepo{}
	svc := NewService(repo)

	d, err := svc.Create(context.Background(), CreateInput{
		Name:     "Enalapril",
		TimeSlot: SlotMorning,
	})
	if err != nil {
		t.Fatalf("create: %v", err)
	}
	if d.Frequency != FrequencyDaily {
		t.Fatalf("frecuencia default: got %q want %q", d.Frequency, FrequencyDaily)
	}
	if d.ID == "" {
		t.Fatal("create no asignó id")
	}
}

func TestService_UpdateAndDelete(t *testing.T) {
	repo := &fakeRepo{}
	svc := NewService(repo)

	d, err := svc.Create(context.Background(), CreateInput{
		Name:      "Hierro",
		TimeSlot:  SlotBeforeLunch,
		Frequency: FrequencyTueThuSat,
	})
	if err != nil {
		t.Fatalf("create: %v", err)
	}

	upd, err := svc.Update(context.Background(), d.ID, UpdateInput{
		Name:      "Hierro forte",
		Dosage:    "2 comprimidos",
		TimeSlot:  SlotBeforeLunch,
		Frequency: FrequencyTueThuSat,
	})
	if err != nil {
		t.Fatalf("update: %v", err)
	}
	if upd.Name != "Hierro forte" || upd.Dosage != "2 comprimidos" {
		t.Fatalf("update no aplicó los cambios: %+v", upd)
	}

	if _, err := svc.Update(context.Background(), "nope", UpdateInput{
		Name: "X", TimeSlot: SlotNight,
	}); !errors.Is(err, ErrNotFound) {
		t.Fatalf("update inexistente: esperaba ErrNotFound, got %v", err)
	}

	if err := svc.Delete(context.Background(), d.ID); err != nil {
		t.Fatalf("delete: %v", err)
	}
	if err := svc.Delete(context.Background(), d.ID); !errors.Is(err, ErrNotFound) {
		t.Fatalf("delete repetido: esperaba ErrNotFound, got %v", err)
	}

	defs, _ := svc.List(context.Background())
	if len(defs) != 0 {
		t.Fatalf("el listado debería quedar vacío, got %d", len(defs))
	}
}

func TestService_ScheduleUsesStoredList(t *testing.T) {
	repo := &fakeRepo{defs: []Definition{
		{ID: "t4", Name: "Levotiroxina (T4)", TimeSlot: SlotFasting, Frequency: FrequencyDaily},
		{ID: "p1", Name: "Paracetamol", TimeSlot: SlotMorning, Frequency: FrequencyAsNeeded},
	}}
	svc := NewService(repo)

	groups, asNeeded, err := svc.Schedule(context.Background(), time.Date(2024, time.March, 5, 0, 0, 0, 0, time.UTC))
	if err != nil {
		t.Fatalf("schedule: %v", err)
	}
	if len(groups) != 1 || groups[0].Slot != SlotFasting {
		t.Fatalf("esperaba solo Ayunas, got %v", groups)
	}
	if len(asNeeded) != 1 || asNeeded[0].ID != "p1" {
		t.Fatalf("esperaba p1 como referencia, got %v", asNeeded)
	}
}
