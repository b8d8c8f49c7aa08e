package memory

import (
	"context"
	"sync"

	"family-med-calendar/internal/domain/dayrecords"
)

// dayRecordsRepo es el store de documentos diarios en memoria, con un
// hub de suscriptores por fecha para el Watch (dev y tests).
type dayRecordsRepo struct {
	mu     sync.RWMutex
	byDate map[string]dayrecords.Record
	subs   map[string]map[int]*daySub
	nextID int
}

func NewDayRecordsRepo() dayrecords.Repository {
	return &dayRecordsRepo{
		byDate: make(map[string]dayrecords.Record),
		subs:   make(map[string]map[int]*daySub),
	}
}

func (r *dayRecordsRepo) Get(ctx context.Context, date string) (dayrecords.Record, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.snapshotLocked(date), nil
}

func (r *dayRecordsRepo) Merge(ctx context.Context, date string, p dayrecords.Patch) error {
	if p.Empty() {
		return nil
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	rec, ok := r.byDate[date]
	if !ok {
		rec = dayrecords.Empty(date)
	}
	rec.Date = date

	// Solo los campos presentes; el resto queda como está.
	if p.Status != nil {
		rec.Status = cloneStatus(*p.Status)
	}
	if p.Notes != nil {
		rec.Notes = cloneNotes(*p.Notes)
	}
	if p.BloodPressure != nil {
		rec.BloodPressure = cloneReadings(*p.BloodPressure)
	}

	r.byDate[date] = rec

	// Notificar snapshot completo a los suscriptores de esa fecha
	// (incluido quien escribió: el push del store es el autoritativo).
	for _, sub := range r.subs[date] {
		sub.push(r.snapshotLocked(date))
	}
	return nil
}

func (r *dayRecordsRepo) Watch(ctx context.Context, date string) (dayrecords.Subscription, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	r.nextID++
	id := r.nextID

	sub := &daySub{
		ch: make(chan dayrecords.Record, 16),
	}
	sub.unregister = func() {
		r.mu.Lock()
		defer r.mu.Unlock()
		delete(r.subs[date], id)
	}

	if r.subs[date] == nil {
		r.subs[date] = make(map[int]*daySub)
	}
	r.subs[date][id] = sub

	// Snapshot inicial: vacío si no hay documento.
	sub.push(r.snapshotLocked(date))

	return sub, nil
}

// snapshotLocked clona el registro para que los consumidores no
// compartan los maps/slices internos. Llamar con r.mu tomado.
func (r *dayRecordsRepo) snapshotLocked(date string) dayrecords.Record {
	rec, ok := r.byDate[date]
	if !ok {
		return dayrecords.Empty(date)
	}

	out := rec
	out.Status = cloneStatus(rec.Status)
	out.Notes = cloneNotes(rec.Notes)
	out.BloodPressure = cloneReadings(rec.BloodPressure)
	return out.Normalize(date)
}

type daySub struct {
	mu         sync.Mutex
	ch         chan dayrecords.Record
	cancelled  bool
	unregister func()
}

func (s *daySub) Updates() <-chan dayrecords.Record {
	return s.ch
}

// push entrega sin bloquear: si el consumidor va atrasado se descarta
// el snapshot más viejo del buffer, el último siempre entra.
func (s *daySub) push(rec dayrecords.Record) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.cancelled {
		return
	}

	select {
	case s.ch <- rec:
	default:
		select {
		case <-s.ch:
		default:
		}
		select {
		case s.ch <- rec:
		default:
		}
	}
}

// Cancel libera la suscripción exactamente una vez; después de esto no
// se entrega nada más y Updates queda cerrado.
func (s *daySub) Cancel() {
	s.mu.Lock()
	if s.cancelled {
		s.mu.Unlock()
		return
	}
	s.cancelled = true
	s.mu.Unlock()

	s.unregister()

	s.mu.Lock()
	close(s.ch)
	s.mu.Unlock()
}

func cloneStatus(m map[string]bool) map[string]bool {
	out := make(map[string]bool, len(m))
	for k, v := range m {
		out[k] = v
	}
	return out
}

func cloneNotes(ns []dayrecords.Note) []dayrecords.Note {
	out := make([]dayrecords.Note, len(ns))
	copy(out, ns)
	return out
}

func cloneReadings(rs []dayrecords.Reading) []dayrecords.Reading {
	out := make([]dayrecords.Reading, len(rs))
	copy(out, rs)
	return out
}
