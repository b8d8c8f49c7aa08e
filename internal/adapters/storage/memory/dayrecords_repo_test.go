package memory

import (
	"context"
	"testing"
	"time"

	"family-med-calendar/internal/domain/dayrecords"
)

func recv(t *testing.T, ch <-chan dayrecords.Record) (dayrecords.Record, bool) {
	t.Helper()
	select {
	case rec, ok := <-ch:
		return rec, ok
	case <-time.After(2 * time.Second):
		t.Fatal("timeout esperando snapshot")
	}
	return dayrecords.Record{}, false
}

func TestDayRecordsRepo_WatchDeliversInitialSnapshot(t *testing.T) {
	repo := NewDayRecordsRepo()
	ctx := context.Background()

	sub, err := repo.Watch(ctx, "2024-03-05")
	if err != nil {
		t.Fatalf("watch: %v", err)
	}
	defer sub.Cancel()

	rec, ok := recv(t, sub.Updates())
	if !ok {
		t.Fatal("stream cerrado antes del snapshot inicial")
	}
	if rec.Date != "2024-03-05" || len(rec.Status) != 0 {
		t.Fatalf("snapshot inicial debería ser el default vacío: %+v", rec)
	}
}

func TestDayRecordsRepo_MergeNotifiesSubscribers(t *testing.T) {
	repo := NewDayRecordsRepo()
	ctx := context.Background()

	sub, err := repo.Watch(ctx, "2024-03-05")
	if err != nil {
		t.Fatalf("watch: %v", err)
	}
	defer sub.Cancel()
	recv(t, sub.Updates()) // inicial

	st := map[string]bool{"t4": true}
	if err := repo.Merge(ctx, "2024-03-05", dayrecords.Patch{Status: &st}); err != nil {
		t.Fatalf("merge: %v", err)
	}

	rec, _ := recv(t, sub.Updates())
	if !rec.Status["t4"] {
		t.Fatalf("el merge debería empujar el snapshot nuevo: %v", rec.Status)
	}
}

func TestDayRecordsRepo_WatchIsPerDate(t *testing.T) {
	repo := NewDayRecordsRepo()
	ctx := context.Background()

	sub, err := repo.Watch(ctx, "2024-03-06")
	if err != nil {
		t.Fatalf("watch: %v", err)
	}
	defer sub.Cancel()
	recv(t, sub.Updates()) // inicial

	// Escritura en OTRA fecha: este stream no debe enterarse.
	st := map[string]bool{"t4": true}
	if err := repo.Merge(ctx, "2024-03-05", dayrecords.Patch{Status: &st}); err != nil {
		t.Fatalf("merge: %v", err)
	}

	select {
	case rec := <-sub.Updates():
		t.Fatalf("snapshot de otra fecha entregado: %+v", rec)
	case <-time.After(100 * time.Millisecond):
	}
}

func TestDayRecordsRepo_CancelClosesStream(t *testing.T) {
	repo := NewDayRecordsRepo()
	ctx := context.Background()

	sub, err := repo.Watch(ctx, "2024-03-05")
	if err != nil {
		t.Fatalf("watch: %v", err)
	}
	recv(t, sub.Updates()) // inicial

	sub.Cancel()
	sub.Cancel() // idempotente

	if _, ok := recv(t, sub.Updates()); ok {
		t.Fatal("Updates debería quedar cerrado tras Cancel")
	}

	// Un merge posterior no debe paniquear ni entregar nada.
	st := map[string]bool{"t4": true}
	if err := repo.Merge(ctx, "2024-03-05", dayrecords.Patch{Status: &st}); err != nil {
		t.Fatalf("merge tras cancel: %v", err)
	}
}

// El consumidor lento no frena la escritura: el buffer descarta lo viejo
// y el último snapshot siempre queda disponible.
func TestDayRecordsRepo_SlowConsumerKeepsLatest(t *testing.T) {
	repo := NewDayRecordsRepo()
	ctx := context.Background()

	sub, err := repo.Watch(ctx, "2024-03-05")
	if err != nil {
		t.Fatalf("watch: %v", err)
	}
	defer sub.Cancel()

	// Muchas más escrituras que capacidad de buffer, sin consumir.
	for i := 0; i < 100; i++ {
		st := map[string]bool{"t4": i%2 == 0}
		if err := repo.Merge(ctx, "2024-03-05", dayrecords.Patch{Status: &st}); err != nil {
			t.Fatalf("merge %d: %v", i, err)
		}
	}

	// Drenar: el último snapshot del buffer refleja la última escritura.
	var last dayrecords.Record
	for {
		select {
		case rec := <-sub.Updates():
			last = rec
			continue
		case <-time.After(100 * time.Millisecond):
		}
		break
	}
	if last.Status["t4"] { // i=99 => false
		t.Fatalf("el último snapshot no refleja la última escritura: %v", last.Status)
	}
}

// Un patch sin campos es un no-op: no crea documento ni despierta a los
// suscriptores.
func TestDayRecordsRepo_EmptyPatchIsNoOp(t *testing.T) {
	repo := NewDayRecordsRepo()
	ctx := context.Background()

	sub, err := repo.Watch(ctx, "2024-03-05")
	if err != nil {
		t.Fatalf("watch: %v", err)
	}
	defer sub.Cancel()
	recv(t, sub.Updates()) // inicial

	if err := repo.Merge(ctx, "2024-03-05", dayrecords.Patch{}); err != nil {
		t.Fatalf("merge vacío: %v", err)
	}

	select {
	case rec := <-sub.Updates():
		t.Fatalf("el patch vacío no debe notificar: %+v", rec)
	case <-time.After(100 * time.Millisecond):
	}

	impl := repo.(*dayRecordsRepo)
	impl.mu.RLock()
	_, created := impl.byDate["2024-03-05"]
	impl.mu.RUnlock()
	if created {
		t.Fatal("el patch vacío no debe crear documento")
	}
}

func TestDayRecordsRepo_SnapshotsAreIsolated(t *testing.T) {
	repo := NewDayRecordsRepo()
	ctx := context.Background()

	st := map[string]bool{"t4": true}
	if err := repo.Merge(ctx, "2024-03-05", dayrecords.Patch{Status: &st}); err != nil {
		t.Fatalf("merge: %v", err)
	}

	rec, err := repo.Get(ctx, "2024-03-05")
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	rec.Status["hierro"] = true // mutación del consumidor

	again, _ := repo.Get(ctx, "2024-03-05")
	if again.Status["hierro"] {
		t.Fatal("la mutación del snapshot no debe tocar el estado del store")
	}
}
