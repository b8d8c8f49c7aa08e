package postgres

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"strings"
	"sync"
	"time"

	"family-med-calendar/internal/domain/dayrecords"
)

// DayRecordsRepo persiste un documento por fecha, con cada campo en su
// propia columna JSONB para que el merge toque solo lo que vino:
//
//	CREATE TABLE day_records (
//	    date              text PRIMARY KEY,
//	    medication_status jsonb NOT NULL DEFAULT '{}',
//	    notes             jsonb NOT NULL DEFAULT '[]',
//	    blood_pressure    jsonb NOT NULL DEFAULT '[]',
//	    updated_at        timestamptz NOT NULL
//	);
//
// Postgres no empuja cambios por documento, así que Watch es un poll
// sobre updated_at (ver watchInterval).
type DayRecordsRepo struct {
	db *sql.DB

	// intervalo del poll de Watch; configurable para tests
	watchInterval time.Duration
}

func NewDayRecordsRepo(db *sql.DB) *DayRecordsRepo {
	return &DayRecordsRepo{
		db:            db,
		watchInterval: time.Second,
	}
}

func (r *DayRecordsRepo) Get(ctx context.Context, date string) (dayrecords.Record, error) {
	rec, _, err := r.getWithVersion(ctx, date)
	return rec, err
}

func (r *DayRecordsRepo) getWithVersion(ctx context.Context, date string) (dayrecords.Record, time.Time, error) {
	row := r.db.QueryRowContext(ctx, `
		SELECT medication_status, notes, blood_pressure, updated_at
		FROM day_records
		WHERE date = $1
	`, date)

	var rawStatus, rawNotes, rawBP []byte
	var updatedAt time.Time
	if err := row.Scan(&rawStatus, &rawNotes, &rawBP, &updatedAt); err != nil {
		if err == sql.ErrNoRows {
			return dayrecords.Empty(date), time.Time{}, nil
		}
		return dayrecords.Record{}, time.Time{}, err
	}

	rec := dayrecords.Record{Date: date}
	if err := json.Unmarshal(rawStatus, &rec.Status); err != nil {
		return dayrecords.Record{}, time.Time{}, fmt.Errorf("decode medication_status: %w", err)
	}
	if err := json.Unmarshal(rawNotes, &rec.Notes); err != nil {
		return dayrecords.Record{}, time.Time{}, fmt.Errorf("decode notes: %w", err)
	}
	if err := json.Unmarshal(rawBP, &rec.BloodPressure); err != nil {
		return dayrecords.Record{}, time.Time{}, fmt.Errorf("decode blood_pressure: %w", err)
	}

	return rec.Normalize(date), updatedAt, nil
}

func (r *DayRecordsRepo) Merge(ctx context.Context, date string, p dayrecords.Patch) error {
	if p.Empty() {
		return nil
	}

	cols := make([]string, 0, 3)
	vals := make([]any, 0, 3)

	if p.Status != nil {
		raw, err := json.Marshal(*p.Status)
		if err != nil {
			return err
		}
		cols = append(cols, "medication_status")
		vals = append(vals, raw)
	}
	if p.Notes != nil {
		raw, err := json.Marshal(*p.Notes)
		if err != nil {
			return err
		}
		cols = append(cols, "notes")
		vals = append(vals, raw)
	}
	if p.BloodPressure != nil {
		raw, err := json.Marshal(*p.BloodPressure)
		if err != nil {
			return err
		}
		cols = append(cols, "blood_pressure")
		vals = append(vals, raw)
	}

	// Upsert parcial: solo las columnas presentes en el patch.
	insertCols := []string{"date"}
	placeholders := []string{"$1"}
	args := []any{date}
	sets := make([]string, 0, len(cols)+1)

	for i, c := range cols {
		insertCols = append(insertCols, c)
		placeholders = append(placeholders, fmt.Sprintf("$%d", i+2))
		args = append(args, vals[i])
		sets = append(sets, fmt.Sprintf("%s = EXCLUDED.%s", c, c))
	}

	insertCols = append(insertCols, "updated_at")
	placeholders = append(placeholders, fmt.Sprintf("$%d", len(args)+1))
	args = append(args, time.Now().UTC())
	sets = append(sets, "updated_at = EXCLUDED.updated_at")

	query := fmt.Sprintf(`
		INSERT INTO day_records (%s)
		VALUES (%s)
		ON CONFLICT (date) DO UPDATE SET %s
	`,
		strings.Join(insertCols, ", "),
		strings.Join(placeholders, ", "),
		strings.Join(sets, ", "),
	)

	_, err := r.db.ExecContext(ctx, query, args...)
	return err
}

func (r *DayRecordsRepo) Watch(ctx context.Context, date string) (dayrecords.Subscription, error) {
	rec, version, err := r.getWithVersion(ctx, date)
	if err != nil {
		return nil, err
	}

	sub := &pollSub{
		ch:   make(chan dayrecords.Record, 16),
		stop: make(chan struct{}),
	}

	// Snapshot inicial garantizado antes de devolver la suscripción.
	sub.ch <- rec

	go r.poll(date, version, sub)
	return sub, nil
}

func (r *DayRecordsRepo) poll(date string, lastVersion time.Time, sub *pollSub) {
	defer close(sub.ch)

	ticker := time.NewTicker(r.watchInterval)
	defer ticker.Stop()

	for {
		select {
		case <-sub.stop:
			return
		case <-ticker.C:
		}

		ctx, cancel := context.WithTimeout(context.Background(), r.watchInterval)
		rec, version, err := r.getWithVersion(ctx, date)
		cancel()
		if err != nil {
			// transitorio: el próximo tick reintenta
			continue
		}
		if !version.After(lastVersion) {
			continue
		}
		lastVersion = version

		select {
		case sub.ch <- rec:
		case <-sub.stop:
			return
		}
	}
}

type pollSub struct {
	ch   chan dayrecords.Record
	stop chan struct{}
	once sync.Once
}

func (s *pollSub) Updates() <-chan dayrecords.Record {
	return s.ch
}

func (s *pollSub) Cancel() {
	s.once.Do(func() {
		close(s.stop)
	})
}
