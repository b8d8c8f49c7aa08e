package postgres

import (
	"context"
	"database/sql"
	"encoding/json"
	"time"

	"family-med-calendar/internal/domain/medications"
)

// MedicationsRepo guarda el listado completo como UNA fila JSONB:
//
//	CREATE TABLE medication_list (
//	    id          smallint PRIMARY KEY DEFAULT 1 CHECK (id = 1),
//	    definitions jsonb NOT NULL,
//	    updated_at  timestamptz NOT NULL
//	);
type MedicationsRepo struct {
	db *sql.DB
}

func NewMedicationsRepo(db *sql.DB) *MedicationsRepo {
	return &MedicationsRepo{db: db}
}

// defDoc es la forma serializada de una definición dentro del documento.
type defDoc struct {
	ID        string `json:"id"`
	Name      string `json:"name"`
	Dosage    string `json:"dosage"`
	TimeSlot  string `json:"timeSlot"`
	Frequency string `json:"frequencyRule"`
}

func (r *MedicationsRepo) LoadAll(ctx context.Context) ([]medications.Definition, error) {
	row := r.db.QueryRowContext(ctx, `
		SELECT definitions FROM medication_list WHERE id = 1
	`)

	var raw []byte
	if err := row.Scan(&raw); err != nil {
		if err == sql.ErrNoRows {
			// Primer arranque: todavía no hay documento.
			return []medications.Definition{}, nil
		}
		return nil, err
	}

	var docs []defDoc
	if err := json.Unmarshal(raw, &docs); err != nil {
		return nil, err
	}

	out := make([]medications.Definition, 0, len(docs))
	for _, d := range docs {
		out = append(out, medications.Definition{
			ID:        d.ID,
			Name:      d.Name,
			Dosage:    d.Dosage,
			TimeSlot:  d.TimeSlot,
			Frequency: d.Frequency,
		})
	}
	return out, nil
}

func (r *MedicationsRepo) ReplaceAll(ctx context.Context, defs []medications.Definition) error {
	docs := make([]defDoc, 0, len(defs))
	for _, d := range defs {
		docs = append(docs, defDoc{
			ID:        d.ID,
			Name:      d.Name,
			Dosage:    d.Dosage,
			TimeSlot:  d.TimeSlot,
			Frequency: d.Frequency,
		})
	}

	raw, err := json.Marshal(docs)
	if err != nil {
		return err
	}

	_, err = r.db.ExecContext(ctx, `
		INSERT INTO medication_list (id, definitions, updated_at)
		VALUES (1, $1, $2)
		ON CONFLICT (id) DO UPDATE
		SET definitions = EXCLUDED.definitions,
		    updated_at  = EXCLUDED.updated_at
	`, raw, time.Now().UTC())
	return err
}
