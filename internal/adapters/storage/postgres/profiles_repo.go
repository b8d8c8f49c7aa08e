package postgres

import (
	"context"
	"database/sql"
	"time"

	"family-med-calendar/internal/domain/profiles"
)

// ProfilesRepo guarda el nombre para mostrar por dispositivo:
//
//	CREATE TABLE device_profiles (
//	    device_id    text PRIMARY KEY,
//	    display_name text NOT NULL,
//	    updated_at   timestamptz NOT NULL
//	);
type ProfilesRepo struct {
	db *sql.DB
}

func NewProfilesRepo(db *sql.DB) *ProfilesRepo {
	return &ProfilesRepo{db: db}
}

func (r *ProfilesRepo) Get(ctx context.Context, deviceID string) (profiles.Profile, error) {
	row := r.db.QueryRowContext(ctx, `
		SELECT display_name FROM device_profiles WHERE device_id = $1
	`, deviceID)

	var name string
	if err := row.Scan(&name); err != nil {
		if err == sql.ErrNoRows {
			return profiles.Profile{DeviceID: deviceID}, nil
		}
		return profiles.Profile{}, err
	}

	return profiles.Profile{DeviceID: deviceID, DisplayName: name}, nil
}

func (r *ProfilesRepo) Save(ctx context.Context, p profiles.Profile) error {
	_, err := r.db.ExecContext(ctx, `
		INSERT INTO device_profiles (device_id, display_name, updated_at)
		VALUES ($1, $2, $3)
		ON CONFLICT (device_id) DO UPDATE
		SET display_name = EXCLUDED.display_name,
		    updated_at   = EXCLUDED.updated_at
	`, p.DeviceID, p.DisplayName, time.Now().UTC())
	return err
}
