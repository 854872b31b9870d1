package repository

import (
    "context"
    "database/sql"
    "errors"

    "github.com/ateliermori/commission-api/internal/model"
)

// MeasurementRepo persists per-user measurement profiles.  One row per
// user; saves overwrite the row in full (the partial-update merge happens
// in the handler before the repository is called).  A user who has never
// saved a profile reads back all zeros rather than an error.
type MeasurementRepo struct {
    db *sql.DB
}

// NewMeasurementRepo returns a new MeasurementRepo bound to the given database.
func NewMeasurementRepo(db *sql.DB) *MeasurementRepo { return &MeasurementRepo{db: db} }

// Get returns the user's measurement profile.  When no row exists the
// zero-valued profile is returned with a nil error; absence is the
// "never saved" state, not a failure.
func (r *MeasurementRepo) Get(ctx context.Context, userID uint64) (model.MeasurementProfile, error) {
    const q = `SELECT user_id, chest, waist, hips, length, inseam, shoulders, updated_at
               FROM measurement_profiles WHERE user_id = ?`
    var p model.MeasurementProfile
    err := r.db.QueryRowContext(ctx, q, userID).Scan(
        &p.UserID, &p.Chest, &p.Waist, &p.Hips, &p.Length, &p.Inseam, &p.Shoulders, &p.UpdatedAt,
    )
    if errors.Is(err, sql.ErrNoRows) {
        return model.MeasurementProfile{UserID: userID}, nil
    }
    if err != nil {
        return model.MeasurementProfile{}, err
    }
    return p, nil
}

// Save writes the full six-field profile for a user, inserting the row on
// first save and overwriting it afterwards.  No history is retained.
func (r *MeasurementRepo) Save(ctx context.Context, userID uint64, m model.Measurements) error {
    const q = `INSERT INTO measurement_profiles (user_id, chest, waist, hips, length, inseam, shoulders)
               VALUES (?, ?, ?, ?, ?, ?, ?)
               ON DUPLICATE KEY UPDATE
                   chest = VALUES(chest), waist = VALUES(waist), hips = VALUES(hips),
                   length = VALUES(length), inseam = VALUES(inseam), shoulders = VALUES(shoulders)`
    _, err := r.db.ExecContext(ctx, q, userID, m.Chest, m.Waist, m.Hips, m.Length, m.Inseam, m.Shoulders)
    return err
}

// Clear removes the user's saved measurements.  Used by the account data
// deletion flow; a subsequent Get returns the all-zero profile.
func (r *MeasurementRepo) Clear(ctx context.Context, userID uint64) error {
    _, err := r.db.ExecContext(ctx, `DELETE FROM measurement_profiles WHERE user_id = ?`, userID)
    return err
}
