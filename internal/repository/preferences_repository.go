package repository

import (
    "context"
    "database/sql"
    "errors"

    "github.com/ateliermori/commission-api/internal/model"
)

// PreferencesRepo persists the typed per-user notification preferences.
// One row per user; accounts without a row read back the documented
// defaults.
type PreferencesRepo struct {
    db *sql.DB
}

// NewPreferencesRepo returns a new PreferencesRepo bound to the given database.
func NewPreferencesRepo(db *sql.DB) *PreferencesRepo { return &PreferencesRepo{db: db} }

// Get returns the user's notification preferences, falling back to the
// defaults when nothing has been saved yet.
func (r *PreferencesRepo) Get(ctx context.Context, userID uint64) (model.NotificationPreferences, error) {
    const q = `SELECT user_id, email_on_status_change, email_on_message, newsletter, updated_at
               FROM notification_preferences WHERE user_id = ?`
    var p model.NotificationPreferences
    err := r.db.QueryRowContext(ctx, q, userID).Scan(
        &p.UserID, &p.EmailOnStatusChange, &p.EmailOnMessage, &p.Newsletter, &p.UpdatedAt,
    )
    if errors.Is(err, sql.ErrNoRows) {
        return model.DefaultPreferences(userID), nil
    }
    if err != nil {
        return model.NotificationPreferences{}, err
    }
    return p, nil
}

// Save writes the full preferences row, inserting on first save.
func (r *PreferencesRepo) Save(ctx context.Context, p model.NotificationPreferences) error {
    const q = `INSERT INTO notification_preferences (user_id, email_on_status_change, email_on_message, newsletter)
               VALUES (?, ?, ?, ?)
               ON DUPLICATE KEY UPDATE
                   email_on_status_change = VALUES(email_on_status_change),
                   email_on_message = VALUES(email_on_message),
                   newsletter = VALUES(newsletter)`
    _, err := r.db.ExecContext(ctx, q, p.UserID, p.EmailOnStatusChange, p.EmailOnMessage, p.Newsletter)
    return err
}

// Reset deletes the user's row so the defaults apply again.  Used by the
// account data deletion flow.
func (r *PreferencesRepo) Reset(ctx context.Context, userID uint64) error {
    _, err := r.db.ExecContext(ctx, `DELETE FROM notification_preferences WHERE user_id = ?`, userID)
    return err
}
