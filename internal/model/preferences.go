package model

import "time"

// NotificationPreferences is a typed per-user settings record with named,
// enumerated options and explicit defaults.  It replaces the loosely
// shaped JSON settings blob the product started with: every option is a
// column, so unknown keys cannot accumulate.
//
// Fields:
//  UserID              – owner of the preferences (primary key).
//  EmailOnStatusChange – email the client when the admin moves a commission.
//  EmailOnMessage      – email the recipient when a new message arrives.
//  Newsletter          – opt-in to the shop newsletter.
//  UpdatedAt           – when the preferences were last saved.
type NotificationPreferences struct {
    UserID              uint64    `json:"user_id"`
    EmailOnStatusChange bool      `json:"email_on_status_change"`
    EmailOnMessage      bool      `json:"email_on_message"`
    Newsletter          bool      `json:"newsletter"`
    UpdatedAt           time.Time `json:"updated_at"`
}

// DefaultPreferences returns the preferences applied to an account that
// has never saved any: transactional mail on, marketing mail off.
func DefaultPreferences(userID uint64) NotificationPreferences {
    return NotificationPreferences{
        UserID:              userID,
        EmailOnStatusChange: true,
        EmailOnMessage:      true,
        Newsletter:          false,
    }
}
