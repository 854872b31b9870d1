package repository

import (
    "context"
    "database/sql"
    "strings"

    "github.com/ateliermori/commission-api/internal/model"
)

// MessageRepo provides append and query operations for the per-commission
// conversation log.  Messages are immutable once created except for the
// is_read flag.  Ordering is by created_at ascending with the
// auto-increment id as the tie break, so insertion order is preserved even
// when DATETIME resolution makes timestamps collide.
type MessageRepo struct {
    db *sql.DB
}

// NewMessageRepo returns a new MessageRepo bound to the given database.
func NewMessageRepo(db *sql.DB) *MessageRepo { return &MessageRepo{db: db} }

// Insert appends a message to a commission's log and populates the
// generated ID and timestamp on the provided record.
func (r *MessageRepo) Insert(ctx context.Context, m *model.Message) error {
    const q = `INSERT INTO messages (commission_id, sender_id, content) VALUES (?, ?, ?)`
    result, err := r.db.ExecContext(ctx, q, m.CommissionID, m.SenderID, m.Content)
    if err != nil {
        return err
    }
    id, err := result.LastInsertId()
    if err != nil {
        return err
    }
    m.ID = uint64(id)
    // Query back to pick up the database-assigned timestamp and defaults
    const sel = `SELECT id, commission_id, sender_id, content, is_read, created_at FROM messages WHERE id = ?`
    return r.db.QueryRowContext(ctx, sel, m.ID).Scan(
        &m.ID, &m.CommissionID, &m.SenderID, &m.Content, &m.IsRead, &m.CreatedAt,
    )
}

// ListByCommission returns the full ordered conversation for a
// commission.  This is the polling fallback and the source of truth; the
// realtime feed only improves freshness.  An empty slice is returned when
// no messages exist.
func (r *MessageRepo) ListByCommission(ctx context.Context, commissionID uint64) ([]model.Message, error) {
    const q = `SELECT id, commission_id, sender_id, content, is_read, created_at
               FROM messages
               WHERE commission_id = ?
               ORDER BY created_at ASC, id ASC`
    rows, err := r.db.QueryContext(ctx, q, commissionID)
    if err != nil {
        return nil, err
    }
    defer rows.Close()
    items := make([]model.Message, 0)
    for rows.Next() {
        var m model.Message
        if err := rows.Scan(&m.ID, &m.CommissionID, &m.SenderID, &m.Content, &m.IsRead, &m.CreatedAt); err != nil {
            return nil, err
        }
        items = append(items, m)
    }
    if err := rows.Err(); err != nil {
        return nil, err
    }
    return items, nil
}

// MarkRead flips is_read to true for the given messages, restricted to the
// commission and excluding anything the reader sent themselves.  The
// is_read guard makes the call idempotent: re-marking an already read
// message matches zero rows and is not an error.  Passing no IDs is a
// no-op.
func (r *MessageRepo) MarkRead(ctx context.Context, commissionID, readerID uint64, ids []uint64) error {
    if len(ids) == 0 {
        return nil
    }
    placeholders := make([]string, 0, len(ids))
    args := make([]interface{}, 0, len(ids)+2)
    args = append(args, commissionID, readerID)
    for _, id := range ids {
        placeholders = append(placeholders, "?")
        args = append(args, id)
    }
    q := `UPDATE messages SET is_read = 1
          WHERE commission_id = ? AND sender_id <> ? AND is_read = 0
            AND id IN (` + strings.Join(placeholders, ",") + `)`
    _, err := r.db.ExecContext(ctx, q, args...)
    return err
}

// UnreadCount returns how many messages in a commission are unread from
// the perspective of the given reader (messages sent by others that the
// reader has not yet viewed).
func (r *MessageRepo) UnreadCount(ctx context.Context, commissionID, readerID uint64) (int, error) {
    var n int
    err := r.db.QueryRowContext(ctx,
        `SELECT COUNT(*) FROM messages WHERE commission_id = ? AND sender_id <> ? AND is_read = 0`,
        commissionID, readerID).Scan(&n)
    return n, err
}
