package repository

import (
    "context"
    "database/sql"

    "github.com/ateliermori/commission-api/internal/model"
)

// CommissionRepo provides CRUD operations and status transitions for
// commission requests.  The six measurement columns hold the snapshot
// copied from the submitting request; they are written on create and on
// content updates, never touched by status transitions.  All timestamp
// fields are assumed to be stored in UTC.
type CommissionRepo struct {
    db *sql.DB
}

// NewCommissionRepo returns a new CommissionRepo bound to the given database.
func NewCommissionRepo(db *sql.DB) *CommissionRepo { return &CommissionRepo{db: db} }

const commissionColumns = `id, owner_id, garment_type, chest, waist, hips, length, inseam, shoulders,
                           budget, timeline, details, status, created_at, updated_at`

func scanCommission(row interface{ Scan(...any) error }) (model.Commission, error) {
    var c model.Commission
    err := row.Scan(
        &c.ID, &c.OwnerID, &c.GarmentType,
        &c.Measurements.Chest, &c.Measurements.Waist, &c.Measurements.Hips,
        &c.Measurements.Length, &c.Measurements.Inseam, &c.Measurements.Shoulders,
        &c.Budget, &c.Timeline, &c.Details, &c.Status, &c.CreatedAt, &c.UpdatedAt,
    )
    return c, err
}

// Create inserts a new commission.  Status is always written as Pending
// here, regardless of anything the caller put in the struct; the lifecycle
// starts at Pending by construction.  The generated ID and the database
// timestamps are populated on the provided record.
func (r *CommissionRepo) Create(ctx context.Context, c *model.Commission) error {
    const q = `INSERT INTO commissions
               (owner_id, garment_type, chest, waist, hips, length, inseam, shoulders, budget, timeline, details, status)
               VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`
    result, err := r.db.ExecContext(ctx, q,
        c.OwnerID, c.GarmentType,
        c.Measurements.Chest, c.Measurements.Waist, c.Measurements.Hips,
        c.Measurements.Length, c.Measurements.Inseam, c.Measurements.Shoulders,
        c.Budget, c.Timeline, c.Details, model.StatusPending,
    )
    if err != nil {
        return err
    }
    id, err := result.LastInsertId()
    if err != nil {
        return err
    }
    // Query back the full row to populate timestamps and defaults
    const sel = `SELECT ` + commissionColumns + ` FROM commissions WHERE id = ?`
    full, err := scanCommission(r.db.QueryRowContext(ctx, sel, uint64(id)))
    if err != nil {
        return err
    }
    *c = full
    return nil
}

// GetByID returns a single commission.  Callers are responsible for the
// owner-or-admin visibility check; the repository does not filter.  When
// no commission exists, sql.ErrNoRows is returned.
func (r *CommissionRepo) GetByID(ctx context.Context, id uint64) (model.Commission, error) {
    const q = `SELECT ` + commissionColumns + ` FROM commissions WHERE id = ?`
    return scanCommission(r.db.QueryRowContext(ctx, q, id))
}

// ListByOwner returns all commissions submitted by the given user ordered
// by creation time descending (newest first).  When none exist, an empty
// slice is returned.
func (r *CommissionRepo) ListByOwner(ctx context.Context, ownerID uint64) ([]model.Commission, error) {
    const q = `SELECT ` + commissionColumns + ` FROM commissions WHERE owner_id = ? ORDER BY created_at DESC, id DESC`
    rows, err := r.db.QueryContext(ctx, q, ownerID)
    if err != nil {
        return nil, err
    }
    defer rows.Close()
    items := make([]model.Commission, 0)
    for rows.Next() {
        c, err := scanCommission(rows)
        if err != nil {
            return nil, err
        }
        items = append(items, c)
    }
    if err := rows.Err(); err != nil {
        return nil, err
    }
    return items, nil
}

// AdminCommissionRow extends a commission with the owner's display name
// and email for operator visibility in the admin list.
type AdminCommissionRow struct {
    model.Commission
    OwnerName  string `json:"owner_name"`
    OwnerEmail string `json:"owner_email"`
}

// ListAllWithOwner returns every commission joined with its owner's
// display name and email, newest first.  Intended for the admin overview;
// the role check happens in middleware, not here.
func (r *CommissionRepo) ListAllWithOwner(ctx context.Context) ([]AdminCommissionRow, error) {
    const q = `SELECT c.id, c.owner_id, c.garment_type, c.chest, c.waist, c.hips, c.length, c.inseam, c.shoulders,
                      c.budget, c.timeline, c.details, c.status, c.created_at, c.updated_at,
                      u.display_name, u.email
               FROM commissions c
               JOIN users u ON u.id = c.owner_id
               ORDER BY c.created_at DESC, c.id DESC`
    rows, err := r.db.QueryContext(ctx, q)
    if err != nil {
        return nil, err
    }
    defer rows.Close()
    items := make([]AdminCommissionRow, 0)
    for rows.Next() {
        var row AdminCommissionRow
        if err := rows.Scan(
            &row.ID, &row.OwnerID, &row.GarmentType,
            &row.Measurements.Chest, &row.Measurements.Waist, &row.Measurements.Hips,
            &row.Measurements.Length, &row.Measurements.Inseam, &row.Measurements.Shoulders,
            &row.Budget, &row.Timeline, &row.Details, &row.Status, &row.CreatedAt, &row.UpdatedAt,
            &row.OwnerName, &row.OwnerEmail,
        ); err != nil {
            return nil, err
        }
        items = append(items, row)
    }
    if err := rows.Err(); err != nil {
        return nil, err
    }
    return items, nil
}

// UpdateContent overwrites the content fields of a Pending commission:
// garment type, measurement snapshot, budget, timeline and details.
// Status is deliberately absent from the statement; transitions go through
// UpdateStatus.  The WHERE clause guards the Pending requirement at the
// row level so a concurrent admin transition cannot race an owner edit.
// When zero rows match, the status is re-read to tell a vanished record
// (sql.ErrNoRows) from a closed one (ErrInvalidState).
func (r *CommissionRepo) UpdateContent(ctx context.Context, c model.Commission) error {
    const q = `UPDATE commissions
               SET garment_type = ?, chest = ?, waist = ?, hips = ?, length = ?, inseam = ?, shoulders = ?,
                   budget = ?, timeline = ?, details = ?, updated_at = NOW()
               WHERE id = ? AND status = ?`
    result, err := r.db.ExecContext(ctx, q,
        c.GarmentType,
        c.Measurements.Chest, c.Measurements.Waist, c.Measurements.Hips,
        c.Measurements.Length, c.Measurements.Inseam, c.Measurements.Shoulders,
        c.Budget, c.Timeline, c.Details,
        c.ID, model.StatusPending,
    )
    if err != nil {
        return err
    }
    n, err := result.RowsAffected()
    if err != nil {
        return err
    }
    if n == 0 {
        var status model.CommissionStatus
        err := r.db.QueryRowContext(ctx, `SELECT status FROM commissions WHERE id = ?`, c.ID).Scan(&status)
        if err != nil {
            return err
        }
        if status != model.StatusPending {
            return ErrInvalidState
        }
        // Row exists and is Pending: the update matched but changed nothing.
    }
    return nil
}

// UpdateStatus sets a commission's status.  No ordering graph is enforced
// here; who may perform which transition is decided by the authz gate
// before this call.  Returns sql.ErrNoRows when the commission does not
// exist.
func (r *CommissionRepo) UpdateStatus(ctx context.Context, id uint64, status model.CommissionStatus) error {
    result, err := r.db.ExecContext(ctx,
        `UPDATE commissions SET status = ?, updated_at = NOW() WHERE id = ?`,
        status, id)
    if err != nil {
        return err
    }
    n, err := result.RowsAffected()
    if err != nil {
        return err
    }
    if n == 0 {
        var exists uint64
        if err := r.db.QueryRowContext(ctx, `SELECT id FROM commissions WHERE id = ?`, id).Scan(&exists); err != nil {
            return err
        }
    }
    return nil
}
