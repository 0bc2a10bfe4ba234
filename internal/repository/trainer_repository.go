package repository

import (
    "context"
    "database/sql"

    "github.com/gymtrack/session-scheduler/internal/model"
)

// TrainerRepo provides lookups on the `trainers` roster.
type TrainerRepo struct{ db *sql.DB }

// NewTrainerRepo returns a TrainerRepo bound to the given database.
func NewTrainerRepo(db *sql.DB) *TrainerRepo { return &TrainerRepo{db: db} }

// GetByID fetches a trainer by primary key.  sql.ErrNoRows passes
// through for the caller to translate.
func (r *TrainerRepo) GetByID(ctx context.Context, id uint64) (*model.Trainer, error) {
    const q = `SELECT id, user_id, full_name, specialty, is_active, created_at
               FROM trainers WHERE id = ? LIMIT 1`
    var t model.Trainer
    err := r.db.QueryRowContext(ctx, q, id).Scan(
        &t.ID, &t.UserID, &t.FullName, &t.Specialty, &t.IsActive, &t.CreatedAt)
    if err != nil {
        return nil, err
    }
    return &t, nil
}

// GetByUserID fetches the trainer profile owned by an account.
func (r *TrainerRepo) GetByUserID(ctx context.Context, userID uint64) (*model.Trainer, error) {
    const q = `SELECT id, user_id, full_name, specialty, is_active, created_at
               FROM trainers WHERE user_id = ? LIMIT 1`
    var t model.Trainer
    err := r.db.QueryRowContext(ctx, q, userID).Scan(
        &t.ID, &t.UserID, &t.FullName, &t.Specialty, &t.IsActive, &t.CreatedAt)
    if err != nil {
        return nil, err
    }
    return &t, nil
}

// Create inserts a trainer profile for a freshly registered account.
func (r *TrainerRepo) Create(ctx context.Context, userID uint64, fullName, specialty string) (uint64, error) {
    const q = `INSERT INTO trainers (user_id, full_name, specialty, is_active) VALUES (?, ?, ?, TRUE)`
    res, err := r.db.ExecContext(ctx, q, userID, fullName, specialty)
    if err != nil {
        return 0, err
    }
    id, err := res.LastInsertId()
    if err != nil {
        return 0, err
    }
    return uint64(id), nil
}

// ListActive returns all trainers currently taking bookings, ordered by
// name for stable output.
func (r *TrainerRepo) ListActive(ctx context.Context) ([]model.Trainer, error) {
    const q = `SELECT id, user_id, full_name, specialty, is_active, created_at
               FROM trainers WHERE is_active = TRUE ORDER BY full_name`
    rows, err := r.db.QueryContext(ctx, q)
    if err != nil {
        return nil, err
    }
    defer rows.Close()
    out := make([]model.Trainer, 0)
    for rows.Next() {
        var t model.Trainer
        if err := rows.Scan(&t.ID, &t.UserID, &t.FullName, &t.Specialty, &t.IsActive, &t.CreatedAt); err != nil {
            return nil, err
        }
        out = append(out, t)
    }
    if err := rows.Err(); err != nil {
        return nil, err
    }
    return out, nil
}
