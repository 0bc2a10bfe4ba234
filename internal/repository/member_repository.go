package repository

import (
    "context"
    "database/sql"
    "strings"

    "github.com/gymtrack/session-scheduler/internal/model"
)

// MemberRepo provides lookups on the `members` roster.  Membership-plan
// bookkeeping happens outside this service; the scheduler only needs the
// status fields for the booking precondition.
type MemberRepo struct{ db *sql.DB }

// NewMemberRepo returns a MemberRepo bound to the given database.
func NewMemberRepo(db *sql.DB) *MemberRepo { return &MemberRepo{db: db} }

// GetByUserID fetches the member profile owned by an account.
// sql.ErrNoRows passes through for the caller to translate.
func (r *MemberRepo) GetByUserID(ctx context.Context, userID uint64) (*model.Member, error) {
    const q = `SELECT id, user_id, full_name, membership_status, membership_end, created_at
               FROM members WHERE user_id = ? LIMIT 1`
    var (
        m   model.Member
        end sql.NullTime
    )
    err := r.db.QueryRowContext(ctx, q, userID).Scan(
        &m.ID, &m.UserID, &m.FullName, &m.MembershipStatus, &end, &m.CreatedAt)
    if err != nil {
        return nil, err
    }
    if end.Valid {
        t := end.Time
        m.MembershipEnd = &t
    }
    return &m, nil
}

// Create inserts a member profile for a freshly registered account.
// New members start active with no end date; the external membership
// system owns these columns from then on.
func (r *MemberRepo) Create(ctx context.Context, userID uint64, fullName string) (uint64, error) {
    const q = `INSERT INTO members (user_id, full_name, membership_status) VALUES (?, ?, 'active')`
    res, err := r.db.ExecContext(ctx, q, userID, fullName)
    if err != nil {
        return 0, err
    }
    id, err := res.LastInsertId()
    if err != nil {
        return 0, err
    }
    return uint64(id), nil
}

// NamesByIDs returns a member-id -> full-name map for the given ids.
// Used to enrich the trainer roster view without joining inside the
// booking store.
func (r *MemberRepo) NamesByIDs(ctx context.Context, ids []uint64) (map[uint64]string, error) {
    out := make(map[uint64]string, len(ids))
    if len(ids) == 0 {
        return out, nil
    }
    placeholders := make([]string, len(ids))
    args := make([]interface{}, len(ids))
    for i, id := range ids {
        placeholders[i] = "?"
        args[i] = id
    }
    q := `SELECT id, full_name FROM members WHERE id IN (` + strings.Join(placeholders, ",") + `)`
    rows, err := r.db.QueryContext(ctx, q, args...)
    if err != nil {
        return nil, err
    }
    defer rows.Close()
    for rows.Next() {
        var id uint64
        var name string
        if err := rows.Scan(&id, &name); err != nil {
            return nil, err
        }
        out[id] = name
    }
    if err := rows.Err(); err != nil {
        return nil, err
    }
    return out, nil
}
