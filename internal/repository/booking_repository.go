package repository

import (
    "context"
    "database/sql"
    "time"

    "github.com/gymtrack/session-scheduler/internal/model"
    "github.com/gymtrack/session-scheduler/internal/scheduler"
)

// BookingRepo is the MySQL implementation of scheduler.BookingStore.
// All timestamp columns are stored in UTC (the DSN forces loc=UTC) and
// session_date is a DATE column scanned as midnight UTC.  Status guards
// are expressed in the SQL itself so sweep updates stay idempotent even
// across processes.
type BookingRepo struct {
    db *sql.DB
}

// NewBookingRepo returns a BookingRepo bound to the given database.
func NewBookingRepo(db *sql.DB) *BookingRepo { return &BookingRepo{db: db} }

// DB exposes the underlying handle for callers that need to coordinate
// a transaction across repositories.
func (r *BookingRepo) DB() *sql.DB { return r.db }

const bookingColumns = `id, member_id, trainer_id, session_date, time_slot, status,
       check_in_time, check_out_time, notes, workout_type, created_at, updated_at`

// scanBooking reads one bookings row from any row-like scanner.
func scanBooking(row interface {
    Scan(dest ...interface{}) error
}) (*model.Booking, error) {
    var (
        b        model.Booking
        checkIn  sql.NullTime
        checkOut sql.NullTime
        notes    sql.NullString
        workout  sql.NullString
    )
    err := row.Scan(
        &b.ID, &b.MemberID, &b.TrainerID, &b.Date, &b.TimeSlot, &b.Status,
        &checkIn, &checkOut, &notes, &workout, &b.CreatedAt, &b.UpdatedAt,
    )
    if err != nil {
        return nil, err
    }
    if checkIn.Valid {
        t := checkIn.Time
        b.CheckInTime = &t
    }
    if checkOut.Valid {
        t := checkOut.Time
        b.CheckOutTime = &t
    }
    if notes.Valid {
        s := notes.String
        b.Notes = &s
    }
    if workout.Valid {
        s := workout.String
        b.WorkoutType = &s
    }
    return &b, nil
}

// GetByID loads a booking by primary key.  Unknown ids are reported as
// scheduler.ErrNotFound so the engine and handlers never see
// sql.ErrNoRows directly.
func (r *BookingRepo) GetByID(ctx context.Context, id uint64) (*model.Booking, error) {
    const q = `SELECT ` + bookingColumns + ` FROM bookings WHERE id = ?`
    b, err := scanBooking(r.db.QueryRowContext(ctx, q, id))
    if err == sql.ErrNoRows {
        return nil, scheduler.ErrNotFound
    }
    if err != nil {
        return nil, err
    }
    return b, nil
}

// MemberBookingOnDate returns the member's single booking for the date,
// or nil when none exists.  Any status counts: the one-per-day policy
// covers absent bookings too, with reschedule reusing the row.
func (r *BookingRepo) MemberBookingOnDate(ctx context.Context, memberID uint64, date time.Time) (*model.Booking, error) {
    const q = `SELECT ` + bookingColumns + ` FROM bookings
               WHERE member_id = ? AND session_date = ? LIMIT 1`
    b, err := scanBooking(r.db.QueryRowContext(ctx, q, memberID, date))
    if err == sql.ErrNoRows {
        return nil, nil
    }
    if err != nil {
        return nil, err
    }
    return b, nil
}

// CountActiveForSlot counts active (scheduled/present/late) bookings for
// a trainer slot on a date, excluding excludeID when non-zero.
func (r *BookingRepo) CountActiveForSlot(ctx context.Context, trainerID uint64, date time.Time, slotLabel string, excludeID uint64) (int, error) {
    const q = `SELECT COUNT(*) FROM bookings
               WHERE trainer_id = ? AND session_date = ? AND time_slot = ?
                 AND status IN ('scheduled','present','late')
                 AND id <> ?`
    var n int
    err := r.db.QueryRowContext(ctx, q, trainerID, date, slotLabel, excludeID).Scan(&n)
    if err != nil {
        return 0, err
    }
    return n, nil
}

// Insert persists a new booking inside a transaction and reads the row
// back so database defaults (timestamps) land on the struct.
func (r *BookingRepo) Insert(ctx context.Context, b *model.Booking) error {
    tx, err := r.db.BeginTx(ctx, nil)
    if err != nil {
        return err
    }
    committed := false
    defer func() {
        if !committed {
            _ = tx.Rollback()
        }
    }()

    const q = `INSERT INTO bookings (member_id, trainer_id, session_date, time_slot, status, notes, workout_type)
               VALUES (?, ?, ?, ?, ?, ?, ?)`
    res, err := tx.ExecContext(ctx, q,
        b.MemberID, b.TrainerID, b.Date, b.TimeSlot, b.Status, b.Notes, b.WorkoutType)
    if err != nil {
        return err
    }
    id, err := res.LastInsertId()
    if err != nil {
        return err
    }
    b.ID = uint64(id)

    const sel = `SELECT created_at, updated_at FROM bookings WHERE id = ?`
    if err := tx.QueryRowContext(ctx, sel, b.ID).Scan(&b.CreatedAt, &b.UpdatedAt); err != nil {
        return err
    }
    if err := tx.Commit(); err != nil {
        return err
    }
    committed = true
    return nil
}

// UpdateSlot moves the booking to a new slot and resets the attendance
// state, which is what a reschedule means: a fresh scheduling intent on
// the same row.
func (r *BookingRepo) UpdateSlot(ctx context.Context, id uint64, slotLabel string) error {
    const q = `UPDATE bookings
               SET time_slot = ?, status = 'scheduled',
                   check_in_time = NULL, check_out_time = NULL, updated_at = NOW()
               WHERE id = ?`
    res, err := r.db.ExecContext(ctx, q, slotLabel, id)
    if err != nil {
        return err
    }
    n, err := res.RowsAffected()
    if err != nil {
        return err
    }
    if n == 0 {
        return scheduler.ErrNotFound
    }
    return nil
}

// UpdateAttendance sets the status and optionally the check-in time and
// notes.  COALESCE keeps existing values when the caller passes nil, so
// a re-mark never clobbers the first check-in.
func (r *BookingRepo) UpdateAttendance(ctx context.Context, id uint64, status string, checkIn *time.Time, notes *string) error {
    const q = `UPDATE bookings
               SET status = ?,
                   check_in_time = COALESCE(?, check_in_time),
                   notes = COALESCE(?, notes),
                   updated_at = NOW()
               WHERE id = ?`
    res, err := r.db.ExecContext(ctx, q, status, checkIn, notes, id)
    if err != nil {
        return err
    }
    n, err := res.RowsAffected()
    if err != nil {
        return err
    }
    if n == 0 {
        return scheduler.ErrNotFound
    }
    return nil
}

// UpdateCheckOut records the end of a session.
func (r *BookingRepo) UpdateCheckOut(ctx context.Context, id uint64, checkOut time.Time) error {
    const q = `UPDATE bookings SET check_out_time = ?, updated_at = NOW() WHERE id = ?`
    res, err := r.db.ExecContext(ctx, q, checkOut, id)
    if err != nil {
        return err
    }
    n, err := res.RowsAffected()
    if err != nil {
        return err
    }
    if n == 0 {
        return scheduler.ErrNotFound
    }
    return nil
}

// ListScheduledThrough returns scheduled bookings dated on or before the
// given date.  The engine decides which of them have actually elapsed;
// the repository only narrows the candidate set.
func (r *BookingRepo) ListScheduledThrough(ctx context.Context, date time.Time) ([]model.Booking, error) {
    const q = `SELECT ` + bookingColumns + ` FROM bookings
               WHERE status = 'scheduled' AND session_date <= ?`
    rows, err := r.db.QueryContext(ctx, q, date)
    if err != nil {
        return nil, err
    }
    defer rows.Close()
    return collectBookings(rows)
}

// MarkAbsentIfScheduled flips scheduled -> absent with the guard in the
// WHERE clause.  Concurrent sweeps converge: at most one of them sees a
// changed row.
func (r *BookingRepo) MarkAbsentIfScheduled(ctx context.Context, id uint64) (bool, error) {
    const q = `UPDATE bookings SET status = 'absent', updated_at = NOW()
               WHERE id = ? AND status = 'scheduled'`
    res, err := r.db.ExecContext(ctx, q, id)
    if err != nil {
        return false, err
    }
    n, err := res.RowsAffected()
    if err != nil {
        return false, err
    }
    return n > 0, nil
}

// ListForTrainerOnDate returns the trainer's roster for a date.  Slots
// sort lexicographically in catalog-start order only by accident, so
// order on the stored slot start hour instead: the label's first field
// parsed as TIME.
func (r *BookingRepo) ListForTrainerOnDate(ctx context.Context, trainerID uint64, date time.Time) ([]model.Booking, error) {
    const q = `SELECT ` + bookingColumns + ` FROM bookings
               WHERE trainer_id = ? AND session_date = ?
               ORDER BY STR_TO_DATE(SUBSTRING_INDEX(time_slot, ' - ', 1), '%l:%i %p')`
    rows, err := r.db.QueryContext(ctx, q, trainerID, date)
    if err != nil {
        return nil, err
    }
    defer rows.Close()
    return collectBookings(rows)
}

// ListForMember returns the member's history newest-first, bounded by
// limit when positive.
func (r *BookingRepo) ListForMember(ctx context.Context, memberID uint64, limit int) ([]model.Booking, error) {
    q := `SELECT ` + bookingColumns + ` FROM bookings
          WHERE member_id = ?
          ORDER BY session_date DESC, created_at DESC`
    args := []interface{}{memberID}
    if limit > 0 {
        q += ` LIMIT ?`
        args = append(args, limit)
    }
    rows, err := r.db.QueryContext(ctx, q, args...)
    if err != nil {
        return nil, err
    }
    defer rows.Close()
    return collectBookings(rows)
}

func collectBookings(rows *sql.Rows) ([]model.Booking, error) {
    out := make([]model.Booking, 0)
    for rows.Next() {
        b, err := scanBooking(rows)
        if err != nil {
            return nil, err
        }
        out = append(out, *b)
    }
    if err := rows.Err(); err != nil {
        return nil, err
    }
    return out, nil
}
