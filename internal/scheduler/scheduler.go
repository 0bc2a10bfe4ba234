package scheduler

import (
    "context"
    "fmt"
    "log"
    "time"

    "github.com/gymtrack/session-scheduler/internal/model"
    "github.com/gymtrack/session-scheduler/internal/slot"
)

// Engine enforces the booking invariants and drives the per-booking
// attendance lifecycle.  All timestamps are UTC.  The availability check
// and the write for a booking mutation run under a lock keyed by the
// contended tuples, so two concurrent attempts on the same trainer slot
// (or the same member day) cannot both pass the check.
type Engine struct {
    store BookingStore
    locks keyedLock
    now   func() time.Time
}

// NewEngine returns an Engine backed by the given store.
func NewEngine(store BookingStore) *Engine {
    if store == nil {
        panic("nil store passed to NewEngine")
    }
    return &Engine{
        store: store,
        now:   func() time.Time { return time.Now().UTC() },
    }
}

func trainerSlotKey(trainerID uint64, date time.Time, label string) string {
    return fmt.Sprintf("t:%d:%s:%s", trainerID, date.Format("2006-01-02"), label)
}

func memberDayKey(memberID uint64, date time.Time) string {
    return fmt.Sprintf("m:%d:%s", memberID, date.Format("2006-01-02"))
}

// GetBooking loads a booking by id, reporting ErrNotFound for unknown
// ids.  Callers use it for ownership checks before mutating.
func (e *Engine) GetBooking(ctx context.Context, id uint64) (*model.Booking, error) {
    return e.store.GetByID(ctx, id)
}

// IsSlotAvailable reports whether the trainer has no active booking for
// the slot on the date, ignoring excludeID when non-zero.  The exclusion
// lets a reschedule probe its target slot without colliding with the
// booking being replaced.
func (e *Engine) IsSlotAvailable(ctx context.Context, trainerID uint64, date time.Time, label string, excludeID uint64) (bool, error) {
    if !slot.IsValid(label) {
        return false, slot.ErrInvalidSlot
    }
    n, err := e.store.CountActiveForSlot(ctx, trainerID, slot.DateOf(date), label, excludeID)
    if err != nil {
        return false, err
    }
    return n == 0, nil
}

// FindMemberBookingOnDate returns the member's single booking for the
// date regardless of slot or status, or nil when none exists.
func (e *Engine) FindMemberBookingOnDate(ctx context.Context, memberID uint64, date time.Time) (*model.Booking, error) {
    return e.store.MemberBookingOnDate(ctx, memberID, slot.DateOf(date))
}

// CreateBooking schedules a member with a trainer for a catalog slot on
// a date.  Checks run in a fixed order so errors are deterministic:
// slot validity, past-slot, member double-booking, trainer conflict.
func (e *Engine) CreateBooking(ctx context.Context, memberID, trainerID uint64, date time.Time, label string, workoutType *string) (*model.Booking, error) {
    start, _, err := slot.Range(label, date)
    if err != nil {
        return nil, err
    }
    if !start.After(e.now()) {
        return nil, ErrPastSlot
    }
    day := slot.DateOf(date)

    unlock := e.locks.lock(memberDayKey(memberID, day), trainerSlotKey(trainerID, day, label))
    defer unlock()

    existing, err := e.store.MemberBookingOnDate(ctx, memberID, day)
    if err != nil {
        return nil, err
    }
    if existing != nil {
        return nil, ErrMemberAlreadyBooked
    }
    n, err := e.store.CountActiveForSlot(ctx, trainerID, day, label, 0)
    if err != nil {
        return nil, err
    }
    if n > 0 {
        return nil, ErrSlotTaken
    }

    b := &model.Booking{
        MemberID:    memberID,
        TrainerID:   trainerID,
        Date:        day,
        TimeSlot:    label,
        Status:      model.StatusScheduled,
        WorkoutType: workoutType,
    }
    if err := e.store.Insert(ctx, b); err != nil {
        return nil, err
    }
    return b, nil
}

// RescheduleBooking moves an existing booking to a new slot on the same
// date, resetting its status to scheduled.  The booking itself is
// excluded from the conflict check so a same-trainer move never
// self-conflicts.  ErrSameSlot is soft; callers may treat it as a no-op.
func (e *Engine) RescheduleBooking(ctx context.Context, bookingID uint64, newLabel string) (*model.Booking, error) {
    b, err := e.store.GetByID(ctx, bookingID)
    if err != nil {
        return nil, err
    }
    if b.TimeSlot == newLabel {
        return nil, ErrSameSlot
    }
    start, _, err := slot.Range(newLabel, b.Date)
    if err != nil {
        return nil, err
    }
    if !start.After(e.now()) {
        return nil, ErrPastSlot
    }

    unlock := e.locks.lock(trainerSlotKey(b.TrainerID, b.Date, newLabel))
    defer unlock()

    n, err := e.store.CountActiveForSlot(ctx, b.TrainerID, b.Date, newLabel, b.ID)
    if err != nil {
        return nil, err
    }
    if n > 0 {
        return nil, ErrSlotTaken
    }
    if err := e.store.UpdateSlot(ctx, b.ID, newLabel); err != nil {
        return nil, err
    }
    b.TimeSlot = newLabel
    b.Status = model.StatusScheduled
    b.CheckInTime = nil
    b.CheckOutTime = nil
    return b, nil
}

// MarkAttendance records a trainer's real-time attendance outcome.  The
// only trainer-settable outcomes are present and late, and only while
// the current moment lies inside the booking's slot window (boundaries
// inclusive).  A second mark inside the window may flip the status but
// keeps the first check-in time.  Absent is never set here; that is the
// sweep's job.
func (e *Engine) MarkAttendance(ctx context.Context, bookingID uint64, status string, notes *string) (*model.Booking, error) {
    if status != model.StatusPresent && status != model.StatusLate {
        return nil, ErrInvalidStatus
    }
    b, err := e.store.GetByID(ctx, bookingID)
    if err != nil {
        return nil, err
    }
    if b.Status == model.StatusAbsent {
        // Terminal for the day; only a reschedule revives the booking.
        return nil, ErrInvalidStatus
    }
    start, end, err := slot.Range(b.TimeSlot, b.Date)
    if err != nil {
        return nil, err
    }
    now := e.now()
    if now.Before(start) || now.After(end) {
        return nil, ErrOutsideWindow
    }

    var checkIn *time.Time
    if b.CheckInTime == nil {
        checkIn = &now
    }
    if err := e.store.UpdateAttendance(ctx, b.ID, status, checkIn, notes); err != nil {
        return nil, err
    }
    b.Status = status
    if checkIn != nil {
        b.CheckInTime = checkIn
    }
    if notes != nil {
        b.Notes = notes
    }
    return b, nil
}

// CheckOut stamps the end of a session that was marked present or late.
// Unlike marking, checkout is not window-gated; trainers often record it
// after the slot has ended.
func (e *Engine) CheckOut(ctx context.Context, bookingID uint64) (*model.Booking, error) {
    b, err := e.store.GetByID(ctx, bookingID)
    if err != nil {
        return nil, err
    }
    if b.Status != model.StatusPresent && b.Status != model.StatusLate {
        return nil, ErrInvalidStatus
    }
    now := e.now()
    if err := e.store.UpdateCheckOut(ctx, b.ID, now); err != nil {
        return nil, err
    }
    b.CheckOutTime = &now
    return b, nil
}

// AutoMarkAbsent transitions every still-scheduled booking whose slot
// end has passed to absent and returns how many rows changed.  The
// store-side scheduled guard makes it idempotent and safe to run
// concurrently from multiple requests.  Per-record failures are logged
// and skipped so one bad row never stalls the sweep; the record is
// simply re-evaluated next time.
func (e *Engine) AutoMarkAbsent(ctx context.Context) int {
    now := e.now()
    candidates, err := e.store.ListScheduledThrough(ctx, slot.DateOf(now))
    if err != nil {
        log.Printf("scheduler: absence sweep list failed: %v", err)
        return 0
    }
    marked := 0
    for _, b := range candidates {
        _, end, err := slot.Range(b.TimeSlot, b.Date)
        if err != nil {
            log.Printf("scheduler: absence sweep skipping booking %d: %v", b.ID, err)
            continue
        }
        if !end.Before(now) {
            continue
        }
        changed, err := e.store.MarkAbsentIfScheduled(ctx, b.ID)
        if err != nil {
            log.Printf("scheduler: absence sweep failed to mark booking %d: %v", b.ID, err)
            continue
        }
        if changed {
            marked++
        }
    }
    return marked
}

// ListBookingsForTrainerOnDate returns the trainer's roster for a date,
// ordered by slot start.
func (e *Engine) ListBookingsForTrainerOnDate(ctx context.Context, trainerID uint64, date time.Time) ([]model.Booking, error) {
    return e.store.ListForTrainerOnDate(ctx, trainerID, slot.DateOf(date))
}

// ListBookingsForMember returns the member's history, most recent first,
// bounded by limit when limit > 0.
func (e *Engine) ListBookingsForMember(ctx context.Context, memberID uint64, limit int) ([]model.Booking, error) {
    return e.store.ListForMember(ctx, memberID, limit)
}
