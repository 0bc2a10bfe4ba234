package scheduler

import (
    "context"
    "time"

    "github.com/gymtrack/session-scheduler/internal/model"
)

// BookingStore is the persistence port of the engine.  The production
// implementation is repository.BookingRepo (MySQL); tests use an
// in-memory fake.  Implementations must treat dates as midnight-UTC
// values as produced by slot.DateOf.
type BookingStore interface {
    // GetByID loads a booking or returns ErrNotFound.
    GetByID(ctx context.Context, id uint64) (*model.Booking, error)

    // MemberBookingOnDate returns the member's single booking for the
    // date regardless of slot or status, or nil when none exists.
    MemberBookingOnDate(ctx context.Context, memberID uint64, date time.Time) (*model.Booking, error)

    // CountActiveForSlot counts bookings with an active status
    // (scheduled, present, late) for the trainer/date/slot triple,
    // excluding excludeID when non-zero.
    CountActiveForSlot(ctx context.Context, trainerID uint64, date time.Time, slotLabel string, excludeID uint64) (int, error)

    // Insert persists a new booking and fills in its ID.
    Insert(ctx context.Context, b *model.Booking) error

    // UpdateSlot moves the booking to a new slot and resets its status
    // to scheduled, clearing any prior check-in.
    UpdateSlot(ctx context.Context, id uint64, slotLabel string) error

    // UpdateAttendance sets the status and, when checkIn is non-nil, the
    // check-in time.  Optional notes overwrite the stored notes.
    UpdateAttendance(ctx context.Context, id uint64, status string, checkIn *time.Time, notes *string) error

    // UpdateCheckOut records the end of a session.
    UpdateCheckOut(ctx context.Context, id uint64, checkOut time.Time) error

    // ListScheduledThrough returns all bookings still in scheduled
    // status whose date is on or before the given date.  Input to the
    // auto-absence sweep.
    ListScheduledThrough(ctx context.Context, date time.Time) ([]model.Booking, error)

    // MarkAbsentIfScheduled transitions the booking to absent only if it
    // is still scheduled, reporting whether a row changed.  The guard
    // makes the sweep idempotent under concurrent invocation.
    MarkAbsentIfScheduled(ctx context.Context, id uint64) (bool, error)

    // ListForTrainerOnDate returns the trainer's bookings for a date,
    // ordered by slot start.
    ListForTrainerOnDate(ctx context.Context, trainerID uint64, date time.Time) ([]model.Booking, error)

    // ListForMember returns the member's bookings most-recent-first,
    // bounded by limit when limit > 0.
    ListForMember(ctx context.Context, memberID uint64, limit int) ([]model.Booking, error)
}
