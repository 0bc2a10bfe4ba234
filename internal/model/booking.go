package model

import "time"

// Booking statuses.  A booking starts out scheduled and is moved to one
// of the attendance outcomes exactly once per day; only a reschedule
// returns it to scheduled.
const (
    StatusScheduled = "scheduled" // created, session not yet held
    StatusPresent   = "present"   // trainer confirmed attendance in the slot window
    StatusLate      = "late"      // trainer confirmed a late arrival
    StatusAbsent    = "absent"    // slot elapsed without a check-in
)

// Booking ties one member to one trainer for one time slot on one date.
// It is the sole persisted entity of the scheduling core.  The slot is a
// catalog label, not an arbitrary range, so conflict detection stays an
// equality check on (trainer_id, session_date, time_slot).
//
// Fields:
//  ID           – primary key identifier.
//  MemberID     – member attending the session.
//  TrainerID    – trainer running the session.
//  Date         – calendar date of the session (DATE column, midnight UTC).
//  TimeSlot     – catalog label, e.g. "6:00 AM - 8:00 AM".
//  CheckInTime  – when the trainer recorded the start (nullable).
//  CheckOutTime – when the trainer recorded the end (nullable).
//  Status       – scheduled, present, late or absent.
//  Notes        – free-form trainer notes (nullable, not interpreted).
//  WorkoutType  – free-form session label (nullable, not interpreted).
//  CreatedAt    – creation timestamp.
//  UpdatedAt    – last update timestamp.
type Booking struct {
    ID           uint64     // bookings.id
    MemberID     uint64     // bookings.member_id
    TrainerID    uint64     // bookings.trainer_id
    Date         time.Time  // bookings.session_date
    TimeSlot     string     // bookings.time_slot
    CheckInTime  *time.Time // bookings.check_in_time (nullable)
    CheckOutTime *time.Time // bookings.check_out_time (nullable)
    Status       string     // bookings.status
    Notes        *string    // bookings.notes (nullable)
    WorkoutType  *string    // bookings.workout_type (nullable)
    CreatedAt    time.Time  // bookings.created_at
    UpdatedAt    time.Time  // bookings.updated_at
}

// IsActive reports whether the booking still occupies its trainer slot.
// Absent bookings release the slot for conflict purposes.
func (b *Booking) IsActive() bool {
    switch b.Status {
    case StatusScheduled, StatusPresent, StatusLate:
        return true
    }
    return false
}
