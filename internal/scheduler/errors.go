// Package scheduler implements the booking ledger and the attendance
// state machine for gym training sessions.  It is a library with no
// network surface of its own: the web layer supplies pre-validated
// member/trainer identifiers and translates the sentinel errors below
// into user-facing responses.
package scheduler

import "errors"

// Sentinel errors returned by the engine.  All are expected,
// caller-recoverable conditions; the engine never retries internally.
var (
    // ErrNotFound is returned when the referenced booking id does not exist.
    ErrNotFound = errors.New("booking not found")

    // ErrPastSlot is returned when the target slot's start on the target
    // date is at or before the current moment.  The past-slot check always
    // runs before availability checks so a stale request is never
    // misreported as a conflict.
    ErrPastSlot = errors.New("slot start time has passed")

    // ErrMemberAlreadyBooked is returned when the member already holds a
    // booking for that date; the caller should offer the reschedule flow.
    ErrMemberAlreadyBooked = errors.New("member already has a booking on this date")

    // ErrSlotTaken is returned when the trainer already has an active
    // booking for the requested slot and date.
    ErrSlotTaken = errors.New("trainer is not available for this slot")

    // ErrSameSlot is returned when a reschedule targets the booking's
    // current slot.  Soft: callers may treat it as a no-op success.
    ErrSameSlot = errors.New("booking already uses this slot")

    // ErrOutsideWindow is returned when an attendance mark is attempted
    // outside the booking's [slotStart, slotEnd] window.
    ErrOutsideWindow = errors.New("attendance can only be marked during the slot window")

    // ErrInvalidStatus is returned when an attendance mark requests a
    // status other than present or late, or targets a booking the sweep
    // has already closed as absent.
    ErrInvalidStatus = errors.New("invalid attendance status")
)
