// Package queue defines message payloads exchanged over the message broker.
package queue

// SessionBookedEvent is published when a member books or reschedules a
// training session.  It carries enough for downstream consumers to log,
// notify, or feed analytics without querying the primary database.
type SessionBookedEvent struct {
    BookingID   uint64 `json:"booking_id"`
    MemberID    uint64 `json:"member_id"`
    MemberName  string `json:"member_name"`
    TrainerID   uint64 `json:"trainer_id"`
    TrainerName string `json:"trainer_name"`
    Date        string `json:"date"`      // YYYY-MM-DD
    TimeSlot    string `json:"time_slot"` // catalog label
    Rescheduled bool   `json:"rescheduled"`
    BookedAt    string `json:"booked_at"` // RFC3339
}

// AttendanceMarkedEvent is published when a trainer records an
// attendance outcome or the absence sweep closes an elapsed booking.
type AttendanceMarkedEvent struct {
    BookingID   uint64 `json:"booking_id"`
    MemberID    uint64 `json:"member_id"`
    TrainerID   uint64 `json:"trainer_id"`
    Date        string `json:"date"`
    TimeSlot    string `json:"time_slot"`
    Status      string `json:"status"`                  // present, late or absent
    CheckInTime string `json:"check_in_time,omitempty"` // RFC3339, empty for absent
    MarkedAt    string `json:"marked_at"`               // RFC3339
}
