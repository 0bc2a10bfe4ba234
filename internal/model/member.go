package model

import "time"

// Membership statuses as stored in members.membership_status.  Only
// active, unexpired members may book sessions; the check happens in the
// web layer before the scheduling core is invoked.
const (
    MembershipActive    = "active"
    MembershipSuspended = "suspended"
    MembershipExpired   = "expired"
)

// Member mirrors the `members` table.  Membership-plan bookkeeping
// (payments, plan CRUD) lives outside this service; only the fields the
// booking precondition needs are carried here.
//
// Fields:
//  ID               – primary key identifier.
//  UserID           – owning account in the users table.
//  FullName         – display name.
//  MembershipStatus – active, suspended or expired.
//  MembershipEnd    – last day the membership is valid (nullable).
//  CreatedAt        – timestamp of creation.
type Member struct {
    ID               uint64     // members.id
    UserID           uint64     // members.user_id
    FullName         string     // members.full_name
    MembershipStatus string     // members.membership_status
    MembershipEnd    *time.Time // members.membership_end (nullable)
    CreatedAt        time.Time  // members.created_at
}

// CanBook reports whether the member may create or reschedule bookings
// at the given moment: status active and membership not past its end.
func (m *Member) CanBook(now time.Time) bool {
    if m.MembershipStatus != MembershipActive {
        return false
    }
    if m.MembershipEnd != nil && now.After(*m.MembershipEnd) {
        return false
    }
    return true
}

// Trainer mirrors the `trainers` table.
//
// Fields:
//  ID        – primary key identifier.
//  UserID    – owning account in the users table.
//  FullName  – display name.
//  Specialty – free-form specialty label.
//  IsActive  – whether the trainer currently takes bookings.
//  CreatedAt – timestamp of creation.
type Trainer struct {
    ID        uint64    // trainers.id
    UserID    uint64    // trainers.user_id
    FullName  string    // trainers.full_name
    Specialty string    // trainers.specialty
    IsActive  bool      // trainers.is_active
    CreatedAt time.Time // trainers.created_at
}
