// Package handler implements the HTTP surface of the scheduling API.
// Handlers translate between the web layer (echo, JSON, JWT context)
// and the scheduling engine's typed errors; the booking rules
// themselves live in internal/scheduler.
package handler

import (
    "context"
    "errors"
    "strconv"
    "time"

    "github.com/labstack/echo/v4"

    "github.com/gymtrack/session-scheduler/internal/model"
)

// MemberDirectory is the roster lookup the member-facing handlers need.
// Satisfied by repository.MemberRepo; tests plug in fakes.
type MemberDirectory interface {
    GetByUserID(ctx context.Context, userID uint64) (*model.Member, error)
    NamesByIDs(ctx context.Context, ids []uint64) (map[uint64]string, error)
}

// TrainerDirectory is the roster lookup for trainer resolution and the
// public trainer list.  Satisfied by repository.TrainerRepo.
type TrainerDirectory interface {
    GetByID(ctx context.Context, id uint64) (*model.Trainer, error)
    GetByUserID(ctx context.Context, userID uint64) (*model.Trainer, error)
    ListActive(ctx context.Context) ([]model.Trainer, error)
}

// SessionEngine is the slice of the scheduling engine the handlers
// call.  Satisfied by *scheduler.Engine.
type SessionEngine interface {
    CreateBooking(ctx context.Context, memberID, trainerID uint64, date time.Time, label string, workoutType *string) (*model.Booking, error)
    RescheduleBooking(ctx context.Context, bookingID uint64, newLabel string) (*model.Booking, error)
    MarkAttendance(ctx context.Context, bookingID uint64, status string, notes *string) (*model.Booking, error)
    CheckOut(ctx context.Context, bookingID uint64) (*model.Booking, error)
    GetBooking(ctx context.Context, id uint64) (*model.Booking, error)
    AutoMarkAbsent(ctx context.Context) int
    ListBookingsForTrainerOnDate(ctx context.Context, trainerID uint64, date time.Time) ([]model.Booking, error)
    ListBookingsForMember(ctx context.Context, memberID uint64, limit int) ([]model.Booking, error)
}

// getUserID extracts the authenticated account id from the echo
// context.  The JWT middleware stores the raw claim value, which
// arrives as float64 for numeric JSON claims.
func getUserID(c echo.Context) (uint64, error) {
    v := c.Get("user_id")
    switch t := v.(type) {
    case uint64:
        return t, nil
    case int:
        return uint64(t), nil
    case int64:
        return uint64(t), nil
    case float64:
        return uint64(t), nil
    case string:
        if n, err := strconv.ParseUint(t, 10, 64); err == nil {
            return n, nil
        }
    }
    return 0, errors.New("invalid user_id in context")
}

// dateLayout is the wire format for calendar dates.
const dateLayout = "2006-01-02"

// parseDate parses a YYYY-MM-DD string into a midnight-UTC time.
func parseDate(s string) (time.Time, error) {
    return time.Parse(dateLayout, s)
}

// bookingResponse is the JSON shape shared by every endpoint that
// returns bookings.
type bookingResponse struct {
    ID           uint64  `json:"id"`
    MemberID     uint64  `json:"member_id"`
    MemberName   string  `json:"member_name,omitempty"`
    TrainerID    uint64  `json:"trainer_id"`
    Date         string  `json:"date"`
    TimeSlot     string  `json:"time_slot"`
    Status       string  `json:"status"`
    CheckInTime  *string `json:"check_in_time,omitempty"`
    CheckOutTime *string `json:"check_out_time,omitempty"`
    Notes        *string `json:"notes,omitempty"`
    WorkoutType  *string `json:"workout_type,omitempty"`
}

func toBookingResponse(b *model.Booking) bookingResponse {
    resp := bookingResponse{
        ID:          b.ID,
        MemberID:    b.MemberID,
        TrainerID:   b.TrainerID,
        Date:        b.Date.Format(dateLayout),
        TimeSlot:    b.TimeSlot,
        Status:      b.Status,
        Notes:       b.Notes,
        WorkoutType: b.WorkoutType,
    }
    if b.CheckInTime != nil {
        s := b.CheckInTime.UTC().Format(time.RFC3339)
        resp.CheckInTime = &s
    }
    if b.CheckOutTime != nil {
        s := b.CheckOutTime.UTC().Format(time.RFC3339)
        resp.CheckOutTime = &s
    }
    return resp
}
