package handler

import (
    "context"
    "database/sql"
    "errors"
    "net/http"
    "strconv"
    "strings"
    "time"

    "github.com/labstack/echo/v4"

    "github.com/gymtrack/session-scheduler/internal/queue"
    "github.com/gymtrack/session-scheduler/internal/scheduler"
    queue_publisher "github.com/gymtrack/session-scheduler/internal/service"
    "github.com/gymtrack/session-scheduler/internal/slot"
)

// MemberSessionHandler serves the member-facing booking endpoints.
type MemberSessionHandler struct {
    Engine   SessionEngine
    Members  MemberDirectory
    Trainers TrainerDirectory
}

func NewMemberSessionHandler(e SessionEngine, m MemberDirectory, t TrainerDirectory) *MemberSessionHandler {
    return &MemberSessionHandler{Engine: e, Members: m, Trainers: t}
}

// ----- DTOs -----

type bookReq struct {
    TrainerID   uint64  `json:"trainer_id"`
    Date        string  `json:"date"`      // YYYY-MM-DD
    TimeSlot    string  `json:"time_slot"` // catalog label
    WorkoutType *string `json:"workout_type"`
}

type rescheduleReq struct {
    TimeSlot string `json:"time_slot"`
}

type trainerPart struct {
    ID        uint64 `json:"id"`
    FullName  string `json:"full_name"`
    Specialty string `json:"specialty"`
}

// ListSlots returns the fixed daily slot catalog.
func (h *MemberSessionHandler) ListSlots(c echo.Context) error {
    return c.JSON(http.StatusOK, echo.Map{"slots": slot.Labels()})
}

// ListTrainers returns trainers currently taking bookings.
func (h *MemberSessionHandler) ListTrainers(c echo.Context) error {
    ctx, cancel := context.WithTimeout(c.Request().Context(), 5*time.Second)
    defer cancel()

    trainers, err := h.Trainers.ListActive(ctx)
    if err != nil {
        return c.JSON(http.StatusInternalServerError, echo.Map{"error": "query failed"})
    }
    out := make([]trainerPart, 0, len(trainers))
    for _, t := range trainers {
        out = append(out, trainerPart{ID: t.ID, FullName: t.FullName, Specialty: t.Specialty})
    }
    return c.JSON(http.StatusOK, echo.Map{"trainers": out})
}

// BookSession books the authenticated member into a trainer's slot.
func (h *MemberSessionHandler) BookSession(c echo.Context) error {
    uid, err := getUserID(c)
    if err != nil {
        return c.JSON(http.StatusUnauthorized, echo.Map{"error": "unauthorized"})
    }
    var req bookReq
    if err := c.Bind(&req); err != nil {
        return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid body"})
    }
    if req.TrainerID == 0 || strings.TrimSpace(req.Date) == "" || strings.TrimSpace(req.TimeSlot) == "" {
        return c.JSON(http.StatusBadRequest, echo.Map{"error": "trainer_id, date and time_slot required"})
    }
    date, err := parseDate(req.Date)
    if err != nil {
        return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid date, expected YYYY-MM-DD"})
    }

    ctx, cancel := context.WithTimeout(c.Request().Context(), 5*time.Second)
    defer cancel()

    member, err := h.Members.GetByUserID(ctx, uid)
    if err != nil {
        if err == sql.ErrNoRows {
            return c.JSON(http.StatusForbidden, echo.Map{"error": "no member profile"})
        }
        return c.JSON(http.StatusInternalServerError, echo.Map{"error": "query failed"})
    }
    if !member.CanBook(time.Now().UTC()) {
        return c.JSON(http.StatusForbidden, echo.Map{"error": "membership not active"})
    }

    trainer, err := h.Trainers.GetByID(ctx, req.TrainerID)
    if err != nil {
        if err == sql.ErrNoRows {
            return c.JSON(http.StatusNotFound, echo.Map{"error": "trainer not found"})
        }
        return c.JSON(http.StatusInternalServerError, echo.Map{"error": "query failed"})
    }
    if !trainer.IsActive {
        return c.JSON(http.StatusBadRequest, echo.Map{"error": "trainer not taking bookings"})
    }

    b, err := h.Engine.CreateBooking(ctx, member.ID, trainer.ID, date, req.TimeSlot, req.WorkoutType)
    if err != nil {
        return bookingErrToJSON(c, err)
    }

    go publishBooked(b.ID, member.ID, member.FullName, trainer.ID, trainer.FullName, b.Date, b.TimeSlot, false)

    return c.JSON(http.StatusCreated, toBookingResponse(b))
}

// RescheduleSession moves one of the member's own bookings to another
// slot on the same day.  Picking the current slot is a no-op.
func (h *MemberSessionHandler) RescheduleSession(c echo.Context) error {
    uid, err := getUserID(c)
    if err != nil {
        return c.JSON(http.StatusUnauthorized, echo.Map{"error": "unauthorized"})
    }
    bookingID, err := strconv.ParseUint(c.Param("id"), 10, 64)
    if err != nil || bookingID == 0 {
        return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid booking id"})
    }
    var req rescheduleReq
    if err := c.Bind(&req); err != nil || strings.TrimSpace(req.TimeSlot) == "" {
        return c.JSON(http.StatusBadRequest, echo.Map{"error": "time_slot required"})
    }

    ctx, cancel := context.WithTimeout(c.Request().Context(), 5*time.Second)
    defer cancel()

    member, err := h.Members.GetByUserID(ctx, uid)
    if err != nil {
        if err == sql.ErrNoRows {
            return c.JSON(http.StatusForbidden, echo.Map{"error": "no member profile"})
        }
        return c.JSON(http.StatusInternalServerError, echo.Map{"error": "query failed"})
    }

    current, err := h.Engine.GetBooking(ctx, bookingID)
    if err != nil {
        if errors.Is(err, scheduler.ErrNotFound) {
            return c.JSON(http.StatusNotFound, echo.Map{"error": "booking not found"})
        }
        return c.JSON(http.StatusInternalServerError, echo.Map{"error": "query failed"})
    }
    if current.MemberID != member.ID {
        return c.JSON(http.StatusForbidden, echo.Map{"error": "not your booking"})
    }

    b, err := h.Engine.RescheduleBooking(ctx, bookingID, req.TimeSlot)
    if err != nil {
        if errors.Is(err, scheduler.ErrSameSlot) {
            return c.JSON(http.StatusOK, toBookingResponse(current))
        }
        return bookingErrToJSON(c, err)
    }

    trainerName := ""
    if t, terr := h.Trainers.GetByID(ctx, b.TrainerID); terr == nil {
        trainerName = t.FullName
    }
    go publishBooked(b.ID, member.ID, member.FullName, b.TrainerID, trainerName, b.Date, b.TimeSlot, true)

    return c.JSON(http.StatusOK, toBookingResponse(b))
}

// ListMySessions returns the member's booking history, newest first.
// Elapsed still-scheduled bookings are swept to absent before the read
// so the history never shows a stale scheduled row.
func (h *MemberSessionHandler) ListMySessions(c echo.Context) error {
    uid, err := getUserID(c)
    if err != nil {
        return c.JSON(http.StatusUnauthorized, echo.Map{"error": "unauthorized"})
    }
    limit := 0
    if s := c.QueryParam("limit"); s != "" {
        n, err := strconv.Atoi(s)
        if err != nil || n < 0 {
            return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid limit"})
        }
        limit = n
    }

    ctx, cancel := context.WithTimeout(c.Request().Context(), 5*time.Second)
    defer cancel()

    member, err := h.Members.GetByUserID(ctx, uid)
    if err != nil {
        if err == sql.ErrNoRows {
            return c.JSON(http.StatusForbidden, echo.Map{"error": "no member profile"})
        }
        return c.JSON(http.StatusInternalServerError, echo.Map{"error": "query failed"})
    }

    h.Engine.AutoMarkAbsent(ctx)

    bookings, err := h.Engine.ListBookingsForMember(ctx, member.ID, limit)
    if err != nil {
        return c.JSON(http.StatusInternalServerError, echo.Map{"error": "query failed"})
    }
    out := make([]bookingResponse, 0, len(bookings))
    for i := range bookings {
        out = append(out, toBookingResponse(&bookings[i]))
    }
    return c.JSON(http.StatusOK, echo.Map{"sessions": out})
}

// bookingErrToJSON maps engine errors onto HTTP responses.  Validation
// problems are 400, scheduling conflicts 409.
func bookingErrToJSON(c echo.Context, err error) error {
    switch {
    case errors.Is(err, slot.ErrInvalidSlot):
        return c.JSON(http.StatusBadRequest, echo.Map{"error": "unknown time slot"})
    case errors.Is(err, scheduler.ErrPastSlot):
        return c.JSON(http.StatusBadRequest, echo.Map{"error": "slot already started"})
    case errors.Is(err, scheduler.ErrMemberAlreadyBooked):
        return c.JSON(http.StatusConflict, echo.Map{"error": "already booked that day"})
    case errors.Is(err, scheduler.ErrSlotTaken):
        return c.JSON(http.StatusConflict, echo.Map{"error": "slot already taken"})
    case errors.Is(err, scheduler.ErrNotFound):
        return c.JSON(http.StatusNotFound, echo.Map{"error": "booking not found"})
    default:
        return c.JSON(http.StatusInternalServerError, echo.Map{"error": "booking failed"})
    }
}

// publishBooked sends a booked/rescheduled event; runs in its own
// goroutine so broker latency never delays the response.
func publishBooked(bookingID, memberID uint64, memberName string, trainerID uint64, trainerName string, date time.Time, timeSlot string, rescheduled bool) {
    ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
    defer cancel()
    _ = queue_publisher.PublishSessionBooked(ctx, queue.SessionBookedEvent{
        BookingID:   bookingID,
        MemberID:    memberID,
        MemberName:  memberName,
        TrainerID:   trainerID,
        TrainerName: trainerName,
        Date:        date.Format(dateLayout),
        TimeSlot:    timeSlot,
        Rescheduled: rescheduled,
        BookedAt:    time.Now().UTC().Format(time.RFC3339),
    })
}
