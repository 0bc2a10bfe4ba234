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

    "github.com/gymtrack/session-scheduler/internal/model"
    "github.com/gymtrack/session-scheduler/internal/queue"
    "github.com/gymtrack/session-scheduler/internal/scheduler"
    queue_publisher "github.com/gymtrack/session-scheduler/internal/service"
    "github.com/gymtrack/session-scheduler/internal/slot"
)

// TrainerSessionHandler serves the trainer-facing roster and
// attendance endpoints.
type TrainerSessionHandler struct {
    Engine   SessionEngine
    Members  MemberDirectory
    Trainers TrainerDirectory
}

func NewTrainerSessionHandler(e SessionEngine, m MemberDirectory, t TrainerDirectory) *TrainerSessionHandler {
    return &TrainerSessionHandler{Engine: e, Members: m, Trainers: t}
}

type markReq struct {
    Status string  `json:"status"` // present | late
    Notes  *string `json:"notes"`
}

// ListSessions returns the trainer's roster for a date (default today),
// ordered by slot start, with member names attached.  Elapsed
// still-scheduled bookings are swept to absent first so the roster
// reflects the real attendance state.
func (h *TrainerSessionHandler) ListSessions(c echo.Context) error {
    trainer, err := h.currentTrainer(c)
    if err != nil {
        return trainerErrToJSON(c, err)
    }

    date := time.Now().UTC()
    if s := c.QueryParam("date"); s != "" {
        date, err = parseDate(s)
        if err != nil {
            return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid date, expected YYYY-MM-DD"})
        }
    }

    ctx, cancel := context.WithTimeout(c.Request().Context(), 5*time.Second)
    defer cancel()

    h.Engine.AutoMarkAbsent(ctx)

    bookings, err := h.Engine.ListBookingsForTrainerOnDate(ctx, trainer.ID, date)
    if err != nil {
        return c.JSON(http.StatusInternalServerError, echo.Map{"error": "query failed"})
    }

    memberIDs := make([]uint64, 0, len(bookings))
    for i := range bookings {
        memberIDs = append(memberIDs, bookings[i].MemberID)
    }
    names, err := h.Members.NamesByIDs(ctx, memberIDs)
    if err != nil {
        return c.JSON(http.StatusInternalServerError, echo.Map{"error": "query failed"})
    }

    out := make([]bookingResponse, 0, len(bookings))
    for i := range bookings {
        resp := toBookingResponse(&bookings[i])
        resp.MemberName = names[bookings[i].MemberID]
        out = append(out, resp)
    }
    return c.JSON(http.StatusOK, echo.Map{
        "date":     slot.DateOf(date).Format(dateLayout),
        "sessions": out,
    })
}

// MarkAttendance records present or late for one of the trainer's own
// bookings.  Marking only succeeds while the slot window is open.
func (h *TrainerSessionHandler) MarkAttendance(c echo.Context) error {
    trainer, err := h.currentTrainer(c)
    if err != nil {
        return trainerErrToJSON(c, err)
    }
    bookingID, err := strconv.ParseUint(c.Param("id"), 10, 64)
    if err != nil || bookingID == 0 {
        return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid booking id"})
    }
    var req markReq
    if err := c.Bind(&req); err != nil || strings.TrimSpace(req.Status) == "" {
        return c.JSON(http.StatusBadRequest, echo.Map{"error": "status required"})
    }

    ctx, cancel := context.WithTimeout(c.Request().Context(), 5*time.Second)
    defer cancel()

    current, err := h.Engine.GetBooking(ctx, bookingID)
    if err != nil {
        if errors.Is(err, scheduler.ErrNotFound) {
            return c.JSON(http.StatusNotFound, echo.Map{"error": "booking not found"})
        }
        return c.JSON(http.StatusInternalServerError, echo.Map{"error": "query failed"})
    }
    if current.TrainerID != trainer.ID {
        return c.JSON(http.StatusForbidden, echo.Map{"error": "not your session"})
    }

    b, err := h.Engine.MarkAttendance(ctx, bookingID, strings.ToLower(strings.TrimSpace(req.Status)), req.Notes)
    if err != nil {
        switch {
        case errors.Is(err, scheduler.ErrInvalidStatus):
            return c.JSON(http.StatusBadRequest, echo.Map{"error": "status must be present or late"})
        case errors.Is(err, scheduler.ErrOutsideWindow):
            return c.JSON(http.StatusUnprocessableEntity, echo.Map{"error": "slot window closed"})
        default:
            return c.JSON(http.StatusInternalServerError, echo.Map{"error": "mark failed"})
        }
    }

    go publishMarked(b)

    return c.JSON(http.StatusOK, toBookingResponse(b))
}

// CheckOutSession stamps the end of a session already marked present or
// late.  No window gate; trainers often record it after the slot ends.
func (h *TrainerSessionHandler) CheckOutSession(c echo.Context) error {
    trainer, err := h.currentTrainer(c)
    if err != nil {
        return trainerErrToJSON(c, err)
    }
    bookingID, err := strconv.ParseUint(c.Param("id"), 10, 64)
    if err != nil || bookingID == 0 {
        return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid booking id"})
    }

    ctx, cancel := context.WithTimeout(c.Request().Context(), 5*time.Second)
    defer cancel()

    current, err := h.Engine.GetBooking(ctx, bookingID)
    if err != nil {
        if errors.Is(err, scheduler.ErrNotFound) {
            return c.JSON(http.StatusNotFound, echo.Map{"error": "booking not found"})
        }
        return c.JSON(http.StatusInternalServerError, echo.Map{"error": "query failed"})
    }
    if current.TrainerID != trainer.ID {
        return c.JSON(http.StatusForbidden, echo.Map{"error": "not your session"})
    }

    b, err := h.Engine.CheckOut(ctx, bookingID)
    if err != nil {
        if errors.Is(err, scheduler.ErrInvalidStatus) {
            return c.JSON(http.StatusBadRequest, echo.Map{"error": "session not checked in"})
        }
        return c.JSON(http.StatusInternalServerError, echo.Map{"error": "checkout failed"})
    }
    return c.JSON(http.StatusOK, toBookingResponse(b))
}

var (
    errNoTrainerProfile = errors.New("no trainer profile")
    errUnauthenticated  = errors.New("unauthenticated")
)

func (h *TrainerSessionHandler) currentTrainer(c echo.Context) (*model.Trainer, error) {
    uid, err := getUserID(c)
    if err != nil {
        return nil, errUnauthenticated
    }
    ctx, cancel := context.WithTimeout(c.Request().Context(), 5*time.Second)
    defer cancel()
    t, err := h.Trainers.GetByUserID(ctx, uid)
    if err != nil {
        if err == sql.ErrNoRows {
            return nil, errNoTrainerProfile
        }
        return nil, err
    }
    return t, nil
}

func trainerErrToJSON(c echo.Context, err error) error {
    switch {
    case errors.Is(err, errUnauthenticated):
        return c.JSON(http.StatusUnauthorized, echo.Map{"error": "unauthorized"})
    case errors.Is(err, errNoTrainerProfile):
        return c.JSON(http.StatusForbidden, echo.Map{"error": "no trainer profile"})
    default:
        return c.JSON(http.StatusInternalServerError, echo.Map{"error": "query failed"})
    }
}

func publishMarked(b *model.Booking) {
    ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
    defer cancel()
    ev := queue.AttendanceMarkedEvent{
        BookingID: b.ID,
        MemberID:  b.MemberID,
        TrainerID: b.TrainerID,
        Date:      b.Date.Format(dateLayout),
        TimeSlot:  b.TimeSlot,
        Status:    b.Status,
        MarkedAt:  time.Now().UTC().Format(time.RFC3339),
    }
    if b.CheckInTime != nil {
        ev.CheckInTime = b.CheckInTime.UTC().Format(time.RFC3339)
    }
    _ = queue_publisher.PublishAttendanceMarked(ctx, ev)
}
