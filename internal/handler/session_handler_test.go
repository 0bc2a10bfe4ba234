package handler

import (
    "context"
    "database/sql"
    "encoding/json"
    "net/http"
    "net/http/httptest"
    "strings"
    "testing"
    "time"

    "github.com/labstack/echo/v4"
    "github.com/stretchr/testify/assert"
    "github.com/stretchr/testify/require"

    "github.com/gymtrack/session-scheduler/internal/model"
    "github.com/gymtrack/session-scheduler/internal/scheduler"
    "github.com/gymtrack/session-scheduler/internal/slot"
)

// ----- fakes -----

type fakeEngine struct {
    createErr     error
    created       *model.Booking
    rescheduleErr error
    rescheduled   *model.Booking
    markErr       error
    marked        *model.Booking
    checkoutErr   error
    checkedOut    *model.Booking
    byID          map[uint64]*model.Booking
    trainerList   []model.Booking
    memberList    []model.Booking
    sweeps        int
}

func (f *fakeEngine) CreateBooking(_ context.Context, memberID, trainerID uint64, date time.Time, label string, workoutType *string) (*model.Booking, error) {
    if f.createErr != nil {
        return nil, f.createErr
    }
    if f.created != nil {
        return f.created, nil
    }
    return &model.Booking{
        ID: 1, MemberID: memberID, TrainerID: trainerID,
        Date: slot.DateOf(date), TimeSlot: label,
        Status: model.StatusScheduled, WorkoutType: workoutType,
    }, nil
}

func (f *fakeEngine) RescheduleBooking(context.Context, uint64, string) (*model.Booking, error) {
    return f.rescheduled, f.rescheduleErr
}

func (f *fakeEngine) MarkAttendance(context.Context, uint64, string, *string) (*model.Booking, error) {
    return f.marked, f.markErr
}

func (f *fakeEngine) CheckOut(context.Context, uint64) (*model.Booking, error) {
    return f.checkedOut, f.checkoutErr
}

func (f *fakeEngine) GetBooking(_ context.Context, id uint64) (*model.Booking, error) {
    b, ok := f.byID[id]
    if !ok {
        return nil, scheduler.ErrNotFound
    }
    return b, nil
}

func (f *fakeEngine) AutoMarkAbsent(context.Context) int {
    f.sweeps++
    return 0
}

func (f *fakeEngine) ListBookingsForTrainerOnDate(context.Context, uint64, time.Time) ([]model.Booking, error) {
    return f.trainerList, nil
}

func (f *fakeEngine) ListBookingsForMember(context.Context, uint64, int) ([]model.Booking, error) {
    return f.memberList, nil
}

type fakeMembers struct {
    byUser map[uint64]*model.Member
    names  map[uint64]string
}

func (f *fakeMembers) GetByUserID(_ context.Context, userID uint64) (*model.Member, error) {
    m, ok := f.byUser[userID]
    if !ok {
        return nil, sql.ErrNoRows
    }
    return m, nil
}

func (f *fakeMembers) NamesByIDs(_ context.Context, ids []uint64) (map[uint64]string, error) {
    out := make(map[uint64]string, len(ids))
    for _, id := range ids {
        if n, ok := f.names[id]; ok {
            out[id] = n
        }
    }
    return out, nil
}

type fakeTrainers struct {
    byID   map[uint64]*model.Trainer
    byUser map[uint64]*model.Trainer
    active []model.Trainer
}

func (f *fakeTrainers) GetByID(_ context.Context, id uint64) (*model.Trainer, error) {
    t, ok := f.byID[id]
    if !ok {
        return nil, sql.ErrNoRows
    }
    return t, nil
}

func (f *fakeTrainers) GetByUserID(_ context.Context, userID uint64) (*model.Trainer, error) {
    t, ok := f.byUser[userID]
    if !ok {
        return nil, sql.ErrNoRows
    }
    return t, nil
}

func (f *fakeTrainers) ListActive(context.Context) ([]model.Trainer, error) {
    return f.active, nil
}

// ----- helpers -----

func doJSON(method, path, body string, userID uint64, h echo.HandlerFunc, params map[string]string) *httptest.ResponseRecorder {
    e := echo.New()
    var reader *strings.Reader
    if body == "" {
        reader = strings.NewReader("{}")
    } else {
        reader = strings.NewReader(body)
    }
    req := httptest.NewRequest(method, path, reader)
    req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
    rec := httptest.NewRecorder()
    c := e.NewContext(req, rec)
    if userID != 0 {
        c.Set("user_id", float64(userID)) // JWT claims decode numbers as float64
    }
    for k, v := range params {
        c.SetParamNames(k)
        c.SetParamValues(v)
    }
    _ = h(c)
    return rec
}

func activeMember(id, userID uint64, name string) *model.Member {
    return &model.Member{ID: id, UserID: userID, FullName: name, MembershipStatus: model.MembershipActive}
}

func activeTrainer(id, userID uint64, name string) *model.Trainer {
    return &model.Trainer{ID: id, UserID: userID, FullName: name, Specialty: "strength", IsActive: true}
}

const tomorrowFmt = "2006-01-02"

func tomorrow() string {
    return time.Now().UTC().AddDate(0, 0, 1).Format(tomorrowFmt)
}

// ----- member endpoints -----

func TestListSlots(t *testing.T) {
    h := NewMemberSessionHandler(&fakeEngine{}, &fakeMembers{}, &fakeTrainers{})
    rec := doJSON(http.MethodGet, "/v1/slots", "", 0, h.ListSlots, nil)

    require.Equal(t, http.StatusOK, rec.Code)
    var body struct {
        Slots []string `json:"slots"`
    }
    require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
    assert.Equal(t, slot.Labels(), body.Slots)
}

func TestListTrainers(t *testing.T) {
    trainers := &fakeTrainers{active: []model.Trainer{*activeTrainer(3, 30, "Dana Cole")}}
    h := NewMemberSessionHandler(&fakeEngine{}, &fakeMembers{}, trainers)
    rec := doJSON(http.MethodGet, "/v1/trainers", "", 0, h.ListTrainers, nil)

    require.Equal(t, http.StatusOK, rec.Code)
    var body struct {
        Trainers []trainerPart `json:"trainers"`
    }
    require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
    require.Len(t, body.Trainers, 1)
    assert.Equal(t, "Dana Cole", body.Trainers[0].FullName)
}

func TestBookSession(t *testing.T) {
    members := &fakeMembers{byUser: map[uint64]*model.Member{10: activeMember(1, 10, "Ada Park")}}
    trainers := &fakeTrainers{byID: map[uint64]*model.Trainer{3: activeTrainer(3, 30, "Dana Cole")}}

    t.Run("success returns 201", func(t *testing.T) {
        h := NewMemberSessionHandler(&fakeEngine{}, members, trainers)
        body := `{"trainer_id":3,"date":"` + tomorrow() + `","time_slot":"8:00 AM - 10:00 AM"}`
        rec := doJSON(http.MethodPost, "/v1/sessions", body, 10, h.BookSession, nil)

        require.Equal(t, http.StatusCreated, rec.Code)
        var resp bookingResponse
        require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
        assert.Equal(t, uint64(1), resp.MemberID)
        assert.Equal(t, uint64(3), resp.TrainerID)
        assert.Equal(t, model.StatusScheduled, resp.Status)
    })

    t.Run("missing fields rejected", func(t *testing.T) {
        h := NewMemberSessionHandler(&fakeEngine{}, members, trainers)
        rec := doJSON(http.MethodPost, "/v1/sessions", `{"trainer_id":3}`, 10, h.BookSession, nil)
        assert.Equal(t, http.StatusBadRequest, rec.Code)
    })

    t.Run("bad date rejected", func(t *testing.T) {
        h := NewMemberSessionHandler(&fakeEngine{}, members, trainers)
        body := `{"trainer_id":3,"date":"june 10","time_slot":"8:00 AM - 10:00 AM"}`
        rec := doJSON(http.MethodPost, "/v1/sessions", body, 10, h.BookSession, nil)
        assert.Equal(t, http.StatusBadRequest, rec.Code)
    })

    t.Run("no member profile is forbidden", func(t *testing.T) {
        h := NewMemberSessionHandler(&fakeEngine{}, &fakeMembers{byUser: map[uint64]*model.Member{}}, trainers)
        body := `{"trainer_id":3,"date":"` + tomorrow() + `","time_slot":"8:00 AM - 10:00 AM"}`
        rec := doJSON(http.MethodPost, "/v1/sessions", body, 10, h.BookSession, nil)
        assert.Equal(t, http.StatusForbidden, rec.Code)
    })

    t.Run("suspended membership is forbidden", func(t *testing.T) {
        suspended := &fakeMembers{byUser: map[uint64]*model.Member{
            10: {ID: 1, UserID: 10, FullName: "Ada Park", MembershipStatus: model.MembershipSuspended},
        }}
        h := NewMemberSessionHandler(&fakeEngine{}, suspended, trainers)
        body := `{"trainer_id":3,"date":"` + tomorrow() + `","time_slot":"8:00 AM - 10:00 AM"}`
        rec := doJSON(http.MethodPost, "/v1/sessions", body, 10, h.BookSession, nil)
        assert.Equal(t, http.StatusForbidden, rec.Code)
    })

    t.Run("unknown trainer is 404", func(t *testing.T) {
        h := NewMemberSessionHandler(&fakeEngine{}, members, trainers)
        body := `{"trainer_id":99,"date":"` + tomorrow() + `","time_slot":"8:00 AM - 10:00 AM"}`
        rec := doJSON(http.MethodPost, "/v1/sessions", body, 10, h.BookSession, nil)
        assert.Equal(t, http.StatusNotFound, rec.Code)
    })

    t.Run("inactive trainer is 400", func(t *testing.T) {
        inactive := &fakeTrainers{byID: map[uint64]*model.Trainer{
            4: {ID: 4, UserID: 40, FullName: "Gone Guy", IsActive: false},
        }}
        h := NewMemberSessionHandler(&fakeEngine{}, members, inactive)
        body := `{"trainer_id":4,"date":"` + tomorrow() + `","time_slot":"8:00 AM - 10:00 AM"}`
        rec := doJSON(http.MethodPost, "/v1/sessions", body, 10, h.BookSession, nil)
        assert.Equal(t, http.StatusBadRequest, rec.Code)
    })

    t.Run("engine conflicts map to 409", func(t *testing.T) {
        for _, engErr := range []error{scheduler.ErrMemberAlreadyBooked, scheduler.ErrSlotTaken} {
            h := NewMemberSessionHandler(&fakeEngine{createErr: engErr}, members, trainers)
            body := `{"trainer_id":3,"date":"` + tomorrow() + `","time_slot":"8:00 AM - 10:00 AM"}`
            rec := doJSON(http.MethodPost, "/v1/sessions", body, 10, h.BookSession, nil)
            assert.Equal(t, http.StatusConflict, rec.Code)
        }
    })

    t.Run("engine validation maps to 400", func(t *testing.T) {
        for _, engErr := range []error{slot.ErrInvalidSlot, scheduler.ErrPastSlot} {
            h := NewMemberSessionHandler(&fakeEngine{createErr: engErr}, members, trainers)
            body := `{"trainer_id":3,"date":"` + tomorrow() + `","time_slot":"8:00 AM - 10:00 AM"}`
            rec := doJSON(http.MethodPost, "/v1/sessions", body, 10, h.BookSession, nil)
            assert.Equal(t, http.StatusBadRequest, rec.Code)
        }
    })
}

func TestRescheduleSession(t *testing.T) {
    date := time.Date(2025, 6, 10, 0, 0, 0, 0, time.UTC)
    members := &fakeMembers{byUser: map[uint64]*model.Member{10: activeMember(1, 10, "Ada Park")}}
    trainers := &fakeTrainers{byID: map[uint64]*model.Trainer{3: activeTrainer(3, 30, "Dana Cole")}}
    current := &model.Booking{
        ID: 7, MemberID: 1, TrainerID: 3, Date: date,
        TimeSlot: "8:00 AM - 10:00 AM", Status: model.StatusScheduled,
    }

    t.Run("success returns moved booking", func(t *testing.T) {
        moved := *current
        moved.TimeSlot = "10:00 AM - 12:00 PM"
        eng := &fakeEngine{byID: map[uint64]*model.Booking{7: current}, rescheduled: &moved}
        h := NewMemberSessionHandler(eng, members, trainers)
        rec := doJSON(http.MethodPut, "/v1/sessions/7/reschedule",
            `{"time_slot":"10:00 AM - 12:00 PM"}`, 10, h.RescheduleSession, map[string]string{"id": "7"})

        require.Equal(t, http.StatusOK, rec.Code)
        var resp bookingResponse
        require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
        assert.Equal(t, "10:00 AM - 12:00 PM", resp.TimeSlot)
    })

    t.Run("unknown booking is 404", func(t *testing.T) {
        eng := &fakeEngine{byID: map[uint64]*model.Booking{}}
        h := NewMemberSessionHandler(eng, members, trainers)
        rec := doJSON(http.MethodPut, "/v1/sessions/99/reschedule",
            `{"time_slot":"10:00 AM - 12:00 PM"}`, 10, h.RescheduleSession, map[string]string{"id": "99"})
        assert.Equal(t, http.StatusNotFound, rec.Code)
    })

    t.Run("someone else's booking is forbidden", func(t *testing.T) {
        other := *current
        other.MemberID = 2
        eng := &fakeEngine{byID: map[uint64]*model.Booking{7: &other}}
        h := NewMemberSessionHandler(eng, members, trainers)
        rec := doJSON(http.MethodPut, "/v1/sessions/7/reschedule",
            `{"time_slot":"10:00 AM - 12:00 PM"}`, 10, h.RescheduleSession, map[string]string{"id": "7"})
        assert.Equal(t, http.StatusForbidden, rec.Code)
    })

    t.Run("same slot is a 200 no-op", func(t *testing.T) {
        eng := &fakeEngine{byID: map[uint64]*model.Booking{7: current}, rescheduleErr: scheduler.ErrSameSlot}
        h := NewMemberSessionHandler(eng, members, trainers)
        rec := doJSON(http.MethodPut, "/v1/sessions/7/reschedule",
            `{"time_slot":"8:00 AM - 10:00 AM"}`, 10, h.RescheduleSession, map[string]string{"id": "7"})

        require.Equal(t, http.StatusOK, rec.Code)
        var resp bookingResponse
        require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
        assert.Equal(t, "8:00 AM - 10:00 AM", resp.TimeSlot)
    })

    t.Run("target conflict is 409", func(t *testing.T) {
        eng := &fakeEngine{byID: map[uint64]*model.Booking{7: current}, rescheduleErr: scheduler.ErrSlotTaken}
        h := NewMemberSessionHandler(eng, members, trainers)
        rec := doJSON(http.MethodPut, "/v1/sessions/7/reschedule",
            `{"time_slot":"10:00 AM - 12:00 PM"}`, 10, h.RescheduleSession, map[string]string{"id": "7"})
        assert.Equal(t, http.StatusConflict, rec.Code)
    })
}

func TestListMySessions(t *testing.T) {
    date := time.Date(2025, 6, 10, 0, 0, 0, 0, time.UTC)
    members := &fakeMembers{byUser: map[uint64]*model.Member{10: activeMember(1, 10, "Ada Park")}}
    eng := &fakeEngine{memberList: []model.Booking{
        {ID: 7, MemberID: 1, TrainerID: 3, Date: date, TimeSlot: "8:00 AM - 10:00 AM", Status: model.StatusPresent},
    }}
    h := NewMemberSessionHandler(eng, members, &fakeTrainers{})
    rec := doJSON(http.MethodGet, "/v1/my-sessions", "", 10, h.ListMySessions, nil)

    require.Equal(t, http.StatusOK, rec.Code)
    assert.Equal(t, 1, eng.sweeps, "listing should trigger the absence sweep")
    var body struct {
        Sessions []bookingResponse `json:"sessions"`
    }
    require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
    require.Len(t, body.Sessions, 1)
    assert.Equal(t, "2025-06-10", body.Sessions[0].Date)
}

// ----- trainer endpoints -----

func TestTrainerListSessions(t *testing.T) {
    date := time.Date(2025, 6, 10, 0, 0, 0, 0, time.UTC)
    trainers := &fakeTrainers{byUser: map[uint64]*model.Trainer{30: activeTrainer(3, 30, "Dana Cole")}}
    members := &fakeMembers{names: map[uint64]string{1: "Ada Park"}}
    eng := &fakeEngine{trainerList: []model.Booking{
        {ID: 7, MemberID: 1, TrainerID: 3, Date: date, TimeSlot: "8:00 AM - 10:00 AM", Status: model.StatusScheduled},
    }}
    h := NewTrainerSessionHandler(eng, members, trainers)
    rec := doJSON(http.MethodGet, "/v1/trainer/sessions?date=2025-06-10", "", 30, h.ListSessions, nil)

    require.Equal(t, http.StatusOK, rec.Code)
    assert.Equal(t, 1, eng.sweeps)
    var body struct {
        Date     string            `json:"date"`
        Sessions []bookingResponse `json:"sessions"`
    }
    require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
    assert.Equal(t, "2025-06-10", body.Date)
    require.Len(t, body.Sessions, 1)
    assert.Equal(t, "Ada Park", body.Sessions[0].MemberName)
}

func TestTrainerListSessionsNoProfile(t *testing.T) {
    h := NewTrainerSessionHandler(&fakeEngine{}, &fakeMembers{}, &fakeTrainers{byUser: map[uint64]*model.Trainer{}})
    rec := doJSON(http.MethodGet, "/v1/trainer/sessions", "", 30, h.ListSessions, nil)
    assert.Equal(t, http.StatusForbidden, rec.Code)
}

func TestMarkAttendance(t *testing.T) {
    date := time.Date(2025, 6, 10, 0, 0, 0, 0, time.UTC)
    trainers := &fakeTrainers{byUser: map[uint64]*model.Trainer{30: activeTrainer(3, 30, "Dana Cole")}}
    current := &model.Booking{
        ID: 7, MemberID: 1, TrainerID: 3, Date: date,
        TimeSlot: "8:00 AM - 10:00 AM", Status: model.StatusScheduled,
    }

    t.Run("success returns marked booking", func(t *testing.T) {
        now := time.Date(2025, 6, 10, 8, 30, 0, 0, time.UTC)
        marked := *current
        marked.Status = model.StatusPresent
        marked.CheckInTime = &now
        eng := &fakeEngine{byID: map[uint64]*model.Booking{7: current}, marked: &marked}
        h := NewTrainerSessionHandler(eng, &fakeMembers{}, trainers)
        rec := doJSON(http.MethodPost, "/v1/sessions/7/attendance",
            `{"status":"present"}`, 30, h.MarkAttendance, map[string]string{"id": "7"})

        require.Equal(t, http.StatusOK, rec.Code)
        var resp bookingResponse
        require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
        assert.Equal(t, model.StatusPresent, resp.Status)
        require.NotNil(t, resp.CheckInTime)
    })

    t.Run("someone else's session is forbidden", func(t *testing.T) {
        other := *current
        other.TrainerID = 4
        eng := &fakeEngine{byID: map[uint64]*model.Booking{7: &other}}
        h := NewTrainerSessionHandler(eng, &fakeMembers{}, trainers)
        rec := doJSON(http.MethodPost, "/v1/sessions/7/attendance",
            `{"status":"present"}`, 30, h.MarkAttendance, map[string]string{"id": "7"})
        assert.Equal(t, http.StatusForbidden, rec.Code)
    })

    t.Run("bad status is 400", func(t *testing.T) {
        eng := &fakeEngine{byID: map[uint64]*model.Booking{7: current}, markErr: scheduler.ErrInvalidStatus}
        h := NewTrainerSessionHandler(eng, &fakeMembers{}, trainers)
        rec := doJSON(http.MethodPost, "/v1/sessions/7/attendance",
            `{"status":"absent"}`, 30, h.MarkAttendance, map[string]string{"id": "7"})
        assert.Equal(t, http.StatusBadRequest, rec.Code)
    })

    t.Run("closed window is 422", func(t *testing.T) {
        eng := &fakeEngine{byID: map[uint64]*model.Booking{7: current}, markErr: scheduler.ErrOutsideWindow}
        h := NewTrainerSessionHandler(eng, &fakeMembers{}, trainers)
        rec := doJSON(http.MethodPost, "/v1/sessions/7/attendance",
            `{"status":"present"}`, 30, h.MarkAttendance, map[string]string{"id": "7"})
        assert.Equal(t, http.StatusUnprocessableEntity, rec.Code)
    })

    t.Run("unknown booking is 404", func(t *testing.T) {
        eng := &fakeEngine{byID: map[uint64]*model.Booking{}}
        h := NewTrainerSessionHandler(eng, &fakeMembers{}, trainers)
        rec := doJSON(http.MethodPost, "/v1/sessions/99/attendance",
            `{"status":"present"}`, 30, h.MarkAttendance, map[string]string{"id": "99"})
        assert.Equal(t, http.StatusNotFound, rec.Code)
    })
}

func TestCheckOutSession(t *testing.T) {
    date := time.Date(2025, 6, 10, 0, 0, 0, 0, time.UTC)
    trainers := &fakeTrainers{byUser: map[uint64]*model.Trainer{30: activeTrainer(3, 30, "Dana Cole")}}
    checkIn := time.Date(2025, 6, 10, 8, 5, 0, 0, time.UTC)
    current := &model.Booking{
        ID: 7, MemberID: 1, TrainerID: 3, Date: date,
        TimeSlot: "8:00 AM - 10:00 AM", Status: model.StatusPresent, CheckInTime: &checkIn,
    }

    t.Run("success stamps checkout", func(t *testing.T) {
        out := time.Date(2025, 6, 10, 9, 55, 0, 0, time.UTC)
        done := *current
        done.CheckOutTime = &out
        eng := &fakeEngine{byID: map[uint64]*model.Booking{7: current}, checkedOut: &done}
        h := NewTrainerSessionHandler(eng, &fakeMembers{}, trainers)
        rec := doJSON(http.MethodPost, "/v1/sessions/7/checkout", "", 30, h.CheckOutSession, map[string]string{"id": "7"})

        require.Equal(t, http.StatusOK, rec.Code)
        var resp bookingResponse
        require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
        require.NotNil(t, resp.CheckOutTime)
    })

    t.Run("not checked in is 400", func(t *testing.T) {
        eng := &fakeEngine{byID: map[uint64]*model.Booking{7: current}, checkoutErr: scheduler.ErrInvalidStatus}
        h := NewTrainerSessionHandler(eng, &fakeMembers{}, trainers)
        rec := doJSON(http.MethodPost, "/v1/sessions/7/checkout", "", 30, h.CheckOutSession, map[string]string{"id": "7"})
        assert.Equal(t, http.StatusBadRequest, rec.Code)
    })
}
