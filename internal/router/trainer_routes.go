package router

import (
    "github.com/labstack/echo/v4"

    "github.com/gymtrack/session-scheduler/internal/handler"
    "github.com/gymtrack/session-scheduler/internal/middleware"
)

// RegisterTrainer registers trainer-scoped endpoints under /v1.  All
// routes require a valid JWT and the TRAINER role.
func RegisterTrainer(e *echo.Echo, h *handler.TrainerSessionHandler, jwtSecret string) {
    g := e.Group(
        "/v1",
        middleware.JWTAuth(jwtSecret),
        middleware.RequireRole("TRAINER"),
    )
    g.GET("/trainer/sessions", h.ListSessions)
    g.POST("/sessions/:id/attendance", h.MarkAttendance)
    g.POST("/sessions/:id/checkout", h.CheckOutSession)
}
