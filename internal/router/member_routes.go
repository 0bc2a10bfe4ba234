package router

import (
    "github.com/labstack/echo/v4"

    "github.com/gymtrack/session-scheduler/internal/handler"
    "github.com/gymtrack/session-scheduler/internal/middleware"
)

// RegisterMember registers member-scoped endpoints under /v1.  All
// routes require a valid JWT and the MEMBER role.  The cache middleware
// is applied only to the catalog views; booking responses and session
// lists are per-user and must never be served from a shared cache.
func RegisterMember(e *echo.Echo, h *handler.MemberSessionHandler, jwtSecret string, cache echo.MiddlewareFunc) {
    g := e.Group(
        "/v1",
        middleware.JWTAuth(jwtSecret),
        middleware.RequireRole("MEMBER"),
    )
    g.GET("/slots", h.ListSlots, cache)
    g.GET("/trainers", h.ListTrainers, cache)
    g.POST("/sessions", h.BookSession)
    g.PUT("/sessions/:id/reschedule", h.RescheduleSession)
    g.GET("/my-sessions", h.ListMySessions)
}
