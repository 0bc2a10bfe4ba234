// Package router wires handlers and middleware onto the echo instance.
package router

import (
    "github.com/labstack/echo/v4"

    "github.com/gymtrack/session-scheduler/internal/handler"
    "github.com/gymtrack/session-scheduler/internal/middleware"
)

// RegisterRoutes registers routes that require no authentication.
func RegisterRoutes(e *echo.Echo) {
    e.GET("/healthz", handler.Health)
}

// RegisterAuth registers the account endpoints.  Register, login and
// refresh live under /v1/auth without a session; /v1/me and /v1/logout
// require a valid access token.
func RegisterAuth(e *echo.Echo, a *handler.AuthHandler, jwtSecret string) {
    g := e.Group("/v1/auth")
    g.POST("/register", a.Register)
    g.POST("/login", a.Login)
    g.POST("/refresh", a.Refresh)
    // Logout with a refresh token in the body works without a JWT.
    g.POST("/logout", a.Logout)

    auth := e.Group("/v1", middleware.JWTAuth(jwtSecret))
    auth.GET("/me", a.Me)
    auth.POST("/logout", a.Logout)
}
