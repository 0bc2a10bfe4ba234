package middleware

// identity.go holds helpers shared by the rate-limit and cache key
// builders.  They read the identity that JWTAuth stored in the context and
// fall back to "anon" for unauthenticated requests.

import (
    "fmt"

    "github.com/labstack/echo/v4"
)

// currentUserID renders the authenticated user id as a string for use
// inside Redis keys.  JWT numeric claims arrive as float64; the JWTAuth
// middleware stores them untyped, so normalize whatever is present.
func currentUserID(c echo.Context) string {
    switch v := c.Get("user_id").(type) {
    case nil:
        return "anon"
    case string:
        if v == "" {
            return "anon"
        }
        return v
    case float64:
        return fmt.Sprintf("%.0f", v)
    default:
        return fmt.Sprint(v)
    }
}
