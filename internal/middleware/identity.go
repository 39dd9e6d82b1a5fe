package middleware

import (
	"strconv"

	"github.com/labstack/echo/v4"
)

// Context keys set by JWTAuth.
const (
	userIDKey = "user_id"
	roleKey   = "role"
)

// Roles carried in the token's role claim.
const (
	RoleAdmin  = "ADMIN"
	RoleSeller = "SELLER"
)

// UserID returns the authenticated subject set by JWTAuth.
func UserID(c echo.Context) (uint64, bool) {
	id, ok := c.Get(userIDKey).(uint64)
	return id, ok && id != 0
}

// Role returns the authenticated role set by JWTAuth, or "".
func Role(c echo.Context) string {
	r, _ := c.Get(roleKey).(string)
	return r
}

// rateKeyUser identifies the caller in rate limit keys.
func rateKeyUser(c echo.Context) string {
	if id, ok := UserID(c); ok {
		return strconv.FormatUint(id, 10)
	}
	return "anon"
}
