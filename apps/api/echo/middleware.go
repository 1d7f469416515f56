package echoapi

import (
	"strings"

	"github.com/labstack/echo/v4"
)

const contextSessionKey = "session"

// sessionMiddleware requires a bearer token and keeps it in the context. The token stays opaque:
// the collaborator validates it on every call.
func sessionMiddleware(next echo.HandlerFunc) echo.HandlerFunc {
	return func(ctx echo.Context) error {
		auth := ctx.Request().Header.Get(echo.HeaderAuthorization)
		if len(auth) <= 7 || !strings.EqualFold(auth[:7], "bearer ") {
			return errMissingSession
		}
		ctx.Set(contextSessionKey, auth[7:])
		return next(ctx)
	}
}

func getContextSession(ctx echo.Context) string {
	token, _ := ctx.Get(contextSessionKey).(string)
	return token
}
