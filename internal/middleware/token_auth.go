package middleware

import (
	"context"
	"errors"
	"net/http"
	"strings"

	"github.com/labstack/echo/v4"
)

// UserIDKey is the echo context key holding the authenticated user id
const UserIDKey = "user_id"

// TokenKey is the echo context key holding the raw bearer token
const TokenKey = "auth_token"

// Authenticator resolves a bearer token to a user id
type Authenticator interface {
	Authenticate(ctx context.Context, token string) (uint, error)
}

var errMalformedHeader = errors.New("invalid Authorization header format")

// TokenAuthMiddleware resolves "Token <t>" or "Bearer <t>" headers. Requests
// without a header pass through anonymously; a bad token is rejected.
func TokenAuthMiddleware(auth Authenticator) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			authHeader := c.Request().Header.Get("Authorization")
			if authHeader == "" {
				return next(c)
			}

			token, err := parseAuthorization(authHeader)
			if err != nil {
				return echo.NewHTTPError(http.StatusUnauthorized, err.Error())
			}

			userID, err := auth.Authenticate(c.Request().Context(), token)
			if err != nil {
				return err
			}

			c.Set(UserIDKey, userID)
			c.Set(TokenKey, token)
			return next(c)
		}
	}
}

// RequireAuth rejects requests that TokenAuthMiddleware left anonymous
func RequireAuth(next echo.HandlerFunc) echo.HandlerFunc {
	return func(c echo.Context) error {
		if id, ok := c.Get(UserIDKey).(uint); !ok || id == 0 {
			return echo.NewHTTPError(http.StatusUnauthorized, "Authentication credentials were not provided")
		}
		return next(c)
	}
}

func parseAuthorization(header string) (string, error) {
	parts := strings.Fields(header)
	if len(parts) != 2 {
		return "", errMalformedHeader
	}
	switch strings.ToLower(parts[0]) {
	case "token", "bearer":
		return parts[1], nil
	default:
		return "", errMalformedHeader
	}
}
