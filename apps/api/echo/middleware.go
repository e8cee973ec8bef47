package echoapi

import (
	"crypto/subtle"

	"github.com/labstack/echo/v4"
	"github.com/pkg/errors"

	"github.com/bukhari/academy/core"
)

const apiKeyHeader = "X-API-Key"

// adminMiddleware restricts a route to the ADMIN PORTAL.
func adminMiddleware() echo.MiddlewareFunc {
	return roleMiddleware(func(claims Claims) bool { return claims.IsAdmin })
}

// staffMiddleware restricts a route to admins and teachers.
func staffMiddleware() echo.MiddlewareFunc {
	return roleMiddleware(func(claims Claims) bool { return claims.IsAdmin || claims.IsTeacher })
}

// teacherMiddleware restricts a route to the TEACHER PORTAL.
func teacherMiddleware() echo.MiddlewareFunc {
	return roleMiddleware(func(claims Claims) bool { return claims.IsTeacher })
}

// studentMiddleware restricts a route to the STUDENT PORTAL.
func studentMiddleware() echo.MiddlewareFunc {
	return roleMiddleware(func(claims Claims) bool { return claims.IsStudent })
}

func roleMiddleware(allowed func(claims Claims) bool) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(ctx echo.Context) error {
			claims, err := getContextClaims(ctx)
			if err != nil {
				return errors.Wrap(err, "getting context claims")
			}
			if allowed(claims) {
				return next(ctx)
			}
			return errHttpForbidden
		}
	}
}

// selfOrStaffMiddleware lets a student at their own `:id` sub-resources;
// admins and teachers can see everyone's.
func selfOrStaffMiddleware() echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(ctx echo.Context) error {
			claims, err := getContextClaims(ctx)
			if err != nil {
				return errors.Wrap(err, "getting context claims")
			}
			if claims.IsAdmin || claims.IsTeacher || ctx.Param("id") == claims.Subject {
				return next(ctx)
			}
			return errHttpForbidden
		}
	}
}

// apiKeyMiddleware guards the sync endpoint with the shared secret.
// An empty configured secret never matches; the gate stays shut rather
// than open when sync.apiKey is missing.
func apiKeyMiddleware(conf *core.Config) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(ctx echo.Context) error {
			secret := conf.Sync.APIKey
			key := ctx.Request().Header.Get(apiKeyHeader)
			if secret == "" || subtle.ConstantTimeCompare([]byte(key), []byte(secret)) != 1 {
				return errHttpForbidden
			}
			return next(ctx)
		}
	}
}
