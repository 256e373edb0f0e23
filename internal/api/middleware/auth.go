package middleware

import (
	"context"
	"errors"
	"strings"

	"github.com/labstack/echo/v4"
	"github.com/rs/zerolog"

	"github.com/cargolive/cargolive-api/internal/core/domain"
	"github.com/cargolive/cargolive-api/internal/core/ports"
	"github.com/cargolive/cargolive-api/internal/pkg/metrics"
)

type userCtxKey struct{}

// echoUserKey is the echo.Context key the authenticated user is stored under.
const echoUserKey = "auth.user"

// WithUser returns a copy of ctx carrying user.
func WithUser(ctx context.Context, user *domain.User) context.Context {
	return context.WithValue(ctx, userCtxKey{}, user)
}

// UserFromContext returns the user stored by RequireAuth, if any.
func UserFromContext(ctx context.Context) (*domain.User, bool) {
	user, ok := ctx.Value(userCtxKey{}).(*domain.User)
	return user, ok && user != nil
}

// CurrentUser returns the user stored on the echo context by RequireAuth.
func CurrentUser(c echo.Context) (*domain.User, bool) {
	user, ok := c.Get(echoUserKey).(*domain.User)
	return user, ok && user != nil
}

// RequireAuth validates the bearer token and injects the resolved user into
// both the request context and the echo context. Every rejection renders as
// 401 {"error":"unauthorized"}; the reason is only logged.
func RequireAuth(auth ports.Authenticator, log zerolog.Logger) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			token, reason := bearerToken(c.Request().Header.Get(echo.HeaderAuthorization))
			if reason != "" {
				return reject(c, log, reason, nil)
			}

			user, err := auth.Authenticate(c.Request().Context(), token)
			if err != nil {
				if !errors.Is(err, domain.ErrUnauthorized) {
					return err
				}
				return reject(c, log, rejectionReason(err), err)
			}

			c.SetRequest(c.Request().WithContext(WithUser(c.Request().Context(), user)))
			c.Set(echoUserKey, user)
			return next(c)
		}
	}
}

func bearerToken(header string) (token, reason string) {
	if header == "" {
		return "", "missing_header"
	}
	scheme, token, ok := strings.Cut(header, " ")
	token = strings.TrimSpace(token)
	if !ok || !strings.EqualFold(scheme, "bearer") || token == "" {
		return "", "malformed_header"
	}
	return token, ""
}

func rejectionReason(err error) string {
	switch {
	case errors.Is(err, domain.ErrTokenExpired):
		return "expired"
	case errors.Is(err, domain.ErrUserNotFound):
		return "unknown_user"
	default:
		return "invalid"
	}
}

func reject(c echo.Context, log zerolog.Logger, reason string, cause error) error {
	metrics.GuardRejectionsTotal.WithLabelValues(reason).Inc()
	log.Debug().
		Err(cause).
		Str("reason", reason).
		Str("path", c.Path()).
		Msg("request rejected by auth guard")
	return domain.ErrUnauthorized
}
