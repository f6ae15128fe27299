package middleware

import (
	"errors"
	"net/http"
	"strings"

	"github.com/labstack/echo/v4"

	"github.com/inkwell/content-platform/internal/api/metrics"
	"github.com/inkwell/content-platform/internal/core/domain"
	"github.com/inkwell/content-platform/internal/core/ports"
)

// HeaderSessionToken carries the re-signed token with its recomputed sliding
// expiry back to the client on every authenticated response.
const HeaderSessionToken = "X-Session-Token"

// ClaimsKey is the echo context key holding the revalidated *domain.SessionClaims.
const ClaimsKey = "session_claims"

// Session parses the bearer token and revalidates it against live account
// state on every request. An invalidated session is fatal for the request:
// it maps straight to 401, never to a silently degraded principal.
func Session(sessions ports.SessionService, audit ports.AuditRecorder) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			authHeader := c.Request().Header.Get("Authorization")
			if authHeader == "" {
				return echo.NewHTTPError(http.StatusUnauthorized, "missing authorization header")
			}

			parts := strings.SplitN(authHeader, " ", 2)
			if len(parts) != 2 || !strings.EqualFold(parts[0], "bearer") {
				return echo.NewHTTPError(http.StatusUnauthorized, "invalid authorization header")
			}

			claims, err := sessions.Parse(parts[1])
			if err != nil {
				return echo.NewHTTPError(http.StatusUnauthorized, "invalid token")
			}

			token, fresh, err := sessions.Revalidate(c.Request().Context(), claims)
			if err != nil {
				if errors.Is(err, domain.ErrSessionInvalidated) {
					metrics.SessionRevalidationsTotal.WithLabelValues("invalidated").Inc()
					audit.Record(domain.AuditEvent{
						UserID:     claims.AccountID,
						Action:     domain.AuditSessionRevoked,
						Entity:     "session",
						Metadata:   map[string]string{"path": c.Path()},
						Importance: domain.ImportanceStandard,
					})
					return echo.NewHTTPError(http.StatusUnauthorized, "session invalidated")
				}
				metrics.SessionRevalidationsTotal.WithLabelValues("error").Inc()
				return err
			}
			metrics.SessionRevalidationsTotal.WithLabelValues("valid").Inc()

			c.Set(ClaimsKey, fresh)
			c.Response().Header().Set(HeaderSessionToken, token)

			return next(c)
		}
	}
}
