package handler

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/inkwell/content-platform/internal/api/middleware"
	"github.com/inkwell/content-platform/internal/core/domain"
)

// ctxClaims extracts the revalidated session claims injected by the Session
// middleware. Their presence proves the middleware ran; a handler reached
// without them is a routing mistake, answered with 401 rather than a panic.
func ctxClaims(c echo.Context) (*domain.SessionClaims, error) {
	claims, ok := c.Get(middleware.ClaimsKey).(*domain.SessionClaims)
	if !ok || claims == nil {
		return nil, echo.NewHTTPError(http.StatusUnauthorized, "missing authentication claims")
	}
	return claims, nil
}
