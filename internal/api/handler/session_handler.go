package handler

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/inkwell/content-platform/internal/api/metrics"
	"github.com/inkwell/content-platform/internal/api/middleware"
	"github.com/inkwell/content-platform/internal/core/domain"
	"github.com/inkwell/content-platform/internal/core/ports"
)

type SessionHandler struct {
	sessions ports.SessionService
}

func NewSessionHandler(sessions ports.SessionService) *SessionHandler {
	return &SessionHandler{sessions: sessions}
}

// Get returns the revalidated principal for the presented token. The session
// middleware has already refreshed the sliding expiry and set the
// X-Session-Token response header.
//
// @Summary      Current session
// @Tags         session
// @Produce      json
// @Security     BearerAuth
// @Success      200  {object}  principalResponse
// @Failure      401  {object}  map[string]string
// @Router       /auth/session [get]
func (h *SessionHandler) Get(c echo.Context) error {
	claims, err := ctxClaims(c)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, toPrincipalResponse(claims.Principal()))
}

// Patch merges client-supplied profile fields into the live session without
// re-authentication, re-resolving permissions when a role change is signaled.
//
// @Summary      Partial session refresh
// @Tags         session
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        body  body      sessionPatchRequest  true  "Fields to merge"
// @Success      200   {object}  sessionResponse
// @Failure      401   {object}  map[string]string
// @Router       /auth/session [patch]
func (h *SessionHandler) Patch(c echo.Context) error {
	claims, err := ctxClaims(c)
	if err != nil {
		return err
	}

	var req sessionPatchRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid payload")
	}

	token, fresh, err := h.sessions.Refresh(c.Request().Context(), claims, domain.SessionPatch{
		Name:        req.Name,
		Bio:         req.Bio,
		AvatarURL:   req.AvatarURL,
		RoleChanged: req.RoleChanged,
	})
	if err != nil {
		return err
	}
	metrics.SessionRefreshesTotal.Inc()

	c.Response().Header().Set(middleware.HeaderSessionToken, token)
	return c.JSON(http.StatusOK, sessionResponse{
		Token:     token,
		ExpiresAt: fresh.ExpiresAt,
		Principal: toPrincipalResponse(fresh.Principal()),
	})
}
