package handler

import (
	"errors"
	"net/http"
	"time"

	"github.com/labstack/echo/v4"

	"github.com/inkwell/content-platform/internal/api/metrics"
	"github.com/inkwell/content-platform/internal/core/domain"
	"github.com/inkwell/content-platform/internal/core/ports"
)

type AuthHandler struct {
	auth     ports.AuthService
	sessions ports.SessionService
	audit    ports.AuditRecorder
}

func NewAuthHandler(auth ports.AuthService, sessions ports.SessionService, audit ports.AuditRecorder) *AuthHandler {
	return &AuthHandler{auth: auth, sessions: sessions, audit: audit}
}

// Login authenticates with email and password, plus an optional second factor.
//
// @Summary      Password login
// @Tags         auth
// @Accept       json
// @Produce      json
// @Param        body  body      loginRequest  true  "Credentials and optional second factor"
// @Success      200   {object}  sessionResponse
// @Failure      401   {object}  map[string]string
// @Failure      403   {object}  map[string]string
// @Failure      429   {object}  map[string]string
// @Router       /auth/login [post]
func (h *AuthHandler) Login(c echo.Context) error {
	var req loginRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid payload")
	}
	if err := c.Validate(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}

	start := time.Now()
	principal, err := h.auth.AuthenticateWithPassword(c.Request().Context(), domain.PasswordLogin{
		Email:      req.Email,
		Password:   req.Password,
		TOTPCode:   req.TOTPCode,
		BackupCode: req.BackupCode,
		RememberMe: req.RememberMe,
	})
	metrics.AuthenticationDuration.WithLabelValues("password").Observe(time.Since(start).Seconds())
	if err != nil {
		metrics.LoginsTotal.WithLabelValues("password", outcomeLabel(err)).Inc()
		return err
	}
	metrics.LoginsTotal.WithLabelValues("password", "success").Inc()

	return h.respondWithSession(c, principal, req.RememberMe)
}

// FederatedLogin authenticates with an identity assertion already verified by
// an upstream provider integration.
//
// @Summary      Federated login
// @Tags         auth
// @Accept       json
// @Produce      json
// @Param        body  body      federatedLoginRequest  true  "Verified provider identity"
// @Success      200   {object}  sessionResponse
// @Failure      403   {object}  map[string]string
// @Router       /auth/federated [post]
func (h *AuthHandler) FederatedLogin(c echo.Context) error {
	var req federatedLoginRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid payload")
	}
	if err := c.Validate(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}

	start := time.Now()
	principal, err := h.auth.AuthenticateWithFederatedIdentity(c.Request().Context(), domain.FederatedLogin{
		Provider:   req.Provider,
		SubjectID:  req.SubjectID,
		Email:      req.Email,
		Name:       req.Name,
		AvatarURL:  req.AvatarURL,
		RememberMe: req.RememberMe,
	})
	metrics.AuthenticationDuration.WithLabelValues("federated").Observe(time.Since(start).Seconds())
	if err != nil {
		metrics.LoginsTotal.WithLabelValues("federated", outcomeLabel(err)).Inc()
		return err
	}
	metrics.LoginsTotal.WithLabelValues("federated", "success").Inc()

	return h.respondWithSession(c, principal, req.RememberMe)
}

// Logout records the sign-out. The session token simply stops being
// presented; the security stamp is deliberately left untouched so other
// devices stay signed in.
//
// @Summary      Logout
// @Tags         auth
// @Security     BearerAuth
// @Success      204
// @Router       /auth/logout [post]
func (h *AuthHandler) Logout(c echo.Context) error {
	claims, err := ctxClaims(c)
	if err != nil {
		return err
	}

	h.audit.Record(domain.AuditEvent{
		UserID:     claims.AccountID,
		Action:     domain.AuditLogout,
		Entity:     "account",
		Importance: domain.ImportanceLow,
	})
	return c.NoContent(http.StatusNoContent)
}

func (h *AuthHandler) respondWithSession(c echo.Context, principal *domain.Principal, rememberMe bool) error {
	token, claims, err := h.sessions.Mint(principal, rememberMe)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, sessionResponse{
		Token:     token,
		ExpiresAt: claims.ExpiresAt,
		Principal: toPrincipalResponse(principal),
	})
}

// outcomeLabel maps a terminal authentication failure to its metric label.
func outcomeLabel(err error) string {
	switch {
	case errors.Is(err, domain.ErrInvalidCredentials):
		return "invalid_credentials"
	case errors.Is(err, domain.ErrAccountBanned):
		return "banned"
	case errors.Is(err, domain.ErrAccountSuspended):
		return "suspended"
	case errors.Is(err, domain.ErrUnverified):
		return "unverified"
	case errors.Is(err, domain.ErrTwoFactorRequired):
		return "two_factor_required"
	case errors.Is(err, domain.ErrInvalidTwoFactor):
		return "invalid_two_factor"
	case errors.Is(err, domain.ErrTwoFactorConfig):
		return "two_factor_config"
	case errors.Is(err, domain.ErrLoginRateLimited):
		return "rate_limited"
	default:
		return "error"
	}
}
