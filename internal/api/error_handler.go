package api

import (
	"errors"
	"fmt"
	"net/http"

	"github.com/labstack/echo/v4"
	"github.com/rs/zerolog"

	"github.com/inkwell/content-platform/internal/core/domain"
)

// errorResponse is the canonical error envelope for all API errors. Code is a
// machine-readable discriminator for outcomes the client must react to
// (prompting for a second factor, offering a verification resend); Email is
// set only for the unverified case.
type errorResponse struct {
	Error string `json:"error"`
	Code  string `json:"code,omitempty"`
	Email string `json:"email,omitempty"`
}

// NewHTTPErrorHandler returns an echo.HTTPErrorHandler that:
//   - Maps the authority's failure taxonomy to deterministic HTTP codes.
//   - Logs unexpected errors internally without leaking details to the client.
//   - Renders a consistent JSON envelope.
func NewHTTPErrorHandler(log zerolog.Logger) echo.HTTPErrorHandler {
	return func(err error, c echo.Context) {
		if c.Response().Committed {
			return
		}

		code, body := resolveError(err, log, c)
		_ = c.JSON(code, body)
	}
}

func resolveError(err error, log zerolog.Logger, c echo.Context) (int, errorResponse) {
	// Echo's own errors (bind failures, 404 from router, etc.)
	var he *echo.HTTPError
	if errors.As(err, &he) {
		return he.Code, errorResponse{Error: fmt.Sprintf("%v", he.Message)}
	}

	// The unverified failure carries the email so the client can offer a
	// verification resend.
	var unverified *domain.UnverifiedError
	if errors.As(err, &unverified) {
		return http.StatusForbidden, errorResponse{
			Error: "email not verified",
			Code:  "unverified",
			Email: unverified.Email,
		}
	}

	switch {
	case errors.Is(err, domain.ErrInvalidCredentials):
		// Deliberately generic: unknown email, missing hash, and wrong
		// password must be indistinguishable to the caller.
		return http.StatusUnauthorized, errorResponse{Error: "invalid credentials"}
	case errors.Is(err, domain.ErrAccountBanned):
		return http.StatusForbidden, errorResponse{Error: "account banned", Code: "banned"}
	case errors.Is(err, domain.ErrAccountSuspended):
		return http.StatusForbidden, errorResponse{Error: "account suspended", Code: "suspended"}
	case errors.Is(err, domain.ErrTwoFactorRequired):
		return http.StatusUnauthorized, errorResponse{Error: "two-factor code required", Code: "two_factor_required"}
	case errors.Is(err, domain.ErrInvalidTwoFactor):
		return http.StatusUnauthorized, errorResponse{Error: "invalid two-factor code", Code: "invalid_two_factor"}
	case errors.Is(err, domain.ErrSessionInvalidated):
		return http.StatusUnauthorized, errorResponse{Error: "session invalidated", Code: "session_invalidated"}
	case errors.Is(err, domain.ErrLoginRateLimited):
		return http.StatusTooManyRequests, errorResponse{Error: "too many login attempts", Code: "rate_limited"}
	case errors.Is(err, domain.ErrTwoFactorConfig):
		// Operational fault, not a user error: log loudly, answer blandly.
		log.Error().Err(err).Msg("two-factor verification misconfigured")
		return http.StatusInternalServerError, errorResponse{Error: "two-factor verification unavailable"}
	case errors.Is(err, domain.ErrAccountNotFound):
		return http.StatusNotFound, errorResponse{Error: "account not found"}
	case errors.Is(err, domain.ErrAccountExists):
		return http.StatusConflict, errorResponse{Error: "account already exists"}
	}

	// Unexpected error: log the real cause, return a generic message.
	log.Error().
		Err(err).
		Str("method", c.Request().Method).
		Str("path", c.Path()).
		Msg("unhandled error")

	return http.StatusInternalServerError, errorResponse{Error: "internal server error"}
}
