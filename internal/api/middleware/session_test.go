package middleware

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/labstack/echo/v4"

	"github.com/inkwell/content-platform/internal/core/domain"
)

type stubSessions struct {
	parseClaims *domain.SessionClaims
	parseErr    error
	revalToken  string
	revalClaims *domain.SessionClaims
	revalErr    error
}

func (s *stubSessions) Mint(*domain.Principal, bool) (string, *domain.SessionClaims, error) {
	return "", nil, nil
}

func (s *stubSessions) Parse(string) (*domain.SessionClaims, error) {
	return s.parseClaims, s.parseErr
}

func (s *stubSessions) Revalidate(context.Context, *domain.SessionClaims) (string, *domain.SessionClaims, error) {
	return s.revalToken, s.revalClaims, s.revalErr
}

func (s *stubSessions) Refresh(context.Context, *domain.SessionClaims, domain.SessionPatch) (string, *domain.SessionClaims, error) {
	return "", nil, nil
}

type recordingAudit struct {
	events []domain.AuditEvent
}

func (a *recordingAudit) Record(event domain.AuditEvent) {
	a.events = append(a.events, event)
}

func TestSessionMiddleware_ValidToken(t *testing.T) {
	e := echo.New()
	fresh := &domain.SessionClaims{AccountID: "acc-1", Email: "a@x.com"}
	sessions := &stubSessions{
		parseClaims: &domain.SessionClaims{AccountID: "acc-1"},
		revalToken:  "re-signed",
		revalClaims: fresh,
	}

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.Header.Set("Authorization", "Bearer some-token")
	rec := httptest.NewRecorder()
	c := e.NewContext(req, rec)

	called := false
	handler := Session(sessions, &recordingAudit{})(func(c echo.Context) error {
		called = true
		claims, ok := c.Get(ClaimsKey).(*domain.SessionClaims)
		if !ok || claims.AccountID != "acc-1" {
			t.Fatalf("revalidated claims not set on context")
		}
		return c.NoContent(http.StatusOK)
	})

	if err := handler(c); err != nil {
		t.Fatalf("handler error: %v", err)
	}
	if !called {
		t.Fatalf("next not called")
	}
	if got := rec.Header().Get(HeaderSessionToken); got != "re-signed" {
		t.Fatalf("expected re-signed token header, got %q", got)
	}
}

func TestSessionMiddleware_MissingHeader(t *testing.T) {
	e := echo.New()
	req := httptest.NewRequest(http.MethodGet, "/", nil)
	rec := httptest.NewRecorder()
	c := e.NewContext(req, rec)

	handler := Session(&stubSessions{}, &recordingAudit{})(func(c echo.Context) error {
		t.Fatalf("should not reach next")
		return nil
	})

	if err := handler(c); err != nil {
		e.HTTPErrorHandler(err, c)
	}
	if rec.Code != http.StatusUnauthorized {
		t.Fatalf("expected 401, got %d", rec.Code)
	}
}

func TestSessionMiddleware_InvalidHeaderFormat(t *testing.T) {
	e := echo.New()
	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.Header.Set("Authorization", "Token abc")
	rec := httptest.NewRecorder()
	c := e.NewContext(req, rec)

	handler := Session(&stubSessions{}, &recordingAudit{})(func(c echo.Context) error {
		t.Fatalf("should not reach next")
		return nil
	})

	if err := handler(c); err != nil {
		e.HTTPErrorHandler(err, c)
	}
	if rec.Code != http.StatusUnauthorized {
		t.Fatalf("expected 401, got %d", rec.Code)
	}
}

func TestSessionMiddleware_BadToken(t *testing.T) {
	e := echo.New()
	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.Header.Set("Authorization", "Bearer garbage")
	rec := httptest.NewRecorder()
	c := e.NewContext(req, rec)

	handler := Session(&stubSessions{parseErr: domain.ErrSessionInvalidated}, &recordingAudit{})(func(c echo.Context) error {
		t.Fatalf("should not reach next")
		return nil
	})

	if err := handler(c); err != nil {
		e.HTTPErrorHandler(err, c)
	}
	if rec.Code != http.StatusUnauthorized {
		t.Fatalf("expected 401, got %d", rec.Code)
	}
}

func TestSessionMiddleware_Invalidated(t *testing.T) {
	e := echo.New()
	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.Header.Set("Authorization", "Bearer stale-token")
	rec := httptest.NewRecorder()
	c := e.NewContext(req, rec)

	sessions := &stubSessions{
		parseClaims: &domain.SessionClaims{AccountID: "acc-1"},
		revalErr:    domain.ErrSessionInvalidated,
	}
	audit := &recordingAudit{}
	handler := Session(sessions, audit)(func(c echo.Context) error {
		t.Fatalf("should not reach next")
		return nil
	})

	if err := handler(c); err != nil {
		e.HTTPErrorHandler(err, c)
	}
	if rec.Code != http.StatusUnauthorized {
		t.Fatalf("expected 401, got %d", rec.Code)
	}
	if rec.Header().Get(HeaderSessionToken) != "" {
		t.Fatalf("no refreshed token may leak on an invalidated session")
	}
	if len(audit.events) != 1 || audit.events[0].Action != domain.AuditSessionRevoked {
		t.Fatalf("expected a session revoked audit event, got %+v", audit.events)
	}
}
