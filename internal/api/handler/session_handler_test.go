package handler

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/labstack/echo/v4"

	"github.com/inkwell/content-platform/internal/api/middleware"
	"github.com/inkwell/content-platform/internal/core/domain"
)

func sessionContext(e *echo.Echo, method, body string, claims *domain.SessionClaims) (echo.Context, *httptest.ResponseRecorder) {
	c, rec := postJSON(e, "/auth/session", body)
	c.Request().Method = method
	if claims != nil {
		c.Set(middleware.ClaimsKey, claims)
	}
	return c, rec
}

func TestSessionHandler_Get(t *testing.T) {
	e := newTestEcho()
	handler := NewSessionHandler(&stubSessionService{})

	claims := &domain.SessionClaims{
		AccountID: "acc-1",
		Email:     "a@x.com",
		Name:      "Ada",
		Role:      domain.RoleSnapshot{Name: "editor", Level: 5, Permissions: []string{"post:publish"}},
	}
	c, rec := sessionContext(e, http.MethodGet, "", claims)

	if err := handler.Get(c); err != nil {
		t.Fatalf("handler error: %v", err)
	}
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}

	var resp map[string]any
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatalf("invalid json: %v", err)
	}
	if resp["id"] != "acc-1" || resp["email"] != "a@x.com" || resp["role_name"] != "editor" {
		t.Fatalf("unexpected principal payload: %+v", resp)
	}
}

func TestSessionHandler_Get_NoSession(t *testing.T) {
	e := newTestEcho()
	handler := NewSessionHandler(&stubSessionService{})

	c, rec := sessionContext(e, http.MethodGet, "", nil)
	if err := handler.Get(c); err != nil {
		e.HTTPErrorHandler(err, c)
	}
	if rec.Code != http.StatusUnauthorized {
		t.Fatalf("expected 401, got %d", rec.Code)
	}
}

func TestSessionHandler_Patch(t *testing.T) {
	e := newTestEcho()
	sessions := &stubSessionService{
		refreshFn: func(ctx context.Context, claims *domain.SessionClaims, patch domain.SessionPatch) (string, *domain.SessionClaims, error) {
			if patch.Name == nil || *patch.Name != "Ada L." {
				t.Fatalf("name patch not carried: %+v", patch)
			}
			if patch.Bio != nil {
				t.Fatalf("absent field must stay nil")
			}
			if !patch.RoleChanged {
				t.Fatalf("role_changed not carried")
			}
			next := *claims
			next.Name = *patch.Name
			next.ExpiresAt = time.Now().UTC().Add(24 * time.Hour)
			return "fresh-token", &next, nil
		},
	}
	handler := NewSessionHandler(sessions)

	claims := &domain.SessionClaims{AccountID: "acc-1", Email: "a@x.com", Name: "Ada"}
	c, rec := sessionContext(e, http.MethodPatch, `{"name":"Ada L.","role_changed":true}`, claims)

	if err := handler.Patch(c); err != nil {
		t.Fatalf("handler error: %v", err)
	}
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}
	if got := rec.Header().Get(middleware.HeaderSessionToken); got != "fresh-token" {
		t.Fatalf("expected refreshed token header, got %q", got)
	}

	var resp map[string]any
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatalf("invalid json: %v", err)
	}
	if resp["token"] != "fresh-token" {
		t.Fatalf("expected token in body, got %v", resp["token"])
	}
	principal, ok := resp["principal"].(map[string]any)
	if !ok || principal["name"] != "Ada L." {
		t.Fatalf("patched principal not returned: %+v", principal)
	}
}

func TestSessionHandler_Patch_NoSession(t *testing.T) {
	e := newTestEcho()
	handler := NewSessionHandler(&stubSessionService{})

	c, rec := sessionContext(e, http.MethodPatch, `{"name":"x"}`, nil)
	if err := handler.Patch(c); err != nil {
		e.HTTPErrorHandler(err, c)
	}
	if rec.Code != http.StatusUnauthorized {
		t.Fatalf("expected 401, got %d", rec.Code)
	}
}
