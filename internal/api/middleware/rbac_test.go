package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/labstack/echo/v4"

	"github.com/inkwell/content-platform/internal/core/domain"
)

func rbacContext(e *echo.Echo, claims *domain.SessionClaims) (echo.Context, *httptest.ResponseRecorder) {
	req := httptest.NewRequest(http.MethodGet, "/", nil)
	rec := httptest.NewRecorder()
	c := e.NewContext(req, rec)
	if claims != nil {
		c.Set(ClaimsKey, claims)
	}
	return c, rec
}

func TestRequirePermission_Allows(t *testing.T) {
	e := echo.New()
	c, rec := rbacContext(e, &domain.SessionClaims{
		Role: domain.RoleSnapshot{Name: "editor", Permissions: []string{"post:publish"}},
	})

	called := false
	handler := RequirePermission("post:publish")(func(c echo.Context) error {
		called = true
		return c.NoContent(http.StatusOK)
	})

	if err := handler(c); err != nil {
		t.Fatalf("handler error: %v", err)
	}
	if !called {
		t.Fatalf("next handler not called")
	}
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}
}

func TestRequirePermission_Forbids(t *testing.T) {
	e := echo.New()
	c, rec := rbacContext(e, &domain.SessionClaims{
		Role: domain.RoleSnapshot{Name: "member", Permissions: []string{"post:create"}},
	})

	handler := RequirePermission("user:ban")(func(c echo.Context) error {
		t.Fatalf("should not reach next handler")
		return nil
	})

	_ = handler(c)
	if rec.Code != http.StatusForbidden {
		t.Fatalf("expected 403, got %d", rec.Code)
	}
}

func TestRequirePermission_MissingSession(t *testing.T) {
	e := echo.New()
	c, rec := rbacContext(e, nil)

	handler := RequirePermission("post:create")(func(c echo.Context) error {
		t.Fatalf("should not reach next handler")
		return nil
	})

	if err := handler(c); err != nil {
		e.HTTPErrorHandler(err, c)
	}
	if rec.Code != http.StatusUnauthorized {
		t.Fatalf("expected 401, got %d", rec.Code)
	}
}

func TestRequireRoleLevel(t *testing.T) {
	e := echo.New()

	c, rec := rbacContext(e, &domain.SessionClaims{Role: domain.RoleSnapshot{Level: 5}})
	handler := RequireRoleLevel(5)(func(c echo.Context) error {
		return c.NoContent(http.StatusOK)
	})
	if err := handler(c); err != nil {
		t.Fatalf("handler error: %v", err)
	}
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}

	c, rec = rbacContext(e, &domain.SessionClaims{Role: domain.RoleSnapshot{Level: 1}})
	handler = RequireRoleLevel(5)(func(c echo.Context) error {
		t.Fatalf("should not reach next handler")
		return nil
	})
	_ = handler(c)
	if rec.Code != http.StatusForbidden {
		t.Fatalf("expected 403, got %d", rec.Code)
	}
}
