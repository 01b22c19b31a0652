package auth

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/labstack/echo/v4"
)

func requestWithRole(role string) (echo.Context, *httptest.ResponseRecorder) {
	e := echo.New()
	req := httptest.NewRequest(http.MethodGet, "/", nil)
	ctx := context.WithValue(req.Context(), UserRoleKey, role)
	req = req.WithContext(ctx)
	rec := httptest.NewRecorder()
	return e.NewContext(req, rec), rec
}

func TestRequireRole_Allowed(t *testing.T) {
	c, _ := requestWithRole("clinician")
	called := false
	h := RequireRole("clinician")(func(c echo.Context) error { called = true; return nil })
	if err := h(c); err != nil { t.Fatalf("unexpected error: %v", err) }
	if !called { t.Error("handler should have been called") }
}

func TestRequireRole_AdminOverride(t *testing.T) {
	c, _ := requestWithRole("admin")
	called := false
	h := RequireRole("clinician")(func(c echo.Context) error { called = true; return nil })
	if err := h(c); err != nil { t.Fatalf("unexpected error: %v", err) }
	if !called { t.Error("admin should pass every role check") }
}

func TestRequireRole_Forbidden(t *testing.T) {
	c, _ := requestWithRole("patient")
	h := RequireRole("clinician")(func(c echo.Context) error { return nil })
	err := h(c)
	he, ok := err.(*echo.HTTPError)
	if !ok || he.Code != http.StatusForbidden { t.Fatalf("expected 403, got %v", err) }
}

func TestJWTMiddleware_MissingHeader(t *testing.T) {
	e := echo.New()
	req := httptest.NewRequest(http.MethodGet, "/", nil)
	c := e.NewContext(req, httptest.NewRecorder())
	issuer := NewTokenIssuer([]byte("0123456789abcdef0123456789abcdef"), 1)
	h := JWTMiddleware(issuer)(func(c echo.Context) error { return nil })
	err := h(c)
	he, ok := err.(*echo.HTTPError)
	if !ok || he.Code != http.StatusUnauthorized { t.Fatalf("expected 401, got %v", err) }
}
