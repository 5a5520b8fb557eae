package middleware

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/labstack/echo/v4"

	"github.com/aurora-advisory/advisory-api/internal/core/domain"
)

type stubAuthenticator struct {
	principal domain.Principal
	err       error
	gotToken  string
}

func (s *stubAuthenticator) Authenticate(_ context.Context, token string) (domain.Principal, error) {
	s.gotToken = token
	return s.principal, s.err
}

func TestAuthMiddleware_ValidToken(t *testing.T) {
	e := echo.New()
	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.Header.Set("Authorization", "Bearer good-token")
	rec := httptest.NewRecorder()
	c := e.NewContext(req, rec)

	auth := &stubAuthenticator{principal: domain.Principal{UserID: 12, Role: domain.RoleAdvisor}}
	called := false
	handler := Auth(auth)(func(c echo.Context) error {
		called = true
		if c.Get("user_id") != int64(12) {
			t.Fatalf("user_id not set")
		}
		if c.Get("role") != domain.RoleAdvisor {
			t.Fatalf("role not set")
		}
		return c.NoContent(http.StatusOK)
	})

	if err := handler(c); err != nil {
		t.Fatalf("handler error: %v", err)
	}
	if !called {
		t.Fatalf("next not called")
	}
	if auth.gotToken != "good-token" {
		t.Fatalf("unexpected token passed: %q", auth.gotToken)
	}
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}
}

func TestAuthMiddleware_Rejects(t *testing.T) {
	tests := []struct {
		name   string
		header string
		err    error
	}{
		{"missing header", "", nil},
		{"invalid header format", "Token abc", nil},
		{"empty bearer", "Bearer ", nil},
		{"invalid token", "Bearer not-a-token", domain.ErrUnauthenticated},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			e := echo.New()
			req := httptest.NewRequest(http.MethodGet, "/", nil)
			if tt.header != "" {
				req.Header.Set("Authorization", tt.header)
			}
			rec := httptest.NewRecorder()
			c := e.NewContext(req, rec)

			handler := Auth(&stubAuthenticator{err: tt.err})(func(c echo.Context) error {
				t.Fatalf("should not reach next")
				return nil
			})

			if err := handler(c); err != nil {
				e.HTTPErrorHandler(err, c)
			}

			if rec.Code != http.StatusUnauthorized {
				t.Fatalf("expected 401, got %d", rec.Code)
			}
			if rec.Header().Get("WWW-Authenticate") != "Bearer" {
				t.Fatalf("expected WWW-Authenticate challenge")
			}
		})
	}
}

func TestAuthMiddleware_StoreFailureIsNotAuthError(t *testing.T) {
	e := echo.New()
	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.Header.Set("Authorization", "Bearer tok")
	c := e.NewContext(req, httptest.NewRecorder())

	boom := errors.New("db down")
	handler := Auth(&stubAuthenticator{err: boom})(func(c echo.Context) error {
		t.Fatalf("should not reach next")
		return nil
	})

	if err := handler(c); !errors.Is(err, boom) {
		t.Fatalf("expected store error to propagate, got %v", err)
	}
}
