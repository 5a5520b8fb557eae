package api

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/aurora-advisory/advisory-api/internal/core/domain"
	"github.com/aurora-advisory/advisory-api/internal/core/ports"
)

// tokens understood by stubAuth.Authenticate.
var principals = map[string]domain.Principal{
	"client-1":  {UserID: 1, Role: domain.RoleClient},
	"client-2":  {UserID: 2, Role: domain.RoleClient},
	"advisor-9": {UserID: 9, Role: domain.RoleAdvisor},
}

type stubAuth struct {
	loginErr error
}

func (s *stubAuth) Register(_ context.Context, in ports.RegisterInput) (*domain.User, error) {
	return &domain.User{ID: 1, Email: in.Email, Role: domain.RoleClient}, nil
}

func (s *stubAuth) Login(context.Context, string, string) (*ports.AccessToken, error) {
	if s.loginErr != nil {
		return nil, s.loginErr
	}
	return &ports.AccessToken{Token: "client-1", TokenType: "bearer", ExpiresIn: 1800}, nil
}

func (s *stubAuth) Authenticate(_ context.Context, token string) (domain.Principal, error) {
	p, ok := principals[token]
	if !ok {
		return domain.Principal{}, domain.ErrUnauthenticated
	}
	return p, nil
}

func (s *stubAuth) Me(_ context.Context, p domain.Principal) (*domain.User, error) {
	return &domain.User{ID: p.UserID, Role: p.Role}, nil
}

type stubProfiles struct{}

func (stubProfiles) Get(context.Context, domain.Principal) (*domain.ClientProfile, error) {
	return nil, domain.ErrProfileNotFound
}

func (stubProfiles) Upsert(context.Context, domain.Principal, domain.ProfileDraft) (*domain.ClientProfile, error) {
	return nil, errors.New("not used")
}

// stubRequests answers every call with err, or with a fixed request view.
type stubRequests struct {
	err error
}

func (s *stubRequests) view() *domain.RequestView {
	now := time.Date(2024, 5, 1, 9, 0, 0, 0, time.UTC)
	return &domain.RequestView{
		ConsultationRequest: domain.ConsultationRequest{
			ID: 10, UserID: 1, Goal: "Retirement", TimeHorizonYears: 20, Amount: 1000,
			RiskProfile: domain.RiskBalanced, Status: domain.StatusPending,
			CreatedAt: now, UpdatedAt: now,
		},
		OwnerEmail: "c1@example.com",
		OwnerRole:  domain.RoleClient,
	}
}

func (s *stubRequests) Create(context.Context, ports.CreateRequestInput) (*ports.CreateRequestResult, error) {
	if s.err != nil {
		return nil, s.err
	}
	return &ports.CreateRequestResult{Request: s.view()}, nil
}

func (s *stubRequests) Cancel(context.Context, domain.Principal, int64) (*ports.CancelResult, error) {
	if s.err != nil {
		return nil, s.err
	}
	return &ports.CancelResult{OldStatus: domain.StatusPending, NewStatus: domain.StatusCancelled}, nil
}

func (s *stubRequests) SetStatus(context.Context, domain.Principal, int64, string) (*domain.RequestView, error) {
	if s.err != nil {
		return nil, s.err
	}
	return s.view(), nil
}

func (s *stubRequests) Delete(context.Context, domain.Principal, int64) error {
	return s.err
}

func (s *stubRequests) History(context.Context, domain.Principal, int64) ([]domain.StatusLog, error) {
	return nil, s.err
}

func (s *stubRequests) ListMine(context.Context, domain.Principal) ([]domain.RequestView, error) {
	if s.err != nil {
		return nil, s.err
	}
	return []domain.RequestView{*s.view()}, nil
}

func (s *stubRequests) GetMine(context.Context, domain.Principal, int64) (*domain.RequestView, error) {
	if s.err != nil {
		return nil, s.err
	}
	return s.view(), nil
}

func (s *stubRequests) ListAll(context.Context, domain.Principal, ports.ListRequestsInput) (*ports.RequestPage, error) {
	if s.err != nil {
		return nil, s.err
	}
	return &ports.RequestPage{Items: []domain.RequestView{*s.view()}, Total: 1}, nil
}

func (s *stubRequests) Stats(context.Context, domain.Principal) (*domain.RequestStats, error) {
	if s.err != nil {
		return nil, s.err
	}
	return &domain.RequestStats{Total: 1, Pending: 1}, nil
}

func newTestRouter(reqs *stubRequests, auth *stubAuth) *echo.Echo {
	return NewRouter(RouterDeps{
		Logger:   zerolog.Nop(),
		Auth:     auth,
		Profiles: stubProfiles{},
		Workflow: reqs,
		Query:    reqs,
	})
}

func do(e *echo.Echo, method, path, token, body string) *httptest.ResponseRecorder {
	var r io.Reader
	if body != "" {
		r = strings.NewReader(body)
	}
	req := httptest.NewRequest(method, path, r)
	if body != "" {
		req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
	}
	if token != "" {
		req.Header.Set(echo.HeaderAuthorization, "Bearer "+token)
	}
	rec := httptest.NewRecorder()
	e.ServeHTTP(rec, req)
	return rec
}

func TestRouter_DomainErrorMapping(t *testing.T) {
	tests := []struct {
		name     string
		err      error
		wantCode int
		wantBody string
	}{
		{"not found", domain.ErrRequestNotFound, http.StatusNotFound, `{"error":"request not found"}`},
		{"forbidden", domain.ErrForbidden, http.StatusForbidden, `{"error":"access forbidden"}`},
		{
			"transition refused",
			&domain.TransitionError{From: domain.StatusInReview, To: domain.StatusCancelled, Reason: "cannot cancel a request that is already being worked on or finished"},
			http.StatusBadRequest,
			`{"error":"cannot cancel a request that is already being worked on or finished"}`,
		},
		{
			"wrapped validation",
			fmt.Errorf("create: %w", domain.NewValidationError("amount", "must be greater than 0")),
			http.StatusUnprocessableEntity,
			`{"error":"amount must be greater than 0"}`,
		},
		{"unexpected", errors.New("pq: connection reset"), http.StatusInternalServerError, `{"error":"internal server error"}`},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			e := newTestRouter(&stubRequests{err: tt.err}, &stubAuth{})

			rec := do(e, http.MethodPatch, "/requests/me/10", "client-1", "")

			assert.Equal(t, tt.wantCode, rec.Code)
			assert.JSONEq(t, tt.wantBody, rec.Body.String())
		})
	}
}

func TestRouter_AuthenticationRequired(t *testing.T) {
	e := newTestRouter(&stubRequests{}, &stubAuth{})

	rec := do(e, http.MethodGet, "/requests/me", "", "")
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
	assert.Equal(t, "Bearer", rec.Header().Get(echo.HeaderWWWAuthenticate))

	rec = do(e, http.MethodGet, "/requests/me", "forged", "")
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
	assert.JSONEq(t, `{"error":"invalid or expired token"}`, rec.Body.String())

	rec = do(e, http.MethodGet, "/requests/me", "client-1", "")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), `"user_email":"c1@example.com"`)
}

func TestRouter_StaffRoutes(t *testing.T) {
	e := newTestRouter(&stubRequests{}, &stubAuth{})

	for _, path := range []string{"/requests", "/requests/stats"} {
		rec := do(e, http.MethodGet, path, "client-1", "")
		assert.Equal(t, http.StatusForbidden, rec.Code, path)

		rec = do(e, http.MethodGet, path, "advisor-9", "")
		assert.Equal(t, http.StatusOK, rec.Code, path)
	}

	rec := do(e, http.MethodPatch, "/requests/10", "client-2", `{"status":"completed"}`)
	assert.Equal(t, http.StatusForbidden, rec.Code)

	rec = do(e, http.MethodPatch, "/requests/10", "advisor-9", `{"status":"completed"}`)
	assert.Equal(t, http.StatusOK, rec.Code)

	rec = do(e, http.MethodPatch, "/requests/10", "advisor-9", `{"status":"archived"}`)
	assert.Equal(t, http.StatusUnprocessableEntity, rec.Code)
}

func TestRouter_LoginThrottled(t *testing.T) {
	e := newTestRouter(&stubRequests{}, &stubAuth{loginErr: domain.ErrTooManyAttempts})

	rec := do(e, http.MethodPost, "/auth/login", "", `{"email":"a@example.com","password":"whatever1"}`)

	assert.Equal(t, http.StatusTooManyRequests, rec.Code)
}

func TestRouter_ProfileNotFound(t *testing.T) {
	e := newTestRouter(&stubRequests{}, &stubAuth{})

	rec := do(e, http.MethodGet, "/me/profile", "client-1", "")

	assert.Equal(t, http.StatusNotFound, rec.Code)
	assert.JSONEq(t, `{"error":"profile not filled in yet"}`, rec.Body.String())
}

func TestRouter_UnknownRoute(t *testing.T) {
	e := newTestRouter(&stubRequests{}, &stubAuth{})

	rec := do(e, http.MethodGet, "/nowhere", "", "")

	assert.Equal(t, http.StatusNotFound, rec.Code)
	assert.Contains(t, rec.Body.String(), `"error"`)
}

func TestRouter_Metrics(t *testing.T) {
	reg := prometheus.NewRegistry()
	e := NewRouter(RouterDeps{
		Logger:     zerolog.Nop(),
		Auth:       &stubAuth{},
		Profiles:   stubProfiles{},
		Workflow:   &stubRequests{},
		Query:      &stubRequests{},
		Registerer: reg,
		Gatherer:   reg,
	})

	require.Equal(t, http.StatusOK, do(e, http.MethodGet, "/health", "", "").Code)

	rec := do(e, http.MethodGet, "/metrics", "", "")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), "http_requests_total")
}
