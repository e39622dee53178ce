package controllers

import (
	"bytes"
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/autoads/autoads-backend/internal/auth"
	"github.com/autoads/autoads-backend/internal/users"
	pkgerrors "github.com/autoads/autoads-backend/pkg/errors"
	"github.com/google/uuid"
)

type stubAuthService struct {
	registered auth.RegisterRequest
	refreshed  auth.RefreshRequest
	loggedOut  string
	resp       *auth.AuthResponse
	pair       *auth.TokenPair
	err        error
}

func (s *stubAuthService) Register(ctx context.Context, req auth.RegisterRequest) (*auth.AuthResponse, error) {
	s.registered = req
	return s.resp, s.err
}

func (s *stubAuthService) Login(ctx context.Context, req auth.LoginRequest) (*auth.AuthResponse, error) {
	return s.resp, s.err
}

func (s *stubAuthService) Refresh(ctx context.Context, req auth.RefreshRequest) (*auth.TokenPair, error) {
	s.refreshed = req
	return s.pair, s.err
}

func (s *stubAuthService) Logout(ctx context.Context, accessToken string) error {
	s.loggedOut = accessToken
	return s.err
}

func TestAuthRegisterSuccess(t *testing.T) {
	svc := &stubAuthService{resp: &auth.AuthResponse{
		TokenPair: auth.TokenPair{AccessToken: "access-token", RefreshToken: "refresh-token"},
		User:      &users.UserDTO{ID: uuid.New(), Email: "ana@example.com"},
	}}

	req := httptest.NewRequest(http.MethodPost, "/api/v1/auth/register", bytes.NewBufferString(`{"full_name":"Ana Souza","email":"ana@example.com","password":"Secret#123"}`))
	req.Header.Set("Content-Type", "application/json")
	resp := httptest.NewRecorder()

	AuthRegister(svc, nil).ServeHTTP(resp, req)
	if resp.Code != http.StatusCreated {
		t.Fatalf("expected 201 got %d: %s", resp.Code, resp.Body.String())
	}
	if svc.registered.FullName != "Ana Souza" {
		t.Fatalf("expected full name forwarded got %q", svc.registered.FullName)
	}

	var out auth.AuthResponse
	decodeData(t, resp, &out)
	if out.AccessToken != "access-token" || out.RefreshToken != "refresh-token" {
		t.Fatalf("unexpected tokens %+v", out.TokenPair)
	}
	if out.User == nil || out.User.Email != "ana@example.com" {
		t.Fatalf("expected user in response")
	}
}

func TestAuthRegisterValidation(t *testing.T) {
	req := httptest.NewRequest(http.MethodPost, "/api/v1/auth/register", bytes.NewBufferString(`{"full_name":"Ana","email":"not-an-email","password":"short"}`))
	resp := httptest.NewRecorder()

	AuthRegister(&stubAuthService{}, nil).ServeHTTP(resp, req)
	if resp.Code != http.StatusBadRequest {
		t.Fatalf("expected 400 got %d", resp.Code)
	}
}

func TestAuthLoginInvalidCredentials(t *testing.T) {
	svc := &stubAuthService{err: pkgerrors.New(pkgerrors.CodeUnauthorized, "invalid credentials")}
	req := httptest.NewRequest(http.MethodPost, "/api/v1/auth/login", bytes.NewBufferString(`{"email":"ana@example.com","password":"wrong"}`))
	resp := httptest.NewRecorder()

	AuthLogin(svc, nil).ServeHTTP(resp, req)
	if resp.Code != http.StatusUnauthorized {
		t.Fatalf("expected 401 got %d", resp.Code)
	}
	if code := errorCode(t, resp); code != string(pkgerrors.CodeUnauthorized) {
		t.Fatalf("expected unauthorized code got %s", code)
	}
}

func TestAuthRefreshUsesBearerToken(t *testing.T) {
	svc := &stubAuthService{pair: &auth.TokenPair{AccessToken: "new-access", RefreshToken: "new-refresh"}}
	req := httptest.NewRequest(http.MethodPost, "/api/v1/auth/refresh", bytes.NewBufferString(`{"refresh_token":"old-refresh"}`))
	req.Header.Set("Authorization", "Bearer old-access")
	resp := httptest.NewRecorder()

	AuthRefresh(svc, nil).ServeHTTP(resp, req)
	if resp.Code != http.StatusOK {
		t.Fatalf("expected 200 got %d: %s", resp.Code, resp.Body.String())
	}
	if svc.refreshed.AccessToken != "old-access" || svc.refreshed.RefreshToken != "old-refresh" {
		t.Fatalf("unexpected refresh request %+v", svc.refreshed)
	}
}

func TestAuthRefreshMissingHeader(t *testing.T) {
	req := httptest.NewRequest(http.MethodPost, "/api/v1/auth/refresh", bytes.NewBufferString(`{"refresh_token":"old-refresh"}`))
	resp := httptest.NewRecorder()

	AuthRefresh(&stubAuthService{}, nil).ServeHTTP(resp, req)
	if resp.Code != http.StatusUnauthorized {
		t.Fatalf("expected 401 got %d", resp.Code)
	}
}

func TestAuthLogout(t *testing.T) {
	svc := &stubAuthService{}
	req := httptest.NewRequest(http.MethodPost, "/api/v1/auth/logout", nil)
	req.Header.Set("Authorization", "Bearer some-token")
	resp := httptest.NewRecorder()

	AuthLogout(svc, nil).ServeHTTP(resp, req)
	if resp.Code != http.StatusOK {
		t.Fatalf("expected 200 got %d", resp.Code)
	}
	if svc.loggedOut != "some-token" {
		t.Fatalf("expected token revoked got %q", svc.loggedOut)
	}
}
