package controllers

import (
	"context"
	"net/http"

	"github.com/autoads/autoads-backend/api/middleware"
	"github.com/autoads/autoads-backend/api/responses"
	"github.com/autoads/autoads-backend/api/validators"
	"github.com/autoads/autoads-backend/internal/auth"
	"github.com/autoads/autoads-backend/pkg/logger"
)

// authStep turns a request into its response payload.
type authStep func(ctx context.Context, r *http.Request) (any, error)

func authEndpoint(svc auth.Service, logg *logger.Logger, status int, step authStep) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, unavailable("auth"))
			return
		}
		out, err := step(r.Context(), r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccessStatus(w, status, out)
	}
}

// AuthRegister creates the account and logs it in.
func AuthRegister(svc auth.Service, logg *logger.Logger) http.HandlerFunc {
	return authEndpoint(svc, logg, http.StatusCreated, func(ctx context.Context, r *http.Request) (any, error) {
		var body auth.RegisterRequest
		if err := validators.DecodeJSONBody(r, &body); err != nil {
			return nil, err
		}
		return svc.Register(ctx, body)
	})
}

func AuthLogin(svc auth.Service, logg *logger.Logger) http.HandlerFunc {
	return authEndpoint(svc, logg, http.StatusOK, func(ctx context.Context, r *http.Request) (any, error) {
		var body auth.LoginRequest
		if err := validators.DecodeJSONBody(r, &body); err != nil {
			return nil, err
		}
		return svc.Login(ctx, body)
	})
}

// AuthRefresh pairs the refresh token in the body with the access token in
// the Authorization header, which may already be expired.
func AuthRefresh(svc auth.Service, logg *logger.Logger) http.HandlerFunc {
	return authEndpoint(svc, logg, http.StatusOK, func(ctx context.Context, r *http.Request) (any, error) {
		var body auth.RefreshRequest
		if err := validators.DecodeJSONBody(r, &body); err != nil {
			return nil, err
		}
		token, err := middleware.BearerToken(r)
		if err != nil {
			return nil, err
		}
		body.AccessToken = token
		return svc.Refresh(ctx, body)
	})
}

func AuthLogout(svc auth.Service, logg *logger.Logger) http.HandlerFunc {
	return authEndpoint(svc, logg, http.StatusOK, func(ctx context.Context, r *http.Request) (any, error) {
		token, err := middleware.BearerToken(r)
		if err != nil {
			return nil, err
		}
		if err := svc.Logout(ctx, token); err != nil {
			return nil, err
		}
		return map[string]string{"status": "logged_out"}, nil
	})
}
