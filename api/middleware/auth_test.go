package middleware

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/autoads/autoads-backend/pkg/auth"
	"github.com/autoads/autoads-backend/pkg/auth/session"
	"github.com/autoads/autoads-backend/pkg/config"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testJWTConfig() config.JWTConfig {
	return config.JWTConfig{Secret: "secret", Issuer: "issuer", ExpirationMinutes: 60}
}

func okHandler() http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	})
}

func TestAuthRejections(t *testing.T) {
	cfg := testJWTConfig()
	valid := mintTestToken(t, cfg, uuid.New(), "")

	cases := []struct {
		name     string
		header   string
		verifier stubSessionVerifier
		status   int
	}{
		{name: "missing token", verifier: stubSessionVerifier{ok: true}, status: http.StatusUnauthorized},
		{name: "garbage token", header: "Bearer invalid", verifier: stubSessionVerifier{ok: true}, status: http.StatusUnauthorized},
		{name: "revoked session", header: "Bearer " + valid, verifier: stubSessionVerifier{ok: false}, status: http.StatusUnauthorized},
		{name: "session store down", header: "Bearer " + valid, verifier: stubSessionVerifier{err: errors.New("redis down")}, status: http.StatusServiceUnavailable},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			handler := Auth(cfg, tc.verifier, nil)(okHandler())
			req := httptest.NewRequest(http.MethodGet, "/", nil)
			if tc.header != "" {
				req.Header.Set("Authorization", tc.header)
			}
			rec := httptest.NewRecorder()
			handler.ServeHTTP(rec, req)
			assert.Equal(t, tc.status, rec.Code)
		})
	}
}

func TestAuthAttachesIdentity(t *testing.T) {
	cfg := testJWTConfig()
	userID := uuid.New()
	token := mintTestToken(t, cfg, userID, "maria@example.com")

	var got Identity
	handler := Auth(cfg, stubSessionVerifier{ok: true}, nil)(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		got, _ = IdentityFromContext(r.Context())
	}))

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.Header.Set("Authorization", "bearer "+token)
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)

	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, userID.String(), got.UserID)
	assert.Equal(t, "maria@example.com", got.Email)
	assert.NotEmpty(t, got.SessionID)
}

func TestBearerToken(t *testing.T) {
	for header, want := range map[string]string{
		"Bearer abc":   "abc",
		"BEARER  abc ": "abc",
		"abc":          "abc",
	} {
		req := httptest.NewRequest(http.MethodGet, "/", nil)
		req.Header.Set("Authorization", header)
		got, err := BearerToken(req)
		require.NoError(t, err, header)
		assert.Equal(t, want, got)
	}
	for _, header := range []string{"", "Bearer   "} {
		req := httptest.NewRequest(http.MethodGet, "/", nil)
		req.Header.Set("Authorization", header)
		_, err := BearerToken(req)
		assert.Error(t, err, header)
	}
}

func TestWithUserIDKeepsEmail(t *testing.T) {
	ctx := WithIdentity(context.Background(), Identity{UserID: "a", Email: "a@b.co"})
	ctx = WithUserID(ctx, "b")
	assert.Equal(t, "b", UserIDFromContext(ctx))
	assert.Equal(t, "a@b.co", UserEmailFromContext(ctx))
	assert.Empty(t, UserIDFromContext(context.Background()))
}

func mintTestToken(t *testing.T, cfg config.JWTConfig, userID uuid.UUID, email string) string {
	t.Helper()
	token, err := auth.MintAccessToken(cfg, time.Now(), auth.AccessTokenPayload{
		UserID: userID,
		Email:  email,
		JTI:    session.NewAccessID(),
	})
	if err != nil {
		t.Fatalf("mint token: %v", err)
	}
	return token
}

type stubSessionVerifier struct {
	ok  bool
	err error
}

func (s stubSessionVerifier) HasSession(ctx context.Context, accessID string) (bool, error) {
	if s.err != nil {
		return false, s.err
	}
	return s.ok, nil
}
