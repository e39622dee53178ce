package middleware

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"
	"time"

	pkgerrors "github.com/autoads/autoads-backend/pkg/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeRateStore struct {
	mu     sync.Mutex
	counts map[string]int64
	err    error
}

func newFakeRateStore() *fakeRateStore {
	return &fakeRateStore{counts: map[string]int64{}}
}

func (f *fakeRateStore) FixedWindowAllow(_ context.Context, scope string, limit int64, _ time.Duration) (bool, int64, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.err != nil {
		return false, 0, f.err
	}
	f.counts[scope]++
	return f.counts[scope] <= limit, f.counts[scope], nil
}

func loginRequest(email, ip string) *http.Request {
	req := httptest.NewRequest(http.MethodPost, "/api/v1/auth/login", strings.NewReader(`{"email":"`+email+`","password":"secret"}`))
	req.RemoteAddr = ip + ":5678"
	return req
}

func TestAuthRateLimitKeepsBodyForHandler(t *testing.T) {
	store := newFakeRateStore()
	var seen string
	handler := AuthRateLimit(NewAuthRateLimitPolicy("login", time.Minute, 2, 2), store, nil)(
		http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			body, _ := io.ReadAll(r.Body)
			seen = string(body)
		}))

	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, loginRequest("tester@example.com", "1.2.3.4"))

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, seen, `"email":"tester@example.com"`)
	assert.EqualValues(t, 1, store.counts["ip:login:1.2.3.4"])
	assert.EqualValues(t, 1, store.counts["email:login:"+hashValue("tester@example.com")])
}

func TestAuthRateLimitBlocks(t *testing.T) {
	cases := []struct {
		name    string
		policy  AuthRateLimitPolicy
		request func(i int) *http.Request
		allowed int
	}{
		{
			name:   "email counter ignores case",
			policy: NewAuthRateLimitPolicy("login", time.Minute, 0, 2),
			request: func(i int) *http.Request {
				if i%2 == 0 {
					return loginRequest("blocked@example.com", "1.2.3.4")
				}
				return loginRequest(" Blocked@Example.com", "1.2.3.5")
			},
			allowed: 2,
		},
		{
			name:   "ip counter uses first forwarded hop",
			policy: NewAuthRateLimitPolicy("register", time.Minute, 1, 0),
			request: func(i int) *http.Request {
				req := loginRequest("user"+string(rune('a'+i))+"@example.com", "10.0.0.1")
				req.Header.Set("X-Forwarded-For", "5.6.7.8, 10.0.0.1")
				return req
			},
			allowed: 1,
		},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			handler := AuthRateLimit(tc.policy, newFakeRateStore(), nil)(okHandler())
			for i := 0; i <= tc.allowed; i++ {
				rec := httptest.NewRecorder()
				handler.ServeHTTP(rec, tc.request(i))
				if i < tc.allowed {
					require.Equal(t, http.StatusOK, rec.Code, "attempt %d", i+1)
					continue
				}
				require.Equal(t, http.StatusTooManyRequests, rec.Code)
				assert.Equal(t, "60", rec.Header().Get("Retry-After"))

				var payload struct {
					Error struct {
						Code string `json:"code"`
					} `json:"error"`
				}
				require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &payload))
				assert.Equal(t, string(pkgerrors.CodeRateLimit), payload.Error.Code)
			}
		})
	}
}

func TestAuthRateLimitStoreFailure(t *testing.T) {
	store := newFakeRateStore()
	store.err = errors.New("redis down")
	handler := AuthRateLimit(NewAuthRateLimitPolicy("login", time.Minute, 1, 1), store, nil)(okHandler())

	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, loginRequest("a@b.co", "1.2.3.4"))
	assert.Equal(t, http.StatusServiceUnavailable, rec.Code)
}

func TestAuthRateLimitDisabledPolicyPassesThrough(t *testing.T) {
	handler := AuthRateLimit(NewAuthRateLimitPolicy("login", 0, 1, 1), newFakeRateStore(), nil)(okHandler())
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, httptest.NewRequest(http.MethodPost, "/", nil))
	assert.Equal(t, http.StatusOK, rec.Code)
}
