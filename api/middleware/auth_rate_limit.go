package middleware

import (
	"bytes"
	"context"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"io"
	"net"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/autoads/autoads-backend/api/responses"
	pkgerrors "github.com/autoads/autoads-backend/pkg/errors"
	"github.com/autoads/autoads-backend/pkg/logger"
)

const maxRateLimitedBody = 64 << 10

type rateLimiterStore interface {
	FixedWindowAllow(ctx context.Context, scope string, limit int64, window time.Duration) (bool, int64, error)
}

// AuthRateLimitPolicy throttles one auth surface per client IP and per
// submitted email. A zero limit disables that dimension.
type AuthRateLimitPolicy struct {
	name       string
	window     time.Duration
	ipLimit    int
	emailLimit int
}

func NewAuthRateLimitPolicy(name string, window time.Duration, ipLimit, emailLimit int) AuthRateLimitPolicy {
	name = strings.ToLower(strings.TrimSpace(name))
	if name == "" {
		name = "auth"
	}
	return AuthRateLimitPolicy{name: name, window: window, ipLimit: ipLimit, emailLimit: emailLimit}
}

func (p AuthRateLimitPolicy) enabled() bool {
	return p.window > 0 && (p.ipLimit > 0 || p.emailLimit > 0)
}

// counter is one fixed window hit to record before the request proceeds.
type counter struct {
	dimension string
	scope     string
	limit     int
	logValue  string
}

func (p AuthRateLimitPolicy) counters(r *http.Request) ([]counter, error) {
	var out []counter
	if p.ipLimit > 0 {
		if ip := ClientIP(r); ip != "" {
			out = append(out, counter{dimension: "ip", scope: "ip:" + p.name + ":" + ip, limit: p.ipLimit, logValue: ip})
		}
	}
	if p.emailLimit > 0 {
		body, err := io.ReadAll(io.LimitReader(r.Body, maxRateLimitedBody))
		if err != nil {
			return nil, err
		}
		r.Body = io.NopCloser(bytes.NewReader(body))
		if email := normalizeEmail(extractEmail(body)); email != "" {
			hash := hashValue(email)
			out = append(out, counter{dimension: "email", scope: "email:" + p.name + ":" + hash, limit: p.emailLimit, logValue: hash})
		}
	}
	return out, nil
}

// AuthRateLimit rejects with 429 and Retry-After once any counter of the
// policy exceeds its limit inside the window. Emails are hashed before they
// reach the store or the logs.
func AuthRateLimit(policy AuthRateLimitPolicy, store rateLimiterStore, logg *logger.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		if !policy.enabled() || store == nil {
			return next
		}
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			ctx := r.Context()
			counters, err := policy.counters(r)
			if err != nil {
				responses.WriteError(ctx, logg, w, pkgerrors.Wrap(pkgerrors.CodeFileRead, err, "read request"))
				return
			}
			for _, c := range counters {
				allowed, hits, err := store.FixedWindowAllow(ctx, c.scope, int64(c.limit), policy.window)
				if err != nil {
					responses.WriteError(ctx, logg, w, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "rate limiting"))
					return
				}
				if !allowed {
					rejectRateLimited(ctx, logg, w, policy, c, hits)
					return
				}
			}
			next.ServeHTTP(w, r)
		})
	}
}

func rejectRateLimited(ctx context.Context, logg *logger.Logger, w http.ResponseWriter, policy AuthRateLimitPolicy, c counter, hits int64) {
	seconds := int(policy.window.Seconds())
	if logg != nil {
		key := "ip"
		if c.dimension == "email" {
			key = "email_hash"
		}
		logg.Warn(logg.WithFields(ctx, map[string]any{
			"policy":         policy.name,
			"dimension":      c.dimension,
			key:              c.logValue,
			"attempts":       hits,
			"limit":          c.limit,
			"window_seconds": seconds,
		}), "auth attempt throttled")
	}
	w.Header().Set("Retry-After", strconv.Itoa(seconds))
	responses.WriteError(ctx, nil, w, pkgerrors.New(pkgerrors.CodeRateLimit, "too many attempts, try again later"))
}

// ClientIP resolves the caller address. The first X-Forwarded-For hop wins,
// then X-Real-IP, then the socket peer.
func ClientIP(r *http.Request) string {
	if r == nil {
		return ""
	}
	for _, hop := range strings.Split(r.Header.Get("X-Forwarded-For"), ",") {
		if ip := strings.TrimSpace(hop); ip != "" {
			return ip
		}
	}
	if ip := strings.TrimSpace(r.Header.Get("X-Real-IP")); ip != "" {
		return ip
	}
	if host, _, err := net.SplitHostPort(r.RemoteAddr); err == nil && host != "" {
		return host
	}
	return r.RemoteAddr
}

func extractEmail(payload []byte) string {
	var body struct {
		Email string `json:"email"`
	}
	if json.Unmarshal(payload, &body) != nil {
		return ""
	}
	return body.Email
}

func normalizeEmail(value string) string {
	return strings.ToLower(strings.TrimSpace(value))
}

func hashValue(value string) string {
	sum := sha256.Sum256([]byte(value))
	return hex.EncodeToString(sum[:])
}
