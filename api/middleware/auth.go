package middleware

import (
	"context"
	"net/http"
	"strings"

	"github.com/autoads/autoads-backend/api/responses"
	pkgAuth "github.com/autoads/autoads-backend/pkg/auth"
	"github.com/autoads/autoads-backend/pkg/auth/session"
	"github.com/autoads/autoads-backend/pkg/config"
	pkgerrors "github.com/autoads/autoads-backend/pkg/errors"
	"github.com/autoads/autoads-backend/pkg/logger"
)

var errMissingCredentials = pkgerrors.New(pkgerrors.CodeUnauthorized, "missing credentials")

// BearerToken reads the Authorization header. The "Bearer " scheme prefix
// is optional and case-insensitive.
func BearerToken(r *http.Request) (string, error) {
	raw := strings.TrimSpace(r.Header.Get("Authorization"))
	if scheme, rest, _ := strings.Cut(raw, " "); strings.EqualFold(scheme, "bearer") {
		raw = strings.TrimSpace(rest)
	}
	if raw == "" {
		return "", errMissingCredentials
	}
	return raw, nil
}

// Auth requires a valid access token. When verifier is set, the token's
// session must also still exist, so logout and rotation revoke it at once.
func Auth(cfg config.JWTConfig, verifier session.AccessSessionChecker, logg *logger.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			id, err := authenticate(r.Context(), r, cfg, verifier)
			if err != nil {
				responses.WriteError(r.Context(), logg, w, err)
				return
			}
			ctx := WithIdentity(r.Context(), id)
			if logg != nil {
				ctx = logg.WithUserID(ctx, id.UserID)
			}
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

func authenticate(ctx context.Context, r *http.Request, cfg config.JWTConfig, verifier session.AccessSessionChecker) (Identity, error) {
	token, err := BearerToken(r)
	if err != nil {
		return Identity{}, err
	}
	claims, err := pkgAuth.ParseAccessToken(cfg, token)
	if err != nil {
		return Identity{}, pkgerrors.Wrap(pkgerrors.CodeUnauthorized, err, "invalid token")
	}
	if claims.ID == "" {
		return Identity{}, pkgerrors.New(pkgerrors.CodeUnauthorized, "missing session id")
	}
	if verifier != nil {
		live, err := verifier.HasSession(ctx, claims.ID)
		if err != nil {
			return Identity{}, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "validate session")
		}
		if !live {
			return Identity{}, pkgerrors.New(pkgerrors.CodeUnauthorized, "session unavailable")
		}
	}
	return Identity{UserID: claims.UserID.String(), Email: claims.Email, SessionID: claims.ID}, nil
}
