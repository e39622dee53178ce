package middleware

import "context"

type contextKey string

const ctxIdentity contextKey = "identity"

// Identity is the authenticated caller attached by Auth.
type Identity struct {
	UserID    string
	Email     string
	SessionID string
}

// IdentityFromContext returns the caller set by Auth, if any.
func IdentityFromContext(ctx context.Context) (Identity, bool) {
	if ctx == nil {
		return Identity{}, false
	}
	id, ok := ctx.Value(ctxIdentity).(Identity)
	return id, ok
}

// WithIdentity attaches id to ctx.
func WithIdentity(ctx context.Context, id Identity) context.Context {
	if ctx == nil {
		ctx = context.Background()
	}
	return context.WithValue(ctx, ctxIdentity, id)
}

func UserIDFromContext(ctx context.Context) string {
	id, _ := IdentityFromContext(ctx)
	return id.UserID
}

func UserEmailFromContext(ctx context.Context) string {
	id, _ := IdentityFromContext(ctx)
	return id.Email
}

// WithUserID attaches a caller that only carries a user id.
func WithUserID(ctx context.Context, userID string) context.Context {
	id, _ := IdentityFromContext(ctx)
	id.UserID = userID
	return WithIdentity(ctx, id)
}
