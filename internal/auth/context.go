package auth

import "context"

// Identity is the authenticated principal for one request. It replaces any
// notion of process-wide session state: middleware builds it from the token
// and stores it in the request context.
type Identity struct {
	UserID    string
	Username  string
	Role      string // "teacher" or "student"
	ProfileID string // students.id or teachers.id depending on Role
}

type ctxKey struct{}

var identityKey ctxKey

func WithIdentity(ctx context.Context, id Identity) context.Context {
	return context.WithValue(ctx, identityKey, id)
}

func IdentityFromContext(ctx context.Context) (Identity, bool) {
	id, ok := ctx.Value(identityKey).(Identity)
	return id, ok
}
