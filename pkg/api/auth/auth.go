package auth

import "context"

// User is the authenticated caller identity. Issuing tokens and managing
// accounts happens outside this service; only extraction lives here.
type User struct {
	UserID int64
}

type contextKey string

const userContextKey contextKey = "user"

func ContextWithUser(ctx context.Context, user User) context.Context {
	return context.WithValue(ctx, userContextKey, user)
}

// UserFromContext returns the caller identity when the request carried a
// valid bearer token.
func UserFromContext(ctx context.Context) (User, bool) {
	user, ok := ctx.Value(userContextKey).(User)
	return user, ok
}
