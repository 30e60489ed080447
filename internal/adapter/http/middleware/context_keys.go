package middleware

import "context"

// ContextKey is the type of the request context keys set by this package.
type ContextKey string

const (
	// UserIDCtxKey holds the authenticated user id (int64) set by JWTAuth.
	UserIDCtxKey = ContextKey("user_id")
	// RequestIDCtxKey holds the request id set by RequestID.
	RequestIDCtxKey = ContextKey("request_id")
)

// UserIDFromContext returns the user id stored by JWTAuth.
func UserIDFromContext(ctx context.Context) (int64, bool) {
	id, ok := ctx.Value(UserIDCtxKey).(int64)
	return id, ok
}

// RequestIDFromContext returns the id stored by RequestID, or "".
func RequestIDFromContext(ctx context.Context) string {
	id, _ := ctx.Value(RequestIDCtxKey).(string)
	return id
}
