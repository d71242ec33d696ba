package auth

import "context"

type (
	userKey  struct{}
	tokenKey struct{}
)

// WithCaller attaches the authenticated caller and their token to ctx.
func WithCaller(ctx context.Context, userID, token string) context.Context {
	ctx = context.WithValue(ctx, userKey{}, userID)
	return context.WithValue(ctx, tokenKey{}, token)
}

// UserIDFromContext returns the caller set by the auth interceptor.
func UserIDFromContext(ctx context.Context) (string, bool) {
	id, ok := ctx.Value(userKey{}).(string)
	return id, ok && id != ""
}

// TokenFromContext returns the access token the call carried.
func TokenFromContext(ctx context.Context) (string, bool) {
	tok, ok := ctx.Value(tokenKey{}).(string)
	return tok, ok && tok != ""
}
