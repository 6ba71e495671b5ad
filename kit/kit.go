// Package kit holds the small transport-agnostic pieces shared by the iwa
// service surfaces: the endpoint shape, request-scoped context keys, and
// the MCP registration glue.
package kit

import "context"

// Endpoint is a transport-agnostic operation: decode happens outside, the
// endpoint sees a typed request and returns a serialisable response.
type Endpoint func(ctx context.Context, request any) (any, error)

type contextKey string

const (
	// RequestIDKey carries the per-request id assigned by the proxy.
	RequestIDKey contextKey = "iwa_request_id"
	// SessionIDKey carries the browser-route session id.
	SessionIDKey contextKey = "iwa_session_id"
)

// WithRequestID stores a request id in the context.
func WithRequestID(ctx context.Context, id string) context.Context {
	return context.WithValue(ctx, RequestIDKey, id)
}

// GetRequestID retrieves the request id, or "".
func GetRequestID(ctx context.Context) string {
	v, _ := ctx.Value(RequestIDKey).(string)
	return v
}

// WithSessionID stores a session id in the context.
func WithSessionID(ctx context.Context, id string) context.Context {
	return context.WithValue(ctx, SessionIDKey, id)
}

// GetSessionID retrieves the session id, or "".
func GetSessionID(ctx context.Context) string {
	v, _ := ctx.Value(SessionIDKey).(string)
	return v
}
