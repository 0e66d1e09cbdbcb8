package services

import "context"

type contextKey string

const (
	mediaIDKey   contextKey = "media_id"
	componentKey contextKey = "component"
	requestIDKey contextKey = "request_id"
)

// WithMediaID annotates context with the media identifier being processed.
func WithMediaID(ctx context.Context, id int64) context.Context {
	return context.WithValue(ctx, mediaIDKey, id)
}

// MediaIDFromContext extracts the media identifier if present.
func MediaIDFromContext(ctx context.Context) (int64, bool) {
	v := ctx.Value(mediaIDKey)
	if v == nil {
		return 0, false
	}
	switch val := v.(type) {
	case int64:
		return val, true
	case int:
		return int64(val), true
	default:
		return 0, false
	}
}

// WithComponent annotates context with the component name doing the work.
func WithComponent(ctx context.Context, component string) context.Context {
	if component == "" {
		return ctx
	}
	return context.WithValue(ctx, componentKey, component)
}

// ComponentFromContext returns the component name if present.
func ComponentFromContext(ctx context.Context) (string, bool) {
	if v, ok := ctx.Value(componentKey).(string); ok && v != "" {
		return v, true
	}
	return "", false
}

// WithRequestID annotates context with a correlation identifier.
func WithRequestID(ctx context.Context, id string) context.Context {
	if id == "" {
		return ctx
	}
	return context.WithValue(ctx, requestIDKey, id)
}

// RequestIDFromContext extracts the correlation identifier if present.
func RequestIDFromContext(ctx context.Context) (string, bool) {
	if v, ok := ctx.Value(requestIDKey).(string); ok && v != "" {
		return v, true
	}
	return "", false
}
