package apollo

import "context"

type requestIDKey struct{}

// ContextWithRequestID attaches an inbound request identifier so provider
// calls can forward it for traceability.
func ContextWithRequestID(ctx context.Context, rid string) context.Context {
	if rid == "" {
		return ctx
	}
	return context.WithValue(ctx, requestIDKey{}, rid)
}

func requestIDFrom(ctx context.Context) string {
	if rid, ok := ctx.Value(requestIDKey{}).(string); ok {
		return rid
	}
	return ""
}
