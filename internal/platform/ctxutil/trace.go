package ctxutil

import "context"

// TraceData carries the correlation ids attached by the trace middleware.
type TraceData struct {
	TraceID   string
	RequestID string
}

func WithTraceData(ctx context.Context, td *TraceData) context.Context {
	return withCarrier(ctx, td)
}

func GetTraceData(ctx context.Context) *TraceData {
	return carrier[TraceData](ctx)
}
