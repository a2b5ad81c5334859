package ctxutil

import "context"

// carrierKey gives each carried type its own context key: distinct
// instantiations are distinct key types.
type carrierKey[T any] struct{}

func withCarrier[T any](ctx context.Context, v *T) context.Context {
	return context.WithValue(ctx, carrierKey[T]{}, v)
}

func carrier[T any](ctx context.Context) *T {
	v, _ := ctx.Value(carrierKey[T]{}).(*T)
	return v
}
