package ctxutil

import "context"

// Default substitutes context.Background() for a nil ctx so call sites can
// pass optional contexts through without checking.
func Default(ctx context.Context) context.Context {
	if ctx != nil {
		return ctx
	}
	return context.Background()
}
