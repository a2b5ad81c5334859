package ctxutil

import "context"

// TenantData is resolved once per request by the tenant middleware.
type TenantData struct {
	TenantID string
	Subject  string
}

func WithTenantData(ctx context.Context, td *TenantData) context.Context {
	return withCarrier(ctx, td)
}

func GetTenantData(ctx context.Context) *TenantData {
	return carrier[TenantData](ctx)
}

// TenantID returns the resolved tenant id or "" when the request is untenanted.
func TenantID(ctx context.Context) string {
	if td := GetTenantData(ctx); td != nil {
		return td.TenantID
	}
	return ""
}
