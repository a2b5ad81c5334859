package app

import (
	"github.com/trainforge/trainforge-backend/internal/http/middleware"
	"github.com/trainforge/trainforge-backend/internal/platform/logger"
)

type Middleware struct {
	Tenant *middleware.TenantMiddleware
}

func wireMiddleware(log *logger.Logger, cfg Config) Middleware {
	log.Info("Wiring middleware...")
	return Middleware{
		Tenant: middleware.NewTenantMiddleware(log, cfg.JWTSecretKey, cfg.RequireTenant),
	}
}
