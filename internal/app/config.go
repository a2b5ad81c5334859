package app

import (
	"github.com/trainforge/trainforge-backend/internal/platform/envutil"
	"github.com/trainforge/trainforge-backend/internal/platform/logger"
)

type Config struct {
	Port        string
	ServiceName string
	Environment string
	Version     string

	JWTSecretKey  string
	RequireTenant bool
}

func LoadConfig(log *logger.Logger) Config {
	cfg := Config{
		Port:          envutil.Str("PORT", "8080"),
		ServiceName:   envutil.Str("SERVICE_NAME", "trainforge-backend"),
		Environment:   envutil.Str("APP_ENV", "development"),
		Version:       envutil.Str("APP_VERSION", ""),
		JWTSecretKey:  envutil.Str("JWT_SECRET_KEY", "defaultsecret"),
		RequireTenant: envutil.Bool("REQUIRE_TENANT", false),
	}
	log.Info("Config loaded",
		"port", cfg.Port,
		"environment", cfg.Environment,
		"require_tenant", cfg.RequireTenant,
	)
	return cfg
}
