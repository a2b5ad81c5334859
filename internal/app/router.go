package app

import (
	trfhttp "github.com/trainforge/trainforge-backend/internal/http"
	"github.com/trainforge/trainforge-backend/internal/platform/logger"
)

func wireServer(log *logger.Logger, cfg Config, h Handlers, mw Middleware) *trfhttp.Server {
	log.Info("Wiring router...")
	return trfhttp.NewServer(trfhttp.RouterConfig{
		Log:         log,
		ServiceName: cfg.ServiceName,

		TenantMiddleware: mw.Tenant,

		MaterialHandler:        h.Material,
		RelationshipHandler:    h.Relationship,
		HierarchyHandler:       h.Hierarchy,
		SubcomponentHandler:    h.Subcomponent,
		LearningPathHandler:    h.LearningPath,
		TrainingProgramHandler: h.TrainingProgram,
		AssetHandler:           h.Asset,
		DocumentHandler:        h.Document,
		HealthHandler:          h.Health,
	})
}
