package app

import (
	"context"

	"gorm.io/gorm"

	"github.com/trainforge/trainforge-backend/internal/http/handlers"
	"github.com/trainforge/trainforge-backend/internal/platform/logger"
)

type Handlers struct {
	Material     *handlers.MaterialHandler
	Relationship *handlers.RelationshipHandler
	Hierarchy    *handlers.HierarchyHandler
	Subcomponent *handlers.SubcomponentHandler

	LearningPath    *handlers.LearningPathHandler
	TrainingProgram *handlers.TrainingProgramHandler

	Asset    *handlers.AssetHandler
	Document *handlers.DocumentHandler

	Health *handlers.HealthHandler
}

func wireHandlers(log *logger.Logger, cfg Config, gdb *gorm.DB, svcs Services) Handlers {
	log.Info("Wiring handlers...")
	return Handlers{
		Material:        handlers.NewMaterialHandler(log, svcs.Material, svcs.Preview),
		Relationship:    handlers.NewRelationshipHandler(svcs.Relationship),
		Hierarchy:       handlers.NewHierarchyHandler(svcs.Hierarchy),
		Subcomponent:    handlers.NewSubcomponentHandler(svcs.Subcomponent),
		LearningPath:    handlers.NewLearningPathHandler(svcs.LearningPath),
		TrainingProgram: handlers.NewTrainingProgramHandler(svcs.TrainingProgram),
		Asset:           handlers.NewAssetHandler(log, svcs.Asset),
		Document:        handlers.NewDocumentHandler(svcs.Document),
		Health:          handlers.NewHealthHandler(cfg.ServiceName, cfg.Version, pingDB(gdb)),
	}
}

func pingDB(gdb *gorm.DB) func(ctx context.Context) error {
	return func(ctx context.Context) error {
		sqlDB, err := gdb.DB()
		if err != nil {
			return err
		}
		return sqlDB.PingContext(ctx)
	}
}
