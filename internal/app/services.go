package app

import (
	"fmt"

	"gorm.io/gorm"

	"github.com/trainforge/trainforge-backend/internal/data/aggregates"
	"github.com/trainforge/trainforge-backend/internal/platform/logger"
	"github.com/trainforge/trainforge-backend/internal/services"
)

type Services struct {
	Material     services.MaterialService
	Relationship services.MaterialRelationshipService
	Hierarchy    services.MaterialHierarchyService
	Subcomponent services.SubcomponentRelationshipService

	LearningPath    services.LearningPathService
	TrainingProgram services.TrainingProgramService

	Asset    services.AssetService
	Preview  services.PreviewService
	Document services.DocumentService

	DocPoller services.DocStatusPoller
}

func wireServices(db *gorm.DB, log *logger.Logger, repos Repos, clients Clients) (Services, error) {
	log.Info("Wiring services...")
	tx := aggregates.NewGormTxRunner(db)

	material := services.NewMaterialService(
		db, log, tx,
		repos.Material,
		repos.Checklist,
		repos.Workflow,
		repos.Questionnaire,
		repos.Timestamp,
		repos.QuizQuestion,
		repos.QuizAnswer,
		repos.Annotation,
		repos.Relationship,
		repos.Subcomponent,
		repos.Asset,
	)
	relationship := services.NewMaterialRelationshipService(
		db, log, tx,
		repos.Relationship,
		repos.Material,
		repos.LearningPath,
		repos.TrainingProgram,
	)
	hierarchy := services.NewMaterialHierarchyService(db, log, tx, repos.Relationship, repos.Material)
	subcomponent := services.NewSubcomponentRelationshipService(
		db, log, tx,
		repos.Subcomponent,
		repos.Material,
		repos.Checklist,
		repos.Workflow,
		repos.Questionnaire,
		repos.Timestamp,
		repos.QuizQuestion,
		repos.QuizAnswer,
		repos.Annotation,
	)

	learningPath := services.NewLearningPathService(db, log, tx, repos.LearningPath, repos.Relationship, relationship)
	trainingProgram := services.NewTrainingProgramService(db, log, tx, repos.TrainingProgram, repos.Relationship, relationship)

	asset := services.NewAssetService(db, log, tx, repos.Asset, repos.Material, clients.Bucket)
	preview, err := services.NewPreviewService(db, log, repos.Material, clients.Bucket)
	if err != nil {
		return Services{}, fmt.Errorf("init preview service: %w", err)
	}
	document := services.NewDocumentService(
		db, log, tx,
		repos.DocumentJob,
		repos.Asset,
		repos.Material,
		clients.DocRegistry,
		clients.StatusBus,
	)
	poller := services.NewDocStatusPoller(
		db, log, tx,
		repos.DocumentJob,
		repos.Asset,
		clients.DocRegistry,
		clients.StatusBus,
	)

	return Services{
		Material:        material,
		Relationship:    relationship,
		Hierarchy:       hierarchy,
		Subcomponent:    subcomponent,
		LearningPath:    learningPath,
		TrainingProgram: trainingProgram,
		Asset:           asset,
		Preview:         preview,
		Document:        document,
		DocPoller:       poller,
	}, nil
}
