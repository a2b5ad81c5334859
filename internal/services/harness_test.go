package services

import (
	"context"
	"testing"

	"gorm.io/gorm"

	"github.com/trainforge/trainforge-backend/internal/data/aggregates"
	"github.com/trainforge/trainforge-backend/internal/data/repos"
	"github.com/trainforge/trainforge-backend/internal/data/repos/testutil"
	types "github.com/trainforge/trainforge-backend/internal/domain"
)

// harness wires real repos and services onto the per-test transaction. The
// transaction runner nests as a savepoint, so rollback-on-error stays real
// while the outer transaction keeps the shared test database clean.
type harness struct {
	tx *gorm.DB

	materials     MaterialService
	relationships MaterialRelationshipService
	hierarchy     MaterialHierarchyService
	subcomponents SubcomponentRelationshipService
	paths         LearningPathService
	programs      TrainingProgramService
}

func newHarness(t *testing.T) (context.Context, *harness) {
	t.Helper()
	db := testutil.DB(t)
	tx := testutil.Tx(t, db)
	log := testutil.Logger(t)
	runner := aggregates.NewGormTxRunner(tx)

	materialRepo := repos.NewMaterialRepo(tx, log)
	checklistRepo := repos.NewChecklistEntryRepo(tx, log)
	workflowRepo := repos.NewWorkflowStepRepo(tx, log)
	questionnaireRepo := repos.NewQuestionnaireEntryRepo(tx, log)
	timestampRepo := repos.NewVideoTimestampRepo(tx, log)
	questionRepo := repos.NewQuizQuestionRepo(tx, log)
	answerRepo := repos.NewQuizAnswerRepo(tx, log)
	annotationRepo := repos.NewImageAnnotationRepo(tx, log)
	relationshipRepo := repos.NewMaterialRelationshipRepo(tx, log)
	subcomponentRepo := repos.NewSubcomponentRelationshipRepo(tx, log)
	assetRepo := repos.NewAssetRepo(tx, log)
	pathRepo := repos.NewLearningPathRepo(tx, log)
	programRepo := repos.NewTrainingProgramRepo(tx, log)

	relationships := NewMaterialRelationshipService(tx, log, runner, relationshipRepo, materialRepo, pathRepo, programRepo)
	h := &harness{
		tx: tx,
		materials: NewMaterialService(tx, log, runner,
			materialRepo, checklistRepo, workflowRepo, questionnaireRepo,
			timestampRepo, questionRepo, answerRepo, annotationRepo,
			relationshipRepo, subcomponentRepo, assetRepo),
		relationships: relationships,
		hierarchy:     NewMaterialHierarchyService(tx, log, runner, relationshipRepo, materialRepo),
		subcomponents: NewSubcomponentRelationshipService(tx, log, runner,
			subcomponentRepo, materialRepo, checklistRepo, workflowRepo,
			questionnaireRepo, timestampRepo, questionRepo, answerRepo, annotationRepo),
		paths:    NewLearningPathService(tx, log, runner, pathRepo, relationshipRepo, relationships),
		programs: NewTrainingProgramService(tx, log, runner, programRepo, relationshipRepo, relationships),
	}
	return context.Background(), h
}

func seedMaterial(t *testing.T, ctx context.Context, h *harness, name string) *types.Material {
	t.Helper()
	m, err := h.materials.Create(ctx, &types.Material{TenantID: "t1", Name: name})
	if err != nil {
		t.Fatalf("create material %q: %v", name, err)
	}
	return m
}
