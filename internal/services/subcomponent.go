package services

import (
	"context"
	"time"

	"gorm.io/gorm"

	"github.com/trainforge/trainforge-backend/internal/data/aggregates"
	"github.com/trainforge/trainforge-backend/internal/data/repos"
	types "github.com/trainforge/trainforge-backend/internal/domain"
	"github.com/trainforge/trainforge-backend/internal/domain/faults"
	"github.com/trainforge/trainforge-backend/internal/platform/dbctx"
	"github.com/trainforge/trainforge-backend/internal/platform/logger"
)

// SubcomponentRelationshipService tags non-material child rows (checklist
// entries, workflow steps, quiz questions...) with supplementary materials.
// The subcomponent kind is a closed whitelist and every assign validates
// both the child row and the material actually exist.
type SubcomponentRelationshipService interface {
	AssignToSubcomponent(ctx context.Context, kind types.SubcomponentKind, subcomponentID, materialID uint, relationshipType string, displayOrder *int) (uint, error)
	RemoveFromSubcomponent(ctx context.Context, kind types.SubcomponentKind, subcomponentID, materialID uint) (bool, error)
	ListMaterialsBySubcomponent(ctx context.Context, kind types.SubcomponentKind, subcomponentID uint) ([]*types.Material, error)
	ListBySubcomponentMaterial(ctx context.Context, materialID uint) ([]*types.SubcomponentMaterialRelationship, error)

	AssignMaterialToChecklistEntry(ctx context.Context, entryID, materialID uint, relationshipType string, displayOrder *int) (uint, error)
	RemoveMaterialFromChecklistEntry(ctx context.Context, entryID, materialID uint) (bool, error)
	ListMaterialsByChecklistEntry(ctx context.Context, entryID uint) ([]*types.Material, error)

	AssignMaterialToWorkflowStep(ctx context.Context, stepID, materialID uint, relationshipType string, displayOrder *int) (uint, error)
	RemoveMaterialFromWorkflowStep(ctx context.Context, stepID, materialID uint) (bool, error)
	ListMaterialsByWorkflowStep(ctx context.Context, stepID uint) ([]*types.Material, error)

	AssignMaterialToQuestionnaireEntry(ctx context.Context, entryID, materialID uint, relationshipType string, displayOrder *int) (uint, error)
	RemoveMaterialFromQuestionnaireEntry(ctx context.Context, entryID, materialID uint) (bool, error)
	ListMaterialsByQuestionnaireEntry(ctx context.Context, entryID uint) ([]*types.Material, error)

	AssignMaterialToVideoTimestamp(ctx context.Context, timestampID, materialID uint, relationshipType string, displayOrder *int) (uint, error)
	RemoveMaterialFromVideoTimestamp(ctx context.Context, timestampID, materialID uint) (bool, error)
	ListMaterialsByVideoTimestamp(ctx context.Context, timestampID uint) ([]*types.Material, error)

	AssignMaterialToQuizQuestion(ctx context.Context, questionID, materialID uint, relationshipType string, displayOrder *int) (uint, error)
	RemoveMaterialFromQuizQuestion(ctx context.Context, questionID, materialID uint) (bool, error)
	ListMaterialsByQuizQuestion(ctx context.Context, questionID uint) ([]*types.Material, error)

	AssignMaterialToQuizAnswer(ctx context.Context, answerID, materialID uint, relationshipType string, displayOrder *int) (uint, error)
	RemoveMaterialFromQuizAnswer(ctx context.Context, answerID, materialID uint) (bool, error)
	ListMaterialsByQuizAnswer(ctx context.Context, answerID uint) ([]*types.Material, error)

	AssignMaterialToImageAnnotation(ctx context.Context, annotationID, materialID uint, relationshipType string, displayOrder *int) (uint, error)
	RemoveMaterialFromImageAnnotation(ctx context.Context, annotationID, materialID uint) (bool, error)
	ListMaterialsByImageAnnotation(ctx context.Context, annotationID uint) ([]*types.Material, error)
}

type subcomponentRelationshipService struct {
	db  *gorm.DB
	log *logger.Logger
	tx  aggregates.TxRunner

	subcomponentRepo  repos.SubcomponentRelationshipRepo
	materialRepo      repos.MaterialRepo
	checklistRepo     repos.ChecklistEntryRepo
	workflowRepo      repos.WorkflowStepRepo
	questionnaireRepo repos.QuestionnaireEntryRepo
	timestampRepo     repos.VideoTimestampRepo
	questionRepo      repos.QuizQuestionRepo
	answerRepo        repos.QuizAnswerRepo
	annotationRepo    repos.ImageAnnotationRepo
}

func NewSubcomponentRelationshipService(
	db *gorm.DB,
	baseLog *logger.Logger,
	tx aggregates.TxRunner,
	subcomponentRepo repos.SubcomponentRelationshipRepo,
	materialRepo repos.MaterialRepo,
	checklistRepo repos.ChecklistEntryRepo,
	workflowRepo repos.WorkflowStepRepo,
	questionnaireRepo repos.QuestionnaireEntryRepo,
	timestampRepo repos.VideoTimestampRepo,
	questionRepo repos.QuizQuestionRepo,
	answerRepo repos.QuizAnswerRepo,
	annotationRepo repos.ImageAnnotationRepo,
) SubcomponentRelationshipService {
	serviceLog := baseLog.With("service", "SubcomponentRelationshipService")
	return &subcomponentRelationshipService{
		db:                db,
		log:               serviceLog,
		tx:                tx,
		subcomponentRepo:  subcomponentRepo,
		materialRepo:      materialRepo,
		checklistRepo:     checklistRepo,
		workflowRepo:      workflowRepo,
		questionnaireRepo: questionnaireRepo,
		timestampRepo:     timestampRepo,
		questionRepo:      questionRepo,
		answerRepo:        answerRepo,
		annotationRepo:    annotationRepo,
	}
}

// subcomponentExists dispatches the existence probe on the kind string; one
// query per kind, no cast probing.
func (s *subcomponentRelationshipService) subcomponentExists(dbc dbctx.Context, kind types.SubcomponentKind, id uint) (bool, error) {
	switch kind {
	case types.SubcomponentChecklistEntry:
		return s.checklistRepo.Exists(dbc, id)
	case types.SubcomponentWorkflowStep:
		return s.workflowRepo.Exists(dbc, id)
	case types.SubcomponentQuestionnaireEntry:
		return s.questionnaireRepo.Exists(dbc, id)
	case types.SubcomponentVideoTimestamp:
		return s.timestampRepo.Exists(dbc, id)
	case types.SubcomponentQuizQuestion:
		return s.questionRepo.Exists(dbc, id)
	case types.SubcomponentQuizAnswer:
		return s.answerRepo.Exists(dbc, id)
	case types.SubcomponentImageAnnotation:
		return s.annotationRepo.Exists(dbc, id)
	default:
		return false, nil
	}
}

// =====================================
// Generic ops
// =====================================

func (s *subcomponentRelationshipService) AssignToSubcomponent(ctx context.Context, kind types.SubcomponentKind, subcomponentID, materialID uint, relationshipType string, displayOrder *int) (uint, error) {
	const op = "subcomponents.assign"
	if !kind.Valid() {
		return 0, faults.Newf(faults.CodeValidation, op, "unknown subcomponent type %q", kind)
	}
	s.log.Info("Assign material to subcomponent", "subcomponent_type", kind, "subcomponent_id", subcomponentID, "material_id", materialID)
	return aggregates.InTxResult(ctx, s.tx, func(dbc dbctx.Context) (uint, error) {
		ok, err := s.subcomponentExists(dbc, kind, subcomponentID)
		if err != nil {
			return 0, aggregates.MapError(op, err)
		}
		if !ok {
			return 0, faults.Newf(faults.CodeNotFound, op, "%s %d not found", kind, subcomponentID)
		}
		m, err := s.materialRepo.GetByID(dbc, materialID)
		if err != nil {
			return 0, aggregates.MapError(op, err)
		}
		if m == nil {
			return 0, faults.Newf(faults.CodeNotFound, op, "material %d not found", materialID)
		}

		// Uniqueness is on the (kind, subcomponent, material) triple; the
		// relationship type does not disambiguate duplicates.
		existing, err := s.subcomponentRepo.GetByTriple(dbc, kind, subcomponentID, materialID)
		if err != nil {
			return 0, aggregates.MapError(op, err)
		}
		if existing != nil {
			return 0, faults.Newf(faults.CodeConflict, op,
				"%s %d is already linked to material %d", kind, subcomponentID, materialID)
		}

		order := displayOrder
		if order == nil {
			max, err := s.subcomponentRepo.MaxDisplayOrder(dbc, kind, subcomponentID)
			if err != nil {
				return 0, aggregates.MapError(op, err)
			}
			next := max + 1
			order = &next
		}
		now := time.Now().UTC()
		edge := &types.SubcomponentMaterialRelationship{
			SubcomponentID:    subcomponentID,
			SubcomponentType:  kind,
			RelatedMaterialID: materialID,
			RelationshipType:  relationshipType,
			DisplayOrder:      order,
			CreatedAt:         now,
			UpdatedAt:         now,
		}
		if _, err := s.subcomponentRepo.Create(dbc, edge); err != nil {
			return 0, aggregates.MapError(op, err)
		}
		return edge.ID, nil
	})
}

func (s *subcomponentRelationshipService) RemoveFromSubcomponent(ctx context.Context, kind types.SubcomponentKind, subcomponentID, materialID uint) (bool, error) {
	const op = "subcomponents.remove"
	if !kind.Valid() {
		return false, faults.Newf(faults.CodeValidation, op, "unknown subcomponent type %q", kind)
	}
	dbc := dbctx.New(ctx)
	edge, err := s.subcomponentRepo.GetByTriple(dbc, kind, subcomponentID, materialID)
	if err != nil {
		return false, aggregates.MapError(op, err)
	}
	if edge == nil {
		return false, nil
	}
	if err := s.subcomponentRepo.FullDeleteByIDs(dbc, []uint{edge.ID}); err != nil {
		return false, aggregates.MapError(op, err)
	}
	return true, nil
}

func (s *subcomponentRelationshipService) ListMaterialsBySubcomponent(ctx context.Context, kind types.SubcomponentKind, subcomponentID uint) ([]*types.Material, error) {
	const op = "subcomponents.list_materials"
	if !kind.Valid() {
		return nil, faults.Newf(faults.CodeValidation, op, "unknown subcomponent type %q", kind)
	}
	dbc := dbctx.New(ctx)
	edges, err := s.subcomponentRepo.ListBySubcomponent(dbc, kind, subcomponentID)
	if err != nil {
		return nil, aggregates.MapError(op, err)
	}
	ids := make([]uint, 0, len(edges))
	for _, e := range edges {
		ids = append(ids, e.RelatedMaterialID)
	}
	rows, err := s.materialRepo.GetByIDs(dbc, ids)
	if err != nil {
		return nil, aggregates.MapError(op, err)
	}
	byID := make(map[uint]*types.Material, len(rows))
	for _, m := range rows {
		byID[m.ID] = m
	}
	out := make([]*types.Material, 0, len(ids))
	for _, id := range ids {
		if m, ok := byID[id]; ok {
			out = append(out, m)
		}
	}
	return out, nil
}

func (s *subcomponentRelationshipService) ListBySubcomponentMaterial(ctx context.Context, materialID uint) ([]*types.SubcomponentMaterialRelationship, error) {
	rows, err := s.subcomponentRepo.ListByRelatedMaterial(dbctx.New(ctx), materialID)
	if err != nil {
		return nil, aggregates.MapError("subcomponents.list_by_material", err)
	}
	return rows, nil
}

// =====================================
// Per-kind wrappers
// =====================================

func (s *subcomponentRelationshipService) AssignMaterialToChecklistEntry(ctx context.Context, entryID, materialID uint, relationshipType string, displayOrder *int) (uint, error) {
	return s.AssignToSubcomponent(ctx, types.SubcomponentChecklistEntry, entryID, materialID, relationshipType, displayOrder)
}

func (s *subcomponentRelationshipService) RemoveMaterialFromChecklistEntry(ctx context.Context, entryID, materialID uint) (bool, error) {
	return s.RemoveFromSubcomponent(ctx, types.SubcomponentChecklistEntry, entryID, materialID)
}

func (s *subcomponentRelationshipService) ListMaterialsByChecklistEntry(ctx context.Context, entryID uint) ([]*types.Material, error) {
	return s.ListMaterialsBySubcomponent(ctx, types.SubcomponentChecklistEntry, entryID)
}

func (s *subcomponentRelationshipService) AssignMaterialToWorkflowStep(ctx context.Context, stepID, materialID uint, relationshipType string, displayOrder *int) (uint, error) {
	return s.AssignToSubcomponent(ctx, types.SubcomponentWorkflowStep, stepID, materialID, relationshipType, displayOrder)
}

func (s *subcomponentRelationshipService) RemoveMaterialFromWorkflowStep(ctx context.Context, stepID, materialID uint) (bool, error) {
	return s.RemoveFromSubcomponent(ctx, types.SubcomponentWorkflowStep, stepID, materialID)
}

func (s *subcomponentRelationshipService) ListMaterialsByWorkflowStep(ctx context.Context, stepID uint) ([]*types.Material, error) {
	return s.ListMaterialsBySubcomponent(ctx, types.SubcomponentWorkflowStep, stepID)
}

func (s *subcomponentRelationshipService) AssignMaterialToQuestionnaireEntry(ctx context.Context, entryID, materialID uint, relationshipType string, displayOrder *int) (uint, error) {
	return s.AssignToSubcomponent(ctx, types.SubcomponentQuestionnaireEntry, entryID, materialID, relationshipType, displayOrder)
}

func (s *subcomponentRelationshipService) RemoveMaterialFromQuestionnaireEntry(ctx context.Context, entryID, materialID uint) (bool, error) {
	return s.RemoveFromSubcomponent(ctx, types.SubcomponentQuestionnaireEntry, entryID, materialID)
}

func (s *subcomponentRelationshipService) ListMaterialsByQuestionnaireEntry(ctx context.Context, entryID uint) ([]*types.Material, error) {
	return s.ListMaterialsBySubcomponent(ctx, types.SubcomponentQuestionnaireEntry, entryID)
}

func (s *subcomponentRelationshipService) AssignMaterialToVideoTimestamp(ctx context.Context, timestampID, materialID uint, relationshipType string, displayOrder *int) (uint, error) {
	return s.AssignToSubcomponent(ctx, types.SubcomponentVideoTimestamp, timestampID, materialID, relationshipType, displayOrder)
}

func (s *subcomponentRelationshipService) RemoveMaterialFromVideoTimestamp(ctx context.Context, timestampID, materialID uint) (bool, error) {
	return s.RemoveFromSubcomponent(ctx, types.SubcomponentVideoTimestamp, timestampID, materialID)
}

func (s *subcomponentRelationshipService) ListMaterialsByVideoTimestamp(ctx context.Context, timestampID uint) ([]*types.Material, error) {
	return s.ListMaterialsBySubcomponent(ctx, types.SubcomponentVideoTimestamp, timestampID)
}

func (s *subcomponentRelationshipService) AssignMaterialToQuizQuestion(ctx context.Context, questionID, materialID uint, relationshipType string, displayOrder *int) (uint, error) {
	return s.AssignToSubcomponent(ctx, types.SubcomponentQuizQuestion, questionID, materialID, relationshipType, displayOrder)
}

func (s *subcomponentRelationshipService) RemoveMaterialFromQuizQuestion(ctx context.Context, questionID, materialID uint) (bool, error) {
	return s.RemoveFromSubcomponent(ctx, types.SubcomponentQuizQuestion, questionID, materialID)
}

func (s *subcomponentRelationshipService) ListMaterialsByQuizQuestion(ctx context.Context, questionID uint) ([]*types.Material, error) {
	return s.ListMaterialsBySubcomponent(ctx, types.SubcomponentQuizQuestion, questionID)
}

func (s *subcomponentRelationshipService) AssignMaterialToQuizAnswer(ctx context.Context, answerID, materialID uint, relationshipType string, displayOrder *int) (uint, error) {
	return s.AssignToSubcomponent(ctx, types.SubcomponentQuizAnswer, answerID, materialID, relationshipType, displayOrder)
}

func (s *subcomponentRelationshipService) RemoveMaterialFromQuizAnswer(ctx context.Context, answerID, materialID uint) (bool, error) {
	return s.RemoveFromSubcomponent(ctx, types.SubcomponentQuizAnswer, answerID, materialID)
}

func (s *subcomponentRelationshipService) ListMaterialsByQuizAnswer(ctx context.Context, answerID uint) ([]*types.Material, error) {
	return s.ListMaterialsBySubcomponent(ctx, types.SubcomponentQuizAnswer, answerID)
}

func (s *subcomponentRelationshipService) AssignMaterialToImageAnnotation(ctx context.Context, annotationID, materialID uint, relationshipType string, displayOrder *int) (uint, error) {
	return s.AssignToSubcomponent(ctx, types.SubcomponentImageAnnotation, annotationID, materialID, relationshipType, displayOrder)
}

func (s *subcomponentRelationshipService) RemoveMaterialFromImageAnnotation(ctx context.Context, annotationID, materialID uint) (bool, error) {
	return s.RemoveFromSubcomponent(ctx, types.SubcomponentImageAnnotation, annotationID, materialID)
}

func (s *subcomponentRelationshipService) ListMaterialsByImageAnnotation(ctx context.Context, annotationID uint) ([]*types.Material, error) {
	return s.ListMaterialsBySubcomponent(ctx, types.SubcomponentImageAnnotation, annotationID)
}
