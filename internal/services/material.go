package services

import (
	"context"
	"strings"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/trainforge/trainforge-backend/internal/data/aggregates"
	"github.com/trainforge/trainforge-backend/internal/data/repos"
	types "github.com/trainforge/trainforge-backend/internal/domain"
	"github.com/trainforge/trainforge-backend/internal/domain/faults"
	"github.com/trainforge/trainforge-backend/internal/platform/ctxutil"
	"github.com/trainforge/trainforge-backend/internal/platform/dbctx"
	"github.com/trainforge/trainforge-backend/internal/platform/logger"
)

// MaterialService owns the polymorphic material row and its child
// collections. Classification is structural: the stored discriminator is
// derived from the populated variant payload, never trusted from the caller.
type MaterialService interface {
	Create(ctx context.Context, m *types.Material) (*types.Material, error)
	CreateWithChildren(ctx context.Context, m *types.Material) (*types.Material, error)

	GetByID(ctx context.Context, id uint) (*types.Material, error)
	GetComplete(ctx context.Context, id uint) (*types.Material, error)
	ListByTenant(ctx context.Context, tenantID string) ([]*types.Material, error)

	Update(ctx context.Context, m *types.Material) (*types.Material, error)
	Delete(ctx context.Context, id uint) (bool, error)

	AssignAsset(ctx context.Context, materialID, assetID uint) (bool, error)
	RemoveAsset(ctx context.Context, materialID uint) (bool, error)
	GetAssetID(ctx context.Context, materialID uint) (*uint, error)
	ListByAsset(ctx context.Context, assetID uint) ([]*types.Material, error)
}

type materialService struct {
	db  *gorm.DB
	log *logger.Logger
	tx  aggregates.TxRunner

	materialRepo      repos.MaterialRepo
	checklistRepo     repos.ChecklistEntryRepo
	workflowRepo      repos.WorkflowStepRepo
	questionnaireRepo repos.QuestionnaireEntryRepo
	timestampRepo     repos.VideoTimestampRepo
	questionRepo      repos.QuizQuestionRepo
	answerRepo        repos.QuizAnswerRepo
	annotationRepo    repos.ImageAnnotationRepo
	relationshipRepo  repos.MaterialRelationshipRepo
	subcomponentRepo  repos.SubcomponentRelationshipRepo
	assetRepo         repos.AssetRepo
}

func NewMaterialService(
	db *gorm.DB,
	baseLog *logger.Logger,
	tx aggregates.TxRunner,
	materialRepo repos.MaterialRepo,
	checklistRepo repos.ChecklistEntryRepo,
	workflowRepo repos.WorkflowStepRepo,
	questionnaireRepo repos.QuestionnaireEntryRepo,
	timestampRepo repos.VideoTimestampRepo,
	questionRepo repos.QuizQuestionRepo,
	answerRepo repos.QuizAnswerRepo,
	annotationRepo repos.ImageAnnotationRepo,
	relationshipRepo repos.MaterialRelationshipRepo,
	subcomponentRepo repos.SubcomponentRelationshipRepo,
	assetRepo repos.AssetRepo,
) MaterialService {
	serviceLog := baseLog.With("service", "MaterialService")
	return &materialService{
		db:                db,
		log:               serviceLog,
		tx:                tx,
		materialRepo:      materialRepo,
		checklistRepo:     checklistRepo,
		workflowRepo:      workflowRepo,
		questionnaireRepo: questionnaireRepo,
		timestampRepo:     timestampRepo,
		questionRepo:      questionRepo,
		answerRepo:        answerRepo,
		annotationRepo:    annotationRepo,
		relationshipRepo:  relationshipRepo,
		subcomponentRepo:  subcomponentRepo,
		assetRepo:         assetRepo,
	}
}

// =====================================
// Create paths
// =====================================

func (s *materialService) prepare(ctx context.Context, m *types.Material) error {
	if m == nil {
		return faults.New(faults.CodeValidation, "materials.create", "material is nil", nil)
	}
	if strings.TrimSpace(m.Name) == "" {
		return faults.New(faults.CodeValidation, "materials.create", "material name is required", nil)
	}
	types.Normalize(m)
	if m.TenantID == "" {
		m.TenantID = ctxutil.TenantID(ctx)
	}
	if m.UniqueID == "" {
		m.UniqueID = uuid.NewString()
	}
	now := time.Now().UTC()
	m.CreatedAt = now
	m.UpdatedAt = now
	return nil
}

func (s *materialService) Create(ctx context.Context, m *types.Material) (*types.Material, error) {
	if err := s.prepare(ctx, m); err != nil {
		return nil, err
	}
	s.log.Info("Create material", "type", m.Type, "name", m.Name)
	if _, err := s.materialRepo.Create(dbctx.New(ctx), []*types.Material{m}); err != nil {
		s.log.Error("Create material failed", "error", err)
		return nil, aggregates.MapError("materials.create", err)
	}
	return m, nil
}

func (s *materialService) CreateWithChildren(ctx context.Context, m *types.Material) (*types.Material, error) {
	if err := s.prepare(ctx, m); err != nil {
		return nil, err
	}
	s.log.Info("Create material with children", "type", m.Type, "name", m.Name)
	err := s.tx.InTx(ctx, func(dbc dbctx.Context) error {
		if _, err := s.materialRepo.Create(dbc, []*types.Material{m}); err != nil {
			return aggregates.MapError("materials.create_with_children", err)
		}
		return s.insertChildren(dbc, m)
	})
	if err != nil {
		s.log.Error("Create material with children failed", "error", err)
		return nil, err
	}
	return m, nil
}

func (s *materialService) insertChildren(dbc dbctx.Context, m *types.Material) error {
	const op = "materials.create_with_children"
	now := time.Now().UTC()
	switch m.Type {
	case types.MaterialTypeChecklist:
		for _, e := range m.ChecklistEntries {
			e.MaterialID = m.ID
			e.CreatedAt, e.UpdatedAt = now, now
		}
		if _, err := s.checklistRepo.Create(dbc, m.ChecklistEntries); err != nil {
			return aggregates.MapError(op, err)
		}
	case types.MaterialTypeWorkflow:
		for _, st := range m.WorkflowSteps {
			st.MaterialID = m.ID
			st.CreatedAt, st.UpdatedAt = now, now
		}
		if _, err := s.workflowRepo.Create(dbc, m.WorkflowSteps); err != nil {
			return aggregates.MapError(op, err)
		}
	case types.MaterialTypeQuestionnaire:
		for _, e := range m.QuestionnaireEntries {
			e.MaterialID = m.ID
			e.CreatedAt, e.UpdatedAt = now, now
		}
		if _, err := s.questionnaireRepo.Create(dbc, m.QuestionnaireEntries); err != nil {
			return aggregates.MapError(op, err)
		}
	case types.MaterialTypeVideo:
		for _, ts := range m.Timestamps {
			ts.MaterialID = m.ID
			ts.CreatedAt, ts.UpdatedAt = now, now
		}
		if _, err := s.timestampRepo.Create(dbc, m.Timestamps); err != nil {
			return aggregates.MapError(op, err)
		}
	case types.MaterialTypeImage:
		for _, a := range m.Annotations {
			a.MaterialID = m.ID
			a.CreatedAt, a.UpdatedAt = now, now
		}
		if _, err := s.annotationRepo.Create(dbc, m.Annotations); err != nil {
			return aggregates.MapError(op, err)
		}
	case types.MaterialTypeQuiz:
		// Each question goes in before its answers so the answers can carry
		// the generated question id.
		for _, q := range m.QuizQuestions {
			q.MaterialID = m.ID
			q.CreatedAt, q.UpdatedAt = now, now
			if _, err := s.questionRepo.Create(dbc, []*types.QuizQuestion{q}); err != nil {
				return aggregates.MapError(op, err)
			}
			for _, a := range q.Answers {
				a.QuestionID = q.ID
				a.CreatedAt, a.UpdatedAt = now, now
			}
			if _, err := s.answerRepo.Create(dbc, q.Answers); err != nil {
				return aggregates.MapError(op, err)
			}
		}
	}
	return nil
}

// =====================================
// Reads
// =====================================

func (s *materialService) GetByID(ctx context.Context, id uint) (*types.Material, error) {
	m, err := s.materialRepo.GetByID(dbctx.New(ctx), id)
	if err != nil {
		return nil, aggregates.MapError("materials.get", err)
	}
	return m, nil
}

func (s *materialService) GetComplete(ctx context.Context, id uint) (*types.Material, error) {
	dbc := dbctx.New(ctx)
	m, err := s.materialRepo.GetByID(dbc, id)
	if err != nil {
		return nil, aggregates.MapError("materials.get_complete", err)
	}
	if m == nil {
		return nil, nil
	}
	if err := s.loadChildren(dbc, m); err != nil {
		return nil, err
	}
	return m, nil
}

// loadChildren dispatches on the stored discriminator rather than probing
// every child table.
func (s *materialService) loadChildren(dbc dbctx.Context, m *types.Material) error {
	const op = "materials.get_complete"
	switch m.Type {
	case types.MaterialTypeChecklist:
		rows, err := s.checklistRepo.GetByMaterialIDs(dbc, []uint{m.ID})
		if err != nil {
			return aggregates.MapError(op, err)
		}
		m.ChecklistEntries = rows
	case types.MaterialTypeWorkflow:
		rows, err := s.workflowRepo.GetByMaterialIDs(dbc, []uint{m.ID})
		if err != nil {
			return aggregates.MapError(op, err)
		}
		m.WorkflowSteps = rows
	case types.MaterialTypeQuestionnaire:
		rows, err := s.questionnaireRepo.GetByMaterialIDs(dbc, []uint{m.ID})
		if err != nil {
			return aggregates.MapError(op, err)
		}
		m.QuestionnaireEntries = rows
	case types.MaterialTypeVideo:
		rows, err := s.timestampRepo.GetByMaterialIDs(dbc, []uint{m.ID})
		if err != nil {
			return aggregates.MapError(op, err)
		}
		m.Timestamps = rows
	case types.MaterialTypeImage:
		rows, err := s.annotationRepo.GetByMaterialIDs(dbc, []uint{m.ID})
		if err != nil {
			return aggregates.MapError(op, err)
		}
		m.Annotations = rows
	case types.MaterialTypeQuiz:
		questions, err := s.questionRepo.GetByMaterialIDs(dbc, []uint{m.ID})
		if err != nil {
			return aggregates.MapError(op, err)
		}
		qids := make([]uint, 0, len(questions))
		for _, q := range questions {
			qids = append(qids, q.ID)
		}
		answers, err := s.answerRepo.GetByQuestionIDs(dbc, qids)
		if err != nil {
			return aggregates.MapError(op, err)
		}
		byQuestion := make(map[uint][]*types.QuizAnswer, len(questions))
		for _, a := range answers {
			byQuestion[a.QuestionID] = append(byQuestion[a.QuestionID], a)
		}
		for _, q := range questions {
			q.Answers = byQuestion[q.ID]
		}
		m.QuizQuestions = questions
	}
	return nil
}

func (s *materialService) ListByTenant(ctx context.Context, tenantID string) ([]*types.Material, error) {
	if tenantID == "" {
		tenantID = ctxutil.TenantID(ctx)
	}
	rows, err := s.materialRepo.ListByTenant(dbctx.New(ctx), tenantID)
	if err != nil {
		return nil, aggregates.MapError("materials.list_by_tenant", err)
	}
	return rows, nil
}

// =====================================
// Update / Delete
// =====================================

func (s *materialService) Update(ctx context.Context, m *types.Material) (*types.Material, error) {
	const op = "materials.update"
	if m == nil || m.ID == 0 {
		return nil, faults.New(faults.CodeValidation, op, "material id is required", nil)
	}
	if strings.TrimSpace(m.Name) == "" {
		return nil, faults.New(faults.CodeValidation, op, "material name is required", nil)
	}
	s.log.Info("Update material", "material_id", m.ID)
	err := s.tx.InTx(ctx, func(dbc dbctx.Context) error {
		existing, err := s.materialRepo.GetByID(dbc, m.ID)
		if err != nil {
			return aggregates.MapError(op, err)
		}
		if existing == nil {
			return faults.Newf(faults.CodeNotFound, op, "material %d not found", m.ID)
		}
		incoming := types.Normalize(m)
		if incoming != existing.Type {
			return faults.Newf(faults.CodeConflict, op,
				"material %d is %s; changing type to %s is forbidden", m.ID, existing.Type, incoming)
		}
		if m.TenantID == "" {
			m.TenantID = existing.TenantID
		}
		if m.UniqueID == "" {
			m.UniqueID = existing.UniqueID
		}
		m.CreatedAt = existing.CreatedAt
		m.UpdatedAt = time.Now().UTC()
		if err := s.materialRepo.Update(dbc, m); err != nil {
			return aggregates.MapError(op, err)
		}
		return s.replaceChildren(dbc, m)
	})
	if err != nil {
		s.log.Error("Update material failed", "material_id", m.ID, "error", err)
		return nil, err
	}
	return m, nil
}

// replaceChildren realizes whole-row replace for the variant's child
// collection: prior rows go away and the incoming payload is the new truth.
func (s *materialService) replaceChildren(dbc dbctx.Context, m *types.Material) error {
	const op = "materials.update"
	switch m.Type {
	case types.MaterialTypeChecklist:
		if err := s.checklistRepo.FullDeleteByMaterialIDs(dbc, []uint{m.ID}); err != nil {
			return aggregates.MapError(op, err)
		}
	case types.MaterialTypeWorkflow:
		if err := s.workflowRepo.FullDeleteByMaterialIDs(dbc, []uint{m.ID}); err != nil {
			return aggregates.MapError(op, err)
		}
	case types.MaterialTypeQuestionnaire:
		if err := s.questionnaireRepo.FullDeleteByMaterialIDs(dbc, []uint{m.ID}); err != nil {
			return aggregates.MapError(op, err)
		}
	case types.MaterialTypeVideo:
		if err := s.timestampRepo.FullDeleteByMaterialIDs(dbc, []uint{m.ID}); err != nil {
			return aggregates.MapError(op, err)
		}
	case types.MaterialTypeImage:
		if err := s.annotationRepo.FullDeleteByMaterialIDs(dbc, []uint{m.ID}); err != nil {
			return aggregates.MapError(op, err)
		}
	case types.MaterialTypeQuiz:
		qids, err := s.questionRepo.GetIDsByMaterialIDs(dbc, []uint{m.ID})
		if err != nil {
			return aggregates.MapError(op, err)
		}
		if err := s.answerRepo.FullDeleteByQuestionIDs(dbc, qids); err != nil {
			return aggregates.MapError(op, err)
		}
		if err := s.questionRepo.FullDeleteByMaterialIDs(dbc, []uint{m.ID}); err != nil {
			return aggregates.MapError(op, err)
		}
	default:
		return nil
	}
	// Re-key and reinsert. Child ids are regenerated; callers hold on to the
	// material id, not child ids.
	for _, q := range m.QuizQuestions {
		q.ID = 0
		for _, a := range q.Answers {
			a.ID = 0
		}
	}
	for _, e := range m.ChecklistEntries {
		e.ID = 0
	}
	for _, st := range m.WorkflowSteps {
		st.ID = 0
	}
	for _, e := range m.QuestionnaireEntries {
		e.ID = 0
	}
	for _, ts := range m.Timestamps {
		ts.ID = 0
	}
	for _, a := range m.Annotations {
		a.ID = 0
	}
	return s.insertChildren(dbc, m)
}

func (s *materialService) Delete(ctx context.Context, id uint) (bool, error) {
	const op = "materials.delete"
	if id == 0 {
		return false, nil
	}
	s.log.Info("Delete material", "material_id", id)
	deleted := false
	err := s.tx.InTx(ctx, func(dbc dbctx.Context) error {
		existing, err := s.materialRepo.GetByID(dbc, id)
		if err != nil {
			return aggregates.MapError(op, err)
		}
		if existing == nil {
			return nil
		}

		qids, err := s.questionRepo.GetIDsByMaterialIDs(dbc, []uint{id})
		if err != nil {
			return aggregates.MapError(op, err)
		}
		if err := s.answerRepo.FullDeleteByQuestionIDs(dbc, qids); err != nil {
			return aggregates.MapError(op, err)
		}
		if err := s.questionRepo.FullDeleteByMaterialIDs(dbc, []uint{id}); err != nil {
			return aggregates.MapError(op, err)
		}
		if err := s.checklistRepo.FullDeleteByMaterialIDs(dbc, []uint{id}); err != nil {
			return aggregates.MapError(op, err)
		}
		if err := s.workflowRepo.FullDeleteByMaterialIDs(dbc, []uint{id}); err != nil {
			return aggregates.MapError(op, err)
		}
		if err := s.questionnaireRepo.FullDeleteByMaterialIDs(dbc, []uint{id}); err != nil {
			return aggregates.MapError(op, err)
		}
		if err := s.timestampRepo.FullDeleteByMaterialIDs(dbc, []uint{id}); err != nil {
			return aggregates.MapError(op, err)
		}
		if err := s.annotationRepo.FullDeleteByMaterialIDs(dbc, []uint{id}); err != nil {
			return aggregates.MapError(op, err)
		}

		// Edges on either side of the material, in both edge tables.
		if err := s.relationshipRepo.FullDeleteByMaterialID(dbc, id); err != nil {
			return aggregates.MapError(op, err)
		}
		if err := s.subcomponentRepo.FullDeleteByRelatedMaterialID(dbc, id); err != nil {
			return aggregates.MapError(op, err)
		}

		if err := s.materialRepo.FullDeleteByIDs(dbc, []uint{id}); err != nil {
			return aggregates.MapError(op, err)
		}
		deleted = true
		return nil
	})
	if err != nil {
		s.log.Error("Delete material failed", "material_id", id, "error", err)
		return false, err
	}
	return deleted, nil
}

// =====================================
// Asset helpers
// =====================================

func (s *materialService) AssignAsset(ctx context.Context, materialID, assetID uint) (bool, error) {
	const op = "materials.assign_asset"
	dbc := dbctx.New(ctx)
	m, err := s.materialRepo.GetByID(dbc, materialID)
	if err != nil {
		return false, aggregates.MapError(op, err)
	}
	if m == nil || !m.Type.CarriesAsset() {
		return false, nil
	}
	asset, err := s.assetRepo.GetByID(dbc, assetID)
	if err != nil {
		return false, aggregates.MapError(op, err)
	}
	if asset == nil {
		return false, faults.Newf(faults.CodeNotFound, op, "asset %d not found", assetID)
	}
	if err := s.materialRepo.UpdateFields(dbc, materialID, map[string]interface{}{"asset_id": assetID}); err != nil {
		return false, aggregates.MapError(op, err)
	}
	return true, nil
}

func (s *materialService) RemoveAsset(ctx context.Context, materialID uint) (bool, error) {
	const op = "materials.remove_asset"
	dbc := dbctx.New(ctx)
	m, err := s.materialRepo.GetByID(dbc, materialID)
	if err != nil {
		return false, aggregates.MapError(op, err)
	}
	if m == nil || !m.Type.CarriesAsset() {
		return false, nil
	}
	if err := s.materialRepo.UpdateFields(dbc, materialID, map[string]interface{}{"asset_id": nil}); err != nil {
		return false, aggregates.MapError(op, err)
	}
	return true, nil
}

func (s *materialService) GetAssetID(ctx context.Context, materialID uint) (*uint, error) {
	m, err := s.materialRepo.GetByID(dbctx.New(ctx), materialID)
	if err != nil {
		return nil, aggregates.MapError("materials.get_asset_id", err)
	}
	if m == nil || !m.Type.CarriesAsset() {
		return nil, nil
	}
	return m.AssetID, nil
}

func (s *materialService) ListByAsset(ctx context.Context, assetID uint) ([]*types.Material, error) {
	rows, err := s.materialRepo.ListByAssetID(dbctx.New(ctx), assetID)
	if err != nil {
		return nil, aggregates.MapError("materials.list_by_asset", err)
	}
	return rows, nil
}
