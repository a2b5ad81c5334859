package services

import (
	"context"
	"strings"
	"time"

	"gorm.io/gorm"

	"github.com/trainforge/trainforge-backend/internal/data/aggregates"
	"github.com/trainforge/trainforge-backend/internal/data/repos"
	types "github.com/trainforge/trainforge-backend/internal/domain"
	"github.com/trainforge/trainforge-backend/internal/domain/faults"
	"github.com/trainforge/trainforge-backend/internal/platform/ctxutil"
	"github.com/trainforge/trainforge-backend/internal/platform/dbctx"
	"github.com/trainforge/trainforge-backend/internal/platform/logger"
)

// ProgramAssignment reports the outcome of one material in a bulk assign.
// EdgeID is set on success, Error on failure; the batch keeps going either
// way.
type ProgramAssignment struct {
	MaterialID uint   `json:"material_id"`
	EdgeID     uint   `json:"edge_id,omitempty"`
	Error      string `json:"error,omitempty"`
}

// TrainingProgramService owns program container rows plus the active flag
// used to stage rollouts. Membership forwards to the relationship service.
type TrainingProgramService interface {
	Create(ctx context.Context, p *types.TrainingProgram) (*types.TrainingProgram, error)
	GetByID(ctx context.Context, id uint) (*types.TrainingProgram, error)
	ListByTenant(ctx context.Context, tenantID string) ([]*types.TrainingProgram, error)
	ListActive(ctx context.Context, tenantID string) ([]*types.TrainingProgram, error)
	Update(ctx context.Context, p *types.TrainingProgram) (*types.TrainingProgram, error)
	SetActive(ctx context.Context, id uint, active bool) (bool, error)
	Delete(ctx context.Context, id uint) (bool, error)

	AssignMaterial(ctx context.Context, programID, materialID uint) (uint, error)
	AssignMaterials(ctx context.Context, programID uint, materialIDs []uint) ([]ProgramAssignment, error)
	RemoveMaterial(ctx context.Context, programID, materialID uint) (bool, error)
	ListMaterials(ctx context.Context, programID uint) ([]*types.Material, error)
}

type trainingProgramService struct {
	db  *gorm.DB
	log *logger.Logger
	tx  aggregates.TxRunner

	programRepo      repos.TrainingProgramRepo
	relationshipRepo repos.MaterialRelationshipRepo
	relationships    MaterialRelationshipService
}

func NewTrainingProgramService(
	db *gorm.DB,
	baseLog *logger.Logger,
	tx aggregates.TxRunner,
	programRepo repos.TrainingProgramRepo,
	relationshipRepo repos.MaterialRelationshipRepo,
	relationships MaterialRelationshipService,
) TrainingProgramService {
	serviceLog := baseLog.With("service", "TrainingProgramService")
	return &trainingProgramService{
		db:               db,
		log:              serviceLog,
		tx:               tx,
		programRepo:      programRepo,
		relationshipRepo: relationshipRepo,
		relationships:    relationships,
	}
}

// =====================================
// Container CRUD
// =====================================

func (s *trainingProgramService) Create(ctx context.Context, p *types.TrainingProgram) (*types.TrainingProgram, error) {
	const op = "training_programs.create"
	if p == nil || strings.TrimSpace(p.Name) == "" {
		return nil, faults.New(faults.CodeValidation, op, "training program name is required", nil)
	}
	if p.TenantID == "" {
		p.TenantID = ctxutil.TenantID(ctx)
	}
	now := time.Now().UTC()
	p.CreatedAt, p.UpdatedAt = now, now
	s.log.Info("Create training program", "name", p.Name, "tenant_id", p.TenantID)
	if _, err := s.programRepo.Create(dbctx.New(ctx), []*types.TrainingProgram{p}); err != nil {
		s.log.Error("Create training program failed", "error", err)
		return nil, aggregates.MapError(op, err)
	}
	return p, nil
}

func (s *trainingProgramService) GetByID(ctx context.Context, id uint) (*types.TrainingProgram, error) {
	row, err := s.programRepo.GetByID(dbctx.New(ctx), id)
	if err != nil {
		return nil, aggregates.MapError("training_programs.get", err)
	}
	return row, nil
}

func (s *trainingProgramService) ListByTenant(ctx context.Context, tenantID string) ([]*types.TrainingProgram, error) {
	if tenantID == "" {
		tenantID = ctxutil.TenantID(ctx)
	}
	rows, err := s.programRepo.ListByTenant(dbctx.New(ctx), tenantID)
	if err != nil {
		return nil, aggregates.MapError("training_programs.list", err)
	}
	return rows, nil
}

func (s *trainingProgramService) ListActive(ctx context.Context, tenantID string) ([]*types.TrainingProgram, error) {
	if tenantID == "" {
		tenantID = ctxutil.TenantID(ctx)
	}
	rows, err := s.programRepo.ListActiveByTenant(dbctx.New(ctx), tenantID)
	if err != nil {
		return nil, aggregates.MapError("training_programs.list_active", err)
	}
	return rows, nil
}

func (s *trainingProgramService) Update(ctx context.Context, p *types.TrainingProgram) (*types.TrainingProgram, error) {
	const op = "training_programs.update"
	if p == nil || p.ID == 0 {
		return nil, faults.New(faults.CodeValidation, op, "training program id is required", nil)
	}
	if strings.TrimSpace(p.Name) == "" {
		return nil, faults.New(faults.CodeValidation, op, "training program name is required", nil)
	}
	dbc := dbctx.New(ctx)
	existing, err := s.programRepo.GetByID(dbc, p.ID)
	if err != nil {
		return nil, aggregates.MapError(op, err)
	}
	if existing == nil {
		return nil, faults.Newf(faults.CodeNotFound, op, "training program %d not found", p.ID)
	}
	if p.TenantID == "" {
		p.TenantID = existing.TenantID
	}
	p.CreatedAt = existing.CreatedAt
	p.UpdatedAt = time.Now().UTC()
	if err := s.programRepo.Update(dbc, p); err != nil {
		s.log.Error("Update training program failed", "training_program_id", p.ID, "error", err)
		return nil, aggregates.MapError(op, err)
	}
	return p, nil
}

func (s *trainingProgramService) SetActive(ctx context.Context, id uint, active bool) (bool, error) {
	const op = "training_programs.set_active"
	dbc := dbctx.New(ctx)
	row, err := s.programRepo.GetByID(dbc, id)
	if err != nil {
		return false, aggregates.MapError(op, err)
	}
	if row == nil {
		return false, faults.Newf(faults.CodeNotFound, op, "training program %d not found", id)
	}
	if err := s.programRepo.UpdateFields(dbc, id, map[string]interface{}{"active": active}); err != nil {
		return false, aggregates.MapError(op, err)
	}
	return true, nil
}

// Delete removes the program and every assignment edge pointing into it.
func (s *trainingProgramService) Delete(ctx context.Context, id uint) (bool, error) {
	const op = "training_programs.delete"
	s.log.Info("Delete training program", "training_program_id", id)
	deleted := false
	err := s.tx.InTx(ctx, func(dbc dbctx.Context) error {
		row, err := s.programRepo.GetByID(dbc, id)
		if err != nil {
			return aggregates.MapError(op, err)
		}
		if row == nil {
			return nil
		}
		edges, err := s.relationshipRepo.ListByRelatedEntity(dbc, types.RelatedEntityTrainingProgram, types.FormatEntityID(id))
		if err != nil {
			return aggregates.MapError(op, err)
		}
		if len(edges) > 0 {
			ids := make([]uint, 0, len(edges))
			for _, e := range edges {
				ids = append(ids, e.ID)
			}
			if err := s.relationshipRepo.FullDeleteByIDs(dbc, ids); err != nil {
				return aggregates.MapError(op, err)
			}
		}
		if err := s.programRepo.FullDeleteByIDs(dbc, []uint{id}); err != nil {
			return aggregates.MapError(op, err)
		}
		deleted = true
		return nil
	})
	if err != nil {
		s.log.Error("Delete training program failed", "training_program_id", id, "error", err)
		return false, err
	}
	return deleted, nil
}

// =====================================
// Membership (forwarded)
// =====================================

func (s *trainingProgramService) AssignMaterial(ctx context.Context, programID, materialID uint) (uint, error) {
	return s.relationships.AssignToTrainingProgram(ctx, materialID, programID, types.RelationshipAssigned)
}

// AssignMaterials assigns a batch one by one; a failed material does not
// abort the rest. Callers inspect the per-item outcomes.
func (s *trainingProgramService) AssignMaterials(ctx context.Context, programID uint, materialIDs []uint) ([]ProgramAssignment, error) {
	const op = "training_programs.assign_materials"
	if len(materialIDs) == 0 {
		return nil, faults.New(faults.CodeValidation, op, "no material ids supplied", nil)
	}
	s.log.Info("Assign materials to training program", "training_program_id", programID, "count", len(materialIDs))
	out := make([]ProgramAssignment, 0, len(materialIDs))
	for _, mid := range materialIDs {
		res := ProgramAssignment{MaterialID: mid}
		edgeID, err := s.relationships.AssignToTrainingProgram(ctx, mid, programID, types.RelationshipAssigned)
		if err != nil {
			res.Error = err.Error()
			s.log.Error("Assign material to training program failed", "training_program_id", programID, "material_id", mid, "error", err)
		} else {
			res.EdgeID = edgeID
		}
		out = append(out, res)
	}
	return out, nil
}

func (s *trainingProgramService) RemoveMaterial(ctx context.Context, programID, materialID uint) (bool, error) {
	return s.relationships.RemoveFromTrainingProgram(ctx, materialID, programID, types.RelationshipAssigned)
}

func (s *trainingProgramService) ListMaterials(ctx context.Context, programID uint) ([]*types.Material, error) {
	return s.relationships.ListMaterialsByTrainingProgram(ctx, programID)
}
