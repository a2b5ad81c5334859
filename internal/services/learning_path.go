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

// LearningPathService owns the path container rows. Membership and ordering
// live on the relationship edges, so the material-facing operations forward
// to MaterialRelationshipService.
type LearningPathService interface {
	Create(ctx context.Context, p *types.LearningPath) (*types.LearningPath, error)
	GetByID(ctx context.Context, id uint) (*types.LearningPath, error)
	ListByTenant(ctx context.Context, tenantID string) ([]*types.LearningPath, error)
	Update(ctx context.Context, p *types.LearningPath) (*types.LearningPath, error)
	Delete(ctx context.Context, id uint) (bool, error)

	AssignMaterial(ctx context.Context, pathID, materialID uint, displayOrder *int) (uint, error)
	RemoveMaterial(ctx context.Context, pathID, materialID uint) (bool, error)
	ListMaterials(ctx context.Context, pathID uint) ([]*types.Material, error)
	ReorderMaterials(ctx context.Context, pathID uint, orders map[uint]int) (bool, error)
}

type learningPathService struct {
	db  *gorm.DB
	log *logger.Logger
	tx  aggregates.TxRunner

	pathRepo         repos.LearningPathRepo
	relationshipRepo repos.MaterialRelationshipRepo
	relationships    MaterialRelationshipService
}

func NewLearningPathService(
	db *gorm.DB,
	baseLog *logger.Logger,
	tx aggregates.TxRunner,
	pathRepo repos.LearningPathRepo,
	relationshipRepo repos.MaterialRelationshipRepo,
	relationships MaterialRelationshipService,
) LearningPathService {
	serviceLog := baseLog.With("service", "LearningPathService")
	return &learningPathService{
		db:               db,
		log:              serviceLog,
		tx:               tx,
		pathRepo:         pathRepo,
		relationshipRepo: relationshipRepo,
		relationships:    relationships,
	}
}

// =====================================
// Container CRUD
// =====================================

func (s *learningPathService) Create(ctx context.Context, p *types.LearningPath) (*types.LearningPath, error) {
	const op = "learning_paths.create"
	if p == nil || strings.TrimSpace(p.Name) == "" {
		return nil, faults.New(faults.CodeValidation, op, "learning path name is required", nil)
	}
	if p.TenantID == "" {
		p.TenantID = ctxutil.TenantID(ctx)
	}
	now := time.Now().UTC()
	p.CreatedAt, p.UpdatedAt = now, now
	s.log.Info("Create learning path", "name", p.Name, "tenant_id", p.TenantID)
	if _, err := s.pathRepo.Create(dbctx.New(ctx), []*types.LearningPath{p}); err != nil {
		s.log.Error("Create learning path failed", "error", err)
		return nil, aggregates.MapError(op, err)
	}
	return p, nil
}

func (s *learningPathService) GetByID(ctx context.Context, id uint) (*types.LearningPath, error) {
	row, err := s.pathRepo.GetByID(dbctx.New(ctx), id)
	if err != nil {
		return nil, aggregates.MapError("learning_paths.get", err)
	}
	return row, nil
}

func (s *learningPathService) ListByTenant(ctx context.Context, tenantID string) ([]*types.LearningPath, error) {
	if tenantID == "" {
		tenantID = ctxutil.TenantID(ctx)
	}
	rows, err := s.pathRepo.ListByTenant(dbctx.New(ctx), tenantID)
	if err != nil {
		return nil, aggregates.MapError("learning_paths.list", err)
	}
	return rows, nil
}

func (s *learningPathService) Update(ctx context.Context, p *types.LearningPath) (*types.LearningPath, error) {
	const op = "learning_paths.update"
	if p == nil || p.ID == 0 {
		return nil, faults.New(faults.CodeValidation, op, "learning path id is required", nil)
	}
	if strings.TrimSpace(p.Name) == "" {
		return nil, faults.New(faults.CodeValidation, op, "learning path name is required", nil)
	}
	dbc := dbctx.New(ctx)
	existing, err := s.pathRepo.GetByID(dbc, p.ID)
	if err != nil {
		return nil, aggregates.MapError(op, err)
	}
	if existing == nil {
		return nil, faults.Newf(faults.CodeNotFound, op, "learning path %d not found", p.ID)
	}
	if p.TenantID == "" {
		p.TenantID = existing.TenantID
	}
	p.CreatedAt = existing.CreatedAt
	p.UpdatedAt = time.Now().UTC()
	if err := s.pathRepo.Update(dbc, p); err != nil {
		s.log.Error("Update learning path failed", "learning_path_id", p.ID, "error", err)
		return nil, aggregates.MapError(op, err)
	}
	return p, nil
}

// Delete removes the path and every edge pointing into it, in one
// transaction. Member materials themselves are untouched.
func (s *learningPathService) Delete(ctx context.Context, id uint) (bool, error) {
	const op = "learning_paths.delete"
	s.log.Info("Delete learning path", "learning_path_id", id)
	deleted := false
	err := s.tx.InTx(ctx, func(dbc dbctx.Context) error {
		row, err := s.pathRepo.GetByID(dbc, id)
		if err != nil {
			return aggregates.MapError(op, err)
		}
		if row == nil {
			return nil
		}
		edges, err := s.relationshipRepo.ListByRelatedEntity(dbc, types.RelatedEntityLearningPath, types.FormatEntityID(id))
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
		if err := s.pathRepo.FullDeleteByIDs(dbc, []uint{id}); err != nil {
			return aggregates.MapError(op, err)
		}
		deleted = true
		return nil
	})
	if err != nil {
		s.log.Error("Delete learning path failed", "learning_path_id", id, "error", err)
		return false, err
	}
	return deleted, nil
}

// =====================================
// Membership (forwarded)
// =====================================

func (s *learningPathService) AssignMaterial(ctx context.Context, pathID, materialID uint, displayOrder *int) (uint, error) {
	return s.relationships.AssignToLearningPath(ctx, materialID, pathID, types.RelationshipContains, displayOrder)
}

func (s *learningPathService) RemoveMaterial(ctx context.Context, pathID, materialID uint) (bool, error) {
	return s.relationships.RemoveFromLearningPath(ctx, materialID, pathID, types.RelationshipContains)
}

func (s *learningPathService) ListMaterials(ctx context.Context, pathID uint) ([]*types.Material, error) {
	return s.relationships.ListMaterialsByLearningPath(ctx, pathID)
}

func (s *learningPathService) ReorderMaterials(ctx context.Context, pathID uint, orders map[uint]int) (bool, error) {
	return s.relationships.ReorderForLearningPath(ctx, pathID, orders)
}
