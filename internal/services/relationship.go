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

// MaterialRelationshipService manages the generic edge table: directed,
// typed, optionally ordered links from a material to another material, a
// learning path, or a training program. The convenience operations reject
// duplicate tuples before insert; the unique index is the backstop for the
// check-then-insert race.
type MaterialRelationshipService interface {
	Create(ctx context.Context, edge *types.MaterialRelationship) (*types.MaterialRelationship, error)
	GetByID(ctx context.Context, id uint) (*types.MaterialRelationship, error)
	Delete(ctx context.Context, id uint) (bool, error)

	ListByMaterial(ctx context.Context, materialID uint) ([]*types.MaterialRelationship, error)
	ListByMaterialAndType(ctx context.Context, materialID uint, kind types.RelatedEntityKind) ([]*types.MaterialRelationship, error)

	AssignToLearningPath(ctx context.Context, materialID, pathID uint, relationshipType string, displayOrder *int) (uint, error)
	RemoveFromLearningPath(ctx context.Context, materialID, pathID uint, relationshipType string) (bool, error)
	ListMaterialsByLearningPath(ctx context.Context, pathID uint) ([]*types.Material, error)

	AssignToTrainingProgram(ctx context.Context, materialID, programID uint, relationshipType string) (uint, error)
	RemoveFromTrainingProgram(ctx context.Context, materialID, programID uint, relationshipType string) (bool, error)
	ListMaterialsByTrainingProgram(ctx context.Context, programID uint) ([]*types.Material, error)

	CreateDependency(ctx context.Context, materialID, prerequisiteID uint, relationshipType string) (uint, error)
	RemoveDependency(ctx context.Context, materialID, prerequisiteID uint, relationshipType string) (bool, error)
	GetPrerequisites(ctx context.Context, materialID uint) ([]*types.Material, error)
	GetDependents(ctx context.Context, materialID uint) ([]*types.Material, error)

	Reorder(ctx context.Context, materialID uint, kind types.RelatedEntityKind, orders map[uint]int) (bool, error)
	ReorderForLearningPath(ctx context.Context, pathID uint, orders map[uint]int) (bool, error)
}

type materialRelationshipService struct {
	db  *gorm.DB
	log *logger.Logger
	tx  aggregates.TxRunner

	relationshipRepo repos.MaterialRelationshipRepo
	materialRepo     repos.MaterialRepo
	pathRepo         repos.LearningPathRepo
	programRepo      repos.TrainingProgramRepo
}

func NewMaterialRelationshipService(
	db *gorm.DB,
	baseLog *logger.Logger,
	tx aggregates.TxRunner,
	relationshipRepo repos.MaterialRelationshipRepo,
	materialRepo repos.MaterialRepo,
	pathRepo repos.LearningPathRepo,
	programRepo repos.TrainingProgramRepo,
) MaterialRelationshipService {
	serviceLog := baseLog.With("service", "MaterialRelationshipService")
	return &materialRelationshipService{
		db:               db,
		log:              serviceLog,
		tx:               tx,
		relationshipRepo: relationshipRepo,
		materialRepo:     materialRepo,
		pathRepo:         pathRepo,
		programRepo:      programRepo,
	}
}

// =====================================
// Generic edge ops
// =====================================

func (s *materialRelationshipService) Create(ctx context.Context, edge *types.MaterialRelationship) (*types.MaterialRelationship, error) {
	const op = "relationships.create"
	if edge == nil || edge.MaterialID == 0 || edge.RelatedEntityID == "" {
		return nil, faults.New(faults.CodeValidation, op, "material id and related entity id are required", nil)
	}
	if !edge.RelatedEntityType.Valid() {
		return nil, faults.Newf(faults.CodeValidation, op, "unknown related entity type %q", edge.RelatedEntityType)
	}
	now := time.Now().UTC()
	edge.CreatedAt, edge.UpdatedAt = now, now
	if _, err := s.relationshipRepo.Create(dbctx.New(ctx), edge); err != nil {
		s.log.Error("Create relationship failed", "error", err)
		return nil, aggregates.MapError(op, err)
	}
	return edge, nil
}

func (s *materialRelationshipService) GetByID(ctx context.Context, id uint) (*types.MaterialRelationship, error) {
	edge, err := s.relationshipRepo.GetByID(dbctx.New(ctx), id)
	if err != nil {
		return nil, aggregates.MapError("relationships.get", err)
	}
	return edge, nil
}

func (s *materialRelationshipService) Delete(ctx context.Context, id uint) (bool, error) {
	const op = "relationships.delete"
	dbc := dbctx.New(ctx)
	edge, err := s.relationshipRepo.GetByID(dbc, id)
	if err != nil {
		return false, aggregates.MapError(op, err)
	}
	if edge == nil {
		return false, nil
	}
	if err := s.relationshipRepo.FullDeleteByIDs(dbc, []uint{id}); err != nil {
		return false, aggregates.MapError(op, err)
	}
	return true, nil
}

func (s *materialRelationshipService) ListByMaterial(ctx context.Context, materialID uint) ([]*types.MaterialRelationship, error) {
	rows, err := s.relationshipRepo.ListByMaterial(dbctx.New(ctx), materialID)
	if err != nil {
		return nil, aggregates.MapError("relationships.list_by_material", err)
	}
	return rows, nil
}

func (s *materialRelationshipService) ListByMaterialAndType(ctx context.Context, materialID uint, kind types.RelatedEntityKind) ([]*types.MaterialRelationship, error) {
	rows, err := s.relationshipRepo.ListByMaterialAndKind(dbctx.New(ctx), materialID, kind)
	if err != nil {
		return nil, aggregates.MapError("relationships.list_by_material_and_type", err)
	}
	return rows, nil
}

// assign runs the shared convenience pipeline inside a single transaction:
// existence checks, duplicate rejection, then insert at max display order plus one.
func (s *materialRelationshipService) assign(ctx context.Context, op string, materialID uint, kind types.RelatedEntityKind, targetID uint, relationshipType string, displayOrder *int, targetExists func(dbc dbctx.Context, id uint) (bool, error)) (uint, error) {
	return aggregates.InTxResult(ctx, s.tx, func(dbc dbctx.Context) (uint, error) {
		m, err := s.materialRepo.GetByID(dbc, materialID)
		if err != nil {
			return 0, aggregates.MapError(op, err)
		}
		if m == nil {
			return 0, faults.Newf(faults.CodeNotFound, op, "material %d not found", materialID)
		}
		ok, err := targetExists(dbc, targetID)
		if err != nil {
			return 0, aggregates.MapError(op, err)
		}
		if !ok {
			return 0, faults.Newf(faults.CodeNotFound, op, "%s %d not found", kind, targetID)
		}

		related := types.FormatEntityID(targetID)
		existing, err := s.relationshipRepo.GetByTuple(dbc, materialID, kind, related, relationshipType)
		if err != nil {
			return 0, aggregates.MapError(op, err)
		}
		if existing != nil {
			return 0, faults.Newf(faults.CodeConflict, op,
				"material %d is already linked to %s %d as %q", materialID, kind, targetID, relationshipType)
		}

		order := displayOrder
		if order == nil {
			max, err := s.relationshipRepo.MaxDisplayOrder(dbc, materialID, kind)
			if err != nil {
				return 0, aggregates.MapError(op, err)
			}
			next := max + 1
			order = &next
		}
		now := time.Now().UTC()
		edge := &types.MaterialRelationship{
			MaterialID:        materialID,
			RelatedEntityType: kind,
			RelatedEntityID:   related,
			RelationshipType:  relationshipType,
			DisplayOrder:      order,
			CreatedAt:         now,
			UpdatedAt:         now,
		}
		if _, err := s.relationshipRepo.Create(dbc, edge); err != nil {
			return 0, aggregates.MapError(op, err)
		}
		return edge.ID, nil
	})
}

// remove deletes by exact tuple and reports whether anything matched.
func (s *materialRelationshipService) remove(ctx context.Context, op string, materialID uint, kind types.RelatedEntityKind, targetID uint, relationshipType string) (bool, error) {
	dbc := dbctx.New(ctx)
	edge, err := s.relationshipRepo.GetByTuple(dbc, materialID, kind, types.FormatEntityID(targetID), relationshipType)
	if err != nil {
		return false, aggregates.MapError(op, err)
	}
	if edge == nil {
		return false, nil
	}
	if err := s.relationshipRepo.FullDeleteByIDs(dbc, []uint{edge.ID}); err != nil {
		return false, aggregates.MapError(op, err)
	}
	return true, nil
}

// materialsForEdges resolves the Material rows behind a set of edges,
// preserving edge order. pick selects which side of each edge names the
// material.
func (s *materialRelationshipService) materialsForEdges(dbc dbctx.Context, op string, edges []*types.MaterialRelationship, pick func(*types.MaterialRelationship) (uint, bool)) ([]*types.Material, error) {
	ids := make([]uint, 0, len(edges))
	for _, e := range edges {
		if id, ok := pick(e); ok {
			ids = append(ids, id)
		}
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

func fromSide(e *types.MaterialRelationship) (uint, bool) { return e.MaterialID, e.MaterialID != 0 }

func toSide(e *types.MaterialRelationship) (uint, bool) { return e.RelatedMaterialID() }

// =====================================
// Learning path containment
// =====================================

func (s *materialRelationshipService) AssignToLearningPath(ctx context.Context, materialID, pathID uint, relationshipType string, displayOrder *int) (uint, error) {
	if relationshipType == "" {
		relationshipType = types.RelationshipContains
	}
	s.log.Info("Assign material to learning path", "material_id", materialID, "learning_path_id", pathID)
	return s.assign(ctx, "relationships.assign_to_learning_path", materialID, types.RelatedEntityLearningPath, pathID, relationshipType, displayOrder, s.pathRepo.Exists)
}

func (s *materialRelationshipService) RemoveFromLearningPath(ctx context.Context, materialID, pathID uint, relationshipType string) (bool, error) {
	if relationshipType == "" {
		relationshipType = types.RelationshipContains
	}
	return s.remove(ctx, "relationships.remove_from_learning_path", materialID, types.RelatedEntityLearningPath, pathID, relationshipType)
}

func (s *materialRelationshipService) ListMaterialsByLearningPath(ctx context.Context, pathID uint) ([]*types.Material, error) {
	const op = "relationships.list_materials_by_learning_path"
	dbc := dbctx.New(ctx)
	edges, err := s.relationshipRepo.ListByRelatedEntity(dbc, types.RelatedEntityLearningPath, types.FormatEntityID(pathID))
	if err != nil {
		return nil, aggregates.MapError(op, err)
	}
	return s.materialsForEdges(dbc, op, edges, fromSide)
}

// =====================================
// Training program assignment
// =====================================

func (s *materialRelationshipService) AssignToTrainingProgram(ctx context.Context, materialID, programID uint, relationshipType string) (uint, error) {
	if relationshipType == "" {
		relationshipType = types.RelationshipAssigned
	}
	s.log.Info("Assign material to training program", "material_id", materialID, "training_program_id", programID)
	return s.assign(ctx, "relationships.assign_to_training_program", materialID, types.RelatedEntityTrainingProgram, programID, relationshipType, nil, s.programRepo.Exists)
}

func (s *materialRelationshipService) RemoveFromTrainingProgram(ctx context.Context, materialID, programID uint, relationshipType string) (bool, error) {
	if relationshipType == "" {
		relationshipType = types.RelationshipAssigned
	}
	return s.remove(ctx, "relationships.remove_from_training_program", materialID, types.RelatedEntityTrainingProgram, programID, relationshipType)
}

func (s *materialRelationshipService) ListMaterialsByTrainingProgram(ctx context.Context, programID uint) ([]*types.Material, error) {
	const op = "relationships.list_materials_by_training_program"
	dbc := dbctx.New(ctx)
	edges, err := s.relationshipRepo.ListByRelatedEntity(dbc, types.RelatedEntityTrainingProgram, types.FormatEntityID(programID))
	if err != nil {
		return nil, aggregates.MapError(op, err)
	}
	return s.materialsForEdges(dbc, op, edges, fromSide)
}

// =====================================
// Prerequisite dependency
// =====================================

func (s *materialRelationshipService) CreateDependency(ctx context.Context, materialID, prerequisiteID uint, relationshipType string) (uint, error) {
	if relationshipType == "" {
		relationshipType = types.RelationshipPrerequisite
	}
	s.log.Info("Create dependency", "material_id", materialID, "prerequisite_id", prerequisiteID)
	exists := func(dbc dbctx.Context, id uint) (bool, error) {
		m, err := s.materialRepo.GetByID(dbc, id)
		if err != nil {
			return false, err
		}
		return m != nil, nil
	}
	return s.assign(ctx, "relationships.create_dependency", materialID, types.RelatedEntityMaterial, prerequisiteID, relationshipType, nil, exists)
}

func (s *materialRelationshipService) RemoveDependency(ctx context.Context, materialID, prerequisiteID uint, relationshipType string) (bool, error) {
	if relationshipType == "" {
		relationshipType = types.RelationshipPrerequisite
	}
	return s.remove(ctx, "relationships.remove_dependency", materialID, types.RelatedEntityMaterial, prerequisiteID, relationshipType)
}

// GetPrerequisites follows edges from the material: "material requires
// prerequisite" is stored with the requiring material on the from side.
func (s *materialRelationshipService) GetPrerequisites(ctx context.Context, materialID uint) ([]*types.Material, error) {
	const op = "relationships.get_prerequisites"
	dbc := dbctx.New(ctx)
	edges, err := s.relationshipRepo.ListByMaterialKindAndType(dbc, materialID, types.RelatedEntityMaterial, types.RelationshipPrerequisite)
	if err != nil {
		return nil, aggregates.MapError(op, err)
	}
	return s.materialsForEdges(dbc, op, edges, toSide)
}

// GetDependents is the reverse lookup: materials whose prerequisite edges
// point into this one. There is no second stored direction.
func (s *materialRelationshipService) GetDependents(ctx context.Context, materialID uint) ([]*types.Material, error) {
	const op = "relationships.get_dependents"
	dbc := dbctx.New(ctx)
	edges, err := s.relationshipRepo.ListByRelatedEntityAndType(dbc, types.RelatedEntityMaterial, types.FormatEntityID(materialID), types.RelationshipPrerequisite)
	if err != nil {
		return nil, aggregates.MapError(op, err)
	}
	return s.materialsForEdges(dbc, op, edges, fromSide)
}

// =====================================
// Reorder
// =====================================

// Reorder bulk-updates display orders for the (material, kind) group. Map
// keys are target entity ids; edges absent from the map keep their order.
func (s *materialRelationshipService) Reorder(ctx context.Context, materialID uint, kind types.RelatedEntityKind, orders map[uint]int) (bool, error) {
	const op = "relationships.reorder"
	if len(orders) == 0 {
		return false, faults.New(faults.CodeValidation, op, "no orders supplied", nil)
	}
	err := s.tx.InTx(ctx, func(dbc dbctx.Context) error {
		edges, err := s.relationshipRepo.ListByMaterialAndKind(dbc, materialID, kind)
		if err != nil {
			return aggregates.MapError(op, err)
		}
		for _, e := range edges {
			target, perr := types.ParseEntityID(e.RelatedEntityID)
			if perr != nil {
				continue
			}
			if next, ok := orders[target]; ok {
				if err := s.relationshipRepo.UpdateDisplayOrder(dbc, e.ID, next); err != nil {
					return aggregates.MapError(op, err)
				}
			}
		}
		return nil
	})
	if err != nil {
		s.log.Error("Reorder failed", "material_id", materialID, "error", err)
		return false, err
	}
	return true, nil
}

// ReorderForLearningPath reorders the edges into one path; map keys are
// material ids.
func (s *materialRelationshipService) ReorderForLearningPath(ctx context.Context, pathID uint, orders map[uint]int) (bool, error) {
	const op = "relationships.reorder_for_learning_path"
	if len(orders) == 0 {
		return false, faults.New(faults.CodeValidation, op, "no orders supplied", nil)
	}
	err := s.tx.InTx(ctx, func(dbc dbctx.Context) error {
		edges, err := s.relationshipRepo.ListByRelatedEntity(dbc, types.RelatedEntityLearningPath, types.FormatEntityID(pathID))
		if err != nil {
			return aggregates.MapError(op, err)
		}
		for _, e := range edges {
			if next, ok := orders[e.MaterialID]; ok {
				if err := s.relationshipRepo.UpdateDisplayOrder(dbc, e.ID, next); err != nil {
					return aggregates.MapError(op, err)
				}
			}
		}
		return nil
	})
	if err != nil {
		s.log.Error("ReorderForLearningPath failed", "learning_path_id", pathID, "error", err)
		return false, err
	}
	return true, nil
}
