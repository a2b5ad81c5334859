package services

import (
	"context"
	"sort"
	"time"

	"gorm.io/gorm"

	"github.com/trainforge/trainforge-backend/internal/data/aggregates"
	"github.com/trainforge/trainforge-backend/internal/data/repos"
	types "github.com/trainforge/trainforge-backend/internal/domain"
	"github.com/trainforge/trainforge-backend/internal/domain/faults"
	"github.com/trainforge/trainforge-backend/internal/platform/dbctx"
	"github.com/trainforge/trainforge-backend/internal/platform/logger"
)

// MaterialHierarchyService interprets Material→Material edges as a
// parent/child tree that must stay acyclic. Structural violations (cycle,
// missing endpoint, duplicate edge) are errors, never silent no-ops: a
// silently dropped edge would leave the caller's picture of the tree wrong.
type MaterialHierarchyService interface {
	AssignChild(ctx context.Context, parentID, childID uint, relationshipType string, displayOrder *int) (uint, error)
	RemoveChild(ctx context.Context, parentID, childID uint, relationshipType string) (bool, error)
	WouldCreateCircularReference(ctx context.Context, parentID, childID uint) (bool, error)

	ListChildren(ctx context.Context, parentID uint, includeOrder bool, relationshipType string) ([]*types.Material, error)
	ListParents(ctx context.Context, childID uint, relationshipType string) ([]*types.Material, error)

	ReorderChildren(ctx context.Context, parentID uint, orders map[uint]int) (bool, error)
	BuildHierarchy(ctx context.Context, rootID uint, maxDepth int) (*types.Hierarchy, error)
}

type materialHierarchyService struct {
	db  *gorm.DB
	log *logger.Logger
	tx  aggregates.TxRunner

	relationshipRepo repos.MaterialRelationshipRepo
	materialRepo     repos.MaterialRepo
}

func NewMaterialHierarchyService(
	db *gorm.DB,
	baseLog *logger.Logger,
	tx aggregates.TxRunner,
	relationshipRepo repos.MaterialRelationshipRepo,
	materialRepo repos.MaterialRepo,
) MaterialHierarchyService {
	serviceLog := baseLog.With("service", "MaterialHierarchyService")
	return &materialHierarchyService{
		db:               db,
		log:              serviceLog,
		tx:               tx,
		relationshipRepo: relationshipRepo,
		materialRepo:     materialRepo,
	}
}

// =====================================
// AssignChild pipeline
// =====================================

func (s *materialHierarchyService) AssignChild(ctx context.Context, parentID, childID uint, relationshipType string, displayOrder *int) (uint, error) {
	const op = "hierarchy.assign_child"
	if relationshipType == "" {
		relationshipType = types.RelationshipContains
	}
	s.log.Info("Assign child material", "parent_id", parentID, "child_id", childID)
	return aggregates.InTxResult(ctx, s.tx, func(dbc dbctx.Context) (uint, error) {
		parent, err := s.materialRepo.GetByID(dbc, parentID)
		if err != nil {
			return 0, aggregates.MapError(op, err)
		}
		if parent == nil {
			return 0, faults.Newf(faults.CodeNotFound, op, "parent material %d not found", parentID)
		}
		child, err := s.materialRepo.GetByID(dbc, childID)
		if err != nil {
			return 0, aggregates.MapError(op, err)
		}
		if child == nil {
			return 0, faults.Newf(faults.CodeNotFound, op, "child material %d not found", childID)
		}

		cycle, err := s.wouldCreateCycle(dbc, parentID, childID)
		if err != nil {
			return 0, aggregates.MapError(op, err)
		}
		if cycle {
			return 0, faults.Newf(faults.CodeInvariantViolation, op,
				"linking %d under %d would create a circular reference", childID, parentID)
		}

		existing, err := s.relationshipRepo.GetByTuple(dbc, parentID, types.RelatedEntityMaterial, types.FormatEntityID(childID), relationshipType)
		if err != nil {
			return 0, aggregates.MapError(op, err)
		}
		if existing != nil {
			return 0, faults.Newf(faults.CodeConflict, op,
				"material %d already has child %d as %q", parentID, childID, relationshipType)
		}

		order := displayOrder
		if order == nil {
			max, err := s.relationshipRepo.MaxDisplayOrder(dbc, parentID, types.RelatedEntityMaterial)
			if err != nil {
				return 0, aggregates.MapError(op, err)
			}
			next := max + 1
			order = &next
		}
		now := time.Now().UTC()
		edge := &types.MaterialRelationship{
			MaterialID:        parentID,
			RelatedEntityType: types.RelatedEntityMaterial,
			RelatedEntityID:   types.FormatEntityID(childID),
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

func (s *materialHierarchyService) RemoveChild(ctx context.Context, parentID, childID uint, relationshipType string) (bool, error) {
	const op = "hierarchy.remove_child"
	if relationshipType == "" {
		relationshipType = types.RelationshipContains
	}
	dbc := dbctx.New(ctx)
	edge, err := s.relationshipRepo.GetByTuple(dbc, parentID, types.RelatedEntityMaterial, types.FormatEntityID(childID), relationshipType)
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

// =====================================
// Cycle detection
// =====================================

func (s *materialHierarchyService) WouldCreateCircularReference(ctx context.Context, parentID, childID uint) (bool, error) {
	cycle, err := s.wouldCreateCycle(dbctx.New(ctx), parentID, childID)
	if err != nil {
		return false, aggregates.MapError("hierarchy.would_create_cycle", err)
	}
	return cycle, nil
}

// wouldCreateCycle answers "after adding parent→child, is parent reachable
// from child?". The walk clones its visited set per branch: a node may be
// revisited via a different path (diamonds) without a false positive, while
// revisiting a node on the current path means the stored graph already
// loops. Hierarchies are shallow trees, so the re-walking cost is accepted.
func (s *materialHierarchyService) wouldCreateCycle(dbc dbctx.Context, parentID, childID uint) (bool, error) {
	if parentID == childID {
		return true, nil
	}
	return s.walkReaches(dbc, childID, parentID, map[uint]bool{childID: true})
}

func (s *materialHierarchyService) walkReaches(dbc dbctx.Context, current, target uint, visited map[uint]bool) (bool, error) {
	edges, err := s.relationshipRepo.ListByMaterialAndKind(dbc, current, types.RelatedEntityMaterial)
	if err != nil {
		return false, err
	}
	for _, e := range edges {
		next, ok := e.RelatedMaterialID()
		if !ok {
			continue
		}
		if next == target {
			return true, nil
		}
		if visited[next] {
			return true, nil
		}
		branch := make(map[uint]bool, len(visited)+1)
		for id := range visited {
			branch[id] = true
		}
		branch[next] = true
		cycle, err := s.walkReaches(dbc, next, target, branch)
		if err != nil {
			return false, err
		}
		if cycle {
			return true, nil
		}
	}
	return false, nil
}

// =====================================
// Listings
// =====================================

func (s *materialHierarchyService) childEdges(dbc dbctx.Context, parentID uint, relationshipType string) ([]*types.MaterialRelationship, error) {
	if relationshipType != "" {
		return s.relationshipRepo.ListByMaterialKindAndType(dbc, parentID, types.RelatedEntityMaterial, relationshipType)
	}
	return s.relationshipRepo.ListByMaterialAndKind(dbc, parentID, types.RelatedEntityMaterial)
}

func (s *materialHierarchyService) ListChildren(ctx context.Context, parentID uint, includeOrder bool, relationshipType string) ([]*types.Material, error) {
	const op = "hierarchy.list_children"
	dbc := dbctx.New(ctx)
	edges, err := s.childEdges(dbc, parentID, relationshipType)
	if err != nil {
		return nil, aggregates.MapError(op, err)
	}
	if !includeOrder {
		sort.Slice(edges, func(i, j int) bool { return edges[i].ID < edges[j].ID })
	}
	return s.resolveEdgeMaterials(dbc, op, edges, toSide)
}

func (s *materialHierarchyService) ListParents(ctx context.Context, childID uint, relationshipType string) ([]*types.Material, error) {
	const op = "hierarchy.list_parents"
	dbc := dbctx.New(ctx)
	var (
		edges []*types.MaterialRelationship
		err   error
	)
	if relationshipType != "" {
		edges, err = s.relationshipRepo.ListByRelatedEntityAndType(dbc, types.RelatedEntityMaterial, types.FormatEntityID(childID), relationshipType)
	} else {
		edges, err = s.relationshipRepo.ListByRelatedEntity(dbc, types.RelatedEntityMaterial, types.FormatEntityID(childID))
	}
	if err != nil {
		return nil, aggregates.MapError(op, err)
	}
	return s.resolveEdgeMaterials(dbc, op, edges, fromSide)
}

func (s *materialHierarchyService) resolveEdgeMaterials(dbc dbctx.Context, op string, edges []*types.MaterialRelationship, pick func(*types.MaterialRelationship) (uint, bool)) ([]*types.Material, error) {
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

// =====================================
// Reorder / tree snapshot
// =====================================

// ReorderChildren updates only the children named in the map; everything
// else keeps its prior relative order.
func (s *materialHierarchyService) ReorderChildren(ctx context.Context, parentID uint, orders map[uint]int) (bool, error) {
	const op = "hierarchy.reorder_children"
	if len(orders) == 0 {
		return false, faults.New(faults.CodeValidation, op, "no orders supplied", nil)
	}
	err := s.tx.InTx(ctx, func(dbc dbctx.Context) error {
		edges, err := s.relationshipRepo.ListByMaterialAndKind(dbc, parentID, types.RelatedEntityMaterial)
		if err != nil {
			return aggregates.MapError(op, err)
		}
		for _, e := range edges {
			child, ok := e.RelatedMaterialID()
			if !ok {
				continue
			}
			if next, found := orders[child]; found {
				if err := s.relationshipRepo.UpdateDisplayOrder(dbc, e.ID, next); err != nil {
					return aggregates.MapError(op, err)
				}
			}
		}
		return nil
	})
	if err != nil {
		s.log.Error("ReorderChildren failed", "parent_id", parentID, "error", err)
		return false, err
	}
	return true, nil
}

func (s *materialHierarchyService) BuildHierarchy(ctx context.Context, rootID uint, maxDepth int) (*types.Hierarchy, error) {
	const op = "hierarchy.build"
	if maxDepth <= 0 {
		maxDepth = types.DefaultHierarchyDepth
	}
	dbc := dbctx.New(ctx)
	root, err := s.materialRepo.GetByID(dbc, rootID)
	if err != nil {
		return nil, aggregates.MapError(op, err)
	}
	if root == nil {
		return nil, faults.Newf(faults.CodeNotFound, op, "root material %d not found", rootID)
	}

	b := &hierarchyBuilder{svc: s, dbc: dbc, maxDepth: maxDepth}
	children, err := b.expand(rootID, 1)
	if err != nil {
		return nil, aggregates.MapError(op, err)
	}
	return &types.Hierarchy{
		Root:           root,
		Children:       children,
		TotalDepth:     b.deepest,
		TotalMaterials: 1 + b.nodes,
	}, nil
}

type hierarchyBuilder struct {
	svc      *materialHierarchyService
	dbc      dbctx.Context
	maxDepth int
	deepest  int
	nodes    int
}

// expand returns the child nodes of materialID at the given depth. A node at
// exactly maxDepth keeps its children unexpanded; the truncation is silent.
func (b *hierarchyBuilder) expand(materialID uint, depth int) ([]*types.HierarchyNode, error) {
	if depth > b.maxDepth {
		return nil, nil
	}
	edges, err := b.svc.relationshipRepo.ListByMaterialAndKind(b.dbc, materialID, types.RelatedEntityMaterial)
	if err != nil {
		return nil, err
	}
	if len(edges) == 0 {
		return nil, nil
	}
	ids := make([]uint, 0, len(edges))
	for _, e := range edges {
		if id, ok := e.RelatedMaterialID(); ok {
			ids = append(ids, id)
		}
	}
	rows, err := b.svc.materialRepo.GetByIDs(b.dbc, ids)
	if err != nil {
		return nil, err
	}
	byID := make(map[uint]*types.Material, len(rows))
	for _, m := range rows {
		byID[m.ID] = m
	}

	out := make([]*types.HierarchyNode, 0, len(edges))
	for _, e := range edges {
		childID, ok := e.RelatedMaterialID()
		if !ok {
			continue
		}
		m, ok := byID[childID]
		if !ok {
			continue
		}
		if depth > b.deepest {
			b.deepest = depth
		}
		b.nodes++
		grandchildren, err := b.expand(childID, depth+1)
		if err != nil {
			return nil, err
		}
		out = append(out, &types.HierarchyNode{
			Material:         m,
			RelationshipType: e.RelationshipType,
			DisplayOrder:     e.DisplayOrder,
			Depth:            depth,
			Children:         grandchildren,
		})
	}
	return out, nil
}
