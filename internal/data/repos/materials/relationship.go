package materials

import (
	"time"

	"gorm.io/gorm"

	types "github.com/trainforge/trainforge-backend/internal/domain"
	"github.com/trainforge/trainforge-backend/internal/platform/dbctx"
	"github.com/trainforge/trainforge-backend/internal/platform/logger"
)

// Ordered listings sort missing display orders last; id breaks ties so two
// edges created without explicit orders keep insertion order.
const displayOrderClause = "display_order ASC NULLS LAST, id ASC"

type MaterialRelationshipRepo interface {
	Create(dbc dbctx.Context, row *types.MaterialRelationship) (*types.MaterialRelationship, error)

	GetByID(dbc dbctx.Context, id uint) (*types.MaterialRelationship, error)
	GetByTuple(dbc dbctx.Context, materialID uint, kind types.RelatedEntityKind, relatedEntityID string, relationshipType string) (*types.MaterialRelationship, error)

	ListByMaterial(dbc dbctx.Context, materialID uint) ([]*types.MaterialRelationship, error)
	ListByMaterialAndKind(dbc dbctx.Context, materialID uint, kind types.RelatedEntityKind) ([]*types.MaterialRelationship, error)
	ListByMaterialKindAndType(dbc dbctx.Context, materialID uint, kind types.RelatedEntityKind, relationshipType string) ([]*types.MaterialRelationship, error)
	ListByRelatedEntity(dbc dbctx.Context, kind types.RelatedEntityKind, relatedEntityID string) ([]*types.MaterialRelationship, error)
	ListByRelatedEntityAndType(dbc dbctx.Context, kind types.RelatedEntityKind, relatedEntityID string, relationshipType string) ([]*types.MaterialRelationship, error)

	MaxDisplayOrder(dbc dbctx.Context, materialID uint, kind types.RelatedEntityKind) (int, error)
	UpdateDisplayOrder(dbc dbctx.Context, id uint, displayOrder int) error

	FullDeleteByIDs(dbc dbctx.Context, ids []uint) error
	FullDeleteByMaterialID(dbc dbctx.Context, materialID uint) error
}

type materialRelationshipRepo struct {
	db  *gorm.DB
	log *logger.Logger
}

func NewMaterialRelationshipRepo(db *gorm.DB, baseLog *logger.Logger) MaterialRelationshipRepo {
	return &materialRelationshipRepo{db: db, log: baseLog.With("repo", "MaterialRelationshipRepo")}
}

func (r *materialRelationshipRepo) Create(dbc dbctx.Context, row *types.MaterialRelationship) (*types.MaterialRelationship, error) {
	t := dbc.Tx
	if t == nil {
		t = r.db
	}
	if row == nil {
		return nil, nil
	}
	if err := t.WithContext(dbc.Ctx).Create(row).Error; err != nil {
		return nil, err
	}
	return row, nil
}

func (r *materialRelationshipRepo) GetByID(dbc dbctx.Context, id uint) (*types.MaterialRelationship, error) {
	if id == 0 {
		return nil, nil
	}
	t := dbc.Tx
	if t == nil {
		t = r.db
	}
	var row types.MaterialRelationship
	err := t.WithContext(dbc.Ctx).
		Where("id = ?", id).
		Limit(1).
		Find(&row).Error
	if err != nil {
		return nil, err
	}
	if row.ID == 0 {
		return nil, nil
	}
	return &row, nil
}

func (r *materialRelationshipRepo) GetByTuple(dbc dbctx.Context, materialID uint, kind types.RelatedEntityKind, relatedEntityID string, relationshipType string) (*types.MaterialRelationship, error) {
	if materialID == 0 || relatedEntityID == "" {
		return nil, nil
	}
	t := dbc.Tx
	if t == nil {
		t = r.db
	}
	var row types.MaterialRelationship
	err := t.WithContext(dbc.Ctx).
		Where("material_id = ? AND related_entity_type = ? AND related_entity_id = ? AND relationship_type = ?",
			materialID, kind, relatedEntityID, relationshipType).
		Limit(1).
		Find(&row).Error
	if err != nil {
		return nil, err
	}
	if row.ID == 0 {
		return nil, nil
	}
	return &row, nil
}

func (r *materialRelationshipRepo) ListByMaterial(dbc dbctx.Context, materialID uint) ([]*types.MaterialRelationship, error) {
	t := dbc.Tx
	if t == nil {
		t = r.db
	}
	var out []*types.MaterialRelationship
	if materialID == 0 {
		return out, nil
	}
	if err := t.WithContext(dbc.Ctx).
		Where("material_id = ?", materialID).
		Order(displayOrderClause).
		Find(&out).Error; err != nil {
		return nil, err
	}
	return out, nil
}

func (r *materialRelationshipRepo) ListByMaterialAndKind(dbc dbctx.Context, materialID uint, kind types.RelatedEntityKind) ([]*types.MaterialRelationship, error) {
	t := dbc.Tx
	if t == nil {
		t = r.db
	}
	var out []*types.MaterialRelationship
	if materialID == 0 {
		return out, nil
	}
	if err := t.WithContext(dbc.Ctx).
		Where("material_id = ? AND related_entity_type = ?", materialID, kind).
		Order(displayOrderClause).
		Find(&out).Error; err != nil {
		return nil, err
	}
	return out, nil
}

func (r *materialRelationshipRepo) ListByMaterialKindAndType(dbc dbctx.Context, materialID uint, kind types.RelatedEntityKind, relationshipType string) ([]*types.MaterialRelationship, error) {
	t := dbc.Tx
	if t == nil {
		t = r.db
	}
	var out []*types.MaterialRelationship
	if materialID == 0 {
		return out, nil
	}
	if err := t.WithContext(dbc.Ctx).
		Where("material_id = ? AND related_entity_type = ? AND relationship_type = ?",
			materialID, kind, relationshipType).
		Order(displayOrderClause).
		Find(&out).Error; err != nil {
		return nil, err
	}
	return out, nil
}

func (r *materialRelationshipRepo) ListByRelatedEntity(dbc dbctx.Context, kind types.RelatedEntityKind, relatedEntityID string) ([]*types.MaterialRelationship, error) {
	t := dbc.Tx
	if t == nil {
		t = r.db
	}
	var out []*types.MaterialRelationship
	if relatedEntityID == "" {
		return out, nil
	}
	if err := t.WithContext(dbc.Ctx).
		Where("related_entity_type = ? AND related_entity_id = ?", kind, relatedEntityID).
		Order(displayOrderClause).
		Find(&out).Error; err != nil {
		return nil, err
	}
	return out, nil
}

func (r *materialRelationshipRepo) ListByRelatedEntityAndType(dbc dbctx.Context, kind types.RelatedEntityKind, relatedEntityID string, relationshipType string) ([]*types.MaterialRelationship, error) {
	t := dbc.Tx
	if t == nil {
		t = r.db
	}
	var out []*types.MaterialRelationship
	if relatedEntityID == "" {
		return out, nil
	}
	if err := t.WithContext(dbc.Ctx).
		Where("related_entity_type = ? AND related_entity_id = ? AND relationship_type = ?",
			kind, relatedEntityID, relationshipType).
		Order(displayOrderClause).
		Find(&out).Error; err != nil {
		return nil, err
	}
	return out, nil
}

// MaxDisplayOrder returns the current maximum order in the
// (material, related-entity-kind) group, 0 when the group is empty or holds
// only unordered edges.
func (r *materialRelationshipRepo) MaxDisplayOrder(dbc dbctx.Context, materialID uint, kind types.RelatedEntityKind) (int, error) {
	t := dbc.Tx
	if t == nil {
		t = r.db
	}
	var max int
	err := t.WithContext(dbc.Ctx).
		Model(&types.MaterialRelationship{}).
		Where("material_id = ? AND related_entity_type = ?", materialID, kind).
		Select("COALESCE(MAX(display_order), 0)").
		Scan(&max).Error
	if err != nil {
		return 0, err
	}
	return max, nil
}

func (r *materialRelationshipRepo) UpdateDisplayOrder(dbc dbctx.Context, id uint, displayOrder int) error {
	t := dbc.Tx
	if t == nil {
		t = r.db
	}
	if id == 0 {
		return nil
	}
	return t.WithContext(dbc.Ctx).
		Model(&types.MaterialRelationship{}).
		Where("id = ?", id).
		Updates(map[string]interface{}{
			"display_order": displayOrder,
			"updated_at":    time.Now().UTC(),
		}).Error
}

func (r *materialRelationshipRepo) FullDeleteByIDs(dbc dbctx.Context, ids []uint) error {
	t := dbc.Tx
	if t == nil {
		t = r.db
	}
	if len(ids) == 0 {
		return nil
	}
	return t.WithContext(dbc.Ctx).Unscoped().Where("id IN ?", ids).Delete(&types.MaterialRelationship{}).Error
}

// FullDeleteByMaterialID removes every edge touching the material on either
// side, including edges where the material is the Material-typed target.
func (r *materialRelationshipRepo) FullDeleteByMaterialID(dbc dbctx.Context, materialID uint) error {
	t := dbc.Tx
	if t == nil {
		t = r.db
	}
	if materialID == 0 {
		return nil
	}
	return t.WithContext(dbc.Ctx).Unscoped().
		Where("material_id = ? OR (related_entity_type = ? AND related_entity_id = ?)",
			materialID, types.RelatedEntityMaterial, types.FormatEntityID(materialID)).
		Delete(&types.MaterialRelationship{}).Error
}
