package materials

import (
	"time"

	"gorm.io/gorm"

	types "github.com/trainforge/trainforge-backend/internal/domain"
	"github.com/trainforge/trainforge-backend/internal/platform/dbctx"
	"github.com/trainforge/trainforge-backend/internal/platform/logger"
)

type SubcomponentRelationshipRepo interface {
	Create(dbc dbctx.Context, row *types.SubcomponentMaterialRelationship) (*types.SubcomponentMaterialRelationship, error)

	GetByID(dbc dbctx.Context, id uint) (*types.SubcomponentMaterialRelationship, error)
	GetByTuple(dbc dbctx.Context, kind types.SubcomponentKind, subcomponentID uint, relatedMaterialID uint, relationshipType string) (*types.SubcomponentMaterialRelationship, error)
	// GetByTriple ignores the relationship type; the uniqueness rule is on
	// (kind, subcomponent, material) alone.
	GetByTriple(dbc dbctx.Context, kind types.SubcomponentKind, subcomponentID uint, relatedMaterialID uint) (*types.SubcomponentMaterialRelationship, error)

	ListBySubcomponent(dbc dbctx.Context, kind types.SubcomponentKind, subcomponentID uint) ([]*types.SubcomponentMaterialRelationship, error)
	ListBySubcomponentAndType(dbc dbctx.Context, kind types.SubcomponentKind, subcomponentID uint, relationshipType string) ([]*types.SubcomponentMaterialRelationship, error)
	ListByRelatedMaterial(dbc dbctx.Context, relatedMaterialID uint) ([]*types.SubcomponentMaterialRelationship, error)

	MaxDisplayOrder(dbc dbctx.Context, kind types.SubcomponentKind, subcomponentID uint) (int, error)
	UpdateDisplayOrder(dbc dbctx.Context, id uint, displayOrder int) error

	FullDeleteByIDs(dbc dbctx.Context, ids []uint) error
	FullDeleteByRelatedMaterialID(dbc dbctx.Context, relatedMaterialID uint) error
	FullDeleteBySubcomponent(dbc dbctx.Context, kind types.SubcomponentKind, subcomponentID uint) error
}

type subcomponentRelationshipRepo struct {
	db  *gorm.DB
	log *logger.Logger
}

func NewSubcomponentRelationshipRepo(db *gorm.DB, baseLog *logger.Logger) SubcomponentRelationshipRepo {
	return &subcomponentRelationshipRepo{db: db, log: baseLog.With("repo", "SubcomponentRelationshipRepo")}
}

func (r *subcomponentRelationshipRepo) Create(dbc dbctx.Context, row *types.SubcomponentMaterialRelationship) (*types.SubcomponentMaterialRelationship, error) {
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

func (r *subcomponentRelationshipRepo) GetByID(dbc dbctx.Context, id uint) (*types.SubcomponentMaterialRelationship, error) {
	if id == 0 {
		return nil, nil
	}
	t := dbc.Tx
	if t == nil {
		t = r.db
	}
	var row types.SubcomponentMaterialRelationship
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

func (r *subcomponentRelationshipRepo) GetByTuple(dbc dbctx.Context, kind types.SubcomponentKind, subcomponentID uint, relatedMaterialID uint, relationshipType string) (*types.SubcomponentMaterialRelationship, error) {
	if subcomponentID == 0 || relatedMaterialID == 0 {
		return nil, nil
	}
	t := dbc.Tx
	if t == nil {
		t = r.db
	}
	var row types.SubcomponentMaterialRelationship
	err := t.WithContext(dbc.Ctx).
		Where("subcomponent_type = ? AND subcomponent_id = ? AND related_material_id = ? AND relationship_type = ?",
			kind, subcomponentID, relatedMaterialID, relationshipType).
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

func (r *subcomponentRelationshipRepo) GetByTriple(dbc dbctx.Context, kind types.SubcomponentKind, subcomponentID uint, relatedMaterialID uint) (*types.SubcomponentMaterialRelationship, error) {
	if subcomponentID == 0 || relatedMaterialID == 0 {
		return nil, nil
	}
	t := dbc.Tx
	if t == nil {
		t = r.db
	}
	var row types.SubcomponentMaterialRelationship
	err := t.WithContext(dbc.Ctx).
		Where("subcomponent_type = ? AND subcomponent_id = ? AND related_material_id = ?",
			kind, subcomponentID, relatedMaterialID).
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

func (r *subcomponentRelationshipRepo) ListBySubcomponent(dbc dbctx.Context, kind types.SubcomponentKind, subcomponentID uint) ([]*types.SubcomponentMaterialRelationship, error) {
	t := dbc.Tx
	if t == nil {
		t = r.db
	}
	var out []*types.SubcomponentMaterialRelationship
	if subcomponentID == 0 {
		return out, nil
	}
	if err := t.WithContext(dbc.Ctx).
		Where("subcomponent_type = ? AND subcomponent_id = ?", kind, subcomponentID).
		Order(displayOrderClause).
		Find(&out).Error; err != nil {
		return nil, err
	}
	return out, nil
}

func (r *subcomponentRelationshipRepo) ListBySubcomponentAndType(dbc dbctx.Context, kind types.SubcomponentKind, subcomponentID uint, relationshipType string) ([]*types.SubcomponentMaterialRelationship, error) {
	t := dbc.Tx
	if t == nil {
		t = r.db
	}
	var out []*types.SubcomponentMaterialRelationship
	if subcomponentID == 0 {
		return out, nil
	}
	if err := t.WithContext(dbc.Ctx).
		Where("subcomponent_type = ? AND subcomponent_id = ? AND relationship_type = ?",
			kind, subcomponentID, relationshipType).
		Order(displayOrderClause).
		Find(&out).Error; err != nil {
		return nil, err
	}
	return out, nil
}

func (r *subcomponentRelationshipRepo) ListByRelatedMaterial(dbc dbctx.Context, relatedMaterialID uint) ([]*types.SubcomponentMaterialRelationship, error) {
	t := dbc.Tx
	if t == nil {
		t = r.db
	}
	var out []*types.SubcomponentMaterialRelationship
	if relatedMaterialID == 0 {
		return out, nil
	}
	if err := t.WithContext(dbc.Ctx).
		Where("related_material_id = ?", relatedMaterialID).
		Order("subcomponent_type ASC, subcomponent_id ASC, id ASC").
		Find(&out).Error; err != nil {
		return nil, err
	}
	return out, nil
}

func (r *subcomponentRelationshipRepo) MaxDisplayOrder(dbc dbctx.Context, kind types.SubcomponentKind, subcomponentID uint) (int, error) {
	t := dbc.Tx
	if t == nil {
		t = r.db
	}
	var max int
	err := t.WithContext(dbc.Ctx).
		Model(&types.SubcomponentMaterialRelationship{}).
		Where("subcomponent_type = ? AND subcomponent_id = ?", kind, subcomponentID).
		Select("COALESCE(MAX(display_order), 0)").
		Scan(&max).Error
	if err != nil {
		return 0, err
	}
	return max, nil
}

func (r *subcomponentRelationshipRepo) UpdateDisplayOrder(dbc dbctx.Context, id uint, displayOrder int) error {
	t := dbc.Tx
	if t == nil {
		t = r.db
	}
	if id == 0 {
		return nil
	}
	return t.WithContext(dbc.Ctx).
		Model(&types.SubcomponentMaterialRelationship{}).
		Where("id = ?", id).
		Updates(map[string]interface{}{
			"display_order": displayOrder,
			"updated_at":    time.Now().UTC(),
		}).Error
}

func (r *subcomponentRelationshipRepo) FullDeleteByIDs(dbc dbctx.Context, ids []uint) error {
	t := dbc.Tx
	if t == nil {
		t = r.db
	}
	if len(ids) == 0 {
		return nil
	}
	return t.WithContext(dbc.Ctx).Unscoped().Where("id IN ?", ids).Delete(&types.SubcomponentMaterialRelationship{}).Error
}

func (r *subcomponentRelationshipRepo) FullDeleteByRelatedMaterialID(dbc dbctx.Context, relatedMaterialID uint) error {
	t := dbc.Tx
	if t == nil {
		t = r.db
	}
	if relatedMaterialID == 0 {
		return nil
	}
	return t.WithContext(dbc.Ctx).Unscoped().
		Where("related_material_id = ?", relatedMaterialID).
		Delete(&types.SubcomponentMaterialRelationship{}).Error
}

func (r *subcomponentRelationshipRepo) FullDeleteBySubcomponent(dbc dbctx.Context, kind types.SubcomponentKind, subcomponentID uint) error {
	t := dbc.Tx
	if t == nil {
		t = r.db
	}
	if subcomponentID == 0 {
		return nil
	}
	return t.WithContext(dbc.Ctx).Unscoped().
		Where("subcomponent_type = ? AND subcomponent_id = ?", kind, subcomponentID).
		Delete(&types.SubcomponentMaterialRelationship{}).Error
}
