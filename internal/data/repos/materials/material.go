package materials

import (
	"time"

	"gorm.io/gorm"

	types "github.com/trainforge/trainforge-backend/internal/domain"
	"github.com/trainforge/trainforge-backend/internal/platform/dbctx"
	"github.com/trainforge/trainforge-backend/internal/platform/logger"
)

type MaterialRepo interface {
	Create(dbc dbctx.Context, rows []*types.Material) ([]*types.Material, error)

	GetByID(dbc dbctx.Context, id uint) (*types.Material, error)
	GetByIDs(dbc dbctx.Context, ids []uint) ([]*types.Material, error)
	GetByUniqueID(dbc dbctx.Context, uniqueID string) (*types.Material, error)
	ListByTenant(dbc dbctx.Context, tenantID string) ([]*types.Material, error)
	ListByType(dbc dbctx.Context, materialType types.MaterialType) ([]*types.Material, error)
	ListByAssetID(dbc dbctx.Context, assetID uint) ([]*types.Material, error)

	Update(dbc dbctx.Context, row *types.Material) error
	UpdateFields(dbc dbctx.Context, id uint, updates map[string]interface{}) error

	SoftDeleteByIDs(dbc dbctx.Context, ids []uint) error
	FullDeleteByIDs(dbc dbctx.Context, ids []uint) error
}

type materialRepo struct {
	db  *gorm.DB
	log *logger.Logger
}

func NewMaterialRepo(db *gorm.DB, baseLog *logger.Logger) MaterialRepo {
	return &materialRepo{db: db, log: baseLog.With("repo", "MaterialRepo")}
}

func (r *materialRepo) Create(dbc dbctx.Context, rows []*types.Material) ([]*types.Material, error) {
	t := dbc.Tx
	if t == nil {
		t = r.db
	}
	if len(rows) == 0 {
		return []*types.Material{}, nil
	}
	if err := t.WithContext(dbc.Ctx).Create(&rows).Error; err != nil {
		return nil, err
	}
	return rows, nil
}

func (r *materialRepo) GetByID(dbc dbctx.Context, id uint) (*types.Material, error) {
	if id == 0 {
		return nil, nil
	}
	rows, err := r.GetByIDs(dbc, []uint{id})
	if err != nil {
		return nil, err
	}
	if len(rows) == 0 {
		return nil, nil
	}
	return rows[0], nil
}

func (r *materialRepo) GetByIDs(dbc dbctx.Context, ids []uint) ([]*types.Material, error) {
	t := dbc.Tx
	if t == nil {
		t = r.db
	}
	var out []*types.Material
	if len(ids) == 0 {
		return out, nil
	}
	if err := t.WithContext(dbc.Ctx).Where("id IN ?", ids).Find(&out).Error; err != nil {
		return nil, err
	}
	return out, nil
}

func (r *materialRepo) GetByUniqueID(dbc dbctx.Context, uniqueID string) (*types.Material, error) {
	if uniqueID == "" {
		return nil, nil
	}
	t := dbc.Tx
	if t == nil {
		t = r.db
	}
	var row types.Material
	err := t.WithContext(dbc.Ctx).
		Where("unique_id = ?", uniqueID).
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

func (r *materialRepo) ListByTenant(dbc dbctx.Context, tenantID string) ([]*types.Material, error) {
	t := dbc.Tx
	if t == nil {
		t = r.db
	}
	var out []*types.Material
	q := t.WithContext(dbc.Ctx)
	if tenantID != "" {
		q = q.Where("tenant_id = ?", tenantID)
	}
	if err := q.Order("id ASC").Find(&out).Error; err != nil {
		return nil, err
	}
	return out, nil
}

func (r *materialRepo) ListByType(dbc dbctx.Context, materialType types.MaterialType) ([]*types.Material, error) {
	t := dbc.Tx
	if t == nil {
		t = r.db
	}
	var out []*types.Material
	if err := t.WithContext(dbc.Ctx).
		Where("type = ?", materialType).
		Order("id ASC").
		Find(&out).Error; err != nil {
		return nil, err
	}
	return out, nil
}

func (r *materialRepo) ListByAssetID(dbc dbctx.Context, assetID uint) ([]*types.Material, error) {
	t := dbc.Tx
	if t == nil {
		t = r.db
	}
	var out []*types.Material
	if assetID == 0 {
		return out, nil
	}
	if err := t.WithContext(dbc.Ctx).
		Where("asset_id = ?", assetID).
		Order("id ASC").
		Find(&out).Error; err != nil {
		return nil, err
	}
	return out, nil
}

func (r *materialRepo) Update(dbc dbctx.Context, row *types.Material) error {
	t := dbc.Tx
	if t == nil {
		t = r.db
	}
	if row == nil || row.ID == 0 {
		return nil
	}
	row.UpdatedAt = time.Now().UTC()
	return t.WithContext(dbc.Ctx).Save(row).Error
}

func (r *materialRepo) UpdateFields(dbc dbctx.Context, id uint, updates map[string]interface{}) error {
	t := dbc.Tx
	if t == nil {
		t = r.db
	}
	if id == 0 {
		return nil
	}
	if updates == nil {
		updates = map[string]interface{}{}
	}
	if _, ok := updates["updated_at"]; !ok {
		updates["updated_at"] = time.Now().UTC()
	}
	return t.WithContext(dbc.Ctx).
		Model(&types.Material{}).
		Where("id = ?", id).
		Updates(updates).Error
}

func (r *materialRepo) SoftDeleteByIDs(dbc dbctx.Context, ids []uint) error {
	t := dbc.Tx
	if t == nil {
		t = r.db
	}
	if len(ids) == 0 {
		return nil
	}
	return t.WithContext(dbc.Ctx).Where("id IN ?", ids).Delete(&types.Material{}).Error
}

func (r *materialRepo) FullDeleteByIDs(dbc dbctx.Context, ids []uint) error {
	t := dbc.Tx
	if t == nil {
		t = r.db
	}
	if len(ids) == 0 {
		return nil
	}
	return t.WithContext(dbc.Ctx).Unscoped().Where("id IN ?", ids).Delete(&types.Material{}).Error
}
