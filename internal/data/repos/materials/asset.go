package materials

import (
	"time"

	"gorm.io/gorm"

	types "github.com/trainforge/trainforge-backend/internal/domain"
	"github.com/trainforge/trainforge-backend/internal/platform/dbctx"
	"github.com/trainforge/trainforge-backend/internal/platform/logger"
)

type AssetRepo interface {
	Create(dbc dbctx.Context, rows []*types.Asset) ([]*types.Asset, error)

	GetByID(dbc dbctx.Context, id uint) (*types.Asset, error)
	GetByJobID(dbc dbctx.Context, jobID string) (*types.Asset, error)
	ListByTenant(dbc dbctx.Context, tenantID string) ([]*types.Asset, error)
	ListUnprocessed(dbc dbctx.Context, limit int) ([]*types.Asset, error)

	Update(dbc dbctx.Context, row *types.Asset) error
	UpdateFields(dbc dbctx.Context, id uint, updates map[string]interface{}) error

	SoftDeleteByIDs(dbc dbctx.Context, ids []uint) error
	FullDeleteByIDs(dbc dbctx.Context, ids []uint) error
}

type assetRepo struct {
	db  *gorm.DB
	log *logger.Logger
}

func NewAssetRepo(db *gorm.DB, baseLog *logger.Logger) AssetRepo {
	return &assetRepo{db: db, log: baseLog.With("repo", "AssetRepo")}
}

func (r *assetRepo) Create(dbc dbctx.Context, rows []*types.Asset) ([]*types.Asset, error) {
	t := dbc.Tx
	if t == nil {
		t = r.db
	}
	if len(rows) == 0 {
		return rows, nil
	}
	if err := t.WithContext(dbc.Ctx).Create(&rows).Error; err != nil {
		return nil, err
	}
	return rows, nil
}

func (r *assetRepo) GetByID(dbc dbctx.Context, id uint) (*types.Asset, error) {
	if id == 0 {
		return nil, nil
	}
	t := dbc.Tx
	if t == nil {
		t = r.db
	}
	var row types.Asset
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

func (r *assetRepo) GetByJobID(dbc dbctx.Context, jobID string) (*types.Asset, error) {
	if jobID == "" {
		return nil, nil
	}
	t := dbc.Tx
	if t == nil {
		t = r.db
	}
	var row types.Asset
	err := t.WithContext(dbc.Ctx).
		Where("job_id = ?", jobID).
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

func (r *assetRepo) ListByTenant(dbc dbctx.Context, tenantID string) ([]*types.Asset, error) {
	t := dbc.Tx
	if t == nil {
		t = r.db
	}
	var out []*types.Asset
	if tenantID == "" {
		return out, nil
	}
	if err := t.WithContext(dbc.Ctx).
		Where("tenant_id = ?", tenantID).
		Order("id ASC").
		Find(&out).Error; err != nil {
		return nil, err
	}
	return out, nil
}

func (r *assetRepo) ListUnprocessed(dbc dbctx.Context, limit int) ([]*types.Asset, error) {
	t := dbc.Tx
	if t == nil {
		t = r.db
	}
	var out []*types.Asset
	q := t.WithContext(dbc.Ctx).
		Where("ai_available = ?", false).
		Order("id ASC")
	if limit > 0 {
		q = q.Limit(limit)
	}
	if err := q.Find(&out).Error; err != nil {
		return nil, err
	}
	return out, nil
}

func (r *assetRepo) Update(dbc dbctx.Context, row *types.Asset) error {
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

func (r *assetRepo) UpdateFields(dbc dbctx.Context, id uint, updates map[string]interface{}) error {
	t := dbc.Tx
	if t == nil {
		t = r.db
	}
	if id == 0 || len(updates) == 0 {
		return nil
	}
	if _, ok := updates["updated_at"]; !ok {
		updates["updated_at"] = time.Now().UTC()
	}
	return t.WithContext(dbc.Ctx).
		Model(&types.Asset{}).
		Where("id = ?", id).
		Updates(updates).Error
}

func (r *assetRepo) SoftDeleteByIDs(dbc dbctx.Context, ids []uint) error {
	t := dbc.Tx
	if t == nil {
		t = r.db
	}
	if len(ids) == 0 {
		return nil
	}
	return t.WithContext(dbc.Ctx).Where("id IN ?", ids).Delete(&types.Asset{}).Error
}

func (r *assetRepo) FullDeleteByIDs(dbc dbctx.Context, ids []uint) error {
	t := dbc.Tx
	if t == nil {
		t = r.db
	}
	if len(ids) == 0 {
		return nil
	}
	return t.WithContext(dbc.Ctx).Unscoped().Where("id IN ?", ids).Delete(&types.Asset{}).Error
}
