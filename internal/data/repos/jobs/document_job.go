package jobs

import (
	"time"

	"gorm.io/gorm"

	types "github.com/trainforge/trainforge-backend/internal/domain"
	"github.com/trainforge/trainforge-backend/internal/platform/dbctx"
	"github.com/trainforge/trainforge-backend/internal/platform/logger"
)

type DocumentJobRepo interface {
	Create(dbc dbctx.Context, row *types.DocumentJob) (*types.DocumentJob, error)

	GetByID(dbc dbctx.Context, id uint) (*types.DocumentJob, error)
	GetByProviderJobID(dbc dbctx.Context, provider string, providerJobID string) (*types.DocumentJob, error)
	ListByAssetID(dbc dbctx.Context, assetID uint) ([]*types.DocumentJob, error)

	// ListOpen returns non-terminal jobs, never-polled first, then stalest
	// first, capped at limit.
	ListOpen(dbc dbctx.Context, limit int) ([]*types.DocumentJob, error)
	MarkPolled(dbc dbctx.Context, id uint, at time.Time) error

	Update(dbc dbctx.Context, row *types.DocumentJob) error
	UpdateFields(dbc dbctx.Context, id uint, updates map[string]interface{}) error

	FullDeleteByIDs(dbc dbctx.Context, ids []uint) error
}

type documentJobRepo struct {
	db  *gorm.DB
	log *logger.Logger
}

func NewDocumentJobRepo(db *gorm.DB, baseLog *logger.Logger) DocumentJobRepo {
	return &documentJobRepo{db: db, log: baseLog.With("repo", "DocumentJobRepo")}
}

func (r *documentJobRepo) Create(dbc dbctx.Context, row *types.DocumentJob) (*types.DocumentJob, error) {
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

func (r *documentJobRepo) GetByID(dbc dbctx.Context, id uint) (*types.DocumentJob, error) {
	if id == 0 {
		return nil, nil
	}
	t := dbc.Tx
	if t == nil {
		t = r.db
	}
	var row types.DocumentJob
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

func (r *documentJobRepo) GetByProviderJobID(dbc dbctx.Context, provider string, providerJobID string) (*types.DocumentJob, error) {
	if provider == "" || providerJobID == "" {
		return nil, nil
	}
	t := dbc.Tx
	if t == nil {
		t = r.db
	}
	var row types.DocumentJob
	err := t.WithContext(dbc.Ctx).
		Where("provider = ? AND provider_job_id = ?", provider, providerJobID).
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

func (r *documentJobRepo) ListByAssetID(dbc dbctx.Context, assetID uint) ([]*types.DocumentJob, error) {
	t := dbc.Tx
	if t == nil {
		t = r.db
	}
	var out []*types.DocumentJob
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

func (r *documentJobRepo) ListOpen(dbc dbctx.Context, limit int) ([]*types.DocumentJob, error) {
	t := dbc.Tx
	if t == nil {
		t = r.db
	}
	if limit <= 0 {
		limit = 50
	}
	var out []*types.DocumentJob
	if err := t.WithContext(dbc.Ctx).
		Where("status IN ?", []string{types.DocumentJobStatusSubmitted, types.DocumentJobStatusProcessing}).
		Order("last_polled_at ASC NULLS FIRST, id ASC").
		Limit(limit).
		Find(&out).Error; err != nil {
		return nil, err
	}
	return out, nil
}

func (r *documentJobRepo) MarkPolled(dbc dbctx.Context, id uint, at time.Time) error {
	t := dbc.Tx
	if t == nil {
		t = r.db
	}
	if id == 0 {
		return nil
	}
	return t.WithContext(dbc.Ctx).
		Model(&types.DocumentJob{}).
		Where("id = ?", id).
		Updates(map[string]interface{}{
			"last_polled_at": at.UTC(),
			"attempts":       gorm.Expr("attempts + 1"),
			"updated_at":     time.Now().UTC(),
		}).Error
}

func (r *documentJobRepo) Update(dbc dbctx.Context, row *types.DocumentJob) error {
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

func (r *documentJobRepo) UpdateFields(dbc dbctx.Context, id uint, updates map[string]interface{}) error {
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
		Model(&types.DocumentJob{}).
		Where("id = ?", id).
		Updates(updates).Error
}

func (r *documentJobRepo) FullDeleteByIDs(dbc dbctx.Context, ids []uint) error {
	t := dbc.Tx
	if t == nil {
		t = r.db
	}
	if len(ids) == 0 {
		return nil
	}
	return t.WithContext(dbc.Ctx).Unscoped().Where("id IN ?", ids).Delete(&types.DocumentJob{}).Error
}
