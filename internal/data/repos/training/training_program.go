package training

import (
	"time"

	"gorm.io/gorm"

	types "github.com/trainforge/trainforge-backend/internal/domain"
	"github.com/trainforge/trainforge-backend/internal/platform/dbctx"
	"github.com/trainforge/trainforge-backend/internal/platform/logger"
)

type TrainingProgramRepo interface {
	Create(dbc dbctx.Context, rows []*types.TrainingProgram) ([]*types.TrainingProgram, error)

	GetByID(dbc dbctx.Context, id uint) (*types.TrainingProgram, error)
	ListByTenant(dbc dbctx.Context, tenantID string) ([]*types.TrainingProgram, error)
	ListActiveByTenant(dbc dbctx.Context, tenantID string) ([]*types.TrainingProgram, error)
	Exists(dbc dbctx.Context, id uint) (bool, error)

	Update(dbc dbctx.Context, row *types.TrainingProgram) error
	UpdateFields(dbc dbctx.Context, id uint, updates map[string]interface{}) error

	SoftDeleteByIDs(dbc dbctx.Context, ids []uint) error
	FullDeleteByIDs(dbc dbctx.Context, ids []uint) error
}

type trainingProgramRepo struct {
	db  *gorm.DB
	log *logger.Logger
}

func NewTrainingProgramRepo(db *gorm.DB, baseLog *logger.Logger) TrainingProgramRepo {
	return &trainingProgramRepo{db: db, log: baseLog.With("repo", "TrainingProgramRepo")}
}

func (r *trainingProgramRepo) Create(dbc dbctx.Context, rows []*types.TrainingProgram) ([]*types.TrainingProgram, error) {
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

func (r *trainingProgramRepo) GetByID(dbc dbctx.Context, id uint) (*types.TrainingProgram, error) {
	if id == 0 {
		return nil, nil
	}
	t := dbc.Tx
	if t == nil {
		t = r.db
	}
	var row types.TrainingProgram
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

func (r *trainingProgramRepo) ListByTenant(dbc dbctx.Context, tenantID string) ([]*types.TrainingProgram, error) {
	t := dbc.Tx
	if t == nil {
		t = r.db
	}
	var out []*types.TrainingProgram
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

func (r *trainingProgramRepo) ListActiveByTenant(dbc dbctx.Context, tenantID string) ([]*types.TrainingProgram, error) {
	t := dbc.Tx
	if t == nil {
		t = r.db
	}
	var out []*types.TrainingProgram
	if tenantID == "" {
		return out, nil
	}
	if err := t.WithContext(dbc.Ctx).
		Where("tenant_id = ? AND active = ?", tenantID, true).
		Order("id ASC").
		Find(&out).Error; err != nil {
		return nil, err
	}
	return out, nil
}

func (r *trainingProgramRepo) Exists(dbc dbctx.Context, id uint) (bool, error) {
	if id == 0 {
		return false, nil
	}
	t := dbc.Tx
	if t == nil {
		t = r.db
	}
	var n int64
	err := t.WithContext(dbc.Ctx).
		Model(&types.TrainingProgram{}).
		Where("id = ?", id).
		Count(&n).Error
	if err != nil {
		return false, err
	}
	return n > 0, nil
}

func (r *trainingProgramRepo) Update(dbc dbctx.Context, row *types.TrainingProgram) error {
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

func (r *trainingProgramRepo) UpdateFields(dbc dbctx.Context, id uint, updates map[string]interface{}) error {
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
		Model(&types.TrainingProgram{}).
		Where("id = ?", id).
		Updates(updates).Error
}

func (r *trainingProgramRepo) SoftDeleteByIDs(dbc dbctx.Context, ids []uint) error {
	t := dbc.Tx
	if t == nil {
		t = r.db
	}
	if len(ids) == 0 {
		return nil
	}
	return t.WithContext(dbc.Ctx).Where("id IN ?", ids).Delete(&types.TrainingProgram{}).Error
}

func (r *trainingProgramRepo) FullDeleteByIDs(dbc dbctx.Context, ids []uint) error {
	t := dbc.Tx
	if t == nil {
		t = r.db
	}
	if len(ids) == 0 {
		return nil
	}
	return t.WithContext(dbc.Ctx).Unscoped().Where("id IN ?", ids).Delete(&types.TrainingProgram{}).Error
}
