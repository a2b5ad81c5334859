package materials

import (
	"gorm.io/gorm"

	types "github.com/trainforge/trainforge-backend/internal/domain"
	"github.com/trainforge/trainforge-backend/internal/platform/dbctx"
	"github.com/trainforge/trainforge-backend/internal/platform/logger"
)

type QuestionnaireEntryRepo interface {
	Create(dbc dbctx.Context, rows []*types.QuestionnaireEntry) ([]*types.QuestionnaireEntry, error)
	GetByMaterialIDs(dbc dbctx.Context, materialIDs []uint) ([]*types.QuestionnaireEntry, error)
	Exists(dbc dbctx.Context, id uint) (bool, error)
	FullDeleteByMaterialIDs(dbc dbctx.Context, materialIDs []uint) error
}

type questionnaireEntryRepo struct {
	db  *gorm.DB
	log *logger.Logger
}

func NewQuestionnaireEntryRepo(db *gorm.DB, baseLog *logger.Logger) QuestionnaireEntryRepo {
	return &questionnaireEntryRepo{db: db, log: baseLog.With("repo", "QuestionnaireEntryRepo")}
}

func (r *questionnaireEntryRepo) Create(dbc dbctx.Context, rows []*types.QuestionnaireEntry) ([]*types.QuestionnaireEntry, error) {
	t := dbc.Tx
	if t == nil {
		t = r.db
	}
	if len(rows) == 0 {
		return []*types.QuestionnaireEntry{}, nil
	}
	if err := t.WithContext(dbc.Ctx).Create(&rows).Error; err != nil {
		return nil, err
	}
	return rows, nil
}

func (r *questionnaireEntryRepo) GetByMaterialIDs(dbc dbctx.Context, materialIDs []uint) ([]*types.QuestionnaireEntry, error) {
	t := dbc.Tx
	if t == nil {
		t = r.db
	}
	var out []*types.QuestionnaireEntry
	if len(materialIDs) == 0 {
		return out, nil
	}
	if err := t.WithContext(dbc.Ctx).
		Where("material_id IN ?", materialIDs).
		Order(`material_id ASC, "index" ASC, id ASC`).
		Find(&out).Error; err != nil {
		return nil, err
	}
	return out, nil
}

func (r *questionnaireEntryRepo) Exists(dbc dbctx.Context, id uint) (bool, error) {
	t := dbc.Tx
	if t == nil {
		t = r.db
	}
	if id == 0 {
		return false, nil
	}
	var count int64
	if err := t.WithContext(dbc.Ctx).
		Model(&types.QuestionnaireEntry{}).
		Where("id = ?", id).
		Count(&count).Error; err != nil {
		return false, err
	}
	return count > 0, nil
}

func (r *questionnaireEntryRepo) FullDeleteByMaterialIDs(dbc dbctx.Context, materialIDs []uint) error {
	t := dbc.Tx
	if t == nil {
		t = r.db
	}
	if len(materialIDs) == 0 {
		return nil
	}
	return t.WithContext(dbc.Ctx).Unscoped().
		Where("material_id IN ?", materialIDs).
		Delete(&types.QuestionnaireEntry{}).Error
}
