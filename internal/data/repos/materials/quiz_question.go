package materials

import (
	"gorm.io/gorm"

	types "github.com/trainforge/trainforge-backend/internal/domain"
	"github.com/trainforge/trainforge-backend/internal/platform/dbctx"
	"github.com/trainforge/trainforge-backend/internal/platform/logger"
)

type QuizQuestionRepo interface {
	Create(dbc dbctx.Context, rows []*types.QuizQuestion) ([]*types.QuizQuestion, error)
	GetByMaterialIDs(dbc dbctx.Context, materialIDs []uint) ([]*types.QuizQuestion, error)
	GetIDsByMaterialIDs(dbc dbctx.Context, materialIDs []uint) ([]uint, error)
	Exists(dbc dbctx.Context, id uint) (bool, error)
	FullDeleteByMaterialIDs(dbc dbctx.Context, materialIDs []uint) error
}

type quizQuestionRepo struct {
	db  *gorm.DB
	log *logger.Logger
}

func NewQuizQuestionRepo(db *gorm.DB, baseLog *logger.Logger) QuizQuestionRepo {
	return &quizQuestionRepo{db: db, log: baseLog.With("repo", "QuizQuestionRepo")}
}

func (r *quizQuestionRepo) Create(dbc dbctx.Context, rows []*types.QuizQuestion) ([]*types.QuizQuestion, error) {
	t := dbc.Tx
	if t == nil {
		t = r.db
	}
	if len(rows) == 0 {
		return []*types.QuizQuestion{}, nil
	}
	if err := t.WithContext(dbc.Ctx).Create(&rows).Error; err != nil {
		return nil, err
	}
	return rows, nil
}

func (r *quizQuestionRepo) GetByMaterialIDs(dbc dbctx.Context, materialIDs []uint) ([]*types.QuizQuestion, error) {
	t := dbc.Tx
	if t == nil {
		t = r.db
	}
	var out []*types.QuizQuestion
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

func (r *quizQuestionRepo) GetIDsByMaterialIDs(dbc dbctx.Context, materialIDs []uint) ([]uint, error) {
	t := dbc.Tx
	if t == nil {
		t = r.db
	}
	var ids []uint
	if len(materialIDs) == 0 {
		return ids, nil
	}
	if err := t.WithContext(dbc.Ctx).
		Model(&types.QuizQuestion{}).
		Where("material_id IN ?", materialIDs).
		Pluck("id", &ids).Error; err != nil {
		return nil, err
	}
	return ids, nil
}

func (r *quizQuestionRepo) Exists(dbc dbctx.Context, id uint) (bool, error) {
	t := dbc.Tx
	if t == nil {
		t = r.db
	}
	if id == 0 {
		return false, nil
	}
	var count int64
	if err := t.WithContext(dbc.Ctx).
		Model(&types.QuizQuestion{}).
		Where("id = ?", id).
		Count(&count).Error; err != nil {
		return false, err
	}
	return count > 0, nil
}

func (r *quizQuestionRepo) FullDeleteByMaterialIDs(dbc dbctx.Context, materialIDs []uint) error {
	t := dbc.Tx
	if t == nil {
		t = r.db
	}
	if len(materialIDs) == 0 {
		return nil
	}
	return t.WithContext(dbc.Ctx).Unscoped().
		Where("material_id IN ?", materialIDs).
		Delete(&types.QuizQuestion{}).Error
}
