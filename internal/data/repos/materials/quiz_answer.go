package materials

import (
	"gorm.io/gorm"

	types "github.com/trainforge/trainforge-backend/internal/domain"
	"github.com/trainforge/trainforge-backend/internal/platform/dbctx"
	"github.com/trainforge/trainforge-backend/internal/platform/logger"
)

// Quiz answers hang off quiz questions rather than the material row, so the
// repo is keyed by question ids.
type QuizAnswerRepo interface {
	Create(dbc dbctx.Context, rows []*types.QuizAnswer) ([]*types.QuizAnswer, error)
	GetByQuestionIDs(dbc dbctx.Context, questionIDs []uint) ([]*types.QuizAnswer, error)
	Exists(dbc dbctx.Context, id uint) (bool, error)
	FullDeleteByQuestionIDs(dbc dbctx.Context, questionIDs []uint) error
}

type quizAnswerRepo struct {
	db  *gorm.DB
	log *logger.Logger
}

func NewQuizAnswerRepo(db *gorm.DB, baseLog *logger.Logger) QuizAnswerRepo {
	return &quizAnswerRepo{db: db, log: baseLog.With("repo", "QuizAnswerRepo")}
}

func (r *quizAnswerRepo) Create(dbc dbctx.Context, rows []*types.QuizAnswer) ([]*types.QuizAnswer, error) {
	t := dbc.Tx
	if t == nil {
		t = r.db
	}
	if len(rows) == 0 {
		return []*types.QuizAnswer{}, nil
	}
	if err := t.WithContext(dbc.Ctx).Create(&rows).Error; err != nil {
		return nil, err
	}
	return rows, nil
}

func (r *quizAnswerRepo) GetByQuestionIDs(dbc dbctx.Context, questionIDs []uint) ([]*types.QuizAnswer, error) {
	t := dbc.Tx
	if t == nil {
		t = r.db
	}
	var out []*types.QuizAnswer
	if len(questionIDs) == 0 {
		return out, nil
	}
	if err := t.WithContext(dbc.Ctx).
		Where("question_id IN ?", questionIDs).
		Order(`question_id ASC, "index" ASC, id ASC`).
		Find(&out).Error; err != nil {
		return nil, err
	}
	return out, nil
}

func (r *quizAnswerRepo) Exists(dbc dbctx.Context, id uint) (bool, error) {
	t := dbc.Tx
	if t == nil {
		t = r.db
	}
	if id == 0 {
		return false, nil
	}
	var count int64
	if err := t.WithContext(dbc.Ctx).
		Model(&types.QuizAnswer{}).
		Where("id = ?", id).
		Count(&count).Error; err != nil {
		return false, err
	}
	return count > 0, nil
}

func (r *quizAnswerRepo) FullDeleteByQuestionIDs(dbc dbctx.Context, questionIDs []uint) error {
	t := dbc.Tx
	if t == nil {
		t = r.db
	}
	if len(questionIDs) == 0 {
		return nil
	}
	return t.WithContext(dbc.Ctx).Unscoped().
		Where("question_id IN ?", questionIDs).
		Delete(&types.QuizAnswer{}).Error
}
