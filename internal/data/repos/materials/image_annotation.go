package materials

import (
	"gorm.io/gorm"

	types "github.com/trainforge/trainforge-backend/internal/domain"
	"github.com/trainforge/trainforge-backend/internal/platform/dbctx"
	"github.com/trainforge/trainforge-backend/internal/platform/logger"
)

type ImageAnnotationRepo interface {
	Create(dbc dbctx.Context, rows []*types.ImageAnnotation) ([]*types.ImageAnnotation, error)
	GetByMaterialIDs(dbc dbctx.Context, materialIDs []uint) ([]*types.ImageAnnotation, error)
	Exists(dbc dbctx.Context, id uint) (bool, error)
	FullDeleteByMaterialIDs(dbc dbctx.Context, materialIDs []uint) error
}

type imageAnnotationRepo struct {
	db  *gorm.DB
	log *logger.Logger
}

func NewImageAnnotationRepo(db *gorm.DB, baseLog *logger.Logger) ImageAnnotationRepo {
	return &imageAnnotationRepo{db: db, log: baseLog.With("repo", "ImageAnnotationRepo")}
}

func (r *imageAnnotationRepo) Create(dbc dbctx.Context, rows []*types.ImageAnnotation) ([]*types.ImageAnnotation, error) {
	t := dbc.Tx
	if t == nil {
		t = r.db
	}
	if len(rows) == 0 {
		return []*types.ImageAnnotation{}, nil
	}
	if err := t.WithContext(dbc.Ctx).Create(&rows).Error; err != nil {
		return nil, err
	}
	return rows, nil
}

func (r *imageAnnotationRepo) GetByMaterialIDs(dbc dbctx.Context, materialIDs []uint) ([]*types.ImageAnnotation, error) {
	t := dbc.Tx
	if t == nil {
		t = r.db
	}
	var out []*types.ImageAnnotation
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

func (r *imageAnnotationRepo) Exists(dbc dbctx.Context, id uint) (bool, error) {
	t := dbc.Tx
	if t == nil {
		t = r.db
	}
	if id == 0 {
		return false, nil
	}
	var count int64
	if err := t.WithContext(dbc.Ctx).
		Model(&types.ImageAnnotation{}).
		Where("id = ?", id).
		Count(&count).Error; err != nil {
		return false, err
	}
	return count > 0, nil
}

func (r *imageAnnotationRepo) FullDeleteByMaterialIDs(dbc dbctx.Context, materialIDs []uint) error {
	t := dbc.Tx
	if t == nil {
		t = r.db
	}
	if len(materialIDs) == 0 {
		return nil
	}
	return t.WithContext(dbc.Ctx).Unscoped().
		Where("material_id IN ?", materialIDs).
		Delete(&types.ImageAnnotation{}).Error
}
