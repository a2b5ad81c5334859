package repos

import (
	"gorm.io/gorm"

	"github.com/trainforge/trainforge-backend/internal/data/repos/jobs"
	"github.com/trainforge/trainforge-backend/internal/data/repos/materials"
	"github.com/trainforge/trainforge-backend/internal/data/repos/training"
	"github.com/trainforge/trainforge-backend/internal/platform/logger"
)

type MaterialRepo = materials.MaterialRepo
type ChecklistEntryRepo = materials.ChecklistEntryRepo
type WorkflowStepRepo = materials.WorkflowStepRepo
type QuestionnaireEntryRepo = materials.QuestionnaireEntryRepo
type VideoTimestampRepo = materials.VideoTimestampRepo
type QuizQuestionRepo = materials.QuizQuestionRepo
type QuizAnswerRepo = materials.QuizAnswerRepo
type ImageAnnotationRepo = materials.ImageAnnotationRepo

type MaterialRelationshipRepo = materials.MaterialRelationshipRepo
type SubcomponentRelationshipRepo = materials.SubcomponentRelationshipRepo
type AssetRepo = materials.AssetRepo

type LearningPathRepo = training.LearningPathRepo
type TrainingProgramRepo = training.TrainingProgramRepo

type DocumentJobRepo = jobs.DocumentJobRepo

func NewMaterialRepo(db *gorm.DB, baseLog *logger.Logger) MaterialRepo {
	return materials.NewMaterialRepo(db, baseLog)
}
func NewChecklistEntryRepo(db *gorm.DB, baseLog *logger.Logger) ChecklistEntryRepo {
	return materials.NewChecklistEntryRepo(db, baseLog)
}
func NewWorkflowStepRepo(db *gorm.DB, baseLog *logger.Logger) WorkflowStepRepo {
	return materials.NewWorkflowStepRepo(db, baseLog)
}
func NewQuestionnaireEntryRepo(db *gorm.DB, baseLog *logger.Logger) QuestionnaireEntryRepo {
	return materials.NewQuestionnaireEntryRepo(db, baseLog)
}
func NewVideoTimestampRepo(db *gorm.DB, baseLog *logger.Logger) VideoTimestampRepo {
	return materials.NewVideoTimestampRepo(db, baseLog)
}
func NewQuizQuestionRepo(db *gorm.DB, baseLog *logger.Logger) QuizQuestionRepo {
	return materials.NewQuizQuestionRepo(db, baseLog)
}
func NewQuizAnswerRepo(db *gorm.DB, baseLog *logger.Logger) QuizAnswerRepo {
	return materials.NewQuizAnswerRepo(db, baseLog)
}
func NewImageAnnotationRepo(db *gorm.DB, baseLog *logger.Logger) ImageAnnotationRepo {
	return materials.NewImageAnnotationRepo(db, baseLog)
}

func NewMaterialRelationshipRepo(db *gorm.DB, baseLog *logger.Logger) MaterialRelationshipRepo {
	return materials.NewMaterialRelationshipRepo(db, baseLog)
}
func NewSubcomponentRelationshipRepo(db *gorm.DB, baseLog *logger.Logger) SubcomponentRelationshipRepo {
	return materials.NewSubcomponentRelationshipRepo(db, baseLog)
}
func NewAssetRepo(db *gorm.DB, baseLog *logger.Logger) AssetRepo {
	return materials.NewAssetRepo(db, baseLog)
}

func NewLearningPathRepo(db *gorm.DB, baseLog *logger.Logger) LearningPathRepo {
	return training.NewLearningPathRepo(db, baseLog)
}
func NewTrainingProgramRepo(db *gorm.DB, baseLog *logger.Logger) TrainingProgramRepo {
	return training.NewTrainingProgramRepo(db, baseLog)
}

func NewDocumentJobRepo(db *gorm.DB, baseLog *logger.Logger) DocumentJobRepo {
	return jobs.NewDocumentJobRepo(db, baseLog)
}
