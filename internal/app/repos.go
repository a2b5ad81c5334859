package app

import (
	"gorm.io/gorm"

	"github.com/trainforge/trainforge-backend/internal/data/repos"
	"github.com/trainforge/trainforge-backend/internal/platform/logger"
)

type Repos struct {
	Material      repos.MaterialRepo
	Checklist     repos.ChecklistEntryRepo
	Workflow      repos.WorkflowStepRepo
	Questionnaire repos.QuestionnaireEntryRepo
	Timestamp     repos.VideoTimestampRepo
	QuizQuestion  repos.QuizQuestionRepo
	QuizAnswer    repos.QuizAnswerRepo
	Annotation    repos.ImageAnnotationRepo

	Relationship repos.MaterialRelationshipRepo
	Subcomponent repos.SubcomponentRelationshipRepo
	Asset        repos.AssetRepo

	LearningPath    repos.LearningPathRepo
	TrainingProgram repos.TrainingProgramRepo

	DocumentJob repos.DocumentJobRepo
}

func wireRepos(db *gorm.DB, log *logger.Logger) Repos {
	log.Info("Wiring repos...")
	return Repos{
		Material:      repos.NewMaterialRepo(db, log),
		Checklist:     repos.NewChecklistEntryRepo(db, log),
		Workflow:      repos.NewWorkflowStepRepo(db, log),
		Questionnaire: repos.NewQuestionnaireEntryRepo(db, log),
		Timestamp:     repos.NewVideoTimestampRepo(db, log),
		QuizQuestion:  repos.NewQuizQuestionRepo(db, log),
		QuizAnswer:    repos.NewQuizAnswerRepo(db, log),
		Annotation:    repos.NewImageAnnotationRepo(db, log),

		Relationship: repos.NewMaterialRelationshipRepo(db, log),
		Subcomponent: repos.NewSubcomponentRelationshipRepo(db, log),
		Asset:        repos.NewAssetRepo(db, log),

		LearningPath:    repos.NewLearningPathRepo(db, log),
		TrainingProgram: repos.NewTrainingProgramRepo(db, log),

		DocumentJob: repos.NewDocumentJobRepo(db, log),
	}
}
