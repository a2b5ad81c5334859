package db

import (
	"fmt"

	"gorm.io/gorm"

	types "github.com/trainforge/trainforge-backend/internal/domain"
)

func AutoMigrateAll(db *gorm.DB) error {
	err := db.AutoMigrate(

		// =========================
		// Polymorphic materials + variant child rows
		// =========================
		&types.Material{},
		&types.ChecklistEntry{},
		&types.WorkflowStep{},
		&types.QuestionnaireEntry{},
		&types.VideoTimestamp{},
		&types.QuizQuestion{},
		&types.QuizAnswer{},
		&types.ImageAnnotation{},

		// =========================
		// Relationship edge tables
		// =========================
		&types.MaterialRelationship{},
		&types.SubcomponentMaterialRelationship{},

		// =========================
		// Training containers
		// =========================
		&types.LearningPath{},
		&types.TrainingProgram{},

		// =========================
		// Assets + document AI jobs
		// =========================
		&types.Asset{},
		&types.DocumentJob{},
	)
	if err != nil {
		return fmt.Errorf("auto migrate: %w", err)
	}
	return nil
}
