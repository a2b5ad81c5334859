package domain

import (
	"github.com/trainforge/trainforge-backend/internal/domain/jobs"
	"github.com/trainforge/trainforge-backend/internal/domain/materials"
	"github.com/trainforge/trainforge-backend/internal/domain/training"
)

// Materials
type Material = materials.Material
type MaterialType = materials.MaterialType
type ChecklistEntry = materials.ChecklistEntry
type WorkflowStep = materials.WorkflowStep
type QuestionnaireEntry = materials.QuestionnaireEntry
type VideoTimestamp = materials.VideoTimestamp
type QuizQuestion = materials.QuizQuestion
type QuizAnswer = materials.QuizAnswer
type ImageAnnotation = materials.ImageAnnotation
type Asset = materials.Asset

// Relationships
type MaterialRelationship = materials.MaterialRelationship
type RelatedEntityKind = materials.RelatedEntityKind
type SubcomponentMaterialRelationship = materials.SubcomponentMaterialRelationship
type SubcomponentKind = materials.SubcomponentKind

// Derived hierarchy
type Hierarchy = materials.Hierarchy
type HierarchyNode = materials.HierarchyNode

// Training containers
type LearningPath = training.LearningPath
type TrainingProgram = training.TrainingProgram

// Background processing
type DocumentJob = jobs.DocumentJob

const (
	MaterialTypeVideo         = materials.MaterialTypeVideo
	MaterialTypeImage         = materials.MaterialTypeImage
	MaterialTypePDF           = materials.MaterialTypePDF
	MaterialTypeChecklist     = materials.MaterialTypeChecklist
	MaterialTypeWorkflow      = materials.MaterialTypeWorkflow
	MaterialTypeQuestionnaire = materials.MaterialTypeQuestionnaire
	MaterialTypeQuiz          = materials.MaterialTypeQuiz
	MaterialTypeChatbot       = materials.MaterialTypeChatbot
	MaterialTypeMQTTTemplate  = materials.MaterialTypeMQTTTemplate
	MaterialTypeUnity         = materials.MaterialTypeUnity
	MaterialTypeAIAssistant   = materials.MaterialTypeAIAssistant
	MaterialTypeDefault       = materials.MaterialTypeDefault

	RelatedEntityMaterial        = materials.RelatedEntityMaterial
	RelatedEntityLearningPath    = materials.RelatedEntityLearningPath
	RelatedEntityTrainingProgram = materials.RelatedEntityTrainingProgram

	RelationshipContains     = materials.RelationshipContains
	RelationshipAssigned     = materials.RelationshipAssigned
	RelationshipPrerequisite = materials.RelationshipPrerequisite

	SubcomponentChecklistEntry     = materials.SubcomponentChecklistEntry
	SubcomponentWorkflowStep       = materials.SubcomponentWorkflowStep
	SubcomponentQuestionnaireEntry = materials.SubcomponentQuestionnaireEntry
	SubcomponentVideoTimestamp     = materials.SubcomponentVideoTimestamp
	SubcomponentQuizQuestion       = materials.SubcomponentQuizQuestion
	SubcomponentQuizAnswer         = materials.SubcomponentQuizAnswer
	SubcomponentImageAnnotation    = materials.SubcomponentImageAnnotation

	DocumentJobStatusSubmitted  = jobs.DocumentJobStatusSubmitted
	DocumentJobStatusProcessing = jobs.DocumentJobStatusProcessing
	DocumentJobStatusCompleted  = jobs.DocumentJobStatusCompleted
	DocumentJobStatusFailed     = jobs.DocumentJobStatusFailed

	DefaultHierarchyDepth = materials.DefaultHierarchyDepth
)

var AllMaterialTypes = materials.AllMaterialTypes
var AllSubcomponentKinds = materials.AllSubcomponentKinds

func Classify(m *Material) MaterialType  { return materials.Classify(m) }
func Normalize(m *Material) MaterialType { return materials.Normalize(m) }

func ParseMaterialType(raw string) (MaterialType, bool) { return materials.ParseMaterialType(raw) }
func ParseSubcomponentKind(raw string) (SubcomponentKind, bool) {
	return materials.ParseSubcomponentKind(raw)
}

func FormatEntityID(id uint) string          { return materials.FormatEntityID(id) }
func ParseEntityID(raw string) (uint, error) { return materials.ParseEntityID(raw) }
