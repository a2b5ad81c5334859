package materials

import (
	"strings"
	"time"
)

// SubcomponentKind is the closed whitelist of child-row types that can be
// tagged with a related material.
type SubcomponentKind string

const (
	SubcomponentChecklistEntry     SubcomponentKind = "ChecklistEntry"
	SubcomponentWorkflowStep       SubcomponentKind = "WorkflowStep"
	SubcomponentQuestionnaireEntry SubcomponentKind = "QuestionnaireEntry"
	SubcomponentVideoTimestamp     SubcomponentKind = "VideoTimestamp"
	SubcomponentQuizQuestion       SubcomponentKind = "QuizQuestion"
	SubcomponentQuizAnswer         SubcomponentKind = "QuizAnswer"
	SubcomponentImageAnnotation    SubcomponentKind = "ImageAnnotation"
)

var AllSubcomponentKinds = []SubcomponentKind{
	SubcomponentChecklistEntry,
	SubcomponentWorkflowStep,
	SubcomponentQuestionnaireEntry,
	SubcomponentVideoTimestamp,
	SubcomponentQuizQuestion,
	SubcomponentQuizAnswer,
	SubcomponentImageAnnotation,
}

func (k SubcomponentKind) Valid() bool {
	for _, known := range AllSubcomponentKinds {
		if k == known {
			return true
		}
	}
	return false
}

// ParseSubcomponentKind validates a caller-supplied kind string.
func ParseSubcomponentKind(raw string) (SubcomponentKind, bool) {
	k := SubcomponentKind(strings.TrimSpace(raw))
	return k, k.Valid()
}

// SubcomponentMaterialRelationship links one non-material child row to a
// supplementary material, with the same ordering discipline as the material
// edge table.
type SubcomponentMaterialRelationship struct {
	ID                uint             `gorm:"primaryKey" json:"id"`
	SubcomponentID    uint             `gorm:"column:subcomponent_id;not null;index:idx_subcomponent_relationship_tuple,unique,priority:1" json:"subcomponent_id"`
	SubcomponentType  SubcomponentKind `gorm:"column:subcomponent_type;not null;index:idx_subcomponent_relationship_tuple,unique,priority:2" json:"subcomponent_type"`
	RelatedMaterialID uint             `gorm:"column:related_material_id;not null;index:idx_subcomponent_relationship_tuple,unique,priority:3;index:idx_subcomponent_relationship_material" json:"related_material_id"`
	RelationshipType  string           `gorm:"column:relationship_type" json:"relationship_type,omitempty"`
	DisplayOrder      *int             `gorm:"column:display_order" json:"display_order,omitempty"`
	CreatedAt         time.Time        `gorm:"not null" json:"created_at"`
	UpdatedAt         time.Time        `gorm:"not null" json:"updated_at"`
}

func (SubcomponentMaterialRelationship) TableName() string {
	return "subcomponent_material_relationship"
}
