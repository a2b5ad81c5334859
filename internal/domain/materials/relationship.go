package materials

import (
	"strconv"
	"time"
)

// RelatedEntityKind tags the "to" side of a relationship edge.
type RelatedEntityKind string

const (
	RelatedEntityMaterial        RelatedEntityKind = "Material"
	RelatedEntityLearningPath    RelatedEntityKind = "LearningPath"
	RelatedEntityTrainingProgram RelatedEntityKind = "TrainingProgram"
)

func (k RelatedEntityKind) Valid() bool {
	switch k {
	case RelatedEntityMaterial, RelatedEntityLearningPath, RelatedEntityTrainingProgram:
		return true
	default:
		return false
	}
}

// Relationship type defaults used by the convenience operations. The column
// itself stays free text for caller-supplied types.
const (
	RelationshipContains     = "contains"
	RelationshipAssigned     = "assigned"
	RelationshipPrerequisite = "prerequisite"
)

// MaterialRelationship is a directed, typed, optionally ordered edge from a
// material to another material, a learning path, or a training program.
// RelatedEntityID stores the target's integer id as text. Duplicate tuples
// are rejected semantically before insert; the unique index backs that check
// up against check-then-insert races.
type MaterialRelationship struct {
	ID                uint              `gorm:"primaryKey" json:"id"`
	MaterialID        uint              `gorm:"column:material_id;not null;index:idx_material_relationship_tuple,unique,priority:1" json:"material_id"`
	RelatedEntityType RelatedEntityKind `gorm:"column:related_entity_type;not null;index:idx_material_relationship_tuple,unique,priority:2" json:"related_entity_type"`
	RelatedEntityID   string            `gorm:"column:related_entity_id;not null;index:idx_material_relationship_tuple,unique,priority:3;index:idx_material_relationship_related" json:"related_entity_id"`
	RelationshipType  string            `gorm:"column:relationship_type;index:idx_material_relationship_tuple,unique,priority:4" json:"relationship_type"`
	DisplayOrder      *int              `gorm:"column:display_order" json:"display_order,omitempty"`
	CreatedAt         time.Time         `gorm:"not null" json:"created_at"`
	UpdatedAt         time.Time         `gorm:"not null" json:"updated_at"`
}

func (MaterialRelationship) TableName() string { return "material_relationship" }

// RelatedMaterialID parses the target id for Material-typed edges.
func (r *MaterialRelationship) RelatedMaterialID() (uint, bool) {
	if r == nil || r.RelatedEntityType != RelatedEntityMaterial {
		return 0, false
	}
	id, err := ParseEntityID(r.RelatedEntityID)
	if err != nil {
		return 0, false
	}
	return id, true
}

// FormatEntityID renders an integer id the way the edge table stores it.
func FormatEntityID(id uint) string {
	return strconv.FormatUint(uint64(id), 10)
}

func ParseEntityID(raw string) (uint, error) {
	id, err := strconv.ParseUint(raw, 10, 64)
	if err != nil {
		return 0, err
	}
	return uint(id), nil
}
