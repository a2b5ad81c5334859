package training

import (
	"time"

	"gorm.io/gorm"
)

// LearningPath is an ordered container of materials; the ordering itself
// lives on the relationship edges, not here.
type LearningPath struct {
	ID          uint           `gorm:"primaryKey" json:"id"`
	TenantID    string         `gorm:"column:tenant_id;index" json:"tenant_id"`
	Name        string         `gorm:"column:name;not null" json:"name"`
	Description string         `gorm:"column:description" json:"description"`
	CreatedAt   time.Time      `gorm:"not null" json:"created_at"`
	UpdatedAt   time.Time      `gorm:"not null" json:"updated_at"`
	DeletedAt   gorm.DeletedAt `gorm:"index" json:"deleted_at,omitempty"`
}

func (LearningPath) TableName() string { return "learning_path" }
