package training

import (
	"time"

	"gorm.io/gorm"
)

type TrainingProgram struct {
	ID          uint           `gorm:"primaryKey" json:"id"`
	TenantID    string         `gorm:"column:tenant_id;index" json:"tenant_id"`
	Name        string         `gorm:"column:name;not null" json:"name"`
	Description string         `gorm:"column:description" json:"description"`
	Active      bool           `gorm:"column:active;not null;default:true" json:"active"`
	CreatedAt   time.Time      `gorm:"not null" json:"created_at"`
	UpdatedAt   time.Time      `gorm:"not null" json:"updated_at"`
	DeletedAt   gorm.DeletedAt `gorm:"index" json:"deleted_at,omitempty"`
}

func (TrainingProgram) TableName() string { return "training_program" }
