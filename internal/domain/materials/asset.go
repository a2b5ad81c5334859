package materials

import (
	"time"

	"gorm.io/gorm"
)

// Asset is an uploaded file backing asset-carrying material variants. JobID
// links the asset to its document-AI processing job while AiAvailable flips
// on once the provider reports completion.
type Asset struct {
	ID          uint           `gorm:"primaryKey" json:"id"`
	TenantID    string         `gorm:"column:tenant_id;index" json:"tenant_id"`
	Filename    string         `gorm:"column:filename;not null" json:"filename"`
	BucketKey   string         `gorm:"column:bucket_key;not null" json:"bucket_key"`
	URL         string         `gorm:"column:url" json:"url"`
	ContentType string         `gorm:"column:content_type" json:"content_type"`
	SizeBytes   int64          `gorm:"column:size_bytes" json:"size_bytes"`
	AiAvailable bool           `gorm:"column:ai_available;not null;default:false" json:"ai_available"`
	JobID       string         `gorm:"column:job_id;index" json:"job_id"`
	CreatedAt   time.Time      `gorm:"not null" json:"created_at"`
	UpdatedAt   time.Time      `gorm:"not null" json:"updated_at"`
	DeletedAt   gorm.DeletedAt `gorm:"index" json:"deleted_at,omitempty"`
}

func (Asset) TableName() string { return "asset" }
