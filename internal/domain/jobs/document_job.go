package jobs

import (
	"time"

	"gorm.io/datatypes"
)

// Document job lifecycle as reported by the AI providers and reconciled by
// the status poller.
const (
	DocumentJobStatusSubmitted  = "submitted"
	DocumentJobStatusProcessing = "processing"
	DocumentJobStatusCompleted  = "completed"
	DocumentJobStatusFailed     = "failed"
)

// DocumentJob tracks one asynchronous document-processing submission.
// ProviderJobID is the provider's handle; Payload and Result keep the raw
// request/response bodies for diagnosis.
type DocumentJob struct {
	ID            uint           `gorm:"primaryKey" json:"id"`
	TenantID      string         `gorm:"column:tenant_id;index" json:"tenant_id"`
	Provider      string         `gorm:"column:provider;not null;index" json:"provider"`
	ProviderJobID string         `gorm:"column:provider_job_id;not null;index" json:"provider_job_id"`
	AssetID       uint           `gorm:"column:asset_id;not null;index" json:"asset_id"`
	MaterialID    uint           `gorm:"column:material_id;index" json:"material_id"`
	Status        string         `gorm:"column:status;not null;index" json:"status"`
	Error         string         `gorm:"column:error" json:"error,omitempty"`
	Attempts      int            `gorm:"column:attempts;not null;default:0" json:"attempts"`
	Payload       datatypes.JSON `gorm:"column:payload;type:jsonb" json:"payload,omitempty"`
	Result        datatypes.JSON `gorm:"column:result;type:jsonb" json:"result,omitempty"`
	LastPolledAt  *time.Time     `gorm:"column:last_polled_at" json:"last_polled_at,omitempty"`
	CreatedAt     time.Time      `gorm:"not null" json:"created_at"`
	UpdatedAt     time.Time      `gorm:"not null" json:"updated_at"`
}

func (DocumentJob) TableName() string { return "document_job" }

// Terminal reports whether the poller should stop polling this job.
func (j *DocumentJob) Terminal() bool {
	return j != nil && (j.Status == DocumentJobStatusCompleted || j.Status == DocumentJobStatusFailed)
}
