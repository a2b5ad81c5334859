package materials

import (
	"time"
)

// Child collections owned by one material variant each. Rows are keyed back
// to the owning material and ordered by Index.

type ChecklistEntry struct {
	ID         uint      `gorm:"primaryKey" json:"id"`
	MaterialID uint      `gorm:"column:material_id;not null;index" json:"material_id"`
	Text       string    `gorm:"column:text;not null" json:"text"`
	Index      int       `gorm:"column:index;not null" json:"index"`
	CreatedAt  time.Time `gorm:"not null" json:"created_at"`
	UpdatedAt  time.Time `gorm:"not null" json:"updated_at"`
}

func (ChecklistEntry) TableName() string { return "checklist_entry" }

type WorkflowStep struct {
	ID          uint      `gorm:"primaryKey" json:"id"`
	MaterialID  uint      `gorm:"column:material_id;not null;index" json:"material_id"`
	Name        string    `gorm:"column:name;not null" json:"name"`
	Description string    `gorm:"column:description" json:"description"`
	Index       int       `gorm:"column:index;not null" json:"index"`
	CreatedAt   time.Time `gorm:"not null" json:"created_at"`
	UpdatedAt   time.Time `gorm:"not null" json:"updated_at"`
}

func (WorkflowStep) TableName() string { return "workflow_step" }

type QuestionnaireEntry struct {
	ID         uint      `gorm:"primaryKey" json:"id"`
	MaterialID uint      `gorm:"column:material_id;not null;index" json:"material_id"`
	Question   string    `gorm:"column:question;not null" json:"question"`
	Index      int       `gorm:"column:index;not null" json:"index"`
	CreatedAt  time.Time `gorm:"not null" json:"created_at"`
	UpdatedAt  time.Time `gorm:"not null" json:"updated_at"`
}

func (QuestionnaireEntry) TableName() string { return "questionnaire_entry" }

type VideoTimestamp struct {
	ID         uint      `gorm:"primaryKey" json:"id"`
	MaterialID uint      `gorm:"column:material_id;not null;index" json:"material_id"`
	Seconds    int       `gorm:"column:seconds;not null" json:"seconds"`
	Title      string    `gorm:"column:title" json:"title"`
	Index      int       `gorm:"column:index;not null" json:"index"`
	CreatedAt  time.Time `gorm:"not null" json:"created_at"`
	UpdatedAt  time.Time `gorm:"not null" json:"updated_at"`
}

func (VideoTimestamp) TableName() string { return "video_timestamp" }

type QuizQuestion struct {
	ID         uint      `gorm:"primaryKey" json:"id"`
	MaterialID uint      `gorm:"column:material_id;not null;index" json:"material_id"`
	Text       string    `gorm:"column:text;not null" json:"text"`
	Index      int       `gorm:"column:index;not null" json:"index"`
	CreatedAt  time.Time `gorm:"not null" json:"created_at"`
	UpdatedAt  time.Time `gorm:"not null" json:"updated_at"`

	// Inserted after the question row so each answer can carry the
	// generated question id.
	Answers []*QuizAnswer `gorm:"-" json:"answers,omitempty"`
}

func (QuizQuestion) TableName() string { return "quiz_question" }

type QuizAnswer struct {
	ID         uint      `gorm:"primaryKey" json:"id"`
	QuestionID uint      `gorm:"column:question_id;not null;index" json:"question_id"`
	Text       string    `gorm:"column:text;not null" json:"text"`
	Correct    bool      `gorm:"column:correct;not null" json:"correct"`
	Index      int       `gorm:"column:index;not null" json:"index"`
	CreatedAt  time.Time `gorm:"not null" json:"created_at"`
	UpdatedAt  time.Time `gorm:"not null" json:"updated_at"`
}

func (QuizAnswer) TableName() string { return "quiz_answer" }

type ImageAnnotation struct {
	ID         uint      `gorm:"primaryKey" json:"id"`
	MaterialID uint      `gorm:"column:material_id;not null;index" json:"material_id"`
	X          float64   `gorm:"column:x;not null" json:"x"`
	Y          float64   `gorm:"column:y;not null" json:"y"`
	Label      string    `gorm:"column:label" json:"label"`
	Index      int       `gorm:"column:index;not null" json:"index"`
	CreatedAt  time.Time `gorm:"not null" json:"created_at"`
	UpdatedAt  time.Time `gorm:"not null" json:"updated_at"`
}

func (ImageAnnotation) TableName() string { return "image_annotation" }
