package materials

import (
	"strings"
	"time"

	"gorm.io/gorm"
)

// MaterialType is the stored discriminator for the polymorphic material row.
type MaterialType string

const (
	MaterialTypeVideo         MaterialType = "Video"
	MaterialTypeImage         MaterialType = "Image"
	MaterialTypePDF           MaterialType = "PDF"
	MaterialTypeChecklist     MaterialType = "Checklist"
	MaterialTypeWorkflow      MaterialType = "Workflow"
	MaterialTypeQuestionnaire MaterialType = "Questionnaire"
	MaterialTypeQuiz          MaterialType = "Quiz"
	MaterialTypeChatbot       MaterialType = "Chatbot"
	MaterialTypeMQTTTemplate  MaterialType = "MQTT_Template"
	MaterialTypeUnity         MaterialType = "Unity"
	MaterialTypeAIAssistant   MaterialType = "AIAssistant"
	MaterialTypeDefault       MaterialType = "Default"
)

var AllMaterialTypes = []MaterialType{
	MaterialTypeVideo,
	MaterialTypeImage,
	MaterialTypePDF,
	MaterialTypeChecklist,
	MaterialTypeWorkflow,
	MaterialTypeQuestionnaire,
	MaterialTypeQuiz,
	MaterialTypeChatbot,
	MaterialTypeMQTTTemplate,
	MaterialTypeUnity,
	MaterialTypeAIAssistant,
	MaterialTypeDefault,
}

func (t MaterialType) Valid() bool {
	for _, known := range AllMaterialTypes {
		if t == known {
			return true
		}
	}
	return false
}

// CarriesAsset reports whether the variant stores a single AssetID.
func (t MaterialType) CarriesAsset() bool {
	switch t {
	case MaterialTypeVideo, MaterialTypeImage, MaterialTypePDF, MaterialTypeUnity, MaterialTypeDefault:
		return true
	default:
		return false
	}
}

// ParseMaterialType normalizes a caller-supplied type string.
func ParseMaterialType(raw string) (MaterialType, bool) {
	t := MaterialType(strings.TrimSpace(raw))
	if t.Valid() {
		return t, true
	}
	return MaterialTypeDefault, false
}

// Material is the single wide row holding every variant. Relationship and
// hierarchy queries resolve materials without joining per-variant tables,
// so the Type discriminator must always match the populated variant fields.
type Material struct {
	ID          uint         `gorm:"primaryKey" json:"id"`
	TenantID    string       `gorm:"column:tenant_id;index" json:"tenant_id"`
	Name        string       `gorm:"column:name;not null" json:"name"`
	Description string       `gorm:"column:description" json:"description"`
	Type        MaterialType `gorm:"column:type;not null;index" json:"type"`
	UniqueID    string       `gorm:"column:unique_id;index" json:"unique_id"`
	PreviewURL  string       `gorm:"column:preview_url" json:"preview_url"`

	// Single-asset variants (Video/Image/PDF/Unity/Default).
	AssetID *uint `gorm:"column:asset_id;index" json:"asset_id,omitempty"`

	// Chatbot variant.
	ChatbotConfig string `gorm:"column:chatbot_config" json:"chatbot_config,omitempty"`
	ChatbotModel  string `gorm:"column:chatbot_model" json:"chatbot_model,omitempty"`
	ChatbotPrompt string `gorm:"column:chatbot_prompt" json:"chatbot_prompt,omitempty"`

	// MQTT template variant.
	MessageType string `gorm:"column:message_type" json:"message_type,omitempty"`
	MessageText string `gorm:"column:message_text" json:"message_text,omitempty"`

	// Unity variant.
	UnityVersion string `gorm:"column:unity_version" json:"unity_version,omitempty"`
	BuildTarget  string `gorm:"column:build_target" json:"build_target,omitempty"`
	SceneName    string `gorm:"column:scene_name" json:"scene_name,omitempty"`

	CreatedAt time.Time      `gorm:"not null" json:"created_at"`
	UpdatedAt time.Time      `gorm:"not null" json:"updated_at"`
	DeletedAt gorm.DeletedAt `gorm:"index" json:"deleted_at,omitempty"`

	// Child collections, loaded per discriminator by GetComplete.
	ChecklistEntries     []*ChecklistEntry     `gorm:"-" json:"checklist_entries,omitempty"`
	WorkflowSteps        []*WorkflowStep       `gorm:"-" json:"workflow_steps,omitempty"`
	QuestionnaireEntries []*QuestionnaireEntry `gorm:"-" json:"questionnaire_entries,omitempty"`
	Timestamps           []*VideoTimestamp     `gorm:"-" json:"timestamps,omitempty"`
	QuizQuestions        []*QuizQuestion       `gorm:"-" json:"quiz_questions,omitempty"`
	Annotations          []*ImageAnnotation    `gorm:"-" json:"annotations,omitempty"`
}

func (Material) TableName() string { return "material" }

// Classify derives the discriminator from the populated variant payload and
// clears fields that do not belong to the derived variant. The caller's Type
// is used only as a hint when no variant payload disambiguates.
func Classify(m *Material) MaterialType {
	if m == nil {
		return MaterialTypeDefault
	}
	switch {
	case len(m.QuizQuestions) > 0:
		return MaterialTypeQuiz
	case len(m.ChecklistEntries) > 0:
		return MaterialTypeChecklist
	case len(m.WorkflowSteps) > 0:
		return MaterialTypeWorkflow
	case len(m.QuestionnaireEntries) > 0:
		return MaterialTypeQuestionnaire
	case len(m.Timestamps) > 0:
		return MaterialTypeVideo
	case len(m.Annotations) > 0:
		return MaterialTypeImage
	case m.ChatbotConfig != "" || m.ChatbotModel != "" || m.ChatbotPrompt != "":
		if m.Type == MaterialTypeAIAssistant {
			return MaterialTypeAIAssistant
		}
		return MaterialTypeChatbot
	case m.MessageType != "" || m.MessageText != "":
		return MaterialTypeMQTTTemplate
	case m.UnityVersion != "" || m.BuildTarget != "" || m.SceneName != "":
		return MaterialTypeUnity
	}
	if m.Type.Valid() {
		return m.Type
	}
	return MaterialTypeDefault
}

// Normalize assigns the derived discriminator and zeroes variant fields that
// do not match it. Returns the derived type.
func Normalize(m *Material) MaterialType {
	t := Classify(m)
	m.Type = t
	if t != MaterialTypeChecklist {
		m.ChecklistEntries = nil
	}
	if t != MaterialTypeWorkflow {
		m.WorkflowSteps = nil
	}
	if t != MaterialTypeQuestionnaire {
		m.QuestionnaireEntries = nil
	}
	if t != MaterialTypeVideo {
		m.Timestamps = nil
	}
	if t != MaterialTypeQuiz {
		m.QuizQuestions = nil
	}
	if t != MaterialTypeImage {
		m.Annotations = nil
	}
	if t != MaterialTypeChatbot && t != MaterialTypeAIAssistant {
		m.ChatbotConfig = ""
		m.ChatbotModel = ""
		m.ChatbotPrompt = ""
	}
	if t != MaterialTypeMQTTTemplate {
		m.MessageType = ""
		m.MessageText = ""
	}
	if t != MaterialTypeUnity {
		m.UnityVersion = ""
		m.BuildTarget = ""
		m.SceneName = ""
	}
	if !t.CarriesAsset() {
		m.AssetID = nil
	}
	return t
}
