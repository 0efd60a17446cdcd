package models

// AiOutputModel is the structured result of one successful run, upserted
// keyed by run id. It is written only when the tenant allows output storage.
type AiOutputModel struct {
	Base
	RunID                 string      `json:"run_id"   gorm:"type:char(36);uniqueIndex;not null"`
	TenantID              string      `json:"tenant_id" gorm:"type:char(36);index;not null"`
	SummaryMarkdown       string      `json:"summary_markdown" gorm:"type:text"`
	Bullets               StringArray `json:"bullets"          gorm:"type:longtext;serializer:json"`
	SuggestedTags         StringArray `json:"suggested_tags"   gorm:"type:longtext;serializer:json"`
	SuggestedCategoryID   *string     `json:"suggested_category_id,omitempty"   gorm:"type:char(36)"`
	SuggestedDepartmentID *string     `json:"suggested_department_id,omitempty" gorm:"type:char(36)"`
	Entities              JSONMap     `json:"entities"   gorm:"type:longtext;serializer:json"`
	Confidence            ScoreMap    `json:"confidence" gorm:"type:longtext;serializer:json"`
}

func (AiOutputModel) TableName() string { return "ai_outputs" }
