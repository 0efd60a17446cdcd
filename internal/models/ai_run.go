package models

// AiProvider identifies which AI backend a run is executed against.
type AiProvider string

const (
	ProviderNone       AiProvider = "none"
	ProviderOpenAI     AiProvider = "openai"
	ProviderAnthropic  AiProvider = "anthropic"
	ProviderGemini     AiProvider = "gemini"
	ProviderCompatible AiProvider = "openai-compatible"
	ProviderMock       AiProvider = "mock"
)

// AiTask is the kind of processing a run performs.
type AiTask string

const (
	TaskSummarize AiTask = "summarize"
	TaskExtract   AiTask = "extract"
	TaskClassify  AiTask = "classify"
	TaskEmbed     AiTask = "embed"
)

// Valid reports whether t is one of the known task kinds.
func (t AiTask) Valid() bool {
	switch t {
	case TaskSummarize, TaskExtract, TaskClassify, TaskEmbed:
		return true
	}
	return false
}

// AiRunStatus is the lifecycle state of a run.
// queued → running → {success | failed}; skipped is reachable only from queued.
type AiRunStatus string

const (
	RunQueued  AiRunStatus = "queued"
	RunRunning AiRunStatus = "running"
	RunSuccess AiRunStatus = "success"
	RunFailed  AiRunStatus = "failed"
	RunSkipped AiRunStatus = "skipped"
)

// Terminal reports whether the status can never change again.
func (s AiRunStatus) Terminal() bool {
	return s == RunSuccess || s == RunFailed || s == RunSkipped
}

// AiRunModel is one attempt to run an AI task against one document version.
// Rows are append-only: they are created queued and mutated only by the
// executor, never deleted.
type AiRunModel struct {
	Base
	TenantID          string      `json:"tenant_id"           gorm:"type:char(36);index;not null"`
	DocumentID        string      `json:"document_id"         gorm:"type:char(36);index;not null"`
	DocumentVersionID string      `json:"document_version_id" gorm:"type:char(36);index;not null"`
	TriggeredByID     *string     `json:"triggered_by_id,omitempty" gorm:"type:char(36)"`
	Provider          AiProvider  `json:"provider"            gorm:"type:varchar(32);default:'none'"`
	Model             string      `json:"model"               gorm:"type:varchar(128)"`
	Status            AiRunStatus `json:"status"              gorm:"type:varchar(16);index;default:'queued'"`
	Task              AiTask      `json:"task"                gorm:"type:varchar(16);index;default:'summarize'"`
	InputHash         *string     `json:"input_hash,omitempty" gorm:"type:char(64);index"`
	PromptVersion     string      `json:"prompt_version"      gorm:"type:varchar(64)"`
	TokensIn          *int        `json:"tokens_in,omitempty"`
	TokensOut         *int        `json:"tokens_out,omitempty"`
	CostCents         *int        `json:"cost_cents,omitempty"`
	SkipReason        string      `json:"skip_reason,omitempty"  gorm:"type:varchar(255)"`
	ErrorMessage      string      `json:"error_message,omitempty" gorm:"type:text"`
}

func (AiRunModel) TableName() string { return "ai_runs" }
