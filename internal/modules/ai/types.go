package ai

import "github.com/korozcolt/archive-master-app-sub004/internal/models"

// SummarizeRequest carries everything a gateway needs for one call.
type SummarizeRequest struct {
	Content       string
	Title         string
	Description   string
	PromptVersion string
	RedactPII     bool
}

// SummarizeResult is a provider's structured output plus usage accounting.
type SummarizeResult struct {
	SummaryMarkdown string
	Bullets         []string
	SuggestedTags   []string
	Entities        map[string]interface{}
	Confidence      map[string]float64
	TokensIn        int
	TokensOut       int
	CostCents       int
}

// Outcome classifies an admission decision.
type Outcome int

const (
	OutcomeAdmitted Outcome = iota
	OutcomeSkipped
	OutcomeFatal
)

// Decision is the result of evaluating the admission gates. Skipping is an
// expected, frequent outcome, not an error.
type Decision struct {
	Outcome Outcome
	Reason  string
}

func Admitted() Decision             { return Decision{Outcome: OutcomeAdmitted} }
func Skipped(reason string) Decision { return Decision{Outcome: OutcomeSkipped, Reason: reason} }
func Fatal(reason string) Decision   { return Decision{Outcome: OutcomeFatal, Reason: reason} }

// Skip reasons surfaced to operators on run records.
const (
	ReasonDisabled      = "AI disabled for tenant"
	ReasonBreakerOpen   = "circuit breaker open"
	ReasonDailyLimit    = "daily limit reached"
	ReasonMonthlyBudget = "monthly budget reached"
	ReasonPageLimit     = "document exceeds page limit"
	ReasonReused        = "result reused from cache"
)

type createRunDTO struct {
	DocumentVersionID string        `json:"document_version_id" binding:"required"`
	Task              models.AiTask `json:"task"`
}

type testProviderDTO struct {
	SampleText string `json:"sample_text"`
}
