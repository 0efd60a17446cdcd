package ai

import (
	"context"
	"fmt"
	"strings"

	"github.com/korozcolt/archive-master-app-sub004/internal/models"
)

// MockGateway returns deterministic output derived from the input without
// any network call. It backs mock mode and the provider smoke-test route.
type MockGateway struct {
	model string
}

func NewMockGateway(model string) *MockGateway {
	if model == "" {
		model = "mock-model"
	}
	return &MockGateway{model: model}
}

func (g *MockGateway) Provider() models.AiProvider { return models.ProviderMock }
func (g *MockGateway) Model() string               { return g.model }

func (g *MockGateway) Summarize(_ context.Context, req SummarizeRequest) (*SummarizeResult, error) {
	lead := req.Content
	if len(lead) > 200 {
		lead = lead[:200]
	}
	title := req.Title
	if title == "" {
		title = "Untitled document"
	}
	words := len(strings.Fields(req.Content))
	return &SummarizeResult{
		SummaryMarkdown: fmt.Sprintf("**%s**\n\n%s", title, strings.TrimSpace(lead)),
		Bullets:         []string{fmt.Sprintf("Document contains %d words", words)},
		SuggestedTags:   []string{"mock"},
		Entities:        map[string]interface{}{},
		Confidence:      map[string]float64{"summary": 1, "tags": 1},
		TokensIn:        words,
		TokensOut:       words / 10,
	}, nil
}
