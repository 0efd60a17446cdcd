package ai

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"cloud.google.com/go/vertexai/genai"

	"github.com/korozcolt/archive-master-app-sub004/internal/models"
)

type geminiGateway struct {
	model     *genai.GenerativeModel
	modelName string
}

// newGeminiGateway authenticates through Vertex AI application-default
// credentials, so no tenant credential is involved.
func newGeminiGateway(ctx context.Context, projectID, region, model string) (*geminiGateway, error) {
	if projectID == "" || region == "" {
		return nil, errors.New("gemini: project and region are required")
	}
	if model == "" {
		model = "gemini-1.5-pro"
	}
	client, err := genai.NewClient(ctx, projectID, region)
	if err != nil {
		return nil, fmt.Errorf("gemini: new client: %w", err)
	}
	gm := client.GenerativeModel(model)
	gm.SystemInstruction = &genai.Content{
		Parts: []genai.Part{genai.Text(summarizeSystemPrompt)},
	}
	return &geminiGateway{model: gm, modelName: model}, nil
}

func (g *geminiGateway) Provider() models.AiProvider { return models.ProviderGemini }
func (g *geminiGateway) Model() string               { return g.modelName }

func (g *geminiGateway) Summarize(ctx context.Context, req SummarizeRequest) (*SummarizeResult, error) {
	resp, err := g.model.GenerateContent(ctx, genai.Text(buildSummarizePrompt(req)))
	if err != nil {
		return nil, fmt.Errorf("gemini: %w", err)
	}
	if len(resp.Candidates) == 0 || resp.Candidates[0].Content == nil {
		return nil, errors.New("gemini: empty response")
	}

	var text strings.Builder
	for _, part := range resp.Candidates[0].Content.Parts {
		if txt, ok := part.(genai.Text); ok {
			text.WriteString(string(txt))
		}
	}

	result, err := parseSummarizeResult(text.String())
	if err != nil {
		return nil, fmt.Errorf("gemini: %w", err)
	}
	if resp.UsageMetadata != nil {
		result.TokensIn = int(resp.UsageMetadata.PromptTokenCount)
		result.TokensOut = int(resp.UsageMetadata.CandidatesTokenCount)
	}
	return result, nil
}
