package ai

import (
	"context"
	"errors"
	"fmt"

	openaiclient "github.com/openai/openai-go/v2"
	openaioption "github.com/openai/openai-go/v2/option"

	"github.com/korozcolt/archive-master-app-sub004/internal/models"
)

const maxOutputTokens = 1500

type openAIGateway struct {
	client openaiclient.Client
	model  string
}

func newOpenAIGateway(apiKey, model string) *openAIGateway {
	if model == "" {
		model = "gpt-4o-mini"
	}
	client := openaiclient.NewClient(
		openaioption.WithAPIKey(apiKey),
		openaioption.WithMaxRetries(0),
	)
	return &openAIGateway{client: client, model: model}
}

func (g *openAIGateway) Provider() models.AiProvider { return models.ProviderOpenAI }
func (g *openAIGateway) Model() string               { return g.model }

func (g *openAIGateway) Summarize(ctx context.Context, req SummarizeRequest) (*SummarizeResult, error) {
	resp, err := g.client.Chat.Completions.New(ctx, openaiclient.ChatCompletionNewParams{
		Model: openaiclient.ChatModel(g.model),
		Messages: []openaiclient.ChatCompletionMessageParamUnion{
			openaiclient.SystemMessage(summarizeSystemPrompt),
			openaiclient.UserMessage(buildSummarizePrompt(req)),
		},
		MaxTokens: openaiclient.Int(maxOutputTokens),
	})
	if err != nil {
		return nil, fmt.Errorf("openai: %w", err)
	}
	if len(resp.Choices) == 0 {
		return nil, errors.New("openai: empty response")
	}

	result, err := parseSummarizeResult(resp.Choices[0].Message.Content)
	if err != nil {
		return nil, fmt.Errorf("openai: %w", err)
	}
	result.TokensIn = int(resp.Usage.PromptTokens)
	result.TokensOut = int(resp.Usage.CompletionTokens)
	return result, nil
}
