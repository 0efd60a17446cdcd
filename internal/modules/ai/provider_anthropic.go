package ai

import (
	"context"
	"fmt"
	"strings"

	anthropicclient "github.com/anthropics/anthropic-sdk-go"
	anthropicoption "github.com/anthropics/anthropic-sdk-go/option"

	"github.com/korozcolt/archive-master-app-sub004/internal/models"
)

type anthropicGateway struct {
	client anthropicclient.Client
	model  string
}

func newAnthropicGateway(apiKey, model string) *anthropicGateway {
	if model == "" {
		model = "claude-haiku-4-5-20251001"
	}
	client := anthropicclient.NewClient(
		anthropicoption.WithAPIKey(apiKey),
		anthropicoption.WithMaxRetries(0),
	)
	return &anthropicGateway{client: client, model: model}
}

func (g *anthropicGateway) Provider() models.AiProvider { return models.ProviderAnthropic }
func (g *anthropicGateway) Model() string               { return g.model }

func (g *anthropicGateway) Summarize(ctx context.Context, req SummarizeRequest) (*SummarizeResult, error) {
	msg, err := g.client.Messages.New(ctx, anthropicclient.MessageNewParams{
		Model:     anthropicclient.Model(g.model),
		MaxTokens: maxOutputTokens,
		System: []anthropicclient.TextBlockParam{
			{Text: summarizeSystemPrompt},
		},
		Messages: []anthropicclient.MessageParam{
			anthropicclient.NewUserMessage(anthropicclient.NewTextBlock(buildSummarizePrompt(req))),
		},
	})
	if err != nil {
		return nil, fmt.Errorf("anthropic: %w", err)
	}

	var text strings.Builder
	for _, block := range msg.Content {
		if block.Type == "text" {
			text.WriteString(block.Text)
		}
	}

	result, err := parseSummarizeResult(text.String())
	if err != nil {
		return nil, fmt.Errorf("anthropic: %w", err)
	}
	result.TokensIn = int(msg.Usage.InputTokens)
	result.TokensOut = int(msg.Usage.OutputTokens)
	return result, nil
}
