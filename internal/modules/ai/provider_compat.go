package ai

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	neturl "net/url"
	"strings"

	"github.com/korozcolt/archive-master-app-sub004/internal/models"
)

// compatGateway speaks the plain chat-completions wire format for
// self-hosted and proxy endpoints that imitate it. It uses raw HTTP on
// purpose: these servers drift from the official SDK's strictness.
type compatGateway struct {
	httpClient *http.Client
	apiKey     string
	endpoint   string
	model      string
}

func newCompatGateway(apiKey, endpoint, model string) *compatGateway {
	if model == "" {
		model = "gpt-4o-mini"
	}
	return &compatGateway{
		httpClient: &http.Client{},
		apiKey:     apiKey,
		endpoint:   normalizeCompatEndpoint(endpoint),
		model:      model,
	}
}

func (g *compatGateway) Provider() models.AiProvider { return models.ProviderCompatible }
func (g *compatGateway) Model() string               { return g.model }

func (g *compatGateway) Summarize(ctx context.Context, req SummarizeRequest) (*SummarizeResult, error) {
	body, _ := json.Marshal(map[string]interface{}{
		"model": g.model,
		"messages": []map[string]string{
			{"role": "system", "content": summarizeSystemPrompt},
			{"role": "user", "content": buildSummarizePrompt(req)},
		},
		"max_tokens": maxOutputTokens,
	})

	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, g.endpoint+"/chat/completions", bytes.NewReader(body))
	if err != nil {
		return nil, err
	}
	httpReq.Header.Set("Authorization", "Bearer "+g.apiKey)
	httpReq.Header.Set("Content-Type", "application/json")

	resp, err := g.httpClient.Do(httpReq)
	if err != nil {
		return nil, fmt.Errorf("openai-compatible: %w", err)
	}
	defer resp.Body.Close()

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("openai-compatible: read response: %w", err)
	}
	if resp.StatusCode >= http.StatusBadRequest {
		return nil, fmt.Errorf("openai-compatible: status %d: %s", resp.StatusCode, strings.TrimSpace(string(respBody)))
	}

	var decoded struct {
		Choices []struct {
			Message struct {
				Content string `json:"content"`
			} `json:"message"`
		} `json:"choices"`
		Usage struct {
			PromptTokens     int `json:"prompt_tokens"`
			CompletionTokens int `json:"completion_tokens"`
		} `json:"usage"`
		Error *struct {
			Message string `json:"message"`
		} `json:"error"`
	}
	if err := json.Unmarshal(respBody, &decoded); err != nil {
		return nil, fmt.Errorf("openai-compatible: decode response: %w", err)
	}
	if decoded.Error != nil && strings.TrimSpace(decoded.Error.Message) != "" {
		return nil, fmt.Errorf("openai-compatible: %s", decoded.Error.Message)
	}
	if len(decoded.Choices) == 0 {
		return nil, errors.New("openai-compatible: empty response")
	}

	result, err := parseSummarizeResult(decoded.Choices[0].Message.Content)
	if err != nil {
		return nil, fmt.Errorf("openai-compatible: %w", err)
	}
	result.TokensIn = decoded.Usage.PromptTokens
	result.TokensOut = decoded.Usage.CompletionTokens
	return result, nil
}

// normalizeCompatEndpoint accepts bare hosts, hosts with a trailing slash,
// and hosts that already include the /v1 prefix.
func normalizeCompatEndpoint(raw string) string {
	base := strings.TrimRight(strings.TrimSpace(raw), "/")
	if base == "" {
		return base
	}
	parsed, err := neturl.Parse(base)
	if err != nil || parsed.Scheme == "" || parsed.Host == "" {
		return base
	}
	if strings.HasSuffix(strings.TrimRight(parsed.Path, "/"), "/v1") {
		return base
	}
	return base + "/v1"
}
