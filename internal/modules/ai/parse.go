package ai

import (
	"encoding/json"
	"fmt"
	"strings"
)

const maxErrorMessageChars = 2000

// summarizePayload mirrors the JSON object the prompts instruct every
// provider to return.
type summarizePayload struct {
	Summary    string                 `json:"summary"`
	Bullets    []string               `json:"bullets"`
	Tags       []string               `json:"tags"`
	Entities   map[string]interface{} `json:"entities"`
	Confidence map[string]float64     `json:"confidence"`
}

// parseSummarizeResult decodes a provider's text answer into a result.
// Models occasionally ignore the fencing instruction, so leading and
// trailing code fences are stripped before decoding.
func parseSummarizeResult(raw string) (*SummarizeResult, error) {
	cleaned := stripFences(strings.TrimSpace(raw))
	var payload summarizePayload
	if err := json.Unmarshal([]byte(cleaned), &payload); err != nil {
		return nil, fmt.Errorf("decode provider answer: %w", err)
	}
	if payload.Summary == "" {
		return nil, fmt.Errorf("provider answer has no summary")
	}
	return &SummarizeResult{
		SummaryMarkdown: payload.Summary,
		Bullets:         payload.Bullets,
		SuggestedTags:   payload.Tags,
		Entities:        payload.Entities,
		Confidence:      payload.Confidence,
	}, nil
}

func stripFences(s string) string {
	if !strings.HasPrefix(s, "```") {
		return s
	}
	s = strings.TrimPrefix(s, "```json")
	s = strings.TrimPrefix(s, "```")
	s = strings.TrimSuffix(strings.TrimSpace(s), "```")
	return strings.TrimSpace(s)
}

// truncateError bounds provider error text before it lands in a varchar
// column or a log line.
func truncateError(err error) string {
	msg := err.Error()
	if len(msg) > maxErrorMessageChars {
		msg = msg[:maxErrorMessageChars]
	}
	return msg
}
