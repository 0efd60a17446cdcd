package ai

import (
	"fmt"
	"strings"
)

const maxPromptContentChars = 120_000

const summarizeSystemPrompt = `You are a document analysis assistant for an archive management system.
Given a document, respond with a single JSON object and nothing else, using exactly these keys:
{"summary": "concise markdown summary (2-4 paragraphs)",
 "bullets": ["3 to 7 key points"],
 "tags": ["2 to 8 short lowercase tags"],
 "entities": {"people": [], "organizations": [], "dates": [], "amounts": []},
 "confidence": {"summary": 0.0, "tags": 0.0}}
Confidence values are between 0 and 1. Do not wrap the JSON in markdown fences.`

// buildSummarizePrompt renders the user message for a summarize call.
// Oversized content is truncated from the tail so the title and lead
// paragraphs always survive.
func buildSummarizePrompt(req SummarizeRequest) string {
	content := req.Content
	if len(content) > maxPromptContentChars {
		content = content[:maxPromptContentChars]
	}

	var b strings.Builder
	if req.Title != "" {
		fmt.Fprintf(&b, "Title: %s\n", req.Title)
	}
	if req.Description != "" {
		fmt.Fprintf(&b, "Description: %s\n", req.Description)
	}
	b.WriteString("\nDocument:\n")
	b.WriteString(content)
	return b.String()
}
