package ai

import (
	"errors"
	"strings"
	"testing"
)

const wellFormedAnswer = `{
  "summary": "A short **markdown** summary.",
  "bullets": ["point one", "point two"],
  "tags": ["finance", "q2"],
  "entities": {"people": ["Alice"]},
  "confidence": {"summary": 0.9, "tags": 0.7}
}`

func TestParseSummarizeResult(t *testing.T) {
	result, err := parseSummarizeResult(wellFormedAnswer)
	if err != nil {
		t.Fatal(err)
	}
	if result.SummaryMarkdown != "A short **markdown** summary." {
		t.Fatalf("summary = %q", result.SummaryMarkdown)
	}
	if len(result.Bullets) != 2 || len(result.SuggestedTags) != 2 {
		t.Fatalf("bullets/tags not decoded: %+v", result)
	}
	if result.Confidence["summary"] != 0.9 {
		t.Fatalf("confidence = %v", result.Confidence)
	}
}

func TestParseSummarizeResultStripsFences(t *testing.T) {
	fenced := "```json\n" + wellFormedAnswer + "\n```"
	result, err := parseSummarizeResult(fenced)
	if err != nil {
		t.Fatal(err)
	}
	if result.SummaryMarkdown == "" {
		t.Fatal("fenced answer not decoded")
	}
}

func TestParseSummarizeResultRejectsGarbage(t *testing.T) {
	if _, err := parseSummarizeResult("I could not process that document."); err == nil {
		t.Fatal("prose answer must be rejected")
	}
	if _, err := parseSummarizeResult(`{"bullets": []}`); err == nil {
		t.Fatal("answer without summary must be rejected")
	}
}

func TestTruncateError(t *testing.T) {
	long := errors.New(strings.Repeat("x", 5000))
	if got := truncateError(long); len(got) != maxErrorMessageChars {
		t.Fatalf("truncated length = %d, want %d", len(got), maxErrorMessageChars)
	}
	short := errors.New("timeout")
	if got := truncateError(short); got != "timeout" {
		t.Fatalf("short message altered: %q", got)
	}
}
