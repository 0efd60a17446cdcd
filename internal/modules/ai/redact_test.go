package ai

import (
	"strings"
	"testing"
)

func TestRedactPII(t *testing.T) {
	in := "Reach Bob at bob.smith+hr@corp.example.org or +1 (555) 123-4567 before Friday."
	out := redactPII(in)

	if strings.Contains(out, "bob.smith") || strings.Contains(out, "example.org") {
		t.Fatalf("email survived redaction: %q", out)
	}
	if strings.Contains(out, "555") {
		t.Fatalf("phone survived redaction: %q", out)
	}
	if !strings.Contains(out, "[EMAIL]") || !strings.Contains(out, "[PHONE]") {
		t.Fatalf("placeholders missing: %q", out)
	}
	if !strings.Contains(out, "before Friday") {
		t.Fatalf("surrounding text damaged: %q", out)
	}
}

func TestRedactPIILeavesCleanTextAlone(t *testing.T) {
	in := "The quarterly report shows steady growth in chapter 4."
	if out := redactPII(in); out != in {
		t.Fatalf("clean text changed: %q", out)
	}
}
