package ai

import "regexp"

var (
	emailPattern = regexp.MustCompile(`[A-Za-z0-9._%+\-]+@[A-Za-z0-9.\-]+\.[A-Za-z]{2,}`)
	phonePattern = regexp.MustCompile(`\+?\d[\d\s().\-]{7,}\d`)
)

// redactPII masks email addresses and phone-like digit runs before text
// leaves the process. Masking happens before fingerprinting, so toggling
// redaction changes the input hash and never reuses an unredacted result.
func redactPII(s string) string {
	s = emailPattern.ReplaceAllString(s, "[EMAIL]")
	s = phonePattern.ReplaceAllString(s, "[PHONE]")
	return s
}
