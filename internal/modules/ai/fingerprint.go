package ai

import (
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"

	"github.com/korozcolt/archive-master-app-sub004/internal/models"
)

// fingerprintInput is everything that can change a provider answer. Two
// runs with the same fingerprint and prompt version are interchangeable.
type fingerprintInput struct {
	Content       string            `json:"content"`
	Title         string            `json:"title"`
	Description   string            `json:"description"`
	Provider      models.AiProvider `json:"provider"`
	Model         string            `json:"model"`
	PromptVersion string            `json:"promptVersion"`
	RedactPII     bool              `json:"redactPII"`
}

// Fingerprint returns the hex SHA-256 over the canonical JSON encoding of
// the run input. Field order is fixed by the struct, so equal inputs always
// hash equal.
func Fingerprint(in fingerprintInput) string {
	raw, _ := json.Marshal(in)
	sum := sha256.Sum256(raw)
	return hex.EncodeToString(sum[:])
}
