package utils

import (
	"strings"

	"github.com/google/uuid"
)

// GenerateProcessID creates a human-readable, globally unique process id.
// Format: {kind}-{qualifier}-{8charHexUUID}, or {kind}-{8charHexUUID}
// when qualifier is empty.
//
// Examples:
//   - kind="worker", qualifier="normal" -> "worker-normal-a3f8e2b1"
//   - kind="runner", qualifier=""       -> "runner-5c01d9e4"
func GenerateProcessID(kind, qualifier string) string {
	kind = strings.ToLower(kind)
	if qualifier == "" {
		return kind + "-" + generateShortUUID()
	}
	return kind + "-" + strings.ToLower(qualifier) + "-" + generateShortUUID()
}

// NewEventID returns a full UUID used as the idempotence key of a
// production unit or replenishment tick
func NewEventID() string {
	return uuid.NewString()
}

// generateShortUUID creates an 8-character hex string from a UUID
func generateShortUUID() string {
	id := uuid.New()
	return strings.ReplaceAll(id.String(), "-", "")[:8]
}
