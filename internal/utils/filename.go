package utils

import (
	"crypto/rand"
	"encoding/hex"
	"fmt"
	"path/filepath"
	"time"
)

// GenerateStoredName builds a collision-resistant storage filename from the
// current time and a random suffix, preserving the original extension. The
// original name survives only as display metadata on the document record.
func GenerateStoredName(originalName string) (string, error) {
	bytes := make([]byte, 6)
	if _, err := rand.Read(bytes); err != nil {
		return "", fmt.Errorf("failed to generate random bytes: %w", err)
	}

	ext := filepath.Ext(originalName)
	return fmt.Sprintf("%d-%s%s", time.Now().UnixNano(), hex.EncodeToString(bytes), ext), nil
}
