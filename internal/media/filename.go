package media

import (
	"crypto/rand"
	"encoding/hex"
	"fmt"
	"path/filepath"
	"strings"
	"time"
)

// generateFilename produces the stored object name:
//
//	{unix-millis}_{16 hex chars}{original extension}
//
// Names are random, never content-derived: uploading the same bytes twice
// yields two distinct objects.
func generateFilename(originalName string, now time.Time) (string, error) {
	suffix := make([]byte, 8)
	if _, err := rand.Read(suffix); err != nil {
		return "", fmt.Errorf("generating filename entropy: %w", err)
	}

	ext := strings.ToLower(filepath.Ext(originalName))
	return fmt.Sprintf("%d_%s%s", now.UnixMilli(), hex.EncodeToString(suffix), ext), nil
}
