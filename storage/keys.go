package storage

import (
	"fmt"
	"path/filepath"
	"strings"
	"time"

	"github.com/google/uuid"

	"reelsmith/config"
)

// ValidateUpload rejects filenames with disallowed extensions and oversized payloads.
func ValidateUpload(filename string, size int64) error {
	ext := strings.ToLower(filepath.Ext(filename))
	if ext == "" {
		return fmt.Errorf("filename %q has no extension", filename)
	}
	if !config.AllowedExtension(ext) {
		return fmt.Errorf("file type %s is not allowed", ext)
	}
	if size > config.MaxFileSize {
		return fmt.Errorf("file size %d exceeds limit of %d bytes", size, config.MaxFileSize)
	}
	return nil
}

// ObjectKey builds a unique object key for an upload. Keys are scoped under
// user_<id>/ when userID is set, otherwise under public/. The original stem
// is kept for readability; a timestamp and short uuid make the key unique.
func ObjectKey(userID int64, filename string) string {
	ext := strings.ToLower(filepath.Ext(filename))
	stem := sanitizeStem(strings.TrimSuffix(filepath.Base(filename), filepath.Ext(filename)))

	prefix := "public"
	if userID > 0 {
		prefix = fmt.Sprintf("user_%d", userID)
	}
	stamp := time.Now().UTC().Format("20060102150405")
	short := uuid.NewString()[:8]
	return fmt.Sprintf("%s/%s_%s_%s%s", prefix, stamp, stem, short, ext)
}

// sanitizeStem keeps keys URL- and shell-safe: alphanumerics, dash, underscore.
func sanitizeStem(stem string) string {
	var b strings.Builder
	for _, r := range stem {
		switch {
		case r >= 'a' && r <= 'z', r >= 'A' && r <= 'Z', r >= '0' && r <= '9', r == '-', r == '_':
			b.WriteRune(r)
		default:
			b.WriteRune('_')
		}
	}
	out := b.String()
	if out == "" {
		out = "file"
	}
	if len(out) > 60 {
		out = out[:60]
	}
	return out
}
