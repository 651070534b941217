package storage

import (
	"fmt"
	"path/filepath"
	"strings"
	"time"
)

// AvatarPath returns the canonical object key for a user's avatar.
// One avatar per user: re-uploading overwrites the previous object
// under the same key family, and the old extension's object is
// deleted by the caller when the extension changes.
func AvatarPath(userID, ext string) string {
	return fmt.Sprintf("avatars/%s/avatar%s", userID, normalizeExt(ext))
}

// MessageFilePath returns a unique object key for a message attachment.
func MessageFilePath(userID, filename string, now time.Time) string {
	return fmt.Sprintf("message-files/%s-%d%s", userID, now.Unix(), normalizeExt(filepath.Ext(filename)))
}

func normalizeExt(ext string) string {
	ext = strings.ToLower(ext)
	if ext != "" && !strings.HasPrefix(ext, ".") {
		ext = "." + ext
	}
	return ext
}
