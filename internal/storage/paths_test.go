package storage

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestAvatarPath(t *testing.T) {
	t.Parallel()

	assert.Equal(t, "avatars/user-1/avatar.png", AvatarPath("user-1", ".png"))
	assert.Equal(t, "avatars/user-1/avatar.jpg", AvatarPath("user-1", "JPG"))

	// same user, same extension: same key, upload overwrites
	assert.Equal(t, AvatarPath("user-1", ".png"), AvatarPath("user-1", "png"))
}

func TestMessageFilePath(t *testing.T) {
	t.Parallel()

	at := time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)
	assert.Equal(t,
		"message-files/user-1-1748779200.pdf",
		MessageFilePath("user-1", "contract.PDF", at),
	)
	assert.Equal(t,
		"message-files/user-1-1748779200",
		MessageFilePath("user-1", "noextension", at),
	)
}
