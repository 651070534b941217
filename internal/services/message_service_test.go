package services

import (
	"context"
	"io"
	"strings"
	"testing"

	"collabhub_backend/internal/models"
	"collabhub_backend/internal/repositories"
	"collabhub_backend/internal/services/dto"
	"collabhub_backend/internal/storage"
	"collabhub_backend/pkg/apperrors"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// ---- Fakes -----------------------------------------------------------

// Fakes embed the repository interface so only the methods a test
// exercises need an implementation; anything else panics loudly.

type fakeProfileRepo struct {
	repositories.ProfileRepository
	profiles map[string]*models.Profile
}

func newFakeProfileRepo(profiles ...*models.Profile) *fakeProfileRepo {
	f := &fakeProfileRepo{profiles: make(map[string]*models.Profile)}
	for _, p := range profiles {
		f.profiles[p.UserID] = p
	}
	return f
}

func (f *fakeProfileRepo) FindByUserID(userID string) (*models.Profile, error) {
	if p, ok := f.profiles[userID]; ok {
		return p, nil
	}
	return nil, repositories.ErrProfileNotFound
}

type fakeMessageRepo struct {
	repositories.MessageRepository
	messages   []models.Message
	markedRead [][2]string // (userID, partnerID) pairs
}

func (f *fakeMessageRepo) Create(message *models.Message) error {
	f.messages = append(f.messages, *message)
	return nil
}

func (f *fakeMessageRepo) CountBySender(senderID string) (int64, error) {
	var n int64
	for _, m := range f.messages {
		if m.SenderID == senderID {
			n++
		}
	}
	return n, nil
}

func (f *fakeMessageRepo) FindUserMessages(userID string) ([]models.Message, error) {
	// newest first, matching the real repository ordering
	var out []models.Message
	for i := len(f.messages) - 1; i >= 0; i-- {
		m := f.messages[i]
		if m.SenderID == userID || m.ReceiverID == userID {
			out = append(out, m)
		}
	}
	return out, nil
}

func (f *fakeMessageRepo) FindConversation(userA, userB string, limit, offset int) ([]models.Message, error) {
	var out []models.Message
	for _, m := range f.messages {
		if (m.SenderID == userA && m.ReceiverID == userB) || (m.SenderID == userB && m.ReceiverID == userA) {
			out = append(out, m)
		}
	}
	return out, nil
}

func (f *fakeMessageRepo) MarkConversationRead(userID, partnerID string) error {
	f.markedRead = append(f.markedRead, [2]string{userID, partnerID})
	return nil
}

type fakeNotifier struct {
	deliveries []string // receiver IDs
}

func (f *fakeNotifier) NotifyNewMessage(receiverID string, _ dto.MessageDTO) {
	f.deliveries = append(f.deliveries, receiverID)
}

type fakeStorage struct {
	storage.Storage
	saved map[string]string // path -> content type
}

func (f *fakeStorage) Save(_ context.Context, path string, _ io.Reader, contentType string) error {
	if f.saved == nil {
		f.saved = make(map[string]string)
	}
	f.saved[path] = contentType
	return nil
}

func (f *fakeStorage) GetURL(_ context.Context, path string) (string, error) {
	return "/api/v1/files/" + path, nil
}

// ---- Tests -----------------------------------------------------------

const testFreeLimit = 10

func newMessageFixture() (*fakeMessageRepo, *fakeProfileRepo, *fakeNotifier, MessageService) {
	messageRepo := &fakeMessageRepo{}
	profileRepo := newFakeProfileRepo(
		&models.Profile{UserID: "alice", Name: "Alice", Email: "alice@example.com"},
		&models.Profile{UserID: "bob", Name: "Bob", Email: "bob@example.com"},
		&models.Profile{UserID: "carol", Name: "Carol", Email: "carol@example.com", IsPremium: true},
	)
	notifier := &fakeNotifier{}
	svc := NewMessageService(messageRepo, profileRepo, nil, notifier, testFreeLimit, 10<<20,
		[]string{"image/png", "application/pdf"})
	return messageRepo, profileRepo, notifier, svc
}

func TestMessageSend(t *testing.T) {
	t.Parallel()

	t.Run("delivers and notifies the receiver", func(t *testing.T) {
		messageRepo, _, notifier, svc := newMessageFixture()

		msg, err := svc.Send("alice", &dto.SendMessageRequest{ReceiverID: "bob", Content: "hey"})
		require.NoError(t, err)
		assert.Equal(t, "hey", msg.Content)
		assert.Len(t, messageRepo.messages, 1)
		assert.Equal(t, []string{"bob"}, notifier.deliveries)
	})

	t.Run("rejects messaging yourself", func(t *testing.T) {
		_, _, _, svc := newMessageFixture()
		_, err := svc.Send("alice", &dto.SendMessageRequest{ReceiverID: "alice", Content: "hi me"})
		assert.Error(t, err)
	})

	t.Run("rejects empty content without an attachment", func(t *testing.T) {
		_, _, _, svc := newMessageFixture()
		_, err := svc.Send("alice", &dto.SendMessageRequest{ReceiverID: "bob", Content: "   "})
		assert.Error(t, err)
	})

	t.Run("rejects unknown recipients", func(t *testing.T) {
		_, _, _, svc := newMessageFixture()
		_, err := svc.Send("alice", &dto.SendMessageRequest{ReceiverID: "nobody", Content: "hello?"})
		assert.Error(t, err)
	})

	t.Run("attachment-only message is allowed", func(t *testing.T) {
		_, _, _, svc := newMessageFixture()
		fileURL := "/api/v1/files/message-files/alice-1717243200.png"
		msg, err := svc.Send("alice", &dto.SendMessageRequest{ReceiverID: "bob", FileURL: &fileURL})
		require.NoError(t, err)
		require.NotNil(t, msg.FileURL)
		assert.Equal(t, fileURL, *msg.FileURL)
	})
}

func TestMessageQuota(t *testing.T) {
	t.Parallel()

	t.Run("free account is cut off at the limit", func(t *testing.T) {
		messageRepo, _, _, svc := newMessageFixture()
		for i := 0; i < testFreeLimit; i++ {
			messageRepo.messages = append(messageRepo.messages, models.Message{SenderID: "alice", ReceiverID: "bob"})
		}

		_, err := svc.Send("alice", &dto.SendMessageRequest{ReceiverID: "bob", Content: "one more"})
		assert.ErrorIs(t, err, apperrors.ErrMessageLimitExceeded)
		assert.Len(t, messageRepo.messages, testFreeLimit)

		// the response names the configured limit, not a fixed number
		var appErr *apperrors.AppError
		require.ErrorAs(t, err, &appErr)
		assert.Contains(t, appErr.Message, "10 messages")
	})

	t.Run("quota message follows the configured limit", func(t *testing.T) {
		messageRepo := &fakeMessageRepo{
			messages: []models.Message{{SenderID: "alice", ReceiverID: "bob"}},
		}
		profileRepo := newFakeProfileRepo(
			&models.Profile{UserID: "alice", Name: "Alice", Email: "alice@example.com"},
			&models.Profile{UserID: "bob", Name: "Bob", Email: "bob@example.com"},
		)
		svc := NewMessageService(messageRepo, profileRepo, nil, nil, 1, 10<<20, nil)

		_, err := svc.Send("alice", &dto.SendMessageRequest{ReceiverID: "bob", Content: "hi"})
		var appErr *apperrors.AppError
		require.ErrorAs(t, err, &appErr)
		assert.Contains(t, appErr.Message, "1 messages")
	})

	t.Run("message just under the limit still goes through", func(t *testing.T) {
		messageRepo, _, _, svc := newMessageFixture()
		for i := 0; i < testFreeLimit-1; i++ {
			messageRepo.messages = append(messageRepo.messages, models.Message{SenderID: "alice", ReceiverID: "bob"})
		}

		_, err := svc.Send("alice", &dto.SendMessageRequest{ReceiverID: "bob", Content: "last free one"})
		assert.NoError(t, err)
	})

	t.Run("premium account is not limited", func(t *testing.T) {
		messageRepo, _, _, svc := newMessageFixture()
		for i := 0; i < testFreeLimit*3; i++ {
			messageRepo.messages = append(messageRepo.messages, models.Message{SenderID: "carol", ReceiverID: "bob"})
		}

		_, err := svc.Send("carol", &dto.SendMessageRequest{ReceiverID: "bob", Content: "still going"})
		assert.NoError(t, err)
	})

	t.Run("quota endpoint reports usage", func(t *testing.T) {
		messageRepo, _, _, svc := newMessageFixture()
		messageRepo.messages = append(messageRepo.messages,
			models.Message{SenderID: "alice", ReceiverID: "bob"},
			models.Message{SenderID: "alice", ReceiverID: "carol"},
		)

		quota, err := svc.GetQuota("alice")
		require.NoError(t, err)
		assert.Equal(t, int64(2), quota.Used)
		assert.Equal(t, int64(testFreeLimit), quota.Limit)
		assert.False(t, quota.Unlimited)

		premium, err := svc.GetQuota("carol")
		require.NoError(t, err)
		assert.True(t, premium.Unlimited)
	})
}

func TestListConversations(t *testing.T) {
	t.Parallel()

	messageRepo, profileRepo, _, svc := newMessageFixture()
	bob := profileRepo.profiles["bob"]
	carol := profileRepo.profiles["carol"]

	// alice<->bob thread, then a newer alice<->carol thread
	messageRepo.messages = append(messageRepo.messages,
		models.Message{SenderID: "alice", ReceiverID: "bob", Content: "hi bob"},
		models.Message{SenderID: "bob", ReceiverID: "alice", Content: "hi alice", Sender: bob},
		models.Message{SenderID: "bob", ReceiverID: "alice", Content: "you there?", Sender: bob},
		models.Message{SenderID: "carol", ReceiverID: "alice", Content: "collab?", Sender: carol},
	)

	resp, err := svc.ListConversations("alice")
	require.NoError(t, err)
	require.Len(t, resp.Conversations, 2)

	// newest thread first
	first := resp.Conversations[0]
	assert.Equal(t, "carol", first.PartnerID)
	assert.Equal(t, "collab?", first.LastMessage.Content)
	assert.Equal(t, 1, first.UnreadCount)
	require.NotNil(t, first.Partner)
	assert.Equal(t, "Carol", first.Partner.Name)

	second := resp.Conversations[1]
	assert.Equal(t, "bob", second.PartnerID)
	assert.Equal(t, "you there?", second.LastMessage.Content)
	assert.Equal(t, 2, second.UnreadCount)
}

func TestGetConversationMarksRead(t *testing.T) {
	t.Parallel()

	messageRepo, _, _, svc := newMessageFixture()
	messageRepo.messages = append(messageRepo.messages,
		models.Message{SenderID: "bob", ReceiverID: "alice", Content: "ping"},
	)

	msgs, err := svc.GetConversation("alice", "bob", 50, 0)
	require.NoError(t, err)
	assert.Len(t, msgs, 1)
	assert.Equal(t, [][2]string{{"alice", "bob"}}, messageRepo.markedRead)
}

func TestUploadAttachmentWhitelist(t *testing.T) {
	t.Parallel()

	newService := func(store storage.Storage, types ...string) MessageService {
		return NewMessageService(&fakeMessageRepo{}, newFakeProfileRepo(), store, nil, testFreeLimit, 1<<20, types)
	}
	ctx := context.Background()

	t.Run("configured type is accepted", func(t *testing.T) {
		store := &fakeStorage{}
		svc := newService(store, "image/png")

		resp, err := svc.UploadAttachment(ctx, "alice", "shot.png", "image/png", 512, strings.NewReader("png"))
		require.NoError(t, err)
		assert.NotEmpty(t, resp.FileURL)
		assert.Len(t, store.saved, 1)
	})

	t.Run("type outside the configured list is rejected", func(t *testing.T) {
		store := &fakeStorage{}
		svc := newService(store, "image/png")

		_, err := svc.UploadAttachment(ctx, "alice", "doc.pdf", "application/pdf", 512, strings.NewReader("pdf"))
		assert.ErrorIs(t, err, apperrors.ErrInvalidFileType)
		assert.Empty(t, store.saved)
	})

	t.Run("oversized file is rejected", func(t *testing.T) {
		svc := newService(&fakeStorage{}, "image/png")

		_, err := svc.UploadAttachment(ctx, "alice", "big.png", "image/png", 2<<20, strings.NewReader("png"))
		assert.ErrorIs(t, err, apperrors.ErrFileTooLarge)
	})
}
