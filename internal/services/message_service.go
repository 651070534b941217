package services

import (
	"context"
	"errors"
	"io"
	"strings"
	"time"

	"collabhub_backend/internal/logger"
	"collabhub_backend/internal/models"
	"collabhub_backend/internal/repositories"
	"collabhub_backend/internal/services/dto"
	"collabhub_backend/internal/storage"
	"collabhub_backend/pkg/apperrors"
)

// Notifier pushes realtime events to connected clients. Implemented
// by the websocket manager; a no-op stub serves in tests.
type Notifier interface {
	NotifyNewMessage(receiverID string, message dto.MessageDTO)
}

type MessageService interface {
	// Send persists the message after the free-tier quota check and
	// pushes it to the receiver's live connections.
	Send(senderID string, req *dto.SendMessageRequest) (*dto.MessageDTO, error)

	// GetConversation returns the thread with a partner, oldest
	// first, and marks the partner's messages as read.
	GetConversation(userID, partnerID string, limit, offset int) ([]dto.MessageDTO, error)

	// ListConversations folds the user's messages into one summary
	// per partner, newest thread first.
	ListConversations(userID string) (*dto.ConversationListResponse, error)

	GetQuota(userID string) (*dto.MessageQuotaResponse, error)

	// UploadAttachment stores a file and returns its URL for use in a
	// subsequent Send.
	UploadAttachment(ctx context.Context, userID, filename, contentType string, size int64, reader io.Reader) (*dto.FileUploadResponse, error)
}

type MessageServiceImpl struct {
	messageRepo  repositories.MessageRepository
	profileRepo  repositories.ProfileRepository
	store        storage.Storage
	notifier     Notifier
	freeLimit    int64
	maxFileSize  int64
	allowedTypes map[string]bool
}

func NewMessageService(
	messageRepo repositories.MessageRepository,
	profileRepo repositories.ProfileRepository,
	store storage.Storage,
	notifier Notifier,
	freeLimit int64,
	maxFileSize int64,
	allowedTypes []string,
) MessageService {
	allowed := make(map[string]bool, len(allowedTypes))
	for _, t := range allowedTypes {
		allowed[t] = true
	}
	return &MessageServiceImpl{
		messageRepo:  messageRepo,
		profileRepo:  profileRepo,
		store:        store,
		notifier:     notifier,
		freeLimit:    freeLimit,
		maxFileSize:  maxFileSize,
		allowedTypes: allowed,
	}
}

func (s *MessageServiceImpl) Send(senderID string, req *dto.SendMessageRequest) (*dto.MessageDTO, error) {
	if req.ReceiverID == senderID {
		return nil, apperrors.NewBadRequestError("Cannot message yourself")
	}

	content := strings.TrimSpace(req.Content)
	if content == "" && req.FileURL == nil {
		return nil, apperrors.NewBadRequestError("Message is empty")
	}

	sender, err := s.profileRepo.FindByUserID(senderID)
	if err != nil {
		if errors.Is(err, repositories.ErrProfileNotFound) {
			return nil, apperrors.NewNotFoundError("message", "Sender profile not found")
		}
		return nil, apperrors.InternalError(err)
	}

	if _, err := s.profileRepo.FindByUserID(req.ReceiverID); err != nil {
		if errors.Is(err, repositories.ErrProfileNotFound) {
			return nil, apperrors.NewNotFoundError("message", "Recipient not found")
		}
		return nil, apperrors.InternalError(err)
	}

	// free accounts get a lifetime cap on sent messages
	if !sender.IsPremium {
		sent, err := s.messageRepo.CountBySender(senderID)
		if err != nil {
			return nil, apperrors.InternalError(err)
		}
		if sent >= s.freeLimit {
			return nil, apperrors.NewMessageLimitExceededError(s.freeLimit)
		}
	}

	message := &models.Message{
		SenderID:   senderID,
		ReceiverID: req.ReceiverID,
		Content:    content,
		FileURL:    req.FileURL,
	}
	if err := s.messageRepo.Create(message); err != nil {
		return nil, apperrors.InternalError(err)
	}
	message.Sender = sender

	d := dto.NewMessageDTO(message)
	if s.notifier != nil {
		s.notifier.NotifyNewMessage(req.ReceiverID, d)
	}

	return &d, nil
}

func (s *MessageServiceImpl) GetConversation(userID, partnerID string, limit, offset int) ([]dto.MessageDTO, error) {
	messages, err := s.messageRepo.FindConversation(userID, partnerID, limit, offset)
	if err != nil {
		return nil, apperrors.InternalError(err)
	}

	if err := s.messageRepo.MarkConversationRead(userID, partnerID); err != nil {
		logger.WithError(err).Warn("failed to mark conversation read")
	}

	return dto.NewMessageDTOs(messages), nil
}

func (s *MessageServiceImpl) ListConversations(userID string) (*dto.ConversationListResponse, error) {
	messages, err := s.messageRepo.FindUserMessages(userID)
	if err != nil {
		return nil, apperrors.InternalError(err)
	}

	// messages arrive newest first, so the first message seen per
	// partner is the thread head
	order := make([]string, 0)
	byPartner := make(map[string]*dto.ConversationDTO)
	for i := range messages {
		m := &messages[i]
		partnerID := m.SenderID
		if partnerID == userID {
			partnerID = m.ReceiverID
		}

		conv, seen := byPartner[partnerID]
		if !seen {
			conv = &dto.ConversationDTO{
				PartnerID:   partnerID,
				LastMessage: dto.NewMessageDTO(m),
			}
			byPartner[partnerID] = conv
			order = append(order, partnerID)
		}

		if m.ReceiverID == userID && !m.IsRead {
			conv.UnreadCount++
		}
		if m.SenderID == partnerID && conv.Partner == nil && m.Sender != nil {
			conv.Partner = &dto.SenderDTO{
				UserID:    m.Sender.UserID,
				Name:      m.Sender.Name,
				AvatarURL: m.Sender.AvatarURL,
				IsPremium: m.Sender.IsPremium,
			}
		}
	}

	conversations := make([]dto.ConversationDTO, 0, len(order))
	for _, partnerID := range order {
		conversations = append(conversations, *byPartner[partnerID])
	}

	return &dto.ConversationListResponse{Conversations: conversations}, nil
}

func (s *MessageServiceImpl) GetQuota(userID string) (*dto.MessageQuotaResponse, error) {
	profile, err := s.profileRepo.FindByUserID(userID)
	if err != nil {
		if errors.Is(err, repositories.ErrProfileNotFound) {
			return nil, apperrors.NewNotFoundError("message", "Profile not found")
		}
		return nil, apperrors.InternalError(err)
	}

	sent, err := s.messageRepo.CountBySender(userID)
	if err != nil {
		return nil, apperrors.InternalError(err)
	}

	return &dto.MessageQuotaResponse{
		Used:      sent,
		Limit:     s.freeLimit,
		Unlimited: profile.IsPremium,
	}, nil
}

func (s *MessageServiceImpl) UploadAttachment(ctx context.Context, userID, filename, contentType string, size int64, reader io.Reader) (*dto.FileUploadResponse, error) {
	if !s.allowedTypes[contentType] {
		return nil, apperrors.ErrInvalidFileType
	}
	if size > s.maxFileSize {
		return nil, apperrors.ErrFileTooLarge
	}

	path := storage.MessageFilePath(userID, filename, time.Now())
	if err := s.store.Save(ctx, path, reader, contentType); err != nil {
		return nil, apperrors.InternalError(err)
	}

	url, err := s.store.GetURL(ctx, path)
	if err != nil {
		return nil, apperrors.InternalError(err)
	}

	return &dto.FileUploadResponse{FileURL: url}, nil
}
