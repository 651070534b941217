package repositories

import (
	"errors"
	"time"

	"collabhub_backend/internal/models"

	"gorm.io/gorm"
)

var ErrMessageNotFound = errors.New("message not found")

type MessageRepository interface {
	Create(message *models.Message) error
	FindByID(id string) (*models.Message, error)

	// FindConversation returns the message history between two users,
	// oldest first.
	FindConversation(userA, userB string, limit, offset int) ([]models.Message, error)

	// FindUserMessages returns every message the user sent or
	// received, newest first. The service folds these into
	// conversation summaries.
	FindUserMessages(userID string) ([]models.Message, error)

	// MarkConversationRead flags all messages from partner to user as read.
	MarkConversationRead(userID, partnerID string) error

	// CountBySender is the basis for the free-tier message quota.
	CountBySender(senderID string) (int64, error)

	CountUnread(userID string) (int64, error)
	CountAll() (int64, error)
}

type MessageRepositoryImpl struct {
	db *gorm.DB
}

func NewMessageRepository(db *gorm.DB) MessageRepository {
	return &MessageRepositoryImpl{db: db}
}

func (r *MessageRepositoryImpl) Create(message *models.Message) error {
	return r.db.Create(message).Error
}

func (r *MessageRepositoryImpl) FindByID(id string) (*models.Message, error) {
	var message models.Message
	err := r.db.Preload("Sender").First(&message, "id = ?", id).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrMessageNotFound
		}
		return nil, err
	}
	return &message, nil
}

func (r *MessageRepositoryImpl) FindConversation(userA, userB string, limit, offset int) ([]models.Message, error) {
	if limit < 1 || limit > 200 {
		limit = 100
	}

	var messages []models.Message
	err := r.db.Preload("Sender").
		Where("(sender_id = ? AND receiver_id = ?) OR (sender_id = ? AND receiver_id = ?)",
			userA, userB, userB, userA).
		Order("created_at ASC").
		Limit(limit).Offset(offset).
		Find(&messages).Error
	return messages, err
}

func (r *MessageRepositoryImpl) FindUserMessages(userID string) ([]models.Message, error) {
	var messages []models.Message
	err := r.db.Preload("Sender").
		Where("sender_id = ? OR receiver_id = ?", userID, userID).
		Order("created_at DESC").
		Find(&messages).Error
	return messages, err
}

func (r *MessageRepositoryImpl) MarkConversationRead(userID, partnerID string) error {
	return r.db.Model(&models.Message{}).
		Where("receiver_id = ? AND sender_id = ? AND is_read = ?", userID, partnerID, false).
		Updates(map[string]interface{}{
			"is_read":    true,
			"updated_at": time.Now(),
		}).Error
}

func (r *MessageRepositoryImpl) CountBySender(senderID string) (int64, error) {
	var count int64
	err := r.db.Model(&models.Message{}).Where("sender_id = ?", senderID).Count(&count).Error
	return count, err
}

func (r *MessageRepositoryImpl) CountUnread(userID string) (int64, error) {
	var count int64
	err := r.db.Model(&models.Message{}).
		Where("receiver_id = ? AND is_read = ?", userID, false).
		Count(&count).Error
	return count, err
}

func (r *MessageRepositoryImpl) CountAll() (int64, error) {
	var count int64
	err := r.db.Model(&models.Message{}).Count(&count).Error
	return count, err
}
