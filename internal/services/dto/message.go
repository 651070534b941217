package dto

import (
	"time"

	"collabhub_backend/internal/models"
)

type SendMessageRequest struct {
	ReceiverID string  `json:"receiver_id" validate:"required,uuid4"`
	Content    string  `json:"content" validate:"required_without=FileURL,max=5000"`
	FileURL    *string `json:"file_url,omitempty" validate:"omitempty,max=500"`
}

type MessageDTO struct {
	ID         string     `json:"id"`
	SenderID   string     `json:"sender_id"`
	ReceiverID string     `json:"receiver_id"`
	Content    string     `json:"content"`
	FileURL    *string    `json:"file_url,omitempty"`
	IsRead     bool       `json:"is_read"`
	CreatedAt  time.Time  `json:"created_at"`
	Sender     *SenderDTO `json:"sender,omitempty"`
}

// SenderDTO is the slim profile shown next to a message.
type SenderDTO struct {
	UserID    string `json:"user_id"`
	Name      string `json:"name"`
	AvatarURL string `json:"avatar_url"`
	IsPremium bool   `json:"is_premium"`
}

// ConversationDTO summarizes a thread with one partner.
type ConversationDTO struct {
	PartnerID   string     `json:"partner_id"`
	Partner     *SenderDTO `json:"partner,omitempty"`
	LastMessage MessageDTO `json:"last_message"`
	UnreadCount int        `json:"unread_count"`
}

type ConversationListResponse struct {
	Conversations []ConversationDTO `json:"conversations"`
}

type MessageQuotaResponse struct {
	Used      int64 `json:"used"`
	Limit     int64 `json:"limit"`
	Unlimited bool  `json:"unlimited"`
}

type FileUploadResponse struct {
	FileURL string `json:"file_url"`
}

func NewMessageDTO(m *models.Message) MessageDTO {
	d := MessageDTO{
		ID:         m.ID,
		SenderID:   m.SenderID,
		ReceiverID: m.ReceiverID,
		Content:    m.Content,
		FileURL:    m.FileURL,
		IsRead:     m.IsRead,
		CreatedAt:  m.CreatedAt,
	}
	if m.Sender != nil {
		d.Sender = &SenderDTO{
			UserID:    m.Sender.UserID,
			Name:      m.Sender.Name,
			AvatarURL: m.Sender.AvatarURL,
			IsPremium: m.Sender.IsPremium,
		}
	}
	return d
}

func NewMessageDTOs(messages []models.Message) []MessageDTO {
	out := make([]MessageDTO, 0, len(messages))
	for i := range messages {
		out = append(out, NewMessageDTO(&messages[i]))
	}
	return out
}
