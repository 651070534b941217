package models

import "time"

type Subscription struct {
	BaseModel
	UserID                 string             `gorm:"not null;index" json:"user_id"`
	ProviderCustomerID     string             `gorm:"index" json:"-"`
	ProviderSubscriptionID string             `gorm:"uniqueIndex" json:"-"`
	Status                 SubscriptionStatus `gorm:"type:varchar(20);default:'active'" json:"status"`
	PlanType               string             `gorm:"type:varchar(30);default:'premium'" json:"plan_type"`
	CurrentPeriodEnd       *time.Time         `json:"current_period_end,omitempty"`
	CanceledAt             *time.Time         `json:"canceled_at,omitempty"`
}

type PaymentTransaction struct {
	BaseModel
	UserID            string        `gorm:"not null;index" json:"user_id"`
	CheckoutSessionID string        `gorm:"uniqueIndex" json:"checkout_session_id"`
	Amount            float64       `json:"amount"`
	Currency          string        `gorm:"type:varchar(10);default:'usd'" json:"currency"`
	Status            PaymentStatus `gorm:"type:varchar(20);default:'pending'" json:"status"`
	PaidAt            *time.Time    `json:"paid_at,omitempty"`
}

// WebhookEvent records processed provider event IDs so replayed deliveries
// are acknowledged without re-applying their writes.
type WebhookEvent struct {
	BaseModel
	ProviderEventID string    `gorm:"uniqueIndex;not null"`
	Type            string    `gorm:"type:varchar(60);not null"`
	ProcessedAt     time.Time `gorm:"not null"`
}
