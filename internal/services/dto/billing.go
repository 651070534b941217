package dto

import (
	"time"

	"collabhub_backend/internal/models"
)

type CheckoutResponse struct {
	CheckoutURL string `json:"checkout_url"`
	SessionID   string `json:"session_id"`
}

type SubscriptionDTO struct {
	Status           models.SubscriptionStatus `json:"status"`
	PlanType         string                    `json:"plan_type"`
	CurrentPeriodEnd *time.Time                `json:"current_period_end,omitempty"`
	CanceledAt       *time.Time                `json:"canceled_at,omitempty"`
}

type TransactionDTO struct {
	ID        string               `json:"id"`
	Amount    float64              `json:"amount"`
	Currency  string               `json:"currency"`
	Status    models.PaymentStatus `json:"status"`
	PaidAt    *time.Time           `json:"paid_at,omitempty"`
	CreatedAt time.Time            `json:"created_at"`
}

func NewSubscriptionDTO(s *models.Subscription) SubscriptionDTO {
	return SubscriptionDTO{
		Status:           s.Status,
		PlanType:         s.PlanType,
		CurrentPeriodEnd: s.CurrentPeriodEnd,
		CanceledAt:       s.CanceledAt,
	}
}

func NewTransactionDTOs(txns []models.PaymentTransaction) []TransactionDTO {
	out := make([]TransactionDTO, 0, len(txns))
	for _, t := range txns {
		out = append(out, TransactionDTO{
			ID:        t.ID,
			Amount:    t.Amount,
			Currency:  t.Currency,
			Status:    t.Status,
			PaidAt:    t.PaidAt,
			CreatedAt: t.CreatedAt,
		})
	}
	return out
}
