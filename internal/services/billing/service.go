package billing

import (
	"context"
	"encoding/json"
	"errors"
	"time"

	"collabhub_backend/internal/email"
	"collabhub_backend/internal/logger"
	"collabhub_backend/internal/models"
	"collabhub_backend/internal/repositories"
	"collabhub_backend/internal/services/dto"
	"collabhub_backend/pkg/apperrors"
)

// webhookEvent is the provider's event envelope.
type webhookEvent struct {
	ID   string `json:"id"`
	Type string `json:"type"`
	Data struct {
		Object json.RawMessage `json:"object"`
	} `json:"data"`
}

type checkoutSessionObject struct {
	ID                string `json:"id"`
	ClientReferenceID string `json:"client_reference_id"`
	Customer          string `json:"customer"`
	Subscription      string `json:"subscription"`
	AmountTotal       int64  `json:"amount_total"` // minor units
	Currency          string `json:"currency"`
	CurrentPeriodEnd  int64  `json:"current_period_end"`
}

type subscriptionObject struct {
	ID string `json:"id"`
}

type Service interface {
	// CreateCheckout opens a hosted checkout session and records a
	// pending transaction keyed by the session ID.
	CreateCheckout(ctx context.Context, userID string) (*dto.CheckoutResponse, error)

	// HandleWebhook verifies the delivery and applies the event.
	// Replays and unrecognized event types are acknowledged without
	// writes.
	HandleWebhook(payload []byte, signatureHeader string) error

	GetSubscription(userID string) (*dto.SubscriptionDTO, error)
	ListTransactions(userID string, limit, offset int) ([]dto.TransactionDTO, error)
}

type ServiceImpl struct {
	subRepo       repositories.SubscriptionRepository
	userRepo      repositories.UserRepository
	profileRepo   repositories.ProfileRepository
	client        CheckoutClient
	emailProvider email.Provider
	webhookSecret string
	premiumPrice  float64
	currency      string
	now           func() time.Time
}

func NewService(
	subRepo repositories.SubscriptionRepository,
	userRepo repositories.UserRepository,
	profileRepo repositories.ProfileRepository,
	client CheckoutClient,
	emailProvider email.Provider,
	webhookSecret string,
	premiumPrice float64,
	currency string,
) Service {
	return &ServiceImpl{
		subRepo:       subRepo,
		userRepo:      userRepo,
		profileRepo:   profileRepo,
		client:        client,
		emailProvider: emailProvider,
		webhookSecret: webhookSecret,
		premiumPrice:  premiumPrice,
		currency:      currency,
		now:           time.Now,
	}
}

func (s *ServiceImpl) CreateCheckout(ctx context.Context, userID string) (*dto.CheckoutResponse, error) {
	user, err := s.userRepo.FindByID(userID)
	if err != nil {
		if errors.Is(err, repositories.ErrUserNotFound) {
			return nil, apperrors.NewNotFoundError("billing", "User not found")
		}
		return nil, apperrors.InternalError(err)
	}

	session, err := s.client.CreateCheckoutSession(ctx, userID, user.Email)
	if err != nil {
		logger.WithError(err).Error("checkout session creation failed")
		return nil, apperrors.ErrPaymentProviderError
	}

	txn := &models.PaymentTransaction{
		UserID:            userID,
		CheckoutSessionID: session.ID,
		Amount:            s.premiumPrice,
		Currency:          s.currency,
		Status:            models.PaymentStatusPending,
	}
	if err := s.subRepo.CreateTransaction(txn); err != nil {
		return nil, apperrors.InternalError(err)
	}

	return &dto.CheckoutResponse{
		CheckoutURL: session.URL,
		SessionID:   session.ID,
	}, nil
}

func (s *ServiceImpl) HandleWebhook(payload []byte, signatureHeader string) error {
	if err := VerifySignature(s.webhookSecret, payload, signatureHeader, s.now()); err != nil {
		logger.WithError(err).Warn("webhook signature rejected")
		return apperrors.ErrInvalidWebhookSignature
	}

	var event webhookEvent
	if err := json.Unmarshal(payload, &event); err != nil {
		return apperrors.NewBadRequestError("Malformed webhook payload")
	}
	if event.ID == "" {
		return apperrors.NewBadRequestError("Webhook event missing id")
	}

	switch event.Type {
	case "checkout.session.completed":
		return s.handleCheckoutCompleted(&event)
	case "customer.subscription.deleted":
		return s.handleSubscriptionDeleted(&event)
	default:
		// acknowledge so the provider stops retrying
		logger.With("event_type", event.Type).Info("ignoring unhandled webhook event")
		return nil
	}
}

func (s *ServiceImpl) handleCheckoutCompleted(event *webhookEvent) error {
	var session checkoutSessionObject
	if err := json.Unmarshal(event.Data.Object, &session); err != nil {
		return apperrors.NewBadRequestError("Malformed checkout session object")
	}
	if session.ClientReferenceID == "" || session.ID == "" {
		return apperrors.NewBadRequestError("Checkout session missing references")
	}

	change := repositories.CheckoutCompleted{
		EventID:                event.ID,
		UserID:                 session.ClientReferenceID,
		CheckoutSessionID:      session.ID,
		ProviderCustomerID:     session.Customer,
		ProviderSubscriptionID: session.Subscription,
		Amount:                 float64(session.AmountTotal) / 100,
		Currency:               session.Currency,
	}
	if session.CurrentPeriodEnd > 0 {
		end := time.Unix(session.CurrentPeriodEnd, 0)
		change.CurrentPeriodEnd = &end
	}

	if err := s.subRepo.ApplyCheckoutCompleted(change); err != nil {
		if errors.Is(err, repositories.ErrEventAlreadyApplied) {
			logger.With("event_id", event.ID).Info("webhook replay acknowledged")
			return nil
		}
		return apperrors.InternalError(err)
	}

	s.sendPremiumEmail(session.ClientReferenceID, change.CurrentPeriodEnd)
	return nil
}

func (s *ServiceImpl) handleSubscriptionDeleted(event *webhookEvent) error {
	var sub subscriptionObject
	if err := json.Unmarshal(event.Data.Object, &sub); err != nil {
		return apperrors.NewBadRequestError("Malformed subscription object")
	}
	if sub.ID == "" {
		return apperrors.NewBadRequestError("Subscription object missing id")
	}

	err := s.subRepo.ApplySubscriptionDeleted(event.ID, sub.ID)
	switch {
	case err == nil:
		return nil
	case errors.Is(err, repositories.ErrEventAlreadyApplied):
		logger.With("event_id", event.ID).Info("webhook replay acknowledged")
		return nil
	case errors.Is(err, repositories.ErrSubscriptionNotFound):
		// stale deletion for a subscription this backend never saw
		logger.With("provider_subscription_id", sub.ID).Warn("deletion for unknown subscription acknowledged")
		return nil
	default:
		return apperrors.InternalError(err)
	}
}

func (s *ServiceImpl) GetSubscription(userID string) (*dto.SubscriptionDTO, error) {
	sub, err := s.subRepo.FindByUserID(userID)
	if err != nil {
		if errors.Is(err, repositories.ErrSubscriptionNotFound) {
			return nil, apperrors.NewNotFoundError("billing", "No subscription")
		}
		return nil, apperrors.InternalError(err)
	}

	d := dto.NewSubscriptionDTO(sub)
	return &d, nil
}

func (s *ServiceImpl) ListTransactions(userID string, limit, offset int) ([]dto.TransactionDTO, error) {
	txns, err := s.subRepo.FindTransactionsByUser(userID, limit, offset)
	if err != nil {
		return nil, apperrors.InternalError(err)
	}
	return dto.NewTransactionDTOs(txns), nil
}

func (s *ServiceImpl) sendPremiumEmail(userID string, periodEnd *time.Time) {
	if s.emailProvider == nil {
		return
	}

	profile, err := s.profileRepo.FindByUserID(userID)
	if err != nil {
		return
	}

	endText := "your next billing date"
	if periodEnd != nil {
		endText = periodEnd.Format("January 2, 2006")
	}

	go func() {
		err := s.emailProvider.SendTemplate(
			[]string{profile.Email},
			"Your premium subscription is active",
			email.TemplatePremiumActivated,
			email.TemplateData{
				"Name":      profile.Name,
				"PeriodEnd": endText,
			},
		)
		if err != nil {
			logger.WithError(err).Warn("failed to send premium activation email")
		}
	}()
}
