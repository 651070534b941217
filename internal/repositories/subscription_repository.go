package repositories

import (
	"errors"
	"time"

	"collabhub_backend/internal/models"

	"gorm.io/gorm"
)

var (
	ErrSubscriptionNotFound = errors.New("subscription not found")
	ErrTransactionNotFound  = errors.New("payment transaction not found")
	ErrEventAlreadyApplied  = errors.New("webhook event already applied")
)

// CheckoutCompleted is the state change for a successful checkout:
// subscription goes active and the payer's profile turns premium.
type CheckoutCompleted struct {
	EventID                string
	UserID                 string
	CheckoutSessionID      string
	ProviderCustomerID     string
	ProviderSubscriptionID string
	Amount                 float64
	Currency               string
	CurrentPeriodEnd       *time.Time
}

type SubscriptionRepository interface {
	FindByUserID(userID string) (*models.Subscription, error)
	FindByProviderSubscriptionID(providerSubID string) (*models.Subscription, error)

	CreateTransaction(txn *models.PaymentTransaction) error
	FindTransactionByCheckoutSession(sessionID string) (*models.PaymentTransaction, error)
	FindTransactionsByUser(userID string, limit, offset int) ([]models.PaymentTransaction, error)

	// ApplyCheckoutCompleted upserts the subscription, marks the
	// transaction paid, flips the profile to premium and records the
	// event ID, all in one transaction. A replayed event ID returns
	// ErrEventAlreadyApplied with no writes.
	ApplyCheckoutCompleted(change CheckoutCompleted) error

	// ApplySubscriptionDeleted cancels the subscription and strips
	// premium and featured from the profile, atomically with the
	// event record.
	ApplySubscriptionDeleted(eventID, providerSubID string) error

	HasProcessedEvent(eventID string) (bool, error)

	// FindExpired returns active subscriptions whose period ended
	// before the cutoff. Used by the expiry sweep.
	FindExpired(cutoff time.Time) ([]models.Subscription, error)

	// Expire marks a lapsed subscription canceled and strips premium
	// from the profile in one transaction.
	Expire(subscriptionID string) error

	CountActive() (int64, error)
}

type SubscriptionRepositoryImpl struct {
	db *gorm.DB
}

func NewSubscriptionRepository(db *gorm.DB) SubscriptionRepository {
	return &SubscriptionRepositoryImpl{db: db}
}

func (r *SubscriptionRepositoryImpl) FindByUserID(userID string) (*models.Subscription, error) {
	var sub models.Subscription
	err := r.db.Where("user_id = ?", userID).Order("created_at DESC").First(&sub).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrSubscriptionNotFound
		}
		return nil, err
	}
	return &sub, nil
}

func (r *SubscriptionRepositoryImpl) FindByProviderSubscriptionID(providerSubID string) (*models.Subscription, error) {
	var sub models.Subscription
	err := r.db.First(&sub, "provider_subscription_id = ?", providerSubID).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrSubscriptionNotFound
		}
		return nil, err
	}
	return &sub, nil
}

func (r *SubscriptionRepositoryImpl) CreateTransaction(txn *models.PaymentTransaction) error {
	return r.db.Create(txn).Error
}

func (r *SubscriptionRepositoryImpl) FindTransactionByCheckoutSession(sessionID string) (*models.PaymentTransaction, error) {
	var txn models.PaymentTransaction
	err := r.db.First(&txn, "checkout_session_id = ?", sessionID).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrTransactionNotFound
		}
		return nil, err
	}
	return &txn, nil
}

func (r *SubscriptionRepositoryImpl) FindTransactionsByUser(userID string, limit, offset int) ([]models.PaymentTransaction, error) {
	if limit < 1 || limit > 100 {
		limit = 20
	}

	var txns []models.PaymentTransaction
	err := r.db.Where("user_id = ?", userID).
		Order("created_at DESC").
		Limit(limit).Offset(offset).
		Find(&txns).Error
	return txns, err
}

func (r *SubscriptionRepositoryImpl) ApplyCheckoutCompleted(change CheckoutCompleted) error {
	return r.db.Transaction(func(tx *gorm.DB) error {
		if err := recordEvent(tx, change.EventID, "checkout.session.completed"); err != nil {
			return err
		}

		now := time.Now()

		// mark the pending transaction paid, or record it if checkout
		// was initiated outside this backend
		var txn models.PaymentTransaction
		err := tx.First(&txn, "checkout_session_id = ?", change.CheckoutSessionID).Error
		switch {
		case err == nil:
			if err := tx.Model(&txn).Updates(map[string]interface{}{
				"status":     models.PaymentStatusPaid,
				"paid_at":    now,
				"updated_at": now,
			}).Error; err != nil {
				return err
			}
		case errors.Is(err, gorm.ErrRecordNotFound):
			txn = models.PaymentTransaction{
				UserID:            change.UserID,
				CheckoutSessionID: change.CheckoutSessionID,
				Amount:            change.Amount,
				Currency:          change.Currency,
				Status:            models.PaymentStatusPaid,
				PaidAt:            &now,
			}
			if err := tx.Create(&txn).Error; err != nil {
				return err
			}
		default:
			return err
		}

		// upsert the subscription row
		var sub models.Subscription
		err = tx.Where("user_id = ?", change.UserID).First(&sub).Error
		switch {
		case err == nil:
			if err := tx.Model(&sub).Updates(map[string]interface{}{
				"provider_customer_id":     change.ProviderCustomerID,
				"provider_subscription_id": change.ProviderSubscriptionID,
				"status":                   models.SubscriptionStatusActive,
				"current_period_end":       change.CurrentPeriodEnd,
				"canceled_at":              nil,
				"updated_at":               now,
			}).Error; err != nil {
				return err
			}
		case errors.Is(err, gorm.ErrRecordNotFound):
			sub = models.Subscription{
				UserID:                 change.UserID,
				ProviderCustomerID:     change.ProviderCustomerID,
				ProviderSubscriptionID: change.ProviderSubscriptionID,
				Status:                 models.SubscriptionStatusActive,
				CurrentPeriodEnd:       change.CurrentPeriodEnd,
			}
			if err := tx.Create(&sub).Error; err != nil {
				return err
			}
		default:
			return err
		}

		return tx.Model(&models.Profile{}).Where("user_id = ?", change.UserID).Updates(map[string]interface{}{
			"is_premium": true,
			"updated_at": now,
		}).Error
	})
}

func (r *SubscriptionRepositoryImpl) ApplySubscriptionDeleted(eventID, providerSubID string) error {
	return r.db.Transaction(func(tx *gorm.DB) error {
		if err := recordEvent(tx, eventID, "customer.subscription.deleted"); err != nil {
			return err
		}

		var sub models.Subscription
		if err := tx.First(&sub, "provider_subscription_id = ?", providerSubID).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return ErrSubscriptionNotFound
			}
			return err
		}

		now := time.Now()
		if err := tx.Model(&sub).Updates(map[string]interface{}{
			"status":      models.SubscriptionStatusCanceled,
			"canceled_at": now,
			"updated_at":  now,
		}).Error; err != nil {
			return err
		}

		return tx.Model(&models.Profile{}).Where("user_id = ?", sub.UserID).Updates(map[string]interface{}{
			"is_premium":  false,
			"is_featured": false,
			"updated_at":  now,
		}).Error
	})
}

func (r *SubscriptionRepositoryImpl) HasProcessedEvent(eventID string) (bool, error) {
	var count int64
	err := r.db.Model(&models.WebhookEvent{}).
		Where("provider_event_id = ?", eventID).
		Count(&count).Error
	return count > 0, err
}

func (r *SubscriptionRepositoryImpl) FindExpired(cutoff time.Time) ([]models.Subscription, error) {
	var subs []models.Subscription
	err := r.db.Where("status = ? AND current_period_end IS NOT NULL AND current_period_end < ?",
		models.SubscriptionStatusActive, cutoff).
		Find(&subs).Error
	return subs, err
}

func (r *SubscriptionRepositoryImpl) Expire(subscriptionID string) error {
	return r.db.Transaction(func(tx *gorm.DB) error {
		var sub models.Subscription
		if err := tx.First(&sub, "id = ?", subscriptionID).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return ErrSubscriptionNotFound
			}
			return err
		}

		now := time.Now()
		if err := tx.Model(&sub).Updates(map[string]interface{}{
			"status":      models.SubscriptionStatusCanceled,
			"canceled_at": now,
			"updated_at":  now,
		}).Error; err != nil {
			return err
		}

		return tx.Model(&models.Profile{}).Where("user_id = ?", sub.UserID).Updates(map[string]interface{}{
			"is_premium":  false,
			"is_featured": false,
			"updated_at":  now,
		}).Error
	})
}

func (r *SubscriptionRepositoryImpl) CountActive() (int64, error) {
	var count int64
	err := r.db.Model(&models.Subscription{}).
		Where("status = ?", models.SubscriptionStatusActive).
		Count(&count).Error
	return count, err
}

// recordEvent inserts the idempotency marker; duplicates surface as
// ErrEventAlreadyApplied before any state is touched.
func recordEvent(tx *gorm.DB, eventID, eventType string) error {
	var count int64
	if err := tx.Model(&models.WebhookEvent{}).
		Where("provider_event_id = ?", eventID).
		Count(&count).Error; err != nil {
		return err
	}
	if count > 0 {
		return ErrEventAlreadyApplied
	}

	return tx.Create(&models.WebhookEvent{
		ProviderEventID: eventID,
		Type:            eventType,
		ProcessedAt:     time.Now(),
	}).Error
}
