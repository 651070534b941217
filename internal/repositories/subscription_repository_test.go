package repositories

import (
	"testing"
	"time"

	"collabhub_backend/internal/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSubscriptionRepositoryCheckoutCompleted(t *testing.T) {
	t.Parallel()

	tx := liveTx(t)
	repo := NewSubscriptionRepository(tx)
	user := createTestUser(t, tx, "Dana")

	require.NoError(t, repo.CreateTransaction(&models.PaymentTransaction{
		UserID:            user.ID,
		CheckoutSessionID: uniqueID("cs"),
		Amount:            9.99,
		Currency:          "usd",
	}))

	periodEnd := time.Now().Add(30 * 24 * time.Hour)
	change := CheckoutCompleted{
		EventID:                uniqueID("evt"),
		UserID:                 user.ID,
		CheckoutSessionID:      uniqueID("cs"),
		ProviderCustomerID:     uniqueID("cus"),
		ProviderSubscriptionID: uniqueID("sub"),
		Amount:                 9.99,
		Currency:               "usd",
		CurrentPeriodEnd:       &periodEnd,
	}
	require.NoError(t, repo.ApplyCheckoutCompleted(change))

	sub, err := repo.FindByUserID(user.ID)
	require.NoError(t, err)
	assert.Equal(t, models.SubscriptionStatusActive, sub.Status)
	assert.Equal(t, change.ProviderSubscriptionID, sub.ProviderSubscriptionID)

	profile := fetchProfile(t, tx, user.ID)
	assert.True(t, profile.IsPremium)

	txn, err := repo.FindTransactionByCheckoutSession(change.CheckoutSessionID)
	require.NoError(t, err)
	assert.Equal(t, models.PaymentStatusPaid, txn.Status)
	require.NotNil(t, txn.PaidAt)
}

func TestSubscriptionRepositoryWebhookReplay(t *testing.T) {
	t.Parallel()

	tx := liveTx(t)
	repo := NewSubscriptionRepository(tx)
	user := createTestUser(t, tx, "Dana")

	change := CheckoutCompleted{
		EventID:                uniqueID("evt"),
		UserID:                 user.ID,
		CheckoutSessionID:      uniqueID("cs"),
		ProviderSubscriptionID: uniqueID("sub"),
		Amount:                 9.99,
		Currency:               "usd",
	}
	require.NoError(t, repo.ApplyCheckoutCompleted(change))

	// the replayed event is refused before any state is touched
	err := repo.ApplyCheckoutCompleted(change)
	assert.ErrorIs(t, err, ErrEventAlreadyApplied)

	var txnCount int64
	require.NoError(t, tx.Model(&models.PaymentTransaction{}).
		Where("user_id = ?", user.ID).Count(&txnCount).Error)
	assert.EqualValues(t, 1, txnCount)

	var subCount int64
	require.NoError(t, tx.Model(&models.Subscription{}).
		Where("user_id = ?", user.ID).Count(&subCount).Error)
	assert.EqualValues(t, 1, subCount)
}

func TestSubscriptionRepositoryDeleted(t *testing.T) {
	t.Parallel()

	tx := liveTx(t)
	repo := NewSubscriptionRepository(tx)
	user := createTestUser(t, tx, "Dana")

	change := CheckoutCompleted{
		EventID:                uniqueID("evt"),
		UserID:                 user.ID,
		CheckoutSessionID:      uniqueID("cs"),
		ProviderSubscriptionID: uniqueID("sub"),
		Amount:                 9.99,
		Currency:               "usd",
	}
	require.NoError(t, repo.ApplyCheckoutCompleted(change))
	require.NoError(t, tx.Model(&models.Profile{}).
		Where("user_id = ?", user.ID).Update("is_featured", true).Error)

	require.NoError(t, repo.ApplySubscriptionDeleted(uniqueID("evt"), change.ProviderSubscriptionID))

	sub, err := repo.FindByUserID(user.ID)
	require.NoError(t, err)
	assert.Equal(t, models.SubscriptionStatusCanceled, sub.Status)
	require.NotNil(t, sub.CanceledAt)

	// cancellation strips both premium and featured
	profile := fetchProfile(t, tx, user.ID)
	assert.False(t, profile.IsPremium)
	assert.False(t, profile.IsFeatured)

	err = repo.ApplySubscriptionDeleted(uniqueID("evt"), uniqueID("sub"))
	assert.ErrorIs(t, err, ErrSubscriptionNotFound)
}
