package billing

import (
	"context"
	"encoding/json"
	"errors"
	"testing"
	"time"

	"collabhub_backend/internal/models"
	"collabhub_backend/internal/repositories"
	"collabhub_backend/pkg/apperrors"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// ---- Fakes -----------------------------------------------------------

// fakeSubscriptionRepo covers the webhook/checkout paths; embedded
// interface panics on anything a test did not mean to exercise.
type fakeSubscriptionRepo struct {
	repositories.SubscriptionRepository

	processedEvents map[string]bool
	subscriptions   map[string]*models.Subscription // keyed by provider sub ID
	transactions    []*models.PaymentTransaction
	applied         []repositories.CheckoutCompleted
	deleted         []string
}

func newFakeSubscriptionRepo() *fakeSubscriptionRepo {
	return &fakeSubscriptionRepo{
		processedEvents: make(map[string]bool),
		subscriptions:   make(map[string]*models.Subscription),
	}
}

func (f *fakeSubscriptionRepo) CreateTransaction(txn *models.PaymentTransaction) error {
	f.transactions = append(f.transactions, txn)
	return nil
}

func (f *fakeSubscriptionRepo) ApplyCheckoutCompleted(change repositories.CheckoutCompleted) error {
	if f.processedEvents[change.EventID] {
		return repositories.ErrEventAlreadyApplied
	}
	f.processedEvents[change.EventID] = true
	f.applied = append(f.applied, change)
	f.subscriptions[change.ProviderSubscriptionID] = &models.Subscription{
		UserID:                 change.UserID,
		ProviderSubscriptionID: change.ProviderSubscriptionID,
		Status:                 models.SubscriptionStatusActive,
		CurrentPeriodEnd:       change.CurrentPeriodEnd,
	}
	return nil
}

func (f *fakeSubscriptionRepo) ApplySubscriptionDeleted(eventID, providerSubID string) error {
	if f.processedEvents[eventID] {
		return repositories.ErrEventAlreadyApplied
	}
	sub, ok := f.subscriptions[providerSubID]
	if !ok {
		return repositories.ErrSubscriptionNotFound
	}
	f.processedEvents[eventID] = true
	sub.Status = models.SubscriptionStatusCanceled
	f.deleted = append(f.deleted, providerSubID)
	return nil
}

type fakeUserRepo struct {
	repositories.UserRepository
	users map[string]*models.User
}

func (f *fakeUserRepo) FindByID(id string) (*models.User, error) {
	if u, ok := f.users[id]; ok {
		return u, nil
	}
	return nil, repositories.ErrUserNotFound
}

type fakeProfileRepo struct {
	repositories.ProfileRepository
	profiles map[string]*models.Profile
}

func (f *fakeProfileRepo) FindByUserID(userID string) (*models.Profile, error) {
	if p, ok := f.profiles[userID]; ok {
		return p, nil
	}
	return nil, repositories.ErrProfileNotFound
}

type fakeCheckoutClient struct {
	session *CheckoutSession
	err     error
	calls   int
}

func (f *fakeCheckoutClient) CreateCheckoutSession(_ context.Context, userID, customerEmail string) (*CheckoutSession, error) {
	f.calls++
	if f.err != nil {
		return nil, f.err
	}
	return f.session, nil
}

// ---- Helpers ---------------------------------------------------------

var testNow = time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)

const testWebhookSecret = "whsec_test"

func newTestService(subRepo *fakeSubscriptionRepo, client CheckoutClient) *ServiceImpl {
	users := &fakeUserRepo{users: map[string]*models.User{
		"user-1": {Email: "creator@example.com"},
	}}
	profiles := &fakeProfileRepo{profiles: map[string]*models.Profile{
		"user-1": {UserID: "user-1", Email: "creator@example.com", Name: "Creator"},
	}}

	svc := NewService(subRepo, users, profiles, client, nil, testWebhookSecret, 9.99, "usd").(*ServiceImpl)
	svc.now = func() time.Time { return testNow }
	return svc
}

func signedCheckoutEvent(t *testing.T, eventID string) []byte {
	t.Helper()
	payload, err := json.Marshal(map[string]any{
		"id":   eventID,
		"type": "checkout.session.completed",
		"data": map[string]any{
			"object": map[string]any{
				"id":                  "cs_123",
				"client_reference_id": "user-1",
				"customer":            "cus_1",
				"subscription":        "sub_1",
				"amount_total":        999,
				"currency":            "usd",
				"current_period_end":  testNow.Add(30 * 24 * time.Hour).Unix(),
			},
		},
	})
	require.NoError(t, err)
	return payload
}

func sign(payload []byte) string {
	return SignPayload(testWebhookSecret, payload, testNow)
}

// ---- Tests -----------------------------------------------------------

func TestHandleWebhook_CheckoutCompleted(t *testing.T) {
	t.Parallel()

	subRepo := newFakeSubscriptionRepo()
	svc := newTestService(subRepo, nil)
	payload := signedCheckoutEvent(t, "evt_1")

	t.Run("applies the change on first delivery", func(t *testing.T) {
		require.NoError(t, svc.HandleWebhook(payload, sign(payload)))

		require.Len(t, subRepo.applied, 1)
		change := subRepo.applied[0]
		assert.Equal(t, "evt_1", change.EventID)
		assert.Equal(t, "user-1", change.UserID)
		assert.Equal(t, "cs_123", change.CheckoutSessionID)
		assert.Equal(t, "sub_1", change.ProviderSubscriptionID)
		assert.InDelta(t, 9.99, change.Amount, 0.001)
		require.NotNil(t, change.CurrentPeriodEnd)
		assert.Equal(t, testNow.Add(30*24*time.Hour).Unix(), change.CurrentPeriodEnd.Unix())
	})

	t.Run("replay is acknowledged without a second write", func(t *testing.T) {
		require.NoError(t, svc.HandleWebhook(payload, sign(payload)))
		assert.Len(t, subRepo.applied, 1)
	})
}

func TestHandleWebhook_SubscriptionDeleted(t *testing.T) {
	t.Parallel()

	deleteEvent := func(t *testing.T, eventID, subID string) []byte {
		t.Helper()
		payload, err := json.Marshal(map[string]any{
			"id":   eventID,
			"type": "customer.subscription.deleted",
			"data": map[string]any{"object": map[string]any{"id": subID}},
		})
		require.NoError(t, err)
		return payload
	}

	t.Run("cancels a known subscription", func(t *testing.T) {
		subRepo := newFakeSubscriptionRepo()
		svc := newTestService(subRepo, nil)

		checkout := signedCheckoutEvent(t, "evt_1")
		require.NoError(t, svc.HandleWebhook(checkout, sign(checkout)))

		payload := deleteEvent(t, "evt_2", "sub_1")
		require.NoError(t, svc.HandleWebhook(payload, sign(payload)))
		assert.Equal(t, models.SubscriptionStatusCanceled, subRepo.subscriptions["sub_1"].Status)
	})

	t.Run("unknown subscription is acknowledged", func(t *testing.T) {
		subRepo := newFakeSubscriptionRepo()
		svc := newTestService(subRepo, nil)

		payload := deleteEvent(t, "evt_3", "sub_never_seen")
		assert.NoError(t, svc.HandleWebhook(payload, sign(payload)))
		assert.Empty(t, subRepo.deleted)
	})
}

func TestHandleWebhook_Rejections(t *testing.T) {
	t.Parallel()

	subRepo := newFakeSubscriptionRepo()
	svc := newTestService(subRepo, nil)
	payload := signedCheckoutEvent(t, "evt_1")

	t.Run("bad signature", func(t *testing.T) {
		err := svc.HandleWebhook(payload, SignPayload("whsec_wrong", payload, testNow))
		assert.ErrorIs(t, err, apperrors.ErrInvalidWebhookSignature)
		assert.Empty(t, subRepo.applied)
	})

	t.Run("stale signature", func(t *testing.T) {
		err := svc.HandleWebhook(payload, SignPayload(testWebhookSecret, payload, testNow.Add(-time.Hour)))
		assert.ErrorIs(t, err, apperrors.ErrInvalidWebhookSignature)
	})

	t.Run("missing event id", func(t *testing.T) {
		body := []byte(`{"type":"checkout.session.completed","data":{"object":{}}}`)
		err := svc.HandleWebhook(body, sign(body))
		assert.Error(t, err)
	})

	t.Run("unknown event type is acknowledged", func(t *testing.T) {
		body := []byte(`{"id":"evt_9","type":"invoice.paid","data":{"object":{}}}`)
		assert.NoError(t, svc.HandleWebhook(body, sign(body)))
	})
}

func TestCreateCheckout(t *testing.T) {
	t.Parallel()

	t.Run("records a pending transaction keyed by the session", func(t *testing.T) {
		subRepo := newFakeSubscriptionRepo()
		client := &fakeCheckoutClient{session: &CheckoutSession{ID: "cs_42", URL: "https://pay.example/cs_42"}}
		svc := newTestService(subRepo, client)

		resp, err := svc.CreateCheckout(context.Background(), "user-1")
		require.NoError(t, err)
		assert.Equal(t, "https://pay.example/cs_42", resp.CheckoutURL)
		assert.Equal(t, "cs_42", resp.SessionID)

		require.Len(t, subRepo.transactions, 1)
		txn := subRepo.transactions[0]
		assert.Equal(t, "cs_42", txn.CheckoutSessionID)
		assert.Equal(t, models.PaymentStatusPending, txn.Status)
		assert.Equal(t, 1, client.calls)
	})

	t.Run("unknown user", func(t *testing.T) {
		svc := newTestService(newFakeSubscriptionRepo(), &fakeCheckoutClient{})
		_, err := svc.CreateCheckout(context.Background(), "user-missing")
		assert.Error(t, err)
	})

	t.Run("provider failure surfaces as payment error", func(t *testing.T) {
		client := &fakeCheckoutClient{err: errors.New("connection refused")}
		svc := newTestService(newFakeSubscriptionRepo(), client)

		_, err := svc.CreateCheckout(context.Background(), "user-1")
		assert.ErrorIs(t, err, apperrors.ErrPaymentProviderError)
	})
}
