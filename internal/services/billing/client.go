package billing

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"
)

// CheckoutSession is the provider's hosted payment page handle.
type CheckoutSession struct {
	ID  string `json:"id"`
	URL string `json:"url"`
}

// CheckoutClient talks to the payment provider's API.
type CheckoutClient interface {
	// CreateCheckoutSession opens a hosted checkout for the premium
	// plan. The user ID travels as the client reference so the
	// webhook can attribute the payment.
	CreateCheckoutSession(ctx context.Context, userID, customerEmail string) (*CheckoutSession, error)
}

// Config for the provider API.
type Config struct {
	APIBaseURL   string
	SecretKey    string
	PremiumPrice float64
	Currency     string
	SuccessURL   string
	CancelURL    string
}

// HTTPCheckoutClient is the live provider client.
type HTTPCheckoutClient struct {
	cfg        Config
	httpClient *http.Client
}

func NewHTTPCheckoutClient(cfg Config) *HTTPCheckoutClient {
	return &HTTPCheckoutClient{
		cfg: cfg,
		httpClient: &http.Client{
			Timeout: 15 * time.Second,
		},
	}
}

func (c *HTTPCheckoutClient) CreateCheckoutSession(ctx context.Context, userID, customerEmail string) (*CheckoutSession, error) {
	body := map[string]interface{}{
		"mode":                "subscription",
		"client_reference_id": userID,
		"customer_email":      customerEmail,
		"success_url":         c.cfg.SuccessURL,
		"cancel_url":          c.cfg.CancelURL,
		"line_items": []map[string]interface{}{
			{
				"quantity": 1,
				"price_data": map[string]interface{}{
					"currency":    c.cfg.Currency,
					"unit_amount": int64(c.cfg.PremiumPrice * 100),
					"recurring":   map[string]string{"interval": "month"},
					"product_data": map[string]string{
						"name": "CollabHub Premium",
					},
				},
			},
		},
	}

	payload, err := json.Marshal(body)
	if err != nil {
		return nil, fmt.Errorf("failed to encode checkout request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost,
		c.cfg.APIBaseURL+"/v1/checkout/sessions", bytes.NewReader(payload))
	if err != nil {
		return nil, fmt.Errorf("failed to build checkout request: %w", err)
	}
	req.Header.Set("Authorization", "Bearer "+c.cfg.SecretKey)
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("checkout request failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		data, _ := io.ReadAll(io.LimitReader(resp.Body, 4096))
		return nil, fmt.Errorf("checkout request returned %d: %s", resp.StatusCode, string(data))
	}

	var session CheckoutSession
	if err := json.NewDecoder(resp.Body).Decode(&session); err != nil {
		return nil, fmt.Errorf("failed to decode checkout response: %w", err)
	}
	if session.ID == "" || session.URL == "" {
		return nil, fmt.Errorf("checkout response missing session fields")
	}

	return &session, nil
}
