package handlers

import (
	"io"
	"net/http"

	"collabhub_backend/internal/services/billing"
	"collabhub_backend/pkg/apperrors"

	"github.com/gin-gonic/gin"
)

// provider events are small JSON payloads
const maxWebhookBody = 1 << 20

type BillingHandler struct {
	*BaseHandler
	billingService billing.Service
}

func NewBillingHandler(base *BaseHandler, billingService billing.Service) *BillingHandler {
	return &BillingHandler{
		BaseHandler:    base,
		billingService: billingService,
	}
}

func (h *BillingHandler) RegisterRoutes(r *gin.RouterGroup, authMW gin.HandlerFunc) {
	// the provider calls this unauthenticated; the signature is the auth
	r.POST("/billing/webhook", h.Webhook)

	billingGroup := r.Group("/billing")
	billingGroup.Use(authMW)
	{
		billingGroup.POST("/checkout", h.CreateCheckout)
		billingGroup.GET("/subscription", h.GetSubscription)
		billingGroup.GET("/transactions", h.ListTransactions)
	}
}

func (h *BillingHandler) CreateCheckout(c *gin.Context) {
	userID, ok := h.GetAndAuthorizeUserID(c)
	if !ok {
		return
	}

	resp, err := h.billingService.CreateCheckout(c.Request.Context(), userID)
	if err != nil {
		h.HandleServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, resp)
}

func (h *BillingHandler) Webhook(c *gin.Context) {
	payload, err := io.ReadAll(io.LimitReader(c.Request.Body, maxWebhookBody))
	if err != nil {
		apperrors.HandleError(c, apperrors.NewBadRequestError("Unreadable webhook body"))
		return
	}

	signature := c.GetHeader("Webhook-Signature")
	if err := h.billingService.HandleWebhook(payload, signature); err != nil {
		h.HandleServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"received": true})
}

func (h *BillingHandler) GetSubscription(c *gin.Context) {
	userID, ok := h.GetAndAuthorizeUserID(c)
	if !ok {
		return
	}

	sub, err := h.billingService.GetSubscription(userID)
	if err != nil {
		h.HandleServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, sub)
}

func (h *BillingHandler) ListTransactions(c *gin.Context) {
	userID, ok := h.GetAndAuthorizeUserID(c)
	if !ok {
		return
	}

	page, pageSize := ParsePagination(c)
	txns, err := h.billingService.ListTransactions(userID, pageSize, (page-1)*pageSize)
	if err != nil {
		h.HandleServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"transactions": txns})
}
