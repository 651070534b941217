package handlers

import (
	"net/http"

	"collabhub_backend/internal/services"
	"collabhub_backend/internal/services/dto"

	"github.com/gin-gonic/gin"
)

type ReviewHandler struct {
	*BaseHandler
	reviewService services.ReviewService
}

func NewReviewHandler(base *BaseHandler, reviewService services.ReviewService) *ReviewHandler {
	return &ReviewHandler{
		BaseHandler:   base,
		reviewService: reviewService,
	}
}

func (h *ReviewHandler) RegisterRoutes(r *gin.RouterGroup, authMW, adminMW gin.HandlerFunc) {
	// approved reviews are public, like the directory
	public := r.Group("/reviews")
	{
		public.GET("/users/:userId", h.ListForUser)
	}

	reviews := r.Group("/reviews")
	reviews.Use(authMW)
	{
		reviews.POST("", h.Create)
	}

	admin := r.Group("/admin/reviews")
	admin.Use(authMW, adminMW)
	{
		admin.GET("/pending", h.ListPending)
		admin.POST("/:reviewId/approve", h.Approve)
		admin.DELETE("/:reviewId", h.Reject)
	}
}

func (h *ReviewHandler) Create(c *gin.Context) {
	userID, ok := h.GetAndAuthorizeUserID(c)
	if !ok {
		return
	}

	var req dto.CreateReviewRequest
	if !h.BindAndValidateJSON(c, &req) {
		return
	}

	review, err := h.reviewService.Create(userID, &req)
	if err != nil {
		h.HandleServiceError(c, err)
		return
	}

	c.JSON(http.StatusCreated, review)
}

func (h *ReviewHandler) ListForUser(c *gin.Context) {
	page, pageSize := ParsePagination(c)

	resp, err := h.reviewService.ListForUser(c.Param("userId"), pageSize, (page-1)*pageSize)
	if err != nil {
		h.HandleServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, resp)
}

func (h *ReviewHandler) ListPending(c *gin.Context) {
	page, pageSize := ParsePagination(c)

	resp, err := h.reviewService.ListPending(pageSize, (page-1)*pageSize)
	if err != nil {
		h.HandleServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, resp)
}

func (h *ReviewHandler) Approve(c *gin.Context) {
	review, err := h.reviewService.Approve(c.Param("reviewId"))
	if err != nil {
		h.HandleServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, review)
}

func (h *ReviewHandler) Reject(c *gin.Context) {
	if err := h.reviewService.Reject(c.Param("reviewId")); err != nil {
		h.HandleServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"message": "Review rejected"})
}
