package handlers

import (
	"net/http"

	"collabhub_backend/internal/models"
	"collabhub_backend/internal/services"
	"collabhub_backend/internal/services/dto"

	"github.com/gin-gonic/gin"
)

type AdminHandler struct {
	*BaseHandler
	adminService services.AdminService
}

func NewAdminHandler(base *BaseHandler, adminService services.AdminService) *AdminHandler {
	return &AdminHandler{
		BaseHandler:  base,
		adminService: adminService,
	}
}

func (h *AdminHandler) RegisterRoutes(r *gin.RouterGroup, authMW, adminMW gin.HandlerFunc) {
	admin := r.Group("/admin")
	admin.Use(authMW, adminMW)
	{
		admin.GET("/stats", h.GetStats)
		admin.GET("/users", h.ListUsers)
		admin.PUT("/users/:userId/featured", h.SetFeatured)
		admin.PUT("/users/:userId/verified", h.SetVerified)
		admin.PUT("/users/:userId/premium", h.SetPremium)
		admin.PUT("/users/:userId/role", h.UpdateRole)
		admin.DELETE("/users/:userId", h.DeleteUser)
	}
}

func (h *AdminHandler) GetStats(c *gin.Context) {
	stats, err := h.adminService.GetStats()
	if err != nil {
		h.HandleServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, stats)
}

func (h *AdminHandler) ListUsers(c *gin.Context) {
	page, pageSize := ParsePagination(c)

	resp, err := h.adminService.ListUsers(page, pageSize)
	if err != nil {
		h.HandleServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, resp)
}

func (h *AdminHandler) SetFeatured(c *gin.Context) {
	h.setFlag(c, h.adminService.SetFeatured)
}

func (h *AdminHandler) SetVerified(c *gin.Context) {
	h.setFlag(c, h.adminService.SetVerified)
}

func (h *AdminHandler) SetPremium(c *gin.Context) {
	h.setFlag(c, h.adminService.SetPremium)
}

func (h *AdminHandler) setFlag(c *gin.Context, apply func(userID string, value bool) error) {
	var req dto.ToggleFlagRequest
	if !h.BindAndValidateJSON(c, &req) {
		return
	}

	if err := apply(c.Param("userId"), req.Value); err != nil {
		h.HandleServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"message": "Updated"})
}

func (h *AdminHandler) UpdateRole(c *gin.Context) {
	actorID, ok := h.GetAndAuthorizeUserID(c)
	if !ok {
		return
	}

	var req dto.UpdateRoleRequest
	if !h.BindAndValidateJSON(c, &req) {
		return
	}

	if err := h.adminService.UpdateRole(actorID, c.Param("userId"), models.UserRole(req.Role)); err != nil {
		h.HandleServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"message": "Role updated"})
}

func (h *AdminHandler) DeleteUser(c *gin.Context) {
	actorID, ok := h.GetAndAuthorizeUserID(c)
	if !ok {
		return
	}

	if err := h.adminService.DeleteUser(actorID, c.Param("userId")); err != nil {
		h.HandleServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"message": "User deleted"})
}
