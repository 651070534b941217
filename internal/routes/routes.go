package routes

import (
	"collabhub_backend/internal/handlers"
	"collabhub_backend/internal/logger"
	"collabhub_backend/internal/middleware"
	"collabhub_backend/internal/models"
	"collabhub_backend/ws"

	"github.com/gin-gonic/gin"
)

// AppHandlers bundles every HTTP handler for registration.
type AppHandlers struct {
	Auth    *handlers.AuthHandler
	OAuth   *handlers.OAuthHandler
	Profile *handlers.ProfileHandler
	Message *handlers.MessageHandler
	Review  *handlers.ReviewHandler
	Admin   *handlers.AdminHandler
	Billing *handlers.BillingHandler
}

// RegisterRoutes mounts the HTTP API and the websocket endpoint.
func RegisterRoutes(
	router *gin.Engine,
	appHandlers *AppHandlers,
	wsHandler *ws.Handler,
	authMW gin.HandlerFunc,
) {
	adminMW := middleware.RequireRoles(models.UserRoleAdmin)

	api := router.Group("/api/v1")
	{
		appHandlers.Auth.RegisterRoutes(api, authMW)
		appHandlers.OAuth.RegisterRoutes(api)
		appHandlers.Profile.RegisterRoutes(api, authMW)
		appHandlers.Message.RegisterRoutes(api, authMW)
		appHandlers.Review.RegisterRoutes(api, authMW, adminMW)
		appHandlers.Admin.RegisterRoutes(api, authMW, adminMW)
		appHandlers.Billing.RegisterRoutes(api, authMW)
	}

	router.GET("/ws", wsHandler.ServeWS)
	logger.Info("WebSocket route /ws registered")
}
