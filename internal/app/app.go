package app

import (
	"context"
	"errors"
	"fmt"
	"time"

	"collabhub_backend/internal/auth"
	"collabhub_backend/internal/config"
	"collabhub_backend/internal/email"
	"collabhub_backend/internal/handlers"
	"collabhub_backend/internal/imageprocessor"
	"collabhub_backend/internal/logger"
	"collabhub_backend/internal/middleware"
	"collabhub_backend/internal/models"
	"collabhub_backend/internal/repositories"
	"collabhub_backend/internal/routes"
	"collabhub_backend/internal/services"
	"collabhub_backend/internal/services/billing"
	"collabhub_backend/internal/storage"
	"collabhub_backend/internal/validator"
	"collabhub_backend/internal/workers"
	"collabhub_backend/ws"

	"github.com/gin-gonic/gin"
	"github.com/redis/go-redis/v9"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
)

// Run loads configuration, connects to the database and starts the
// HTTP server. It blocks until the server exits.
func Run() {
	config.LoadConfig()
	cfg := config.AppConfig

	logger.Init(cfg.Server.Env)
	logger.Info("Logger initialized", "env", cfg.Server.Env)

	gormDB, err := gorm.Open(postgres.Open(cfg.Database.DSN), &gorm.Config{TranslateError: true})
	if err != nil {
		logger.Fatal("Failed to connect to GORM", "error", err)
	}
	sqlDB, err := gormDB.DB()
	if err != nil {
		logger.Fatal("Failed to get *sql.DB from GORM", "error", err)
	}
	if err = sqlDB.Ping(); err != nil {
		logger.Fatal("Database unavailable", "error", err)
	}
	logger.Info("Database connected")

	if err := migrate(gormDB); err != nil {
		logger.Fatal("Migration failed", "error", err)
	}

	if err := seedFirstAdmin(gormDB, cfg); err != nil {
		logger.Fatal("Failed to seed first admin user", "error", err)
	}

	ginRouter := SetupRouter(cfg, gormDB)

	address := fmt.Sprintf("%s:%d", cfg.Server.Host, cfg.Server.Port)
	logger.Info(fmt.Sprintf("🚀 Server starting on %s", address))
	if err := ginRouter.Run(address); err != nil {
		logger.Fatal("Server startup error", "error", err)
	}
}

// SetupRouter wires repositories, services, handlers and background
// workers and returns a ready-to-serve gin engine.
func SetupRouter(cfg *config.Config, gormDB *gorm.DB) *gin.Engine {
	storageInstance, err := storage.NewStorage(storage.Config{
		Type:      cfg.Storage.Type,
		BasePath:  cfg.Storage.BasePath,
		BaseURL:   cfg.Storage.BaseURL,
		Bucket:    cfg.Storage.Bucket,
		Region:    cfg.Storage.Region,
		AccessKey: cfg.Storage.AccessKey,
		SecretKey: cfg.Storage.SecretKey,
		Endpoint:  cfg.Storage.Endpoint,
	})
	if err != nil {
		logger.Fatal("Failed to initialize storage", "error", err)
	}
	logger.Info("Storage initialized", "type", cfg.Storage.Type)

	tokens := auth.NewTokenManager(cfg.JWT.Secret, time.Duration(cfg.JWT.TTL)*time.Minute)

	wsManager := setupWebSocket(cfg)
	container := initializeServices(cfg, gormDB, storageInstance, tokens, wsManager)
	appHandlers := initializeHandlers(cfg, container)

	wsHandler := ws.NewHandler(wsManager, tokens)

	ginRouter := initializeGinRouter(cfg)
	if cfg.Storage.Type == "local" {
		ginRouter.Static("/api/v1/files", cfg.Storage.BasePath)
	}

	routes.RegisterRoutes(ginRouter, appHandlers, wsHandler, middleware.AuthMiddleware(tokens))

	worker := workers.NewSubscriptionWorker(container.SubscriptionRepo, container.UserRepo)
	worker.Start(context.Background())

	return ginRouter
}

// serviceContainer keeps the wired services (and the repositories the
// background worker needs) in one place.
type serviceContainer struct {
	AuthService    services.AuthService
	ProfileService services.ProfileService
	MessageService services.MessageService
	ReviewService  services.ReviewService
	AdminService   services.AdminService
	BillingService billing.Service

	UserRepo         repositories.UserRepository
	SubscriptionRepo repositories.SubscriptionRepository
}

func setupWebSocket(cfg *config.Config) *ws.Manager {
	var fanout *ws.Fanout
	if cfg.Redis.Addr != "" {
		rdb := redis.NewClient(&redis.Options{
			Addr:     cfg.Redis.Addr,
			Password: cfg.Redis.Password,
			DB:       cfg.Redis.DB,
		})
		fanout = ws.NewFanout(rdb)
		logger.Info("WebSocket fanout via Redis", "addr", cfg.Redis.Addr)
	} else {
		logger.Warn("Redis not configured, WebSocket delivery is single-instance only")
	}

	manager := ws.NewManager(fanout)
	go manager.Run()
	return manager
}

func initializeServices(
	cfg *config.Config,
	gormDB *gorm.DB,
	storageInstance storage.Storage,
	tokens *auth.TokenManager,
	wsManager *ws.Manager,
) *serviceContainer {
	emailProvider := setupEmailProvider(cfg)

	userRepo := repositories.NewUserRepository(gormDB)
	profileRepo := repositories.NewProfileRepository(gormDB)
	messageRepo := repositories.NewMessageRepository(gormDB)
	reviewRepo := repositories.NewReviewRepository(gormDB)
	subRepo := repositories.NewSubscriptionRepository(gormDB)

	processor := imageprocessor.NewProcessor(cfg.Upload.ImageQuality)

	checkoutClient := billing.NewHTTPCheckoutClient(billing.Config{
		APIBaseURL:   cfg.Billing.APIBaseURL,
		SecretKey:    cfg.Billing.SecretKey,
		PremiumPrice: cfg.Billing.PremiumPrice,
		Currency:     cfg.Billing.Currency,
		SuccessURL:   cfg.Billing.SuccessURL,
		CancelURL:    cfg.Billing.CancelURL,
	})

	refreshTTL := time.Duration(cfg.JWT.RefreshTTL) * time.Hour

	return &serviceContainer{
		AuthService: services.NewAuthService(
			userRepo, tokens, refreshTTL, emailProvider, cfg.Frontend.BaseURL,
		),
		ProfileService: services.NewProfileService(
			profileRepo, userRepo, storageInstance, processor, cfg.Upload.MaxAvatarSize,
		),
		MessageService: services.NewMessageService(
			messageRepo, profileRepo, storageInstance, wsManager,
			int64(cfg.Messaging.FreeMessageLimit), cfg.Upload.MaxFileSize,
			cfg.Upload.AllowedTypes,
		),
		ReviewService: services.NewReviewService(
			reviewRepo, profileRepo, emailProvider,
		),
		AdminService: services.NewAdminService(
			userRepo, profileRepo, messageRepo, reviewRepo, subRepo,
			cfg.Billing.PremiumPrice,
		),
		BillingService: billing.NewService(
			subRepo, userRepo, profileRepo, checkoutClient, emailProvider,
			cfg.Billing.WebhookSecret, cfg.Billing.PremiumPrice, cfg.Billing.Currency,
		),

		UserRepo:         userRepo,
		SubscriptionRepo: subRepo,
	}
}

func setupEmailProvider(cfg *config.Config) email.Provider {
	if cfg.Email.SMTPHost == "" {
		logger.Warn("SMTP not configured, outbound email is mocked")
		return email.NewMockProvider()
	}

	smtpConfig := email.DefaultConfig()
	smtpConfig.Host = cfg.Email.SMTPHost
	smtpConfig.Port = cfg.Email.SMTPPort
	smtpConfig.Username = cfg.Email.SMTPUsername
	smtpConfig.Password = cfg.Email.SMTPPassword
	smtpConfig.FromEmail = cfg.Email.FromEmail
	smtpConfig.FromName = cfg.Email.FromName
	smtpConfig.UseTLS = cfg.Email.UseTLS

	return email.NewSMTPProvider(smtpConfig, email.NewTemplateManager())
}

func initializeHandlers(cfg *config.Config, container *serviceContainer) *routes.AppHandlers {
	base := handlers.NewBaseHandler(validator.New())

	return &routes.AppHandlers{
		Auth: handlers.NewAuthHandler(base, container.AuthService),
		OAuth: handlers.NewOAuthHandler(
			base, container.AuthService,
			cfg.Google.ClientID, cfg.Google.ClientSecret, cfg.Google.RedirectURL,
			cfg.Frontend.BaseURL,
		),
		Profile: handlers.NewProfileHandler(base, container.ProfileService),
		Message: handlers.NewMessageHandler(base, container.MessageService),
		Review:  handlers.NewReviewHandler(base, container.ReviewService),
		Admin:   handlers.NewAdminHandler(base, container.AdminService),
		Billing: handlers.NewBillingHandler(base, container.BillingService),
	}
}

func initializeGinRouter(cfg *config.Config) *gin.Engine {
	if cfg.Server.Env == "production" {
		gin.SetMode(gin.ReleaseMode)
	}

	r := gin.New()
	r.Use(gin.Recovery())
	r.Use(middleware.RequestIDMiddleware())
	r.Use(middleware.LoggingMiddleware())
	r.Use(middleware.CORSMiddleware(cfg.Frontend.BaseURL))

	r.GET("/health", func(c *gin.Context) {
		c.JSON(200, gin.H{"status": "ok"})
	})

	return r
}

func migrate(db *gorm.DB) error {
	// primary keys default to uuid_generate_v4()
	if err := db.Exec(`CREATE EXTENSION IF NOT EXISTS "uuid-ossp"`).Error; err != nil {
		return err
	}
	return db.AutoMigrate(
		&models.User{},
		&models.RefreshToken{},
		&models.Profile{},
		&models.Message{},
		&models.Review{},
		&models.Subscription{},
		&models.PaymentTransaction{},
		&models.WebhookEvent{},
	)
}

// seedFirstAdmin creates the admin account from config on first boot.
// Without it a fresh deployment would have no way to reach the admin
// console.
func seedFirstAdmin(db *gorm.DB, cfg *config.Config) error {
	if cfg.Admin.Email == "" || cfg.Admin.Password == "" {
		logger.Warn("Admin credentials not configured, skipping admin seeding")
		return nil
	}

	var existing models.User
	err := db.Where("email = ?", cfg.Admin.Email).First(&existing).Error
	if err == nil {
		return nil
	}
	if !errors.Is(err, gorm.ErrRecordNotFound) {
		return err
	}

	hashed, err := auth.HashPassword(cfg.Admin.Password)
	if err != nil {
		return err
	}

	return db.Transaction(func(tx *gorm.DB) error {
		admin := models.User{
			Email:        cfg.Admin.Email,
			PasswordHash: hashed,
			Role:         models.UserRoleAdmin,
			Status:       models.UserStatusActive,
		}
		if err := tx.Create(&admin).Error; err != nil {
			return err
		}

		profile := models.Profile{
			UserID:       admin.ID,
			Email:        admin.Email,
			Name:         "Administrator",
			Role:         "Other",
			Availability: models.AvailabilityUnavailable,
		}
		if err := tx.Create(&profile).Error; err != nil {
			return err
		}

		logger.Info("First admin user seeded", "email", cfg.Admin.Email)
		return nil
	})
}
