package main

import (
	"fmt"
	"net/http"
	"os"

	"tripledger/internal/config"
	"tripledger/internal/database"
	"tripledger/internal/export"
	"tripledger/internal/handlers"
	"tripledger/internal/ledger"
	"tripledger/internal/logger"
	"tripledger/internal/middleware"
	"tripledger/internal/notify"
	"tripledger/internal/services"
	"tripledger/internal/store/filestore"
	"tripledger/internal/store/gormstore"
	"tripledger/internal/validator"

	"github.com/gin-gonic/gin"
	"github.com/spf13/afero"
)

func main() {
	logger.Init(os.Getenv("ENV"), os.Getenv("LOG_FILE"))
	defer logger.Sync()

	if err := run(); err != nil {
		logger.Get().Fatalf("Fatal error: %v", err)
	}
}

func run() error {
	log := logger.Get()

	// Load configuration
	appConfig, err := config.Load()
	if err != nil {
		return fmt.Errorf("failed to load configuration: %w", err)
	}

	validator.Register()

	// Pick the storage backend. The relational backend carries the full
	// collaboration model; the local backend is a single-machine ledger and
	// exposes no profile or invitation routes.
	var (
		store          ledger.Store
		userService    services.UserServicer
		profileService services.ProfileServicer
		inviteService  services.InvitationServicer
	)

	switch appConfig.StorageBackend {
	case config.BackendPostgres:
		dbConfig, err := database.NewConfig()
		if err != nil {
			return fmt.Errorf("failed to load database configuration: %w", err)
		}
		dbManager, err := database.NewManager(dbConfig)
		if err != nil {
			return fmt.Errorf("failed to create database manager: %w", err)
		}
		if err := dbManager.RunMigrations(); err != nil {
			return fmt.Errorf("failed to run database migrations: %w", err)
		}

		db := dbManager.DB()
		store = gormstore.New(db)
		userService = services.NewUserService(db)
		profileService = services.NewProfileService(db)

		var notifier notify.InvitationNotifier = notify.Nop{}
		if appConfig.InviteWebhookURL != "" {
			notifier = notify.NewWebhook(appConfig.InviteWebhookURL)
		}
		inviteService = services.NewInvitationService(db, notifier)

	case config.BackendLocal:
		fileStore, err := filestore.New(afero.NewOsFs(), appConfig.DataDir)
		if err != nil {
			return fmt.Errorf("failed to open data directory: %w", err)
		}
		store = fileStore

	default:
		return fmt.Errorf("unknown storage backend: %s", appConfig.StorageBackend)
	}

	manager := ledger.NewManager(store)

	// Initialize handlers
	ledgerHandler := handlers.NewLedgerHandler(manager, profileService)
	exportHandler := handlers.NewExportHandler(ledgerHandler, export.NewService())

	// Initialize Gin router
	router := gin.New()
	router.Use(gin.Recovery())
	router.Use(middleware.RequestLogging())
	router.Use(middleware.ErrorHandler())

	// CORS middleware
	router.Use(func(c *gin.Context) {
		c.Writer.Header().Set("Access-Control-Allow-Origin", "*")
		c.Writer.Header().Set("Access-Control-Allow-Methods", "GET, POST, PUT, DELETE, OPTIONS")
		c.Writer.Header().Set("Access-Control-Allow-Headers", "Content-Type, Authorization")

		if c.Request.Method == "OPTIONS" {
			c.AbortWithStatus(http.StatusNoContent)
			return
		}

		c.Next()
	})

	// Health check endpoint
	router.GET("/api/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})

	// API v1 group
	v1 := router.Group("/api/v1")

	// Protected routes. The local backend has no accounts: every request runs
	// as the single local user instead of going through JWT auth.
	protected := v1.Group("/")
	if userService != nil {
		protected.Use(middleware.AuthMiddleware())

		authHandler := handlers.NewAuthHandler(userService)

		auth := v1.Group("/auth")
		auth.POST("/register", authHandler.Register)
		auth.POST("/login", authHandler.Login)
		auth.POST("/refresh", authHandler.Refresh)

		protected.GET("/profile", authHandler.GetProfile)
	} else {
		protected.Use(func(c *gin.Context) {
			c.Set("userID", "local")
			c.Next()
		})
	}

	// Ledger routes: snapshot plus mutations, all scoped by ?profile_id=
	protected.GET("/ledger", ledgerHandler.GetLedger)
	protected.POST("/ledger/reload", ledgerHandler.ReloadLedger)

	expenses := protected.Group("/expenses")
	expenses.POST("", ledgerHandler.CreateExpense)
	expenses.PUT("/:id", ledgerHandler.UpdateExpense)
	expenses.DELETE("/:id", ledgerHandler.DeleteExpense)

	protected.PUT("/budget", ledgerHandler.SetBudget)
	protected.DELETE("/budget", ledgerHandler.RemoveBudget)
	protected.PUT("/countdown", ledgerHandler.SetCountdown)
	protected.DELETE("/countdown", ledgerHandler.ClearCountdown)

	// Export routes
	protected.GET("/export/snapshot", exportHandler.ExportSnapshot)
	protected.GET("/export/spreadsheet", exportHandler.ExportSpreadsheet)

	// Collaboration routes, relational backend only
	if profileService != nil {
		profileHandler := handlers.NewProfileHandler(profileService, manager)
		invitationHandler := handlers.NewInvitationHandler(inviteService)

		profiles := protected.Group("/profiles")
		profiles.POST("", profileHandler.CreateProfile)
		profiles.GET("", profileHandler.GetProfiles)
		profiles.GET("/:id", profileHandler.GetProfile)
		profiles.DELETE("/:id", profileHandler.DeleteProfile)
		profiles.POST("/:id/invitations", invitationHandler.SendInvitation)
		profiles.GET("/:id/invitations", invitationHandler.GetProfileInvitations)

		invitations := protected.Group("/invitations")
		invitations.GET("", invitationHandler.GetMyInvitations)
		invitations.POST("/:id/accept", invitationHandler.AcceptInvitation)
		invitations.POST("/:id/decline", invitationHandler.DeclineInvitation)
	}

	log.Infof("Starting tripledger backend server on port %s", appConfig.Port)
	return router.Run(":" + appConfig.Port)
}
