package main

import (
	"fmt"
	"net/http"
	"os"

	"hearth/internal/auth"
	"hearth/internal/config"
	"hearth/internal/database"
	"hearth/internal/handlers"
	"hearth/internal/logger"
	"hearth/internal/middleware"
	"hearth/internal/services"
	"hearth/internal/validator"

	"github.com/gin-gonic/gin"
	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"

	_ "hearth/internal/docs" // Import swagger docs
)

// @title           Hearth API
// @version         1.0
// @description     Hearth is a household finance tracker: shared and personal accounts, categorized transactions, and atomic transfers between accounts.
// @termsOfService  http://swagger.io/terms/

// @host      localhost:8080
// @BasePath  /api/v1

// @securityDefinitions.apikey BearerAuth
// @in header
// @name Authorization
// @description Type "Bearer" followed by a space and JWT token.

func main() {
	// Initialize logger (use ENV var if available, default to development)
	logger.Init(os.Getenv("ENV"))
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

	// Register custom request validators
	validator.Register()

	// Initialize database configuration
	dbConfig, err := database.NewConfig()
	if err != nil {
		return fmt.Errorf("failed to load database configuration: %w", err)
	}

	// Create database manager
	dbManager, err := database.NewManager(dbConfig)
	if err != nil {
		return fmt.Errorf("failed to create database manager: %w", err)
	}

	// Run migrations
	if err := dbManager.RunMigrations(); err != nil {
		return fmt.Errorf("failed to run database migrations: %w", err)
	}

	// Initialize services
	db := dbManager.DB()
	userService := services.NewUserService(db)
	householdService := services.NewHouseholdService(db)
	accountService := services.NewAccountService(db)
	categoryService := services.NewCategoryService(db)
	transactionService := services.NewTransactionService(db, accountService)
	transferService := services.NewTransferService(db, accountService, categoryService)

	// Token issuer shared by the auth handler and the credential resolvers
	issuer := &auth.Issuer{
		Secret:     []byte(appConfig.JWTSecret),
		AccessTTL:  appConfig.AccessTokenTTL,
		RefreshTTL: appConfig.RefreshTokenTTL,
		SessionTTL: appConfig.SessionTTL,
	}

	// Initialize handlers
	authHandler := handlers.NewAuthHandler(userService, issuer)
	householdHandler := handlers.NewHouseholdHandler(householdService)
	accountHandler := handlers.NewAccountHandler(accountService)
	categoryHandler := handlers.NewCategoryHandler(categoryService)
	transactionHandler := handlers.NewTransactionHandler(transactionService)
	transferHandler := handlers.NewTransferHandler(transferService)

	// Initialize Gin router
	router := gin.New()
	router.Use(gin.Recovery())
	router.Use(middleware.RequestLogging())
	router.Use(middleware.ErrorHandler())

	// CORS middleware
	router.Use(func(c *gin.Context) {
		c.Writer.Header().Set("Access-Control-Allow-Origin", "*")
		c.Writer.Header().Set("Access-Control-Allow-Methods", "GET, POST, PUT, DELETE, OPTIONS")
		c.Writer.Header().Set("Access-Control-Allow-Headers", "Content-Type, Authorization, "+middleware.TenantHeader)

		if c.Request.Method == "OPTIONS" {
			c.AbortWithStatus(http.StatusNoContent)
			return
		}

		c.Next()
	})

	// Swagger documentation
	router.GET("/swagger/*any", ginSwagger.WrapHandler(swaggerFiles.Handler))

	// Health check endpoint
	router.GET("/api/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})

	// API v1 group
	v1 := router.Group("/api/v1")

	// Public routes
	authRoutes := v1.Group("/auth")
	authRoutes.POST("/register", authHandler.Register)
	authRoutes.POST("/login", authHandler.Login)
	authRoutes.POST("/refresh", authHandler.Refresh)

	// Authenticated routes. The session cookie is consulted before the
	// Authorization header.
	protected := v1.Group("/")
	protected.Use(middleware.Authenticate(
		&auth.SessionResolver{Secret: issuer.Secret},
		&auth.BearerResolver{Secret: issuer.Secret},
	))

	protected.POST("/auth/logout", authHandler.Logout)
	protected.GET("/profile", authHandler.GetProfile)

	// Household routes that do not require a resolved household
	protected.POST("/households", householdHandler.CreateHousehold)
	protected.GET("/households", householdHandler.ListHouseholds)
	protected.POST("/invitations/accept", householdHandler.AcceptInvitation)

	// Household-scoped routes. Every request carries X-Household-ID and the
	// caller must be a member.
	scoped := protected.Group("/")
	scoped.Use(middleware.RequireHousehold(householdService))

	scoped.PUT("/households/current", householdHandler.RenameHousehold)
	scoped.GET("/households/current/members", householdHandler.GetMembers)
	scoped.POST("/households/current/invitations", householdHandler.CreateInvitation)

	// Account group routes
	accountGroups := scoped.Group("/account-groups")
	accountGroups.POST("", accountHandler.CreateAccountGroup)
	accountGroups.GET("", accountHandler.ListAccountGroups)
	accountGroups.DELETE("/:id", accountHandler.DeleteAccountGroup)

	// Account routes
	accounts := scoped.Group("/accounts")
	accounts.POST("", accountHandler.CreateAccount)
	accounts.GET("", accountHandler.ListAccounts)
	accounts.GET("/:id", accountHandler.GetAccount)
	accounts.PUT("/:id", accountHandler.UpdateAccount)
	accounts.DELETE("/:id", accountHandler.DeleteAccount)
	accounts.GET("/:id/balance", accountHandler.GetAccountBalance)
	accounts.GET("/:id/transactions", transactionHandler.ListAccountTransactions)

	// Category routes
	categories := scoped.Group("/categories")
	categories.POST("", categoryHandler.CreateCategory)
	categories.GET("", categoryHandler.ListCategories)
	categories.GET("/:id", categoryHandler.GetCategory)
	categories.PUT("/:id", categoryHandler.UpdateCategory)
	categories.DELETE("/:id", categoryHandler.DeleteCategory)

	// Transaction routes
	transactions := scoped.Group("/transactions")
	transactions.POST("", transactionHandler.CreateTransaction)
	transactions.GET("", transactionHandler.ListTransactions)
	transactions.GET("/:id", transactionHandler.GetTransaction)
	transactions.PUT("/:id", transactionHandler.UpdateTransaction)
	transactions.DELETE("/:id", transactionHandler.DeleteTransaction)

	// Transfer routes
	transfers := scoped.Group("/transfers")
	transfers.POST("", transferHandler.CreateTransfer)
	transfers.GET("/:id", transferHandler.GetTransfer)
	transfers.DELETE("/:id", transferHandler.DeleteTransfer)

	log.Infof("Starting Hearth backend server on port %s", appConfig.Port)
	log.Infof("Swagger documentation available at http://localhost:%s/swagger/index.html", appConfig.Port)
	return router.Run(":" + appConfig.Port)
}
