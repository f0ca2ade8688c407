package main

import (
	"fmt"
	"net/http"
	"os"

	"github.com/gin-gonic/gin"

	"tally/internal/config"
	"tally/internal/handlers"
	"tally/internal/ledger"
	"tally/internal/logger"
	"tally/internal/middleware"
	"tally/internal/validator"
)

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
	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("failed to load configuration: %w", err)
	}

	// Register custom binding validators
	validator.Register()

	// Create the ledger registry over the data directory
	registry, err := ledger.NewRegistry(cfg.DataDir, cfg.MigrationsURL)
	if err != nil {
		return fmt.Errorf("failed to create ledger registry: %w", err)
	}
	defer registry.Close()

	// Initialize handlers
	ledgerHandler := handlers.NewLedgerHandler(registry)
	accountHandler := handlers.NewAccountHandler()
	categoryHandler := handlers.NewCategoryHandler()
	tagHandler := handlers.NewTagHandler()
	transactionHandler := handlers.NewTransactionHandler()

	// Initialize Gin router
	router := gin.New()
	router.Use(gin.Recovery())
	router.Use(middleware.RequestLogging())
	router.Use(middleware.ErrorHandler())

	// CORS middleware
	router.Use(func(c *gin.Context) {
		c.Writer.Header().Set("Access-Control-Allow-Origin", "*")
		c.Writer.Header().Set("Access-Control-Allow-Methods", "GET, POST, PUT, PATCH, DELETE, OPTIONS")
		c.Writer.Header().Set("Access-Control-Allow-Headers", "Content-Type, "+middleware.LedgerHeader)

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

	// Ledger management operates on the registry, no selection required
	ledgers := v1.Group("/ledgers")
	ledgers.POST("", ledgerHandler.CreateLedger)
	ledgers.GET("", ledgerHandler.ListLedgers)

	// Everything below runs against the ledger named in the X-Ledger header
	scoped := v1.Group("/")
	scoped.Use(middleware.LedgerSelector(registry))

	// Account routes
	accounts := scoped.Group("/accounts")
	accounts.POST("", accountHandler.CreateAccount)
	accounts.GET("", accountHandler.ListAccounts)
	accounts.GET("/:id", accountHandler.GetAccount)
	accounts.PATCH("/:id", accountHandler.UpdateAccount)
	accounts.DELETE("/:id", accountHandler.DeleteAccount)

	// Category routes
	categories := scoped.Group("/categories")
	categories.POST("", categoryHandler.CreateCategory)
	categories.GET("", categoryHandler.ListCategories)
	categories.GET("/:id", categoryHandler.GetCategory)
	categories.PATCH("/:id", categoryHandler.UpdateCategory)
	categories.DELETE("/:id", categoryHandler.DeleteCategory)

	// Tag routes
	tags := scoped.Group("/tags")
	tags.POST("", tagHandler.CreateTag)
	tags.GET("", tagHandler.ListTags)
	tags.GET("/:id", tagHandler.GetTag)
	tags.PATCH("/:id", tagHandler.UpdateTag)
	tags.DELETE("/:id", tagHandler.DeleteTag)

	// Transaction routes
	transactions := scoped.Group("/transactions")
	transactions.POST("", transactionHandler.CreateTransaction)
	transactions.GET("", transactionHandler.ListTransactions)
	transactions.GET("/:id", transactionHandler.GetTransaction)
	transactions.PATCH("/:id", transactionHandler.UpdateTransaction)
	transactions.DELETE("/:id", transactionHandler.DeleteTransaction)
	transactions.POST("/batch-delete", transactionHandler.DeleteTransactions)
	scoped.POST("/import", transactionHandler.ImportStatement)

	log.Infof("Server is running on port %s", cfg.Port)
	return router.Run(":" + cfg.Port)
}
