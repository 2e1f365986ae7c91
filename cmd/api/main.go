package main

import (
	"context"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/joho/godotenv"

	"github.com/bonocatalog/backend/internal/config"
	"github.com/bonocatalog/backend/internal/handlers"
	"github.com/bonocatalog/backend/internal/middleware"
	"github.com/bonocatalog/backend/internal/models"
	"github.com/bonocatalog/backend/internal/services"
)

func main() {
	// Load environment variables
	if err := godotenv.Load(); err != nil {
		log.Println("No .env file found, using environment variables")
	}

	// Initialize configuration
	cfg := config.New()

	// Initialize Redis
	redisClient := models.InitRedis(cfg)
	defer redisClient.Close()

	// Initialize services
	storeService, err := services.NewStoreService(cfg)
	if err != nil {
		log.Fatalf("Failed to init job store: %v", err)
	}
	generationService := services.NewGenerationService(cfg)
	ingestService := services.NewIngestService(cfg, storeService, generationService)
	statusService := services.NewStatusService(storeService)
	catalogService := services.NewCatalogService(cfg, storeService)

	// Drive upload is optional: without credentials the endpoint reports
	// itself unconfigured instead of failing startup.
	var driveService *services.DriveService
	if cfg.DriveS3AccessKeyID != "" {
		driveService, err = services.NewDriveService(cfg)
		if err != nil {
			log.Fatalf("Failed to init drive service: %v", err)
		}
	} else {
		log.Println("Drive credentials not set, drive upload disabled")
	}

	// Setup Gin router
	if cfg.Env == "production" {
		gin.SetMode(gin.ReleaseMode)
	}

	router := gin.New()
	router.Use(gin.Logger())
	router.Use(gin.Recovery())
	router.Use(middleware.CORS(cfg))
	router.Use(middleware.RateLimiter(redisClient, cfg))
	router.Use(middleware.UploadRateLimit(redisClient, cfg))

	// Initialize handlers
	jobHandler := handlers.NewJobHandler(cfg, ingestService, storeService, statusService, catalogService, driveService)

	// Health check outside API group (no /api/v1 prefix)
	router.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "healthy"})
	})

	// Setup routes
	api := router.Group("/api/v1")
	{
		// Health check also available under /api/v1/health for compatibility
		api.GET("/health", func(c *gin.Context) {
			c.JSON(http.StatusOK, gin.H{"status": "healthy"})
		})

		// Catch-all OPTIONS handler for CORS preflight requests
		api.OPTIONS("/*path", func(c *gin.Context) {
			c.Status(http.StatusNoContent)
		})

		jobs := api.Group("/jobs")
		{
			jobs.POST("", jobHandler.CreateJob)
			jobs.GET("/:id/status", jobHandler.GetStatus)
			jobs.PUT("/:id/status", jobHandler.UpdateStatus)
			jobs.POST("/:id/catalog", jobHandler.AssembleCatalog)
			jobs.GET("/:id/download", jobHandler.Download)
			jobs.POST("/:id/drive", jobHandler.DriveUpload)
		}
	}

	// Start server
	srv := &http.Server{
		Addr:         ":" + cfg.Port,
		Handler:      router,
		ReadTimeout:  120 * time.Second, // 2 min for large image uploads
		WriteTimeout: 120 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	// Graceful shutdown
	go func() {
		log.Printf("Starting server on port %s", cfg.Port)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatalf("Failed to start server: %v", err)
		}
	}()

	// Wait for interrupt signal
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Println("Shutting down server...")

	// Graceful shutdown with timeout
	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := srv.Shutdown(ctx); err != nil {
		log.Fatalf("Server forced to shutdown: %v", err)
	}

	log.Println("Server exited")
}
