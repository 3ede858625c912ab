package main

import (
	"context"
	"log"

	"github.com/gin-gonic/gin"

	"taskforge/internal/config"
	"taskforge/internal/database"
	"taskforge/internal/handlers"
	"taskforge/internal/jwt"
	"taskforge/internal/logger"
	"taskforge/internal/middleware"
	"taskforge/internal/repository"
	"taskforge/internal/services"
	"taskforge/internal/storage"
)

func main() {
	// Load configuration
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}

	if err := logger.Initialize(cfg.LogLevel, cfg.GinMode != "release"); err != nil {
		log.Fatalf("Failed to initialize logger: %v", err)
	}

	// Set Gin mode
	gin.SetMode(cfg.GinMode)

	// Connect to database
	if err := database.Connect(cfg); err != nil {
		logger.Log.Fatalw("Failed to connect to database", "err", err)
	}

	// Run migrations
	if err := database.Migrate(); err != nil {
		logger.Log.Fatalw("Failed to run migrations", "err", err)
	}
	if err := database.AddIndexes(database.GetDB()); err != nil {
		logger.Log.Fatalw("Failed to create indexes", "err", err)
	}

	// Initialize blob storage
	blobs, err := storage.NewFromConfig(context.Background(), cfg)
	if err != nil {
		logger.Log.Fatalw("Failed to initialize blob storage", "err", err)
	}

	tokens := jwt.New(cfg.JWTSecret, cfg.JWTExpires)

	// Initialize repositories
	db := database.GetDB()
	taskRepo := repository.NewTaskRepository(db)
	attachmentRepo := repository.NewAttachmentRepository(db)
	userRepo := repository.NewUserRepository(db)

	// Initialize services
	userService := services.NewUserService(userRepo)
	taskService := services.NewTaskService(taskRepo, userRepo, attachmentRepo)
	attachmentService := services.NewAttachmentService(attachmentRepo, taskRepo, userRepo, blobs)

	// Initialize handlers
	authHandler := handlers.NewAuthHandler(userService, tokens)
	userHandler := handlers.NewUserHandler(userService)
	taskHandler := handlers.NewTaskHandler(taskService)
	attachmentHandler := handlers.NewAttachmentHandler(attachmentService)

	// Initialize Gin router
	r := gin.Default()

	// Health check endpoint
	r.GET("/health", func(c *gin.Context) {
		c.JSON(200, gin.H{
			"status": "ok",
		})
	})

	// API routes
	api := r.Group("/api")
	{
		// Auth routes (public except /me)
		auth := api.Group("/auth")
		{
			auth.POST("/register", authHandler.Register)
			auth.POST("/login", authHandler.Login)
			auth.GET("/me", middleware.RequireAuth(tokens), authHandler.GetCurrentUser)
		}

		// User routes (protected)
		users := api.Group("/users")
		users.Use(middleware.RequireAuth(tokens))
		{
			users.GET("", userHandler.ListUsers)
			users.GET("/:id", userHandler.GetUser)
			users.PATCH("/:id", userHandler.UpdateUser)
			users.POST("/:id/deactivate", userHandler.DeactivateUser)
			users.POST("/:id/activate", userHandler.ActivateUser)
		}

		// Task routes (protected)
		tasks := api.Group("/tasks")
		tasks.Use(middleware.RequireAuth(tokens))
		{
			tasks.GET("", taskHandler.ListTasks)
			tasks.POST("", taskHandler.CreateTask)
			tasks.GET("/root", taskHandler.GetRootTasks)
			tasks.GET("/all", taskHandler.ListAllTasks)
			tasks.GET("/details", taskHandler.ListAllTaskDetails)
			tasks.POST("/mock", taskHandler.InsertMock)
			tasks.GET("/:id", taskHandler.GetTask)
			tasks.PUT("/:id", taskHandler.UpdateTask)
			tasks.DELETE("/:id", taskHandler.DeleteTask)
			tasks.PATCH("/:id/complete", taskHandler.SetCompleted)
			tasks.GET("/:id/detail", taskHandler.GetTaskDetail)
			tasks.GET("/:id/subtasks", taskHandler.GetSubtasks)
			tasks.GET("/:id/subtasks/recursive", taskHandler.GetSubtasksRecursively)
			tasks.GET("/:id/with-subtasks", taskHandler.GetTaskWithSubtasks)
			tasks.POST("/:id/attachments/:attachmentId", taskHandler.LinkAttachment)
			tasks.DELETE("/:id/attachments/:attachmentId", taskHandler.UnlinkAttachment)
			tasks.DELETE("/:id/attachments", taskHandler.UnlinkAllAttachments)
		}

		// Attachment routes (protected)
		attachments := api.Group("/attachments")
		attachments.Use(middleware.RequireAuth(tokens))
		{
			attachments.POST("", attachmentHandler.Upload)
			attachments.POST("/task/:taskId", attachmentHandler.UploadForTask)
			attachments.GET("/task/:taskId", attachmentHandler.ListForTask)
			attachments.GET("/:id", attachmentHandler.GetInfo)
			attachments.GET("/:id/download", attachmentHandler.Download)
			attachments.POST("/:id/attach/:taskId", attachmentHandler.Attach)
			attachments.POST("/:id/detach", attachmentHandler.Detach)
			attachments.DELETE("/:id", attachmentHandler.Delete)
		}
	}

	// Start server
	if err := r.Run(cfg.Addr); err != nil {
		logger.Log.Fatalw("Server stopped", "err", err)
	}
}
