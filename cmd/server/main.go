package main

import (
	"log"
	"net/http"
	"strings"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"

	"github.com/codesolution/pmt/internal/config"
	"github.com/codesolution/pmt/internal/database"
	"github.com/codesolution/pmt/internal/handlers"
	"github.com/codesolution/pmt/internal/middleware"
	"github.com/codesolution/pmt/internal/repository"
	"github.com/codesolution/pmt/internal/services"
)

func main() {
	cfg := config.Load()

	gin.SetMode(cfg.GinMode)

	if err := database.Connect(cfg); err != nil {
		log.Fatalf("Failed to connect to database: %v", err)
	}
	if err := database.Migrate(); err != nil {
		log.Fatalf("Failed to migrate database: %v", err)
	}

	db := database.GetDB()
	if cfg.DBDriver == "postgres" {
		if err := database.AddIndexes(db); err != nil {
			log.Printf("Failed to add indexes: %v", err)
		}
	}

	userRepo := repository.NewUserRepository(db)
	projectRepo := repository.NewProjectRepository(db)
	taskRepo := repository.NewTaskRepository(db)
	notifRepo := repository.NewNotificationRepository(db)

	mailer := services.NewLogMailer()
	authService := services.NewAuthService(userRepo)
	projectService := services.NewProjectService(projectRepo, userRepo, mailer)
	taskService := services.NewTaskService(taskRepo, projectRepo, userRepo, notifRepo, mailer)
	notificationService := services.NewNotificationService(notifRepo)

	authHandler := handlers.NewAuthHandler(authService)
	userHandler := handlers.NewUserHandler(authService)
	projectHandler := handlers.NewProjectHandler(projectService)
	taskHandler := handlers.NewTaskHandler(taskService)
	notificationHandler := handlers.NewNotificationHandler(notificationService)

	router := gin.New()
	router.Use(gin.Recovery())
	router.Use(middleware.RequestID())
	router.Use(cors.New(cors.Config{
		AllowOrigins:     strings.Split(cfg.CORSOrigins, ","),
		AllowMethods:     []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowHeaders:     []string{"Origin", "Content-Type", "Accept", "X-User-Id", "X-Request-Id"},
		ExposeHeaders:    []string{"X-Request-Id"},
		AllowCredentials: true,
		MaxAge:           12 * time.Hour,
	}))

	router.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})

	api := router.Group("/api")

	auth := api.Group("/auth")
	{
		auth.POST("/register", authHandler.Register)
		auth.POST("/login", authHandler.Login)
	}

	authenticated := api.Group("")
	authenticated.Use(middleware.RequireIdentity(userRepo))
	{
		authenticated.GET("/users", userHandler.ListUsers)
		authenticated.GET("/users/:id", userHandler.GetUser)

		projects := authenticated.Group("/projects")
		{
			projects.GET("", projectHandler.ListProjects)
			projects.POST("", projectHandler.CreateProject)
			projects.GET("/member/:userId", projectHandler.ListProjectsForMember)
			projects.GET("/:id", projectHandler.GetProject)
			projects.PUT("/:id", projectHandler.UpdateProject)
			projects.DELETE("/:id", projectHandler.DeleteProject)
			projects.POST("/:id/invite", projectHandler.InviteMember)
			projects.GET("/:id/members", projectHandler.ListMembers)
			projects.PUT("/:id/members/:userId/role", projectHandler.UpdateMemberRole)
			projects.DELETE("/:id/members/:userId", projectHandler.RemoveMember)
		}

		tasks := authenticated.Group("/tasks")
		{
			tasks.GET("", taskHandler.ListTasks)
			tasks.POST("", taskHandler.CreateTask)
			tasks.GET("/project/:projectId", taskHandler.ListTasksByProject)
			tasks.GET("/assigned/:userId", taskHandler.ListTasksByAssignedUser)
			tasks.GET("/:id", taskHandler.GetTask)
			tasks.PUT("/:id", taskHandler.UpdateTask)
			tasks.DELETE("/:id", taskHandler.DeleteTask)
			tasks.POST("/:id/assign", taskHandler.AssignTask)
			tasks.GET("/:id/history", taskHandler.TaskHistory)
		}

		notifications := authenticated.Group("/notifications")
		{
			notifications.GET("", notificationHandler.ListNotifications)
			notifications.PUT("/:id/read", notificationHandler.MarkNotificationRead)
		}
	}

	log.Printf("Server starting on port %s", cfg.ServerPort)
	if err := router.Run(":" + cfg.ServerPort); err != nil {
		log.Fatalf("Failed to start server: %v", err)
	}
}
