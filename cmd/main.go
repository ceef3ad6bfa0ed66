package main

import (
	"context"
	"flag"
	"os"

	"taskpoints-service/internal/chat"
	"taskpoints-service/internal/handler"
	"taskpoints-service/internal/middleware"
	"taskpoints-service/internal/model"
	"taskpoints-service/internal/repository"
	"taskpoints-service/internal/service"
	"taskpoints-service/internal/store"
	"taskpoints-service/pkg/config"
	"taskpoints-service/pkg/database"
	"taskpoints-service/pkg/jwtutil"
	"taskpoints-service/pkg/logger"
	"taskpoints-service/prometheus"

	"github.com/labstack/echo/v4"
	echomiddleware "github.com/labstack/echo/v4/middleware"
	"go.uber.org/zap"
)

func main() {
	bootstrapSuperAdmin := flag.Bool("bootstrap-superadmin", false, "create the super-admin account from SUPERADMIN_* env vars and exit")
	flag.Parse()

	// Load configuration from .env file and environment variables
	cfg, err := config.Load()
	if err != nil {
		panic("Failed to load configuration: " + err.Error())
	}

	// Initialize logger with config
	logger.InitLogger(cfg)
	log := logger.GetLogger()
	log.Info("Starting taskpoints service...", zap.String("environment", cfg.Server.Env))

	// Initialize database
	if err := database.Initialize(&cfg.DB); err != nil {
		log.Fatal("Failed to initialize database", zap.Error(err))
	}
	log.Info("Database connection established")

	// Initialize JWT utility
	jwtutil.Initialize(&cfg.JWT)
	log.Info("JWT utility initialized")

	db := database.GetDB()

	// Repositories
	tenantRepo := repository.NewTenantRepository(db)
	userRepo := repository.NewUserRepository(db)
	taskRepo := repository.NewTaskRepository(db)
	joinRepo := repository.NewJoinRequestRepository(db)
	messageRepo := repository.NewMessageRepository(db)

	// Services
	tenantSvc := service.NewTenantService(tenantRepo, log)
	authSvc := service.NewAuthService(userRepo, tenantSvc, log)

	if *bootstrapSuperAdmin {
		runBootstrap(authSvc, log)
		return
	}

	// Redis backs the leaderboard cache
	redisClient := store.NewRedisClient(&cfg.Redis)
	if err := store.Ping(context.Background(), redisClient); err != nil {
		log.Fatal("Failed to connect to redis", zap.Error(err))
	}
	log.Info("Redis connection established", zap.String("addr", cfg.Redis.Addr))

	hub := chat.NewHub()

	leaderboardSvc := service.NewLeaderboardService(userRepo, store.NewRedisKV(redisClient), cfg.Cache.LeaderboardTTL, log)
	taskSvc := service.NewTaskService(taskRepo, userRepo, leaderboardSvc, log)
	joinSvc := service.NewJoinRequestService(joinRepo, userRepo, tenantRepo, log)
	messageSvc := service.NewMessageService(messageRepo, hub, log)

	// Handlers
	authHandler := handler.NewAuthHandler(authSvc)
	tenantHandler := handler.NewTenantHandler(tenantSvc)
	joinHandler := handler.NewJoinRequestHandler(joinSvc)
	taskHandler := handler.NewTaskHandler(taskSvc)
	leaderboardHandler := handler.NewLeaderboardHandler(leaderboardSvc)
	messageHandler := handler.NewMessageHandler(messageSvc)

	// Initialize Echo framework
	e := echo.New()

	// Apply global middleware - order matters
	e.Use(echomiddleware.Recover())
	e.Use(echomiddleware.CORS())
	e.Use(middleware.RequestIDMiddleware)
	e.Use(logger.Middleware(log))
	e.Use(prometheus.MetricsMiddleware())

	// Public routes - no authentication required
	e.GET("/health", handler.HealthCheck)
	e.GET("/metrics", handler.MetricsHandler)

	// Authentication routes - these don't belong under /api since they're for getting access to the API
	auth := e.Group("/auth")
	auth.POST("/register", authHandler.Register)
	auth.POST("/login", authHandler.Login)
	auth.POST("/join-company", authHandler.JoinCompany)

	// Tenant login pages check company existence before rendering
	e.GET("/companies/:slug", tenantHandler.GetCompany)

	// Anyone can file a join request, no session needed
	e.POST("/join-requests", joinHandler.Create)

	// API routes - all require authentication
	api := e.Group("/api")
	api.Use(middleware.AuthMiddleware)

	// Employee surface
	api.GET("/tasks", taskHandler.ListMine, middleware.RequireRoles(model.RoleEmployee, model.RoleManager, model.RoleAdmin))
	api.POST("/tasks/:id/proof", taskHandler.SubmitProof, middleware.RequireRoles(model.RoleEmployee, model.RoleAdmin))
	api.POST("/presence/request-work", taskHandler.RequestWork, middleware.RequireRoles(model.RoleEmployee))

	// Leaderboard is visible to the whole company
	api.GET("/leaderboard", leaderboardHandler.Standings)
	api.GET("/leaderboard/podium", leaderboardHandler.Podium)
	api.GET("/leaderboard/me", leaderboardHandler.RankOf)

	// Manager surface
	managers := api.Group("/employees")
	managers.Use(middleware.RequireRoles(model.RoleManager, model.RoleAdmin))
	managers.GET("", taskHandler.Roster)
	managers.GET("/:uid/tasks", taskHandler.ListForEmployee)
	managers.POST("/:uid/tasks", taskHandler.Assign)
	managers.POST("/:uid/tasks/:id/verify", taskHandler.Verify)

	// Conversations: employees reach their own, managers pick by employee
	api.GET("/messages", messageHandler.History)
	api.POST("/messages", messageHandler.Send)
	api.GET("/messages/stream", messageHandler.Stream)
	conversations := api.Group("/conversations")
	conversations.Use(middleware.RequireRoles(model.RoleManager, model.RoleAdmin))
	conversations.GET("/:employeeID", messageHandler.History)
	conversations.POST("/:employeeID", messageHandler.Send)
	conversations.GET("/:employeeID/stream", messageHandler.Stream)

	// Approver inbox
	api.GET("/join-requests", joinHandler.ListPending)
	api.POST("/join-requests/:id/approve", joinHandler.Approve)
	api.POST("/join-requests/:id/reject", joinHandler.Reject)

	// Company provisioning - super-admin only
	companies := api.Group("/companies")
	companies.Use(middleware.RequireSuperAdmin)
	companies.POST("", tenantHandler.Create)
	companies.GET("", tenantHandler.List)
	companies.DELETE("/:companyID", tenantHandler.Delete)

	// Get server port from configuration
	port := cfg.Server.Port

	// Start server
	log.Info("Starting server", zap.String("port", port))
	if err := e.Start(":" + port); err != nil {
		log.Fatal("Failed to start server", zap.Error(err))
	}
}

// runBootstrap creates the platform super-admin account. Safe to run more
// than once, an existing account is left untouched.
func runBootstrap(auth *service.AuthService, log *zap.Logger) {
	email := os.Getenv("SUPERADMIN_EMAIL")
	password := os.Getenv("SUPERADMIN_PASSWORD")
	name := os.Getenv("SUPERADMIN_NAME")
	if name == "" {
		name = "Super Admin"
	}
	if email == "" || password == "" {
		log.Fatal("SUPERADMIN_EMAIL and SUPERADMIN_PASSWORD must be set")
	}

	if err := auth.BootstrapSuperAdmin(context.Background(), name, email, password); err != nil {
		log.Fatal("Super-admin bootstrap failed", zap.Error(err))
	}
	log.Info("Super-admin account ready", zap.String("email", email))
}
