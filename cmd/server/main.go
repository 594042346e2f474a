package main

import (
	"log"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/redis/go-redis/v9"

	"tienda/internal/config"
	"tienda/internal/database"
	"tienda/internal/handler"
	"tienda/internal/media"
	"tienda/internal/middleware"
	"tienda/internal/repository"
	"tienda/internal/service"
	"tienda/pkg/logger"
)

func main() {
	cfg := config.Load()

	if err := logger.Init(!cfg.IsProduction()); err != nil {
		log.Fatalf("Failed to initialize logger: %v", err)
	}
	defer logger.Sync()

	database.Connect(cfg)
	database.Migrate()

	// Shared Redis client: token registry + rate limiter.
	redisOpt, err := redis.ParseURL(cfg.RedisURL)
	if err != nil {
		log.Fatalf("Invalid REDIS_URL: %v", err)
	}
	redisClient := redis.NewClient(redisOpt)
	defer redisClient.Close()

	tokenStore := repository.NewTokenStoreWithClient(redisClient)

	// The media client must come up before the server: missing
	// credentials are a deployment error, not a per-request one.
	mediaService, err := media.NewCloudinaryService(
		cfg.CloudinaryCloudName,
		cfg.CloudinaryAPIKey,
		cfg.CloudinaryAPISecret,
	)
	if err != nil {
		log.Fatalf("Failed to initialize media service: %v", err)
	}

	// Repositories
	userRepo := repository.NewUserRepository(database.DB)
	productRepo := repository.NewProductRepository(database.DB)

	// Services
	authService := service.NewAuthService(userRepo, tokenStore, cfg.JWTSecret, cfg.JWTExpiry)
	userService := service.NewUserService(userRepo, tokenStore)
	productService := service.NewProductService(productRepo, mediaService, cfg.UploadFolder)

	// Handlers
	authHandler := handler.NewAuthHandler(authService)
	userHandler := handler.NewUserHandler(userService)
	productHandler := handler.NewProductHandler(productService)

	rateLimiter := middleware.NewRateLimiter(redisClient, middleware.RateLimiterConfig{
		MaxRequests: cfg.RateLimitMaxRequests,
		Window:      cfg.RateLimitWindow,
	})

	if cfg.IsProduction() {
		gin.SetMode(gin.ReleaseMode)
	}

	router := gin.Default()
	router.Use(cors.Default())
	router.Use(middleware.SecurityHeadersMiddleware())
	router.Use(middleware.HSTSMiddleware(cfg.IsProduction()))
	router.Use(rateLimiter.Middleware())

	// Public routes
	router.POST("/api/auth/register", authHandler.Register)
	router.POST("/api/auth/login", authHandler.Login)

	// Protected routes (require an active session token)
	protected := router.Group("/api")
	protected.Use(middleware.AuthMiddleware(cfg.JWTSecret, tokenStore, userRepo))
	{
		protected.POST("/auth/logout", authHandler.Logout)
		protected.POST("/auth/logout-all", authHandler.LogoutAll)
		protected.GET("/auth/me", authHandler.Me)
		protected.POST("/auth/refresh", authHandler.Refresh)

		protected.GET("/users", userHandler.List)
		protected.GET("/users/:id", userHandler.Get)
		protected.PUT("/users/:id", userHandler.Update)
		protected.PATCH("/users/:id", userHandler.Patch)
		protected.PUT("/users/:id/password", userHandler.ChangePassword)
		protected.DELETE("/users/:id", userHandler.Delete)

		protected.GET("/products", productHandler.List)
		protected.POST("/products", productHandler.Create)
		protected.POST("/products/bulk", productHandler.BulkCreate)
		protected.GET("/products/:id", productHandler.Get)
		protected.PUT("/products/:id", productHandler.Update)
		protected.PATCH("/products/:id", productHandler.Patch)
		protected.DELETE("/products/:id", productHandler.Delete)
	}

	log.Printf("Server starting on %s", cfg.ServerPort)
	if err := router.Run(cfg.ServerPort); err != nil {
		log.Fatalf("Failed to start server: %v", err)
	}
}
