// @title QuizForge API
// @version 1.0
// @description AI-assisted quiz creation and taking.
// @host localhost:8090
// @BasePath /api
// @schemes http https
// @securityDefinitions.apikey ApiKeyAuth
// @in header
// @name Authorization
// @description Type 'Bearer YOUR_JWT_TOKEN' to authorize.
package main

import (
	"context"
	"log"
	"math/rand"
	"os"
	"os/signal"
	"strconv"
	"syscall"
	"time"

	"quizforge/internal/adapter"
	"quizforge/internal/cache"
	"quizforge/internal/config"
	"quizforge/internal/database"
	"quizforge/internal/handler"
	"quizforge/internal/logger"
	"quizforge/internal/middleware"
	"quizforge/internal/quizgen"
	"quizforge/internal/repository"
	"quizforge/internal/service"
	"quizforge/internal/validation"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/cors"
	"github.com/gofiber/fiber/v2/middleware/recover"
	"go.uber.org/zap"
)

// requestLogger logs every HTTP request with its outcome and latency.
func requestLogger() fiber.Handler {
	return func(c *fiber.Ctx) error {
		start := time.Now()
		path := c.Path()
		method := c.Method()

		err := c.Next()

		logger.Get().Info("HTTP Request",
			zap.String("method", method),
			zap.String("path", path),
			zap.Int("status", c.Response().StatusCode()),
			zap.Duration("duration", time.Since(start)),
			zap.String("ip", c.IP()),
		)

		return err
	}
}

func main() {
	cfg, err := config.LoadConfig()
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}

	if err := logger.Initialize(cfg.Logger); err != nil {
		panic(err)
	}
	appLogger := logger.Get()
	defer logger.Sync()

	ctx := context.Background()

	// Generative text service
	generator, err := quizgen.NewGeminiGenerator(ctx, cfg.Gemini, appLogger)
	if err != nil {
		appLogger.Fatal("Failed to create Gemini generator", zap.Error(err))
	}

	// Database
	db, err := database.NewPostgresDB(cfg.GetDSN())
	if err != nil {
		appLogger.Fatal("Failed to connect to database", zap.Error(err))
	}
	defer db.Close()

	// Repositories
	quizRepository := repository.NewSQLXQuizRepository(db)
	userRepository := repository.NewSQLXUserRepository(db)
	attemptRepository := repository.NewSQLXQuizAttemptRepository(db)
	txManager := repository.NewTransactionManagerAdapter(db)

	// Redis
	redisClient, err := cache.NewRedisClient(cfg.Redis)
	if err != nil {
		appLogger.Fatal("Failed to connect to Redis", zap.Error(err))
	}
	cacheAdapter := adapter.NewRedisCacheAdapter(redisClient)
	rateLimiter := middleware.NewRateLimiter(redisClient)

	// Services
	generationService := service.NewGenerationService(generator, cfg.Generation,
		rand.New(rand.NewSource(time.Now().UnixNano())))
	quizService := service.NewQuizService(quizRepository, attemptRepository, txManager,
		cacheAdapter, generationService, cfg.Generation)
	authService, err := service.NewAuthService(userRepository, cfg)
	if err != nil {
		appLogger.Fatal("Failed to create AuthService", zap.Error(err))
	}
	userService := service.NewUserService(userRepository, attemptRepository)

	// Handlers
	validator := validation.NewValidator(cfg.Generation)
	generationHandler := handler.NewGenerationHandler(generationService, quizService, validator)
	quizHandler := handler.NewQuizHandler(quizService, validator)
	authHandler := handler.NewAuthHandler(authService, cfg)
	userHandler := handler.NewUserHandler(userService)

	app := fiber.New(fiber.Config{
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
		IdleTimeout:  cfg.Server.IdleTimeout,
		BodyLimit:    1 * 1024 * 1024,
		ErrorHandler: middleware.ErrorHandler(),
	})

	app.Use(requestLogger())
	app.Use(cors.New(cors.Config{
		AllowOrigins: "*",
		AllowMethods: "GET,POST,PUT,DELETE,OPTIONS",
		AllowHeaders: "Origin,Content-Type,Accept,Authorization",
		MaxAge:       300,
	}))
	app.Use(recover.New())

	apiGroup := app.Group("/api")

	// Auth routes
	authGroup := apiGroup.Group("/auth", rateLimiter.Limit(middleware.RateLimitAuth, cfg.RateLimit.Auth))
	authGroup.Get("/google/login", authHandler.GoogleLogin)
	authGroup.Get("/google/callback", authHandler.GoogleCallback)
	authGroup.Post("/refresh", authHandler.RefreshToken)
	authGroup.Post("/logout", middleware.Protected(authService), authHandler.Logout)

	// User routes
	userGroup := apiGroup.Group("/users", middleware.Protected(authService),
		rateLimiter.Limit(middleware.RateLimitGeneral, cfg.RateLimit.General))
	userGroup.Get("/me", userHandler.GetMe)
	userGroup.Get("/me/attempts", userHandler.GetMyAttempts)

	// Generation routes
	generationBucket := rateLimiter.Limit(middleware.RateLimitGeneration, cfg.RateLimit.Generation)
	apiGroup.Post("/quizzes/generate", middleware.Protected(authService), generationBucket,
		generationHandler.GenerateQuiz)
	apiGroup.Post("/manual-quizzes/create-prototype", middleware.Protected(authService), generationBucket,
		generationHandler.CreatePrototype)
	apiGroup.Post("/quizzes/:id/questions/generate-more", middleware.Protected(authService), generationBucket,
		generationHandler.GenerateMoreQuestions)
	apiGroup.Post("/quizzes/:id/enhance", middleware.Protected(authService), generationBucket,
		generationHandler.EnhanceQuiz)
	apiGroup.Get("/topics/surprise", middleware.Protected(authService),
		rateLimiter.Limit(middleware.RateLimitSurprise, cfg.RateLimit.Surprise),
		generationHandler.SurpriseTopic)
	apiGroup.Post("/safety/check", middleware.Protected(authService),
		rateLimiter.Limit(middleware.RateLimitSafety, cfg.RateLimit.Safety),
		generationHandler.CheckSafety)

	// Quiz routes
	generalBucket := rateLimiter.Limit(middleware.RateLimitGeneral, cfg.RateLimit.General)
	apiGroup.Post("/quizzes", middleware.Protected(authService), generalBucket, quizHandler.CreateQuiz)
	apiGroup.Get("/quizzes", middleware.Protected(authService), generalBucket, quizHandler.ListQuizzes)
	apiGroup.Get("/quizzes/:id/take", middleware.OptionalAuth(authService), generalBucket, quizHandler.TakeQuiz)
	apiGroup.Post("/quizzes/:id/attempts", middleware.Protected(authService), generalBucket, quizHandler.SubmitAttempt)
	apiGroup.Get("/quizzes/:id", middleware.Protected(authService), generalBucket, quizHandler.GetQuiz)
	apiGroup.Put("/quizzes/:id", middleware.Protected(authService), generalBucket, quizHandler.UpdateQuiz)
	apiGroup.Delete("/quizzes/:id", middleware.Protected(authService), generalBucket, quizHandler.DeleteQuiz)

	go func() {
		appLogger.Info("Starting server", zap.Int("port", cfg.Server.Port), zap.String("env", os.Getenv("ENV")))
		if err := app.Listen(":" + strconv.Itoa(cfg.Server.Port)); err != nil {
			appLogger.Fatal("Failed to start server", zap.Error(err))
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	appLogger.Info("Shutting down server...")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := app.ShutdownWithContext(shutdownCtx); err != nil {
		appLogger.Fatal("Server forced to shutdown", zap.Error(err))
	}
	appLogger.Info("Server exited gracefully")
}
