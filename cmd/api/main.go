package main

import (
	"context"
	"log"
	"os"
	"os/signal"
	"strconv"
	"syscall"
	"time"

	"exam-bank/internal/adapter"
	"exam-bank/internal/cache"
	"exam-bank/internal/config"
	"exam-bank/internal/database"
	"exam-bank/internal/domain"
	"exam-bank/internal/handler"
	"exam-bank/internal/logger"
	"exam-bank/internal/middleware"
	"exam-bank/internal/repository"
	"exam-bank/internal/service"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/cors"
	"github.com/gofiber/fiber/v2/middleware/recover"
	"go.uber.org/zap"
)

// requestLogger is a middleware that logs HTTP requests
func requestLogger() fiber.Handler {
	return func(c *fiber.Ctx) error {
		start := time.Now()
		path := c.Path()
		method := c.Method()

		err := c.Next()

		duration := time.Since(start)
		status := c.Response().StatusCode()

		logger.Get().Info("HTTP Request",
			zap.String("method", method),
			zap.String("path", path),
			zap.Int("status", status),
			zap.Duration("duration", duration),
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

	// Connect to database
	db, err := database.NewSQLXSQLiteDB(cfg.DB.Path)
	if err != nil {
		appLogger.Fatal("Failed to open database", zap.Error(err))
	}
	defer db.Close()

	// Redis is optional: without it results are rebuilt on every read.
	var cacheClient domain.Cache
	redisClient, err := cache.NewRedisClient(cfg.Redis)
	if err != nil {
		appLogger.Warn("Redis unavailable, running without result cache", zap.Error(err))
	} else {
		cacheClient = adapter.NewRedisCacheAdapter(redisClient)
		appLogger.Info("RedisCacheAdapter initialized")
	}

	// Initialize repositories
	questionRepository := repository.NewSQLXQuestionRepository(db)
	examRepository := repository.NewSQLXExamRepository(db)
	attemptRepository := repository.NewSQLXAttemptRepository(db)
	txManager := repository.NewTransactionManagerAdapter(db)

	clock := domain.SystemClock{}
	selector := domain.NewSelector()

	// Initialize services
	resultCacheService := service.NewResultCacheService(cacheClient, cfg.CacheTTL.AttemptResult)
	questionService := service.NewQuestionService(questionRepository, clock)
	examService := service.NewExamService(examRepository, questionRepository, attemptRepository, selector, resultCacheService, clock)
	regradeService := service.NewRegradeService(examRepository, attemptRepository, txManager, resultCacheService)

	// Initialize handlers
	questionHandler := handler.NewQuestionHandler(questionService)
	examHandler := handler.NewExamHandler(examService, regradeService)

	app := fiber.New(fiber.Config{
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
		ErrorHandler: middleware.ErrorHandler(),
	})

	app.Use(requestLogger())
	app.Use(cors.New(cors.Config{AllowOrigins: "*", AllowMethods: "GET,POST,PUT,DELETE,OPTIONS", AllowHeaders: "Origin,Content-Type,Accept,Authorization", MaxAge: 300}))
	app.Use(recover.New())

	vm := middleware.NewValidationMiddleware()
	protected := middleware.Protected(cfg.Auth.JWTSecret)

	apiGroup := app.Group("/api")

	// Authoring routes
	bankGroup := apiGroup.Group("/banks/:bankId", vm.ValidateBankID())
	bankGroup.Post("/questions", questionHandler.CreateQuestion)
	bankGroup.Get("/questions", questionHandler.ListQuestions)
	bankGroup.Post("/exams", examHandler.CreateExam)
	bankGroup.Get("/exams", examHandler.ListExams)

	apiGroup.Get("/questions/:questionId", vm.ValidateIDParam("questionId"), questionHandler.GetQuestion)
	apiGroup.Put("/questions/:questionId", vm.ValidateIDParam("questionId"), questionHandler.UpdateQuestion)
	apiGroup.Delete("/questions/:questionId", vm.ValidateIDParam("questionId"), questionHandler.DeleteQuestion)
	apiGroup.Post("/questions/:questionId/check", vm.ValidateIDParam("questionId"), questionHandler.CheckAnswer)

	apiGroup.Get("/exams/:examId", vm.ValidateIDParam("examId"), examHandler.GetExam)
	apiGroup.Put("/exams/:examId", vm.ValidateIDParam("examId"), examHandler.UpdateExam)
	apiGroup.Post("/exams/:examId/regrade", vm.ValidateIDParam("examId"), examHandler.RegradeExam)

	// Attempt routes (all protected)
	apiGroup.Post("/exams/:examId/start", vm.ValidateIDParam("examId"), protected, examHandler.StartExam)
	apiGroup.Get("/exams/:examId/attempts", vm.ValidateIDParam("examId"), protected, examHandler.ListAttempts)
	apiGroup.Post("/attempts/:attemptId/answers", vm.ValidateIDParam("attemptId"), protected, examHandler.RecordAnswer)
	apiGroup.Post("/attempts/:attemptId/submit", vm.ValidateIDParam("attemptId"), protected, examHandler.SubmitAttempt)
	apiGroup.Get("/attempts/:attemptId/result", vm.ValidateIDParam("attemptId"), protected, examHandler.GetAttemptResult)

	// Start server
	go func() {
		appLogger.Info("Starting server", zap.Int("port", cfg.Server.Port), zap.String("env", os.Getenv("ENV")))
		if err := app.Listen(":" + strconv.Itoa(cfg.Server.Port)); err != nil {
			appLogger.Fatal("Failed to start server", zap.Error(err))
		}
	}()

	// Graceful shutdown
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	appLogger.Info("Shutting down server...")
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := app.ShutdownWithContext(ctx); err != nil {
		appLogger.Fatal("Server forced to shutdown", zap.Error(err))
	}
	appLogger.Info("Server exited gracefully")
}
