package main

import (
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/cors"
	fiberlogger "github.com/gofiber/fiber/v2/middleware/logger"
	"github.com/gofiber/fiber/v2/middleware/recover"
	"github.com/gofiber/websocket/v2"
	"go.uber.org/zap"

	"github.com/ai-interviewer/backend/internal/api/handlers"
	"github.com/ai-interviewer/backend/internal/assessment"
	"github.com/ai-interviewer/backend/internal/cache/redis"
	"github.com/ai-interviewer/backend/internal/interview"
	"github.com/ai-interviewer/backend/internal/llm"
	"github.com/ai-interviewer/backend/internal/metrics"
	"github.com/ai-interviewer/backend/internal/middleware/ratelimit"
	"github.com/ai-interviewer/backend/internal/middleware/security"
	"github.com/ai-interviewer/backend/internal/middleware/validation"
	"github.com/ai-interviewer/backend/internal/rubric"
	"github.com/ai-interviewer/backend/internal/storage/sqlite"
	"github.com/ai-interviewer/backend/pkg/config"
	appLogger "github.com/ai-interviewer/backend/pkg/logger"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		fmt.Printf("Failed to load config: %v\n", err)
		os.Exit(1)
	}

	err = appLogger.Init(cfg.Logging.Level, cfg.Logging.Format, cfg.Logging.OutputPath)
	if err != nil {
		fmt.Printf("Failed to initialize logger: %v\n", err)
		os.Exit(1)
	}
	defer appLogger.Sync()

	appLogger.Info("Starting AI Interviewer API Server")

	metrics.Init()

	sqliteClient, err := sqlite.NewClient(cfg.SQLite.Path)
	if err != nil {
		appLogger.Fatal("Failed to create SQLite client", zap.Error(err))
	}
	defer sqliteClient.Close()

	err = sqliteClient.InitSchema()
	if err != nil {
		appLogger.Fatal("Failed to initialize schema", zap.Error(err))
	}

	// Redis is an optimization, not a dependency: without it evaluations and
	// reports are simply recomputed.
	var redisClient *redis.Client
	redisClient, err = redis.NewClient(
		cfg.Redis.Host,
		cfg.Redis.Port,
		cfg.Redis.Password,
		cfg.Redis.DB,
		time.Duration(cfg.Redis.EvalCacheTTLSec)*time.Second,
	)
	if err != nil {
		appLogger.Warn("Redis unavailable, caching disabled", zap.Error(err))
		redisClient = nil
	} else {
		defer redisClient.Close()
	}

	rubrics, err := rubric.LoadDir(cfg.Rubrics.Dir)
	if err != nil {
		appLogger.Fatal("Failed to load assessment templates", zap.Error(err))
	}

	llmClient := llm.NewClient(
		cfg.LLM.APIKey,
		cfg.LLM.Model,
		cfg.LLM.Temperature,
		cfg.LLM.MaxTokens,
		cfg.LLM.TimeoutSec,
	)

	var evalCache assessment.EvaluationCache
	if redisClient != nil {
		evalCache = redisClient
	}

	assessor := assessment.NewService(sqliteClient, llmClient, rubrics, evalCache)
	machine := interview.NewMachine(sqliteClient, llmClient, rubrics, assessor, cfg.Interview.TotalQuestions)

	app := fiber.New(fiber.Config{
		ReadTimeout:  time.Duration(cfg.Server.ReadTimeout) * time.Second,
		WriteTimeout: time.Duration(cfg.Server.WriteTimeout) * time.Second,
		BodyLimit:    cfg.Server.BodyLimit,
	})

	app.Use(recover.New())
	app.Use(fiberlogger.New())
	app.Use(cors.New(cors.Config{
		AllowOrigins: "*",
		AllowHeaders: "Origin, Content-Type, Accept, Authorization, X-Session-ID",
		AllowMethods: "GET, POST, PUT, PATCH, DELETE, OPTIONS",
	}))
	app.Use(security.HeadersMiddleware(security.HeadersConfig{
		IsDevelopment: cfg.Logging.Level == "debug",
	}))

	limiter := ratelimit.New(ratelimit.Config{
		MaxRequestsPerMinute: 120,
		Logger:               appLogger.GetLogger(),
	})
	defer limiter.Stop()
	app.Use(limiter.Middleware())

	app.Use(validation.Middleware(validation.Config{
		Logger: appLogger.GetLogger(),
	}))

	interviewHandler := handlers.NewInterviewHandler(sqliteClient, machine, assessor, rubrics, redisClient, cfg.Interview.DefaultTemplate)
	jobHandler := handlers.NewJobHandler(sqliteClient, rubrics)
	candidateHandler := handlers.NewCandidateHandler(sqliteClient)
	wsHandler := handlers.NewWebSocketHandler(machine)

	api := app.Group("/api/v1")

	api.Post("/jobs", jobHandler.CreateJob)
	api.Get("/jobs", jobHandler.ListJobs)
	api.Get("/jobs/:id", jobHandler.GetJob)

	api.Post("/candidates", candidateHandler.CreateCandidate)
	api.Get("/candidates", candidateHandler.ListCandidates)
	api.Get("/candidates/:id", candidateHandler.GetCandidate)
	api.Patch("/candidates/:id/status", candidateHandler.UpdateStatus)

	api.Post("/interviews", interviewHandler.CreateInterview)
	api.Get("/interviews", interviewHandler.ListInterviews)
	api.Get("/interviews/:id", interviewHandler.GetInterview)
	api.Post("/interviews/:id/start", interviewHandler.StartInterview)
	api.Post("/interviews/:id/respond", interviewHandler.Respond)
	api.Post("/interviews/:id/end", interviewHandler.EndInterview)
	api.Post("/interviews/:id/cancel", interviewHandler.CancelInterview)
	api.Get("/interviews/:id/progress", interviewHandler.GetProgress)
	api.Get("/interviews/:id/assessment", interviewHandler.GetAssessment)
	api.Post("/interviews/:id/report", interviewHandler.GenerateReport)
	api.Get("/interviews/:id/report", interviewHandler.GetReport)

	app.Use("/ws", func(c *fiber.Ctx) error {
		if websocket.IsWebSocketUpgrade(c) {
			return c.Next()
		}
		return fiber.ErrUpgradeRequired
	})
	app.Get("/ws/interview/:id", websocket.New(wsHandler.HandleConnection))

	app.Get("/metrics", metrics.MetricsHandler())

	api.Get("/health", func(c *fiber.Ctx) error {
		return c.JSON(fiber.Map{
			"status": "healthy",
			"time":   time.Now().Unix(),
		})
	})

	api.Get("/ready", func(c *fiber.Ctx) error {
		return c.JSON(fiber.Map{
			"status": "ready",
		})
	})

	addr := fmt.Sprintf("%s:%d", cfg.Server.Host, cfg.Server.Port)
	appLogger.Info("Server starting", zap.String("address", addr))

	go func() {
		if err := app.Listen(addr); err != nil {
			appLogger.Fatal("Server failed to start", zap.Error(err))
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, os.Interrupt, syscall.SIGTERM)
	<-quit

	appLogger.Info("Server shutting down gracefully...")
	app.Shutdown()
	appLogger.Info("Server stopped")
}
