package main

import (
	"context"
	"log"
	"net/http"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"edulingua/config"
	"edulingua/handlers"
	"edulingua/jobs"
	"edulingua/logger"
	"edulingua/provider/openai"
	"edulingua/repository/sqlite"
	"edulingua/storage"
	"edulingua/translation"
	"edulingua/validation"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/compress"
	"github.com/gofiber/fiber/v2/middleware/cors"
	"github.com/gofiber/fiber/v2/middleware/etag"
	"github.com/gofiber/fiber/v2/middleware/limiter"
	fiberLogger "github.com/gofiber/fiber/v2/middleware/logger"
	"github.com/gofiber/fiber/v2/middleware/recover"
	"github.com/gofiber/fiber/v2/middleware/requestid"
	"github.com/gofiber/fiber/v2/middleware/timeout"
	"github.com/google/uuid"
)

func main() {
	// Load configuration
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}

	// Initialize logger
	rootLogger, accessLogConfig, err := logger.New(cfg.LogDir, cfg.Debug)
	if err != nil {
		log.Fatalf("Failed to initialize logger: %v", err)
	}

	// Initialize database
	db, err := sqlite.InitDB(cfg.Database.Path, cfg.Database.MaxConnections)
	if err != nil {
		log.Fatalf("Failed to initialize database: %v", err)
	}
	defer db.Close()

	// Initialize repository
	repo, err := sqlite.NewRepository(db)
	if err != nil {
		log.Fatalf("Failed to initialize repository: %v", err)
	}

	// Initialize provider client
	providerClient := openai.NewClient(openai.Config{
		APIKey:            cfg.Provider.APIKey,
		BaseURL:           cfg.Provider.BaseURL,
		ChatTimeout:       cfg.Provider.ChatTimeout,
		TranscribeTimeout: cfg.Provider.TranscribeTimeout,
		RequestsPerSecond: cfg.Provider.RequestsPerSecond,
		Burst:             cfg.Provider.Burst,
		TranscribeModel:   cfg.Provider.TranscribeModel,
	}, rootLogger)

	// Initialize validator
	validator := validation.NewValidator(cfg)

	// Initialize translation service
	translationService := translation.NewService(providerClient, translation.Config{
		Model: cfg.Provider.ChatModel,
	}, rootLogger)

	// Initialize job service
	jobService := jobs.NewService(repo, translationService, jobs.Config{
		ProcessTimeout: cfg.Jobs.ProcessTimeout,
		StaleTimeout:   cfg.Jobs.StaleTimeout,
	}, rootLogger)

	// Initialize export archive (optional)
	var archive *storage.SpacesClient
	if cfg.Storage.Enabled {
		archive, err = storage.NewSpacesClient(storage.SpacesConfig{
			AccessKey: cfg.Storage.AccessKey,
			SecretKey: cfg.Storage.SecretKey,
			Region:    cfg.Storage.Region,
			Endpoint:  cfg.Storage.Endpoint,
			Bucket:    cfg.Storage.Bucket,
		})
		if err != nil {
			log.Fatalf("Failed to initialize storage: %v", err)
		}
	}

	// Initialize Fiber app
	app := fiber.New(fiber.Config{
		ReadTimeout:           cfg.ReadTimeout,
		WriteTimeout:          cfg.WriteTimeout,
		IdleTimeout:           cfg.IdleTimeout,
		ErrorHandler:          handlers.ErrorHandler,
		BodyLimit:             128 * 1024 * 1024, // must cover the video upload ceiling
		DisableStartupMessage: !cfg.Debug,
		StrictRouting:         true,
		CaseSensitive:         true,
		AppName:               "edulingua " + cfg.Version,
	})

	// Setup middleware
	setupMiddleware(app, cfg, accessLogConfig)

	// Setup routes
	translationHandler := handlers.NewTranslationHandler(translationService, validator)
	mediaHandler := handlers.NewMediaHandler(validator)
	jobHandler := handlers.NewJobHandler(jobService, archive)

	// API routes
	app.Post("/api/translate", translationHandler.Translate)
	app.Post("/api/translate/stream", translationHandler.TranslateStream)
	app.Post("/api/translate/audio", translationHandler.TranslateAudio)
	app.Post("/api/detect", translationHandler.Detect)
	app.Post("/api/transcribe", translationHandler.Transcribe)
	app.Post("/api/estimate", translationHandler.Estimate)

	app.Post("/api/media/validate", mediaHandler.Validate)
	app.Post("/api/media/extract", mediaHandler.Extract)
	app.Post("/api/youtube", mediaHandler.YouTube)

	app.Post("/api/jobs", jobHandler.Create)
	app.Get("/api/jobs", jobHandler.List)
	app.Get("/api/jobs/:id", jobHandler.Get)
	app.Post("/api/jobs/:id/cancel", jobHandler.Cancel)
	app.Get("/api/jobs/:id/export", jobHandler.Export)

	// Health check
	app.Get("/health", handlers.HealthCheck)

	// Graceful shutdown setup
	shutdownChan := make(chan os.Signal, 1)
	signal.Notify(shutdownChan, os.Interrupt, syscall.SIGTERM)

	go func() {
		<-shutdownChan
		log.Println("Shutting down server...")

		ctx, cancel := context.WithTimeout(context.Background(), cfg.ShutdownTimeout)
		defer cancel()

		if err := app.ShutdownWithContext(ctx); err != nil {
			log.Printf("Server shutdown error: %v", err)
		}

		if err := db.Close(); err != nil {
			log.Printf("Database shutdown error: %v", err)
		}
	}()

	// Start server
	serverAddr := ":" + cfg.ServerPort
	if cfg.Debug {
		log.Printf("Server starting on http://localhost%s", serverAddr)
	}

	if err := app.Listen(serverAddr); err != nil && err != http.ErrServerClosed {
		log.Fatalf("Server error: %v", err)
	}
}

func setupMiddleware(app *fiber.App, cfg *config.Config, accessLogConfig *fiberLogger.Config) {
	if cfg.Middleware.EnableRecover {
		app.Use(recover.New(recover.Config{
			EnableStackTrace: cfg.Debug,
		}))
	}

	if cfg.Middleware.EnableRequestID {
		app.Use(requestid.New(requestid.Config{
			Header: "X-Request-ID",
			Generator: func() string {
				return uuid.New().String()
			},
		}))
	}

	if cfg.Middleware.EnableLogger {
		app.Use(fiberLogger.New(*accessLogConfig))
	}

	if cfg.Middleware.EnableTimeout {
		app.Use(timeout.New(func(c *fiber.Ctx) error {
			return c.Next()
		}, cfg.RequestTimeout))
	}

	if cfg.Middleware.EnableCORS {
		app.Use(cors.New(cors.Config{
			AllowOrigins:     strings.Join(cfg.CORS.AllowedOrigins, ","),
			AllowMethods:     strings.Join(cfg.CORS.AllowedMethods, ","),
			AllowHeaders:     strings.Join(cfg.CORS.AllowedHeaders, ","),
			ExposeHeaders:    strings.Join(cfg.CORS.ExposedHeaders, ","),
			AllowCredentials: cfg.CORS.AllowCredentials,
			MaxAge:           cfg.CORS.MaxAge,
		}))
	}

	if cfg.Middleware.EnableRateLimit && cfg.RateLimit.Enabled {
		app.Use(limiter.New(limiter.Config{
			Max:        cfg.RateLimit.RequestsPerMinute,
			Expiration: time.Minute,
			KeyGenerator: func(c *fiber.Ctx) string {
				return c.IP()
			},
			LimitReached: func(c *fiber.Ctx) error {
				return c.Status(fiber.StatusTooManyRequests).JSON(fiber.Map{
					"error": "Rate limit exceeded",
				})
			},
		}))
	}

	if cfg.Middleware.EnableCompress {
		app.Use(compress.New(compress.Config{
			Level: compress.LevelBestSpeed,
		}))
	}

	if cfg.Middleware.EnableETag {
		app.Use(etag.New())
	}
}
