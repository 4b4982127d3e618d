package main

import (
	"log"
	"os"
	"os/signal"
	"strconv"
	"syscall"

	"github.com/ansrivas/fiberprometheus/v2"
	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/cors"
	"github.com/gofiber/fiber/v2/middleware/logger"
	"github.com/gofiber/fiber/v2/middleware/recover"
	"github.com/joho/godotenv"

	"github.com/EoghannIrving/echo-journal/internal/config"
	"github.com/EoghannIrving/echo-journal/internal/database"
	"github.com/EoghannIrving/echo-journal/internal/handlers"
	"github.com/EoghannIrving/echo-journal/internal/jobs"
	"github.com/EoghannIrving/echo-journal/internal/logging"
	"github.com/EoghannIrving/echo-journal/internal/middleware"
	"github.com/EoghannIrving/echo-journal/internal/models"
	"github.com/EoghannIrving/echo-journal/internal/preflight"
	"github.com/EoghannIrving/echo-journal/internal/services"
)

const version = "1.0.0"

func main() {
	log.SetFlags(log.LstdFlags | log.Lshortfile)

	// Initialize structured logging (JSON in production, text in dev)
	logging.Init()

	log.Println("🚀 Starting Echo Journal Server...")

	// Load .env file (ignore error if file doesn't exist)
	if err := godotenv.Load(); err != nil {
		log.Printf("⚠️  No .env file found or error loading it: %v", err)
	} else {
		log.Println("✅ .env file loaded successfully")
	}

	// Load configuration
	cfg := config.Load()
	log.Printf("📋 Configuration loaded (Port: %s, DB: SQLite)", cfg.Port)

	// Initialize SQLite history database
	db, err := database.New(cfg.DatabasePath)
	if err != nil {
		log.Fatalf("❌ Failed to open history database: %v", err)
	}
	defer db.Close()

	if err := db.Initialize(); err != nil {
		log.Fatalf("❌ Failed to initialize database: %v", err)
	}

	// Run preflight checks
	checker := preflight.NewChecker(db, cfg)
	results := checker.RunAll()

	// Exit if critical checks failed
	if preflight.HasFailures(results) {
		log.Println("\n❌ Pre-flight checks failed. Please fix the issues above before starting the server.")
		os.Exit(1)
	}

	log.Println("✅ All pre-flight checks passed")

	// Runtime settings overlay: non-empty values override the environment
	settings := services.NewSettingsService(cfg.SettingsFile)

	moodLogPath := func() string {
		return settings.Effective(models.SettingKeyMoodLogPath, cfg.MoodLogPath)
	}
	moodTrackingEnabled := func() bool {
		if v := settings.Get(models.SettingKeyMoodTracking); v != "" {
			if enabled, err := strconv.ParseBool(v); err == nil {
				return enabled
			}
		}
		return cfg.MoodTrackingEnabled
	}
	promptsPath := func() string {
		return settings.Effective(models.SettingKeyPromptsFile, cfg.PromptsFile)
	}
	fallbackCoords := func() (float64, float64) {
		lat, lon := cfg.FallbackLat, cfg.FallbackLon
		if v := settings.Get(models.SettingKeyFallbackLat); v != "" {
			if parsed, err := strconv.ParseFloat(v, 64); err == nil {
				lat = parsed
			}
		}
		if v := settings.Get(models.SettingKeyFallbackLon); v != "" {
			if parsed, err := strconv.ParseFloat(v, 64); err == nil {
				lon = parsed
			}
		}
		return lat, lon
	}

	// Initialize engine services
	moodLogService := services.NewMoodLogService(moodLogPath, moodTrackingEnabled)
	promptService := services.NewPromptService(promptsPath)
	historyService := services.NewHistoryService(db)

	// Initialize Prometheus metrics
	services.InitMetrics(promptService)
	log.Println("✅ Prometheus metrics initialized")

	// Day-brief and generation collaborators
	generationService := services.NewGenerationService(
		func() string { return settings.Effective(models.SettingKeyGenerationURL, cfg.GenerationAPIURL) },
		func() string { return settings.Effective(models.SettingKeyGenerationAPIKey, cfg.GenerationAPIKey) },
		func() string { return settings.Effective(models.SettingKeyGenerationModel, cfg.GenerationModel) },
		promptService,
	)
	weatherService := services.NewWeatherService(fallbackCoords)
	wordDayService := services.NewWordDayService(func() string {
		return settings.Effective(models.SettingKeyWordnikAPIKey, cfg.WordnikAPIKey)
	})
	dateFactService := services.NewDateFactService()
	mediaService := services.NewMediaService(cfg, settings)
	dayBriefService := services.NewDayBriefService(weatherService, wordDayService, dateFactService, mediaService, moodLogService)
	geocodeService := services.NewGeocodeService(func() string { return cfg.NominatimUserAgent })
	exportService := services.NewExportService(moodLogService)

	// Hot reload: the corpus mtime check can miss edits on bind-mounted
	// volumes, and settings edits should apply without a restart
	watcher, err := services.NewFileWatcher()
	if err != nil {
		log.Printf("⚠️  File watcher disabled: %v", err)
	} else {
		if err := watcher.Watch(cfg.PromptsFile, promptService.Invalidate); err != nil {
			log.Printf("⚠️  Cannot watch prompt corpus: %v", err)
		}
		if err := watcher.Watch(cfg.SettingsFile, settings.Reload); err != nil {
			log.Printf("⚠️  Cannot watch settings file: %v", err)
		}
		go watcher.Run()
	}

	// Background jobs
	jobScheduler, err := jobs.NewJobScheduler()
	if err != nil {
		log.Fatalf("❌ Failed to create job scheduler: %v", err)
	}
	sweepJob := jobs.NewReconcileSweepJob(historyService, moodLogService, cfg.SweepCron)
	if err := jobScheduler.Register("reconcile-sweep", sweepJob); err != nil {
		log.Printf("⚠️  Failed to register reconcile sweep: %v", err)
	}
	cleanupJob := jobs.NewHistoryCleanupJob(historyService, func() int { return cfg.HistoryRetentionDays }, cfg.CleanupCron)
	if err := jobScheduler.Register("history-cleanup", cleanupJob); err != nil {
		log.Printf("⚠️  Failed to register history cleanup: %v", err)
	}
	jobScheduler.Start()

	// Initialize Fiber app
	app := fiber.New(fiber.Config{
		AppName:   "Echo Journal v" + version,
		BodyLimit: 1 * 1024 * 1024, // settings and reconcile payloads are tiny
	})

	// Middleware
	app.Use(recover.New())
	app.Use(logger.New())

	// Prometheus metrics middleware
	prometheus := fiberprometheus.New("echo_journal")
	prometheus.RegisterAt(app, "/metrics")
	app.Use(prometheus.Middleware)
	log.Println("📊 Prometheus metrics endpoint enabled at /metrics")

	app.Use(cors.New(cors.Config{
		AllowOrigins: getAllowedOrigins(),
		AllowMethods: "GET,POST,OPTIONS",
		AllowHeaders: "Origin,Content-Type,Accept,Authorization",
	}))

	// Optional basic auth; active only when credentials are configured
	app.Use("/api", middleware.BasicAuth(func() (string, string) {
		username := settings.Effective(models.SettingKeyBasicAuthUsername, cfg.BasicAuthUsername)
		password := settings.Effective(models.SettingKeyBasicAuthPassword, cfg.BasicAuthPassword)
		return username, password
	}))

	// Rate limiting
	rateLimitConfig := middleware.LoadRateLimitConfig()
	app.Use("/api", middleware.GlobalAPIRateLimiter(rateLimitConfig))
	log.Printf("🛡️  [RATE-LIMIT] Global=%d/min, Generation=%d/min, Export=%d/min",
		rateLimitConfig.GlobalAPIMax, rateLimitConfig.GenerationMax, rateLimitConfig.ExportMax)

	// Initialize handlers
	healthHandler := handlers.NewHealthHandler(moodLogService, generationService, version)
	snapshotHandler := handlers.NewSnapshotHandler(moodLogService)
	promptHandler := handlers.NewPromptHandler(promptService, generationService, historyService)
	reconcileHandler := handlers.NewReconcileHandler(moodLogService, historyService)
	settingsHandler := handlers.NewSettingsHandler(settings)
	historyHandler := handlers.NewHistoryHandler(historyService)
	exportHandler := handlers.NewExportHandler(exportService)
	dayBriefHandler := handlers.NewDayBriefHandler(dayBriefService)
	geocodeHandler := handlers.NewGeocodeHandler(geocodeService)
	mediaHandler := handlers.NewMediaHandler(mediaService)

	// Routes
	app.Get("/health", healthHandler.Handle)
	app.Get("/api/snapshot", snapshotHandler.Get)
	app.Get("/api/new_prompt", promptHandler.New)
	app.Post("/api/ai_prompt", middleware.GenerationRateLimiter(rateLimitConfig), promptHandler.Generate)
	app.Post("/api/reconcile", reconcileHandler.Post)
	app.Get("/api/settings", settingsHandler.Get)
	app.Post("/api/settings", settingsHandler.Post)
	app.Get("/api/history", historyHandler.Recent)
	app.Get("/api/history/stats", historyHandler.Stats)
	app.Get("/api/export/moods.xlsx", middleware.ExportRateLimiter(rateLimitConfig), exportHandler.Moods)
	app.Get("/api/daybrief", dayBriefHandler.Get)
	app.Get("/api/reverse_geocode", geocodeHandler.Reverse)
	app.Get("/api/asset/:id", mediaHandler.Asset)
	app.Get("/api/thumbnail/:id", mediaHandler.Thumbnail)

	log.Printf("📡 Health check: http://localhost:%s/health", cfg.Port)
	log.Printf("🕐 Background jobs: reconcile sweep (%s), history cleanup (%s)", cfg.SweepCron, cfg.CleanupCron)

	// Handle graceful shutdown
	go func() {
		sigChan := make(chan os.Signal, 1)
		signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)
		<-sigChan

		log.Println("\n🛑 Shutting down server...")

		// Stop background jobs
		jobScheduler.Stop()

		// Stop the file watcher
		if watcher != nil {
			watcher.Stop()
		}

		// Shutdown Fiber
		if err := app.Shutdown(); err != nil {
			log.Printf("⚠️ Error shutting down server: %v", err)
		}
	}()

	if err := app.Listen(":" + cfg.Port); err != nil {
		log.Fatalf("❌ Failed to start server: %v", err)
	}
}

// getAllowedOrigins reads CORS origins from the environment with a
// development default.
func getAllowedOrigins() string {
	if origins := os.Getenv("ALLOWED_ORIGINS"); origins != "" {
		return origins
	}
	log.Println("⚠️  ALLOWED_ORIGINS not set, using development defaults")
	return "http://localhost:5173,http://localhost:3000"
}
