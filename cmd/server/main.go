package main

import (
	"database/sql"
	"fmt"
	"log"
	"os"
	"os/signal"
	"syscall"
	"time"

	config "github.com/contentpassport/pimtrack/configs"
	"github.com/contentpassport/pimtrack/internal/api/handlers"
	"github.com/contentpassport/pimtrack/internal/api/middleware"
	job "github.com/contentpassport/pimtrack/internal/jobs"
	"github.com/contentpassport/pimtrack/internal/queue"
	"github.com/contentpassport/pimtrack/internal/repository"
	"github.com/contentpassport/pimtrack/internal/service"
	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/cors"
	"github.com/gofiber/fiber/v2/middleware/logger"
	"github.com/hibiken/asynq"
	"github.com/joho/godotenv"
	_ "github.com/lib/pq"
	"github.com/robfig/cron"
)

const recalcInterval = time.Hour

func main() {
	if err := godotenv.Load(); err != nil {
		log.Println("Warning: Failed to load environment variables", err)
	}

	cfg := config.LoadConfig()

	if err := config.ValidateWeights(); err != nil {
		log.Fatalf("Invalid scoring weights: %v", err)
	}

	db, err := sql.Open("postgres", cfg.PostgresURI)
	if err != nil {
		log.Fatalf("Failed to connect to database: %v", err)
	}
	defer closeDB(db)

	if err := db.Ping(); err != nil {
		log.Fatalf("Database is unreachable: %v", err)
	}

	redisConn := asynq.RedisClientOpt{Addr: cfg.RedisURI}
	client := asynq.NewClient(redisConn)
	defer client.Close()

	app := fiber.New(fiber.Config{
		ReadTimeout:  30 * time.Second,
		WriteTimeout: 30 * time.Second,
		BodyLimit:    1 * 1024 * 1024,
		ErrorHandler: func(c *fiber.Ctx, err error) error {
			log.Printf("Error: %v", err)
			return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": err.Error()})
		},
	})

	app.Use(logger.New())
	app.Use(cors.New(cors.Config{
		AllowOriginsFunc: func(origin string) bool {
			return true
		},
		AllowMethods:     "GET,POST,PUT,DELETE,OPTIONS",
		AllowHeaders:     "Origin, Content-Type, Accept, Authorization",
		AllowCredentials: true,
		MaxAge:           3600,
	}))

	trackedPostRepo := repository.NewTrackedPostRepository(db)
	engagementRepo := repository.NewEngagementRepository(db)
	matchRepo := repository.NewMatchRepository(db)
	pimRepo := repository.NewPIMRepository(db)
	passportRepo := repository.NewPassportRepository(db)
	alertRepo := repository.NewAlertRepository(db)
	preferencesRepo := repository.NewPreferencesRepository(db)
	archiveRepo := repository.NewArchiveRepository(db)
	apiKeyRepo := repository.NewApiKeyRepository(db)

	alertService := service.NewAlertService(alertRepo, passportRepo, preferencesRepo)
	trackingService := service.NewTrackingService(trackedPostRepo, engagementRepo, matchRepo, passportRepo, alertService)
	pimService := service.NewPIMService(matchRepo, pimRepo, passportRepo)
	leaderboardService := service.NewLeaderboardService(pimRepo)
	preferencesService := service.NewPreferencesService(preferencesRepo, cfg.SecretKey)
	archiveService := service.NewArchiveService(*cfg, trackedPostRepo, archiveRepo)
	apiKeyService := service.NewApiKeyService(apiKeyRepo)

	authMiddleware := middleware.NewAuthMiddleware(*cfg, apiKeyService)

	pim := handlers.NewPIMHandler(pimService, leaderboardService)
	app.Get("/leaderboard", pim.GetLeaderboard)

	// Ingest and alert routes resolve the caller when credentials are
	// present, and fall back to the anonymous/demo scope otherwise.
	tracked := app.Group("/api", authMiddleware.OptionalAuthMiddleware())

	tracking := handlers.NewTrackingHandler(trackingService, client)
	tracked.Post("/posts/track", tracking.TrackPost)
	tracked.Post("/posts/:id/engagement", tracking.UpdateEngagement)
	tracked.Get("/posts/:platform/:post_id", tracking.GetPostStatus)
	tracked.Get("/passports/:id/stats", tracking.GetTrackingStats)

	tracked.Post("/passports/:id/pim/calculate", pim.CalculatePIM)
	tracked.Get("/passports/:id/pim", pim.GetPIM)

	alert := handlers.NewAlertHandler(alertService)
	tracked.Post("/alerts", alert.CreateAlert)
	tracked.Get("/alerts", alert.GetAlerts)
	tracked.Get("/alerts/unread_count", alert.GetUnreadCount)
	tracked.Post("/alerts/read_all", alert.MarkAllRead)
	tracked.Post("/alerts/:id/read", alert.MarkRead)

	api := app.Group("/api", authMiddleware.AuthMiddleware())

	preferences := handlers.NewPreferencesHandler(preferencesService)
	api.Get("/preferences/:user_id", preferences.GetPreferences)
	api.Post("/preferences/:user_id", preferences.UpdatePreferences)

	apiKeys := handlers.NewApiKeyHandler(apiKeyService)
	api.Post("/api_key/new", apiKeys.CreateApiKey)
	api.Get("/api_key/list", apiKeys.ListKeys)
	api.Post("/api_key/remove", apiKeys.RemoveAPIKey)

	// cron jobs
	recalcJob := job.NewPIMRecalcJob(*cfg, passportRepo, pimService, recalcInterval)

	//queue
	queueW := queue.NewQueue(*cfg, pimService, archiveService)

	c := cron.New()
	c.AddFunc("@every 01h00m00s", recalcJob.RecalculateActive)
	c.Start()

	go func() {
		server := asynq.NewServer(redisConn, asynq.Config{
			Concurrency: 10,
		})

		mux := asynq.NewServeMux()
		mux.HandleFunc(queue.TaskTypePIMRecalc, queueW.HandlePIMRecalcTask)
		mux.HandleFunc(queue.TaskTypeMediaArchive, queueW.HandleMediaArchiveTask)

		log.Println("Starting the Asynq server...")
		if err := server.Run(mux); err != nil {
			log.Fatalf("Could not start Asynq server: %v", err)
		}
	}()

	go func() {
		if err := app.Listen(":3000"); err != nil {
			log.Fatalf("Failed to start server: %v", err)
		}
	}()
	log.Println("Server is running on http://localhost:3000")

	gracefulShutdown(app, db)
}

func closeDB(db *sql.DB) {
	fmt.Fprint(os.Stdout, "Closing database connection... ")
	if err := db.Close(); err != nil {
		fmt.Fprintf(os.Stderr, "Failed to close database: %v", err)
		return
	}
	fmt.Fprintln(os.Stdout, "Done")
}

func gracefulShutdown(app *fiber.App, db *sql.DB) {
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, os.Interrupt, syscall.SIGTERM)

	<-quit
	log.Println("Shutting down server...")

	if err := app.Shutdown(); err != nil {
		log.Fatalf("Failed to shut down server: %v", err)
	}

	closeDB(db)
	log.Println("Server shutdown complete.")
}
