package server

import (
	"log"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/cors"
	"github.com/gofiber/fiber/v2/middleware/logger"
	"github.com/gofiber/fiber/v2/middleware/recover"
	"github.com/mansoorceksport/liftlog/internal/config"
	"github.com/mansoorceksport/liftlog/internal/handler"
	"github.com/mansoorceksport/liftlog/internal/infrastructure/traininglog"
	"github.com/mansoorceksport/liftlog/internal/repository"
	"github.com/mansoorceksport/liftlog/internal/service"
	"github.com/mansoorceksport/liftlog/internal/telemetry"
	"github.com/redis/go-redis/v9"
)

// AppDependencies holds the dependencies required to start the application
type AppDependencies struct {
	Config      *config.Config
	RedisClient *redis.Client
	LogClient   traininglog.Client
	Notifier    service.Notifier
}

// NewApp creates and configures the Fiber application with the given
// dependencies. The session service is returned alongside the app so the
// caller can restore persisted state before serving.
func NewApp(deps AppDependencies) (*fiber.App, *service.SessionService) {
	// Initialize repositories
	snapshotRepo := repository.NewRedisSnapshotRepository(deps.RedisClient, deps.Config.Engine.SnapshotTTL)
	identityRepo := repository.NewRedisIdentityRepository(deps.RedisClient)

	// Initialize services
	identityService := service.NewIdentityService(identityRepo, deps.Config.Engine.IdleThreshold)
	syncCoordinator := service.NewSyncCoordinator(deps.LogClient, deps.Notifier, deps.Config.Engine.EditDebounce)
	sessionService := service.NewSessionService(
		snapshotRepo,
		identityService,
		syncCoordinator,
		deps.LogClient,
		deps.Config.Engine.BodyWeight,
		deps.Config.Engine.SnapshotTTL,
	)

	// Initialize handlers
	sessionHandler := handler.NewSessionHandler(sessionService)

	// Create Fiber app
	app := fiber.New(fiber.Config{
		AppName:      "Liftlog Session Engine",
		ErrorHandler: customErrorHandler,
	})

	// Global middleware
	app.Use(recover.New())
	app.Use(logger.New())
	app.Use(cors.New(cors.Config{
		AllowOrigins: "*",
		AllowHeaders: "Origin, Content-Type, Accept",
		AllowMethods: "GET, POST, PUT, PATCH, DELETE, OPTIONS",
	}))
	if deps.Config.OTEL.Enabled {
		app.Use(telemetry.FiberMiddleware())
	}

	// Health check endpoint
	app.Get("/health", func(c *fiber.Ctx) error {
		return c.JSON(fiber.Map{
			"status":  "healthy",
			"service": "liftlog",
		})
	})

	// API v1 routes
	v1 := app.Group("/v1")

	session := v1.Group("/session")
	session.Get("/", sessionHandler.GetSession)
	session.Post("/finish", sessionHandler.Finish)
	session.Get("/rest-timer", sessionHandler.RestTimer)
	session.Post("/exercises", sessionHandler.ActivateExercise)
	session.Put("/exercises/:exerciseId/note", sessionHandler.SetNote)
	session.Post("/exercises/:exerciseId/sets", sessionHandler.AddSet)
	session.Patch("/exercises/:exerciseId/sets/:setId", sessionHandler.UpdateSet)
	session.Delete("/exercises/:exerciseId/sets/:setId", sessionHandler.DeleteSet)
	session.Post("/exercises/:exerciseId/sets/:setId/complete", sessionHandler.CompleteSet)
	session.Post("/exercises/:exerciseId/sets/:setId/edit", sessionHandler.BeginEdit)

	return app, sessionService
}

func customErrorHandler(c *fiber.Ctx, err error) error {
	code := fiber.StatusInternalServerError
	if e, ok := err.(*fiber.Error); ok {
		code = e.Code
	}
	log.Printf("Error: %v", err)
	return c.Status(code).JSON(fiber.Map{
		"error": err.Error(),
	})
}
