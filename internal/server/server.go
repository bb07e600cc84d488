// Package server contains the HTTP handlers and routing for the talents API.
package server

import (
	"context"
	"errors"
	"time"

	"talents/internal/audit"
	"talents/internal/config"
	"talents/internal/featureflags"
	"talents/internal/middleware"
	"talents/internal/models"
	"talents/internal/notifications"
	"talents/internal/repository"
	"talents/internal/service"

	"github.com/ansrivas/fiberprometheus/v2"
	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/cors"
	"github.com/gofiber/fiber/v2/middleware/helmet"
	"github.com/gofiber/fiber/v2/middleware/limiter"
	"github.com/gofiber/fiber/v2/middleware/recover"
	"github.com/gofiber/fiber/v2/middleware/requestid"
	"github.com/redis/go-redis/v9"
	"gorm.io/gorm"
)

const defaultAllowedOrigins = "http://localhost:5173,http://localhost:3000,http://127.0.0.1:5173"

// Server holds all dependencies and provides handlers
type Server struct {
	config          *config.Config
	db              *gorm.DB
	redis           *redis.Client
	app             *fiber.App
	promMiddleware  *fiberprometheus.FiberPrometheus
	dispatcher      *notifications.Dispatcher
	auditStore      *audit.DBSink
	featureFlags    *featureflags.Manager
	identity        *service.IdentityResolver
	contactRequests *service.ContactRequestService
	messaging       *service.MessagingService
	profiles        *service.ProfileService
}

// NewServerWithDeps creates a Server using already-initialized dependencies.
// A nil redis client disables notifications, rate limiting and the profile
// cache; requests are still served.
func NewServerWithDeps(cfg *config.Config, db *gorm.DB, redisClient *redis.Client) (*Server, error) {
	if cfg == nil || db == nil {
		return nil, errors.New("server needs a config and a database")
	}
	middleware.InitMiddleware(cfg)

	users := repository.NewUserRepository(db)
	requests := repository.NewContactRequestRepository(db)
	conversations := repository.NewConversationStore(db)
	profiles := repository.NewProfileRepository(db)

	s := &Server{
		config:         cfg,
		db:             db,
		redis:          redisClient,
		promMiddleware: middleware.InitMetrics("talents-api"),
		dispatcher:     notifications.NewDispatcher(cfg.NotificationTimeout()),
		featureFlags:   featureflags.NewPolicyManager(cfg.FeatureFlags),
		identity:       service.NewIdentityResolver(users),
	}

	if unknown := s.featureFlags.Unknown(); len(unknown) > 0 {
		middleware.Logger.Warn("feature flags not read by any policy hook", "flags", unknown)
	}

	sinks := []audit.Sink{audit.LogSink{}}
	if cfg.AuditEnabled {
		s.auditStore = audit.NewDBSink(repository.NewAccessDecisionRepository(db), cfg.NotificationTimeout())
		sinks = append(sinks, s.auditStore)
	}
	sink := audit.New(sinks...)

	// Interface values stay nil without redis so the services skip notifying.
	var (
		contactNotifier service.ContactNotifier
		messageNotifier service.MessageNotifier
	)
	if redisClient != nil {
		n := notifications.NewNotifier(redisClient)
		contactNotifier = n
		messageNotifier = n
	}

	s.contactRequests = service.NewContactRequestService(requests, users, sink, contactNotifier, s.dispatcher, s.featureFlags)
	s.messaging = service.NewMessagingService(conversations, users, requests, service.MessagingServiceConfig{
		Audit:            sink,
		Notifier:         messageNotifier,
		Tasks:            s.dispatcher,
		Flags:            s.featureFlags,
		MaxMessageLength: cfg.MessageMaxLength,
	})
	s.profiles = service.NewProfileService(profiles, sink)

	return s, nil
}

// NewApp builds a Fiber app with the full middleware chain and routes.
func (s *Server) NewApp() *fiber.App {
	app := fiber.New(fiber.Config{
		AppName:      "Talents API",
		ErrorHandler: errorHandler,
	})
	s.SetupMiddleware(app)
	s.SetupRoutes(app)
	return app
}

// errorHandler renders errors that escape a handler. AppErrors keep their
// mapped status; anything else is a 500 with a generic body.
func errorHandler(c *fiber.Ctx, err error) error {
	var fe *fiber.Error
	if errors.As(err, &fe) {
		return c.Status(fe.Code).JSON(models.ErrorResponse{Error: fe.Message})
	}
	status := models.StatusForError(err)
	if status >= fiber.StatusInternalServerError {
		middleware.Logger.ErrorContext(c.UserContext(), "unhandled error",
			"path", c.Path(), "error", err.Error())
	}
	return models.RespondWithError(c, status, err)
}

// SetupMiddleware configures middleware for the Fiber app
func (s *Server) SetupMiddleware(app *fiber.App) {
	app.Use(recover.New())
	app.Use(requestid.New())
	app.Use(middleware.TracingMiddleware())
	app.Use(middleware.ContextMiddleware())

	if s.promMiddleware != nil {
		middleware.RegisterMetrics(app, s.promMiddleware)
	}

	app.Use(helmet.New())
	app.Use(middleware.StructuredLogger())

	// CORS runs before anything that can short-circuit so error responses
	// still carry CORS headers.
	origins := s.config.AllowedOrigins
	if origins == "" {
		origins = defaultAllowedOrigins
	}
	app.Use(cors.New(cors.Config{
		AllowOrigins:     origins,
		AllowHeaders:     "Origin, Content-Type, Accept, Authorization",
		AllowCredentials: origins != "*",
		MaxAge:           86400,
	}))

	// Global per-IP ceiling; the send routes carry their own per-user limit.
	app.Use(limiter.New(limiter.Config{
		Max:        100,
		Expiration: time.Minute,
		Next: func(c *fiber.Ctx) bool {
			return c.Method() == fiber.MethodOptions
		},
		KeyGenerator: func(c *fiber.Ctx) string {
			return c.IP()
		},
		LimitReached: func(c *fiber.Ctx) error {
			return c.Status(fiber.StatusTooManyRequests).JSON(models.ErrorResponse{
				Error: "Too many requests, please try again later.",
				Code:  "RATE_LIMITED",
			})
		},
	}))
}

// SetupRoutes configures all routes for the application
func (s *Server) SetupRoutes(app *fiber.App) {
	app.Get("/health/live", s.LivenessCheck)
	app.Get("/health/ready", s.ReadinessCheck)
	app.Get("/health", s.ReadinessCheck)

	api := app.Group("/api")

	api.Get("/access/premium", middleware.AuthOptional, s.CheckPremiumAccess)
	api.Get("/profiles/:id", middleware.AuthOptional, s.GetProfile)

	protected := api.Group("", middleware.AuthRequired)

	contactRequests := protected.Group("/contact-requests")
	contactRequests.Post("/", s.sendLimit("contact_request"), s.CreateContactRequest)
	contactRequests.Get("/received", s.ListReceivedContactRequests)
	contactRequests.Get("/sent", s.ListSentContactRequests)
	contactRequests.Post("/:id/respond", s.RespondToContactRequest)
	contactRequests.Post("/:id/cancel", s.CancelContactRequest)

	protected.Post("/messages", s.sendLimit("send_message"), s.SendMessage)

	conversations := protected.Group("/conversations")
	conversations.Get("/", s.GetConversations)
	conversations.Get("/:id/messages", s.GetMessages)
	conversations.Post("/:id/messages", s.sendLimit("send_message"), s.ReplyToConversation)
	conversations.Post("/:id/read", s.MarkConversationRead)

	admin := protected.Group("/admin", s.AdminRequired())
	admin.Get("/feature-flags", s.GetFeatureFlags)
	admin.Post("/profiles/:id/moderate", s.ModerateProfile)
	admin.Post("/contact-requests/expire", s.ExpireContactRequests)
}

// sendLimit applies the per-user send rate limit. It is skipped in the test
// environment and fails open when redis is down.
func (s *Server) sendLimit(resource string) fiber.Handler {
	if s.config.Env == "test" || s.config.RateLimitMessagesPerMinute <= 0 {
		return func(c *fiber.Ctx) error { return c.Next() }
	}
	return middleware.RateLimit(s.redis, s.config.RateLimitMessagesPerMinute, time.Minute, resource)
}

// LivenessCheck handles liveness probe requests
func (s *Server) LivenessCheck(c *fiber.Ctx) error {
	return c.Status(fiber.StatusOK).JSON(fiber.Map{
		"status": "up",
		"time":   time.Now(),
	})
}

// ReadinessCheck handles readiness probe requests. Redis is optional, so only
// the database decides readiness.
func (s *Server) ReadinessCheck(c *fiber.Ctx) error {
	ctx, cancel := context.WithTimeout(c.UserContext(), 5*time.Second)
	defer cancel()

	dbStatus := "healthy"
	sqlDB, err := s.db.DB()
	if err != nil {
		dbStatus = "unhealthy"
	} else if err := sqlDB.PingContext(ctx); err != nil {
		dbStatus = "unhealthy"
	}

	redisStatus := "healthy"
	if s.redis == nil {
		redisStatus = "unavailable"
	} else if err := s.redis.Ping(ctx).Err(); err != nil {
		redisStatus = "unhealthy"
	}

	status := fiber.StatusOK
	overallStatus := "healthy"
	if dbStatus != "healthy" {
		status = fiber.StatusServiceUnavailable
		overallStatus = "unhealthy"
	} else if redisStatus != "healthy" {
		overallStatus = "degraded"
	}

	return c.Status(status).JSON(fiber.Map{
		"status": overallStatus,
		"checks": fiber.Map{
			"database": dbStatus,
			"redis":    redisStatus,
		},
		"time": time.Now(),
	})
}

// AdminRequired returns middleware that rejects non-admin users with 403.
// Must be placed after AuthRequired so that the user id is available.
func (s *Server) AdminRequired() fiber.Handler {
	return func(c *fiber.Ctx) error {
		id, err := s.resolveIdentity(c)
		if err != nil {
			return respondError(c, err)
		}
		if !id.IsAdmin() {
			return models.RespondWithError(c, fiber.StatusForbidden,
				models.NewForbiddenError("Admin access required"))
		}
		return c.Next()
	}
}

// Start starts the server
func (s *Server) Start() error {
	s.app = s.NewApp()
	middleware.Logger.Info("Server starting", "port", s.config.Port)
	return s.app.Listen(":" + s.config.Port)
}

// Shutdown stops accepting requests, waits for in-flight side tasks and audit
// writes, and closes the stores.
func (s *Server) Shutdown(ctx context.Context) error {
	if s.app != nil {
		if err := s.app.ShutdownWithContext(ctx); err != nil {
			middleware.Logger.Error("error shutting down HTTP server", "error", err)
		}
	}

	s.dispatcher.Wait()
	if s.auditStore != nil {
		s.auditStore.Wait()
	}

	if sqlDB, err := s.db.DB(); err == nil {
		if cerr := sqlDB.Close(); cerr != nil {
			middleware.Logger.Error("error closing sql DB", "error", cerr)
		}
	}

	if s.redis != nil {
		if rerr := s.redis.Close(); rerr != nil {
			middleware.Logger.Error("error closing redis", "error", rerr)
		}
	}

	middleware.Logger.Info("Server shutdown complete")
	return nil
}

// GetFeatureFlags returns the policy hooks, the configured flags and their
// state for the caller.
func (s *Server) GetFeatureFlags(c *fiber.Ctx) error {
	return c.JSON(fiber.Map{
		"hooks":     featureflags.Hooks,
		"raw":       s.featureFlags.Raw(),
		"evaluated": s.featureFlags.Snapshot(middleware.UserID(c)),
		"unknown":   s.featureFlags.Unknown(),
	})
}
