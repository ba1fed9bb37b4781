// Package server contains HTTP and WebSocket handlers for the application's API endpoints.
package server

import (
	"context"
	"errors"
	"log/slog"
	"sync"
	"time"

	_ "bizrwanda/docs" // swagger docs
	"bizrwanda/internal/bootstrap"
	"bizrwanda/internal/config"
	"bizrwanda/internal/featureflags"
	"bizrwanda/internal/identity"
	"bizrwanda/internal/middleware"
	"bizrwanda/internal/models"
	"bizrwanda/internal/notifications"
	"bizrwanda/internal/repository"
	"bizrwanda/internal/scheduler"
	"bizrwanda/internal/service"

	"github.com/ansrivas/fiberprometheus/v2"
	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/cors"
	"github.com/gofiber/fiber/v2/middleware/helmet"
	"github.com/gofiber/fiber/v2/middleware/limiter"
	"github.com/gofiber/fiber/v2/middleware/monitor"
	"github.com/gofiber/fiber/v2/middleware/recover"
	"github.com/gofiber/fiber/v2/middleware/requestid"
	"github.com/gofiber/swagger"
	"github.com/redis/go-redis/v9"
	"gorm.io/gorm"
)

// Server holds all dependencies and provides handlers
type Server struct {
	config         *config.Config
	db             *gorm.DB
	redis          *redis.Client
	app            *fiber.App
	promMiddleware *fiberprometheus.FiberPrometheus
	shutdownCtx    context.Context
	shutdownFn     context.CancelFunc

	userRepo     repository.UserRepository
	notifier     *notifications.Notifier
	hub          *notifications.Hub
	featureFlags *featureflags.Manager
	sweeper      *scheduler.Scheduler

	listingService     *service.ListingService
	companyService     *service.CompanyService
	applicationService *service.ApplicationService
	adminService       *service.AdminService
	authService        *service.AuthService
	profileService     *service.ProfileService

	firebase *identity.FirebaseVerifier
	oauth    map[string]*identity.OAuthProvider

	// A websocket upgrade can pass through AuthRequired more than once; a
	// ticket consumed from Redis stays valid in-process for a short grace.
	consumedTicketsMu sync.Mutex
	consumedTickets   map[string]consumedTicketEntry
}

// NewServer creates a new server instance with all dependencies
func NewServer(cfg *config.Config) (*Server, error) {
	db, redisClient, err := bootstrap.InitRuntime(context.Background(), cfg, bootstrap.Options{SeedDefaults: cfg.SeedDefaults})
	if err != nil {
		return nil, err
	}
	return NewServerWithDeps(cfg, db, redisClient)
}

// NewServerWithDeps creates a Server using already-initialized dependencies.
// Use this in tests or when a bootstrap layer establishes DB/Redis and optionally
// performs explicit seeding.
func NewServerWithDeps(cfg *config.Config, db *gorm.DB, redisClient *redis.Client) (*Server, error) {
	userRepo := repository.NewUserRepository(db)
	listingRepo := repository.NewListingRepository(db)
	companyRepo := repository.NewCompanyRepository(db)
	applicationRepo := repository.NewApplicationRepository(db)
	profileRepo := repository.NewProfileRepository(db)

	server := &Server{
		config:          cfg,
		db:              db,
		redis:           redisClient,
		promMiddleware:  middleware.InitMetrics("bizrwanda-api"),
		userRepo:        userRepo,
		featureFlags:    featureflags.NewManager(cfg.FeatureFlags),
		consumedTickets: make(map[string]consumedTicketEntry),
	}

	// Services take a nil Broadcaster as "no live push".
	var broadcaster service.Broadcaster
	if redisClient != nil {
		server.notifier = notifications.NewNotifier(redisClient)
		server.hub = notifications.NewHub()
		broadcaster = server.notifier
	}

	server.listingService = service.NewListingService(listingRepo, companyRepo, profileRepo, server.featureFlags)
	server.companyService = service.NewCompanyService(companyRepo)
	server.applicationService = service.NewApplicationService(applicationRepo, listingRepo, broadcaster)
	server.authService = service.NewAuthService(userRepo)
	server.profileService = service.NewProfileService(profileRepo, userRepo)
	server.adminService = service.NewAdminService(service.AdminDeps{
		Users:         userRepo,
		Listings:      listingRepo,
		Applications:  applicationRepo,
		Companies:     companyRepo,
		Categories:    repository.NewCategoryRepository(db),
		Sections:      repository.NewFeaturedSectionRepository(db),
		Notifications: repository.NewNotificationRepository(db),
		Broadcaster:   broadcaster,
		Flags:         server.featureFlags,
	})
	server.sweeper = scheduler.New(server.listingService, cfg.ListingSweepSchedule)

	if cfg.FirebaseProjectID != "" {
		server.firebase = identity.NewFirebaseVerifier(cfg.FirebaseProjectID)
	}
	server.oauth = map[string]*identity.OAuthProvider{
		models.AuthProviderGoogle:   identity.NewGoogleProvider(cfg.GoogleClientID, cfg.GoogleClientSecret, cfg.OAuthCallbackBase),
		models.AuthProviderLinkedIn: identity.NewLinkedInProvider(cfg.LinkedInClientID, cfg.LinkedInClientSecret, cfg.OAuthCallbackBase),
	}

	return server, nil
}

// SetupMiddleware configures middleware for the Fiber app
func (s *Server) SetupMiddleware(app *fiber.App) {
	// Panic recovery
	app.Use(recover.New())

	// Request ID for tracing
	app.Use(requestid.New())

	app.Use(middleware.TracingMiddleware())

	// Context Middleware to propagate Request ID and trace ID
	app.Use(middleware.ContextMiddleware())

	// Prometheus Metrics
	if s.promMiddleware != nil {
		app.Use(middleware.MetricsMiddleware(s.promMiddleware))
	}

	// Security headers
	app.Use(helmet.New())

	// Structured Logging middleware (after requestid and context middleware)
	app.Use(middleware.StructuredLogger())

	// CORS middleware should run before middlewares that can short-circuit (e.g. limiter)
	// so browser clients still receive CORS headers on error responses.
	origins := s.config.AllowedOrigins
	if origins == "" {
		origins = "http://localhost:5173,http://localhost:3000,http://127.0.0.1:5173"
	}

	app.Use(cors.New(cors.Config{
		AllowOrigins:     origins,
		AllowHeaders:     "Origin, Content-Type, Accept, Authorization, Upgrade, Connection, Sec-WebSocket-Key, Sec-WebSocket-Version",
		ExposeHeaders:    "X-Total-Count",
		AllowCredentials: true,
		MaxAge:           86400, // 24 hours
	}))

	// Global rate limiting (100 requests per minute per IP)
	app.Use(limiter.New(limiter.Config{
		Max:        100,
		Expiration: 1 * time.Minute,
		// Never rate-limit preflight requests; they should be handled by CORS.
		Next: func(c *fiber.Ctx) bool {
			return c.Method() == fiber.MethodOptions
		},
		KeyGenerator: func(c *fiber.Ctx) string {
			return c.IP()
		},
		LimitReached: func(c *fiber.Ctx) error {
			return c.Status(fiber.StatusTooManyRequests).JSON(fiber.Map{
				"error": "Too many requests, please try again later.",
			})
		},
	}))
}

// SetupRoutes configures all routes for the application. Public routes are
// registered before any prefix-wide guard so the guard never shadows them.
func (s *Server) SetupRoutes(app *fiber.App) {
	api := app.Group("/api")
	authRequired := s.AuthRequired()

	// Health checks
	app.Get("/health/live", s.LivenessCheck)
	app.Get("/health/ready", s.ReadinessCheck)
	app.Get("/health", s.ReadinessCheck)
	api.Get("/", s.HealthCheck)

	// Metrics endpoint for Prometheus
	if s.promMiddleware != nil {
		s.promMiddleware.RegisterAt(app, "/metrics")
	}
	api.Get("/metrics/dashboard", monitor.New(monitor.Config{
		Title: "Business In Rwanda API Metrics",
	}))

	// Swagger documentation
	api.Get("/swagger/*", swagger.HandlerDefault)

	// Auth routes
	auth := api.Group("/auth")
	auth.Post("/register", middleware.RateLimit(s.redis, 5, 10*time.Minute, "register"), s.Register)
	auth.Post("/login", middleware.RateLimit(s.redis, 10, 5*time.Minute, "login"), s.Login)
	auth.Post("/logout", authRequired, s.Logout)
	auth.Get("/me", authRequired, s.Me)
	auth.Post("/firebase-sync", middleware.RateLimit(s.redis, 10, 5*time.Minute, "firebase_sync"), s.FirebaseSync)
	for name := range s.oauth {
		auth.Get("/"+name, s.OAuthRedirect(name))
		auth.Get("/"+name+"/callback", s.OAuthCallback(name))
	}

	// Listings. Fixed segments come before /:id.
	jobs := api.Group("/jobs")
	jobs.Get("/", s.ListJobs)
	jobs.Get("/featured", s.GetFeaturedJobs)
	jobs.Get("/recommended", authRequired, s.GetRecommendedJobs)
	jobs.Post("/", authRequired, s.EmployerRequired(),
		middleware.RateLimit(s.redis, 20, time.Hour, "create_listing"), s.CreateJob)
	jobs.Get("/:id/form", authRequired, s.GetJobForm)
	jobs.Post("/:id/apply", authRequired, s.JobSeekerRequired(),
		middleware.RateLimit(s.redis, 30, time.Hour, "apply"), s.ApplyToJob)
	jobs.Put("/:id", authRequired, s.UpdateJob)
	jobs.Get("/:id", s.GetJob)

	api.Get("/listings/form-schema", s.GetListingFormSchema)
	api.Get("/categories", s.GetCategories)
	api.Get("/notifications", s.GetPlatformNotifications)
	api.Get("/featured-sections", s.GetFeaturedSections)

	companies := api.Group("/companies")
	companies.Get("/featured", s.GetFeaturedCompanies)
	companies.Get("/me", authRequired, s.EmployerRequired(), s.GetMyCompany)
	companies.Post("/", authRequired, s.EmployerRequired(), s.UpsertCompany)
	companies.Get("/:id", s.GetCompany)

	applications := api.Group("/applications")
	applications.Get("/me", authRequired, s.GetMyApplications)
	applications.Patch("/:id", authRequired, s.EmployerRequired(), s.UpdateApplicationStatus)
	applications.Get("/:id", authRequired, s.GetApplication)

	api.Get("/profile", authRequired, s.GetProfile)
	api.Put("/profile", authRequired, s.UpdateProfile)

	employer := api.Group("/employer", authRequired, s.EmployerRequired())
	employer.Get("/jobs", s.GetEmployerJobs)
	employer.Get("/applications", s.GetEmployerApplications)

	// Live notifications. Browsers authenticate the upgrade with a ticket.
	ws := api.Group("/ws", authRequired)
	ws.Post("/ticket", s.IssueWSTicket)
	ws.Get("/", s.WebsocketHandler())

	// Admin routes, gated as a prefix.
	admin := api.Group("/admin", authRequired, s.AdminRequired())
	admin.Get("/statistics", s.AdminStatistics)
	admin.Get("/feature-flags", s.GetFeatureFlags)

	admin.Get("/jobs", s.AdminListJobs)
	admin.Post("/jobs", s.CreateJob)
	admin.Patch("/jobs/:id", s.AdminModerateJob)
	admin.Delete("/jobs/:id", s.AdminDeleteJob)

	admin.Get("/users", s.AdminListUsers)
	admin.Patch("/users/:id/role", s.AdminUpdateUserRole)

	admin.Get("/categories", s.AdminListCategories)
	admin.Post("/categories", s.AdminCreateCategory)
	admin.Patch("/categories/:id", s.AdminUpdateCategory)
	admin.Delete("/categories/:id", s.AdminDeleteCategory)

	admin.Get("/featured-sections", s.AdminGetFeaturedSections)
	admin.Patch("/featured-sections", s.AdminPatchFeaturedSections)

	admin.Get("/notifications", s.AdminListNotifications)
	admin.Post("/notifications", s.AdminCreateNotification)
	admin.Patch("/notifications/:id", s.AdminUpdateNotification)
	admin.Delete("/notifications/:id", s.AdminDeleteNotification)
}

// HealthCheck is a legacy/simple alias for ReadinessCheck
func (s *Server) HealthCheck(c *fiber.Ctx) error {
	return s.ReadinessCheck(c)
}

// LivenessCheck handles liveness probe requests
func (s *Server) LivenessCheck(c *fiber.Ctx) error {
	return c.Status(fiber.StatusOK).JSON(fiber.Map{
		"status": "up",
		"time":   time.Now(),
	})
}

// ReadinessCheck handles readiness probe requests
func (s *Server) ReadinessCheck(c *fiber.Ctx) error {
	ctx, cancel := context.WithTimeout(c.Context(), 5*time.Second)
	defer cancel()

	dbStatus := "healthy"
	if s.db == nil {
		dbStatus = "unhealthy"
	} else if sqlDB, err := s.db.DB(); err != nil {
		dbStatus = "unhealthy"
	} else if err := sqlDB.PingContext(ctx); err != nil {
		dbStatus = "unhealthy"
	}

	// Redis backs token revocation and live push; the API still serves
	// without it, so readiness only reports it.
	redisStatus := "unavailable"
	if s.redis != nil {
		redisStatus = "healthy"
		if err := s.redis.Ping(ctx).Err(); err != nil {
			redisStatus = "unhealthy"
		}
	}

	status := fiber.StatusOK
	overallStatus := "healthy"
	if dbStatus != "healthy" {
		status = fiber.StatusServiceUnavailable
		overallStatus = "unhealthy"
	}

	return c.Status(status).JSON(fiber.Map{
		"message": "Business In Rwanda API",
		"version": "1.0.0",
		"status":  overallStatus,
		"checks": fiber.Map{
			"database": dbStatus,
			"redis":    redisStatus,
		},
		"time": time.Now(),
	})
}

// errorHandler renders errors that escape a handler. Fiber's own errors
// (unknown route, bad method, body too large) keep their status.
func errorHandler(c *fiber.Ctx, err error) error {
	var fe *fiber.Error
	if errors.As(err, &fe) {
		return c.Status(fe.Code).JSON(models.ErrorResponse{Error: fe.Message})
	}
	middleware.Logger.ErrorContext(c.UserContext(), "Unhandled error",
		slog.String("path", c.Path()),
		slog.String("error", err.Error()),
	)
	return models.RespondWithError(c, fiber.StatusInternalServerError, models.NewInternalError(err))
}

// App builds the Fiber application without listening. Tests drive it with app.Test.
func (s *Server) App() *fiber.App {
	app := fiber.New(fiber.Config{
		AppName:      "Business In Rwanda API",
		ErrorHandler: errorHandler,
	})
	s.SetupMiddleware(app)
	s.SetupRoutes(app)
	return app
}

// Start starts the server
func (s *Server) Start() error {
	ctx, cancel := context.WithCancel(context.Background())
	s.shutdownCtx = ctx
	s.shutdownFn = cancel

	s.app = s.App()

	if err := s.adminService.EnsureFeaturedSections(ctx); err != nil {
		middleware.Logger.Warn("Failed to ensure featured sections", slog.String("error", err.Error()))
	}

	if s.notifier != nil && s.hub != nil {
		go func() {
			if err := s.hub.StartWiring(s.shutdownCtx, s.notifier); err != nil {
				middleware.Logger.Error("Failed to start notification wiring", slog.String("error", err.Error()))
			}
		}()
	}

	if err := s.sweeper.Start(s.shutdownCtx); err != nil {
		return err
	}

	middleware.Logger.Info("Server starting", slog.String("port", s.config.Port))
	return s.app.Listen(":" + s.config.Port)
}

// Shutdown gracefully shuts down the server
func (s *Server) Shutdown(ctx context.Context) error {
	// Cancel the server-scoped context to stop the wiring goroutine and sweeps
	if s.shutdownFn != nil {
		s.shutdownFn()
	}
	s.sweeper.Stop()

	if s.app != nil {
		if err := s.app.ShutdownWithContext(ctx); err != nil {
			middleware.Logger.Error("Error shutting down HTTP server", slog.String("error", err.Error()))
		}
	}

	if s.hub != nil {
		if err := s.hub.Shutdown(ctx); err != nil {
			middleware.Logger.Error("Error shutting down notification hub", slog.String("error", err.Error()))
		}
	}

	if sqlDB, err := s.db.DB(); err == nil {
		if cerr := sqlDB.Close(); cerr != nil {
			middleware.Logger.Error("Error closing sql DB", slog.String("error", cerr.Error()))
		}
	}

	if s.redis != nil {
		if rerr := s.redis.Close(); rerr != nil {
			middleware.Logger.Error("Error closing redis", slog.String("error", rerr.Error()))
		}
	}

	middleware.Logger.Info("Server shutdown complete")
	return nil
}
