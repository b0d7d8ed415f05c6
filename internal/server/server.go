// Package server contains the HTML and JSON handlers for the biolink web app.
package server

import (
	"context"
	"errors"
	"log/slog"
	"time"

	"biolink/internal/cache"
	"biolink/internal/config"
	"biolink/internal/database"
	"biolink/internal/featureflags"
	"biolink/internal/middleware"
	"biolink/internal/models"
	"biolink/internal/repository"
	"biolink/internal/service"
	"biolink/web"

	"github.com/ansrivas/fiberprometheus/v2"
	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/filesystem"
	"github.com/gofiber/fiber/v2/middleware/helmet"
	"github.com/gofiber/fiber/v2/middleware/monitor"
	"github.com/gofiber/fiber/v2/middleware/recover"
	"github.com/gofiber/fiber/v2/middleware/requestid"
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
	featureFlags   *featureflags.Manager
	store          *cache.Store
	userRepo       repository.UserRepository
	profileRepo    repository.ProfileRepository
	sessions       *service.SessionManager
	authService    *service.AuthService
	avatarService  *service.AvatarService
	profileService *service.ProfileService
}

// NewServerWithDeps creates a Server using already-initialized dependencies.
// The bootstrap layer owns connecting the database, applying the schema and
// dialing Redis; redisClient may be nil.
func NewServerWithDeps(cfg *config.Config, db *gorm.DB, redisClient *redis.Client) (*Server, error) {
	if cfg == nil {
		return nil, errors.New("server: config is required")
	}
	if db == nil {
		return nil, errors.New("server: database is required")
	}

	store := cache.NewStore(redisClient)
	userRepo := repository.NewUserRepository(db)
	profileRepo := repository.NewProfileRepository(db)
	sessions := service.NewSessionManager(cfg.SessionSecret, cfg.SessionTTL())
	avatars := service.NewAvatarService(cfg)

	server := &Server{
		config:         cfg,
		db:             db,
		redis:          redisClient,
		promMiddleware: middleware.InitMetrics("biolink"),
		featureFlags:   featureflags.NewManager(cfg.FeatureFlags),
		store:          store,
		userRepo:       userRepo,
		profileRepo:    profileRepo,
		sessions:       sessions,
		avatarService:  avatars,
	}
	server.authService = service.NewAuthService(userRepo, sessions, store)
	server.profileService = service.NewProfileService(userRepo, profileRepo, avatars, store, cfg.PublicProfileCacheTTL())

	return server, nil
}

// NewApp builds the fiber app with views, middleware and routes attached.
func (s *Server) NewApp() *fiber.App {
	bodyLimitMB := s.config.AvatarMaxUploadSizeMB
	if bodyLimitMB <= 0 {
		bodyLimitMB = service.DefaultAvatarMaxUploadSizeMB
	}

	app := fiber.New(fiber.Config{
		AppName:      "biolink",
		Views:        newViewEngine(),
		BodyLimit:    (bodyLimitMB + 1) * 1024 * 1024,
		ErrorHandler: s.errorHandler,
	})

	s.SetupMiddleware(app)
	s.SetupRoutes(app)
	return app
}

// SetupMiddleware configures middleware for the Fiber app
func (s *Server) SetupMiddleware(app *fiber.App) {
	app.Use(recover.New())
	app.Use(requestid.New())
	app.Use(middleware.TracingMiddleware())

	// Propagate request and trace ids into the request context for logging.
	app.Use(middleware.ContextMiddleware())

	if s.promMiddleware != nil {
		app.Use(middleware.MetricsMiddleware(s.promMiddleware))
	}

	app.Use(helmet.New(helmet.Config{
		ContentSecurityPolicy: "default-src 'self'; img-src 'self' data:",
	}))

	app.Use(middleware.StructuredLogger())

	// Resolve the session cookie once so handlers read the user from locals.
	app.Use(s.SessionMiddleware())
}

// SetupRoutes configures all routes for the application
func (s *Server) SetupRoutes(app *fiber.App) {
	app.Get("/health/live", s.LivenessCheck)
	app.Get("/health/ready", s.ReadinessCheck)

	if s.promMiddleware != nil {
		s.promMiddleware.RegisterAt(app, "/metrics")
	}
	app.Get("/metrics/dashboard", monitor.New(monitor.Config{
		Title: "biolink metrics",
	}))

	// Uploaded avatars first, then bundled assets, then the optional on-disk static root.
	app.Static("/static/"+service.AvatarPublicPrefix, s.avatarService.UploadDir())
	app.Use("/static", filesystem.New(filesystem.Config{
		Root:   web.Static(),
		MaxAge: 3600,
	}))
	if s.config.StaticDir != "" {
		app.Static("/static", s.config.StaticDir)
	}

	app.Get("/register", s.RegisterPage)
	app.Post("/register", s.Register)
	app.Get("/login", s.LoginPage)
	app.Post("/login", s.Login)
	app.Get("/logout", s.Logout)

	app.Get("/", s.AuthRequired(), s.Dashboard)
	app.Post("/", s.AuthRequired(), s.SaveProfile)

	app.Get("/u/:username", s.PublicProfile)

	api := app.Group("/api")
	api.Get("/u/:username", s.PublicProfileJSON)
	api.Get("/feature-flags", s.AuthRequired(), s.GetFeatureFlags)
}

// LivenessCheck handles liveness probe requests
func (s *Server) LivenessCheck(c *fiber.Ctx) error {
	return c.Status(fiber.StatusOK).JSON(fiber.Map{
		"status": "up",
		"time":   time.Now(),
	})
}

// ReadinessCheck handles readiness probe requests. Redis is optional; only a
// configured but unreachable Redis makes the app unready.
func (s *Server) ReadinessCheck(c *fiber.Ctx) error {
	ctx, cancel := context.WithTimeout(c.UserContext(), 5*time.Second)
	defer cancel()

	dbStatus := "healthy"
	if err := database.Ping(ctx, s.db); err != nil {
		dbStatus = "unhealthy"
	}

	redisStatus := "disabled"
	if s.store.Enabled() {
		redisStatus = "healthy"
		if err := s.store.Ping(ctx); err != nil {
			redisStatus = "unhealthy"
		}
	}

	status := fiber.StatusOK
	overallStatus := "healthy"
	if dbStatus == "unhealthy" || redisStatus == "unhealthy" {
		status = fiber.StatusServiceUnavailable
		overallStatus = "unhealthy"
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

// errorHandler renders HTML errors for pages and JSON errors under /api.
func (s *Server) errorHandler(c *fiber.Ctx, err error) error {
	status := fiber.StatusInternalServerError
	var fe *fiber.Error
	if errors.As(err, &fe) {
		status = fe.Code
	}

	if status >= fiber.StatusInternalServerError {
		middleware.Logger.ErrorContext(c.UserContext(), "Unhandled request error",
			slog.String("path", c.Path()), slog.String("error", err.Error()))
	}

	if isAPIRequest(c) {
		if fe != nil && status < fiber.StatusInternalServerError {
			return models.RespondWithError(c, status, models.NewValidationError(fe.Message))
		}
		return models.RespondWithError(c, status, models.NewInternalError(err))
	}

	message := "Something went wrong."
	if fe != nil && status < fiber.StatusInternalServerError {
		message = fe.Message
	}
	return s.render(c, status, "error", fiber.Map{
		"Title":   "Error",
		"Status":  status,
		"Message": message,
	})
}

// Start starts the server
func (s *Server) Start() error {
	s.app = s.NewApp()

	middleware.Logger.Info("Server starting", slog.String("port", s.config.Port))
	return s.app.Listen(":" + s.config.Port)
}

// Shutdown gracefully shuts down the server
func (s *Server) Shutdown(ctx context.Context) error {
	if s.app != nil {
		if err := s.app.ShutdownWithContext(ctx); err != nil {
			middleware.Logger.Error("error shutting down HTTP server", slog.String("error", err.Error()))
		}
	}

	if err := database.Close(s.db); err != nil {
		middleware.Logger.Error("error closing database", slog.String("error", err.Error()))
	}

	if s.redis != nil {
		if err := s.redis.Close(); err != nil {
			middleware.Logger.Error("error closing redis", slog.String("error", err.Error()))
		}
	}

	middleware.Logger.Info("Server shutdown complete")
	return nil
}
