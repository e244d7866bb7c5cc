package server

import (
	"context"
	"log/slog"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"kanban/internal/apperr"
	"kanban/internal/service"
)

// Pinger reports whether the backing store is reachable.
type Pinger interface {
	Ping(ctx context.Context) error
}

// Options tunes the HTTP layer.
type Options struct {
	Version        string
	StoreDriver    string
	StaticDir      string
	CORSOrigins    []string
	RequestTimeout time.Duration
	RateLimit      RateLimitConfig
}

// Server provides HTTP handlers for the kanban API.
type Server struct {
	engine   *gin.Engine
	projects *service.ProjectService
	tasks    *service.TaskService
	store    Pinger
	logger   *slog.Logger
	opts     Options
	limiter  *RateLimiter
}

// New constructs the HTTP server with routes and middleware configured.
func New(svc *service.Services, store Pinger, logger *slog.Logger, opts Options) *Server {
	if logger == nil {
		logger = slog.Default()
	}

	gin.SetMode(gin.ReleaseMode)
	router := gin.New()

	srv := &Server{
		engine:   router,
		projects: svc.Projects,
		tasks:    svc.Tasks,
		store:    store,
		logger:   logger,
		opts:     opts,
	}

	router.Use(gin.CustomRecovery(srv.handlePanic))
	router.Use(requestID())
	router.Use(requestLogger(logger))
	if len(opts.CORSOrigins) > 0 {
		router.Use(corsMiddleware(opts.CORSOrigins))
	}
	if opts.RateLimit.Enabled() {
		srv.limiter = NewRateLimiter(opts.RateLimit)
		router.Use(rateLimit(srv.limiter))
	}
	router.Use(requestTimeout(opts.RequestTimeout))

	srv.registerRoutes()
	return srv
}

// Engine exposes the underlying Gin engine.
func (s *Server) Engine() *gin.Engine {
	return s.engine
}

// Close releases background resources held by middleware.
func (s *Server) Close() {
	if s.limiter != nil {
		s.limiter.Stop()
	}
}

// registerRoutes wires all API and static handlers together.
func (s *Server) registerRoutes() {
	s.engine.GET("/health", s.handleHealth)

	api := s.engine.Group("/api")
	{
		api.GET("", s.handleBanner)
		api.GET("/health", s.handleHealth)

		projects := api.Group("/projects")
		{
			projects.GET("", s.handleListProjects)
			projects.POST("", s.handleCreateProject)
			projects.GET("/:id", s.handleGetProject)
			projects.PUT("/:id", s.handleUpdateProject)
			projects.DELETE("/:id", s.handleDeleteProject)
			projects.GET("/:id/stats", s.handleProjectStats)
			projects.GET("/:id/tasks", s.handleListProjectTasks)
		}

		tasks := api.Group("/tasks")
		{
			tasks.GET("", s.handleListTasks)
			tasks.POST("", s.handleCreateTask)
			tasks.GET("/:id", s.handleGetTask)
			tasks.PUT("/:id", s.handleUpdateTask)
			tasks.DELETE("/:id", s.handleDeleteTask)
			tasks.PATCH("/:id/status", s.handleUpdateTaskStatus)
		}
	}

	if !s.mountStatic() {
		s.engine.GET("/", s.handleBanner)
		s.engine.NoRoute(s.handleNotFound)
	}
}

// handleHealth pings the store so probes notice a lost database.
func (s *Server) handleHealth(c *gin.Context) {
	ctx, cancel := context.WithTimeout(c.Request.Context(), 2*time.Second)
	defer cancel()

	if err := s.store.Ping(ctx); err != nil {
		s.logger.Warn("health check failed", slog.String("error", err.Error()))
		c.JSON(http.StatusServiceUnavailable, envelope{Error: "Database connection not available"})
		return
	}
	respondSuccess(c, http.StatusOK, gin.H{
		"status":    "healthy",
		"store":     s.opts.StoreDriver,
		"version":   s.opts.Version,
		"timestamp": time.Now().UTC().Format(time.RFC3339),
	}, "API is running")
}

func (s *Server) handleBanner(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"message":   "Kanban Dashboard API",
		"version":   s.opts.Version,
		"endpoints": []string{"/api/projects", "/api/tasks"},
		"status":    "healthy",
	})
}

func (s *Server) handleNotFound(c *gin.Context) {
	c.JSON(http.StatusNotFound, envelope{Error: "Not found - " + c.Request.URL.RequestURI()})
}

func (s *Server) handlePanic(c *gin.Context, recovered any) {
	s.logger.Error("panic recovered",
		slog.String("path", c.Request.URL.Path),
		slog.Any("panic", recovered),
		slog.String("request_id", c.GetString(requestIDKey)),
	)
	c.AbortWithStatusJSON(http.StatusInternalServerError, envelope{Error: "Internal server error"})
}

// envelope is the body of every API response.
type envelope struct {
	Success bool   `json:"success"`
	Data    any    `json:"data,omitempty"`
	Message string `json:"message,omitempty"`
	Error   string `json:"error,omitempty"`
}

// respondError logs the error and returns it in the envelope.
func (s *Server) respondError(c *gin.Context, err error) {
	status := apperr.HTTPStatus(err)
	attrs := []any{
		slog.String("path", c.FullPath()),
		slog.Int("status", status),
		slog.String("error", err.Error()),
		slog.String("request_id", c.GetString(requestIDKey)),
	}
	if status >= http.StatusInternalServerError {
		s.logger.Error("request failed", attrs...)
	} else {
		s.logger.Debug("request rejected", attrs...)
	}
	c.JSON(status, envelope{Error: apperr.PublicMessage(err)})
}

// respondSuccess wraps a payload in the envelope.
func respondSuccess(c *gin.Context, status int, data any, message string) {
	c.JSON(status, envelope{Success: true, Data: data, Message: message})
}

// bindJSON decodes the request body, answering 400 itself on failure.
func (s *Server) bindJSON(c *gin.Context, dst any) bool {
	if err := c.ShouldBindJSON(dst); err != nil {
		s.logger.Debug("invalid request body", slog.String("path", c.FullPath()), slog.String("error", err.Error()))
		c.JSON(http.StatusBadRequest, envelope{Error: "Invalid request body"})
		return false
	}
	return true
}
