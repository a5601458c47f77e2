// Package httpapi exposes the tracker over a JSON REST API built on gin.
package httpapi

import (
	"context"
	"errors"
	"net"
	"net/http"
	"time"

	"github.com/dmitrijs2005/issuetracker/internal/logging"
	"github.com/dmitrijs2005/issuetracker/internal/server/analytics"
	"github.com/dmitrijs2005/issuetracker/internal/server/auth"
	"github.com/dmitrijs2005/issuetracker/internal/server/config"
	"github.com/dmitrijs2005/issuetracker/internal/server/models"
	"github.com/gin-gonic/gin"
)

type UserService interface {
	Register(ctx context.Context, in models.RegisterInput) (*auth.Session, *models.User, error)
	Login(ctx context.Context, in models.LoginInput) (*auth.Session, *models.User, error)
	Logout(ctx context.Context, token string) error
	Authenticate(ctx context.Context, token string) (*models.User, error)
	ListUsers(ctx context.Context, caller models.User) ([]models.User, error)
}

type ProjectService interface {
	Create(ctx context.Context, user models.User, in models.ProjectInput) (*models.Project, error)
	List(ctx context.Context, user models.User) ([]models.Project, error)
	Get(ctx context.Context, user models.User, id string) (*models.Project, error)
	Update(ctx context.Context, user models.User, id string, in models.ProjectInput) (*models.Project, error)
	Delete(ctx context.Context, user models.User, id string) error
	AddMember(ctx context.Context, user models.User, projectID string, in models.AddMemberInput) (*models.Project, error)
}

type SprintService interface {
	List(ctx context.Context, user models.User, projectID string) ([]models.Sprint, error)
	Get(ctx context.Context, user models.User, id string) (*models.Sprint, error)
	Create(ctx context.Context, user models.User, in models.SprintInput) (*models.Sprint, error)
	Update(ctx context.Context, user models.User, id string, in models.SprintInput) (*models.Sprint, error)
	Delete(ctx context.Context, user models.User, id string) error
}

type IssueService interface {
	List(ctx context.Context, user models.User, filter models.IssueFilter) ([]models.Issue, error)
	Get(ctx context.Context, user models.User, id string) (*models.Issue, error)
	Create(ctx context.Context, user models.User, in models.IssueInput) (*models.Issue, error)
	Update(ctx context.Context, user models.User, id string, in models.IssueInput) (*models.Issue, error)
	PatchStatus(ctx context.Context, user models.User, id string, status models.IssueStatus) (*models.Issue, error)
	Delete(ctx context.Context, user models.User, id string) error
}

type AnalyticsService interface {
	ForProject(ctx context.Context, user models.User, projectID string) (*analytics.Stats, error)
}

type AttachmentService interface {
	RequestUpload(ctx context.Context, user models.User, issueID string, in models.AttachmentInput) (*models.AttachmentUpload, error)
	List(ctx context.Context, user models.User, issueID string) ([]models.Attachment, error)
}

// Limiter counts hits per key in fixed windows.
type Limiter interface {
	Allow(ctx context.Context, key string, limit int, window time.Duration) (bool, int, error)
}

// Pinger reports database liveness.
type Pinger interface {
	PingContext(ctx context.Context) error
}

// Services bundles the business logic the handlers call into.
type Services struct {
	Users       UserService
	Projects    ProjectService
	Sprints     SprintService
	Issues      IssueService
	Analytics   AnalyticsService
	Attachments AttachmentService
}

type Server struct {
	config  *config.Config
	logger  logging.Logger
	svc     Services
	limiter Limiter
	db      Pinger
	engine  *gin.Engine
}

// NewServer builds the router. A nil limiter disables auth rate limiting.
func NewServer(cfg *config.Config, l logging.Logger, svc Services, limiter Limiter, db Pinger) *Server {
	gin.SetMode(gin.ReleaseMode)

	s := &Server{
		config:  cfg,
		logger:  l.With("module", "http_server"),
		svc:     svc,
		limiter: limiter,
		db:      db,
	}
	s.engine = s.routes()
	return s
}

func (s *Server) routes() *gin.Engine {
	r := gin.New()
	r.Use(gin.Recovery(), s.requestLogger(), s.requestTimeout())

	r.GET("/healthz", s.healthz)

	api := r.Group("/api")

	users := api.Group("/users")
	{
		public := users.Group("")
		public.Use(s.authRateLimit())
		public.POST("/register", s.register)
		public.POST("/login", s.login)

		private := users.Group("")
		private.Use(s.requireAuth())
		private.POST("/logout", s.logout)
		private.GET("/profile", s.profile)
		private.GET("", s.listUsers)
	}

	projects := api.Group("/projects", s.requireAuth())
	{
		projects.GET("", s.listProjects)
		projects.POST("", s.createProject)
		projects.GET("/:id", s.getProject)
		projects.PUT("/:id", s.updateProject)
		projects.DELETE("/:id", s.deleteProject)
		projects.POST("/:id/members", s.addMember)
	}

	sprints := api.Group("/sprints", s.requireAuth())
	{
		sprints.GET("", s.listSprints)
		sprints.POST("", s.createSprint)
		sprints.GET("/:id", s.getSprint)
		sprints.PUT("/:id", s.updateSprint)
		sprints.DELETE("/:id", s.deleteSprint)
	}

	issues := api.Group("/issues", s.requireAuth())
	{
		issues.GET("", s.listIssues)
		issues.POST("", s.createIssue)
		issues.GET("/:id", s.getIssue)
		issues.PUT("/:id", s.updateIssue)
		issues.DELETE("/:id", s.deleteIssue)
		issues.PATCH("/:id/status", s.patchIssueStatus)
		issues.GET("/:id/attachments", s.listAttachments)
		issues.POST("/:id/attachments", s.createAttachment)
	}

	api.GET("/analytics/:projectId", s.requireAuth(), s.projectAnalytics)

	r.NoRoute(func(c *gin.Context) {
		c.JSON(http.StatusNotFound, gin.H{"message": "Not found"})
	})
	return r
}

// Handler returns the router, mainly for tests.
func (s *Server) Handler() http.Handler {
	return s.engine
}

// Run serves until ctx is cancelled, then shuts down gracefully.
func (s *Server) Run(ctx context.Context) error {
	listen, err := net.Listen("tcp", s.config.HTTPAddr)
	if err != nil {
		return err
	}

	srv := &http.Server{
		Handler:      s.engine,
		ReadTimeout:  s.config.ReadTimeout,
		WriteTimeout: s.config.WriteTimeout,
		IdleTimeout:  s.config.IdleTimeout,
	}

	go func() {
		<-ctx.Done()
		s.logger.Info(ctx, "Stopping HTTP server...")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := srv.Shutdown(shutdownCtx); err != nil {
			s.logger.Error(shutdownCtx, "shutdown failed", "error", err)
		}
	}()

	s.logger.Info(ctx, "Starting HTTP server", "address", listen.Addr().String())

	if err := srv.Serve(listen); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	return nil
}

func (s *Server) healthz(c *gin.Context) {
	if s.db != nil {
		if err := s.db.PingContext(c.Request.Context()); err != nil {
			s.logger.Error(c.Request.Context(), "health check failed", "error", err)
			c.JSON(http.StatusServiceUnavailable, gin.H{"status": "unavailable"})
			return
		}
	}
	c.JSON(http.StatusOK, gin.H{"status": "ok"})
}
