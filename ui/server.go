package ui

import (
	"context"
	"fmt"
	"html/template"
	"io/fs"
	"log"
	"net/http"
	"strings"
	"time"

	"playerscout/domain/scouting"
	"playerscout/internal/api"
	"playerscout/ui/middleware"

	"github.com/gin-gonic/gin"
)

// Server is the browser front end: one search workflow per session, rendered
// server-side and kept live over SSE
type Server struct {
	router        *gin.Engine
	templates     *template.Template
	embeddedFiles fs.FS
	sessions      *api.Sessions
	hub           *api.SSEHub
}

// NewServer parses the templates under ui/templates in files and wires the routes.
// files must also carry ui/static.
func NewServer(files fs.FS, sessions *api.Sessions, hub *api.SSEHub) (*Server, error) {
	s := &Server{
		router:        gin.Default(),
		embeddedFiles: files,
		sessions:      sessions,
		hub:           hub,
	}

	templates, err := parseTemplates(files)
	if err != nil {
		return nil, err
	}
	s.templates = templates

	s.setupMiddleware()
	s.setupRoutes()
	return s, nil
}

var funcMap = template.FuncMap{
	"pct": func(v float64) string {
		return fmt.Sprintf("%.0f%%", v)
	},
	"per90": func(v float64) string {
		return fmt.Sprintf("%.2f", v)
	},
	"float1": func(v float64) string {
		return fmt.Sprintf("%.1f", v)
	},
	"categoryClass": func(c scouting.Category) string {
		if c == scouting.CategoryNone {
			return "stat-other"
		}
		return "stat-" + string(c)
	},
	"lower": strings.ToLower,
}

func parseTemplates(files fs.FS) (*template.Template, error) {
	templatesFS, err := fs.Sub(files, "ui/templates")
	if err != nil {
		return nil, fmt.Errorf("failed to create templates filesystem: %w", err)
	}

	root, err := fs.Glob(templatesFS, "*.html")
	if err != nil {
		return nil, fmt.Errorf("failed to glob root templates: %w", err)
	}
	nested, err := fs.Glob(templatesFS, "*/*.html")
	if err != nil {
		return nil, fmt.Errorf("failed to glob nested templates: %w", err)
	}

	templates := template.New("").Funcs(funcMap)
	for _, file := range append(root, nested...) {
		content, err := fs.ReadFile(templatesFS, file)
		if err != nil {
			return nil, fmt.Errorf("failed to read template %s: %w", file, err)
		}
		if _, err := templates.New(file).Parse(string(content)); err != nil {
			return nil, fmt.Errorf("failed to parse template %s: %w", file, err)
		}
	}
	log.Printf("[TemplateInit] Parsed %d templates", len(root)+len(nested))
	return templates, nil
}

// setupRoutes configures the application routes
func (s *Server) setupRoutes() {
	pages := NewPageHandler(s.templates)
	handler := NewSessionHandler()

	s.router.GET("/", pages.HandleIndex(s.sessions))
	s.router.GET("/health", s.handleHealth)

	page := s.router.Group("/sessions/:id")
	page.Use(middleware.LoadSessionPage(s.sessions, "/"))
	{
		page.GET("", pages.HandleSessionPage(s.sessions))
		page.GET("/fragment", pages.HandlePlayerFragment(s.sessions))
	}

	apiGroup := s.router.Group("/api")
	{
		apiGroup.POST("/sessions", handler.HandleCreate(s.sessions))
		apiGroup.GET("/events", s.hub.HandleSSE(s.sessions))

		session := apiGroup.Group("/sessions/:id")
		session.Use(middleware.LoadSession(s.sessions))
		{
			session.GET("", handler.HandleGet(s.sessions))
			session.POST("/search", handler.HandleSearch(s.sessions))
			session.POST("/clear", handler.HandleClear(s.sessions))
			session.POST("/analysis", handler.HandleReveal(s.sessions))
			session.DELETE("", handler.HandleDelete(s.sessions))
		}
	}
}

func (s *Server) handleHealth(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"status":    "healthy",
		"sessions":  s.sessions.Count(),
		"streaming": len(s.hub.GetActiveSessions()),
	})
}

// Handler exposes the router for http.Server and tests
func (s *Server) Handler() http.Handler {
	return s.router
}

// Start serves on addr until ctx is cancelled, then drains in-flight requests
func (s *Server) Start(ctx context.Context, addr string) error {
	srv := &http.Server{
		Addr:              addr,
		Handler:           s.router,
		ReadHeaderTimeout: 10 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		log.Printf("Starting PlayerScout UI on http://%s", addr)
		errCh <- srv.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
	}

	// open event streams only end when the hub does
	s.hub.Close()
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		return err
	}
	return nil
}
