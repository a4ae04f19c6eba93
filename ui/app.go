package ui

import (
	"context"
	"embed"
	"fmt"
	"html/template"
	"log"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"

	"sheetstack/domain/compile"
	"sheetstack/internal/config"
	"sheetstack/internal/session"
)

//go:embed templates/*.html help.md
var embeddedFiles embed.FS

// App represents the UI application
type App struct {
	router    *chi.Mux
	config    *config.Config
	sessions  *session.Manager
	templates *template.Template
}

// NewApp creates a new UI application
func NewApp(cfg *config.Config) (*App, error) {
	sessions := session.NewManager(compile.Options{
		AddSourceColumn:  cfg.Compile.AddSourceColumn,
		SourceColumnName: cfg.Compile.SourceColumnName,
	}, cfg.Session.TTL)

	funcMap := template.FuncMap{
		"add": func(a, b int) int { return a + b },
		"minInt": func(a, b int) int {
			if a < b {
				return a
			}
			return b
		},
	}
	templates, err := template.New("").Funcs(funcMap).ParseFS(embeddedFiles, "templates/*.html")
	if err != nil {
		return nil, fmt.Errorf("failed to parse templates: %w", err)
	}

	app := &App{
		router:    chi.NewRouter(),
		config:    cfg,
		sessions:  sessions,
		templates: templates,
	}

	app.setupMiddleware()
	app.setupRoutes()

	return app, nil
}

// Sessions exposes the registry so the caller can run the janitor.
func (a *App) Sessions() *session.Manager {
	return a.sessions
}

// Handler returns the root HTTP handler.
func (a *App) Handler() http.Handler {
	return a.router
}

// setupMiddleware configures HTTP middleware
func (a *App) setupMiddleware() {
	a.router.Use(middleware.Logger)
	a.router.Use(middleware.Recoverer)
	a.router.Use(middleware.Compress(5))
	a.router.Use(a.withSession)
}

// setupRoutes configures the application routes
func (a *App) setupRoutes() {
	// Main pages
	a.router.Get("/", a.handleIndex)
	a.router.Get("/help", a.handleHelp)

	// API endpoints
	a.router.Post("/api/uploads", a.handleUpload)
	a.router.Get("/api/status", a.handleStatus)
	a.router.Post("/api/reset", a.handleReset)
	a.router.Get("/api/download", a.handleDownload)
}

// Start runs the HTTP server until the context is cancelled, then shuts it
// down gracefully.
func (a *App) Start(ctx context.Context) error {
	srv := &http.Server{
		Addr:    ":" + a.config.Server.Port,
		Handler: a.router,
	}

	errCh := make(chan error, 1)
	go func() {
		log.Printf("[App] Starting sheetstack server on %s", srv.Addr)
		errCh <- srv.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		return srv.Shutdown(shutdownCtx)
	}
}

// Template helpers
func (a *App) renderTemplate(w http.ResponseWriter, templateName string, data interface{}) {
	w.Header().Set("Content-Type", "text/html")
	if err := a.templates.ExecuteTemplate(w, templateName, data); err != nil {
		log.Printf("[App] Template error: %v", err)
		http.Error(w, "Template error", http.StatusInternalServerError)
	}
}
