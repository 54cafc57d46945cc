package api

import (
	"log/slog"
	"net/http"
	"os"
	"path"
	"path/filepath"
	"strings"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"

	"github.com/ranjit-agency/site/internal/pkg/httputil"
	"github.com/ranjit-agency/site/internal/pkg/logger"
)

// RouterOptions configures NewRouter.
type RouterOptions struct {
	Handlers       *Handlers
	Health         *HealthChecker
	Logger         *slog.Logger
	AllowedOrigins []string
	// StaticDir holds the built SPA. Empty disables static serving.
	StaticDir string
}

// NewRouter builds the HTTP handler for the whole site.
func NewRouter(o RouterOptions) http.Handler {
	r := chi.NewRouter()

	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(logger.AccessLog(o.Logger))
	r.Use(middleware.Recoverer)

	origins := o.AllowedOrigins
	if len(origins) == 0 {
		origins = []string{"*"}
	}
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins: origins,
		AllowedMethods: []string{"GET", "POST", "OPTIONS"},
		AllowedHeaders: []string{"Accept", "Content-Type"},
		MaxAge:         300,
	}))

	if o.Health != nil {
		r.Get("/health", o.Health.HandleHealth)
		r.Get("/health/live", o.Health.HandleLiveness)
		r.Get("/health/ready", o.Health.HandleReadiness)
	}

	h := o.Handlers
	r.Route("/api", func(r chi.Router) {
		r.Get("/services", h.GetServices)
		r.Get("/projects", h.GetProjects)
		r.Get("/projects/{id}", h.GetProject)
		r.Get("/testimonials", h.GetTestimonials)
		r.Get("/team", h.GetTeam)
		r.Get("/timeline", h.GetTimeline)
		r.Post("/contact", h.SubmitContact)

		r.NotFound(func(w http.ResponseWriter, _ *http.Request) {
			httputil.NotFound(w, "Not found")
		})
		r.MethodNotAllowed(func(w http.ResponseWriter, _ *http.Request) {
			httputil.Error(w, http.StatusMethodNotAllowed, "Method not allowed")
		})
	})

	if o.StaticDir != "" {
		spaHandler(r, o.StaticDir)
	}
	return r
}

// spaHandler serves static files and falls back to index.html so client-side
// routes resolve. HEAD is answered like GET.
func spaHandler(r chi.Router, staticPath string) {
	serve := http.HandlerFunc(func(w http.ResponseWriter, req *http.Request) {
		urlPath := req.URL.Path
		if strings.HasPrefix(urlPath, "/api/") || strings.HasPrefix(urlPath, "/health") {
			http.NotFound(w, req)
			return
		}

		// Cleaning a rooted path drops any "..", keeping lookups inside staticPath.
		filePath := filepath.Join(staticPath, filepath.FromSlash(path.Clean("/"+urlPath)))
		if info, err := os.Stat(filePath); err == nil && !info.IsDir() {
			http.ServeFile(w, req, filePath)
			return
		}

		index := filepath.Join(staticPath, "index.html")
		if _, err := os.Stat(index); err != nil {
			http.NotFound(w, req)
			return
		}
		w.Header().Set("Cache-Control", "no-cache")
		http.ServeFile(w, req, index)
	})
	r.Get("/*", serve)
	r.Head("/*", serve)
}
