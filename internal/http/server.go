package http

import (
	"context"
	"errors"
	"html/template"
	"io/fs"
	"net/http"
	"sync"
	"time"

	"budget/internal/cache"
	"budget/internal/log"
	"budget/internal/middleware/ratelimit"
	"budget/internal/middleware/security"
	"budget/internal/middleware/trace"
	"budget/internal/services"
	appweb "budget/web"
)

// Options configures NewServer. Zero values fall back to defaults.
type Options struct {
	Logger             *log.Logger
	SessionSecret      string
	TrustedProxies     []string
	RateLimitPerMinute int
	CacheCleanup       time.Duration

	// TemplatesFS and StaticFS default to the embedded web assets.
	TemplatesFS fs.FS
	StaticFS    fs.FS
}

type appMetrics struct {
	uptime time.Time
}

type Server struct {
	http.Server
	service   *services.BudgetService
	templates map[string]*template.Template
	flash     *FlashStore
	logger    *log.Logger

	rateLimiter      *ratelimit.Limiter
	securityDetector *security.Detector
	traceMiddleware  *trace.Middleware
	cacheManager     *cache.Manager
	appMetrics       appMetrics

	shutdownOnce sync.Once
}

// NewServer wires routes, templates and middleware around svc.
func NewServer(addr string, svc *services.BudgetService, opts Options) (*Server, error) {
	if svc == nil {
		return nil, errors.New("budget service is required")
	}
	logger := opts.Logger
	if logger == nil {
		logger = log.New(log.DefaultConfig())
	}
	if opts.TemplatesFS == nil {
		opts.TemplatesFS = appweb.TemplatesFS
	}
	if opts.StaticFS == nil {
		opts.StaticFS = appweb.StaticFS
	}
	if opts.CacheCleanup <= 0 {
		opts.CacheCleanup = 10 * time.Minute
	}

	flash, err := NewFlashStore(opts.SessionSecret)
	if err != nil {
		return nil, err
	}
	templates, err := loadTemplates(opts.TemplatesFS)
	if err != nil {
		return nil, err
	}
	detector, err := security.NewDetector(opts.TrustedProxies...)
	if err != nil {
		return nil, err
	}

	s := &Server{
		service:          svc,
		templates:        templates,
		flash:            flash,
		logger:           logger.WithComponent(log.ComponentHTTP),
		securityDetector: detector,
		rateLimiter: ratelimit.NewLimiter(ratelimit.Config{
			RequestsPerMinute: opts.RateLimitPerMinute,
		}),
		cacheManager: cache.NewManager(logger),
		appMetrics:   appMetrics{uptime: time.Now()},
	}
	s.traceMiddleware = trace.NewMiddleware(detector.ExtractClientIP, logger)

	s.cacheManager.Register(svc.Cache())
	s.cacheManager.StartCleanup(opts.CacheCleanup)

	mux := http.NewServeMux()
	s.routes(mux, opts.StaticFS)

	headers := security.NewHeadersMiddleware(security.DefaultHeadersConfig())
	limited := s.rateLimiter.Middleware(detector.ExtractClientIP, nil)(mux)

	var handler http.Handler = headers.Middleware(limited)
	handler = detector.Middleware(handler)
	handler = s.traceMiddleware.Middleware(handler)
	handler = log.Middleware(logger)(handler)

	s.Server = http.Server{
		Addr:              addr,
		Handler:           handler,
		ReadHeaderTimeout: 10 * time.Second,
		ReadTimeout:       30 * time.Second,
		WriteTimeout:      30 * time.Second,
		IdleTimeout:       120 * time.Second,
	}
	return s, nil
}

func (s *Server) routes(mux *http.ServeMux, static fs.FS) {
	if sub, err := fs.Sub(static, "static"); err == nil {
		files := http.StripPrefix("/static/", http.FileServer(http.FS(sub)))
		mux.Handle("GET /static/", security.StaticAssetMiddleware(3600)(files))
	} else {
		s.logger.Warn("Failed to mount embedded static FS", log.FieldError, err)
	}

	mux.HandleFunc("GET /healthz", s.handleHealth)
	mux.HandleFunc("GET /readyz", s.handleReady)
	mux.HandleFunc("GET /metrics", s.handleMetrics)

	mux.HandleFunc("GET /{$}", s.handleRoot)
	mux.HandleFunc("GET /budget", s.handleOverview)

	mux.HandleFunc("GET /budget/entries", s.handleListEntries)
	mux.HandleFunc("GET /budget/entries/new", s.handleNewEntry)
	mux.HandleFunc("POST /budget/entries", s.handleCreateEntry)
	mux.HandleFunc("GET /budget/entries/{id}/edit", s.handleEditEntry)
	mux.HandleFunc("POST /budget/entries/{id}", s.handleUpdateEntry)
	mux.HandleFunc("POST /budget/entries/{id}/destroy", s.handleDeleteEntry)

	mux.HandleFunc("GET /budget/categories", s.handleListCategories)
	mux.HandleFunc("GET /budget/categories/new", s.handleNewCategory)
	mux.HandleFunc("POST /budget/categories", s.handleCreateCategory)
	mux.HandleFunc("GET /budget/categories/{id}/edit", s.handleEditCategory)
	mux.HandleFunc("POST /budget/categories/{id}", s.handleUpdateCategory)
	mux.HandleFunc("POST /budget/categories/{id}/destroy", s.handleDeleteCategory)

	mux.HandleFunc("/", s.notFound)
}

// Shutdown stops background goroutines and drains the HTTP server.
func (s *Server) Shutdown(ctx context.Context) error {
	var err error
	s.shutdownOnce.Do(func() {
		s.rateLimiter.Stop()
		s.cacheManager.Stop()
		err = s.Server.Shutdown(ctx)
	})
	return err
}
