package http

import (
	"context"
	"html/template"
	"io/fs"
	"net/http"
	"sync"
	"time"

	"gagyebu/internal/core"
	applog "gagyebu/internal/log"
	"gagyebu/internal/middleware/ratelimit"
	"gagyebu/internal/middleware/security"
	"gagyebu/internal/middleware/trace"
	"gagyebu/internal/services"
	appweb "gagyebu/web"
)

// Deps are the collaborators the handlers need.
type Deps struct {
	Ledger     *services.LedgerService
	Calendar   *services.CalendarService
	Stats      *services.StatsService
	Categories []string
	// Location decides which calendar day is "today". Defaults to time.Local.
	Location *time.Location
	Logger   *applog.Logger
	// Now is overridable in tests.
	Now func() time.Time
}

type Server struct {
	http.Server
	templates *template.Template

	ledger     *services.LedgerService
	calendar   *services.CalendarService
	stats      *services.StatsService
	categories []string

	loc     *time.Location
	now     func() time.Time
	started time.Time

	logger   *applog.Logger
	events   *applog.StructuredLogger
	limiter  *ratelimit.Limiter
	detector *security.Detector

	shutdownOnce sync.Once
}

// NewServer configures routes, middleware and templates, returning a ready-to-run server.
func NewServer(addr string, deps Deps) *Server {
	logger := deps.Logger
	if logger == nil {
		logger = applog.New(applog.DefaultConfig())
	}
	logger = logger.WithComponent(applog.ComponentHTTP)

	s := &Server{
		ledger:     deps.Ledger,
		calendar:   deps.Calendar,
		stats:      deps.Stats,
		categories: deps.Categories,
		loc:        deps.Location,
		now:        deps.Now,
		started:    time.Now(),
		logger:     logger,
		events:     applog.NewStructuredLogger(logger),
		limiter:    ratelimit.NewLimiter(ratelimit.DefaultConfig()),
		detector:   security.NewDetector(),
	}
	if s.loc == nil {
		s.loc = time.Local
	}
	if s.now == nil {
		s.now = time.Now
	}
	if len(s.categories) == 0 {
		s.categories = []string{core.DefaultCategory}
	}

	t, err := parseTemplates()
	if err != nil {
		logger.Warn("Failed parsing templates", "error", err)
	}
	s.templates = t

	mux := http.NewServeMux()

	if sub, err := fs.Sub(appweb.StaticFS, "static"); err == nil {
		static := http.StripPrefix("/static/", http.FileServer(http.FS(sub)))
		mux.Handle("GET /static/", security.StaticAssetMiddleware(3600)(static))
	} else {
		logger.Warn("Failed to mount embedded static FS", "error", err)
	}

	mux.HandleFunc("GET /{$}", s.handleIndex)
	mux.HandleFunc("GET /calendar", s.handleCalendar)
	mux.HandleFunc("GET /ledger/{date}", s.handleEditor)
	mux.HandleFunc("POST /ledger/{date}/transactions", s.handleAddTransaction)
	mux.HandleFunc("DELETE /ledger/{date}/transactions/{id}", s.handleRemoveTransaction)
	mux.HandleFunc("POST /ledger/{date}/transactions/{id}", s.handleRemoveTransaction)
	mux.HandleFunc("GET /stats", s.handleStats)
	mux.HandleFunc("GET /stats/chart", s.handleStatsChart)
	mux.HandleFunc("GET /healthz", s.handleHealth)
	mux.HandleFunc("GET /readyz", s.handleReady)

	s.Server = http.Server{
		Addr:              addr,
		Handler:           s.middleware(mux),
		ReadHeaderTimeout: 5 * time.Second,
		ReadTimeout:       15 * time.Second,
		WriteTimeout:      15 * time.Second,
		IdleTimeout:       60 * time.Second,
	}
	return s
}

// middleware wraps h, outermost first: tracing, context logger, request id,
// security headers, hostile request detection, POST rate limit.
func (s *Server) middleware(h http.Handler) http.Handler {
	h = s.limiter.Middleware(s.detector.ExtractClientIP, func(w http.ResponseWriter, r *http.Request) {
		applog.FromContext(r.Context()).WithComponent(applog.ComponentRateLimit).
			WarnContext(r.Context(), "Rate limit exceeded", applog.FieldClientIP, s.detector.ExtractClientIP(r))
		ErrorResponse(http.StatusTooManyRequests, "요청이 너무 많습니다. 잠시 후 다시 시도해주세요.").
			Header("Retry-After", "60").
			Write(w)
	})(h)
	h = s.detector.Middleware(h)
	h = security.NewHeadersMiddleware(security.DefaultHeadersConfig()).Middleware(h)
	h = applog.RequestIDMiddleware(trace.RequestIDFromRequest)(h)
	h = applog.Middleware(s.logger)(h)
	h = trace.NewMiddleware(s.logger, s.detector.ExtractClientIP).Middleware(h)
	return h
}

// Shutdown stops the rate limiter sweep and drains the HTTP server.
func (s *Server) Shutdown(ctx context.Context) error {
	s.shutdownOnce.Do(s.limiter.Stop)
	return s.Server.Shutdown(ctx)
}

// today is the calendar date in the configured location.
func (s *Server) today() core.Date {
	return core.DateOf(s.now().In(s.loc))
}
