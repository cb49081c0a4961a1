package http

import (
	"context"
	"net/http"
	"sync"
	"time"

	"jiceot/internal/log"
	"jiceot/internal/middleware/ratelimit"
	"jiceot/internal/middleware/security"
	"jiceot/internal/middleware/trace"
	"jiceot/internal/services"
)

// Options configures the API server.
type Options struct {
	RateLimitPerMinute int
	Logger             *log.Logger
	// Ready reports backend readiness for /readyz. Nil means always ready.
	Ready func(ctx context.Context) error
}

type Server struct {
	http.Server
	due      *services.DueService
	logger   *log.Logger
	ready    func(ctx context.Context) error
	limiter  *ratelimit.Limiter
	detector *security.Detector

	shutdownOnce sync.Once
}

// NewServer registers the API routes and wraps them in the middleware
// chain, returning a ready-to-run http.Server.
func NewServer(addr string, due *services.DueService, opts Options) *Server {
	logger := opts.Logger
	if logger == nil {
		logger = log.New(log.DefaultConfig())
	}
	logger = logger.WithComponent(log.ComponentHTTP)

	s := &Server{
		due:      due,
		logger:   logger,
		ready:    opts.Ready,
		limiter:  ratelimit.NewLimiter(ratelimit.Config{RequestsPerMinute: opts.RateLimitPerMinute}),
		detector: security.NewDetector(),
	}

	writes := s.limiter.Middleware(s.detector.ExtractClientIP, s.onRateLimited)

	mux := http.NewServeMux()
	mux.HandleFunc("GET /healthz", handleHealth)
	mux.HandleFunc("GET /readyz", s.handleReady)
	mux.HandleFunc("GET /api/dashboard", s.handleDashboard)
	mux.HandleFunc("GET /api/due-items", s.handleDueItems)
	mux.HandleFunc("GET /api/quick-add", s.handleQuickAdd)
	mux.HandleFunc("GET /api/obligation-types", s.handleListTypes)
	mux.Handle("POST /api/obligation-types", writes(http.HandlerFunc(s.handleCreateType)))
	mux.Handle("POST /api/completions", writes(http.HandlerFunc(s.handleCreateCompletion)))

	var handler http.Handler = mux
	handler = trace.NewMiddleware(s.detector.ExtractClientIP).Middleware(handler)
	handler = s.detector.Middleware(handler)
	handler = security.NewHeadersMiddleware(security.DefaultHeadersConfig()).Middleware(handler)
	handler = log.Middleware(logger)(handler)

	s.Server = http.Server{
		Addr:              addr,
		Handler:           handler,
		ReadHeaderTimeout: 10 * time.Second,
		ReadTimeout:       15 * time.Second,
		WriteTimeout:      30 * time.Second,
		IdleTimeout:       60 * time.Second,
	}
	return s
}

func (s *Server) onRateLimited(w http.ResponseWriter, r *http.Request) {
	log.FromContext(r.Context()).WithComponent(log.ComponentRateLimit).WarnContext(r.Context(), "Rate limit exceeded",
		log.FieldClientIP, s.detector.ExtractClientIP(r),
		log.FieldMethod, r.Method,
		log.FieldPath, r.URL.Path)
	TooManyRequestsError().Write(w)
}

// Shutdown stops the limiter and gracefully shuts down the HTTP server.
func (s *Server) Shutdown(ctx context.Context) error {
	var err error
	s.shutdownOnce.Do(func() {
		s.limiter.Stop()
		err = s.Server.Shutdown(ctx)
	})
	return err
}
