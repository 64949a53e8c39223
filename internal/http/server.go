// Package http exposes the entity store and the derived figures as a JSON
// API, plus a websocket stream of change events.
package http

import (
	"context"
	"net/http"
	"sync"
	"time"

	"controlly/internal/log"
	"controlly/internal/middleware/ratelimit"
	"controlly/internal/middleware/security"
	"controlly/internal/middleware/trace"
	"controlly/internal/services"
)

// Services groups the domain services the handlers call into.
type Services struct {
	Transactions *services.TransactionService
	Cards        *services.CardService
	Goals        *services.GoalService
	Reports      *services.ReportService
}

// Options tunes the server. Zero values fall back to defaults.
type Options struct {
	RateLimitPerMinute int
	// Hub serves /api/events when set.
	Hub *Hub
	// Ready checks the storage backend for /readyz.
	Ready  func(context.Context) error
	Logger *log.Logger
	Clock  func() time.Time
}

// Server wraps http.Server with the API routes and middleware chain.
type Server struct {
	http.Server
	svc    Services
	hub    *Hub
	ready  func(context.Context) error
	logger *log.Logger
	clock  func() time.Time

	rateLimiter *ratelimit.Limiter
	detector    *security.Detector
	tracer      *trace.Middleware
	started     time.Time

	shutdownOnce sync.Once
}

// NewServer configures routes and middleware, returning a ready-to-run server.
func NewServer(addr string, svc Services, opts Options) *Server {
	if opts.Logger == nil {
		opts.Logger = log.Nop()
	}
	if opts.Clock == nil {
		opts.Clock = time.Now
	}
	limiterCfg := ratelimit.DefaultConfig()
	if opts.RateLimitPerMinute > 0 {
		limiterCfg.RequestsPerMinute = opts.RateLimitPerMinute
	}

	logger := opts.Logger.WithComponent(log.ComponentHTTP)
	detector := security.NewDetector()

	s := &Server{
		svc:         svc,
		hub:         opts.Hub,
		ready:       opts.Ready,
		logger:      logger,
		clock:       opts.Clock,
		rateLimiter: ratelimit.NewLimiter(limiterCfg),
		detector:    detector,
		tracer:      trace.NewMiddleware(logger, detector.ExtractClientIP),
		started:     time.Now(),
	}

	mux := http.NewServeMux()
	s.routes(mux)

	var handler http.Handler = mux
	handler = s.rateLimiter.Middleware(detector.ExtractClientIP, ratelimit.IsMutating, func(w http.ResponseWriter, r *http.Request) {
		TooManyRequestsError().Write(w)
	})(handler)
	handler = security.NewHeadersMiddleware(security.DefaultHeadersConfig()).Middleware(handler)
	handler = detector.Middleware(handler)
	handler = s.tracer.Middleware(handler)

	s.Server = http.Server{
		Addr:              addr,
		Handler:           handler,
		ReadHeaderTimeout: 5 * time.Second,
		ReadTimeout:       15 * time.Second,
		WriteTimeout:      30 * time.Second,
		IdleTimeout:       60 * time.Second,
	}
	return s
}

func (s *Server) routes(mux *http.ServeMux) {
	mux.HandleFunc("GET /healthz", s.handleHealth)
	mux.HandleFunc("GET /readyz", s.handleReady)
	mux.HandleFunc("GET /metrics", s.handleMetrics)

	mux.HandleFunc("GET /api/transactions", s.handleListTransactions)
	mux.HandleFunc("POST /api/transactions", s.handleCreateTransaction)
	mux.HandleFunc("GET /api/transactions/export.csv", s.handleExportTransactions)
	mux.HandleFunc("GET /api/transactions/{id}", s.handleGetTransaction)
	mux.HandleFunc("PUT /api/transactions/{id}", s.handleUpdateTransaction)
	mux.HandleFunc("DELETE /api/transactions/{id}", s.handleDeleteTransaction)

	mux.HandleFunc("GET /api/cards", s.handleListCards)
	mux.HandleFunc("POST /api/cards", s.handleCreateCard)
	mux.HandleFunc("GET /api/cards/{id}", s.handleGetCard)
	mux.HandleFunc("PUT /api/cards/{id}", s.handleUpdateCard)
	mux.HandleFunc("DELETE /api/cards/{id}", s.handleDeleteCard)
	mux.HandleFunc("GET /api/cards/{id}/usage", s.handleCardUsage)
	mux.HandleFunc("GET /api/cards/{id}/transactions", s.handleCardTransactions)

	mux.HandleFunc("GET /api/goals", s.handleListGoals)
	mux.HandleFunc("POST /api/goals", s.handleCreateGoal)
	mux.HandleFunc("GET /api/goals/{id}", s.handleGetGoal)
	mux.HandleFunc("PUT /api/goals/{id}", s.handleUpdateGoal)
	mux.HandleFunc("DELETE /api/goals/{id}", s.handleDeleteGoal)
	mux.HandleFunc("GET /api/goals/{id}/progress", s.handleGoalProgress)
	mux.HandleFunc("POST /api/goals/{id}/progress", s.handleAddGoalProgress)

	mux.HandleFunc("GET /api/dashboard", s.handleDashboard)
	mux.HandleFunc("GET /api/reports", s.handleReport)
	mux.HandleFunc("GET /api/distribution", s.handleDistribution)

	if s.hub != nil {
		mux.Handle("GET /api/events", s.hub)
	}
}

// Shutdown stops background work and gracefully shuts down the server.
func (s *Server) Shutdown(ctx context.Context) error {
	var err error
	s.shutdownOnce.Do(func() {
		s.rateLimiter.Stop()
		err = s.Server.Shutdown(ctx)
	})
	return err
}
