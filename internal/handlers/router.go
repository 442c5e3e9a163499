package handlers

import (
	"net/http"
	"time"

	"github.com/aawaaz/complaint-desk/internal/dictionary"
	"github.com/aawaaz/complaint-desk/internal/middleware"
	"github.com/aawaaz/complaint-desk/internal/services"
	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"go.opentelemetry.io/contrib/instrumentation/net/http/otelhttp"
	"go.uber.org/zap"
)

// Services bundles what the router dispatches to
type Services struct {
	Complaints *services.ComplaintService
	History    *services.HistoryService
	Feedback   *services.FeedbackService
	Statistics *services.StatisticsService
	Merkle     *services.MerkleService
	Dictionary *dictionary.Registry // nil hides /system/dict
	Store      Pinger
}

// RouterConfig holds the cross-cutting HTTP settings
type RouterConfig struct {
	Logger         *zap.Logger
	JWTSecret      string // empty disables auth
	AllowedOrigins []string
	Limiter        middleware.Limiter
	RateLimitRPM   int
	RequestTimeout time.Duration
}

// NewRouter builds the HTTP API. Every route is served both at the root and
// under /api.
func NewRouter(svc Services, cfg RouterConfig) http.Handler {
	logger := cfg.Logger
	if logger == nil {
		logger = zap.NewNop()
	}
	sugar := logger.Sugar()
	timeout := cfg.RequestTimeout
	if timeout <= 0 {
		timeout = 30 * time.Second
	}

	complaintHandler := NewComplaintHandler(svc.Complaints, svc.History, sugar)
	feedbackHandler := NewFeedbackHandler(svc.Feedback, sugar)
	statisticsHandler := NewStatisticsHandler(svc.Statistics, sugar)
	integrityHandler := NewIntegrityHandler(svc.Merkle, sugar)
	healthHandler := NewHealthHandler(svc.Store, svc.Merkle, sugar)

	r := chi.NewRouter()

	// Global middleware
	r.Use(chimw.RequestID)
	r.Use(chimw.RealIP)
	r.Use(middleware.StructuredLogger(logger))
	r.Use(chimw.Recoverer)
	r.Use(chimw.Timeout(timeout))
	r.Use(middleware.SecurityHeaders())
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins:   cfg.AllowedOrigins,
		AllowedMethods:   []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Authorization", "Content-Type", "X-Request-ID"},
		ExposedHeaders:   []string{"X-Request-ID", "X-Merkle-Root"},
		AllowCredentials: false,
		MaxAge:           300,
	}))

	// Rate limiting
	r.Use(middleware.RateLimit(cfg.Limiter, cfg.RateLimitRPM))

	routes := func(r chi.Router) {
		// Health check
		r.Get("/health", healthHandler.Check)
		r.Get("/health/ready", healthHandler.Ready)

		r.Group(func(r chi.Router) {
			if cfg.JWTSecret != "" {
				r.Use(middleware.RequireAuth(cfg.JWTSecret))
			}

			r.Route("/system/complaint", func(r chi.Router) {
				r.Get("/list", complaintHandler.List)
				r.Post("/add", complaintHandler.Create)
				r.Get("/get", complaintHandler.Get)
				r.Put("/edit", complaintHandler.Update)
				r.Delete("/delete", complaintHandler.DeleteBatch)
				r.Get("/records", complaintHandler.Records)
				r.Post("/records/add", complaintHandler.AddRecord)
			})

			r.Route("/system/complaintFeedback", func(r chi.Router) {
				r.Get("/list", feedbackHandler.List)
				r.Post("/add", feedbackHandler.Submit)
				r.Delete("/batch", feedbackHandler.DeleteBatch)
			})

			if svc.Dictionary != nil {
				dictionaryHandler := NewDictionaryHandler(svc.Dictionary, sugar)
				r.Get("/system/dict/{kind}", dictionaryHandler.List)
			}

			// Legacy REST generation
			r.Route("/complaints", func(r chi.Router) {
				r.Get("/", complaintHandler.List)
				r.Post("/", complaintHandler.Create)
				r.Get("/{id}", complaintHandler.Get)
				r.Put("/{id}", complaintHandler.Update)
				r.Delete("/{id}", complaintHandler.Delete)
			})

			r.Route("/statistics", func(r chi.Router) {
				r.Get("/overview", statisticsHandler.Overview)
				r.Get("/types", statisticsHandler.Types)
				r.Get("/monthly-trends", statisticsHandler.MonthlyTrends)
				r.Get("/areas", statisticsHandler.Areas)
			})

			// Integrity endpoints (Merkle tree over resolve history)
			r.Route("/integrity", func(r chi.Router) {
				r.Get("/root", integrityHandler.GetRoot)
				r.Get("/proof/{index}", integrityHandler.GetProof)
				r.Post("/verify", integrityHandler.Verify)
			})
		})
	}

	routes(r)
	r.Route("/api", routes)

	return otelhttp.NewHandler(r, "complaint-desk")
}
