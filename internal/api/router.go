package api

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"

	"github.com/lectureqa/lectureqa/internal/api/handlers"
	"github.com/lectureqa/lectureqa/internal/api/middleware"
	"github.com/lectureqa/lectureqa/internal/config"
	"github.com/lectureqa/lectureqa/internal/jobs"
	"github.com/lectureqa/lectureqa/internal/match"
	"github.com/lectureqa/lectureqa/internal/worker"
)

type Router struct {
	mux      *chi.Mux
	cfg      *config.Config
	store    jobs.Store
	runner   *jobs.Runner
	worker   *worker.Worker
	matchSvc *match.Service
}

// NewRouter wires the HTTP surface. matchSvc may be nil when no model API
// key is configured; the match endpoint then answers 503.
func NewRouter(cfg *config.Config, store jobs.Store, runner *jobs.Runner, wk *worker.Worker, matchSvc *match.Service) *Router {
	return &Router{
		mux:      chi.NewRouter(),
		cfg:      cfg,
		store:    store,
		runner:   runner,
		worker:   wk,
		matchSvc: matchSvc,
	}
}

func (rt *Router) Setup() http.Handler {
	r := rt.mux

	// Global middleware
	r.Use(chimiddleware.RequestID)
	r.Use(chimiddleware.RealIP)
	r.Use(middleware.Logging)
	r.Use(chimiddleware.Recoverer)
	r.Use(middleware.CORS([]string{"*"}))

	rl := middleware.NewRateLimiter(20, 60)
	r.Use(rl.Limit)

	// Health endpoints
	health := handlers.NewHealthHandler(rt.cfg)
	r.Get("/healthz", health.Healthz)
	r.Get("/readyz", health.Readyz)

	transcribeH := handlers.NewTranscribeHandler(rt.store, rt.runner, rt.worker, rt.cfg.Uploads.UploadDir, rt.cfg.Uploads.MaxUploadMB)
	jobH := handlers.NewJobHandler(rt.store)
	matchH := handlers.NewMatchHandler(rt.matchSvc)
	questionsH := handlers.NewQuestionsHandler(rt.cfg.Uploads.MaxUploadMB)

	r.Route("/api", func(r chi.Router) {
		r.Post("/transcribe", transcribeH.Submit)
		r.Get("/jobs/{id}", jobH.Get)
		r.Post("/match", matchH.Match)
		r.Post("/questions/extract", questionsH.Extract)
		r.Get("/health", health.Readyz)
	})

	return r
}
