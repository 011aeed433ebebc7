package httpapi

import (
	"context"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/go-chi/httprate"
	"go.uber.org/zap"

	"github.com/Renatocm0708/qr-access-nexus/internal/portunus/service"
	"github.com/Renatocm0708/qr-access-nexus/internal/portunus/store"
)

type Dependencies struct {
	Logger    *zap.Logger
	Addr      string
	Registry  *service.Registry
	Evaluator *service.Evaluator
	Terminals *service.TerminalRegistry
	Logs      store.AccessLogStore

	AllowOrigins []string
	RateLimit    int              // requests per second per IP; 0 disables
	Clock        func() time.Time // resolves "today"/"yesterday"; defaults to time.Now
}

type Server struct {
	httpServer *http.Server
	logger     *zap.Logger
	registry   *service.Registry
	evaluator  *service.Evaluator
	terminals  *service.TerminalRegistry
	logs       store.AccessLogStore
	now        func() time.Time
}

func NewServer(d Dependencies) *Server {
	logger := d.Logger
	if logger == nil {
		logger = zap.NewNop()
	}
	now := d.Clock
	if now == nil {
		now = time.Now
	}

	s := &Server{
		logger:    logger,
		registry:  d.Registry,
		evaluator: d.Evaluator,
		terminals: d.Terminals,
		logs:      d.Logs,
		now:       now,
	}

	s.httpServer = &http.Server{
		Addr:              d.Addr,
		Handler:           s.routes(d),
		ReadHeaderTimeout: 5 * time.Second,
	}
	return s
}

func (s *Server) routes(d Dependencies) http.Handler {
	r := chi.NewRouter()

	origins := d.AllowOrigins
	if len(origins) == 0 {
		origins = []string{"*"}
	}
	r.Use(middleware.RequestID)
	r.Use(middleware.Recoverer)
	r.Use(loggingMiddleware(s.logger))
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins: origins,
		AllowedMethods: []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowedHeaders: []string{"Accept", "Content-Type"},
		MaxAge:         300,
	}))
	if d.RateLimit > 0 {
		r.Use(httprate.LimitByIP(d.RateLimit, time.Second))
	}

	r.Get("/healthz", func(w http.ResponseWriter, _ *http.Request) {
		writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
	})

	r.Route("/v1", func(r chi.Router) {
		r.Post("/access_request", s.handleAccessRequest)
		r.Get("/summary", s.handleSummary)

		r.Route("/access_logs", func(r chi.Router) {
			r.Get("/", s.handleListLogs)
			r.Get("/export.xlsx", s.handleExportLogs)
		})

		r.Route("/schedules", func(r chi.Router) {
			r.Get("/", s.handleListSchedules)
			r.Post("/", s.handleCreateSchedule)
			r.Get("/calendar.ics", s.handleSchedulesCalendar)
			r.Get("/{id}", s.handleGetSchedule)
			r.Put("/{id}", s.handleUpdateSchedule)
			r.Delete("/{id}", s.handleDeleteSchedule)
			r.Get("/{id}/calendar.ics", s.handleScheduleCalendar)
		})

		r.Route("/people", func(r chi.Router) {
			r.Get("/", s.handleListPeople)
			r.Post("/", s.handleCreatePerson)
			r.Get("/{id}", s.handleGetPerson)
			r.Put("/{id}", s.handleUpdatePerson)
			r.Delete("/{id}", s.handleDeletePerson)
			r.Post("/{id}/credential", s.handleIssueCredential)
			r.Delete("/{id}/credential", s.handleRevokeCredential)
		})

		r.Route("/terminals", func(r chi.Router) {
			r.Get("/", s.handleListTerminals)
			r.Get("/{id}", s.handleGetTerminal)
			r.Put("/{id}", s.handleConfigureTerminal)
			r.Delete("/{id}", s.handleDeleteTerminal)
		})
	})

	return r
}

func (s *Server) Handler() http.Handler { return s.httpServer.Handler }

func (s *Server) Start() error {
	return s.httpServer.ListenAndServe()
}

func (s *Server) Shutdown(ctx context.Context) error {
	return s.httpServer.Shutdown(ctx)
}
