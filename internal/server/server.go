package server

import (
	"errors"
	"fmt"
	"html/template"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/raysh454/employeesapp/internal/employees"
	"github.com/raysh454/employeesapp/internal/logging"
	"github.com/raysh454/employeesapp/internal/metrics"
)

// Server is the employees web app: server-rendered pages over a repository,
// with anti-forgery protection on the create form.
type Server struct {
	cfg       Config
	router    chi.Router
	repo      employees.Repository
	validator *employees.Validator
	guard     *Guard
	views     *views
	logger    logging.Logger
}

func NewServer(cfg Config, repo employees.Repository, logger logging.Logger) (*Server, error) {
	if repo == nil {
		return nil, errors.New("server: nil repository")
	}
	if logger == nil {
		logger = logging.NewNopLogger()
	}

	guard, err := NewGuard(cfg.AntiForgery, []byte(cfg.AntiForgeryKey))
	if err != nil {
		return nil, fmt.Errorf("creating anti-forgery guard: %w", err)
	}
	val, err := employees.NewValidator()
	if err != nil {
		return nil, fmt.Errorf("creating validator: %w", err)
	}
	v, err := parseViews()
	if err != nil {
		return nil, fmt.Errorf("parsing views: %w", err)
	}

	s := &Server{
		cfg:       cfg,
		router:    chi.NewRouter(),
		repo:      repo,
		validator: val,
		guard:     guard,
		views:     v,
		logger:    logger.With(logging.Field{Key: "component", Value: "server"}),
	}

	s.routes()
	return s, nil
}

func (s *Server) routes() {
	r := s.router

	r.Use(middleware.Recoverer)
	r.Use(s.metricsMiddleware)

	r.Get("/", func(w http.ResponseWriter, r *http.Request) {
		http.Redirect(w, r, "/Employees", http.StatusFound)
	})

	r.Get("/Employees", s.handleIndex)
	r.Get("/Employees/Create", s.handleCreateForm)
	r.Post("/Employees/Create", s.handleCreate)

	r.Get("/healthz", func(w http.ResponseWriter, _ *http.Request) {
		_, _ = w.Write([]byte("ok"))
	})
	r.Handle("/metrics", promhttp.Handler())
}

func (s *Server) metricsMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)
		next.ServeHTTP(ww, r)

		route := r.URL.Path
		if rctx := chi.RouteContext(r.Context()); rctx != nil && rctx.RoutePattern() != "" {
			route = rctx.RoutePattern()
		}
		status := ww.Status()
		if status == 0 {
			status = http.StatusOK
		}
		metrics.HTTPRequests.WithLabelValues(route, r.Method, strconv.Itoa(status)).Inc()
	})
}

// ServeHTTP implements http.Handler.
func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	s.logger.Info("http_request",
		logging.Field{Key: "method", Value: r.Method},
		logging.Field{Key: "path", Value: r.URL.Path})

	s.router.ServeHTTP(w, r)
}

// Close releases the repository.
func (s *Server) Close() error {
	return s.repo.Close()
}

// HTTPServer creates an *http.Server ready to ListenAndServe.
func (s *Server) HTTPServer() *http.Server {
	return &http.Server{
		Addr:        s.cfg.ListenAddr,
		Handler:     s,
		ReadTimeout: s.cfg.ReadTimeout,
	}
}

// --- HTTP handlers ---

func (s *Server) handleIndex(w http.ResponseWriter, r *http.Request) {
	list, err := s.repo.List(r.Context())
	if err != nil {
		s.logger.Error("listing employees", logging.Err(err))
		http.Error(w, "internal server error", http.StatusInternalServerError)
		return
	}
	s.respond(w, http.StatusOK, s.views.index, indexPage{Title: "Index", Employees: list})
}

func (s *Server) handleCreateForm(w http.ResponseWriter, r *http.Request) {
	token := s.guard.Issue(w, r)
	s.respond(w, http.StatusOK, s.views.create, createPage{
		Title:     "Create",
		FieldName: s.guard.FieldName(),
		Token:     token,
	})
}

// handleCreate validates the model before the anti-forgery pair: an invalid
// form only re-renders the view and changes nothing, while a write needs the
// full pair.
func (s *Server) handleCreate(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseForm(); err != nil {
		http.Error(w, "malformed form", http.StatusBadRequest)
		return
	}

	e, verrs := s.validator.FromForm(r.PostForm)
	if verrs != nil {
		s.logger.Debug("employee rejected by validation", logging.Field{Key: "errors", Value: verrs.Error()})
		token := s.guard.Issue(w, r)
		s.respond(w, http.StatusOK, s.views.create, createPage{
			Title: "Create",
			Form: createForm{
				Name:          r.PostForm.Get(employees.FieldName),
				Age:           r.PostForm.Get(employees.FieldAge),
				AccountNumber: r.PostForm.Get(employees.FieldAccountNumber),
			},
			Errors:    verrs,
			FieldName: s.guard.FieldName(),
			Token:     token,
		})
		return
	}

	if err := s.guard.Validate(r); err != nil {
		reason := rejectionReason(err)
		metrics.AntiForgeryRejections.WithLabelValues(reason).Inc()
		s.logger.Warn("anti-forgery validation failed", logging.Field{Key: "reason", Value: reason})
		http.Error(w, ErrAntiForgery.Error(), http.StatusBadRequest)
		return
	}

	created, err := s.repo.Create(r.Context(), e)
	if err != nil {
		s.logger.Error("creating employee", logging.Err(err))
		http.Error(w, "internal server error", http.StatusInternalServerError)
		return
	}
	metrics.EmployeesCreated.Inc()
	s.logger.Info("created employee", logging.Field{Key: "id", Value: created.ID})

	http.Redirect(w, r, "/Employees", http.StatusFound)
}

func (s *Server) respond(w http.ResponseWriter, status int, t *template.Template, data any) {
	if err := render(w, status, t, data); err != nil {
		s.logger.Error("rendering view", logging.Err(err))
		http.Error(w, "internal server error", http.StatusInternalServerError)
	}
}
