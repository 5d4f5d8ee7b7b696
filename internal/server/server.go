// Package server exposes a person store over a JSON HTTP API.
//
// All clients share one store. View state (selected tree, fold flags) is
// per client and keyed by the X-Session-ID header: a request without a known
// id gets a fresh session whose id is returned in the same header. Engine
// calls are serialized by a single mutex.
package server

import (
	"context"
	stderrors "errors"
	"net/http"
	"sync"
	"time"

	"github.com/charmbracelet/log"
	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/go-playground/validator/v10"

	"github.com/matzehuels/kintree/pkg/person"
	"github.com/matzehuels/kintree/pkg/session"
	"github.com/matzehuels/kintree/pkg/storage"
)

// SessionHeader carries the client session id.
const SessionHeader = "X-Session-ID"

// Options configures a Server.
type Options struct {
	Logger         *log.Logger
	AllowedOrigins []string
	// SessionTTL drops sessions idle for longer. Zero keeps them forever.
	SessionTTL time.Duration
	// Repository enables the dataset endpoints when set.
	Repository storage.Repository
	// Metrics is mounted at /metrics when set.
	Metrics http.Handler
	// Tree is the initial tree key of new sessions.
	Tree string
}

// Server handles API requests.
type Server struct {
	mu       sync.Mutex
	store    *person.Store
	sessions map[string]*client

	opts     Options
	logger   *log.Logger
	validate *validator.Validate
	now      func() time.Time
}

type client struct {
	sess     *session.Session
	lastSeen time.Time
}

// New creates a server over store.
func New(store *person.Store, opts Options) *Server {
	if store == nil {
		store = person.NewStore()
	}
	logger := opts.Logger
	if logger == nil {
		logger = log.Default()
	}
	if opts.Tree == "" {
		opts.Tree = person.TreeAll
	}
	return &Server{
		store:    store,
		sessions: make(map[string]*client),
		opts:     opts,
		logger:   logger,
		validate: validator.New(),
		now:      time.Now,
	}
}

// Handler returns the routed HTTP handler.
func (s *Server) Handler() http.Handler {
	r := chi.NewRouter()

	r.Use(chimiddleware.RequestID)
	r.Use(chimiddleware.RealIP)
	r.Use(chimiddleware.Recoverer)
	r.Use(requestLogger(s.logger))

	origins := s.opts.AllowedOrigins
	if len(origins) == 0 {
		origins = []string{"*"}
	}
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins: origins,
		AllowedMethods: []string{"GET", "POST", "PUT", "PATCH", "DELETE", "OPTIONS"},
		AllowedHeaders: []string{"Accept", "Content-Type", SessionHeader, "X-Request-ID"},
		ExposedHeaders: []string{SessionHeader, "X-Request-ID", "Content-Disposition"},
		MaxAge:         300,
	}))

	r.Get("/health", s.health)
	if s.opts.Metrics != nil {
		r.Handle("/metrics", s.opts.Metrics)
	}

	r.Route("/api/v1", func(r chi.Router) {
		r.Use(s.withSession)

		r.Get("/trees", s.listTrees)
		r.Put("/tree", s.selectTree)

		r.Get("/forest", s.getForest)
		r.Get("/diagnostics", s.getDiagnostics)
		r.Get("/relationship", s.getRelationship)

		r.Route("/fold", func(r chi.Router) {
			r.Post("/collapse-all", s.collapseAll)
			r.Post("/expand-all", s.expandAll)
			r.Post("/{id}", s.toggleFold)
		})

		r.Route("/people", func(r chi.Router) {
			r.Get("/", s.listPeople)
			r.Post("/", s.createPerson)
			r.Get("/{id}", s.getPerson)
			r.Patch("/{id}", s.updatePerson)
			r.Delete("/{id}", s.deletePerson)
		})

		r.Post("/import", s.importData)
		r.Get("/export", s.exportData)

		if s.opts.Repository != nil {
			r.Route("/datasets", func(r chi.Router) {
				r.Get("/", s.listDatasets)
				r.Post("/{name}/save", s.saveDataset)
				r.Post("/{name}/load", s.loadDataset)
				r.Delete("/{name}", s.deleteDataset)
			})
		}
	})

	return r
}

// ListenAndServe serves on addr until ctx is cancelled, then shuts down
// gracefully.
func (s *Server) ListenAndServe(ctx context.Context, addr string) error {
	srv := &http.Server{
		Addr:              addr,
		Handler:           s.Handler(),
		ReadHeaderTimeout: 10 * time.Second,
	}

	errc := make(chan error, 1)
	go func() {
		s.logger.Info("listening", "addr", addr)
		errc <- srv.ListenAndServe()
	}()

	select {
	case err := <-errc:
		if stderrors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return err
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		s.logger.Info("shutting down")
		return srv.Shutdown(shutdownCtx)
	}
}
