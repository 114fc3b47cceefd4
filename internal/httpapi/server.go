// Package httpapi serves the dashboard modules over HTTP. Every request
// opens a short-lived module session against the store, so responses always
// reflect the latest snapshot and the same gates apply as in the CLI.
package httpapi

import (
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"golang.org/x/text/language"

	"github.com/mesh-intelligence/boardroom/internal/i18n"
	"github.com/mesh-intelligence/boardroom/internal/view"
	"github.com/mesh-intelligence/boardroom/pkg/types"
)

// Identity headers read when no token validator is configured.
const (
	HeaderUserID   = "X-User-ID"
	HeaderUserRole = "X-User-Role"
)

// DefaultLoadTimeout bounds how long a request waits for module data.
const DefaultLoadTimeout = 5 * time.Second

// TokenValidator resolves a bearer token to an identity.
type TokenValidator interface {
	Validate(token string) (*types.Identity, error)
}

// Options configures a Server.
type Options struct {
	Logger      *slog.Logger
	Catalog     *i18n.Catalog
	Locale      language.Tag
	Tokens      TokenValidator
	LoadTimeout time.Duration
	Clock       func() time.Time
	Version     string
}

// Server holds the HTTP handlers.
type Server struct {
	store types.Store
	opts  Options
	log   *slog.Logger
}

// New returns a server over store.
func New(store types.Store, opts Options) *Server {
	if opts.Logger == nil {
		opts.Logger = slog.Default()
	}
	if opts.Locale == language.Und {
		opts.Locale = view.DefaultLocale
	}
	if opts.LoadTimeout <= 0 {
		opts.LoadTimeout = DefaultLoadTimeout
	}
	if opts.Clock == nil {
		opts.Clock = time.Now
	}
	return &Server{store: store, opts: opts, log: opts.Logger.With("component", "http")}
}

// Routes returns the router.
func (s *Server) Routes() http.Handler {
	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(s.requestLogger)
	r.Use(middleware.Recoverer)

	r.Get("/healthz", s.health)

	r.Group(func(r chi.Router) {
		r.Use(s.identify)
		r.Get("/modules", s.listModules)
		r.Route("/modules/{module}", func(r chi.Router) {
			r.Get("/", s.getModule)
			r.Get("/records", s.listRecords)
			r.Post("/records", s.createRecord)
			r.Put("/records/{id}", s.updateRecord)
			r.Delete("/records/{id}", s.deleteRecord)
			r.Get("/aggregates/{chart}", s.aggregate)
			r.Get("/export.csv", s.exportCSV)
		})
	})
	return r
}
