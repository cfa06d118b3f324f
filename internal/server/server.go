// Package server wires the gridform packages into an htmx admin: list views
// driven by the URL, modal edit forms held in server-side sessions, reveal
// toggles and multi-file uploads.
package server

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"net/http"
	"sync"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/goliatone/go-gridform/components/choices"
	"github.com/goliatone/go-gridform/pkg/apiclient"
	"github.com/goliatone/go-gridform/pkg/appctx"
	"github.com/goliatone/go-gridform/pkg/columns"
	"github.com/goliatone/go-gridform/pkg/queryparam"
	"github.com/goliatone/go-gridform/pkg/renderers/vanilla"
	"github.com/goliatone/go-gridform/pkg/schema"
	"github.com/goliatone/go-gridform/pkg/upload"
)

// DefaultSessionTTL bounds how long an idle modal session is kept.
const DefaultSessionTTL = 30 * time.Minute

// Deps are the collaborators of a Server.
type Deps struct {
	Schemas  *schema.Store
	Renderer *vanilla.Renderer
	Backend  Backend
	App      *appctx.Context
	// Presigner and Uploader feed the upload pipeline. Persister returns the
	// persister of one resource. Uploads are disabled when any is nil.
	Presigner upload.Presigner
	Uploader  upload.Uploader
	Persister func(resource string) upload.Persister
	// Assets overrides the embedded stylesheet bundle.
	Assets fs.FS
}

// Option configures a Server.
type Option func(*Server)

// WithLogger sets the logger.
func WithLogger(logger *zap.Logger) Option {
	return func(s *Server) {
		if logger != nil {
			s.logger = logger
		}
	}
}

// WithSessionTTL sets the idle lifetime of modal sessions.
func WithSessionTTL(ttl time.Duration) Option {
	return func(s *Server) {
		if ttl > 0 {
			s.sessionTTL = ttl
		}
	}
}

// WithUploadConcurrency caps parallel uploads per request.
func WithUploadConcurrency(n int) Option {
	return func(s *Server) {
		s.uploadConcurrency = n
	}
}

// WithAssetPrefix sets the mount path of static assets.
func WithAssetPrefix(prefix string) Option {
	return func(s *Server) {
		if prefix != "" {
			s.assetPrefix = prefix
		}
	}
}

// WithPageSize sets the page size used when the URL carries none. Sizes
// outside queryparam.AllowedSizes are ignored.
func WithPageSize(size int) Option {
	return func(s *Server) {
		if queryparam.ValidSize(size) {
			s.pageSize = size
		}
	}
}

// WithHTTPTimeouts sets the read and write timeouts of ListenAndServe.
func WithHTTPTimeouts(read, write time.Duration) Option {
	return func(s *Server) {
		s.readTimeout = read
		s.writeTimeout = write
	}
}

// Server is the admin HTTP application.
type Server struct {
	deps              Deps
	sessions          *sessionStore
	choices           *choices.Component
	columnsMu         sync.Mutex
	columns           map[string]*columns.Cache[apiclient.Record]
	logger            *zap.Logger
	sessionTTL        time.Duration
	uploadConcurrency int
	assetPrefix       string
	pageSize          int
	readTimeout       time.Duration
	writeTimeout      time.Duration
}

// New validates deps and builds a server.
func New(deps Deps, opts ...Option) (*Server, error) {
	if deps.Schemas == nil || deps.Schemas.Empty() {
		return nil, errors.New("server: no schemas loaded")
	}
	if deps.Renderer == nil {
		return nil, errors.New("server: renderer is required")
	}
	if deps.Backend == nil {
		return nil, errors.New("server: backend is required")
	}
	s := &Server{
		deps:        deps,
		logger:      zap.NewNop(),
		sessionTTL:  DefaultSessionTTL,
		assetPrefix: vanilla.DefaultAssetPrefix,
		pageSize:    queryparam.DefaultSize,
		columns:     make(map[string]*columns.Cache[apiclient.Record]),
	}
	for _, opt := range opts {
		if opt != nil {
			opt(s)
		}
	}
	if s.deps.App == nil {
		s.deps.App = appctx.New(s.logger)
	}
	if s.deps.Assets == nil {
		s.deps.Assets = vanilla.AssetsFS()
	}
	s.sessions = newSessionStore(s.sessionTTL)
	s.choices = choices.New(choices.WithSource(deps.Schemas))
	return s, nil
}

// App returns the application context shared by all requests.
func (s *Server) App() *appctx.Context { return s.deps.App }

// Routes builds the router.
func (s *Server) Routes() http.Handler {
	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.Recoverer)
	r.Use(s.requestLogger)
	r.Use(s.withAppContext)

	r.Get("/", s.handleHome)
	r.Handle(s.assetPrefix+"*", http.StripPrefix(s.assetPrefix, http.FileServer(http.FS(s.deps.Assets))))
	if _, err := s.choices.Mount(r, "/"); err != nil {
		s.logger.Error("register choices", zap.Error(err))
	}

	r.Route("/{entity}", func(r chi.Router) {
		r.Use(s.requireEntity)
		r.Get("/", s.handleList)
		r.Post("/filters", s.handleFilters)
		r.Get("/new", s.handleNew)
		r.Get("/delete", s.handleBulkDelete)
		r.Get("/{id}/edit", s.handleEdit)
		r.Post("/{id}/files", s.handleUpload)

		r.Route("/modal/{sid}", func(r chi.Router) {
			r.Use(s.requireSession)
			r.Post("/fields/{field}", s.handleFieldChange)
			r.Post("/save", s.handleSave)
			r.Post("/close", s.handleClose)
			r.Post("/discard", s.handleDiscard)
			r.Post("/cancel", s.handleCancel)
			r.Get("/delete", s.handleDeleteConfirm)
			r.Post("/delete", s.handleDelete)
			r.Post("/delete/cancel", s.handleDeleteCancel)
			r.Get("/reveal/{field}", s.handleReveal)
		})
	})
	return r
}

// ListenAndServe serves on addr until ctx is done, then shuts down within
// shutdownTimeout.
func (s *Server) ListenAndServe(ctx context.Context, addr string, shutdownTimeout time.Duration) error {
	srv := &http.Server{
		Addr:              addr,
		Handler:           s.Routes(),
		ReadHeaderTimeout: 10 * time.Second,
		ReadTimeout:       s.readTimeout,
		WriteTimeout:      s.writeTimeout,
	}

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		s.logger.Info("admin server listening", zap.String("addr", addr))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return fmt.Errorf("server: listen: %w", err)
		}
		return nil
	})
	g.Go(func() error {
		<-gctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()
		if err := srv.Shutdown(shutdownCtx); err != nil {
			return fmt.Errorf("server: shutdown: %w", err)
		}
		s.logger.Info("admin server stopped")
		return nil
	})
	return g.Wait()
}

func (s *Server) handleHome(w http.ResponseWriter, r *http.Request) {
	entities := s.deps.Schemas.Entities()
	if len(entities) == 0 {
		http.NotFound(w, r)
		return
	}
	http.Redirect(w, r, entityPath(entities[0]), http.StatusSeeOther)
}
