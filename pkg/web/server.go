// Package web serves the future-value calculator: a server-rendered page,
// a small JSON API and the static assets behind both.
package web

import (
	"context"
	"errors"
	"io/fs"
	"net/http"
	"os"
	"path/filepath"
	"time"

	"github.com/gorilla/mux"
	"github.com/rotisserie/eris"
	"github.com/rs/zerolog/log"
	"github.com/unrolled/secure"

	"github.com/aaelony/dx-fintools-fs/pkg/storage"
	"github.com/aaelony/dx-fintools-fs/pkg/web/config"
)

// Server holds everything the handlers need.
type Server struct {
	cfg       *config.Config
	history   *storage.Store
	templates *templateSet
	assets    fs.FS
}

// New assembles a server from its parts. In dev mode assets are read from
// disk instead of the embedded copies.
func New(cfg *config.Config, history *storage.Store) (*Server, error) {
	assets := Assets()
	if cfg.Dev {
		assets = os.DirFS(cfg.Assets.Dir)
	}

	templates, err := newTemplateSet(assets)
	if err != nil {
		return nil, err
	}

	return &Server{
		cfg:       cfg,
		history:   history,
		templates: templates,
		assets:    assets,
	}, nil
}

// Router builds the HTTP route table.
func (s *Server) Router() http.Handler {
	r := mux.NewRouter()
	r.HandleFunc("/", s.handleIndex).Methods(http.MethodGet)
	r.HandleFunc("/api/fv", s.handleFutureValue).Methods(http.MethodPost)
	r.HandleFunc("/api/pv", s.handlePresentValue).Methods(http.MethodPost)
	r.HandleFunc("/api/history", s.handleHistory).Methods(http.MethodGet)
	r.HandleFunc("/healthz", s.handleHealth).Methods(http.MethodGet)

	static, err := fs.Sub(s.assets, "static")
	if err == nil {
		r.PathPrefix("/static/").Handler(
			http.StripPrefix("/static/", http.FileServer(http.FS(static))))
	}

	return r
}

// Serve runs the HTTP server until the context is canceled.
func Serve(ctx context.Context, cfg *config.Config) error {
	if err := os.MkdirAll(cfg.Data.Dir, 0o755); err != nil {
		return eris.Wrapf(err, "failed to create data directory %s", cfg.Data.Dir)
	}

	history, err := storage.Open(filepath.Join(cfg.Data.Dir, "history.db"))
	if err != nil {
		return err
	}
	defer history.Close()

	server, err := New(cfg, history)
	if err != nil {
		return err
	}

	if cfg.Dev {
		if err := watchAssets(ctx, cfg.Assets.Dir, server.templates, &log.Logger); err != nil {
			return err
		}
	}

	sm := secure.New(secure.Options{
		IsDevelopment:      cfg.Dev,
		BrowserXssFilter:   true,
		ContentTypeNosniff: true,
		FrameDeny:          true,
	})

	httpServer := http.Server{
		Handler:      sm.Handler(logMiddleware(server.Router())),
		Addr:         cfg.HTTP.Address,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
	}

	go func() {
		<-ctx.Done()

		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()

		if err := httpServer.Shutdown(shutdownCtx); err != nil {
			log.Warn().Err(err).Msg("failed to shut down cleanly")
		}
	}()

	log.Info().Msgf("Listening on %s", cfg.HTTP.Address)
	err = httpServer.ListenAndServe()
	if errors.Is(err, http.ErrServerClosed) {
		return nil
	}

	return err
}
