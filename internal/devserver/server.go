package devserver

import (
	"context"
	"fmt"
	"log/slog"
	"net"
	"net/http"
	"path/filepath"
	"time"

	"github.com/fsnotify/fsnotify"
	"golang.org/x/sync/errgroup"
)

// Config holds the devserver settings.
type Config struct {
	Store    *Store
	Port     int
	SeedFile string // optional fixture override, reloaded on change
	Logger   *slog.Logger
}

// Server serves the backend API contract from the fixture store.
type Server struct {
	store    *Store
	port     int
	seedFile string
	logger   *slog.Logger
}

// NewServer creates a devserver instance.
func NewServer(cfg Config) *Server {
	logger := cfg.Logger
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}
	return &Server{
		store:    cfg.Store,
		port:     cfg.Port,
		seedFile: cfg.SeedFile,
		logger:   logger,
	}
}

// Serve starts the HTTP server and blocks until the context is cancelled.
func (s *Server) Serve(ctx context.Context) error {
	addr := fmt.Sprintf(":%d", s.port)
	s.logger.Info("starting devserver", "addr", fmt.Sprintf("http://localhost:%d", s.port))

	eg, egctx := errgroup.WithContext(ctx)

	srv := &http.Server{
		Addr:    addr,
		Handler: s.Routes(),
		BaseContext: func(_ net.Listener) context.Context {
			return egctx
		},
		ReadHeaderTimeout: 10 * time.Second,
	}

	if s.seedFile != "" {
		eg.Go(func() error {
			return s.watchSeedFile(egctx)
		})
	}

	eg.Go(func() error {
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			return fmt.Errorf("server error: %w", err)
		}
		return nil
	})

	eg.Go(func() error {
		<-egctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()

		s.logger.Debug("shutting down devserver...")
		return srv.Shutdown(shutdownCtx)
	})

	return eg.Wait()
}

// watchSeedFile reseeds the store whenever the fixture file changes.
func (s *Server) watchSeedFile(ctx context.Context) error {
	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return err
	}
	defer func() { _ = watcher.Close() }()

	// Watch the directory: editors replace files on save, which drops
	// a watch registered on the file itself.
	if err := watcher.Add(filepath.Dir(s.seedFile)); err != nil {
		s.logger.Error("failed to watch seed file", "error", err)
		return nil
	}

	target, err := filepath.Abs(s.seedFile)
	if err != nil {
		return err
	}

	var debounceTimer *time.Timer

	for {
		select {
		case <-ctx.Done():
			return nil

		case event := <-watcher.Events:
			if event.Op&(fsnotify.Write|fsnotify.Create) == 0 {
				continue
			}
			if abs, err := filepath.Abs(event.Name); err != nil || abs != target {
				continue
			}

			if debounceTimer != nil {
				debounceTimer.Stop()
			}
			debounceTimer = time.AfterFunc(200*time.Millisecond, func() {
				s.logger.Debug("seed file changed, reloading", "file", event.Name)

				data, err := LoadSeedFile(s.seedFile)
				if err != nil {
					s.logger.Error("seed reload failed", "error", err)
					return
				}
				if err := s.store.Seed(context.Background(), data); err != nil {
					s.logger.Error("reseed failed", "error", err)
				}
			})

		case err := <-watcher.Errors:
			s.logger.Error("watcher error", "error", err)
		}
	}
}
