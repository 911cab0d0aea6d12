package cli

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/spf13/cobra"

	"github.com/roach88/todolist/internal/engine"
	"github.com/roach88/todolist/internal/kvstore"
	"github.com/roach88/todolist/internal/msg"
	"github.com/roach88/todolist/internal/store"
	"github.com/roach88/todolist/internal/todo"
)

// session is one opened database with a running engine in front of it.
type session struct {
	store   todo.Store
	engine  *engine.Engine
	handler *msg.Handler
	logger  *slog.Logger

	// registry holds the engine instruments and the backend collector.
	registry *prometheus.Registry

	ctx    context.Context
	cancel context.CancelFunc
	done   chan error
}

// newLogger returns a text logger on w at Info, or Debug when verbose.
func newLogger(w io.Writer, verbose bool) *slog.Logger {
	level := slog.LevelInfo
	if verbose {
		level = slog.LevelDebug
	}
	return slog.New(slog.NewTextHandler(w, &slog.HandlerOptions{Level: level}))
}

// openStore opens the backend selected by opts.
func openStore(opts *RootOptions, logger *slog.Logger) (todo.Store, error) {
	switch opts.Backend {
	case BackendSQLite:
		return store.Open(opts.Database)
	case BackendPebble:
		return kvstore.Open(opts.Database, kvstore.WithLogger(logger))
	}
	return nil, fmt.Errorf("unknown backend %q", opts.Backend)
}

// openSession opens the database and starts the engine loop.
// Callers must Close the session.
func openSession(opts *RootOptions, cmd *cobra.Command) (*session, error) {
	logger := newLogger(cmd.ErrOrStderr(), opts.Verbose)

	logger.Debug("opening database", "backend", opts.Backend, "path", opts.Database)
	st, err := openStore(opts, logger)
	if err != nil {
		return nil, WrapExitError(ExitCommandError, "failed to open database", err)
	}

	registry := prometheus.NewRegistry()
	metrics, err := engine.NewMetrics(registry)
	if err != nil {
		st.Close()
		return nil, WrapExitError(ExitCommandError, "failed to register metrics", err)
	}
	if c := backendCollector(st); c != nil {
		if err := registry.Register(c); err != nil {
			st.Close()
			return nil, WrapExitError(ExitCommandError, "failed to register metrics", err)
		}
	}

	eng := engine.New(st, engine.UUIDv7Generator{},
		engine.WithLogger(logger),
		engine.WithMetrics(metrics),
	)

	handler, err := msg.NewHandler(eng)
	if err != nil {
		st.Close()
		return nil, WrapExitError(ExitCommandError, "failed to load message schema", err)
	}

	parentCtx := cmd.Context()
	if parentCtx == nil {
		parentCtx = context.Background()
	}
	ctx, cancel := context.WithCancel(parentCtx)

	s := &session{
		store:    st,
		engine:   eng,
		handler:  handler,
		logger:   logger,
		registry: registry,
		ctx:      ctx,
		cancel:   cancel,
		done:     make(chan error, 1),
	}

	go func() {
		s.done <- eng.Run(ctx)
	}()

	return s, nil
}

// Close stops the engine loop and closes the database.
func (s *session) Close() error {
	s.cancel()
	runErr := <-s.done
	if runErr != nil && !errors.Is(runErr, context.Canceled) {
		s.logger.Error("engine stopped with error", "error", runErr)
	}

	if err := s.store.Close(); err != nil {
		s.logger.Error("error closing database", "error", err)
		return err
	}
	s.logger.Debug("database closed")
	return nil
}

// withSession opens a session, runs fn and closes the session.
// Errors from fn are reported through the formatter.
func withSession(opts *RootOptions, cmd *cobra.Command, fn func(s *session, f *OutputFormatter) error) error {
	f := newFormatter(opts, cmd)

	s, err := openSession(opts, cmd)
	if err != nil {
		return err
	}
	defer s.Close()

	if err := fn(s, f); err != nil {
		var exitErr *ExitError
		if errors.As(err, &exitErr) {
			return err
		}
		return f.Fail(err)
	}
	return nil
}
