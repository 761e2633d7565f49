// Package session ties one variable store to the binder and script bridge
// that operate on it.
package session

import (
	"context"
	"io"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"github.com/itsmostafa/modelrun/internal/ctxlog"
	"github.com/itsmostafa/modelrun/internal/loader"
	"github.com/itsmostafa/modelrun/internal/model"
	"github.com/itsmostafa/modelrun/internal/report"
	"github.com/itsmostafa/modelrun/internal/script"
	"github.com/itsmostafa/modelrun/internal/store"
)

// Options configures a Session.
type Options struct {
	// Registry resolves model names (default: model.Default)
	Registry *model.Registry
	// Policy decides what a failed model run leaves behind
	Policy model.Policy
	// Script configures the script engines
	Script script.Config
	// Logger receives session records (default: slog.Default)
	Logger *slog.Logger
}

// Session owns one store. Operations run one at a time, in call order.
type Session struct {
	ID        string
	StartedAt time.Time

	store  *store.Store
	source string
	binder *model.Binder
	bridge *script.Bridge
	logger *slog.Logger
}

// New creates an empty session. Load must be called before models run.
func New(opts Options) *Session {
	id := uuid.New().String()
	logger := opts.Logger
	if logger == nil {
		logger = slog.Default()
	}
	return &Session{
		ID:        id,
		StartedAt: time.Now(),
		store:     store.New(),
		binder:    model.NewBinder(opts.Registry, opts.Policy),
		bridge:    script.NewBridge(opts.Script),
		logger:    logger.With("session", id),
	}
}

// Load replaces the store with the contents of the data file at path. The
// current store is kept when the file cannot be parsed.
func (s *Session) Load(ctx context.Context, path string) error {
	loaded, err := loader.Load(path)
	if err != nil {
		s.logger.Debug("load failed", "stage", store.StageOf(err), "path", path, "error", err)
		return err
	}
	s.store = loaded
	s.source = path

	ll, _ := loaded.Length()
	s.logger.Info("data loaded", "path", path, "variables", loaded.Len(), "periods", ll)
	return nil
}

// RunModel runs the named model against the store.
func (s *Session) RunModel(ctx context.Context, name string) (*model.Result, error) {
	result, err := s.binder.Run(s.context(ctx), name, s.store)
	if err != nil {
		s.logger.Debug("model failed", "model", name, "stage", store.StageOf(err), "error", err)
		return nil, err
	}
	return result, nil
}

// RunScript runs code with the configured engine.
func (s *Session) RunScript(ctx context.Context, code string) (*script.Result, error) {
	return s.script(ctx, "eval", func(ctx context.Context) (*script.Result, error) {
		return s.bridge.Run(ctx, s.store, code)
	})
}

// RunScriptWith runs code with the named engine.
func (s *Session) RunScriptWith(ctx context.Context, engine, code string) (*script.Result, error) {
	return s.script(ctx, "eval", func(ctx context.Context) (*script.Result, error) {
		return s.bridge.RunWith(ctx, engine, s.store, code)
	})
}

// RunScriptFile runs the script file at path.
func (s *Session) RunScriptFile(ctx context.Context, path string) (*script.Result, error) {
	return s.script(ctx, path, func(ctx context.Context) (*script.Result, error) {
		return s.bridge.RunFile(ctx, s.store, path)
	})
}

func (s *Session) script(ctx context.Context, source string, run func(context.Context) (*script.Result, error)) (*script.Result, error) {
	result, err := run(s.context(ctx))
	if err != nil {
		s.logger.Debug("script failed", "source", source, "stage", store.StageOf(err), "error", err)
		return nil, err
	}
	s.logger.Info("script complete", "source", source, "engine", result.Engine, "dropped", len(result.Dropped))
	return result, nil
}

// TSV renders the store in the tab-separated report format.
func (s *Session) TSV() string {
	return report.TSV(s.store)
}

// WriteTSV writes the TSV report to w.
func (s *Session) WriteTSV(w io.Writer) error {
	return report.WriteTSV(w, s.store)
}

// WriteXLSX writes the report as an Excel workbook to w.
func (s *Session) WriteXLSX(w io.Writer) error {
	return report.WriteXLSX(w, s.store)
}

// Store returns the live store.
func (s *Session) Store() *store.Store {
	return s.store
}

// Source returns the path of the loaded data file.
func (s *Session) Source() string {
	return s.source
}

func (s *Session) context(ctx context.Context) context.Context {
	return ctxlog.WithLogger(ctx, s.logger)
}
