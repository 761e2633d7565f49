package script

import (
	"context"
	"fmt"
	"os"
	"slices"
	"time"

	"github.com/itsmostafa/modelrun/internal/ctxlog"
	"github.com/itsmostafa/modelrun/internal/store"
)

// Result describes one script run.
type Result struct {
	Engine string
	// Output is whatever the script printed.
	Output string
	// Merged lists the names written back to the store.
	Merged []string
	// Dropped lists names the script created that were not persisted.
	Dropped []string
	// Duration of the execution
	Duration time.Duration
}

// Bridge runs scripts against a store and merges results back.
type Bridge struct {
	config Config
}

// NewBridge creates a Bridge with the given config.
func NewBridge(config Config) *Bridge {
	if config.Engine == "" {
		config.Engine = EngineJS
	}
	return &Bridge{config: config}
}

// Run executes code with the configured default engine.
func (b *Bridge) Run(ctx context.Context, s *store.Store, code string) (*Result, error) {
	return b.RunWith(ctx, b.config.Engine, s, code)
}

// RunFile reads a script file and runs it, choosing the engine by extension.
func (b *Bridge) RunFile(ctx context.Context, s *store.Store, path string) (*Result, error) {
	code, err := os.ReadFile(path)
	if err != nil {
		return nil, store.NewError(store.StageScript, store.ErrScriptFailed, path,
			fmt.Errorf("failed to read script: %w", err))
	}
	return b.RunWith(ctx, EngineForFile(path, b.config.Engine), s, string(code))
}

// RunWith executes code with the named engine. Only variables present in s
// before the run are written back; nothing is written when the run fails.
func (b *Bridge) RunWith(ctx context.Context, engineName string, s *store.Store, code string) (*Result, error) {
	logger := ctxlog.FromContext(ctx).With("engine", engineName)

	engine, err := NewEngine(engineName, b.config)
	if err != nil {
		return nil, store.NewError(store.StageScript, store.ErrScriptFailed, "", err)
	}

	snapshot := s.Names()
	ll, _ := s.Length()
	env := EnvFromStore(s)

	start := time.Now()
	output, err := engine.Execute(ctx, code, env)
	duration := time.Since(start)
	if err != nil {
		return nil, store.NewError(store.StageScript, store.ErrScriptFailed, "", err)
	}

	entries, err := harvest(s, env, snapshot, ll)
	if err != nil {
		return nil, err
	}

	var dropped []string
	for _, name := range env.Names() {
		if !slices.Contains(snapshot, name) {
			dropped = append(dropped, name)
		}
	}

	s.Merge(entries)
	logger.Debug("script merged", "merged", len(entries), "dropped", dropped, "duration", duration)

	return &Result{
		Engine:   engine.Name(),
		Output:   output,
		Merged:   snapshot,
		Dropped:  dropped,
		Duration: duration,
	}, nil
}

// harvest reads every snapshot name back from env.
func harvest(s *store.Store, env Environment, snapshot []string, ll int) ([]store.Entry, error) {
	entries := make([]store.Entry, 0, len(snapshot))
	for _, name := range snapshot {
		raw, ok := env.Get(name)
		if !ok {
			return nil, store.NewError(store.StageScript, store.ErrVariableRemoved, name, nil)
		}
		prev, _ := s.Get(name)
		v := toStoreValue(raw, prev, ll)

		if name == store.LengthKey {
			if n, ok := v.Int(); !ok || n != ll {
				return nil, store.NewError(store.StageScript, store.ErrLengthChanged, name,
					fmt.Errorf("got %v, want %d", raw, ll))
			}
		}
		entries = append(entries, store.Entry{Name: name, Value: v})
	}
	return entries, nil
}

// toStoreValue turns a harvested Go value back into a store Value. Numeric
// arrays of length ll become series; an integer series stays one while all
// its elements are integral. Everything else is a scalar.
func toStoreValue(raw any, prev store.Value, ll int) store.Value {
	if nums, ok := numericSlice(raw); ok && ll > 0 && len(nums) == ll {
		if prev.Kind() == store.KindIntegerSeries {
			if ints, ok := integral(nums); ok {
				return store.IntegerSeries(ints)
			}
		}
		return store.NumericSeries(nums)
	}

	if n, ok := raw.(int64); ok {
		return store.Scalar(int(n))
	}
	return store.Scalar(raw)
}

func numericSlice(raw any) ([]float64, bool) {
	switch v := raw.(type) {
	case []float64:
		return v, true
	case []int:
		out := make([]float64, len(v))
		for i, n := range v {
			out[i] = float64(n)
		}
		return out, true
	case []any:
		out := make([]float64, len(v))
		for i, item := range v {
			f, ok := store.AsFloat(item)
			if !ok {
				return nil, false
			}
			out[i] = f
		}
		return out, true
	default:
		return nil, false
	}
}

func integral(nums []float64) ([]int, bool) {
	ints := make([]int, len(nums))
	for i, f := range nums {
		n, ok := store.AsInt(f)
		if !ok {
			return nil, false
		}
		ints[i] = n
	}
	return ints, true
}
