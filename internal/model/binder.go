// Package model binds store variables to pluggable model units, runs them
// and harvests their outputs back into the store.
//
// A unit declares an ordered list of named params instead of being
// inspected at runtime. Bindable params whose name matches a store entry
// are filled before Run; the LL param is always filled. After Run every
// bindable param is written back under its name.
package model

import (
	"context"
	"errors"
	"fmt"
	"slices"

	"github.com/itsmostafa/modelrun/internal/ctxlog"
	"github.com/itsmostafa/modelrun/internal/store"
)

// Unit is the capability a model must expose to be run by a Binder.
type Unit interface {
	// Params returns the unit's params in a stable order. Each call must
	// return params bound to the same underlying fields.
	Params() []Param

	// Run performs the computation by reading and writing the unit's own fields.
	Run() error
}

// Policy decides what happens to the store when a unit's Run fails.
type Policy string

const (
	// FailFast returns the error and leaves the store untouched
	FailFast Policy = "fail"
	// Lenient logs the error and applies whatever the failed run left in the
	// unit's fields, flagging the result as partial
	Lenient Policy = "continue"
)

// ValidatePolicy checks if the given policy string is valid and returns the Policy
func ValidatePolicy(policy string) (Policy, error) {
	switch Policy(policy) {
	case FailFast, "":
		return FailFast, nil
	case Lenient:
		return Lenient, nil
	default:
		return "", fmt.Errorf("unknown model error policy: %q (valid options: fail, continue)", policy)
	}
}

// Result summarises a binding run.
type Result struct {
	Model string
	// Bound lists the params filled from the store, LL included.
	Bound []string
	// Harvested lists the names written back to the store, in write order.
	Harvested []string
	// Partial is set when a lenient run merged state from a failed Run.
	Partial bool
	// RunErr is the execution error a lenient run swallowed.
	RunErr error
}

// Binder runs registered model units against a store.
type Binder struct {
	registry *Registry
	policy   Policy
}

// NewBinder creates a Binder resolving models in registry.
func NewBinder(registry *Registry, policy Policy) *Binder {
	if registry == nil {
		registry = Default
	}
	if policy == "" {
		policy = FailFast
	}
	return &Binder{registry: registry, policy: policy}
}

// Run instantiates the model called name, binds it from s, runs it and
// merges its bindable params back into s. Bind failures never modify s.
func (b *Binder) Run(ctx context.Context, name string, s *store.Store) (*Result, error) {
	logger := ctxlog.FromContext(ctx).With("model", name)

	factory, ok := b.registry.Lookup(name)
	if !ok {
		return nil, store.NewError(store.StageBind, store.ErrUnknownModel, name, nil)
	}
	unit := factory()
	if unit == nil {
		return nil, store.NewError(store.StageBind, store.ErrUnknownModel, name,
			errors.New("factory returned nil"))
	}

	params := unit.Params()
	bound, err := bind(name, params, s)
	if err != nil {
		return nil, err
	}
	logger.Debug("model bound", "params", len(bound))

	if err := ctx.Err(); err != nil {
		return nil, store.NewError(store.StageRun, store.ErrModelFailed, name, err)
	}

	result := &Result{Model: name, Bound: bound}
	ll, _ := s.Length()

	runErr := invoke(unit)
	entries, harvestErr := harvest(params, bound, ll)
	if runErr == nil && harvestErr == nil {
		s.Merge(entries)
		result.Harvested = entryNames(entries)
		logger.Info("model run complete", "harvested", len(entries))
		return result, nil
	}

	failure := errors.Join(runErr, harvestErr)
	if b.policy != Lenient {
		return nil, store.NewError(store.StageRun, store.ErrModelFailed, name, failure)
	}

	// Lenient: keep what the failed run produced.
	logger.Warn("model run failed, keeping partial results", "error", failure)
	s.Merge(entries)
	result.Harvested = entryNames(entries)
	result.Partial = true
	result.RunErr = store.NewError(store.StageRun, store.ErrModelFailed, name, failure)
	return result, nil
}

// bind fills the unit's params from s without touching s.
func bind(model string, params []Param, s *store.Store) ([]string, error) {
	llParam, ok := Find(params, store.LengthKey)
	if !ok {
		return nil, store.NewError(store.StageBind, store.ErrMissingLL, model,
			errors.New("model declares no LL param"))
	}
	ll, ok := s.Get(store.LengthKey)
	if !ok {
		return nil, store.NewError(store.StageBind, store.ErrMissingLL, model,
			errors.New("store has no LL entry"))
	}

	var bound []string
	for _, p := range params {
		if !p.Bindable || p.Name == store.LengthKey {
			continue
		}
		v, ok := s.Get(p.Name)
		if !ok || isNull(v) {
			continue
		}
		if err := p.Assign(v); err != nil {
			return nil, store.NewError(store.StageBind, store.ErrTypeMismatch, p.Name, err)
		}
		bound = append(bound, p.Name)
	}

	if err := llParam.Assign(ll); err != nil {
		return nil, store.NewError(store.StageBind, store.ErrTypeMismatch, store.LengthKey, err)
	}
	return append(bound, store.LengthKey), nil
}

// invoke calls Run, turning a panic into an error.
func invoke(unit Unit) (err error) {
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("panic: %v", r)
		}
	}()
	return unit.Run()
}

// harvest reads every bindable param. A series that was never bound and is
// still empty is harvested as a null scalar; any other series whose length
// differs from ll is reported and left out.
func harvest(params []Param, bound []string, ll int) ([]store.Entry, error) {
	var entries []store.Entry
	var errs []error
	for _, p := range params {
		if !p.Bindable {
			continue
		}
		v := p.Value()
		if v.Kind().IsSeries() && v.Len() == 0 && !slices.Contains(bound, p.Name) {
			entries = append(entries, store.Entry{Name: p.Name, Value: store.Scalar(nil)})
			continue
		}
		if v.Kind().IsSeries() && v.Len() != ll {
			errs = append(errs, fmt.Errorf("param %s has length %d, want %d", p.Name, v.Len(), ll))
			continue
		}
		if p.Name == store.LengthKey {
			if n, _ := v.Int(); n != ll {
				errs = append(errs, fmt.Errorf("param LL changed from %d to %d", ll, n))
				continue
			}
		}
		entries = append(entries, store.Entry{Name: p.Name, Value: v})
	}
	return entries, errors.Join(errs...)
}

func entryNames(entries []store.Entry) []string {
	names := make([]string, len(entries))
	for i, e := range entries {
		names[i] = e.Name
	}
	return names
}
