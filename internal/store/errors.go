package store

import (
	"errors"
	"fmt"
)

// Stage names the operation that produced an error.
type Stage string

const (
	StageLoad   Stage = "load"
	StageBind   Stage = "bind"
	StageRun    Stage = "run"
	StageScript Stage = "script"
)

// Sentinel errors, matched with errors.Is.
var (
	// ParseError kinds
	ErrUnreadable    = errors.New("cannot read input")
	ErrMissingHeader = errors.New("missing header")
	ErrMissingValues = errors.New("missing values for variable")
	ErrInvalidNumber = errors.New("invalid number")

	// BindingError kinds
	ErrUnknownModel = errors.New("unknown model")
	ErrMissingLL    = errors.New("missing LL")
	ErrTypeMismatch = errors.New("type mismatch")

	// ModelExecutionError
	ErrModelFailed = errors.New("model execution failed")

	// ScriptError kinds
	ErrScriptFailed    = errors.New("script failed")
	ErrVariableRemoved = errors.New("variable removed")
	ErrLengthChanged   = errors.New("LL is read-only")
)

// StageError carries the stage, the error kind and where it happened.
type StageError struct {
	Stage Stage
	// Kind is one of the sentinel errors above.
	Kind error
	// Name is the variable, model or script involved, if any.
	Name string
	// Line is the 1-based input line for load errors, 0 otherwise.
	Line int
	// Err is the underlying cause, if any.
	Err error
}

func (e *StageError) Error() string {
	msg := fmt.Sprintf("%s: %v", e.Stage, e.Kind)
	if e.Name != "" {
		msg += " " + e.Name
	}
	if e.Line > 0 {
		msg += fmt.Sprintf(" (line %d)", e.Line)
	}
	if e.Err != nil {
		msg += ": " + e.Err.Error()
	}
	return msg
}

// Is matches the error kind.
func (e *StageError) Is(target error) bool {
	return e.Kind == target
}

func (e *StageError) Unwrap() error {
	return e.Err
}

// NewError builds a StageError.
func NewError(stage Stage, kind error, name string, cause error) *StageError {
	return &StageError{Stage: stage, Kind: kind, Name: name, Err: cause}
}

// StageOf returns the stage that produced err, or "" if err is not a StageError.
func StageOf(err error) Stage {
	var se *StageError
	if errors.As(err, &se) {
		return se.Stage
	}
	return ""
}
