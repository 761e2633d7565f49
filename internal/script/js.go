package script

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/dop251/goja"
)

// jsHostNames are globals installed by the engine, never harvested.
var jsHostNames = map[string]bool{
	"print":   true,
	"console": true,
}

// JSEngine executes JavaScript in a fresh goja runtime per run.
type JSEngine struct {
	config Config
}

// NewJSEngine creates a new JavaScript engine with the given config.
func NewJSEngine(config Config) *JSEngine {
	return &JSEngine{config: config}
}

// Name returns the engine name
func (e *JSEngine) Name() string {
	return EngineJS
}

// Execute runs JavaScript code with env's variables as globals.
func (e *JSEngine) Execute(ctx context.Context, code string, env Environment) (string, error) {
	// Create a new goja runtime for each execution (isolation)
	vm := goja.New()

	timeoutCtx, cancel := budget(ctx, e.config.Timeout)
	defer cancel()

	go func() {
		<-timeoutCtx.Done()
		vm.Interrupt("execution timeout or cancelled")
	}()

	var printed strings.Builder
	if err := e.setupEnvironment(vm, env, &printed); err != nil {
		return "", fmt.Errorf("failed to setup environment: %w", err)
	}

	if _, err := vm.RunString(code); err != nil {
		var interrupted *goja.InterruptedError
		if errors.As(err, &interrupted) {
			return printed.String(), fmt.Errorf("execution interrupted: %v", interrupted.Value())
		}
		return printed.String(), fmt.Errorf("execution error: %w", err)
	}

	e.harvest(vm, env)
	return printed.String(), nil
}

// setupEnvironment installs the host functions and every env variable.
func (e *JSEngine) setupEnvironment(vm *goja.Runtime, env Environment, printed *strings.Builder) error {
	printFunc := func(call goja.FunctionCall) goja.Value {
		args := make([]string, len(call.Arguments))
		for i, arg := range call.Arguments {
			args[i] = arg.String()
		}
		printed.WriteString(strings.Join(args, " "))
		printed.WriteString("\n")
		return goja.Undefined()
	}
	if err := vm.Set("print", printFunc); err != nil {
		return fmt.Errorf("failed to set print: %w", err)
	}

	// console.log as an alias for print
	console := vm.NewObject()
	if err := console.Set("log", printFunc); err != nil {
		return fmt.Errorf("failed to set console.log: %w", err)
	}
	if err := vm.Set("console", console); err != nil {
		return fmt.Errorf("failed to set console: %w", err)
	}

	// Store variables go last so they shadow the helpers
	for _, name := range env.Names() {
		value, _ := env.Get(name)
		if err := vm.Set(name, toJSValue(vm, value)); err != nil {
			return fmt.Errorf("failed to set variable %s: %w", name, err)
		}
	}
	return nil
}

// harvest writes the runtime's globals back into env.
func (e *JSEngine) harvest(vm *goja.Runtime, env Environment) {
	for _, name := range env.Names() {
		val := vm.Get(name)
		if val == nil {
			env.Delete(name)
			continue
		}
		env.Set(name, exportJS(val))
	}

	for _, name := range vm.GlobalObject().Keys() {
		if jsHostNames[name] || env.Contains(name) {
			continue
		}
		env.Set(name, exportJS(vm.Get(name)))
	}
}

// toJSValue turns series into real JS arrays so array methods behave natively.
func toJSValue(vm *goja.Runtime, value any) any {
	switch v := value.(type) {
	case []float64:
		items := make([]any, len(v))
		for i, f := range v {
			items[i] = f
		}
		return vm.NewArray(items...)
	case []int:
		items := make([]any, len(v))
		for i, n := range v {
			items[i] = n
		}
		return vm.NewArray(items...)
	default:
		return value
	}
}

func exportJS(val goja.Value) any {
	if val == nil || goja.IsUndefined(val) || goja.IsNull(val) {
		return nil
	}
	return val.Export()
}
