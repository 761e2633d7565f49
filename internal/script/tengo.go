package script

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/d5/tengo/v2"
	"github.com/d5/tengo/v2/stdlib"
)

// tengoModules are the stdlib modules scripts may import. os and the
// process-level modules stay out of reach.
var tengoModules = []string{"math", "text", "times", "rand", "fmt", "json", "enum"}

// tengoHostNames are globals installed by the engine, never harvested.
var tengoHostNames = map[string]bool{
	"print":   true,
	"println": true,
}

// TengoEngine executes Tengo scripts.
type TengoEngine struct {
	config Config
}

// NewTengoEngine creates a new Tengo engine with the given config.
func NewTengoEngine(config Config) *TengoEngine {
	return &TengoEngine{config: config}
}

// Name returns the engine name
func (e *TengoEngine) Name() string {
	return EngineTengo
}

// Execute compiles and runs Tengo code with env's variables as globals.
func (e *TengoEngine) Execute(ctx context.Context, code string, env Environment) (string, error) {
	var output strings.Builder

	script := tengo.NewScript([]byte(code))
	script.SetImports(stdlib.GetModuleMap(tengoModules...))
	if e.config.MaxAllocs > 0 {
		script.SetMaxAllocs(e.config.MaxAllocs)
	}

	e.addBuiltinFunctions(script, &output)

	for _, name := range env.Names() {
		value, _ := env.Get(name)
		if err := script.Add(name, toTengoValue(value)); err != nil {
			return "", fmt.Errorf("failed to add variable %s: %w", name, err)
		}
	}

	compiled, err := script.Compile()
	if err != nil {
		return "", fmt.Errorf("compile error: %w", err)
	}

	runCtx, cancel := budget(ctx, e.config.Timeout)
	defer cancel()

	if err := compiled.RunContext(runCtx); err != nil {
		if errors.Is(runCtx.Err(), context.DeadlineExceeded) {
			return output.String(), fmt.Errorf("execution timed out after %s", e.config.Timeout)
		}
		return output.String(), fmt.Errorf("runtime error: %w", err)
	}

	// Tengo globals cannot be deleted, so every env name is still defined
	for _, v := range compiled.GetAll() {
		name := v.Name()
		if name == "" || tengoHostNames[name] {
			continue
		}
		env.Set(name, fromTengoObject(v.Object()))
	}

	return output.String(), nil
}

// addBuiltinFunctions adds print and println writing to output
func (e *TengoEngine) addBuiltinFunctions(script *tengo.Script, output *strings.Builder) {
	write := func(args []tengo.Object) {
		for i, arg := range args {
			if i > 0 {
				output.WriteString(" ")
			}
			output.WriteString(objectToString(arg))
		}
	}

	_ = script.Add("println", &tengo.UserFunction{
		Name: "println",
		Value: func(args ...tengo.Object) (tengo.Object, error) {
			write(args)
			output.WriteString("\n")
			return tengo.UndefinedValue, nil
		},
	})

	_ = script.Add("print", &tengo.UserFunction{
		Name: "print",
		Value: func(args ...tengo.Object) (tengo.Object, error) {
			write(args)
			return tengo.UndefinedValue, nil
		},
	})
}

// toTengoValue converts a Go value to a Tengo-compatible value
func toTengoValue(v any) any {
	switch val := v.(type) {
	case nil, string, int, int64, float64, bool, []any, map[string]any:
		return val
	case []float64:
		arr := make([]any, len(val))
		for i, f := range val {
			arr[i] = f
		}
		return arr
	case []int:
		arr := make([]any, len(val))
		for i, n := range val {
			arr[i] = n
		}
		return arr
	default:
		return fmt.Sprintf("%v", v)
	}
}

// fromTengoObject converts a Tengo object to a Go value
func fromTengoObject(obj tengo.Object) any {
	switch v := obj.(type) {
	case *tengo.String:
		return v.Value
	case *tengo.Int:
		return int(v.Value)
	case *tengo.Float:
		return v.Value
	case *tengo.Bool:
		return !v.IsFalsy()
	case *tengo.Array:
		arr := make([]any, len(v.Value))
		for i, item := range v.Value {
			arr[i] = fromTengoObject(item)
		}
		return arr
	case *tengo.ImmutableArray:
		arr := make([]any, len(v.Value))
		for i, item := range v.Value {
			arr[i] = fromTengoObject(item)
		}
		return arr
	case *tengo.Map:
		m := make(map[string]any, len(v.Value))
		for k, item := range v.Value {
			m[k] = fromTengoObject(item)
		}
		return m
	case *tengo.Undefined:
		return nil
	default:
		return obj.String()
	}
}

// objectToString converts a Tengo object to its string representation
func objectToString(obj tengo.Object) string {
	switch v := obj.(type) {
	case *tengo.String:
		return v.Value
	case *tengo.Int:
		return fmt.Sprintf("%d", v.Value)
	case *tengo.Float:
		return fmt.Sprintf("%g", v.Value)
	case *tengo.Bool:
		if !v.IsFalsy() {
			return "true"
		}
		return "false"
	case *tengo.Undefined:
		return "undefined"
	default:
		return obj.String()
	}
}
