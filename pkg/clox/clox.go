// Package clox is the high-level embedding API. It wraps the interpreter so
// host programs can run scripts, capture their output, and expose Go
// functions as natives without touching the VM internals.
package clox

import (
	"fmt"
	"io"
	"os"

	"github.com/ArturMroz/clox/internal/config"
	"github.com/ArturMroz/clox/internal/vm"
)

// Engine wraps a single interpreter instance. Globals persist across Run
// calls, REPL-style. An Engine is not safe for concurrent use.
type Engine struct {
	machine *vm.VM
}

// New creates an Engine with default options.
func New() *Engine {
	return NewWithOptions(config.DefaultOptions())
}

// NewWithOptions creates an Engine with explicit VM options.
func NewWithOptions(opts config.Options) *Engine {
	return &Engine{machine: vm.New(opts)}
}

// SetOutput redirects the script's print output and error reports.
func (e *Engine) SetOutput(stdout, stderr io.Writer) {
	e.machine.SetOutput(stdout, stderr)
}

// Run interprets source. The returned error is vm.ErrCompile or
// vm.ErrRuntime; diagnostics have already been written to the error writer.
func (e *Engine) Run(source string) error {
	return e.machine.Interpret(source)
}

// RunFile reads and interprets a script file.
func (e *Engine) RunFile(path string) error {
	source, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("reading %s: %w", path, err)
	}
	return e.machine.Interpret(string(source))
}

// Close releases every object the engine still holds.
func (e *Engine) Close() {
	e.machine.Free()
}

// GoFn is a host function exposed to scripts. Arguments arrive converted to
// Go values (nil, bool, float64, string); the result is converted back. A
// returned error becomes a runtime error in the script.
type GoFn func(args []interface{}) (interface{}, error)

// RegisterNative binds fn as a global native function with a fixed arity.
func (e *Engine) RegisterNative(name string, arity int, fn GoFn) {
	e.machine.DefineNative(name, arity, func(args []vm.Value) (vm.Value, error) {
		goArgs := make([]interface{}, len(args))
		for i, arg := range args {
			goArgs[i] = fromValue(arg)
		}

		result, err := fn(goArgs)
		if err != nil {
			return vm.NilVal(), err
		}
		return e.toValue(result)
	})
}

// fromValue converts a script value to its Go counterpart. Objects other
// than strings surface as their printed form.
func fromValue(v vm.Value) interface{} {
	switch v.Type {
	case vm.ValNil:
		return nil
	case vm.ValBool:
		return v.AsBool()
	case vm.ValNumber:
		return v.AsNumber()
	default:
		return v.Obj.String()
	}
}

// toValue converts a Go value to a script value. Strings go through the
// engine's interner; integer types widen to the number representation.
func (e *Engine) toValue(v interface{}) (vm.Value, error) {
	switch val := v.(type) {
	case nil:
		return vm.NilVal(), nil
	case bool:
		return vm.BoolVal(val), nil
	case float64:
		return vm.NumberVal(val), nil
	case float32:
		return vm.NumberVal(float64(val)), nil
	case int:
		return vm.NumberVal(float64(val)), nil
	case int32:
		return vm.NumberVal(float64(val)), nil
	case int64:
		return vm.NumberVal(float64(val)), nil
	case string:
		return e.machine.InternString(val), nil
	default:
		return vm.NilVal(), fmt.Errorf("cannot convert %T to a script value", v)
	}
}
