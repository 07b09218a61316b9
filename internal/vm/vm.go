package vm

import (
	"errors"
	"fmt"
	"io"
	"os"
	"time"

	"github.com/ArturMroz/clox/internal/config"
)

// Interpret results. A compile error means no code ran; a runtime error
// leaves the VM with an empty stack, ready for the next Interpret.
var (
	ErrCompile = errors.New("compile error")
	ErrRuntime = errors.New("runtime error")
)

// CallFrame represents a single ongoing function call
type CallFrame struct {
	closure *ObjClosure
	ip      int // instruction pointer within the closure's chunk
	slots   int // stack index of slot 0 (the callee or receiver)
}

// VM is the virtual machine. It owns every heap object the program creates
// and is safe to instantiate multiple times; nothing is shared between
// instances.
type VM struct {
	stack    []Value
	stackTop int

	frames     [config.FramesMax]CallFrame
	frameCount int

	globals Table
	strings Table // the string interner

	initString   *ObjString
	openUpvalues *ObjUpvalue // sorted by descending stack location

	// GC state
	objects        Object // intrusive list of every live heap object
	bytesAllocated int
	nextGC         int
	grayStack      []Object
	tempRoots      []Value

	// active compiler chain, a GC root during compilation
	compiler *Compiler

	options config.Options

	stdout io.Writer
	stderr io.Writer

	startTime time.Time
}

// New creates a VM with the given options. Output defaults to the process
// stdout/stderr; use SetOutput to capture it.
func New(options config.Options) *VM {
	vm := &VM{
		stack:     make([]Value, config.StackMax),
		nextGC:    config.InitialGCThreshold,
		options:   options,
		stdout:    os.Stdout,
		stderr:    os.Stderr,
		startTime: time.Now(),
	}

	vm.initString = vm.internString(config.InitMethodName)
	vm.registerNatives()

	return vm
}

// SetOutput redirects the program's print output and error reports.
func (vm *VM) SetOutput(stdout, stderr io.Writer) {
	vm.stdout = stdout
	vm.stderr = stderr
}

// Free drops every object the VM still holds. The VM must not be used
// afterwards.
func (vm *VM) Free() {
	vm.globals = Table{}
	vm.strings = Table{}
	vm.initString = nil
	vm.openUpvalues = nil
	vm.grayStack = nil
	vm.tempRoots = nil

	for obj := vm.objects; obj != nil; {
		next := obj.header().next
		vm.freeObject(obj)
		obj = next
	}
	vm.objects = nil
	vm.bytesAllocated = 0
}

// Interpret compiles and runs a piece of source text. It returns ErrCompile
// or ErrRuntime; details have already been reported on the error writer.
func (vm *VM) Interpret(source string) error {
	fn := vm.compile(source)
	if fn == nil {
		return ErrCompile
	}

	vm.push(ObjVal(fn))
	closure := vm.newClosure(fn)
	vm.pop()
	vm.push(ObjVal(closure))
	vm.call(closure, 0)

	return vm.run()
}

// Stack discipline

func (vm *VM) push(value Value) {
	vm.stack[vm.stackTop] = value
	vm.stackTop++
}

func (vm *VM) pop() Value {
	vm.stackTop--
	return vm.stack[vm.stackTop]
}

func (vm *VM) peek(distance int) Value {
	return vm.stack[vm.stackTop-1-distance]
}

func (vm *VM) resetStack() {
	vm.stackTop = 0
	vm.frameCount = 0
	vm.openUpvalues = nil
}

// runtimeError reports a formatted message followed by the call trace,
// top-most frame first, then resets the stack.
func (vm *VM) runtimeError(format string, args ...interface{}) {
	fmt.Fprintf(vm.stderr, format, args...)
	fmt.Fprintln(vm.stderr)

	for i := vm.frameCount - 1; i >= 0; i-- {
		frame := &vm.frames[i]
		fn := frame.closure.Function
		line := fn.Chunk.Lines[frame.ip-1]
		if fn.Name == nil {
			fmt.Fprintf(vm.stderr, "[line %d] in script\n", line)
		} else {
			fmt.Fprintf(vm.stderr, "[line %d] in %s()\n", line, fn.Name.Chars)
		}
	}

	vm.resetStack()
}

// DefineNative registers a Go function under the given global name. Arity
// is enforced by the VM at call time.
func (vm *VM) DefineNative(name string, arity int, fn NativeFn) {
	str := vm.internString(name)
	vm.pushTempRoot(ObjVal(str))
	native := vm.newNative(name, arity, fn)
	vm.pushTempRoot(ObjVal(native))
	vm.globals.Set(str, ObjVal(native))
	vm.popTempRoot()
	vm.popTempRoot()
}

// InternString returns the unique string value for s. Embedders use it to
// pass host strings into the VM.
func (vm *VM) InternString(s string) Value {
	return ObjVal(vm.internString(s))
}

// StackSize reports the current value stack height. Exposed for tests and
// diagnostics.
func (vm *VM) StackSize() int {
	return vm.stackTop
}

// BytesAllocated reports the GC's current byte accounting.
func (vm *VM) BytesAllocated() int {
	return vm.bytesAllocated
}
