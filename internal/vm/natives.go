package vm

import (
	"fmt"
	"os"
	"time"

	"github.com/google/uuid"
)

// registerNatives installs the built-in native functions. Natives that
// produce strings close over the VM so the result goes through its
// interner. Embedders can add their own through DefineNative.
func (vm *VM) registerNatives() {
	vm.DefineNative("clock", 0, func(args []Value) (Value, error) {
		return NumberVal(time.Since(vm.startTime).Seconds()), nil
	})

	vm.DefineNative("uuid", 0, func(args []Value) (Value, error) {
		id, err := uuid.NewRandom()
		if err != nil {
			return NilVal(), fmt.Errorf("uuid: %v", err)
		}
		return ObjVal(vm.internString(id.String())), nil
	})

	vm.DefineNative("sleep", 1, func(args []Value) (Value, error) {
		if !args[0].IsNumber() {
			return NilVal(), fmt.Errorf("sleep: argument must be a number")
		}
		seconds := args[0].AsNumber()
		if seconds < 0 {
			return NilVal(), fmt.Errorf("sleep: argument must not be negative")
		}
		time.Sleep(time.Duration(seconds * float64(time.Second)))
		return NilVal(), nil
	})

	vm.DefineNative("getenv", 1, func(args []Value) (Value, error) {
		if !args[0].IsString() {
			return NilVal(), fmt.Errorf("getenv: argument must be a string")
		}
		value, ok := os.LookupEnv(args[0].AsString().Chars)
		if !ok {
			return NilVal(), nil
		}
		return ObjVal(vm.internString(value)), nil
	})
}
