package vm

import "github.com/ArturMroz/clox/internal/config"

// callValue dispatches a call on any value. It reports false after raising
// a runtime error for anything that isn't callable.
func (vm *VM) callValue(callee Value, argCount int) bool {
	if callee.IsObj() {
		switch o := callee.Obj.(type) {
		case *ObjBoundMethod:
			// the receiver takes slot 0, where the method body expects `this`
			vm.stack[vm.stackTop-argCount-1] = o.Receiver
			return vm.call(o.Method, argCount)

		case *ObjClass:
			instance := vm.newInstance(o)
			vm.stack[vm.stackTop-argCount-1] = ObjVal(instance)

			if initializer, ok := o.Methods.Get(vm.initString); ok {
				return vm.call(initializer.Obj.(*ObjClosure), argCount)
			}
			if argCount != 0 {
				vm.runtimeError("Expected 0 arguments but got %d.", argCount)
				return false
			}
			return true

		case *ObjClosure:
			return vm.call(o, argCount)

		case *ObjNative:
			return vm.callNative(o, argCount)
		}
	}

	vm.runtimeError("Can only call functions and classes.")
	return false
}

// call pushes a frame for a closure. Slot 0 of the new frame is the callee
// itself (or the receiver, for methods).
func (vm *VM) call(closure *ObjClosure, argCount int) bool {
	if argCount != closure.Function.Arity {
		vm.runtimeError("Expected %d arguments but got %d.",
			closure.Function.Arity, argCount)
		return false
	}

	if vm.frameCount == config.FramesMax {
		vm.runtimeError("Stack overflow.")
		return false
	}

	frame := &vm.frames[vm.frameCount]
	vm.frameCount++
	frame.closure = closure
	frame.ip = 0
	frame.slots = vm.stackTop - argCount - 1
	return true
}

func (vm *VM) callNative(native *ObjNative, argCount int) bool {
	if argCount != native.Arity {
		vm.runtimeError("Expected %d arguments but got %d.",
			native.Arity, argCount)
		return false
	}

	args := vm.stack[vm.stackTop-argCount : vm.stackTop]
	result, err := native.Fn(args)
	if err != nil {
		vm.runtimeError("%s", err.Error())
		return false
	}

	vm.stackTop -= argCount + 1
	vm.push(result)
	return true
}

// invoke is the fast path for `receiver.name(args)`: it skips allocating a
// bound method when the property resolves to a method. A field holding a
// callable still works, it just goes through callValue.
func (vm *VM) invoke(name *ObjString, argCount int) bool {
	receiver := vm.peek(argCount)
	if !receiver.isObjKind(KindInstance) {
		vm.runtimeError("Only instances have methods.")
		return false
	}
	instance := receiver.Obj.(*ObjInstance)

	if value, ok := instance.Fields.Get(name); ok {
		vm.stack[vm.stackTop-argCount-1] = value
		return vm.callValue(value, argCount)
	}

	return vm.invokeFromClass(instance.Class, name, argCount)
}

func (vm *VM) invokeFromClass(class *ObjClass, name *ObjString, argCount int) bool {
	method, ok := class.Methods.Get(name)
	if !ok {
		vm.runtimeError("Undefined property '%s'.", name.Chars)
		return false
	}
	return vm.call(method.Obj.(*ObjClosure), argCount)
}

// bindMethod replaces the receiver on top of the stack with a bound method
// for name, or reports false if the class has no such method.
func (vm *VM) bindMethod(class *ObjClass, name *ObjString) bool {
	method, ok := class.Methods.Get(name)
	if !ok {
		vm.runtimeError("Undefined property '%s'.", name.Chars)
		return false
	}

	bound := vm.newBoundMethod(vm.peek(0), method.Obj.(*ObjClosure))
	vm.pop()
	vm.push(ObjVal(bound))
	return true
}

func (vm *VM) defineMethod(name *ObjString) {
	method := vm.peek(0)
	class := vm.peek(1).Obj.(*ObjClass)
	class.Methods.Set(name, method)
	vm.pop()
}

// captureUpvalue returns an upvalue for the given stack slot, reusing an
// existing open one. The open list is kept sorted by descending location so
// the scan can stop early.
func (vm *VM) captureUpvalue(location int) *ObjUpvalue {
	var prev *ObjUpvalue
	upvalue := vm.openUpvalues

	for upvalue != nil && upvalue.Location > location {
		prev = upvalue
		upvalue = upvalue.Next
	}

	if upvalue != nil && upvalue.Location == location {
		return upvalue
	}

	created := vm.newUpvalue(location)
	created.Next = upvalue
	if prev == nil {
		vm.openUpvalues = created
	} else {
		prev.Next = created
	}

	return created
}

// closeUpvalues closes every open upvalue at or above last: the stack value
// moves into the upvalue itself, which leaves the open list.
func (vm *VM) closeUpvalues(last int) {
	for vm.openUpvalues != nil && vm.openUpvalues.Location >= last {
		upvalue := vm.openUpvalues
		upvalue.Closed = vm.stack[upvalue.Location]
		upvalue.Location = -1
		vm.openUpvalues = upvalue.Next
		upvalue.Next = nil
	}
}

// concatenate interns the concatenation of the two strings on top of the
// stack. Operands stay on the stack during allocation so a collection
// triggered by the new string can't sweep them.
func (vm *VM) concatenate() {
	a := vm.peek(1).AsString()
	b := vm.peek(0).AsString()

	result := vm.internString(a.Chars + b.Chars)

	vm.pop()
	vm.pop()
	vm.push(ObjVal(result))
}
