package vm

import (
	"fmt"
	"strings"
)

func (vm *VM) currentFrame() *CallFrame {
	return &vm.frames[vm.frameCount-1]
}

func (vm *VM) readByte(frame *CallFrame) byte {
	b := frame.closure.Function.Chunk.Code[frame.ip]
	frame.ip++
	return b
}

func (vm *VM) readShort(frame *CallFrame) int {
	code := frame.closure.Function.Chunk.Code
	short := int(code[frame.ip])<<8 | int(code[frame.ip+1])
	frame.ip += 2
	return short
}

func (vm *VM) readConstant(frame *CallFrame) Value {
	return frame.closure.Function.Chunk.Constants[vm.readByte(frame)]
}

func (vm *VM) readString(frame *CallFrame) *ObjString {
	return vm.readConstant(frame).AsString()
}

// run is the dispatch loop. Each iteration decodes and executes exactly one
// instruction of the topmost frame.
func (vm *VM) run() error {
	frame := vm.currentFrame()

	for {
		if vm.options.TraceExecution {
			vm.traceInstruction(frame)
		}

		instruction := Opcode(vm.readByte(frame))

		switch instruction {
		case OP_CONSTANT:
			vm.push(vm.readConstant(frame))

		case OP_NIL:
			vm.push(NilVal())

		case OP_TRUE:
			vm.push(BoolVal(true))

		case OP_FALSE:
			vm.push(BoolVal(false))

		case OP_POP:
			vm.pop()

		case OP_GET_LOCAL:
			slot := vm.readByte(frame)
			vm.push(vm.stack[frame.slots+int(slot)])

		case OP_SET_LOCAL:
			slot := vm.readByte(frame)
			vm.stack[frame.slots+int(slot)] = vm.peek(0)

		case OP_GET_GLOBAL:
			name := vm.readString(frame)
			value, ok := vm.globals.Get(name)
			if !ok {
				vm.runtimeError("Undefined variable '%s'.", name.Chars)
				return ErrRuntime
			}
			vm.push(value)

		case OP_DEFINE_GLOBAL:
			name := vm.readString(frame)
			vm.globals.Set(name, vm.peek(0))
			vm.pop()

		case OP_SET_GLOBAL:
			name := vm.readString(frame)
			if vm.globals.Set(name, vm.peek(0)) {
				// assigning to an undefined global is an error; undo the
				// accidental definition before reporting
				vm.globals.Delete(name)
				vm.runtimeError("Undefined variable '%s'.", name.Chars)
				return ErrRuntime
			}

		case OP_GET_UPVALUE:
			slot := vm.readByte(frame)
			upvalue := frame.closure.Upvalues[slot]
			if upvalue.IsOpen() {
				vm.push(vm.stack[upvalue.Location])
			} else {
				vm.push(upvalue.Closed)
			}

		case OP_SET_UPVALUE:
			slot := vm.readByte(frame)
			upvalue := frame.closure.Upvalues[slot]
			if upvalue.IsOpen() {
				vm.stack[upvalue.Location] = vm.peek(0)
			} else {
				upvalue.Closed = vm.peek(0)
			}

		case OP_GET_PROPERTY:
			if !vm.peek(0).isObjKind(KindInstance) {
				vm.runtimeError("Only instances have properties.")
				return ErrRuntime
			}
			instance := vm.peek(0).Obj.(*ObjInstance)
			name := vm.readString(frame)

			if value, ok := instance.Fields.Get(name); ok {
				vm.pop() // instance
				vm.push(value)
			} else if !vm.bindMethod(instance.Class, name) {
				return ErrRuntime
			}

		case OP_SET_PROPERTY:
			if !vm.peek(1).isObjKind(KindInstance) {
				vm.runtimeError("Only instances have fields.")
				return ErrRuntime
			}
			instance := vm.peek(1).Obj.(*ObjInstance)
			name := vm.readString(frame)
			instance.Fields.Set(name, vm.peek(0))

			value := vm.pop()
			vm.pop() // instance
			vm.push(value)

		case OP_GET_SUPER:
			name := vm.readString(frame)
			superclass := vm.pop().Obj.(*ObjClass)
			if !vm.bindMethod(superclass, name) {
				return ErrRuntime
			}

		case OP_EQUAL:
			b := vm.pop()
			a := vm.pop()
			vm.push(BoolVal(a.Equals(b)))

		case OP_GREATER:
			if !vm.binaryNumericCheck() {
				return ErrRuntime
			}
			b := vm.pop().AsNumber()
			a := vm.pop().AsNumber()
			vm.push(BoolVal(a > b))

		case OP_LESS:
			if !vm.binaryNumericCheck() {
				return ErrRuntime
			}
			b := vm.pop().AsNumber()
			a := vm.pop().AsNumber()
			vm.push(BoolVal(a < b))

		case OP_ADD:
			switch {
			case vm.peek(0).IsString() && vm.peek(1).IsString():
				vm.concatenate()
			case vm.peek(0).IsNumber() && vm.peek(1).IsNumber():
				b := vm.pop().AsNumber()
				a := vm.pop().AsNumber()
				vm.push(NumberVal(a + b))
			default:
				vm.runtimeError("Operands must be two numbers or two strings.")
				return ErrRuntime
			}

		case OP_SUBTRACT:
			if !vm.binaryNumericCheck() {
				return ErrRuntime
			}
			b := vm.pop().AsNumber()
			a := vm.pop().AsNumber()
			vm.push(NumberVal(a - b))

		case OP_MULTIPLY:
			if !vm.binaryNumericCheck() {
				return ErrRuntime
			}
			b := vm.pop().AsNumber()
			a := vm.pop().AsNumber()
			vm.push(NumberVal(a * b))

		case OP_DIVIDE:
			// division by zero follows IEEE-754: no error, Inf/NaN
			if !vm.binaryNumericCheck() {
				return ErrRuntime
			}
			b := vm.pop().AsNumber()
			a := vm.pop().AsNumber()
			vm.push(NumberVal(a / b))

		case OP_NOT:
			vm.push(BoolVal(vm.pop().IsFalsey()))

		case OP_NEGATE:
			if !vm.peek(0).IsNumber() {
				vm.runtimeError("Operand must be a number.")
				return ErrRuntime
			}
			vm.push(NumberVal(-vm.pop().AsNumber()))

		case OP_PRINT:
			fmt.Fprintln(vm.stdout, vm.pop().String())

		case OP_JUMP:
			offset := vm.readShort(frame)
			frame.ip += offset

		case OP_JUMP_IF_FALSE:
			offset := vm.readShort(frame)
			if vm.peek(0).IsFalsey() {
				frame.ip += offset
			}

		case OP_LOOP:
			offset := vm.readShort(frame)
			frame.ip -= offset

		case OP_CALL:
			argCount := int(vm.readByte(frame))
			if !vm.callValue(vm.peek(argCount), argCount) {
				return ErrRuntime
			}
			frame = vm.currentFrame()

		case OP_INVOKE:
			method := vm.readString(frame)
			argCount := int(vm.readByte(frame))
			if !vm.invoke(method, argCount) {
				return ErrRuntime
			}
			frame = vm.currentFrame()

		case OP_SUPER_INVOKE:
			method := vm.readString(frame)
			argCount := int(vm.readByte(frame))
			superclass := vm.pop().Obj.(*ObjClass)
			if !vm.invokeFromClass(superclass, method, argCount) {
				return ErrRuntime
			}
			frame = vm.currentFrame()

		case OP_CLOSURE:
			fn := vm.readConstant(frame).Obj.(*ObjFunction)
			closure := vm.newClosure(fn)
			vm.push(ObjVal(closure))

			for i := range closure.Upvalues {
				isLocal := vm.readByte(frame)
				index := int(vm.readByte(frame))
				if isLocal == 1 {
					closure.Upvalues[i] = vm.captureUpvalue(frame.slots + index)
				} else {
					closure.Upvalues[i] = frame.closure.Upvalues[index]
				}
			}

		case OP_CLOSE_UPVALUE:
			vm.closeUpvalues(vm.stackTop - 1)
			vm.pop()

		case OP_RETURN:
			result := vm.pop()
			vm.closeUpvalues(frame.slots)
			vm.frameCount--

			if vm.frameCount == 0 {
				// pop the top-level closure; the stack is empty again
				vm.pop()
				return nil
			}

			vm.stackTop = frame.slots
			vm.push(result)
			frame = vm.currentFrame()

		case OP_CLASS:
			name := vm.readString(frame)
			vm.push(ObjVal(vm.newClass(name)))

		case OP_INHERIT:
			if !vm.peek(1).isObjKind(KindClass) {
				vm.runtimeError("Superclass must be a class.")
				return ErrRuntime
			}
			superclass := vm.peek(1).Obj.(*ObjClass)
			subclass := vm.peek(0).Obj.(*ObjClass)
			subclass.Methods.AddAll(&superclass.Methods)
			vm.pop() // subclass; the superclass stays as the `super` local

		case OP_METHOD:
			vm.defineMethod(vm.readString(frame))

		default:
			vm.runtimeError("Unknown opcode %d.", instruction)
			return ErrRuntime
		}
	}
}

func (vm *VM) binaryNumericCheck() bool {
	if !vm.peek(0).IsNumber() || !vm.peek(1).IsNumber() {
		vm.runtimeError("Operands must be numbers.")
		return false
	}
	return true
}

// traceInstruction dumps the stack and the next instruction to the error
// writer. Enabled by the trace_execution option.
func (vm *VM) traceInstruction(frame *CallFrame) {
	var sb strings.Builder

	sb.WriteString("          ")
	for i := 0; i < vm.stackTop; i++ {
		sb.WriteString("[ ")
		sb.WriteString(vm.stack[i].String())
		sb.WriteString(" ]")
	}
	sb.WriteByte('\n')

	disassembleInstruction(&sb, frame.closure.Function.Chunk, frame.ip)
	fmt.Fprint(vm.stderr, sb.String())
}
