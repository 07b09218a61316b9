package vm

import (
	"fmt"
	"strings"
)

// Disassemble returns a human-readable representation of the bytecode
func Disassemble(chunk *Chunk, name string) string {
	var sb strings.Builder

	sb.WriteString(fmt.Sprintf("== %s ==\n", name))

	offset := 0
	for offset < len(chunk.Code) {
		offset = disassembleInstruction(&sb, chunk, offset)
	}

	return sb.String()
}

// DisassembleInstruction renders the single instruction at offset and
// returns the offset of the next one.
func DisassembleInstruction(chunk *Chunk, offset int) (string, int) {
	var sb strings.Builder
	next := disassembleInstruction(&sb, chunk, offset)
	return sb.String(), next
}

func disassembleInstruction(sb *strings.Builder, chunk *Chunk, offset int) int {
	sb.WriteString(fmt.Sprintf("%04d ", offset))

	if offset > 0 && chunk.Lines[offset] == chunk.Lines[offset-1] {
		sb.WriteString("   | ")
	} else {
		sb.WriteString(fmt.Sprintf("%4d ", chunk.Lines[offset]))
	}

	op := Opcode(chunk.Code[offset])

	switch op {
	case OP_CONSTANT:
		return constantInstruction(sb, "OP_CONSTANT", chunk, offset)
	case OP_NIL:
		return simpleInstruction(sb, "OP_NIL", offset)
	case OP_TRUE:
		return simpleInstruction(sb, "OP_TRUE", offset)
	case OP_FALSE:
		return simpleInstruction(sb, "OP_FALSE", offset)
	case OP_POP:
		return simpleInstruction(sb, "OP_POP", offset)
	case OP_GET_LOCAL:
		return byteInstruction(sb, "OP_GET_LOCAL", chunk, offset)
	case OP_SET_LOCAL:
		return byteInstruction(sb, "OP_SET_LOCAL", chunk, offset)
	case OP_GET_GLOBAL:
		return constantInstruction(sb, "OP_GET_GLOBAL", chunk, offset)
	case OP_DEFINE_GLOBAL:
		return constantInstruction(sb, "OP_DEFINE_GLOBAL", chunk, offset)
	case OP_SET_GLOBAL:
		return constantInstruction(sb, "OP_SET_GLOBAL", chunk, offset)
	case OP_GET_UPVALUE:
		return byteInstruction(sb, "OP_GET_UPVALUE", chunk, offset)
	case OP_SET_UPVALUE:
		return byteInstruction(sb, "OP_SET_UPVALUE", chunk, offset)
	case OP_GET_PROPERTY:
		return constantInstruction(sb, "OP_GET_PROPERTY", chunk, offset)
	case OP_SET_PROPERTY:
		return constantInstruction(sb, "OP_SET_PROPERTY", chunk, offset)
	case OP_GET_SUPER:
		return constantInstruction(sb, "OP_GET_SUPER", chunk, offset)
	case OP_EQUAL:
		return simpleInstruction(sb, "OP_EQUAL", offset)
	case OP_GREATER:
		return simpleInstruction(sb, "OP_GREATER", offset)
	case OP_LESS:
		return simpleInstruction(sb, "OP_LESS", offset)
	case OP_ADD:
		return simpleInstruction(sb, "OP_ADD", offset)
	case OP_SUBTRACT:
		return simpleInstruction(sb, "OP_SUBTRACT", offset)
	case OP_MULTIPLY:
		return simpleInstruction(sb, "OP_MULTIPLY", offset)
	case OP_DIVIDE:
		return simpleInstruction(sb, "OP_DIVIDE", offset)
	case OP_NOT:
		return simpleInstruction(sb, "OP_NOT", offset)
	case OP_NEGATE:
		return simpleInstruction(sb, "OP_NEGATE", offset)
	case OP_PRINT:
		return simpleInstruction(sb, "OP_PRINT", offset)
	case OP_JUMP:
		return jumpInstruction(sb, "OP_JUMP", 1, chunk, offset)
	case OP_JUMP_IF_FALSE:
		return jumpInstruction(sb, "OP_JUMP_IF_FALSE", 1, chunk, offset)
	case OP_LOOP:
		return jumpInstruction(sb, "OP_LOOP", -1, chunk, offset)
	case OP_CALL:
		return byteInstruction(sb, "OP_CALL", chunk, offset)
	case OP_INVOKE:
		return invokeInstruction(sb, "OP_INVOKE", chunk, offset)
	case OP_SUPER_INVOKE:
		return invokeInstruction(sb, "OP_SUPER_INVOKE", chunk, offset)
	case OP_CLOSURE:
		return closureInstruction(sb, chunk, offset)
	case OP_CLOSE_UPVALUE:
		return simpleInstruction(sb, "OP_CLOSE_UPVALUE", offset)
	case OP_RETURN:
		return simpleInstruction(sb, "OP_RETURN", offset)
	case OP_CLASS:
		return constantInstruction(sb, "OP_CLASS", chunk, offset)
	case OP_INHERIT:
		return simpleInstruction(sb, "OP_INHERIT", offset)
	case OP_METHOD:
		return constantInstruction(sb, "OP_METHOD", chunk, offset)
	default:
		sb.WriteString(fmt.Sprintf("Unknown opcode %d\n", op))
		return offset + 1
	}
}

func simpleInstruction(sb *strings.Builder, name string, offset int) int {
	sb.WriteString(name)
	sb.WriteByte('\n')
	return offset + 1
}

func constantInstruction(sb *strings.Builder, name string, chunk *Chunk, offset int) int {
	constant := chunk.Code[offset+1]
	sb.WriteString(fmt.Sprintf("%-16s %4d '%s'\n", name, constant, chunk.Constants[constant]))
	return offset + 2
}

func byteInstruction(sb *strings.Builder, name string, chunk *Chunk, offset int) int {
	slot := chunk.Code[offset+1]
	sb.WriteString(fmt.Sprintf("%-16s %4d\n", name, slot))
	return offset + 2
}

func jumpInstruction(sb *strings.Builder, name string, sign int, chunk *Chunk, offset int) int {
	jump := int(chunk.Code[offset+1])<<8 | int(chunk.Code[offset+2])
	sb.WriteString(fmt.Sprintf("%-16s %4d -> %d\n", name, offset, offset+3+sign*jump))
	return offset + 3
}

func invokeInstruction(sb *strings.Builder, name string, chunk *Chunk, offset int) int {
	constant := chunk.Code[offset+1]
	argCount := chunk.Code[offset+2]
	sb.WriteString(fmt.Sprintf("%-16s (%d args) %4d '%s'\n", name, argCount, constant, chunk.Constants[constant]))
	return offset + 3
}

func closureInstruction(sb *strings.Builder, chunk *Chunk, offset int) int {
	offset++
	constant := chunk.Code[offset]
	offset++
	sb.WriteString(fmt.Sprintf("%-16s %4d %s\n", "OP_CLOSURE", constant, chunk.Constants[constant]))

	fn := chunk.Constants[constant].Obj.(*ObjFunction)
	for i := 0; i < fn.UpvalueCount; i++ {
		isLocal := chunk.Code[offset]
		index := chunk.Code[offset+1]
		kind := "upvalue"
		if isLocal == 1 {
			kind = "local"
		}
		sb.WriteString(fmt.Sprintf("%04d      |                     %s %d\n", offset, kind, index))
		offset += 2
	}

	return offset
}
