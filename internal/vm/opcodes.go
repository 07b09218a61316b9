// Package vm implements the bytecode compiler and the virtual machine.
package vm

// Opcode represents a single VM instruction
type Opcode byte

const (
	// Constants and literals
	OP_CONSTANT Opcode = iota // Push constant from pool (u8 index)
	OP_NIL                    // Push nil
	OP_TRUE                   // Push true
	OP_FALSE                  // Push false

	// Stack manipulation
	OP_POP // Discard top of stack

	// Variables
	OP_GET_LOCAL     // Get local variable by slot
	OP_SET_LOCAL     // Set local variable by slot (value stays on stack)
	OP_GET_GLOBAL    // Get global variable by name constant
	OP_DEFINE_GLOBAL // Define global variable by name constant
	OP_SET_GLOBAL    // Set existing global variable by name constant
	OP_GET_UPVALUE   // Get captured variable by upvalue index
	OP_SET_UPVALUE   // Set captured variable by upvalue index

	// Properties
	OP_GET_PROPERTY // Read field or bind method (u8 name constant)
	OP_SET_PROPERTY // Write field (u8 name constant)
	OP_GET_SUPER    // Bind method from superclass (u8 name constant)

	// Comparison
	OP_EQUAL
	OP_GREATER
	OP_LESS

	// Arithmetic
	OP_ADD      // Numeric add or string concatenation
	OP_SUBTRACT
	OP_MULTIPLY
	OP_DIVIDE
	OP_NOT
	OP_NEGATE

	OP_PRINT // Pop and print with trailing newline

	// Control flow (16-bit big-endian offsets)
	OP_JUMP          // Unconditional forward jump
	OP_JUMP_IF_FALSE // Forward jump when top of stack is falsey; no pop
	OP_LOOP          // Backward jump

	// Calls and closures
	OP_CALL          // Call value with u8 argument count
	OP_INVOKE        // Method call fast path (u8 name constant, u8 argc)
	OP_SUPER_INVOKE  // Superclass method call (u8 name constant, u8 argc)
	OP_CLOSURE       // Build closure; operands: u8 fn constant, then (isLocal, index) pairs
	OP_CLOSE_UPVALUE // Close the upvalue at the top stack slot and pop
	OP_RETURN        // Return from the current frame

	// Classes
	OP_CLASS   // Create class (u8 name constant)
	OP_INHERIT // Copy superclass methods into subclass
	OP_METHOD  // Bind closure on stack top as method (u8 name constant)
)
