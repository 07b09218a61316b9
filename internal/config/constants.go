package config

const SourceFileExt = ".lox"

// SourceFileExtensions are all recognized source file extensions
var SourceFileExtensions = []string{".lox"}

// VM limits. FramesMax bounds call depth; StackMax is sized so every frame
// can address its full 256-slot window.
const (
	FramesMax = 64
	StackMax  = FramesMax * 256
)

// Compiler limits: one-byte operands for constants, locals and upvalues;
// 16-bit operands for jumps.
const (
	MaxConstants = 256
	MaxLocals    = 256
	MaxUpvalues  = 256
	MaxJump      = 65535
)

// GCHeapGrowFactor is the default multiplier applied to the live byte count
// after a collection to choose the next trigger point.
const GCHeapGrowFactor = 2

// InitialGCThreshold is the byte count that triggers the first collection.
const InitialGCThreshold = 1024 * 1024

// Process exit codes (sysexits.h convention).
const (
	ExitUsage        = 64
	ExitCompileError = 65
	ExitRuntimeError = 70
	ExitIOError      = 74
)

// InitMethodName is the reserved constructor method name.
const InitMethodName = "init"

// Environment variable overrides for VM options.
const (
	EnvTrace     = "CLOX_TRACE"
	EnvPrintCode = "CLOX_PRINT_CODE"
	EnvStressGC  = "CLOX_STRESS_GC"
	EnvLogGC     = "CLOX_LOG_GC"
)
