package vm

import "fmt"

// ObjKind discriminates the heap object types.
type ObjKind uint8

const (
	KindString ObjKind = iota
	KindFunction
	KindNative
	KindClosure
	KindUpvalue
	KindClass
	KindInstance
	KindBoundMethod
)

// Obj is the header embedded in every heap object. The VM threads all live
// objects through next so the sweep phase can walk and unlink them.
type Obj struct {
	kind     ObjKind
	isMarked bool
	next     Object
}

// Object is implemented by every heap-allocated runtime value.
type Object interface {
	header() *Obj
	Kind() ObjKind
	String() string
}

func (o *Obj) header() *Obj  { return o }
func (o *Obj) Kind() ObjKind { return o.kind }

// ObjString is an immutable interned string with its precomputed FNV-1a
// hash. At most one ObjString exists per byte content.
type ObjString struct {
	Obj
	Chars string
	Hash  uint32
}

func (s *ObjString) String() string { return s.Chars }

// HashString is FNV-1a, 32 bit.
func HashString(s string) uint32 {
	var hash uint32 = 2166136261
	for i := 0; i < len(s); i++ {
		hash ^= uint32(s[i])
		hash *= 16777619
	}
	return hash
}

// ObjFunction is a compiled function body. The top-level script is a
// function with no name and arity 0.
type ObjFunction struct {
	Obj
	Arity        int
	UpvalueCount int
	Chunk        *Chunk
	Name         *ObjString // nil for the top-level script
}

func (f *ObjFunction) String() string {
	if f.Name == nil {
		return "<script>"
	}
	return fmt.Sprintf("<fn %s>", f.Name.Chars)
}

// NativeFn is the calling convention for functions implemented in Go. A
// returned error becomes a runtime error in the calling program.
type NativeFn func(args []Value) (Value, error)

// ObjNative wraps a Go function exposed to the language.
type ObjNative struct {
	Obj
	Name  string
	Arity int
	Fn    NativeFn
}

func (n *ObjNative) String() string { return "<native fn>" }

// ObjUpvalue is a variable captured by a closure. While open, Location
// indexes the slot on the VM value stack it refers to; once closed,
// Location is -1 and the value lives in Closed. Open upvalues form a list
// through Next, sorted by descending Location.
type ObjUpvalue struct {
	Obj
	Location int
	Closed   Value
	Next     *ObjUpvalue
}

func (u *ObjUpvalue) String() string { return "upvalue" }

// IsOpen reports whether the upvalue still points into the value stack.
func (u *ObjUpvalue) IsOpen() bool { return u.Location >= 0 }

// ObjClosure pairs a function with the upvalues it captured.
type ObjClosure struct {
	Obj
	Function *ObjFunction
	Upvalues []*ObjUpvalue
}

func (c *ObjClosure) String() string { return c.Function.String() }

// ObjClass is a class with its method table.
type ObjClass struct {
	Obj
	Name    *ObjString
	Methods Table
}

func (c *ObjClass) String() string { return c.Name.Chars }

// ObjInstance is an instance of a class with its own field table.
type ObjInstance struct {
	Obj
	Class  *ObjClass
	Fields Table
}

func (i *ObjInstance) String() string { return i.Class.Name.Chars + " instance" }

// ObjBoundMethod is a method closure snapped to the receiver it was
// accessed through.
type ObjBoundMethod struct {
	Obj
	Receiver Value
	Method   *ObjClosure
}

func (b *ObjBoundMethod) String() string { return b.Method.Function.String() }
