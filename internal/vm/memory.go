package vm

import (
	"github.com/tliron/commonlog"
)

var gcLog = commonlog.GetLogger("clox.gc")

// Approximate per-object sizes used for the collection trigger. Go owns the
// real memory; these keep the byte accounting proportional to what the
// program actually allocates.
const (
	sizeString      = 48
	sizeFunction    = 80
	sizeNative      = 40
	sizeUpvalue     = 56
	sizeClosure     = 40
	sizeClass       = 64
	sizeInstance    = 64
	sizeBoundMethod = 48
)

// track links a freshly created object into the VM object list and charges
// its size, collecting first if the threshold was crossed (or always, under
// stress mode). The object must not yet be reachable from any root, so
// collection happens before linking.
func (vm *VM) track(obj Object, size int) {
	if vm.options.StressGC {
		vm.CollectGarbage()
	} else if vm.bytesAllocated+size > vm.nextGC {
		vm.CollectGarbage()
	}

	vm.bytesAllocated += size

	h := obj.header()
	h.next = vm.objects
	vm.objects = obj

	if vm.options.LogGC {
		gcLog.Debugf("allocate %d bytes for kind %d", size, h.kind)
	}
}

func objSize(obj Object) int {
	switch o := obj.(type) {
	case *ObjString:
		return sizeString + len(o.Chars)
	case *ObjFunction:
		return sizeFunction + o.Chunk.Len()
	case *ObjNative:
		return sizeNative
	case *ObjUpvalue:
		return sizeUpvalue
	case *ObjClosure:
		return sizeClosure + 8*len(o.Upvalues)
	case *ObjClass:
		return sizeClass
	case *ObjInstance:
		return sizeInstance
	case *ObjBoundMethod:
		return sizeBoundMethod
	default:
		return 0
	}
}

// CollectGarbage runs a full mark-sweep cycle over the object list.
func (vm *VM) CollectGarbage() {
	logging := vm.options.LogGC
	before := vm.bytesAllocated
	if logging {
		gcLog.Info("-- gc begin")
	}

	vm.markRoots()
	vm.traceReferences()
	// the interner holds strings weakly: purge dead keys before their
	// objects are swept
	vm.strings.RemoveWhite()
	vm.sweep()

	vm.nextGC = vm.bytesAllocated * vm.heapGrowFactor()

	if logging {
		gcLog.Infof("-- gc end: collected %d bytes (from %d to %d), next at %d",
			before-vm.bytesAllocated, before, vm.bytesAllocated, vm.nextGC)
	}
}

func (vm *VM) heapGrowFactor() int {
	if vm.options.GCHeapGrow > 0 {
		return vm.options.GCHeapGrow
	}
	return 2
}

func (vm *VM) markRoots() {
	for i := 0; i < vm.stackTop; i++ {
		vm.markValue(vm.stack[i])
	}

	for i := 0; i < vm.frameCount; i++ {
		vm.markObject(vm.frames[i].closure)
	}

	for upvalue := vm.openUpvalues; upvalue != nil; upvalue = upvalue.Next {
		vm.markObject(upvalue)
	}

	vm.markTable(&vm.globals)
	vm.markCompilerRoots()
	vm.markObject(vm.initString)

	for _, v := range vm.tempRoots {
		vm.markValue(v)
	}
}

// markCompilerRoots keeps the active compiler chain's functions alive while
// compilation is in progress, since allocation (and so collection) can
// happen between any two compiler steps.
func (vm *VM) markCompilerRoots() {
	for c := vm.compiler; c != nil; c = c.enclosing {
		vm.markObject(c.function)
	}
}

func (vm *VM) markValue(value Value) {
	if value.IsObj() {
		vm.markObject(value.Obj)
	}
}

func (vm *VM) markObject(obj Object) {
	if obj == nil || isNilObject(obj) {
		return
	}
	h := obj.header()
	if h.isMarked {
		return
	}

	if vm.options.LogGC {
		gcLog.Debugf("mark %s", obj.String())
	}

	h.isMarked = true
	vm.grayStack = append(vm.grayStack, obj)
}

// isNilObject guards against typed-nil interface values sneaking in via
// fields like ObjFunction.Name.
func isNilObject(obj Object) bool {
	switch o := obj.(type) {
	case *ObjString:
		return o == nil
	case *ObjFunction:
		return o == nil
	case *ObjNative:
		return o == nil
	case *ObjUpvalue:
		return o == nil
	case *ObjClosure:
		return o == nil
	case *ObjClass:
		return o == nil
	case *ObjInstance:
		return o == nil
	case *ObjBoundMethod:
		return o == nil
	default:
		return false
	}
}

func (vm *VM) markTable(table *Table) {
	for i := range table.entries {
		entry := &table.entries[i]
		vm.markObject(entry.Key)
		vm.markValue(entry.Value)
	}
}

func (vm *VM) traceReferences() {
	for len(vm.grayStack) > 0 {
		obj := vm.grayStack[len(vm.grayStack)-1]
		vm.grayStack = vm.grayStack[:len(vm.grayStack)-1]
		vm.blackenObject(obj)
	}
}

func (vm *VM) blackenObject(obj Object) {
	if vm.options.LogGC {
		gcLog.Debugf("blacken %s", obj.String())
	}

	switch o := obj.(type) {
	case *ObjString, *ObjNative:
		// no children

	case *ObjUpvalue:
		// safe while open: Closed is nil-valued then
		vm.markValue(o.Closed)

	case *ObjFunction:
		vm.markObject(o.Name)
		for _, constant := range o.Chunk.Constants {
			vm.markValue(constant)
		}

	case *ObjClosure:
		vm.markObject(o.Function)
		for _, upvalue := range o.Upvalues {
			vm.markObject(upvalue)
		}

	case *ObjClass:
		vm.markObject(o.Name)
		vm.markTable(&o.Methods)

	case *ObjInstance:
		vm.markObject(o.Class)
		vm.markTable(&o.Fields)

	case *ObjBoundMethod:
		vm.markValue(o.Receiver)
		vm.markObject(o.Method)
	}
}

// sweep unlinks every unmarked object from the object list and clears the
// marks on survivors for the next cycle. The Go runtime reclaims the memory
// once the list no longer references the object.
func (vm *VM) sweep() {
	var previous Object
	obj := vm.objects

	for obj != nil {
		h := obj.header()
		if h.isMarked {
			h.isMarked = false
			previous = obj
			obj = h.next
			continue
		}

		unreached := obj
		obj = h.next
		if previous != nil {
			previous.header().next = obj
		} else {
			vm.objects = obj
		}

		vm.freeObject(unreached)
	}
}

// freeObject severs the object's references so nothing freed keeps other
// objects reachable through it, and refunds its size.
func (vm *VM) freeObject(obj Object) {
	if vm.options.LogGC {
		gcLog.Debugf("free kind %d", obj.Kind())
	}

	vm.bytesAllocated -= objSize(obj)

	switch o := obj.(type) {
	case *ObjFunction:
		o.Chunk = nil
		o.Name = nil
	case *ObjClosure:
		o.Function = nil
		o.Upvalues = nil
	case *ObjClass:
		o.Name = nil
		o.Methods = Table{}
	case *ObjInstance:
		o.Class = nil
		o.Fields = Table{}
	case *ObjBoundMethod:
		o.Receiver = NilVal()
		o.Method = nil
	case *ObjUpvalue:
		o.Closed = NilVal()
		o.Next = nil
	}

	obj.header().next = nil
}

// Allocation helpers. Every heap object is born through one of these.

func (vm *VM) newFunction() *ObjFunction {
	fn := &ObjFunction{Obj: Obj{kind: KindFunction}, Chunk: NewChunk()}
	vm.track(fn, objSize(fn))
	return fn
}

func (vm *VM) newNative(name string, arity int, fn NativeFn) *ObjNative {
	native := &ObjNative{Obj: Obj{kind: KindNative}, Name: name, Arity: arity, Fn: fn}
	vm.track(native, objSize(native))
	return native
}

func (vm *VM) newClosure(fn *ObjFunction) *ObjClosure {
	closure := &ObjClosure{
		Obj:      Obj{kind: KindClosure},
		Function: fn,
		Upvalues: make([]*ObjUpvalue, fn.UpvalueCount),
	}
	vm.track(closure, objSize(closure))
	return closure
}

func (vm *VM) newUpvalue(location int) *ObjUpvalue {
	upvalue := &ObjUpvalue{Obj: Obj{kind: KindUpvalue}, Location: location, Closed: NilVal()}
	vm.track(upvalue, objSize(upvalue))
	return upvalue
}

func (vm *VM) newClass(name *ObjString) *ObjClass {
	class := &ObjClass{Obj: Obj{kind: KindClass}, Name: name}
	vm.track(class, objSize(class))
	return class
}

func (vm *VM) newInstance(class *ObjClass) *ObjInstance {
	instance := &ObjInstance{Obj: Obj{kind: KindInstance}, Class: class}
	vm.track(instance, objSize(instance))
	return instance
}

func (vm *VM) newBoundMethod(receiver Value, method *ObjClosure) *ObjBoundMethod {
	bound := &ObjBoundMethod{Obj: Obj{kind: KindBoundMethod}, Receiver: receiver, Method: method}
	vm.track(bound, objSize(bound))
	return bound
}

// internString returns the unique ObjString for chars, allocating it on
// first sight. This is the only constructor for strings.
func (vm *VM) internString(chars string) *ObjString {
	hash := HashString(chars)
	if interned := vm.strings.FindString(chars, hash); interned != nil {
		return interned
	}

	str := &ObjString{Obj: Obj{kind: KindString}, Chars: chars, Hash: hash}
	vm.track(str, objSize(str))

	// keep the new string rooted while the interner table may itself grow
	vm.pushTempRoot(ObjVal(str))
	vm.strings.Set(str, NilVal())
	vm.popTempRoot()

	return str
}

func (vm *VM) pushTempRoot(v Value) {
	vm.tempRoots = append(vm.tempRoots, v)
}

func (vm *VM) popTempRoot() {
	vm.tempRoots = vm.tempRoots[:len(vm.tempRoots)-1]
}
