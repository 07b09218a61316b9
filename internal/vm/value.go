package vm

import (
	"math"
	"strconv"
)

// ValueType identifies the type of value stored in the Value struct
type ValueType uint8

const (
	ValNil ValueType = iota
	ValBool
	ValNumber
	ValObj
)

// Value is a stack-allocated tagged union. Small primitives (nil, booleans,
// numbers) live directly in Data; everything else is a heap object reference.
type Value struct {
	Type ValueType
	Data uint64 // float64 bits or bool (0/1)
	Obj  Object // heap object when Type == ValObj
}

// Constructors

func NilVal() Value {
	return Value{Type: ValNil}
}

func BoolVal(v bool) Value {
	var data uint64
	if v {
		data = 1
	}
	return Value{Type: ValBool, Data: data}
}

func NumberVal(v float64) Value {
	return Value{Type: ValNumber, Data: math.Float64bits(v)}
}

func ObjVal(o Object) Value {
	return Value{Type: ValObj, Obj: o}
}

// Accessors

func (v Value) AsBool() bool {
	return v.Data == 1
}

func (v Value) AsNumber() float64 {
	return math.Float64frombits(v.Data)
}

func (v Value) IsNil() bool    { return v.Type == ValNil }
func (v Value) IsBool() bool   { return v.Type == ValBool }
func (v Value) IsNumber() bool { return v.Type == ValNumber }
func (v Value) IsObj() bool    { return v.Type == ValObj }

func (v Value) isObjKind(kind ObjKind) bool {
	return v.Type == ValObj && v.Obj.Kind() == kind
}

func (v Value) IsString() bool { return v.isObjKind(KindString) }

func (v Value) AsString() *ObjString {
	return v.Obj.(*ObjString)
}

// IsFalsey reports whether the value is nil or false. Everything else,
// including 0 and "", is truthy.
func (v Value) IsFalsey() bool {
	return v.Type == ValNil || (v.Type == ValBool && v.Data == 0)
}

// Equals compares two values. Distinct types are never equal. Objects
// compare by identity; strings are interned, so this covers string equality
// as well.
func (v Value) Equals(other Value) bool {
	if v.Type != other.Type {
		return false
	}
	switch v.Type {
	case ValNil:
		return true
	case ValBool:
		return v.Data == other.Data
	case ValNumber:
		return v.AsNumber() == other.AsNumber()
	case ValObj:
		return v.Obj == other.Obj
	default:
		return false
	}
}

// String renders the value the way the print statement does.
func (v Value) String() string {
	switch v.Type {
	case ValNil:
		return "nil"
	case ValBool:
		if v.Data == 1 {
			return "true"
		}
		return "false"
	case ValNumber:
		return formatNumber(v.AsNumber())
	case ValObj:
		return v.Obj.String()
	default:
		return "unknown"
	}
}

func formatNumber(f float64) string {
	switch {
	case math.IsNaN(f):
		return "nan"
	case math.IsInf(f, 1):
		return "inf"
	case math.IsInf(f, -1):
		return "-inf"
	}
	return strconv.FormatFloat(f, 'g', -1, 64)
}
