package bytecode

import (
	"fmt"
	"strconv"
)

// ValueKind identifies the runtime type of a Value.
type ValueKind uint8

const (
	KindNull ValueKind = iota
	KindBool
	KindInt
	KindFloat
	KindObject // reference to a heap Object
)

// String returns a human-readable name for the value kind.
func (k ValueKind) String() string {
	switch k {
	case KindNull:
		return "null"
	case KindBool:
		return "bool"
	case KindInt:
		return "int"
	case KindFloat:
		return "float"
	case KindObject:
		return "object"
	default:
		return fmt.Sprintf("ValueKind(%d)", k)
	}
}

// Value is a dynamically-typed operand: a closed variant over null,
// bool, 64-bit signed int, IEEE-754 float, and a heap object reference.
//
// Values are copied by value on every push and pop. KindObject values
// carry a non-owning pointer into the VM's heap registry (or into a
// chunk's constant pool for literal strings); the referent stays valid
// until the owning VM or chunk is torn down.
type Value struct {
	Kind ValueKind
	B    bool
	I    int64
	F    float64
	Obj  *Object
}

// NullValue returns the null value.
func NullValue() Value {
	return Value{Kind: KindNull}
}

// BoolValue creates a boolean Value.
func BoolValue(b bool) Value {
	return Value{Kind: KindBool, B: b}
}

// IntValue creates an integer Value.
func IntValue(i int64) Value {
	return Value{Kind: KindInt, I: i}
}

// FloatValue creates a float Value.
func FloatValue(f float64) Value {
	return Value{Kind: KindFloat, F: f}
}

// ObjectValue creates a heap-object reference Value.
func ObjectValue(o *Object) Value {
	return Value{Kind: KindObject, Obj: o}
}

// IsNull returns true if v is the null value.
func (v Value) IsNull() bool { return v.Kind == KindNull }

// IsBool returns true if v is a boolean.
func (v Value) IsBool() bool { return v.Kind == KindBool }

// IsInt returns true if v is an integer.
func (v Value) IsInt() bool { return v.Kind == KindInt }

// IsFloat returns true if v is a float.
func (v Value) IsFloat() bool { return v.Kind == KindFloat }

// IsNumber returns true if v is an integer or a float.
func (v Value) IsNumber() bool { return v.Kind == KindInt || v.Kind == KindFloat }

// IsString returns true if v references a heap string object.
func (v Value) IsString() bool {
	return v.Kind == KindObject && v.Obj != nil && v.Obj.Kind == ObjString
}

// Equals reports structural equality between two values.
// Values of different kinds are never equal; there is no implicit
// numeric coercion, so Int(1) does not equal Float(1.0). Strings
// compare by content, not by identity.
func (v Value) Equals(other Value) bool {
	if v.Kind != other.Kind {
		return false
	}
	switch v.Kind {
	case KindNull:
		return true
	case KindBool:
		return v.B == other.B
	case KindInt:
		return v.I == other.I
	case KindFloat:
		return v.F == other.F
	case KindObject:
		return v.Obj.Equals(other.Obj)
	default:
		return false
	}
}

// String returns the printed representation of a value. This is the
// format the engine writes for the final returned value.
func (v Value) String() string {
	switch v.Kind {
	case KindNull:
		return "null"
	case KindBool:
		return strconv.FormatBool(v.B)
	case KindInt:
		return strconv.FormatInt(v.I, 10)
	case KindFloat:
		return strconv.FormatFloat(v.F, 'g', -1, 64)
	case KindObject:
		return v.Obj.String()
	default:
		return "<invalid>"
	}
}
