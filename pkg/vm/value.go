package vm

import (
	"fmt"
	"math"
	"strconv"
	"unsafe"
)

type ValueType uint8

const (
	TypeUndefined ValueType = iota
	TypeNull
	TypeBoolean
	TypeNumber
	TypeString
	TypeObject
	TypeCharRef // soft reference to a stage object
)

// String returns a human-readable name of the ValueType
func (vt ValueType) String() string {
	switch vt {
	case TypeUndefined:
		return "undefined"
	case TypeNull:
		return "null"
	case TypeBoolean:
		return "boolean"
	case TypeNumber:
		return "number"
	case TypeString:
		return "string"
	case TypeObject:
		return "object"
	case TypeCharRef:
		return "character"
	default:
		return "unknown"
	}
}

type stringValue struct {
	value string
}

// Value is the dynamic ActionScript value. Exactly one variant is active;
// thrown values travel as *Exception errors, not as a flag on Value.
type Value struct {
	typ     ValueType
	payload uint64
	obj     unsafe.Pointer
}

var (
	Undefined = Value{typ: TypeUndefined}
	Null      = Value{typ: TypeNull}
	True      = Value{typ: TypeBoolean, payload: 1}
	False     = Value{typ: TypeBoolean, payload: 0}
	NaN       = Value{typ: TypeNumber, payload: math.Float64bits(math.NaN())}
)

func NumberValue(value float64) Value {
	return Value{typ: TypeNumber, payload: math.Float64bits(value)}
}

func BooleanValue(value bool) Value {
	if value {
		return True
	}
	return False
}

func NewString(value string) Value {
	return Value{typ: TypeString, obj: unsafe.Pointer(&stringValue{value: value})}
}

// ObjectValue wraps an object reference. A nil object yields Null.
func ObjectValue(o *Object) Value {
	if o == nil {
		return Null
	}
	return Value{typ: TypeObject, obj: unsafe.Pointer(o)}
}

// CharRefValue wraps a soft reference to a stage object.
func CharRefValue(r *CharRef) Value {
	if r == nil {
		return Undefined
	}
	return Value{typ: TypeCharRef, obj: unsafe.Pointer(r)}
}

func (v Value) Type() ValueType { return v.typ }

func (v Value) IsUndefined() bool { return v.typ == TypeUndefined }
func (v Value) IsNull() bool      { return v.typ == TypeNull }
func (v Value) IsBoolean() bool   { return v.typ == TypeBoolean }
func (v Value) IsNumber() bool    { return v.typ == TypeNumber }
func (v Value) IsString() bool    { return v.typ == TypeString }
func (v Value) IsObject() bool    { return v.typ == TypeObject }
func (v Value) IsCharRef() bool   { return v.typ == TypeCharRef }

// IsPrimitive reports whether the value is neither an object nor a
// character reference.
func (v Value) IsPrimitive() bool { return v.typ != TypeObject && v.typ != TypeCharRef }

// IsFunction reports whether the value references a callable object.
func (v Value) IsFunction() bool {
	return v.typ == TypeObject && v.AsObject().IsFunction()
}

func (v Value) AsNumber() float64 {
	if v.typ != TypeNumber {
		panic("value is not a number")
	}
	return math.Float64frombits(v.payload)
}

func (v Value) AsBoolean() bool {
	if v.typ != TypeBoolean {
		panic("value is not a boolean")
	}
	return v.payload == 1
}

func (v Value) AsString() string {
	if v.typ != TypeString {
		panic("value is not a string")
	}
	return (*stringValue)(v.obj).value
}

// AsObject returns the referenced object, or nil for any other variant.
func (v Value) AsObject() *Object {
	if v.typ != TypeObject {
		return nil
	}
	return (*Object)(v.obj)
}

// AsCharRef returns the soft reference, or nil for any other variant.
func (v Value) AsCharRef() *CharRef {
	if v.typ != TypeCharRef {
		return nil
	}
	return (*CharRef)(v.obj)
}

// TypeOf implements the typeof operator.
func (v Value) TypeOf() string {
	switch v.typ {
	case TypeObject:
		if v.AsObject().IsFunction() {
			return "function"
		}
		return "object"
	case TypeCharRef:
		return "movieclip"
	default:
		return v.typ.String()
	}
}

// Inspect renders the value for diagnostics without invoking script code.
func (v Value) Inspect() string {
	switch v.typ {
	case TypeUndefined:
		return "undefined"
	case TypeNull:
		return "null"
	case TypeBoolean:
		return strconv.FormatBool(v.AsBoolean())
	case TypeNumber:
		return DoubleToString(v.AsNumber())
	case TypeString:
		return strconv.Quote(v.AsString())
	case TypeObject:
		o := v.AsObject()
		if o.IsFunction() {
			if o.name != "" {
				return fmt.Sprintf("[function %s]", o.name)
			}
			return "[function]"
		}
		return fmt.Sprintf("[object %p]", o)
	case TypeCharRef:
		return "[character " + v.AsCharRef().Path() + "]"
	}
	return fmt.Sprintf("<unknown type %d>", v.typ)
}

func (v Value) String() string { return v.Inspect() }
