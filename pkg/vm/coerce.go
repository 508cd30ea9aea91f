package vm

import (
	"math"

	"asvm/pkg/errors"
)

// PrimitiveHint selects the order in which ToPrimitive tries conversion
// methods.
type PrimitiveHint uint8

const (
	HintNumber PrimitiveHint = iota
	HintString
)

// ToString converts the value to text following the player's rules.
func (v Value) ToString(vm *VM) string {
	switch v.typ {
	case TypeUndefined:
		if vm.Version() <= 6 {
			return ""
		}
		return "undefined"
	case TypeNull:
		return "null"
	case TypeBoolean:
		if v.AsBoolean() {
			return "true"
		}
		return "false"
	case TypeNumber:
		return DoubleToString(v.AsNumber())
	case TypeString:
		return v.AsString()
	case TypeObject:
		obj := v.AsObject()
		ret, err := v.ToPrimitive(vm, HintString)
		// Only a string result counts; the reference player ignores any
		// other primitive here.
		if err == nil && ret.IsString() {
			return ret.AsString()
		}
		if err != nil && !errors.IsTypeError(err) {
			vm.log.WithError(err).Debug("toString conversion failed")
		}
		if obj.IsFunction() {
			return "[type Function]"
		}
		return "[type Object]"
	case TypeCharRef:
		return v.AsCharRef().Path()
	}
	return ""
}

// ToNumber converts the value to a number. Coercion failures of objects
// degrade to NaN.
func (v Value) ToNumber(vm *VM) float64 {
	version := vm.Version()
	switch v.typ {
	case TypeUndefined, TypeNull:
		if version >= 7 {
			return math.NaN()
		}
		return 0
	case TypeBoolean:
		if v.AsBoolean() {
			return 1
		}
		return 0
	case TypeNumber:
		return v.AsNumber()
	case TypeString:
		s := v.AsString()
		if s == "" {
			if version >= 5 {
				return math.NaN()
			}
			return 0
		}
		if version <= 4 {
			return parseLooseNumber(s)
		}
		return ParseNumber(s)
	case TypeObject:
		ret, err := v.ToPrimitive(vm, HintNumber)
		if err != nil {
			if !errors.IsTypeError(err) {
				vm.log.WithError(err).Debug("valueOf conversion failed")
			}
			return math.NaN()
		}
		return ret.ToNumber(vm)
	case TypeCharRef:
		// valueOf is never invoked for stage objects.
		return math.NaN()
	}
	return math.NaN()
}

// ToBoolean converts the value to a boolean.
func (v Value) ToBoolean(vm *VM) bool {
	switch v.typ {
	case TypeBoolean:
		return v.AsBoolean()
	case TypeNumber:
		d := v.AsNumber()
		return d != 0 && !math.IsNaN(d)
	case TypeString:
		if vm.Version() >= 7 {
			return v.AsString() != ""
		}
		d := v.ToNumber(vm)
		return d != 0 && !math.IsNaN(d)
	case TypeObject, TypeCharRef:
		return true
	default:
		return false
	}
}

// ToInt32 applies the ECMA ToInt32 conversion to ToNumber's result.
func (v Value) ToInt32(vm *VM) int32 {
	d := v.ToNumber(vm)
	if math.IsNaN(d) || math.IsInf(d, 0) {
		return 0
	}
	d = math.Trunc(d)
	m := math.Mod(d, 4294967296)
	if m < 0 {
		m += 4294967296
	}
	return int32(uint32(m))
}

// ToPrimitive converts an object to a primitive by calling its valueOf or
// toString members. Other values are returned unchanged.
//
// With HintNumber a missing valueOf yields Undefined rather than a
// TypeError. With HintString, a callable toString is preferred, then a
// callable valueOf; if neither exists the conversion fails. An object result
// always fails.
func (v Value) ToPrimitive(vm *VM, hint PrimitiveHint) (Value, error) {
	if v.typ != TypeObject {
		return v, nil
	}
	obj := v.AsObject()

	var method Value
	switch hint {
	case HintNumber:
		m, found, err := obj.Get(vm, uriValueOf)
		if err != nil {
			return Undefined, err
		}
		if !found {
			return Undefined, nil
		}
		method = m
	default:
		m, err := callableMember(vm, obj, uriToString)
		if err != nil {
			return Undefined, err
		}
		if m.IsUndefined() {
			if m, err = callableMember(vm, obj, uriValueOf); err != nil {
				return Undefined, err
			}
		}
		if m.IsUndefined() {
			return Undefined, errors.NewTypeError("object has no callable toString or valueOf")
		}
		method = m
	}

	ret, err := Invoke(vm, method, nil, obj, nil)
	if err != nil {
		return Undefined, err
	}
	if ret.IsObject() {
		return Undefined, errors.NewTypeError("%s conversion returned an object", hintName(hint))
	}
	return ret, nil
}

// ToObject returns the object behind the value: the referenced object, or
// the live stage object of a character reference. Primitives yield nil.
func (v Value) ToObject(vm *VM) *Object {
	switch v.typ {
	case TypeObject:
		return v.AsObject()
	case TypeCharRef:
		return v.AsCharRef().Resolve(vm)
	}
	return nil
}

func callableMember(vm *VM, obj *Object, uri ObjectURI) (Value, error) {
	m, found, err := obj.Get(vm, uri)
	if err != nil || !found || !m.IsFunction() {
		return Undefined, err
	}
	return m, nil
}

func hintName(h PrimitiveHint) string {
	if h == HintString {
		return "string"
	}
	return "number"
}
