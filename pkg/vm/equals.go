package vm

import "math"

// Equals implements the abstract equality operator (==).
//
// Two Numbers that are both NaN compare equal here; StrictlyEquals keeps
// the IEEE rule.
func (v Value) Equals(vm *VM, other Value) bool {
	if v.typ == other.typ {
		return v.equalsSameType(other)
	}

	// Undefined and Null are equal to each other and nothing else.
	vNullish := v.typ == TypeUndefined || v.typ == TypeNull
	oNullish := other.typ == TypeUndefined || other.typ == TypeNull
	if vNullish || oNullish {
		return vNullish && oNullish
	}

	if v.typ == TypeBoolean {
		return NumberValue(v.ToNumber(vm)).Equals(vm, other)
	}
	if other.typ == TypeBoolean {
		return v.Equals(vm, NumberValue(other.ToNumber(vm)))
	}

	if v.typ == TypeNumber && other.typ == TypeString {
		return numberEqualsString(vm, v.AsNumber(), other)
	}
	if v.typ == TypeString && other.typ == TypeNumber {
		return numberEqualsString(vm, other.AsNumber(), v)
	}

	vPrim, oPrim := v.IsPrimitive(), other.IsPrimitive()
	switch {
	case vPrim && !oPrim:
		return primitiveEqualsObject(vm, v, other)
	case !vPrim && oPrim:
		return primitiveEqualsObject(vm, other, v)
	}

	// Two distinct objects: equal only if a conversion produced something
	// new to compare.
	p, err := v.ToPrimitive(vm, HintNumber)
	if err != nil {
		p = v
	}
	q, err := other.ToPrimitive(vm, HintNumber)
	if err != nil {
		q = other
	}
	if p.StrictlyEquals(v) && q.StrictlyEquals(other) {
		return false
	}
	return p.Equals(vm, q)
}

func numberEqualsString(vm *VM, d float64, s Value) bool {
	n := s.ToNumber(vm)
	if math.IsNaN(n) || math.IsInf(n, 0) {
		return false
	}
	return d == n
}

func primitiveEqualsObject(vm *VM, prim, obj Value) bool {
	conv, err := obj.ToPrimitive(vm, HintNumber)
	if err != nil {
		return false
	}
	if conv.StrictlyEquals(obj) {
		return false
	}
	return prim.Equals(vm, conv)
}

func (v Value) equalsSameType(other Value) bool {
	if v.typ == TypeNumber {
		a, b := v.AsNumber(), other.AsNumber()
		if math.IsNaN(a) && math.IsNaN(b) {
			return true
		}
		return a == b
	}
	return v.StrictlyEquals(other)
}

// StrictlyEquals implements the strict equality operator (===).
func (v Value) StrictlyEquals(other Value) bool {
	if v.typ != other.typ {
		return false
	}
	switch v.typ {
	case TypeUndefined, TypeNull:
		return true
	case TypeBoolean:
		return v.payload == other.payload
	case TypeNumber:
		return v.AsNumber() == other.AsNumber()
	case TypeString:
		return v.AsString() == other.AsString()
	case TypeObject:
		return v.obj == other.obj
	case TypeCharRef:
		a, b := v.AsCharRef(), other.AsCharRef()
		return a == b || a.Path() == b.Path()
	}
	return false
}
