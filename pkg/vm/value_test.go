package vm

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"asvm/pkg/errors"
)

// valueOfObject returns an object whose valueOf yields v.
func valueOfObject(vm *VM, v Value) *Object {
	o := vm.NewObject()
	o.InitMember(vm, uriValueOf, ObjectValue(constFunc(vm, v)), FlagsDefault)
	return o
}

func TestValueTypeOf(t *testing.T) {
	vm := newTestVM(t, 8)
	tests := []struct {
		v    Value
		want string
	}{
		{Undefined, "undefined"},
		{Null, "null"},
		{True, "boolean"},
		{NumberValue(1), "number"},
		{NewString("x"), "string"},
		{ObjectValue(vm.NewObject()), "object"},
		{ObjectValue(constFunc(vm, Undefined)), "function"},
		{CharRefValue(NewCharRefPath("_level0.a")), "movieclip"},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, tt.v.TypeOf())
	}
	assert.True(t, ObjectValue(nil).IsNull())
	assert.True(t, CharRefValue(nil).IsUndefined())
}

func TestValueAccessorsPanicOnWrongType(t *testing.T) {
	assert.Panics(t, func() { NewString("x").AsNumber() })
	assert.Panics(t, func() { NumberValue(1).AsBoolean() })
	assert.Panics(t, func() { Null.AsString() })
	assert.Nil(t, NumberValue(1).AsObject())
	assert.Nil(t, Undefined.AsCharRef())
}

func TestValueToString(t *testing.T) {
	vm8 := newTestVM(t, 8)
	vm6 := vm8.WithVersion(6)
	bare := NewObject(vm8, nil)

	tests := []struct {
		name string
		vm   *VM
		v    Value
		want string
	}{
		{"undefined v6", vm6, Undefined, ""},
		{"undefined v7+", vm8, Undefined, "undefined"},
		{"null", vm8, Null, "null"},
		{"true", vm8, True, "true"},
		{"false", vm6, False, "false"},
		{"number", vm8, NumberValue(0.5), "0.5"},
		{"string", vm8, NewString("abc"), "abc"},
		{"plain object", vm8, ObjectValue(vm8.NewObject()), "[object Object]"},
		{"function", vm8, ObjectValue(constFunc(vm8, Undefined)), "[type Function]"},
		{"object without methods", vm8, ObjectValue(bare), "[type Object]"},
		{"valueOf fallback", vm8, ObjectValue(func() *Object {
			o := NewObject(vm8, nil)
			o.InitMember(vm8, uriValueOf, ObjectValue(constFunc(vm8, NewString("via valueOf"))), 0)
			return o
		}()), "via valueOf"},
		{"non-string primitive ignored", vm8, ObjectValue(func() *Object {
			o := NewObject(vm8, nil)
			o.InitMember(vm8, uriToString, ObjectValue(constFunc(vm8, NumberValue(3))), 0)
			return o
		}()), "[type Object]"},
		{"character", vm8, CharRefValue(NewCharRefPath("_level0.clip")), "_level0.clip"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, tt.v.ToString(tt.vm))
		})
	}
}

func TestValueToNumber(t *testing.T) {
	vm8 := newTestVM(t, 8)
	nan := math.NaN()
	tests := []struct {
		name    string
		version int
		v       Value
		want    float64
	}{
		{"undefined v6", 6, Undefined, 0},
		{"undefined v7", 7, Undefined, nan},
		{"null v6", 6, Null, 0},
		{"null v7", 7, Null, nan},
		{"true", 8, True, 1},
		{"false", 8, False, 0},
		{"empty string v4", 4, NewString(""), 0},
		{"empty string v5", 5, NewString(""), nan},
		{"loose prefix v4", 4, NewString("12abc"), 12},
		{"no prefix v4", 4, NewString("abc"), 0},
		{"strict v5", 5, NewString("12abc"), nan},
		{"hex v6", 6, NewString("0x10"), 16},
		{"decimal", 8, NewString(" 2.5e1"), 25},
		{"character", 8, CharRefValue(NewCharRefPath("_level0")), nan},
		{"valueOf", 8, ObjectValue(valueOfObject(vm8, NumberValue(42))), 42},
		{"valueOf string", 8, ObjectValue(valueOfObject(vm8, NewString("7"))), 7},
		{"plain object", 8, ObjectValue(vm8.NewObject()), nan},
		{"object without valueOf v6", 6, ObjectValue(NewObject(vm8, nil)), 0},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := tt.v.ToNumber(vm8.WithVersion(tt.version))
			if math.IsNaN(tt.want) {
				assert.True(t, math.IsNaN(got), "got %v", got)
				return
			}
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestValueToBoolean(t *testing.T) {
	vm := newTestVM(t, 8)
	tests := []struct {
		name    string
		version int
		v       Value
		want    bool
	}{
		{"undefined", 8, Undefined, false},
		{"null", 8, Null, false},
		{"zero", 8, NumberValue(0), false},
		{"NaN", 8, NaN, false},
		{"number", 8, NumberValue(-2), true},
		{"string zero v6", 6, NewString("0"), false},
		{"string zero v7", 7, NewString("0"), true},
		{"string text v6", 6, NewString("abc"), false},
		{"string text v7", 7, NewString("abc"), true},
		{"string number v6", 6, NewString("3"), true},
		{"empty string v7", 7, NewString(""), false},
		{"object", 8, ObjectValue(vm.NewObject()), true},
		{"character", 8, CharRefValue(NewCharRefPath("x")), true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, tt.v.ToBoolean(vm.WithVersion(tt.version)))
		})
	}
}

func TestValueToInt32(t *testing.T) {
	vm := newTestVM(t, 8)
	assert.Equal(t, int32(3), NumberValue(3.9).ToInt32(vm))
	assert.Equal(t, int32(-3), NumberValue(-3.9).ToInt32(vm))
	assert.Equal(t, int32(-1), NumberValue(4294967295).ToInt32(vm))
	assert.Equal(t, int32(0), NaN.ToInt32(vm))
	assert.Equal(t, int32(0), NumberValue(math.Inf(1)).ToInt32(vm))
	assert.Equal(t, int32(255), NewString("0xff").ToInt32(vm))
}

func TestValueToPrimitive(t *testing.T) {
	vm := newTestVM(t, 8)

	t.Run("primitives are returned unchanged", func(t *testing.T) {
		v, err := NewString("x").ToPrimitive(vm, HintNumber)
		require.NoError(t, err)
		assert.Equal(t, "x", v.AsString())
	})

	t.Run("number hint without valueOf is undefined", func(t *testing.T) {
		v, err := ObjectValue(NewObject(vm, nil)).ToPrimitive(vm, HintNumber)
		require.NoError(t, err)
		assert.True(t, v.IsUndefined())
	})

	t.Run("number hint with non-callable valueOf is undefined", func(t *testing.T) {
		o := NewObject(vm, nil)
		o.InitMember(vm, uriValueOf, NumberValue(1), 0)
		v, err := ObjectValue(o).ToPrimitive(vm, HintNumber)
		require.NoError(t, err)
		assert.True(t, v.IsUndefined())
	})

	t.Run("string hint without methods fails", func(t *testing.T) {
		_, err := ObjectValue(NewObject(vm, nil)).ToPrimitive(vm, HintString)
		require.Error(t, err)
		assert.True(t, errors.IsTypeError(err))
	})

	t.Run("object result fails", func(t *testing.T) {
		_, err := ObjectValue(vm.NewObject()).ToPrimitive(vm, HintNumber)
		require.Error(t, err)
		assert.True(t, errors.IsTypeError(err))
	})

	t.Run("string hint prefers toString", func(t *testing.T) {
		o := valueOfObject(vm, NumberValue(1))
		o.InitMember(vm, uriToString, ObjectValue(constFunc(vm, NewString("s"))), 0)
		v, err := ObjectValue(o).ToPrimitive(vm, HintString)
		require.NoError(t, err)
		assert.Equal(t, "s", v.AsString())
		v, err = ObjectValue(o).ToPrimitive(vm, HintNumber)
		require.NoError(t, err)
		assert.Equal(t, 1.0, v.AsNumber())
	})

	t.Run("thrown values propagate", func(t *testing.T) {
		o := NewObject(vm, nil)
		thrower := NewFunction(vm, "thrower", func(*CallContext) (Value, error) {
			return Undefined, Throw(NewString("boom"))
		})
		o.InitMember(vm, uriValueOf, ObjectValue(thrower), 0)
		_, err := ObjectValue(o).ToPrimitive(vm, HintNumber)
		require.Error(t, err)
		assert.False(t, errors.IsTypeError(err))
		assert.True(t, math.IsNaN(ObjectValue(o).ToNumber(vm)))
	})
}

func TestValueToObject(t *testing.T) {
	vm := newTestVM(t, 8)
	o := vm.NewObject()
	assert.Same(t, o, ObjectValue(o).ToObject(vm))
	assert.Nil(t, NumberValue(1).ToObject(vm))
	assert.Nil(t, CharRefValue(NewCharRefPath("_level0.gone")).ToObject(vm))
}

func TestValueEquals(t *testing.T) {
	vm8 := newTestVM(t, 8)
	obj42 := ObjectValue(valueOfObject(vm8, NumberValue(42)))
	plainA := ObjectValue(vm8.NewObject())
	plainB := ObjectValue(vm8.NewObject())
	five1 := ObjectValue(valueOfObject(vm8, NumberValue(5)))
	five2 := ObjectValue(valueOfObject(vm8, NumberValue(5)))

	tests := []struct {
		name    string
		version int
		a, b    Value
		want    bool
	}{
		{"undefined == null", 8, Undefined, Null, true},
		{"undefined == undefined", 8, Undefined, Undefined, true},
		{"null != 0", 8, Null, NumberValue(0), false},
		{"undefined != empty string", 6, Undefined, NewString(""), false},
		{"true == 1", 8, True, NumberValue(1), true},
		{"true == \"1\"", 8, True, NewString("1"), true},
		{"false == 0", 8, False, NumberValue(0), true},
		{"1 == \"1\"", 8, NumberValue(1), NewString("1"), true},
		{"0 != \"\" v7", 7, NumberValue(0), NewString(""), false},
		{"0 == \"\" v4", 4, NumberValue(0), NewString(""), true},
		{"NaN string never equal", 8, NaN, NewString("NaN"), false},
		{"NaN == NaN", 8, NaN, NaN, true},
		{"strings", 8, NewString("abc"), NewString("abc"), true},
		{"string case", 8, NewString("abc"), NewString("ABC"), false},
		{"object valueOf == number", 8, obj42, NumberValue(42), true},
		{"object valueOf == string", 8, obj42, NewString("42"), true},
		{"object valueOf == true", 8, ObjectValue(valueOfObject(vm8, NumberValue(1))), True, true},
		{"distinct plain objects", 8, plainA, plainB, false},
		{"same object", 8, plainA, plainA, true},
		{"distinct objects same valueOf", 8, five1, five2, true},
		{"object != null", 8, plainA, Null, false},
		{"characters by path", 8, CharRefValue(NewCharRefPath("_level0.a")), CharRefValue(NewCharRefPath("_level0.a")), true},
		{"character vs primitive", 8, CharRefValue(NewCharRefPath("_level0.a")), NewString("_level0.a"), false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			vm := vm8.WithVersion(tt.version)
			assert.Equal(t, tt.want, tt.a.Equals(vm, tt.b))
			assert.Equal(t, tt.want, tt.b.Equals(vm, tt.a), "equality must be symmetric")
		})
	}
}

func TestValueEqualsSymmetricAcrossVariants(t *testing.T) {
	vm8 := newTestVM(t, 8)
	values := []Value{
		Undefined, Null, True, False,
		NumberValue(0), NumberValue(1), NumberValue(42), NaN, NumberValue(math.Inf(1)),
		NewString(""), NewString("0"), NewString("1"), NewString("42"), NewString("abc"),
		ObjectValue(vm8.NewObject()),
		ObjectValue(valueOfObject(vm8, NumberValue(42))),
		ObjectValue(valueOfObject(vm8, NewString("1"))),
		ObjectValue(NewObject(vm8, nil)),
		CharRefValue(NewCharRefPath("_level0.a")),
	}
	for _, version := range []int{4, 5, 6, 7, 8} {
		vm := vm8.WithVersion(version)
		for _, a := range values {
			for _, b := range values {
				assert.Equal(t, a.Equals(vm, b), b.Equals(vm, a), "v%d: %s == %s", version, a, b)
			}
		}
	}
}

func TestValueStrictlyEquals(t *testing.T) {
	vm := newTestVM(t, 8)
	o := ObjectValue(vm.NewObject())
	ref := CharRefValue(NewCharRefPath("_level0.a"))

	for _, v := range []Value{Undefined, Null, True, False, NumberValue(1.5), NewString("x"), o, ref} {
		assert.True(t, v.StrictlyEquals(v), "%s === itself", v)
	}
	assert.False(t, NaN.StrictlyEquals(NaN))
	assert.False(t, Undefined.StrictlyEquals(Null))
	assert.False(t, Null.StrictlyEquals(Undefined))
	assert.False(t, NumberValue(1).StrictlyEquals(NewString("1")))
	assert.False(t, True.StrictlyEquals(NumberValue(1)))
	assert.False(t, o.StrictlyEquals(ObjectValue(vm.NewObject())))
}

func TestValueInspect(t *testing.T) {
	vm := newTestVM(t, 8)
	assert.Equal(t, "undefined", Undefined.Inspect())
	assert.Equal(t, `"a\"b"`, NewString(`a"b`).Inspect())
	assert.Equal(t, "1.5", NumberValue(1.5).String())
	assert.Equal(t, "[function greet]", ObjectValue(NewFunction(vm, "greet", func(*CallContext) (Value, error) { return Undefined, nil })).Inspect())
	assert.Equal(t, "[character _level0.x]", CharRefValue(NewCharRefPath("_level0.x")).Inspect())
}
