package vm

import (
	stderrors "errors"
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"asvm/pkg/errors"
)

func noop(*CallContext) (Value, error) { return Undefined, nil }

func TestNewFunctionPrototype(t *testing.T) {
	vm := newTestVM(t, 8)
	fn := NewFunction(vm, "Point", noop)

	assert.True(t, fn.IsFunction())
	assert.False(t, fn.IsBuiltin())
	assert.Equal(t, "Point", fn.Name())
	assert.Same(t, vm.Realm().FunctionPrototype, fn.Prototype(vm))

	proto := mustGet(t, vm, fn, "prototype").AsObject()
	require.NotNil(t, proto)
	assert.Same(t, fn, mustGet(t, vm, proto, "constructor").AsObject())
	assert.True(t, fn.GetOwnProperty(vm, uriPrototype).Flags().NoEnum())
}

func TestConstruct(t *testing.T) {
	vm := newTestVM(t, 8)
	var gotThis *Object
	var construct bool
	ctor := NewFunction(vm, "Point", func(c *CallContext) (Value, error) {
		gotThis = c.This
		construct = c.Construct
		c.This.InitMember(c.VM, URI("x"), c.Arg(0), 0)
		return NewString("ignored"), nil
	})

	inst, err := Construct(vm, ctor, nil, []Value{NumberValue(3)})
	require.NoError(t, err)
	assert.Same(t, inst, gotThis)
	assert.True(t, construct)
	assert.Equal(t, 3.0, mustGet(t, vm, inst, "x").AsNumber())
	assert.Same(t, mustGet(t, vm, ctor, "prototype").AsObject(), inst.Prototype(vm))

	p := inst.GetOwnProperty(vm, uriCtorInternal)
	require.NotNil(t, p)
	assert.Same(t, ctor, p.Cache().AsObject())
	assert.Equal(t, FlagNoEnum|FlagOnlySWF6Up, p.Flags())
	assert.False(t, inst.HasOwnProperty(vm, uriConstructor))
	// constructor is inherited from the prototype instead
	assert.Same(t, ctor, mustGet(t, vm, inst, "constructor").AsObject())
}

func TestConstructRecordsConstructorBelowSWF7(t *testing.T) {
	vm := newTestVM(t, 6)
	ctor := NewFunction(vm, "Legacy", noop)
	inst, err := Construct(vm, ctor, nil, nil)
	require.NoError(t, err)

	p := inst.GetOwnProperty(vm, uriConstructor)
	require.NotNil(t, p)
	assert.Same(t, ctor, p.Cache().AsObject())
	assert.True(t, p.Flags().NoEnum())
}

func TestConstructBuiltinSubstitutesResult(t *testing.T) {
	vm := newTestVM(t, 8)
	substitute := vm.NewObject()
	builtin := NewBuiltin(vm, "Maker", func(*CallContext) (Value, error) {
		return ObjectValue(substitute), nil
	}, vm.NewObject())

	inst, err := Construct(vm, builtin, nil, nil)
	require.NoError(t, err)
	assert.Same(t, substitute, inst)
	assert.Same(t, builtin, inst.GetOwnProperty(vm, uriCtorInternal).Cache().AsObject())

	// script functions cannot substitute
	script := NewFunction(vm, "Script", func(*CallContext) (Value, error) {
		return ObjectValue(substitute), nil
	})
	inst, err = Construct(vm, script, nil, nil)
	require.NoError(t, err)
	assert.NotSame(t, substitute, inst)
}

func TestConstructError(t *testing.T) {
	vm := newTestVM(t, 8)
	ctor := NewFunction(vm, "Broken", func(*CallContext) (Value, error) {
		return Undefined, Throw(NewString("ctor failed"))
	})
	inst, err := Construct(vm, ctor, nil, nil)
	require.Error(t, err)
	assert.Nil(t, inst)
}

func TestObjectConstructor(t *testing.T) {
	vm := newTestVM(t, 8)
	ctor := vm.Realm().ObjectConstructor

	inst, err := Construct(vm, ctor, nil, nil)
	require.NoError(t, err)
	assert.Same(t, vm.Realm().ObjectPrototype, inst.Prototype(vm))

	existing := vm.NewObject()
	v, err := Invoke(vm, ObjectValue(ctor), nil, nil, []Value{ObjectValue(existing)})
	require.NoError(t, err)
	assert.Same(t, existing, v.AsObject())

	v, err = Invoke(vm, ObjectValue(ctor), nil, nil, []Value{NumberValue(1)})
	require.NoError(t, err)
	require.True(t, v.IsObject())
	assert.NotSame(t, existing, v.AsObject())
}

func TestSuperChain(t *testing.T) {
	vm := newTestVM(t, 8)

	base := NewFunction(vm, "Base", func(c *CallContext) (Value, error) {
		c.This.InitMember(c.VM, URI("fromBase"), True, 0)
		return Undefined, nil
	})
	baseProto := mustGet(t, vm, base, "prototype").AsObject()
	baseProto.InitMember(vm, URI("greet"), ObjectValue(constFunc(vm, NewString("base"))), 0)

	sub := NewFunction(vm, "Sub", func(c *CallContext) (Value, error) {
		require.NotNil(t, c.Super)
		assert.True(t, c.Super.IsSuper())
		_, err := c.Super.Call(&CallContext{VM: c.VM, This: c.This, Args: c.Args})
		return Undefined, err
	})
	subProto, err := Construct(vm, base, nil, nil)
	require.NoError(t, err)
	sub.InitMember(vm, uriPrototype, ObjectValue(subProto), FlagsDefault)
	subProto.InitMember(vm, URI("greet"), ObjectValue(NewFunction(vm, "greet", func(c *CallContext) (Value, error) {
		super := c.This.GetSuper(c.VM, URI("greet"))
		m, err := super.GetMember(c.VM, URI("greet"))
		if err != nil {
			return Undefined, err
		}
		inherited, err := Invoke(c.VM, m, nil, c.This, nil)
		if err != nil {
			return Undefined, err
		}
		return NewString("sub+" + inherited.ToString(c.VM)), nil
	})), 0)

	inst, err := Construct(vm, sub, nil, nil)
	require.NoError(t, err)
	assert.True(t, inst.HasOwnProperty(vm, URI("fromBase")))

	greet := mustGet(t, vm, inst, "greet")
	v, err := Invoke(vm, greet, nil, inst, nil)
	require.NoError(t, err)
	assert.Equal(t, "sub+base", v.AsString())

	ok, err := inst.InstanceOf(vm, base)
	require.NoError(t, err)
	assert.True(t, ok)
}

func TestSuperWithoutPrototype(t *testing.T) {
	vm := newTestVM(t, 8)
	orphan := NewObject(vm, nil)
	super := orphan.GetSuper(vm, ObjectURI{})
	require.True(t, super.IsSuper())

	_, found, err := super.Get(vm, URI("anything"))
	require.NoError(t, err)
	assert.False(t, found)

	v, err := super.Call(&CallContext{VM: vm, This: orphan})
	require.NoError(t, err)
	assert.True(t, v.IsUndefined())
}

func TestFunctionCallAndApply(t *testing.T) {
	vm := newTestVM(t, 8)
	var gotThis *Object
	var gotArgs []Value
	fn := NewFunction(vm, "target", func(c *CallContext) (Value, error) {
		gotThis = c.This
		gotArgs = c.Args
		return NumberValue(float64(c.NArgs())), nil
	})
	self := vm.NewObject()

	call := mustGet(t, vm, fn, "call")
	v, err := Invoke(vm, call, nil, fn, []Value{ObjectValue(self), NumberValue(1), NumberValue(2)})
	require.NoError(t, err)
	assert.Equal(t, 2.0, v.AsNumber())
	assert.Same(t, self, gotThis)
	require.Len(t, gotArgs, 2)
	assert.Equal(t, 2.0, gotArgs[1].AsNumber())

	apply := mustGet(t, vm, fn, "apply")
	list := FromGo(vm, []any{"a", "b", "c"})
	v, err = Invoke(vm, apply, nil, fn, []Value{Null, list})
	require.NoError(t, err)
	assert.Equal(t, 3.0, v.AsNumber())
	assert.NotSame(t, self, gotThis)
	assert.Equal(t, "c", gotArgs[2].AsString())

	v, err = Invoke(vm, apply, nil, fn, []Value{ObjectValue(self)})
	require.NoError(t, err)
	assert.Equal(t, 0.0, v.AsNumber())
}

func TestInvokeNonCallable(t *testing.T) {
	vm := newTestVM(t, 8)
	v, err := Invoke(vm, NumberValue(3), nil, nil, nil)
	require.NoError(t, err)
	assert.True(t, v.IsUndefined())

	v, err = vm.NewObject().Call(&CallContext{VM: vm})
	require.NoError(t, err)
	assert.True(t, v.IsUndefined())
}

func TestCallContextArgs(t *testing.T) {
	c := &CallContext{Args: []Value{True}}
	assert.Equal(t, 1, c.NArgs())
	assert.True(t, c.Arg(0).AsBoolean())
	assert.True(t, c.Arg(1).IsUndefined())
	assert.True(t, c.Arg(-1).IsUndefined())
}

func TestASSetPropFlags(t *testing.T) {
	vm := newTestVM(t, 8)
	global := vm.Realm().Global
	setFlags := mustGet(t, vm, global, "ASSetPropFlags")
	obj := vm.NewObject()
	obj.InitMember(vm, URI("a"), True, 0)
	obj.InitMember(vm, URI("b"), True, FlagNoEnum)

	_, err := Invoke(vm, setFlags, nil, nil, []Value{ObjectValue(obj), NewString("a"), NumberValue(5)})
	require.NoError(t, err)
	assert.Equal(t, FlagNoEnum|FlagReadOnly, obj.GetOwnProperty(vm, URI("a")).Flags())

	_, err = Invoke(vm, setFlags, nil, nil, []Value{ObjectValue(obj), Null, NumberValue(0), NumberValue(1)})
	require.NoError(t, err)
	assert.Equal(t, FlagReadOnly, obj.GetOwnProperty(vm, URI("a")).Flags())
	assert.Equal(t, PropFlags(0), obj.GetOwnProperty(vm, URI("b")).Flags())

	// bits outside the mask are dropped
	_, err = Invoke(vm, setFlags, nil, nil, []Value{ObjectValue(obj), NewString("b"), NumberValue(1 << 14)})
	require.NoError(t, err)
	assert.Equal(t, PropFlags(0), obj.GetOwnProperty(vm, URI("b")).Flags())
}

func TestObjectPrototypeMethods(t *testing.T) {
	vm := newTestVM(t, 8)
	obj := vm.NewObject()
	obj.InitMember(vm, URI("own"), True, 0)
	obj.InitMember(vm, URI("hidden"), True, FlagNoEnum)

	call := func(name string, args ...Value) Value {
		t.Helper()
		v, err := Invoke(vm, mustGet(t, vm, obj, name), nil, obj, args)
		require.NoError(t, err)
		return v
	}

	assert.True(t, call("hasOwnProperty", NewString("own")).AsBoolean())
	assert.False(t, call("hasOwnProperty", NewString("toString")).AsBoolean())
	assert.True(t, call("isPropertyEnumerable", NewString("own")).AsBoolean())
	assert.False(t, call("isPropertyEnumerable", NewString("hidden")).AsBoolean())
	assert.True(t, call("isPrototypeOf", ObjectValue(NewObject(vm, obj))).AsBoolean())
	assert.Equal(t, "[object Object]", call("toString").AsString())
	assert.Equal(t, "[object Object]", call("toLocaleString").AsString())
	assert.Same(t, obj, call("valueOf").AsObject())

	getter := ObjectValue(constFunc(vm, NewString("computed")))
	assert.True(t, call("addProperty", NewString("prop"), getter, Null).AsBoolean())
	assert.Equal(t, "computed", mustGet(t, vm, obj, "prop").AsString())
	assert.False(t, call("addProperty", NewString(""), getter, Null).AsBoolean())
	assert.False(t, call("addProperty", NewString("bad"), NumberValue(1), Null).AsBoolean())
	assert.False(t, call("addProperty", NewString("bad"), getter, NumberValue(1)).AsBoolean())
	assert.False(t, call("addProperty", NewString("bad"), getter).AsBoolean())
}

func TestErrorObjects(t *testing.T) {
	vm := newTestVM(t, 8)
	ctor := mustGet(t, vm, vm.Realm().Global, "Error").AsObject()

	e, err := Construct(vm, ctor, nil, []Value{NewString("oops")})
	require.NoError(t, err)
	assert.Equal(t, "Error", mustGet(t, vm, e, "name").AsString())
	assert.Equal(t, "oops", ObjectValue(e).ToString(vm))

	v, err := Invoke(vm, ObjectValue(ctor), nil, nil, nil)
	require.NoError(t, err)
	assert.Equal(t, "Error", v.ToString(vm))
	assert.Same(t, vm.Realm().ErrorPrototype, v.AsObject().Prototype(vm))
}

func TestToScriptValue(t *testing.T) {
	vm := newTestVM(t, 8)

	_, ok := ToScriptValue(vm, nil)
	assert.False(t, ok)

	v, ok := ToScriptValue(vm, errors.NewTypeError("bad %s", "coercion"))
	require.True(t, ok)
	obj := v.AsObject()
	require.NotNil(t, obj)
	assert.Equal(t, "TypeError", mustGet(t, vm, obj, "name").AsString())
	assert.Equal(t, "bad coercion", mustGet(t, vm, obj, "message").AsString())
	assert.Equal(t, "bad coercion", v.ToString(vm))

	v, ok = ToScriptValue(vm, stderrors.New("host failure"))
	require.True(t, ok)
	assert.Equal(t, "Error", mustGet(t, vm, v.AsObject(), "name").AsString())

	thrown := ObjectValue(vm.NewObject())
	v, ok = ToScriptValue(vm, Throw(thrown))
	require.True(t, ok)
	assert.True(t, v.StrictlyEquals(thrown))
}

func TestSuperForUnknownMethod(t *testing.T) {
	vm := newTestVM(t, 8)
	proto := vm.NewObject()
	proto.InitMember(vm, URI("known"), ObjectValue(constFunc(vm, True)), 0)
	obj := NewObject(vm, proto)

	assert.Nil(t, obj.GetSuper(vm, URI("nowhere")))

	super := obj.GetSuper(vm, URI("known"))
	require.NotNil(t, super)
	assert.True(t, super.IsSuper())
	assert.Nil(t, super.GetSuper(vm, URI("nowhere")))

	// below SWF 7 the name is not consulted
	require.NotNil(t, obj.GetSuper(vm.WithVersion(6), URI("nowhere")))
}

func TestFunctionApplyBoundsLength(t *testing.T) {
	vm := newTestVM(t, 8)
	var n int
	fn := NewFunction(vm, "count", func(c *CallContext) (Value, error) {
		n = c.NArgs()
		return Undefined, nil
	})
	apply := mustGet(t, vm, fn, "apply")

	huge := vm.NewObject()
	huge.InitMember(vm, uriLength, NumberValue(1e9), 0)
	_, err := Invoke(vm, apply, nil, fn, []Value{Null, ObjectValue(huge)})
	require.NoError(t, err)
	assert.Equal(t, maxApplyArgs, n)

	infinite := vm.NewObject()
	infinite.InitMember(vm, uriLength, NumberValue(math.Inf(1)), 0)
	_, err = Invoke(vm, apply, nil, fn, []Value{Null, ObjectValue(infinite)})
	require.NoError(t, err)
	assert.Equal(t, 0, n)
}
