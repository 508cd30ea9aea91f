package vm

import (
	"math"

	"github.com/sirupsen/logrus"
)

const swf6Flags = FlagNoEnum | FlagNoDelete | FlagOnlySWF6Up

// propFlagsMask limits what ASSetPropFlags may change.
const propFlagsMask = FlagNoEnum | FlagNoDelete | FlagReadOnly | versionMask

func initObjectPrototype(vm *VM, proto *Object) {
	method := func(name string, body NativeFunction, flags PropFlags) {
		proto.InitMember(vm, URI(name), ObjectValue(NewBuiltin(vm, name, body, nil)), flags)
	}
	method("valueOf", objectValueOf, FlagsDefault)
	method("toString", objectToString, FlagsDefault)
	method("toLocaleString", objectToLocaleString, FlagsDefault)
	method("addProperty", objectAddProperty, swf6Flags)
	method("hasOwnProperty", objectHasOwnProperty, swf6Flags)
	method("isPropertyEnumerable", objectIsPropertyEnumerable, swf6Flags)
	method("isPrototypeOf", objectIsPrototypeOf, swf6Flags)
	method("watch", objectWatch, swf6Flags)
	method("unwatch", objectUnwatch, swf6Flags)
}

func initFunctionPrototype(vm *VM, proto *Object) {
	proto.InitMember(vm, URI("call"), ObjectValue(NewBuiltin(vm, "call", functionCall, nil)), swf6Flags)
	proto.InitMember(vm, URI("apply"), ObjectValue(NewBuiltin(vm, "apply", functionApply, nil)), swf6Flags)
}

func initErrorPrototype(vm *VM, proto *Object) {
	proto.InitMember(vm, uriName, NewString("Error"), FlagsDefault)
	proto.InitMember(vm, uriMessage, NewString("Error"), FlagsDefault)
	proto.InitMember(vm, uriToString, ObjectValue(NewBuiltin(vm, "toString", errorToString, nil)), FlagsDefault)
}

func initGlobal(vm *VM, r *Realm) {
	g := r.Global
	g.InitMember(vm, URI("Object"), ObjectValue(r.ObjectConstructor), FlagsDefault)
	g.InitMember(vm, URI("Error"), ObjectValue(NewBuiltin(vm, "Error", errorCtor, r.ErrorPrototype)), FlagsDefault)
	g.InitMember(vm, URI("ASSetPropFlags"), ObjectValue(NewBuiltin(vm, "ASSetPropFlags", globalASSetPropFlags, nil)), FlagsDefault)
	g.InitMember(vm, URI("_global"), ObjectValue(g), FlagsDefault)
}

// --- Object ---

func objectCtor(c *CallContext) (Value, error) {
	if c.NArgs() == 1 {
		if obj := c.Arg(0).ToObject(c.VM); obj != nil {
			return ObjectValue(obj), nil
		}
	}
	if !c.Construct {
		return ObjectValue(c.VM.NewObject()), nil
	}
	return Undefined, nil
}

func objectValueOf(c *CallContext) (Value, error) {
	return ObjectValue(c.This), nil
}

func objectToString(c *CallContext) (Value, error) {
	if c.This.IsFunction() {
		return NewString("[type Function]"), nil
	}
	return NewString("[object Object]"), nil
}

func objectToLocaleString(c *CallContext) (Value, error) {
	if c.This == nil {
		return Undefined, nil
	}
	m, err := c.This.GetMember(c.VM, uriToString)
	if err != nil {
		return Undefined, err
	}
	return Invoke(c.VM, m, c.Env, c.This, nil)
}

func objectAddProperty(c *CallContext) (Value, error) {
	vm := c.VM
	if c.This == nil || c.NArgs() != 3 {
		vm.codingError(nil, "addProperty needs exactly 3 arguments")
		return False, nil
	}
	name := c.Arg(0).ToString(vm)
	if name == "" {
		vm.codingError(nil, "addProperty: empty property name")
		return False, nil
	}
	getter := c.Arg(1).ToObject(vm)
	if !getter.IsFunction() {
		vm.asCodingError(URI(name), "addProperty: getter is not a function")
		return False, nil
	}
	var setter *Object
	if sv := c.Arg(2); !sv.IsNull() {
		setter = sv.ToObject(vm)
		if !setter.IsFunction() {
			vm.asCodingError(URI(name), "addProperty: setter is neither a function nor null")
			return False, nil
		}
	}
	if err := c.This.AddProperty(vm, URI(name), getter, setter); err != nil {
		return Undefined, err
	}
	return True, nil
}

func objectHasOwnProperty(c *CallContext) (Value, error) {
	if c.This == nil || c.NArgs() < 1 {
		return False, nil
	}
	name := c.Arg(0).ToString(c.VM)
	if name == "" {
		return False, nil
	}
	return BooleanValue(c.This.HasOwnProperty(c.VM, URI(name))), nil
}

func objectIsPropertyEnumerable(c *CallContext) (Value, error) {
	if c.This == nil || c.NArgs() < 1 {
		return False, nil
	}
	p := c.This.GetOwnProperty(c.VM, URI(c.Arg(0).ToString(c.VM)))
	return BooleanValue(p != nil && IsEnumerable(p)), nil
}

func objectIsPrototypeOf(c *CallContext) (Value, error) {
	if c.This == nil || c.NArgs() < 1 {
		return False, nil
	}
	instance := c.Arg(0).ToObject(c.VM)
	if instance == nil {
		return False, nil
	}
	return BooleanValue(c.This.IsPrototypeOf(c.VM, instance)), nil
}

func objectWatch(c *CallContext) (Value, error) {
	vm := c.VM
	if c.This == nil || c.NArgs() < 2 {
		vm.codingError(nil, "watch needs at least 2 arguments")
		return False, nil
	}
	name := c.Arg(0).ToString(vm)
	fn := c.Arg(1).ToObject(vm)
	if !fn.IsFunction() {
		vm.asCodingError(URI(name), "watch: trigger is not a function")
		return False, nil
	}
	return BooleanValue(c.This.Watch(URI(name), fn, c.Arg(2))), nil
}

func objectUnwatch(c *CallContext) (Value, error) {
	if c.This == nil || c.NArgs() < 1 {
		return False, nil
	}
	return BooleanValue(c.This.Unwatch(c.VM, URI(c.Arg(0).ToString(c.VM)))), nil
}

// --- Function ---

func functionCall(c *CallContext) (Value, error) {
	fn := c.This
	if !fn.IsFunction() {
		return Undefined, nil
	}
	var this *Object
	if c.NArgs() == 0 || c.Arg(0).IsUndefined() || c.Arg(0).IsNull() {
		this = c.VM.NewObject()
	} else {
		this = c.Arg(0).ToObject(c.VM)
	}
	var args []Value
	if c.NArgs() > 1 {
		args = c.Args[1:]
	}
	return fn.call(&CallContext{VM: c.VM, This: this, Env: c.Env, Args: args})
}

// maxApplyArgs bounds the argument list apply builds from a script
// controlled length.
const maxApplyArgs = math.MaxUint16

// functionApply accepts any object with a length member as the argument
// list.
func functionApply(c *CallContext) (Value, error) {
	fn := c.This
	if !fn.IsFunction() {
		return Undefined, nil
	}
	vm := c.VM
	var this *Object
	if c.NArgs() == 0 || c.Arg(0).IsUndefined() || c.Arg(0).IsNull() {
		this = vm.NewObject()
	} else {
		this = c.Arg(0).ToObject(vm)
	}
	var args []Value
	if list := c.Arg(1).ToObject(vm); list != nil {
		lv, err := list.GetMember(vm, uriLength)
		if err != nil {
			return Undefined, err
		}
		n := lv.ToNumber(vm)
		if math.IsInf(n, 0) {
			n = 0
		}
		if n > maxApplyArgs {
			vm.codingError(logrus.Fields{"length": n}, "apply: argument list truncated to %d", maxApplyArgs)
			n = maxApplyArgs
		}
		if n > 0 {
			for i := 0; i < int(n); i++ {
				v, err := list.GetMember(vm, URI(DoubleToString(float64(i))))
				if err != nil {
					return Undefined, err
				}
				args = append(args, v)
			}
		}
	}
	return fn.call(&CallContext{VM: vm, This: this, Env: c.Env, Args: args})
}

// --- Error ---

func errorCtor(c *CallContext) (Value, error) {
	obj := c.This
	if !c.Construct || obj == nil {
		obj = NewObject(c.VM, c.VM.realm.ErrorPrototype)
	}
	if c.NArgs() > 0 && !c.Arg(0).IsUndefined() {
		obj.InitMember(c.VM, uriMessage, c.Arg(0), FlagsDefault)
	}
	return ObjectValue(obj), nil
}

func errorToString(c *CallContext) (Value, error) {
	if c.This == nil {
		return NewString("Error"), nil
	}
	msg, err := c.This.GetMember(c.VM, uriMessage)
	if err != nil {
		return Undefined, err
	}
	return NewString(msg.ToString(c.VM)), nil
}

// --- Globals ---

// globalASSetPropFlags implements ASSetPropFlags(obj, props, set, clear).
func globalASSetPropFlags(c *CallContext) (Value, error) {
	vm := c.VM
	if c.NArgs() < 3 {
		vm.codingError(nil, "ASSetPropFlags needs at least 3 arguments")
		return Undefined, nil
	}
	obj := c.Arg(0).ToObject(vm)
	if obj == nil {
		vm.codingError(nil, "ASSetPropFlags: first argument is not an object")
		return Undefined, nil
	}
	set := PropFlags(c.Arg(2).ToInt32(vm)) & propFlagsMask
	var clear PropFlags
	if c.NArgs() > 3 {
		clear = PropFlags(c.Arg(3).ToInt32(vm)) & propFlagsMask
	}
	obj.SetPropFlagsList(vm, c.Arg(1), set, clear)
	return Undefined, nil
}
