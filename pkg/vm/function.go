package vm

import "github.com/sirupsen/logrus"

// NativeFunction is the body of every callable object. Script functions are
// compiled by the host into closures of this type.
type NativeFunction func(c *CallContext) (Value, error)

// CallContext is what a function body receives.
type CallContext struct {
	VM   *VM
	This *Object
	// Env is the caller's environment, opaque to the engine.
	Env  any
	Args []Value
	// Super is the super reference of the call, if any.
	Super *Object
	// Construct is set when the function runs as a constructor.
	Construct bool
}

// Arg returns argument i, or Undefined if it was not passed.
func (c *CallContext) Arg(i int) Value {
	if i < 0 || i >= len(c.Args) {
		return Undefined
	}
	return c.Args[i]
}

// NArgs returns the number of arguments passed.
func (c *CallContext) NArgs() int { return len(c.Args) }

// NewFunction creates a script function. Like every function it gets a
// fresh prototype object whose constructor points back to it.
func NewFunction(vm *VM, name string, body NativeFunction) *Object {
	fn := newCallable(vm, name, body)
	proto := vm.NewObject()
	proto.InitMember(vm, uriConstructor, ObjectValue(fn), FlagsDefault)
	fn.InitMember(vm, uriPrototype, ObjectValue(proto), FlagsDefault)
	return fn
}

// NewBuiltin creates a native function. When proto is non-nil it becomes
// the function's prototype member. A builtin constructor may return an
// object of its own, which then replaces the instance.
func NewBuiltin(vm *VM, name string, body NativeFunction, proto *Object) *Object {
	fn := newCallable(vm, name, body)
	fn.builtin = true
	if proto != nil {
		proto.InitMember(vm, uriConstructor, ObjectValue(fn), FlagsDefault)
		fn.InitMember(vm, uriPrototype, ObjectValue(proto), FlagsDefault)
	}
	return fn
}

func newCallable(vm *VM, name string, body NativeFunction) *Object {
	var proto *Object
	if vm.realm != nil {
		proto = vm.realm.FunctionPrototype
	}
	fn := NewObject(vm, proto)
	fn.body = body
	fn.name = name
	return fn
}

// call runs the function body. Calling something without a body is a
// script mistake that yields undefined.
func (o *Object) call(c *CallContext) (Value, error) {
	if o.body == nil {
		c.VM.codingError(logrus.Fields{"function": o.name}, "attempt to call an object which is not a function")
		return Undefined, nil
	}
	return o.body(c)
}

// Call runs the object as a function with the given context.
func (o *Object) Call(c *CallContext) (Value, error) { return o.call(c) }

// Invoke calls method with this and args. A method that is not a
// function is reported and yields Undefined.
func Invoke(vm *VM, method Value, env any, this *Object, args []Value) (Value, error) {
	fn := method.ToObject(vm)
	if fn == nil || !fn.IsFunction() {
		vm.codingError(logrus.Fields{"value": method.Inspect()}, "attempt to call a value which is not a function")
		return Undefined, nil
	}
	return fn.call(&CallContext{VM: vm, This: this, Env: env, Args: args})
}

// Construct implements new: it creates an object inheriting from ctor's
// own prototype member and lets ctor initialize it.
func Construct(vm *VM, ctor *Object, env any, args []Value) (*Object, error) {
	newObj := NewObject(vm, nil)
	if p := ctor.props.GetProperty(vm, uriPrototype); p != nil {
		proto, err := p.GetValue(vm, ctor)
		if err != nil {
			return nil, err
		}
		if _, err := newObj.props.SetValue(vm, uriProto, proto, FlagsDefault); err != nil {
			return nil, err
		}
	}
	return ctor.ConstructInto(vm, newObj, env, args)
}

// ConstructInto runs ctor as a constructor on newObj. It records the
// constructor on the instance: __constructor__ from SWF 6, and constructor
// as well below SWF 7.
func (o *Object) ConstructInto(vm *VM, newObj *Object, env any, args []Value) (*Object, error) {
	o.markConstructed(vm, newObj)
	ret, err := o.call(&CallContext{
		VM:        vm,
		This:      newObj,
		Env:       env,
		Args:      args,
		Super:     newObj.GetSuper(vm, ObjectURI{}),
		Construct: true,
	})
	if err != nil {
		vm.log.WithError(err).WithField("function", o.name).Debug("constructor threw")
		return nil, err
	}
	if o.builtin {
		if fake := ret.AsObject(); fake != nil {
			o.markConstructed(vm, fake)
			return fake, nil
		}
	}
	return newObj, nil
}

func (o *Object) markConstructed(vm *VM, obj *Object) {
	obj.InitMember(vm, uriCtorInternal, ObjectValue(o), FlagNoEnum|FlagOnlySWF6Up)
	if vm.Version() < 7 {
		obj.InitMember(vm, uriConstructor, ObjectValue(o), FlagNoEnum)
	}
}

// GetSuper returns the super reference used by methods of this object.
// From SWF 7 on, naming the method being run selects the prototype that
// owns it, so super calls skip past overrides; a name found nowhere on the
// chain gives nil.
func (o *Object) GetSuper(vm *VM, fname ObjectURI) *Object {
	if o.isSuper {
		return o.nextSuper(vm, fname)
	}
	proto := o.Prototype(vm)
	if proto == nil {
		return newSuper(vm, nil)
	}
	if fname.Name != "" && vm.Version() > 6 {
		_, owner, err := o.FindProperty(vm, fname)
		if err != nil {
			vm.log.WithError(err).Debug("super lookup failed")
		}
		if owner == nil {
			return nil
		}
		if owner != o {
			proto = owner
		}
	}
	return newSuper(vm, proto)
}

// newSuper creates a super reference over base: member reads go to base's
// prototype and calls go to base's __constructor__.
func newSuper(vm *VM, base *Object) *Object {
	s := NewObject(vm, nil)
	s.isSuper = true
	s.superBase = base
	s.name = "super"
	if proto := s.superPrototype(vm); proto != nil {
		s.InitMember(vm, uriProto, ObjectValue(proto), FlagsDefault)
	}
	s.body = func(c *CallContext) (Value, error) {
		ctor := s.superConstructor(c.VM)
		if ctor == nil {
			c.VM.log.Debug("super has no associated constructor")
			return Undefined, nil
		}
		return ctor.call(&CallContext{
			VM:        c.VM,
			This:      c.This,
			Env:       c.Env,
			Args:      c.Args,
			Super:     c.Super,
			Construct: true,
		})
	}
	return s
}

func (o *Object) superPrototype(vm *VM) *Object {
	if o.superBase == nil {
		return nil
	}
	return o.superBase.Prototype(vm)
}

func (o *Object) superConstructor(vm *VM) *Object {
	if o.superBase == nil {
		return nil
	}
	v, found, err := o.superBase.Get(vm, uriCtorInternal)
	if err != nil || !found {
		return nil
	}
	if fn := v.AsObject(); fn.IsFunction() {
		return fn
	}
	return nil
}

// nextSuper walks one level further up from a super reference, to the
// prototype whose __proto__ holds fname.
func (o *Object) nextSuper(vm *VM, fname ObjectURI) *Object {
	proto := o.Prototype(vm)
	if proto == nil {
		return newSuper(vm, nil)
	}
	_, owner, err := proto.FindProperty(vm, fname)
	if err != nil || owner == nil {
		return nil
	}
	if owner == proto {
		return newSuper(vm, proto)
	}
	tmp := proto
	visited := map[*Object]struct{}{}
	for tmp != nil {
		if _, seen := visited[tmp]; seen {
			break
		}
		visited[tmp] = struct{}{}
		next := tmp.Prototype(vm)
		if next == owner {
			break
		}
		tmp = next
	}
	if tmp == nil || tmp == proto {
		tmp = owner
	}
	return newSuper(vm, tmp)
}
