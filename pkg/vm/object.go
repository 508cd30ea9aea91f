package vm

import (
	"strings"

	"github.com/sirupsen/logrus"
)

// Relay is host state attached to an object, such as the timestamp behind
// a Date. Scripts never see it.
type Relay interface {
	// TypeName names the native class for diagnostics.
	TypeName() string
}

// Object is an ActionScript object. Its prototype is not a field: it is the
// ordinary __proto__ member, so scripts can read, replace and hide it.
type Object struct {
	props      *PropertyList
	interfaces []*Object
	triggers   map[ObjectURI]*Trigger

	relay   Relay
	display DisplayObject

	// Callable objects carry a body.
	body    NativeFunction
	builtin bool
	name    string

	// Super objects forward to the prototype of superBase.
	isSuper   bool
	superBase *Object
}

// NewObject creates an object whose __proto__ is proto. A nil proto
// creates an object with no prototype at all.
func NewObject(vm *VM, proto *Object) *Object {
	o := &Object{}
	o.props = newPropertyList(o)
	if proto != nil {
		o.props.SetValue(vm, uriProto, ObjectValue(proto), FlagsDefault)
	}
	return o
}

// Properties exposes the own property list.
func (o *Object) Properties() *PropertyList { return o.props }

// Prototype returns the object referenced by a visible __proto__ member.
func (o *Object) Prototype(vm *VM) *Object {
	p := o.props.GetProperty(vm, uriProto)
	if p == nil || !p.Visible(vm.Version()) {
		return nil
	}
	v, err := p.GetValue(vm, o)
	if err != nil {
		vm.log.WithError(err).Debug("reading __proto__ failed")
		return nil
	}
	return v.ToObject(vm)
}

// SetPrototype replaces the __proto__ member. A nil proto stores Null.
func (o *Object) SetPrototype(vm *VM, proto *Object) error {
	_, err := o.props.SetValue(vm, uriProto, ObjectValue(proto), FlagsDefault)
	return err
}

// GetOwnProperty returns an own property regardless of its visibility.
func (o *Object) GetOwnProperty(vm *VM, uri ObjectURI) *Property {
	return o.props.GetProperty(vm, uri)
}

// HasOwnProperty reports whether an own property exists.
func (o *Object) HasOwnProperty(vm *VM, uri ObjectURI) bool {
	return o.props.GetProperty(vm, uri) != nil
}

// InitMember creates or overwrites an own plain member. Engine code uses it
// to populate objects, so watch triggers are not run.
func (o *Object) InitMember(vm *VM, uri ObjectURI, v Value, flags PropFlags) {
	ok, err := o.props.SetValue(vm, uri, v, flags)
	if err != nil || !ok {
		vm.log.WithFields(logrus.Fields{"property": uri.String()}).
			WithError(err).Error("attempt to initialize read-only property")
	}
}

// InitProperty binds Go accessors to an own member.
func (o *Object) InitProperty(vm *VM, uri ObjectURI, getter, setter NativeFunction, flags PropFlags) {
	o.props.AddGetterSetter(vm, uri, NewNativeGetterSetter(getter, setter), Undefined, flags)
}

// InitDestructive binds a Go getter whose first result replaces it. It
// reports false if the member already exists.
func (o *Object) InitDestructive(vm *VM, uri ObjectURI, getter NativeFunction, flags PropFlags) bool {
	return o.props.AddDestructiveGetter(vm, uri, NewNativeGetterSetter(getter, nil), flags)
}

// AddProperty implements addProperty: it binds script accessors to an own
// member. A member that already exists keeps its flags and cached value.
// Watches on a new member fire once with undefined values; the result
// becomes the cache.
func (o *Object) AddProperty(vm *VM, uri ObjectURI, getter, setter *Object) error {
	gs := NewUserGetterSetter(getter, setter)
	if p := o.props.GetProperty(vm, uri); p != nil {
		o.props.AddGetterSetter(vm, uri, gs, p.Cache(), 0)
		return nil
	}
	o.props.AddGetterSetter(vm, uri, gs, Undefined, 0)

	trig := o.triggers[uri]
	if trig == nil || trig.dead {
		return nil
	}
	v, err := trig.call(vm, o, Undefined, Undefined)
	if err != nil {
		return err
	}
	p := o.props.GetProperty(vm, uri)
	if p == nil {
		vm.log.WithField("property", uri.String()).Debug("property deleted by trigger on create")
		return nil
	}
	p.SetCache(v)
	return nil
}

// DeleteMember removes an own member unless it is protected.
func (o *Object) DeleteMember(vm *VM, uri ObjectURI) (found, deleted bool) {
	return o.props.Delete(vm, uri)
}

// SetPropFlags updates the flags of one own member.
func (o *Object) SetPropFlags(vm *VM, uri ObjectURI, set, clear PropFlags) bool {
	return o.props.SetFlags(vm, uri, set, clear)
}

// SetPropFlagsAll updates the flags of every own member.
func (o *Object) SetPropFlagsAll(set, clear PropFlags) {
	o.props.SetFlagsAll(set, clear)
}

// SetPropFlagsList implements ASSetPropFlags: props is Null for every own
// member, or a comma separated list of names.
func (o *Object) SetPropFlagsList(vm *VM, props Value, set, clear PropFlags) {
	if props.IsNull() {
		o.props.SetFlagsAll(set, clear)
		return
	}
	for _, name := range strings.Split(props.ToString(vm), ",") {
		uri := URI(name)
		if !o.props.SetFlags(vm, uri, set, clear) {
			vm.asCodingError(uri, "ASSetPropFlags: no such property")
		}
	}
}

// VisitProperties reads the own members accepted by pred in creation order.
func (o *Object) VisitProperties(vm *VM, pred PropertyPredicate, visitor func(uri ObjectURI, v Value) bool) error {
	return o.props.VisitValues(vm, pred, visitor)
}

// VisitKeys reports the enumerable member names of the object and its
// prototypes, as for..in does. Shadowed names are reported once.
func (o *Object) VisitKeys(vm *VM, visitor func(uri ObjectURI)) {
	done := make(map[ObjectURI]struct{})
	w := newProtoWalker(vm, o)
	for {
		w.obj.props.VisitKeys(visitor, done)
		ok, err := w.next()
		if err != nil {
			vm.log.WithError(err).Debug("enumeration stopped")
			return
		}
		if !ok {
			return
		}
	}
}

// AddInterface records that the object's instances satisfy iface for
// instanceof.
func (o *Object) AddInterface(iface *Object) {
	if iface == nil {
		return
	}
	for _, i := range o.interfaces {
		if i == iface {
			return
		}
	}
	o.interfaces = append(o.interfaces, iface)
}

// InstanceOf walks this object's prototypes looking for ctor.prototype,
// either directly or among each prototype's interfaces.
func (o *Object) InstanceOf(vm *VM, ctor *Object) (bool, error) {
	if ctor == nil {
		return false, nil
	}
	protoVal, found, err := ctor.Get(vm, uriPrototype)
	if err != nil || !found {
		return false, err
	}
	ctorProto := protoVal.ToObject(vm)
	if ctorProto == nil {
		return false, nil
	}

	visited := make(map[*Object]struct{})
	for obj := o; obj != nil; {
		if _, seen := visited[obj]; seen {
			break
		}
		visited[obj] = struct{}{}
		proto := obj.Prototype(vm)
		if proto == nil {
			break
		}
		if proto == ctorProto {
			return true, nil
		}
		for _, iface := range proto.interfaces {
			if iface == ctorProto {
				return true, nil
			}
		}
		obj = proto
	}
	return false, nil
}

// IsPrototypeOf reports whether o appears on instance's prototype chain.
func (o *Object) IsPrototypeOf(vm *VM, instance *Object) bool {
	visited := make(map[*Object]struct{})
	for obj := instance; obj != nil; {
		if _, seen := visited[obj]; seen {
			vm.asCodingError(URI("isPrototypeOf"), "circular inheritance chain")
			return false
		}
		visited[obj] = struct{}{}
		proto := obj.Prototype(vm)
		if proto == o {
			return true
		}
		obj = proto
	}
	return false
}

// Relay returns the host state attached to the object.
func (o *Object) Relay() Relay { return o.relay }

// SetRelay attaches host state. It replaces any previous relay.
func (o *Object) SetRelay(r Relay) { o.relay = r }

// DisplayObject returns the stage object this object represents, if any.
func (o *Object) DisplayObject() DisplayObject { return o.display }

// SetDisplayObject links the object to a stage object.
func (o *Object) SetDisplayObject(d DisplayObject) { o.display = d }

// IsFunction reports whether the object can be called.
func (o *Object) IsFunction() bool { return o != nil && o.body != nil }

// IsBuiltin reports whether the object is a native constructor.
func (o *Object) IsBuiltin() bool { return o.builtin }

// IsSuper reports whether the object is a super reference.
func (o *Object) IsSuper() bool { return o.isSuper }

// Name returns the function name used in diagnostics.
func (o *Object) Name() string { return o.name }
