package vm

import (
	"github.com/sirupsen/logrus"

	"asvm/pkg/errors"
)

// protoWalker follows __proto__ links from a starting object. It stops at
// a missing prototype, at an object it has already visited, and at
// prototypes that are stage objects. Walking more than the VM's hop cap is
// an error rather than a miss.
type protoWalker struct {
	vm      *VM
	obj     *Object
	visited map[*Object]struct{}
	hops    int
}

func newProtoWalker(vm *VM, start *Object) *protoWalker {
	return &protoWalker{
		vm:      vm,
		obj:     start,
		visited: map[*Object]struct{}{start: {}},
	}
}

// next moves to the prototype of the current object. It returns false
// when the walk is over.
func (w *protoWalker) next() (bool, error) {
	w.hops++
	if w.hops > w.vm.maxDepth {
		return false, errors.NewActionLimitError("lookup depth exceeded", w.vm.maxDepth)
	}
	w.obj = w.obj.Prototype(w.vm)
	if w.obj == nil {
		return false, nil
	}
	if _, seen := w.visited[w.obj]; seen {
		return false, nil
	}
	w.visited[w.obj] = struct{}{}
	return w.obj.display == nil, nil
}

// property returns the current object's member if it satisfies accept.
func (w *protoWalker) property(uri ObjectURI, accept PropertyPredicate) *Property {
	p := w.obj.props.GetProperty(w.vm, uri)
	if p != nil && accept(p) {
		return p
	}
	return nil
}

func visibleAt(version int) PropertyPredicate {
	return func(p *Property) bool { return p.Visible(version) }
}

// FindProperty looks up a visible member on the object or its prototypes
// and returns it together with the object that owns it.
func (o *Object) FindProperty(vm *VM, uri ObjectURI) (*Property, *Object, error) {
	visible := visibleAt(vm.Version())
	w := newProtoWalker(vm, o)
	for {
		if p := w.property(uri, visible); p != nil {
			return p, w.obj, nil
		}
		ok, err := w.next()
		if err != nil || !ok {
			return nil, nil, err
		}
	}
}

// findUpdatableProperty returns the member a write to uri lands on: an own
// member whatever its visibility, or else an inherited visible accessor.
func (o *Object) findUpdatableProperty(vm *VM, uri ObjectURI) (*Property, error) {
	if p := o.props.GetProperty(vm, uri); p != nil {
		return p, nil
	}
	version := vm.Version()
	w := newProtoWalker(vm, o)
	for {
		ok, err := w.next()
		if err != nil || !ok {
			return nil, err
		}
		if p := w.property(uri, Exists); p != nil && p.IsGetterSetter() && p.Visible(version) {
			return p, nil
		}
	}
}

// Get reads a member. Members found on a prototype are read with o as
// this. When nothing is found the stage object is asked, then __resolve
// is called with the missing name.
func (o *Object) Get(vm *VM, uri ObjectURI) (Value, bool, error) {
	if o.isSuper {
		proto := o.superPrototype(vm)
		if proto == nil {
			vm.log.Debug("super has no associated prototype")
			return Undefined, false, nil
		}
		return proto.Get(vm, uri)
	}

	p, _, err := o.FindProperty(vm, uri)
	if err != nil {
		return Undefined, false, err
	}
	if p != nil {
		v, err := p.GetValue(vm, o)
		if err != nil {
			if errors.IsTypeError(err) {
				vm.log.WithFields(logrus.Fields{"property": uri.String()}).
					WithError(err).Debug("getter failed")
				return Undefined, false, nil
			}
			return Undefined, false, err
		}
		return v, true, nil
	}

	if o.display != nil {
		if v, ok := o.display.GetMagic(vm, uri); ok {
			return v, true, nil
		}
	}

	return o.resolve(vm, uri)
}

// resolve calls the first __resolve member on the chain. Its visibility is
// ignored. From SWF 7 on it must hold a function.
func (o *Object) resolve(vm *VM, uri ObjectURI) (Value, bool, error) {
	w := newProtoWalker(vm, o)
	var p *Property
	for p = w.property(uriResolve, Exists); p == nil; p = w.property(uriResolve, Exists) {
		ok, err := w.next()
		if err != nil || !ok {
			return Undefined, false, err
		}
	}

	var handler Value
	if p.IsGetterSetter() {
		handler = p.Cache()
	} else {
		handler = p.value
	}
	if vm.Version() >= 7 && !handler.IsFunction() {
		return Undefined, false, nil
	}
	v, err := Invoke(vm, handler, nil, o, []Value{NewString(uri.Name)})
	if err != nil {
		return Undefined, false, err
	}
	return v, true, nil
}

// GetMember is Get with the not-found case folded into Undefined.
func (o *Object) GetMember(vm *VM, uri ObjectURI) (Value, error) {
	v, _, err := o.Get(vm, uri)
	return v, err
}

// Set writes a member and reports whether the write was handled. With
// requireExisting, nothing is created and a missing member yields false.
// Writes to read-only members are ignored but count as handled.
func (o *Object) Set(vm *VM, uri ObjectURI, v Value, requireExisting bool) (bool, error) {
	if o.display != nil && o.display.SetMagic(vm, uri, v) {
		return true, nil
	}

	p, err := o.findUpdatableProperty(vm, uri)
	if err != nil {
		return false, err
	}

	if p != nil {
		if p.flags.ReadOnly() {
			vm.asCodingError(uri, "attempt to set read-only property")
			return true, nil
		}
		if err := o.commit(vm, p, uri, v); err != nil {
			return false, err
		}
		return true, nil
	}

	if requireExisting {
		return false, nil
	}
	ok, err := o.props.SetValue(vm, uri, v, 0)
	if err != nil || !ok {
		return false, err
	}
	return true, o.runTrigger(vm, uri, Undefined, v)
}

// SetMember creates or updates a member, the way an assignment does.
func (o *Object) SetMember(vm *VM, uri ObjectURI, v Value) error {
	_, err := o.Set(vm, uri, v, false)
	return err
}

// commit writes v to an existing member, letting a watch transform it
// first, then unlocks the member's version gating.
func (o *Object) commit(vm *VM, p *Property, uri ObjectURI, v Value) error {
	if o.liveTrigger(uri) != nil {
		return o.runTrigger(vm, uri, p.Cache(), v)
	}
	if _, err := p.SetValue(vm, o, v); err != nil {
		return err
	}
	p.ClearVisible(vm.Version())
	return nil
}

// runTrigger calls the watch on uri, if any, and stores its result. The
// member is looked up again afterwards since the watch may have deleted it.
func (o *Object) runTrigger(vm *VM, uri ObjectURI, oldValue, newValue Value) error {
	trig := o.liveTrigger(uri)
	if trig == nil {
		return nil
	}
	v, err := trig.call(vm, o, oldValue, newValue)
	o.pruneTriggers()
	if err != nil {
		return err
	}
	p, err := o.findUpdatableProperty(vm, uri)
	if err != nil || p == nil {
		return err
	}
	if _, err := p.SetValue(vm, o, v); err != nil {
		return err
	}
	p.ClearVisible(vm.Version())
	return nil
}
