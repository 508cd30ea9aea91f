package vm

// Trigger is a watch installed with Object.watch. It runs before a write
// and its return value is what gets stored.
type Trigger struct {
	name      string
	fn        *Object
	custom    Value
	executing bool
	dead      bool
}

// call runs the watch as fn(name, old, new, custom) with obj as this. A
// watch that writes the property it watches gets the value through
// unchanged.
func (t *Trigger) call(vm *VM, obj *Object, oldValue, newValue Value) (Value, error) {
	if t.executing {
		return newValue, nil
	}
	t.executing = true
	defer func() { t.executing = false }()
	return t.fn.call(&CallContext{
		VM:   vm,
		This: obj,
		Args: []Value{NewString(t.name), oldValue, newValue, t.custom},
	})
}

// Watch installs fn as the watch for uri, replacing any previous one. It
// fails if fn is not a function.
func (o *Object) Watch(uri ObjectURI, fn *Object, custom Value) bool {
	if !fn.IsFunction() {
		return false
	}
	if o.triggers == nil {
		o.triggers = make(map[ObjectURI]*Trigger)
	}
	o.triggers[uri] = &Trigger{name: uri.Name, fn: fn, custom: custom}
	return true
}

// Unwatch disables the watch for uri. It fails if there is none, or if the
// member is an accessor. The trigger is dropped lazily.
func (o *Object) Unwatch(vm *VM, uri ObjectURI) bool {
	trig, ok := o.triggers[uri]
	if !ok {
		vm.log.WithField("property", uri.String()).Debug("no watch for property")
		return false
	}
	if p := o.props.GetProperty(vm, uri); p != nil && p.IsGetterSetter() {
		vm.log.WithField("property", uri.String()).Debug("watch not removed: property is a getter-setter")
		return false
	}
	trig.dead = true
	return true
}

// liveTrigger returns the active watch for uri. A dead one found here is
// dropped.
func (o *Object) liveTrigger(uri ObjectURI) *Trigger {
	trig, ok := o.triggers[uri]
	if !ok {
		return nil
	}
	if trig.dead {
		delete(o.triggers, uri)
		return nil
	}
	return trig
}

func (o *Object) pruneTriggers() {
	for uri, trig := range o.triggers {
		if trig.dead {
			delete(o.triggers, uri)
		}
	}
}
