package vm

// Property is one member of an object. It is bound either to a plain value
// or to a GetterSetter. Its identity is its ObjectURI.
type Property struct {
	uri      ObjectURI
	value    Value
	accessor GetterSetter
	flags    PropFlags

	// destructive accessors replace themselves with the first value they
	// return.
	destructive bool
	// removed is set once the property leaves its list, so snapshots taken
	// before a deletion can skip it.
	removed bool
}

// NewValueProperty creates a property bound to a plain value.
func NewValueProperty(uri ObjectURI, v Value, flags PropFlags) *Property {
	return &Property{uri: uri, value: v, flags: flags}
}

// NewAccessorProperty creates a property bound to an accessor.
func NewAccessorProperty(uri ObjectURI, gs GetterSetter, flags PropFlags) *Property {
	return &Property{uri: uri, value: Undefined, accessor: gs, flags: flags}
}

// NewDestructiveProperty creates an accessor property that turns into a
// plain value on its first read.
func NewDestructiveProperty(uri ObjectURI, gs GetterSetter, flags PropFlags) *Property {
	p := NewAccessorProperty(uri, gs, flags)
	p.destructive = true
	return p
}

func (p *Property) URI() ObjectURI      { return p.uri }
func (p *Property) Flags() PropFlags    { return p.flags }
func (p *Property) IsDestructive() bool { return p.destructive }

// IsGetterSetter reports whether the property is bound to an accessor.
func (p *Property) IsGetterSetter() bool { return p.accessor != nil }

// Accessor returns the bound accessor, or nil for plain values.
func (p *Property) Accessor() GetterSetter { return p.accessor }

// SetFlags updates the flags in place. This is not a script-visible write.
func (p *Property) SetFlags(set, clear PropFlags) bool {
	return p.flags.SetFlags(set, clear)
}

func (p *Property) Visible(version int) bool { return p.flags.Visible(version) }

func (p *Property) ClearVisible(version int) { p.flags.ClearVisible(version) }

// GetValue reads the property with owner as this. A destructive accessor
// is replaced by its result unless a write landed while it ran.
func (p *Property) GetValue(vm *VM, owner *Object) (Value, error) {
	if p.accessor == nil {
		return p.value, nil
	}
	c := &CallContext{VM: vm, This: owner}
	if !p.destructive {
		return p.accessor.Get(c)
	}
	ret, err := p.accessor.Get(c)
	if err != nil {
		return Undefined, err
	}
	if p.destructive {
		p.bindValue(ret)
	}
	return ret, nil
}

// SetValue writes the property with owner as this. It returns false when
// the property is read-only.
func (p *Property) SetValue(vm *VM, owner *Object, v Value) (bool, error) {
	if p.flags.ReadOnly() {
		if p.destructive {
			p.bindValue(v)
			return true, nil
		}
		return false, nil
	}
	switch {
	case p.accessor == nil:
		p.value = v
	case p.destructive:
		p.bindValue(v)
	default:
		c := &CallContext{VM: vm, This: owner, Args: []Value{v}}
		if err := p.accessor.Set(c); err != nil {
			return false, err
		}
		p.accessor.SetCache(v)
	}
	return true, nil
}

// Cache returns the plain value, or the accessor's cached value. It never
// runs a getter.
func (p *Property) Cache() Value {
	if p.accessor == nil {
		return p.value
	}
	return p.accessor.Cache()
}

func (p *Property) SetCache(v Value) {
	if p.accessor == nil {
		p.value = v
		return
	}
	p.accessor.SetCache(v)
}

func (p *Property) bindValue(v Value) {
	p.accessor = nil
	p.destructive = false
	p.value = v
}
