package vm

// GetterSetter is the accessor bound to a property. It has exactly two
// implementations: NativeGetterSetter and UserGetterSetter.
type GetterSetter interface {
	Get(c *CallContext) (Value, error)
	Set(c *CallContext) error
	// Cache returns the underlying value kept by user-defined accessors.
	Cache() Value
	SetCache(v Value)

	markFunctions(mark func(*Object))
}

// NativeGetterSetter binds Go functions. It has no cache slot.
type NativeGetterSetter struct {
	getter NativeFunction
	setter NativeFunction
}

// NewNativeGetterSetter creates an accessor from Go functions. A nil setter
// ignores writes.
func NewNativeGetterSetter(getter, setter NativeFunction) *NativeGetterSetter {
	return &NativeGetterSetter{getter: getter, setter: setter}
}

func (n *NativeGetterSetter) Get(c *CallContext) (Value, error) {
	if n.getter == nil {
		return Undefined, nil
	}
	return n.getter(c)
}

func (n *NativeGetterSetter) Set(c *CallContext) error {
	if n.setter == nil {
		return nil
	}
	_, err := n.setter(c)
	return err
}

func (n *NativeGetterSetter) Cache() Value   { return Undefined }
func (n *NativeGetterSetter) SetCache(Value) {}

func (n *NativeGetterSetter) markFunctions(func(*Object)) {}

// UserGetterSetter binds script functions, as created by addProperty.
//
// A single guard covers both directions: while the getter or setter runs,
// nested reads return the cached value and nested writes only update it.
type UserGetterSetter struct {
	getter     *Object
	setter     *Object
	underlying Value
	accessing  bool
}

// NewUserGetterSetter creates an accessor from script functions. The setter
// may be nil, in which case writes go to the cache.
func NewUserGetterSetter(getter, setter *Object) *UserGetterSetter {
	return &UserGetterSetter{getter: getter, setter: setter, underlying: Undefined}
}

func (u *UserGetterSetter) Get(c *CallContext) (Value, error) {
	if u.accessing {
		return u.underlying, nil
	}
	if u.getter == nil {
		return Undefined, nil
	}
	u.accessing = true
	defer func() { u.accessing = false }()
	return u.getter.call(c)
}

func (u *UserGetterSetter) Set(c *CallContext) error {
	if u.accessing || u.setter == nil {
		u.underlying = c.Arg(0)
		return nil
	}
	u.accessing = true
	defer func() { u.accessing = false }()
	_, err := u.setter.call(c)
	return err
}

func (u *UserGetterSetter) Cache() Value     { return u.underlying }
func (u *UserGetterSetter) SetCache(v Value) { u.underlying = v }

// Getter returns the script getter function.
func (u *UserGetterSetter) Getter() *Object { return u.getter }

// Setter returns the script setter function, or nil.
func (u *UserGetterSetter) Setter() *Object { return u.setter }

func (u *UserGetterSetter) markFunctions(mark func(*Object)) {
	if u.getter != nil {
		mark(u.getter)
	}
	if u.setter != nil {
		mark(u.setter)
	}
	if o := u.underlying.AsObject(); o != nil {
		mark(o)
	}
}
