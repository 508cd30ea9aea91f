package vm

import pkgerrors "github.com/pkg/errors"

// PropertyList holds the members of one object in creation order.
//
// Lookups go through a case-sensitive index that holds exactly one
// property per ObjectURI. Below SWF 7 names compare case-insensitively: an
// exact match wins, otherwise the oldest property whose folded name matches.
type PropertyList struct {
	owner  *Object
	props  []*Property
	index  map[ObjectURI]*Property
	folded map[foldKey][]*Property
}

func newPropertyList(owner *Object) *PropertyList {
	return &PropertyList{
		owner:  owner,
		index:  make(map[ObjectURI]*Property),
		folded: make(map[foldKey][]*Property),
	}
}

// PropertyPredicate selects properties for VisitValues.
type PropertyPredicate func(p *Property) bool

// IsEnumerable selects properties that for..in would report.
func IsEnumerable(p *Property) bool { return !p.flags.NoEnum() }

// Exists selects every property.
func Exists(*Property) bool { return true }

func (l *PropertyList) Len() int { return len(l.props) }

func (l *PropertyList) find(vm *VM, uri ObjectURI) *Property {
	if p, ok := l.index[uri]; ok {
		return p
	}
	if !vm.caseless() {
		return nil
	}
	if ps := l.folded[foldURI(uri)]; len(ps) > 0 {
		return ps[0]
	}
	return nil
}

func (l *PropertyList) insert(p *Property) {
	l.props = append(l.props, p)
	l.index[p.uri] = p
	k := foldURI(p.uri)
	l.folded[k] = append(l.folded[k], p)
}

func (l *PropertyList) remove(p *Property) {
	for i, q := range l.props {
		if q == p {
			l.props = append(l.props[:i:i], l.props[i+1:]...)
			break
		}
	}
	delete(l.index, p.uri)
	k := foldURI(p.uri)
	ps := l.folded[k]
	for i, q := range ps {
		if q == p {
			ps = append(ps[:i:i], ps[i+1:]...)
			break
		}
	}
	if len(ps) == 0 {
		delete(l.folded, k)
	} else {
		l.folded[k] = ps
	}
	p.removed = true
}

// rename moves p to another spelling of its name. The folded key does not
// change.
func (l *PropertyList) rename(p *Property, uri ObjectURI) {
	if p.uri == uri {
		return
	}
	delete(l.index, p.uri)
	p.uri = uri
	l.index[uri] = p
}

// SetValue assigns v to the named property, creating it with flags at the
// end of the list if it does not exist. It returns false if an existing
// property rejected the write.
func (l *PropertyList) SetValue(vm *VM, uri ObjectURI, v Value, flags PropFlags) (bool, error) {
	p := l.find(vm, uri)
	if p == nil {
		l.insert(NewValueProperty(uri, v, flags))
		return true, nil
	}
	if p.flags.ReadOnly() && !p.destructive {
		vm.asCodingError(uri, "attempt to set read-only property")
		return false, nil
	}
	return p.SetValue(vm, l.owner, v)
}

// GetProperty returns the named property or nil.
func (l *PropertyList) GetProperty(vm *VM, uri ObjectURI) *Property {
	return l.find(vm, uri)
}

// Delete removes the named property unless it is protected.
func (l *PropertyList) Delete(vm *VM, uri ObjectURI) (found, deleted bool) {
	p := l.find(vm, uri)
	if p == nil {
		return false, false
	}
	if p.flags.NoDelete() {
		return true, false
	}
	l.remove(p)
	return true, true
}

// AddGetterSetter binds gs to the named property. An existing property
// keeps its flags, position and cached value; only the binding changes.
func (l *PropertyList) AddGetterSetter(vm *VM, uri ObjectURI, gs GetterSetter, cache Value, flags PropFlags) {
	p := l.find(vm, uri)
	if p == nil {
		gs.SetCache(cache)
		l.insert(NewAccessorProperty(uri, gs, flags))
		return
	}
	gs.SetCache(p.Cache())
	p.accessor = gs
	p.destructive = false
	l.rename(p, uri)
}

// AddDestructiveGetter binds a getter that is replaced by its first
// result. It fails if the property already exists.
func (l *PropertyList) AddDestructiveGetter(vm *VM, uri ObjectURI, gs GetterSetter, flags PropFlags) bool {
	if l.find(vm, uri) != nil {
		return false
	}
	l.insert(NewDestructiveProperty(uri, gs, flags))
	return true
}

// SetFlags updates the flags of the named property.
func (l *PropertyList) SetFlags(vm *VM, uri ObjectURI, set, clear PropFlags) bool {
	p := l.find(vm, uri)
	if p == nil {
		return false
	}
	return p.SetFlags(set, clear)
}

// SetFlagsAll updates the flags of every property.
func (l *PropertyList) SetFlagsAll(set, clear PropFlags) {
	for _, p := range l.props {
		p.SetFlags(set, clear)
	}
}

// VisitKeys calls visitor for each enumerable property in creation order
// whose identity is not yet in done, and records it there.
func (l *PropertyList) VisitKeys(visitor func(uri ObjectURI), done map[ObjectURI]struct{}) {
	for _, p := range l.props {
		if p.flags.NoEnum() {
			continue
		}
		if _, seen := done[p.uri]; seen {
			continue
		}
		done[p.uri] = struct{}{}
		visitor(p.uri)
	}
}

// VisitValues reads every property accepted by pred, in creation order, and
// passes the value to visitor until it returns false. Getters may run and
// may change the list; iteration works on a snapshot and skips properties
// deleted meanwhile.
func (l *PropertyList) VisitValues(vm *VM, pred PropertyPredicate, visitor func(uri ObjectURI, v Value) bool) error {
	snapshot := make([]*Property, len(l.props))
	copy(snapshot, l.props)
	for _, p := range snapshot {
		if p.removed || !pred(p) {
			continue
		}
		v, err := p.GetValue(vm, l.owner)
		if err != nil {
			return pkgerrors.Wrapf(err, "reading %s", p.uri)
		}
		if !visitor(p.uri, v) {
			return nil
		}
	}
	return nil
}

// Properties returns the properties in creation order.
func (l *PropertyList) Properties() []*Property {
	out := make([]*Property, len(l.props))
	copy(out, l.props)
	return out
}

// Clear removes every property, protected or not.
func (l *PropertyList) Clear() {
	for _, p := range l.props {
		p.removed = true
	}
	l.props = nil
	l.index = make(map[ObjectURI]*Property)
	l.folded = make(map[foldKey][]*Property)
}

// Dump reads every property for debugging output.
func (l *PropertyList) Dump(vm *VM) (map[string]Value, error) {
	out := make(map[string]Value, len(l.props))
	err := l.VisitValues(vm, Exists, func(uri ObjectURI, v Value) bool {
		out[uri.String()] = v
		return true
	})
	return out, err
}
