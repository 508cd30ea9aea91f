package vm

import "weak"

// DisplayObject is the stage side of an object: something the host renders
// and addresses by target path. The engine holds it without owning it.
type DisplayObject interface {
	// Target returns the absolute target path, e.g. "_level0.clip".
	Target() string
	IsDestroyed() bool
	// GetMagic answers reads of legacy stage properties such as _x.
	GetMagic(vm *VM, uri ObjectURI) (Value, bool)
	// SetMagic intercepts writes of legacy stage properties. It reports
	// whether the write was handled.
	SetMagic(vm *VM, uri ObjectURI, v Value) bool
}

// CharRef is a soft reference to a stage object: the target path plus a
// weak handle to the last object seen at that path. Once the referent is
// destroyed or collected the path is used to find its replacement.
type CharRef struct {
	path   string
	cached weak.Pointer[Object]
}

// NewCharRef references obj, which should be linked to a DisplayObject. A
// nil obj gives a reference that resolves to nothing.
func NewCharRef(obj *Object) *CharRef {
	if obj == nil {
		return &CharRef{}
	}
	r := &CharRef{cached: weak.Make(obj)}
	if d := obj.DisplayObject(); d != nil {
		r.path = d.Target()
	}
	return r
}

// NewCharRefPath references whatever object lives at path.
func NewCharRefPath(path string) *CharRef {
	return &CharRef{path: path}
}

// Path returns the target path, refreshed from the live object if there is
// one.
func (r *CharRef) Path() string {
	if obj := r.live(); obj != nil {
		if d := obj.DisplayObject(); d != nil {
			r.path = d.Target()
		}
	}
	return r.path
}

// Resolve returns the referenced object, or nil if nothing lives at the
// path any more.
func (r *CharRef) Resolve(vm *VM) *Object {
	if obj := r.live(); obj != nil {
		return obj
	}
	obj := vm.Registry().Resolve(vm, r.path)
	if obj == nil {
		return nil
	}
	r.cached = weak.Make(obj)
	return obj
}

func (r *CharRef) live() *Object {
	obj := r.cached.Value()
	if obj == nil {
		return nil
	}
	if d := obj.DisplayObject(); d != nil && d.IsDestroyed() {
		return nil
	}
	return obj
}
