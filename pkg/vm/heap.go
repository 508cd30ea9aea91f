package vm

import (
	"sort"
	"strings"
)

// Registry holds the root objects stage paths are resolved against, such
// as _level0. Levels are stored by name; the slot order is the order they
// were registered in.
type Registry struct {
	roots       []*Object
	nameToIndex map[string]int
}

// NewRegistry creates an empty registry.
func NewRegistry() *Registry {
	return &Registry{nameToIndex: make(map[string]int)}
}

// SetRoot registers obj under name, replacing any previous root of that
// name. A nil obj removes the root.
func (r *Registry) SetRoot(name string, obj *Object) {
	if idx, ok := r.nameToIndex[name]; ok {
		if obj == nil {
			r.roots = append(r.roots[:idx], r.roots[idx+1:]...)
			delete(r.nameToIndex, name)
			for n, i := range r.nameToIndex {
				if i > idx {
					r.nameToIndex[n] = i - 1
				}
			}
			return
		}
		r.roots[idx] = obj
		return
	}
	if obj == nil {
		return
	}
	r.nameToIndex[name] = len(r.roots)
	r.roots = append(r.roots, obj)
}

// Root returns the root registered under name.
func (r *Registry) Root(name string) (*Object, bool) {
	idx, ok := r.nameToIndex[name]
	if !ok {
		return nil, false
	}
	return r.roots[idx], true
}

// Roots returns the registered roots in registration order.
func (r *Registry) Roots() []*Object {
	out := make([]*Object, len(r.roots))
	copy(out, r.roots)
	return out
}

// Names returns the registered root names, sorted.
func (r *Registry) Names() []string {
	names := make([]string, 0, len(r.nameToIndex))
	for n := range r.nameToIndex {
		names = append(names, n)
	}
	sort.Strings(names)
	return names
}

// Resolve finds the object at a target path. Both dot syntax
// ("_level0.clip.inner") and slash syntax ("/clip/inner", relative to
// _level0, or "_level1/clip") are accepted. Members are read with the
// normal lookup rules, so below SWF 7 path segments are case-insensitive.
func (r *Registry) Resolve(vm *VM, path string) *Object {
	if path == "" {
		return nil
	}
	var parts []string
	if strings.Contains(path, "/") {
		if strings.HasPrefix(path, "/") {
			path = "_level0" + path
		}
		parts = strings.Split(path, "/")
	} else {
		parts = strings.Split(path, ".")
	}

	obj := r.rootFor(vm, parts[0])
	for _, part := range parts[1:] {
		if obj == nil {
			return nil
		}
		if part == "" {
			continue
		}
		v, found, err := obj.Get(vm, URI(part))
		if err != nil || !found {
			return nil
		}
		obj = v.ToObject(vm)
	}
	return obj
}

func (r *Registry) rootFor(vm *VM, name string) *Object {
	if obj, ok := r.Root(name); ok {
		return obj
	}
	if !vm.caseless() {
		return nil
	}
	// several roots may fold alike; the first sorted name wins
	folded := foldName(name)
	for _, n := range r.Names() {
		if foldName(n) == folded {
			return r.roots[r.nameToIndex[n]]
		}
	}
	return nil
}

// Reachable returns every object reachable from the registered roots and
// the realm's built-in objects.
func (r *Registry) Reachable(vm *VM) map[*Object]struct{} {
	roots := r.Roots()
	if realm := vm.Realm(); realm != nil {
		roots = append(roots, realm.Global, realm.ObjectPrototype, realm.FunctionPrototype, realm.ErrorPrototype)
	}
	return Reachable(roots...)
}
