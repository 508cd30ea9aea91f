package vm

// Realm holds the objects every VM context starts with.
type Realm struct {
	// Built-in prototypes
	ObjectPrototype   *Object
	FunctionPrototype *Object
	ErrorPrototype    *Object

	// Constructors
	ObjectConstructor *Object

	// Global is the _global object.
	Global *Object
}

// newRealm bootstraps the prototypes and the global object. Function
// objects need Function.prototype to exist, so it is created first and the
// natives are attached afterwards.
func newRealm(vm *VM) *Realm {
	r := &Realm{}
	vm.realm = r

	r.ObjectPrototype = NewObject(vm, nil)
	r.FunctionPrototype = NewObject(vm, r.ObjectPrototype)
	r.ErrorPrototype = NewObject(vm, r.ObjectPrototype)

	initObjectPrototype(vm, r.ObjectPrototype)
	initFunctionPrototype(vm, r.FunctionPrototype)
	initErrorPrototype(vm, r.ErrorPrototype)

	r.ObjectConstructor = NewBuiltin(vm, "Object", objectCtor, r.ObjectPrototype)

	r.Global = NewObject(vm, r.ObjectPrototype)
	initGlobal(vm, r)
	return r
}
