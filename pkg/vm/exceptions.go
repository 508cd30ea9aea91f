package vm

import (
	stderrors "errors"

	"asvm/pkg/errors"
)

// Exception carries a value thrown by script code through getters,
// setters, watches and native functions.
type Exception struct {
	Value Value
}

// Throw wraps v so it propagates as an error.
func Throw(v Value) error { return &Exception{Value: v} }

func (e *Exception) Error() string {
	return "uncaught exception: " + e.Value.Inspect()
}

// ToScriptValue turns a failure into the value a script handler catches.
// Thrown values are returned as-is; engine failures become Error objects
// whose name is the failure kind. The second result is false for nil.
func ToScriptValue(vm *VM, err error) (Value, bool) {
	if err == nil {
		return Undefined, false
	}
	var ex *Exception
	if stderrors.As(err, &ex) {
		return ex.Value, true
	}

	name, msg := "Error", err.Error()
	if ae, ok := errors.AsASError(err); ok {
		name, msg = ae.Kind()+"Error", ae.Message()
	}
	obj := NewObject(vm, vm.realm.ErrorPrototype)
	obj.InitMember(vm, uriName, NewString(name), FlagsDefault)
	obj.InitMember(vm, uriMessage, NewString(msg), FlagsDefault)
	return ObjectValue(obj), true
}
