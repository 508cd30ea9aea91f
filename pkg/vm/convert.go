package vm

import (
	"sort"

	"github.com/spf13/cast"
)

// FromGo converts a host value into a script value. Numbers of any Go type
// become Numbers, maps with string keys become objects with their keys in
// sorted order, slices become objects with indexed members and a length.
// Values cast can render as text become Strings; anything else is
// Undefined.
func FromGo(vm *VM, x any) Value {
	switch v := x.(type) {
	case nil:
		return Null
	case Value:
		return v
	case *Object:
		return ObjectValue(v)
	case *CharRef:
		return CharRefValue(v)
	case bool:
		return BooleanValue(v)
	case string:
		return NewString(v)
	case int, int8, int16, int32, int64, uint, uint8, uint16, uint32, uint64, float32, float64:
		return NumberValue(cast.ToFloat64(v))
	case []any:
		obj := vm.NewObject()
		for i, e := range v {
			obj.InitMember(vm, URI(DoubleToString(float64(i))), FromGo(vm, e), 0)
		}
		obj.InitMember(vm, uriLength, NumberValue(float64(len(v))), FlagNoEnum)
		return ObjectValue(obj)
	case []string:
		items := make([]any, len(v))
		for i, s := range v {
			items[i] = s
		}
		return FromGo(vm, items)
	case map[string]any:
		obj := vm.NewObject()
		keys := make([]string, 0, len(v))
		for k := range v {
			keys = append(keys, k)
		}
		sort.Strings(keys)
		for _, k := range keys {
			obj.InitMember(vm, URI(k), FromGo(vm, v[k]), 0)
		}
		return ObjectValue(obj)
	case map[string]string:
		m := make(map[string]any, len(v))
		for k, s := range v {
			m[k] = s
		}
		return FromGo(vm, m)
	}
	if s, err := cast.ToStringE(x); err == nil {
		return NewString(s)
	}
	return Undefined
}

// Export converts a script value into plain Go data: nil, bool, float64,
// string or map[string]any built from own enumerable members. Functions
// export as nil; an object already being exported is cut off as nil.
func Export(vm *VM, v Value) (any, error) {
	return export(vm, v, make(map[*Object]struct{}))
}

func export(vm *VM, v Value, stack map[*Object]struct{}) (any, error) {
	switch v.Type() {
	case TypeUndefined, TypeNull:
		return nil, nil
	case TypeBoolean:
		return v.AsBoolean(), nil
	case TypeNumber:
		return v.AsNumber(), nil
	case TypeString:
		return v.AsString(), nil
	case TypeCharRef:
		return v.AsCharRef().Path(), nil
	}

	obj := v.AsObject()
	if obj.IsFunction() {
		return nil, nil
	}
	if _, seen := stack[obj]; seen {
		return nil, nil
	}
	stack[obj] = struct{}{}
	defer delete(stack, obj)

	out := make(map[string]any)
	var inner error
	err := obj.VisitProperties(vm, IsEnumerable, func(uri ObjectURI, member Value) bool {
		x, err := export(vm, member, stack)
		if err != nil {
			inner = err
			return false
		}
		out[uri.String()] = x
		return true
	})
	if err != nil {
		return nil, err
	}
	return out, inner
}
