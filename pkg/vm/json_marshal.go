package vm

import (
	"bytes"
	"encoding/json"
	"io"
	"math"
	"strings"

	"github.com/pkg/errors"
)

// MarshalJSON renders v as JSON. Objects contribute their own enumerable
// members in creation order; functions, undefined and non-finite numbers
// become null. Getters run. Cyclic structures are an error.
func MarshalJSON(vm *VM, v Value) ([]byte, error) {
	var buf bytes.Buffer
	if err := marshalValue(vm, &buf, v, make(map[*Object]struct{})); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

func marshalValue(vm *VM, buf *bytes.Buffer, v Value, stack map[*Object]struct{}) error {
	switch v.Type() {
	case TypeNull, TypeUndefined:
		buf.WriteString("null")
	case TypeBoolean:
		if v.AsBoolean() {
			buf.WriteString("true")
		} else {
			buf.WriteString("false")
		}
	case TypeNumber:
		num := v.AsNumber()
		if math.IsNaN(num) || math.IsInf(num, 0) {
			buf.WriteString("null")
			return nil
		}
		buf.WriteString(DoubleToString(num))
	case TypeString:
		// Use Go's json.Marshal for proper string escaping
		b, err := json.Marshal(v.AsString())
		if err != nil {
			return err
		}
		buf.Write(b)
	case TypeCharRef:
		b, err := json.Marshal(v.AsCharRef().Path())
		if err != nil {
			return err
		}
		buf.Write(b)
	case TypeObject:
		obj := v.AsObject()
		if obj.IsFunction() {
			buf.WriteString("null")
			return nil
		}
		if _, cyclic := stack[obj]; cyclic {
			return errors.New("cannot render cyclic structure as JSON")
		}
		stack[obj] = struct{}{}
		defer delete(stack, obj)

		buf.WriteByte('{')
		first := true
		var inner error
		err := obj.VisitProperties(vm, IsEnumerable, func(uri ObjectURI, member Value) bool {
			if !first {
				buf.WriteByte(',')
			}
			first = false
			key, err := json.Marshal(uri.String())
			if err != nil {
				inner = err
				return false
			}
			buf.Write(key)
			buf.WriteByte(':')
			if err := marshalValue(vm, buf, member, stack); err != nil {
				inner = err
				return false
			}
			return true
		})
		if err != nil {
			return err
		}
		if inner != nil {
			return errors.Wrapf(inner, "member of %s", v.Inspect())
		}
		buf.WriteByte('}')
	}
	return nil
}

// UnmarshalJSON builds a value from JSON. Objects are created with
// vm.NewObject and keep the member order of the document; arrays become
// objects with indexed members and a length.
func UnmarshalJSON(vm *VM, data []byte) (Value, error) {
	dec := json.NewDecoder(bytes.NewReader(data))
	dec.UseNumber()
	v, err := decodeJSONValue(vm, dec)
	if err != nil {
		return Undefined, err
	}
	if _, err := dec.Token(); err != io.EOF {
		return Undefined, errors.New("unexpected data after JSON value")
	}
	return v, nil
}

func decodeJSONValue(vm *VM, dec *json.Decoder) (Value, error) {
	tok, err := dec.Token()
	if err != nil {
		return Undefined, errors.Wrap(err, "decoding JSON")
	}
	switch t := tok.(type) {
	case nil:
		return Null, nil
	case bool:
		return BooleanValue(t), nil
	case json.Number:
		return NumberValue(ParseNumber(t.String())), nil
	case string:
		return NewString(t), nil
	case json.Delim:
		obj := vm.NewObject()
		switch t {
		case '{':
			for dec.More() {
				keyTok, err := dec.Token()
				if err != nil {
					return Undefined, errors.Wrap(err, "decoding JSON key")
				}
				key, _ := keyTok.(string)
				member, err := decodeJSONValue(vm, dec)
				if err != nil {
					return Undefined, err
				}
				if err := obj.SetMember(vm, URI(key), member); err != nil {
					return Undefined, err
				}
			}
		case '[':
			n := 0
			for dec.More() {
				member, err := decodeJSONValue(vm, dec)
				if err != nil {
					return Undefined, err
				}
				if err := obj.SetMember(vm, URI(DoubleToString(float64(n))), member); err != nil {
					return Undefined, err
				}
				n++
			}
			obj.InitMember(vm, uriLength, NumberValue(float64(n)), FlagNoEnum)
		default:
			return Undefined, errors.Errorf("unexpected delimiter %s", strings.TrimSpace(t.String()))
		}
		// closing delimiter
		if _, err := dec.Token(); err != nil {
			return Undefined, errors.Wrap(err, "decoding JSON")
		}
		return ObjectValue(obj), nil
	}
	return Undefined, errors.Errorf("unexpected JSON token %v", tok)
}
