// Package amf reads and writes script values in the AMF0 format used by
// shared objects and remoting.
package amf

import (
	"bytes"
	"encoding/binary"
	"math"

	"github.com/hashicorp/go-multierror"
	"github.com/pkg/errors"

	"asvm/pkg/vm"
)

// AMF0 type markers.
const (
	MarkerNumber     byte = 0x00
	MarkerBoolean    byte = 0x01
	MarkerString     byte = 0x02
	MarkerObject     byte = 0x03
	MarkerNull       byte = 0x05
	MarkerUndefined  byte = 0x06
	MarkerReference  byte = 0x07
	MarkerECMAArray  byte = 0x08
	MarkerObjectEnd  byte = 0x09
	MarkerLongString byte = 0x0C
)

const (
	maxShortStringLen = math.MaxUint16
	maxReferences     = math.MaxUint16
	// maxNesting bounds how deeply decoded objects may nest.
	maxNesting = 512
)

// Encode writes v as AMF0. Objects contribute their enumerable members in
// creation order; members holding functions are skipped. An object seen
// before, including one still being written, is written as a reference.
// Stage references have no AMF0 form and are written as undefined.
func Encode(vmInstance *vm.VM, v vm.Value) ([]byte, error) {
	e := &encoder{vm: vmInstance, refs: make(map[*vm.Object]int)}
	if err := e.value(v); err != nil {
		return nil, err
	}
	return e.buf.Bytes(), nil
}

type encoder struct {
	vm   *vm.VM
	buf  bytes.Buffer
	refs map[*vm.Object]int
}

func (e *encoder) value(v vm.Value) error {
	switch v.Type() {
	case vm.TypeUndefined, vm.TypeCharRef:
		e.buf.WriteByte(MarkerUndefined)
	case vm.TypeNull:
		e.buf.WriteByte(MarkerNull)
	case vm.TypeBoolean:
		e.buf.WriteByte(MarkerBoolean)
		if v.AsBoolean() {
			e.buf.WriteByte(1)
		} else {
			e.buf.WriteByte(0)
		}
	case vm.TypeNumber:
		e.buf.WriteByte(MarkerNumber)
		e.buf.Write(binary.BigEndian.AppendUint64(nil, math.Float64bits(v.AsNumber())))
	case vm.TypeString:
		s := v.AsString()
		if len(s) > maxShortStringLen {
			e.buf.WriteByte(MarkerLongString)
			e.buf.Write(binary.BigEndian.AppendUint32(nil, uint32(len(s))))
			e.buf.WriteString(s)
		} else {
			e.buf.WriteByte(MarkerString)
			e.shortString(s)
		}
	case vm.TypeObject:
		obj := v.AsObject()
		if obj.IsFunction() {
			e.buf.WriteByte(MarkerUndefined)
			return nil
		}
		return e.object(obj)
	}
	return nil
}

func (e *encoder) shortString(s string) {
	e.buf.Write(binary.BigEndian.AppendUint16(nil, uint16(len(s))))
	e.buf.WriteString(s)
}

func (e *encoder) object(obj *vm.Object) error {
	if idx, ok := e.refs[obj]; ok {
		e.buf.WriteByte(MarkerReference)
		e.buf.Write(binary.BigEndian.AppendUint16(nil, uint16(idx)))
		return nil
	}
	if len(e.refs) >= maxReferences {
		return errors.New("too many objects for AMF0 references")
	}
	e.refs[obj] = len(e.refs)

	e.buf.WriteByte(MarkerObject)
	var inner error
	err := obj.VisitProperties(e.vm, vm.IsEnumerable, func(uri vm.ObjectURI, member vm.Value) bool {
		if member.IsFunction() {
			return true
		}
		name := uri.String()
		if len(name) > maxShortStringLen {
			inner = errors.Errorf("member name of %d bytes is too long", len(name))
			return false
		}
		e.shortString(name)
		if err := e.value(member); err != nil {
			inner = err
			return false
		}
		return true
	})
	if err != nil {
		return errors.Wrap(err, "encoding object")
	}
	if inner != nil {
		return inner
	}
	e.shortString("")
	e.buf.WriteByte(MarkerObjectEnd)
	return nil
}

// Decode reads one AMF0 value. Objects are rebuilt with vm.NewObject and
// SetMember, so watches on them run. When the data is truncated or
// malformed, Decode returns what it could build together with a
// *multierror.Error listing every problem found. Members whose value could
// not be read at all are left out.
func Decode(vmInstance *vm.VM, data []byte) (vm.Value, error) {
	d := &decoder{vm: vmInstance, data: data}
	v := d.value()
	if !d.halted && d.pos < len(d.data) {
		d.report("%d bytes of trailing data", len(d.data)-d.pos)
	}
	return v, d.errs.ErrorOrNil()
}

type decoder struct {
	vm    *vm.VM
	data  []byte
	pos   int
	refs  []*vm.Object
	errs  *multierror.Error
	depth int
	// halted is set once nothing more can be read.
	halted bool
}

func (d *decoder) report(format string, args ...any) {
	d.errs = multierror.Append(d.errs, errors.Wrapf(errors.Errorf(format, args...), "offset %d", d.pos))
}

// halt records a problem that makes the rest of the input unreadable.
func (d *decoder) halt(format string, args ...any) {
	d.report(format, args...)
	d.pos = len(d.data)
	d.halted = true
}

func (d *decoder) need(n int, what string) bool {
	if d.halted {
		return false
	}
	if len(d.data)-d.pos < n {
		d.halt("truncated %s: need %d bytes, have %d", what, n, len(d.data)-d.pos)
		return false
	}
	return true
}

func (d *decoder) u8(what string) (byte, bool) {
	if !d.need(1, what) {
		return 0, false
	}
	b := d.data[d.pos]
	d.pos++
	return b, true
}

func (d *decoder) u16(what string) (uint16, bool) {
	if !d.need(2, what) {
		return 0, false
	}
	v := binary.BigEndian.Uint16(d.data[d.pos:])
	d.pos += 2
	return v, true
}

func (d *decoder) u32(what string) (uint32, bool) {
	if !d.need(4, what) {
		return 0, false
	}
	v := binary.BigEndian.Uint32(d.data[d.pos:])
	d.pos += 4
	return v, true
}

func (d *decoder) str(n int, what string) (string, bool) {
	if !d.need(n, what) {
		return "", false
	}
	s := string(d.data[d.pos : d.pos+n])
	d.pos += n
	return s, true
}

func (d *decoder) value() vm.Value {
	marker, ok := d.u8("type marker")
	if !ok {
		return vm.Undefined
	}
	switch marker {
	case MarkerNumber:
		if !d.need(8, "number") {
			return vm.Undefined
		}
		bits := binary.BigEndian.Uint64(d.data[d.pos:])
		d.pos += 8
		return vm.NumberValue(math.Float64frombits(bits))
	case MarkerBoolean:
		b, ok := d.u8("boolean")
		if !ok {
			return vm.Undefined
		}
		return vm.BooleanValue(b != 0)
	case MarkerString:
		n, ok := d.u16("string length")
		if !ok {
			return vm.Undefined
		}
		s, ok := d.str(int(n), "string")
		if !ok {
			return vm.Undefined
		}
		return vm.NewString(s)
	case MarkerLongString:
		n, ok := d.u32("long string length")
		if !ok {
			return vm.Undefined
		}
		if uint64(n) > uint64(len(d.data)-d.pos) {
			d.halt("truncated long string: need %d bytes, have %d", n, len(d.data)-d.pos)
			return vm.Undefined
		}
		s, _ := d.str(int(n), "long string")
		return vm.NewString(s)
	case MarkerNull:
		return vm.Null
	case MarkerUndefined:
		return vm.Undefined
	case MarkerReference:
		idx, ok := d.u16("reference")
		if !ok {
			return vm.Undefined
		}
		if int(idx) >= len(d.refs) {
			d.report("reference %d out of range (%d objects)", idx, len(d.refs))
			return vm.Undefined
		}
		return vm.ObjectValue(d.refs[idx])
	case MarkerObject:
		return vm.ObjectValue(d.object())
	case MarkerECMAArray:
		// the count is only a hint; members end with the object end marker
		if _, ok := d.u32("array count"); !ok {
			return vm.Undefined
		}
		return vm.ObjectValue(d.object())
	default:
		d.pos--
		d.halt("unknown type marker 0x%02x", marker)
		return vm.Undefined
	}
}

// object reads members up to the end marker. The object is registered for
// references before its members are read, so it may refer to itself.
func (d *decoder) object() *vm.Object {
	obj := d.vm.NewObject()
	d.refs = append(d.refs, obj)
	if d.depth >= maxNesting {
		d.halt("objects nested deeper than %d levels", maxNesting)
		return obj
	}
	d.depth++
	defer func() { d.depth-- }()
	for {
		n, ok := d.u16("member name length")
		if !ok {
			return obj
		}
		if n == 0 {
			end, ok := d.u8("object end marker")
			if !ok {
				return obj
			}
			if end != MarkerObjectEnd {
				d.pos--
				d.halt("expected object end marker, got 0x%02x", end)
			}
			return obj
		}
		name, ok := d.str(int(n), "member name")
		if !ok {
			return obj
		}
		member := d.value()
		if d.halted && member.IsUndefined() {
			return obj
		}
		if err := obj.SetMember(d.vm, vm.URI(name), member); err != nil {
			d.errs = multierror.Append(d.errs, errors.Wrapf(err, "setting member %q", name))
		}
		if d.halted {
			return obj
		}
	}
}
