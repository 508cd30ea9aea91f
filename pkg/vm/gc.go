package vm

// RelayTracer is implemented by relays that hold references to script
// objects.
type RelayTracer interface {
	Relay
	MarkReachable(mark func(*Object))
}

// Reachable returns the set of objects reachable from roots through
// members, prototypes, accessor functions, interfaces, watches, relays and
// super links. Cycles are expected.
func Reachable(roots ...*Object) map[*Object]struct{} {
	seen := make(map[*Object]struct{})
	var stack []*Object
	mark := func(o *Object) {
		if o == nil {
			return
		}
		if _, ok := seen[o]; ok {
			return
		}
		seen[o] = struct{}{}
		stack = append(stack, o)
	}
	markValue := func(v Value) {
		switch v.typ {
		case TypeObject:
			mark(v.AsObject())
		case TypeCharRef:
			mark(v.AsCharRef().live())
		}
	}

	for _, r := range roots {
		mark(r)
	}
	for len(stack) > 0 {
		o := stack[len(stack)-1]
		stack = stack[:len(stack)-1]

		for _, p := range o.props.props {
			if p.accessor != nil {
				p.accessor.markFunctions(mark)
			} else {
				markValue(p.value)
			}
		}
		for _, iface := range o.interfaces {
			mark(iface)
		}
		for _, trig := range o.triggers {
			mark(trig.fn)
			markValue(trig.custom)
		}
		if t, ok := o.relay.(RelayTracer); ok {
			t.MarkReachable(mark)
		}
		mark(o.superBase)
	}
	return seen
}
