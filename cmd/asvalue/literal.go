package main

import (
	"math"
	"strings"

	"github.com/pkg/errors"

	"asvm/pkg/vm"
)

// parseLiteral reads the value syntax accepted on the command line.
func parseLiteral(vmInstance *vm.VM, s string) (vm.Value, error) {
	switch s {
	case "undefined":
		return vm.Undefined, nil
	case "null":
		return vm.Null, nil
	case "true":
		return vm.True, nil
	case "false":
		return vm.False, nil
	}

	switch {
	case strings.HasPrefix(s, "n:"):
		return parseNumberLiteral(s[2:])
	case strings.HasPrefix(s, "s:"):
		return vm.NewString(s[2:]), nil
	case strings.HasPrefix(s, "j:"):
		v, err := vm.UnmarshalJSON(vmInstance, []byte(s[2:]))
		if err != nil {
			return vm.Undefined, errors.Wrapf(err, "invalid JSON literal %q", s)
		}
		return v, nil
	}
	return vm.NewString(s), nil
}

func parseNumberLiteral(s string) (vm.Value, error) {
	switch s {
	case "NaN":
		return vm.NaN, nil
	case "Infinity":
		return vm.NumberValue(math.Inf(1)), nil
	case "-Infinity":
		return vm.NumberValue(math.Inf(-1)), nil
	}
	n := vm.ParseNumber(s)
	if math.IsNaN(n) {
		return vm.Undefined, errors.Errorf("invalid number literal %q", s)
	}
	return vm.NumberValue(n), nil
}
