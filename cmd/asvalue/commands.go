package main

import (
	"encoding/hex"
	"fmt"
	"sort"

	"github.com/pkg/errors"
	"github.com/spf13/cobra"

	"asvm/pkg/amf"
	"asvm/pkg/vm"
)

func (c *rootCommand) coerceCmd(name, short string, render func(vm.Value) string) *cobra.Command {
	return &cobra.Command{
		Use:   name + " <literal>",
		Short: short,
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			v, err := parseLiteral(c.vm, args[0])
			if err != nil {
				return err
			}
			_, err = fmt.Fprintln(cmd.OutOrStdout(), render(v))
			return err
		},
	}
}

func (c *rootCommand) numberCmd() *cobra.Command {
	var radix int
	numberCmd := &cobra.Command{
		Use:   "number <literal>",
		Short: "Convert a literal to a number",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if radix < 2 || radix > 36 {
				return errors.Errorf("radix %d out of range 2..36", radix)
			}
			v, err := parseLiteral(c.vm, args[0])
			if err != nil {
				return err
			}
			_, err = fmt.Fprintln(cmd.OutOrStdout(), vm.DoubleToStringRadix(v.ToNumber(c.vm), radix))
			return err
		},
	}
	numberCmd.Flags().IntVar(&radix, "radix", 10, "output radix (2..36); fractions are dropped outside base 10")
	return numberCmd
}

func (c *rootCommand) equalsCmd() *cobra.Command {
	var strict bool
	equalsCmd := &cobra.Command{
		Use:   "equals <literal> <literal>",
		Short: "Compare two literals with == (or === with --strict)",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := parseLiteral(c.vm, args[0])
			if err != nil {
				return err
			}
			b, err := parseLiteral(c.vm, args[1])
			if err != nil {
				return err
			}
			var eq bool
			if strict {
				eq = a.StrictlyEquals(b)
			} else {
				eq = a.Equals(c.vm, b)
			}
			_, err = fmt.Fprintln(cmd.OutOrStdout(), eq)
			return err
		},
	}
	equalsCmd.Flags().BoolVar(&strict, "strict", false, "use strict equality")
	return equalsCmd
}

func (c *rootCommand) amfCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "amf <literal>",
		Short: "Print the AMF0 encoding of a literal as hex",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			v, err := parseLiteral(c.vm, args[0])
			if err != nil {
				return err
			}
			data, err := amf.Encode(c.vm, v)
			if err != nil {
				return err
			}
			_, err = fmt.Fprintln(cmd.OutOrStdout(), hex.EncodeToString(data))
			return err
		},
	}
}

// dumpCmd lists every own member, hidden ones included, sorted by name.
func (c *rootCommand) dumpCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "dump <literal>",
		Short: "List the own members of an object literal",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			v, err := parseLiteral(c.vm, args[0])
			if err != nil {
				return err
			}
			obj := v.ToObject(c.vm)
			if obj == nil {
				return errors.Errorf("%s is not an object", v.Inspect())
			}
			members, err := obj.Properties().Dump(c.vm)
			if err != nil {
				return err
			}
			names := make([]string, 0, len(members))
			for name := range members {
				names = append(names, name)
			}
			sort.Strings(names)
			for _, name := range names {
				if _, err := fmt.Fprintf(cmd.OutOrStdout(), "%s = %s\n", name, members[name].Inspect()); err != nil {
					return err
				}
			}
			return nil
		},
	}
}
