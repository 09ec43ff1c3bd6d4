package main

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/daimatz/classfile/pkg/classfile"
	"github.com/daimatz/classfile/pkg/disasm"
)

func newDisasmCmd(opts *options) *cobra.Command {
	return &cobra.Command{
		Use:   "disasm <class> [method]",
		Short: "Disassemble method bytecode",
		Long: `The disasm command prints a javap-style listing of each method's code
and exception table. A method may be selected by name, or by name and
descriptor such as "add(II)I".

Example:
  classdump disasm Hello.class
  classdump disasm Hello.class main`,
		Args: cobra.RangeArgs(1, 2),
		RunE: func(cmd *cobra.Command, args []string) error {
			cf, err := opts.load(args[0])
			if err != nil {
				return err
			}
			if len(args) == 1 {
				return disasm.Format(cmd.OutOrStdout(), cf)
			}

			methods, err := selectMethods(cf, args[1])
			if err != nil {
				return err
			}
			p := disasm.NewPrinter(cmd.OutOrStdout(), cf.ConstantPool)
			for i, m := range methods {
				if i > 0 {
					fmt.Fprintln(cmd.OutOrStdout())
				}
				if err := p.Method(m); err != nil {
					return err
				}
			}
			return nil
		},
	}
}

// selectMethods matches "name" against every overload and "name(desc)ret"
// against the exact signature.
func selectMethods(cf *classfile.Class, sel string) ([]*classfile.Method, error) {
	if i := strings.IndexByte(sel, '('); i >= 0 {
		m, err := cf.Method(sel[:i], sel[i:])
		if err != nil {
			return nil, err
		}
		return []*classfile.Method{m}, nil
	}
	methods := cf.MethodsByName(sel)
	if len(methods) == 0 {
		return nil, fmt.Errorf("%s: %w", sel, classfile.ErrMethodNotFound)
	}
	return methods, nil
}
