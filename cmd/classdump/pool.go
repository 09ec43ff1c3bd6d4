package main

import (
	"fmt"
	"strconv"

	"github.com/spf13/cobra"

	"github.com/daimatz/classfile/pkg/classfile"
)

type poolEntry struct {
	Index   uint16 `json:"index"`
	Tag     string `json:"tag"`
	Value   string `json:"value"`
	Comment string `json:"comment,omitempty"`
}

func newPoolCmd(opts *options) *cobra.Command {
	return &cobra.Command{
		Use:   "pool <class>",
		Short: "List the constant pool",
		Long: `The pool command lists every constant pool entry with its index, kind
and value. Symbolic references are followed and shown as comments.

Example:
  classdump pool Hello.class`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cf, err := opts.load(args[0])
			if err != nil {
				return err
			}
			entries, err := listPool(cf.ConstantPool)
			if err != nil {
				return err
			}
			if opts.jsonOut {
				return printJSON(cmd.OutOrStdout(), entries)
			}
			p := &printer{w: cmd.OutOrStdout()}
			p.printf("Constant pool:\n")
			for _, e := range entries {
				idx := "#" + strconv.Itoa(int(e.Index))
				if e.Comment == "" {
					p.printf("%6s = %-18s %s\n", idx, e.Tag, e.Value)
				} else {
					p.printf("%6s = %-18s %-14s // %s\n", idx, e.Tag, e.Value, e.Comment)
				}
			}
			return p.err
		},
	}
}

func listPool(cp *classfile.ConstantPool) ([]poolEntry, error) {
	entries := []poolEntry{}
	var firstErr error
	cp.Entries(func(index uint16, entry classfile.ConstantPoolEntry) {
		if firstErr != nil {
			return
		}
		value, comment, err := renderConstant(cp, index, entry)
		if err != nil {
			firstErr = fmt.Errorf("constant #%d: %w", index, err)
			return
		}
		entries = append(entries, poolEntry{Index: index, Tag: entry.Tag().String(), Value: value, Comment: comment})
	})
	return entries, firstErr
}

func ref(i uint16) string { return "#" + strconv.Itoa(int(i)) }

func renderConstant(cp *classfile.ConstantPool, index uint16, entry classfile.ConstantPoolEntry) (value, comment string, err error) {
	switch e := entry.(type) {
	case *classfile.ConstantUtf8:
		return e.Value, "", nil
	case *classfile.ConstantInteger:
		return strconv.FormatInt(int64(e.Value), 10), "", nil
	case *classfile.ConstantFloat:
		return strconv.FormatFloat(float64(e.Value), 'g', -1, 32) + "f", "", nil
	case *classfile.ConstantLong:
		return strconv.FormatInt(e.Value, 10) + "l", "", nil
	case *classfile.ConstantDouble:
		return strconv.FormatFloat(e.Value, 'g', -1, 64) + "d", "", nil
	case *classfile.ConstantClass:
		name, err := cp.Utf8(e.NameIndex)
		return ref(e.NameIndex), name, err
	case *classfile.ConstantString:
		s, err := cp.Utf8(e.StringIndex)
		return ref(e.StringIndex), s, err
	case *classfile.ConstantModule:
		name, err := cp.Utf8(e.NameIndex)
		return ref(e.NameIndex), name, err
	case *classfile.ConstantPackage:
		name, err := cp.Utf8(e.NameIndex)
		return ref(e.NameIndex), name, err
	case *classfile.ConstantMethodType:
		desc, err := cp.Utf8(e.DescriptorIndex)
		return ref(e.DescriptorIndex), desc, err
	case *classfile.ConstantNameAndType:
		name, desc, err := cp.NameAndTypeStrings(index)
		return ref(e.NameIndex) + ":" + ref(e.DescriptorIndex), name + ":" + desc, err
	case *classfile.ConstantFieldref:
		return memberConstant(cp.ResolveFieldref, index, e.ClassIndex, e.NameAndTypeIndex)
	case *classfile.ConstantMethodref:
		return memberConstant(cp.ResolveMethodref, index, e.ClassIndex, e.NameAndTypeIndex)
	case *classfile.ConstantInterfaceMethodref:
		return memberConstant(cp.ResolveInterfaceMethodref, index, e.ClassIndex, e.NameAndTypeIndex)
	case *classfile.ConstantMethodHandle:
		return strconv.Itoa(int(e.ReferenceKind)) + ":" + ref(e.ReferenceIndex), "", nil
	case *classfile.ConstantDynamic:
		name, desc, err := cp.NameAndTypeStrings(e.NameAndTypeIndex)
		return ref(e.BootstrapMethodAttrIndex) + ":" + ref(e.NameAndTypeIndex), name + ":" + desc, err
	case *classfile.ConstantInvokeDynamic:
		name, desc, err := cp.NameAndTypeStrings(e.NameAndTypeIndex)
		return ref(e.BootstrapMethodAttrIndex) + ":" + ref(e.NameAndTypeIndex), name + ":" + desc, err
	}
	return "", "", fmt.Errorf("unhandled %s", entry.Tag())
}

func memberConstant(resolve func(uint16) (*classfile.MemberRef, error), index, class, nat uint16) (value, comment string, err error) {
	m, err := resolve(index)
	if err != nil {
		return "", "", err
	}
	return ref(class) + "." + ref(nat), m.ClassName + "." + m.Name + ":" + m.Descriptor, nil
}
