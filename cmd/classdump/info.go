package main

import (
	"fmt"
	"io"
	"strings"

	"github.com/spf13/cobra"

	"github.com/daimatz/classfile/pkg/classfile"
	"github.com/daimatz/classfile/pkg/disasm"
)

type memberInfo struct {
	Name       string   `json:"name"`
	Descriptor string   `json:"descriptor"`
	Flags      []string `json:"flags"`
	CodeLength int      `json:"code_length,omitempty"`
}

type classInfo struct {
	Name         string       `json:"name"`
	MajorVersion uint16       `json:"major_version"`
	MinorVersion uint16       `json:"minor_version"`
	Flags        []string     `json:"flags"`
	SuperClass   string       `json:"super_class,omitempty"`
	Interfaces   []string     `json:"interfaces"`
	SourceFile   string       `json:"source_file,omitempty"`
	Constants    int          `json:"constants"`
	Fields       []memberInfo `json:"fields"`
	Methods      []memberInfo `json:"methods"`
}

func newInfoCmd(opts *options) *cobra.Command {
	return &cobra.Command{
		Use:   "info <class>",
		Short: "Show the class header, fields and methods",
		Long: `The info command prints the version, access flags, super class,
interfaces, fields and methods of a class.

Example:
  classdump info Hello.class
  classdump info java.lang.Object --json`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cf, err := opts.load(args[0])
			if err != nil {
				return err
			}
			info, err := describeClass(cf)
			if err != nil {
				return err
			}
			if opts.jsonOut {
				return printJSON(cmd.OutOrStdout(), info)
			}
			return printClassInfo(cmd.OutOrStdout(), info, cf)
		},
	}
}

func describeClass(cf *classfile.Class) (*classInfo, error) {
	name, err := cf.ClassName()
	if err != nil {
		return nil, fmt.Errorf("resolving this_class: %w", err)
	}
	super, err := cf.SuperClassName()
	if err != nil {
		return nil, fmt.Errorf("resolving super_class: %w", err)
	}
	interfaces, err := cf.InterfaceNames()
	if err != nil {
		return nil, err
	}
	source, _, err := cf.SourceFile()
	if err != nil {
		return nil, err
	}

	info := &classInfo{
		Name:         name,
		MajorVersion: cf.MajorVersion,
		MinorVersion: cf.MinorVersion,
		Flags:        nonNil(classfile.ClassFlagNames(cf.AccessFlags)),
		SuperClass:   super,
		Interfaces:   nonNil(interfaces),
		SourceFile:   source,
		Constants:    cf.ConstantPool.Len(),
		Fields:       []memberInfo{},
		Methods:      []memberInfo{},
	}
	for _, f := range cf.Fields {
		info.Fields = append(info.Fields, memberInfo{
			Name:       f.Name,
			Descriptor: f.Descriptor,
			Flags:      nonNil(classfile.FieldFlagNames(f.AccessFlags)),
		})
	}
	for i := range cf.Methods {
		m := &cf.Methods[i]
		mi := memberInfo{
			Name:       m.Name,
			Descriptor: m.Descriptor,
			Flags:      nonNil(classfile.MethodFlagNames(m.AccessFlags)),
		}
		if code, ok := m.Code(); ok {
			mi.CodeLength = len(code.Code)
		}
		info.Methods = append(info.Methods, mi)
	}
	return info, nil
}

func nonNil(s []string) []string {
	if s == nil {
		return []string{}
	}
	return s
}

// javaVersion maps a class file major version to the Java release that
// introduced it.
func javaVersion(major uint16) string {
	switch {
	case major >= 49:
		return fmt.Sprintf("Java %d", major-44)
	case major >= 45:
		return fmt.Sprintf("Java 1.%d", major-44)
	}
	return "unknown"
}

func printClassInfo(w io.Writer, info *classInfo, cf *classfile.Class) error {
	p := &printer{w: w}
	p.printf("class %s\n", info.Name)
	p.printf("  version: %d.%d (%s)\n", info.MajorVersion, info.MinorVersion, javaVersion(info.MajorVersion))
	p.printf("  flags: (0x%04x) %s\n", uint16(cf.AccessFlags), strings.Join(info.Flags, " "))
	if info.SuperClass != "" {
		p.printf("  super: %s\n", info.SuperClass)
	}
	if len(info.Interfaces) > 0 {
		p.printf("  interfaces: %s\n", strings.Join(info.Interfaces, ", "))
	}
	if info.SourceFile != "" {
		p.printf("  source: %s\n", info.SourceFile)
	}
	p.printf("  constants: %d\n", info.Constants)

	p.printf("\nFields (%d):\n", len(info.Fields))
	for _, f := range info.Fields {
		typ := f.Descriptor
		if ft, err := classfile.ParseFieldDescriptor(f.Descriptor); err == nil {
			typ = ft.String()
		}
		p.printf("  %s%s %s;\n", flagPrefix(f.Flags), typ, f.Name)
	}

	p.printf("\nMethods (%d):\n", len(info.Methods))
	for i := range cf.Methods {
		p.printf("  %s\n", disasm.Signature(&cf.Methods[i]))
	}
	return p.err
}

func flagPrefix(flags []string) string {
	if len(flags) == 0 {
		return ""
	}
	return strings.Join(flags, " ") + " "
}

// printer remembers the first write error.
type printer struct {
	w   io.Writer
	err error
}

func (p *printer) printf(format string, args ...any) {
	if p.err != nil {
		return
	}
	_, p.err = fmt.Fprintf(p.w, format, args...)
}
