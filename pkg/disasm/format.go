package disasm

import (
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/daimatz/classfile/pkg/classfile"
)

// String renders the instruction without constant pool context, e.g.
// "iinc 3, -1" or "goto 12".
func (ins Instruction) String() string {
	name := ins.Opcode.String()
	if ins.Wide {
		name = "wide " + name
	}
	switch k := opcodes[ins.Opcode].kind; k {
	case operandNone:
		return name
	case operandLocal:
		return fmt.Sprintf("%s %d", name, ins.Index)
	case operandByte, operandShort:
		return fmt.Sprintf("%s %d", name, ins.Value)
	case operandConst1, operandConst2, operandInvokeDynamic:
		return fmt.Sprintf("%s #%d", name, ins.Index)
	case operandInvokeInterface, operandMultianewarray:
		return fmt.Sprintf("%s #%d, %d", name, ins.Index, ins.Value)
	case operandBranch2, operandBranch4:
		return fmt.Sprintf("%s %d", name, ins.Target)
	case operandIinc:
		return fmt.Sprintf("%s %d, %d", name, ins.Index, ins.Value)
	case operandNewarray:
		if t, ok := arrayTypeNames[ins.Value]; ok {
			return name + " " + t
		}
		return fmt.Sprintf("%s %d", name, ins.Value)
	case operandTableswitch, operandLookupswitch:
		return fmt.Sprintf("%s { %d cases, default: %d }", name, len(ins.Switch.Keys), ins.Switch.Default)
	}
	return name
}

// Printer writes javap-style listings of decoded methods.
type Printer struct {
	w    io.Writer
	pool *classfile.ConstantPool
	err  error
}

// NewPrinter returns a printer that resolves operands through pool.
func NewPrinter(w io.Writer, pool *classfile.ConstantPool) *Printer {
	return &Printer{w: w, pool: pool}
}

func (p *Printer) printf(format string, args ...any) {
	if p.err != nil {
		return
	}
	_, p.err = fmt.Fprintf(p.w, format, args...)
}

// Format writes the listing of every method in cf.
func Format(w io.Writer, cf *classfile.Class) error {
	p := NewPrinter(w, cf.ConstantPool)
	for i := range cf.Methods {
		if i > 0 {
			p.printf("\n")
		}
		if err := p.Method(&cf.Methods[i]); err != nil {
			return err
		}
	}
	return p.err
}

// Method writes the signature, flags, code and exception table of m.
func (p *Printer) Method(m *classfile.Method) error {
	p.printf("  %s\n", Signature(m))
	p.printf("    descriptor: %s\n", m.Descriptor)
	p.printf("    flags: (0x%04x) %s\n", uint16(m.AccessFlags), accFlags(classfile.MethodFlagNames(m.AccessFlags)))

	seg, ok := m.Code()
	if !ok {
		return p.err
	}
	code, err := Decode(seg.Code)
	if err != nil {
		return fmt.Errorf("%s%s: %w", m.Name, m.Descriptor, err)
	}

	args := 0
	if md, err := classfile.ParseMethodDescriptor(m.Descriptor); err == nil {
		args = md.ArgSlots()
	}
	if !m.IsStatic() {
		args++
	}
	p.printf("    Code:\n")
	p.printf("      stack=%d, locals=%d, args_size=%d\n", seg.MaxStack, seg.MaxLocals, args)
	for _, ins := range code {
		if err := p.Instruction(ins); err != nil {
			return fmt.Errorf("%s%s: %w", m.Name, m.Descriptor, err)
		}
	}

	if len(seg.ExceptionHandlers) > 0 {
		p.printf("      Exception table:\n")
		p.printf("         from    to  target type\n")
		for _, h := range seg.ExceptionHandlers {
			catch := "any"
			if h.CatchType != 0 {
				name, err := p.pool.ClassName(h.CatchType)
				if err != nil {
					return fmt.Errorf("%s%s: catch type: %w", m.Name, m.Descriptor, err)
				}
				catch = "Class " + name
			}
			p.printf("        %5d %5d %5d   %s\n", h.StartPC, h.EndPC, h.HandlerPC, catch)
		}
	}
	return p.err
}

// Instruction writes one listing line, with constant pool operands resolved
// into a trailing comment.
func (p *Printer) Instruction(ins Instruction) error {
	text := ins.String()
	if ins.Switch != nil {
		p.printf("%10d: %s { // %d\n", ins.PC, strings.Fields(text)[0], len(ins.Switch.Keys))
		for i, key := range ins.Switch.Keys {
			p.printf("%24d: %d\n", key, ins.Switch.Targets[i])
		}
		p.printf("%24s: %d\n", "default", ins.Switch.Default)
		p.printf("%12s}\n", "")
		return p.err
	}
	if !ins.HasConstant() {
		p.printf("%10d: %s\n", ins.PC, text)
		return p.err
	}
	comment, err := p.describe(uint16(ins.Index))
	if err != nil {
		return fmt.Errorf("pc %d: %w", ins.PC, err)
	}
	p.printf("%10d: %-30s// %s\n", ins.PC, text, comment)
	return p.err
}

// describe renders a pool entry the way javap comments it.
func (p *Printer) describe(idx uint16) (string, error) {
	entry, err := p.pool.Get(idx)
	if err != nil {
		return "", err
	}
	switch e := entry.(type) {
	case *classfile.ConstantInteger:
		return "int " + strconv.FormatInt(int64(e.Value), 10), nil
	case *classfile.ConstantFloat:
		return "float " + strconv.FormatFloat(float64(e.Value), 'g', -1, 32) + "f", nil
	case *classfile.ConstantLong:
		return "long " + strconv.FormatInt(e.Value, 10) + "l", nil
	case *classfile.ConstantDouble:
		return "double " + strconv.FormatFloat(e.Value, 'g', -1, 64) + "d", nil
	case *classfile.ConstantString:
		s, err := p.pool.Utf8(e.StringIndex)
		if err != nil {
			return "", err
		}
		return "String " + s, nil
	case *classfile.ConstantClass:
		name, err := p.pool.Utf8(e.NameIndex)
		if err != nil {
			return "", err
		}
		return "class " + name, nil
	case *classfile.ConstantFieldref:
		ref, err := p.pool.ResolveFieldref(idx)
		if err != nil {
			return "", err
		}
		return "Field " + memberString(ref), nil
	case *classfile.ConstantMethodref:
		ref, err := p.pool.ResolveMethodref(idx)
		if err != nil {
			return "", err
		}
		return "Method " + memberString(ref), nil
	case *classfile.ConstantInterfaceMethodref:
		ref, err := p.pool.ResolveInterfaceMethodref(idx)
		if err != nil {
			return "", err
		}
		return "InterfaceMethod " + memberString(ref), nil
	case *classfile.ConstantMethodType:
		desc, err := p.pool.Utf8(e.DescriptorIndex)
		if err != nil {
			return "", err
		}
		return "MethodType " + desc, nil
	case *classfile.ConstantMethodHandle:
		return fmt.Sprintf("MethodHandle %d:#%d", e.ReferenceKind, e.ReferenceIndex), nil
	case *classfile.ConstantInvokeDynamic:
		name, desc, err := p.pool.NameAndTypeStrings(e.NameAndTypeIndex)
		if err != nil {
			return "", err
		}
		return fmt.Sprintf("InvokeDynamic #%d:%s:%s", e.BootstrapMethodAttrIndex, name, desc), nil
	case *classfile.ConstantDynamic:
		name, desc, err := p.pool.NameAndTypeStrings(e.NameAndTypeIndex)
		if err != nil {
			return "", err
		}
		return fmt.Sprintf("Dynamic #%d:%s:%s", e.BootstrapMethodAttrIndex, name, desc), nil
	}
	return entry.Tag().String(), nil
}

func memberString(ref *classfile.MemberRef) string {
	name := ref.Name
	if strings.HasPrefix(name, "<") {
		name = strconv.Quote(name)
	}
	return ref.ClassName + "." + name + ":" + ref.Descriptor
}

func accFlags(names []string) string {
	out := make([]string, len(names))
	for i, n := range names {
		out[i] = "ACC_" + strings.ToUpper(n)
	}
	return strings.Join(out, ", ")
}

// Signature renders m in Java source form, e.g. "public static int add(int, int);".
// Methods with malformed descriptors fall back to name plus raw descriptor.
func Signature(m *classfile.Method) string {
	var b strings.Builder
	for _, f := range classfile.MethodFlagNames(m.AccessFlags) {
		switch f {
		case "bridge", "varargs", "synthetic", "strict":
			continue
		}
		b.WriteString(f)
		b.WriteByte(' ')
	}
	md, err := classfile.ParseMethodDescriptor(m.Descriptor)
	if err != nil {
		return b.String() + m.Name + m.Descriptor + ";"
	}
	if m.Name != "<init>" && m.Name != "<clinit>" {
		if md.Return == nil {
			b.WriteString("void ")
		} else {
			b.WriteString(md.Return.String() + " ")
		}
	}
	if m.Name == "<clinit>" {
		b.WriteString("{}")
		return b.String()
	}
	b.WriteString(m.Name)
	b.WriteByte('(')
	for i, param := range md.Params {
		if i > 0 {
			b.WriteString(", ")
		}
		b.WriteString(param.String())
	}
	b.WriteString(");")
	return b.String()
}
