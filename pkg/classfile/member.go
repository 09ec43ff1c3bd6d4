package classfile

import (
	"fmt"
)

// Code returns the method's first Code attribute. ok is false for methods
// without one, which is valid for abstract and native methods.
func (m *Method) Code() (seg CodeSegment, ok bool) {
	for _, a := range m.Attributes {
		if c, isCode := a.(*CodeAttribute); isCode {
			return CodeSegment{
				MaxStack:          c.MaxStack,
				MaxLocals:         c.MaxLocals,
				Code:              c.Code,
				ExceptionHandlers: c.ExceptionHandlers,
				Attributes:        c.Attributes,
			}, true
		}
	}
	return CodeSegment{}, false
}

func (m *Method) IsPublic() bool       { return m.AccessFlags.IsPublic() }
func (m *Method) IsPrivate() bool      { return m.AccessFlags.IsPrivate() }
func (m *Method) IsProtected() bool    { return m.AccessFlags.IsProtected() }
func (m *Method) IsStatic() bool       { return m.AccessFlags.IsStatic() }
func (m *Method) IsFinal() bool        { return m.AccessFlags.IsFinal() }
func (m *Method) IsSynchronized() bool { return m.AccessFlags.IsSynchronized() }
func (m *Method) IsNative() bool       { return m.AccessFlags.IsNative() }
func (m *Method) IsAbstract() bool     { return m.AccessFlags.IsAbstract() }
func (m *Method) IsBridge() bool       { return m.AccessFlags.IsBridge() }
func (m *Method) IsVarargs() bool      { return m.AccessFlags.IsVarargs() }
func (m *Method) IsSynthetic() bool    { return m.AccessFlags.IsSynthetic() }

func (f *Field) IsPublic() bool    { return f.AccessFlags.IsPublic() }
func (f *Field) IsPrivate() bool   { return f.AccessFlags.IsPrivate() }
func (f *Field) IsProtected() bool { return f.AccessFlags.IsProtected() }
func (f *Field) IsStatic() bool    { return f.AccessFlags.IsStatic() }
func (f *Field) IsFinal() bool     { return f.AccessFlags.IsFinal() }
func (f *Field) IsVolatile() bool  { return f.AccessFlags.IsVolatile() }
func (f *Field) IsTransient() bool { return f.AccessFlags.IsTransient() }
func (f *Field) IsSynthetic() bool { return f.AccessFlags.IsSynthetic() }
func (f *Field) IsEnum() bool      { return f.AccessFlags.IsEnum() }

// ConstantValueIndex returns the pool index carried by the field's
// ConstantValue attribute.
func (f *Field) ConstantValueIndex() (uint16, bool) {
	a, ok := FindAttribute(f.Attributes, "ConstantValue").(*OpaqueAttribute)
	if !ok || len(a.Data) != 2 {
		return 0, false
	}
	return uint16(a.Data[0])<<8 | uint16(a.Data[1]), true
}

// memberInfo is the shape shared by field_info and method_info.
type memberInfo struct {
	accessFlags AccessFlags
	nameIndex   uint16
	descIndex   uint16
	name        string
	desc        string
	attrs       []Attribute
}

func parseMember(r *reader, pool *ConstantPool) (memberInfo, error) {
	var m memberInfo
	flags, err := r.U2()
	if err != nil {
		return m, fmt.Errorf("reading access flags: %w", err)
	}
	m.accessFlags = AccessFlags(flags)
	if m.nameIndex, err = r.U2(); err != nil {
		return m, fmt.Errorf("reading name index: %w", err)
	}
	if m.descIndex, err = r.U2(); err != nil {
		return m, fmt.Errorf("reading descriptor index: %w", err)
	}
	if m.name, err = pool.Utf8(m.nameIndex); err != nil {
		return m, fmt.Errorf("resolving name: %w", err)
	}
	if m.desc, err = pool.Utf8(m.descIndex); err != nil {
		return m, fmt.Errorf("resolving descriptor: %w", err)
	}
	if m.attrs, err = parseAttributes(r, pool); err != nil {
		return m, fmt.Errorf("parsing attributes of %s: %w", m.name, err)
	}
	return m, nil
}

func parseInterfaces(r *reader) ([]uint16, error) {
	count, err := r.U2()
	if err != nil {
		return nil, fmt.Errorf("reading interfaces count: %w", err)
	}
	interfaces := make([]uint16, count)
	for i := range interfaces {
		if interfaces[i], err = r.U2(); err != nil {
			return nil, fmt.Errorf("reading interface %d: %w", i, err)
		}
	}
	return interfaces, nil
}

func parseFields(r *reader, pool *ConstantPool) ([]Field, error) {
	count, err := r.U2()
	if err != nil {
		return nil, fmt.Errorf("reading fields count: %w", err)
	}
	fields := make([]Field, count)
	for i := range fields {
		m, err := parseMember(r, pool)
		if err != nil {
			return nil, fmt.Errorf("field %d: %w", i, err)
		}
		fields[i] = Field{
			AccessFlags:     m.accessFlags,
			NameIndex:       m.nameIndex,
			DescriptorIndex: m.descIndex,
			Name:            m.name,
			Descriptor:      m.desc,
			Attributes:      m.attrs,
		}
	}
	return fields, nil
}

func parseMethods(r *reader, pool *ConstantPool) ([]Method, error) {
	count, err := r.U2()
	if err != nil {
		return nil, fmt.Errorf("reading methods count: %w", err)
	}
	methods := make([]Method, count)
	for i := range methods {
		m, err := parseMember(r, pool)
		if err != nil {
			return nil, fmt.Errorf("method %d: %w", i, err)
		}
		methods[i] = Method{
			AccessFlags:     m.accessFlags,
			NameIndex:       m.nameIndex,
			DescriptorIndex: m.descIndex,
			Name:            m.name,
			Descriptor:      m.desc,
			Attributes:      m.attrs,
		}
	}
	return methods, nil
}
