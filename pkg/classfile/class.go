package classfile

import (
	"fmt"
)

// ClassName returns the name of this class. this_class is resolved with
// ConstantPool.Str, so it may name a Class entry or a Utf8 entry directly.
func (cf *Class) ClassName() (string, error) {
	return cf.ConstantPool.Str(cf.ThisClass)
}

// SuperClassName returns the fully qualified name of the super class.
// Returns "" if this is java/lang/Object (SuperClass == 0).
func (cf *Class) SuperClassName() (string, error) {
	if cf.SuperClass == 0 {
		return "", nil
	}
	return cf.ConstantPool.ClassName(cf.SuperClass)
}

// InterfaceNames resolves every direct superinterface, in declaration order.
func (cf *Class) InterfaceNames() ([]string, error) {
	names := make([]string, len(cf.Interfaces))
	for i, idx := range cf.Interfaces {
		name, err := cf.ConstantPool.ClassName(idx)
		if err != nil {
			return nil, fmt.Errorf("resolving interface %d: %w", i, err)
		}
		names[i] = name
	}
	return names, nil
}

// Method finds a method by name and descriptor. Methods are scanned in
// declaration order and the first match is returned; a class file that
// declares the same signature twice only exposes the first declaration.
func (cf *Class) Method(name, descriptor string) (*Method, error) {
	for i := range cf.Methods {
		if cf.Methods[i].Name == name && cf.Methods[i].Descriptor == descriptor {
			return &cf.Methods[i], nil
		}
	}
	return nil, fmt.Errorf("%s%s: %w", name, descriptor, ErrMethodNotFound)
}

// MethodsByName returns every method called name, in declaration order.
func (cf *Class) MethodsByName(name string) []*Method {
	var out []*Method
	for i := range cf.Methods {
		if cf.Methods[i].Name == name {
			out = append(out, &cf.Methods[i])
		}
	}
	return out
}

// Field finds a field by name and descriptor (first match).
func (cf *Class) Field(name, descriptor string) (*Field, error) {
	for i := range cf.Fields {
		if cf.Fields[i].Name == name && cf.Fields[i].Descriptor == descriptor {
			return &cf.Fields[i], nil
		}
	}
	return nil, fmt.Errorf("%s:%s: %w", name, descriptor, ErrFieldNotFound)
}

// SourceFile returns the value of the SourceFile attribute, if present.
func (cf *Class) SourceFile() (string, bool, error) {
	a, ok := FindAttribute(cf.Attributes, "SourceFile").(*OpaqueAttribute)
	if !ok {
		return "", false, nil
	}
	r := newReader(a.Data)
	idx, err := r.U2()
	if err != nil {
		return "", false, fmt.Errorf("parsing SourceFile: %w", err)
	}
	if r.Remaining() != 0 {
		return "", false, fmt.Errorf("parsing SourceFile: %w", ErrAttributeLength)
	}
	name, err := cf.ConstantPool.Utf8(idx)
	if err != nil {
		return "", false, fmt.Errorf("resolving SourceFile: %w", err)
	}
	return name, true, nil
}

// BootstrapMethod is one entry of the BootstrapMethods attribute.
type BootstrapMethod struct {
	MethodRef          uint16
	BootstrapArguments []uint16
}

// BootstrapMethods decodes the class's BootstrapMethods attribute. The
// attribute is kept opaque in Attributes and interpreted only on request.
func (cf *Class) BootstrapMethods() ([]BootstrapMethod, error) {
	a, ok := FindAttribute(cf.Attributes, "BootstrapMethods").(*OpaqueAttribute)
	if !ok {
		return nil, nil
	}
	methods, err := parseBootstrapMethods(newReader(a.Data))
	if err != nil {
		return nil, fmt.Errorf("parsing BootstrapMethods: %w", err)
	}
	return methods, nil
}

func parseBootstrapMethods(r *reader) ([]BootstrapMethod, error) {
	numMethods, err := r.U2()
	if err != nil {
		return nil, err
	}
	methods := make([]BootstrapMethod, numMethods)
	for i := range methods {
		if methods[i].MethodRef, err = r.U2(); err != nil {
			return nil, fmt.Errorf("method %d: %w", i, err)
		}
		numArgs, err := r.U2()
		if err != nil {
			return nil, fmt.Errorf("method %d: %w", i, err)
		}
		args := make([]uint16, numArgs)
		for j := range args {
			if args[j], err = r.U2(); err != nil {
				return nil, fmt.Errorf("arg %d of method %d: %w", j, i, err)
			}
		}
		methods[i].BootstrapArguments = args
	}
	if r.Remaining() != 0 {
		return nil, fmt.Errorf("%d trailing bytes: %w", r.Remaining(), ErrAttributeLength)
	}
	return methods, nil
}
