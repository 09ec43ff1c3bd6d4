package classfile

import (
	"fmt"
)

// Attribute is either a *CodeAttribute or an *OpaqueAttribute. Only the
// Code attribute is interpreted during decoding; every other attribute keeps
// its raw body.
type Attribute interface {
	AttributeName() string
	attribute()
}

// CodeAttribute represents the Code attribute of a method.
type CodeAttribute struct {
	NameIndex         uint16
	MaxStack          uint16
	MaxLocals         uint16
	Code              []byte
	ExceptionHandlers []ExceptionHandler
	Attributes        []Attribute
}

func (a *CodeAttribute) AttributeName() string { return "Code" }
func (a *CodeAttribute) attribute()            {}

// OpaqueAttribute is an attribute whose body is kept verbatim.
type OpaqueAttribute struct {
	NameIndex uint16
	Name      string
	Data      []byte
}

func (a *OpaqueAttribute) AttributeName() string { return a.Name }
func (a *OpaqueAttribute) attribute()            {}

// FindAttribute returns the first attribute named name, or nil.
func FindAttribute(attrs []Attribute, name string) Attribute {
	for _, a := range attrs {
		if a.AttributeName() == name {
			return a
		}
	}
	return nil
}

func parseAttributes(r *reader, pool *ConstantPool) ([]Attribute, error) {
	count, err := r.U2()
	if err != nil {
		return nil, fmt.Errorf("reading attributes count: %w", err)
	}
	attrs := make([]Attribute, 0, count)
	for i := uint16(0); i < count; i++ {
		attr, err := parseAttribute(r, pool)
		if err != nil {
			return nil, fmt.Errorf("attribute %d: %w", i, err)
		}
		attrs = append(attrs, attr)
	}
	return attrs, nil
}

// parseAttribute consumes exactly 6+attribute_length bytes from r, whether or
// not the body is interpreted.
func parseAttribute(r *reader, pool *ConstantPool) (Attribute, error) {
	nameIndex, err := r.U2()
	if err != nil {
		return nil, fmt.Errorf("reading name index: %w", err)
	}
	length, err := r.U4()
	if err != nil {
		return nil, fmt.Errorf("reading length: %w", err)
	}
	name, err := pool.Utf8(nameIndex)
	if err != nil {
		return nil, fmt.Errorf("resolving name: %w", err)
	}
	body, err := r.sub(int(length))
	if err != nil {
		return nil, fmt.Errorf("reading %s body: %w", name, err)
	}

	if name != "Code" {
		return &OpaqueAttribute{NameIndex: nameIndex, Name: name, Data: append([]byte(nil), body.data...)}, nil
	}

	code, err := parseCodeAttribute(body, pool)
	if err != nil {
		return nil, fmt.Errorf("parsing Code: %w", err)
	}
	if body.Remaining() != 0 {
		return nil, fmt.Errorf("code body has %d trailing bytes of %d declared: %w", body.Remaining(), length, ErrAttributeLength)
	}
	code.NameIndex = nameIndex
	return code, nil
}

func parseCodeAttribute(r *reader, pool *ConstantPool) (*CodeAttribute, error) {
	maxStack, err := r.U2()
	if err != nil {
		return nil, fmt.Errorf("reading max_stack: %w", err)
	}
	maxLocals, err := r.U2()
	if err != nil {
		return nil, fmt.Errorf("reading max_locals: %w", err)
	}
	codeLength, err := r.U4()
	if err != nil {
		return nil, fmt.Errorf("reading code_length: %w", err)
	}
	code, err := r.Bytes(int(codeLength))
	if err != nil {
		return nil, fmt.Errorf("reading %d code bytes: %w", codeLength, err)
	}

	exTableLen, err := r.U2()
	if err != nil {
		return nil, fmt.Errorf("reading exception_table_length: %w", err)
	}
	handlers := make([]ExceptionHandler, exTableLen)
	for i := range handlers {
		h := &handlers[i]
		for _, dst := range []*uint16{&h.StartPC, &h.EndPC, &h.HandlerPC, &h.CatchType} {
			if *dst, err = r.U2(); err != nil {
				return nil, fmt.Errorf("reading exception handler %d: %w", i, err)
			}
		}
	}

	attrs, err := parseAttributes(r, pool)
	if err != nil {
		return nil, fmt.Errorf("parsing nested attributes: %w", err)
	}

	return &CodeAttribute{
		MaxStack:          maxStack,
		MaxLocals:         maxLocals,
		Code:              code,
		ExceptionHandlers: handlers,
		Attributes:        attrs,
	}, nil
}
