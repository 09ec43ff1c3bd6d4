package classfile

import (
	"errors"
	"fmt"
	"strings"
)

// ErrInvalidDescriptor indicates a malformed field or method descriptor.
var ErrInvalidDescriptor = errors.New("classfile: invalid descriptor")

var baseTypeNames = map[byte]string{
	'B': "byte",
	'C': "char",
	'D': "double",
	'F': "float",
	'I': "int",
	'J': "long",
	'S': "short",
	'Z': "boolean",
}

// FieldType is a parsed field descriptor such as "I", "[J" or
// "Ljava/lang/String;".
type FieldType struct {
	// Base is one of BCDFIJSZ, or 'L' for a class type.
	Base byte
	// ClassName is the internal name for class types, e.g. java/lang/String.
	ClassName string
	// Dims is the number of array dimensions.
	Dims int
}

// Slots returns the number of local variable slots a value of this type uses.
func (t FieldType) Slots() int {
	if t.Dims == 0 && (t.Base == 'J' || t.Base == 'D') {
		return 2
	}
	return 1
}

// String renders the type in Java source form, e.g. "java.lang.String[]".
func (t FieldType) String() string {
	var name string
	if t.Base == 'L' {
		name = strings.ReplaceAll(t.ClassName, "/", ".")
	} else {
		name = baseTypeNames[t.Base]
	}
	return name + strings.Repeat("[]", t.Dims)
}

// MethodDescriptor is a parsed method descriptor.
type MethodDescriptor struct {
	Params []FieldType
	// Return is nil for void methods.
	Return *FieldType
}

// ArgSlots returns the number of local variable slots the parameters take,
// not counting the receiver of instance methods.
func (d MethodDescriptor) ArgSlots() int {
	n := 0
	for _, p := range d.Params {
		n += p.Slots()
	}
	return n
}

// ParseFieldDescriptor parses a complete field descriptor.
func ParseFieldDescriptor(desc string) (FieldType, error) {
	t, n, err := parseFieldType(desc, 0)
	if err != nil {
		return FieldType{}, err
	}
	if n != len(desc) {
		return FieldType{}, fmt.Errorf("%q: trailing characters: %w", desc, ErrInvalidDescriptor)
	}
	return t, nil
}

// ParseMethodDescriptor parses a descriptor of the form "(params)return".
func ParseMethodDescriptor(desc string) (MethodDescriptor, error) {
	var md MethodDescriptor
	if len(desc) == 0 || desc[0] != '(' {
		return md, fmt.Errorf("%q: missing '(': %w", desc, ErrInvalidDescriptor)
	}
	i := 1
	for {
		if i >= len(desc) {
			return md, fmt.Errorf("%q: missing ')': %w", desc, ErrInvalidDescriptor)
		}
		if desc[i] == ')' {
			i++
			break
		}
		t, next, err := parseFieldType(desc, i)
		if err != nil {
			return md, err
		}
		md.Params = append(md.Params, t)
		i = next
	}
	if i == len(desc)-1 && desc[i] == 'V' {
		return md, nil
	}
	ret, next, err := parseFieldType(desc, i)
	if err != nil {
		return md, err
	}
	if next != len(desc) {
		return md, fmt.Errorf("%q: trailing characters: %w", desc, ErrInvalidDescriptor)
	}
	md.Return = &ret
	return md, nil
}

// parseFieldType parses one field type starting at desc[i] and returns the
// index just past it.
func parseFieldType(desc string, i int) (FieldType, int, error) {
	var t FieldType
	for i < len(desc) && desc[i] == '[' {
		t.Dims++
		i++
	}
	if i >= len(desc) {
		return t, i, fmt.Errorf("%q: truncated type: %w", desc, ErrInvalidDescriptor)
	}
	c := desc[i]
	switch {
	case c == 'L':
		end := strings.IndexByte(desc[i:], ';')
		if end <= 1 {
			return t, i, fmt.Errorf("%q: bad class type at %d: %w", desc, i, ErrInvalidDescriptor)
		}
		t.Base = 'L'
		t.ClassName = desc[i+1 : i+end]
		return t, i + end + 1, nil
	case baseTypeNames[c] != "":
		t.Base = c
		return t, i + 1, nil
	default:
		return t, i, fmt.Errorf("%q: invalid type descriptor char '%c': %w", desc, c, ErrInvalidDescriptor)
	}
}
