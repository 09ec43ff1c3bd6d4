package classfile

import (
	"errors"
	"fmt"
)

var (
	// ErrUnexpectedEOF indicates a read ran past the end of the input.
	ErrUnexpectedEOF = errors.New("classfile: unexpected end of input")
	// ErrInvalidMagic indicates the input does not start with 0xCAFEBABE.
	ErrInvalidMagic = errors.New("classfile: invalid magic number")
	// ErrUnknownConstantTag indicates a constant pool tag outside the known set.
	ErrUnknownConstantTag = errors.New("classfile: unknown constant pool tag")
	// ErrIndexOutOfRange indicates a constant pool index that names no entry,
	// including index 0 and the unusable slot after a Long or Double.
	ErrIndexOutOfRange = errors.New("classfile: constant pool index out of range")
	// ErrTypeMismatch indicates a typed pool lookup hit an entry of another kind.
	ErrTypeMismatch = errors.New("classfile: constant pool type mismatch")
	// ErrAttributeLength indicates an interpreted attribute body disagreed with
	// its declared attribute_length.
	ErrAttributeLength = errors.New("classfile: attribute length mismatch")
	// ErrTrailingData indicates bytes left over after the class attributes.
	ErrTrailingData = errors.New("classfile: trailing data after class file")
	// ErrMethodNotFound is returned by lookups that find no matching method.
	ErrMethodNotFound = errors.New("classfile: method not found")
	// ErrFieldNotFound is returned by lookups that find no matching field.
	ErrFieldNotFound = errors.New("classfile: field not found")
)

// DecodeError reports the section of the class file that failed to decode and
// the byte offset at which that section started.
type DecodeError struct {
	Err     error
	Section string
	Offset  int
}

func (e *DecodeError) Error() string {
	return fmt.Sprintf("classfile: %s at offset %d: %v", e.Section, e.Offset, e.Err)
}

func (e *DecodeError) Unwrap() error {
	return e.Err
}
