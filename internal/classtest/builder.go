// Package classtest assembles class file images byte by byte for tests.
package classtest

import (
	"encoding/binary"
	"math"
)

var be = binary.BigEndian

// Handler is one exception table entry.
type Handler struct {
	StartPC, EndPC, HandlerPC, CatchType uint16
}

// Builder accumulates a class file. Constant helpers return the pool index
// of the entry they add; Utf8 and Class entries are deduplicated.
type Builder struct {
	Magic        uint32
	Minor, Major uint16
	Flags        uint16
	This, Super  uint16
	// PoolCount, when non-zero, overrides the emitted constant_pool_count.
	PoolCount uint16

	pool       []byte
	next       uint16
	utf8       map[string]uint16
	classes    map[string]uint16
	interfaces []uint16
	fields     [][]byte
	methods    [][]byte
	attrs      [][]byte
}

// New returns a builder for a Java 8 (major 52) class.
func New() *Builder {
	return &Builder{
		Magic:   0xCAFEBABE,
		Major:   52,
		Flags:   0x0021,
		next:    1,
		utf8:    make(map[string]uint16),
		classes: make(map[string]uint16),
	}
}

func (b *Builder) add(tag byte, payload []byte, slots uint16) uint16 {
	idx := b.next
	b.pool = append(b.pool, tag)
	b.pool = append(b.pool, payload...)
	b.next += slots
	return idx
}

func u2(v uint16) []byte { return be.AppendUint16(nil, v) }

func u2s(vs ...uint16) []byte {
	var out []byte
	for _, v := range vs {
		out = be.AppendUint16(out, v)
	}
	return out
}

// Raw appends an entry with an arbitrary tag and payload occupying one slot.
func (b *Builder) Raw(tag byte, payload []byte) uint16 {
	return b.add(tag, payload, 1)
}

func (b *Builder) Utf8(s string) uint16 {
	if idx, ok := b.utf8[s]; ok {
		return idx
	}
	payload := append(u2(uint16(len(s))), s...)
	idx := b.add(1, payload, 1)
	b.utf8[s] = idx
	return idx
}

func (b *Builder) Integer(v int32) uint16 {
	return b.add(3, be.AppendUint32(nil, uint32(v)), 1)
}

func (b *Builder) Float(v float32) uint16 {
	return b.add(4, be.AppendUint32(nil, math.Float32bits(v)), 1)
}

// Long adds a CONSTANT_Long, which takes two pool slots.
func (b *Builder) Long(v int64) uint16 {
	return b.add(5, be.AppendUint64(nil, uint64(v)), 2)
}

// Double adds a CONSTANT_Double, which takes two pool slots.
func (b *Builder) Double(v float64) uint16 {
	return b.add(6, be.AppendUint64(nil, math.Float64bits(v)), 2)
}

func (b *Builder) Class(name string) uint16 {
	if idx, ok := b.classes[name]; ok {
		return idx
	}
	n := b.Utf8(name)
	idx := b.add(7, u2(n), 1)
	b.classes[name] = idx
	return idx
}

func (b *Builder) String(s string) uint16 {
	return b.add(8, u2(b.Utf8(s)), 1)
}

func (b *Builder) NameAndType(name, desc string) uint16 {
	n, d := b.Utf8(name), b.Utf8(desc)
	return b.add(12, u2s(n, d), 1)
}

func (b *Builder) Fieldref(class, name, desc string) uint16 {
	c, nt := b.Class(class), b.NameAndType(name, desc)
	return b.add(9, u2s(c, nt), 1)
}

func (b *Builder) Methodref(class, name, desc string) uint16 {
	c, nt := b.Class(class), b.NameAndType(name, desc)
	return b.add(10, u2s(c, nt), 1)
}

func (b *Builder) InterfaceMethodref(class, name, desc string) uint16 {
	c, nt := b.Class(class), b.NameAndType(name, desc)
	return b.add(11, u2s(c, nt), 1)
}

func (b *Builder) MethodHandle(kind byte, ref uint16) uint16 {
	return b.add(15, append([]byte{kind}, u2(ref)...), 1)
}

func (b *Builder) MethodType(desc string) uint16 {
	return b.add(16, u2(b.Utf8(desc)), 1)
}

func (b *Builder) InvokeDynamic(bsm uint16, name, desc string) uint16 {
	nt := b.NameAndType(name, desc)
	return b.add(18, u2s(bsm, nt), 1)
}

// ThisClass sets this_class to a new Class entry for name.
func (b *Builder) ThisClass(name string) *Builder {
	b.This = b.Class(name)
	return b
}

// SuperClass sets super_class to a new Class entry for name.
func (b *Builder) SuperClass(name string) *Builder {
	b.Super = b.Class(name)
	return b
}

func (b *Builder) Interface(name string) *Builder {
	b.interfaces = append(b.interfaces, b.Class(name))
	return b
}

// Attr encodes an attribute with the given name and body.
func (b *Builder) Attr(name string, body []byte) []byte {
	out := u2(b.Utf8(name))
	out = be.AppendUint32(out, uint32(len(body)))
	return append(out, body...)
}

// CodeBody encodes the body of a Code attribute.
func CodeBody(maxStack, maxLocals uint16, code []byte, handlers []Handler, nested ...[]byte) []byte {
	out := u2s(maxStack, maxLocals)
	out = be.AppendUint32(out, uint32(len(code)))
	out = append(out, code...)
	out = be.AppendUint16(out, uint16(len(handlers)))
	for _, h := range handlers {
		out = append(out, u2s(h.StartPC, h.EndPC, h.HandlerPC, h.CatchType)...)
	}
	return append(out, table(nested)...)
}

// Code encodes a complete Code attribute.
func (b *Builder) Code(maxStack, maxLocals uint16, code []byte, handlers []Handler, nested ...[]byte) []byte {
	return b.Attr("Code", CodeBody(maxStack, maxLocals, code, handlers, nested...))
}

func table(attrs [][]byte) []byte {
	out := u2(uint16(len(attrs)))
	for _, a := range attrs {
		out = append(out, a...)
	}
	return out
}

func (b *Builder) member(flags uint16, name, desc string, attrs [][]byte) []byte {
	out := u2s(flags, b.Utf8(name), b.Utf8(desc))
	return append(out, table(attrs)...)
}

func (b *Builder) Field(flags uint16, name, desc string, attrs ...[]byte) *Builder {
	b.fields = append(b.fields, b.member(flags, name, desc, attrs))
	return b
}

func (b *Builder) Method(flags uint16, name, desc string, attrs ...[]byte) *Builder {
	b.methods = append(b.methods, b.member(flags, name, desc, attrs))
	return b
}

// ClassAttribute appends an encoded attribute to the class attribute table.
func (b *Builder) ClassAttribute(attr []byte) *Builder {
	b.attrs = append(b.attrs, attr)
	return b
}

// Bytes returns the encoded class file.
func (b *Builder) Bytes() []byte {
	out := be.AppendUint32(nil, b.Magic)
	out = append(out, u2s(b.Minor, b.Major)...)
	count := b.next
	if b.PoolCount != 0 {
		count = b.PoolCount
	}
	out = be.AppendUint16(out, count)
	out = append(out, b.pool...)
	out = append(out, u2s(b.Flags, b.This, b.Super)...)
	out = be.AppendUint16(out, uint16(len(b.interfaces)))
	for _, i := range b.interfaces {
		out = be.AppendUint16(out, i)
	}
	out = append(out, table(b.fields)...)
	out = append(out, table(b.methods)...)
	return append(out, table(b.attrs)...)
}

// PoolOffset returns the byte offset at which the first constant pool entry
// starts in the output of Bytes.
func PoolOffset() int { return 10 }

// Minimal returns a class named name extending java/lang/Object with a
// single method m()V whose code is a lone return instruction.
func Minimal(name string) *Builder {
	b := New().ThisClass(name).SuperClass("java/lang/Object")
	return b.Method(0x0001, "m", "()V", b.Code(1, 1, []byte{0xB1}, nil))
}
