package classfile

import (
	"errors"
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/daimatz/classfile/internal/classtest"
)

func decodeBuilder(t *testing.T, b *classtest.Builder) *Class {
	t.Helper()
	cf, err := Decode(b.Bytes())
	require.NoError(t, err)
	return cf
}

func TestConstantPoolEntryKinds(t *testing.T) {
	b := classtest.New().ThisClass("Pool").SuperClass("java/lang/Object")
	iIdx := b.Integer(-42)
	fIdx := b.Float(1.5)
	lIdx := b.Long(math.MinInt64)
	dIdx := b.Double(math.Pi)
	sIdx := b.String("hello")
	frIdx := b.Fieldref("Pool", "count", "I")
	mrIdx := b.Methodref("java/lang/Object", "<init>", "()V")
	imrIdx := b.InterfaceMethodref("java/lang/Runnable", "run", "()V")
	mhIdx := b.MethodHandle(RefInvokeStatic, mrIdx)
	mtIdx := b.MethodType("(I)V")
	idIdx := b.InvokeDynamic(0, "apply", "()Ljava/util/function/Function;")

	cf := decodeBuilder(t, b)
	cp := cf.ConstantPool

	i, err := cp.Integer(iIdx)
	require.NoError(t, err)
	assert.Equal(t, int32(-42), i.Value)

	f, err := cp.Float(fIdx)
	require.NoError(t, err)
	assert.Equal(t, float32(1.5), f.Value)

	l, err := cp.Long(lIdx)
	require.NoError(t, err)
	assert.Equal(t, int64(math.MinInt64), l.Value)

	d, err := cp.Double(dIdx)
	require.NoError(t, err)
	assert.Equal(t, math.Pi, d.Value)

	s, err := cp.Str(sIdx)
	require.NoError(t, err)
	assert.Equal(t, "hello", s)

	field, err := cp.ResolveFieldref(frIdx)
	require.NoError(t, err)
	assert.Equal(t, &MemberRef{ClassName: "Pool", Name: "count", Descriptor: "I"}, field)

	method, err := cp.ResolveMethodref(mrIdx)
	require.NoError(t, err)
	assert.Equal(t, &MemberRef{ClassName: "java/lang/Object", Name: "<init>", Descriptor: "()V"}, method)

	imethod, err := cp.ResolveInterfaceMethodref(imrIdx)
	require.NoError(t, err)
	assert.Equal(t, "java/lang/Runnable", imethod.ClassName)
	assert.Equal(t, "run", imethod.Name)

	mh, err := cp.MethodHandle(mhIdx)
	require.NoError(t, err)
	assert.Equal(t, uint8(RefInvokeStatic), mh.ReferenceKind)
	assert.Equal(t, mrIdx, mh.ReferenceIndex)

	mt, err := cp.MethodType(mtIdx)
	require.NoError(t, err)
	desc, err := cp.Utf8(mt.DescriptorIndex)
	require.NoError(t, err)
	assert.Equal(t, "(I)V", desc)

	indy, err := cp.InvokeDynamic(idIdx)
	require.NoError(t, err)
	name, desc, err := cp.NameAndTypeStrings(indy.NameAndTypeIndex)
	require.NoError(t, err)
	assert.Equal(t, "apply", name)
	assert.Equal(t, "()Ljava/util/function/Function;", desc)
}

func TestConstantPoolWideEntriesReserveNextSlot(t *testing.T) {
	for _, wide := range []string{"Long", "Double"} {
		t.Run(wide, func(t *testing.T) {
			b := classtest.New()
			before := b.Utf8("before")
			var idx uint16
			if wide == "Long" {
				idx = b.Long(7)
			} else {
				idx = b.Double(7)
			}
			after := b.Utf8("after")
			b.ThisClass("Wide")
			require.Equal(t, idx+2, after)

			cp := decodeBuilder(t, b).ConstantPool

			_, err := cp.Get(idx)
			require.NoError(t, err)

			_, err = cp.Get(idx + 1)
			require.ErrorIs(t, err, ErrIndexOutOfRange)
			_, err = cp.Str(idx + 1)
			require.ErrorIs(t, err, ErrIndexOutOfRange)

			s, err := cp.Utf8(before)
			require.NoError(t, err)
			assert.Equal(t, "before", s)
			s, err = cp.Utf8(after)
			require.NoError(t, err)
			assert.Equal(t, "after", s)
		})
	}
}

func TestConstantPoolWideEntryInLastSlot(t *testing.T) {
	b := classtest.Minimal("Wide")
	idx := b.Long(1)
	b.PoolCount = idx + 1 // no room for the Long's second slot
	data := b.Bytes()

	_, err := Decode(data)
	require.ErrorIs(t, err, ErrIndexOutOfRange)
}

func TestConstantPoolCountZero(t *testing.T) {
	data := []byte{
		0xCA, 0xFE, 0xBA, 0xBE,
		0x00, 0x00, 0x00, 0x34,
		0x00, 0x00, // constant_pool_count
		0x00, 0x21,
		0x00, 0x00, 0x00, 0x00,
		0x00, 0x00, 0x00, 0x00, 0x00, 0x00, 0x00, 0x00,
	}
	_, err := Decode(data)
	require.ErrorIs(t, err, ErrIndexOutOfRange)
}

func TestConstantPoolIndexOutOfRange(t *testing.T) {
	cf := decodeBuilder(t, classtest.Minimal("Test"))
	cp := cf.ConstantPool

	for _, idx := range []uint16{0, uint16(cp.Len()), math.MaxUint16} {
		_, err := cp.Get(idx)
		assert.ErrorIs(t, err, ErrIndexOutOfRange, "index %d", idx)
	}
}

func TestConstantPoolStrIndirection(t *testing.T) {
	b := classtest.New().ThisClass("a/B")
	utf := b.Utf8("text")
	str := b.String("text")
	num := b.Integer(1)
	cp := decodeBuilder(t, b).ConstantPool

	tests := []struct {
		name  string
		index uint16
		want  string
	}{
		{"utf8 direct", utf, "text"},
		{"through String", str, "text"},
		{"through Class", b.This, "a/B"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := cp.Str(tt.index)
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}

	_, err := cp.Str(num)
	require.ErrorIs(t, err, ErrTypeMismatch)
}

func TestConstantPoolTypeMismatch(t *testing.T) {
	b := classtest.New().ThisClass("T")
	num := b.Integer(5)
	utf := b.Utf8("()V")
	cp := decodeBuilder(t, b).ConstantPool

	_, err := cp.Utf8(num)
	require.ErrorIs(t, err, ErrTypeMismatch)
	assert.Contains(t, err.Error(), "Integer")

	_, err = cp.Class(utf)
	require.ErrorIs(t, err, ErrTypeMismatch)

	_, err = cp.NameAndType(utf)
	require.ErrorIs(t, err, ErrTypeMismatch)

	_, err = cp.ResolveMethodref(utf)
	require.ErrorIs(t, err, ErrTypeMismatch)

	// Utf8 must not follow a Class entry even though Str does.
	_, err = cp.Utf8(b.This)
	require.ErrorIs(t, err, ErrTypeMismatch)
}

func TestConstantPoolUnknownTag(t *testing.T) {
	for _, tag := range []byte{0, 2, 13, 14, 21, 0xFF} {
		b := classtest.New()
		b.Utf8("ok")
		b.Raw(tag, []byte{0, 0})
		b.ThisClass("T")

		_, err := Decode(b.Bytes())
		require.ErrorIs(t, err, ErrUnknownConstantTag, "tag %d", tag)
		assert.False(t, errors.Is(err, ErrUnexpectedEOF))
	}
}

func TestConstantPoolTruncated(t *testing.T) {
	b := classtest.New()
	b.Utf8("a fairly long string constant")
	b.Long(1)
	data := b.Bytes()
	poolEnd := classtest.PoolOffset() + len("a fairly long string constant") + 3 + 9

	for n := classtest.PoolOffset() - 2; n < poolEnd; n++ {
		cf, err := Decode(data[:n])
		require.ErrorIs(t, err, ErrUnexpectedEOF, "truncated at %d", n)
		require.Nil(t, cf)

		var de *DecodeError
		require.ErrorAs(t, err, &de)
		assert.Equal(t, "constant pool", de.Section)
		assert.Equal(t, 8, de.Offset)
	}
}

func TestConstantPoolEntries(t *testing.T) {
	b := classtest.New()
	b.Long(3)
	b.Utf8("x")
	cp := decodeBuilder(t, b).ConstantPool

	var seen []uint16
	cp.Entries(func(index uint16, entry ConstantPoolEntry) {
		seen = append(seen, index)
	})
	assert.Equal(t, []uint16{1, 3}, seen)
	assert.Equal(t, 4, cp.Len())
}

func TestConstantTagString(t *testing.T) {
	assert.Equal(t, "Methodref", TagMethodref.String())
	assert.Equal(t, "Tag(99)", ConstantTag(99).String())
}
