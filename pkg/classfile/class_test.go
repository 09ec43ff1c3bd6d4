package classfile

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/daimatz/classfile/internal/classtest"
)

func TestClassInterfaceNames(t *testing.T) {
	b := classtest.New().ThisClass("a/Impl").SuperClass("java/lang/Object").
		Interface("java/lang/Runnable").Interface("java/io/Serializable")
	cf := decodeBuilder(t, b)

	names, err := cf.InterfaceNames()
	require.NoError(t, err)
	assert.Equal(t, []string{"java/lang/Runnable", "java/io/Serializable"}, names)

	super, err := cf.SuperClassName()
	require.NoError(t, err)
	assert.Equal(t, "java/lang/Object", super)
}

func TestClassInterfaceNameNotAClass(t *testing.T) {
	b := classtest.New().ThisClass("a/Impl")
	data := b.Bytes()
	// interfaces_count sits after flags, this and super; point one at #1 (Utf8).
	data = append(data[:len(data)-8], 0x00, 0x01, 0x00, 0x01, 0x00, 0x00, 0x00, 0x00, 0x00, 0x00)
	cf, err := Decode(data)
	require.NoError(t, err)

	_, err = cf.InterfaceNames()
	require.ErrorIs(t, err, ErrTypeMismatch)
}

func TestClassMethodFirstMatch(t *testing.T) {
	b := classtest.New().ThisClass("Dup")
	b.Method(0x0001, "run", "()V", b.Code(1, 1, []byte{0xB1}, nil))
	b.Method(0x0009, "run", "()V", b.Code(2, 2, []byte{0xB1}, nil))
	b.Method(0x0001, "run", "(I)V", b.Code(1, 2, []byte{0xB1}, nil))
	cf := decodeBuilder(t, b)

	m, err := cf.Method("run", "()V")
	require.NoError(t, err)
	assert.Same(t, &cf.Methods[0], m)
	assert.False(t, m.IsStatic())

	m, err = cf.Method("run", "(I)V")
	require.NoError(t, err)
	assert.Same(t, &cf.Methods[2], m)

	assert.Len(t, cf.MethodsByName("run"), 3)
	assert.Empty(t, cf.MethodsByName("walk"))
}

func TestClassMethodNotFound(t *testing.T) {
	cf := decodeBuilder(t, classtest.Minimal("Test"))

	for _, tt := range []struct{ name, desc string }{
		{"m", "(I)V"},
		{"n", "()V"},
		{"", ""},
	} {
		m, err := cf.Method(tt.name, tt.desc)
		require.ErrorIs(t, err, ErrMethodNotFound)
		assert.Nil(t, m)
		assert.Contains(t, err.Error(), tt.name+tt.desc)
	}
}

func TestMethodWithoutCode(t *testing.T) {
	b := classtest.New().ThisClass("Abs")
	b.Method(0x0401, "abs", "()V")
	b.Method(0x0109, "nat", "(J)J", b.Attr("Exceptions", []byte{0x00, 0x00}))
	cf := decodeBuilder(t, b)

	abs, err := cf.Method("abs", "()V")
	require.NoError(t, err)
	assert.True(t, abs.IsAbstract())
	_, ok := abs.Code()
	assert.False(t, ok)

	nat, err := cf.Method("nat", "(J)J")
	require.NoError(t, err)
	assert.True(t, nat.IsNative())
	assert.True(t, nat.IsStatic())
	_, ok = nat.Code()
	assert.False(t, ok)
	require.Len(t, nat.Attributes, 1)
	assert.Equal(t, "Exceptions", nat.Attributes[0].AttributeName())
}

func TestMethodCodeIsFirstCodeAttribute(t *testing.T) {
	b := classtest.New().ThisClass("Two")
	b.Method(0x0001, "m", "()V",
		b.Attr("Signature", []byte{0x00, 0x01}),
		b.Code(3, 1, []byte{0x03, 0xAC}, nil),
		b.Code(9, 9, []byte{0xB1}, nil),
	)
	m, err := decodeBuilder(t, b).Method("m", "()V")
	require.NoError(t, err)

	code, ok := m.Code()
	require.True(t, ok)
	assert.Equal(t, uint16(3), code.MaxStack)
	assert.Equal(t, []byte{0x03, 0xAC}, code.Code)
}

func TestMethodCodeExceptionTable(t *testing.T) {
	b := classtest.New().ThisClass("Try")
	catch := b.Class("java/lang/Exception")
	b.Method(0x0001, "m", "()V", b.Code(1, 2,
		[]byte{0x00, 0xB1, 0x4C, 0xB1},
		[]classtest.Handler{{StartPC: 0, EndPC: 1, HandlerPC: 2, CatchType: catch}},
		b.Attr("LineNumberTable", []byte{0x00, 0x01, 0x00, 0x00, 0x00, 0x03}),
	))
	cf := decodeBuilder(t, b)
	m, err := cf.Method("m", "()V")
	require.NoError(t, err)

	code, ok := m.Code()
	require.True(t, ok)
	require.Len(t, code.ExceptionHandlers, 1)
	h := code.ExceptionHandlers[0]
	assert.Equal(t, ExceptionHandler{StartPC: 0, EndPC: 1, HandlerPC: 2, CatchType: catch}, h)

	name, err := cf.ConstantPool.ClassName(h.CatchType)
	require.NoError(t, err)
	assert.Equal(t, "java/lang/Exception", name)

	require.Len(t, code.Attributes, 1)
	assert.Equal(t, "LineNumberTable", code.Attributes[0].AttributeName())
}

func TestClassField(t *testing.T) {
	b := classtest.New().ThisClass("F")
	val := b.Integer(42)
	b.Field(0x0019, "ANSWER", "I", b.Attr("ConstantValue", []byte{0x00, byte(val)}))
	b.Field(0x00C2, "cache", "Ljava/util/Map;")
	cf := decodeBuilder(t, b)

	f, err := cf.Field("ANSWER", "I")
	require.NoError(t, err)
	assert.True(t, f.IsPublic())
	assert.True(t, f.IsStatic())
	assert.True(t, f.IsFinal())
	idx, ok := f.ConstantValueIndex()
	require.True(t, ok)
	c, err := cf.ConstantPool.Integer(idx)
	require.NoError(t, err)
	assert.Equal(t, int32(42), c.Value)

	cache, err := cf.Field("cache", "Ljava/util/Map;")
	require.NoError(t, err)
	assert.True(t, cache.IsPrivate())
	assert.True(t, cache.IsVolatile())
	assert.True(t, cache.IsTransient())
	_, ok = cache.ConstantValueIndex()
	assert.False(t, ok)

	_, err = cf.Field("ANSWER", "J")
	require.ErrorIs(t, err, ErrFieldNotFound)
}

func TestClassSourceFile(t *testing.T) {
	b := classtest.New().ThisClass("S")
	src := b.Utf8("S.java")
	b.ClassAttribute(b.Attr("SourceFile", []byte{0x00, byte(src)}))
	cf := decodeBuilder(t, b)

	name, ok, err := cf.SourceFile()
	require.NoError(t, err)
	require.True(t, ok)
	assert.Equal(t, "S.java", name)

	_, ok, err = decodeBuilder(t, classtest.Minimal("NoSource")).SourceFile()
	require.NoError(t, err)
	assert.False(t, ok)

	bad := classtest.New().ThisClass("S")
	bad.ClassAttribute(bad.Attr("SourceFile", []byte{0x00, 0x01, 0x00}))
	_, _, err = decodeBuilder(t, bad).SourceFile()
	require.ErrorIs(t, err, ErrAttributeLength)
}

func TestClassBootstrapMethods(t *testing.T) {
	b := classtest.New().ThisClass("Lambda")
	factory := b.MethodHandle(RefInvokeStatic, b.Methodref(
		"java/lang/invoke/LambdaMetafactory", "metafactory",
		"(Ljava/lang/invoke/MethodHandles$Lookup;Ljava/lang/String;Ljava/lang/invoke/MethodType;Ljava/lang/invoke/MethodType;Ljava/lang/invoke/MethodHandle;Ljava/lang/invoke/MethodType;)Ljava/lang/invoke/CallSite;"))
	sam := b.MethodType("()V")
	b.InvokeDynamic(0, "run", "()Ljava/lang/Runnable;")
	body := []byte{
		0x00, 0x01, // num_bootstrap_methods
		0x00, byte(factory),
		0x00, 0x02, 0x00, byte(sam), 0x00, byte(sam),
	}
	b.ClassAttribute(b.Attr("BootstrapMethods", body))
	cf := decodeBuilder(t, b)

	bsms, err := cf.BootstrapMethods()
	require.NoError(t, err)
	require.Len(t, bsms, 1)
	assert.Equal(t, factory, bsms[0].MethodRef)
	assert.Equal(t, []uint16{sam, sam}, bsms[0].BootstrapArguments)

	// The attribute itself stays opaque.
	opaque, ok := FindAttribute(cf.Attributes, "BootstrapMethods").(*OpaqueAttribute)
	require.True(t, ok)
	assert.Equal(t, body, opaque.Data)

	none, err := decodeBuilder(t, classtest.Minimal("Plain")).BootstrapMethods()
	require.NoError(t, err)
	assert.Nil(t, none)

	bad := classtest.New().ThisClass("Bad")
	bad.ClassAttribute(bad.Attr("BootstrapMethods", []byte{0x00, 0x01, 0x00, 0x01, 0x00, 0x02, 0x00, 0x01}))
	_, err = decodeBuilder(t, bad).BootstrapMethods()
	require.ErrorIs(t, err, ErrUnexpectedEOF)
}

func TestMethodAccessPredicates(t *testing.T) {
	b := classtest.New().ThisClass("Flags")
	b.Method(0x0024, "locked", "()V", b.Code(0, 1, []byte{0xB1}, nil))
	b.Method(0x0119, "nat", "()V")
	cf := decodeBuilder(t, b)

	tests := []struct {
		name string
		got  bool
		want bool
	}{
		{"protected", cf.Methods[0].IsProtected(), true},
		{"synchronized", cf.Methods[0].IsSynchronized(), true},
		{"public", cf.Methods[0].IsPublic(), false},
		{"static", cf.Methods[0].IsStatic(), false},
		{"native", cf.Methods[1].IsNative(), true},
		{"final", cf.Methods[1].IsFinal(), true},
		{"public native", cf.Methods[1].IsPublic(), true},
		{"static native", cf.Methods[1].IsStatic(), true},
		{"synchronized native", cf.Methods[1].IsSynchronized(), false},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, tt.got, tt.name)
	}
}
