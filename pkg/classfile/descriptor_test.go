package classfile

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseMethodDescriptor(t *testing.T) {
	tests := []struct {
		desc     string
		params   []string
		ret      string
		argSlots int
	}{
		{"()V", nil, "", 0},
		{"(II)I", []string{"int", "int"}, "int", 2},
		{"(JD)J", []string{"long", "double"}, "long", 4},
		{"([Ljava/lang/String;)V", []string{"java.lang.String[]"}, "", 1},
		{"(Ljava/lang/Object;[[JZ)[B", []string{"java.lang.Object", "long[][]", "boolean"}, "byte[]", 3},
		{"(CSF)Ljava/util/List;", []string{"char", "short", "float"}, "java.util.List", 3},
	}

	for _, tt := range tests {
		t.Run(tt.desc, func(t *testing.T) {
			md, err := ParseMethodDescriptor(tt.desc)
			require.NoError(t, err)

			var params []string
			for _, p := range md.Params {
				params = append(params, p.String())
			}
			assert.Equal(t, tt.params, params)
			assert.Equal(t, tt.argSlots, md.ArgSlots())
			if tt.ret == "" {
				assert.Nil(t, md.Return)
			} else {
				require.NotNil(t, md.Return)
				assert.Equal(t, tt.ret, md.Return.String())
			}
		})
	}
}

func TestParseMethodDescriptorInvalid(t *testing.T) {
	for _, desc := range []string{
		"",
		"V",
		"(I",
		"(I)",
		"(Q)V",
		"(L;)V",
		"(Ljava/lang/String)V",
		"()VV",
		"()[V",
		"(V)V",
	} {
		_, err := ParseMethodDescriptor(desc)
		assert.ErrorIs(t, err, ErrInvalidDescriptor, "descriptor %q", desc)
	}
}

func TestParseFieldDescriptor(t *testing.T) {
	ft, err := ParseFieldDescriptor("[[Ljava/lang/String;")
	require.NoError(t, err)
	assert.Equal(t, FieldType{Base: 'L', ClassName: "java/lang/String", Dims: 2}, ft)
	assert.Equal(t, 1, ft.Slots())

	ft, err = ParseFieldDescriptor("D")
	require.NoError(t, err)
	assert.Equal(t, 2, ft.Slots())
	assert.Equal(t, "double", ft.String())

	for _, desc := range []string{"", "II", "[", "Ljava/lang/String", "V"} {
		_, err := ParseFieldDescriptor(desc)
		assert.ErrorIs(t, err, ErrInvalidDescriptor, "descriptor %q", desc)
	}
}
