package classfile

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestReaderBigEndian(t *testing.T) {
	r := newReader([]byte{0x01, 0x02, 0x03, 0xCA, 0xFE, 0xBA, 0xBE, 0, 0, 0, 1, 0, 0, 0, 2})

	b, err := r.U1()
	require.NoError(t, err)
	assert.Equal(t, uint8(0x01), b)

	s, err := r.U2()
	require.NoError(t, err)
	assert.Equal(t, uint16(0x0203), s)

	w, err := r.U4()
	require.NoError(t, err)
	assert.Equal(t, uint32(0xCAFEBABE), w)

	l, err := r.U8()
	require.NoError(t, err)
	assert.Equal(t, uint64(1)<<32|2, l)

	assert.Equal(t, 15, r.Position())
	assert.Equal(t, 0, r.Remaining())
}

func TestReaderUnexpectedEOF(t *testing.T) {
	tests := []struct {
		name string
		data []byte
		read func(r *reader) error
	}{
		{"u1 on empty", nil, func(r *reader) error { _, err := r.U1(); return err }},
		{"u2 with one byte", []byte{1}, func(r *reader) error { _, err := r.U2(); return err }},
		{"u4 with three bytes", []byte{1, 2, 3}, func(r *reader) error { _, err := r.U4(); return err }},
		{"u8 with seven bytes", make([]byte, 7), func(r *reader) error { _, err := r.U8(); return err }},
		{"bytes past end", []byte{1, 2}, func(r *reader) error { _, err := r.Bytes(3); return err }},
		{"negative length", []byte{1, 2}, func(r *reader) error { _, err := r.Bytes(-1); return err }},
		{"sub past end", []byte{1}, func(r *reader) error { _, err := r.sub(2); return err }},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.read(newReader(tt.data))
			require.ErrorIs(t, err, ErrUnexpectedEOF)
		})
	}
}

func TestReaderFailedReadDoesNotAdvance(t *testing.T) {
	r := newReader([]byte{0xAB})
	_, err := r.U2()
	require.Error(t, err)
	assert.Equal(t, 0, r.Position())

	b, err := r.U1()
	require.NoError(t, err)
	assert.Equal(t, uint8(0xAB), b)
}

func TestReaderBytesCopies(t *testing.T) {
	src := []byte{1, 2, 3}
	r := newReader(src)
	out, err := r.Bytes(3)
	require.NoError(t, err)
	src[0] = 9
	assert.Equal(t, []byte{1, 2, 3}, out)
}

func TestReaderSub(t *testing.T) {
	r := newReader([]byte{0, 1, 0, 2, 0xFF})
	sub, err := r.sub(4)
	require.NoError(t, err)
	assert.Equal(t, 4, r.Position())
	assert.Equal(t, 4, sub.Remaining())

	_, err = sub.U4()
	require.NoError(t, err)
	_, err = sub.U1()
	require.ErrorIs(t, err, ErrUnexpectedEOF, "sub reader must not see bytes past its limit")
}
