package classfile

import (
	"encoding/binary"
	"fmt"
)

// reader is a forward-only big-endian cursor over a class file image.
// Every decoder in this package consumes input exclusively through it.
type reader struct {
	data []byte
	pos  int
}

func newReader(data []byte) *reader {
	return &reader{data: data}
}

// Position returns the number of bytes consumed so far.
func (r *reader) Position() int {
	return r.pos
}

// Remaining returns the number of unread bytes.
func (r *reader) Remaining() int {
	return len(r.data) - r.pos
}

func (r *reader) take(n int) ([]byte, error) {
	if n < 0 || n > r.Remaining() {
		return nil, fmt.Errorf("need %d bytes at offset %d, have %d: %w", n, r.pos, r.Remaining(), ErrUnexpectedEOF)
	}
	b := r.data[r.pos : r.pos+n]
	r.pos += n
	return b, nil
}

// U1 reads one unsigned byte.
func (r *reader) U1() (uint8, error) {
	b, err := r.take(1)
	if err != nil {
		return 0, err
	}
	return b[0], nil
}

// U2 reads a big-endian uint16.
func (r *reader) U2() (uint16, error) {
	b, err := r.take(2)
	if err != nil {
		return 0, err
	}
	return binary.BigEndian.Uint16(b), nil
}

// U4 reads a big-endian uint32.
func (r *reader) U4() (uint32, error) {
	b, err := r.take(4)
	if err != nil {
		return 0, err
	}
	return binary.BigEndian.Uint32(b), nil
}

// U8 reads a big-endian uint64 as two consecutive U4 reads.
func (r *reader) U8() (uint64, error) {
	hi, err := r.U4()
	if err != nil {
		return 0, err
	}
	lo, err := r.U4()
	if err != nil {
		return 0, err
	}
	return uint64(hi)<<32 | uint64(lo), nil
}

// Bytes returns the next n bytes as a freshly allocated slice so that decoded
// values never alias the caller's input buffer.
func (r *reader) Bytes(n int) ([]byte, error) {
	b, err := r.take(n)
	if err != nil {
		return nil, err
	}
	out := make([]byte, n)
	copy(out, b)
	return out, nil
}

// sub consumes exactly n bytes and returns a reader limited to them.
func (r *reader) sub(n int) (*reader, error) {
	b, err := r.take(n)
	if err != nil {
		return nil, err
	}
	return &reader{data: b}, nil
}
