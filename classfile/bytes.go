package classfile

import (
	"bytes"
	"encoding/binary"
	"errors"
	"fmt"
	"io"
	"math"
)

// Reader decodes big-endian primitives from an underlying byte source.
// Every multi-byte read is atomic: either the full width is obtained or an
// error is returned, never silently partial data. Short reads surface as
// errors wrapping ErrUnexpectedEOF.
type Reader struct {
	r io.Reader
	n int // bytes consumed so far
}

// NewReader wraps an arbitrary byte source.
func NewReader(r io.Reader) *Reader {
	return &Reader{r: r}
}

// Offset returns the number of bytes consumed so far.
func (r *Reader) Offset() int {
	return r.n
}

// Bytes reads exactly n bytes or fails.
func (r *Reader) Bytes(n int) ([]byte, error) {
	buf := make([]byte, n)
	if _, err := io.ReadFull(r.r, buf); err != nil {
		if errors.Is(err, io.EOF) || errors.Is(err, io.ErrUnexpectedEOF) {
			return nil, fmt.Errorf("%w: need %d bytes at offset %d", ErrUnexpectedEOF, n, r.n)
		}
		return nil, fmt.Errorf("reading %d bytes at offset %d: %w", n, r.n, err)
	}
	r.n += n
	return buf, nil
}

// U1 reads an unsigned byte.
func (r *Reader) U1() (uint8, error) {
	buf, err := r.Bytes(1)
	if err != nil {
		return 0, err
	}
	return buf[0], nil
}

// U2 reads a big-endian unsigned 16-bit integer.
func (r *Reader) U2() (uint16, error) {
	buf, err := r.Bytes(2)
	if err != nil {
		return 0, err
	}
	return binary.BigEndian.Uint16(buf), nil
}

// U4 reads a big-endian unsigned 32-bit integer.
func (r *Reader) U4() (uint32, error) {
	buf, err := r.Bytes(4)
	if err != nil {
		return 0, err
	}
	return binary.BigEndian.Uint32(buf), nil
}

// U8 reads a big-endian unsigned 64-bit integer.
func (r *Reader) U8() (uint64, error) {
	buf, err := r.Bytes(8)
	if err != nil {
		return 0, err
	}
	return binary.BigEndian.Uint64(buf), nil
}

// I32 reads a big-endian signed 32-bit integer.
func (r *Reader) I32() (int32, error) {
	v, err := r.U4()
	return int32(v), err
}

// I64 reads a big-endian signed 64-bit integer.
func (r *Reader) I64() (int64, error) {
	v, err := r.U8()
	return int64(v), err
}

// F32 reads a big-endian IEEE 754 single-precision float.
func (r *Reader) F32() (float32, error) {
	v, err := r.U4()
	return math.Float32frombits(v), err
}

// F64 reads a big-endian IEEE 754 double-precision float.
func (r *Reader) F64() (float64, error) {
	v, err := r.U8()
	return math.Float64frombits(v), err
}

// UTF8 reads n bytes and returns them as a string.
func (r *Reader) UTF8(n int) (string, error) {
	buf, err := r.Bytes(n)
	if err != nil {
		return "", err
	}
	return string(buf), nil
}

// Cursor is a Reader over a fixed-size in-memory payload, used for the
// isolated per-attribute buffers carved out of already-read bytes. It
// additionally tracks how much of the payload remains so sub-parsers can be
// checked against the declared attribute length.
type Cursor struct {
	Reader
	size int
}

// NewCursor builds a Cursor over buf. The same primitive decoding is shared,
// unmodified, with the top-level stream reader.
func NewCursor(buf []byte) *Cursor {
	return &Cursor{
		Reader: Reader{r: bytes.NewReader(buf)},
		size:   len(buf),
	}
}

// Consumed returns the number of payload bytes already read.
func (c *Cursor) Consumed() int {
	return c.n
}

// Remaining returns the number of payload bytes not yet read.
func (c *Cursor) Remaining() int {
	return c.size - c.n
}
