package layout

import (
	"encoding/binary"
	"errors"
	"fmt"
	"math"

	"github.com/go-gl/mathgl/mgl32"
)

var ErrShortBuffer = errors.New("layout: buffer shorter than struct")

// Writer fills one element of a Struct. Fields must be written in declaration order;
// writing the wrong kind panics since it means the encoder and the layout disagree.
type Writer struct {
	s   *Struct
	buf []byte
	i   int
}

// NewWriter returns a Writer over a zeroed buffer of s.Size bytes.
func (s *Struct) NewWriter() *Writer {
	return &Writer{s: s, buf: make([]byte, s.Size)}
}

// WriterAt returns a Writer targeting buf, which must hold at least s.Size bytes.
// Padding bytes in buf are left as they are.
func (s *Struct) WriterAt(buf []byte) *Writer {
	if len(buf) < s.Size {
		panic(fmt.Sprintf("layout: %s needs %d bytes, have %d", s.Name, s.Size, len(buf)))
	}
	return &Writer{s: s, buf: buf[:s.Size]}
}

func (w *Writer) next(k Kind) int {
	if w.i >= len(w.s.Members) {
		panic(fmt.Sprintf("layout: %s has only %d members", w.s.Name, len(w.s.Members)))
	}
	m := w.s.Members[w.i]
	if m.Kind != k {
		panic(fmt.Sprintf("layout: %s.%s is %s, not %s", w.s.Name, m.Name, m.Kind, k))
	}
	w.i++
	return m.Offset
}

func (w *Writer) putf(off int, v float32) {
	binary.LittleEndian.PutUint32(w.buf[off:], math.Float32bits(v))
}

func (w *Writer) Float(v float32) { w.putf(w.next(Float), v) }

func (w *Writer) Uint(v uint32) { binary.LittleEndian.PutUint32(w.buf[w.next(Uint):], v) }

func (w *Writer) Int(v int32) { binary.LittleEndian.PutUint32(w.buf[w.next(Int):], uint32(v)) }

func (w *Writer) Vec2(v mgl32.Vec2) {
	off := w.next(Float2)
	w.putf(off, v[0])
	w.putf(off+4, v[1])
}

func (w *Writer) Vec3(v mgl32.Vec3) {
	off := w.next(Float3)
	for i := 0; i < 3; i++ {
		w.putf(off+4*i, v[i])
	}
}

func (w *Writer) Vec4(v mgl32.Vec4) {
	off := w.next(Float4)
	for i := 0; i < 4; i++ {
		w.putf(off+4*i, v[i])
	}
}

// Mat3 writes three column vectors, each padded to 16 bytes.
func (w *Writer) Mat3(m mgl32.Mat3) {
	off := w.next(Float3x3)
	for c := 0; c < 3; c++ {
		for r := 0; r < 3; r++ {
			w.putf(off+16*c+4*r, m.At(r, c))
		}
	}
}

func (w *Writer) Mat4(m mgl32.Mat4) {
	off := w.next(Float4x4)
	for i, v := range m {
		w.putf(off+4*i, v)
	}
}

// Bytes returns the encoded element. It panics if a member was left unwritten.
func (w *Writer) Bytes() []byte {
	if w.i != len(w.s.Members) {
		panic(fmt.Sprintf("layout: %s: wrote %d of %d members", w.s.Name, w.i, len(w.s.Members)))
	}
	return w.buf
}

// Reader walks an encoded element in declaration order.
type Reader struct {
	s   *Struct
	buf []byte
	i   int
}

func (s *Struct) NewReader(buf []byte) (*Reader, error) {
	if len(buf) < s.Size {
		return nil, fmt.Errorf("%w: %s needs %d bytes, have %d", ErrShortBuffer, s.Name, s.Size, len(buf))
	}
	return &Reader{s: s, buf: buf}, nil
}

func (r *Reader) next(k Kind) int {
	if r.i >= len(r.s.Members) {
		panic(fmt.Sprintf("layout: %s has only %d members", r.s.Name, len(r.s.Members)))
	}
	m := r.s.Members[r.i]
	if m.Kind != k {
		panic(fmt.Sprintf("layout: %s.%s is %s, not %s", r.s.Name, m.Name, m.Kind, k))
	}
	r.i++
	return m.Offset
}

func (r *Reader) getf(off int) float32 {
	return math.Float32frombits(binary.LittleEndian.Uint32(r.buf[off:]))
}

func (r *Reader) Float() float32 { return r.getf(r.next(Float)) }

func (r *Reader) Uint() uint32 { return binary.LittleEndian.Uint32(r.buf[r.next(Uint):]) }

func (r *Reader) Int() int32 { return int32(binary.LittleEndian.Uint32(r.buf[r.next(Int):])) }

func (r *Reader) Vec2() mgl32.Vec2 {
	off := r.next(Float2)
	return mgl32.Vec2{r.getf(off), r.getf(off + 4)}
}

func (r *Reader) Vec3() mgl32.Vec3 {
	off := r.next(Float3)
	return mgl32.Vec3{r.getf(off), r.getf(off + 4), r.getf(off + 8)}
}

func (r *Reader) Vec4() mgl32.Vec4 {
	off := r.next(Float4)
	return mgl32.Vec4{r.getf(off), r.getf(off + 4), r.getf(off + 8), r.getf(off + 12)}
}

func (r *Reader) Mat3() mgl32.Mat3 {
	off := r.next(Float3x3)
	var m mgl32.Mat3
	for c := 0; c < 3; c++ {
		for row := 0; row < 3; row++ {
			m.Set(row, c, r.getf(off+16*c+4*row))
		}
	}
	return m
}

func (r *Reader) Mat4() mgl32.Mat4 {
	off := r.next(Float4x4)
	var m mgl32.Mat4
	for i := range m {
		m[i] = r.getf(off + 4*i)
	}
	return m
}

// Array encodes n elements of s back to back at s.Stride(), reserving room for
// capacity elements. Unused slots stay zero.
func (s *Struct) Array(n, capacity int, fill func(i int, w *Writer)) []byte {
	if capacity < n {
		capacity = n
	}
	stride := s.Stride()
	buf := make([]byte, stride*capacity)
	for i := 0; i < n; i++ {
		w := s.WriterAt(buf[i*stride:])
		fill(i, w)
		w.Bytes()
	}
	return buf
}
