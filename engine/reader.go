package engine

import (
	"bufio"
	"io"
	"unicode/utf8"
)

// Reader enciphers the text read from an underlying reader, one character
// at a time, with the same result as Transform over the whole text.
type Reader struct {
	m   *Machine
	src *bufio.Reader
	buf []byte
}

func (m *Machine) NewReader(r io.Reader) *Reader {
	return &Reader{m: m, src: bufio.NewReader(r)}
}

func (r *Reader) Read(p []byte) (int, error) {
	n := 0
	for n < len(p) {
		if len(r.buf) > 0 {
			c := copy(p[n:], r.buf)
			r.buf = r.buf[c:]
			n += c
			continue
		}
		if n > 0 && r.src.Buffered() == 0 {
			return n, nil
		}
		c, size, err := r.src.ReadRune()
		if err != nil {
			return n, err
		}
		out := r.m.TransformRune(c)
		if c == utf8.RuneError && size == 1 {
			// Invalid UTF-8: pass the raw byte through.
			_ = r.src.UnreadRune()
			b, _ := r.src.ReadByte()
			r.buf = append(r.buf[:0], b)
			continue
		}
		r.buf = utf8.AppendRune(r.buf[:0], out)
	}
	return n, nil
}
