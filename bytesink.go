package pixglyph

// ByteSink is an append-only byte buffer with integer-width writers, used by
// the GIF assembler (pixglyph/gif) to build its output stream. It is
// grounded on the teacher's mux.Chunk header writers (mux/chunk.go wrote a
// FourCC + little-endian size directly into a byte slice); ByteSink
// generalizes that into a growable, append-only sink with no seek
// operation, matching GIF's single forward pass over its output.
type ByteSink struct {
	buf []byte
}

// NewByteSink returns an empty ByteSink with capacity hint n.
func NewByteSink(n int) *ByteSink {
	return &ByteSink{buf: make([]byte, 0, n)}
}

// WriteU8 appends a single byte.
func (s *ByteSink) WriteU8(v byte) {
	s.buf = append(s.buf, v)
}

// WriteLEU16 appends v as two little-endian bytes.
func (s *ByteSink) WriteLEU16(v uint16) {
	s.buf = append(s.buf, byte(v), byte(v>>8))
}

// WriteBytes appends buf in full.
func (s *ByteSink) WriteBytes(buf []byte) {
	s.buf = append(s.buf, buf...)
}

// WriteASCII appends the ASCII bytes of s.
func (s *ByteSink) WriteASCII(str string) {
	s.buf = append(s.buf, str...)
}

// Bytes returns a read-only view of everything appended so far. The
// returned slice aliases the sink's internal buffer and must not be
// mutated by the caller.
func (s *ByteSink) Bytes() []byte {
	return s.buf
}

// Len returns the number of bytes appended so far.
func (s *ByteSink) Len() int {
	return len(s.buf)
}
