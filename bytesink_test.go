package pixglyph

import (
	"bytes"
	"testing"
)

func TestByteSink(t *testing.T) {
	s := NewByteSink(0)
	s.WriteASCII("GIF")
	s.WriteU8('!')
	s.WriteLEU16(0x0102)
	s.WriteBytes([]byte{0xAA, 0xBB})

	want := append([]byte("GIF!"), 0x02, 0x01, 0xAA, 0xBB)
	if got := s.Bytes(); !bytes.Equal(got, want) {
		t.Fatalf("Bytes() = %x, want %x", got, want)
	}
	if s.Len() != len(want) {
		t.Fatalf("Len() = %d, want %d", s.Len(), len(want))
	}
}
