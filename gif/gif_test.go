package gif

import (
	"bytes"
	stdgif "image/gif"
	"testing"
)

func solidPalette() []byte {
	pal := make([]byte, 256*3)
	for i := 0; i < 256; i++ {
		pal[i*3] = byte(i)
		pal[i*3+1] = byte(i)
		pal[i*3+2] = byte(i)
	}
	return pal
}

func TestAssembleDecodableByStdlib(t *testing.T) {
	pal := solidPalette()
	asm := NewAssembler(4, 2, pal, 0)

	indices := []byte{0, 1, 2, 3, 4, 5, 6, 7}
	if err := asm.WriteFrame(Frame{
		Indices:          indices,
		Width:            4,
		Height:           2,
		DelayCentiSec:    10,
		Disposal:         DisposalBackground,
		TransparentIndex: -1,
	}); err != nil {
		t.Fatalf("WriteFrame: %v", err)
	}
	data := asm.Finish()

	if data[len(data)-1] != trailer {
		t.Fatalf("last byte = %#x, want trailer %#x", data[len(data)-1], trailer)
	}
	if string(data[:6]) != "GIF89a" {
		t.Fatalf("header = %q, want GIF89a", data[:6])
	}

	g, err := stdgif.DecodeAll(bytes.NewReader(data))
	if err != nil {
		t.Fatalf("stdlib decode: %v", err)
	}
	if len(g.Image) != 1 {
		t.Fatalf("decoded %d frames, want 1", len(g.Image))
	}
	img := g.Image[0]
	b := img.Bounds()
	if b.Dx() != 4 || b.Dy() != 2 {
		t.Fatalf("decoded frame = %dx%d, want 4x2", b.Dx(), b.Dy())
	}
	for i, want := range indices {
		x, y := i%4, i/4
		got := img.ColorIndexAt(b.Min.X+x, b.Min.Y+y)
		if got != want {
			t.Errorf("pixel (%d,%d) index = %d, want %d", x, y, got, want)
		}
	}
}

func TestAssembleMultiFrameLoop(t *testing.T) {
	pal := solidPalette()
	asm := NewAssembler(2, 2, pal, 5)
	for i := 0; i < 3; i++ {
		idx := byte(i + 1)
		if err := asm.WriteFrame(Frame{
			Indices:          []byte{idx, idx, idx, idx},
			Width:            2,
			Height:           2,
			DelayCentiSec:    5,
			TransparentIndex: -1,
		}); err != nil {
			t.Fatalf("WriteFrame %d: %v", i, err)
		}
	}
	data := asm.Finish()

	g, err := stdgif.DecodeAll(bytes.NewReader(data))
	if err != nil {
		t.Fatalf("stdlib decode: %v", err)
	}
	if len(g.Image) != 3 {
		t.Fatalf("decoded %d frames, want 3", len(g.Image))
	}
	if g.LoopCount != 5 {
		t.Fatalf("LoopCount = %d, want 5", g.LoopCount)
	}
}

func TestWriteFrameBeforeHeaderRejected(t *testing.T) {
	a := &Assembler{}
	if err := a.WriteFrame(Frame{Indices: []byte{0}, Width: 1, Height: 1}); err == nil {
		t.Fatal("expected error writing frame before header")
	}
}

func TestWriteFrameSizeMismatchRejected(t *testing.T) {
	asm := NewAssembler(2, 2, solidPalette(), 0)
	err := asm.WriteFrame(Frame{Indices: []byte{0, 1}, Width: 2, Height: 2, TransparentIndex: -1})
	if err == nil {
		t.Fatal("expected error for index count mismatch")
	}
}

func TestPaletteSizeField(t *testing.T) {
	cases := []struct {
		n          int
		bits, want int
	}{
		{1, 0, 2},
		{2, 0, 2},
		{3, 1, 4},
		{200, 7, 256},
		{256, 7, 256},
	}
	for _, c := range cases {
		bits, padded := paletteSizeField(c.n)
		if bits != c.bits || padded != c.want {
			t.Errorf("paletteSizeField(%d) = (%d,%d), want (%d,%d)", c.n, bits, padded, c.bits, c.want)
		}
	}
}
