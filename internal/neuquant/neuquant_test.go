package neuquant

import "testing"

func solidPixels(n int, r, g, b byte) []byte {
	out := make([]byte, n*3)
	for i := 0; i < n; i++ {
		out[i*3] = r
		out[i*3+1] = g
		out[i*3+2] = b
	}
	return out
}

func TestQuantizeSolidColorCollapses(t *testing.T) {
	pixels := solidPixels(4000, 200, 40, 10)
	nq, err := New(pixels, 10)
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	if err := nq.Quantize(); err != nil {
		t.Fatalf("Quantize: %v", err)
	}
	idx := nq.Lookup(200, 40, 10)
	if idx < 0 || idx > 255 {
		t.Fatalf("Lookup returned out-of-range index %d", idx)
	}
	cmap := nq.ColorMap()
	if len(cmap) != 768 {
		t.Fatalf("ColorMap() length = %d, want 768", len(cmap))
	}
	r, g, b := cmap[idx*3], cmap[idx*3+1], cmap[idx*3+2]
	if absDiff(r, 200) > 8 || absDiff(g, 40) > 8 || absDiff(b, 10) > 8 {
		t.Fatalf("nearest color for solid input = (%d,%d,%d), want close to (200,40,10)", r, g, b)
	}
}

func TestQuantizeTooSmall(t *testing.T) {
	if _, err := New([]byte{1, 2}, 10); err != ErrTooSmall {
		t.Fatalf("New([]byte{1,2}) err = %v, want ErrTooSmall", err)
	}
}

func TestLookupWithinPaletteBounds(t *testing.T) {
	pixels := make([]byte, 3000*3)
	for i := 0; i < 3000; i++ {
		pixels[i*3] = byte((i * 7) % 256)
		pixels[i*3+1] = byte((i * 13) % 256)
		pixels[i*3+2] = byte((i * 29) % 256)
	}
	nq, err := New(pixels, 4)
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	if err := nq.Quantize(); err != nil {
		t.Fatalf("Quantize: %v", err)
	}
	for _, c := range [][3]uint8{{0, 0, 0}, {255, 255, 255}, {128, 64, 200}} {
		idx := nq.Lookup(c[0], c[1], c[2])
		if idx < 0 || idx > 255 {
			t.Fatalf("Lookup(%v) = %d, out of [0,255]", c, idx)
		}
	}
}

func absDiff(a byte, b int) int {
	d := int(a) - b
	if d < 0 {
		return -d
	}
	return d
}
