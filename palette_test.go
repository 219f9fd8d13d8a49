package pixglyph

import "testing"

func TestAnsi256CubeLayout(t *testing.T) {
	pal := PaletteFor(PaletteANSI256)
	if len(pal) != 256 {
		t.Fatalf("len(ansi256) = %d, want 256", len(pal))
	}
	for i, c := range ansi16 {
		if pal[i] != c {
			t.Fatalf("ansi256[%d] = %+v, want ansi16 entry %+v", i, pal[i], c)
		}
	}
	// First cube entry (16) is the all-zero corner.
	if pal[16] != (RGB{0, 0, 0}) {
		t.Fatalf("pal[16] = %+v, want {0,0,0}", pal[16])
	}
	// Step 1 -> 1*40+55 = 95.
	if pal[16+36] != (RGB{95, 0, 0}) {
		t.Fatalf("pal[16+36] = %+v, want {95,0,0}", pal[16+36])
	}
	// Gray ramp starts at 232, value 8.
	if pal[232] != (RGB{8, 8, 8}) {
		t.Fatalf("pal[232] = %+v, want {8,8,8}", pal[232])
	}
	if pal[255] != (RGB{238, 238, 238}) {
		t.Fatalf("pal[255] = %+v, want {238,238,238}", pal[255])
	}
}

func TestNearestInPaletteTies(t *testing.T) {
	pal := []RGB{{0, 0, 0}, {0, 0, 0}, {10, 10, 10}}
	got := NearestInPalette(0, 0, 0, pal)
	if got != pal[0] {
		t.Fatalf("got %+v, want first tied entry %+v", got, pal[0])
	}
}

func TestS4NearestANSI16(t *testing.T) {
	// S4: pure red/green/blue quantize to their exact ANSI-16 hi-intensity
	// entries.
	cases := []struct {
		r, g, b uint8
		want    RGB
	}{
		{255, 0, 0, RGB{0xff, 0x00, 0x00}},
		{0, 255, 0, RGB{0x00, 0xff, 0x00}},
		{0, 0, 255, RGB{0x00, 0x00, 0xff}},
	}
	for _, c := range cases {
		got := NearestInPalette(c.r, c.g, c.b, ansi16[:])
		if got != c.want {
			t.Errorf("NearestInPalette(%d,%d,%d) = %+v, want %+v", c.r, c.g, c.b, got, c.want)
		}
	}
}
