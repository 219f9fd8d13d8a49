package pixglyph

import "testing"

func TestToRasterDimensions(t *testing.T) {
	cfg := DefaultConfig()
	cfg.Width = 4
	cfg.FontSize = 10
	cfg.LineHeight = 1.0
	cfg.RasterScale = 2
	grid, err := Convert(solidImage(4, 4, 10, 20, 30, 255), 4, 4, cfg)
	if err != nil {
		t.Fatal(err)
	}
	img := grid.ToRaster()
	b := img.Bounds()
	if b.Dx() <= 0 || b.Dy() <= 0 {
		t.Fatalf("raster bounds = %v, want positive", b)
	}
	// Scale=2 must double whatever the 1x render produced.
	cfg2 := cfg
	cfg2.RasterScale = 1
	grid2, _ := Convert(solidImage(4, 4, 10, 20, 30, 255), 4, 4, cfg2)
	img2 := grid2.ToRaster()
	b2 := img2.Bounds()
	if b.Dx() != b2.Dx()*2 || b.Dy() != b2.Dy()*2 {
		t.Fatalf("scaled bounds = %v, want 2x of %v", b, b2)
	}
}

func TestAdvanceWidthFloor(t *testing.T) {
	face := rasterFace()
	w := advanceWidth([]rune("@%#"), face, 1)
	if w < 1 {
		t.Fatalf("advanceWidth = %d, want >= 1", w)
	}
}
