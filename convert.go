package pixglyph

// aspectCorrection is the fixed terminal-character aspect ratio used to
// derive a GlyphGrid's row count from its source image's aspect ratio
// (spec §3: H = floor(W * (h_src/w_src) * 0.5)).
const aspectCorrection = 0.5

// Convert runs the full C2-C4 pipeline (PixelTransform -> glyph selection
// -> GlyphGrid) over a row-major RGBA pixel buffer of size width*height*4.
// It returns *Error{Kind: ErrInvalidConfig} if cfg fails Validate, or if
// pixels is too small for the declared width/height.
func Convert(pixels []byte, width, height int, cfg ConverterConfig) (*GlyphGrid, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	if width < 1 || height < 1 {
		return nil, NewError(ErrInvalidConfig, "pixglyph", "source image has zero width or height", nil)
	}
	if len(pixels) < width*height*4 {
		return nil, NewError(ErrInvalidConfig, "pixglyph", "pixel buffer shorter than width*height*4", nil)
	}

	glyphs := cfg.glyphs()
	gw := cfg.Width
	gh := int(float64(gw) * (float64(height) / float64(width)) * aspectCorrection)

	grid := &GlyphGrid{Width: gw, Height: gh, config: cfg}
	if gh == 0 {
		return grid, nil
	}
	grid.Cells = make([]Cell, gw*gh)

	for row := 0; row < gh; row++ {
		srcY := row * height / gh
		for col := 0; col < gw; col++ {
			srcX := col * width / gw
			off := (srcY*width + srcX) * 4
			r, g, b := pixels[off], pixels[off+1], pixels[off+2]

			adj := adjustPixel(r, g, b, cfg.Brightness, cfg.Contrast)
			idx := glyphIndex(adj.Y, len(glyphs), cfg.Invert)

			cell := Cell{Glyph: glyphs[idx]}
			if cfg.ColorMode == ColorModeGrayscale {
				gy := uint8(adj.Y + 0.5)
				cell.Color = RGB{gy, gy, gy}
			} else {
				cell.Color = RGB{adj.R, adj.G, adj.B}
			}
			grid.Cells[row*gw+col] = cell
		}
	}
	return grid, nil
}
