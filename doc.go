// Package pixglyph converts bitmap images into colored or monochrome
// character-art renditions.
//
// The package implements the deterministic per-pixel transform from RGBA
// into a glyph+color grid (brightness/contrast/invert/palette controlled),
// and serializes the resulting grid to plain text, styled monospace markup,
// or a rasterized image.
//
// Animation and video handling (frame extraction, GIF/MP4 encoding) live in
// the sibling packages pixglyph/pipeline, pixglyph/gif, and
// pixglyph/encoder.
//
// Basic usage:
//
//	grid, err := pixglyph.Convert(pixels, width, height, pixglyph.DefaultConfig())
//	text := grid.ToText()
package pixglyph
