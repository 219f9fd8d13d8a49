package pixglyph

import "image/color"

// ColorMode selects whether GlyphGrid cells carry the post-adjust color or a
// grayscale luminance triplet.
type ColorMode int

const (
	ColorModeColor ColorMode = iota
	ColorModeGrayscale
)

// PaletteMode selects the fixed palette used for colored markup output.
// It has no effect on the glyph selection itself (see PixelTransform).
type PaletteMode int

const (
	PaletteFull PaletteMode = iota
	PaletteANSI256
	PaletteANSI16
	PaletteCGA
	PaletteGameboy
)

// Charset names a named glyph ramp. CharsetCustom defers to
// ConverterConfig.CustomCharset.
type Charset int

const (
	CharsetStandard Charset = iota
	CharsetDetailed
	CharsetBlocks
	CharsetSimple
	CharsetBinary
	CharsetBraille
	CharsetDots
	CharsetCustom
)

// Named glyph ramps, ordered darkest-appropriate-glyph first per spec §4.3's
// index formula (index 0 is selected at minimum luminance when invert is
// false). "standard" and "detailed" follow the classic ASCII-art ramps;
// "blocks"/"simple"/"binary"/"dots"/"braille" are coarser alternatives for
// low column counts or monochrome terminals.
var namedCharsets = map[Charset]string{
	CharsetStandard: "@%#*+=-:. ",
	CharsetDetailed: "$@B%8&WM#*oahkbdpqwmZO0QLCJUYXzcvunxrjft/\\|()1{}[]?-_+~<>i!lI;:,\"^`'. ",
	CharsetBlocks:   "█▓▒░ ",
	CharsetSimple:   "#. ",
	CharsetBinary:   "10",
	CharsetBraille:  "⣿⣷⣦⣄⡀ ",
	CharsetDots:     "●◉○. ",
}

// blankGlyphRune is the braille-pattern-blank code point (U+2800), which
// must be normalized to ASCII space by text serializers per spec §4.3.
const blankGlyphRune = '⠀'

// ConverterConfig is the immutable configuration for a single conversion.
// Build one with DefaultConfig and override fields before use; it is never
// mutated by a running conversion (all operations take it by value or
// read-only reference).
type ConverterConfig struct {
	// Width is the target glyph-grid column count. Must be >= 1.
	Width int

	// Charset selects a named glyph ramp. Ignored when CustomCharset is
	// non-empty.
	Charset Charset

	// CustomCharset, when non-empty, overrides Charset.
	CustomCharset string

	// ColorMode selects cell color semantics.
	ColorMode ColorMode

	// ColorPalette selects the palette used for colored markup output.
	ColorPalette PaletteMode

	// Contrast is the contrast curve parameter in [0, 255]; 128 is the
	// identity transform. 259 is forbidden (division by zero in the
	// contrast curve) and is rejected by Validate.
	Contrast int

	// Brightness is a pre-contrast percentage multiplier in [1, 400].
	Brightness int

	// Invert flips the dark/light glyph ramp direction.
	Invert bool

	// Background is the raster/markup background color.
	Background color.RGBA

	// FontSize is the raster glyph pixel size (raster export only).
	FontSize int

	// LineHeight is the raster line-spacing multiplier, >= 0.5 (raster
	// export only).
	LineHeight float64

	// RasterScale multiplies FontSize for the final raster render
	// (spec §6 png_scale).
	RasterScale int
}

// DefaultConfig returns a ConverterConfig with the documented defaults:
// width 80, standard charset, color mode, full palette, contrast 100
// (spec's default, not the 128 identity value), brightness 100%, no invert,
// opaque black background, 16px font at 1.0 line height and 1x raster scale.
func DefaultConfig() ConverterConfig {
	return ConverterConfig{
		Width:        80,
		Charset:      CharsetStandard,
		ColorMode:    ColorModeColor,
		ColorPalette: PaletteFull,
		Contrast:     100,
		Brightness:   100,
		Invert:       false,
		Background:   color.RGBA{A: 255},
		FontSize:     16,
		LineHeight:   1.0,
		RasterScale:  1,
	}
}

// glyphs resolves the effective glyph ramp for this config, applying the
// CustomCharset override.
func (c ConverterConfig) glyphs() []rune {
	s := c.CustomCharset
	if s == "" {
		s = namedCharsets[c.Charset]
	}
	return []rune(s)
}

// Validate returns the first invalid field found, matching the teacher's
// validateConfig shape (encode.go): a single pass returning on the first
// failure, rather than accumulating every violation.
func (c ConverterConfig) Validate() error {
	if c.Width < 1 {
		return NewError(ErrInvalidConfig, "pixglyph", "invalid Width (must be >= 1)", nil)
	}
	if len(c.glyphs()) < 2 {
		return NewError(ErrInvalidConfig, "pixglyph", "invalid charset (must have at least 2 glyphs)", nil)
	}
	if c.Contrast < 0 || c.Contrast > 255 {
		return NewError(ErrInvalidConfig, "pixglyph", "invalid Contrast (must be 0-255)", nil)
	}
	if c.Contrast == 259 {
		// Unreachable given the 0-255 check above, kept explicit per
		// spec §3/§9: contrast=259 is the documented division-by-zero
		// case and must always be invalid_config, never silently clamped.
		return NewError(ErrInvalidConfig, "pixglyph", "contrast 259 is forbidden (division by zero)", nil)
	}
	if c.Brightness < 1 || c.Brightness > 400 {
		return NewError(ErrInvalidConfig, "pixglyph", "invalid Brightness (must be 1-400)", nil)
	}
	if c.FontSize < 1 {
		return NewError(ErrInvalidConfig, "pixglyph", "invalid FontSize (must be >= 1)", nil)
	}
	if c.LineHeight < 0.5 {
		return NewError(ErrInvalidConfig, "pixglyph", "invalid LineHeight (must be >= 0.5)", nil)
	}
	if c.RasterScale < 1 {
		return NewError(ErrInvalidConfig, "pixglyph", "invalid RasterScale (must be >= 1)", nil)
	}
	return nil
}
