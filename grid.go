package pixglyph

import (
	"strings"
)

// Cell is one glyph-grid entry: a rune plus its color.
type Cell struct {
	Glyph rune
	Color RGB
}

// GlyphGrid is the in-memory result of a conversion: width x height glyph
// cells, row-major. A GlyphGrid is exclusively owned by its producer until
// handed to a serializer (ToText, ToColoredMarkup, ToRaster); serializers
// only read it.
type GlyphGrid struct {
	Width  int
	Height int
	Cells  []Cell
	config ConverterConfig
}

// At returns the cell at (col, row).
func (g *GlyphGrid) At(col, row int) Cell {
	return g.Cells[row*g.Width+col]
}

// normalizeGlyph applies the blank-glyph rule: the braille-pattern-blank
// code point is treated identically to ASCII space by every serializer.
func normalizeGlyph(r rune) rune {
	if r == blankGlyphRune {
		return ' '
	}
	return r
}

// ToText concatenates rows with newline separators, applying the
// blank-glyph rule (spec §4.4).
func (g *GlyphGrid) ToText() string {
	var b strings.Builder
	b.Grow(g.Width*g.Height + g.Height)
	for row := 0; row < g.Height; row++ {
		if row > 0 {
			b.WriteByte('\n')
		}
		for col := 0; col < g.Width; col++ {
			b.WriteRune(normalizeGlyph(g.At(col, row).Glyph))
		}
	}
	return b.String()
}

// MarkupSpan is one maximal run of cells sharing a quantized color.
type MarkupSpan struct {
	Text  string // glyphs in the run, blank-normalized
	Color RGB
	Blank bool // true when the run is entirely blank glyphs (no style emitted)
}

// MarkupLine is one row's worth of spans.
type MarkupLine []MarkupSpan

// ToColoredMarkup coalesces each row into runs of cells with identical
// quantized color (spec §4.4). In color mode, a cell's quantized color is
// NearestInPalette(...) when a palette is selected, else its raw RGB.
// Blank cells carry no style.
func (g *GlyphGrid) ToColoredMarkup() []MarkupLine {
	lines := make([]MarkupLine, g.Height)
	palette := PaletteFor(g.config.ColorPalette)

	quantize := func(c RGB) RGB {
		if palette == nil {
			return c
		}
		return NearestInPalette(c.R, c.G, c.B, palette)
	}

	for row := 0; row < g.Height; row++ {
		var spans MarkupLine
		var cur MarkupSpan
		haveCur := false

		flush := func() {
			if haveCur {
				spans = append(spans, cur)
				haveCur = false
			}
		}

		for col := 0; col < g.Width; col++ {
			cell := g.At(col, row)
			glyph := normalizeGlyph(cell.Glyph)
			blank := glyph == ' '
			color := quantize(cell.Color)

			if haveCur && cur.Blank == blank && (blank || cur.Color == color) {
				cur.Text += string(glyph)
				continue
			}
			flush()
			cur = MarkupSpan{Text: string(glyph), Color: color, Blank: blank}
			haveCur = true
		}
		flush()
		lines[row] = spans
	}
	return lines
}
