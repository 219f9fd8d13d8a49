package pixglyph

import (
	"image"
	"image/color"
	stddraw "image/draw"

	"golang.org/x/image/draw"
	"golang.org/x/image/font"
	"golang.org/x/image/font/basicfont"
	"golang.org/x/image/math/fixed"
)

// rasterFace is the fixed, dependency-free bitmap face shipped by
// golang.org/x/image/font/basicfont, used as the monospace typeface for
// raster export (spec §4.4).
func rasterFace() font.Face {
	return basicfont.Face7x13
}

// advanceWidth implements spec §4.4's raster measurement rule: measure the
// widest glyph in the configured set against the face, and use
// max(measured, 0.6*fontSize) as the cell advance width, at 1x scale (the
// final image is resampled to config.RasterScale afterward).
func advanceWidth(glyphs []rune, face font.Face, fontSize int) int {
	widest := 0
	for _, r := range glyphs {
		adv, ok := face.GlyphAdvance(r)
		if !ok {
			continue
		}
		if w := adv.Ceil(); w > widest {
			widest = w
		}
	}
	min := int(0.6 * float64(fontSize))
	if widest < min {
		return min
	}
	return widest
}

// ToRaster renders the grid to an *image.RGBA at config.RasterScale*FontSize,
// using a monospace face. Background honors config.Background's alpha; only
// non-blank glyphs are drawn. Line height is
// scale*fontSize*lineHeightMultiplier, baseline "top" (y = row*lineHeight),
// per spec §4.4.
//
// The base glyph grid is rendered at 1x against basicfont's native bitmap
// size and then resampled with golang.org/x/image/draw's nearest-neighbor
// scaler to RasterScale, keeping the blocky character-art look a smooth
// (bilinear) scale would blur away.
func (g *GlyphGrid) ToRaster() *image.RGBA {
	cfg := g.config
	face := rasterFace()
	cellW := advanceWidth(cfg.glyphs(), face, cfg.FontSize)
	lineHeight := int(float64(cfg.FontSize) * cfg.LineHeight)
	if lineHeight < 1 {
		lineHeight = 1
	}

	imgW := cellW * g.Width
	imgH := lineHeight * g.Height
	if imgW < 1 {
		imgW = 1
	}
	if imgH < 1 {
		imgH = 1
	}
	base := image.NewRGBA(image.Rect(0, 0, imgW, imgH))
	stddraw.Draw(base, base.Bounds(), &image.Uniform{C: cfg.Background}, image.Point{}, stddraw.Src)

	for row := 0; row < g.Height; row++ {
		baselineY := row*lineHeight + int(float64(cfg.FontSize)*0.8)
		for col := 0; col < g.Width; col++ {
			cell := g.At(col, row)
			glyph := normalizeGlyph(cell.Glyph)
			if glyph == ' ' {
				continue
			}
			d := font.Drawer{
				Dst:  base,
				Src:  &image.Uniform{C: color.RGBA{R: cell.Color.R, G: cell.Color.G, B: cell.Color.B, A: 255}},
				Face: face,
				Dot: fixed.Point26_6{
					X: fixed.I(col * cellW),
					Y: fixed.I(baselineY),
				},
			}
			d.DrawString(string(glyph))
		}
	}

	scale := cfg.RasterScale
	if scale <= 1 {
		return base
	}
	scaled := image.NewRGBA(image.Rect(0, 0, imgW*scale, imgH*scale))
	draw.NearestNeighbor.Scale(scaled, scaled.Bounds(), base, base.Bounds(), draw.Over, nil)
	return scaled
}
