package pixglyph

// AdjustedColor is the post brightness/contrast/clamp RGB triplet for one
// pixel, plus the luminance derived from it.
type AdjustedColor struct {
	R, G, B uint8
	Y       float64 // luminance in [0, 255]
}

// clamp255 clamps v to [0, 255].
func clamp255(v float64) uint8 {
	if v < 0 {
		return 0
	}
	if v > 255 {
		return 255
	}
	return uint8(v + 0.5)
}

// adjustPixel applies brightness scale, the contrast curve, and clamping to
// one (r, g, b) triplet, per spec §4.3 steps 1-3. contrast must not be 259
// (ConverterConfig.Validate rejects that before conversion starts).
func adjustPixel(r, g, b uint8, brightness, contrast int) AdjustedColor {
	bscale := float64(brightness) / 100
	rf := float64(r) * bscale
	gf := float64(g) * bscale
	bf := float64(b) * bscale

	factor := 259 * (float64(contrast) + 255) / (255 * (259 - float64(contrast)))
	adj := func(v float64) float64 {
		return factor*(v-128) + 128
	}

	out := AdjustedColor{
		R: clamp255(adj(rf)),
		G: clamp255(adj(gf)),
		B: clamp255(adj(bf)),
	}
	out.Y = 0.299*float64(out.R) + 0.587*float64(out.G) + 0.114*float64(out.B)
	return out
}

// glyphIndex maps a luminance value to a glyph-ramp index, per spec §4.3
// step 4. Ramps are ordered densest-glyph-first (e.g. "@%#*+=-:. "), so the
// default (non-inverted) mapping sends low luminance to a low index and
// high luminance to a high index; invert reverses that. ramp must have at
// least 2 entries (ConverterConfig.Validate enforces this).
func glyphIndex(y float64, rampLen int, invert bool) int {
	frac := y / 255
	if invert {
		frac = 1 - frac
	}
	i := int(frac * float64(rampLen-1))
	if i < 0 {
		i = 0
	}
	if i > rampLen-1 {
		i = rampLen - 1
	}
	return i
}
