package pixglyph

// RGB is a 3-channel color used by PaletteTables. It is distinct from
// color.RGBA because palette arithmetic (squared Euclidean distance) never
// needs an alpha channel.
type RGB struct {
	R, G, B uint8
}

// ansi16 holds the 16 VGA/DOS console colors, in the conventional
// black/red/green/yellow/blue/magenta/cyan/white, then bright, order.
var ansi16 = [16]RGB{
	{0x00, 0x00, 0x00}, {0x80, 0x00, 0x00}, {0x00, 0x80, 0x00}, {0x80, 0x80, 0x00},
	{0x00, 0x00, 0x80}, {0x80, 0x00, 0x80}, {0x00, 0x80, 0x80}, {0xc0, 0xc0, 0xc0},
	{0x80, 0x80, 0x80}, {0xff, 0x00, 0x00}, {0x00, 0xff, 0x00}, {0xff, 0xff, 0x00},
	{0x00, 0x00, 0xff}, {0xff, 0x00, 0xff}, {0x00, 0xff, 0xff}, {0xff, 0xff, 0xff},
}

// cga16 holds the fixed 16-color CGA palette (the standard "low" and "high"
// intensity IBM CGA RGBI set).
var cga16 = [16]RGB{
	{0x00, 0x00, 0x00}, {0x00, 0x00, 0xaa}, {0x00, 0xaa, 0x00}, {0x00, 0xaa, 0xaa},
	{0xaa, 0x00, 0x00}, {0xaa, 0x00, 0xaa}, {0xaa, 0x55, 0x00}, {0xaa, 0xaa, 0xaa},
	{0x55, 0x55, 0x55}, {0x55, 0x55, 0xff}, {0x55, 0xff, 0x55}, {0x55, 0xff, 0xff},
	{0xff, 0x55, 0x55}, {0xff, 0x55, 0xff}, {0xff, 0xff, 0x55}, {0xff, 0xff, 0xff},
}

// gameboy4 holds the four classic DMG Game Boy green shades, lightest first.
var gameboy4 = [4]RGB{
	{0xe0, 0xf8, 0xd0}, {0x88, 0xc0, 0x70}, {0x34, 0x68, 0x56}, {0x08, 0x18, 0x20},
}

// ansi256Cache lazily builds the 256-entry xterm palette once, per spec
// design note §9 ("global mutable state: only the palette cache... treat as
// a lazy const").
var ansi256Cache []RGB

func ansi256() []RGB {
	if ansi256Cache != nil {
		return ansi256Cache
	}
	pal := make([]RGB, 0, 256)
	pal = append(pal, ansi16[:]...)
	step := func(i int) uint8 {
		if i == 0 {
			return 0
		}
		return uint8(i*40 + 55)
	}
	for r := 0; r < 6; r++ {
		for g := 0; g < 6; g++ {
			for b := 0; b < 6; b++ {
				pal = append(pal, RGB{step(r), step(g), step(b)})
			}
		}
	}
	for i := 0; i < 24; i++ {
		v := uint8(8 + i*10)
		pal = append(pal, RGB{v, v, v})
	}
	ansi256Cache = pal
	return pal
}

// PaletteFor returns the fixed color table for mode, or nil for PaletteFull
// (no palette; pass-through 24-bit).
func PaletteFor(mode PaletteMode) []RGB {
	switch mode {
	case PaletteANSI16:
		return ansi16[:]
	case PaletteANSI256:
		return ansi256()
	case PaletteCGA:
		return cga16[:]
	case PaletteGameboy:
		return gameboy4[:]
	default:
		return nil
	}
}

// NearestInPalette returns the palette entry minimizing squared Euclidean
// distance to (r, g, b), ties resolved by earliest index.
func NearestInPalette(r, g, b uint8, palette []RGB) RGB {
	best := palette[0]
	bestDist := sqDist(r, g, b, best)
	for _, c := range palette[1:] {
		d := sqDist(r, g, b, c)
		if d < bestDist {
			bestDist = d
			best = c
		}
	}
	return best
}

func sqDist(r, g, b uint8, c RGB) int {
	dr := int(r) - int(c.R)
	dg := int(g) - int(c.G)
	db := int(b) - int(c.B)
	return dr*dr + dg*dg + db*db
}
