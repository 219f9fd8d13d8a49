// Package gif assembles GIF89a byte streams from quantized, LZW-compressed
// frames (spec §4.8, C8 GIFAssembler). It is grounded on the GIF89a layout
// every encoder in the retrieval pack emits (tenox7/gifp's gif.go header
// and block writer, ManInM00N/nicogif's GIFEncoder.go extension framing),
// composed here on top of this module's own internal/lzw package plus the
// root package's ByteSink (C1). Frames arrive already palette-indexed; the
// NeuQuant quantization (internal/neuquant) is done by the caller.
package gif

import (
	"github.com/pixglyph/pixglyph"
	"github.com/pixglyph/pixglyph/internal/lzw"
)

const (
	trailer = 0x3B

	extIntroducer  = 0x21
	extGraphic     = 0xF9
	extApplication = 0xFF
	imageSeparator = 0x2C

	// DisposalNone leaves the previous frame in place.
	DisposalNone = 0
	// DisposalBackground clears the frame area to the background color
	// before rendering the next frame.
	DisposalBackground = 2
	// DisposalPrevious restores the area to what it held before the
	// current frame was rendered.
	DisposalPrevious = 3
)

// Frame is one GIF image block: row-major palette indices plus timing and
// disposal metadata (spec §4.8 / §3 Frame).
type Frame struct {
	Indices          []byte
	Width, Height    int
	Left, Top        int
	Palette          []byte // RGB triplets; nil means reuse the global table
	DelayCentiSec    int
	Disposal         int
	TransparentIndex int // -1 for no transparency
}

// Assembler builds one GIF89a byte stream across repeated WriteFrame calls,
// then Finish seals it with the trailer byte. It is single-owner,
// single-use, matching NeuQuant and LZWEncoder's lifecycle (spec §5).
type Assembler struct {
	sink      *pixglyph.ByteSink
	loopCount int
	wroteHead bool
}

// NewAssembler starts a GIF89a stream sized width x height with the given
// global color table (a flat RGB-triplet slice, any length from 2 to 256
// entries) and NETSCAPE2.0 loop count (0 means loop forever).
func NewAssembler(width, height int, globalPalette []byte, loopCount int) *Assembler {
	a := &Assembler{sink: pixglyph.NewByteSink(0), loopCount: loopCount}
	a.writeHeader(width, height, globalPalette)
	return a
}

func (a *Assembler) writeHeader(width, height int, palette []byte) {
	s := a.sink
	s.WriteASCII("GIF89a")
	s.WriteLEU16(uint16(width))
	s.WriteLEU16(uint16(height))

	bits, padded := paletteSizeField(len(palette) / 3)
	packed := byte(0x80) | byte(bits<<4) | byte(bits)
	s.WriteU8(packed)
	s.WriteU8(0x00) // background color index
	s.WriteU8(0x00) // pixel aspect ratio: unspecified

	s.WriteBytes(padPalette(palette, padded))
	a.writeLoopExtension()
	a.wroteHead = true
}

func (a *Assembler) writeLoopExtension() {
	s := a.sink
	s.WriteU8(extIntroducer)
	s.WriteU8(extApplication)
	s.WriteU8(0x0B)
	s.WriteASCII("NETSCAPE2.0")
	s.WriteU8(0x03)
	s.WriteU8(0x01)
	s.WriteLEU16(uint16(a.loopCount))
	s.WriteU8(0x00)
}

// WriteFrame appends one image block: a graphic control extension, image
// descriptor, optional local color table, and LZW-compressed image data
// (spec §4.8).
func (a *Assembler) WriteFrame(f Frame) error {
	if !a.wroteHead {
		return pixglyph.NewError(pixglyph.ErrInvalidState, "gif", "WriteFrame called before header", nil)
	}
	if len(f.Indices) != f.Width*f.Height {
		return pixglyph.NewError(pixglyph.ErrEncode, "gif",
			"frame index count does not match width*height", nil)
	}

	a.writeGraphicControl(f)
	a.writeImageDescriptor(f)

	colorBits := 8
	if f.Palette != nil {
		colorBits = paletteColorBits(len(f.Palette) / 3)
	}
	enc := lzw.New(colorBits)
	packed := enc.Encode(f.Indices)

	s := a.sink
	s.WriteU8(byte(enc.MinCodeSize()))
	s.WriteBytes(packed)
	return nil
}

func (a *Assembler) writeGraphicControl(f Frame) {
	s := a.sink
	s.WriteU8(extIntroducer)
	s.WriteU8(extGraphic)
	s.WriteU8(0x04)

	transFlag := byte(0)
	transIndex := byte(0)
	if f.TransparentIndex >= 0 {
		transFlag = 0x01
		transIndex = byte(f.TransparentIndex)
	}
	packed := byte(f.Disposal<<2) | transFlag
	s.WriteU8(packed)
	s.WriteLEU16(uint16(f.DelayCentiSec))
	s.WriteU8(transIndex)
	s.WriteU8(0x00)
}

func (a *Assembler) writeImageDescriptor(f Frame) {
	s := a.sink
	s.WriteU8(imageSeparator)
	s.WriteLEU16(uint16(f.Left))
	s.WriteLEU16(uint16(f.Top))
	s.WriteLEU16(uint16(f.Width))
	s.WriteLEU16(uint16(f.Height))

	if f.Palette == nil {
		s.WriteU8(0x00)
		return
	}
	bits, padded := paletteSizeField(len(f.Palette) / 3)
	s.WriteU8(0x80 | byte(bits))
	s.WriteBytes(padPalette(f.Palette, padded))
}

// Finish appends the GIF trailer and returns the complete byte stream. The
// Assembler must not be reused afterward.
func (a *Assembler) Finish() []byte {
	a.sink.WriteU8(trailer)
	return a.sink.Bytes()
}

// paletteSizeField returns the 3-bit color-table-size field and the padded
// entry count (the smallest power of two, minimum 2, that holds n colors).
func paletteSizeField(n int) (bits, padded int) {
	padded = 2
	bits = 0
	for padded < n {
		padded *= 2
		bits++
	}
	return bits, padded
}

func paletteColorBits(n int) int {
	bits, _ := paletteSizeField(n)
	return bits + 1
}

func padPalette(palette []byte, entries int) []byte {
	want := entries * 3
	if len(palette) >= want {
		return palette[:want]
	}
	out := make([]byte, want)
	copy(out, palette)
	return out
}
