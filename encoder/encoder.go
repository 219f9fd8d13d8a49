// Package encoder hosts an output backend behind a small state machine
// (spec §4.10, C10 EncoderHost): Created -> Writing -> Finalized, with a
// Cancelled escape hatch from either open state. It is grounded on the
// teacher's EncoderOptions/validateConfig convention of guarding every
// public call with an explicit state check rather than trusting caller
// discipline.
package encoder

import (
	"image"
	"sync"

	"github.com/pixglyph/pixglyph"
	"github.com/pixglyph/pixglyph/gif"
	"github.com/pixglyph/pixglyph/internal/neuquant"
	"github.com/pixglyph/pixglyph/pipeline"
)

// rasterPixels flattens an *image.RGBA into a row-major R,G,B byte stream,
// the shape internal/neuquant and GIF index lookups expect.
func rasterPixels(img *image.RGBA) []byte {
	b := img.Bounds()
	out := make([]byte, 0, b.Dx()*b.Dy()*3)
	for y := b.Min.Y; y < b.Max.Y; y++ {
		for x := b.Min.X; x < b.Max.X; x++ {
			c := img.RGBAAt(x, y)
			out = append(out, c.R, c.G, c.B)
		}
	}
	return out
}

// State is one point in the host's lifecycle.
type State int

const (
	StateCreated State = iota
	StateWriting
	StateFinalized
	StateCancelled
)

func (s State) String() string {
	switch s {
	case StateCreated:
		return "created"
	case StateWriting:
		return "writing"
	case StateFinalized:
		return "finalized"
	case StateCancelled:
		return "cancelled"
	default:
		return "unknown"
	}
}

// Backend is the narrow contract an EncoderHost drives: accept frames in
// order, then produce the final byte stream.
type Backend interface {
	WriteFrame(frame pipeline.ConvertedFrame, delayCentiSec int) error
	Finish() []byte
}

// H264Encoder is the contract a future MP4/H.264 backend would satisfy
// (spec §6 DESIGN NOTES). No implementation ships in this module: nothing
// in the wired dependency set performs H.264 bitstream encoding, so this is
// declared for callers to implement against, not backed by a concrete type.
type H264Encoder interface {
	Backend
	// SetBitrate configures the target encode bitrate in bits per second.
	SetBitrate(bps int) error
}

// Host drives one Backend through Created -> Writing -> Finalized/Cancelled.
// It is single-owner, single-use.
type Host struct {
	mu      sync.Mutex
	backend Backend
	state   State
}

// NewHost wraps backend in a fresh Created-state host.
func NewHost(backend Backend) *Host {
	return &Host{backend: backend, state: StateCreated}
}

// NewGIFHost builds an EncoderHost writing a GIF89a backend sized width x
// height (the rasterized canvas size, e.g. from a representative frame's
// GlyphGrid.ToRaster().Bounds()), training the global palette from pixels
// (that same representative frame's flattened RGB bytes) via
// internal/neuquant at sample factor q, looping loopCount times.
func NewGIFHost(width, height int, pixels []byte, q, loopCount int) (*Host, error) {
	nq, err := neuquant.New(pixels, q)
	if err != nil {
		return nil, pixglyph.NewError(pixglyph.ErrQuantize, "encoder", "train global palette", err)
	}
	if err := nq.Quantize(); err != nil {
		return nil, pixglyph.NewError(pixglyph.ErrQuantize, "encoder", "quantize global palette", err)
	}
	backend := &gifBackend{
		asm:     gif.NewAssembler(width, height, nq.ColorMap(), loopCount),
		nq:      nq,
		width:   width,
		height:  height,
	}
	return NewHost(backend), nil
}

// State reports the host's current lifecycle state.
func (h *Host) State() State {
	h.mu.Lock()
	defer h.mu.Unlock()
	return h.state
}

// WriteFrame appends one converted frame. It transitions Created ->
// Writing on the first call and returns ErrInvalidState once the host has
// been finalized or cancelled.
func (h *Host) WriteFrame(frame pipeline.ConvertedFrame, delayCentiSec int) error {
	h.mu.Lock()
	defer h.mu.Unlock()
	if h.state == StateFinalized || h.state == StateCancelled {
		return pixglyph.NewError(pixglyph.ErrInvalidState, "encoder",
			"WriteFrame after "+h.state.String(), nil)
	}
	h.state = StateWriting
	return h.backend.WriteFrame(frame, delayCentiSec)
}

// Finalize seals the output and transitions to Finalized. It is invalid to
// call WriteFrame afterward. Empty backend output is reported as ErrEncode.
func (h *Host) Finalize() ([]byte, error) {
	h.mu.Lock()
	defer h.mu.Unlock()
	if h.state == StateCancelled {
		return nil, pixglyph.NewError(pixglyph.ErrInvalidState, "encoder", "Finalize after cancel", nil)
	}
	if h.state == StateFinalized {
		return nil, pixglyph.NewError(pixglyph.ErrInvalidState, "encoder", "Finalize called twice", nil)
	}
	out := h.backend.Finish()
	h.state = StateFinalized
	if len(out) == 0 {
		return nil, pixglyph.NewError(pixglyph.ErrEncode, "encoder", "backend produced empty output", nil)
	}
	return out, nil
}

// Cancel moves the host to Cancelled from any open state. It is a no-op
// once the host is already Finalized or Cancelled.
func (h *Host) Cancel() {
	h.mu.Lock()
	defer h.mu.Unlock()
	if h.state == StateFinalized {
		return
	}
	h.state = StateCancelled
}

// gifBackend adapts gif.Assembler to the Backend contract, converting each
// ConvertedFrame's GlyphGrid colors to global-palette indices via the
// trained NeuQuant network.
type gifBackend struct {
	asm           *gif.Assembler
	nq            *neuquant.NeuQuant
	width, height int
}

func (b *gifBackend) WriteFrame(frame pipeline.ConvertedFrame, delayCentiSec int) error {
	raster := frame.Grid.ToRaster()
	bounds := raster.Bounds()
	pixels := rasterPixels(raster)

	indices := make([]byte, 0, bounds.Dx()*bounds.Dy())
	for i := 0; i < len(pixels); i += 3 {
		idx := b.nq.Lookup(pixels[i], pixels[i+1], pixels[i+2])
		indices = append(indices, byte(idx))
	}

	return b.asm.WriteFrame(gif.Frame{
		Indices:          indices,
		Width:            bounds.Dx(),
		Height:           bounds.Dy(),
		DelayCentiSec:    delayCentiSec,
		Disposal:         gif.DisposalBackground,
		TransparentIndex: -1,
	})
}

func (b *gifBackend) Finish() []byte {
	return b.asm.Finish()
}
