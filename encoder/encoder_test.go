package encoder

import (
	"bytes"
	stdgif "image/gif"
	"testing"

	"github.com/pixglyph/pixglyph"
	"github.com/pixglyph/pixglyph/pipeline"
)

func solidGrid(t *testing.T, w, h int, r, g, b uint8) pipeline.ConvertedFrame {
	t.Helper()
	cfg := pixglyph.DefaultConfig()
	cfg.Width = w
	px := make([]byte, w*h*4)
	for i := 0; i < w*h; i++ {
		px[i*4], px[i*4+1], px[i*4+2], px[i*4+3] = r, g, b, 255
	}
	grid, err := pixglyph.Convert(px, w, h, cfg)
	if err != nil {
		t.Fatalf("Convert: %v", err)
	}
	return pipeline.ConvertedFrame{Grid: grid}
}

func newTestHost(t *testing.T) *Host {
	t.Helper()
	sample := solidGrid(t, 8, 8, 200, 40, 10)
	raster := sample.Grid.ToRaster()
	host, err := NewGIFHost(raster.Bounds().Dx(), raster.Bounds().Dy(), rasterPixels(raster), 10, 0)
	if err != nil {
		t.Fatalf("NewGIFHost: %v", err)
	}
	return host
}

func TestHostLifecycleHappyPath(t *testing.T) {
	host := newTestHost(t)
	if host.State() != StateCreated {
		t.Fatalf("initial state = %v, want Created", host.State())
	}

	frame := solidGrid(t, 8, 8, 200, 40, 10)
	if err := host.WriteFrame(frame, 10); err != nil {
		t.Fatalf("WriteFrame: %v", err)
	}
	if host.State() != StateWriting {
		t.Fatalf("state after write = %v, want Writing", host.State())
	}

	data, err := host.Finalize()
	if err != nil {
		t.Fatalf("Finalize: %v", err)
	}
	if host.State() != StateFinalized {
		t.Fatalf("state after finalize = %v, want Finalized", host.State())
	}
	if _, err := stdgif.DecodeAll(bytes.NewReader(data)); err != nil {
		t.Fatalf("stdlib decode of assembled GIF: %v", err)
	}
}

func TestHostRejectsWriteAfterFinalize(t *testing.T) {
	host := newTestHost(t)
	frame := solidGrid(t, 8, 8, 1, 2, 3)
	if err := host.WriteFrame(frame, 10); err != nil {
		t.Fatalf("WriteFrame: %v", err)
	}
	if _, err := host.Finalize(); err != nil {
		t.Fatalf("Finalize: %v", err)
	}
	if err := host.WriteFrame(frame, 10); err == nil {
		t.Fatal("expected error writing after finalize")
	}
}

func TestHostRejectsDoubleFinalize(t *testing.T) {
	host := newTestHost(t)
	frame := solidGrid(t, 8, 8, 1, 2, 3)
	host.WriteFrame(frame, 10)
	if _, err := host.Finalize(); err != nil {
		t.Fatalf("Finalize: %v", err)
	}
	if _, err := host.Finalize(); err == nil {
		t.Fatal("expected error on double finalize")
	}
}

func TestHostCancelBlocksFurtherWrites(t *testing.T) {
	host := newTestHost(t)
	host.Cancel()
	if host.State() != StateCancelled {
		t.Fatalf("state after cancel = %v, want Cancelled", host.State())
	}
	frame := solidGrid(t, 8, 8, 1, 2, 3)
	if err := host.WriteFrame(frame, 10); err == nil {
		t.Fatal("expected error writing after cancel")
	}
	if _, err := host.Finalize(); err == nil {
		t.Fatal("expected error finalizing after cancel")
	}
}
