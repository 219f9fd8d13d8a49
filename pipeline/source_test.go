package pipeline

import (
	"bytes"
	"context"
	"image"
	"image/color"
	"image/gif"
	"image/png"
	"testing"
)

func encodeSolidPNG(t *testing.T, w, h int, c color.RGBA) []byte {
	t.Helper()
	img := image.NewRGBA(image.Rect(0, 0, w, h))
	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			img.SetRGBA(x, y, c)
		}
	}
	var buf bytes.Buffer
	if err := png.Encode(&buf, img); err != nil {
		t.Fatalf("encode PNG: %v", err)
	}
	return buf.Bytes()
}

func TestStillImageSourceDescribeAndFrames(t *testing.T) {
	data := encodeSolidPNG(t, 3, 2, color.RGBA{R: 10, G: 20, B: 30, A: 255})
	src := NewStillImageSource(bytes.NewReader(data))

	ctx := context.Background()
	desc, err := src.Describe(ctx)
	if err != nil {
		t.Fatalf("Describe: %v", err)
	}
	if desc.Width != 3 || desc.Height != 2 || desc.FrameCount != 1 {
		t.Fatalf("Describe = %+v, want 3x2x1", desc)
	}

	src2 := NewStillImageSource(bytes.NewReader(data))
	frames, errc := src2.Frames(ctx)
	var got []RawFrame
	for f := range frames {
		got = append(got, f)
	}
	if err := <-errc; err != nil {
		t.Fatalf("Frames error: %v", err)
	}
	if len(got) != 1 {
		t.Fatalf("got %d frames, want 1", len(got))
	}
	if len(got[0].Pixels) != 3*2*4 {
		t.Fatalf("pixel buffer len = %d, want %d", len(got[0].Pixels), 3*2*4)
	}
	if got[0].Pixels[0] != 10 || got[0].Pixels[1] != 20 || got[0].Pixels[2] != 30 {
		t.Fatalf("first pixel = %v, want (10,20,30,_)", got[0].Pixels[:4])
	}
}

func encodeAnimatedGIF(t *testing.T, frames int) []byte {
	t.Helper()
	g := &gif.GIF{}
	pal := color.Palette{color.RGBA{0, 0, 0, 255}, color.RGBA{255, 255, 255, 255}}
	for i := 0; i < frames; i++ {
		img := image.NewPaletted(image.Rect(0, 0, 2, 2), pal)
		for p := range img.Pix {
			img.Pix[p] = byte(i % 2)
		}
		g.Image = append(g.Image, img)
		g.Delay = append(g.Delay, 5)
	}
	var buf bytes.Buffer
	if err := gif.EncodeAll(&buf, g); err != nil {
		t.Fatalf("encode GIF: %v", err)
	}
	return buf.Bytes()
}

func TestAnimatedStillSourceFrameCount(t *testing.T) {
	data := encodeAnimatedGIF(t, 4)
	src := NewAnimatedStillSource(bytes.NewReader(data))
	ctx := context.Background()

	desc, err := src.Describe(ctx)
	if err != nil {
		t.Fatalf("Describe: %v", err)
	}
	if desc.FrameCount != 4 {
		t.Fatalf("FrameCount = %d, want 4", desc.FrameCount)
	}

	src2 := NewAnimatedStillSource(bytes.NewReader(data))
	frames, errc := src2.Frames(ctx)
	n := 0
	for range frames {
		n++
	}
	if err := <-errc; err != nil {
		t.Fatalf("Frames error: %v", err)
	}
	if n != 4 {
		t.Fatalf("emitted %d frames, want 4", n)
	}
}

func TestAnimatedStillSourceCancellation(t *testing.T) {
	data := encodeAnimatedGIF(t, 50)
	src := NewAnimatedStillSource(bytes.NewReader(data))
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	frames, errc := src.Frames(ctx)
	for range frames {
	}
	if err := <-errc; err == nil {
		t.Fatal("expected cancellation error")
	}
}
