// Package pipeline drives a FrameSource through pixel-to-glyph conversion
// and returns the converted frames, ordered, for an encoder host to consume;
// it is cancellable through its context (spec §4.9, C5
// FrameSource and C9 AnimationPipeline). Its worker-pool shape is grounded
// on the teacher's own parallel-frame-decode loop (a channel of indices
// fanned out over runtime.GOMAXPROCS(0) workers with results rejoined by
// index), generalized here to golang.org/x/sync/errgroup for cancellation
// propagation.
package pipeline

import (
	"context"
	"fmt"
	"image"
	"image/draw"
	"image/gif"
	_ "image/jpeg"
	_ "image/png"
	"io"
	"os/exec"
	"strconv"
	"strings"
	"time"

	"golang.org/x/image/bmp"
	xwebp "golang.org/x/image/webp"

	"github.com/pixglyph/pixglyph"
)

// RawFrame is one decoded frame handed to the converter stage: tightly
// packed RGBA pixels (the layout pixglyph.Convert expects) plus its display
// timestamp.
type RawFrame struct {
	Index  int
	Pixels []byte // R,G,B,A,... row-major, width*height*4 bytes
	Width  int
	Height int
	PTS    time.Duration
}

// FrameSource describes and iterates the frames of one input (spec §4.9
// C5). Describe must be cheap (header-only where possible); Frames does
// the actual decode work and must respect ctx cancellation.
type FrameSource interface {
	Describe(ctx context.Context) (Description, error)
	Frames(ctx context.Context) (<-chan RawFrame, <-chan error)
}

// Description reports a source's static shape before frames are pulled.
type Description struct {
	Width, Height int
	FrameCount    int // 0 if unknown ahead of time (e.g. piped video)
	FPS           float64
}

// --- still image source ---

// StillImageSource decodes a single still frame from r using one of the
// registered stdlib/x/image decoders (spec §4.9: PNG/JPEG via stdlib,
// BMP/WebP via golang.org/x/image). The decode runs once and is memoized,
// so Describe and Frames can both be called on the same source regardless
// of order.
type StillImageSource struct {
	r   io.Reader
	img image.Image
	err error
	ran bool
}

// NewStillImageSource wraps a reader expected to hold exactly one encoded
// image.
func NewStillImageSource(r io.Reader) *StillImageSource {
	return &StillImageSource{r: r}
}

func (s *StillImageSource) decode() (image.Image, error) {
	if s.ran {
		return s.img, s.err
	}
	s.ran = true
	data, err := io.ReadAll(s.r)
	if err != nil {
		s.err = pixglyph.NewError(pixglyph.ErrSourceOpen, "pipeline", "read still image", err)
		return nil, s.err
	}
	img, format, err := tryDecoders(data)
	if err != nil {
		s.err = pixglyph.NewError(pixglyph.ErrSourceOpen, "pipeline",
			fmt.Sprintf("decode still image (tried stdlib + %s)", format), err)
		return nil, s.err
	}
	s.img = img
	return img, nil
}

func (s *StillImageSource) Describe(ctx context.Context) (Description, error) {
	img, err := s.decode()
	if err != nil {
		return Description{}, err
	}
	b := img.Bounds()
	return Description{Width: b.Dx(), Height: b.Dy(), FrameCount: 1}, nil
}

func (s *StillImageSource) Frames(ctx context.Context) (<-chan RawFrame, <-chan error) {
	out := make(chan RawFrame, 1)
	errc := make(chan error, 1)
	go func() {
		defer close(out)
		defer close(errc)
		img, err := s.decode()
		if err != nil {
			errc <- err
			return
		}
		if !sendFrame(ctx, out, RawFrame{Index: 0, Pixels: toRGBA(img), Width: img.Bounds().Dx(), Height: img.Bounds().Dy()}) {
			errc <- pixglyph.NewError(pixglyph.ErrCancelled, "pipeline", "still frame emit cancelled", ctx.Err())
		}
	}()
	return out, errc
}

// sendFrame delivers f on out unless ctx is already (or becomes) done, in
// which case it reports false without blocking forever. Checking ctx.Err()
// before the select makes cancellation win deterministically once
// triggered, instead of racing an already-buffered send.
func sendFrame(ctx context.Context, out chan<- RawFrame, f RawFrame) bool {
	if ctx.Err() != nil {
		return false
	}
	select {
	case out <- f:
		return true
	case <-ctx.Done():
		return false
	}
}

// --- animated still (GIF) source ---

// AnimatedStillSource replays the frames of an input GIF, one RawFrame per
// stored frame at its recorded delay (spec §4.9). The decode runs once and
// is memoized, so Describe and Frames can both be called regardless of
// order.
type AnimatedStillSource struct {
	r   io.Reader
	g   *gif.GIF
	err error
	ran bool
}

func NewAnimatedStillSource(r io.Reader) *AnimatedStillSource {
	return &AnimatedStillSource{r: r}
}

func (s *AnimatedStillSource) decode() (*gif.GIF, error) {
	if s.ran {
		return s.g, s.err
	}
	s.ran = true
	g, err := gif.DecodeAll(s.r)
	if err != nil {
		s.err = pixglyph.NewError(pixglyph.ErrDecode, "pipeline", "decode animated GIF", err)
		return nil, s.err
	}
	if len(g.Image) == 0 {
		s.err = pixglyph.NewError(pixglyph.ErrDecode, "pipeline", "GIF has no frames", nil)
		return nil, s.err
	}
	s.g = g
	return g, nil
}

func (s *AnimatedStillSource) Describe(ctx context.Context) (Description, error) {
	g, err := s.decode()
	if err != nil {
		return Description{}, err
	}
	b := g.Image[0].Bounds()
	fps := 10.0
	if len(g.Delay) > 0 && g.Delay[0] > 0 {
		fps = 100.0 / float64(g.Delay[0])
	}
	return Description{Width: b.Dx(), Height: b.Dy(), FrameCount: len(g.Image), FPS: fps}, nil
}

func (s *AnimatedStillSource) Frames(ctx context.Context) (<-chan RawFrame, <-chan error) {
	out := make(chan RawFrame, 1)
	errc := make(chan error, 1)
	go func() {
		defer close(out)
		defer close(errc)
		g, err := s.decode()
		if err != nil {
			errc <- err
			return
		}
		canvas := image.NewRGBA(image.Rect(0, 0, g.Config.Width, g.Config.Height))
		var pts time.Duration
		for i, frame := range g.Image {
			draw.Draw(canvas, frame.Bounds(), frame, frame.Bounds().Min, draw.Over)
			b := canvas.Bounds()
			rf := RawFrame{Index: i, Pixels: toRGBA(canvas), Width: b.Dx(), Height: b.Dy(), PTS: pts}
			if !sendFrame(ctx, out, rf) {
				errc <- pixglyph.NewError(pixglyph.ErrCancelled, "pipeline", "animated source cancelled", ctx.Err())
				return
			}
			delay := 10
			if i < len(g.Delay) {
				delay = g.Delay[i]
			}
			pts += time.Duration(delay) * 10 * time.Millisecond
		}
	}()
	return out, errc
}

// --- video source ---

// VideoSource decodes frames from a video file by piping it through
// external ffprobe (to learn dimensions/rate) and ffmpeg (to decode raw
// frames) processes. No library in this module's dependency set decodes
// container/video codecs directly (see DESIGN.md), so this shells out the
// same way a CLI tool pipes to an external codec binary rather than
// linking one in.
type VideoSource struct {
	path string
	fps  float64
}

// NewVideoSource prepares a source that samples path at targetFPS (0 means
// the source's native rate).
func NewVideoSource(path string, targetFPS float64) *VideoSource {
	return &VideoSource{path: path, fps: targetFPS}
}

func (s *VideoSource) Describe(ctx context.Context) (Description, error) {
	cmd := exec.CommandContext(ctx, "ffprobe",
		"-v", "error",
		"-select_streams", "v:0",
		"-show_entries", "stream=width,height,r_frame_rate",
		"-of", "csv=p=0",
		s.path)
	out, err := cmd.Output()
	if err != nil {
		return Description{}, pixglyph.NewError(pixglyph.ErrSourceOpen, "pipeline", "ffprobe "+s.path, err)
	}
	w, h, nativeFPS, err := parseProbeCSV(string(out))
	if err != nil {
		return Description{}, pixglyph.NewError(pixglyph.ErrSourceOpen, "pipeline", "parse ffprobe output", err)
	}
	fps := s.fps
	if fps <= 0 {
		fps = nativeFPS
	}
	return Description{Width: w, Height: h, FPS: fps}, nil
}

// parseProbeCSV parses ffprobe's "width,height,num/den" CSV line.
func parseProbeCSV(line string) (w, h int, fps float64, err error) {
	line = strings.TrimSpace(line)
	fields := strings.Split(line, ",")
	if len(fields) < 3 {
		return 0, 0, 0, fmt.Errorf("unexpected ffprobe output %q", line)
	}
	w, err = strconv.Atoi(fields[0])
	if err != nil {
		return 0, 0, 0, err
	}
	h, err = strconv.Atoi(fields[1])
	if err != nil {
		return 0, 0, 0, err
	}
	num, den, ok := strings.Cut(strings.TrimSpace(fields[2]), "/")
	if !ok {
		return 0, 0, 0, fmt.Errorf("unexpected frame rate %q", fields[2])
	}
	n, err := strconv.ParseFloat(num, 64)
	if err != nil {
		return 0, 0, 0, err
	}
	d, err := strconv.ParseFloat(den, 64)
	if err != nil || d == 0 {
		return 0, 0, 0, fmt.Errorf("unexpected frame rate denominator %q", fields[2])
	}
	return w, h, n / d, nil
}

func (s *VideoSource) Frames(ctx context.Context) (<-chan RawFrame, <-chan error) {
	out := make(chan RawFrame)
	errc := make(chan error, 1)
	go func() {
		defer close(out)
		defer close(errc)

		desc, err := s.Describe(ctx)
		if err != nil {
			errc <- err
			return
		}
		if desc.Width <= 0 || desc.Height <= 0 {
			errc <- pixglyph.NewError(pixglyph.ErrSourceOpen, "pipeline", "could not determine video dimensions", nil)
			return
		}

		args := []string{"-i", s.path, "-f", "rawvideo", "-pix_fmt", "rgba"}
		if s.fps > 0 {
			args = append(args, "-vf", fmt.Sprintf("fps=%g", s.fps))
		}
		args = append(args, "-")
		cmd := exec.CommandContext(ctx, "ffmpeg", args...)
		pipe, err := cmd.StdoutPipe()
		if err != nil {
			errc <- pixglyph.NewError(pixglyph.ErrSourceOpen, "pipeline", "open ffmpeg stdout pipe", err)
			return
		}
		if err := cmd.Start(); err != nil {
			errc <- pixglyph.NewError(pixglyph.ErrSourceOpen, "pipeline", "start ffmpeg", err)
			return
		}

		frameSize := desc.Width * desc.Height * 4
		buf := make([]byte, frameSize)
		frameDur := time.Second
		if desc.FPS > 0 {
			frameDur = time.Duration(float64(time.Second) / desc.FPS)
		}

		for i := 0; ; i++ {
			if _, err := io.ReadFull(pipe, buf); err != nil {
				break
			}
			pixels := make([]byte, frameSize)
			copy(pixels, buf)
			rf := RawFrame{Index: i, Pixels: pixels, Width: desc.Width, Height: desc.Height, PTS: time.Duration(i) * frameDur}
			if !sendFrame(ctx, out, rf) {
				_ = cmd.Process.Kill()
				errc <- pixglyph.NewError(pixglyph.ErrCancelled, "pipeline", "video source cancelled", ctx.Err())
				return
			}
		}
		_ = cmd.Wait()
	}()
	return out, errc
}

func tryDecoders(data []byte) (image.Image, string, error) {
	if img, err := bmp.Decode(byteReader(data)); err == nil {
		return img, "bmp", nil
	}
	if img, err := xwebp.Decode(byteReader(data)); err == nil {
		return img, "webp", nil
	}
	img, format, err := image.Decode(byteReader(data))
	return img, format, err
}

type byteReaderT struct {
	data []byte
	pos  int
}

func byteReader(data []byte) *byteReaderT { return &byteReaderT{data: data} }

func (b *byteReaderT) Read(p []byte) (int, error) {
	if b.pos >= len(b.data) {
		return 0, io.EOF
	}
	n := copy(p, b.data[b.pos:])
	b.pos += n
	return n, nil
}

// toRGBA flattens img into the row-major R,G,B,A byte stream
// pixglyph.Convert expects.
func toRGBA(img image.Image) []byte {
	b := img.Bounds()
	out := make([]byte, 0, b.Dx()*b.Dy()*4)
	for y := b.Min.Y; y < b.Max.Y; y++ {
		for x := b.Min.X; x < b.Max.X; x++ {
			r, g, bl, a := img.At(x, y).RGBA()
			out = append(out, byte(r>>8), byte(g>>8), byte(bl>>8), byte(a>>8))
		}
	}
	return out
}
