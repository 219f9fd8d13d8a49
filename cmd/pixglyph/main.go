// Command pixglyph converts images and short clips into character-art from
// the command line.
//
// Usage:
//
//	pixglyph convert [options] <input>   Single image -> text/markup/raster
//	pixglyph animate [options] <input>   Animated GIF or video -> animated GIF
//	pixglyph info <input>                Report source dimensions and frame count
package main

import (
	"context"
	"flag"
	"fmt"
	"image"
	"image/png"
	"io"
	"os"
	"os/signal"
	"strings"
	"time"

	"golang.org/x/term"

	"github.com/pixglyph/pixglyph"
	"github.com/pixglyph/pixglyph/encoder"
	"github.com/pixglyph/pixglyph/pipeline"
)

func main() {
	if len(os.Args) < 2 {
		printUsage()
		os.Exit(1)
	}

	var err error
	switch os.Args[1] {
	case "convert":
		err = runConvert(os.Args[2:])
	case "animate":
		err = runAnimate(os.Args[2:])
	case "info":
		err = runInfo(os.Args[2:])
	case "-h", "-help", "--help", "help":
		printUsage()
		return
	default:
		fmt.Fprintf(os.Stderr, "pixglyph: unknown command %q\n\n", os.Args[1])
		printUsage()
		os.Exit(1)
	}

	if err != nil {
		fmt.Fprintf(os.Stderr, "pixglyph: %v\n", err)
		os.Exit(1)
	}
}

func printUsage() {
	fmt.Fprintf(os.Stderr, `Usage:
  pixglyph convert [options] <input>   Single image to text/markup/raster
  pixglyph animate [options] <input>   Animated GIF or video to animated GIF
  pixglyph info <input>                Report source dimensions and frame count

Use "-" as input to read from stdin.

Run "pixglyph <command> -h" for command-specific options.
`)
}

func openInput(path string) (io.ReadCloser, error) {
	if path == "-" {
		return io.NopCloser(os.Stdin), nil
	}
	return os.Open(path)
}

// --- shared flag resolution ---

func resolveCharset(name, custom string) (pixglyph.Charset, string) {
	switch strings.ToLower(name) {
	case "detailed":
		return pixglyph.CharsetDetailed, custom
	case "blocks":
		return pixglyph.CharsetBlocks, custom
	case "simple":
		return pixglyph.CharsetSimple, custom
	case "binary":
		return pixglyph.CharsetBinary, custom
	case "braille":
		return pixglyph.CharsetBraille, custom
	case "dots":
		return pixglyph.CharsetDots, custom
	case "custom":
		return pixglyph.CharsetCustom, custom
	default:
		return pixglyph.CharsetStandard, custom
	}
}

func resolveColorMode(name string) pixglyph.ColorMode {
	if strings.ToLower(name) == "mono" {
		return pixglyph.ColorModeGrayscale
	}
	return pixglyph.ColorModeColor
}

func resolvePalette(name string) pixglyph.PaletteMode {
	switch strings.ToLower(name) {
	case "ansi256":
		return pixglyph.PaletteANSI256
	case "ansi16":
		return pixglyph.PaletteANSI16
	case "cga":
		return pixglyph.PaletteCGA
	case "gameboy":
		return pixglyph.PaletteGameboy
	default:
		return pixglyph.PaletteFull
	}
}

// --- convert ---

func runConvert(args []string) error {
	fs := flag.NewFlagSet("convert", flag.ContinueOnError)
	cfg := pixglyph.DefaultConfig()
	fs.IntVar(&cfg.Width, "width", cfg.Width, "output width in character columns")
	charset := fs.String("charset", "standard", "standard|detailed|blocks|simple|binary|braille|dots|custom")
	custom := fs.String("custom-charset", "", "glyph ramp, dense to sparse; overrides -charset when non-empty")
	colorMode := fs.String("color", "auto", "color|mono|auto (auto falls back to mono for markup output when stdout isn't a terminal)")
	paletteName := fs.String("palette", "full", "full|ansi256|ansi16|cga|gameboy")
	fs.IntVar(&cfg.Contrast, "contrast", cfg.Contrast, "contrast curve parameter, 0-255")
	fs.IntVar(&cfg.Brightness, "brightness", cfg.Brightness, "brightness, 1-400 (100=neutral)")
	fs.BoolVar(&cfg.Invert, "invert", cfg.Invert, "invert the glyph density ramp")
	fs.IntVar(&cfg.RasterScale, "scale", cfg.RasterScale, "raster output integer upscale factor")
	out := fs.String("o", "-", "output path ('-' for stdout), required with -format raster")
	format := fs.String("format", "markup", "text|markup|raster")
	if err := fs.Parse(args); err != nil {
		return err
	}
	if fs.NArg() < 1 {
		return fmt.Errorf("convert: missing <input>")
	}

	cfg.Charset, cfg.CustomCharset = resolveCharset(*charset, *custom)
	cfg.ColorPalette = resolvePalette(*paletteName)
	if *colorMode == "auto" {
		cfg.ColorMode = pixglyph.ColorModeColor
		if !term.IsTerminal(int(os.Stdout.Fd())) && *format == "markup" {
			cfg.ColorMode = pixglyph.ColorModeGrayscale
		}
	} else {
		cfg.ColorMode = resolveColorMode(*colorMode)
	}

	r, err := openInput(fs.Arg(0))
	if err != nil {
		return fmt.Errorf("convert: open input: %w", err)
	}
	defer r.Close()

	src := pipeline.NewStillImageSource(r)
	ctx, cancel := signalContext()
	defer cancel()

	frames, errc := src.Frames(ctx)
	var grid *pixglyph.GlyphGrid
	for raw := range frames {
		grid, err = pixglyph.Convert(raw.Pixels, raw.Width, raw.Height, cfg)
		if err != nil {
			return fmt.Errorf("convert: %w", err)
		}
	}
	if err := <-errc; err != nil {
		return fmt.Errorf("convert: %w", err)
	}
	if grid == nil {
		return fmt.Errorf("convert: source produced no frame")
	}

	return writeConvertOutput(*out, *format, grid)
}

func writeConvertOutput(out, format string, grid *pixglyph.GlyphGrid) error {
	w := os.Stdout
	if out != "-" {
		f, err := os.Create(out)
		if err != nil {
			return fmt.Errorf("create output: %w", err)
		}
		defer f.Close()
		w = f
	}

	switch format {
	case "text":
		_, err := io.WriteString(w, grid.ToText())
		return err
	case "markup":
		for _, line := range grid.ToColoredMarkup() {
			for _, span := range line {
				if span.Blank {
					fmt.Fprint(w, span.Text)
					continue
				}
				fmt.Fprintf(w, "\x1b[38;2;%d;%d;%dm%s\x1b[0m", span.Color.R, span.Color.G, span.Color.B, span.Text)
			}
			fmt.Fprintln(w)
		}
		return nil
	case "raster":
		if out == "-" {
			return fmt.Errorf("raster format requires -o <path.png>, not stdout")
		}
		return encodeRasterPNG(w, grid)
	default:
		return fmt.Errorf("unknown -format %q", format)
	}
}

// --- animate ---

func runAnimate(args []string) error {
	fs := flag.NewFlagSet("animate", flag.ContinueOnError)
	cfg := pixglyph.DefaultConfig()
	fs.IntVar(&cfg.Width, "width", cfg.Width, "output width in character columns")
	charset := fs.String("charset", "standard", "standard|detailed|blocks|simple|binary|braille|dots|custom")
	custom := fs.String("custom-charset", "", "glyph ramp, dense to sparse; overrides -charset when non-empty")
	fs.IntVar(&cfg.Contrast, "contrast", cfg.Contrast, "contrast curve parameter, 0-255")
	fs.IntVar(&cfg.Brightness, "brightness", cfg.Brightness, "brightness, 1-400 (100=neutral)")
	fs.BoolVar(&cfg.Invert, "invert", cfg.Invert, "invert the glyph density ramp")
	fs.IntVar(&cfg.RasterScale, "scale", cfg.RasterScale, "raster output integer upscale factor")
	out := fs.String("o", "out.gif", "output GIF path")
	quality := fs.Int("q", 10, "NeuQuant sample factor, 1 (best) to 30 (fastest)")
	loop := fs.Int("loop", 0, "loop count, 0 = infinite")
	fps := fs.Float64("fps", 0, "target sample rate for video sources, 0 = native")
	concurrency := fs.Int("j", 4, "converter concurrency")
	if err := fs.Parse(args); err != nil {
		return err
	}
	if fs.NArg() < 1 {
		return fmt.Errorf("animate: missing <input>")
	}
	cfg.Charset, cfg.CustomCharset = resolveCharset(*charset, *custom)
	cfg.ColorMode = pixglyph.ColorModeColor

	src, closeSrc, err := openAnimationSource(fs.Arg(0), *fps)
	if err != nil {
		return fmt.Errorf("animate: %w", err)
	}
	defer closeSrc()

	ctx, cancel := signalContext()
	defer cancel()

	job := pipeline.Job{
		Source:      src,
		Converter:   cfg,
		Concurrency: *concurrency,
		OnProgress: func(p pipeline.Progress) {
			if p.FramesTotal > 0 {
				fmt.Fprintf(os.Stderr, "\r%s: %d/%d", p.Stage, p.FramesDone, p.FramesTotal)
			} else {
				fmt.Fprintf(os.Stderr, "\r%s: %d", p.Stage, p.FramesDone)
			}
		},
	}
	frames, err := pipeline.Run(ctx, job)
	fmt.Fprintln(os.Stderr)
	if err != nil {
		return fmt.Errorf("animate: %w", err)
	}
	if len(frames) == 0 {
		return fmt.Errorf("animate: source produced no frames")
	}

	sample := frames[0].Grid.ToRaster()
	host, err := encoder.NewGIFHost(sample.Bounds().Dx(), sample.Bounds().Dy(), rasterSamplePixels(sample), *quality, *loop)
	if err != nil {
		return fmt.Errorf("animate: %w", err)
	}

	delay := 4 // centiseconds, ~25fps default between converted frames
	for _, f := range frames {
		select {
		case <-ctx.Done():
			host.Cancel()
			return pixglyph.NewError(pixglyph.ErrCancelled, "cmd", "animate cancelled", ctx.Err())
		default:
		}
		if err := host.WriteFrame(f, delay); err != nil {
			host.Cancel()
			return fmt.Errorf("animate: %w", err)
		}
	}

	data, err := host.Finalize()
	if err != nil {
		return fmt.Errorf("animate: %w", err)
	}
	return os.WriteFile(*out, data, 0o644)
}

func openAnimationSource(path string, fps float64) (pipeline.FrameSource, func(), error) {
	if strings.HasSuffix(strings.ToLower(path), ".gif") {
		r, err := openInput(path)
		if err != nil {
			return nil, func() {}, err
		}
		return pipeline.NewAnimatedStillSource(r), func() { r.Close() }, nil
	}
	return pipeline.NewVideoSource(path, fps), func() {}, nil
}

// --- info ---

func runInfo(args []string) error {
	fs := flag.NewFlagSet("info", flag.ContinueOnError)
	if err := fs.Parse(args); err != nil {
		return err
	}
	if fs.NArg() < 1 {
		return fmt.Errorf("info: missing <input>")
	}

	src, closeSrc, err := openAnimationSource(fs.Arg(0), 0)
	if err != nil {
		return fmt.Errorf("info: %w", err)
	}
	defer closeSrc()

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	desc, err := src.Describe(ctx)
	if err != nil {
		return fmt.Errorf("info: %w", err)
	}
	fmt.Printf("width:  %d\nheight: %d\nframes: %d\nfps:    %g\n", desc.Width, desc.Height, desc.FrameCount, desc.FPS)
	return nil
}

func signalContext() (context.Context, context.CancelFunc) {
	return signal.NotifyContext(context.Background(), os.Interrupt)
}

func encodeRasterPNG(w io.Writer, grid *pixglyph.GlyphGrid) error {
	return png.Encode(w, grid.ToRaster())
}

// rasterSamplePixels flattens one raster frame into a row-major R,G,B byte
// stream for training the GIF global palette (spec §4.6).
func rasterSamplePixels(img *image.RGBA) []byte {
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
