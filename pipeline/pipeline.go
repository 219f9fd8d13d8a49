package pipeline

import (
	"context"
	"fmt"
	"sort"
	"sync"

	"golang.org/x/sync/errgroup"

	"github.com/pixglyph/pixglyph"
)

// Stage names for Progress, in pipeline order. Run itself reports only
// StageConvert, once per converted frame; the other stages are not reported.
const (
	StageDecode    = "decode"
	StageConvert   = "convert"
	StageEncode    = "encode"
	StageFinalized = "finalized"
)

// Progress reports pipeline advancement for a caller-supplied callback
// (spec §4.9: cancellation and progress reporting are first-class).
type Progress struct {
	Stage       string
	FramesDone  int
	FramesTotal int // 0 if the source's frame count is unknown
}

// Job configures one AnimationPipeline run.
type Job struct {
	Source      FrameSource
	Converter   pixglyph.ConverterConfig
	Concurrency int // values below 1 default to 4
	OnProgress  func(Progress)
}

// ConvertedFrame pairs a converted glyph grid with its source ordering and
// timing, ready for an encoder host.
type ConvertedFrame struct {
	Index int
	Grid  *pixglyph.GlyphGrid
	PTS   int64 // milliseconds
}

// Run pulls every frame from job.Source, converts it according to
// job.Converter, and returns the results ordered by source index. It is the
// concurrent fan-out/ordered-rejoin shape the teacher's parallel frame
// decoder uses, generalized to errgroup so that a convert error or ctx
// cancellation stops the source from emitting further frames instead of
// draining it to completion; conversions already running finish (spec §5).
func Run(ctx context.Context, job Job) ([]ConvertedFrame, error) {
	if job.Source == nil {
		return nil, pixglyph.NewError(pixglyph.ErrInvalidConfig, "pipeline", "Job.Source is nil", nil)
	}

	desc, err := job.Source.Describe(ctx)
	if err != nil {
		return nil, err
	}

	g, gctx := errgroup.WithContext(ctx)
	concurrency := job.Concurrency
	if concurrency < 1 {
		concurrency = 4
	}
	g.SetLimit(concurrency)

	frames, srcErrc := job.Source.Frames(gctx)

	var (
		mu     sync.Mutex
		out    []ConvertedFrame
		done   int
		report = job.OnProgress
	)
	emit := func(stage string) {
		if report == nil {
			return
		}
		mu.Lock()
		d := done
		mu.Unlock()
		report(Progress{Stage: stage, FramesDone: d, FramesTotal: desc.FrameCount})
	}

	for raw := range frames {
		raw := raw
		g.Go(func() error {
			grid, err := pixglyph.Convert(raw.Pixels, raw.Width, raw.Height, job.Converter)
			if err != nil {
				return fmt.Errorf("pipeline: convert frame %d: %w", raw.Index, err)
			}
			mu.Lock()
			out = append(out, ConvertedFrame{Index: raw.Index, Grid: grid, PTS: raw.PTS.Milliseconds()})
			done++
			mu.Unlock()
			emit(StageConvert)
			return nil
		})
	}

	if err := g.Wait(); err != nil {
		return nil, err
	}
	if srcErr := <-srcErrc; srcErr != nil {
		return nil, srcErr
	}

	sort.Slice(out, func(i, j int) bool { return out[i].Index < out[j].Index })
	return out, nil
}
