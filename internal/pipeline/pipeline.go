package pipeline

import (
	"context"
	"fmt"
	"path/filepath"
	"time"

	"github.com/kikiluvv/clipmerge/internal/clips"
	"github.com/kikiluvv/clipmerge/internal/config"
	"github.com/kikiluvv/clipmerge/internal/ffmpeg"
	"github.com/kikiluvv/clipmerge/internal/graph"
	"github.com/kikiluvv/clipmerge/internal/label"
	"github.com/kikiluvv/clipmerge/internal/timestamp"
	"github.com/kikiluvv/clipmerge/pkg/util"
	"github.com/rs/zerolog"
)

// Pipeline orchestrates discovery, ordering, graph construction and the merge
type Pipeline struct {
	logger zerolog.Logger
	config *config.Config
	engine Engine
	prober *graph.CachingProber
	source *time.Location
	target *time.Location
}

// New creates a new pipeline instance
func New(logger zerolog.Logger, engine Engine, cfg *config.Config) (*Pipeline, error) {
	if engine == nil {
		return nil, fmt.Errorf("media engine is required")
	}
	if cfg == nil {
		cfg = config.Default()
	}
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}

	source, target, err := cfg.Timezone.Locations()
	if err != nil {
		return nil, err
	}

	return &Pipeline{
		logger: logger.With().Str("component", "pipeline").Logger(),
		config: cfg,
		engine: engine,
		prober: graph.NewCachingProber(engine),
		source: source,
		target: target,
	}, nil
}

// Plan discovers and orders the clips and builds the filter graph without
// running the merge
func (p *Pipeline) Plan(ctx context.Context) (*Plan, error) {
	cfg := p.config

	ordered, labels, err := p.Order(ctx)
	if err != nil {
		return nil, err
	}

	p.checkFont(labels)

	builder := graph.NewBuilder(p.logger, p.prober)
	res, err := builder.Build(ctx, ordered, labels, graph.Options{
		FontFile:     cfg.Label.FontFile,
		FontSize:     cfg.Label.FontSize,
		FontColor:    cfg.Label.FontColor,
		MarginX:      cfg.Label.MarginX,
		MarginY:      cfg.Label.MarginY,
		FadeDuration: cfg.Fade.Duration,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to build filter graph: %w", err)
	}

	enc := cfg.FFmpeg.Encode
	return &Plan{
		Clips:  ordered,
		Labels: labels,
		Graph:  res,
		Merge: ffmpeg.MergeOptions{
			Inputs:        clips.Paths(ordered),
			FilterComplex: res.Description,
			VideoMap:      res.Video.Label(),
			AudioMap:      res.Audio.Label(),
			Encode: ffmpeg.EncodeOptions{
				VideoCodec:  enc.VideoCodec,
				Preset:      enc.Preset,
				RateControl: enc.RateControl,
				CQ:          enc.CQ,
				Profile:     enc.Profile,
				PixelFormat: enc.PixelFormat,
			},
			Output: cfg.Output.Path(),
		},
	}, nil
}

// Order discovers the input clips and sorts them by capture time
func (p *Pipeline) Order(ctx context.Context) ([]clips.Clip, []string, error) {
	cfg := p.config

	p.logger.Info().Msg("getting videos and their dates")

	paths, err := clips.Discover(clips.Source{Folder: cfg.Input.Folder, Files: cfg.Input.Files})
	if err != nil {
		return nil, nil, err
	}

	resolver := timestamp.NewResolver(p.logger, p.engine, p.source, p.target)
	ordered, labels, err := clips.Order(ctx, paths, resolver, cfg.Label.DateFormat)
	if err != nil {
		return nil, nil, err
	}

	p.logger.Info().Int("clips", len(ordered)).Msg("found video files")
	for i, c := range ordered {
		p.logger.Debug().
			Int("index", c.Index).
			Str("clip", filepath.Base(c.Path)).
			Str("label", labels[i]).
			Msg("ordered clip")
	}

	return ordered, labels, nil
}

// Run plans and executes the merge, blocking until ffmpeg exits
func (p *Pipeline) Run(ctx context.Context, opts RunOptions) (*Result, error) {
	start := time.Now()

	plan, err := p.Plan(ctx)
	if err != nil {
		return nil, err
	}

	if err := util.EnsureDir(p.config.Output.Folder); err != nil {
		return nil, fmt.Errorf("failed to create output folder: %w", err)
	}

	merge := plan.Merge
	if opts.Progress != nil {
		merge.ProgressFunc = opts.Progress
		merge.Total = p.expectedLength(ctx, plan)
	}

	p.logger.Info().
		Str("output", merge.Output).
		Dur("length", merge.Total).
		Msg("running ffmpeg")

	if err := p.engine.Merge(ctx, merge); err != nil {
		return nil, err
	}

	res := &Result{
		OutputPath: merge.Output,
		Clips:      plan.Clips,
		Length:     merge.Total,
		Elapsed:    time.Since(start),
	}

	p.logger.Info().
		Str("output", res.OutputPath).
		Dur("elapsed", res.Elapsed).
		Msg("merge complete")

	return res, nil
}

// checkFont parses the label font before ffmpeg does. A bad font is only
// warned about; the engine makes the final call.
func (p *Pipeline) checkFont(labels []string) {
	lc := p.config.Label
	if lc.FontFile == "" {
		return
	}

	f, err := label.Load(lc.FontFile, lc.FontSize)
	if err != nil {
		p.logger.Warn().Err(err).Str("font", lc.FontFile).Msg("label font unusable, ffmpeg will likely reject it")
		return
	}
	defer f.Close()

	widest, width := f.Widest(labels)
	p.logger.Debug().
		Str("font", f.Path()).
		Str("label", widest).
		Int("width_px", width+lc.MarginX).
		Msg("widest label")
}

// expectedLength is the merged output length: the last fade offset plus the
// final clip. It is only used for progress, so a failed probe yields zero.
func (p *Pipeline) expectedLength(ctx context.Context, plan *Plan) time.Duration {
	last := plan.Clips[len(plan.Clips)-1]

	d, err := p.prober.ProbeDuration(ctx, last.Path)
	if err != nil {
		p.logger.Warn().Err(err).Msg("could not probe final clip, progress will be indeterminate")
		return 0
	}

	if n := len(plan.Graph.Offsets); n > 0 {
		d += plan.Graph.Offsets[n-1]
	}
	return time.Duration(d * float64(time.Second))
}
