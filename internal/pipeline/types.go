package pipeline

import (
	"context"
	"time"

	"github.com/kikiluvv/clipmerge/internal/clips"
	"github.com/kikiluvv/clipmerge/internal/ffmpeg"
	"github.com/kikiluvv/clipmerge/internal/graph"
)

// Engine is the media engine the pipeline drives. *ffmpeg.Executor implements it.
type Engine interface {
	ProbeDuration(ctx context.Context, path string) (float64, error)
	ProbeCreationTime(ctx context.Context, path string) (string, error)
	Merge(ctx context.Context, opts ffmpeg.MergeOptions) error
}

// Plan is everything decided before ffmpeg is launched
type Plan struct {
	Clips  []clips.Clip
	Labels []string
	Graph  *graph.Result
	Merge  ffmpeg.MergeOptions
}

// Args returns the merge arguments ffmpeg would receive
func (p *Plan) Args() []string {
	return ffmpeg.BuildMergeArgs(p.Merge)
}

// RunOptions configures a merge run
type RunOptions struct {
	// Progress receives engine progress. Percentage is filled when the
	// expected output length could be determined.
	Progress ffmpeg.ProgressFunc
}

// Result describes a finished merge
type Result struct {
	OutputPath string
	Clips      []clips.Clip
	Length     time.Duration
	Elapsed    time.Duration
}
