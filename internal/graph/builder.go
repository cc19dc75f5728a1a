package graph

import (
	"context"
	"fmt"

	"github.com/kikiluvv/clipmerge/internal/clips"
	"github.com/kikiluvv/clipmerge/internal/ffmpeg"
	"github.com/rs/zerolog"
)

// Fixed parameters of the generated stages
const (
	Transition  = "fade"
	FadeCurve   = "tri"
	SampleFmt   = "fltp"
	SampleRate  = 44100
	ChannelSpec = "stereo"
)

// DurationProber returns the playback length of a clip in seconds
type DurationProber interface {
	ProbeDuration(ctx context.Context, path string) (float64, error)
}

// Options controls label rendering and fade timing
type Options struct {
	FontFile  string
	FontSize  int
	FontColor string
	// MarginX and MarginY place the label from the left and bottom edges.
	MarginX int
	MarginY int
	// FadeDuration is the cross-fade length in seconds.
	FadeDuration float64
}

// Result is a finished filter graph
type Result struct {
	Description string
	Video       Node
	Audio       Node
	// Offsets[k] is where the cross-fade into clip k+1 starts.
	Offsets []float64
	Stages  []Stage
}

// Builder turns an ordered clip list into a cross-fade filter graph
type Builder struct {
	logger zerolog.Logger
	prober DurationProber
}

// NewBuilder creates a builder that asks prober for clip lengths
func NewBuilder(logger zerolog.Logger, prober DurationProber) *Builder {
	return &Builder{
		logger: logger.With().Str("component", "graph").Logger(),
		prober: prober,
	}
}

// Build labels and normalizes every clip, then chains the clips pairwise with
// xfade and acrossfade. The fade into clip i starts at
//
//	offset[i] = offset[i-1] + duration(clip[i-1]) - fade
//
// measured on the merged stream, which has already lost one fade length at
// every earlier join.
func (b *Builder) Build(ctx context.Context, list []clips.Clip, labels []string, opts Options) (*Result, error) {
	if len(list) == 0 {
		return nil, &clips.NoInputError{}
	}
	if len(labels) != len(list) {
		return nil, fmt.Errorf("got %d labels for %d clips", len(labels), len(list))
	}

	b.logger.Info().
		Int("clips", len(list)).
		Float64("fade", opts.FadeDuration).
		Msg("generating filter graph")

	g := New()
	videos := make([]Node, len(list))
	audios := make([]Node, len(list))

	for i := range list {
		videos[i] = g.node(labelled, i)
		g.add(drawText(labels[i], opts), videos[i], Input{Index: i, Stream: Video})

		audios[i] = g.node(normalized, i)
		g.add(audioFormat(), audios[i], Input{Index: i, Stream: Audio})
	}

	currentV, currentA := videos[0], audios[0]
	offsets := make([]float64, 0, len(list)-1)
	offset := 0.0

	for i := 1; i < len(list); i++ {
		duration, err := b.prober.ProbeDuration(ctx, list[i-1].Path)
		if err != nil {
			return nil, err
		}

		offset += duration - opts.FadeDuration
		offsets = append(offsets, offset)

		outV := g.node(videoFade, i)
		g.add(crossFadeVideo(opts.FadeDuration, offset), outV, currentV, videos[i])

		outA := g.node(audioFade, i)
		g.add(crossFadeAudio(opts.FadeDuration), outA, currentA, audios[i])

		b.logger.Debug().
			Int("join", i).
			Float64("duration", duration).
			Float64("offset", offset).
			Msg("scheduled cross-fade")

		currentV, currentA = outV, outA
	}

	return &Result{
		Description: g.String(),
		Video:       currentV,
		Audio:       currentA,
		Offsets:     offsets,
		Stages:      g.Stages(),
	}, nil
}

// drawText anchors the label to the bottom-left corner
func drawText(label string, opts Options) string {
	return ffmpeg.NewFilterBuilder("drawtext").
		Str("fontfile", opts.FontFile).
		Text("text", label).
		Int("x", opts.MarginX).
		Opt("y", fmt.Sprintf("h-th-%d", opts.MarginY)).
		Int("fontsize", opts.FontSize).
		Str("fontcolor", opts.FontColor).
		Build()
}

func audioFormat() string {
	return ffmpeg.NewFilterBuilder("aformat").
		Opt("sample_fmts", SampleFmt).
		Int("sample_rates", SampleRate).
		Opt("channel_layouts", ChannelSpec).
		Build()
}

func crossFadeVideo(fade, offset float64) string {
	return ffmpeg.NewFilterBuilder("xfade").
		Opt("transition", Transition).
		Seconds("duration", fade).
		Seconds("offset", offset).
		Build()
}

// crossFadeAudio has no offset; acrossfade joins at the end of its first input
func crossFadeAudio(fade float64) string {
	return ffmpeg.NewFilterBuilder("acrossfade").
		Seconds("d", fade).
		Opt("c1", FadeCurve).
		Opt("c2", FadeCurve).
		Build()
}
