package ffmpeg

import (
	"context"
	"fmt"
	"strconv"
)

// BuildMergeArgs returns the ffmpeg arguments for a merge, without the
// executor's shared prefix. One -i per input in order, the whole graph as a
// single -filter_complex, and exactly two -map arguments.
func BuildMergeArgs(opts MergeOptions) []string {
	args := make([]string, 0, 2*len(opts.Inputs)+24)

	for _, input := range opts.Inputs {
		args = append(args, "-i", input)
	}

	args = append(args,
		"-filter_complex", opts.FilterComplex,
		"-map", opts.VideoMap,
		"-map", opts.AudioMap,
	)

	enc := opts.Encode.withDefaults()
	args = append(args,
		"-c:v", enc.VideoCodec,
		"-preset", enc.Preset,
		"-rc", enc.RateControl,
		"-cq", strconv.Itoa(enc.CQ),
		"-b:v", "0",
		"-profile:v", enc.Profile,
		"-pix_fmt", enc.PixelFormat,
		"-movflags", "+faststart",
		opts.Output,
	)

	return args
}

// Merge runs the cross-fade merge and blocks until ffmpeg exits
func (e *Executor) Merge(ctx context.Context, opts MergeOptions) error {
	if err := validateMergeOptions(opts); err != nil {
		return fmt.Errorf("invalid merge options: %w", err)
	}

	e.logger.Info().
		Int("inputs", len(opts.Inputs)).
		Str("video", opts.VideoMap).
		Str("audio", opts.AudioMap).
		Str("output", opts.Output).
		Msg("merging clips")

	runOpts := RunOptions{
		Args:            BuildMergeArgs(opts),
		ProgressHandler: opts.ProgressFunc,
		Total:           opts.Total,
		LogHandler: func(line string) {
			e.logger.Debug().Str("ffmpeg", line).Msg("merging")
		},
	}

	if err := e.Run(ctx, runOpts); err != nil {
		return fmt.Errorf("merge failed: %w", err)
	}

	e.logger.Info().Str("output", opts.Output).Msg("merge completed")
	return nil
}

// validateMergeOptions checks required fields
func validateMergeOptions(opts MergeOptions) error {
	if len(opts.Inputs) == 0 {
		return fmt.Errorf("no input files provided")
	}
	if opts.FilterComplex == "" {
		return fmt.Errorf("filter graph is required")
	}
	if opts.VideoMap == "" || opts.AudioMap == "" {
		return fmt.Errorf("video and audio output maps are required")
	}
	if opts.Output == "" {
		return fmt.Errorf("output path is required")
	}
	return nil
}

// withDefaults fills unset encoder fields from DefaultEncode
func (enc EncodeOptions) withDefaults() EncodeOptions {
	def := DefaultEncode()
	if enc.VideoCodec == "" {
		enc.VideoCodec = def.VideoCodec
	}
	if enc.Preset == "" {
		enc.Preset = def.Preset
	}
	if enc.RateControl == "" {
		enc.RateControl = def.RateControl
	}
	if enc.CQ == 0 {
		enc.CQ = def.CQ
	}
	if enc.Profile == "" {
		enc.Profile = def.Profile
	}
	if enc.PixelFormat == "" {
		enc.PixelFormat = def.PixelFormat
	}
	return enc
}
