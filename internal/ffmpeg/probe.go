package ffmpeg

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"os/exec"
	"strconv"
	"strings"
	"time"

	"github.com/kikiluvv/clipmerge/pkg/util"
)

var errEmptyOutput = errors.New("ffprobe returned no value")

// ProbeDuration returns the playback duration of a file in seconds
func (e *Executor) ProbeDuration(ctx context.Context, path string) (float64, error) {
	const field = "format=duration"

	out, err := e.probeEntry(ctx, path, field)
	if err != nil {
		return 0, &ProbeError{Path: path, Field: field, Err: err}
	}

	seconds, err := parseDuration(out)
	if err != nil {
		return 0, &ProbeError{Path: path, Field: field, Err: err}
	}

	e.logger.Debug().
		Str("path", path).
		Float64("seconds", seconds).
		Msg("probed duration")

	return seconds, nil
}

// ProbeCreationTime returns the raw creation_time container tag
func (e *Executor) ProbeCreationTime(ctx context.Context, path string) (string, error) {
	const field = "format_tags=creation_time"

	out, err := e.probeEntry(ctx, path, field)
	if err != nil {
		return "", &ProbeError{Path: path, Field: field, Err: err}
	}
	return out, nil
}

// probeEntry runs ffprobe for a single entry and returns its trimmed value
func (e *Executor) probeEntry(ctx context.Context, path, entry string) (string, error) {
	if path == "" {
		return "", fmt.Errorf("file path is required")
	}

	args := []string{
		"-v", "error",
		"-show_entries", entry,
		"-of", "default=nw=1:nk=1",
		path,
	}

	cmd := exec.CommandContext(ctx, e.ffprobePath, args...)
	var stdout, stderr bytes.Buffer
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr

	if err := cmd.Run(); err != nil {
		if msg := strings.TrimSpace(stderr.String()); msg != "" {
			return "", fmt.Errorf("ffprobe failed: %w: %s", err, msg)
		}
		return "", fmt.Errorf("ffprobe failed: %w", err)
	}

	out := strings.TrimSpace(stdout.String())
	if out == "" {
		return "", errEmptyOutput
	}
	return out, nil
}

// parseDuration accepts ffprobe's seconds output and rejects non-positive values
func parseDuration(s string) (float64, error) {
	s = strings.TrimSpace(s)
	if s == "" || s == "N/A" {
		return 0, errEmptyOutput
	}

	seconds, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return 0, fmt.Errorf("failed to parse duration %q: %w", s, err)
	}
	if seconds <= 0 {
		return 0, fmt.Errorf("non-positive duration %q", s)
	}
	return seconds, nil
}

// ProbeVideo extracts metadata from a video file
func (e *Executor) ProbeVideo(ctx context.Context, filePath string) (*VideoInfo, error) {
	if filePath == "" {
		return nil, fmt.Errorf("file path is required")
	}

	args := []string{
		"-v", "quiet",
		"-print_format", "json",
		"-show_format",
		"-show_streams",
		filePath,
	}

	cmd := exec.CommandContext(ctx, e.ffprobePath, args...)
	output, err := cmd.Output()
	if err != nil {
		return nil, &ProbeError{Path: filePath, Field: "format,streams", Err: err}
	}

	var probe probeResult
	if err := json.Unmarshal(output, &probe); err != nil {
		return nil, &ProbeError{Path: filePath, Field: "format,streams", Err: fmt.Errorf("failed to parse ffprobe output: %w", err)}
	}

	return probe.videoInfo(filePath), nil
}

func (p probeResult) videoInfo(filePath string) *VideoInfo {
	info := &VideoInfo{
		FilePath:     filePath,
		CreationTime: p.Format.Tags.CreationTime,
	}

	if dur, err := strconv.ParseFloat(p.Format.Duration, 64); err == nil {
		info.Duration = time.Duration(dur * float64(time.Second))
	}

	for _, stream := range p.Streams {
		switch stream.CodecType {
		case "video":
			if info.VideoCodec != "" {
				continue
			}
			info.Width = stream.Width
			info.Height = stream.Height
			info.VideoCodec = stream.CodecName
			if stream.RFrameRate != "" {
				info.FPS = util.ParseFrameRate(stream.RFrameRate)
			}
		case "audio":
			info.HasAudio = true
			if info.AudioCodec == "" {
				info.AudioCodec = stream.CodecName
				info.AudioChannels = stream.Channels
			}
		}
	}

	return info
}

// probeResult matches ffprobe JSON output structure
type probeResult struct {
	Format struct {
		Duration string `json:"duration"`
		Tags     struct {
			CreationTime string `json:"creation_time"`
		} `json:"tags"`
	} `json:"format"`
	Streams []struct {
		CodecType  string `json:"codec_type"`
		CodecName  string `json:"codec_name"`
		Width      int    `json:"width"`
		Height     int    `json:"height"`
		Channels   int    `json:"channels"`
		RFrameRate string `json:"r_frame_rate"`
	} `json:"streams"`
}
