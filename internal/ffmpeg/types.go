package ffmpeg

import "time"

// VideoInfo contains metadata about a video file
type VideoInfo struct {
	FilePath      string
	Duration      time.Duration
	CreationTime  string
	Width         int
	Height        int
	FPS           float64
	VideoCodec    string
	HasAudio      bool
	AudioCodec    string
	AudioChannels int
}

// Progress represents ffmpeg progress data
type Progress struct {
	Frame      int
	FPS        float64
	Bitrate    string
	Time       string
	OutTime    time.Duration
	Speed      string
	Percentage float64
	Done       bool
}

// RunOptions configures ffmpeg execution
type RunOptions struct {
	Args            []string
	ProgressHandler func(*Progress)
	LogHandler      func(line string)
	// Total is the expected output length. Percentage stays zero when unset.
	Total time.Duration
}

// ProgressFunc is a callback for progress updates during ffmpeg operations.
// Called once per -progress block while the operation executes.
type ProgressFunc func(*Progress)

// Default encoding settings
const (
	DefaultVideoCodec  = "h264_nvenc"
	DefaultPreset      = "p6"
	DefaultRateControl = "vbr"
	DefaultCQ          = 18
	DefaultProfile     = "high"
	DefaultPixelFormat = "yuv420p"
)

// EncodeOptions is the encoder parameter set applied to the merged output
type EncodeOptions struct {
	VideoCodec  string
	Preset      string
	RateControl string
	CQ          int
	Profile     string
	PixelFormat string
}

// DefaultEncode returns hardware H.264 at constant quality with a faststart layout
func DefaultEncode() EncodeOptions {
	return EncodeOptions{
		VideoCodec:  DefaultVideoCodec,
		Preset:      DefaultPreset,
		RateControl: DefaultRateControl,
		CQ:          DefaultCQ,
		Profile:     DefaultProfile,
		PixelFormat: DefaultPixelFormat,
	}
}

// MergeOptions configures the single cross-fade merge invocation
type MergeOptions struct {
	Inputs        []string
	FilterComplex string
	// VideoMap and AudioMap are the terminal graph pads, e.g. "[xv2]".
	VideoMap     string
	AudioMap     string
	Encode       EncodeOptions
	Output       string
	Total        time.Duration
	ProgressFunc ProgressFunc
}
