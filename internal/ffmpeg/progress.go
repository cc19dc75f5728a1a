package ffmpeg

import (
	"fmt"
	"strconv"
	"strings"
	"time"
)

// parseProgressLine fills p from one key=value line of -progress output and
// reports whether the line belonged to a progress block.
func parseProgressLine(line string, p *Progress) bool {
	key, value, ok := strings.Cut(line, "=")
	if !ok || strings.ContainsAny(key, " \t[") {
		return false
	}
	value = strings.TrimSpace(value)

	switch key {
	case "frame":
		p.Frame, _ = strconv.Atoi(value)
	case "fps":
		p.FPS, _ = strconv.ParseFloat(value, 64)
	case "bitrate":
		p.Bitrate = value
	case "out_time":
		p.Time = value
		if d, err := parseOutTime(value); err == nil {
			p.OutTime = d
		}
	case "speed":
		p.Speed = value
	case "progress":
		p.Done = value == "end"
	case "stream_0_0_q", "total_size", "out_time_us", "out_time_ms",
		"dup_frames", "drop_frames":
	default:
		return false
	}
	return true
}

// parseOutTime reads an out_time value. ffmpeg writes HH:MM:SS.micro, with a
// leading minus while the first frames are still pre-roll, and N/A before the
// first packet. Shorter SS and MM:SS forms are accepted as well.
func parseOutTime(s string) (time.Duration, error) {
	neg := strings.HasPrefix(s, "-")
	parts := strings.Split(strings.TrimPrefix(s, "-"), ":")
	if len(parts) > 3 {
		return 0, fmt.Errorf("invalid out_time %q", s)
	}

	var secs float64
	for _, part := range parts {
		v, err := strconv.ParseFloat(part, 64)
		if err != nil || v < 0 {
			return 0, fmt.Errorf("invalid out_time %q", s)
		}
		secs = secs*60 + v
	}

	d := time.Duration(secs * float64(time.Second))
	if neg {
		d = -d
	}
	return d, nil
}
