package ffmpeg

import "fmt"

// ProbeError reports that ffprobe could not produce a usable value for a file.
type ProbeError struct {
	Path string
	// Field is the ffprobe entry that was requested, e.g. "format=duration".
	Field string
	Err   error
}

func (e *ProbeError) Error() string {
	return fmt.Sprintf("probe %s of %s: %v", e.Field, e.Path, e.Err)
}

func (e *ProbeError) Unwrap() error {
	return e.Err
}

// EngineExecutionError reports a failed ffmpeg run. ExitCode is -1 when the
// process never started or was killed by a signal.
type EngineExecutionError struct {
	ExitCode int
	// Stderr holds the last lines ffmpeg wrote before exiting.
	Stderr string
	Err    error
}

func (e *EngineExecutionError) Error() string {
	if e.ExitCode < 0 {
		return fmt.Sprintf("ffmpeg execution failed: %v", e.Err)
	}
	return fmt.Sprintf("ffmpeg execution failed with exit code %d: %v", e.ExitCode, e.Err)
}

func (e *EngineExecutionError) Unwrap() error {
	return e.Err
}
