package ffmpeg

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"os/exec"
	"strconv"
	"strings"
	"sync"

	"github.com/rs/zerolog"
)

// stderrTailLines bounds how much engine output is kept for error reports.
const stderrTailLines = 20

// Options locates the engine binaries
type Options struct {
	FFmpegPath  string
	FFprobePath string
	Threads     int
}

// Executor handles all ffmpeg operations with progress streaming
type Executor struct {
	logger      zerolog.Logger
	ffmpegPath  string
	ffprobePath string
	threads     int
}

// New creates a new ffmpeg executor. Empty paths fall back to the binaries on PATH.
func New(logger zerolog.Logger, opts Options) (*Executor, error) {
	if opts.FFmpegPath == "" {
		opts.FFmpegPath = "ffmpeg"
	}
	if opts.FFprobePath == "" {
		opts.FFprobePath = "ffprobe"
	}

	ffmpegPath, err := exec.LookPath(opts.FFmpegPath)
	if err != nil {
		return nil, fmt.Errorf("ffmpeg not found in PATH: %w", err)
	}

	ffprobePath, err := exec.LookPath(opts.FFprobePath)
	if err != nil {
		return nil, fmt.Errorf("ffprobe not found in PATH: %w", err)
	}

	return &Executor{
		logger:      logger.With().Str("component", "ffmpeg").Logger(),
		ffmpegPath:  ffmpegPath,
		ffprobePath: ffprobePath,
		threads:     opts.Threads,
	}, nil
}

// baseArgs is the prefix every ffmpeg invocation shares
func (e *Executor) baseArgs() []string {
	args := []string{"-y", "-hide_banner", "-nostats", "-loglevel", "info"}

	// Threads must come before the inputs
	if e.threads > 0 {
		args = append(args, "-threads", strconv.Itoa(e.threads))
	}

	return append(args, "-progress", "pipe:2")
}

// CommandLine returns the full argv Run would execute for args
func (e *Executor) CommandLine(args []string) []string {
	return append(append([]string{e.ffmpegPath}, e.baseArgs()...), args...)
}

// Run executes ffmpeg with the given arguments and streams progress.
//
// The context is only checked before the process is started. Once ffmpeg is
// running it is not interrupted.
func (e *Executor) Run(ctx context.Context, opts RunOptions) error {
	if len(opts.Args) == 0 {
		return fmt.Errorf("no arguments provided")
	}
	if err := ctx.Err(); err != nil {
		return err
	}

	args := append(e.baseArgs(), opts.Args...)

	e.logger.Debug().
		Str("cmd", "ffmpeg").
		Strs("args", args).
		Msg("executing ffmpeg")

	cmd := exec.Command(e.ffmpegPath, args...)

	stderr, err := cmd.StderrPipe()
	if err != nil {
		return fmt.Errorf("failed to create stderr pipe: %w", err)
	}

	stdout, err := cmd.StdoutPipe()
	if err != nil {
		return fmt.Errorf("failed to create stdout pipe: %w", err)
	}

	if err := cmd.Start(); err != nil {
		return &EngineExecutionError{ExitCode: -1, Err: fmt.Errorf("failed to start ffmpeg: %w", err)}
	}

	tail := newLineTail(stderrTailLines)

	var wg sync.WaitGroup
	wg.Add(2)

	// Stream stderr (progress + logs)
	go func() {
		defer wg.Done()
		e.streamOutput(stderr, opts, tail)
	}()

	// Stream stdout
	go func() {
		defer wg.Done()
		scanner := bufio.NewScanner(stdout)
		for scanner.Scan() {
			if opts.LogHandler != nil {
				opts.LogHandler(scanner.Text())
			}
		}
	}()

	wg.Wait()

	if err := cmd.Wait(); err != nil {
		execErr := &EngineExecutionError{ExitCode: -1, Stderr: tail.String(), Err: err}
		var exitErr *exec.ExitError
		if errors.As(err, &exitErr) {
			execErr.ExitCode = exitErr.ExitCode()
		}
		return execErr
	}

	e.logger.Debug().Msg("ffmpeg execution completed")
	return nil
}

// streamOutput parses ffmpeg -progress blocks and calls handlers
func (e *Executor) streamOutput(r io.Reader, opts RunOptions, tail *lineTail) {
	scanner := bufio.NewScanner(r)
	scanner.Buffer(make([]byte, 0, 64*1024), 1024*1024)
	progressData := &Progress{}

	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		if line == "" {
			continue
		}

		if !parseProgressLine(line, progressData) {
			tail.Add(line)
			if opts.LogHandler != nil {
				opts.LogHandler(line)
			}
			continue
		}

		// End of progress block
		if strings.HasPrefix(line, "progress=") {
			if opts.Total > 0 {
				pct := float64(progressData.OutTime) / float64(opts.Total) * 100
				progressData.Percentage = min(max(pct, 0), 100)
			}
			if opts.ProgressHandler != nil {
				opts.ProgressHandler(progressData)
			}
			progressData = &Progress{}
		}
	}
}

// lineTail keeps the last n lines written to it
type lineTail struct {
	mu    sync.Mutex
	n     int
	lines []string
}

func newLineTail(n int) *lineTail {
	return &lineTail{n: n}
}

func (t *lineTail) Add(line string) {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.lines = append(t.lines, line)
	if len(t.lines) > t.n {
		t.lines = t.lines[len(t.lines)-t.n:]
	}
}

func (t *lineTail) String() string {
	t.mu.Lock()
	defer t.mu.Unlock()
	return strings.Join(t.lines, "\n")
}
