package clips

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"slices"
	"time"

	"github.com/kikiluvv/clipmerge/internal/timestamp"
	"github.com/kikiluvv/clipmerge/pkg/util"
)

// VideoExtensions are the container formats picked up by Discover
var VideoExtensions = []string{".mp4", ".mov", ".mxf", ".mkv"}

// Clip is one input file in its final merge position
type Clip struct {
	Index     int
	Path      string
	Timestamp time.Time
}

// Resolver finds the capture time of a clip
type Resolver interface {
	Resolve(ctx context.Context, path string) (time.Time, error)
}

// NoInputError reports that there was nothing to merge
type NoInputError struct {
	Source string
}

func (e *NoInputError) Error() string {
	if e.Source == "" {
		return "no video files found"
	}
	return fmt.Sprintf("no video files found in %s", e.Source)
}

// Source selects where clips come from. Files wins over Folder when set.
type Source struct {
	Folder string
	Files  []string
}

func (s Source) String() string {
	if len(s.Files) > 0 {
		return fmt.Sprintf("%d listed file(s)", len(s.Files))
	}
	return s.Folder
}

// Discover returns the video files of src in discovery order
func Discover(src Source) ([]string, error) {
	var paths []string

	if len(src.Files) > 0 {
		for _, f := range src.Files {
			if util.HasExtension(f, VideoExtensions) {
				paths = append(paths, f)
			}
		}
	} else {
		if src.Folder == "" {
			return nil, &NoInputError{}
		}
		entries, err := os.ReadDir(src.Folder)
		if err != nil {
			return nil, fmt.Errorf("failed to read input folder: %w", err)
		}
		for _, entry := range entries {
			if entry.IsDir() || !util.HasExtension(entry.Name(), VideoExtensions) {
				continue
			}
			paths = append(paths, filepath.Join(src.Folder, entry.Name()))
		}
	}

	if len(paths) == 0 {
		return nil, &NoInputError{Source: src.String()}
	}
	return paths, nil
}

// Order resolves every path once and sorts ascending by capture time. Clips
// with equal timestamps keep their discovery order. The returned labels are
// aligned with the clips.
func Order(ctx context.Context, paths []string, resolver Resolver, layout string) ([]Clip, []string, error) {
	if len(paths) == 0 {
		return nil, nil, &NoInputError{}
	}

	ordered := make([]Clip, len(paths))
	for i, p := range paths {
		ts, err := resolver.Resolve(ctx, p)
		if err != nil {
			return nil, nil, err
		}
		ordered[i] = Clip{Path: p, Timestamp: ts}
	}

	slices.SortStableFunc(ordered, func(a, b Clip) int {
		return a.Timestamp.Compare(b.Timestamp)
	})

	labels := make([]string, len(ordered))
	for i := range ordered {
		ordered[i].Index = i
		labels[i] = timestamp.Format(ordered[i].Timestamp, layout)
	}

	return ordered, labels, nil
}

// Paths returns the clip paths in order
func Paths(clips []Clip) []string {
	paths := make([]string, len(clips))
	for i, c := range clips {
		paths[i] = c.Path
	}
	return paths
}
