// Package timestamp resolves the capture time of a clip and renders it as a
// label.
//
// The container creation_time tag is preferred. When it is missing or
// malformed the file's modification time is used instead, read directly in
// the target zone without any source-zone conversion.
package timestamp

import (
	"context"
	"errors"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/rs/zerolog"
)

// DefaultLayout renders date and minute-precision time
const DefaultLayout = "2006-01-02 15:04"

// CreationTimeReader returns the raw creation_time tag of a media file
type CreationTimeReader interface {
	ProbeCreationTime(ctx context.Context, path string) (string, error)
}

// ResolutionError reports that neither metadata nor the filesystem gave a time
type ResolutionError struct {
	Path        string
	MetadataErr error
	StatErr     error
}

func (e *ResolutionError) Error() string {
	return fmt.Sprintf("resolve timestamp of %s: metadata: %v; filesystem: %v", e.Path, e.MetadataErr, e.StatErr)
}

func (e *ResolutionError) Unwrap() []error {
	return []error{e.MetadataErr, e.StatErr}
}

// Resolver converts clip metadata to a point in time in the target zone
type Resolver struct {
	logger zerolog.Logger
	reader CreationTimeReader
	source *time.Location
	target *time.Location
	stat   func(string) (os.FileInfo, error)
}

// NewResolver creates a resolver. Nil locations default to UTC.
func NewResolver(logger zerolog.Logger, reader CreationTimeReader, source, target *time.Location) *Resolver {
	if source == nil {
		source = time.UTC
	}
	if target == nil {
		target = time.UTC
	}
	return &Resolver{
		logger: logger.With().Str("component", "timestamp").Logger(),
		reader: reader,
		source: source,
		target: target,
		stat:   os.Stat,
	}
}

// Resolve returns the capture time of path expressed in the target zone
func (r *Resolver) Resolve(ctx context.Context, path string) (time.Time, error) {
	metaErr := errors.New("no metadata reader")
	if r.reader != nil {
		raw, err := r.reader.ProbeCreationTime(ctx, path)
		if err == nil {
			t, perr := Parse(raw, r.source)
			if perr == nil {
				return t.In(r.target), nil
			}
			err = perr
		}
		metaErr = err
	}

	// Cancellation is returned as is, not as a fallback
	if err := ctx.Err(); err != nil {
		return time.Time{}, err
	}

	info, statErr := r.stat(path)
	if statErr != nil {
		return time.Time{}, &ResolutionError{Path: path, MetadataErr: metaErr, StatErr: statErr}
	}

	r.logger.Debug().
		Str("path", path).
		AnErr("metadata_err", metaErr).
		Msg("creation_time unavailable, using modification time")

	return info.ModTime().In(r.target), nil
}

// zoned layouts carry their own offset; local layouts are read in the source zone
var (
	zonedLayouts = []string{
		time.RFC3339Nano,
		"2006-01-02 15:04:05.999999999Z07:00",
		"2006-01-02T15:04:05.999999999Z0700",
		"2006-01-02 15:04:05.999999999Z0700",
	}
	localLayouts = []string{
		"2006-01-02T15:04:05.999999999",
		"2006-01-02 15:04:05.999999999",
		"2006-01-02T15:04",
		"2006-01-02 15:04",
		"2006-01-02",
	}
)

// Parse reads an ISO-8601-like timestamp. Values without zone information are
// taken to be in loc.
func Parse(value string, loc *time.Location) (time.Time, error) {
	value = strings.TrimSpace(value)
	if value == "" {
		return time.Time{}, errors.New("empty timestamp")
	}
	if loc == nil {
		loc = time.UTC
	}

	for _, layout := range zonedLayouts {
		if t, err := time.Parse(layout, value); err == nil {
			return t, nil
		}
	}
	for _, layout := range localLayouts {
		if t, err := time.ParseInLocation(layout, value, loc); err == nil {
			return t, nil
		}
	}
	return time.Time{}, fmt.Errorf("unrecognised timestamp %q", value)
}

// Format renders t with layout, falling back to DefaultLayout
func Format(t time.Time, layout string) string {
	if layout == "" {
		layout = DefaultLayout
	}
	return t.Format(layout)
}
