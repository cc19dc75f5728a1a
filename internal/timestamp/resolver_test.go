package timestamp

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"
	"time"
	_ "time/tzdata"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeReader map[string]string

func (f fakeReader) ProbeCreationTime(_ context.Context, path string) (string, error) {
	v, ok := f[path]
	if !ok {
		return "", errors.New("no creation_time")
	}
	return v, nil
}

func mustLoad(t *testing.T, name string) *time.Location {
	t.Helper()
	loc, err := time.LoadLocation(name)
	require.NoError(t, err)
	return loc
}

func TestParse(t *testing.T) {
	tokyo := mustLoad(t, "Asia/Tokyo")

	tests := []struct {
		name  string
		value string
		want  time.Time
	}{
		{"zulu", "2024-03-01T10:15:30.000000Z", time.Date(2024, 3, 1, 10, 15, 30, 0, time.UTC)},
		{"offset", "2024-03-01T10:15:30+02:00", time.Date(2024, 3, 1, 8, 15, 30, 0, time.UTC)},
		{"naive uses source zone", "2024-03-01T10:15:30", time.Date(2024, 3, 1, 10, 15, 30, 0, tokyo)},
		{"space separator", "2024-03-01 10:15:30", time.Date(2024, 3, 1, 10, 15, 30, 0, tokyo)},
		{"date only", "2024-03-01", time.Date(2024, 3, 1, 0, 0, 0, 0, tokyo)},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := Parse(tt.value, tokyo)
			require.NoError(t, err)
			assert.True(t, got.Equal(tt.want), "got %v, want %v", got, tt.want)
		})
	}
}

func TestParseRejectsGarbage(t *testing.T) {
	for _, v := range []string{"", "   ", "yesterday", "2024-13-45T99:99:99"} {
		_, err := Parse(v, time.UTC)
		assert.Error(t, err, "value %q", v)
	}
}

func TestResolveConvertsSourceToTarget(t *testing.T) {
	london := mustLoad(t, "Europe/London")
	newYork := mustLoad(t, "America/New_York")

	r := NewResolver(zerolog.Nop(), fakeReader{"a.mp4": "2024-07-01T12:00:00"}, london, newYork)

	got, err := r.Resolve(context.Background(), "a.mp4")
	require.NoError(t, err)

	// 12:00 BST is 07:00 EDT
	assert.Equal(t, "2024-07-01 07:00", Format(got, ""))
	assert.Equal(t, newYork, got.Location())
}

func TestResolveFallsBackToModTimeInTargetZone(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "clip.mov")
	require.NoError(t, os.WriteFile(path, []byte("x"), 0644))

	mtime := time.Date(2023, 12, 24, 18, 30, 0, 0, time.UTC)
	require.NoError(t, os.Chtimes(path, mtime, mtime))

	tokyo := mustLoad(t, "Asia/Tokyo")
	r := NewResolver(zerolog.Nop(), fakeReader{path: "not a date"}, time.UTC, tokyo)

	got, err := r.Resolve(context.Background(), path)
	require.NoError(t, err)
	assert.True(t, got.Equal(mtime))
	assert.Equal(t, "2023-12-25 03:30", Format(got, DefaultLayout))
}

func TestResolveNoMetadataNoFile(t *testing.T) {
	r := NewResolver(zerolog.Nop(), fakeReader{}, nil, nil)

	_, err := r.Resolve(context.Background(), filepath.Join(t.TempDir(), "missing.mp4"))
	require.Error(t, err)

	var resErr *ResolutionError
	require.ErrorAs(t, err, &resErr)
	assert.ErrorIs(t, err, os.ErrNotExist)
}
