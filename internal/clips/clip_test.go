package clips

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type mapResolver struct {
	times map[string]time.Time
	calls int
}

func (m *mapResolver) Resolve(_ context.Context, path string) (time.Time, error) {
	m.calls++
	ts, ok := m.times[path]
	if !ok {
		return time.Time{}, errors.New("unknown clip " + path)
	}
	return ts, nil
}

func touch(t *testing.T, dir string, names ...string) {
	t.Helper()
	for _, name := range names {
		require.NoError(t, os.WriteFile(filepath.Join(dir, name), nil, 0644))
	}
}

func TestDiscoverFolder(t *testing.T) {
	dir := t.TempDir()
	touch(t, dir, "b.MOV", "a.mp4", "notes.txt", "c.mkv", "d.mxf", "e.avi")
	require.NoError(t, os.Mkdir(filepath.Join(dir, "nested.mp4"), 0755))

	paths, err := Discover(Source{Folder: dir})
	require.NoError(t, err)

	assert.Equal(t, []string{
		filepath.Join(dir, "a.mp4"),
		filepath.Join(dir, "b.MOV"),
		filepath.Join(dir, "c.mkv"),
		filepath.Join(dir, "d.mxf"),
	}, paths)
}

func TestDiscoverFileListKeepsOrder(t *testing.T) {
	paths, err := Discover(Source{Files: []string{"z.mp4", "readme.md", "a.mov"}})
	require.NoError(t, err)
	assert.Equal(t, []string{"z.mp4", "a.mov"}, paths)
}

func TestDiscoverEmpty(t *testing.T) {
	dir := t.TempDir()
	touch(t, dir, "notes.txt")

	_, err := Discover(Source{Folder: dir})
	var noInput *NoInputError
	require.ErrorAs(t, err, &noInput)
	assert.Equal(t, dir, noInput.Source)
}

func TestOrderSortsByTimestamp(t *testing.T) {
	base := time.Date(2024, 5, 1, 9, 0, 0, 0, time.UTC)
	r := &mapResolver{times: map[string]time.Time{
		"late.mp4":   base.Add(2 * time.Hour),
		"early.mp4":  base,
		"middle.mp4": base.Add(30 * time.Minute),
	}}

	ordered, labels, err := Order(context.Background(), []string{"late.mp4", "early.mp4", "middle.mp4"}, r, "")
	require.NoError(t, err)

	require.Len(t, ordered, 3)
	assert.Equal(t, []string{"early.mp4", "middle.mp4", "late.mp4"}, Paths(ordered))
	assert.Equal(t, []string{"2024-05-01 09:00", "2024-05-01 09:30", "2024-05-01 11:00"}, labels)
	for i, c := range ordered {
		assert.Equal(t, i, c.Index)
		if i > 0 {
			assert.False(t, c.Timestamp.Before(ordered[i-1].Timestamp))
		}
	}
	assert.Equal(t, 3, r.calls, "each clip is resolved exactly once")
}

func TestOrderIsStableForTies(t *testing.T) {
	burst := time.Date(2024, 5, 1, 9, 0, 0, 0, time.UTC)
	r := &mapResolver{times: map[string]time.Time{
		"c.mp4": burst,
		"a.mp4": burst,
		"d.mp4": burst.Add(-time.Minute),
		"b.mp4": burst,
	}}

	ordered, _, err := Order(context.Background(), []string{"c.mp4", "a.mp4", "d.mp4", "b.mp4"}, r, "")
	require.NoError(t, err)
	assert.Equal(t, []string{"d.mp4", "c.mp4", "a.mp4", "b.mp4"}, Paths(ordered))
}

func TestOrderEmptyDoesNotResolve(t *testing.T) {
	r := &mapResolver{}

	_, _, err := Order(context.Background(), nil, r, "")
	var noInput *NoInputError
	require.ErrorAs(t, err, &noInput)
	assert.Zero(t, r.calls)
}

func TestOrderPropagatesResolverError(t *testing.T) {
	r := &mapResolver{times: map[string]time.Time{}}

	_, _, err := Order(context.Background(), []string{"ghost.mp4"}, r, "")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "ghost.mp4")
}

func TestOrderCustomLayout(t *testing.T) {
	r := &mapResolver{times: map[string]time.Time{
		"a.mp4": time.Date(2024, 5, 1, 9, 5, 0, 0, time.UTC),
	}}

	_, labels, err := Order(context.Background(), []string{"a.mp4"}, r, "02/01/2006 15:04")
	require.NoError(t, err)
	assert.Equal(t, []string{"01/05/2024 09:05"}, labels)
}
