package main

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/spf13/cobra"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/kikiluvv/clipmerge/internal/config"
)

func TestApplyInputArgs(t *testing.T) {
	dir := t.TempDir()

	cfg := config.Default()
	applyInputArgs(cfg, nil)
	assert.Equal(t, "inputs", cfg.Input.Folder)

	applyInputArgs(cfg, []string{dir})
	assert.Equal(t, config.InputConfig{Folder: dir}, cfg.Input)

	clip := filepath.Join(dir, "a.mp4")
	require.NoError(t, os.WriteFile(clip, nil, 0644))
	applyInputArgs(cfg, []string{clip})
	assert.Equal(t, config.InputConfig{Files: []string{clip}}, cfg.Input)

	applyInputArgs(cfg, []string{"a.mp4", "b.mov"})
	assert.Equal(t, []string{"a.mp4", "b.mov"}, cfg.Input.Files)
	assert.Empty(t, cfg.Input.Folder)
}

func TestApplyMergeFlagsOnlyChanged(t *testing.T) {
	cmd := &cobra.Command{}
	cmd.Flags().AddFlagSet(mergeCmd.Flags())
	require.NoError(t, cmd.Flags().Parse([]string{"--fade", "0.5", "--target-tz", "Asia/Tokyo"}))

	cfg := config.Default()
	applyMergeFlags(cmd, cfg)

	assert.Equal(t, 0.5, cfg.Fade.Duration)
	assert.Equal(t, "Asia/Tokyo", cfg.Timezone.Target)
	assert.Equal(t, "Europe/London", cfg.Timezone.Source)
	assert.Equal(t, "output.mp4", cfg.Output.FileName)
	assert.Equal(t, 52, cfg.Label.FontSize)
}

func TestShellJoin(t *testing.T) {
	got := shellJoin([]string{"ffmpeg", "-i", "my clip.mp4", "-filter_complex", "[0:v]null[v0]", "it's.mp4", ""})
	assert.Equal(t, `ffmpeg -i 'my clip.mp4' -filter_complex '[0:v]null[v0]' 'it'\''s.mp4' ''`, got)
}

type closeRecorder struct{ closed int }

func (c *closeRecorder) Close() error {
	c.closed++
	return nil
}

func TestCloseLogAfterFailedCommand(t *testing.T) {
	rec := &closeRecorder{}
	logFile = rec
	t.Cleanup(func() { logFile = nil })

	// Cobra skips post-run hooks when RunE fails, so nothing may close it there
	assert.Nil(t, rootCmd.PersistentPostRun)
	assert.Nil(t, rootCmd.PersistentPostRunE)

	closeLog()
	closeLog()
	assert.Equal(t, 1, rec.closed)
	assert.Nil(t, logFile)
}
