package config

import (
	"context"
	"os"
	"path/filepath"
	"testing"
	_ "time/tzdata"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDefaultIsValid(t *testing.T) {
	cfg := Default()
	require.NoError(t, cfg.Validate())
	assert.Equal(t, filepath.Join("outputs", "output.mp4"), cfg.Output.Path())
	assert.Equal(t, 1.0, cfg.Fade.Duration)
}

func TestLoadMergesOverDefaults(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	data := []byte(`
input:
  folder: /media/camera
fade:
  duration: 0.5
timezone:
  source: UTC
  target: Asia/Tokyo
label:
  font_size: 36
`)
	require.NoError(t, os.WriteFile(path, data, 0644))

	cfg, err := Load(path)
	require.NoError(t, err)

	assert.Equal(t, "/media/camera", cfg.Input.Folder)
	assert.Equal(t, 0.5, cfg.Fade.Duration)
	assert.Equal(t, 36, cfg.Label.FontSize)
	assert.Equal(t, "white", cfg.Label.FontColor, "unset keys keep defaults")
	assert.Equal(t, "h264_nvenc", cfg.FFmpeg.Encode.VideoCodec)

	src, tgt, err := cfg.Timezone.Locations()
	require.NoError(t, err)
	assert.Equal(t, "UTC", src.String())
	assert.Equal(t, "Asia/Tokyo", tgt.String())
}

func TestLoadMissingFileReturnsDefaults(t *testing.T) {
	cfg, err := Load(filepath.Join(t.TempDir(), "nope.yaml"))
	require.NoError(t, err)
	assert.Equal(t, Default(), cfg)
}

func TestLoadRejectsBadYAML(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte("fade: [not, a, map"), 0644))

	_, err := Load(path)
	require.Error(t, err)
}

func TestSaveRoundTrip(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nested", "config.yaml")
	cfg := Default()
	cfg.Input.Files = []string{"a.mp4", "b.mov"}
	cfg.Label.MarginX = 12

	require.NoError(t, cfg.Save(path))

	loaded, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, cfg, loaded)
}

func TestValidateCollectsProblems(t *testing.T) {
	cfg := Default()
	cfg.Input.Folder = ""
	cfg.Output.FileName = ""
	cfg.Label.FontSize = 0
	cfg.Fade.Duration = -1
	cfg.Timezone.Source = "Mars/Olympus_Mons"

	err := cfg.Validate()
	require.Error(t, err)
	for _, want := range []string{"input", "file_name", "font_size", "duration", "source timezone"} {
		assert.Contains(t, err.Error(), want)
	}
}

func TestContextCarriesConfig(t *testing.T) {
	cfg := Default()
	cfg.Fade.Duration = 2

	ctx := WithConfig(context.Background(), cfg)
	assert.Same(t, cfg, FromContext(ctx))
	assert.Equal(t, 1.0, FromContext(context.Background()).Fade.Duration)
}
