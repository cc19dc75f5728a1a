package gui

import (
	"errors"
	"testing"

	"fyne.io/fyne/v2/test"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/kikiluvv/clipmerge/internal/clips"
	"github.com/kikiluvv/clipmerge/internal/config"
	"github.com/kikiluvv/clipmerge/internal/ffmpeg"
)

func newForm(input, fade string) *form {
	return &form{
		input:    entry(input),
		output:   entry("outputs"),
		name:     entry("trip.mp4"),
		fade:     entry(fade),
		sourceTZ: entry("UTC"),
		targetTZ: entry("UTC"),
	}
}

func TestFormApply(t *testing.T) {
	test.NewApp()

	base := config.Default()
	cfg, err := newForm(" clips/day1 ", "0.5").apply(base)
	require.NoError(t, err)

	assert.Equal(t, "clips/day1", cfg.Input.Folder)
	assert.Equal(t, "trip.mp4", cfg.Output.FileName)
	assert.Equal(t, 0.5, cfg.Fade.Duration)
	assert.Equal(t, "UTC", cfg.Timezone.Target)

	// the loaded config is left alone
	assert.Equal(t, "inputs", base.Input.Folder)
	assert.Equal(t, 1.0, base.Fade.Duration)
}

func TestFormApplyRejectsBadInput(t *testing.T) {
	test.NewApp()

	_, err := newForm("inputs", "one second").apply(config.Default())
	require.Error(t, err)

	_, err = newForm("inputs", "-1").apply(config.Default())
	require.Error(t, err)

	_, err = newForm("", "1").apply(config.Default())
	require.Error(t, err)
}

func TestDescribe(t *testing.T) {
	noInput := describe(&clips.NoInputError{Source: "inputs"})
	assert.Equal(t, "no video files found in inputs", noInput.Error())

	probe := describe(&ffmpeg.ProbeError{Path: "a.mp4", Field: "format=duration", Err: errors.New("moov atom not found")})
	assert.Equal(t, "could not read a.mp4: moov atom not found", probe.Error())

	exec := describe(&ffmpeg.EngineExecutionError{ExitCode: 1, Stderr: "first\nNo such filter: 'drawtext'", Err: errors.New("exit status 1")})
	assert.Contains(t, exec.Error(), "exit code 1")
	assert.Contains(t, exec.Error(), "No such filter: 'drawtext'")
	assert.NotContains(t, exec.Error(), "first")

	other := errors.New("boom")
	assert.Same(t, other, describe(other))
}
