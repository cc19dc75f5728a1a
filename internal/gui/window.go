package gui

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"

	"fyne.io/fyne/v2"
	"fyne.io/fyne/v2/app"
	"fyne.io/fyne/v2/container"
	"fyne.io/fyne/v2/dialog"
	"fyne.io/fyne/v2/widget"
	"github.com/rs/zerolog"

	"github.com/kikiluvv/clipmerge/internal/clips"
	"github.com/kikiluvv/clipmerge/internal/config"
	"github.com/kikiluvv/clipmerge/internal/ffmpeg"
	"github.com/kikiluvv/clipmerge/internal/pipeline"
)

// form holds the editable fields of the window
type form struct {
	input    *widget.Entry
	output   *widget.Entry
	name     *widget.Entry
	fade     *widget.Entry
	sourceTZ *widget.Entry
	targetTZ *widget.Entry
}

// apply copies the form onto a copy of base
func (f *form) apply(base *config.Config) (*config.Config, error) {
	cfg := *base
	cfg.Input = config.InputConfig{Folder: strings.TrimSpace(f.input.Text)}
	cfg.Output.Folder = strings.TrimSpace(f.output.Text)
	cfg.Output.FileName = strings.TrimSpace(f.name.Text)
	cfg.Timezone = config.TimezoneConfig{
		Source: strings.TrimSpace(f.sourceTZ.Text),
		Target: strings.TrimSpace(f.targetTZ.Text),
	}

	fade, err := strconv.ParseFloat(strings.TrimSpace(f.fade.Text), 64)
	if err != nil {
		return nil, fmt.Errorf("fade must be a number of seconds: %w", err)
	}
	cfg.Fade.Duration = fade

	return &cfg, cfg.Validate()
}

// Run opens the merge window and blocks until it is closed. Merges run one
// at a time on a worker goroutine; widgets are only touched through fyne.Do.
func Run(logger zerolog.Logger, cfg *config.Config, engine pipeline.Engine) {
	logger = logger.With().Str("component", "gui").Logger()

	a := app.NewWithID("clipmerge")
	w := a.NewWindow("clipmerge")
	w.Resize(fyne.NewSize(640, 360))

	f := &form{
		input:    entry(cfg.Input.Folder),
		output:   entry(cfg.Output.Folder),
		name:     entry(cfg.Output.FileName),
		fade:     entry(strconv.FormatFloat(cfg.Fade.Duration, 'f', -1, 64)),
		sourceTZ: entry(cfg.Timezone.Source),
		targetTZ: entry(cfg.Timezone.Target),
	}

	status := widget.NewLabel("Ready")
	progress := widget.NewProgressBar()

	var runButton *widget.Button
	runButton = widget.NewButton("Merge Clips", func() {
		runCfg, err := f.apply(cfg)
		if err != nil {
			dialog.ShowError(err, w)
			return
		}

		runButton.Disable()
		progress.SetValue(0)
		status.SetText("Ordering clips...")

		go func() {
			res, err := merge(logger, runCfg, engine, func(p *ffmpeg.Progress) {
				fyne.Do(func() {
					progress.SetValue(p.Percentage / 100)
					status.SetText("Merging " + p.Time)
				})
			})

			fyne.Do(func() {
				runButton.Enable()
				if err != nil {
					logger.Error().Err(err).Msg("merge failed")
					status.SetText("Failed")
					dialog.ShowError(describe(err), w)
					return
				}
				progress.SetValue(1)
				status.SetText(fmt.Sprintf("Merged %d clips in %s", len(res.Clips), res.Elapsed.Round(100*time.Millisecond)))
				dialog.ShowInformation("Done", "Wrote "+res.OutputPath, w)
			})
		}()
	})
	runButton.Importance = widget.HighImportance

	w.SetContent(container.NewVBox(
		widget.NewForm(
			widget.NewFormItem("Input folder", folderRow(f.input, w)),
			widget.NewFormItem("Output folder", folderRow(f.output, w)),
			widget.NewFormItem("File name", f.name),
			widget.NewFormItem("Fade (s)", f.fade),
			widget.NewFormItem("Camera timezone", f.sourceTZ),
			widget.NewFormItem("Label timezone", f.targetTZ),
		),
		progress,
		status,
		runButton,
	))

	w.ShowAndRun()
}

func merge(logger zerolog.Logger, cfg *config.Config, engine pipeline.Engine, onProgress ffmpeg.ProgressFunc) (*pipeline.Result, error) {
	p, err := pipeline.New(logger, engine, cfg)
	if err != nil {
		return nil, err
	}
	return p.Run(context.Background(), pipeline.RunOptions{Progress: onProgress})
}

// describe turns pipeline errors into something a user can act on
func describe(err error) error {
	var noInput *clips.NoInputError
	var probeErr *ffmpeg.ProbeError
	var execErr *ffmpeg.EngineExecutionError

	switch {
	case errors.As(err, &noInput):
		return noInput
	case errors.As(err, &probeErr):
		return fmt.Errorf("could not read %s: %v", probeErr.Path, probeErr.Err)
	case errors.As(err, &execErr) && execErr.Stderr != "":
		return fmt.Errorf("%v\n\n%s", err, lastLine(execErr.Stderr))
	}
	return err
}

func lastLine(s string) string {
	if i := strings.LastIndexByte(s, '\n'); i >= 0 {
		return s[i+1:]
	}
	return s
}

func entry(text string) *widget.Entry {
	e := widget.NewEntry()
	e.SetText(text)
	return e
}

// folderRow pairs a path entry with a folder picker
func folderRow(target *widget.Entry, w fyne.Window) fyne.CanvasObject {
	browse := widget.NewButton("Browse", func() {
		dialog.ShowFolderOpen(func(uri fyne.ListableURI, err error) {
			if err != nil {
				dialog.ShowError(err, w)
				return
			}
			if uri == nil {
				return
			}
			target.SetText(uri.Path())
		}, w)
	})
	return container.NewBorder(nil, nil, nil, browse, target)
}
