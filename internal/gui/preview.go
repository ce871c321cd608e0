// Package gui is the desktop preview window: a live frame view over the
// engine's tick loop with transport controls, a scrubber and one-click
// export.
package gui

import (
	"context"
	"fmt"
	"image"
	"time"

	"fyne.io/fyne/v2"
	"fyne.io/fyne/v2/app"
	"fyne.io/fyne/v2/canvas"
	"fyne.io/fyne/v2/container"
	"fyne.io/fyne/v2/dialog"
	"fyne.io/fyne/v2/storage"
	"fyne.io/fyne/v2/widget"

	"github.com/rs/zerolog"

	"github.com/keagan/reelcore/internal/config"
	"github.com/keagan/reelcore/internal/engine"
	"github.com/keagan/reelcore/internal/export"
	"github.com/keagan/reelcore/internal/ffmpeg"
	"github.com/keagan/reelcore/internal/interaction"
	"github.com/keagan/reelcore/internal/media"
	"github.com/keagan/reelcore/internal/timeline"
	"github.com/keagan/reelcore/pkg/util"
)

// Preview bundles everything the window needs
type Preview struct {
	log    zerolog.Logger
	cfg    *config.Config
	eng    *engine.Engine
	ctl    *interaction.Controller
	loader *media.Loader
	exec   *ffmpeg.Executor
}

// NewPreview creates the preview window state
func NewPreview(logger zerolog.Logger, cfg *config.Config, eng *engine.Engine, loader *media.Loader, exec *ffmpeg.Executor) *Preview {
	return &Preview{
		log:    logger.With().Str("component", "gui").Logger(),
		cfg:    cfg,
		eng:    eng,
		ctl:    interaction.New(logger, eng.Project()),
		loader: loader,
		exec:   exec,
	}
}

// Run opens the window and blocks until it closes
func (pv *Preview) Run() {
	myApp := app.NewWithID("reelcore")
	w := myApp.NewWindow("reelcore")
	w.Resize(fyne.NewSize(540, 960))

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	frame := canvas.NewImageFromImage(pv.eng.Tick(pv.eng.Clock().Now()))
	frame.FillMode = canvas.ImageFillContain
	frame.SetMinSize(fyne.NewSize(270, 480))

	timeLabel := widget.NewLabel(util.FormatTimestamp(0))

	scrubbing := false
	slider := widget.NewSlider(0, pv.eng.Project().Duration().Seconds())
	slider.Step = pv.cfg.FrameInterval().Seconds()
	slider.OnChanged = func(val float64) {
		scrubbing = true
		pv.eng.Seek(time.Duration(val * float64(time.Second)))
	}
	slider.OnChangeEnded = func(float64) { scrubbing = false }

	playButton := widget.NewButton("Play", func() { pv.eng.Play() })
	pauseButton := widget.NewButton("Pause", func() { pv.eng.Pause() })
	undoButton := widget.NewButton("Undo", func() {
		if err := pv.ctl.Undo(); err != nil {
			pv.log.Debug().Err(err).Msg("nothing to undo")
		}
	})

	loadButton := widget.NewButton("Add Video", func() {
		fd := dialog.NewFileOpen(func(ur fyne.URIReadCloser, err error) {
			if ur == nil || err != nil {
				return
			}
			pv.addVideo(ctx, ur.URI().Path(), slider, w)
		}, w)
		fd.SetFilter(storage.NewExtensionFileFilter([]string{".mp4", ".mov", ".mkv", ".webm"}))
		fd.Show()
	})

	audioButton := widget.NewButton("Add Audio", func() {
		fd := dialog.NewFileOpen(func(ur fyne.URIReadCloser, err error) {
			if ur == nil || err != nil {
				return
			}
			path := ur.URI().Path()
			pv.loader.Open(ctx, path)
			pv.eng.Project().AddAudio(path, 0, pv.eng.Project().Duration(), 1.0)
		}, w)
		fd.SetFilter(storage.NewExtensionFileFilter([]string{".mp3", ".wav", ".aac", ".m4a"}))
		fd.Show()
	})

	textEntry := widget.NewEntry()
	textEntry.SetPlaceHolder("Overlay text")
	textButton := widget.NewButton("Add Text", func() {
		if textEntry.Text == "" {
			return
		}
		at := pv.eng.Playhead()
		pv.eng.Project().AddText(timeline.TextAttrs{
			Content: textEntry.Text,
			X:       float64(pv.cfg.Design.Width) / 2,
			Y:       float64(pv.cfg.Design.Height) / 2,
			Size:    64,
			Color:   "#ffffff",
			Style:   timeline.StyleOutline,
		}, at, at+2*time.Second)
		textEntry.SetText("")
	})

	exportButton := widget.NewButton("Export", func() {
		fd := dialog.NewFileSave(func(uw fyne.URIWriteCloser, err error) {
			if uw == nil || err != nil {
				return
			}
			output := uw.URI().Path()
			uw.Close()
			go pv.runExport(ctx, output, w)
		}, w)
		fd.SetFileName("reelcore.mp4")
		fd.Show()
	})

	w.SetContent(container.NewBorder(
		nil,
		container.NewVBox(
			container.NewBorder(nil, nil, timeLabel, nil, slider),
			container.NewHBox(playButton, pauseButton, undoButton),
			container.NewHBox(loadButton, audioButton, exportButton),
			container.NewBorder(nil, nil, nil, textButton, textEntry),
		),
		nil, nil,
		frame,
	))

	sched := engine.NewScheduler(pv.log, pv.eng, pv.cfg.FrameInterval())
	go sched.Run(ctx, func(img image.Image) {
		fyne.Do(func() {
			frame.Image = img
			frame.Refresh()
			at := pv.eng.Playhead()
			timeLabel.SetText(util.FormatTimestamp(at))
			if !scrubbing {
				slider.Max = pv.eng.Project().Duration().Seconds()
				slider.SetValue(at.Seconds())
			}
		})
	})

	w.ShowAndRun()
}

// addVideo opens the file, waits for decode metadata in the background
// and appends the clip once its native duration is known.
func (pv *Preview) addVideo(ctx context.Context, path string, slider *widget.Slider, w fyne.Window) {
	h := pv.loader.Open(ctx, path)

	go func() {
		deadline := time.After(15 * time.Second)
		for !h.Ready() {
			if h.Failed() {
				fyne.Do(func() {
					dialog.ShowError(fmt.Errorf("could not read %s", path), w)
				})
				return
			}
			select {
			case <-ctx.Done():
				return
			case <-deadline:
				fyne.Do(func() {
					dialog.ShowError(fmt.Errorf("timed out probing %s", path), w)
				})
				return
			case <-time.After(100 * time.Millisecond):
			}
		}

		dur := h.Duration()
		fyne.Do(func() {
			p := pv.eng.Project()
			if len(p.VideoTrack.Clips) == 0 {
				p.AttachPrimaryVideo(path, dur)
			} else {
				p.AppendVideo(path, dur)
			}
			slider.Max = p.Duration().Seconds()
		})
	}()
}

// runExport captures the project into an mp4, reporting the summary when
// the artifact lands.
func (pv *Preview) runExport(ctx context.Context, output string, w fyne.Window) {
	exp := export.New(pv.log, pv.cfg, pv.eng)
	sink := export.NewFFmpegSink(pv.log, pv.exec, pv.cfg, output)

	res, err := exp.Export(ctx, sink, output)
	fyne.Do(func() {
		if err != nil {
			dialog.ShowError(err, w)
			return
		}
		dialog.ShowInformation("Export complete", fmt.Sprintf(
			"%s\n%d video clips, %d audio tracks, %d text overlays\nrendered in %s",
			res.Output,
			res.Summary.VideoClips,
			res.Summary.AudioTracks,
			res.Summary.TextOverlays,
			res.RenderTime.Round(time.Millisecond),
		), w)
	})
}
