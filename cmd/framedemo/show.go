package main

import (
	"context"
	"image"
	"time"

	"fyne.io/fyne/v2"
	fyneapp "fyne.io/fyne/v2/app"
	"fyne.io/fyne/v2/canvas"
	"fyne.io/fyne/v2/container"
	"fyne.io/fyne/v2/widget"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"framecore/pkg/darkmode"
	"framecore/pkg/geom"
	"framecore/pkg/page"
	"framecore/pkg/paint"
)

func newShowCmd(a *app) *cobra.Command {
	var opts pageOptions
	cmd := &cobra.Command{
		Use:   "show",
		Short: "Show a live page in a window",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return a.show(cmd.Context(), &opts)
		},
	}
	opts.register(cmd)
	return cmd
}

// show runs the page on its own goroutine. The window only posts tasks to
// it and receives artifacts back.
func (a *app) show(ctx context.Context, opts *pageOptions) error {
	if ctx == nil {
		ctx = context.Background()
	}
	fa := fyneapp.New()
	w := fa.NewWindow("framedemo")
	w.Resize(fyne.NewSize(float32(opts.width), float32(opts.height+40)))

	view := canvas.NewImageFromImage(image.NewNRGBA(image.Rect(0, 0, opts.width, opts.height)))
	view.FillMode = canvas.ImageFillOriginal
	status := widget.NewLabel("loading")

	onCommit := func(art *paint.Artifact) {
		fyne.Do(func() {
			view.Image = art.Image
			view.Refresh()
		})
	}
	p, err := a.newPage(opts, page.WithCommitHandler(onCommit))
	if err != nil {
		return err
	}
	status.SetText(p.String())

	ctx, cancel := context.WithCancel(ctx)
	tasks := make(chan func(*page.Page), 8)
	post := func(task func(*page.Page)) {
		select {
		case tasks <- task:
		case <-ctx.Done():
		}
	}
	dark := widget.NewCheck("Dark mode", func(on bool) {
		settings := darkmode.DefaultSettings()
		if on {
			settings = a.cfg.DarkModeSettings()
			if settings.Mode == darkmode.InversionOff {
				settings.Mode = darkmode.InversionLightness
			}
		}
		post(func(p *page.Page) { p.SetDarkModeSettings(settings) })
	})
	dark.SetChecked(p.DarkModeFilter() != nil)
	rotate := widget.NewButton("Rotate", func() {
		post(func(p *page.Page) {
			s := p.VisualViewport().Size()
			p.Resize(geom.Size{Width: s.Height, Height: s.Width})
		})
	})

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		defer p.Close()
		ticker := time.NewTicker(frameInterval)
		defer ticker.Stop()
		for {
			select {
			case <-gctx.Done():
				return nil
			case task := <-tasks:
				task(p)
			case now := <-ticker.C:
				p.BeginFrame(now)
			}
		}
	})

	toolbar := container.NewHBox(dark, rotate, status)
	w.SetContent(container.NewBorder(toolbar, nil, nil, nil, container.NewScroll(view)))
	w.SetOnClosed(cancel)
	a.logger.Info("showing page", zap.Int("width", opts.width), zap.Int("height", opts.height))
	w.ShowAndRun()

	cancel()
	return g.Wait()
}
