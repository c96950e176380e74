package main

import (
	"errors"
	"fmt"
	"time"

	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

const frameInterval = 16 * time.Millisecond

func newRenderCmd(a *app) *cobra.Command {
	var (
		opts   pageOptions
		out    string
		frames int
	)
	cmd := &cobra.Command{
		Use:   "render",
		Short: "Run the page lifecycle and write the painted result as PNG",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			if frames < 1 {
				return fmt.Errorf("--frames must be at least 1, got %d", frames)
			}
			p, err := a.newPage(&opts)
			if err != nil {
				return err
			}
			defer p.Close()

			start := time.Now()
			for i := 0; i < frames; i++ {
				if !p.ServiceScriptedAnimations(start.Add(time.Duration(i) * frameInterval)) {
					a.logger.Warn("lifecycle update incomplete", zap.Int("frame", i))
				}
			}
			art := p.LastArtifact()
			if art == nil {
				return errors.New("nothing was painted")
			}
			if err := art.SavePNG(out); err != nil {
				return fmt.Errorf("write %s: %w", out, err)
			}

			b := art.Image.Bounds()
			a.logger.Info("rendered page",
				zap.String("out", out),
				zap.Int("frames", frames),
				zap.Int("display_items", len(art.Items)),
				zap.Bool("dark", p.DarkModeFilter() != nil))
			fmt.Fprintf(cmd.OutOrStdout(), "wrote %s (%dx%d, %d display items)\n", out, b.Dx(), b.Dy(), len(art.Items))
			return nil
		},
	}
	opts.register(cmd)
	cmd.Flags().StringVarP(&out, "out", "o", "framedemo.png", "output PNG path")
	cmd.Flags().IntVar(&frames, "frames", 1, "animation frames to run before writing")
	return cmd
}
