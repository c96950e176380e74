package main

import (
	"fmt"
	"runtime"

	"github.com/spf13/cobra"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"framecore/pkg/darkmode"
	"framecore/pkg/images"
)

type frameDecision struct {
	features darkmode.Features
	sampled  bool
	result   darkmode.Classification
}

func newClassifyCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "classify <image>",
		Short: "Print the dark mode filter decision for every frame of an image",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			img, err := images.LoadFile(args[0])
			if err != nil {
				return err
			}

			classifier := darkmode.NewImageClassifier(nil)
			decisions := make([]frameDecision, img.FrameCount())
			g := new(errgroup.Group)
			g.SetLimit(runtime.GOMAXPROCS(0))
			for i := range decisions {
				g.Go(func() error {
					frame := img.Frame(i)
					d := &decisions[i]
					d.features, d.sampled = classifier.GetFeatures(frame, frame.Bounds())
					d.result = classifier.Classify(frame, frame.Bounds())
					return nil
				})
			}
			if err := g.Wait(); err != nil {
				return err
			}

			out := cmd.OutOrStdout()
			b := img.Bounds()
			fmt.Fprintf(out, "%s: %s %dx%d, %d frame(s)\n", args[0], img.Format(), b.Dx(), b.Dy(), img.FrameCount())
			for i, d := range decisions {
				if !d.sampled {
					fmt.Fprintf(out, "frame %d: %s (fully transparent)\n", i, d.result)
					continue
				}
				f := d.features
				fmt.Fprintf(out, "frame %d: %s colorful=%t buckets=%.3f transparency=%.3f background=%.3f\n",
					i, d.result, f.IsColorful, f.ColorBucketsRatio, f.TransparencyRatio, f.BackgroundRatio)
			}
			a.logger.Debug("classified image", zap.String("path", args[0]), zap.Int("frames", img.FrameCount()))
			return nil
		},
	}
}
