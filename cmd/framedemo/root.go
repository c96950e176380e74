package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"framecore/pkg/config"
	"framecore/pkg/geom"
	"framecore/pkg/observability"
	"framecore/pkg/page"
)

// app carries what the persistent pre-run set up to the subcommands.
type app struct {
	cfgFile string
	cfg     *config.Config
	logger  *zap.Logger
}

func newRootCmd() *cobra.Command {
	a := &app{}
	root := &cobra.Command{
		Use:           "framedemo",
		Short:         "Drive framecore pages from the command line",
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, _ []string) error {
			cfg, err := config.Load(a.cfgFile)
			if err != nil {
				return fmt.Errorf("load config: %w", err)
			}
			a.cfg = cfg
			observability.InitializeLogger(cfg.Logger)
			a.logger = observability.GetLogger().Named(cmd.Name())
			return nil
		},
		PersistentPostRun: func(*cobra.Command, []string) {
			observability.Sync()
		},
	}
	root.PersistentFlags().StringVarP(&a.cfgFile, "config", "c", "", "config file (yaml, json or toml)")

	root.AddCommand(newRenderCmd(a), newClassifyCmd(a), newShowCmd(a))
	return root
}

// pageOptions are the flags shared by the commands that build a page.
type pageOptions struct {
	input  string
	width  int
	height int
	dark   bool
}

func (o *pageOptions) register(cmd *cobra.Command) {
	cmd.Flags().StringVarP(&o.input, "input", "i", "", "markup file to load instead of the demo page")
	cmd.Flags().IntVar(&o.width, "width", 800, "viewport width in pixels")
	cmd.Flags().IntVar(&o.height, "height", 600, "viewport height in pixels")
	cmd.Flags().BoolVar(&o.dark, "dark", false, "force dark mode (lightness inversion unless the config picks an algorithm)")
}

// newPage loads the input markup, or the demo page, into a new page.
func (a *app) newPage(o *pageOptions, opts ...page.Option) (*page.Page, error) {
	markup := demoMarkup
	if o.input != "" {
		data, err := os.ReadFile(o.input)
		if err != nil {
			return nil, fmt.Errorf("read input: %w", err)
		}
		markup = string(data)
	}
	if o.width <= 0 || o.height <= 0 {
		return nil, fmt.Errorf("viewport size %dx%d is empty", o.width, o.height)
	}

	cfg := *a.cfg
	if o.dark && cfg.DarkMode.Algorithm == "off" {
		cfg.DarkMode.Algorithm = "lightness"
	}
	opts = append([]page.Option{
		page.WithConfig(&cfg),
		page.WithOrigin(demoOrigin),
		page.WithLogger(a.logger.Named("page")),
	}, opts...)
	return page.New(markup, geom.Size{Width: float64(o.width), Height: float64(o.height)}, opts...)
}
