package main

import (
	"os"
	"path/filepath"

	"github.com/charmbracelet/log"
	"github.com/spf13/cobra"
	"github.com/taigrr/facet/pkg/config"
	"github.com/taigrr/facet/pkg/pixel"
)

func newRootCmd() *cobra.Command {
	logger := log.NewWithOptions(os.Stderr, log.Options{
		ReportTimestamp: true,
		Prefix:          "facet",
	})
	var level string

	root := &cobra.Command{
		Use:           "facet",
		Short:         "Software 3D renderer for files and terminals",
		Long:          "facet renders meshes, lights and materials described in a YAML scene file with a CPU scanline rasterizer.",
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			lvl, err := log.ParseLevel(level)
			if err != nil {
				return err
			}
			logger.SetLevel(lvl)
			return nil
		},
	}
	root.PersistentFlags().StringVar(&level, "log-level", "info", "Log level (debug, info, warn, error)")

	root.AddCommand(
		newRenderCmd(logger),
		newViewCmd(logger),
		newWatchCmd(logger),
		newPickCmd(logger),
	)
	return root
}

// sceneOptions are the flags that override fields of the scene file.
type sceneOptions struct {
	width      int
	height     int
	antialias  bool
	background string
}

func (o *sceneOptions) register(cmd *cobra.Command) {
	flags := cmd.Flags()
	flags.IntVar(&o.width, "width", config.DefaultWidth, "Output width in pixels")
	flags.IntVar(&o.height, "height", config.DefaultHeight, "Output height in pixels")
	flags.BoolVar(&o.antialias, "aa", false, "Render at twice the resolution and downsample")
	flags.StringVar(&o.background, "bg", "", "Background color as #rrggbb")
}

// load reads the scene file named by args, or the default scene, and applies
// flag overrides. It returns the directory assets resolve against.
func (o *sceneOptions) load(cmd *cobra.Command, args []string) (*config.File, string, error) {
	f, dir := config.Default(), "."
	if len(args) > 0 {
		var err error
		if f, err = config.Load(args[0]); err != nil {
			return nil, "", err
		}
		dir = filepath.Dir(args[0])
	}

	flags := cmd.Flags()
	if flags.Changed("width") {
		f.Width = max(o.width, 1)
	}
	if flags.Changed("height") {
		f.Height = max(o.height, 1)
	}
	if flags.Changed("aa") {
		f.Antialias = o.antialias
	}
	if flags.Changed("bg") {
		if _, err := pixel.ParseHex(o.background); err != nil {
			return nil, "", err
		}
		f.Background = o.background
	}
	return f, dir, nil
}
