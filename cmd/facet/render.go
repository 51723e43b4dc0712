package main

import (
	"github.com/charmbracelet/log"
	"github.com/spf13/cobra"
	"github.com/taigrr/facet/pkg/config"
	"github.com/taigrr/facet/pkg/render"
)

func newRenderCmd(logger *log.Logger) *cobra.Command {
	var (
		opts sceneOptions
		out  string
	)
	cmd := &cobra.Command{
		Use:   "render [scene.yaml]",
		Short: "Render one frame to a PNG or BMP file",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			f, dir, err := opts.load(cmd, args)
			if err != nil {
				return err
			}
			p, err := renderFile(f, dir, out, logger)
			if err != nil {
				return err
			}
			st := p.Stats()
			logger.Info("rendered", "file", out,
				"triangles", st.Triangles, "drawn", st.Drawn(), "pixels", st.Pixels)
			return nil
		},
	}
	opts.register(cmd)
	cmd.Flags().StringVarP(&out, "out", "o", "frame.png", "Output image (.png or .bmp)")
	return cmd
}

// renderFile builds the scene and writes one frame to out.
func renderFile(f *config.File, dir, out string, logger *log.Logger) (*render.Pipeline, error) {
	s, err := f.Build(dir, logger)
	if err != nil {
		return nil, err
	}
	p := render.NewPipeline(s, f.Width, f.Height,
		render.WithAntialias(f.Antialias),
		render.WithDisplay(render.FileDisplay{Path: out}),
		render.WithLogger(logger),
	)
	if err := p.Render(nil); err != nil {
		return nil, err
	}
	return p, nil
}
