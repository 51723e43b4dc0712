package main

import (
	"fmt"

	"github.com/charmbracelet/log"
	"github.com/spf13/cobra"
	"github.com/taigrr/facet/pkg/config"
	"github.com/taigrr/facet/pkg/render"
)

func newPickCmd(logger *log.Logger) *cobra.Command {
	var (
		opts sceneOptions
		x, y int
	)
	cmd := &cobra.Command{
		Use:   "pick [scene.yaml]",
		Short: "Print the mesh and triangle visible at a pixel",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			f, dir, err := opts.load(cmd, args)
			if err != nil {
				return err
			}
			s, err := f.Build(dir, logger)
			if err != nil {
				return err
			}
			p := render.NewPipeline(s, f.Width, f.Height,
				render.WithIDBuffer(),
				render.WithAntialias(f.Antialias),
				render.WithLogger(logger),
			)
			if err := p.Render(nil); err != nil {
				return err
			}

			out := cmd.OutOrStdout()
			meshID, triID, ok := p.IdentifyTriangleAt(x, y)
			if !ok {
				fmt.Fprintf(out, "(%d, %d): background\n", x, y)
				return nil
			}
			m, _ := s.MeshByID(meshID)
			fmt.Fprintf(out, "(%d, %d): mesh %q (id %d) triangle %d depth %d\n",
				x, y, m.Name, meshID, triID, p.Depth(x, y))
			return nil
		},
	}
	opts.register(cmd)
	cmd.Flags().IntVar(&x, "x", config.DefaultWidth/2, "Pixel column")
	cmd.Flags().IntVar(&y, "y", config.DefaultHeight/2, "Pixel row")
	return cmd
}
