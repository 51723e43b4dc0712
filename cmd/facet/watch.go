package main

import (
	"context"
	"path/filepath"
	"time"

	"github.com/charmbracelet/log"
	"github.com/spf13/cobra"
	"github.com/taigrr/facet/pkg/watcher"
)

func newWatchCmd(logger *log.Logger) *cobra.Command {
	var (
		opts     sceneOptions
		out      string
		debounce time.Duration
	)
	cmd := &cobra.Command{
		Use:   "watch scene.yaml",
		Short: "Re-render whenever the scene file or its assets change",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			w := &sceneWatch{
				render: func() ([]string, error) {
					f, dir, err := opts.load(cmd, args)
					if err != nil {
						return nil, err
					}
					if _, err := renderFile(f, dir, out, logger); err != nil {
						return nil, err
					}
					logger.Info("rendered", "file", out)
					return append([]string{args[0]}, f.Assets(dir)...), nil
				},
				debounce: debounce,
				logger:   logger,
			}
			return w.run(cmd.Context())
		},
	}
	opts.register(cmd)
	cmd.Flags().StringVarP(&out, "out", "o", "frame.png", "Output image (.png or .bmp)")
	cmd.Flags().DurationVar(&debounce, "debounce", 200*time.Millisecond, "Quiet period before re-rendering")
	return cmd
}

// sceneWatch renders on the calling goroutine each time a watched file
// settles. render returns the files the next frame depends on.
type sceneWatch struct {
	render   func() ([]string, error)
	debounce time.Duration
	logger   *log.Logger
}

func (w *sceneWatch) run(ctx context.Context) error {
	files, err := w.render()
	if err != nil {
		return err
	}

	fw, err := watcher.New(w.debounce, w.logger)
	if err != nil {
		return err
	}
	defer fw.Close()

	changed := make(chan string, 1)
	notify := func(path string) {
		select {
		case changed <- path:
		default:
		}
	}
	if err := fw.Watch(files, notify); err != nil {
		return err
	}
	fw.Start()
	w.logger.Info("watching for changes", "files", len(files))

	for {
		select {
		case <-ctx.Done():
			return nil
		case path := <-changed:
			w.logger.Info("change detected", "file", filepath.Base(path))
			next, err := w.render()
			if err != nil {
				// Keep watching so the next save can fix it.
				w.logger.Error("render failed", "err", err)
				continue
			}
			if err := fw.RemoveAll(); err != nil {
				return err
			}
			if err := fw.Watch(next, notify); err != nil {
				return err
			}
		}
	}
}
