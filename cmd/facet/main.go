// facet renders scenes with a CPU software rasterizer, to image files or
// straight into the terminal.
//
// Usage:
//
//	facet render [scene.yaml] -o frame.png
//	facet view [scene.yaml]
//	facet watch scene.yaml -o frame.png
//	facet pick [scene.yaml] --x 160 --y 120
//
// Without a scene file a lit box is used.
package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"github.com/charmbracelet/fang"
)

// Set via ldflags during build.
var version = "dev"

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := fang.Execute(ctx, newRootCmd(), fang.WithVersion(version)); err != nil {
		stop()
		os.Exit(1)
	}
}
