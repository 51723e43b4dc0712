package main

import (
	"context"
	"fmt"
	"math/rand/v2"
	"sync"
	"time"

	"github.com/charmbracelet/log"
	uv "github.com/charmbracelet/ultraviolet"
	"github.com/spf13/cobra"
	"github.com/taigrr/facet/pkg/config"
	"github.com/taigrr/facet/pkg/math3d"
	"github.com/taigrr/facet/pkg/models"
	"github.com/taigrr/facet/pkg/render"
	"github.com/taigrr/facet/pkg/scene"
)

const viewHelp = `Controls:
  Mouse drag  rotate
  Scroll      zoom
  W/S A/D Q/E pitch, yaw, roll
  Space       random spin
  R           reset
  X           toggle wireframe
  Z           toggle antialiasing
  +/-         zoom
  Esc         quit`

func newViewCmd(logger *log.Logger) *cobra.Command {
	var (
		opts sceneOptions
		fps  int
	)
	cmd := &cobra.Command{
		Use:   "view [scene.yaml]",
		Short: "Interactive terminal viewer",
		Long:  "Render the scene into the terminal with half-block characters.\n\n" + viewHelp,
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
			return runView(cmd.Context(), s, f, max(fps, 1), logger)
		},
	}
	opts.register(cmd)
	cmd.Flags().IntVar(&fps, "fps", 30, "Target frames per second")
	return cmd
}

// viewState is shared between the event reader and the render loop.
type viewState struct {
	mu sync.Mutex

	spin      *spin
	torque    struct{ pitch, yaw, roll float64 }
	zoom      float64 // Pending camera movement toward the target
	reset     bool
	wireframe bool
	antialias bool
	resized   bool
	cols      int
	rows      int

	mouseDown bool
	lastX     int
	lastY     int
	quit      bool
}

const torqueStrength = 3.0

// handle applies one terminal event. It reports whether the viewer should quit.
func (v *viewState) handle(ev uv.Event) bool {
	v.mu.Lock()
	defer v.mu.Unlock()

	switch ev := ev.(type) {
	case uv.WindowSizeEvent:
		v.cols, v.rows = ev.Width, ev.Height
		v.resized = true

	case uv.KeyPressEvent:
		switch {
		case ev.MatchString("escape", "ctrl+c"):
			v.quit = true
		case ev.MatchString("w", "up"):
			v.torque.pitch = -torqueStrength
		case ev.MatchString("s", "down"):
			v.torque.pitch = torqueStrength
		case ev.MatchString("a", "left"):
			v.torque.yaw = -torqueStrength
		case ev.MatchString("d", "right"):
			v.torque.yaw = torqueStrength
		case ev.MatchString("q"):
			v.torque.roll = -torqueStrength
		case ev.MatchString("e"):
			v.torque.roll = torqueStrength
		case ev.MatchString("space"):
			v.spin.impulse(
				(rand.Float64()-0.5)*1.5,
				(rand.Float64()-0.5)*1.5,
				(rand.Float64()-0.5)*1.5,
			)
		case ev.MatchString("r"):
			v.reset = true
		case ev.MatchString("x"):
			v.wireframe = !v.wireframe
		case ev.MatchString("z"):
			v.antialias = !v.antialias
		case ev.MatchString("+", "="):
			v.zoom += 0.5
		case ev.MatchString("-", "_"):
			v.zoom -= 0.5
		}

	case uv.KeyReleaseEvent:
		switch {
		case ev.MatchString("w", "up", "s", "down"):
			v.torque.pitch = 0
		case ev.MatchString("a", "left", "d", "right"):
			v.torque.yaw = 0
		case ev.MatchString("q", "e"):
			v.torque.roll = 0
		}

	case uv.MouseClickEvent:
		v.mouseDown = true
		v.lastX, v.lastY = ev.X, ev.Y

	case uv.MouseReleaseEvent:
		v.mouseDown = false

	case uv.MouseMotionEvent:
		if v.mouseDown {
			dx, dy := ev.X-v.lastX, ev.Y-v.lastY
			v.spin.impulse(float64(dy)*0.03, float64(dx)*0.03, 0)
			v.lastX, v.lastY = ev.X, ev.Y
		}

	case uv.MouseWheelEvent:
		switch ev.Button {
		case uv.MouseWheelUp:
			v.zoom += 0.5
		case uv.MouseWheelDown:
			v.zoom -= 0.5
		}
	}
	return v.quit
}

// frame is what the render loop takes from viewState for one frame.
type frame struct {
	rotation   math3d.Mat4
	zoom       float64
	reset      bool
	wireframe  bool
	antialias  bool
	resized    bool
	cols, rows int
}

// step advances the spin by one frame of dt seconds and drains pending
// requests.
func (v *viewState) step(dt float64) frame {
	v.mu.Lock()
	defer v.mu.Unlock()

	if v.reset {
		v.spin.reset()
	}
	v.spin.impulse(v.torque.pitch*dt, v.torque.yaw*dt, v.torque.roll*dt)
	// Key release events are unreliable in some terminals.
	v.torque.pitch *= 0.9
	v.torque.yaw *= 0.9
	v.torque.roll *= 0.9
	v.spin.update()

	f := frame{
		rotation:  math3d.Rotate(v.spin.Pitch.Angle, v.spin.Yaw.Angle, v.spin.Roll.Angle),
		zoom:      v.zoom,
		reset:     v.reset,
		wireframe: v.wireframe,
		antialias: v.antialias,
		resized:   v.resized,
		cols:      v.cols,
		rows:      v.rows,
	}
	v.zoom, v.reset, v.resized = 0, false, false
	return f
}

// wireframeToggle switches every material to bare flat edges and back,
// restoring the flags the scene was loaded with.
type wireframeToggle struct {
	orig map[*models.Material]materialStyle
	on   bool
}

type materialStyle struct {
	flat, wireframe bool
}

func newWireframeToggle(s *scene.Scene) *wireframeToggle {
	t := &wireframeToggle{orig: make(map[*models.Material]materialStyle)}
	for _, m := range s.Meshes() {
		if m.Material != nil {
			t.orig[m.Material] = materialStyle{flat: m.Material.Flat, wireframe: m.Material.Wireframe}
		}
	}
	return t
}

func (t *wireframeToggle) set(on bool) {
	if on == t.on {
		return
	}
	t.on = on
	for mat, style := range t.orig {
		mat.Flat = style.flat || on
		mat.Wireframe = style.wireframe || on
	}
}

func runView(ctx context.Context, s *scene.Scene, f *config.File, fps int, logger *log.Logger) error {
	if err := s.Rebuild(); err != nil {
		return err
	}

	term := uv.DefaultTerminal()
	cols, rows, err := term.GetSize()
	if err != nil {
		return fmt.Errorf("get terminal size: %w", err)
	}
	if err := term.Start(); err != nil {
		return fmt.Errorf("start terminal: %w", err)
	}
	term.EnterAltScreen()
	term.HideCursor()
	term.Resize(cols, rows)
	defer func() {
		term.ExitAltScreen()
		term.ShowCursor()
		term.Shutdown(context.Background())
	}()

	w, h := render.TerminalSize(cols, rows)
	p := render.NewPipeline(s, w, h,
		render.WithAntialias(f.Antialias),
		render.WithDisplay(render.NewTerminalDisplay(term)),
		render.WithLogger(logger),
	)

	cam := s.Camera
	home := cam.Position()
	state := &viewState{spin: newSpin(fps), antialias: f.Antialias}
	wire := newWireframeToggle(s)

	ctx, cancel := context.WithCancel(ctx)
	defer cancel()
	go func() {
		for ev := range term.Events() {
			if state.handle(ev) {
				cancel()
				return
			}
		}
	}()

	frameTime := time.Second / time.Duration(fps)
	last := time.Now()
	for {
		select {
		case <-ctx.Done():
			return nil
		default:
		}

		now := time.Now()
		dt := min(now.Sub(last).Seconds(), 0.1)
		last = now

		fr := state.step(dt)
		if fr.resized {
			term.Erase()
			term.Resize(fr.cols, fr.rows)
			p.RequestResize(render.TerminalSize(fr.cols, fr.rows))
		}
		if fr.reset {
			cam.SetPosition(home)
		}
		if fr.zoom != 0 {
			cam.MoveForward(fr.zoom)
		}
		wire.set(fr.wireframe)
		p.SetAntialias(fr.antialias)
		s.Matrix = fr.rotation

		if err := p.Render(nil); err != nil {
			return err
		}

		if elapsed := time.Since(now); elapsed < frameTime {
			time.Sleep(frameTime - elapsed)
		}
	}
}
