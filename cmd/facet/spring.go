package main

import "github.com/charmbracelet/harmonica"

// spinAxis turns at Velocity radians per frame while a critically damped
// spring pulls the velocity back to zero.
type spinAxis struct {
	Angle    float64
	Velocity float64
	spring   harmonica.Spring
	accel    float64 // Spring state for Velocity
}

func newSpinAxis(fps int) spinAxis {
	return spinAxis{spring: harmonica.NewSpring(harmonica.FPS(fps), 4.0, 1.0)}
}

func (a *spinAxis) update() {
	a.Angle += a.Velocity
	a.Velocity, a.accel = a.spring.Update(a.Velocity, a.accel, 0)
}

// spin is the model orientation driven by user impulses.
type spin struct {
	Pitch, Yaw, Roll spinAxis
	fps              int
}

func newSpin(fps int) *spin {
	s := &spin{fps: max(fps, 1)}
	s.reset()
	return s
}

func (s *spin) update() {
	s.Pitch.update()
	s.Yaw.update()
	s.Roll.update()
}

func (s *spin) impulse(pitch, yaw, roll float64) {
	s.Pitch.Velocity += pitch
	s.Yaw.Velocity += yaw
	s.Roll.Velocity += roll
}

func (s *spin) reset() {
	s.Pitch = newSpinAxis(s.fps)
	s.Yaw = newSpinAxis(s.fps)
	s.Roll = newSpinAxis(s.fps)
}
