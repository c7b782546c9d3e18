package main

import "github.com/charmbracelet/harmonica"

// spinAxis is one rotation axis whose angular velocity decays toward zero
// through a critically damped spring.
type spinAxis struct {
	Angle    float64
	Velocity float64
	spring   harmonica.Spring
	accel    float64
}

func newSpinAxis(fps int) spinAxis {
	return spinAxis{spring: harmonica.NewSpring(harmonica.FPS(fps), 4.0, 1.0)}
}

func (a *spinAxis) update() {
	a.Angle += a.Velocity
	a.Velocity, a.accel = a.spring.Update(a.Velocity, a.accel, 0)
}

// spin holds the interactive model rotation layered on top of the
// configured scene rotation.
type spin struct {
	Pitch, Yaw, Roll spinAxis
	fps              int
}

func newSpin(fps int) *spin {
	s := &spin{fps: fps}
	s.Reset()
	return s
}

// Update advances every axis by one frame.
func (s *spin) Update() {
	s.Pitch.update()
	s.Yaw.update()
	s.Roll.update()
}

// Impulse adds to the angular velocity of each axis.
func (s *spin) Impulse(pitch, yaw, roll float64) {
	s.Pitch.Velocity += pitch
	s.Yaw.Velocity += yaw
	s.Roll.Velocity += roll
}

// Reset stops all motion and returns to the configured orientation.
func (s *spin) Reset() {
	s.Pitch = newSpinAxis(s.fps)
	s.Yaw = newSpinAxis(s.fps)
	s.Roll = newSpinAxis(s.fps)
}

// Angles returns pitch, yaw and roll in radians.
func (s *spin) Angles() (float64, float64, float64) {
	return s.Pitch.Angle, s.Yaw.Angle, s.Roll.Angle
}

// Moving reports whether any axis still has noticeable velocity.
func (s *spin) Moving() bool {
	const eps = 1e-4
	return abs(s.Pitch.Velocity) > eps || abs(s.Yaw.Velocity) > eps || abs(s.Roll.Velocity) > eps
}

func abs(v float64) float64 {
	if v < 0 {
		return -v
	}
	return v
}
