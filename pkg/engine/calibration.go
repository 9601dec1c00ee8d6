package engine

import (
	"fmt"

	"github.com/zhuhuilin/go-eyetrack/pkg/geometry"
)

// MinCalibrationPoints is the number of gaze targets a session needs
// before Finish can mark the engine calibrated.
const MinCalibrationPoints = 4

// CalibrationState names a phase of the calibration session.
type CalibrationState int

const (
	CalibrationIdle CalibrationState = iota
	CalibrationCollecting
	CalibrationFinished
)

func (s CalibrationState) String() string {
	switch s {
	case CalibrationIdle:
		return "idle"
	case CalibrationCollecting:
		return "collecting"
	case CalibrationFinished:
		return "finished"
	}
	return fmt.Sprintf("state(%d)", int(s))
}

// calibrationSession accumulates screen points the user was asked to
// look at. The caller drives every transition; there is no timeout and
// no persistence.
type calibrationSession struct {
	state      CalibrationState
	points     []geometry.Point
	calibrated bool
	minPoints  int
}

func newCalibrationSession(minPoints int) *calibrationSession {
	if minPoints < 1 {
		minPoints = MinCalibrationPoints
	}
	return &calibrationSession{minPoints: minPoints}
}

// Start begins a fresh collecting pass, discarding any prior session.
func (s *calibrationSession) Start() {
	s.state = CalibrationCollecting
	s.points = s.points[:0]
	s.calibrated = false
}

// Add appends a point while collecting. Outside of a collecting pass
// the point is silently ignored.
func (s *calibrationSession) Add(pt geometry.Point) bool {
	if s.state != CalibrationCollecting {
		return false
	}
	s.points = append(s.points, pt)
	return true
}

// Finish ends the collecting pass. The calibrated flag flips only when
// enough points were accumulated; a short session finishes uncalibrated
// and stays that way until restarted.
func (s *calibrationSession) Finish() bool {
	if s.state != CalibrationCollecting {
		return s.calibrated
	}
	s.state = CalibrationFinished
	s.calibrated = len(s.points) >= s.minPoints
	return s.calibrated
}

// Points returns a copy of the accumulated points.
func (s *calibrationSession) Points() []geometry.Point {
	out := make([]geometry.Point, len(s.points))
	copy(out, s.points)
	return out
}
