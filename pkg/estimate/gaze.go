package estimate

import (
	"math"

	"github.com/zhuhuilin/go-eyetrack/pkg/geometry"
)

// Default gaze tuning. The aspect constants describe how open an eye
// looks at neutral gaze and how quickly openness maps to vertical
// gaze.
const (
	DefaultGazeNeutralAspect = 0.3
	DefaultGazeAspectScale   = 0.2
	DefaultFocusThreshold    = 0.1
)

// Gaze is the normalized gaze offset, each axis clamped to [-1, 1].
type Gaze struct {
	X float64
	Y float64
}

// EstimateGaze derives the gaze offset from eye geometry. The
// horizontal component is the normalized x offset between the eye
// centers; the vertical component maps the mean eye box aspect ratio
// (height/width) against the neutral aspect. Without detected eyes the
// gaze is zero: proportional fallback landmarks carry no gaze signal.
func EstimateGaze(lm Landmarks, neutralAspect, aspectScale float64) Gaze {
	if !lm.EyesDetected || len(lm.Points) <= LandmarkRightEye {
		return Gaze{}
	}

	left := lm.Points[LandmarkLeftEye]
	right := lm.Points[LandmarkRightEye]
	dist := left.DistanceTo(right)
	if dist <= 0 {
		return Gaze{}
	}

	g := Gaze{X: clamp((left.X-right.X)/dist, -1, 1)}

	if aspectScale > 0 {
		if aspect, ok := meanEyeAspect(lm.LeftEyeBox, lm.RightEyeBox); ok {
			g.Y = clamp((aspect-neutralAspect)/aspectScale, -1, 1)
		}
	}
	return g
}

// Focused reports whether both gaze components are within the
// threshold of straight-ahead.
func (g Gaze) Focused(threshold float64) bool {
	return math.Abs(g.X) < threshold && math.Abs(g.Y) < threshold
}

// Vector converts the 2D gaze offset to an approximately unit-length
// forward vector. Zero gaze maps to (0, 0, 1).
func (g Gaze) Vector() (x, y, z float64) {
	n := math.Sqrt(g.X*g.X + g.Y*g.Y + 1)
	return g.X / n, g.Y / n, 1 / n
}

func meanEyeAspect(left, right geometry.Rect) (float64, bool) {
	var sum float64
	var count int
	for _, box := range [2]geometry.Rect{left, right} {
		if box.W > 0 && box.H > 0 {
			sum += float64(box.H) / float64(box.W)
			count++
		}
	}
	if count == 0 {
		return 0, false
	}
	return sum / float64(count), true
}
