package detection

import (
	"image/color"
	"testing"

	"gocv.io/x/gocv"
)

// solidFrame creates a BGR frame filled with a single color.
func solidFrame(t *testing.T, width, height int, c color.RGBA) gocv.Mat {
	t.Helper()
	frame := gocv.NewMatWithSizeFromScalar(
		gocv.NewScalar(float64(c.B), float64(c.G), float64(c.R), 0),
		height, width, gocv.MatTypeCV8UC3)
	t.Cleanup(func() { frame.Close() })
	return frame
}

// grayOf converts a BGR frame to grayscale.
func grayOf(t *testing.T, frame gocv.Mat) gocv.Mat {
	t.Helper()
	gray := gocv.NewMat()
	gocv.CvtColor(frame, &gray, gocv.ColorBGRToGray)
	t.Cleanup(func() { gray.Close() })
	return gray
}
