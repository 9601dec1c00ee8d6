package estimate

import (
	"image"
	"image/color"
	"math"
	"testing"

	"gocv.io/x/gocv"
)

// TestDetectShouldersFallback tests that a featureless frame yields
// the fixed proportional positions
func TestDetectShouldersFallback(t *testing.T) {
	gray := gocv.NewMatWithSizeFromScalar(gocv.NewScalar(128, 0, 0, 0), 480, 640, gocv.MatTypeCV8U)
	defer gray.Close()

	pts := DetectShoulders(gray)
	if len(pts) != 2 {
		t.Fatalf("len(points) = %d, want 2", len(pts))
	}
	if pts[0].X != 160 || pts[0].Y != 384 {
		t.Errorf("left fallback = %+v, want (160, 384)", pts[0])
	}
	if pts[1].X != 480 || pts[1].Y != 384 {
		t.Errorf("right fallback = %+v, want (480, 384)", pts[1])
	}
}

// TestDetectShouldersEmptyFrame tests the degenerate empty input
func TestDetectShouldersEmptyFrame(t *testing.T) {
	gray := gocv.NewMat()
	defer gray.Close()

	pts := DetectShoulders(gray)
	if len(pts) != 2 {
		t.Fatalf("len(points) = %d, want 2", len(pts))
	}
}

// TestDetectShouldersContours tests that two shoulder-sized blobs in
// the lower band are picked up at roughly their centers
func TestDetectShouldersContours(t *testing.T) {
	gray := gocv.NewMatWithSizeFromScalar(gocv.NewScalar(0, 0, 0, 0), 480, 640, gocv.MatTypeCV8U)
	defer gray.Close()

	white := color.RGBA{255, 255, 255, 0}
	gocv.Rectangle(&gray, image.Rect(50, 300, 150, 340), white, -1)
	gocv.Rectangle(&gray, image.Rect(400, 300, 500, 340), white, -1)

	pts := DetectShoulders(gray)
	if len(pts) != 2 {
		t.Fatalf("len(points) = %d, want 2", len(pts))
	}

	// Centers of the drawn blobs, with slack for edge thickness.
	if math.Abs(pts[0].X-100) > 5 || math.Abs(pts[0].Y-320) > 5 {
		t.Errorf("left shoulder = %+v, want near (100, 320)", pts[0])
	}
	if math.Abs(pts[1].X-450) > 5 || math.Abs(pts[1].Y-320) > 5 {
		t.Errorf("right shoulder = %+v, want near (450, 320)", pts[1])
	}
	if pts[0].X >= pts[1].X {
		t.Error("shoulder points not ordered left to right")
	}
}
