package estimate

import (
	"math"
	"testing"

	"github.com/zhuhuilin/go-eyetrack/pkg/geometry"
)

func approxPoint(t *testing.T, got geometry.Point, wantX, wantY float64, label string) {
	t.Helper()
	if math.Abs(got.X-wantX) > 1e-9 || math.Abs(got.Y-wantY) > 1e-9 {
		t.Errorf("%s = (%v, %v), want (%v, %v)", label, got.X, got.Y, wantX, wantY)
	}
}

// TestSynthesizeLandmarksFallback tests the proportional landmark set
// produced without eye detections
func TestSynthesizeLandmarksFallback(t *testing.T) {
	face := geometry.Rect{X: 100, Y: 100, W: 200, H: 200}
	lm := SynthesizeLandmarks(face, nil)

	if len(lm.Points) != LandmarkCount {
		t.Fatalf("len(Points) = %d, want %d", len(lm.Points), LandmarkCount)
	}
	if lm.EyesDetected {
		t.Error("EyesDetected = true without eye rects")
	}

	approxPoint(t, lm.Points[LandmarkTopLeft], 100, 100, "top left")
	approxPoint(t, lm.Points[LandmarkTopRight], 300, 100, "top right")
	approxPoint(t, lm.Points[LandmarkBottomLeft], 100, 300, "bottom left")
	approxPoint(t, lm.Points[LandmarkBottomRight], 300, 300, "bottom right")

	approxPoint(t, lm.Points[LandmarkLeftEye], 150, 160, "left eye")
	approxPoint(t, lm.Points[LandmarkRightEye], 250, 160, "right eye")

	// Nominal eye width 0.25*200=50, corners at +/- a third of it.
	approxPoint(t, lm.Points[LandmarkLeftEyeOuter], 150-50.0/3, 160, "left eye outer")
	approxPoint(t, lm.Points[LandmarkLeftEyeInner], 150+50.0/3, 160, "left eye inner")
	approxPoint(t, lm.Points[LandmarkRightEyeInner], 250-50.0/3, 160, "right eye inner")
	approxPoint(t, lm.Points[LandmarkRightEyeOuter], 250+50.0/3, 160, "right eye outer")

	approxPoint(t, lm.Points[LandmarkNoseTip], 200, 200, "nose tip")
	approxPoint(t, lm.Points[LandmarkMouthLeft], 160, 250, "mouth left")
	approxPoint(t, lm.Points[LandmarkMouthRight], 240, 250, "mouth right")
}

// TestSynthesizeLandmarksDetectedEyes tests that cascade eye boxes are
// sorted by x and drive the eye landmarks
func TestSynthesizeLandmarksDetectedEyes(t *testing.T) {
	face := geometry.Rect{X: 100, Y: 100, W: 200, H: 200}
	eyes := []geometry.Rect{
		{X: 230, Y: 150, W: 40, H: 30}, // right eye listed first
		{X: 130, Y: 150, W: 40, H: 20},
	}
	lm := SynthesizeLandmarks(face, eyes)

	if !lm.EyesDetected {
		t.Fatal("EyesDetected = false with two eye rects")
	}
	if lm.LeftEyeBox != eyes[1] || lm.RightEyeBox != eyes[0] {
		t.Errorf("eye boxes not sorted by x: left=%+v right=%+v", lm.LeftEyeBox, lm.RightEyeBox)
	}

	approxPoint(t, lm.Points[LandmarkLeftEye], 150, 160, "left eye")
	approxPoint(t, lm.Points[LandmarkRightEye], 250, 165, "right eye")

	approxPoint(t, lm.Points[LandmarkLeftEyeOuter], 150-40.0/3, 160, "left eye outer")
	approxPoint(t, lm.Points[LandmarkRightEyeOuter], 250+40.0/3, 165, "right eye outer")

	// Face-proportion landmarks are unaffected by eye detections.
	approxPoint(t, lm.Points[LandmarkNoseTip], 200, 200, "nose tip")
}

// TestSynthesizeLandmarksSingleEye tests that one eye rect is not
// enough to leave fallback mode
func TestSynthesizeLandmarksSingleEye(t *testing.T) {
	face := geometry.Rect{X: 0, Y: 0, W: 100, H: 100}
	lm := SynthesizeLandmarks(face, []geometry.Rect{{X: 20, Y: 30, W: 20, H: 10}})

	if lm.EyesDetected {
		t.Error("EyesDetected = true with a single eye rect")
	}
	if len(lm.Points) != LandmarkCount {
		t.Errorf("len(Points) = %d, want %d", len(lm.Points), LandmarkCount)
	}
	approxPoint(t, lm.Points[LandmarkLeftEye], 25, 30, "left eye")
	approxPoint(t, lm.Points[LandmarkRightEye], 75, 30, "right eye")
}
