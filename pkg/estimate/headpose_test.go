package estimate

import (
	"math"
	"testing"

	"github.com/zhuhuilin/go-eyetrack/pkg/geometry"
)

func frontalLandmarks() Landmarks {
	return SynthesizeLandmarks(geometry.Rect{X: 100, Y: 100, W: 200, H: 200}, nil)
}

// TestEstimatePoseFrontal tests pose on perfectly symmetric landmarks
func TestEstimatePoseFrontal(t *testing.T) {
	p := EstimatePose(frontalLandmarks())

	if math.Abs(p.Yaw) > 1e-9 {
		t.Errorf("yaw = %v for level eyes, want 0", p.Yaw)
	}
	if math.Abs(p.Roll) > 1e-9 {
		t.Errorf("roll = %v for centered mouth, want 0", p.Roll)
	}

	// Eye distance 100, nose 40 below the eye line, expected 0.8*100=80:
	// (40-80)/80 = -0.5.
	if math.Abs(p.Pitch-(-0.5)) > 1e-9 {
		t.Errorf("pitch = %v, want -0.5", p.Pitch)
	}
}

// TestEstimatePoseYaw tests that eye line tilt drives yaw
func TestEstimatePoseYaw(t *testing.T) {
	lm := frontalLandmarks()
	lm.Points[LandmarkRightEye].Y += 100 // right eye 100px lower

	p := EstimatePose(lm)
	// Eye vector (100, 100), normalized dy = 1/sqrt(2), negated.
	if math.Abs(p.Yaw-(-1/math.Sqrt2)) > 1e-9 {
		t.Errorf("yaw = %v, want %v", p.Yaw, -1/math.Sqrt2)
	}

	lm = frontalLandmarks()
	lm.Points[LandmarkRightEye].Y -= 100
	p = EstimatePose(lm)
	if math.Abs(p.Yaw-1/math.Sqrt2) > 1e-9 {
		t.Errorf("yaw = %v for opposite tilt, want %v", p.Yaw, 1/math.Sqrt2)
	}
}

// TestEstimatePoseRoll tests the mouth offset to roll mapping and its
// tighter clamp
func TestEstimatePoseRoll(t *testing.T) {
	lm := frontalLandmarks()
	lm.Points[LandmarkMouthLeft].X += 20
	lm.Points[LandmarkMouthRight].X += 20

	p := EstimatePose(lm)
	// Mouth midpoint 20px off a face midline, eye distance 100.
	if math.Abs(p.Roll-0.2) > 1e-9 {
		t.Errorf("roll = %v, want 0.2", p.Roll)
	}

	lm.Points[LandmarkMouthLeft].X += 100
	lm.Points[LandmarkMouthRight].X += 100
	p = EstimatePose(lm)
	if p.Roll != 0.5 {
		t.Errorf("roll = %v, want clamp at 0.5", p.Roll)
	}
}

// TestEstimatePoseClamps tests the pitch and yaw clamp range
func TestEstimatePoseClamps(t *testing.T) {
	lm := frontalLandmarks()
	lm.Points[LandmarkNoseTip].Y += 400

	p := EstimatePose(lm)
	if p.Pitch != 1 {
		t.Errorf("pitch = %v for extreme nose drop, want clamp at 1", p.Pitch)
	}

	lm = frontalLandmarks()
	lm.Points[LandmarkNoseTip].Y -= 400
	p = EstimatePose(lm)
	if p.Pitch != -1 {
		t.Errorf("pitch = %v for extreme nose rise, want clamp at -1", p.Pitch)
	}
}

// TestEstimatePoseDegenerate tests the guards for unusable landmarks
func TestEstimatePoseDegenerate(t *testing.T) {
	if p := EstimatePose(Landmarks{}); p != (Pose{}) {
		t.Errorf("EstimatePose(empty) = %+v, want zero", p)
	}

	lm := frontalLandmarks()
	lm.Points[LandmarkRightEye] = lm.Points[LandmarkLeftEye] // coincident eyes
	if p := EstimatePose(lm); p != (Pose{}) {
		t.Errorf("EstimatePose(coincident eyes) = %+v, want zero", p)
	}
}

// TestPoseDegrees tests the degree scaling
func TestPoseDegrees(t *testing.T) {
	p := Pose{Pitch: 0.5, Yaw: -1, Roll: 0.25}
	pitch, yaw, roll := p.Degrees(DefaultPoseDegreesPerUnit)
	if pitch != 22.5 || yaw != -45 || roll != 11.25 {
		t.Errorf("Degrees() = (%v, %v, %v), want (22.5, -45, 11.25)", pitch, yaw, roll)
	}
}

// TestPoseDelta tests the per-axis maximum difference
func TestPoseDelta(t *testing.T) {
	tests := []struct {
		a, b Pose
		want float64
	}{
		{Pose{}, Pose{}, 0},
		{Pose{Pitch: 0.3}, Pose{Pitch: 0.1}, 0.2},
		{Pose{Yaw: -0.5}, Pose{Yaw: 0.5}, 1},
		{Pose{Pitch: 0.1, Yaw: 0.2, Roll: 0.4}, Pose{Roll: 0.1}, 0.3},
	}

	for _, tt := range tests {
		if got := tt.a.Delta(tt.b); math.Abs(got-tt.want) > 1e-9 {
			t.Errorf("Delta(%+v, %+v) = %v, want %v", tt.a, tt.b, got, tt.want)
		}
	}
}
