package estimate

import "math"

// expectedNoseRatio is the expected nose-to-eye-line distance as a
// fraction of the eye distance on a frontal face.
const expectedNoseRatio = 0.8

// DefaultPoseDegreesPerUnit scales a normalized pose unit to degrees
// for reporting.
const DefaultPoseDegreesPerUnit = 45.0

// Pose holds normalized head rotation estimates: pitch and yaw in
// [-1, 1], roll in [-0.5, 0.5].
type Pose struct {
	Pitch float64
	Yaw   float64
	Roll  float64
}

// EstimatePose derives head rotation from landmark geometry: yaw from
// the tilt of the eye line, pitch from the nose position relative to
// the expected facial proportions, roll from the mouth offset against
// the face midline.
func EstimatePose(lm Landmarks) Pose {
	if len(lm.Points) < LandmarkCount {
		return Pose{}
	}

	leftEye := lm.Points[LandmarkLeftEye]
	rightEye := lm.Points[LandmarkRightEye]
	nose := lm.Points[LandmarkNoseTip]
	leftMouth := lm.Points[LandmarkMouthLeft]
	rightMouth := lm.Points[LandmarkMouthRight]

	eyeDist := leftEye.DistanceTo(rightEye)
	if eyeDist <= 0 {
		return Pose{}
	}

	var p Pose

	// Yaw from the eye line tilt, negated so positive yaw is clockwise.
	p.Yaw = -(rightEye.Y - leftEye.Y) / eyeDist

	// Pitch from how far the nose sits from the eye line compared to
	// frontal proportions.
	eyeCenterY := (leftEye.Y + rightEye.Y) / 2
	expected := eyeDist * expectedNoseRatio
	p.Pitch = (nose.Y - eyeCenterY - expected) / expected

	// Roll from the mouth midpoint offset against the face midline.
	mouthMidX := (leftMouth.X + rightMouth.X) / 2
	faceMidX := (lm.Points[LandmarkTopLeft].X + lm.Points[LandmarkTopRight].X) / 2
	p.Roll = (mouthMidX - faceMidX) / eyeDist

	p.Pitch = clamp(p.Pitch, -1, 1)
	p.Yaw = clamp(p.Yaw, -1, 1)
	p.Roll = clamp(p.Roll, -0.5, 0.5)
	return p
}

// Degrees scales the normalized pose to degrees.
func (p Pose) Degrees(degreesPerUnit float64) (pitch, yaw, roll float64) {
	return p.Pitch * degreesPerUnit, p.Yaw * degreesPerUnit, p.Roll * degreesPerUnit
}

// Delta returns the largest absolute per-axis difference to another
// pose.
func (p Pose) Delta(o Pose) float64 {
	d := math.Abs(p.Pitch - o.Pitch)
	if v := math.Abs(p.Yaw - o.Yaw); v > d {
		d = v
	}
	if v := math.Abs(p.Roll - o.Roll); v > d {
		d = v
	}
	return d
}
