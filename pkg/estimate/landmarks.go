package estimate

import (
	"sort"

	"github.com/zhuhuilin/go-eyetrack/pkg/geometry"
)

// Landmark indices into Landmarks.Points. The order is fixed: face
// corners, eye centers, eye corners, nose tip, mouth corners.
const (
	LandmarkTopLeft = iota
	LandmarkTopRight
	LandmarkBottomLeft
	LandmarkBottomRight
	LandmarkLeftEye
	LandmarkRightEye
	LandmarkLeftEyeOuter
	LandmarkLeftEyeInner
	LandmarkRightEyeInner
	LandmarkRightEyeOuter
	LandmarkNoseTip
	LandmarkMouthLeft
	LandmarkMouthRight

	LandmarkCount = 13
)

// Proportions for synthesizing landmarks when the eye cascade finds
// nothing. Positions are fractions of the face rectangle.
const (
	fallbackEyeHeightRatio = 0.3  // eye line below the top of the face rect
	fallbackEyeOffsetRatio = 0.25 // eye centers either side of the midline
	fallbackEyeWidthRatio  = 0.25 // nominal eye width for corner synthesis

	noseHeightRatio  = 0.5
	mouthHeightRatio = 0.75
	mouthOffsetRatio = 0.2

	eyeCornerRatio = 1.0 / 3.0 // corner offset as a fraction of eye width
)

// Landmarks is the fixed 13-point facial landmark set synthesized each
// frame from the face rectangle and any detected eye boxes.
type Landmarks struct {
	Points []geometry.Point

	// EyesDetected reports whether the eye centers came from actual
	// cascade hits rather than proportional fallback positions.
	EyesDetected bool

	// LeftEyeBox and RightEyeBox carry the raw cascade rectangles that
	// produced the eye centers, zero when EyesDetected is false.
	LeftEyeBox  geometry.Rect
	RightEyeBox geometry.Rect
}

// SynthesizeLandmarks builds the landmark set for a face rectangle.
// When two or more eye rectangles are supplied, the two leftmost (by
// x) become the left and right eyes; otherwise eye positions fall back
// to fixed facial proportions so the set always has all 13 points.
func SynthesizeLandmarks(face geometry.Rect, eyes []geometry.Rect) Landmarks {
	fx := float64(face.X)
	fy := float64(face.Y)
	fw := float64(face.W)
	fh := float64(face.H)
	cx := fx + fw/2

	lm := Landmarks{Points: make([]geometry.Point, 0, LandmarkCount)}

	// Face corners: top-left, top-right, bottom-left, bottom-right.
	lm.Points = append(lm.Points,
		geometry.Point{X: fx, Y: fy},
		geometry.Point{X: fx + fw, Y: fy},
		geometry.Point{X: fx, Y: fy + fh},
		geometry.Point{X: fx + fw, Y: fy + fh},
	)

	var left, right geometry.Point
	var leftW, rightW float64
	if len(eyes) >= 2 {
		sorted := make([]geometry.Rect, len(eyes))
		copy(sorted, eyes)
		sort.Slice(sorted, func(i, j int) bool { return sorted[i].X < sorted[j].X })

		lm.EyesDetected = true
		lm.LeftEyeBox = sorted[0]
		lm.RightEyeBox = sorted[1]
		left = sorted[0].Center()
		right = sorted[1].Center()
		leftW = float64(sorted[0].W)
		rightW = float64(sorted[1].W)
	} else {
		eyeY := fy + fh*fallbackEyeHeightRatio
		left = geometry.Point{X: cx - fw*fallbackEyeOffsetRatio, Y: eyeY}
		right = geometry.Point{X: cx + fw*fallbackEyeOffsetRatio, Y: eyeY}
		leftW = fw * fallbackEyeWidthRatio
		rightW = fw * fallbackEyeWidthRatio
	}
	lm.Points = append(lm.Points, left, right)

	// Eye corners at a fixed fraction of the eye width, on the eye line.
	lm.Points = append(lm.Points,
		geometry.Point{X: left.X - leftW*eyeCornerRatio, Y: left.Y},
		geometry.Point{X: left.X + leftW*eyeCornerRatio, Y: left.Y},
		geometry.Point{X: right.X - rightW*eyeCornerRatio, Y: right.Y},
		geometry.Point{X: right.X + rightW*eyeCornerRatio, Y: right.Y},
	)

	// Nose tip and mouth corners from facial proportions.
	lm.Points = append(lm.Points,
		geometry.Point{X: cx, Y: fy + fh*noseHeightRatio},
		geometry.Point{X: cx - fw*mouthOffsetRatio, Y: fy + fh*mouthHeightRatio},
		geometry.Point{X: cx + fw*mouthOffsetRatio, Y: fy + fh*mouthHeightRatio},
	)

	return lm
}
