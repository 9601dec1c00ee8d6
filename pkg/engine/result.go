package engine

import (
	"github.com/zhuhuilin/go-eyetrack/pkg/detection"
	"github.com/zhuhuilin/go-eyetrack/pkg/estimate"
	"github.com/zhuhuilin/go-eyetrack/pkg/geometry"
)

// Result is the per-frame tracking output. It is produced fresh on
// every ProcessFrame call and never mutated afterwards.
type Result struct {
	// FaceDetected reports whether any backend (or an override rect)
	// produced a usable face this frame. When false every other field
	// holds its safe default.
	FaceDetected bool

	// FaceRect is the expanded face rectangle normalized to [0,1]
	// relative to the frame, for cross-process transport.
	FaceRect geometry.NormRect

	// Backend is the detector that produced the rectangle.
	Backend detection.Kind

	// Confidence is the detector score in [0,1]; 1.0 for override
	// rectangles, 0 when no face was found.
	Confidence float64

	// FaceDistanceCm is the pinhole distance estimate, 0 when unknown.
	FaceDistanceCm float64

	// GazeAngle is the normalized gaze offset per axis.
	GazeAngle estimate.Gaze

	// GazeVector is the approximately unit-length forward gaze vector;
	// (0, 0, 1) when no face or no gaze signal.
	GazeVector [3]float64

	// EyesFocused reports gaze within the focus threshold on both
	// axes, only ever true when eyes were actually detected.
	EyesFocused bool

	// Landmarks is the fixed 13-point facial landmark set in frame
	// pixels, nil when no face.
	Landmarks []geometry.Point

	// Head pose angles in degrees.
	HeadPitchDeg float64
	HeadYawDeg   float64
	HeadRollDeg  float64

	// Motion flags against the previous face frame.
	HeadMoving      bool
	ShouldersMoving bool
}

// noFaceResult is the safe default returned whenever no face is found:
// everything zero except the unit-forward gaze vector.
func noFaceResult() Result {
	return Result{GazeVector: [3]float64{0, 0, 1}}
}
