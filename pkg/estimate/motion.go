package estimate

import "github.com/zhuhuilin/go-eyetrack/pkg/geometry"

// Default motion thresholds.
const (
	DefaultHeadMoveThreshold     = 0.1  // normalized pose units per axis
	DefaultShoulderMoveThreshold = 10.0 // pixels per shoulder point
)

// HeadMoved reports whether any pose axis changed by more than the
// threshold since the previous frame.
func HeadMoved(current, previous Pose, threshold float64) bool {
	return current.Delta(previous) > threshold
}

// ShouldersMoved reports whether either shoulder point traveled more
// than thresholdPx since the previous frame. Both frames must have
// produced the full left/right pair, otherwise nothing is reported.
func ShouldersMoved(current, previous []geometry.Point, thresholdPx float64) bool {
	if len(current) != 2 || len(previous) != 2 {
		return false
	}
	return current[0].DistanceTo(previous[0]) > thresholdPx ||
		current[1].DistanceTo(previous[1]) > thresholdPx
}
