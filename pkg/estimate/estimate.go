// Package estimate derives distance, gaze, head pose and upper-body
// geometry from a detected face rectangle. Everything except shoulder
// detection is pure math over geometry types; shoulder detection is
// the one estimator that reads pixels.
//
// The estimators are heuristic by design. They trade anatomical
// accuracy for speed and stability at frame rate, and their ratios
// and thresholds are tunable through the engine config.
package estimate

func clamp(v, lo, hi float64) float64 {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}
