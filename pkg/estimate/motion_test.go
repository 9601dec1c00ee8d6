package estimate

import (
	"testing"

	"github.com/zhuhuilin/go-eyetrack/pkg/geometry"
)

// TestHeadMoved tests the per-axis movement threshold
func TestHeadMoved(t *testing.T) {
	tests := []struct {
		name     string
		current  Pose
		previous Pose
		want     bool
	}{
		{"no change", Pose{Pitch: 0.2}, Pose{Pitch: 0.2}, false},
		{"below threshold", Pose{Yaw: 0.05}, Pose{}, false},
		{"at threshold", Pose{Roll: 0.1}, Pose{}, false},
		{"pitch moved", Pose{Pitch: 0.15}, Pose{}, true},
		{"yaw moved", Pose{Yaw: -0.2}, Pose{Yaw: 0.2}, true},
		{"roll moved", Pose{Roll: 0.11}, Pose{}, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := HeadMoved(tt.current, tt.previous, DefaultHeadMoveThreshold); got != tt.want {
				t.Errorf("HeadMoved() = %v, want %v", got, tt.want)
			}
		})
	}
}

// TestShouldersMoved tests the pixel threshold and the pair guard
func TestShouldersMoved(t *testing.T) {
	pair := func(lx, ly, rx, ry float64) []geometry.Point {
		return []geometry.Point{{X: lx, Y: ly}, {X: rx, Y: ry}}
	}

	tests := []struct {
		name     string
		current  []geometry.Point
		previous []geometry.Point
		want     bool
	}{
		{"still", pair(100, 400, 500, 400), pair(100, 400, 500, 400), false},
		{"left drifted slightly", pair(105, 400, 500, 400), pair(100, 400, 500, 400), false},
		{"at threshold", pair(110, 400, 500, 400), pair(100, 400, 500, 400), false},
		{"left moved", pair(115, 400, 500, 400), pair(100, 400, 500, 400), true},
		{"right moved vertically", pair(100, 400, 500, 412), pair(100, 400, 500, 400), true},
		{"missing current pair", pair(100, 400, 500, 400)[:1], pair(100, 400, 500, 400), false},
		{"missing previous pair", pair(100, 400, 500, 400), nil, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := ShouldersMoved(tt.current, tt.previous, DefaultShoulderMoveThreshold); got != tt.want {
				t.Errorf("ShouldersMoved() = %v, want %v", got, tt.want)
			}
		})
	}
}
