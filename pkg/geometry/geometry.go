// Package geometry provides the primitive types and rectangle math shared
// by the detection and estimation pipeline.
package geometry

import "math"

// Face rect expansion factors. A raw detector box hugs the face; tracking
// wants the whole head including forehead and chin.
const (
	expandSide   = 0.10 // fraction of width added on each side
	expandTop    = 0.30 // fraction of height added above
	expandBottom = 0.20 // fraction of height added below
)

// Point is a 2D point. Coordinates are pixels or normalized [0,1]
// depending on context.
type Point struct {
	X float64 `json:"x"`
	Y float64 `json:"y"`
}

// DistanceTo returns the Euclidean distance to q.
func (p Point) DistanceTo(q Point) float64 {
	dx := p.X - q.X
	dy := p.Y - q.Y
	return math.Sqrt(dx*dx + dy*dy)
}

// Rect is a pixel-space rectangle.
type Rect struct {
	X int `json:"x"`
	Y int `json:"y"`
	W int `json:"w"`
	H int `json:"h"`
}

// Center returns the center point of the rectangle.
func (r Rect) Center() Point {
	return Point{X: float64(r.X) + float64(r.W)/2, Y: float64(r.Y) + float64(r.H)/2}
}

// Area returns the rectangle area in pixels.
func (r Rect) Area() int {
	if r.W <= 0 || r.H <= 0 {
		return 0
	}
	return r.W * r.H
}

// Empty reports whether the rectangle has no area.
func (r Rect) Empty() bool {
	return r.W <= 0 || r.H <= 0
}

// ToNorm converts to frame-normalized coordinates.
func (r Rect) ToNorm(frameW, frameH int) NormRect {
	if frameW <= 0 || frameH <= 0 {
		return NormRect{}
	}
	return NormRect{
		X: float64(r.X) / float64(frameW),
		Y: float64(r.Y) / float64(frameH),
		W: float64(r.W) / float64(frameW),
		H: float64(r.H) / float64(frameH),
	}
}

// NormRect is a rectangle normalized to [0,1] frame coordinates.
type NormRect struct {
	X float64 `json:"x"`
	Y float64 `json:"y"`
	W float64 `json:"w"`
	H float64 `json:"h"`
}

// Empty reports whether the rectangle has no area.
func (r NormRect) Empty() bool {
	return r.W <= 0 || r.H <= 0
}

// ToRect converts to pixel coordinates for the given frame size.
func (r NormRect) ToRect(frameW, frameH int) Rect {
	return Rect{
		X: int(math.Round(r.X * float64(frameW))),
		Y: int(math.Round(r.Y * float64(frameH))),
		W: int(math.Round(r.W * float64(frameW))),
		H: int(math.Round(r.H * float64(frameH))),
	}
}

// ExpandFaceRect grows a raw detector rect to cover the whole head:
// 10% of the width on each side, 30% of the height above, 20% below,
// clamped to the frame. A rect or frame with zero or negative dimensions
// yields the zero Rect.
func ExpandFaceRect(r Rect, frameW, frameH int) Rect {
	if r.Empty() || frameW <= 0 || frameH <= 0 {
		return Rect{}
	}

	dx := int(float64(r.W) * expandSide)
	up := int(float64(r.H) * expandTop)
	down := int(float64(r.H) * expandBottom)

	expanded := Rect{
		X: r.X - dx,
		Y: r.Y - up,
		W: r.W + 2*dx,
		H: r.H + up + down,
	}
	return ClampRect(expanded, frameW, frameH)
}

// ClampRect intersects r with the frame bounds. A result with no
// remaining area collapses to the zero Rect.
func ClampRect(r Rect, frameW, frameH int) Rect {
	x0 := max(r.X, 0)
	y0 := max(r.Y, 0)
	x1 := min(r.X+r.W, frameW)
	y1 := min(r.Y+r.H, frameH)
	if x1 <= x0 || y1 <= y0 {
		return Rect{}
	}
	return Rect{X: x0, Y: y0, W: x1 - x0, H: y1 - y0}
}
