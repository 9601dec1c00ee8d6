package estimate

import (
	"image"
	"sort"

	"gocv.io/x/gocv"

	"github.com/zhuhuilin/go-eyetrack/pkg/geometry"
)

// Shoulder detection tuning. Candidates are external edge contours in
// the lower frame band whose area and aspect ratio look shoulder-like.
const (
	shoulderRegionStart = 0.6 // ROI starts at this fraction of frame height

	shoulderMinArea   = 500.0
	shoulderMaxArea   = 10000.0
	shoulderMinAspect = 0.5
	shoulderMaxAspect = 3.0

	shoulderCannyLow  = 50
	shoulderCannyHigh = 150
)

// DetectShoulders approximates the left and right shoulder positions
// from edge contours in the lower portion of the grayscale frame.
// Always returns two points in frame coordinates, left first; when no
// plausible contour pair is found it falls back to fixed proportional
// positions.
func DetectShoulders(gray gocv.Mat) []geometry.Point {
	frameW := gray.Cols()
	frameH := gray.Rows()
	roiY := int(float64(frameH) * shoulderRegionStart)
	if gray.Empty() || frameW <= 0 || frameH-roiY <= 0 {
		return fallbackShoulders(frameW, frameH)
	}

	region := gray.Region(image.Rect(0, roiY, frameW, frameH))
	defer region.Close()

	blurred := gocv.NewMat()
	defer blurred.Close()
	gocv.GaussianBlur(region, &blurred, image.Pt(5, 5), 0, 0, gocv.BorderDefault)

	edges := gocv.NewMat()
	defer edges.Close()
	gocv.Canny(blurred, &edges, shoulderCannyLow, shoulderCannyHigh)

	contours := gocv.FindContours(edges, gocv.RetrievalExternal, gocv.ChainApproxSimple)
	defer contours.Close()

	var candidates []image.Rectangle
	for i := 0; i < contours.Size(); i++ {
		contour := contours.At(i)
		area := gocv.ContourArea(contour)
		if area <= shoulderMinArea || area >= shoulderMaxArea {
			continue
		}
		r := gocv.BoundingRect(contour)
		if r.Dy() == 0 {
			continue
		}
		aspect := float64(r.Dx()) / float64(r.Dy())
		if aspect <= shoulderMinAspect || aspect >= shoulderMaxAspect {
			continue
		}
		candidates = append(candidates, r)
	}

	if len(candidates) < 2 {
		return fallbackShoulders(frameW, frameH)
	}

	sort.Slice(candidates, func(i, j int) bool { return candidates[i].Min.X < candidates[j].Min.X })
	left := candidates[0]
	right := candidates[len(candidates)-1]

	return []geometry.Point{
		{X: float64(left.Min.X) + float64(left.Dx())/2, Y: float64(roiY) + float64(left.Min.Y) + float64(left.Dy())/2},
		{X: float64(right.Min.X) + float64(right.Dx())/2, Y: float64(roiY) + float64(right.Min.Y) + float64(right.Dy())/2},
	}
}

func fallbackShoulders(frameW, frameH int) []geometry.Point {
	return []geometry.Point{
		{X: float64(frameW) * 0.25, Y: float64(frameH) * 0.8},
		{X: float64(frameW) * 0.75, Y: float64(frameH) * 0.8},
	}
}
