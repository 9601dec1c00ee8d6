package protocol

import (
	"github.com/zhuhuilin/go-eyetrack/pkg/detection"
	"github.com/zhuhuilin/go-eyetrack/pkg/engine"
	"github.com/zhuhuilin/go-eyetrack/pkg/estimate"
	"github.com/zhuhuilin/go-eyetrack/pkg/geometry"
)

// ResultData flattens an engine result into the transport struct.
func ResultData(res engine.Result, frameID uint64, processingMs float64) TrackingResultData {
	d := TrackingResultData{
		FaceDetected: res.FaceDetected,
		FaceX:        res.FaceRect.X,
		FaceY:        res.FaceRect.Y,
		FaceW:        res.FaceRect.W,
		FaceH:        res.FaceRect.H,
		Confidence:   res.Confidence,

		FaceDistanceCm: res.FaceDistanceCm,

		GazeAngleX:  res.GazeAngle.X,
		GazeAngleY:  res.GazeAngle.Y,
		GazeVecX:    res.GazeVector[0],
		GazeVecY:    res.GazeVector[1],
		GazeVecZ:    res.GazeVector[2],
		EyesFocused: res.EyesFocused,

		HeadPitchDeg: res.HeadPitchDeg,
		HeadYawDeg:   res.HeadYawDeg,
		HeadRollDeg:  res.HeadRollDeg,

		HeadMoving:      res.HeadMoving,
		ShouldersMoving: res.ShouldersMoving,

		FrameID:      frameID,
		ProcessingMs: processingMs,
	}
	if res.FaceDetected {
		d.Backend = res.Backend.String()
	}
	if len(res.Landmarks) > 0 {
		d.Landmarks = make([]float64, 0, len(res.Landmarks)*2)
		for _, p := range res.Landmarks {
			d.Landmarks = append(d.Landmarks, p.X, p.Y)
		}
	}
	return d
}

// Result reconstructs the engine result from the transport struct.
func (d *TrackingResultData) Result() engine.Result {
	res := engine.Result{
		FaceDetected: d.FaceDetected,
		FaceRect:     geometry.NormRect{X: d.FaceX, Y: d.FaceY, W: d.FaceW, H: d.FaceH},
		Confidence:   d.Confidence,

		FaceDistanceCm: d.FaceDistanceCm,

		GazeAngle:   estimate.Gaze{X: d.GazeAngleX, Y: d.GazeAngleY},
		GazeVector:  [3]float64{d.GazeVecX, d.GazeVecY, d.GazeVecZ},
		EyesFocused: d.EyesFocused,

		HeadPitchDeg: d.HeadPitchDeg,
		HeadYawDeg:   d.HeadYawDeg,
		HeadRollDeg:  d.HeadRollDeg,

		HeadMoving:      d.HeadMoving,
		ShouldersMoving: d.ShouldersMoving,
	}
	if kind, err := detection.ParseKind(d.Backend); err == nil {
		res.Backend = kind
	}
	for i := 0; i+1 < len(d.Landmarks); i += 2 {
		res.Landmarks = append(res.Landmarks, geometry.Point{X: d.Landmarks[i], Y: d.Landmarks[i+1]})
	}
	return res
}
