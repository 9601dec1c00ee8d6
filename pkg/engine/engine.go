// Package engine orchestrates per-frame face tracking: backend
// dispatch, distance, landmarks, gaze, head pose, motion flags and the
// calibration session.
//
// An Engine is built for single-threaded, synchronous use: one
// ProcessFrame call completes fully before the next, and callers that
// share an engine across goroutines must hold their own lock. There
// are no internal goroutines and no internal synchronization.
package engine

import (
	"fmt"
	"log/slog"
	"strings"

	"gocv.io/x/gocv"

	"github.com/zhuhuilin/go-eyetrack/internal/log"
	"github.com/zhuhuilin/go-eyetrack/pkg/debug"
	"github.com/zhuhuilin/go-eyetrack/pkg/detection"
	"github.com/zhuhuilin/go-eyetrack/pkg/estimate"
	"github.com/zhuhuilin/go-eyetrack/pkg/geometry"
)

// Engine owns the detector chain, the estimators and the calibration
// session for one capture pipeline.
type Engine struct {
	cfg Config

	resolver *detection.Resolver
	selector *detection.Selector
	eyes     *detection.EyeDetector

	session *calibrationSession

	// Previous-frame state, only ever written on frames with a face.
	prevPose      estimate.Pose
	havePrevPose  bool
	prevShoulders []geometry.Point

	logger *slog.Logger
	closed bool
}

// New builds an engine from the config. The detector models are not
// loaded here; each backend loads lazily on its first frame.
func New(cfg Config) (*Engine, error) {
	if problems := cfg.Validate(); len(problems) > 0 {
		return nil, fmt.Errorf("%w: %s", ErrInvalidConfig, strings.Join(problems, "; "))
	}

	kind, err := detection.ParseKind(cfg.Backend)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidConfig, err)
	}

	var resolver *detection.Resolver
	if len(cfg.ModelPaths) > 0 {
		resolver = detection.NewResolverWithPaths(cfg.ModelPaths...)
	} else {
		resolver = detection.NewResolver()
	}

	yoloCfg := detection.DefaultYOLOConfig()
	yoloCfg.Variant = cfg.YOLOVariant

	e := &Engine{
		cfg:      cfg,
		resolver: resolver,
		selector: detection.NewSelector(kind, resolver, yoloCfg, detection.DefaultYuNetConfig(), detection.DefaultHaarConfig()),
		eyes:     detection.NewEyeDetector(resolver),
		session:  newCalibrationSession(cfg.MinCalibrationPoints),
		logger:   log.Component("engine"),
	}
	e.logger.Info("tracking engine ready",
		"backend", kind.String(),
		"yolo_variant", e.selector.YOLOVariant(),
		"focal_px", cfg.FocalLengthPx)
	return e, nil
}

// ProcessFrame analyzes one BGR frame and returns the tracking result.
// A frame with no face is a normal outcome, not an error; errors are
// reserved for unusable input.
func (e *Engine) ProcessFrame(frame gocv.Mat) (Result, error) {
	return e.ProcessFrameWithOverride(frame, nil)
}

// ProcessFrameWithOverride is ProcessFrame with an optional externally
// supplied face rectangle in normalized [0,1] coordinates. A non-nil
// override skips backend dispatch entirely: the caller already knows
// where the face is. The override is clamped to the frame but not
// expanded, and carries confidence 1.
func (e *Engine) ProcessFrameWithOverride(frame gocv.Mat, override *geometry.NormRect) (Result, error) {
	if e.closed {
		return noFaceResult(), ErrClosed
	}
	if frame.Empty() || frame.Cols() <= 0 || frame.Rows() <= 0 {
		return noFaceResult(), ErrEmptyFrame
	}

	frameW := frame.Cols()
	frameH := frame.Rows()

	gray := gocv.NewMat()
	defer gray.Close()
	if frame.Channels() == 1 {
		frame.CopyTo(&gray)
	} else {
		gocv.CvtColor(frame, &gray, gocv.ColorBGRToGray)
	}

	var (
		rect    geometry.Rect
		conf    float64
		backend = e.selector.Kind()
		found   bool
	)
	if override != nil {
		rect = geometry.ClampRect(override.ToRect(frameW, frameH), frameW, frameH)
		conf = 1.0
		found = !rect.Empty()
	} else {
		det, kind, ok := e.selector.Detect(gray, frame)
		rect, conf, backend, found = det.Rect, det.Confidence, kind, ok
	}

	if !found {
		return noFaceResult(), nil
	}

	distance := estimate.DistanceCm(float64(rect.W), e.cfg.FocalLengthPx, e.cfg.ReferenceFaceWidthCm)

	eyeBoxes := e.eyes.DetectEyes(gray, rect)
	lm := estimate.SynthesizeLandmarks(rect, eyeBoxes)

	gaze := estimate.EstimateGaze(lm, e.cfg.GazeNeutralAspect, e.cfg.GazeAspectScale)
	focused := lm.EyesDetected && gaze.Focused(e.cfg.FocusThreshold)

	pose := estimate.EstimatePose(lm)
	headMoving := e.havePrevPose && estimate.HeadMoved(pose, e.prevPose, e.cfg.HeadMoveThreshold)
	e.prevPose = pose
	e.havePrevPose = true

	shoulders := estimate.DetectShoulders(gray)
	shouldersMoving := estimate.ShouldersMoved(shoulders, e.prevShoulders, e.cfg.ShoulderMoveThresholdPx)
	e.prevShoulders = shoulders

	pitchDeg, yawDeg, rollDeg := pose.Degrees(e.cfg.PoseDegreesPerUnit)
	gx, gy, gz := gaze.Vector()

	debug.TrackLog("frame %dx%d: backend=%s rect=%+v conf=%.2f dist=%.1fcm gaze=(%.2f,%.2f) pose=(%.1f,%.1f,%.1f)deg\n",
		frameW, frameH, backend, rect, conf, distance, gaze.X, gaze.Y, pitchDeg, yawDeg, rollDeg)

	return Result{
		FaceDetected:    true,
		FaceRect:        rect.ToNorm(frameW, frameH),
		Backend:         backend,
		Confidence:      conf,
		FaceDistanceCm:  distance,
		GazeAngle:       gaze,
		GazeVector:      [3]float64{gx, gy, gz},
		EyesFocused:     focused,
		Landmarks:       lm.Points,
		HeadPitchDeg:    pitchDeg,
		HeadYawDeg:      yawDeg,
		HeadRollDeg:     rollDeg,
		HeadMoving:      headMoving,
		ShouldersMoving: shouldersMoving,
	}, nil
}

// SetCameraParameters updates the camera intrinsics used by the
// distance estimator.
func (e *Engine) SetCameraParameters(focalLengthPx, principalX, principalY float64) {
	e.cfg.FocalLengthPx = focalLengthPx
	e.cfg.PrincipalX = principalX
	e.cfg.PrincipalY = principalY
}

// SetBackend pins the preferred detection backend. Load state of the
// backends is untouched.
func (e *Engine) SetBackend(kind detection.Kind) {
	e.selector.SetKind(kind)
	e.cfg.Backend = kind.String()
}

// Backend returns the pinned backend kind.
func (e *Engine) Backend() detection.Kind { return e.selector.Kind() }

// SetModelVariant switches the YOLO model size tag. An actual change
// tears down the cached network and re-arms its one-shot load.
func (e *Engine) SetModelVariant(tag string) {
	e.selector.SetYOLOVariant(tag)
	e.cfg.YOLOVariant = e.selector.YOLOVariant()
}

// ModelVariant returns the active YOLO variant tag.
func (e *Engine) ModelVariant() string { return e.selector.YOLOVariant() }

// Config returns a copy of the current engine configuration.
func (e *Engine) Config() Config { return e.cfg }

// ApplyConfig replaces the runtime tunables. Model search paths are
// fixed at construction; a changed ModelPaths value is ignored.
func (e *Engine) ApplyConfig(next Config) error {
	if problems := next.Validate(); len(problems) > 0 {
		return fmt.Errorf("%w: %s", ErrInvalidConfig, strings.Join(problems, "; "))
	}
	kind, err := detection.ParseKind(next.Backend)
	if err != nil {
		return fmt.Errorf("%w: %v", ErrInvalidConfig, err)
	}

	next.ModelPaths = e.cfg.ModelPaths
	e.cfg = next
	e.selector.SetKind(kind)
	e.selector.SetYOLOVariant(next.YOLOVariant)
	e.session.minPoints = next.MinCalibrationPoints
	return nil
}

// StartCalibration begins a fresh calibration pass, discarding any
// prior session.
func (e *Engine) StartCalibration() {
	e.session.Start()
	e.logger.Info("calibration started")
}

// AddCalibrationPoint records a screen point the user was looking at.
// Ignored unless a calibration pass is collecting.
func (e *Engine) AddCalibrationPoint(x, y float64) bool {
	return e.session.Add(geometry.Point{X: x, Y: y})
}

// FinishCalibration ends the pass and reports whether enough points
// were collected.
func (e *Engine) FinishCalibration() bool {
	ok := e.session.Finish()
	e.logger.Info("calibration finished", "calibrated", ok, "points", len(e.session.points))
	return ok
}

// Calibrated reports whether the last finished session collected
// enough points.
func (e *Engine) Calibrated() bool { return e.session.calibrated }

// CalibrationState returns the current session phase.
func (e *Engine) CalibrationState() CalibrationState { return e.session.state }

// CalibrationPoints returns a copy of the accumulated points.
func (e *Engine) CalibrationPoints() []geometry.Point { return e.session.Points() }

// LoadError aggregates backend load failures recorded so far, nil when
// nothing failed yet.
func (e *Engine) LoadError() error { return e.selector.LoadError() }

// Close releases the detector resources. Safe to call more than once.
func (e *Engine) Close() error {
	if e.closed {
		return nil
	}
	e.closed = true
	err := e.selector.Close()
	if cerr := e.eyes.Close(); cerr != nil && err == nil {
		err = cerr
	}
	return err
}
