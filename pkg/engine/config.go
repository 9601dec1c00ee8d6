package engine

import (
	"fmt"

	"github.com/zhuhuilin/go-eyetrack/pkg/detection"
	"github.com/zhuhuilin/go-eyetrack/pkg/estimate"
)

// Config holds all tunable parameters for the tracking engine.
// These can be modified via the config API at runtime.
type Config struct {
	// === Camera Intrinsics ===
	// FocalLengthPx is the lens focal length in pixels, tuned for a
	// typical webcam at VGA-ish resolution.
	FocalLengthPx float64 `json:"focal_length_px"`
	// Principal point in pixels; (0, 0) means unset.
	PrincipalX float64 `json:"principal_x"`
	PrincipalY float64 `json:"principal_y"`

	// ReferenceFaceWidthCm is the assumed physical face width that
	// anchors the pinhole distance estimate.
	ReferenceFaceWidthCm float64 `json:"reference_face_width_cm"`

	// === Detection ===
	// Backend pins one detector; "auto" walks the fallback chain.
	// Values: "auto", "yolo", "yunet", "haar"
	Backend string `json:"backend"`

	// YOLOVariant is the model size tag ("n", "s", "m").
	YOLOVariant string `json:"yolo_variant"`

	// ModelPaths overrides the model search directories. Empty means
	// the built-in search order (env var, install dir, ./models).
	ModelPaths []string `json:"model_paths,omitempty"`

	// === Gaze ===
	GazeNeutralAspect float64 `json:"gaze_neutral_aspect"` // Eye aspect ratio at straight-ahead
	GazeAspectScale   float64 `json:"gaze_aspect_scale"`   // Aspect units per vertical gaze unit
	FocusThreshold    float64 `json:"focus_threshold"`     // |gaze| below this counts as focused

	// === Motion ===
	HeadMoveThreshold       float64 `json:"head_move_threshold"`        // Pose units per axis
	ShoulderMoveThresholdPx float64 `json:"shoulder_move_threshold_px"` // Pixels per shoulder point

	// === Pose ===
	PoseDegreesPerUnit float64 `json:"pose_degrees_per_unit"` // Degrees per normalized pose unit

	// === Calibration ===
	MinCalibrationPoints int `json:"min_calibration_points"` // Points needed to finish a session
}

// DefaultConfig returns the recommended engine configuration.
func DefaultConfig() Config {
	return Config{
		// Typical webcam intrinsics for a 14 cm reference face
		FocalLengthPx:        2000.0,
		PrincipalX:           0,
		PrincipalY:           0,
		ReferenceFaceWidthCm: estimate.ReferenceFaceWidthCm,

		// Walk the full fallback chain with the smallest YOLO model
		Backend:     detection.KindAuto.String(),
		YOLOVariant: detection.DefaultYOLOVariant,

		GazeNeutralAspect: estimate.DefaultGazeNeutralAspect,
		GazeAspectScale:   estimate.DefaultGazeAspectScale,
		FocusThreshold:    estimate.DefaultFocusThreshold,

		HeadMoveThreshold:       estimate.DefaultHeadMoveThreshold,
		ShoulderMoveThresholdPx: estimate.DefaultShoulderMoveThreshold,

		PoseDegreesPerUnit: estimate.DefaultPoseDegreesPerUnit,

		MinCalibrationPoints: MinCalibrationPoints,
	}
}

// Validate checks if the config values are within valid ranges.
// Returns a list of validation errors, or nil if valid.
func (c *Config) Validate() []string {
	var errors []string

	if c.FocalLengthPx <= 0 {
		errors = append(errors, "focal_length_px must be positive")
	}
	if c.ReferenceFaceWidthCm <= 0 {
		errors = append(errors, "reference_face_width_cm must be positive")
	}

	if _, err := detection.ParseKind(c.Backend); err != nil {
		errors = append(errors, fmt.Sprintf("backend must be auto, yolo, yunet, or haar, got %q", c.Backend))
	}

	if c.GazeAspectScale <= 0 {
		errors = append(errors, "gaze_aspect_scale must be positive")
	}
	if c.FocusThreshold <= 0 || c.FocusThreshold > 1 {
		errors = append(errors, "focus_threshold must be in (0, 1]")
	}

	if c.HeadMoveThreshold <= 0 {
		errors = append(errors, "head_move_threshold must be positive")
	}
	if c.ShoulderMoveThresholdPx <= 0 {
		errors = append(errors, "shoulder_move_threshold_px must be positive")
	}

	if c.PoseDegreesPerUnit <= 0 {
		errors = append(errors, "pose_degrees_per_unit must be positive")
	}

	if c.MinCalibrationPoints < 1 {
		errors = append(errors, "min_calibration_points must be at least 1")
	}

	return errors
}
