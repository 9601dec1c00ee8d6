package server

import (
	"github.com/gofiber/fiber/v2"

	"github.com/zhuhuilin/go-eyetrack/pkg/engine"
	"github.com/zhuhuilin/go-eyetrack/pkg/protocol"
)

// ConfigUpdateRequest is the PUT /api/config body. Nil fields keep their
// current values, so partial updates are fine.
type ConfigUpdateRequest struct {
	FocalLengthPx           *float64 `json:"focal_length_px" validate:"omitempty,gt=0"`
	PrincipalX              *float64 `json:"principal_x" validate:"omitempty,gte=0"`
	PrincipalY              *float64 `json:"principal_y" validate:"omitempty,gte=0"`
	ReferenceFaceWidthCm    *float64 `json:"reference_face_width_cm" validate:"omitempty,gt=0"`
	Backend                 *string  `json:"backend" validate:"omitempty,oneof=auto yolo yunet haar haarcascade"`
	YOLOVariant             *string  `json:"yolo_variant" validate:"omitempty,oneof=n s m"`
	GazeNeutralAspect       *float64 `json:"gaze_neutral_aspect"`
	GazeAspectScale         *float64 `json:"gaze_aspect_scale" validate:"omitempty,gt=0"`
	FocusThreshold          *float64 `json:"focus_threshold" validate:"omitempty,gt=0,lte=1"`
	HeadMoveThreshold       *float64 `json:"head_move_threshold" validate:"omitempty,gt=0"`
	ShoulderMoveThresholdPx *float64 `json:"shoulder_move_threshold_px" validate:"omitempty,gt=0"`
	PoseDegreesPerUnit      *float64 `json:"pose_degrees_per_unit" validate:"omitempty,gt=0"`
	MinCalibrationPoints    *int     `json:"min_calibration_points" validate:"omitempty,gte=1"`
}

// apply overlays the non-nil fields onto cfg.
func (r *ConfigUpdateRequest) apply(cfg *engine.Config) {
	if r.FocalLengthPx != nil {
		cfg.FocalLengthPx = *r.FocalLengthPx
	}
	if r.PrincipalX != nil {
		cfg.PrincipalX = *r.PrincipalX
	}
	if r.PrincipalY != nil {
		cfg.PrincipalY = *r.PrincipalY
	}
	if r.ReferenceFaceWidthCm != nil {
		cfg.ReferenceFaceWidthCm = *r.ReferenceFaceWidthCm
	}
	if r.Backend != nil {
		cfg.Backend = *r.Backend
	}
	if r.YOLOVariant != nil {
		cfg.YOLOVariant = *r.YOLOVariant
	}
	if r.GazeNeutralAspect != nil {
		cfg.GazeNeutralAspect = *r.GazeNeutralAspect
	}
	if r.GazeAspectScale != nil {
		cfg.GazeAspectScale = *r.GazeAspectScale
	}
	if r.FocusThreshold != nil {
		cfg.FocusThreshold = *r.FocusThreshold
	}
	if r.HeadMoveThreshold != nil {
		cfg.HeadMoveThreshold = *r.HeadMoveThreshold
	}
	if r.ShoulderMoveThresholdPx != nil {
		cfg.ShoulderMoveThresholdPx = *r.ShoulderMoveThresholdPx
	}
	if r.PoseDegreesPerUnit != nil {
		cfg.PoseDegreesPerUnit = *r.PoseDegreesPerUnit
	}
	if r.MinCalibrationPoints != nil {
		cfg.MinCalibrationPoints = *r.MinCalibrationPoints
	}
}

// CalibrationPointRequest is the POST /api/calibration/points body.
// Pointers so that 0 is a valid coordinate.
type CalibrationPointRequest struct {
	X *float64 `json:"x" validate:"required,gte=0"`
	Y *float64 `json:"y" validate:"required,gte=0"`
}

// handleHealth reports daemon liveness
func (s *Server) handleHealth(c *fiber.Ctx) error {
	return c.JSON(fiber.Map{"status": "ok"})
}

// handleGetConfig returns the engine's current configuration
func (s *Server) handleGetConfig(c *fiber.Ctx) error {
	s.mu.Lock()
	cfg := s.engine.Config()
	s.mu.Unlock()
	return c.JSON(cfg)
}

// handlePutConfig applies a partial configuration update
func (s *Server) handlePutConfig(c *fiber.Ctx) error {
	var req ConfigUpdateRequest
	if err := c.BodyParser(&req); err != nil {
		return c.Status(400).JSON(fiber.Map{"error": "invalid request body"})
	}
	if err := s.validate.Struct(&req); err != nil {
		return c.Status(400).JSON(fiber.Map{"error": err.Error()})
	}

	s.mu.Lock()
	cfg := s.engine.Config()
	req.apply(&cfg)
	err := s.engine.ApplyConfig(cfg)
	cfg = s.engine.Config()
	s.mu.Unlock()

	if err != nil {
		return c.Status(400).JSON(fiber.Map{"error": err.Error()})
	}

	s.logger.Info("config updated", "backend", cfg.Backend, "yolo_variant", cfg.YOLOVariant)
	return c.JSON(cfg)
}

// handleStats returns daemon statistics
func (s *Server) handleStats(c *fiber.Ctx) error {
	return c.JSON(s.GetStats())
}

// calibrationStatus snapshots the calibration session under the engine lock.
func (s *Server) calibrationStatus() protocol.CalibrationData {
	s.mu.Lock()
	defer s.mu.Unlock()
	return protocol.CalibrationData{
		State:      s.engine.CalibrationState().String(),
		Points:     len(s.engine.CalibrationPoints()),
		Calibrated: s.engine.Calibrated(),
	}
}

// handleCalibrationStatus returns the current calibration session state
func (s *Server) handleCalibrationStatus(c *fiber.Ctx) error {
	return c.JSON(s.calibrationStatus())
}

// handleCalibrationStart begins a new calibration session
func (s *Server) handleCalibrationStart(c *fiber.Ctx) error {
	s.mu.Lock()
	s.engine.StartCalibration()
	s.mu.Unlock()
	return c.JSON(s.calibrationStatus())
}

// handleCalibrationPoint records one screen point in the active session
func (s *Server) handleCalibrationPoint(c *fiber.Ctx) error {
	var req CalibrationPointRequest
	if err := c.BodyParser(&req); err != nil {
		return c.Status(400).JSON(fiber.Map{"error": "invalid request body"})
	}
	if err := s.validate.Struct(&req); err != nil {
		return c.Status(400).JSON(fiber.Map{"error": err.Error()})
	}

	s.mu.Lock()
	accepted := s.engine.AddCalibrationPoint(*req.X, *req.Y)
	s.mu.Unlock()

	st := s.calibrationStatus()
	return c.JSON(fiber.Map{
		"accepted": accepted,
		"state":    st.State,
		"points":   st.Points,
	})
}

// handleCalibrationFinish ends the session and reports whether enough
// points were collected
func (s *Server) handleCalibrationFinish(c *fiber.Ctx) error {
	s.mu.Lock()
	s.engine.FinishCalibration()
	s.mu.Unlock()
	return c.JSON(s.calibrationStatus())
}
