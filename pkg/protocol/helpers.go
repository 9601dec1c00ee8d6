package protocol

import (
	"encoding/base64"
	"time"

	"github.com/zhuhuilin/go-eyetrack/pkg/engine"
)

// =============================================================================
// Helper functions for creating messages
// =============================================================================

// NewFrameMessage creates a frame message from raw JPEG data
func NewFrameMessage(width, height int, jpegData []byte, frameID uint64, override *OverrideRect) (*Message, error) {
	return NewMessage(TypeFrame, FrameData{
		Width:    width,
		Height:   height,
		Format:   "jpeg",
		Data:     base64.StdEncoding.EncodeToString(jpegData),
		FrameID:  frameID,
		Override: override,
	})
}

// NewResultMessage creates a tracking result message
func NewResultMessage(data TrackingResultData) (*Message, error) {
	return NewMessage(TypeResult, data)
}

// NewConfigMessage creates a configuration snapshot message
func NewConfigMessage(cfg engine.Config) (*Message, error) {
	return NewMessage(TypeConfig, cfg)
}

// NewCalibrationMessage creates a calibration state message
func NewCalibrationMessage(state string, points int, calibrated bool) (*Message, error) {
	return NewMessage(TypeCalibration, CalibrationData{
		State:      state,
		Points:     points,
		Calibrated: calibrated,
	})
}

// NewErrorMessage creates an error message
func NewErrorMessage(code, message string) (*Message, error) {
	return NewMessage(TypeError, ErrorData{
		Code:    code,
		Message: message,
	})
}

// NewPingMessage creates a ping message
func NewPingMessage(id string) (*Message, error) {
	return NewMessage(TypePing, PingData{
		ID:        id,
		Timestamp: time.Now().UnixMilli(),
	})
}

// NewPongMessage creates a pong response message
func NewPongMessage(id string, pingTS, pongTS int64) (*Message, error) {
	return NewMessage(TypePong, PongData{
		ID:        id,
		PingTS:    pingTS,
		PongTS:    pongTS,
		LatencyMs: pongTS - pingTS,
	})
}

// =============================================================================
// Helper functions for parsing messages
// =============================================================================

// GetFrameData extracts frame data from a message
func (m *Message) GetFrameData() (*FrameData, error) {
	var data FrameData
	if err := m.ParseData(&data); err != nil {
		return nil, err
	}
	return &data, nil
}

// DecodeFrameData decodes the base64 image data
func (f *FrameData) DecodeFrameData() ([]byte, error) {
	return base64.StdEncoding.DecodeString(f.Data)
}

// GetResultData extracts tracking result data from a message
func (m *Message) GetResultData() (*TrackingResultData, error) {
	var data TrackingResultData
	if err := m.ParseData(&data); err != nil {
		return nil, err
	}
	return &data, nil
}

// GetConfigData extracts an engine config snapshot from a message
func (m *Message) GetConfigData() (*engine.Config, error) {
	var data engine.Config
	if err := m.ParseData(&data); err != nil {
		return nil, err
	}
	return &data, nil
}

// GetCalibrationData extracts calibration state from a message
func (m *Message) GetCalibrationData() (*CalibrationData, error) {
	var data CalibrationData
	if err := m.ParseData(&data); err != nil {
		return nil, err
	}
	return &data, nil
}

// GetErrorData extracts error data from a message
func (m *Message) GetErrorData() (*ErrorData, error) {
	var data ErrorData
	if err := m.ParseData(&data); err != nil {
		return nil, err
	}
	return &data, nil
}

// GetPingData extracts ping data from a message
func (m *Message) GetPingData() (*PingData, error) {
	var data PingData
	if err := m.ParseData(&data); err != nil {
		return nil, err
	}
	return &data, nil
}

// GetPongData extracts pong data from a message
func (m *Message) GetPongData() (*PongData, error) {
	var data PongData
	if err := m.ParseData(&data); err != nil {
		return nil, err
	}
	return &data, nil
}
