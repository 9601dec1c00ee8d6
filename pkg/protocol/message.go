// Package protocol defines the WebSocket message types for
// tracker-client communication. This package is shared between the
// tracking daemon and anything that feeds it frames or consumes its
// results.
package protocol

import (
	"encoding/json"
	"fmt"
	"time"
)

// MessageType identifies the type of WebSocket message
type MessageType string

const (
	// Client → Server messages
	TypeFrame MessageType = "frame" // Video frame to analyze

	// Server → Client messages
	TypeResult      MessageType = "result"      // Per-frame tracking result
	TypeConfig      MessageType = "config"      // Engine configuration snapshot
	TypeCalibration MessageType = "calibration" // Calibration session state
	TypeError       MessageType = "error"       // Request-level failure

	// Bidirectional
	TypePing MessageType = "ping" // Health check
	TypePong MessageType = "pong" // Health check response
)

// Message is the base wrapper for all WebSocket messages
type Message struct {
	Type      MessageType     `json:"type"`
	Timestamp int64           `json:"ts,omitempty"` // Unix milliseconds
	Data      json.RawMessage `json:"data,omitempty"`
}

// NewMessage creates a new message with the current timestamp
func NewMessage(msgType MessageType, data interface{}) (*Message, error) {
	var rawData json.RawMessage
	if data != nil {
		var err error
		rawData, err = json.Marshal(data)
		if err != nil {
			return nil, fmt.Errorf("failed to marshal message data: %w", err)
		}
	}

	return &Message{
		Type:      msgType,
		Timestamp: time.Now().UnixMilli(),
		Data:      rawData,
	}, nil
}

// ParseData unmarshals the message data into the provided struct
func (m *Message) ParseData(v interface{}) error {
	if m.Data == nil {
		return nil
	}
	return json.Unmarshal(m.Data, v)
}

// Bytes returns the JSON-encoded message
func (m *Message) Bytes() ([]byte, error) {
	return json.Marshal(m)
}

// ParseMessage parses a JSON message from bytes
func ParseMessage(data []byte) (*Message, error) {
	var msg Message
	if err := json.Unmarshal(data, &msg); err != nil {
		return nil, fmt.Errorf("failed to parse message: %w", err)
	}
	return &msg, nil
}

// =============================================================================
// Client → Server Message Types
// =============================================================================

// FrameData contains a video frame to analyze
type FrameData struct {
	Width   int    `json:"width"`
	Height  int    `json:"height"`
	Format  string `json:"format"` // "jpeg"
	Data    string `json:"data"`   // base64 encoded
	FrameID uint64 `json:"frame_id,omitempty"`

	// Override is an externally detected face rectangle in normalized
	// [0,1] coordinates; when present the engine skips its own
	// detection for this frame.
	Override *OverrideRect `json:"override,omitempty"`
}

// OverrideRect is a normalized face rectangle supplied by the client
type OverrideRect struct {
	X float64 `json:"x"`
	Y float64 `json:"y"`
	W float64 `json:"w"`
	H float64 `json:"h"`
}

// =============================================================================
// Server → Client Message Types
// =============================================================================

// TrackingResultData is the flat per-frame tracking result. Every
// field is a primitive or a flat array so the struct stays stable
// across process and language boundaries.
type TrackingResultData struct {
	FaceDetected bool `json:"face_detected"`

	// Face rectangle normalized to [0,1] relative to the frame.
	FaceX float64 `json:"face_x"`
	FaceY float64 `json:"face_y"`
	FaceW float64 `json:"face_w"`
	FaceH float64 `json:"face_h"`

	Backend    string  `json:"backend,omitempty"` // detector that produced the rect
	Confidence float64 `json:"confidence"`

	FaceDistanceCm float64 `json:"face_distance_cm"`

	GazeAngleX  float64 `json:"gaze_angle_x"`
	GazeAngleY  float64 `json:"gaze_angle_y"`
	GazeVecX    float64 `json:"gaze_vec_x"`
	GazeVecY    float64 `json:"gaze_vec_y"`
	GazeVecZ    float64 `json:"gaze_vec_z"`
	EyesFocused bool    `json:"eyes_focused"`

	HeadPitchDeg float64 `json:"head_pitch_deg"`
	HeadYawDeg   float64 `json:"head_yaw_deg"`
	HeadRollDeg  float64 `json:"head_roll_deg"`

	HeadMoving      bool `json:"head_moving"`
	ShouldersMoving bool `json:"shoulders_moving"`

	// Landmarks holds the facial landmarks as flat interleaved pairs
	// [x0, y0, x1, y1, ...] in frame pixels.
	Landmarks []float64 `json:"landmarks,omitempty"`

	FrameID      uint64  `json:"frame_id,omitempty"`
	ProcessingMs float64 `json:"processing_ms,omitempty"`
}

// CalibrationData carries calibration control and state. Clients send an
// Action ("start", "point", "finish"); the server echoes the session state.
type CalibrationData struct {
	Action string  `json:"action,omitempty"` // "start", "point", "finish"
	X      float64 `json:"x,omitempty"`      // screen point for Action "point"
	Y      float64 `json:"y,omitempty"`

	State      string `json:"state,omitempty"` // "idle", "collecting", "finished"
	Points     int    `json:"points"`
	Calibrated bool   `json:"calibrated"`
}

// ErrorData describes a request-level failure
type ErrorData struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

// =============================================================================
// Bidirectional Message Types
// =============================================================================

// PingData contains ping information
type PingData struct {
	ID        string `json:"id"`
	Timestamp int64  `json:"ts"`
}

// PongData contains pong response
type PongData struct {
	ID        string `json:"id"`
	PingTS    int64  `json:"ping_ts"`
	PongTS    int64  `json:"pong_ts"`
	LatencyMs int64  `json:"latency_ms"`
}
