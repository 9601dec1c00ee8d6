package server

import (
	"log/slog"
	"time"

	"github.com/gofiber/contrib/websocket"
	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
	"gocv.io/x/gocv"

	"github.com/zhuhuilin/go-eyetrack/pkg/geometry"
	"github.com/zhuhuilin/go-eyetrack/pkg/hub"
	"github.com/zhuhuilin/go-eyetrack/pkg/protocol"
)

// frameReadLimit bounds incoming frame messages. Base64 1080p JPEG
// frames stay well under this.
const frameReadLimit = 8 << 20

func (s *Server) framesHandler() fiber.Handler {
	return websocket.New(s.handleFrames)
}

// handleFrames runs the read loop for one frame-pushing client.
// All writes to the connection happen from this goroutine.
func (s *Server) handleFrames(c *websocket.Conn) {
	clientID := uuid.New().String()[:8]
	logger := s.logger.With("client", clientID)
	logger.Info("frame client connected")
	defer logger.Info("frame client disconnected")

	c.SetReadLimit(frameReadLimit)

	for {
		_, data, err := c.ReadMessage()
		if err != nil {
			return
		}

		msg, err := protocol.ParseMessage(data)
		if err != nil {
			s.writeError(c, "bad_message", "message is not valid JSON")
			continue
		}

		switch msg.Type {
		case protocol.TypeFrame:
			s.processFrameMessage(c, msg)

		case protocol.TypeConfig:
			s.processConfigMessage(c, msg)

		case protocol.TypeCalibration:
			s.processCalibrationMessage(c, msg)

		case protocol.TypePing:
			id := ""
			if pd, err := msg.GetPingData(); err == nil {
				id = pd.ID
			}
			if pong, err := protocol.NewPongMessage(id, msg.Timestamp, time.Now().UnixMilli()); err == nil {
				s.writeMsg(c, logger, pong)
			}

		default:
			logger.Debug("ignoring message", "type", msg.Type)
		}
	}
}

// processFrameMessage decodes one frame, runs the engine on it, replies
// with the result and fans it out to subscribers.
func (s *Server) processFrameMessage(c *websocket.Conn, msg *protocol.Message) {
	fd, err := msg.GetFrameData()
	if err != nil {
		s.writeError(c, "bad_frame", "frame payload is malformed")
		return
	}

	jpeg, err := fd.DecodeFrameData()
	if err != nil {
		s.framesFailed.Add(1)
		s.writeError(c, "bad_frame", "frame data is not valid base64")
		return
	}

	img, err := gocv.IMDecode(jpeg, gocv.IMReadColor)
	if err != nil {
		s.framesFailed.Add(1)
		s.writeError(c, "bad_frame", "frame data did not decode to an image")
		return
	}
	defer img.Close()
	if img.Empty() {
		s.framesFailed.Add(1)
		s.writeError(c, "bad_frame", "frame data did not decode to an image")
		return
	}

	var override *geometry.NormRect
	if fd.Override != nil {
		override = &geometry.NormRect{
			X: fd.Override.X,
			Y: fd.Override.Y,
			W: fd.Override.W,
			H: fd.Override.H,
		}
	}

	start := time.Now()
	s.mu.Lock()
	res, err := s.engine.ProcessFrameWithOverride(img, override)
	s.mu.Unlock()
	if err != nil {
		s.framesFailed.Add(1)
		s.writeError(c, "engine_error", err.Error())
		return
	}
	s.framesProcessed.Add(1)

	elapsed := float64(time.Since(start).Microseconds()) / 1000.0
	reply, err := protocol.NewResultMessage(protocol.ResultData(res, fd.FrameID, elapsed))
	if err != nil {
		return
	}
	bytes, err := reply.Bytes()
	if err != nil {
		return
	}

	if err := c.WriteMessage(websocket.TextMessage, bytes); err != nil {
		s.logger.Debug("result reply failed", "error", err)
	}
	s.results.Broadcast(hub.NewJSONMessage(bytes))
}

// processConfigMessage overlays the payload onto the current config, so
// clients may send partial updates.
func (s *Server) processConfigMessage(c *websocket.Conn, msg *protocol.Message) {
	s.mu.Lock()
	cfg := s.engine.Config()
	s.mu.Unlock()

	if err := msg.ParseData(&cfg); err != nil {
		s.writeError(c, "bad_config", "config payload is malformed")
		return
	}

	s.mu.Lock()
	err := s.engine.ApplyConfig(cfg)
	cfg = s.engine.Config()
	s.mu.Unlock()
	if err != nil {
		s.writeError(c, "bad_config", err.Error())
		return
	}

	if reply, err := protocol.NewConfigMessage(cfg); err == nil {
		s.writeMsg(c, s.logger, reply)
	}
}

// processCalibrationMessage executes a calibration action and echoes the
// session state. Messages without a known action are status queries.
func (s *Server) processCalibrationMessage(c *websocket.Conn, msg *protocol.Message) {
	cd, err := msg.GetCalibrationData()
	if err != nil {
		s.writeError(c, "bad_calibration", "calibration payload is malformed")
		return
	}

	s.mu.Lock()
	switch cd.Action {
	case "start":
		s.engine.StartCalibration()
	case "point":
		s.engine.AddCalibrationPoint(cd.X, cd.Y)
	case "finish":
		s.engine.FinishCalibration()
	}
	s.mu.Unlock()

	st := s.calibrationStatus()
	if reply, err := protocol.NewCalibrationMessage(st.State, st.Points, st.Calibrated); err == nil {
		s.writeMsg(c, s.logger, reply)
	}
}

func (s *Server) writeMsg(c *websocket.Conn, logger *slog.Logger, msg *protocol.Message) {
	data, err := msg.Bytes()
	if err != nil {
		return
	}
	if err := c.WriteMessage(websocket.TextMessage, data); err != nil {
		logger.Debug("write failed", "error", err)
	}
}

func (s *Server) writeError(c *websocket.Conn, code, message string) {
	msg, err := protocol.NewErrorMessage(code, message)
	if err != nil {
		return
	}
	s.writeMsg(c, s.logger, msg)
}
