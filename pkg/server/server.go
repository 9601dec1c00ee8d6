// Package server exposes the tracking engine as a websocket/REST daemon.
// Clients push frames over /ws/frames and any number of subscribers
// receive results over /ws/results.
package server

import (
	"log/slog"
	"net"
	"sync"
	"sync/atomic"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/gofiber/contrib/websocket"
	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/cors"

	"github.com/zhuhuilin/go-eyetrack/internal/log"
	"github.com/zhuhuilin/go-eyetrack/pkg/engine"
	"github.com/zhuhuilin/go-eyetrack/pkg/hub"
)

// Server is the tracking daemon.
//
// The engine itself is single-threaded; every call into it goes through
// s.mu, which makes the server the serializing caller the engine requires.
type Server struct {
	app  *fiber.App
	addr string

	// Engine access is serialized by mu.
	engine *engine.Engine
	mu     sync.Mutex

	// Result fan-out to /ws/results subscribers.
	results *hub.Hub

	validate *validator.Validate
	logger   *slog.Logger

	started time.Time

	// Stats
	framesProcessed atomic.Uint64
	framesFailed    atomic.Uint64
}

// New creates a daemon around an engine. The server takes over all calls
// into the engine; the caller must not use it concurrently.
func New(eng *engine.Engine, addr string) *Server {
	s := &Server{
		addr:     addr,
		engine:   eng,
		results:  hub.New("results"),
		validate: validator.New(),
		logger:   log.Component("server"),
	}

	app := fiber.New(fiber.Config{
		AppName:               "go-eyetrack daemon",
		DisableStartupMessage: true,
	})

	// CORS for browser-based viewers
	app.Use(cors.New())

	// Request logging
	app.Use(func(c *fiber.Ctx) error {
		start := time.Now()
		err := c.Next()
		s.logger.Debug("request",
			"method", c.Method(),
			"path", c.Path(),
			"status", c.Response().StatusCode(),
			"duration_ms", float64(time.Since(start).Microseconds())/1000.0)
		return err
	})

	app.Get("/healthz", s.handleHealth)

	// API routes
	api := app.Group("/api")
	api.Get("/config", s.handleGetConfig)
	api.Put("/config", s.handlePutConfig)
	api.Get("/stats", s.handleStats)

	calib := api.Group("/calibration")
	calib.Get("/", s.handleCalibrationStatus)
	calib.Post("/start", s.handleCalibrationStart)
	calib.Post("/points", s.handleCalibrationPoint)
	calib.Post("/finish", s.handleCalibrationFinish)

	// WebSocket upgrade middleware
	app.Use("/ws", func(c *fiber.Ctx) error {
		if websocket.IsWebSocketUpgrade(c) {
			c.Locals("allowed", true)
			return c.Next()
		}
		return fiber.ErrUpgradeRequired
	})

	// WebSocket routes
	app.Get("/ws/frames", s.framesHandler())
	app.Get("/ws/results", s.resultsHandler())

	s.app = app
	return s
}

// Start runs the result hub and listens on the configured address.
// It blocks until Shutdown is called or the listener fails.
func (s *Server) Start() error {
	s.started = time.Now()
	go s.results.Run()

	s.logger.Info("daemon listening", "addr", s.addr)
	return s.app.Listen(s.addr)
}

// Serve is like Start but uses a caller-provided listener.
func (s *Server) Serve(ln net.Listener) error {
	s.started = time.Now()
	go s.results.Run()

	s.logger.Info("daemon listening", "addr", ln.Addr().String())
	return s.app.Listener(ln)
}

// Shutdown gracefully stops the server and disconnects all clients.
// The engine is left open; closing it is the caller's job.
func (s *Server) Shutdown() error {
	err := s.app.Shutdown()
	s.results.Stop()
	return err
}

// App returns the underlying fiber app, used by tests.
func (s *Server) App() *fiber.App {
	return s.app
}

// Stats contains daemon statistics
type Stats struct {
	FramesProcessed   uint64  `json:"frames_processed"`
	FramesFailed      uint64  `json:"frames_failed"`
	ResultSubscribers int     `json:"result_subscribers"`
	UptimeS           float64 `json:"uptime_s"`
	Backend           string  `json:"backend"`
}

// GetStats returns daemon statistics
func (s *Server) GetStats() Stats {
	s.mu.Lock()
	backend := s.engine.Backend().String()
	s.mu.Unlock()

	var uptime float64
	if !s.started.IsZero() {
		uptime = time.Since(s.started).Seconds()
	}

	return Stats{
		FramesProcessed:   s.framesProcessed.Load(),
		FramesFailed:      s.framesFailed.Load(),
		ResultSubscribers: s.results.ClientCount(),
		UptimeS:           uptime,
		Backend:           backend,
	}
}
