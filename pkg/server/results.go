package server

import (
	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/websocket/v2"

	"github.com/zhuhuilin/go-eyetrack/pkg/hub"
)

func (s *Server) resultsHandler() fiber.Handler {
	return websocket.New(s.handleResults)
}

// handleResults attaches a subscribe-only client to the results hub.
// The hub owns the connection from here on.
func (s *Server) handleResults(c *websocket.Conn) {
	client := hub.NewClient(s.results, c)
	client.Run()
}
