// Package client provides a Go client for the go-eyetrack daemon.
// Frames go out over the websocket, results come back on a channel, and
// configuration/calibration use the daemon's REST API.
package client

import (
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/gorilla/websocket"

	"github.com/zhuhuilin/go-eyetrack/pkg/protocol"
)

const (
	dialTimeout  = 10 * time.Second
	writeTimeout = 10 * time.Second
)

// Client talks to a running tracking daemon.
type Client struct {
	baseURL string // http://host:port
	wsURL   string // ws://host:port

	ws   *websocket.Conn
	wsMu sync.Mutex

	results chan protocol.TrackingResultData
	errs    chan protocol.ErrorData

	// In-flight pings by ID
	pending map[string]chan *protocol.PongData
	pongMu  sync.Mutex

	closeOnce sync.Once
	done      chan struct{}
}

// New creates a client for the daemon at addr ("host:port").
func New(addr string) *Client {
	addr = strings.TrimPrefix(strings.TrimPrefix(addr, "http://"), "ws://")
	return &Client{
		baseURL: "http://" + addr,
		wsURL:   "ws://" + addr,
		results: make(chan protocol.TrackingResultData, 16),
		errs:    make(chan protocol.ErrorData, 16),
		pending: make(map[string]chan *protocol.PongData),
		done:    make(chan struct{}),
	}
}

// Connect dials the daemon's frame endpoint and starts the read loop.
// A client connects once; callers wanting to reconnect dial a fresh one.
func (c *Client) Connect() error {
	c.wsMu.Lock()
	defer c.wsMu.Unlock()

	if c.ws != nil {
		return ErrAlreadyConnected
	}

	dialer := websocket.Dialer{
		HandshakeTimeout: dialTimeout,
	}

	ws, _, err := dialer.Dial(c.wsURL+"/ws/frames", nil)
	if err != nil {
		return fmt.Errorf("daemon connect failed: %w", err)
	}

	c.ws = ws
	go c.readLoop()
	return nil
}

// readLoop delivers incoming messages to the result and error channels.
// Both channels are closed when the connection dies.
func (c *Client) readLoop() {
	defer func() {
		close(c.done)
		close(c.results)
		close(c.errs)
	}()

	for {
		_, data, err := c.ws.ReadMessage()
		if err != nil {
			return
		}

		msg, err := protocol.ParseMessage(data)
		if err != nil {
			continue
		}

		switch msg.Type {
		case protocol.TypeResult:
			if rd, err := msg.GetResultData(); err == nil {
				select {
				case c.results <- *rd:
				default:
					// Consumer is behind - drop rather than stall the reads
				}
			}

		case protocol.TypePong:
			if pd, err := msg.GetPongData(); err == nil {
				c.deliverPong(pd)
			}

		case protocol.TypeError:
			if ed, err := msg.GetErrorData(); err == nil {
				select {
				case c.errs <- *ed:
				default:
				}
			}
		}
	}
}

// Results streams tracking results from the daemon. The channel is
// closed when the connection drops.
func (c *Client) Results() <-chan protocol.TrackingResultData {
	return c.results
}

// Errors streams request-level errors reported by the daemon.
func (c *Client) Errors() <-chan protocol.ErrorData {
	return c.errs
}

// SendFrame pushes one JPEG frame. The result arrives on Results.
// Pass a non-nil override to skip detection and force a face region.
func (c *Client) SendFrame(jpeg []byte, width, height int, frameID uint64, override *protocol.OverrideRect) error {
	msg, err := protocol.NewFrameMessage(width, height, jpeg, frameID, override)
	if err != nil {
		return err
	}
	return c.write(msg)
}

// Ping measures the round trip to the daemon.
func (c *Client) Ping(timeout time.Duration) (time.Duration, error) {
	id := uuid.New().String()
	ch := make(chan *protocol.PongData, 1)

	c.pongMu.Lock()
	c.pending[id] = ch
	c.pongMu.Unlock()
	defer func() {
		c.pongMu.Lock()
		delete(c.pending, id)
		c.pongMu.Unlock()
	}()

	msg, err := protocol.NewPingMessage(id)
	if err != nil {
		return 0, err
	}

	start := time.Now()
	if err := c.write(msg); err != nil {
		return 0, err
	}

	select {
	case <-ch:
		return time.Since(start), nil
	case <-time.After(timeout):
		return 0, ErrPingTimeout
	case <-c.done:
		return 0, ErrNotConnected
	}
}

func (c *Client) deliverPong(pd *protocol.PongData) {
	c.pongMu.Lock()
	ch, ok := c.pending[pd.ID]
	c.pongMu.Unlock()
	if ok {
		select {
		case ch <- pd:
		default:
		}
	}
}

func (c *Client) write(msg *protocol.Message) error {
	data, err := msg.Bytes()
	if err != nil {
		return err
	}

	c.wsMu.Lock()
	defer c.wsMu.Unlock()

	if c.ws == nil {
		return ErrNotConnected
	}
	c.ws.SetWriteDeadline(time.Now().Add(writeTimeout))
	return c.ws.WriteMessage(websocket.TextMessage, data)
}

// Close tears down the websocket. REST helpers keep working.
func (c *Client) Close() {
	c.closeOnce.Do(func() {
		c.wsMu.Lock()
		if c.ws != nil {
			c.ws.Close()
		}
		c.wsMu.Unlock()
	})
}
