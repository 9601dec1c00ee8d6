package client

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"net/http"

	"github.com/zhuhuilin/go-eyetrack/internal/httpc"
	"github.com/zhuhuilin/go-eyetrack/pkg/engine"
	"github.com/zhuhuilin/go-eyetrack/pkg/protocol"
)

// Health checks daemon liveness.
func (c *Client) Health() error {
	return c.getJSON("/healthz", nil)
}

// Config fetches the engine configuration.
func (c *Client) Config() (engine.Config, error) {
	var cfg engine.Config
	err := c.getJSON("/api/config", &cfg)
	return cfg, err
}

// SetConfig replaces the engine configuration and returns the applied
// one. Fetch with Config, tweak, send back.
func (c *Client) SetConfig(cfg engine.Config) (engine.Config, error) {
	var out engine.Config
	err := c.sendJSON("PUT", "/api/config", cfg, &out)
	return out, err
}

// StartCalibration begins a calibration session on the daemon.
func (c *Client) StartCalibration() (protocol.CalibrationData, error) {
	var st protocol.CalibrationData
	err := c.postJSON("/api/calibration/start", nil, &st)
	return st, err
}

// AddCalibrationPoint records one screen point. Returns whether the
// daemon accepted it (false outside an active session).
func (c *Client) AddCalibrationPoint(x, y float64) (bool, error) {
	body := map[string]float64{"x": x, "y": y}
	var resp struct {
		Accepted bool `json:"accepted"`
	}
	err := c.postJSON("/api/calibration/points", body, &resp)
	return resp.Accepted, err
}

// FinishCalibration ends the session. Calibrated in the returned state
// reports whether enough points were collected.
func (c *Client) FinishCalibration() (protocol.CalibrationData, error) {
	var st protocol.CalibrationData
	err := c.postJSON("/api/calibration/finish", nil, &st)
	return st, err
}

// CalibrationStatus fetches the calibration session state.
func (c *Client) CalibrationStatus() (protocol.CalibrationData, error) {
	var st protocol.CalibrationData
	err := c.getJSON("/api/calibration/", &st)
	return st, err
}

func (c *Client) getJSON(path string, out interface{}) error {
	resp, err := httpc.Get(c.baseURL + path)
	if err != nil {
		return err
	}
	return decodeResponse(resp, out)
}

func (c *Client) postJSON(path string, in, out interface{}) error {
	var data []byte
	if in != nil {
		var err error
		data, err = json.Marshal(in)
		if err != nil {
			return err
		}
	}

	resp, err := httpc.Post(c.baseURL+path, "application/json", data)
	if err != nil {
		return err
	}
	return decodeResponse(resp, out)
}

func (c *Client) sendJSON(method, path string, in, out interface{}) error {
	var body io.Reader
	if in != nil {
		data, err := json.Marshal(in)
		if err != nil {
			return err
		}
		body = bytes.NewReader(data)
	}

	req, err := http.NewRequest(method, c.baseURL+path, body)
	if err != nil {
		return err
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := httpc.Do(req)
	if err != nil {
		return err
	}
	return decodeResponse(resp, out)
}

// decodeResponse decodes a JSON body, turning non-200 responses into an
// APIError carrying the daemon's error message.
func decodeResponse(resp *http.Response, out interface{}) error {
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		apiErr := &APIError{Status: resp.StatusCode}
		var body struct {
			Error string `json:"error"`
		}
		if err := json.NewDecoder(resp.Body).Decode(&body); err == nil {
			apiErr.Message = body.Error
		}
		return apiErr
	}

	if out == nil {
		_, err := io.Copy(io.Discard, resp.Body)
		return err
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("decode response: %w", err)
	}
	return nil
}
