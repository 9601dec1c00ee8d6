package server

import (
	"encoding/json"
	"io"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/zhuhuilin/go-eyetrack/pkg/engine"
)

func newTestServer(t *testing.T) *Server {
	t.Helper()

	cfg := engine.DefaultConfig()
	cfg.ModelPaths = []string{t.TempDir()} // no models on disk
	eng, err := engine.New(cfg)
	if err != nil {
		t.Fatalf("engine.New() error = %v", err)
	}
	t.Cleanup(func() { eng.Close() })

	return New(eng, ":0")
}

func getJSON(t *testing.T, s *Server, path string, out interface{}) int {
	t.Helper()

	req := httptest.NewRequest("GET", path, nil)
	resp, err := s.App().Test(req)
	if err != nil {
		t.Fatalf("GET %s error = %v", path, err)
	}
	defer resp.Body.Close()

	if out != nil {
		if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
			t.Fatalf("GET %s decode error = %v", path, err)
		}
	}
	return resp.StatusCode
}

func sendJSON(t *testing.T, s *Server, method, path, body string, out interface{}) int {
	t.Helper()

	req := httptest.NewRequest(method, path, strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	resp, err := s.App().Test(req)
	if err != nil {
		t.Fatalf("%s %s error = %v", method, path, err)
	}
	defer resp.Body.Close()

	if out != nil && resp.StatusCode == 200 {
		if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
			t.Fatalf("%s %s decode error = %v", method, path, err)
		}
	} else {
		io.Copy(io.Discard, resp.Body)
	}
	return resp.StatusCode
}

func TestHealthz(t *testing.T) {
	s := newTestServer(t)

	var body map[string]string
	if code := getJSON(t, s, "/healthz", &body); code != 200 {
		t.Fatalf("status = %d, want 200", code)
	}
	if body["status"] != "ok" {
		t.Errorf("status = %q, want ok", body["status"])
	}
}

func TestGetConfig(t *testing.T) {
	s := newTestServer(t)

	var cfg engine.Config
	if code := getJSON(t, s, "/api/config", &cfg); code != 200 {
		t.Fatalf("status = %d, want 200", code)
	}
	if cfg.FocalLengthPx != 2000 {
		t.Errorf("FocalLengthPx = %v, want 2000", cfg.FocalLengthPx)
	}
	if cfg.Backend != "auto" {
		t.Errorf("Backend = %q, want auto", cfg.Backend)
	}
}

func TestPutConfigPartial(t *testing.T) {
	s := newTestServer(t)

	var cfg engine.Config
	code := sendJSON(t, s, "PUT", "/api/config",
		`{"backend":"haar","focal_length_px":1500}`, &cfg)
	if code != 200 {
		t.Fatalf("status = %d, want 200", code)
	}
	if cfg.Backend != "haar" {
		t.Errorf("Backend = %q, want haar", cfg.Backend)
	}
	if cfg.FocalLengthPx != 1500 {
		t.Errorf("FocalLengthPx = %v, want 1500", cfg.FocalLengthPx)
	}
	// Untouched fields keep their values
	if cfg.ReferenceFaceWidthCm != 14 {
		t.Errorf("ReferenceFaceWidthCm = %v, want 14", cfg.ReferenceFaceWidthCm)
	}
}

func TestPutConfigRejected(t *testing.T) {
	tests := []struct {
		name string
		body string
	}{
		{"unknown backend", `{"backend":"dlib"}`},
		{"negative focal length", `{"focal_length_px":-5}`},
		{"zero min points", `{"min_calibration_points":0}`},
		{"not json", `not json`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s := newTestServer(t)
			if code := sendJSON(t, s, "PUT", "/api/config", tt.body, nil); code != 400 {
				t.Errorf("status = %d, want 400", code)
			}

			// Config must be unchanged after a rejected update
			var cfg engine.Config
			getJSON(t, s, "/api/config", &cfg)
			if cfg.FocalLengthPx != 2000 || cfg.Backend != "auto" {
				t.Errorf("config changed after rejected update: %+v", cfg)
			}
		})
	}
}

func TestCalibrationFlow(t *testing.T) {
	s := newTestServer(t)

	var st struct {
		State      string `json:"state"`
		Points     int    `json:"points"`
		Calibrated bool   `json:"calibrated"`
	}

	if code := getJSON(t, s, "/api/calibration/", &st); code != 200 {
		t.Fatalf("status = %d, want 200", code)
	}
	if st.State != "idle" {
		t.Errorf("initial state = %q, want idle", st.State)
	}

	sendJSON(t, s, "POST", "/api/calibration/start", "", &st)
	if st.State != "collecting" {
		t.Errorf("state after start = %q, want collecting", st.State)
	}

	var pointResp struct {
		Accepted bool `json:"accepted"`
		Points   int  `json:"points"`
	}
	points := []string{
		`{"x":100,"y":100}`,
		`{"x":540,"y":100}`,
		`{"x":100,"y":380}`,
		`{"x":540,"y":380}`,
	}
	for _, body := range points {
		if code := sendJSON(t, s, "POST", "/api/calibration/points", body, &pointResp); code != 200 {
			t.Fatalf("point status = %d, want 200", code)
		}
		if !pointResp.Accepted {
			t.Fatalf("point %s not accepted", body)
		}
	}
	if pointResp.Points != 4 {
		t.Errorf("points = %d, want 4", pointResp.Points)
	}

	sendJSON(t, s, "POST", "/api/calibration/finish", "", &st)
	if st.State != "finished" {
		t.Errorf("state after finish = %q, want finished", st.State)
	}
	if !st.Calibrated {
		t.Error("calibrated = false after 4 points")
	}
}

func TestCalibrationPointRejected(t *testing.T) {
	s := newTestServer(t)
	sendJSON(t, s, "POST", "/api/calibration/start", "", nil)

	tests := []struct {
		name string
		body string
	}{
		{"missing coordinates", `{}`},
		{"negative x", `{"x":-1,"y":5}`},
		{"missing y", `{"x":10}`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if code := sendJSON(t, s, "POST", "/api/calibration/points", tt.body, nil); code != 400 {
				t.Errorf("status = %d, want 400", code)
			}
		})
	}
}

func TestCalibrationPointOutsideSession(t *testing.T) {
	s := newTestServer(t)

	var pointResp struct {
		Accepted bool `json:"accepted"`
		Points   int  `json:"points"`
	}
	code := sendJSON(t, s, "POST", "/api/calibration/points", `{"x":10,"y":10}`, &pointResp)
	if code != 200 {
		t.Fatalf("status = %d, want 200", code)
	}
	if pointResp.Accepted {
		t.Error("point accepted with no session running")
	}
	if pointResp.Points != 0 {
		t.Errorf("points = %d, want 0", pointResp.Points)
	}
}

func TestStats(t *testing.T) {
	s := newTestServer(t)

	var stats Stats
	if code := getJSON(t, s, "/api/stats", &stats); code != 200 {
		t.Fatalf("status = %d, want 200", code)
	}
	if stats.FramesProcessed != 0 {
		t.Errorf("FramesProcessed = %d, want 0", stats.FramesProcessed)
	}
	if stats.Backend != "auto" {
		t.Errorf("Backend = %q, want auto", stats.Backend)
	}
}

func TestWSRoutesRequireUpgrade(t *testing.T) {
	s := newTestServer(t)

	for _, path := range []string{"/ws/frames", "/ws/results"} {
		if code := getJSON(t, s, path, nil); code != 426 {
			t.Errorf("GET %s status = %d, want 426", path, code)
		}
	}
}
