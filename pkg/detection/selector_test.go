package detection

import (
	"errors"
	"testing"

	"gocv.io/x/gocv"

	"github.com/zhuhuilin/go-eyetrack/pkg/geometry"
)

// fakeBackend is an injectable Backend for exercising the dispatch
// chain without model files.
type fakeBackend struct {
	kind    Kind
	loadOK  bool
	loadErr error
	det     Detection
	detOK   bool

	loads   int
	detects int
	closed  bool
}

func (f *fakeBackend) Kind() Kind { return f.kind }

func (f *fakeBackend) EnsureLoaded() bool {
	f.loads++
	return f.loadOK
}

func (f *fakeBackend) LoadErr() error { return f.loadErr }

func (f *fakeBackend) Detect(gray, frame gocv.Mat) (Detection, bool) {
	f.detects++
	return f.det, f.detOK
}

func (f *fakeBackend) Close() error {
	f.closed = true
	return nil
}

func testFrames(t *testing.T) (gocv.Mat, gocv.Mat) {
	t.Helper()
	gray := gocv.NewMatWithSize(480, 640, gocv.MatTypeCV8U)
	frame := gocv.NewMatWithSize(480, 640, gocv.MatTypeCV8UC3)
	t.Cleanup(func() {
		gray.Close()
		frame.Close()
	})
	return gray, frame
}

// TestSelectorStopsAtFirstFace tests that the chain stops at the first
// backend returning a face and never calls the rest
func TestSelectorStopsAtFirstFace(t *testing.T) {
	first := &fakeBackend{kind: KindYOLO, loadOK: true, detOK: true,
		det: Detection{Rect: geometry.Rect{X: 100, Y: 100, W: 200, H: 200}, Confidence: 0.9}}
	second := &fakeBackend{kind: KindYuNet, loadOK: true, detOK: true,
		det: Detection{Rect: geometry.Rect{X: 10, Y: 10, W: 50, H: 50}, Confidence: 0.8}}
	s := NewSelectorWithBackends(KindAuto, first, second)
	gray, frame := testFrames(t)

	det, winner, ok := s.Detect(gray, frame)
	if !ok {
		t.Fatal("expected a detection")
	}
	if winner != KindYOLO {
		t.Errorf("winner = %v, want %v", winner, KindYOLO)
	}
	if second.detects != 0 {
		t.Errorf("second backend ran %d times, want 0", second.detects)
	}

	// 10% side, 30% top, 20% bottom expansion within a 640x480 frame.
	want := geometry.Rect{X: 80, Y: 40, W: 240, H: 300}
	if det.Rect != want {
		t.Errorf("expanded rect = %+v, want %+v", det.Rect, want)
	}
}

// TestSelectorFallsThroughOnLoadFailure tests that a backend whose
// model never loads is skipped without ending the chain
func TestSelectorFallsThroughOnLoadFailure(t *testing.T) {
	broken := &fakeBackend{kind: KindYOLO, loadOK: false, loadErr: WrapError(KindYOLO, ErrModelNotFound)}
	working := &fakeBackend{kind: KindYuNet, loadOK: true, detOK: true,
		det: Detection{Rect: geometry.Rect{X: 100, Y: 100, W: 100, H: 100}, Confidence: 0.7}}
	s := NewSelectorWithBackends(KindAuto, broken, working)
	gray, frame := testFrames(t)

	_, winner, ok := s.Detect(gray, frame)
	if !ok || winner != KindYuNet {
		t.Errorf("Detect() = (%v, %v), want YuNet detection", winner, ok)
	}
	if broken.detects != 0 {
		t.Errorf("broken backend Detect ran %d times, want 0", broken.detects)
	}
}

// TestSelectorFallsThroughOnNoFace tests that a loaded backend that
// sees no face hands the frame to the next one
func TestSelectorFallsThroughOnNoFace(t *testing.T) {
	blind := &fakeBackend{kind: KindYOLO, loadOK: true, detOK: false}
	working := &fakeBackend{kind: KindHaar, loadOK: true, detOK: true,
		det: Detection{Rect: geometry.Rect{X: 200, Y: 150, W: 80, H: 80}, Confidence: 0.5}}
	s := NewSelectorWithBackends(KindAuto, blind, working)
	gray, frame := testFrames(t)

	_, winner, ok := s.Detect(gray, frame)
	if !ok || winner != KindHaar {
		t.Errorf("Detect() = (%v, %v), want Haar detection", winner, ok)
	}
	if blind.detects != 1 {
		t.Errorf("blind backend Detect ran %d times, want 1", blind.detects)
	}
}

// TestSelectorPinnedBackendFirst tests that pinning reorders the chain
// without dropping the fallbacks
func TestSelectorPinnedBackendFirst(t *testing.T) {
	yolo := &fakeBackend{kind: KindYOLO, loadOK: true, detOK: true,
		det: Detection{Rect: geometry.Rect{X: 100, Y: 100, W: 100, H: 100}, Confidence: 0.9}}
	haar := &fakeBackend{kind: KindHaar, loadOK: true, detOK: true,
		det: Detection{Rect: geometry.Rect{X: 100, Y: 100, W: 100, H: 100}, Confidence: 0.5}}
	s := NewSelectorWithBackends(KindAuto, yolo, haar)
	s.SetKind(KindHaar)
	gray, frame := testFrames(t)

	_, winner, ok := s.Detect(gray, frame)
	if !ok || winner != KindHaar {
		t.Errorf("Detect() = (%v, %v), want pinned Haar first", winner, ok)
	}
	if yolo.detects != 0 {
		t.Errorf("yolo Detect ran %d times, want 0", yolo.detects)
	}

	// Pinned backend failing still falls back to the rest.
	haar.detOK = false
	_, winner, ok = s.Detect(gray, frame)
	if !ok || winner != KindYOLO {
		t.Errorf("Detect() after pin miss = (%v, %v), want YOLO fallback", winner, ok)
	}
}

// TestSelectorNoBackends tests the fully degraded chain: no face, no
// panic, aggregated load error
func TestSelectorNoBackends(t *testing.T) {
	a := &fakeBackend{kind: KindYOLO, loadErr: WrapError(KindYOLO, ErrModelNotFound)}
	b := &fakeBackend{kind: KindYuNet, loadErr: WrapError(KindYuNet, ErrModelLoad)}
	s := NewSelectorWithBackends(KindAuto, a, b)
	gray, frame := testFrames(t)

	_, _, ok := s.Detect(gray, frame)
	if ok {
		t.Fatal("expected no detection from unloadable chain")
	}

	err := s.LoadError()
	if err == nil {
		t.Fatal("expected aggregated load error")
	}
	var chain *ChainError
	if !errors.As(err, &chain) {
		t.Fatalf("LoadError() type = %T, want *ChainError", err)
	}
	if len(chain.Errors) != 2 {
		t.Errorf("chain holds %d errors, want 2", len(chain.Errors))
	}
	if !errors.Is(err, ErrModelLoad) {
		t.Error("chain should unwrap to the last load error")
	}
}

// TestSelectorClose tests that Close releases every backend
func TestSelectorClose(t *testing.T) {
	a := &fakeBackend{kind: KindYOLO}
	b := &fakeBackend{kind: KindHaar}
	s := NewSelectorWithBackends(KindAuto, a, b)

	if err := s.Close(); err != nil {
		t.Errorf("Close() failed: %v", err)
	}
	if !a.closed || !b.closed {
		t.Error("not every backend was closed")
	}
}
