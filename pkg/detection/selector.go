package detection

import (
	"log/slog"

	"gocv.io/x/gocv"

	"github.com/zhuhuilin/go-eyetrack/internal/log"
	"github.com/zhuhuilin/go-eyetrack/pkg/debug"
	"github.com/zhuhuilin/go-eyetrack/pkg/geometry"
)

// Selector dispatches detection across a backend list with
// deterministic fallback ordering: the pinned backend first, then the
// remaining ones in the fixed preference order, stopping at the first
// face. A backend that fails to load degrades the chain, never the
// frame.
type Selector struct {
	kind     Kind
	backends []Backend

	logger   *slog.Logger
	warnedNA bool
}

// NewSelector wires the standard backend set against one resolver, in
// the preference order [YOLO, YuNet, Haar].
func NewSelector(kind Kind, resolver *Resolver, yolo YOLOConfig, yunet YuNetConfig, haar HaarConfig) *Selector {
	return NewSelectorWithBackends(kind,
		NewYOLO(resolver, yolo),
		NewYuNet(resolver, yunet),
		NewHaar(resolver, haar),
	)
}

// NewSelectorWithBackends builds a selector over an explicit backend
// list in preference order. Tests inject fakes here.
func NewSelectorWithBackends(kind Kind, backends ...Backend) *Selector {
	return &Selector{
		kind:     kind,
		backends: backends,
		logger:   log.Component("detection.selector"),
	}
}

// Kind returns the pinned backend kind.
func (s *Selector) Kind() Kind { return s.kind }

// SetKind re-pins the preferred backend. Backend load state is
// untouched: a model that already failed stays failed.
func (s *Selector) SetKind(kind Kind) { s.kind = kind }

// YOLOVariant returns the YOLO model variant tag, empty when the chain
// carries no YOLO backend.
func (s *Selector) YOLOVariant() string {
	for _, b := range s.backends {
		if y, ok := b.(*YOLOBackend); ok {
			return y.Variant()
		}
	}
	return ""
}

// SetYOLOVariant forwards to the YOLO backend; an actual tag change
// re-arms its one-shot load.
func (s *Selector) SetYOLOVariant(tag string) {
	for _, b := range s.backends {
		if y, ok := b.(*YOLOBackend); ok {
			y.SetVariant(tag)
		}
	}
}

// order returns the dispatch order for the pinned kind.
func (s *Selector) order() []Backend {
	if s.kind == KindAuto {
		return s.backends
	}
	ordered := make([]Backend, 0, len(s.backends))
	for _, b := range s.backends {
		if b.Kind() == s.kind {
			ordered = append(ordered, b)
		}
	}
	for _, b := range s.backends {
		if b.Kind() != s.kind {
			ordered = append(ordered, b)
		}
	}
	return ordered
}

// Detect runs the dispatch chain and returns the expanded face rect
// from the first backend that produces one, along with the kind that
// won. ok=false means no face this frame; that is a normal outcome,
// not an error.
func (s *Selector) Detect(gray, frame gocv.Mat) (Detection, Kind, bool) {
	frameW := frame.Cols()
	frameH := frame.Rows()

	loadable := false
	for _, b := range s.order() {
		if !b.EnsureLoaded() {
			continue
		}
		loadable = true

		det, ok := b.Detect(gray, frame)
		if !ok {
			continue
		}
		det.Rect = geometry.ExpandFaceRect(det.Rect, frameW, frameH)
		if det.Rect.Empty() {
			continue
		}
		debug.TrackLog("detect: %s conf=%.2f rect=%+v\n", b.Kind(), det.Confidence, det.Rect)
		return det, b.Kind(), true
	}

	if !loadable && !s.warnedNA {
		s.warnedNA = true
		s.logger.Warn("no detection backend available", "error", s.LoadError())
	}
	return Detection{}, s.kind, false
}

// loadErrer is implemented by backends that record load failures.
type loadErrer interface {
	LoadErr() error
}

// LoadError aggregates the load failures recorded so far, nil when
// every attempted backend loaded.
func (s *Selector) LoadError() error {
	var errs []error
	for _, b := range s.backends {
		le, ok := b.(loadErrer)
		if !ok {
			continue
		}
		if err := le.LoadErr(); err != nil {
			errs = append(errs, err)
		}
	}
	if len(errs) == 0 {
		return nil
	}
	return &ChainError{Errors: errs}
}

// Close releases every backend.
func (s *Selector) Close() error {
	var lastErr error
	for _, b := range s.backends {
		if err := b.Close(); err != nil {
			lastErr = err
		}
	}
	return lastErr
}
