// Package detection provides face detection backends and the fallback
// selector that dispatches between them.
package detection

import (
	"fmt"
	"strings"

	"gocv.io/x/gocv"

	"github.com/zhuhuilin/go-eyetrack/pkg/geometry"
)

// Kind identifies a face detection backend.
type Kind int

const (
	// KindAuto is a policy value only: it expands to the preference
	// order [YOLO, YuNet, Haar] at dispatch time and is never itself a
	// detector.
	KindAuto Kind = iota
	KindYOLO
	KindYuNet
	KindHaar
)

// String returns the backend name.
func (k Kind) String() string {
	switch k {
	case KindAuto:
		return "auto"
	case KindYOLO:
		return "yolo"
	case KindYuNet:
		return "yunet"
	case KindHaar:
		return "haar"
	}
	return fmt.Sprintf("kind(%d)", int(k))
}

// ParseKind parses a backend name. The empty string means auto.
func ParseKind(s string) (Kind, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "", "auto":
		return KindAuto, nil
	case "yolo":
		return KindYOLO, nil
	case "yunet":
		return KindYuNet, nil
	case "haar", "haarcascade":
		return KindHaar, nil
	}
	return KindAuto, fmt.Errorf("detection: unknown backend %q", s)
}

// Detection is a detected face in pixel coordinates of the input frame.
type Detection struct {
	Rect       geometry.Rect
	Confidence float64
}

// Backend is a face detection backend. Implementations load their model
// lazily: EnsureLoaded attempts the load at most once per instance and
// caches the verdict, so a missing model costs one stat, not one per
// frame.
//
// Backends are not safe for concurrent use; the engine contract has the
// caller serialize frames.
type Backend interface {
	// Kind identifies this backend.
	Kind() Kind

	// EnsureLoaded loads model resources on first call. It logs and
	// returns false on failure; it never retries.
	EnsureLoaded() bool

	// Detect returns the best face in the frame, or ok=false. gray is
	// the single-channel view of frame; backends use whichever input
	// they need.
	Detect(gray, frame gocv.Mat) (Detection, bool)

	// Close releases model resources.
	Close() error
}
