package detection

import (
	"fmt"
	"image"
	"os"

	"gocv.io/x/gocv"

	"github.com/zhuhuilin/go-eyetrack/internal/log"
	"github.com/zhuhuilin/go-eyetrack/pkg/debug"
	"github.com/zhuhuilin/go-eyetrack/pkg/geometry"
)

// HaarModelFile is the cascade basename resolved for the Haar backend.
const HaarModelFile = "haarcascade_frontalface_default.xml"

// HaarConfidence is reported for every Haar detection; cascades carry
// no per-detection score.
const HaarConfidence = 0.5

// HaarConfig holds Haar cascade parameters.
type HaarConfig struct {
	ScaleFactor  float64
	MinNeighbors int
	MinSize      int // minimum face side in pixels
}

// DefaultHaarConfig returns production defaults.
func DefaultHaarConfig() HaarConfig {
	return HaarConfig{
		ScaleFactor:  1.1,
		MinNeighbors: 3,
		MinSize:      30,
	}
}

// HaarBackend detects faces with a classical cascade classifier. It is
// the slowest-degrading fallback: no ONNX runtime needed, works
// everywhere OpenCV does.
type HaarBackend struct {
	resolver *Resolver
	cfg      HaarConfig

	cascade   gocv.CascadeClassifier
	attempted bool
	loaded    bool
	loadErr   error
}

// NewHaar creates the backend. The cascade loads lazily on first use.
func NewHaar(resolver *Resolver, cfg HaarConfig) *HaarBackend {
	return &HaarBackend{resolver: resolver, cfg: cfg}
}

// Kind identifies this backend.
func (b *HaarBackend) Kind() Kind { return KindHaar }

// LoadErr returns the load failure, nil while untried or loaded.
func (b *HaarBackend) LoadErr() error { return b.loadErr }

// EnsureLoaded reads the cascade XML on first call. One attempt only.
func (b *HaarBackend) EnsureLoaded() bool {
	if b.attempted {
		return b.loaded
	}
	b.attempted = true

	path := b.resolver.Resolve(HaarModelFile)
	if _, err := os.Stat(path); err != nil {
		b.loadErr = WrapError(KindHaar, fmt.Errorf("%w: %s", ErrModelNotFound, path))
		log.Warn("haar cascade unavailable", "path", path)
		return false
	}

	b.cascade = gocv.NewCascadeClassifier()
	if !b.cascade.Load(path) {
		b.cascade.Close()
		b.loadErr = WrapError(KindHaar, fmt.Errorf("%w: %s", ErrModelLoad, path))
		log.Warn("haar cascade failed to load", "path", path)
		return false
	}

	b.loaded = true
	log.Info("haar cascade loaded", "path", path)
	return true
}

// Detect returns the largest detected face. Area is the tie-break since
// cascades have no confidence score.
func (b *HaarBackend) Detect(gray, frame gocv.Mat) (Detection, bool) {
	if !b.loaded || gray.Empty() {
		return Detection{}, false
	}

	rects := b.cascade.DetectMultiScaleWithParams(
		gray,
		b.cfg.ScaleFactor,
		b.cfg.MinNeighbors,
		0,
		image.Pt(b.cfg.MinSize, b.cfg.MinSize),
		image.Pt(0, 0),
	)

	var best geometry.Rect
	for _, r := range rects {
		cand := geometry.Rect{X: r.Min.X, Y: r.Min.Y, W: r.Dx(), H: r.Dy()}
		if cand.Area() > best.Area() {
			best = cand
		}
	}
	if best.Empty() {
		return Detection{}, false
	}

	best = geometry.ClampRect(best, gray.Cols(), gray.Rows())
	if best.Empty() {
		return Detection{}, false
	}
	debug.TrackLog("haar: %d face(s), best %dx%d\n", len(rects), best.W, best.H)
	return Detection{Rect: best, Confidence: HaarConfidence}, true
}

// Close releases the cascade.
func (b *HaarBackend) Close() error {
	if b.loaded {
		b.cascade.Close()
		b.loaded = false
	}
	return nil
}
