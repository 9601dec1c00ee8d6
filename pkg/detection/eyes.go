package detection

import (
	"fmt"
	"image"
	"os"

	"gocv.io/x/gocv"

	"github.com/zhuhuilin/go-eyetrack/internal/log"
	"github.com/zhuhuilin/go-eyetrack/pkg/geometry"
)

// EyeModelFile is the cascade basename for eye sub-detection.
const EyeModelFile = "haarcascade_eye.xml"

// Eye cascade parameters, tuned for eyes inside an already-detected
// face region.
const (
	eyeScaleFactor  = 1.1
	eyeMinNeighbors = 2
	eyeMinSize      = 20
)

// EyeDetector finds eye boxes inside a face rect. It refines the
// synthesized landmarks; an unavailable cascade disables refinement but
// never fails detection.
type EyeDetector struct {
	resolver *Resolver

	cascade   gocv.CascadeClassifier
	attempted bool
	loaded    bool
	loadErr   error
}

// NewEyeDetector creates the detector. The cascade loads lazily on
// first use.
func NewEyeDetector(resolver *Resolver) *EyeDetector {
	return &EyeDetector{resolver: resolver}
}

// LoadErr returns the load failure, nil while untried or loaded.
func (d *EyeDetector) LoadErr() error { return d.loadErr }

// EnsureLoaded reads the eye cascade on first call. One attempt only.
func (d *EyeDetector) EnsureLoaded() bool {
	if d.attempted {
		return d.loaded
	}
	d.attempted = true

	path := d.resolver.Resolve(EyeModelFile)
	if _, err := os.Stat(path); err != nil {
		d.loadErr = fmt.Errorf("%w: %s", ErrModelNotFound, path)
		log.Warn("eye cascade unavailable, landmark refinement disabled", "path", path)
		return false
	}

	d.cascade = gocv.NewCascadeClassifier()
	if !d.cascade.Load(path) {
		d.cascade.Close()
		d.loadErr = fmt.Errorf("%w: %s", ErrModelLoad, path)
		log.Warn("eye cascade failed to load", "path", path)
		return false
	}

	d.loaded = true
	log.Info("eye cascade loaded", "path", path)
	return true
}

// DetectEyes returns eye boxes found inside the face rect, converted to
// frame coordinates. Nil when the cascade is unavailable or the face
// region is degenerate.
func (d *EyeDetector) DetectEyes(gray gocv.Mat, face geometry.Rect) []geometry.Rect {
	if !d.EnsureLoaded() || gray.Empty() || face.Empty() {
		return nil
	}

	clamped := geometry.ClampRect(face, gray.Cols(), gray.Rows())
	if clamped.Empty() {
		return nil
	}

	roi := gray.Region(image.Rect(clamped.X, clamped.Y, clamped.X+clamped.W, clamped.Y+clamped.H))
	defer roi.Close()

	found := d.cascade.DetectMultiScaleWithParams(
		roi,
		eyeScaleFactor,
		eyeMinNeighbors,
		0,
		image.Pt(eyeMinSize, eyeMinSize),
		image.Pt(0, 0),
	)

	eyes := make([]geometry.Rect, 0, len(found))
	for _, r := range found {
		eyes = append(eyes, geometry.Rect{
			X: clamped.X + r.Min.X,
			Y: clamped.Y + r.Min.Y,
			W: r.Dx(),
			H: r.Dy(),
		})
	}
	return eyes
}

// Close releases the cascade.
func (d *EyeDetector) Close() error {
	if d.loaded {
		d.cascade.Close()
		d.loaded = false
	}
	return nil
}
